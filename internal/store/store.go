// Package store defines the persistence boundary for the artwork catalog.
//
// The catalog engine depends on this interface, not on a concrete file
// format. In tests we inject an in-memory implementation; in production
// the jsonfile sub-package persists to a single JSON document.
package store

import "github.com/sakif/artfolio/internal/model"

// DocumentStore persists the entire collection as one document.
//
// The contract is deliberately coarse: Save rewrites the whole document
// on every call, and Load reads it all back. There is no incremental or
// append path. Every operation is O(collection size), which is the
// accepted trade-off at personal-catalog scale.
type DocumentStore interface {
	// Load reads the backing document. A missing document or one that
	// fails to parse yields an empty collection and a nil error; the
	// catalog starts fresh rather than refusing to start.
	Load() ([]model.Artwork, error)

	// Save serializes the full collection and overwrites the backing
	// document. A failed Save leaves the previous document intact and
	// must be surfaced to the caller: memory and disk are inconsistent
	// until the caller reacts.
	Save(artworks []model.Artwork) error
}
