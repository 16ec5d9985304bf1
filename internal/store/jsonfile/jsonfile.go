// Package jsonfile implements store.DocumentStore backed by a single
// pretty-printed JSON file.
//
// DOCUMENT FORMAT:
// One JSON array of artwork objects, array order = collection order:
//
//	[
//	  {"title": "...", "date": "...", "description": "...", "image": null, "liked": false},
//	  ...
//	]
//
// The file is rewritten in full on every Save.
package jsonfile

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/kjk/common/atomicfile"

	"github.com/sakif/artfolio/internal/model"
	"github.com/sakif/artfolio/internal/store"
)

// Compile-time check that *Store satisfies the interface.
var _ store.DocumentStore = (*Store)(nil)

// Store reads and writes the catalog document at a fixed path.
type Store struct {
	path   string
	logger *slog.Logger
}

// New creates a Store for the given file path, creating the parent
// directory if needed. The file itself is not created until the first
// Save; a missing file is a valid empty catalog.
func New(path string, logger *slog.Logger) (*Store, error) {
	if path == "" {
		return nil, errors.New("jsonfile: document path is required")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("jsonfile: creating data directory: %w", err)
		}
	}
	return &Store{path: path, logger: logger}, nil
}

// Path returns the location of the backing document.
func (s *Store) Path() string {
	return s.path
}

// Load reads the whole document.
//
// START-FRESH POLICY:
// A missing file or malformed JSON is not an error; it yields an empty
// collection. The catalog must never fail to start because of a bad or
// absent data file. Malformed content is logged so the operator knows a
// previous document was abandoned.
func (s *Store) Load() ([]model.Artwork, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []model.Artwork{}, nil
		}
		return nil, fmt.Errorf("jsonfile: reading %s: %w", s.path, err)
	}

	var artworks []model.Artwork
	if err := json.Unmarshal(data, &artworks); err != nil {
		s.logger.Warn("catalog document is malformed, starting with empty collection",
			slog.String("path", s.path),
			slog.String("error", err.Error()),
		)
		return []model.Artwork{}, nil
	}

	// A document containing literal `null` unmarshals to a nil slice.
	if artworks == nil {
		artworks = []model.Artwork{}
	}

	return artworks, nil
}

// Save rewrites the document with the full collection.
//
// ATOMIC REPLACE:
// The bytes go to a temp file in the same directory which is renamed over
// the target only after a successful sync. A crash or write error mid-save
// leaves the previous document untouched, so Load never sees a torn file.
func (s *Store) Save(artworks []model.Artwork) error {
	if artworks == nil {
		// Keep the document an array, never `null`.
		artworks = []model.Artwork{}
	}

	data, err := json.MarshalIndent(artworks, "", "  ")
	if err != nil {
		return fmt.Errorf("jsonfile: encoding catalog: %w", err)
	}

	f, err := atomicfile.New(s.path)
	if err != nil {
		return fmt.Errorf("jsonfile: opening temp file for %s: %w", s.path, err)
	}
	defer f.RemoveIfNotClosed()

	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("jsonfile: writing %s: %w", s.path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("jsonfile: replacing %s: %w", s.path, err)
	}

	return nil
}
