// Package catalog contains the record collection engine, the business
// logic layer of the application.
//
// The engine owns the in-memory ordered collection of artwork records and
// keeps it synchronized to the document store: every mutation applies to
// memory first, then saves the full document before returning. Handlers
// call into this package; it knows nothing about HTTP.
//
// POSITIONAL IDENTITY:
// A record's identity is its current index in the collection. Deleting a
// record shifts every later index down by one, so an index held across a
// mutation is invalid. That is safe here only because all mutations are
// serialized behind one lock. Callers must re-list rather than cache
// (index, artwork) pairs across mutating calls.
package catalog

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/sakif/artfolio/internal/apperror"
	"github.com/sakif/artfolio/internal/assets"
	"github.com/sakif/artfolio/internal/model"
	"github.com/sakif/artfolio/internal/store"
)

// Entry pairs a record with its current positional index. Entries are
// computed fresh on every List/Favourites call and are stale the moment
// any mutation runs.
type Entry struct {
	Index   int           `json:"index"`
	Artwork model.Artwork `json:"artwork"`
}

// Catalog is the record collection engine.
//
// CONCURRENCY DISCIPLINE:
// One RWMutex serializes every mutate-then-persist critical section:
// read current state, compute new state, save. No interleaving between
// two mutations is observable, which is what keeps positional indices
// consistent. Reads take the read lock and return copies, never aliases
// into the live slice. Save is blocking inside the critical section: a
// mutation has not happened until the document hit disk.
type Catalog struct {
	mu       sync.RWMutex
	artworks []model.Artwork

	store  store.DocumentStore
	assets assets.Store
	logger *slog.Logger
}

// New loads the collection from the document store.
//
// Load failures degrade to an empty collection: a catalog that cannot
// read its history still starts (the store already treats missing and
// malformed documents this way; this catches residual I/O errors too).
func New(docs store.DocumentStore, assetStore assets.Store, logger *slog.Logger) *Catalog {
	artworks, err := docs.Load()
	if err != nil {
		logger.Warn("failed to load catalog document, starting empty",
			slog.String("error", err.Error()),
		)
		artworks = []model.Artwork{}
	}

	logger.Info("catalog loaded", slog.Int("artworks", len(artworks)))

	return &Catalog{
		artworks: artworks,
		store:    docs,
		assets:   assetStore,
		logger:   logger,
	}
}

// Len returns the current number of records.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.artworks)
}

// Create validates and appends a new record, returning its index.
//
// Validation happens before any mutation: a rejected Create leaves the
// collection untouched and triggers no save. The image reference is
// optional; liked always starts false.
func (c *Catalog) Create(ctx context.Context, title, date, description, imageRef string) (int, model.Artwork, error) {
	title = strings.TrimSpace(title)
	date = strings.TrimSpace(date)
	description = strings.TrimSpace(description)

	if title == "" {
		return 0, model.Artwork{}, apperror.ValidationFailed("title", "title is required")
	}
	if date == "" {
		return 0, model.Artwork{}, apperror.ValidationFailed("date", "date is required")
	}
	if description == "" {
		return 0, model.Artwork{}, apperror.ValidationFailed("description", "description is required")
	}

	artwork := model.Artwork{
		Title:       title,
		Date:        date,
		Description: description,
		Liked:       false,
	}
	if imageRef != "" {
		artwork.Image = &imageRef
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.artworks = append(c.artworks, artwork)
	if err := c.store.Save(c.artworks); err != nil {
		// Roll back the append so memory and disk stay consistent.
		c.artworks = c.artworks[:len(c.artworks)-1]
		c.logger.Error("failed to save catalog after create",
			slog.String("title", title),
			slog.String("error", err.Error()),
		)
		return 0, model.Artwork{}, apperror.Storage("save catalog", err)
	}

	index := len(c.artworks) - 1
	c.logger.Info("artwork created",
		slog.Int("index", index),
		slog.String("title", title),
	)

	return index, artwork, nil
}

// List returns a fresh (index, artwork) snapshot of the collection in
// order, optionally filtered by a case-insensitive substring match on
// the title. An empty query matches everything.
func (c *Catalog) List(query string) []Entry {
	return c.snapshot(func(a *model.Artwork) bool {
		return matchesQuery(query, a.Title)
	})
}

// Favourites returns the liked records whose title or description
// contains the query (case-insensitive). An empty query matches every
// liked record.
func (c *Catalog) Favourites(query string) []Entry {
	return c.snapshot(func(a *model.Artwork) bool {
		return a.Liked && matchesQuery(query, a.Title, a.Description)
	})
}

// Get returns a copy of the record at index.
func (c *Catalog) Get(index int) (model.Artwork, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if index < 0 || index >= len(c.artworks) {
		return model.Artwork{}, apperror.NotFound("artwork", index)
	}
	return c.artworks[index], nil
}

// Update replaces the text fields of the record at index in place.
//
// PARTIAL UPDATE SEMANTICS:
// Only title, date and description change. The record's image reference
// and liked flag always survive an update untouched.
func (c *Catalog) Update(ctx context.Context, index int, title, date, description string) (model.Artwork, error) {
	title = strings.TrimSpace(title)
	date = strings.TrimSpace(date)
	description = strings.TrimSpace(description)

	if title == "" {
		return model.Artwork{}, apperror.ValidationFailed("title", "title is required")
	}
	if date == "" {
		return model.Artwork{}, apperror.ValidationFailed("date", "date is required")
	}
	if description == "" {
		return model.Artwork{}, apperror.ValidationFailed("description", "description is required")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if index < 0 || index >= len(c.artworks) {
		return model.Artwork{}, apperror.NotFound("artwork", index)
	}

	previous := c.artworks[index]
	c.artworks[index].Title = title
	c.artworks[index].Date = date
	c.artworks[index].Description = description

	if err := c.store.Save(c.artworks); err != nil {
		c.artworks[index] = previous
		c.logger.Error("failed to save catalog after update",
			slog.Int("index", index),
			slog.String("error", err.Error()),
		)
		return model.Artwork{}, apperror.Storage("save catalog", err)
	}

	c.logger.Info("artwork updated",
		slog.Int("index", index),
		slog.String("title", title),
	)

	return c.artworks[index], nil
}

// Delete removes the record at index, shifting every later index down by
// one. The record's stored image, if any, is cleaned up best-effort: a
// missing or undeletable asset never fails the delete.
func (c *Catalog) Delete(ctx context.Context, index int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if index < 0 || index >= len(c.artworks) {
		return apperror.NotFound("artwork", index)
	}

	removed := c.artworks[index]
	next := make([]model.Artwork, 0, len(c.artworks)-1)
	next = append(next, c.artworks[:index]...)
	next = append(next, c.artworks[index+1:]...)

	previous := c.artworks
	c.artworks = next

	if err := c.store.Save(c.artworks); err != nil {
		c.artworks = previous
		c.logger.Error("failed to save catalog after delete",
			slog.Int("index", index),
			slog.String("error", err.Error()),
		)
		return apperror.Storage("save catalog", err)
	}

	if removed.HasImage() {
		if err := c.assets.DeleteAsset(removed.ImageRef()); err != nil {
			// Best-effort cleanup: the record is gone either way.
			c.logger.Warn("failed to delete artwork image",
				slog.String("image", removed.ImageRef()),
				slog.String("error", err.Error()),
			)
		}
	}

	c.logger.Info("artwork deleted",
		slog.Int("index", index),
		slog.String("title", removed.Title),
	)

	return nil
}

// ToggleLike flips the liked flag of the record at index.
//
// LENIENT EDGE CASE:
// Unlike Get/Update/Delete, an out-of-bounds index is a silent no-op
// returning (nil, nil). A stale like click is too low-stakes to surface
// as an error.
func (c *Catalog) ToggleLike(ctx context.Context, index int) (*model.Artwork, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if index < 0 || index >= len(c.artworks) {
		return nil, nil
	}

	c.artworks[index].Liked = !c.artworks[index].Liked

	if err := c.store.Save(c.artworks); err != nil {
		c.artworks[index].Liked = !c.artworks[index].Liked
		c.logger.Error("failed to save catalog after like toggle",
			slog.Int("index", index),
			slog.String("error", err.Error()),
		)
		return nil, apperror.Storage("save catalog", err)
	}

	artwork := c.artworks[index]
	c.logger.Info("artwork like toggled",
		slog.Int("index", index),
		slog.Bool("liked", artwork.Liked),
	)

	return &artwork, nil
}

// snapshot builds (index, artwork) pairs for every record the predicate
// accepts. The index is the record's position in the full collection, not
// in the filtered result. It is what Get/Update/Delete expect.
func (c *Catalog) snapshot(keep func(*model.Artwork) bool) []Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entries := make([]Entry, 0, len(c.artworks))
	for i := range c.artworks {
		if keep(&c.artworks[i]) {
			entries = append(entries, Entry{Index: i, Artwork: c.artworks[i]})
		}
	}
	return entries
}

// matchesQuery reports whether any of the fields contains the query,
// case-insensitively. An empty query matches everything.
func matchesQuery(query string, fields ...string) bool {
	query = strings.TrimSpace(query)
	if query == "" {
		return true
	}
	query = strings.ToLower(query)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), query) {
			return true
		}
	}
	return false
}
