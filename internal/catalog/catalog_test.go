package catalog

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"testing"

	"github.com/sakif/artfolio/internal/apperror"
	"github.com/sakif/artfolio/internal/model"
)

// mockDocumentStore implements store.DocumentStore in memory, recording
// how often Save is called and optionally failing on demand.
type mockDocumentStore struct {
	saved     []model.Artwork
	loadErr   error
	saveErr   error
	saveCalls int
}

func (m *mockDocumentStore) Load() ([]model.Artwork, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return append([]model.Artwork{}, m.saved...), nil
}

func (m *mockDocumentStore) Save(artworks []model.Artwork) error {
	m.saveCalls++
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved = append([]model.Artwork{}, artworks...)
	return nil
}

// mockAssetStore records deletions; absent refs succeed like the real one.
type mockAssetStore struct {
	deleted   []string
	deleteErr error
}

func (m *mockAssetStore) StoreAsset(r io.Reader, suggestedName string) (string, error) {
	return "mock-ref_" + suggestedName, nil
}

func (m *mockAssetStore) DeleteAsset(ref string) error {
	m.deleted = append(m.deleted, ref)
	return m.deleteErr
}

func (m *mockAssetStore) Path(ref string) (string, error) {
	return ref, nil
}

func newTestCatalog(t *testing.T) (*Catalog, *mockDocumentStore, *mockAssetStore) {
	t.Helper()
	docs := &mockDocumentStore{}
	images := &mockAssetStore{}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	return New(docs, images, logger), docs, images
}

// mustCreate is a helper that creates a record and fails the test on error.
func mustCreate(t *testing.T, c *Catalog, title string) int {
	t.Helper()
	index, _, err := c.Create(context.Background(), title, "2024", "about "+title, "")
	if err != nil {
		t.Fatalf("Create(%q) error = %v", title, err)
	}
	return index
}

func strptr(s string) *string { return &s }

// =========================================================================
// CREATE TESTS
// =========================================================================

func TestCreate_AppendsAtEnd(t *testing.T) {
	c, docs, _ := newTestCatalog(t)

	for want, title := range []string{"A", "B", "C"} {
		index, artwork, err := c.Create(context.Background(), title, "2024", "desc", "")
		if err != nil {
			t.Fatalf("Create(%q) error = %v", title, err)
		}
		if index != want {
			t.Errorf("Create(%q) index = %d, want %d", title, index, want)
		}
		if artwork.Liked {
			t.Errorf("Create(%q) Liked = true, want false on creation", title)
		}
	}

	if docs.saveCalls != 3 {
		t.Errorf("saveCalls = %d, want one save per create", docs.saveCalls)
	}
}

func TestCreate_TrimsWhitespace(t *testing.T) {
	c, _, _ := newTestCatalog(t)

	_, artwork, err := c.Create(context.Background(), "  Dawn  ", " 2024 ", "  first light  ", "")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if artwork.Title != "Dawn" || artwork.Date != "2024" || artwork.Description != "first light" {
		t.Errorf("Create() did not trim fields: %+v", artwork)
	}
}

func TestCreate_ValidationRejection(t *testing.T) {
	tests := []struct {
		name                     string
		title, date, description string
		wantField                string
	}{
		{"empty title", "", "2024", "desc", "title"},
		{"whitespace title", "   ", "2024", "desc", "title"},
		{"empty date", "T", "", "desc", "date"},
		{"empty description", "T", "2024", "", "description"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, docs, _ := newTestCatalog(t)

			_, _, err := c.Create(context.Background(), tt.title, tt.date, tt.description, "")
			if !errors.Is(err, apperror.ErrValidation) {
				t.Fatalf("Create() error = %v, want ErrValidation", err)
			}

			var appErr *apperror.AppError
			if errors.As(err, &appErr) && appErr.Field != tt.wantField {
				t.Errorf("AppError.Field = %q, want %q", appErr.Field, tt.wantField)
			}

			// No partial append, no save.
			if c.Len() != 0 {
				t.Errorf("Len() = %d after rejected create, want 0", c.Len())
			}
			if docs.saveCalls != 0 {
				t.Errorf("saveCalls = %d after rejected create, want 0", docs.saveCalls)
			}
		})
	}
}

func TestCreate_ImageIsOptional(t *testing.T) {
	c, _, _ := newTestCatalog(t)

	_, without, err := c.Create(context.Background(), "A", "2024", "desc", "")
	if err != nil {
		t.Fatalf("Create() without image error = %v", err)
	}
	if without.Image != nil {
		t.Errorf("Image = %v, want nil when no reference given", *without.Image)
	}

	_, with, err := c.Create(context.Background(), "B", "2024", "desc", "ref_b.png")
	if err != nil {
		t.Fatalf("Create() with image error = %v", err)
	}
	if with.ImageRef() != "ref_b.png" {
		t.Errorf("ImageRef() = %q, want %q", with.ImageRef(), "ref_b.png")
	}
}

func TestCreate_SaveFailureRollsBack(t *testing.T) {
	c, docs, _ := newTestCatalog(t)
	docs.saveErr = errors.New("disk full")

	_, _, err := c.Create(context.Background(), "A", "2024", "desc", "")
	if !errors.Is(err, apperror.ErrStorage) {
		t.Fatalf("Create() error = %v, want ErrStorage", err)
	}
	if c.Len() != 0 {
		t.Errorf("Len() = %d after failed save, want 0 (rolled back)", c.Len())
	}
}

// =========================================================================
// INDEX INVARIANT / REINDEX SCENARIO
// =========================================================================

func TestDelete_ShiftsSubsequentIndices(t *testing.T) {
	c, _, _ := newTestCatalog(t)
	mustCreate(t, c, "A")
	mustCreate(t, c, "B")
	mustCreate(t, c, "C")

	if err := c.Delete(context.Background(), 0); err != nil {
		t.Fatalf("Delete(0) error = %v", err)
	}

	entries := c.List("")
	if len(entries) != 2 {
		t.Fatalf("List() returned %d entries, want 2", len(entries))
	}
	if entries[0].Index != 0 || entries[0].Artwork.Title != "B" {
		t.Errorf("entry 0 = (%d, %q), want (0, B)", entries[0].Index, entries[0].Artwork.Title)
	}
	if entries[1].Index != 1 || entries[1].Artwork.Title != "C" {
		t.Errorf("entry 1 = (%d, %q), want (1, C)", entries[1].Index, entries[1].Artwork.Title)
	}

	got, err := c.Get(0)
	if err != nil {
		t.Fatalf("Get(0) error = %v", err)
	}
	if got.Title != "B" {
		t.Errorf("Get(0).Title = %q, want B (shifted down from index 1)", got.Title)
	}
}

func TestDelete_LastIndexThenGetFails(t *testing.T) {
	c, _, _ := newTestCatalog(t)
	mustCreate(t, c, "A")
	mustCreate(t, c, "B")

	if err := c.Delete(context.Background(), 1); err != nil {
		t.Fatalf("Delete(1) error = %v", err)
	}
	if _, err := c.Get(1); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Get(1) after deleting last record error = %v, want ErrNotFound", err)
	}
}

func TestDelete_OutOfBounds(t *testing.T) {
	c, docs, _ := newTestCatalog(t)
	mustCreate(t, c, "A")
	savesBefore := docs.saveCalls

	for _, index := range []int{-1, 1, 99} {
		if err := c.Delete(context.Background(), index); !errors.Is(err, apperror.ErrNotFound) {
			t.Errorf("Delete(%d) error = %v, want ErrNotFound", index, err)
		}
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d after rejected deletes, want 1", c.Len())
	}
	if docs.saveCalls != savesBefore {
		t.Errorf("rejected deletes triggered %d saves", docs.saveCalls-savesBefore)
	}
}

func TestDelete_CleansUpAsset(t *testing.T) {
	c, _, images := newTestCatalog(t)

	index, _, err := c.Create(context.Background(), "A", "2024", "desc", "x.png")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := c.Delete(context.Background(), index); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if len(images.deleted) != 1 || images.deleted[0] != "x.png" {
		t.Errorf("deleted assets = %v, want [x.png]", images.deleted)
	}
}

func TestDelete_AssetCleanupFailureDoesNotFailDelete(t *testing.T) {
	c, _, images := newTestCatalog(t)
	images.deleteErr = errors.New("asset already gone")

	index, _, err := c.Create(context.Background(), "A", "2024", "desc", "x.png")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := c.Delete(context.Background(), index); err != nil {
		t.Errorf("Delete() error = %v, want nil despite asset cleanup failure", err)
	}
	if c.Len() != 0 {
		t.Errorf("Len() = %d, want 0, the record must be gone", c.Len())
	}
}

func TestDelete_NoAssetCallWithoutImage(t *testing.T) {
	c, _, images := newTestCatalog(t)
	mustCreate(t, c, "A")

	if err := c.Delete(context.Background(), 0); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if len(images.deleted) != 0 {
		t.Errorf("DeleteAsset called %d times for a record without an image", len(images.deleted))
	}
}

func TestDelete_SaveFailureRollsBack(t *testing.T) {
	c, docs, images := newTestCatalog(t)
	index, _, err := c.Create(context.Background(), "A", "2024", "desc", "x.png")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	docs.saveErr = errors.New("disk full")
	if err := c.Delete(context.Background(), index); !errors.Is(err, apperror.ErrStorage) {
		t.Fatalf("Delete() error = %v, want ErrStorage", err)
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d after failed save, want 1 (rolled back)", c.Len())
	}
	if len(images.deleted) != 0 {
		t.Error("asset deleted although the record delete failed")
	}
}

// =========================================================================
// GET / UPDATE TESTS
// =========================================================================

func TestGet_OutOfBounds(t *testing.T) {
	c, _, _ := newTestCatalog(t)
	mustCreate(t, c, "A")

	for _, index := range []int{-1, 1, 1000} {
		if _, err := c.Get(index); !errors.Is(err, apperror.ErrNotFound) {
			t.Errorf("Get(%d) error = %v, want ErrNotFound", index, err)
		}
	}
}

func TestUpdate_PreservesImageAndLiked(t *testing.T) {
	c, _, _ := newTestCatalog(t)

	index, _, err := c.Create(context.Background(), "Old", "2020", "old desc", "keep.png")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := c.ToggleLike(context.Background(), index); err != nil {
		t.Fatalf("ToggleLike() error = %v", err)
	}

	updated, err := c.Update(context.Background(), index, "New", "2024", "new desc")
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	if updated.Title != "New" || updated.Date != "2024" || updated.Description != "new desc" {
		t.Errorf("Update() text fields = %+v", updated)
	}
	if updated.ImageRef() != "keep.png" {
		t.Errorf("Update() ImageRef = %q, want keep.png (must be preserved)", updated.ImageRef())
	}
	if !updated.Liked {
		t.Error("Update() Liked = false, want true (must be preserved)")
	}
}

func TestUpdate_OutOfBounds(t *testing.T) {
	c, _, _ := newTestCatalog(t)

	_, err := c.Update(context.Background(), 0, "T", "2024", "desc")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Update() on empty catalog error = %v, want ErrNotFound", err)
	}
}

func TestUpdate_ValidationBeforeMutation(t *testing.T) {
	c, docs, _ := newTestCatalog(t)
	index := mustCreate(t, c, "A")
	savesBefore := docs.saveCalls

	if _, err := c.Update(context.Background(), index, "", "2024", "desc"); !errors.Is(err, apperror.ErrValidation) {
		t.Fatalf("Update() error = %v, want ErrValidation", err)
	}

	got, _ := c.Get(index)
	if got.Title != "A" {
		t.Errorf("record changed by rejected update: %+v", got)
	}
	if docs.saveCalls != savesBefore {
		t.Error("rejected update triggered a save")
	}
}

func TestUpdate_SaveFailureRollsBack(t *testing.T) {
	c, docs, _ := newTestCatalog(t)
	index := mustCreate(t, c, "A")

	docs.saveErr = errors.New("read-only fs")
	if _, err := c.Update(context.Background(), index, "B", "2025", "changed"); !errors.Is(err, apperror.ErrStorage) {
		t.Fatalf("Update() error = %v, want ErrStorage", err)
	}

	got, _ := c.Get(index)
	if got.Title != "A" || got.Date != "2024" {
		t.Errorf("record not rolled back after failed save: %+v", got)
	}
}

// =========================================================================
// TOGGLE LIKE TESTS
// =========================================================================

func TestToggleLike_FlipsAndPersists(t *testing.T) {
	c, docs, _ := newTestCatalog(t)
	index := mustCreate(t, c, "A")

	artwork, err := c.ToggleLike(context.Background(), index)
	if err != nil {
		t.Fatalf("ToggleLike() error = %v", err)
	}
	if artwork == nil || !artwork.Liked {
		t.Fatalf("ToggleLike() = %+v, want liked record", artwork)
	}
	if !docs.saved[index].Liked {
		t.Error("like toggle was not persisted")
	}
}

func TestToggleLike_IdempotentPairing(t *testing.T) {
	c, _, _ := newTestCatalog(t)
	index := mustCreate(t, c, "A")

	if _, err := c.ToggleLike(context.Background(), index); err != nil {
		t.Fatalf("first ToggleLike() error = %v", err)
	}
	artwork, err := c.ToggleLike(context.Background(), index)
	if err != nil {
		t.Fatalf("second ToggleLike() error = %v", err)
	}
	if artwork.Liked {
		t.Error("two toggles did not return liked to its original value")
	}
}

func TestToggleLike_InvalidIndexIsSilentNoOp(t *testing.T) {
	c, docs, _ := newTestCatalog(t)
	mustCreate(t, c, "A")
	savesBefore := docs.saveCalls

	for _, index := range []int{-1, 1, 42} {
		artwork, err := c.ToggleLike(context.Background(), index)
		if err != nil {
			t.Errorf("ToggleLike(%d) error = %v, want nil (silent no-op)", index, err)
		}
		if artwork != nil {
			t.Errorf("ToggleLike(%d) = %+v, want nil", index, artwork)
		}
	}
	if docs.saveCalls != savesBefore {
		t.Error("no-op toggles triggered saves")
	}
}

func TestToggleLike_SaveFailureRollsBack(t *testing.T) {
	c, docs, _ := newTestCatalog(t)
	index := mustCreate(t, c, "A")

	docs.saveErr = errors.New("disk full")
	if _, err := c.ToggleLike(context.Background(), index); !errors.Is(err, apperror.ErrStorage) {
		t.Fatalf("ToggleLike() error = %v, want ErrStorage", err)
	}
	got, _ := c.Get(index)
	if got.Liked {
		t.Error("liked flag not rolled back after failed save")
	}
}

// =========================================================================
// LIST / SEARCH TESTS
// =========================================================================

func TestList_CaseInsensitiveSubstring(t *testing.T) {
	c, _, _ := newTestCatalog(t)
	mustCreate(t, c, "Abcdef")
	mustCreate(t, c, "xyz")
	mustCreate(t, c, "ABC123")

	entries := c.List("abc")
	if len(entries) != 2 {
		t.Fatalf("List(abc) returned %d entries, want 2", len(entries))
	}
	if entries[0].Artwork.Title != "Abcdef" || entries[0].Index != 0 {
		t.Errorf("entry 0 = (%d, %q), want (0, Abcdef)", entries[0].Index, entries[0].Artwork.Title)
	}
	if entries[1].Artwork.Title != "ABC123" || entries[1].Index != 2 {
		t.Errorf("entry 1 = (%d, %q), want (2, ABC123)", entries[1].Index, entries[1].Artwork.Title)
	}
}

func TestList_EmptyQueryMatchesEverything(t *testing.T) {
	c, _, _ := newTestCatalog(t)
	mustCreate(t, c, "A")
	mustCreate(t, c, "B")

	if got := len(c.List("")); got != 2 {
		t.Errorf("List(\"\") returned %d entries, want 2", got)
	}
}

func TestList_TitleOnlyNotDescription(t *testing.T) {
	c, _, _ := newTestCatalog(t)
	if _, _, err := c.Create(context.Background(), "Painting", "2024", "a needle in the haystack", ""); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	// The home view searches titles only.
	if got := len(c.List("needle")); got != 0 {
		t.Errorf("List(needle) returned %d entries, want 0 (description must not match)", got)
	}
}

func TestFavourites_LikedOnlyTitleOrDescription(t *testing.T) {
	c, _, _ := newTestCatalog(t)
	mustCreate(t, c, "Sunrise") // description "about Sunrise"
	mustCreate(t, c, "Sunset")
	if _, _, err := c.Create(context.Background(), "Moon", "2024", "a sunrise in reverse", ""); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	// Like "Sunrise" and "Moon" only.
	for _, i := range []int{0, 2} {
		if _, err := c.ToggleLike(context.Background(), i); err != nil {
			t.Fatalf("ToggleLike(%d) error = %v", i, err)
		}
	}

	entries := c.Favourites("sunrise")
	if len(entries) != 2 {
		t.Fatalf("Favourites(sunrise) returned %d entries, want 2", len(entries))
	}
	// "Sunrise" matches on title, "Moon" on description; "Sunset" is
	// unliked and excluded regardless.
	if entries[0].Artwork.Title != "Sunrise" || entries[1].Artwork.Title != "Moon" {
		t.Errorf("Favourites(sunrise) = %q, %q", entries[0].Artwork.Title, entries[1].Artwork.Title)
	}
}

func TestList_PairsAreFreshAfterMutation(t *testing.T) {
	c, _, _ := newTestCatalog(t)
	mustCreate(t, c, "A")
	mustCreate(t, c, "B")

	before := c.List("")
	if err := c.Delete(context.Background(), 0); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	after := c.List("")

	// The old snapshot still says (1, B); a fresh call must say (0, B).
	if before[1].Index != 1 || after[0].Index != 0 || after[0].Artwork.Title != "B" {
		t.Errorf("stale = %+v, fresh = %+v", before, after)
	}
}

// =========================================================================
// LIFECYCLE TESTS
// =========================================================================

func TestNew_LoadsExistingCollection(t *testing.T) {
	docs := &mockDocumentStore{saved: []model.Artwork{
		{Title: "Persisted", Date: "2023", Description: "from disk", Image: strptr("p.png"), Liked: true},
	}}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	c := New(docs, &mockAssetStore{}, logger)

	got, err := c.Get(0)
	if err != nil {
		t.Fatalf("Get(0) error = %v", err)
	}
	if got.Title != "Persisted" || !got.Liked || got.ImageRef() != "p.png" {
		t.Errorf("loaded record = %+v", got)
	}
}

func TestNew_LoadFailureStartsEmpty(t *testing.T) {
	docs := &mockDocumentStore{loadErr: errors.New("permission denied")}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	c := New(docs, &mockAssetStore{}, logger)

	if c.Len() != 0 {
		t.Errorf("Len() = %d, want 0 after load failure", c.Len())
	}
	// And the catalog is usable.
	if _, _, err := c.Create(context.Background(), "A", "2024", "desc", ""); err != nil {
		t.Errorf("Create() after failed load error = %v", err)
	}
}
