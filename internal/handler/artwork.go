// Package handler contains the HTTP layer of the application.
//
// Handlers parse requests, call into the catalog engine, and write
// responses. They hold no business logic: validation and the positional
// index rules live in the catalog, error-to-status mapping lives in
// response.go.
package handler

import (
	"encoding/json"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/sakif/artfolio/internal/assets"
	"github.com/sakif/artfolio/internal/catalog"
)

// maxUploadBytes caps multipart form memory for image uploads (32 MB).
const maxUploadBytes = 32 << 20

// ArtworkHandler manages CRUD operations for artwork records.
type ArtworkHandler struct {
	catalog *catalog.Catalog
	assets  assets.Store
	logger  *slog.Logger
}

// NewArtworkHandler creates a new ArtworkHandler.
func NewArtworkHandler(cat *catalog.Catalog, assetStore assets.Store, logger *slog.Logger) *ArtworkHandler {
	return &ArtworkHandler{
		catalog: cat,
		assets:  assetStore,
		logger:  logger,
	}
}

// artworkRequest is the JSON body accepted by create and update.
type artworkRequest struct {
	Title       string `json:"title"`
	Date        string `json:"date"`
	Description string `json:"description"`
}

// HandleList returns (index, artwork) pairs for the whole collection.
//
// HTTP: GET /api/artworks?q=searchterm
// The query matches titles only, case-insensitive substring.
func (h *ArtworkHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.catalog.List(r.URL.Query().Get("q")))
}

// HandleFavourites returns the liked records, searched over title OR
// description.
//
// HTTP: GET /api/artworks/favourites?q=searchterm
func (h *ArtworkHandler) HandleFavourites(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.catalog.Favourites(r.URL.Query().Get("q")))
}

// HandleCreate adds a new record.
//
// HTTP: POST /api/artworks
// Accepts either a JSON body {"title","date","description"} or a
// multipart form with the same fields plus an optional "image" file.
// The uploaded image goes to the asset store first; the catalog only
// ever sees the resulting reference.
func (h *ArtworkHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req artworkRequest
	var imageRef string

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			h.logger.Warn("invalid multipart form", slog.String("error", err.Error()))
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "bad_request", Message: "invalid multipart form"})
			return
		}
		req.Title = r.FormValue("title")
		req.Date = r.FormValue("date")
		req.Description = r.FormValue("description")

		file, header, err := r.FormFile("image")
		switch {
		case err == http.ErrMissingFile:
			// Image is optional.
		case err != nil:
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "bad_request", Message: "invalid image upload"})
			return
		default:
			defer file.Close()
			ref, err := h.assets.StoreAsset(file, header.Filename)
			if err != nil {
				h.logger.Error("failed to store uploaded image",
					slog.String("filename", header.Filename),
					slog.String("error", err.Error()),
				)
				writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "storage_error", Message: "failed to store image"})
				return
			}
			imageRef = ref
		}
	} else {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.logger.Warn("invalid artwork JSON", slog.String("error", err.Error()))
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "bad_request", Message: "invalid JSON body"})
			return
		}
	}

	index, artwork, err := h.catalog.Create(r.Context(), req.Title, req.Date, req.Description, imageRef)
	if err != nil {
		// A record that failed validation must not leave an orphaned asset.
		if imageRef != "" {
			if cleanupErr := h.assets.DeleteAsset(imageRef); cleanupErr != nil {
				h.logger.Warn("failed to clean up orphaned image",
					slog.String("image", imageRef),
					slog.String("error", cleanupErr.Error()),
				)
			}
		}
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, catalog.Entry{Index: index, Artwork: artwork})
}

// HandleGet returns the record at a positional index (read-for-edit).
//
// HTTP: GET /api/artworks/{index}
func (h *ArtworkHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	index, ok := parseIndex(w, r)
	if !ok {
		return
	}

	artwork, err := h.catalog.Get(index)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, catalog.Entry{Index: index, Artwork: artwork})
}

// HandleUpdate replaces the text fields of a record; image and liked
// survive untouched.
//
// HTTP: PUT /api/artworks/{index}
// BODY: {"title","date","description"}
func (h *ArtworkHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	index, ok := parseIndex(w, r)
	if !ok {
		return
	}

	var req artworkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid artwork JSON", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "bad_request", Message: "invalid JSON body"})
		return
	}

	artwork, err := h.catalog.Update(r.Context(), index, req.Title, req.Date, req.Description)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, catalog.Entry{Index: index, Artwork: artwork})
}

// HandleDelete removes a record. Later indices shift down by one, so any
// index the client still holds is stale after this returns.
//
// HTTP: DELETE /api/artworks/{index}
func (h *ArtworkHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	index, ok := parseIndex(w, r)
	if !ok {
		return
	}

	if err := h.catalog.Delete(r.Context(), index); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleToggleLike flips the liked flag.
//
// HTTP: POST /api/artworks/{index}/like
// An invalid or non-numeric index answers 204 rather than 404: the
// toggle is a silent no-op on records that no longer exist.
func (h *ArtworkHandler) HandleToggleLike(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	artwork, err := h.catalog.ToggleLike(r.Context(), index)
	if err != nil {
		writeError(w, err)
		return
	}
	if artwork == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, catalog.Entry{Index: index, Artwork: *artwork})
}

// HandleImage serves a stored asset.
//
// HTTP: GET /images/{ref}
func (h *ArtworkHandler) HandleImage(w http.ResponseWriter, r *http.Request) {
	path, err := h.assets.Path(r.PathValue("ref"))
	if err != nil {
		http.Error(w, "invalid image reference", http.StatusBadRequest)
		return
	}
	http.ServeFile(w, r, path)
}

// parseIndex extracts the {index} path parameter. A value that isn't an
// integer can't address any record, so it gets the same 404 an
// out-of-bounds index would.
func parseIndex(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := strings.TrimSpace(r.PathValue("index"))
	index, err := strconv.Atoi(raw)
	if err != nil {
		writeJSON(w, http.StatusNotFound, ErrorResponse{
			Error:   "not_found",
			Message: "no artwork at index " + strconv.Quote(raw),
		})
		return 0, false
	}
	return index, true
}
