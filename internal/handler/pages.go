package handler

import (
	"html/template"
	"log/slog"
	"net/http"
	"path/filepath"

	"github.com/sakif/artfolio/internal/catalog"
)

// PageHandler renders the server-side HTML views: the home gallery and
// the favourites gallery.
//
// Templates are parsed once at startup. Rendering goes through
// html/template, whose contextual auto-escaping means artwork titles and
// descriptions are treated as untrusted text: a record titled
// `<script>` displays literally instead of executing.
type PageHandler struct {
	home       *template.Template
	favourites *template.Template
	catalog    *catalog.Catalog
	logger     *slog.Logger
}

// NewPageHandler parses the gallery templates from templateDir.
// Each page shares base.html and contributes its own "content" block.
func NewPageHandler(templateDir string, cat *catalog.Catalog, logger *slog.Logger) (*PageHandler, error) {
	home, err := template.ParseFiles(
		filepath.Join(templateDir, "base.html"),
		filepath.Join(templateDir, "gallery.html"),
	)
	if err != nil {
		return nil, err
	}

	favourites, err := template.ParseFiles(
		filepath.Join(templateDir, "base.html"),
		filepath.Join(templateDir, "favourites.html"),
	)
	if err != nil {
		return nil, err
	}

	return &PageHandler{
		home:       home,
		favourites: favourites,
		catalog:    cat,
		logger:     logger,
	}, nil
}

// pageData is the payload every gallery view receives.
type pageData struct {
	Title   string
	Query   string
	Entries []catalog.Entry
}

// HandleHome serves the main gallery with optional title search.
//
// HTTP: GET /?q=searchterm
func (h *PageHandler) HandleHome(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	h.render(w, h.home, pageData{
		Title:   "Artfolio",
		Query:   query,
		Entries: h.catalog.List(query),
	})
}

// HandleFavourites serves the liked-only gallery; the search covers
// titles and descriptions.
//
// HTTP: GET /favourites?q=searchterm
func (h *PageHandler) HandleFavourites(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	h.render(w, h.favourites, pageData{
		Title:   "Artfolio - Favourites",
		Query:   query,
		Entries: h.catalog.Favourites(query),
	})
}

func (h *PageHandler) render(w http.ResponseWriter, tmpl *template.Template, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.ExecuteTemplate(w, "base", data); err != nil {
		h.logger.Error("failed to render template",
			slog.String("page", data.Title),
			slog.String("error", err.Error()),
		)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}
