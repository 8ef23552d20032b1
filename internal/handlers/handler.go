package handlers

import (
	"encoding/json"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/vyaparsetu/portal/internal/services"
	"github.com/vyaparsetu/portal/internal/store"
)

// Deps are the collaborators the handlers need.
type Deps struct {
	Store  store.Store
	Login  *services.LoginService
	Agents *services.AgentService
	Admin  *services.AdminService

	// Base holds layouts and partials; page files are parsed from Pages.
	Base  *template.Template
	Pages fs.FS

	MaxAttachmentBytes int64
	Location           *time.Location
	SecureCookies      bool
	Logger             zerolog.Logger
}

// Handler contains shared dependencies for all HTTP handlers.
type Handler struct {
	store  store.Store
	login  *services.LoginService
	agents *services.AgentService
	admin  *services.AdminService

	base  *template.Template
	pages fs.FS

	maxAttachment int64
	loc           *time.Location
	secureCookies bool
	logger        zerolog.Logger
}

func New(d Deps) *Handler {
	loc := d.Location
	if loc == nil {
		loc = time.UTC
	}
	return &Handler{
		store:         d.Store,
		login:         d.Login,
		agents:        d.Agents,
		admin:         d.Admin,
		base:          d.Base,
		pages:         d.Pages,
		maxAttachment: d.MaxAttachmentBytes,
		loc:           loc,
		secureCookies: d.SecureCookies,
		logger:        d.Logger.With().Str("component", "http").Logger(),
	}
}

// page clones the base set and adds one page file. It panics at route
// construction time when the page does not parse.
func (h *Handler) page(path string) *template.Template {
	view := template.Must(h.base.Clone())
	return template.Must(view.ParseFS(h.pages, path))
}

func (h *Handler) render(w http.ResponseWriter, view *template.Template, name string, status int, data map[string]any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := view.ExecuteTemplate(w, name, data); err != nil {
		h.logger.Error().Err(err).Str("template", name).Msg("render failed")
	}
}

// JSON sends a JSON response with the given status code.
func (h *Handler) JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// Error sends a JSON error response with the given status code.
func (h *Handler) Error(w http.ResponseWriter, status int, message string) {
	h.JSON(w, status, map[string]string{"error": message})
}
