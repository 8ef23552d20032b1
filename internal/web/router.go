package web

import (
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/vyaparsetu/portal/internal/handlers"
)

// Router wires every route. deps.Base is filled from pages when nil.
func Router(logger zerolog.Logger, deps handlers.Deps, pages fs.FS) http.Handler {
	r := chi.NewRouter()
	r.Use(Metrics)
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(Logger(logger))
	r.Use(chimw.Recoverer)

	if deps.Base == nil {
		deps.Base = mustParseTemplates(pages, deps.Location)
	}
	deps.Pages = pages
	deps.Logger = logger
	h := handlers.New(deps)

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", h.Health)

	// Login / logout
	r.Get("/", h.LoginForm())
	r.Post("/login", h.LoginSubmit())
	r.Post("/logout", h.Logout)

	// Agent dashboard (any signed-in identity sees its own registrations)
	r.Route("/dashboard", func(dr chi.Router) {
		dr.Use(h.RequireSignedIn)
		dr.Get("/", h.Dashboard())
		dr.Get("/stream", h.DashboardStream())
		dr.Get("/new", h.NewRegistrationForm())
		dr.Post("/registrations", h.CreateRegistration())
		dr.Get("/registrations/{regID}/delete", h.ConfirmDeleteOwn())
		dr.Post("/registrations/{regID}/delete", h.DeleteOwn)
		dr.Get("/registrations/{regID}/files/{field}", h.OwnAttachment)
	})

	// Admin
	r.Route("/admin", func(ar chi.Router) {
		ar.Use(h.RequireAdmin)
		ar.Get("/", h.AdminDashboard())
		ar.Get("/export.pdf", h.AdminExport("pdf"))
		ar.Get("/export.csv", h.AdminExport("csv"))
		ar.Get("/export.html", h.AdminExport("html"))
		ar.Post("/agents/{agentID}/mobile", h.AdminSaveMobile)
		ar.Get("/registrations/{agentID}/{regID}/delete", h.AdminConfirmDelete())
		ar.Post("/registrations/{agentID}/{regID}/delete", h.AdminRegDelete)
		ar.Get("/registrations/{agentID}/{regID}/files/{field}", h.AdminAttachment)
		ar.Get("/registrations/{agentID}/{regID}/files/{field}/qr.png", h.AttachmentQR)
	})

	// JSON API
	r.Route("/api/v1", func(api chi.Router) {
		api.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"*"},
			AllowedMethods:   []string{"GET", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
		api.With(h.RequireSignedIn).Get("/me", h.APIMe)
		api.With(h.RequireAdmin).Get("/admin/report", h.APIAdminReport)
	})

	return r
}

func mustParseTemplates(pages fs.FS, loc *time.Location) *template.Template {
	p := template.New("").Funcs(handlers.TemplateFuncs(loc))
	p = template.Must(p.ParseFS(pages, "layouts/*.tmpl"))
	p = template.Must(p.ParseFS(pages, "partials/*.tmpl"))
	return p
}
