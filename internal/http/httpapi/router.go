package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/sagi-ba/photo-to-photo/internal/http/handlers"
	"github.com/sagi-ba/photo-to-photo/internal/infra"
	appmw "github.com/sagi-ba/photo-to-photo/internal/middleware"
)

// Options tunes router-level concerns.
type Options struct {
	Logger         infra.Logger
	DefaultLocale  string
	CountryLookup  appmw.CountryLookup
	AllowedOrigins []string
	RequestsPerMin int
	GeneratePerMin int
}

// NewRouter assembles the HTTP surface.
func NewRouter(app *handlers.App, opts Options) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RealIP, chimw.Recoverer)
	r.Use(appmw.RequestID)
	r.Use(appmw.Logger(opts.Logger))
	if len(opts.AllowedOrigins) > 0 {
		r.Use(appmw.CORS(opts.AllowedOrigins))
	}
	if opts.RequestsPerMin > 0 {
		r.Use(appmw.RateLimit(opts.RequestsPerMin, time.Minute))
	}
	r.Use(appmw.I18N(opts.DefaultLocale, opts.CountryLookup))

	r.Get("/v1/healthz", app.Health)
	r.Get("/v1/stats", app.Stats)

	r.Route("/v1/session", func(r chi.Router) {
		r.Get("/", app.SessionView)
		r.Post("/restart", app.SessionRestart)
	})

	r.Get("/v1/styles", app.StylesList)
	r.Get("/v1/samples", app.SamplesList)

	r.Route("/v1/images", func(r chi.Router) {
		r.Post("/upload", app.ImageUpload)
		generateLimit := opts.GeneratePerMin
		if generateLimit <= 0 {
			generateLimit = 6
		}
		r.With(appmw.RateLimit(generateLimit, time.Minute)).Post("/generate", app.ImageGenerate)
		r.Post("/share/whatsapp", app.ShareWhatsApp)
	})

	return r
}
