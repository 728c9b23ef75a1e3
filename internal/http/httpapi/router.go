package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"pichasafi/internal/http/handlers"
	"pichasafi/internal/middleware"
)

// Options bundles the router's optional pieces.
type Options struct {
	// Country resolves caller countries for access logs. Nil disables it.
	Country middleware.CountryLookup

	// StaticDir, when set, is served under /static/ so locally stored
	// images are reachable from WhatsApp.
	StaticDir string
}

func NewRouter(app *handlers.App, logger zerolog.Logger, opts Options) http.Handler {
	r := chi.NewRouter()
	r.Use(
		chimw.RealIP,
		middleware.RequestID,
		middleware.Origin(opts.Country),
		middleware.Logger(logger),
		chimw.Recoverer,
	)

	r.Get("/health", app.Health)

	r.Get("/webhook", app.VerifyWebhook)
	r.Post("/webhook", app.ReceiveWebhook)

	if opts.StaticDir != "" {
		fs := http.StripPrefix("/static/", http.FileServer(http.Dir(opts.StaticDir)))
		r.Get("/static/*", fs.ServeHTTP)
	}

	return r
}
