package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// RouterOptions carries what NewRouter needs besides the handlers.
type RouterOptions struct {
	RateLimitRPS   float64
	RateLimitBurst int
	// AuditEnabled mounts the conversions listing.
	AuditEnabled bool
}

// NewRouter wires the upload form, the download endpoint and the JSON API.
func NewRouter(upload *UploadHandler, api *APIHandler, opts RouterOptions) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(ContextualLoggerMiddleware)
	r.Use(ProxyHeadersMiddleware)
	r.Use(RateLimitMiddleware(opts.RateLimitRPS, opts.RateLimitBurst))

	r.Get("/", upload.HandleIndex)
	r.Post("/upload", upload.HandleUpload)

	r.Route("/api", func(r chi.Router) {
		r.Get("/info", api.HandleInfo)
		if opts.AuditEnabled {
			r.Get("/conversions", api.HandleListConversions)
		}
	})

	return r
}
