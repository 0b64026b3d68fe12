// Package httpapi wires the reelcast HTTP API.
package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"reelcast/internal/httpapi/handlers"
	"reelcast/internal/httpkit"
	"reelcast/internal/pkg/logger"
	"reelcast/internal/pkg/middleware"
)

type Deps struct {
	Handlers       handlers.Deps
	AllowedOrigins []string
	Log            *logger.Logger
}

func NewRouter(d Deps) http.Handler {
	log := logger.OrDefault(d.Log)
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logging(log))
	r.Use(middleware.Recovery(log))

	r.Use(httpkit.CORS(httpkit.CORSOptions{
		AllowedOrigins: d.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization", handlers.CredentialHeader},
		ExposedHeaders: []string{
			"X-Job-ID", "X-Has-Audio", "X-Estimated-Seconds",
			"X-Duration-Seconds", "X-Narration-Skipped", middleware.RequestIDHeader,
		},
		MaxAgeSeconds: 600,
	}))

	if d.Handlers.Log == nil {
		d.Handlers.Log = log
	}
	h := handlers.New(d.Handlers)
	wrap := func(fn middleware.ErrorHandlerFunc) http.HandlerFunc {
		return middleware.WrapHandler(log, fn)
	}

	// ---- HEALTH ----
	r.Get("/health", h.Health)

	// ---- RENDERS ----
	r.Post("/renders", wrap(h.PostRender))
	r.Post("/narration", wrap(h.PostNarration))

	// ---- JOBS ----
	r.Post("/jobs", wrap(h.PostJob))
	r.Get("/jobs", wrap(h.ListJobs))
	r.Get("/jobs/{jobId}", wrap(h.GetJob))
	r.Get("/jobs/{jobId}/video", wrap(h.StreamJobVideo))
	r.Delete("/jobs/{jobId}", wrap(h.DeleteJob))

	return r
}
