package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/nikhilbhutani/ttsproxy/internal/api/handlers"
	"github.com/nikhilbhutani/ttsproxy/internal/api/middleware"
	"github.com/nikhilbhutani/ttsproxy/internal/config"
	"github.com/nikhilbhutani/ttsproxy/internal/metrics"
	"github.com/nikhilbhutani/ttsproxy/internal/synthesis"
)

type Router struct {
	mux     *chi.Mux
	cfg     *config.Config
	svc     *synthesis.Service
	metrics *metrics.Metrics
}

func NewRouter(cfg *config.Config, svc *synthesis.Service, m *metrics.Metrics) *Router {
	return &Router{
		mux:     chi.NewRouter(),
		cfg:     cfg,
		svc:     svc,
		metrics: m,
	}
}

func (rt *Router) Setup() http.Handler {
	r := rt.mux

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(rt.cfg.Server.CORSOrigins))

	// Probes (never rate limited)
	health := handlers.NewHealthHandler()
	r.Get("/health", health.Health)
	if rt.metrics != nil {
		r.Method(http.MethodGet, "/metrics", rt.metrics.Handler())
	}

	// Synthesis; rate limiting happens inside the pipeline
	audioH := handlers.NewAudioHandler(rt.svc, rt.cfg.RateLimit.Window)
	r.Post("/generate-audio", audioH.Generate)

	return r
}
