package rest

import (
	"net/http"

	"studycapture/application/ports"
	"studycapture/application/services"
	"studycapture/infrastructure/config"
	"studycapture/infrastructure/observability"
	"studycapture/interfaces/http/rest/handlers"
	"studycapture/interfaces/http/rest/middleware"
	appErrors "studycapture/pkg/errors"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// Router creates and configures the HTTP router
type Router struct {
	pipeline  *services.CapturePipeline
	store     ports.Store
	collector *observability.Collector
	cfg       *config.Config
	logger    *zap.Logger
}

// NewRouter creates a new router instance. collector may be nil, in which
// case /metrics is not mounted.
func NewRouter(
	pipeline *services.CapturePipeline,
	store ports.Store,
	collector *observability.Collector,
	cfg *config.Config,
	logger *zap.Logger,
) *Router {
	return &Router{
		pipeline:  pipeline,
		store:     store,
		collector: collector,
		cfg:       cfg,
		logger:    logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	errorHandler := appErrors.NewErrorHandler(rt.logger, rt.cfg.DebugResponses())

	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(middleware.Logger(rt.logger))
	router.Use(errorHandler.Middleware)
	if rt.cfg.Features.EnableTracing {
		router.Use(observability.TracingMiddleware(rt.cfg.Observability.ServiceName))
	}
	if rt.collector != nil {
		router.Use(observability.MetricsMiddleware(rt.collector))
	}

	// The browser extension posts from arbitrary page origins.
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   rt.cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"X-Request-ID", "X-Trace-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	status := handlers.NewStatusHandler(
		rt.store,
		rt.cfg.Store.Path,
		observability.ServiceVersion,
		rt.pipeline.SyncEnabled(),
		errorHandler,
		rt.logger,
	)
	router.Get("/", status.Root)
	router.Get("/health", status.Health)
	router.Get("/ready", status.Ready)

	if rt.collector != nil {
		router.Method(http.MethodGet, "/metrics", rt.collector.Handler())
	}

	notes := handlers.NewNoteHandler(rt.store, rt.store, errorHandler, rt.logger)
	router.Get("/topics", notes.ListTopics)
	router.Route("/notes", func(r chi.Router) {
		r.Get("/", notes.ListNotes)
		r.Get("/{noteID}", notes.GetNote)
	})

	capture := handlers.NewCaptureHandler(rt.pipeline, rt.cfg.Server.MaxRequestSize, errorHandler, rt.logger)
	router.Post("/capture", capture.Capture)

	return router
}
