// Package server provides the HTTP server and routing.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/fairlens/fairlens/internal/database"
	"github.com/fairlens/fairlens/internal/events"
	countrieshandlers "github.com/fairlens/fairlens/internal/modules/countries/handlers"
	sessionhandlers "github.com/fairlens/fairlens/internal/modules/sessions/handlers"
	settingshandlers "github.com/fairlens/fairlens/internal/modules/settings/handlers"
)

// Config holds server configuration.
type Config struct {
	Log              zerolog.Logger
	Port             int
	DevMode          bool
	ReferenceDB      *database.DB
	SessionsDB       *database.DB
	EventBus         *events.Bus
	CountryHandlers  *countrieshandlers.Handler
	SessionHandlers  *sessionhandlers.Handler
	SettingsHandlers *settingshandlers.Handler
}

// Server is the HTTP server.
type Server struct {
	router           *chi.Mux
	server           *http.Server
	log              zerolog.Logger
	countryHandlers  *countrieshandlers.Handler
	sessionHandlers  *sessionhandlers.Handler
	settingsHandlers *settingshandlers.Handler
	systemHandlers   *SystemHandlers
	eventsStream     *EventsStreamHandler
}

// New creates a new HTTP server.
func New(cfg Config) *Server {
	s := &Server{
		router:           chi.NewRouter(),
		log:              cfg.Log.With().Str("component", "server").Logger(),
		countryHandlers:  cfg.CountryHandlers,
		sessionHandlers:  cfg.SessionHandlers,
		settingsHandlers: cfg.SettingsHandlers,
		systemHandlers:   NewSystemHandlers(cfg.Log, cfg.ReferenceDB, cfg.SessionsDB),
		eventsStream:     NewEventsStreamHandler(cfg.EventBus, cfg.Log),
	}

	s.setupMiddleware(cfg.DevMode)
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // SSE connections outlive any fixed write deadline
		IdleTimeout:  60 * time.Second,
	}

	return s
}

func (s *Server) setupMiddleware(devMode bool) {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if !devMode {
		s.router.Use(middleware.Compress(5))
	}
}

func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Route("/countries", func(r chi.Router) {
			r.Get("/", s.countryHandlers.HandleList)
			r.Get("/{iso}", s.countryHandlers.HandleGet)
		})

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", s.sessionHandlers.HandleCreate)
			r.Get("/", s.sessionHandlers.HandleList)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.sessionHandlers.HandleGet)
				r.Delete("/", s.sessionHandlers.HandleDelete)
				r.Post("/save", s.sessionHandlers.HandleSave)

				r.Put("/weights", s.sessionHandlers.HandleSetWeights)
				r.Put("/selection", s.sessionHandlers.HandleSetSelection)
				r.Put("/strategy", s.sessionHandlers.HandleSetStrategy)
				r.Put("/effectiveness", s.sessionHandlers.HandleSetEffectiveness)
				r.Put("/focus", s.sessionHandlers.HandleSetFocus)
				r.Put("/costs", s.sessionHandlers.HandleSetCosts)

				r.Get("/risk", s.sessionHandlers.HandleRisk)
				r.Get("/budget", s.sessionHandlers.HandleBudget)
				r.Post("/optimize", s.sessionHandlers.HandleOptimize)
			})
		})

		r.Route("/settings", func(r chi.Router) {
			r.Get("/", s.settingsHandlers.HandleGetAll)
			r.Put("/{key}", s.settingsHandlers.HandleUpdate)
			r.Delete("/{key}", s.settingsHandlers.HandleDelete)
		})

		r.Get("/events/stream", s.eventsStream.ServeHTTP)

		r.Route("/system", func(r chi.Router) {
			r.Get("/health", s.systemHandlers.HandleHealth)
		})
	})
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.server.Addr).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"healthy","service":"fairlens"}`))
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}
