package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"zenremind/internal/logger"
	"zenremind/internal/service"
)

// Server wraps the HTTP server carrying the reminder message contract.
type Server struct {
	http *http.Server
	log  logger.Logger
}

// NewRouter builds the chi router for the message contract.
func NewRouter(store *service.Store, log logger.Logger) http.Handler {
	h := &handlers{store: store, log: log, now: time.Now}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(10 * time.Second))

	r.Get("/healthz", h.healthz)
	r.Route("/api", func(r chi.Router) {
		r.Post("/messages", h.handleMessage)
		r.Get("/reminders", h.listReminders)
	})

	return r
}

// New builds the router and the underlying http.Server.
func New(addr string, store *service.Store, log logger.Logger) *Server {
	return &Server{
		http: &http.Server{
			Addr:              addr,
			Handler:           NewRouter(store, log),
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		log: log,
	}
}

// Start runs the server until error or shutdown.
func (s *Server) Start() error {
	s.log.Info("http server listening", logger.String("addr", s.http.Addr))
	err := s.http.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Stop gracefully shuts the server down within the context deadline.
func (s *Server) Stop(ctx context.Context) error {
	s.log.Info("http server shutting down")
	return s.http.Shutdown(ctx)
}
