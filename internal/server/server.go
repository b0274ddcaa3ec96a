// Package server provides the HTTP API for the oshiete tutor.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/paperlab/oshiete/internal/config"
	"github.com/paperlab/oshiete/internal/extract"
	"github.com/paperlab/oshiete/internal/storage"
	"github.com/paperlab/oshiete/internal/tutor"
)

// Server is the HTTP server for the tutor API. Each session is owned by one
// controller; the server serializes events per session and rejects concurrent
// ones with 409.
type Server struct {
	cfg       *config.Config
	connect   tutor.ClientFactory
	extractor *extract.Extractor
	archive   storage.Storage
	sessions  *registry
	logger    *zap.Logger
	server    *http.Server
}

// NewServer creates a server with the given dependencies. archive may be nil
// to run without a transcript archive.
func NewServer(cfg *config.Config, connect tutor.ClientFactory, archive storage.Storage, logger *zap.Logger) *Server {
	return &Server{
		cfg:       cfg,
		connect:   connect,
		extractor: extract.NewExtractor(),
		archive:   archive,
		sessions:  newRegistry(),
		logger:    logger,
	}
}

func (s *Server) router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))
	r.Use(middleware.Compress(5))

	r.Post("/api/v1/sessions", s.handleCreateSession)
	r.Get("/api/v1/sessions/{id}", s.handleGetSession)
	r.Delete("/api/v1/sessions/{id}", s.handleDeleteSession)
	r.Post("/api/v1/sessions/{id}/paper", s.handleUploadPaper)
	r.Post("/api/v1/sessions/{id}/messages", s.handleSendMessage)
	r.Post("/api/v1/sessions/{id}/clear", s.handleClear)
	r.Post("/api/v1/sessions/{id}/reinit", s.handleReinit)
	r.Get("/api/v1/sessions/{id}/find", s.handleFind)
	r.Get("/health", s.handleHealth)
	return r
}

// Handler returns the full API handler, for embedding and tests.
func (s *Server) Handler() http.Handler {
	return s.router()
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Server.Host, s.cfg.Server.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.router(),
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
