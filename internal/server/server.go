// Package server exposes the chat, debate, model catalog and history
// operations over HTTP.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/cors"

	"github.com/sorynlabs/soryn/internal/debate"
	"github.com/sorynlabs/soryn/internal/logger"
	"github.com/sorynlabs/soryn/internal/registry"
	"github.com/sorynlabs/soryn/internal/storage"
)

type Server struct {
	store     *storage.Store
	catalog   *registry.Manager
	providers debate.Inferencer
	engine    *debate.Engine
	router    *http.ServeMux
	addr      string
}

func NewServer(store *storage.Store, catalog *registry.Manager, providers debate.Inferencer, addr string) *Server {
	s := &Server{
		store:     store,
		catalog:   catalog,
		providers: providers,
		engine:    debate.NewEngine(catalog, providers),
		router:    http.NewServeMux(),
		addr:      addr,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	// Health check
	s.router.HandleFunc("GET /api/health", s.handleHealth)

	// Conversation routes
	s.router.HandleFunc("POST /chat", s.handleChat)
	s.router.HandleFunc("POST /debate", s.handleDebate)

	// History routes
	s.router.HandleFunc("GET /api/history", s.handleHistoryList)
	s.router.HandleFunc("GET /api/history/{type}/{id}", s.handleHistoryDetail)
	s.router.HandleFunc("DELETE /api/history/{type}/{id}", s.handleHistoryDelete)

	// Model catalog routes
	s.router.HandleFunc("GET /api/models", s.handleModelsList)
	s.router.HandleFunc("POST /api/models/remote", s.handleModelCreate)
	s.router.HandleFunc("PUT /api/models/remote/{id}", s.handleModelUpdate)
	s.router.HandleFunc("DELETE /api/models/remote/{id}", s.handleModelDelete)
}

// Handler returns the full route handler, wrapped with CORS and request
// logging.
func (s *Server) Handler() http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowedHeaders: []string{"Content-Type"},
	})
	return c.Handler(logRequests(s.router))
}

func (s *Server) Start() error {
	srv := &http.Server{
		Addr:        s.addr,
		Handler:     s.Handler(),
		ReadTimeout: 15 * time.Second,
		// The write timeout must outlast the slowest inference call.
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed", logger.Err(err))
			os.Exit(1)
		}
	}()

	slog.Info("api server listening", "addr", s.addr)

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	slog.Info("server shutdown complete")
	return nil
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		slog.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"duration_ms", time.Since(start).Milliseconds())
	})
}
