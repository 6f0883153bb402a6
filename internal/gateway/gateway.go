// ABOUTME: Orchestrator that wires config, store, presence, gate and HTTP server
// ABOUTME: Owns startup order and graceful shutdown of the deskchat server

package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/deskchat/deskchat/internal/auth"
	"github.com/deskchat/deskchat/internal/chat"
	"github.com/deskchat/deskchat/internal/config"
	"github.com/deskchat/deskchat/internal/httpapi"
	"github.com/deskchat/deskchat/internal/presence"
	"github.com/deskchat/deskchat/internal/store"
)

// shutdownTimeout bounds how long graceful shutdown waits for in-flight
// requests and open websockets.
const shutdownTimeout = 10 * time.Second

// Gateway wires the deskchat server components together.
type Gateway struct {
	cfg        *config.Config
	store      *store.SQLiteStore
	directory  *presence.Directory
	httpServer *http.Server
	logger     *slog.Logger
}

// New builds a Gateway from configuration: store, token verifier, presence
// directory, message router, connection gate and REST API, all behind one
// HTTP server.
func New(cfg *config.Config, logger *slog.Logger) (*Gateway, error) {
	if logger == nil {
		logger = slog.Default()
	}

	sqlStore, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}

	verifier := auth.NewJWTVerifier([]byte(cfg.Auth.JWTSecret))
	directory := presence.NewDirectory(logger)
	router := chat.NewRouter(sqlStore, sqlStore, directory, logger)
	gate := chat.NewGate(verifier, directory, router, sqlStore, logger)
	api := httpapi.New(sqlStore, verifier, cfg.Auth.TokenTTL, logger)

	g := &Gateway{
		cfg:       cfg,
		store:     sqlStore,
		directory: directory,
		logger:    logger.With("component", "gateway"),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", g.handleHealth)
	api.Routes(mux, gate, cfg.Static.Dir)

	g.httpServer = &http.Server{
		Addr:    cfg.Server.HTTPAddr,
		Handler: mux,
	}

	return g, nil
}

// Run starts the HTTP server and blocks until ctx is cancelled or the server
// fails, then shuts down gracefully.
func (g *Gateway) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		g.logger.Info("HTTP server listening", "addr", g.httpServer.Addr)
		if err := g.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	var serverErr error
	select {
	case <-ctx.Done():
		g.logger.Info("shutdown signal received")
	case serverErr = <-errCh:
		g.logger.Error("HTTP server failed", "error", serverErr)
	}

	shutdownErr := g.shutdown()
	if serverErr != nil {
		return serverErr
	}
	return shutdownErr
}

// shutdown stops the HTTP server, which closes open websockets, then closes
// the store.
func (g *Gateway) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := g.httpServer.Shutdown(ctx); err != nil {
		// Open websockets hold Shutdown past the deadline; force-close them.
		g.logger.Warn("graceful shutdown timed out, closing connections", "error", err)
		_ = g.httpServer.Close()
	}

	if err := g.store.Close(); err != nil {
		return fmt.Errorf("closing store: %w", err)
	}

	g.logger.Info("gateway stopped")
	return nil
}

// handleHealth reports liveness and the current presence count.
func (g *Gateway) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{"status":"ok","online":%d}`+"\n", g.directory.Count())
}
