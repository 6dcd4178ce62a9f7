// Package server exposes the operator surface: a small status API and
// the WebSocket stream of decisions.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/alanyoungcy/betalert/internal/domain"
	"github.com/alanyoungcy/betalert/internal/server/ws"
)

// Config holds the HTTP server configuration.
type Config struct {
	Port int
}

// Status is the snapshot served by /api/status.
type Status struct {
	Mode          string          `json:"mode"`
	UptimeSeconds int64           `json:"uptime_seconds"`
	LedgerSize    int             `json:"ledger_size"`
	Accounts      []AccountStatus `json:"accounts"`
}

// AccountStatus is one account's live view.
type AccountStatus struct {
	Name     string `json:"name"`
	Active   bool   `json:"active"`
	InFlight int    `json:"in_flight"`
}

// StatusSource supplies the dynamic parts of the status snapshot.
type StatusSource interface {
	LedgerSize() int
}

// Server is the HTTP + WebSocket operator API.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

func NewServer(cfg Config, mode string, source StatusSource, accounts []*domain.Account, hub *ws.Hub, logger *slog.Logger) *Server {
	startedAt := time.Now().UTC()
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, map[string]string{"status": "ok"})
	})

	mux.HandleFunc("GET /api/status", func(w http.ResponseWriter, _ *http.Request) {
		status := Status{
			Mode:          mode,
			UptimeSeconds: int64(time.Since(startedAt).Seconds()),
		}
		if source != nil {
			status.LedgerSize = source.LedgerSize()
		}
		for _, a := range accounts {
			status.Accounts = append(status.Accounts, AccountStatus{
				Name:     a.Name,
				Active:   a.Active,
				InFlight: a.InFlight(),
			})
		}
		writeJSON(w, status)
	})

	if hub != nil {
		mux.HandleFunc("GET /ws", hub.HandleWS)
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      requestLogging(logger)(mux),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return &Server{
		httpServer: srv,
		logger:     logger.With("component", "server"),
	}
}

// Start blocks until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server: listen: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests within the context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func requestLogging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			logger.Debug("request",
				"method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
		})
	}
}
