// Package web hosts the HTTP sidecar: a status endpoint for uptime probes
// and the keep-alive pinger that prevents free-tier hosts from idling.
package web

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"log/slog"

	"github.com/shomybay/marketbot/core/buildinfo"
	"github.com/shomybay/marketbot/market/store"
)

// Status is the JSON document served at /status.
type Status struct {
	Status        string `json:"status"`
	Users         int    `json:"users"`
	Listings      int    `json:"listings"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	Version       string `json:"version"`
}

// Server exposes bot health over HTTP.
type Server struct {
	store     store.Store
	startedAt time.Time
	srv       *http.Server
}

// NewServer builds the status server listening on addr.
func NewServer(addr string, st store.Store, startedAt time.Time) *Server {
	s := &Server{
		store:     st,
		startedAt: startedAt,
	}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /status", s.handleStatus)
	mux.HandleFunc("GET /", s.handleIndex)
	s.srv = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Run serves until the context is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		webLog(slog.LevelInfo, "status server listening",
			slog.String("event", "web.listen"),
			slog.String("listen", s.srv.Addr),
		)
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("status server shutdown: %w", err)
		}
		return <-errCh
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("status server: %w", err)
		}
		return nil
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	counts, err := s.store.Counts(r.Context())
	if err != nil {
		webLog(slog.LevelError, "status counts failed",
			slog.String("event", "web.status"),
			slog.String("err", err.Error()),
		)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	doc := Status{
		Status:        "ok",
		Users:         counts.Users,
		Listings:      counts.Listings,
		UptimeSeconds: int64(time.Since(s.startedAt).Seconds()),
		Version:       buildinfo.Version,
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if err := json.NewEncoder(w).Encode(doc); err != nil {
		webLog(slog.LevelError, "status encode failed",
			slog.String("event", "web.status"),
			slog.String("err", err.Error()),
		)
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w,
		"<html><body><h1>Shomy Bay Bot</h1><p>Бот работает. Аптайм: %s</p></body></html>",
		time.Since(s.startedAt).Round(time.Second),
	)
}
