// Package server is the REST backend the terminal client talks to: client
// records, notes, tracking entries and SharePoint links over SQLite.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"greenlight-cli/internal/bus"
	"greenlight-cli/internal/logger"
	"greenlight-cli/internal/store"

	"github.com/google/uuid"
)

const DefaultSharePointBase = "https://mock.sharepoint.com"

type Config struct {
	Addr string
	DB   *store.DB
	// Bus receives lifecycle events; nil means a NullBus.
	Bus    bus.Bus
	Logger *slog.Logger
	Tokens TokenResolver
	// ExchangeToken is handed out by the mock Microsoft exchange.
	ExchangeToken  string
	SharePointBase string

	// Now and NewID are overridable for tests.
	Now   func() time.Time
	NewID func() string
}

type Server struct {
	cfg Config
	db  *store.DB
	bus bus.Bus
	log *slog.Logger
}

func NewServer(cfg Config) (*Server, error) {
	cfg.Addr = strings.TrimSpace(cfg.Addr)
	cfg.SharePointBase = strings.TrimRight(strings.TrimSpace(cfg.SharePointBase), "/")
	if cfg.DB == nil {
		return nil, errors.New("server: db is nil")
	}
	if cfg.Tokens == nil {
		return nil, errors.New("server: token resolver is nil")
	}
	if cfg.SharePointBase == "" {
		cfg.SharePointBase = DefaultSharePointBase
	}
	if cfg.ExchangeToken == "" {
		cfg.ExchangeToken = "mock-token"
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Bus == nil {
		cfg.Bus = bus.NewNullBus(cfg.Logger)
	}
	if cfg.Now == nil {
		cfg.Now = func() time.Time { return time.Now().UTC() }
	}
	if cfg.NewID == nil {
		cfg.NewID = uuid.NewString
	}
	return &Server{cfg: cfg, db: cfg.DB, bus: cfg.Bus, log: cfg.Logger}, nil
}

func (s *Server) Addr() string { return s.cfg.Addr }

func (s *Server) Handler() http.Handler {
	auth := AuthMiddleware(s.cfg.Tokens)
	protected := func(h http.HandlerFunc) http.Handler { return auth(h) }

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("POST /api/auth/microsoft", s.handleMicrosoftAuth)
	mux.Handle("GET /api/clients", protected(s.handleListClients))
	mux.Handle("POST /api/clients", protected(s.handleCreateClient))
	mux.Handle("GET /api/clients/{id}", protected(s.handleGetClient))
	mux.Handle("PUT /api/clients/{id}", protected(s.handleUpdateClient))
	mux.Handle("DELETE /api/clients/{id}", protected(s.handleDeleteClient))
	mux.Handle("POST /api/clients/{id}/notes", protected(s.handleAddNote))
	mux.Handle("POST /api/clients/{id}/tracking", protected(s.handleAddTracking))
	mux.Handle("GET /api/clients/{id}/sharepoint-url", protected(s.handleSharePointURL))
	return s.withRequestLog(mux)
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if s.cfg.Addr == "" {
		return errors.New("server: addr is empty")
	}
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	s.log.Info("listening", "addr", s.cfg.Addr)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	}
}

type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.code = code
	r.ResponseWriter.WriteHeader(code)
}

// withRequestLog tags each request with an id and logs one line per request.
func (s *Server) withRequestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		ctx := logger.WithRequestID(r.Context(), id)

		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(rec, r.WithContext(ctx))
		s.log.InfoContext(ctx, "request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.code,
			"dur_ms", time.Since(start).Milliseconds(),
		)
	})
}

func (s *Server) publish(ctx context.Context, e bus.Event) {
	if e.At.IsZero() {
		e.At = s.cfg.Now()
	}
	if p, ok := PrincipalFromContext(ctx); ok {
		e.Actor = p.Email
	}
	if err := s.bus.Publish(ctx, e); err != nil {
		s.log.WarnContext(ctx, "publish event", "kind", e.Kind, "err", err)
	}
}
