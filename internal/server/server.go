// Package server is the reference backend for the gateway wire protocol.
// It serves question banks from package bank and keeps per-user documents
// in package store.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/abhisek/quizmate/internal/bank"
	"github.com/abhisek/quizmate/internal/store"
)

// Config configures a Server.
type Config struct {
	// Addr is the listen address. Default: ":5000".
	Addr string

	// SessionTTL is how long a login session stays valid. Default: 30 days.
	SessionTTL time.Duration

	// Version is reported by GET /api/version.
	Version string

	// Logger receives request logs. Default: discard.
	Logger *slog.Logger

	// CleanupInterval is how often expired login sessions are purged.
	// Default: 1h.
	CleanupInterval time.Duration
}

// Server handles the quiz API.
type Server struct {
	cfg     Config
	catalog *bank.Catalog
	users   store.UserRepo
	logins  store.LoginRepo
	docs    store.DocumentRepo
	log     *slog.Logger
	now     func() time.Time

	mu    sync.Mutex
	locks map[int]*sync.Mutex
}

// New creates a server over catalog and st.
func New(cfg Config, catalog *bank.Catalog, st *store.Store) *Server {
	if cfg.Addr == "" {
		cfg.Addr = ":5000"
	}
	if cfg.SessionTTL == 0 {
		cfg.SessionTTL = 30 * 24 * time.Hour
	}
	if cfg.CleanupInterval == 0 {
		cfg.CleanupInterval = time.Hour
	}
	if cfg.Version == "" {
		cfg.Version = "dev"
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Server{
		cfg:     cfg,
		catalog: catalog,
		users:   st.UserRepo(),
		logins:  st.LoginRepo(),
		docs:    st.DocumentRepo(),
		log:     logger,
		now:     time.Now,
		locks:   make(map[int]*sync.Mutex),
	}
}

// Handler returns the HTTP handler for the API.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/version", s.handleVersion)
	mux.HandleFunc("POST /api/login", s.handleLogin)
	mux.HandleFunc("POST /api/register", s.handleRegister)
	mux.HandleFunc("POST /api/logout", s.handleLogout)

	mux.Handle("GET /api/units", s.requireUser(s.handleUnits))
	mux.Handle("GET /api/user/data", s.requireUser(s.handleUserData))
	mux.Handle("GET /api/flags", s.requireUser(s.handleFlags))
	mux.Handle("POST /api/flags", s.requireUser(s.handleUpdateFlags))
	mux.Handle("GET /api/question", s.requireUser(s.handleQuestion))
	mux.Handle("POST /api/answer", s.requireUser(s.handleAnswer))
	mux.Handle("POST /api/star", s.requireUser(s.handleStar))
	mux.Handle("POST /api/progress/save", s.requireUser(s.handleProgressSave))
	mux.Handle("POST /api/start", s.requireUser(s.handleStart))
	mux.Handle("POST /api/clear_unit", s.requireUser(s.handleClearUnit))

	return s.logRequests(mux)
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.log.Info("server listening", "addr", s.cfg.Addr, "courses", s.catalog.Names())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.log.Info("server shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		s.cleanupLoop(gctx)
		return nil
	})
	return g.Wait()
}

func (s *Server) cleanupLoop(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.CleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.logins.DeleteExpired(ctx, s.now())
			if err != nil {
				s.log.Warn("purge expired sessions", "error", err)
				continue
			}
			if n > 0 {
				s.log.Info("purged expired sessions", "count", n)
			}
		}
	}
}
