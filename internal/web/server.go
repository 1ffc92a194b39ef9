package web

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/conveyor-ci/conveyor/internal/launcher"
	"github.com/conveyor-ci/conveyor/internal/runstore"
)

// Server receives webhook events and exposes run results. Each
// accepted event launches a run in its own goroutine with its own
// workspace; the handler does not wait for the run to finish.
type Server struct {
	launcher *launcher.Launcher
	store    *runstore.Store
	log      *slog.Logger
	port     int
}

// NewServer creates a webhook server on the given port.
func NewServer(l *launcher.Launcher, store *runstore.Store, log *slog.Logger, port int) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{launcher: l, store: store, log: log, port: port}
}

// Routes builds the HTTP routing table.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Post("/events", s.handleEvent)
	r.Get("/runs", s.handleListRuns)
	r.Get("/runs/{id}", s.handleGetRun)
	r.Get("/runs/{id}/steps/{step}/log", s.handleStepLog)
	r.Get("/healthz", s.handleHealth)

	return r
}

// Start runs the server until ctx is cancelled, then shuts down
// gracefully. In-flight runs keep executing; only the listener stops.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           s.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("webhook server listening", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
