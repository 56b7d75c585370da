// Package http is the HTTP transport for the tracker: it maps routes onto
// query service operations and serializes their results as JSON.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/Chuchoruto/ISS-Tracker/internal/domain"
	"github.com/Chuchoruto/ISS-Tracker/internal/service"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Queries is the set of operations the transport exposes.
type Queries interface {
	Snapshot() ([]domain.StateVector, error)
	ListEpochs(limit, offset string) ([]string, error)
	GetEpoch(epoch string) (domain.StateVector, error)
	GetSpeed(epoch string) (service.Speed, error)
	GetLocation(ctx context.Context, epoch string) (service.Location, error)
	GetCurrent(ctx context.Context) (service.Current, error)
	Reload(ctx context.Context) (domain.SeriesSummary, error)
	Clear() domain.ClearOutcome
	Header() (map[string]string, error)
	Metadata() (map[string]string, error)
	Comments() ([]string, error)
}

// Server exposes the query API plus health, readiness, and metrics endpoints.
type Server struct {
	httpServer *http.Server
	queries    Queries
	logger     *slog.Logger
}

// NewServer creates an HTTP server with every tracker route registered.
func NewServer(addr string, queries Queries, ready sharedobs.ReadinessChecker, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       10 * time.Second,
			// Reloads fetch the upstream feed inside the request.
			WriteTimeout: 60 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		queries: queries,
		logger:  logger,
	}

	mux.HandleFunc("GET /{$}", s.handleSnapshot)
	mux.HandleFunc("GET /epochs", s.handleListEpochs)
	mux.HandleFunc("GET /epochs/{epoch}", s.handleEpoch)
	mux.HandleFunc("GET /epochs/{epoch}/speed", s.handleSpeed)
	mux.HandleFunc("GET /epochs/{epoch}/location", s.handleLocation)
	mux.HandleFunc("GET /now", s.handleNow)
	mux.HandleFunc("GET /header", s.handleHeader)
	mux.HandleFunc("GET /metadata", s.handleMetadata)
	mux.HandleFunc("GET /comment", s.handleComments)
	mux.HandleFunc("GET /help", handleHelp)
	mux.HandleFunc("POST /post-data", s.handleReload)
	mux.HandleFunc("DELETE /delete-data", s.handleClear)

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}
