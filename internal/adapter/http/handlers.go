package http

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/Chuchoruto/ISS-Tracker/internal/domain"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
)

func (s *Server) handleSnapshot(w http.ResponseWriter, _ *http.Request) {
	vectors, err := s.queries.Snapshot()
	s.respond(w, vectors, err)
}

func (s *Server) handleListEpochs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	epochs, err := s.queries.ListEpochs(q.Get("limit"), q.Get("offset"))
	s.respond(w, epochs, err)
}

func (s *Server) handleEpoch(w http.ResponseWriter, r *http.Request) {
	sv, err := s.queries.GetEpoch(r.PathValue("epoch"))
	s.respond(w, sv, err)
}

func (s *Server) handleSpeed(w http.ResponseWriter, r *http.Request) {
	speed, err := s.queries.GetSpeed(r.PathValue("epoch"))
	s.respond(w, speed, err)
}

func (s *Server) handleLocation(w http.ResponseWriter, r *http.Request) {
	loc, err := s.queries.GetLocation(r.Context(), r.PathValue("epoch"))
	s.respond(w, loc, err)
}

func (s *Server) handleNow(w http.ResponseWriter, r *http.Request) {
	cur, err := s.queries.GetCurrent(r.Context())
	s.respond(w, cur, err)
}

func (s *Server) handleHeader(w http.ResponseWriter, _ *http.Request) {
	header, err := s.queries.Header()
	s.respond(w, header, err)
}

func (s *Server) handleMetadata(w http.ResponseWriter, _ *http.Request) {
	meta, err := s.queries.Metadata()
	s.respond(w, meta, err)
}

func (s *Server) handleComments(w http.ResponseWriter, _ *http.Request) {
	comments, err := s.queries.Comments()
	s.respond(w, comments, err)
}

type reloadResponse struct {
	Status string               `json:"status"`
	Series domain.SeriesSummary `json:"series"`
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	// A client hanging up must not abort an install other callers may share.
	summary, err := s.queries.Reload(context.WithoutCancel(r.Context()))
	if err != nil {
		s.writeError(w, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, reloadResponse{Status: "loaded", Series: summary})
}

func (s *Server) handleClear(w http.ResponseWriter, _ *http.Request) {
	outcome := s.queries.Clear()
	sharedobs.WriteJSON(w, http.StatusOK, map[string]string{"status": outcome.String()})
}

const helpText = `ISS tracker routes

  GET    /                          every state vector in the loaded series
  GET    /epochs?limit=N&offset=M   epoch identifiers, optionally paginated
  GET    /epochs/{epoch}            state vector at an exact epoch
  GET    /epochs/{epoch}/speed      speed (km/s) at an epoch
  GET    /epochs/{epoch}/location   latitude, longitude, altitude and address at an epoch
  GET    /now                       location of the state vector nearest to now
  GET    /header                    feed header
  GET    /metadata                  feed metadata
  GET    /comment                   feed comments
  GET    /help                      this text
  POST   /post-data                 reload the series from the feed
  DELETE /delete-data               drop the loaded series
  GET    /healthz                   liveness
  GET    /readyz                    readiness (a series is loaded)
  GET    /metrics                   Prometheus metrics
`

func handleHelp(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, helpText)
}

func (s *Server) respond(w http.ResponseWriter, v any, err error) {
	if err != nil {
		s.writeError(w, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, v)
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "status", status, "error", err)
	}
	sharedobs.WriteJSON(w, status, map[string]string{
		"error": err.Error(),
		"kind":  domain.Kind(err),
	})
}

// statusFor maps domain error kinds onto HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNoData),
		errors.Is(err, domain.ErrEpochNotFound),
		errors.Is(err, domain.ErrNoRecordNearNow):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrBadArgument):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrFeedUnavailable),
		errors.Is(err, domain.ErrFeedMalformed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
