// Package api exposes the service's admin HTTP surface: health and metrics,
// gesture library management, session control and recordings.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"

	"github.com/okian/kinetic/internal/adapters/mq/queue"
	"github.com/okian/kinetic/internal/adapters/repository"
	"github.com/okian/kinetic/internal/adapters/skeletonfile"
	"github.com/okian/kinetic/internal/domain/gesture"
	"github.com/okian/kinetic/internal/domain/session"
	"github.com/okian/kinetic/internal/domain/types"
)

const maxBodyBytes = 1 << 20

// Dependencies required by HTTP handlers.
type Dependencies interface {
	GestureDependencies
	SessionDependencies
	RecordingDependencies
}

// Server wires HTTP routes for the admin API.
type Server struct {
	healthHandler     *HealthHandler
	statsHandler      *StatsHandler
	gesturesHandler   *GesturesHandler
	sessionHandler    *SessionHandler
	recordingsHandler *RecordingsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:     NewHealthHandler(),
		statsHandler:      NewStatsHandler(statsProvider),
		gesturesHandler:   NewGesturesHandler(deps),
		sessionHandler:    NewSessionHandler(deps),
		recordingsHandler: NewRecordingsHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	mux.HandleFunc("GET /gestures", MetricsMiddleware(s.gesturesHandler.HandleList, "gestures"))
	mux.HandleFunc("POST /gestures", MetricsMiddleware(s.gesturesHandler.HandleAdd, "gestures"))
	mux.HandleFunc("DELETE /gestures/{name}", MetricsMiddleware(s.gesturesHandler.HandleRemove, "gestures"))

	mux.HandleFunc("GET /session", MetricsMiddleware(s.sessionHandler.HandleGet, "session"))
	mux.HandleFunc("POST /session/{action}", MetricsMiddleware(s.sessionHandler.HandleAction, "session"))
	mux.HandleFunc("GET /match", MetricsMiddleware(s.sessionHandler.HandleMatch, "match"))

	mux.HandleFunc("POST /recordings", MetricsMiddleware(s.recordingsHandler.HandleSave, "recordings"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeDomainError translates service errors to HTTP statuses.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, types.ErrInvalidRecording),
		errors.Is(err, gesture.ErrInvalidConfig),
		errors.Is(err, gesture.ErrRange),
		errors.Is(err, session.ErrEmptyReplay),
		errors.Is(err, session.ErrCursor):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	case errors.Is(err, ErrNotFound), errors.Is(err, repository.ErrNotFound), errors.Is(err, fs.ErrNotExist):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, session.ErrInvalidTransition), errors.Is(err, session.ErrNotReplaying):
		writeError(w, http.StatusConflict, "invalid_state", err)
	case errors.Is(err, ErrBackpressure), errors.Is(err, queue.ErrFull), errors.Is(err, queue.ErrStopped):
		writeError(w, http.StatusTooManyRequests, "backpressure", err)
	case errors.Is(err, skeletonfile.ErrParse):
		writeError(w, http.StatusUnprocessableEntity, "parse_error", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %w", ErrBadRequest, err)
	}
	return nil
}
