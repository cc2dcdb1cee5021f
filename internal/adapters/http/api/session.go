package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/okian/kinetic/internal/domain/types"
)

// Session actions accepted by POST /session/{action}.
const (
	ActionCapture   = "capture"
	ActionReplay    = "replay"
	ActionRecognize = "recognize"
	ActionStop      = "stop"
	ActionSeek      = "seek"
)

// SessionDependencies controls the capture session.
type SessionDependencies interface {
	Session(ctx context.Context) types.SessionStatus
	LastMatch(ctx context.Context) types.MatchStatus
	StartCapture(ctx context.Context) error
	StartRecognizing(ctx context.Context) error
	StartReplay(ctx context.Context, path string) error
	StopSession(ctx context.Context) error
	SeekReplay(ctx context.Context, index int) error
}

// SessionHandler handles /session and /match requests.
type SessionHandler struct {
	deps SessionDependencies
}

// NewSessionHandler creates a new session handler.
func NewSessionHandler(deps SessionDependencies) *SessionHandler {
	return &SessionHandler{deps: deps}
}

// HandleGet handles GET /session.
func (h *SessionHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.Session(r.Context()))
}

// HandleMatch handles GET /match.
func (h *SessionHandler) HandleMatch(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.LastMatch(r.Context()))
}

// HandleAction handles POST /session/{action}.
func (h *SessionHandler) HandleAction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var err error
	switch action := r.PathValue("action"); action {
	case ActionCapture:
		err = h.deps.StartCapture(ctx)
	case ActionRecognize:
		err = h.deps.StartRecognizing(ctx)
	case ActionStop:
		err = h.deps.StopSession(ctx)
	case ActionReplay:
		var req types.ReplayRequest
		if err = decodeJSON(w, r, &req); err == nil {
			if req.Path == "" {
				err = fmt.Errorf("%w: missing path", ErrBadRequest)
			} else {
				err = h.deps.StartReplay(ctx, req.Path)
			}
		}
	case ActionSeek:
		var req types.SeekRequest
		if err = decodeJSON(w, r, &req); err == nil {
			if req.Index == nil {
				err = fmt.Errorf("%w: missing index", ErrBadRequest)
			} else {
				err = h.deps.SeekReplay(ctx, *req.Index)
			}
		}
	default:
		err = fmt.Errorf("%w: unknown session action %q", ErrNotFound, action)
	}
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.deps.Session(ctx))
}
