package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/okian/kinetic/internal/domain/gesture"
)

// GestureDependencies manages the gesture library.
type GestureDependencies interface {
	Gestures(ctx context.Context) []gesture.Config
	AddGesture(ctx context.Context, cfg gesture.Config) (gesture.Config, error)
	// RemoveGesture reports false when no gesture has that name.
	RemoveGesture(ctx context.Context, name string) (bool, error)
}

// GesturesHandler handles /gestures requests.
type GesturesHandler struct {
	deps GestureDependencies
}

// NewGesturesHandler creates a new gestures handler.
func NewGesturesHandler(deps GestureDependencies) *GesturesHandler {
	return &GesturesHandler{deps: deps}
}

// HandleList handles GET /gestures.
func (h *GesturesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.Gestures(r.Context()))
}

// HandleAdd handles POST /gestures. Posting an existing name updates it.
func (h *GesturesHandler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	var cfg gesture.Config
	if err := decodeJSON(w, r, &cfg); err != nil {
		writeDomainError(w, err)
		return
	}
	saved, err := h.deps.AddGesture(r.Context(), cfg)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

// HandleRemove handles DELETE /gestures/{name}.
func (h *GesturesHandler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	removed, err := h.deps.RemoveGesture(r.Context(), name)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if !removed {
		writeError(w, http.StatusNotFound, "not_found", fmt.Errorf("gesture %q not found", name))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
