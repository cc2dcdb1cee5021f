package api

import (
	"context"
	"net/http"

	"github.com/okian/kinetic/internal/domain/types"
)

// RecordingDependencies persists the captured buffer.
type RecordingDependencies interface {
	SaveRecording(ctx context.Context, req types.RecordingRequest) (types.RecordingAck, error)
}

// RecordingsHandler handles POST /recordings.
type RecordingsHandler struct {
	deps RecordingDependencies
}

// NewRecordingsHandler creates a new recordings handler.
func NewRecordingsHandler(deps RecordingDependencies) *RecordingsHandler {
	return &RecordingsHandler{deps: deps}
}

// HandleSave accepts a recording job. The write happens asynchronously, so
// a successful response is 202.
func (h *RecordingsHandler) HandleSave(w http.ResponseWriter, r *http.Request) {
	var req types.RecordingRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeDomainError(w, err)
		return
	}
	if err := req.Validate(); err != nil {
		writeDomainError(w, err)
		return
	}
	ack, err := h.deps.SaveRecording(r.Context(), req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, ack)
}
