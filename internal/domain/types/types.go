// Package types contains the read and request shapes shared by the service
// and its HTTP surface.
package types

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidRecording is wrapped by RecordingRequest.Validate failures.
var ErrInvalidRecording = errors.New("invalid recording request")

// SessionStatus is a snapshot of the session state and its buffer.
type SessionStatus struct {
	State       string `json:"state"`
	BufferLen   int    `json:"buffer_len"`
	BufferCap   int    `json:"buffer_cap"`
	ReplayPos   int    `json:"replay_pos,omitempty"`
	ReplayTotal int    `json:"replay_total,omitempty"`
	TrackingID  int    `json:"tracking_id,omitempty"`
}

// MatchStatus is the most recent recognition outcome.
type MatchStatus struct {
	Label    string             `json:"label"`
	Distance float64            `json:"distance"`
	Matched  bool               `json:"matched"`
	Compared int                `json:"compared"`
	At       time.Time          `json:"at,omitzero"`
	Scores   map[string]float64 `json:"scores,omitempty"`
}

// RecordingRequest asks for the current buffer, optionally trimmed to
// [Start, End], to be persisted. With Gesture set the frames become a new
// reference example; otherwise they are written to the recording directory
// as Name.
type RecordingRequest struct {
	Gesture string `json:"gesture,omitempty"`
	Name    string `json:"name,omitempty"`
	Start   *int   `json:"start,omitempty"`
	End     *int   `json:"end,omitempty"`
}

// Validate checks that exactly one destination is named and that a window,
// when given, is complete.
func (r RecordingRequest) Validate() error {
	gesture, name := strings.TrimSpace(r.Gesture), strings.TrimSpace(r.Name)
	var reason string
	switch {
	case gesture == "" && name == "":
		reason = "one of gesture or name is required"
	case gesture != "" && name != "":
		reason = "gesture and name are mutually exclusive"
	case strings.ContainsAny(name, `/\`):
		reason = "name must not contain path separators"
	case (r.Start == nil) != (r.End == nil):
		reason = "start and end must be given together"
	case r.Start != nil && *r.Start > *r.End:
		reason = "start must not exceed end"
	default:
		return nil
	}
	return fmt.Errorf("%w: %s", ErrInvalidRecording, reason)
}

// RecordingAck acknowledges an accepted recording job.
type RecordingAck struct {
	JobID  string `json:"job_id"`
	Frames int    `json:"frames"`
	Status string `json:"status"`
}

// ReplayRequest names a recording file to replay.
type ReplayRequest struct {
	Path string `json:"path"`
}

// SeekRequest moves the replay cursor to a frame index.
type SeekRequest struct {
	Index *int `json:"index"`
}
