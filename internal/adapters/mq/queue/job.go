package queue

import (
	"time"

	"github.com/google/uuid"

	"github.com/okian/kinetic/internal/domain/skeleton"
)

// Kind names what a persistence job writes.
type Kind string

// Job kinds.
const (
	// KindRecording writes frames to a standalone recording file at Path.
	KindRecording Kind = "recording"
	// KindExample stores frames as a new reference example of Gesture.
	KindExample Kind = "example"
)

// Job is one unit of disk work taken off the frame loop.
type Job struct {
	ID       uuid.UUID
	Kind     Kind
	Path     string
	Gesture  string
	Frames   []skeleton.Frame
	Enqueued time.Time
}

// NewJob stamps a job with a fresh ID and the current time.
func NewJob(kind Kind, frames []skeleton.Frame) Job {
	return Job{ID: uuid.New(), Kind: kind, Frames: frames, Enqueued: time.Now()}
}
