package service

import (
	"errors"
	"fmt"

	"github.com/okian/kinetic/internal/domain/gesture"
)

var (
	// ErrSensorUnavailable is returned by Start when no frame source is
	// configured.
	ErrSensorUnavailable = errors.New("sensor unavailable")
	// ErrNotStarted is returned by operations that need the gesture store.
	ErrNotStarted = errors.New("service not started")
	// ErrEmptyRecording is returned when there are no frames to save.
	ErrEmptyRecording = fmt.Errorf("no frames to record: %w", gesture.ErrRange)
)
