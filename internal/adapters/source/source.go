// Package source defines the sensor capability the frame loop pulls from,
// and a synthetic implementation used when no device is attached.
package source

import (
	"context"
	"errors"

	"github.com/okian/kinetic/internal/domain/frame"
	"github.com/okian/kinetic/internal/domain/skeleton"
)

// ErrClosed is returned by sources that have been shut down.
var ErrClosed = errors.New("frame source closed")

// FrameSource delivers the latest frame of each stream. ok is false when no
// new frame is available; the caller polls again on its next tick.
type FrameSource interface {
	NextDepthFrame(ctx context.Context) (frame.DepthFrame, bool, error)
	NextColorFrame(ctx context.Context) (frame.ColorFrame, bool, error)
	NextSkeletonFrames(ctx context.Context) ([]skeleton.Frame, bool, error)
}

// CoordinateMapper projects every depth cell into colour image coordinates.
type CoordinateMapper interface {
	MapDepthFrameToColorSpace(d frame.DepthFrame) (frame.Projection, error)
}
