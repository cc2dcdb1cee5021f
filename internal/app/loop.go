package service

import (
	"context"
	"errors"
	"time"

	"github.com/okian/kinetic/internal/domain/depth"
	"github.com/okian/kinetic/internal/domain/session"
	"github.com/okian/kinetic/internal/domain/skeleton"
	"github.com/okian/kinetic/internal/domain/types"
	"github.com/okian/kinetic/pkg/logger"
	"github.com/okian/kinetic/pkg/metrics"
)

// Stream labels used in logs and metrics.
const (
	streamDepth    = "depth"
	streamColor    = "color"
	streamSkeleton = "skeleton"
)

// Drop reasons.
const (
	reasonSourceError = "source_error"
	reasonInvalid     = "invalid"
	reasonNoDepth     = "no_depth"
	reasonUntracked   = "untracked"
)

// run polls the source once per tick until ctx is cancelled. Each tick is
// handled to completion before the next is read.
func (s *Service) run(ctx context.Context, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.frameInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Service) tick(ctx context.Context) {
	s.pollDepth(ctx)
	s.pollColor(ctx)
	s.pollSkeleton(ctx)
}

func (s *Service) pollDepth(ctx context.Context) {
	start := time.Now()
	d, ok, err := s.source.NextDepthFrame(ctx)
	if !s.accept(ctx, streamDepth, ok, err) {
		return
	}
	if err := d.Validate(); err != nil {
		s.drop(ctx, streamDepth, reasonInvalid, err)
		return
	}

	img := s.visualizer.Render(d)
	ratio := depth.ValidRatio(d)

	s.mu.Lock()
	s.display.depth = d
	s.display.depthImage = img
	s.display.validRatio = ratio
	s.frames[streamDepth]++
	s.mu.Unlock()

	metrics.UpdateDepthValidRatio(ratio)
	metrics.RecordFrameProcessed(streamDepth)
	metrics.RecordStageLatency(streamDepth, sinceMs(start))
}

func (s *Service) pollColor(ctx context.Context) {
	start := time.Now()
	c, ok, err := s.source.NextColorFrame(ctx)
	if !s.accept(ctx, streamColor, ok, err) {
		return
	}
	if err := c.Validate(); err != nil {
		s.drop(ctx, streamColor, reasonInvalid, err)
		return
	}

	s.mu.RLock()
	d := s.display.depth
	s.mu.RUnlock()
	if s.mapper == nil || len(d.Samples) == 0 {
		s.drop(ctx, streamColor, reasonNoDepth, nil)
		return
	}

	proj, err := s.mapper.MapDepthFrameToColorSpace(d)
	if err != nil {
		s.drop(ctx, streamColor, reasonSourceError, err)
		return
	}
	registered, err := s.registrar.Register(c, d, proj)
	if err != nil {
		s.drop(ctx, streamColor, reasonInvalid, err)
		return
	}
	coverage := s.registrar.LastCoverage()

	s.mu.Lock()
	s.display.registered = registered
	s.display.coverage = coverage
	s.frames[streamColor]++
	s.mu.Unlock()

	metrics.UpdateRegistrationCoverage(coverage)
	metrics.RecordFrameProcessed(streamColor)
	metrics.RecordStageLatency("registration", sinceMs(start))
}

func (s *Service) pollSkeleton(ctx context.Context) {
	slots, ok, err := s.source.NextSkeletonFrames(ctx)
	if err != nil {
		s.accept(ctx, streamSkeleton, ok, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.machine.State() == session.Replaying {
		s.replayStepLocked(ctx)
		return
	}
	if !ok {
		return
	}

	f, found := skeleton.SelectTracked(slots, s.display.trackingID)
	s.display.tracked = found
	if !found {
		s.drops++
		metrics.RecordFrameDropped(streamSkeleton, reasonUntracked)
		return
	}
	s.display.skeleton = f
	s.display.trackingID = f.TrackingID
	s.frames[streamSkeleton]++
	metrics.RecordFrameProcessed(streamSkeleton)

	if s.machine.Observe(f) {
		metrics.UpdateGestureBufferSize(s.machine.Buffer().Len())
	}
	if s.machine.State() == session.Recognizing {
		s.recognizeLocked(ctx)
	}
}

// replayStepLocked shows the next recorded frame and returns to Idle once
// the recording is exhausted.
func (s *Service) replayStepLocked(ctx context.Context) {
	f, more, err := s.machine.Next()
	if err != nil {
		s.logger.Error(ctx, "replay step failed", logger.Error(err))
		return
	}
	if more {
		s.display.skeleton = f
		s.display.tracked = f.State == skeleton.Tracked
		return
	}
	if err := s.machine.Stop(); err != nil {
		s.logger.Error(ctx, "failed to end replay", logger.Error(err))
		return
	}
	s.logger.Info(ctx, "replay finished")
}

func (s *Service) recognizeLocked(ctx context.Context) {
	buf := s.machine.Buffer()
	if s.matcher.Slide(buf) > 0 {
		metrics.UpdateGestureBufferSize(buf.Len())
	}
	if len(s.refCounts) == 0 || !s.matcher.InWindow(buf.Len()) {
		return
	}

	start := time.Now()
	res := s.matcher.Match(buf)
	metrics.RecordStageLatency("match", sinceMs(start))
	metrics.RecordMatchAttempt(res.Distance)

	s.lastMatch = types.MatchStatus{
		Label:    res.Label,
		Distance: res.Distance,
		Matched:  res.Matched,
		Compared: res.Compared,
		At:       s.now(),
	}
	if !res.Matched {
		return
	}

	s.matches++
	s.lastHit = s.lastMatch
	metrics.RecordMatch(res.Label)
	metrics.UpdateGestureBufferSize(buf.Len())
	s.logger.Info(ctx, "gesture recognized",
		logger.String("gesture", res.Label),
		logger.Float64("distance", res.Distance),
		logger.Int("compared", res.Compared),
	)
}

// accept reports whether a source read produced a frame, recording the
// failure when it did not.
func (s *Service) accept(ctx context.Context, stream string, ok bool, err error) bool {
	if err != nil {
		if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
			return false
		}
		s.drop(ctx, stream, reasonSourceError, err)
		return false
	}
	return ok
}

func (s *Service) drop(ctx context.Context, stream, reason string, err error) {
	s.mu.Lock()
	s.drops++
	s.mu.Unlock()

	metrics.RecordFrameDropped(stream, reason)
	if err != nil {
		metrics.RecordErrorByComponent("source", reason)
		s.logger.Debug(ctx, "frame dropped",
			logger.String("stream", stream),
			logger.String("reason", reason),
			logger.Error(err),
		)
	}
}

func sinceMs(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000
}
