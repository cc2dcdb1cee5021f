package service

import (
	"context"
	"path/filepath"

	"github.com/okian/kinetic/internal/adapters/skeletonfile"
	"github.com/okian/kinetic/internal/domain/session"
	"github.com/okian/kinetic/internal/domain/skeleton"
	"github.com/okian/kinetic/internal/domain/types"
	"github.com/okian/kinetic/pkg/metrics"
)

// Session returns a snapshot of the session state.
func (s *Service) Session(_ context.Context) types.SessionStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	buf := s.machine.Buffer()
	pos, total := s.machine.Cursor()
	return types.SessionStatus{
		State:       s.machine.State().String(),
		BufferLen:   buf.Len(),
		BufferCap:   buf.Cap(),
		ReplayPos:   pos,
		ReplayTotal: total,
		TrackingID:  s.display.trackingID,
	}
}

// LastMatch returns the most recent recognition attempt. While recognizing,
// Scores holds the current per-gesture distances of the live buffer.
func (s *Service) LastMatch(_ context.Context) types.MatchStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m := s.lastMatch
	if s.machine.State() == session.Recognizing && len(s.refCounts) > 0 {
		m.Scores = s.matcher.Scores(s.machine.Buffer())
	}
	return m
}

// StartCapture clears the buffer and begins buffering live frames.
func (s *Service) StartCapture(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.machine.StartCapture(); err != nil {
		return err
	}
	metrics.UpdateGestureBufferSize(0)
	return nil
}

// StartRecognizing clears the buffer and matches live frames each tick.
func (s *Service) StartRecognizing(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.machine.StartRecognizing(); err != nil {
		return err
	}
	s.lastMatch = unknownMatch()
	metrics.UpdateGestureBufferSize(0)
	return nil
}

// StartReplay loads a recording and plays it back one frame per tick. A
// relative path is resolved against the recording directory and a missing
// extension defaults to the skeleton file extension.
func (s *Service) StartReplay(_ context.Context, path string) error {
	frames, err := skeletonfile.Read(s.recordingPath(path))
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.machine.StartReplay(frames)
}

// SeekReplay moves a running replay to frame index and shows it. Playback
// continues from there on the next tick.
func (s *Service) SeekReplay(_ context.Context, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.machine.Seek(index)
	if err != nil {
		return err
	}
	s.display.skeleton = f
	s.display.tracked = f.State == skeleton.Tracked
	return nil
}

// StopSession returns the session to Idle, keeping the buffer.
func (s *Service) StopSession(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.machine.Stop()
}

func (s *Service) recordingPath(path string) string {
	if filepath.Ext(path) == "" {
		path += skeletonfile.Extension
	}
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(s.recordingDir, path)
}
