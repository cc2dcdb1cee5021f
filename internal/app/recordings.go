package service

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/okian/kinetic/internal/adapters/mq/queue"
	"github.com/okian/kinetic/internal/adapters/repository"
	"github.com/okian/kinetic/internal/adapters/skeletonfile"
	"github.com/okian/kinetic/internal/domain/gesture"
	"github.com/okian/kinetic/internal/domain/types"
	"github.com/okian/kinetic/pkg/logger"
)

// Recording ack statuses.
const (
	StatusQueued = "queued"
)

// SaveRecording snapshots the gesture buffer, optionally trimmed to
// [Start, End], and queues it for writing. With req.Gesture set the frames
// become a new reference example of that gesture; otherwise they are written
// to the recording directory as req.Name.
func (s *Service) SaveRecording(ctx context.Context, req types.RecordingRequest) (types.RecordingAck, error) {
	if err := req.Validate(); err != nil {
		return types.RecordingAck{}, err
	}
	name, gestureName := strings.TrimSpace(req.Name), strings.TrimSpace(req.Gesture)

	if gestureName != "" {
		s.libMu.Lock()
		known := false
		if s.library != nil {
			_, known = s.library.Get(gestureName)
		}
		s.libMu.Unlock()
		if !known {
			return types.RecordingAck{}, fmt.Errorf("%w: gesture %q", repository.ErrNotFound, gestureName)
		}
	}

	s.mu.RLock()
	started, jobs := s.started, s.jobs
	snapshot := gesture.NewBufferFrom(s.machine.Buffer().Frames(), s.bufferCapacity)
	s.mu.RUnlock()

	if !started {
		return types.RecordingAck{}, ErrNotStarted
	}
	if req.Start != nil {
		if err := snapshot.Trim(*req.Start, *req.End); err != nil {
			return types.RecordingAck{}, err
		}
	}
	if snapshot.Len() == 0 {
		return types.RecordingAck{}, ErrEmptyRecording
	}

	var job queue.Job
	if gestureName != "" {
		job = queue.NewJob(queue.KindExample, snapshot.Frames())
		job.Gesture = gestureName
	} else {
		job = queue.NewJob(queue.KindRecording, snapshot.Frames())
		job.Path = filepath.Join(s.recordingDir, name+skeletonfile.Extension)
	}

	if !jobs.Enqueue(ctx, job) {
		return types.RecordingAck{}, queue.ErrFull
	}

	s.logger.Debug(ctx, "recording queued",
		logger.String("jobID", job.ID.String()),
		logger.String("kind", string(job.Kind)),
		logger.Int("frames", len(job.Frames)),
	)
	return types.RecordingAck{JobID: job.ID.String(), Frames: len(job.Frames), Status: StatusQueued}, nil
}

// persist is the worker handler for recording jobs.
func (s *Service) persist(ctx context.Context, j queue.Job) error { //nolint:gocritic // hugeParam: Job is passed by value for channel semantics
	switch j.Kind {
	case queue.KindRecording:
		if err := skeletonfile.Write(j.Path, j.Frames); err != nil {
			return err
		}
		s.logger.Info(ctx, "recording saved",
			logger.String("path", j.Path),
			logger.Int("frames", len(j.Frames)),
		)
		return nil
	case queue.KindExample:
		return s.addExample(ctx, j)
	default:
		return fmt.Errorf("unknown job kind %q", j.Kind)
	}
}

// addExample stores j's frames under its gesture and reloads that gesture's
// references.
func (s *Service) addExample(ctx context.Context, j queue.Job) error { //nolint:gocritic // hugeParam: Job is passed by value for channel semantics
	s.libMu.Lock()
	defer s.libMu.Unlock()

	if _, ok := s.library.Get(j.Gesture); !ok {
		return fmt.Errorf("%w: gesture %q", repository.ErrNotFound, j.Gesture)
	}
	path, err := s.store.AddExample(ctx, j.Gesture, j.Frames)
	if err != nil {
		return err
	}
	examples, err := s.store.Examples(ctx, j.Gesture)
	if err != nil {
		return fmt.Errorf("reload examples of %q: %w", j.Gesture, err)
	}

	s.mu.Lock()
	s.matcher.AddReference(gesture.ReferenceGesture{Name: j.Gesture, Examples: examples})
	s.refCounts[j.Gesture] = len(examples)
	s.publishReferenceCountLocked()
	s.mu.Unlock()

	s.logger.Info(ctx, "reference example saved",
		logger.String("gesture", j.Gesture),
		logger.String("path", path),
		logger.Int("examples", len(examples)),
	)
	return nil
}
