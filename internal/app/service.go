// Package service runs the sensor frame loop and implements the
// dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/multierr"

	"github.com/okian/kinetic/internal/adapters/mq/queue"
	"github.com/okian/kinetic/internal/adapters/mq/worker"
	"github.com/okian/kinetic/internal/adapters/repository"
	"github.com/okian/kinetic/internal/adapters/source"
	"github.com/okian/kinetic/internal/domain/depth"
	"github.com/okian/kinetic/internal/domain/frame"
	"github.com/okian/kinetic/internal/domain/gesture"
	"github.com/okian/kinetic/internal/domain/registration"
	"github.com/okian/kinetic/internal/domain/session"
	"github.com/okian/kinetic/internal/domain/skeleton"
	"github.com/okian/kinetic/internal/domain/types"
	"github.com/okian/kinetic/pkg/logger"
	"github.com/okian/kinetic/pkg/metrics"
)

// Defaults used when no option overrides them.
const (
	DefaultFrameInterval = 33 * time.Millisecond
	DefaultGestureDir    = "gestures"
	DefaultRecordingDir  = "recordings"
	DefaultQueueSize     = 64
	DefaultWorkerCount   = 2
)

// Service owns the session, the gesture library and the frame loop.
//
// Lock order is libMu before mu. libMu serializes gesture library
// mutations, which do disk I/O; mu guards everything the frame loop
// touches and is never held across disk I/O.
type Service struct {
	libMu   sync.Mutex
	store   *repository.DirStore
	library *gesture.Library

	mu        sync.RWMutex
	machine   *session.Machine
	matcher   *gesture.Matcher
	refCounts map[string]int
	display   displayState
	lastMatch types.MatchStatus
	lastHit   types.MatchStatus
	matches   int
	frames    map[string]int
	drops     int

	source     source.FrameSource
	mapper     source.CoordinateMapper
	visualizer depth.Visualizer
	registrar  registration.Registrar

	jobs *queue.InMemoryQueue
	pool *worker.Pool

	// Configuration
	frameInterval  time.Duration
	bufferCapacity int
	gestureDir     string
	recordingDir   string
	threshold      float64
	minLength      int
	maxLength      int
	maxEncodable   uint16
	queueSize      int
	workerCount    int

	// State
	started    bool
	cancelLoop context.CancelFunc
	cancelWork context.CancelFunc
	loopDone   chan struct{}
	now        func() time.Time

	logger logger.Logger
}

type displayState struct {
	depth      frame.DepthFrame
	depthImage []byte
	registered []byte
	coverage   float64
	validRatio float64
	skeleton   skeleton.Frame
	tracked    bool
	trackingID int
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithFrameSource sets the sensor the frame loop polls. A source that also
// implements source.CoordinateMapper is used for registration unless
// WithCoordinateMapper overrides it.
func WithFrameSource(src source.FrameSource) Option {
	return func(s *Service) {
		s.source = src
	}
}

// WithCoordinateMapper sets the depth to colour projection.
func WithCoordinateMapper(m source.CoordinateMapper) Option {
	return func(s *Service) {
		s.mapper = m
	}
}

// WithFrameInterval sets the frame loop tick.
func WithFrameInterval(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.frameInterval = d
		}
	}
}

// WithBufferCapacity sets the gesture buffer capacity.
func WithBufferCapacity(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.bufferCapacity = n
		}
	}
}

// WithGestureDir sets the gesture library directory.
func WithGestureDir(dir string) Option {
	return func(s *Service) {
		if dir != "" {
			s.gestureDir = dir
		}
	}
}

// WithRecordingDir sets the directory for named recordings and replays.
func WithRecordingDir(dir string) Option {
	return func(s *Service) {
		if dir != "" {
			s.recordingDir = dir
		}
	}
}

// WithMatchThreshold sets the acceptance distance.
func WithMatchThreshold(t float64) Option {
	return func(s *Service) {
		if t > 0 {
			s.threshold = t
		}
	}
}

// WithMatchLengths sets the gesture length bounds used while the library is
// empty.
func WithMatchLengths(minLen, maxLen int) Option {
	return func(s *Service) {
		if minLen > 0 && maxLen >= minLen {
			s.minLength, s.maxLength = minLen, maxLen
		}
	}
}

// WithMaxEncodableDepth sets the sensor's largest depth value.
func WithMaxEncodableDepth(mm uint16) Option {
	return func(s *Service) {
		if mm > 0 {
			s.maxEncodable = mm
		}
	}
}

// WithQueueSize sets the capacity of the persistence queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithWorkerCount sets the number of persistence workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		frameInterval:  DefaultFrameInterval,
		bufferCapacity: gesture.DefaultCapacity,
		gestureDir:     DefaultGestureDir,
		recordingDir:   DefaultRecordingDir,
		threshold:      gesture.DefaultThreshold,
		minLength:      gesture.DefaultMinLength,
		maxLength:      gesture.DefaultMaxLength,
		maxEncodable:   depth.MaxDepthV2,
		queueSize:      DefaultQueueSize,
		workerCount:    DefaultWorkerCount,
		refCounts:      make(map[string]int),
		frames:         make(map[string]int),
		now:            time.Now,
		lastMatch:      unknownMatch(),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.mapper == nil {
		if m, ok := s.source.(source.CoordinateMapper); ok {
			s.mapper = m
		}
	}
	s.visualizer = depth.NewVisualizer(s.maxEncodable)
	s.matcher = gesture.NewMatcher(
		gesture.WithThreshold(s.threshold),
		gesture.WithLengths(s.minLength, s.maxLength),
	)
	s.machine = session.NewMachine(gesture.NewBuffer(s.bufferCapacity), session.WithHook(s.onTransition))
	metrics.UpdateSessionState(session.Idle.String(), stateNames())

	return s
}

// Start loads the gesture library, starts the persistence workers and the
// frame loop. It fails with ErrSensorUnavailable when no source is set.
func (s *Service) Start(ctx context.Context) error {
	s.libMu.Lock()
	defer s.libMu.Unlock()
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.source == nil {
		return ErrSensorUnavailable
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.logger.Info(ctx, "starting kinetic service...")

	store, err := repository.NewDirStore(s.gestureDir)
	if err != nil {
		return fmt.Errorf("open gesture store: %w", err)
	}
	lib := gesture.NewLibrary(store)
	if err := lib.Load(ctx); err != nil {
		return fmt.Errorf("load gesture library: %w", err)
	}
	refs, err := lib.References(ctx)
	if err != nil {
		return fmt.Errorf("load reference gestures: %w", err)
	}
	s.store, s.library = store, lib
	s.matcher.SetReferences(refs)
	clear(s.refCounts)
	for _, r := range refs {
		s.refCounts[r.Name] = len(r.Examples)
	}
	s.applyBoundsLocked()
	s.publishReferenceCountLocked()

	// Workers outlive the frame loop so queued recordings drain on Stop.
	workCtx, cancelWork := context.WithCancel(context.WithoutCancel(ctx))
	s.jobs = queue.NewInMemoryQueue(
		queue.WithCapacity(s.queueSize),
		queue.WithBufferSize(s.queueSize),
	)
	s.pool = worker.NewPool(s.workerCount, s.jobs, worker.HandlerFunc(s.persist))
	s.pool.Start(workCtx)

	loopCtx, cancelLoop := context.WithCancel(context.WithoutCancel(ctx))
	s.loopDone = make(chan struct{})
	go s.run(loopCtx, s.loopDone)

	s.cancelLoop, s.cancelWork = cancelLoop, cancelWork
	s.started = true
	s.logger.Info(ctx, "kinetic service started",
		logger.String("gestureDir", s.gestureDir),
		logger.Int("gestures", len(lib.Configs())),
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Duration("frameInterval", s.frameInterval),
	)

	return nil
}

// Stop halts the frame loop, drains pending recordings and closes the
// source when it supports closing.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return nil
	}
	s.started = false
	cancelLoop, cancelWork, loopDone, pool := s.cancelLoop, s.cancelWork, s.loopDone, s.pool
	s.mu.Unlock()

	s.logger.Info(ctx, "stopping kinetic service...")

	var errs error
	cancelLoop()
	select {
	case <-loopDone:
	case <-ctx.Done():
		errs = multierr.Append(errs, fmt.Errorf("frame loop: %w", ctx.Err()))
	}

	errs = multierr.Append(errs, pool.Shutdown(ctx))
	cancelWork()

	if closer, ok := s.source.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("close source: %w", err))
		}
	}

	if errs != nil {
		s.logger.Warn(ctx, "kinetic service stopped with errors", logger.Error(errs))
		return errs
	}
	s.logger.Info(ctx, "kinetic service stopped")
	return nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	buf := s.machine.Buffer()
	minLen, maxLen := s.matcher.Lengths()
	stats := map[string]interface{}{
		"started":           s.started,
		"state":             s.machine.State().String(),
		"bufferLength":      buf.Len(),
		"bufferCapacity":    buf.Cap(),
		"framesDepth":       s.frames[streamDepth],
		"framesColor":       s.frames[streamColor],
		"framesSkeleton":    s.frames[streamSkeleton],
		"framesDropped":     s.drops,
		"depthValidRatio":   s.display.validRatio,
		"coverage":          s.display.coverage,
		"references":        s.referenceCountLocked(),
		"gestures":          s.matcher.Names(),
		"matchMinLength":    minLen,
		"matchMaxLength":    maxLen,
		"matchThreshold":    s.matcher.Threshold(),
		"matches":           s.matches,
		"lastRecognized":    s.lastHit.Label,
		"workerCount":       s.workerCount,
		"queueSize":         s.queueSize,
		"frameIntervalMs":   s.frameInterval.Milliseconds(),
		"trackingID":        s.display.trackingID,
		"maxEncodableDepth": s.visualizer.MaxEncodable,
	}

	if s.started {
		counters := s.pool.Counters()
		queueLen := s.jobs.Len(context.Background())
		stats["queueLength"] = queueLen
		stats["jobsProcessed"] = counters.Processed()
		stats["jobsFailed"] = counters.Failed()

		metrics.UpdateQueueSize(queueLen)
		metrics.UpdateGestureBufferSize(buf.Len())
	}

	return stats
}

// Display is a copy of the latest rendered frames for a viewer.
type Display struct {
	Width, Height int
	// Depth is the grayscale depth image, one byte per pixel.
	Depth []byte
	// Registered is the colour image resampled onto the depth grid, in the
	// colour stream's pixel format.
	Registered []byte
	Skeleton   skeleton.Frame
	Tracked    bool
}

// Display returns copies of the latest display buffers.
func (s *Service) Display() Display {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d := Display{
		Width:      s.display.depth.Width,
		Height:     s.display.depth.Height,
		Depth:      append([]byte(nil), s.display.depthImage...),
		Registered: append([]byte(nil), s.display.registered...),
		Tracked:    s.display.tracked,
		Skeleton:   s.display.skeleton,
	}
	d.Skeleton.Joints = append([]skeleton.Joint(nil), s.display.skeleton.Joints...)
	return d
}

func (s *Service) onTransition(from, to session.State) {
	metrics.UpdateSessionState(to.String(), stateNames())
	if s.logger != nil {
		s.logger.Info(context.Background(), "session state changed",
			logger.String("from", from.String()),
			logger.String("to", to.String()),
		)
	}
}

// applyBoundsLocked widens the matcher window to the library's configs, or
// falls back to the configured lengths when the library is empty.
func (s *Service) applyBoundsLocked() {
	if minLen, maxLen, ok := s.library.Bounds(); ok {
		s.matcher.SetLengths(minLen, maxLen)
		return
	}
	s.matcher.SetLengths(s.minLength, s.maxLength)
}

func (s *Service) referenceCountLocked() int {
	n := 0
	for _, c := range s.refCounts {
		n += c
	}
	return n
}

func (s *Service) publishReferenceCountLocked() {
	metrics.UpdateReferenceCount(s.referenceCountLocked())
}

func unknownMatch() types.MatchStatus {
	return types.MatchStatus{Label: gesture.UnknownLabel, Distance: gesture.MaxDisplayScore}
}

func stateNames() []string {
	names := make([]string, len(session.States))
	for i, st := range session.States {
		names[i] = st.String()
	}
	return names
}
