package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/okian/kinetic/internal/adapters/http/api"
	"github.com/okian/kinetic/internal/adapters/source"
	app "github.com/okian/kinetic/internal/app"
	"github.com/okian/kinetic/internal/config"
	"github.com/okian/kinetic/pkg/logger"
	"github.com/okian/kinetic/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 10 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	systemMetricsInterval     = 10 * time.Second
	serviceMetricsInterval    = 5 * time.Second
	nanosecondsPerMillisecond = 1e6
)

func main() {
	// We collect our own system metrics instead of the default collectors.
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		// The logger is not configured until the format is known.
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := logger.InitWithFormat(cfg.LogFormat, os.Stdout); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	loggerInstance := logger.Get()

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		loggerInstance.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	svc := newService(cfg, loggerInstance)
	if err := svc.Start(ctx); err != nil {
		loggerInstance.Error(ctx, "failed to start service", logger.Error(err))
		os.Exit(1)
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := svc.Stop(stopCtx); err != nil {
			loggerInstance.Error(stopCtx, "service shutdown incomplete", logger.Error(err))
		}
	}()

	go startSystemMetricsUpdater(ctx)
	go startServiceMetricsUpdater(ctx, svc)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newMux(ctx, svc),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		loggerInstance.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			loggerInstance.Error(ctx, "HTTP server failed", logger.Error(err))
			stop()
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()
	loggerInstance.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		loggerInstance.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	loggerInstance.Info(ctx, "server stopped")
}

// newService maps configuration onto service options. Without the synthetic
// source no sensor is attached and Start reports it.
func newService(cfg *config.Config, l logger.Logger) *app.Service {
	opts := []app.Option{
		app.WithLogger(l),
		app.WithFrameInterval(cfg.FrameInterval()),
		app.WithBufferCapacity(cfg.BufferCapacity),
		app.WithGestureDir(cfg.GestureDir),
		app.WithRecordingDir(cfg.RecordingDir),
		app.WithMatchThreshold(cfg.MatchThreshold),
		app.WithMatchLengths(cfg.MatchMinLength, cfg.MatchMaxLength),
		app.WithMaxEncodableDepth(uint16(cfg.MaxEncodableDepth)), //nolint:gosec // bounded by Validate
		app.WithQueueSize(cfg.QueueSize),
		app.WithWorkerCount(cfg.WorkerCount),
	}
	if cfg.SyntheticSource {
		opts = append(opts, app.WithFrameSource(source.NewSynthetic()))
	}
	return app.New(opts...)
}

// newMux registers the API routes for svc.
func newMux(ctx context.Context, svc *app.Service) *http.ServeMux {
	mux := http.NewServeMux()
	api.NewServer(svc, svc).Register(ctx, mux)
	return mux
}

// startSystemMetricsUpdater starts a background goroutine that updates system metrics.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// startServiceMetricsUpdater starts a background goroutine that updates service metrics.
func startServiceMetricsUpdater(ctx context.Context, svc *app.Service) {
	ticker := time.NewTicker(serviceMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateServiceMetrics(svc)
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)

	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	if m.NumGC > 0 {
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}

// updateServiceMetrics refreshes gauges derived from service stats.
// GetStats already publishes the queue and buffer gauges.
func updateServiceMetrics(svc *app.Service) {
	stats := svc.GetStats()

	if queueLen, ok := stats["queueLength"].(int); ok {
		metrics.UpdateQueueUtilization(float64(queueLen) / float64(max(1, stats["queueSize"].(int))))
	}
	if refs, ok := stats["references"].(int); ok {
		metrics.UpdateReferenceCount(refs)
	}
}
