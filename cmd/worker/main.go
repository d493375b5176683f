// Command worker publishes the outbox and, with RabbitMQ configured, delivers
// meeting confirmations.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/felixgeelhaar/huddle/internal/app"
	"github.com/felixgeelhaar/huddle/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/huddle/pkg/config"
	"github.com/felixgeelhaar/huddle/pkg/observability"
)

const (
	probeTimeout    = 2 * time.Second
	shutdownTimeout = 5 * time.Second
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		slog.Error("worker failed", "error", err)
		os.Exit(1)
	}
}

type worker struct {
	cfg       *config.Config
	container *app.Container
	logger    *slog.Logger
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := app.NewLogger(cfg, "huddle-worker", os.Stdout)
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	container, err := app.NewContainer(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("build container: %w", err)
	}
	defer container.Close()

	w := &worker{cfg: cfg, container: container, logger: logger}
	logger.Info("huddle worker starting", "local", container.IsLocal())

	if !container.IsLocal() {
		consumer, err := w.consume(ctx, cancel)
		if err != nil {
			return err
		}
		defer consumer.Close()
	}

	processor := container.OutboxProcessor
	if cfg.OutboxProcessorEnabled {
		if err := processor.Start(ctx); err != nil {
			return fmt.Errorf("start outbox processor: %w", err)
		}
		defer processor.Stop()
	} else {
		logger.Info("outbox processor disabled")
	}

	go every(ctx, cfg.OutboxCleanupInterval, w.pruneOutbox)
	go every(ctx, cfg.OutboxStatsInterval, w.logStats)
	if cfg.WorkerHealthAddr != "" {
		go w.serve(ctx)
	}

	<-ctx.Done()
	if cause := context.Cause(ctx); cause != nil && !errors.Is(cause, context.Canceled) {
		return cause
	}
	logger.Info("huddle worker stopping")
	return nil
}

// consume binds the confirmation subscriber to RabbitMQ. A consumer that
// stops on its own ends the worker.
func (w *worker) consume(ctx context.Context, abort context.CancelCauseFunc) (*eventbus.RabbitMQConsumer, error) {
	consumer, err := eventbus.NewRabbitMQConsumer(eventbus.RabbitMQConsumerConfig{
		URL:    w.cfg.RabbitMQURL,
		Logger: w.logger,
	}, eventbus.NewConsumerRegistry(w.logger))
	if err != nil {
		return nil, fmt.Errorf("connect consumer: %w", err)
	}
	consumer.WithMetrics(w.container.Metrics).RegisterConsumer(w.container.ConfirmationSubscriber)
	w.container.Health.Register("rabbitmq", observability.OptionalProbe("rabbitmq", consumer.Ping))

	go func() {
		if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			abort(fmt.Errorf("event consumer: %w", err))
		}
	}()
	return consumer, nil
}

func (w *worker) pruneOutbox(ctx context.Context) {
	days := w.cfg.OutboxRetentionDays
	deleted, err := w.container.OutboxRepo.DeleteOld(ctx, days)
	switch {
	case err != nil:
		w.logger.Error("outbox cleanup failed", "error", err)
	case deleted > 0:
		w.logger.Info("outbox cleaned", "deleted", deleted, "retention_days", days)
	}
}

func (w *worker) logStats(context.Context) {
	s := w.container.OutboxProcessor.GetStats()
	w.logger.Info("outbox stats",
		"running", s.IsRunning,
		"published", s.PublishedCount,
		"failed", s.FailedCount,
		"dead", s.DeadCount,
		"lag_seconds", s.LagSeconds,
		"last_error", s.LastError,
	)
}

func every(ctx context.Context, interval time.Duration, fn func(context.Context)) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fn(ctx)
		}
	}
}

// serve exposes liveness, readiness and Prometheus metrics until ctx ends.
func (w *worker) serve(ctx context.Context) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", w.liveness)
	mux.HandleFunc("GET /readyz", w.readiness)
	mux.Handle("GET /metrics", w.container.Metrics.Handler())

	srv := &http.Server{
		Addr:              w.cfg.WorkerHealthAddr,
		Handler:           mux,
		ReadHeaderTimeout: shutdownTimeout,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			w.logger.Warn("health server shutdown", "error", err)
		}
	}()

	w.logger.Info("health server listening", "addr", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		w.logger.Error("health server", "error", err)
	}
}

func (w *worker) liveness(rw http.ResponseWriter, _ *http.Request) {
	s := w.container.OutboxProcessor.GetStats()
	writeJSON(rw, http.StatusOK, map[string]any{
		"status":            "ok",
		"outbox_running":    s.IsRunning,
		"published":         s.PublishedCount,
		"failed":            s.FailedCount,
		"dead":              s.DeadCount,
		"oldest_pending_at": s.OldestMessageAt,
		"last_processed_at": s.LastProcessedAt,
		"last_error_at":     s.LastErrorAt,
		"last_error":        s.LastError,
	})
}

func (w *worker) readiness(rw http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), probeTimeout)
	defer cancel()

	report := w.container.Health.Report(ctx)
	code := http.StatusOK
	if report.Status == observability.HealthStatusUnhealthy {
		code = http.StatusServiceUnavailable
	}
	writeJSON(rw, code, report)
}

func writeJSON(rw http.ResponseWriter, code int, v any) {
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(code)
	if err := json.NewEncoder(rw).Encode(v); err != nil {
		slog.Warn("write response", "error", err)
	}
}
