package outbox

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/huddle/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/huddle/pkg/observability"
)

// ProcessorConfig holds configuration for the outbox processor.
type ProcessorConfig struct {
	PollInterval     time.Duration
	BatchSize        int
	MaxRetries       int
	RetryBackoffBase time.Duration
	RetryBackoffMax  time.Duration
}

// DefaultProcessorConfig returns sensible defaults.
func DefaultProcessorConfig() ProcessorConfig {
	return ProcessorConfig{
		PollInterval:     100 * time.Millisecond,
		BatchSize:        100,
		MaxRetries:       5,
		RetryBackoffBase: 1 * time.Second,
		RetryBackoffMax:  1 * time.Minute,
	}
}

// Processor polls the outbox and publishes events to the message broker.
// Each publish carries the correlation id and actor of the command that
// wrote the event.
type Processor struct {
	repo      Repository
	publisher eventbus.Publisher
	config    ProcessorConfig
	logger    *slog.Logger
	metrics   observability.Metrics
	now       func() time.Time

	wg       sync.WaitGroup
	stopChan chan struct{}
	running  bool
	mu       sync.Mutex

	stats tracker
}

// NewProcessor creates a new outbox processor.
func NewProcessor(repo Repository, publisher eventbus.Publisher, config ProcessorConfig, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		repo:      repo,
		publisher: publisher,
		config:    config,
		logger:    logger,
		metrics:   observability.NoopMetrics{},
		now:       time.Now,
		stopChan:  make(chan struct{}),
	}
}

// WithMetrics reports publish outcomes to m.
func (p *Processor) WithMetrics(m observability.Metrics) *Processor {
	if m != nil {
		p.metrics = m
	}
	return p
}

// WithClock replaces the clock used for retry scheduling and lag.
func (p *Processor) WithClock(now func() time.Time) *Processor {
	if now != nil {
		p.now = now
	}
	return p
}

// Start begins the polling loop in a goroutine.
func (p *Processor) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return nil
	}
	p.running = true
	p.stopChan = make(chan struct{})
	p.mu.Unlock()

	p.wg.Add(1)
	go p.run(ctx)

	p.logger.Info("outbox processor started",
		"poll_interval", p.config.PollInterval,
		"batch_size", p.config.BatchSize,
	)

	return nil
}

// Stop gracefully stops the processor.
func (p *Processor) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	close(p.stopChan)
	p.mu.Unlock()

	p.wg.Wait()
	p.logger.Info("outbox processor stopped")
}

// IsRunning returns true if the processor is running.
func (p *Processor) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

func (p *Processor) run(ctx context.Context) {
	defer p.wg.Done()

	ticker := time.NewTicker(p.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.stopChan:
			return
		case <-ticker.C:
			if _, err := p.processBatch(ctx); err != nil {
				p.logger.Error("failed to process outbox batch", "error", err)
			}
		}
	}
}

func (p *Processor) processBatch(ctx context.Context) (int, error) {
	messages, err := p.repo.Pending(ctx, p.config.BatchSize)
	if err != nil {
		p.stats.fail(err, p.now())
		return 0, err
	}

	p.observeBatch(messages)

	published := 0
	for _, msg := range messages {
		if p.publish(ctx, msg) {
			published++
		}
	}
	return published, nil
}

// publish sends one message and records the outcome. It reports whether
// the message is now published.
func (p *Processor) publish(ctx context.Context, msg *Message) bool {
	meta := msg.EventMetadata()
	if meta.CorrelationID != uuid.Nil {
		ctx = observability.WithCorrelationID(ctx, meta.CorrelationID.String())
	}
	if meta.Actor != "" {
		ctx = observability.WithActor(ctx, meta.Actor)
	}
	logger := p.logger.With(
		"id", msg.ID,
		"routing_key", msg.RoutingKey,
		"event_id", msg.EventID,
	)

	err := p.publisher.Publish(ctx, msg.RoutingKey, msg.Payload)
	if err == nil {
		if markErr := p.repo.MarkPublished(ctx, msg.ID); markErr != nil {
			logger.ErrorContext(ctx, "failed to mark message as published", "error", markErr)
			return false
		}
		p.settle(outcomePublished, msg.RoutingKey, nil)
		return true
	}

	logger.WarnContext(ctx, "failed to publish message",
		"causation_id", nilAsEmpty(meta.CausationID),
		"retry_count", msg.RetryCount,
		"error", err,
	)

	if !msg.CanRetry(p.config.MaxRetries) {
		p.settle(outcomeDead, msg.RoutingKey, err)
		if markErr := p.repo.MarkDead(ctx, msg.ID, err.Error()); markErr != nil {
			logger.ErrorContext(ctx, "failed to mark message as dead-lettered", "error", markErr)
		}
		return false
	}

	p.settle(outcomeRetrying, msg.RoutingKey, err)
	nextRetryAt := p.now().Add(p.retryBackoff(msg.RetryCount + 1))
	if markErr := p.repo.MarkFailed(ctx, msg.ID, err.Error(), nextRetryAt); markErr != nil {
		logger.ErrorContext(ctx, "failed to mark message as failed", "error", markErr)
	}
	return false
}

func (p *Processor) retryBackoff(nextRetryCount int) time.Duration {
	base := p.config.RetryBackoffBase
	if base <= 0 {
		base = time.Second
	}
	ceiling := p.config.RetryBackoffMax
	if ceiling <= 0 {
		ceiling = time.Minute
	}
	if nextRetryCount < 1 {
		nextRetryCount = 1
	}

	shift := nextRetryCount - 1
	if shift > 30 {
		return ceiling
	}
	return min(base*time.Duration(1<<uint(shift)), ceiling)
}

// ProcessOnce processes a single batch synchronously.
func (p *Processor) ProcessOnce(ctx context.Context) error {
	_, err := p.processBatch(ctx)
	return err
}

// maxDrainRounds bounds Drain when publishing keeps failing.
const maxDrainRounds = 100

// Drain processes batches until one publishes nothing and returns how many
// messages were published. Messages waiting for a retry are left alone.
func (p *Processor) Drain(ctx context.Context) (int, error) {
	total := 0
	for range maxDrainRounds {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		n, err := p.processBatch(ctx)
		total += n
		if err != nil || n == 0 {
			return total, err
		}
	}
	return total, nil
}

func nilAsEmpty(id uuid.UUID) string {
	if id == uuid.Nil {
		return ""
	}
	return id.String()
}
