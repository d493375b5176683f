// Package resilience guards notifiers with a circuit breaker.
package resilience

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/felixgeelhaar/huddle/internal/notifications/domain"
	"github.com/felixgeelhaar/huddle/pkg/observability"
)

// ErrCircuitOpen is returned while the breaker rejects calls.
var ErrCircuitOpen = errors.New("notifier circuit open")

// BreakerConfig configures the breaker behavior.
type BreakerConfig struct {
	// MaxRequests is the maximum number of requests allowed in half-open state.
	MaxRequests uint32
	// Interval is the cyclic period of the closed state.
	Interval time.Duration
	// Timeout is the period of the open state.
	Timeout time.Duration
	// FailureThreshold trips the breaker after this many consecutive failures.
	FailureThreshold uint32
}

// DefaultBreakerConfig returns sensible defaults.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          30 * time.Second,
		FailureThreshold: 5,
	}
}

// BreakerNotifier wraps a notifier with a circuit breaker.
type BreakerNotifier struct {
	next    domain.Notifier
	breaker *gobreaker.CircuitBreaker[struct{}]
	logger  *slog.Logger
	metrics observability.Metrics
}

// NewBreakerNotifier wraps next.
func NewBreakerNotifier(next domain.Notifier, cfg BreakerConfig, logger *slog.Logger) *BreakerNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	n := &BreakerNotifier{
		next:    next,
		logger:  logger,
		metrics: observability.NoopMetrics{},
	}

	settings := gobreaker.Settings{
		Name:        next.Name(),
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		IsSuccessful: func(err error) bool {
			// Disabled channels and invalid input are not remote failures.
			return err == nil ||
				errors.Is(err, domain.ErrNotifierDisabled) ||
				errors.Is(err, domain.ErrNoRecipients)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			n.logger.Info("circuit breaker state changed",
				"notifier", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	}
	n.breaker = gobreaker.NewCircuitBreaker[struct{}](settings)
	return n
}

// WithMetrics records rejected calls on m.
func (n *BreakerNotifier) WithMetrics(m observability.Metrics) *BreakerNotifier {
	if m != nil {
		n.metrics = m
	}
	return n
}

// Name implements domain.Notifier.
func (n *BreakerNotifier) Name() string { return n.next.Name() }

// State reports the breaker state.
func (n *BreakerNotifier) State() gobreaker.State { return n.breaker.State() }

// Notify implements domain.Notifier.
func (n *BreakerNotifier) Notify(ctx context.Context, c domain.Confirmation) error {
	_, err := n.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, n.next.Notify(ctx, c)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		n.metrics.Counter(observability.MetricNotificationsFailed, 1,
			observability.T("notifier", n.Name()),
			observability.T("reason", "circuit_open"),
		)
		return errors.Join(ErrCircuitOpen, err)
	}
	return err
}
