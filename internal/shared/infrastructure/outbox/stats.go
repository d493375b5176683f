package outbox

import (
	"sync"
	"time"

	"github.com/samber/lo"

	"github.com/felixgeelhaar/huddle/pkg/observability"
)

// Stats is a snapshot of what a Processor has done since it was built.
type Stats struct {
	IsRunning       bool
	PublishedCount  uint64
	FailedCount     uint64
	DeadCount       uint64
	LagSeconds      float64
	LastError       string
	LastErrorAt     *time.Time
	LastProcessedAt *time.Time
	OldestMessageAt *time.Time
}

type outcome int

const (
	outcomePublished outcome = iota
	outcomeRetrying
	outcomeDead
)

var outcomeMetric = map[outcome]string{
	outcomePublished: observability.MetricOutboxPublished,
	outcomeRetrying:  observability.MetricOutboxFailed,
	outcomeDead:      observability.MetricOutboxDeadLettered,
}

// tracker accumulates Stats. The zero value is ready to use.
type tracker struct {
	mu     sync.Mutex
	counts [3]uint64

	lastErr     string
	lastErrAt   time.Time
	lastBatchAt time.Time
	oldest      time.Time
	lag         float64
}

func (t *tracker) settle(o outcome, err error, at time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.counts[o]++
	if err != nil {
		t.lastErr, t.lastErrAt = err.Error(), at
	}
}

func (t *tracker) fail(err error, at time.Time) {
	t.mu.Lock()
	t.lastErr, t.lastErrAt = err.Error(), at
	t.mu.Unlock()
}

// batch records a fetched batch and returns the age of its oldest message.
func (t *tracker) batch(msgs []*Message, at time.Time) float64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.lastBatchAt = at
	t.oldest, t.lag = time.Time{}, 0
	if len(msgs) == 0 {
		return 0
	}
	first := lo.MinBy(msgs, func(a, b *Message) bool { return a.CreatedAt.Before(b.CreatedAt) })
	t.oldest = first.CreatedAt
	t.lag = max(at.Sub(first.CreatedAt).Seconds(), 0)
	return t.lag
}

func (t *tracker) snapshot(running bool) Stats {
	t.mu.Lock()
	defer t.mu.Unlock()

	return Stats{
		IsRunning:       running,
		PublishedCount:  t.counts[outcomePublished],
		FailedCount:     t.counts[outcomeRetrying],
		DeadCount:       t.counts[outcomeDead],
		LagSeconds:      t.lag,
		LastError:       t.lastErr,
		LastErrorAt:     timePtr(t.lastErrAt),
		LastProcessedAt: timePtr(t.lastBatchAt),
		OldestMessageAt: timePtr(t.oldest),
	}
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

// GetStats returns a snapshot of the processor's counters.
func (p *Processor) GetStats() Stats {
	return p.stats.snapshot(p.IsRunning())
}

func (p *Processor) settle(o outcome, routingKey string, err error) {
	p.stats.settle(o, err, p.now())
	p.metrics.Counter(outcomeMetric[o], 1, observability.T("routing_key", routingKey))
}

func (p *Processor) observeBatch(msgs []*Message) {
	lag := p.stats.batch(msgs, p.now())
	p.metrics.Gauge(observability.MetricOutboxLagSeconds, lag)
}
