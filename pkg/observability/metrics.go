package observability

import (
	"sort"
	"strings"
	"sync"
	"time"
)

// Metrics records counters, gauges and timings. Tags become labels; a
// metric name should always be recorded with the same tag keys.
type Metrics interface {
	Counter(name string, value int64, tags ...Tag)
	Gauge(name string, value float64, tags ...Tag)
	Timing(name string, duration time.Duration, tags ...Tag)
}

// Tag is one metric label.
type Tag struct {
	Key   string
	Value string
}

// T is shorthand for Tag{Key: key, Value: value}.
func T(key, value string) Tag {
	return Tag{Key: key, Value: value}
}

// NoopMetrics discards everything.
type NoopMetrics struct{}

func (NoopMetrics) Counter(string, int64, ...Tag)          {}
func (NoopMetrics) Gauge(string, float64, ...Tag)          {}
func (NoopMetrics) Timing(string, time.Duration, ...Tag) {}

// InMemoryMetrics keeps every sample in memory. Tests use it to assert on
// what a component recorded; tag order does not matter when reading back.
type InMemoryMetrics struct {
	mu       sync.RWMutex
	counters map[string]int64
	gauges   map[string]float64
	timings  map[string][]time.Duration
}

// NewInMemoryMetrics creates an empty collector.
func NewInMemoryMetrics() *InMemoryMetrics {
	return &InMemoryMetrics{
		counters: make(map[string]int64),
		gauges:   make(map[string]float64),
		timings:  make(map[string][]time.Duration),
	}
}

func (m *InMemoryMetrics) Counter(name string, value int64, tags ...Tag) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters[seriesKey(name, tags)] += value
}

func (m *InMemoryMetrics) Gauge(name string, value float64, tags ...Tag) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gauges[seriesKey(name, tags)] = value
}

func (m *InMemoryMetrics) Timing(name string, duration time.Duration, tags ...Tag) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := seriesKey(name, tags)
	m.timings[key] = append(m.timings[key], duration)
}

// GetCounter returns the sum recorded for the series.
func (m *InMemoryMetrics) GetCounter(name string, tags ...Tag) int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.counters[seriesKey(name, tags)]
}

// GetGauge returns the last value set for the series.
func (m *InMemoryMetrics) GetGauge(name string, tags ...Tag) float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.gauges[seriesKey(name, tags)]
}

// GetTimings returns the durations recorded for the series, oldest first.
func (m *InMemoryMetrics) GetTimings(name string, tags ...Tag) []time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]time.Duration(nil), m.timings[seriesKey(name, tags)]...)
}

// seriesKey renders name{k1=v1,k2=v2} with keys sorted.
func seriesKey(name string, tags []Tag) string {
	if len(tags) == 0 {
		return name
	}
	pairs := make([]string, 0, len(tags))
	for _, t := range tags {
		pairs = append(pairs, t.Key+"="+t.Value)
	}
	sort.Strings(pairs)
	return name + "{" + strings.Join(pairs, ",") + "}"
}

// Standard metric names used throughout Huddle.
const (
	MetricOperationTotal    = "huddle.operation.total"
	MetricOperationDuration = "huddle.operation.duration"
	MetricOperationErrors   = "huddle.operation.errors"

	// Tagged with outcome.
	MetricResolutions = "huddle.resolver.resolutions"

	MetricMessagesPosted    = "huddle.chat.messages_posted"
	MetricMeetingsScheduled = "huddle.meetings.scheduled"

	// Tagged with channel.
	MetricNotificationsSent   = "huddle.notifications.sent"
	MetricNotificationsFailed = "huddle.notifications.failed"

	MetricOutboxPublished    = "huddle.outbox.published"
	MetricOutboxFailed       = "huddle.outbox.failed"
	MetricOutboxDeadLettered = "huddle.outbox.dead_lettered"
	MetricOutboxLagSeconds   = "huddle.outbox.lag_seconds"

	MetricEventsConsumed = "huddle.events.consumed"
	// Tagged with reason.
	MetricEventsRejected = "huddle.events.rejected"
)
