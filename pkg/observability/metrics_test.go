package observability

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var (
	_ Metrics = NoopMetrics{}
	_ Metrics = (*InMemoryMetrics)(nil)
	_ Metrics = (*PrometheusMetrics)(nil)
)

func TestInMemoryMetrics_Series(t *testing.T) {
	m := NewInMemoryMetrics()

	m.Counter(MetricNotificationsSent, 1, T("channel", "email"))
	m.Counter(MetricNotificationsSent, 2, T("channel", "email"))
	m.Counter(MetricNotificationsSent, 1, T("channel", "caldav"))
	m.Counter(MetricMeetingsScheduled, 1)

	assert.Equal(t, int64(3), m.GetCounter(MetricNotificationsSent, T("channel", "email")))
	assert.Equal(t, int64(1), m.GetCounter(MetricNotificationsSent, T("channel", "caldav")))
	assert.Zero(t, m.GetCounter(MetricNotificationsSent), "untagged is its own series")
	assert.Equal(t, int64(1), m.GetCounter(MetricMeetingsScheduled))
}

func TestInMemoryMetrics_TagOrderIgnored(t *testing.T) {
	m := NewInMemoryMetrics()

	m.Counter(MetricOperationTotal, 1, T(OperationKey, "schedule_meeting"), T(OutcomeKey, "scheduled"))

	assert.Equal(t, int64(1),
		m.GetCounter(MetricOperationTotal, T(OutcomeKey, "scheduled"), T(OperationKey, "schedule_meeting")))
}

func TestInMemoryMetrics_GaugeAndTimings(t *testing.T) {
	m := NewInMemoryMetrics()

	m.Gauge(MetricOutboxLagSeconds, 12)
	m.Gauge(MetricOutboxLagSeconds, 0.5)
	m.Timing(MetricOperationDuration, 40*time.Millisecond, T(OperationKey, "drain"))
	m.Timing(MetricOperationDuration, 10*time.Millisecond, T(OperationKey, "drain"))

	assert.InDelta(t, 0.5, m.GetGauge(MetricOutboxLagSeconds), 0)
	timings := m.GetTimings(MetricOperationDuration, T(OperationKey, "drain"))
	assert.Equal(t, []time.Duration{40 * time.Millisecond, 10 * time.Millisecond}, timings)

	timings[0] = 0
	assert.Equal(t, 40*time.Millisecond, m.GetTimings(MetricOperationDuration, T(OperationKey, "drain"))[0])
}

func TestSeriesKey(t *testing.T) {
	assert.Equal(t, "huddle.outbox.published", seriesKey(MetricOutboxPublished, nil))
	assert.Equal(t, "huddle.events.rejected{reason=malformed}",
		seriesKey(MetricEventsRejected, []Tag{T("reason", "malformed")}))
	assert.Equal(t, "x{a=1,b=2}", seriesKey("x", []Tag{T("b", "2"), T("a", "1")}))
}

func TestMetricNames(t *testing.T) {
	names := []string{
		MetricOperationTotal, MetricOperationDuration, MetricOperationErrors,
		MetricResolutions, MetricMessagesPosted, MetricMeetingsScheduled,
		MetricNotificationsSent, MetricNotificationsFailed,
		MetricOutboxPublished, MetricOutboxFailed, MetricOutboxDeadLettered,
		MetricOutboxLagSeconds, MetricEventsConsumed, MetricEventsRejected,
	}
	seen := map[string]bool{}
	for _, name := range names {
		assert.True(t, strings.HasPrefix(name, "huddle."), name)
		assert.False(t, seen[name], "duplicate %s", name)
		seen[name] = true
	}
}
