package observability

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func up(context.Context) error { return nil }

func down(context.Context) error { return errors.New("connection refused") }

func TestHealthRegistry_Empty(t *testing.T) {
	report := NewHealthRegistry().Report(context.Background())

	assert.Equal(t, HealthStatusHealthy, report.Status)
	assert.Empty(t, report.Checks)
}

func TestHealthRegistry_WorstStatusWins(t *testing.T) {
	tests := []struct {
		name     string
		database func(context.Context) error
		redis    func(context.Context) error
		want     HealthStatus
	}{
		{"all up", up, up, HealthStatusHealthy},
		{"cache down", up, down, HealthStatusDegraded},
		{"store down", down, up, HealthStatusUnhealthy},
		{"both down", down, down, HealthStatusUnhealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewHealthRegistry()
			r.Register("redis", OptionalProbe("redis", tt.redis))
			r.Register("database", RequiredProbe("database", tt.database))

			report := r.Report(context.Background())

			assert.Equal(t, tt.want, report.Status)
			assert.Len(t, report.Checks, 2)
			assert.Equal(t, []string{"database", "redis"}, r.Names())
		})
	}
}

func TestHealthRegistry_TimesProbes(t *testing.T) {
	clock := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	r := NewHealthRegistry()
	r.now = func() time.Time { return clock }
	r.Register("slow", func(context.Context) ProbeResult {
		clock = clock.Add(30 * time.Millisecond)
		return ProbeResult{Status: HealthStatusHealthy}
	})

	res := r.Report(context.Background()).Checks["slow"]

	assert.Equal(t, clock, res.CheckedAt)
	assert.Equal(t, 30*time.Millisecond, res.Took)
}

func TestPingProbe_Message(t *testing.T) {
	result := OptionalProbe("rabbitmq", down)(context.Background())

	assert.Equal(t, HealthStatusDegraded, result.Status)
	assert.Equal(t, "rabbitmq unreachable: connection refused", result.Message)
	assert.Equal(t, "database reachable", RequiredProbe("database", up)(context.Background()).Message)
}

func TestBreakerProbe(t *testing.T) {
	state := "closed"
	probe := BreakerProbe(func() string { return state })

	assert.Equal(t, HealthStatusHealthy, probe(context.Background()).Status)

	state = "open"
	result := probe(context.Background())
	assert.Equal(t, HealthStatusDegraded, result.Status)
	assert.Equal(t, "open", result.Details["state"])

	state = "half-open"
	assert.Equal(t, HealthStatusHealthy, probe(context.Background()).Status)
}

func TestHealthReport_JSON(t *testing.T) {
	r := NewHealthRegistry()
	r.Register("notifier.smtp", BreakerProbe(func() string { return "open" }))

	body, err := json.Marshal(r.Report(context.Background()))
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(body, &decoded))
	assert.Equal(t, "degraded", decoded["status"])
	assert.Contains(t, decoded["checks"], "notifier.smtp")
}
