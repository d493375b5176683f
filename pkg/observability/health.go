package observability

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/samber/lo"
)

// HealthStatus is the state of one component or of the whole process.
type HealthStatus string

const (
	HealthStatusHealthy   HealthStatus = "healthy"
	HealthStatusDegraded  HealthStatus = "degraded"
	HealthStatusUnhealthy HealthStatus = "unhealthy"
)

var healthRank = map[HealthStatus]int{
	HealthStatusHealthy:   0,
	HealthStatusDegraded:  1,
	HealthStatusUnhealthy: 2,
}

func (s HealthStatus) worse(other HealthStatus) HealthStatus {
	if healthRank[other] > healthRank[s] {
		return other
	}
	return s
}

// ProbeResult is what a Probe observed.
type ProbeResult struct {
	Status    HealthStatus   `json:"status"`
	Message   string         `json:"message,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
	Took      time.Duration  `json:"took_ns"`
	CheckedAt time.Time      `json:"checked_at"`
}

// Probe checks one component.
type Probe func(ctx context.Context) ProbeResult

// HealthReport is the outcome of running every registered probe.
type HealthReport struct {
	Status    HealthStatus           `json:"status"`
	CheckedAt time.Time              `json:"checked_at"`
	Checks    map[string]ProbeResult `json:"checks"`
}

// HealthRegistry holds named probes. The store is required; brokers, caches
// and notifier channels only degrade the report.
type HealthRegistry struct {
	mu     sync.RWMutex
	probes map[string]Probe
	now    func() time.Time
}

func NewHealthRegistry() *HealthRegistry {
	return &HealthRegistry{probes: make(map[string]Probe), now: time.Now}
}

// Register adds or replaces the probe for a component.
func (r *HealthRegistry) Register(name string, probe Probe) {
	r.mu.Lock()
	r.probes[name] = probe
	r.mu.Unlock()
}

// Names lists the registered components in sorted order.
func (r *HealthRegistry) Names() []string {
	r.mu.RLock()
	names := lo.Keys(r.probes)
	r.mu.RUnlock()
	slices.Sort(names)
	return names
}

// Report runs all probes concurrently. The worst status wins.
func (r *HealthRegistry) Report(ctx context.Context) HealthReport {
	r.mu.RLock()
	probes := lo.Entries(r.probes)
	r.mu.RUnlock()

	results := make([]ProbeResult, len(probes))
	var wg sync.WaitGroup
	for i, p := range probes {
		wg.Add(1)
		go func() {
			defer wg.Done()
			start := r.now()
			res := p.Value(ctx)
			res.CheckedAt = r.now()
			res.Took = res.CheckedAt.Sub(start)
			results[i] = res
		}()
	}
	wg.Wait()

	report := HealthReport{
		Status:    HealthStatusHealthy,
		CheckedAt: r.now(),
		Checks:    make(map[string]ProbeResult, len(probes)),
	}
	for i, p := range probes {
		report.Checks[p.Key] = results[i]
		report.Status = report.Status.worse(results[i].Status)
	}
	return report
}

// PingProbe reports onFailure when ping returns an error.
func PingProbe(component string, onFailure HealthStatus, ping func(ctx context.Context) error) Probe {
	return func(ctx context.Context) ProbeResult {
		if err := ping(ctx); err != nil {
			return ProbeResult{Status: onFailure, Message: component + " unreachable: " + err.Error()}
		}
		return ProbeResult{Status: HealthStatusHealthy, Message: component + " reachable"}
	}
}

// RequiredProbe marks the process unhealthy when ping fails.
func RequiredProbe(component string, ping func(ctx context.Context) error) Probe {
	return PingProbe(component, HealthStatusUnhealthy, ping)
}

// OptionalProbe only degrades the process when ping fails.
func OptionalProbe(component string, ping func(ctx context.Context) error) Probe {
	return PingProbe(component, HealthStatusDegraded, ping)
}

// BreakerProbe degrades while a circuit breaker is open.
func BreakerProbe(state func() string) Probe {
	return func(context.Context) ProbeResult {
		current := state()
		status := HealthStatusHealthy
		if current == "open" {
			status = HealthStatusDegraded
		}
		return ProbeResult{
			Status:  status,
			Message: "circuit " + current,
			Details: map[string]any{"state": current},
		}
	}
}
