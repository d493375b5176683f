package dedupe

import (
	"context"
	"sync"
	"time"
)

// MemoryLog is a process-local domain.DeliveryLog for local mode.
type MemoryLog struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]time.Time
}

// NewMemoryLog creates an in-memory delivery log. A zero ttl never expires.
func NewMemoryLog(ttl time.Duration) *MemoryLog {
	return &MemoryLog{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]time.Time),
	}
}

// Claim implements domain.DeliveryLog.
func (l *MemoryLog) Claim(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if claimed, ok := l.entries[key]; ok && (l.ttl == 0 || now.Sub(claimed) < l.ttl) {
		return false, nil
	}
	l.entries[key] = now
	return true, nil
}

// Release implements domain.DeliveryLog.
func (l *MemoryLog) Release(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	delete(l.entries, key)
	return nil
}
