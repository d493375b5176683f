package eventbus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/samber/lo"
)

// ConsumerRegistry routes envelopes to the consumers subscribed to their
// routing key. It is shared by the in-process bus and the RabbitMQ consumer.
type ConsumerRegistry struct {
	mu        sync.RWMutex
	consumers map[string][]EventConsumer
	logger    *slog.Logger
}

// NewConsumerRegistry creates an empty registry.
func NewConsumerRegistry(logger *slog.Logger) *ConsumerRegistry {
	if logger == nil {
		logger = slog.Default()
	}
	return &ConsumerRegistry{
		consumers: make(map[string][]EventConsumer),
		logger:    logger,
	}
}

// Register subscribes consumer to its event types and returns the routing
// keys that had no consumer before, so a broker binding is made once per key.
func (r *ConsumerRegistry) Register(consumer EventConsumer) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var added []string
	for _, key := range lo.Uniq(consumer.EventTypes()) {
		if len(r.consumers[key]) == 0 {
			added = append(added, key)
		}
		r.consumers[key] = append(r.consumers[key], consumer)
		r.logger.Debug("consumer subscribed", "routing_key", key, "consumer", fmt.Sprintf("%T", consumer))
	}
	return added
}

// Consumers returns the consumers subscribed to routingKey.
func (r *ConsumerRegistry) Consumers(routingKey string) []EventConsumer {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]EventConsumer(nil), r.consumers[routingKey]...)
}

// RoutingKeys lists every key with at least one consumer, sorted.
func (r *ConsumerRegistry) RoutingKeys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := lo.Keys(r.consumers)
	sort.Strings(keys)
	return keys
}

// Dispatch hands event to every subscribed consumer. All consumers run even
// when one fails; the failures are joined. An event nobody subscribes to is
// not an error.
func (r *ConsumerRegistry) Dispatch(ctx context.Context, event *ConsumedEvent) error {
	consumers := r.Consumers(event.RoutingKey)
	if len(consumers) == 0 {
		r.logger.DebugContext(ctx, "no consumer for event", "routing_key", event.RoutingKey)
		return nil
	}

	var errs []error
	for _, consumer := range consumers {
		if err := consumer.Handle(ctx, event); err != nil {
			r.logger.ErrorContext(ctx, "consumer failed",
				"routing_key", event.RoutingKey,
				"event_id", event.EventID,
				"consumer", fmt.Sprintf("%T", consumer),
				"error", err,
			)
			errs = append(errs, fmt.Errorf("%T: %w", consumer, err))
		}
	}
	return errors.Join(errs...)
}
