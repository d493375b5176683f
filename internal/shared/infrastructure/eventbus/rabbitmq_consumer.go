package eventbus

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/felixgeelhaar/huddle/pkg/observability"
)

// DefaultConsumerQueueName is the queue notification consumers read from.
const DefaultConsumerQueueName = "huddle.notifications"

// RabbitMQConsumerConfig configures the RabbitMQ consumer.
type RabbitMQConsumerConfig struct {
	URL       string
	QueueName string
	Exchange  string
	Logger    *slog.Logger
}

// RabbitMQConsumer reads the notification queue and dispatches each event
// through a ConsumerRegistry. A delivery that fails twice is dead-lettered.
type RabbitMQConsumer struct {
	link     *link
	queue    string
	registry *ConsumerRegistry
	logger   *slog.Logger
	metrics  observability.Metrics

	mu   sync.Mutex
	stop context.CancelFunc
}

// NewRabbitMQConsumer connects and declares the queue with its dead-letter
// route.
func NewRabbitMQConsumer(cfg RabbitMQConsumerConfig, registry *ConsumerRegistry) (*RabbitMQConsumer, error) {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.QueueName == "" {
		cfg.QueueName = DefaultConsumerQueueName
	}
	if cfg.Exchange == "" {
		cfg.Exchange = ExchangeName
	}

	l, err := dial(cfg.URL, cfg.Exchange, cfg.Logger)
	if err != nil {
		return nil, err
	}
	if err := declareQueues(l.channel, cfg.QueueName); err != nil {
		_ = l.close()
		return nil, err
	}
	cfg.Logger.Info("rabbitmq consumer connected", "queue", cfg.QueueName, "exchange", cfg.Exchange)

	c := newConsumer(cfg.QueueName, registry, cfg.Logger)
	c.link = l
	return c, nil
}

func newConsumer(queue string, registry *ConsumerRegistry, logger *slog.Logger) *RabbitMQConsumer {
	return &RabbitMQConsumer{
		queue:    queue,
		registry: registry,
		logger:   logger,
		metrics:  observability.NoopMetrics{},
	}
}

// declareQueues declares queue and a "<queue>.dead" queue that receives
// its rejected deliveries through DeadLetterExchange.
func declareQueues(ch *amqp.Channel, queue string) error {
	dead := queue + ".dead"
	steps := []struct {
		what string
		run  func() error
	}{
		{"dead-letter exchange", func() error {
			return ch.ExchangeDeclare(DeadLetterExchange, amqp.ExchangeFanout, true, false, false, false, nil)
		}},
		{"queue " + dead, func() error {
			_, err := ch.QueueDeclare(dead, true, false, false, false, nil)
			return err
		}},
		{"binding " + dead, func() error {
			return ch.QueueBind(dead, "", DeadLetterExchange, false, nil)
		}},
		{"queue " + queue, func() error {
			_, err := ch.QueueDeclare(queue, true, false, false, false,
				amqp.Table{"x-dead-letter-exchange": DeadLetterExchange})
			return err
		}},
	}
	for _, s := range steps {
		if err := s.run(); err != nil {
			return fmt.Errorf("declare %s: %w", s.what, err)
		}
	}
	return nil
}

// WithMetrics records rejected deliveries.
func (c *RabbitMQConsumer) WithMetrics(m observability.Metrics) *RabbitMQConsumer {
	if m != nil {
		c.metrics = m
	}
	return c
}

// RegisterConsumer subscribes consumer and binds the queue to every routing
// key no earlier consumer asked for.
func (c *RabbitMQConsumer) RegisterConsumer(consumer EventConsumer) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, key := range c.registry.Register(consumer) {
		if err := c.link.channel.QueueBind(c.queue, key, c.link.exchange, false, nil); err != nil {
			c.logger.Error("bind queue", "queue", c.queue, "routing_key", key, "error", err)
			continue
		}
		c.logger.Debug("queue bound", "queue", c.queue, "routing_key", key)
	}
}

// Start consumes until ctx is cancelled or Close is called. It returns nil
// after Close.
func (c *RabbitMQConsumer) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.stop != nil {
		c.mu.Unlock()
		return errors.New("consumer already running")
	}
	parent := ctx
	ctx, c.stop = context.WithCancel(parent)
	c.mu.Unlock()

	// Prefetch of one keeps confirmations in publish order.
	if err := c.link.channel.Qos(1, 0, false); err != nil {
		return fmt.Errorf("set qos: %w", err)
	}
	deliveries, err := c.link.channel.Consume(c.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume %s: %w", c.queue, err)
	}
	c.logger.Info("consuming events", "queue", c.queue)

	for {
		select {
		case <-ctx.Done():
			if parent.Err() == nil {
				return nil
			}
			return parent.Err()
		case d, ok := <-deliveries:
			if !ok {
				return errors.New("delivery channel closed")
			}
			c.settle(ctx, d)
		}
	}
}

// verdict is what happens to a delivery after dispatch.
type verdict int

const (
	ack verdict = iota
	requeue
	deadLetter
)

func judge(err error, redelivered bool) verdict {
	switch {
	case err == nil:
		return ack
	case redelivered:
		return deadLetter
	default:
		return requeue
	}
}

// settle dispatches one delivery and acks, requeues or dead-letters it.
// Bodies that are not an event envelope are dead-lettered at once.
func (c *RabbitMQConsumer) settle(ctx context.Context, d amqp.Delivery) {
	var event ConsumedEvent
	if err := json.Unmarshal(d.Body, &event); err != nil {
		c.logger.ErrorContext(ctx, "undecodable delivery", "routing_key", d.RoutingKey, "error", err)
		c.reject(ctx, d, "malformed")
		return
	}
	if event.RoutingKey == "" {
		event.RoutingKey = d.RoutingKey
	}
	if id := cmp.Or(event.Metadata.CorrelationID, d.CorrelationId); id != "" {
		ctx = observability.WithCorrelationID(ctx, id)
	}
	if event.Metadata.Actor != "" {
		ctx = observability.WithActor(ctx, event.Metadata.Actor)
	}

	start := time.Now()
	err := c.registry.Dispatch(ctx, &event)
	logger := c.logger.With(
		"routing_key", event.RoutingKey,
		"event_id", event.EventID,
		observability.DurationKey, time.Since(start).Milliseconds(),
	)

	switch judge(err, d.Redelivered) {
	case ack:
		logger.DebugContext(ctx, "event handled")
		if err := d.Ack(false); err != nil {
			logger.ErrorContext(ctx, "ack delivery", "error", err)
		}
	case requeue:
		logger.WarnContext(ctx, "event failed, requeueing", "error", err)
		if err := d.Nack(false, true); err != nil {
			logger.ErrorContext(ctx, "requeue delivery", "error", err)
		}
	case deadLetter:
		logger.ErrorContext(ctx, "event failed on redelivery, dead-lettering", "error", err)
		c.reject(ctx, d, "dispatch_failed")
	}
}

func (c *RabbitMQConsumer) reject(ctx context.Context, d amqp.Delivery, reason string) {
	c.metrics.Counter(observability.MetricEventsRejected, 1, observability.T("reason", reason))
	if err := d.Nack(false, false); err != nil {
		c.logger.ErrorContext(ctx, "reject delivery", "error", err)
	}
}

// Ping reports whether the broker connection is open.
func (c *RabbitMQConsumer) Ping(ctx context.Context) error {
	return c.link.ping(ctx)
}

// Close stops Start and closes the connection.
func (c *RabbitMQConsumer) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stop != nil {
		c.stop()
	}
	if err := c.link.close(); err != nil {
		return err
	}
	c.logger.Info("rabbitmq consumer closed")
	return nil
}
