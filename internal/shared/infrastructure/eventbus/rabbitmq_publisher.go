package eventbus

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// RabbitMQPublisher sends outbox payloads to the domain event exchange.
// It is safe for concurrent use; publishes share one channel.
type RabbitMQPublisher struct {
	mu   sync.Mutex
	link *link
	now  func() time.Time
}

// NewRabbitMQPublisher dials url and declares the exchange.
func NewRabbitMQPublisher(url string, logger *slog.Logger) (*RabbitMQPublisher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	l, err := dial(url, ExchangeName, logger)
	if err != nil {
		return nil, err
	}
	logger.Info("rabbitmq publisher connected", "exchange", ExchangeName)
	return &RabbitMQPublisher{link: l, now: time.Now}, nil
}

// Publish implements Publisher. The envelope's event id and correlation id
// become the AMQP message id and correlation id.
func (p *RabbitMQPublisher) Publish(ctx context.Context, routingKey string, payload []byte) error {
	msg := publishing(routingKey, payload, p.now())

	p.mu.Lock()
	err := p.link.channel.PublishWithContext(ctx, p.link.exchange, routingKey, false, false, msg)
	p.mu.Unlock()
	if err != nil {
		return fmt.Errorf("publish %s: %w", routingKey, err)
	}

	p.link.logger.DebugContext(ctx, "event published",
		"routing_key", routingKey,
		"message_id", msg.MessageId,
		"bytes", len(payload),
	)
	return nil
}

func publishing(routingKey string, payload []byte, now time.Time) amqp.Publishing {
	messageID, correlationID := envelopeIDs(payload)
	return amqp.Publishing{
		ContentType:   "application/json",
		DeliveryMode:  amqp.Persistent,
		Timestamp:     now,
		MessageId:     messageID,
		CorrelationId: correlationID,
		Type:          routingKey,
		AppId:         "huddle",
		Body:          payload,
	}
}

// Ping reports whether the broker connection is open.
func (p *RabbitMQPublisher) Ping(ctx context.Context) error {
	return p.link.ping(ctx)
}

// Close closes the channel and connection.
func (p *RabbitMQPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.link.close()
}
