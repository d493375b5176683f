package eventbus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	// ExchangeName is the topic exchange domain events are published to.
	ExchangeName = "huddle.domain.events"

	// DeadLetterExchange receives events a consumer gave up on.
	DeadLetterExchange = "huddle.domain.events.dlx"
)

// link is one broker connection with a single channel on the topic exchange.
type link struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
	logger   *slog.Logger
}

func dial(url, exchange string, logger *slog.Logger) (*link, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	l := &link{conn: conn, exchange: exchange, logger: logger}

	if l.channel, err = conn.Channel(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := l.channel.ExchangeDeclare(exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		_ = l.close()
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}
	return l, nil
}

// ping reports whether the connection is still open.
func (l *link) ping(context.Context) error {
	if l == nil || l.conn == nil || l.conn.IsClosed() {
		return errors.New("rabbitmq connection closed")
	}
	return nil
}

func (l *link) close() error {
	if l == nil {
		return nil
	}
	if l.channel != nil {
		if err := l.channel.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
			l.logger.Warn("closing rabbitmq channel", "error", err)
		}
	}
	if l.conn == nil || l.conn.IsClosed() {
		return nil
	}
	return l.conn.Close()
}

// envelopeIDs reads the ids the outbox wrote into a ConsumedEvent payload.
// Payloads that are not envelopes yield empty strings.
func envelopeIDs(payload []byte) (messageID, correlationID string) {
	var env struct {
		EventID  string        `json:"event_id"`
		Metadata EventMetadata `json:"metadata"`
	}
	if err := json.Unmarshal(payload, &env); err != nil {
		return "", ""
	}
	return env.EventID, env.Metadata.CorrelationID
}
