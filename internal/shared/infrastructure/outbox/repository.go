package outbox

import (
	"context"
	"time"
)

// Appender queues messages. Inside a unit of work the messages commit with
// the aggregate that produced them.
type Appender interface {
	Append(ctx context.Context, msgs ...*Message) error
}

// Repository is the full outbox store used by the processor and the worker.
type Repository interface {
	Appender

	// Pending returns up to limit messages that are neither published nor
	// dead and whose retry time has come, oldest first.
	Pending(ctx context.Context, limit int) ([]*Message, error)

	MarkPublished(ctx context.Context, id int64) error
	// MarkFailed counts a failed attempt and schedules the next one.
	MarkFailed(ctx context.Context, id int64, reason string, nextRetryAt time.Time) error
	MarkDead(ctx context.Context, id int64, reason string) error

	// DeleteOld removes messages published more than olderThanDays ago.
	DeleteOld(ctx context.Context, olderThanDays int) (int64, error)
}
