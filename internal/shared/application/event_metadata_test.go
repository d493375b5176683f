package application

import (
	"context"
	"testing"

	"github.com/felixgeelhaar/huddle/internal/shared/domain"
	"github.com/felixgeelhaar/huddle/pkg/observability"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stampedEvent struct {
	domain.BaseEvent
}

func TestNewEventMetadata(t *testing.T) {
	t.Run("generates ids when context carries none", func(t *testing.T) {
		metadata := NewEventMetadata(context.Background(), "bob@email.com")

		assert.Equal(t, "bob@email.com", metadata.Actor)
		assert.NotEqual(t, uuid.Nil, metadata.CorrelationID)
		assert.NotEqual(t, uuid.Nil, metadata.CausationID)
	})

	t.Run("reuses correlation id from context", func(t *testing.T) {
		correlationID := uuid.New()
		ctx := observability.WithCorrelationID(context.Background(), correlationID.String())

		metadata := NewEventMetadata(ctx, "")

		assert.Equal(t, correlationID, metadata.CorrelationID)
		assert.NotEqual(t, correlationID, metadata.CausationID)
	})

	t.Run("ignores malformed correlation id", func(t *testing.T) {
		ctx := observability.WithCorrelationID(context.Background(), "not-a-uuid")

		metadata := NewEventMetadata(ctx, "")

		assert.NotEqual(t, uuid.Nil, metadata.CorrelationID)
	})
}

func TestApplyEventMetadata(t *testing.T) {
	t.Run("stamps every event", func(t *testing.T) {
		first := &stampedEvent{BaseEvent: domain.NewBaseEvent(uuid.New(), "Meeting", "meetings.meeting.scheduled")}
		second := &stampedEvent{BaseEvent: domain.NewBaseEvent(uuid.New(), "Meeting", "meetings.meeting.scheduled")}
		metadata := NewEventMetadata(context.Background(), "carol@email.com")

		ApplyEventMetadata([]domain.DomainEvent{first, second}, metadata)

		assert.Equal(t, metadata, first.Metadata())
		assert.Equal(t, metadata, second.Metadata())
	})

	t.Run("handles nil event list", func(t *testing.T) {
		require.NotPanics(t, func() {
			ApplyEventMetadata(nil, domain.EventMetadata{})
		})
	})
}
