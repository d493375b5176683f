package domain_test

import (
	"testing"
	"time"

	"github.com/felixgeelhaar/huddle/internal/shared/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestNewBaseEvent(t *testing.T) {
	aggregateID := uuid.New()
	before := time.Now().UTC()

	event := domain.NewBaseEvent(aggregateID, "Meeting", "meetings.meeting.scheduled")

	after := time.Now().UTC()

	assert.NotEqual(t, uuid.Nil, event.EventID())
	assert.Equal(t, aggregateID, event.AggregateID())
	assert.Equal(t, "Meeting", event.AggregateType())
	assert.Equal(t, "meetings.meeting.scheduled", event.RoutingKey())
	assert.False(t, event.OccurredAt().Before(before))
	assert.False(t, event.OccurredAt().After(after))
	assert.Equal(t, domain.EventMetadata{}, event.Metadata())
}

func TestBaseEvent_SetMetadata(t *testing.T) {
	event := domain.NewBaseEvent(uuid.New(), "Meeting", "meetings.meeting.scheduled")
	metadata := domain.EventMetadata{
		CorrelationID: uuid.New(),
		CausationID:   uuid.New(),
		Actor:         "alice@email.com",
	}

	event.SetMetadata(metadata)

	assert.Equal(t, metadata, event.Metadata())
}

func TestBaseEvent_UniqueIDs(t *testing.T) {
	aggregateID := uuid.New()

	a := domain.NewBaseEvent(aggregateID, "Meeting", "meetings.meeting.scheduled")
	b := domain.NewBaseEvent(aggregateID, "Meeting", "meetings.meeting.scheduled")

	assert.NotEqual(t, a.EventID(), b.EventID())
}
