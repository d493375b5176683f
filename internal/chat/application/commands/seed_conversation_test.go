package commands

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/huddle/internal/chat/domain"
)

func newID() uuid.UUID { return uuid.New() }

func TestSeedConversationHandler_SkipsWhenPopulated(t *testing.T) {
	participants := new(mockParticipantRepo)
	messages := new(mockMessageRepo)
	post := NewPostMessageHandler(participants, messages, new(mockUnitOfWork), nil)
	handler := NewSeedConversationHandler(participants, post, nil)

	participants.On("Count", mock.Anything).Return(3, nil)

	result, err := handler.Handle(context.Background(), SeedConversationCommand{})

	require.NoError(t, err)
	assert.False(t, result.Seeded)
	messages.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
}

func TestSeedConversationHandler_SeedsInOrder(t *testing.T) {
	participants := new(mockParticipantRepo)
	messages := new(mockMessageRepo)
	uow := new(mockUnitOfWork)
	post := NewPostMessageHandler(participants, messages, uow, nil)
	handler := NewSeedConversationHandler(participants, post, nil)
	now := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
	handler.now = func() time.Time { return now }

	ctx := context.Background()
	participants.On("Count", ctx).Return(0, nil)
	uow.On("Begin", ctx).Return(ctx, nil)
	uow.On("Commit", ctx).Return(nil)
	participants.On("GetOrCreate", ctx, mock.Anything).Return(func(_ context.Context, p *domain.Participant) *domain.Participant {
		return p
	}, nil)

	var posted []*domain.Message
	messages.On("Append", ctx, mock.Anything).Run(func(args mock.Arguments) {
		posted = append(posted, args.Get(1).(*domain.Message))
	}).Return(nil)

	result, err := handler.Handle(ctx, SeedConversationCommand{})

	require.NoError(t, err)
	assert.True(t, result.Seeded)
	assert.Equal(t, len(SampleConversation), result.Messages)
	require.Len(t, posted, len(SampleConversation))
	assert.Equal(t, "alice@email.com", posted[0].Author().Email())
	assert.Equal(t, "Agreed! Let's schedule it.", posted[8].Body())
	assert.True(t, posted[8].SentAt().Equal(now))
	for i := 1; i < len(posted); i++ {
		assert.True(t, posted[i-1].SentAt().Before(posted[i].SentAt()))
	}
}

func TestSeedConversationHandler_Force(t *testing.T) {
	participants := new(mockParticipantRepo)
	messages := new(mockMessageRepo)
	uow := new(mockUnitOfWork)
	post := NewPostMessageHandler(participants, messages, uow, nil)
	handler := NewSeedConversationHandler(participants, post, nil)

	uow.On("Begin", mock.Anything).Return(context.Background(), nil)
	uow.On("Commit", mock.Anything).Return(nil)
	participants.On("GetOrCreate", mock.Anything, mock.Anything).Return(
		domain.RehydrateParticipant(newID(), "Alice Johnson", "alice@email.com", time.Now()), nil)
	messages.On("Append", mock.Anything, mock.Anything).Return(nil)

	result, err := handler.Handle(context.Background(), SeedConversationCommand{Force: true})

	require.NoError(t, err)
	assert.True(t, result.Seeded)
	participants.AssertNotCalled(t, "Count", mock.Anything)
}
