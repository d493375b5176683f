package queries

import (
	"context"

	"github.com/samber/lo"

	availability "github.com/felixgeelhaar/huddle/internal/availability/domain"
	"github.com/felixgeelhaar/huddle/internal/chat/domain"
)

// ConversationLoader reads the stored chat in the shape the availability
// resolver consumes.
type ConversationLoader struct {
	messages domain.MessageRepository
}

// NewConversationLoader creates a new ConversationLoader.
func NewConversationLoader(messages domain.MessageRepository) *ConversationLoader {
	return &ConversationLoader{messages: messages}
}

// Load returns the whole conversation, oldest first.
func (l *ConversationLoader) Load(ctx context.Context) ([]availability.Message, error) {
	messages, err := l.messages.List(ctx)
	if err != nil {
		return nil, err
	}
	return lo.Map(messages, func(m *domain.Message, _ int) availability.Message {
		return availability.Message{
			Author: availability.Participant{Name: m.Author().Name(), Email: m.Author().Email()},
			Text:   m.Body(),
			SentAt: m.SentAt(),
		}
	}), nil
}
