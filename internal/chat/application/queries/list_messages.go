package queries

import (
	"context"
	"time"

	"github.com/samber/lo"

	"github.com/felixgeelhaar/huddle/internal/chat/domain"
)

// MessageDTO is a data transfer object for chat messages.
type MessageDTO struct {
	ID     int64
	Name   string
	Email  string
	Text   string
	SentAt time.Time
}

// ListMessagesQuery contains the parameters for listing messages.
type ListMessagesQuery struct {
	// Limit keeps only the most recent messages when positive.
	Limit int
}

// ListMessagesHandler handles ListMessagesQuery.
type ListMessagesHandler struct {
	messages domain.MessageRepository
}

// NewListMessagesHandler creates a new ListMessagesHandler.
func NewListMessagesHandler(messages domain.MessageRepository) *ListMessagesHandler {
	return &ListMessagesHandler{messages: messages}
}

// Handle returns messages oldest first.
func (h *ListMessagesHandler) Handle(ctx context.Context, query ListMessagesQuery) ([]MessageDTO, error) {
	messages, err := h.messages.List(ctx)
	if err != nil {
		return nil, err
	}
	if query.Limit > 0 && len(messages) > query.Limit {
		messages = messages[len(messages)-query.Limit:]
	}

	return lo.Map(messages, func(m *domain.Message, _ int) MessageDTO {
		return MessageDTO{
			ID:     m.ID(),
			Name:   m.Author().Name(),
			Email:  m.Author().Email(),
			Text:   m.Body(),
			SentAt: m.SentAt(),
		}
	}), nil
}
