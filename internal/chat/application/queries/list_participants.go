package queries

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/felixgeelhaar/huddle/internal/chat/domain"
)

// ParticipantDTO is a data transfer object for participants.
type ParticipantDTO struct {
	ID       uuid.UUID
	Name     string
	Email    string
	JoinedAt time.Time
}

// ListParticipantsHandler lists everyone who has posted.
type ListParticipantsHandler struct {
	participants domain.ParticipantRepository
}

// NewListParticipantsHandler creates a new ListParticipantsHandler.
func NewListParticipantsHandler(participants domain.ParticipantRepository) *ListParticipantsHandler {
	return &ListParticipantsHandler{participants: participants}
}

// Handle returns participants in join order.
func (h *ListParticipantsHandler) Handle(ctx context.Context) ([]ParticipantDTO, error) {
	participants, err := h.participants.List(ctx)
	if err != nil {
		return nil, err
	}
	return lo.Map(participants, func(p *domain.Participant, _ int) ParticipantDTO {
		return ParticipantDTO{ID: p.ID(), Name: p.Name(), Email: p.Email(), JoinedAt: p.CreatedAt()}
	}), nil
}
