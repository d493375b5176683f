package queries

import (
	"context"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/huddle/internal/meetings/domain"
)

// GetMeetingHandler loads a single meeting.
type GetMeetingHandler struct {
	repo domain.Repository
}

// NewGetMeetingHandler creates a new GetMeetingHandler.
func NewGetMeetingHandler(repo domain.Repository) *GetMeetingHandler {
	return &GetMeetingHandler{repo: repo}
}

// Handle returns domain.ErrMeetingNotFound for an unknown id.
func (h *GetMeetingHandler) Handle(ctx context.Context, id uuid.UUID) (*MeetingDTO, error) {
	meeting, err := h.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := toMeetingDTO(meeting)
	return &dto, nil
}
