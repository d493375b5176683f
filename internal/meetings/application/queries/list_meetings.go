package queries

import (
	"context"
	"time"

	"github.com/samber/lo"

	"github.com/felixgeelhaar/huddle/internal/meetings/domain"
)

// ListMeetingsQuery contains the parameters for listing meetings.
type ListMeetingsQuery struct {
	// Upcoming drops meetings that have already started.
	Upcoming bool
}

// ListMeetingsHandler handles listing booked meetings.
type ListMeetingsHandler struct {
	repo domain.Repository
	now  func() time.Time
}

// NewListMeetingsHandler creates a new ListMeetingsHandler.
func NewListMeetingsHandler(repo domain.Repository) *ListMeetingsHandler {
	return &ListMeetingsHandler{repo: repo, now: time.Now}
}

// Handle returns meetings ordered by start time.
func (h *ListMeetingsHandler) Handle(ctx context.Context, query ListMeetingsQuery) ([]MeetingDTO, error) {
	var (
		meetings []*domain.Meeting
		err      error
	)
	if query.Upcoming {
		meetings, err = h.repo.ListFrom(ctx, h.now())
	} else {
		meetings, err = h.repo.List(ctx)
	}
	if err != nil {
		return nil, err
	}
	return lo.Map(meetings, func(m *domain.Meeting, _ int) MeetingDTO {
		return toMeetingDTO(m)
	}), nil
}
