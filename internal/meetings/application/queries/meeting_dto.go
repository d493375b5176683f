package queries

import (
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/felixgeelhaar/huddle/internal/meetings/domain"
)

// AttendeeDTO is a data transfer object for a meeting attendee.
type AttendeeDTO struct {
	Name  string
	Email string
}

// MeetingDTO is a data transfer object for meetings.
type MeetingDTO struct {
	ID        uuid.UUID
	Title     string
	Slot      string
	Date      string
	Time      string
	StartsAt  time.Time
	EndsAt    time.Time
	Duration  time.Duration
	Support   int
	Attendees []AttendeeDTO
	CreatedAt time.Time
}

func toMeetingDTO(m *domain.Meeting) MeetingDTO {
	return MeetingDTO{
		ID:       m.ID(),
		Title:    m.Title(),
		Slot:     m.Slot().String(),
		Date:     m.Date(),
		Time:     m.Time(),
		StartsAt: m.StartsAt(),
		EndsAt:   m.EndsAt(),
		Duration: m.Duration(),
		Support:  m.Support(),
		Attendees: lo.Map(m.Attendees(), func(a domain.Attendee, _ int) AttendeeDTO {
			return AttendeeDTO{Name: a.Name, Email: a.Email}
		}),
		CreatedAt: m.CreatedAt(),
	}
}
