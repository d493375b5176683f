package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	sharedDomain "github.com/felixgeelhaar/huddle/internal/shared/domain"
)

const aggregateType = "Meeting"

// RoutingKeyMeetingScheduled is published when a meeting is booked.
const RoutingKeyMeetingScheduled = "meetings.meeting.scheduled"

// AttendeePayload is an attendee as carried in events.
type AttendeePayload struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// MeetingScheduled is emitted when a meeting is booked from the chat.
type MeetingScheduled struct {
	sharedDomain.BaseEvent
	MeetingID       uuid.UUID         `json:"meeting_id"`
	Title           string            `json:"title"`
	Date            string            `json:"date"`
	Time            string            `json:"time"`
	StartsAt        time.Time         `json:"starts_at"`
	DurationMinutes int               `json:"duration_minutes"`
	Slot            string            `json:"slot"`
	Attendees       []AttendeePayload `json:"attendees"`
}

// NewMeetingScheduled creates a MeetingScheduled event.
func NewMeetingScheduled(m *Meeting) *MeetingScheduled {
	return &MeetingScheduled{
		BaseEvent:       sharedDomain.NewBaseEvent(m.ID(), aggregateType, RoutingKeyMeetingScheduled),
		MeetingID:       m.ID(),
		Title:           m.Title(),
		Date:            m.Date(),
		Time:            m.Time(),
		StartsAt:        m.StartsAt(),
		DurationMinutes: int(m.Duration().Minutes()),
		Slot:            m.Slot().String(),
		Attendees: lo.Map(m.attendees, func(a Attendee, _ int) AttendeePayload {
			return AttendeePayload{Name: a.Name, Email: a.Email}
		}),
	}
}
