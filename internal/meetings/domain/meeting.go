package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	availability "github.com/felixgeelhaar/huddle/internal/availability/domain"
	sharedDomain "github.com/felixgeelhaar/huddle/internal/shared/domain"
)

var (
	ErrMeetingEmptyTitle      = errors.New("meeting title cannot be empty")
	ErrMeetingNoParticipants  = errors.New("meeting needs at least one participant")
	ErrMeetingInvalidDuration = errors.New("duration must be positive")
	ErrMeetingInvalidSlot     = errors.New("invalid meeting slot")
	ErrMeetingNotFound        = errors.New("meeting not found")
	ErrMeetingExists          = errors.New("meeting already booked")
)

// DefaultDuration is used when no duration is configured.
const DefaultDuration = time.Hour

// Attendee is a participant invited to a meeting.
type Attendee struct {
	Name  string
	Email string
}

// Schedule is when a meeting happens: the chosen slot, its concrete date and
// clock time as shown to people, and the start instant.
type Schedule struct {
	Slot     availability.Slot
	Date     string // 2006-01-02
	Time     string // 15:04
	StartsAt time.Time
}

// Meeting is a meeting booked from a chat.
type Meeting struct {
	sharedDomain.BaseAggregateRoot
	title     string
	schedule  Schedule
	duration  time.Duration
	attendees []Attendee
	support   int
}

// NewMeeting books a meeting and raises MeetingScheduled. support is how
// many attendees backed the slot.
func NewMeeting(title string, schedule Schedule, duration time.Duration, attendees []Attendee, support int) (*Meeting, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrMeetingEmptyTitle
	}
	if len(attendees) == 0 {
		return nil, ErrMeetingNoParticipants
	}
	if duration <= 0 {
		return nil, ErrMeetingInvalidDuration
	}
	if _, err := availability.NewSlot(schedule.Slot.Day, schedule.Slot.Period); err != nil {
		return nil, errors.Join(ErrMeetingInvalidSlot, err)
	}
	if schedule.Date == "" || schedule.Time == "" || schedule.StartsAt.IsZero() {
		return nil, ErrMeetingInvalidSlot
	}

	meeting := &Meeting{
		BaseAggregateRoot: sharedDomain.NewBaseAggregateRoot(),
		title:             title,
		schedule:          schedule,
		duration:          duration,
		attendees:         append([]Attendee(nil), attendees...),
		support:           support,
	}

	meeting.AddDomainEvent(NewMeetingScheduled(meeting))
	return meeting, nil
}

func (m *Meeting) Title() string           { return m.title }
func (m *Meeting) Schedule() Schedule      { return m.schedule }
func (m *Meeting) Slot() availability.Slot { return m.schedule.Slot }
func (m *Meeting) Date() string            { return m.schedule.Date }
func (m *Meeting) Time() string            { return m.schedule.Time }
func (m *Meeting) StartsAt() time.Time     { return m.schedule.StartsAt }
func (m *Meeting) Duration() time.Duration { return m.duration }
func (m *Meeting) Support() int            { return m.support }

// EndsAt is the start plus the duration.
func (m *Meeting) EndsAt() time.Time {
	return m.schedule.StartsAt.Add(m.duration)
}

// Attendees returns the invitees in chat order.
func (m *Meeting) Attendees() []Attendee {
	return append([]Attendee(nil), m.attendees...)
}

// AttendeeEmails lists the invitees' addresses.
func (m *Meeting) AttendeeEmails() []string {
	return lo.Map(m.attendees, func(a Attendee, _ int) string { return a.Email })
}

// IsUpcoming reports whether the meeting starts at or after now.
func (m *Meeting) IsUpcoming(now time.Time) bool {
	return !m.schedule.StartsAt.Before(now)
}

// RehydrateMeeting recreates a meeting from persisted state.
func RehydrateMeeting(
	id uuid.UUID,
	title string,
	schedule Schedule,
	duration time.Duration,
	attendees []Attendee,
	support int,
	createdAt time.Time,
) *Meeting {
	return &Meeting{
		BaseAggregateRoot: sharedDomain.RehydrateBaseAggregateRoot(id, createdAt),
		title:             title,
		schedule:          schedule,
		duration:          duration,
		attendees:         attendees,
		support:           support,
	}
}
