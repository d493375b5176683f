package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

var (
	ErrNoRecipients     = errors.New("confirmation has no recipients")
	ErrNotifierDisabled = errors.New("notifier is not configured")
)

// Recipient is someone who receives a confirmation.
type Recipient struct {
	Name  string
	Email string
}

// Confirmation tells attendees that a meeting has been booked.
type Confirmation struct {
	MeetingID  uuid.UUID
	Title      string
	Date       string
	Time       string
	StartsAt   time.Time
	Duration   time.Duration
	Recipients []Recipient
}

// Subject is the e-mail subject line.
func (c Confirmation) Subject() string {
	return "Meeting Confirmation: " + c.Title
}

// Body is the plain-text confirmation.
func (c Confirmation) Body() string {
	var b strings.Builder
	b.WriteString("Hello,\n\n")
	b.WriteString("A meeting has been scheduled based on your chat discussion.\n\n")
	fmt.Fprintf(&b, "Title: %s\n", c.Title)
	fmt.Fprintf(&b, "Date: %s\n", c.Date)
	fmt.Fprintf(&b, "Time: %s\n", c.Time)
	fmt.Fprintf(&b, "Participants: %s\n", strings.Join(c.Emails(), ", "))
	b.WriteString("\nSee you there!\n")
	return b.String()
}

// Emails lists recipient addresses in order.
func (c Confirmation) Emails() []string {
	return lo.Map(c.Recipients, func(r Recipient, _ int) string { return r.Email })
}

// EndsAt is the meeting end time.
func (c Confirmation) EndsAt() time.Time {
	return c.StartsAt.Add(c.Duration)
}

// Validate checks that the confirmation can be delivered.
func (c Confirmation) Validate() error {
	if len(c.Recipients) == 0 {
		return ErrNoRecipients
	}
	return nil
}
