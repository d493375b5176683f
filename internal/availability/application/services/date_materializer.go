package services

import (
	"time"

	"github.com/felixgeelhaar/huddle/internal/availability/domain"
)

const (
	dateLayout  = "2006-01-02"
	clockLayout = "15:04"
)

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock always returns the same instant.
type FixedClock time.Time

func (c FixedClock) Now() time.Time { return time.Time(c) }

// DateMaterializer turns a slot into the next concrete date and start time.
type DateMaterializer struct {
	vocab domain.Vocabulary
	clock Clock
}

// NewDateMaterializer creates a materializer. A nil clock uses SystemClock.
func NewDateMaterializer(vocab domain.Vocabulary, clock Clock) *DateMaterializer {
	if clock == nil {
		clock = SystemClock{}
	}
	return &DateMaterializer{vocab: vocab, clock: clock}
}

// NextDate returns the first date strictly after today falling on day.
// Today's own weekday rolls a full week forward.
func (m *DateMaterializer) NextDate(day domain.Weekday) time.Time {
	now := m.clock.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	daysAhead := int(day) - int(domain.WeekdayOf(today.Weekday()))
	if daysAhead <= 0 {
		daysAhead += domain.DaysPerWeek
	}
	return today.AddDate(0, 0, daysAhead)
}

// Materialize returns the date ("2006-01-02"), clock time ("15:04") and
// start instant for slot.
func (m *DateMaterializer) Materialize(slot domain.Slot) (string, string, time.Time) {
	date := m.NextDate(slot.Day)
	clock := m.vocab.PeriodTime(slot.Period)

	startsAt := date
	if t, err := time.Parse(clockLayout, clock); err == nil {
		startsAt = time.Date(date.Year(), date.Month(), date.Day(), t.Hour(), t.Minute(), 0, 0, date.Location())
	}
	return date.Format(dateLayout), clock, startsAt
}
