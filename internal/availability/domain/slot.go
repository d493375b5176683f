package domain

import (
	"errors"
	"fmt"
	"math/bits"
	"strings"
	"time"
)

var (
	ErrUnknownWeekday = errors.New("unknown weekday")
	ErrUnknownPeriod  = errors.New("unknown period")
)

// Weekday is a day of the week with Monday as zero, so iteration order is
// Monday through Sunday.
type Weekday int

const (
	Monday Weekday = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

// DaysPerWeek is the number of Weekday values.
const DaysPerWeek = 7

var weekdayNames = [DaysPerWeek]string{
	"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday",
}

func (d Weekday) String() string {
	if !d.IsValid() {
		return fmt.Sprintf("weekday(%d)", int(d))
	}
	return weekdayNames[d]
}

// IsValid reports whether d is Monday..Sunday.
func (d Weekday) IsValid() bool {
	return d >= Monday && d <= Sunday
}

// WeekdayOf converts a time.Weekday (Sunday = 0) to a Weekday (Monday = 0).
func WeekdayOf(wd time.Weekday) Weekday {
	return Weekday((int(wd) + 6) % DaysPerWeek)
}

// ParseWeekday parses an English day name, case-insensitively.
func ParseWeekday(s string) (Weekday, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range weekdayNames {
		if n == name {
			return Weekday(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownWeekday, s)
}

// Period is a coarse third of a day.
type Period int

const (
	Morning Period = iota
	Afternoon
	Evening
)

// PeriodsPerDay is the number of Period values.
const PeriodsPerDay = 3

var periodNames = [PeriodsPerDay]string{"morning", "afternoon", "evening"}

func (p Period) String() string {
	if !p.IsValid() {
		return fmt.Sprintf("period(%d)", int(p))
	}
	return periodNames[p]
}

// IsValid reports whether p is Morning, Afternoon or Evening.
func (p Period) IsValid() bool {
	return p >= Morning && p <= Evening
}

// ParsePeriod parses an English period name, case-insensitively.
func ParsePeriod(s string) (Period, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range periodNames {
		if n == name {
			return Period(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownPeriod, s)
}

// SlotCount is the size of the slot space.
const SlotCount = DaysPerWeek * PeriodsPerDay

// Slot is a (weekday, period) pair. Slots compare by value.
type Slot struct {
	Day    Weekday
	Period Period
}

// NewSlot returns the slot for day and period.
func NewSlot(day Weekday, period Period) (Slot, error) {
	if !day.IsValid() {
		return Slot{}, fmt.Errorf("%w: %d", ErrUnknownWeekday, int(day))
	}
	if !period.IsValid() {
		return Slot{}, fmt.Errorf("%w: %d", ErrUnknownPeriod, int(period))
	}
	return Slot{Day: day, Period: period}, nil
}

// ParseSlot parses "tuesday afternoon".
func ParseSlot(s string) (Slot, error) {
	fields := strings.Fields(s)
	if len(fields) != 2 {
		return Slot{}, fmt.Errorf("slot must be \"<day> <period>\", got %q", s)
	}
	day, err := ParseWeekday(fields[0])
	if err != nil {
		return Slot{}, err
	}
	period, err := ParsePeriod(fields[1])
	if err != nil {
		return Slot{}, err
	}
	return Slot{Day: day, Period: period}, nil
}

// String renders the slot as "tuesday afternoon".
func (s Slot) String() string {
	return s.Day.String() + " " + s.Period.String()
}

// Index is the slot's position in canonical order: Monday morning is 0,
// Sunday evening is 20.
func (s Slot) Index() int {
	return int(s.Day)*PeriodsPerDay + int(s.Period)
}

// Before reports whether s comes first in canonical order.
func (s Slot) Before(other Slot) bool {
	return s.Index() < other.Index()
}

// AllSlots returns every slot in canonical order.
func AllSlots() []Slot {
	slots := make([]Slot, 0, SlotCount)
	for d := Monday; d <= Sunday; d++ {
		for p := Morning; p <= Evening; p++ {
			slots = append(slots, Slot{Day: d, Period: p})
		}
	}
	return slots
}

// SlotSet is a set of slots stored as a bitmask over Slot.Index.
// The zero value is empty and ready to use.
type SlotSet uint32

// SlotSetOf builds a set from slots.
func SlotSetOf(slots ...Slot) SlotSet {
	var s SlotSet
	for _, slot := range slots {
		s = s.With(slot)
	}
	return s
}

// With returns s plus slot.
func (s SlotSet) With(slot Slot) SlotSet {
	return s | 1<<uint(slot.Index())
}

// Union returns the slots in either set.
func (s SlotSet) Union(other SlotSet) SlotSet {
	return s | other
}

// Has reports whether slot is in the set.
func (s SlotSet) Has(slot Slot) bool {
	return s&(1<<uint(slot.Index())) != 0
}

// Len returns the number of slots in the set.
func (s SlotSet) Len() int {
	return bits.OnesCount32(uint32(s))
}

// IsEmpty reports whether the set has no slots.
func (s SlotSet) IsEmpty() bool {
	return s == 0
}

// Slots lists the members in canonical order.
func (s SlotSet) Slots() []Slot {
	out := make([]Slot, 0, s.Len())
	for _, slot := range AllSlots() {
		if s.Has(slot) {
			out = append(out, slot)
		}
	}
	return out
}
