package services

import (
	"github.com/felixgeelhaar/huddle/internal/availability/domain"
)

// AvailabilityExtractor maps chat messages to per-participant slot sets.
//
// A message naming a day adds that day paired with each period keyword in
// the same message, or with every period when none is named. Slots from
// all of a participant's messages are unioned. Authors who never name a
// day still appear, with no slots.
type AvailabilityExtractor struct {
	vocab   domain.Vocabulary
	days    *KeywordMatcher
	periods *KeywordMatcher
}

// NewAvailabilityExtractor builds matchers for the vocabulary's day and
// period keywords.
func NewAvailabilityExtractor(vocab domain.Vocabulary) (*AvailabilityExtractor, error) {
	dayWords := make([]string, 0, domain.DaysPerWeek)
	for d := domain.Monday; d <= domain.Sunday; d++ {
		dayWords = append(dayWords, vocab.DayName(d))
	}
	days, err := NewKeywordMatcher(dayWords)
	if err != nil {
		return nil, err
	}

	periodWords := make([]string, 0, domain.PeriodsPerDay)
	for p := domain.Morning; p <= domain.Evening; p++ {
		periodWords = append(periodWords, vocab.PeriodKeyword(p))
	}
	periods, err := NewKeywordMatcher(periodWords)
	if err != nil {
		return nil, err
	}

	return &AvailabilityExtractor{vocab: vocab, days: days, periods: periods}, nil
}

// Extract builds the availability mapping from the full message history.
func (e *AvailabilityExtractor) Extract(messages []domain.Message) *domain.Availability {
	availability := domain.NewAvailability()
	for _, msg := range messages {
		availability.AddSlots(msg.Author, e.SlotsIn(msg.Text))
	}
	return availability
}

// SlotsIn returns the slots a single text mentions.
func (e *AvailabilityExtractor) SlotsIn(text string) domain.SlotSet {
	var set domain.SlotSet

	matchedDays := e.days.Matches(text)
	if len(matchedDays) == 0 {
		return set
	}
	matchedPeriods := e.periods.Matches(text)

	for d := domain.Monday; d <= domain.Sunday; d++ {
		if _, ok := matchedDays[e.vocab.DayName(d)]; !ok {
			continue
		}
		for p := domain.Morning; p <= domain.Evening; p++ {
			_, named := matchedPeriods[e.vocab.PeriodKeyword(p)]
			if named || len(matchedPeriods) == 0 {
				set = set.With(domain.Slot{Day: d, Period: p})
			}
		}
	}
	return set
}
