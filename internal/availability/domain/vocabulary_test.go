package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/huddle/internal/availability/domain"
)

func TestDefaultVocabulary(t *testing.T) {
	v := domain.DefaultVocabulary()

	assert.Equal(t, []string{"meeting", "schedule", "call", "discuss", "get together", "appointment"}, v.IntentKeywords())
	assert.Equal(t, "monday", v.DayName(domain.Monday))
	assert.Equal(t, "sunday", v.DayName(domain.Sunday))
	assert.Equal(t, "09:00", v.PeriodTime(domain.Morning))
	assert.Equal(t, "14:00", v.PeriodTime(domain.Afternoon))
	assert.Equal(t, "18:00", v.PeriodTime(domain.Evening))
	assert.Equal(t, "14:00", v.PeriodTime(domain.Period(9)), "unknown period falls back")
	assert.Equal(t, "Team Meeting", v.MeetingTitle())
	assert.Equal(t, "tuesday afternoon", v.SlotLabel(domain.Slot{Day: domain.Tuesday, Period: domain.Afternoon}))
}

func TestVocabulary_IsImmutable(t *testing.T) {
	cfg := domain.DefaultVocabularyConfig()
	v, err := domain.NewVocabulary(cfg)
	require.NoError(t, err)

	cfg.IntentKeywords[0] = "changed"
	keywords := v.IntentKeywords()
	keywords[1] = "mutated"

	assert.Equal(t, "meeting", v.IntentKeywords()[0])
	assert.Equal(t, "schedule", v.IntentKeywords()[1])

	renamed, err := v.WithMeetingTitle("Sync")
	require.NoError(t, err)
	assert.Equal(t, "Sync", renamed.MeetingTitle())
	assert.Equal(t, "Team Meeting", v.MeetingTitle())
}

func TestNewVocabulary_Normalizes(t *testing.T) {
	cfg := domain.DefaultVocabularyConfig()
	cfg.IntentKeywords = []string{"  Sync Up "}
	cfg.DayNames[0] = "MONDAY"

	v, err := domain.NewVocabulary(cfg)
	require.NoError(t, err)

	assert.Equal(t, []string{"sync up"}, v.IntentKeywords())
	assert.Equal(t, "monday", v.DayName(domain.Monday))
}

func TestNewVocabulary_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*domain.VocabularyConfig)
	}{
		{"no intent keywords", func(c *domain.VocabularyConfig) { c.IntentKeywords = nil }},
		{"blank intent keyword", func(c *domain.VocabularyConfig) { c.IntentKeywords = []string{"  "} }},
		{"six days", func(c *domain.VocabularyConfig) { c.DayNames = c.DayNames[:6] }},
		{"duplicate day", func(c *domain.VocabularyConfig) { c.DayNames[1] = "monday" }},
		{"two periods", func(c *domain.VocabularyConfig) { c.Periods = c.Periods[:2] }},
		{"bad clock", func(c *domain.VocabularyConfig) { c.Periods[0].Time = "9am" }},
		{"duplicate period", func(c *domain.VocabularyConfig) { c.Periods[2].Keyword = "morning" }},
		{"bad fallback", func(c *domain.VocabularyConfig) { c.FallbackTime = "" }},
		{"no title", func(c *domain.VocabularyConfig) { c.MeetingTitle = " " }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := domain.DefaultVocabularyConfig()
			tt.mutate(&cfg)

			_, err := domain.NewVocabulary(cfg)
			assert.ErrorIs(t, err, domain.ErrInvalidVocabulary)
		})
	}
}

func TestVocabulary_ConfigRoundTrip(t *testing.T) {
	v := domain.DefaultVocabulary()

	again, err := domain.NewVocabulary(v.Config())
	require.NoError(t, err)
	assert.Equal(t, v, again)
}
