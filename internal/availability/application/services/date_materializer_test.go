package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/felixgeelhaar/huddle/internal/availability/domain"
)

// Thursday 15 October 2026, mid-afternoon.
var thursday = time.Date(2026, time.October, 15, 15, 30, 0, 0, time.UTC)

func TestDateMaterializer_NextDate(t *testing.T) {
	m := NewDateMaterializer(domain.DefaultVocabulary(), FixedClock(thursday))

	tests := []struct {
		day  domain.Weekday
		want string
	}{
		{domain.Friday, "2026-10-16"},
		{domain.Sunday, "2026-10-18"},
		{domain.Monday, "2026-10-19"},
		{domain.Tuesday, "2026-10-20"},
		{domain.Wednesday, "2026-10-21"},
		{domain.Thursday, "2026-10-22"},
	}
	for _, tt := range tests {
		t.Run(tt.day.String(), func(t *testing.T) {
			got := m.NextDate(tt.day)
			assert.Equal(t, tt.want, got.Format("2006-01-02"))
			assert.Equal(t, 0, got.Hour())
		})
	}
}

func TestDateMaterializer_Materialize(t *testing.T) {
	m := NewDateMaterializer(domain.DefaultVocabulary(), FixedClock(thursday))

	date, clock, startsAt := m.Materialize(slot(domain.Tuesday, domain.Evening))

	assert.Equal(t, "2026-10-20", date)
	assert.Equal(t, "18:00", clock)
	assert.Equal(t, time.Date(2026, time.October, 20, 18, 0, 0, 0, time.UTC), startsAt)
}
