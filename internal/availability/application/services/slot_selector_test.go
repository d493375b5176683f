package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/felixgeelhaar/huddle/internal/availability/domain"
)

func TestSlotSelector_Select(t *testing.T) {
	tueAfternoon := slot(domain.Tuesday, domain.Afternoon)
	monMorning := slot(domain.Monday, domain.Morning)
	friEvening := slot(domain.Friday, domain.Evening)

	tests := []struct {
		name        string
		policy      domain.Policy
		build       func(a *domain.Availability)
		wantOK      bool
		wantSlot    domain.Slot
		wantSupport int
	}{
		{
			name:   "two of three agree",
			policy: domain.DefaultPolicy(),
			build: func(a *domain.Availability) {
				a.AddParticipant(alice)
				a.AddSlots(bob, domain.SlotSetOf(tueAfternoon))
				a.AddSlots(carol, domain.SlotSetOf(tueAfternoon))
			},
			wantOK:      true,
			wantSlot:    tueAfternoon,
			wantSupport: 2,
		},
		{
			name:   "half is not a majority",
			policy: domain.DefaultPolicy(),
			build: func(a *domain.Availability) {
				a.AddSlots(bob, domain.SlotSetOf(tueAfternoon))
				a.AddSlots(carol, domain.SlotSetOf(monMorning))
			},
			wantOK: false,
		},
		{
			name:   "silent participants push below majority",
			policy: domain.DefaultPolicy(),
			build: func(a *domain.Availability) {
				a.AddParticipant(alice)
				a.AddParticipant(carol)
				a.AddSlots(bob, domain.SlotSetOf(tueAfternoon))
			},
			wantOK: false,
		},
		{
			name:   "silent participants excluded by policy",
			policy: domain.Policy{CountSilentParticipants: false},
			build: func(a *domain.Availability) {
				a.AddParticipant(alice)
				a.AddParticipant(carol)
				a.AddSlots(bob, domain.SlotSetOf(tueAfternoon))
			},
			wantOK:      true,
			wantSlot:    tueAfternoon,
			wantSupport: 1,
		},
		{
			name:   "tie goes to the earliest slot",
			policy: domain.DefaultPolicy(),
			build: func(a *domain.Availability) {
				a.AddSlots(alice, domain.SlotSetOf(friEvening, monMorning))
				a.AddSlots(bob, domain.SlotSetOf(friEvening, monMorning))
				a.AddSlots(carol, domain.SlotSetOf(friEvening, monMorning))
			},
			wantOK:      true,
			wantSlot:    monMorning,
			wantSupport: 3,
		},
		{
			name:   "higher support beats earlier slot",
			policy: domain.DefaultPolicy(),
			build: func(a *domain.Availability) {
				a.AddSlots(alice, domain.SlotSetOf(monMorning, friEvening))
				a.AddSlots(bob, domain.SlotSetOf(monMorning, friEvening))
				a.AddSlots(carol, domain.SlotSetOf(friEvening))
			},
			wantOK:      true,
			wantSlot:    friEvening,
			wantSupport: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := domain.NewAvailability()
			tt.build(a)

			got, ok := NewSlotSelector(tt.policy).Select(a)

			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantSlot, got.Slot)
				assert.Equal(t, tt.wantSupport, got.Support)
			}
		})
	}
}
