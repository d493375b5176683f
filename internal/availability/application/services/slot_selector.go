package services

import (
	"github.com/felixgeelhaar/huddle/internal/availability/domain"
)

// Selection is the winning slot and how many participants back it.
type Selection struct {
	Slot    domain.Slot
	Support int
	Total   int
}

// SlotSelector picks the slot a strict majority of participants can make.
type SlotSelector struct {
	policy domain.Policy
}

// NewSlotSelector creates a selector applying policy.
func NewSlotSelector(policy domain.Policy) *SlotSelector {
	return &SlotSelector{policy: policy}
}

// Select returns the slot with the highest support strictly above half the
// participants. Slots are visited Monday morning first, and a later slot
// only wins with strictly more support, so ties go to the earliest slot.
func (s *SlotSelector) Select(availability *domain.Availability) (Selection, bool) {
	total := s.policy.Denominator(availability)
	candidates := availability.Candidates()

	var best Selection
	found := false
	for _, slot := range candidates.Slots() {
		support := availability.Support(slot)
		if !domain.IsMajority(support, total) {
			continue
		}
		if !found || support > best.Support {
			best = Selection{Slot: slot, Support: support, Total: total}
			found = true
		}
	}
	return best, found
}
