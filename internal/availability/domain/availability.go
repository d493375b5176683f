package domain

import "strings"

// Availability maps each participant to the slots they said they can make.
// Participants keep first-appearance order, including those who never
// mentioned a day.
type Availability struct {
	participants []Participant
	index        map[string]int
	slots        []SlotSet
}

// NewAvailability returns an empty mapping.
func NewAvailability() *Availability {
	return &Availability{index: make(map[string]int)}
}

// AddParticipant registers p if its e-mail has not been seen yet.
func (a *Availability) AddParticipant(p Participant) {
	if _, ok := a.index[p.Email]; ok {
		return
	}
	a.index[p.Email] = len(a.participants)
	a.participants = append(a.participants, p)
	a.slots = append(a.slots, 0)
}

// AddSlots unions set into the participant's slots, registering them first
// if needed.
func (a *Availability) AddSlots(p Participant, set SlotSet) {
	a.AddParticipant(p)
	i := a.index[p.Email]
	a.slots[i] = a.slots[i].Union(set)
}

// Participants returns everyone in first-appearance order.
func (a *Availability) Participants() []Participant {
	out := make([]Participant, len(a.participants))
	copy(out, a.participants)
	return out
}

// SlotsFor returns the slots for the participant with email.
func (a *Availability) SlotsFor(email string) SlotSet {
	i, ok := a.index[email]
	if !ok {
		return 0
	}
	return a.slots[i]
}

// Len is the number of participants.
func (a *Availability) Len() int {
	return len(a.participants)
}

// Available counts participants with at least one slot.
func (a *Availability) Available() int {
	n := 0
	for _, set := range a.slots {
		if !set.IsEmpty() {
			n++
		}
	}
	return n
}

// IsEmpty reports whether no participant has any slot.
func (a *Availability) IsEmpty() bool {
	return a.Available() == 0
}

// Support counts participants whose set contains slot.
func (a *Availability) Support(slot Slot) int {
	n := 0
	for _, set := range a.slots {
		if set.Has(slot) {
			n++
		}
	}
	return n
}

// Candidates is the union of every participant's slots.
func (a *Availability) Candidates() SlotSet {
	var all SlotSet
	for _, set := range a.slots {
		all = all.Union(set)
	}
	return all
}

// Format renders "bob@email.com: tuesday afternoon; carol@email.com: none"
// using label for each slot.
func (a *Availability) Format(label func(Slot) string) string {
	if label == nil {
		label = Slot.String
	}
	parts := make([]string, 0, len(a.participants))
	for i, p := range a.participants {
		slots := a.slots[i].Slots()
		if len(slots) == 0 {
			parts = append(parts, p.Email+": none")
			continue
		}
		labels := make([]string, len(slots))
		for j, s := range slots {
			labels[j] = label(s)
		}
		parts = append(parts, p.Email+": "+strings.Join(labels, ", "))
	}
	return strings.Join(parts, "; ")
}

func (a *Availability) String() string {
	return a.Format(nil)
}
