package domain

// Policy holds the tunable parts of slot selection.
type Policy struct {
	// CountSilentParticipants includes participants without any slot in the
	// majority denominator.
	CountSilentParticipants bool
}

// DefaultPolicy counts every chat participant.
func DefaultPolicy() Policy {
	return Policy{CountSilentParticipants: true}
}

// Denominator is the number of participants a majority is measured against.
func (p Policy) Denominator(a *Availability) int {
	if p.CountSilentParticipants {
		return a.Len()
	}
	return a.Available()
}

// IsMajority reports whether support strictly exceeds half of total.
func IsMajority(support, total int) bool {
	return total > 0 && support*2 > total
}
