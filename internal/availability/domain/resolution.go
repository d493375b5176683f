package domain

import (
	"time"

	"github.com/samber/lo"
)

// Outcome classifies a resolution.
type Outcome string

const (
	// OutcomeNoIntent means nobody talked about meeting.
	OutcomeNoIntent Outcome = "no_intent"
	// OutcomeNeedsAvailability means intent was found but nobody named a day.
	OutcomeNeedsAvailability Outcome = "needs_availability"
	// OutcomeNoConsensus means no slot has a strict majority.
	OutcomeNoConsensus Outcome = "no_consensus"
	// OutcomeScheduled means a slot won and a proposal was produced.
	OutcomeScheduled Outcome = "scheduled"
)

// Proposal is the concrete meeting produced by a successful resolution.
type Proposal struct {
	Title        string
	Slot         Slot
	Date         string // 2006-01-02
	Time         string // 15:04
	StartsAt     time.Time
	Participants []Participant
	Support      int
}

// ParticipantEmails lists the participants' e-mails in order.
func (p Proposal) ParticipantEmails() []string {
	return lo.Map(p.Participants, func(pt Participant, _ int) string {
		return pt.Email
	})
}

// Resolution is the structured result of resolving a chat.
// It is never an error: every path ends in one of the four outcomes.
type Resolution struct {
	Outcome      Outcome
	Message      string
	Proposal     *Proposal
	Availability *Availability
}

// Success reports whether a meeting was proposed.
func (r Resolution) Success() bool {
	return r.Outcome == OutcomeScheduled
}

// NeedsFollowUp reports whether the chat should be asked for more input.
func (r Resolution) NeedsFollowUp() bool {
	return r.Outcome == OutcomeNeedsAvailability || r.Outcome == OutcomeNoConsensus
}
