package domain

import "time"

// Participant is someone who wrote in the chat. Identity is the e-mail.
type Participant struct {
	Name  string
	Email string
}

// Message is one chat line as seen by the resolver. Order in the input
// slice is the conversation order.
type Message struct {
	Author Participant
	Text   string
	SentAt time.Time
}
