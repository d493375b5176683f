package domain

import "context"

// ParticipantRepository stores chat participants.
type ParticipantRepository interface {
	// GetOrCreate returns the stored participant with p's e-mail, inserting p
	// when there is none. An existing participant keeps its stored name.
	GetOrCreate(ctx context.Context, p *Participant) (*Participant, error)
	FindByEmail(ctx context.Context, email string) (*Participant, error)
	List(ctx context.Context) ([]*Participant, error)
	Count(ctx context.Context) (int, error)
}

// MessageRepository stores the conversation.
type MessageRepository interface {
	Append(ctx context.Context, msg *Message) error
	// List returns every message in conversation order.
	List(ctx context.Context) ([]*Message, error)
}
