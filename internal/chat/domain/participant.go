package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidParticipant  = errors.New("participant needs a name and an e-mail")
	ErrParticipantNotFound = errors.New("participant not found")
	ErrEmptyMessage        = errors.New("message text cannot be empty")
	ErrInvalidMessage      = errors.New("invalid message")
)

// Participant is someone who posts in the chat. The e-mail is the identity;
// two posts with the same e-mail come from the same participant.
type Participant struct {
	id        uuid.UUID
	name      string
	email     string
	createdAt time.Time
}

// NewParticipant creates a participant. The e-mail is lower-cased.
func NewParticipant(name, email string) (*Participant, error) {
	name = strings.TrimSpace(name)
	email = NormalizeEmail(email)
	if name == "" || email == "" {
		return nil, ErrInvalidParticipant
	}
	return &Participant{
		id:        uuid.New(),
		name:      name,
		email:     email,
		createdAt: time.Now().UTC(),
	}, nil
}

// NormalizeEmail trims and lower-cases an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (p *Participant) ID() uuid.UUID        { return p.id }
func (p *Participant) Name() string         { return p.name }
func (p *Participant) Email() string        { return p.email }
func (p *Participant) CreatedAt() time.Time { return p.createdAt }

// RehydrateParticipant recreates a participant from persisted state.
func RehydrateParticipant(id uuid.UUID, name, email string, createdAt time.Time) *Participant {
	return &Participant{id: id, name: name, email: email, createdAt: createdAt}
}
