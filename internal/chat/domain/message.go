package domain

import (
	"strings"
	"time"
)

// Message is one line of the conversation. It never changes once stored;
// ID order is conversation order.
type Message struct {
	id     int64
	author *Participant
	body   string
	sentAt time.Time
}

// NewMessage creates an unsaved message by author.
func NewMessage(author *Participant, body string, sentAt time.Time) (*Message, error) {
	if author == nil {
		return nil, ErrInvalidParticipant
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, ErrEmptyMessage
	}
	if sentAt.IsZero() {
		sentAt = time.Now()
	}
	return &Message{author: author, body: body, sentAt: sentAt.UTC()}, nil
}

func (m *Message) ID() int64            { return m.id }
func (m *Message) Author() *Participant { return m.author }
func (m *Message) Body() string         { return m.body }
func (m *Message) SentAt() time.Time    { return m.sentAt }

// AssignID records the id given by the store.
func (m *Message) AssignID(id int64) {
	m.id = id
}

// RehydrateMessage recreates a message from persisted state.
func RehydrateMessage(id int64, author *Participant, body string, sentAt time.Time) *Message {
	return &Message{id: id, author: author, body: body, sentAt: sentAt}
}
