package domain

import (
	"time"

	"github.com/google/uuid"
)

// AggregateRoot is the entry point of a consistency boundary. It owns an
// identity and buffers the domain events raised since it was loaded.
type AggregateRoot interface {
	ID() uuid.UUID
	CreatedAt() time.Time
	DomainEvents() []DomainEvent
	ClearDomainEvents()
}

// BaseAggregateRoot provides identity and event buffering for aggregates.
type BaseAggregateRoot struct {
	id           uuid.UUID
	createdAt    time.Time
	domainEvents []DomainEvent
}

// NewBaseAggregateRoot creates an aggregate with a fresh identity.
func NewBaseAggregateRoot() BaseAggregateRoot {
	return BaseAggregateRoot{
		id:        uuid.New(),
		createdAt: time.Now().UTC(),
	}
}

// RehydrateBaseAggregateRoot recreates an aggregate from persisted state.
func RehydrateBaseAggregateRoot(id uuid.UUID, createdAt time.Time) BaseAggregateRoot {
	return BaseAggregateRoot{
		id:        id,
		createdAt: createdAt,
	}
}

func (a *BaseAggregateRoot) ID() uuid.UUID        { return a.id }
func (a *BaseAggregateRoot) CreatedAt() time.Time { return a.createdAt }

// DomainEvents returns all uncommitted domain events.
func (a *BaseAggregateRoot) DomainEvents() []DomainEvent {
	return a.domainEvents
}

// ClearDomainEvents drops the buffered events once they reached the outbox.
func (a *BaseAggregateRoot) ClearDomainEvents() {
	a.domainEvents = nil
}

// AddDomainEvent buffers a domain event.
func (a *BaseAggregateRoot) AddDomainEvent(event DomainEvent) {
	a.domainEvents = append(a.domainEvents, event)
}
