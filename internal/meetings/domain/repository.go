package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for meeting persistence.
type Repository interface {
	Save(ctx context.Context, meeting *Meeting) error
	// FindByID returns ErrMeetingNotFound for an unknown id.
	FindByID(ctx context.Context, id uuid.UUID) (*Meeting, error)
	// List returns meetings ordered by start time.
	List(ctx context.Context) ([]*Meeting, error)
	// ListFrom returns meetings starting at or after from, ordered by start time.
	ListFrom(ctx context.Context, from time.Time) ([]*Meeting, error)
}
