package app

import (
	"fmt"

	"github.com/jmoiron/sqlx"

	chatDomain "github.com/felixgeelhaar/huddle/internal/chat/domain"
	chatPersistence "github.com/felixgeelhaar/huddle/internal/chat/infrastructure/persistence"
	meetingsDomain "github.com/felixgeelhaar/huddle/internal/meetings/domain"
	meetingsPersistence "github.com/felixgeelhaar/huddle/internal/meetings/infrastructure/persistence"
	sharedApplication "github.com/felixgeelhaar/huddle/internal/shared/application"
	"github.com/felixgeelhaar/huddle/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/huddle/internal/shared/infrastructure/outbox"
)

// RepositoryFactory creates repositories for an open database.
// The SQL repositories rebind their queries per driver, so one set of
// implementations serves both SQLite and PostgreSQL.
type RepositoryFactory struct {
	db     *sqlx.DB
	driver database.Driver
}

// NewRepositoryFactory creates a new repository factory.
func NewRepositoryFactory(db *sqlx.DB, driver database.Driver) (*RepositoryFactory, error) {
	if db == nil {
		return nil, fmt.Errorf("database is required")
	}
	if !driver.IsValid() {
		return nil, fmt.Errorf("unsupported driver: %s", driver)
	}
	return &RepositoryFactory{db: db, driver: driver}, nil
}

// Driver returns the backend the factory was built for.
func (f *RepositoryFactory) Driver() database.Driver {
	return f.driver
}

// ParticipantRepository creates a participant repository.
func (f *RepositoryFactory) ParticipantRepository() chatDomain.ParticipantRepository {
	return chatPersistence.NewSQLParticipantRepository(f.db)
}

// MessageRepository creates a message repository.
func (f *RepositoryFactory) MessageRepository() chatDomain.MessageRepository {
	return chatPersistence.NewSQLMessageRepository(f.db)
}

// MeetingRepository creates a meeting repository.
func (f *RepositoryFactory) MeetingRepository() meetingsDomain.Repository {
	return meetingsPersistence.NewSQLMeetingRepository(f.db)
}

// OutboxRepository creates an outbox repository.
func (f *RepositoryFactory) OutboxRepository() outbox.Repository {
	return outbox.NewSQLRepository(f.db)
}

// UnitOfWork creates a unit of work over the same pool.
func (f *RepositoryFactory) UnitOfWork() sharedApplication.UnitOfWork {
	return database.NewUnitOfWork(f.db)
}
