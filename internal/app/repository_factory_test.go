package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/huddle/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/huddle/internal/shared/infrastructure/database/sqlite"
)

func TestNewRepositoryFactory(t *testing.T) {
	ctx := context.Background()
	db, err := sqlite.Open(ctx, database.Config{SQLitePath: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	factory, err := NewRepositoryFactory(db, database.DriverSQLite)
	require.NoError(t, err)
	assert.Equal(t, database.DriverSQLite, factory.Driver())
	assert.NotNil(t, factory.ParticipantRepository())
	assert.NotNil(t, factory.MessageRepository())
	assert.NotNil(t, factory.MeetingRepository())
	assert.NotNil(t, factory.OutboxRepository())
	assert.NotNil(t, factory.UnitOfWork())

	_, err = NewRepositoryFactory(db, database.Driver("mysql"))
	assert.Error(t, err)

	_, err = NewRepositoryFactory(nil, database.DriverSQLite)
	assert.Error(t, err)
}
