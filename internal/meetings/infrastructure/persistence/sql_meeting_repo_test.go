package persistence_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	availability "github.com/felixgeelhaar/huddle/internal/availability/domain"
	"github.com/felixgeelhaar/huddle/internal/meetings/domain"
	"github.com/felixgeelhaar/huddle/internal/meetings/infrastructure/persistence"
	"github.com/felixgeelhaar/huddle/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/huddle/internal/shared/infrastructure/database/sqlite"
	"github.com/felixgeelhaar/huddle/internal/shared/infrastructure/migrations"
)

func setupMeetingsDB(t *testing.T) *sqlx.DB {
	t.Helper()
	ctx := context.Background()

	db, err := sqlite.Open(ctx, database.Config{SQLitePath: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = migrations.Run(ctx, db, database.DriverSQLite)
	require.NoError(t, err)
	return db
}

func newMeeting(t *testing.T, day availability.Weekday, startsAt time.Time) *domain.Meeting {
	t.Helper()
	m, err := domain.NewMeeting("Team Meeting", domain.Schedule{
		Slot:     availability.Slot{Day: day, Period: availability.Afternoon},
		Date:     startsAt.Format("2006-01-02"),
		Time:     startsAt.Format("15:04"),
		StartsAt: startsAt,
	}, time.Hour, []domain.Attendee{
		{Name: "Alice Johnson", Email: "alice@email.com"},
		{Name: "Bob Smith", Email: "bob@email.com"},
		{Name: "Carol Davis", Email: "carol@email.com"},
	}, 2)
	require.NoError(t, err)
	return m
}

func TestSQLMeetingRepository_SaveAndFind(t *testing.T) {
	ctx := context.Background()
	repo := persistence.NewSQLMeetingRepository(setupMeetingsDB(t))

	meeting := newMeeting(t, availability.Tuesday, time.Date(2026, 10, 20, 14, 0, 0, 0, time.UTC))
	require.NoError(t, repo.Save(ctx, meeting))

	found, err := repo.FindByID(ctx, meeting.ID())
	require.NoError(t, err)

	assert.Equal(t, meeting.ID(), found.ID())
	assert.Equal(t, "Team Meeting", found.Title())
	assert.Equal(t, meeting.Slot(), found.Slot())
	assert.Equal(t, "2026-10-20", found.Date())
	assert.Equal(t, "14:00", found.Time())
	assert.True(t, meeting.StartsAt().Equal(found.StartsAt()))
	assert.Equal(t, time.Hour, found.Duration())
	assert.Equal(t, 2, found.Support())
	assert.Equal(t, meeting.Attendees(), found.Attendees())
}

func TestSQLMeetingRepository_FindUnknown(t *testing.T) {
	repo := persistence.NewSQLMeetingRepository(setupMeetingsDB(t))

	_, err := repo.FindByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrMeetingNotFound)
}

func TestSQLMeetingRepository_ListOrdering(t *testing.T) {
	ctx := context.Background()
	repo := persistence.NewSQLMeetingRepository(setupMeetingsDB(t))

	later := newMeeting(t, availability.Thursday, time.Date(2026, 10, 22, 14, 0, 0, 0, time.UTC))
	earlier := newMeeting(t, availability.Monday, time.Date(2026, 10, 19, 14, 0, 0, 0, time.UTC))
	past := newMeeting(t, availability.Tuesday, time.Date(2026, 10, 13, 14, 0, 0, 0, time.UTC))
	for _, m := range []*domain.Meeting{later, earlier, past} {
		require.NoError(t, repo.Save(ctx, m))
	}

	all, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []uuid.UUID{past.ID(), earlier.ID(), later.ID()}, []uuid.UUID{all[0].ID(), all[1].ID(), all[2].ID()})
	assert.Len(t, all[2].Attendees(), 3)

	upcoming, err := repo.ListFrom(ctx, time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, upcoming, 2)
	assert.Equal(t, earlier.ID(), upcoming[0].ID())
}

func TestSQLMeetingRepository_ListEmpty(t *testing.T) {
	repo := persistence.NewSQLMeetingRepository(setupMeetingsDB(t))

	all, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestSQLMeetingRepository_SaveJoinsUnitOfWork(t *testing.T) {
	ctx := context.Background()
	db := setupMeetingsDB(t)
	repo := persistence.NewSQLMeetingRepository(db)
	uow := database.NewUnitOfWork(db)

	txCtx, err := uow.Begin(ctx)
	require.NoError(t, err)
	meeting := newMeeting(t, availability.Tuesday, time.Date(2026, 10, 20, 14, 0, 0, 0, time.UTC))
	require.NoError(t, repo.Save(txCtx, meeting))
	require.NoError(t, uow.Rollback(txCtx))

	_, err = repo.FindByID(ctx, meeting.ID())
	assert.ErrorIs(t, err, domain.ErrMeetingNotFound)
}

func TestSQLMeetingRepository_SaveTwice(t *testing.T) {
	ctx := context.Background()
	repo := persistence.NewSQLMeetingRepository(setupMeetingsDB(t))

	meeting := newMeeting(t, availability.Tuesday, time.Date(2026, 10, 20, 14, 0, 0, 0, time.UTC))
	require.NoError(t, repo.Save(ctx, meeting))

	err := repo.Save(ctx, meeting)
	assert.ErrorIs(t, err, domain.ErrMeetingExists)
}
