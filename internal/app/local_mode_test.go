package app

import (
	"bytes"
	"context"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	availabilityDomain "github.com/felixgeelhaar/huddle/internal/availability/domain"
	chatCommands "github.com/felixgeelhaar/huddle/internal/chat/application/commands"
	meetingCommands "github.com/felixgeelhaar/huddle/internal/meetings/application/commands"
	meetingQueries "github.com/felixgeelhaar/huddle/internal/meetings/application/queries"
	"github.com/felixgeelhaar/huddle/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/huddle/pkg/config"
	"github.com/felixgeelhaar/huddle/pkg/observability"
)

func localConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		AppEnv:                  "test",
		SQLitePath:              filepath.Join(t.TempDir(), "huddle.db"),
		DatabaseMaxConns:        1,
		OutboxPollInterval:      10 * time.Millisecond,
		OutboxBatchSize:         10,
		OutboxMaxRetries:        3,
		NotifierMaxFailures:     3,
		NotifierOpenTimeout:     time.Second,
		NotificationTTL:         time.Hour,
		MeetingTitle:            "Team Meeting",
		MeetingDuration:         time.Hour,
		CountSilentParticipants: true,
	}
}

func newLocalContainer(t *testing.T) (*Container, *bytes.Buffer) {
	t.Helper()
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	c, err := NewContainer(context.Background(), localConfig(t), logger)
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c, &logs
}

func TestNewContainer_LocalMode(t *testing.T) {
	c, _ := newLocalContainer(t)

	assert.Equal(t, database.DriverSQLite, c.DBDriver)
	assert.True(t, c.IsLocal())
	assert.Nil(t, c.RedisClient)
	assert.Len(t, c.Notifiers, 1, "only the log notifier without SMTP or CalDAV")
	assert.Equal(t, "Team Meeting", c.Vocabulary.MeetingTitle())

	assert.NotNil(t, c.PostMessageHandler)
	assert.NotNil(t, c.SeedConversationHandler)
	assert.NotNil(t, c.ScheduleMeetingHandler)
	assert.NotNil(t, c.PreviewAvailabilityHandler)

	health := c.Health.Report(context.Background())
	assert.Equal(t, observability.HealthStatusHealthy, health.Status)
}

func TestNewContainer_SampleConversationSchedulesAndConfirms(t *testing.T) {
	c, logs := newLocalContainer(t)
	ctx := context.Background()

	seeded, err := c.SeedConversationHandler.Handle(ctx, chatCommands.SeedConversationCommand{})
	require.NoError(t, err)
	assert.Equal(t, len(chatCommands.SampleConversation), seeded.Messages)

	result, err := c.ScheduleMeetingHandler.Handle(ctx, meetingCommands.ScheduleMeetingCommand{Actor: "test"})
	require.NoError(t, err)
	require.True(t, result.Resolution.Success(), result.Resolution.Message)
	assert.Equal(t, availabilityDomain.Slot{Day: availabilityDomain.Tuesday, Period: availabilityDomain.Afternoon},
		result.Resolution.Proposal.Slot)
	assert.Equal(t, "Great! I've scheduled a meeting for Tuesday Afternoon.", result.Resolution.Message)
	require.True(t, result.Persisted())

	meetings, err := c.ListMeetingsHandler.Handle(ctx, meetingQueries.ListMeetingsQuery{})
	require.NoError(t, err)
	require.Len(t, meetings, 1)
	assert.Equal(t, result.MeetingID, meetings[0].ID)
	assert.Len(t, meetings[0].Attendees, 3)

	require.NoError(t, c.DrainOutbox(ctx))
	assert.Contains(t, logs.String(), "Meeting Confirmation: Team Meeting")

	pending, err := c.OutboxRepo.Pending(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestNewContainer_DryRunStoresNothing(t *testing.T) {
	c, _ := newLocalContainer(t)
	ctx := context.Background()

	_, err := c.SeedConversationHandler.Handle(ctx, chatCommands.SeedConversationCommand{})
	require.NoError(t, err)

	result, err := c.ScheduleMeetingHandler.Handle(ctx, meetingCommands.ScheduleMeetingCommand{DryRun: true})
	require.NoError(t, err)
	assert.True(t, result.Resolution.Success())
	assert.False(t, result.Persisted())

	meetings, err := c.ListMeetingsHandler.Handle(ctx, meetingQueries.ListMeetingsQuery{})
	require.NoError(t, err)
	assert.Empty(t, meetings)
}

func TestLogConfig(t *testing.T) {
	cfg := &config.Config{
		AppEnv:           "production",
		Version:          "1.2.3",
		LogLevel:         "warn",
		LogFile:          "/var/log/huddle.log",
		LogFileMaxSizeMB: 5,
	}

	lc := LogConfig(cfg, "huddle-worker", nil)

	assert.Equal(t, observability.LogLevelWarn, lc.Level)
	assert.Equal(t, observability.LogFormatJSON, lc.Format)
	assert.Equal(t, "/var/log/huddle.log", lc.File.Path)
	assert.Equal(t, 5, lc.File.MaxSizeMB)
	assert.True(t, lc.AddSource)
	assert.Equal(t, "huddle-worker", lc.ServiceName)
	assert.Equal(t, "1.2.3", lc.ServiceVersion)
}

func TestNewContainer_SMTPNotifierIsGuarded(t *testing.T) {
	cfg := localConfig(t)
	cfg.SMTPHost = "localhost"
	cfg.SMTPPort = 2525
	cfg.SMTPFrom = "huddle@example.com"

	c, err := NewContainer(context.Background(), cfg, slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
	require.NoError(t, err)
	t.Cleanup(c.Close)

	require.Len(t, c.Notifiers, 2)
	assert.Equal(t, "smtp", c.Notifiers[1].Name())
	assert.Contains(t, c.Health.Names(), "notifier.smtp")

	health := c.Health.Report(context.Background())
	assert.Equal(t, observability.HealthStatusHealthy, health.Checks["notifier.smtp"].Status)
}
