package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Prefix is prepended to every variable name. Each setting also falls back
// to its unprefixed name, so DATABASE_URL works as well as HUDDLE_DATABASE_URL.
const Prefix = "HUDDLE"

// Config holds application configuration.
type Config struct {
	// Application
	AppEnv   string `envconfig:"APP_ENV" default:"development"`
	Version  string `envconfig:"VERSION" default:"dev"`
	Actor    string `envconfig:"ACTOR"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`
	// text or json; empty picks json in production and text otherwise
	LogFormat string `envconfig:"LOG_FORMAT" validate:"omitempty,oneof=text json"`

	// Log file (rotated)
	LogFile           string `envconfig:"LOG_FILE"`
	LogFileMaxSizeMB  int    `envconfig:"LOG_FILE_MAX_SIZE_MB" default:"10" validate:"gte=0"`
	LogFileMaxBackups int    `envconfig:"LOG_FILE_MAX_BACKUPS" default:"3" validate:"gte=0"`
	LogFileMaxAgeDays int    `envconfig:"LOG_FILE_MAX_AGE_DAYS" default:"28" validate:"gte=0"`
	LogFileCompress   bool   `envconfig:"LOG_FILE_COMPRESS" default:"false"`

	// Database. An empty URL selects the local SQLite file.
	DatabaseDriver   string `envconfig:"DATABASE_DRIVER" validate:"omitempty,oneof=auto sqlite postgres"`
	DatabaseURL      string `envconfig:"DATABASE_URL"`
	SQLitePath       string `envconfig:"SQLITE_PATH"`
	DatabaseMaxConns int    `envconfig:"DATABASE_MAX_CONNS" default:"10" validate:"gte=1"`

	// Brokers. Empty disables them.
	RabbitMQURL string `envconfig:"RABBITMQ_URL"`
	RedisURL    string `envconfig:"REDIS_URL"`

	// Outbox
	OutboxPollInterval     time.Duration `envconfig:"OUTBOX_POLL_INTERVAL" default:"100ms"`
	OutboxBatchSize        int           `envconfig:"OUTBOX_BATCH_SIZE" default:"100" validate:"gte=1"`
	OutboxMaxRetries       int           `envconfig:"OUTBOX_MAX_RETRIES" default:"5" validate:"gte=0"`
	OutboxStatsInterval    time.Duration `envconfig:"OUTBOX_STATS_INTERVAL" default:"30s"`
	OutboxRetentionDays    int           `envconfig:"OUTBOX_RETENTION_DAYS" default:"14" validate:"gte=1"`
	OutboxCleanupInterval  time.Duration `envconfig:"OUTBOX_CLEANUP_INTERVAL" default:"24h"`
	OutboxProcessorEnabled bool          `envconfig:"OUTBOX_PROCESSOR_ENABLED" default:"true"`

	// Worker
	WorkerHealthAddr string `envconfig:"WORKER_HEALTH_ADDR" default:"0.0.0.0:8081"`

	// SMTP notifier. Empty host disables it.
	SMTPHost     string `envconfig:"SMTP_HOST"`
	SMTPPort     int    `envconfig:"SMTP_PORT" default:"587" validate:"gte=1,lte=65535"`
	SMTPUsername string `envconfig:"SMTP_USERNAME"`
	SMTPPassword string `envconfig:"SMTP_PASSWORD"`
	SMTPFrom     string `envconfig:"SMTP_FROM" default:"huddle@localhost"`

	// CalDAV notifier. Empty URL disables it.
	CalDAVURL          string `envconfig:"CALDAV_URL" validate:"omitempty,url"`
	CalDAVUsername     string `envconfig:"CALDAV_USERNAME"`
	CalDAVPassword     string `envconfig:"CALDAV_PASSWORD"`
	CalDAVCalendarPath string `envconfig:"CALDAV_CALENDAR_PATH"`

	// Notifier resilience
	NotifierMaxFailures uint32        `envconfig:"NOTIFIER_MAX_FAILURES" default:"5" validate:"gte=1"`
	NotifierOpenTimeout time.Duration `envconfig:"NOTIFIER_OPEN_TIMEOUT" default:"30s"`
	NotificationTTL     time.Duration `envconfig:"NOTIFICATION_DEDUPE_TTL" default:"168h"`

	// Scheduling
	VocabularyFile          string        `envconfig:"VOCABULARY_FILE"`
	MeetingTitle            string        `envconfig:"MEETING_TITLE" default:"Team Meeting" validate:"required"`
	MeetingDuration         time.Duration `envconfig:"MEETING_DURATION" default:"1h" validate:"gt=0"`
	CountSilentParticipants bool          `envconfig:"COUNT_SILENT_PARTICIPANTS" default:"true"`
}

// Load loads configuration from the environment, after reading a .env file
// from the working directory if one exists.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := envconfig.Process(Prefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to read configuration: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// ResolvedLogFormat returns the explicit log format or the environment default.
func (c *Config) ResolvedLogFormat() string {
	if c.LogFormat != "" {
		return c.LogFormat
	}
	if c.IsProduction() {
		return "json"
	}
	return "text"
}
