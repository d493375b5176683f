package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	availabilityServices "github.com/felixgeelhaar/huddle/internal/availability/application/services"
	availabilityDomain "github.com/felixgeelhaar/huddle/internal/availability/domain"
	"github.com/felixgeelhaar/huddle/internal/availability/infrastructure/vocabfile"
	chatCommands "github.com/felixgeelhaar/huddle/internal/chat/application/commands"
	chatQueries "github.com/felixgeelhaar/huddle/internal/chat/application/queries"
	chatDomain "github.com/felixgeelhaar/huddle/internal/chat/domain"
	meetingCommands "github.com/felixgeelhaar/huddle/internal/meetings/application/commands"
	meetingQueries "github.com/felixgeelhaar/huddle/internal/meetings/application/queries"
	meetingsDomain "github.com/felixgeelhaar/huddle/internal/meetings/domain"
	"github.com/felixgeelhaar/huddle/internal/notifications/application/subscribers"
	notificationsDomain "github.com/felixgeelhaar/huddle/internal/notifications/domain"
	"github.com/felixgeelhaar/huddle/internal/notifications/infrastructure/caldav"
	"github.com/felixgeelhaar/huddle/internal/notifications/infrastructure/dedupe"
	"github.com/felixgeelhaar/huddle/internal/notifications/infrastructure/email"
	"github.com/felixgeelhaar/huddle/internal/notifications/infrastructure/logging"
	"github.com/felixgeelhaar/huddle/internal/notifications/infrastructure/resilience"
	sharedApplication "github.com/felixgeelhaar/huddle/internal/shared/application"
	"github.com/felixgeelhaar/huddle/internal/shared/infrastructure/database"
	_ "github.com/felixgeelhaar/huddle/internal/shared/infrastructure/database/postgres" // Register PostgreSQL
	_ "github.com/felixgeelhaar/huddle/internal/shared/infrastructure/database/sqlite"   // Register SQLite
	"github.com/felixgeelhaar/huddle/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/huddle/internal/shared/infrastructure/migrations"
	"github.com/felixgeelhaar/huddle/internal/shared/infrastructure/outbox"
	"github.com/felixgeelhaar/huddle/pkg/config"
	"github.com/felixgeelhaar/huddle/pkg/observability"
)

// Container holds all application dependencies.
type Container struct {
	Config *config.Config
	Logger *slog.Logger

	// Observability
	Metrics *observability.PrometheusMetrics
	Health  *observability.HealthRegistry

	// Database
	DB       *sqlx.DB
	DBDriver database.Driver

	// Redis
	RedisClient *redis.Client

	// Resolver
	Vocabulary availabilityDomain.Vocabulary
	Resolver   *availabilityServices.Resolver

	// Repositories
	ParticipantRepo chatDomain.ParticipantRepository
	MessageRepo     chatDomain.MessageRepository
	MeetingRepo     meetingsDomain.Repository
	OutboxRepo      outbox.Repository

	// Unit of Work
	UnitOfWork sharedApplication.UnitOfWork

	// Events. InProcessEventBus is nil when RabbitMQ carries events.
	EventPublisher    eventbus.Publisher
	InProcessEventBus *eventbus.InProcessEventBus
	OutboxProcessor   *outbox.Processor

	// Notifications
	Notifiers              []notificationsDomain.Notifier
	DeliveryLog            notificationsDomain.DeliveryLog
	ConfirmationSubscriber *subscribers.MeetingConfirmationSubscriber

	// Chat Command Handlers
	PostMessageHandler      *chatCommands.PostMessageHandler
	SeedConversationHandler *chatCommands.SeedConversationHandler

	// Chat Query Handlers
	ListMessagesHandler     *chatQueries.ListMessagesHandler
	ListParticipantsHandler *chatQueries.ListParticipantsHandler
	Conversation            *chatQueries.ConversationLoader

	// Meeting Command Handlers
	ScheduleMeetingHandler *meetingCommands.ScheduleMeetingHandler

	// Meeting Query Handlers
	ListMeetingsHandler        *meetingQueries.ListMeetingsHandler
	GetMeetingHandler          *meetingQueries.GetMeetingHandler
	PreviewAvailabilityHandler *meetingQueries.PreviewAvailabilityHandler
}

// NewContainer creates and wires all dependencies. Without a database URL it
// runs against the local SQLite file; without RabbitMQ events are delivered
// in-process; without Redis delivery dedupe is kept in memory.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Container{
		Config:  cfg,
		Logger:  logger,
		Metrics: observability.NewPrometheusMetrics(),
		Health:  observability.NewHealthRegistry(),
	}

	if err := c.initDatabase(ctx); err != nil {
		return nil, err
	}
	c.initRedis(ctx)

	if err := c.initResolver(); err != nil {
		c.Close()
		return nil, err
	}

	factory, err := NewRepositoryFactory(c.DB, c.DBDriver)
	if err != nil {
		c.Close()
		return nil, err
	}
	c.ParticipantRepo = factory.ParticipantRepository()
	c.MessageRepo = factory.MessageRepository()
	c.MeetingRepo = factory.MeetingRepository()
	c.OutboxRepo = factory.OutboxRepository()
	c.UnitOfWork = factory.UnitOfWork()

	c.initNotifications()
	if err := c.initEvents(); err != nil {
		c.Close()
		return nil, err
	}

	// Create chat handlers
	c.PostMessageHandler = chatCommands.NewPostMessageHandler(c.ParticipantRepo, c.MessageRepo, c.UnitOfWork, logger).
		WithMetrics(c.Metrics)
	c.SeedConversationHandler = chatCommands.NewSeedConversationHandler(c.ParticipantRepo, c.PostMessageHandler, logger)
	c.ListMessagesHandler = chatQueries.NewListMessagesHandler(c.MessageRepo)
	c.ListParticipantsHandler = chatQueries.NewListParticipantsHandler(c.ParticipantRepo)
	c.Conversation = chatQueries.NewConversationLoader(c.MessageRepo)

	// Create meeting handlers
	c.ScheduleMeetingHandler = meetingCommands.NewScheduleMeetingHandler(
		c.Conversation,
		c.Resolver,
		c.MeetingRepo,
		c.OutboxRepo,
		c.UnitOfWork,
		logger,
	).WithDuration(cfg.MeetingDuration).WithMetrics(c.Metrics)
	c.ListMeetingsHandler = meetingQueries.NewListMeetingsHandler(c.MeetingRepo)
	c.GetMeetingHandler = meetingQueries.NewGetMeetingHandler(c.MeetingRepo)
	c.PreviewAvailabilityHandler = meetingQueries.NewPreviewAvailabilityHandler(c.Conversation, c.Resolver)

	logger.Debug("container initialized",
		"driver", c.DBDriver,
		"rabbitmq", cfg.RabbitMQURL != "",
		"redis", c.RedisClient != nil,
		"notifiers", len(c.Notifiers),
	)
	return c, nil
}

func (c *Container) initDatabase(ctx context.Context) error {
	db, driver, err := database.Open(ctx, database.Config{
		Driver:     database.Driver(c.Config.DatabaseDriver),
		URL:        c.Config.DatabaseURL,
		SQLitePath: c.Config.SQLitePath,
		MaxConns:   c.Config.DatabaseMaxConns,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	applied, err := migrations.Run(ctx, db, driver)
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	if len(applied) > 0 {
		c.Logger.Info("applied migrations", "driver", driver, "migrations", applied)
	}

	c.DB = db
	c.DBDriver = driver
	c.Health.Register("database", observability.RequiredProbe("database", db.PingContext))
	return nil
}

// initRedis connects to Redis when configured. Connection failures fall back
// to the in-memory delivery log.
func (c *Container) initRedis(ctx context.Context) {
	if c.Config.RedisURL == "" {
		return
	}

	opt, err := redis.ParseURL(c.Config.RedisURL)
	if err != nil {
		c.Logger.Warn("invalid Redis URL, using in-memory delivery log", "error", err)
		return
	}

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		c.Logger.Warn("Redis not available, using in-memory delivery log", "error", err)
		return
	}

	c.RedisClient = client
	c.Health.Register("redis", observability.OptionalProbe("redis", func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}))
	c.Logger.Info("connected to Redis")
}

func (c *Container) initResolver() error {
	vocab, err := vocabfile.Load(c.Config.VocabularyFile)
	if err != nil {
		return fmt.Errorf("failed to load vocabulary: %w", err)
	}
	if c.Config.MeetingTitle != "" {
		if vocab, err = vocab.WithMeetingTitle(c.Config.MeetingTitle); err != nil {
			return err
		}
	}

	policy := availabilityDomain.Policy{CountSilentParticipants: c.Config.CountSilentParticipants}
	resolver, err := availabilityServices.NewResolver(vocab, policy, availabilityServices.SystemClock{}, c.Logger)
	if err != nil {
		return fmt.Errorf("failed to build resolver: %w", err)
	}

	c.Vocabulary = vocab
	c.Resolver = resolver.WithMetrics(c.Metrics)
	return nil
}

func (c *Container) initNotifications() {
	cfg := c.Config
	breaker := resilience.BreakerConfig{
		MaxRequests:      1,
		Interval:         resilience.DefaultBreakerConfig().Interval,
		Timeout:          cfg.NotifierOpenTimeout,
		FailureThreshold: cfg.NotifierMaxFailures,
	}

	c.Notifiers = []notificationsDomain.Notifier{logging.NewNotifier(c.Logger)}

	if cfg.SMTPHost != "" {
		smtp := email.NewNotifier(email.Config{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
		}, c.Logger)
		c.addGuardedNotifier(smtp, breaker)
	}

	if cfg.CalDAVURL != "" {
		cal := caldav.NewNotifier(cfg.CalDAVURL, cfg.CalDAVUsername, cfg.CalDAVPassword, c.Logger).
			WithCalendarPath(cfg.CalDAVCalendarPath).
			WithOrganizer(cfg.SMTPFrom)
		c.addGuardedNotifier(cal, breaker)
	}

	if c.RedisClient != nil {
		c.DeliveryLog = dedupe.NewRedisLog(c.RedisClient, cfg.NotificationTTL)
	} else {
		c.DeliveryLog = dedupe.NewMemoryLog(cfg.NotificationTTL)
	}

	c.ConfirmationSubscriber = subscribers.NewMeetingConfirmationSubscriber(c.Notifiers, c.DeliveryLog, c.Logger).
		WithMetrics(c.Metrics)
}

// addGuardedNotifier wraps n in a circuit breaker and reports the circuit
// state as a health check named after the channel.
func (c *Container) addGuardedNotifier(n notificationsDomain.Notifier, cfg resilience.BreakerConfig) {
	guarded := resilience.NewBreakerNotifier(n, cfg, c.Logger).WithMetrics(c.Metrics)
	c.Notifiers = append(c.Notifiers, guarded)
	c.Health.Register("notifier."+n.Name(), observability.BreakerProbe(func() string {
		return guarded.State().String()
	}))
}

// initEvents picks the event transport. With RabbitMQ the worker consumes
// events; otherwise they are dispatched in-process when the outbox is drained.
func (c *Container) initEvents() error {
	cfg := c.Config

	if cfg.RabbitMQURL != "" {
		publisher, err := eventbus.NewRabbitMQPublisher(cfg.RabbitMQURL, c.Logger)
		if err != nil {
			if !cfg.IsDevelopment() {
				return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
			}
			c.Logger.Warn("RabbitMQ not available, delivering events in-process", "error", err)
		} else {
			c.EventPublisher = publisher
			c.Health.Register("rabbitmq.publisher", observability.OptionalProbe("rabbitmq", publisher.Ping))
		}
	}

	if c.EventPublisher == nil {
		c.InProcessEventBus = eventbus.NewInProcessEventBus(c.Logger)
		c.InProcessEventBus.RegisterConsumer(c.ConfirmationSubscriber)
		c.EventPublisher = c.InProcessEventBus
	}

	processorCfg := outbox.DefaultProcessorConfig()
	processorCfg.PollInterval = cfg.OutboxPollInterval
	processorCfg.BatchSize = cfg.OutboxBatchSize
	processorCfg.MaxRetries = cfg.OutboxMaxRetries
	c.OutboxProcessor = outbox.NewProcessor(c.OutboxRepo, c.EventPublisher, processorCfg, c.Logger).
		WithMetrics(c.Metrics)
	return nil
}

// IsLocal reports whether events are delivered in-process.
func (c *Container) IsLocal() bool {
	return c.InProcessEventBus != nil
}

// DrainOutbox publishes pending events once. In local mode this is what
// sends meeting confirmations.
func (c *Container) DrainOutbox(ctx context.Context) error {
	if c.OutboxProcessor == nil {
		return nil
	}
	published, err := c.OutboxProcessor.Drain(ctx)
	if published > 0 {
		c.Logger.DebugContext(ctx, "outbox drained", "published", published)
	}
	return err
}

// Close cleans up all resources.
func (c *Container) Close() {
	if c.OutboxProcessor != nil && c.OutboxProcessor.IsRunning() {
		c.OutboxProcessor.Stop()
	}

	if c.EventPublisher != nil {
		if err := c.EventPublisher.Close(); err != nil {
			c.Logger.Warn("error closing event publisher", "error", err)
		}
	}

	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			c.Logger.Warn("error closing Redis connection", "error", err)
		}
	}

	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			c.Logger.Warn("error closing database", "error", err)
		} else {
			c.Logger.Debug("database connection closed", "driver", c.DBDriver)
		}
	}
}
