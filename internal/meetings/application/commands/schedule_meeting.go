package commands

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	availability "github.com/felixgeelhaar/huddle/internal/availability/domain"
	"github.com/felixgeelhaar/huddle/internal/meetings/domain"
	sharedApplication "github.com/felixgeelhaar/huddle/internal/shared/application"
	"github.com/felixgeelhaar/huddle/internal/shared/infrastructure/outbox"
	"github.com/felixgeelhaar/huddle/pkg/observability"
)

// Conversation supplies the chat history to resolve.
type Conversation interface {
	Load(ctx context.Context) ([]availability.Message, error)
}

// Resolver turns a chat history into a scheduling decision.
type Resolver interface {
	Resolve(ctx context.Context, messages []availability.Message) availability.Resolution
}

// MeetingStore records booked meetings.
type MeetingStore interface {
	Save(ctx context.Context, meeting *domain.Meeting) error
}

// ScheduleMeetingCommand asks for a meeting to be booked from the chat.
type ScheduleMeetingCommand struct {
	// Actor is the e-mail of whoever asked, recorded on the emitted events.
	Actor string
	// DryRun resolves without booking anything.
	DryRun bool
}

// ScheduleMeetingResult carries the resolution and what was stored.
type ScheduleMeetingResult struct {
	Resolution availability.Resolution
	// MeetingID is set when the meeting was stored.
	MeetingID uuid.UUID
	// PersistErr is why a successful resolution could not be stored.
	// It does not change the resolution.
	PersistErr error
}

// Persisted reports whether a meeting record was written.
func (r *ScheduleMeetingResult) Persisted() bool {
	return r.MeetingID != uuid.Nil
}

// ScheduleMeetingHandler resolves the chat and books the winning slot.
type ScheduleMeetingHandler struct {
	conversation Conversation
	resolver     Resolver
	repo         MeetingStore
	outboxRepo   outbox.Appender
	uow          sharedApplication.UnitOfWork
	duration     time.Duration
	logger       *slog.Logger
	metrics      observability.Metrics
}

// NewScheduleMeetingHandler creates a new ScheduleMeetingHandler.
func NewScheduleMeetingHandler(
	conversation Conversation,
	resolver Resolver,
	repo MeetingStore,
	outboxRepo outbox.Appender,
	uow sharedApplication.UnitOfWork,
	logger *slog.Logger,
) *ScheduleMeetingHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ScheduleMeetingHandler{
		conversation: conversation,
		resolver:     resolver,
		repo:         repo,
		outboxRepo:   outboxRepo,
		uow:          uow,
		duration:     domain.DefaultDuration,
		logger:       logger,
		metrics:      observability.NoopMetrics{},
	}
}

// WithDuration sets the length of booked meetings.
func (h *ScheduleMeetingHandler) WithDuration(d time.Duration) *ScheduleMeetingHandler {
	if d > 0 {
		h.duration = d
	}
	return h
}

// WithMetrics records scheduling metrics on m.
func (h *ScheduleMeetingHandler) WithMetrics(m observability.Metrics) *ScheduleMeetingHandler {
	if m != nil {
		h.metrics = m
	}
	return h
}

// Handle loads the chat, resolves it and, on success, stores the meeting and
// queues its MeetingScheduled event in one transaction. Only a failure to
// read the chat is returned as an error; a failed write is reported in
// PersistErr and logged.
func (h *ScheduleMeetingHandler) Handle(ctx context.Context, cmd ScheduleMeetingCommand) (*ScheduleMeetingResult, error) {
	timer := observability.StartTimer("schedule_meeting").WithLogger(h.logger).WithMetrics(h.metrics)

	messages, err := h.conversation.Load(ctx)
	if err != nil {
		timer.WithTags(observability.T(observability.OutcomeKey, "error")).StopWithError(err)
		return nil, fmt.Errorf("load conversation: %w", err)
	}

	result := &ScheduleMeetingResult{Resolution: h.resolver.Resolve(ctx, messages)}
	timer.WithTags(observability.T(observability.OutcomeKey, string(result.Resolution.Outcome)))
	if !result.Resolution.Success() || cmd.DryRun {
		timer.Stop()
		return result, nil
	}

	meetingID, err := h.book(ctx, cmd, result.Resolution.Proposal)
	if err != nil {
		result.PersistErr = err
		timer.StopWithError(err)
		h.logger.ErrorContext(ctx, "scheduled meeting was not stored",
			"date", result.Resolution.Proposal.Date,
			"time", result.Resolution.Proposal.Time,
			observability.ErrorKey, err,
		)
		return result, nil
	}

	result.MeetingID = meetingID
	timer.Stop()
	h.metrics.Counter(observability.MetricMeetingsScheduled, 1)
	h.logger.InfoContext(ctx, "meeting scheduled",
		"meeting_id", meetingID,
		"slot", result.Resolution.Proposal.Slot.String(),
		"date", result.Resolution.Proposal.Date,
		"time", result.Resolution.Proposal.Time,
		"participants", len(result.Resolution.Proposal.Participants),
	)
	return result, nil
}

func (h *ScheduleMeetingHandler) book(ctx context.Context, cmd ScheduleMeetingCommand, proposal *availability.Proposal) (uuid.UUID, error) {
	meeting, err := domain.NewMeeting(
		proposal.Title,
		domain.Schedule{
			Slot:     proposal.Slot,
			Date:     proposal.Date,
			Time:     proposal.Time,
			StartsAt: proposal.StartsAt,
		},
		h.duration,
		lo.Map(proposal.Participants, func(p availability.Participant, _ int) domain.Attendee {
			return domain.Attendee{Name: p.Name, Email: p.Email}
		}),
		proposal.Support,
	)
	if err != nil {
		return uuid.Nil, err
	}

	err = sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		if err := h.repo.Save(txCtx, meeting); err != nil {
			return err
		}

		events := meeting.DomainEvents()
		sharedApplication.ApplyEventMetadata(events, sharedApplication.NewEventMetadata(ctx, cmd.Actor))

		msgs, err := outbox.MessagesFromEvents(events)
		if err != nil {
			return err
		}
		return h.outboxRepo.Append(txCtx, msgs...)
	})
	if err != nil {
		return uuid.Nil, err
	}

	meeting.ClearDomainEvents()
	return meeting.ID(), nil
}
