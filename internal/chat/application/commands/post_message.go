package commands

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/felixgeelhaar/huddle/internal/chat/domain"
	sharedApplication "github.com/felixgeelhaar/huddle/internal/shared/application"
	"github.com/felixgeelhaar/huddle/pkg/observability"
)

// PostMessageCommand adds a line to the chat as the given participant.
type PostMessageCommand struct {
	Name   string `validate:"required,max=200"`
	Email  string `validate:"required,email"`
	Text   string `validate:"required,max=4000"`
	SentAt time.Time
}

// PostMessageResult identifies the stored message and its author.
type PostMessageResult struct {
	MessageID     int64
	ParticipantID uuid.UUID
}

// PostMessageHandler handles PostMessageCommand.
type PostMessageHandler struct {
	participants domain.ParticipantRepository
	messages     domain.MessageRepository
	uow          sharedApplication.UnitOfWork
	validate     *validator.Validate
	logger       *slog.Logger
	metrics      observability.Metrics
}

// NewPostMessageHandler creates a new PostMessageHandler.
func NewPostMessageHandler(
	participants domain.ParticipantRepository,
	messages domain.MessageRepository,
	uow sharedApplication.UnitOfWork,
	logger *slog.Logger,
) *PostMessageHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostMessageHandler{
		participants: participants,
		messages:     messages,
		uow:          uow,
		validate:     validator.New(),
		logger:       logger,
		metrics:      observability.NoopMetrics{},
	}
}

// WithMetrics counts posted messages on m.
func (h *PostMessageHandler) WithMetrics(m observability.Metrics) *PostMessageHandler {
	if m != nil {
		h.metrics = m
	}
	return h
}

// Handle registers the author on first post and appends the message.
func (h *PostMessageHandler) Handle(ctx context.Context, cmd PostMessageCommand) (*PostMessageResult, error) {
	if err := h.validate.Struct(cmd); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidMessage, err)
	}

	var result *PostMessageResult
	err := sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		candidate, err := domain.NewParticipant(cmd.Name, cmd.Email)
		if err != nil {
			return err
		}
		author, err := h.participants.GetOrCreate(txCtx, candidate)
		if err != nil {
			return err
		}

		msg, err := domain.NewMessage(author, cmd.Text, cmd.SentAt)
		if err != nil {
			return err
		}
		if err := h.messages.Append(txCtx, msg); err != nil {
			return err
		}

		result = &PostMessageResult{MessageID: msg.ID(), ParticipantID: author.ID()}
		return nil
	})
	if err != nil {
		return nil, err
	}

	h.metrics.Counter(observability.MetricMessagesPosted, 1)
	h.logger.DebugContext(ctx, "message posted",
		"message_id", result.MessageID,
		"participant_id", result.ParticipantID,
	)
	return result, nil
}
