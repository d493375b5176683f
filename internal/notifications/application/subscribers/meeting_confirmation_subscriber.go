package subscribers

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	meetingsDomain "github.com/felixgeelhaar/huddle/internal/meetings/domain"
	"github.com/felixgeelhaar/huddle/internal/notifications/domain"
	"github.com/felixgeelhaar/huddle/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/huddle/pkg/observability"
)

// MeetingScheduledPayload is the payload of meetings.meeting.scheduled events.
type MeetingScheduledPayload struct {
	MeetingID       uuid.UUID         `json:"meeting_id"`
	Title           string            `json:"title"`
	Date            string            `json:"date"`
	Time            string            `json:"time"`
	StartsAt        time.Time         `json:"starts_at"`
	DurationMinutes int               `json:"duration_minutes"`
	Attendees       []AttendeePayload `json:"attendees"`
}

// AttendeePayload is an attendee as carried in the event.
type AttendeePayload struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Confirmation converts the payload into a confirmation.
func (p MeetingScheduledPayload) Confirmation() domain.Confirmation {
	return domain.Confirmation{
		MeetingID: p.MeetingID,
		Title:     p.Title,
		Date:      p.Date,
		Time:      p.Time,
		StartsAt:  p.StartsAt,
		Duration:  time.Duration(p.DurationMinutes) * time.Minute,
		Recipients: lo.Map(p.Attendees, func(a AttendeePayload, _ int) domain.Recipient {
			return domain.Recipient{Name: a.Name, Email: a.Email}
		}),
	}
}

// MeetingConfirmationSubscriber sends a confirmation over every configured
// channel when a meeting is scheduled. Each channel delivers a meeting at
// most once; delivery failures are logged and never fail the event.
type MeetingConfirmationSubscriber struct {
	notifiers  []domain.Notifier
	deliveries domain.DeliveryLog
	logger     *slog.Logger
	metrics    observability.Metrics
	enabled    bool
}

// NewMeetingConfirmationSubscriber creates a new subscriber.
func NewMeetingConfirmationSubscriber(
	notifiers []domain.Notifier,
	deliveries domain.DeliveryLog,
	logger *slog.Logger,
) *MeetingConfirmationSubscriber {
	if logger == nil {
		logger = slog.Default()
	}
	return &MeetingConfirmationSubscriber{
		notifiers:  notifiers,
		deliveries: deliveries,
		logger:     logger,
		metrics:    observability.NoopMetrics{},
		enabled:    true,
	}
}

// WithMetrics records delivery outcomes on m.
func (s *MeetingConfirmationSubscriber) WithMetrics(m observability.Metrics) *MeetingConfirmationSubscriber {
	if m != nil {
		s.metrics = m
	}
	return s
}

// SetEnabled enables or disables the subscriber.
func (s *MeetingConfirmationSubscriber) SetEnabled(enabled bool) {
	s.enabled = enabled
}

// EventTypes returns the event types this subscriber handles.
func (s *MeetingConfirmationSubscriber) EventTypes() []string {
	return []string{meetingsDomain.RoutingKeyMeetingScheduled}
}

// Handle processes a meeting scheduled event.
func (s *MeetingConfirmationSubscriber) Handle(ctx context.Context, event *eventbus.ConsumedEvent) error {
	if !s.enabled {
		s.logger.DebugContext(ctx, "confirmation subscriber disabled, skipping event",
			"routing_key", event.RoutingKey,
		)
		return nil
	}
	s.metrics.Counter(observability.MetricEventsConsumed, 1, observability.T("routing_key", event.RoutingKey))

	if event.Metadata.CorrelationID != "" {
		ctx = observability.WithCorrelationID(ctx, event.Metadata.CorrelationID)
	}

	var payload MeetingScheduledPayload
	if err := event.Decode(&payload); err != nil {
		s.logger.ErrorContext(ctx, "failed to unmarshal meeting scheduled payload",
			"event_id", event.EventID,
			observability.ErrorKey, err,
		)
		return nil
	}

	confirmation := payload.Confirmation()
	if err := confirmation.Validate(); err != nil {
		s.logger.WarnContext(ctx, "meeting has nobody to notify",
			"meeting_id", payload.MeetingID,
		)
		return nil
	}

	for _, notifier := range s.notifiers {
		s.deliver(ctx, notifier, confirmation)
	}
	return nil
}

func (s *MeetingConfirmationSubscriber) deliver(ctx context.Context, notifier domain.Notifier, c domain.Confirmation) {
	name := notifier.Name()
	key := c.MeetingID.String() + ":" + name

	if s.deliveries != nil {
		fresh, err := s.deliveries.Claim(ctx, key)
		if err != nil {
			s.logger.WarnContext(ctx, "delivery log unavailable, sending anyway",
				"notifier", name,
				observability.ErrorKey, err,
			)
		} else if !fresh {
			s.logger.DebugContext(ctx, "confirmation already delivered",
				"meeting_id", c.MeetingID,
				"notifier", name,
			)
			return
		}
	}

	err := notifier.Notify(ctx, c)
	if err == nil {
		s.metrics.Counter(observability.MetricNotificationsSent, 1, observability.T("notifier", name))
		return
	}

	if s.deliveries != nil {
		if relErr := s.deliveries.Release(ctx, key); relErr != nil {
			s.logger.WarnContext(ctx, "failed to release delivery claim",
				"notifier", name,
				observability.ErrorKey, relErr,
			)
		}
	}

	if errors.Is(err, domain.ErrNotifierDisabled) {
		s.logger.DebugContext(ctx, "notifier not configured", "notifier", name)
		return
	}

	s.metrics.Counter(observability.MetricNotificationsFailed, 1, observability.T("notifier", name))
	s.logger.ErrorContext(ctx, "failed to send meeting confirmation",
		"meeting_id", c.MeetingID,
		"notifier", name,
		observability.ErrorKey, err,
	)
}
