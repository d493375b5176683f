package subscribers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	availability "github.com/felixgeelhaar/huddle/internal/availability/domain"
	meetingsDomain "github.com/felixgeelhaar/huddle/internal/meetings/domain"
	"github.com/felixgeelhaar/huddle/internal/notifications/domain"
	"github.com/felixgeelhaar/huddle/internal/notifications/domain/mocks"
	"github.com/felixgeelhaar/huddle/internal/notifications/infrastructure/dedupe"
	"github.com/felixgeelhaar/huddle/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/huddle/pkg/observability"
)

func scheduledEvent(t *testing.T) (*meetingsDomain.Meeting, *eventbus.ConsumedEvent) {
	t.Helper()
	meeting, err := meetingsDomain.NewMeeting(
		"Team Meeting",
		meetingsDomain.Schedule{
			Slot:     availability.Slot{Day: availability.Tuesday, Period: availability.Afternoon},
			Date:     "2026-10-20",
			Time:     "14:00",
			StartsAt: time.Date(2026, time.October, 20, 14, 0, 0, 0, time.UTC),
		},
		time.Hour,
		[]meetingsDomain.Attendee{
			{Name: "Alice Johnson", Email: "alice@email.com"},
			{Name: "Bob Smith", Email: "bob@email.com"},
		},
		2,
	)
	require.NoError(t, err)

	events := meeting.DomainEvents()
	require.Len(t, events, 1)
	consumed, err := eventbus.NewConsumedEvent(events[0])
	require.NoError(t, err)
	return meeting, consumed
}

func TestMeetingConfirmationSubscriber_EventTypes(t *testing.T) {
	s := NewMeetingConfirmationSubscriber(nil, nil, nil)
	assert.Equal(t, []string{meetingsDomain.RoutingKeyMeetingScheduled}, s.EventTypes())
}

func TestMeetingConfirmationSubscriber_Handle(t *testing.T) {
	t.Run("notifies every channel once", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		meeting, event := scheduledEvent(t)

		var got domain.Confirmation
		email := mocks.NewMockNotifier(ctrl)
		email.EXPECT().Name().Return("smtp").AnyTimes()
		email.EXPECT().Notify(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, c domain.Confirmation) error {
				got = c
				return nil
			}).Times(1)

		calendar := mocks.NewMockNotifier(ctrl)
		calendar.EXPECT().Name().Return("caldav").AnyTimes()
		calendar.EXPECT().Notify(gomock.Any(), gomock.Any()).Return(nil).Times(1)

		metrics := observability.NewInMemoryMetrics()
		s := NewMeetingConfirmationSubscriber([]domain.Notifier{email, calendar}, dedupe.NewMemoryLog(0), nil).
			WithMetrics(metrics)

		require.NoError(t, s.Handle(context.Background(), event))
		require.NoError(t, s.Handle(context.Background(), event), "redelivery is a no-op")

		assert.Equal(t, meeting.ID(), got.MeetingID)
		assert.Equal(t, "Meeting Confirmation: Team Meeting", got.Subject())
		assert.Equal(t, []string{"alice@email.com", "bob@email.com"}, got.Emails())
		assert.Equal(t, time.Hour, got.Duration)
		assert.Equal(t, int64(1), metrics.GetCounter(observability.MetricNotificationsSent, observability.T("notifier", "smtp")))
		assert.Equal(t, int64(1), metrics.GetCounter(observability.MetricNotificationsSent, observability.T("notifier", "caldav")))
	})

	t.Run("failed channel is retried on redelivery", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		_, event := scheduledEvent(t)

		email := mocks.NewMockNotifier(ctrl)
		email.EXPECT().Name().Return("smtp").AnyTimes()
		gomock.InOrder(
			email.EXPECT().Notify(gomock.Any(), gomock.Any()).Return(errors.New("connection refused")),
			email.EXPECT().Notify(gomock.Any(), gomock.Any()).Return(nil),
		)

		metrics := observability.NewInMemoryMetrics()
		s := NewMeetingConfirmationSubscriber([]domain.Notifier{email}, dedupe.NewMemoryLog(0), nil).
			WithMetrics(metrics)

		require.NoError(t, s.Handle(context.Background(), event))
		require.NoError(t, s.Handle(context.Background(), event))

		assert.Equal(t, int64(1), metrics.GetCounter(observability.MetricNotificationsFailed, observability.T("notifier", "smtp")))
		assert.Equal(t, int64(1), metrics.GetCounter(observability.MetricNotificationsSent, observability.T("notifier", "smtp")))
	})

	t.Run("disabled channel is not counted as failure", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		_, event := scheduledEvent(t)

		calendar := mocks.NewMockNotifier(ctrl)
		calendar.EXPECT().Name().Return("caldav").AnyTimes()
		calendar.EXPECT().Notify(gomock.Any(), gomock.Any()).Return(domain.ErrNotifierDisabled)

		metrics := observability.NewInMemoryMetrics()
		s := NewMeetingConfirmationSubscriber([]domain.Notifier{calendar}, nil, nil).WithMetrics(metrics)

		require.NoError(t, s.Handle(context.Background(), event))
		assert.Zero(t, metrics.GetCounter(observability.MetricNotificationsFailed, observability.T("notifier", "caldav")))
	})

	t.Run("bad payload is dropped", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		notifier := mocks.NewMockNotifier(ctrl)

		s := NewMeetingConfirmationSubscriber([]domain.Notifier{notifier}, nil, nil)
		err := s.Handle(context.Background(), &eventbus.ConsumedEvent{
			RoutingKey: meetingsDomain.RoutingKeyMeetingScheduled,
			Payload:    []byte(`{"attendees": 7}`),
		})
		assert.NoError(t, err)
	})

	t.Run("disabled subscriber skips", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		_, event := scheduledEvent(t)
		notifier := mocks.NewMockNotifier(ctrl)

		s := NewMeetingConfirmationSubscriber([]domain.Notifier{notifier}, nil, nil)
		s.SetEnabled(false)
		assert.NoError(t, s.Handle(context.Background(), event))
	})
}
