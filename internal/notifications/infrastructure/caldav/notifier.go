// Package caldav pushes meeting confirmations into a CalDAV calendar.
package caldav

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/emersion/go-ical"
	"github.com/emersion/go-webdav"
	"github.com/emersion/go-webdav/caldav"

	"github.com/felixgeelhaar/huddle/internal/notifications/domain"
	"github.com/felixgeelhaar/huddle/internal/notifications/infrastructure/invite"
)

var errNoCalendars = errors.New("no calendars found")

// Client is the subset of *caldav.Client the notifier needs.
type Client interface {
	FindCurrentUserPrincipal(ctx context.Context) (string, error)
	FindCalendarHomeSet(ctx context.Context, principal string) (string, error)
	FindCalendars(ctx context.Context, calendarHomeSet string) ([]caldav.Calendar, error)
	PutCalendarObject(ctx context.Context, path string, cal *ical.Calendar) (*caldav.CalendarObject, error)
}

// Notifier writes each confirmed meeting as an event in a shared calendar.
type Notifier struct {
	baseURL      string
	username     string
	password     string
	calendarPath string
	organizer    string
	client       Client
	now          func() time.Time
	logger       *slog.Logger
}

// NewNotifier creates a CalDAV notifier.
func NewNotifier(baseURL, username, password string, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{
		baseURL:  baseURL,
		username: username,
		password: password,
		now:      time.Now,
		logger:   logger,
	}
}

// WithCalendarPath pins the calendar instead of using the first one found.
func (n *Notifier) WithCalendarPath(path string) *Notifier {
	n.calendarPath = path
	return n
}

// WithOrganizer sets the ORGANIZER address on created events.
func (n *Notifier) WithOrganizer(email string) *Notifier {
	n.organizer = email
	return n
}

// WithClient replaces the CalDAV client.
func (n *Notifier) WithClient(client Client) *Notifier {
	n.client = client
	return n
}

// Name implements domain.Notifier.
func (n *Notifier) Name() string { return "caldav" }

// Notify creates or replaces the meeting's event.
func (n *Notifier) Notify(ctx context.Context, c domain.Confirmation) error {
	if n.baseURL == "" && n.client == nil {
		return domain.ErrNotifierDisabled
	}
	if err := c.Validate(); err != nil {
		return err
	}

	client, err := n.getClient()
	if err != nil {
		return err
	}

	calPath, err := n.findCalendarPath(ctx, client)
	if err != nil {
		return fmt.Errorf("find calendar: %w", err)
	}

	eventPath := EventPath(calPath, c)
	if _, err := client.PutCalendarObject(ctx, eventPath, invite.Build(c, n.organizer, n.now())); err != nil {
		return fmt.Errorf("put calendar object: %w", err)
	}

	n.logger.InfoContext(ctx, "meeting written to calendar",
		"meeting_id", c.MeetingID,
		"event_path", eventPath,
	)
	return nil
}

// EventPath is where the meeting's event lives under calPath.
func EventPath(calPath string, c domain.Confirmation) string {
	if !strings.HasSuffix(calPath, "/") {
		calPath += "/"
	}
	return calPath + c.MeetingID.String() + ".ics"
}

func (n *Notifier) getClient() (Client, error) {
	if n.client != nil {
		return n.client, nil
	}

	httpClient := &http.Client{Timeout: 30 * time.Second}
	client, err := caldav.NewClient(webdav.HTTPClientWithBasicAuth(httpClient, n.username, n.password), n.baseURL)
	if err != nil {
		return nil, fmt.Errorf("create caldav client: %w", err)
	}
	return client, nil
}

func (n *Notifier) findCalendarPath(ctx context.Context, client Client) (string, error) {
	if n.calendarPath != "" {
		return n.calendarPath, nil
	}

	principal, err := client.FindCurrentUserPrincipal(ctx)
	if err != nil {
		return "", fmt.Errorf("find principal: %w", err)
	}

	homeSet, err := client.FindCalendarHomeSet(ctx, principal)
	if err != nil {
		return "", fmt.Errorf("find calendar home set: %w", err)
	}

	cals, err := client.FindCalendars(ctx, homeSet)
	if err != nil {
		return "", fmt.Errorf("find calendars: %w", err)
	}
	if len(cals) == 0 {
		return "", errNoCalendars
	}

	return cals[0].Path, nil
}
