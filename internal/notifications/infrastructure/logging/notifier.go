// Package logging provides the default notifier, which writes confirmations
// to the structured log instead of delivering them.
package logging

import (
	"context"
	"log/slog"

	"github.com/felixgeelhaar/huddle/internal/notifications/domain"
)

// Notifier logs each confirmation at info level.
type Notifier struct {
	logger *slog.Logger
}

// NewNotifier creates a log-only notifier.
func NewNotifier(logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{logger: logger}
}

// Name implements domain.Notifier.
func (n *Notifier) Name() string { return "log" }

// Notify implements domain.Notifier.
func (n *Notifier) Notify(ctx context.Context, c domain.Confirmation) error {
	if err := c.Validate(); err != nil {
		return err
	}
	n.logger.InfoContext(ctx, "meeting confirmation",
		"meeting_id", c.MeetingID,
		"to", c.Emails(),
		"subject", c.Subject(),
		"body", c.Body(),
	)
	return nil
}
