// Package email delivers meeting confirmations over SMTP.
package email

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"mime"
	"mime/multipart"
	"net"
	"net/smtp"
	"net/textproto"
	"strconv"
	"strings"
	"time"

	"github.com/felixgeelhaar/huddle/internal/notifications/domain"
	"github.com/felixgeelhaar/huddle/internal/notifications/infrastructure/invite"
)

// Config holds SMTP connection settings.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Addr is host:port.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// SendFunc matches smtp.SendMail.
type SendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// Notifier sends a confirmation e-mail with an .ics invitation attached.
type Notifier struct {
	cfg    Config
	send   SendFunc
	now    func() time.Time
	logger *slog.Logger
}

// NewNotifier creates a new SMTP notifier.
func NewNotifier(cfg Config, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{
		cfg:    cfg,
		send:   smtp.SendMail,
		now:    time.Now,
		logger: logger,
	}
}

// WithSender replaces the transport.
func (n *Notifier) WithSender(send SendFunc) *Notifier {
	n.send = send
	return n
}

// Name implements domain.Notifier.
func (n *Notifier) Name() string { return "smtp" }

// Notify sends one message addressed to every recipient.
func (n *Notifier) Notify(ctx context.Context, c domain.Confirmation) error {
	if n.cfg.Host == "" {
		return domain.ErrNotifierDisabled
	}
	if err := c.Validate(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	msg, err := n.compose(c)
	if err != nil {
		return err
	}

	var auth smtp.Auth
	if n.cfg.Username != "" {
		auth = smtp.PlainAuth("", n.cfg.Username, n.cfg.Password, n.cfg.Host)
	}
	if err := n.send(n.cfg.Addr(), auth, n.cfg.From, c.Emails(), msg); err != nil {
		return fmt.Errorf("send confirmation: %w", err)
	}

	n.logger.InfoContext(ctx, "confirmation e-mail sent",
		"meeting_id", c.MeetingID,
		"recipients", len(c.Recipients),
	)
	return nil
}

func (n *Notifier) compose(c domain.Confirmation) ([]byte, error) {
	ics, err := invite.Render(c, n.cfg.From, n.now())
	if err != nil {
		return nil, err
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	text, err := mw.CreatePart(textproto.MIMEHeader{
		"Content-Type": {"text/plain; charset=utf-8"},
	})
	if err != nil {
		return nil, err
	}
	if _, err := text.Write([]byte(c.Body())); err != nil {
		return nil, err
	}

	attachment, err := mw.CreatePart(textproto.MIMEHeader{
		"Content-Type":        {invite.ContentType},
		"Content-Disposition": {`attachment; filename="invite.ics"`},
	})
	if err != nil {
		return nil, err
	}
	if _, err := attachment.Write(ics); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	var msg bytes.Buffer
	header := textproto.MIMEHeader{}
	header.Set("From", n.cfg.From)
	header.Set("To", strings.Join(c.Emails(), ", "))
	header.Set("Subject", mime.QEncoding.Encode("utf-8", c.Subject()))
	header.Set("Date", n.now().Format(time.RFC1123Z))
	header.Set("MIME-Version", "1.0")
	header.Set("Content-Type", "multipart/mixed; boundary="+mw.Boundary())
	for _, key := range []string{"From", "To", "Subject", "Date", "MIME-Version", "Content-Type"} {
		fmt.Fprintf(&msg, "%s: %s\r\n", key, header.Get(key))
	}
	msg.WriteString("\r\n")
	msg.Write(body.Bytes())
	return msg.Bytes(), nil
}
