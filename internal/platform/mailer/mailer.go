// Package mailer delivers outgoing email over SMTP. With no host
// configured it degrades to logging each message, which keeps local
// development and tests working without a mail server.
package mailer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/wneessen/go-mail"

	"github.com/tasknest/tasknest-api/internal/config"
	"github.com/tasknest/tasknest-api/internal/domain"
)

// Mailer sends notification email. It implements the scheduler's Notifier
// interface and carries the password reset flow's mail as well.
type Mailer struct {
	client *mail.Client
	from   string
	logger *slog.Logger
}

// New creates a Mailer from config. An empty Host yields a disabled Mailer
// whose sends are logged and succeed immediately.
func New(cfg config.MailConfig, log *slog.Logger) (*Mailer, error) {
	if log == nil {
		log = slog.Default()
	}
	log = log.With(slog.String("component", "mailer"))

	if cfg.Host == "" {
		log.Warn("mail host not configured, outgoing mail disabled")
		return &Mailer{from: cfg.From, logger: log}, nil
	}

	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTimeout(10 * time.Second),
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create mail client: %w", err)
	}

	return &Mailer{client: client, from: cfg.From, logger: log}, nil
}

// SendReminder emails the owner that a task is coming due.
func (m *Mailer) SendReminder(ctx context.Context, user *domain.User, task *domain.Task) error {
	subject := fmt.Sprintf("Reminder: %q is due soon", task.Title)

	due := ""
	if task.DueTime != nil {
		due = fmt.Sprintf(" at %s", task.DueTime)
	}
	body := fmt.Sprintf(
		"Hi %s,\n\nYour task %q is due%s today.\n\n%s\n",
		user.Username, task.Title, due, task.Description,
	)

	return m.send(ctx, user.Email, subject, body)
}

// Send delivers an arbitrary plain-text message, used by the password
// reset flow.
func (m *Mailer) Send(ctx context.Context, to, subject, body string) error {
	return m.send(ctx, to, subject, body)
}

func (m *Mailer) send(ctx context.Context, to, subject, body string) error {
	if m.client == nil {
		m.logger.Info("mail disabled, dropping message",
			slog.String("to", to),
			slog.String("subject", subject))
		return nil
	}

	msg := mail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return fmt.Errorf("invalid from address: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("invalid recipient address: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)

	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("failed to send mail to %s: %w", to, err)
	}

	m.logger.Debug("mail sent",
		slog.String("to", to),
		slog.String("subject", subject))
	return nil
}
