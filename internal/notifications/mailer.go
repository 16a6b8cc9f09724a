package notifications

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/SAP-F-2025/course-service/internal/config"
)

// Email is a rendered message ready for delivery
type Email struct {
	ToAddress string
	ToName    string
	Subject   string
	PlainText string
	HTML      string
}

// Mailer delivers rendered email
type Mailer interface {
	Send(ctx context.Context, email *Email) error
}

// NewMailer returns SendGrid when an API key is configured and a logging
// mailer otherwise.
func NewMailer(cfg config.MailConfig, logger *slog.Logger) Mailer {
	if cfg.SendGridAPIKey == "" {
		logger.Warn("SENDGRID_API_KEY not set, emails will only be logged")
		return NewLogMailer(logger)
	}
	return NewSendGridMailer(cfg, "")
}

type SendGridMailer struct {
	apiKey    string
	host      string
	fromEmail string
	fromName  string
}

// NewSendGridMailer creates a SendGrid mailer. An empty host targets the public API.
func NewSendGridMailer(cfg config.MailConfig, host string) *SendGridMailer {
	return &SendGridMailer{
		apiKey:    cfg.SendGridAPIKey,
		host:      host,
		fromEmail: cfg.FromEmail,
		fromName:  cfg.FromName,
	}
}

func (m *SendGridMailer) Send(ctx context.Context, email *Email) error {
	from := mail.NewEmail(m.fromName, m.fromEmail)
	to := mail.NewEmail(email.ToName, email.ToAddress)
	message := mail.NewSingleEmail(from, email.Subject, to, email.PlainText, email.HTML)

	// Client mutates its request body, so each send gets its own
	request := sendgrid.GetRequest(m.apiKey, "/v3/mail/send", m.host)
	request.Method = "POST"
	client := &sendgrid.Client{Request: request}

	resp, err := client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("sendgrid request failed: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid error: status=%d body=%s", resp.StatusCode, strings.TrimSpace(resp.Body))
	}
	return nil
}

// LogMailer writes emails to the log instead of sending them
type LogMailer struct {
	logger *slog.Logger
}

func NewLogMailer(logger *slog.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) Send(ctx context.Context, email *Email) error {
	m.logger.InfoContext(ctx, "Email not sent (no mail provider configured)",
		"to", email.ToAddress,
		"subject", email.Subject)
	return nil
}
