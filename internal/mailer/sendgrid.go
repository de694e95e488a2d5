package mailer

import (
	"context"
	"fmt"
	"log/slog"

	sferrors "github.com/luxecurl/storefront/internal/errors"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// SendGridMailer implements Mailer on the SendGrid API.
type SendGridMailer struct {
	apiKey string
	logger *slog.Logger
}

// NewSendGridMailer creates a SendGrid-backed mailer. An empty API key is
// accepted here; Send reports it as a configuration error so unrelated
// operations keep working.
func NewSendGridMailer(apiKey string, logger *slog.Logger) *SendGridMailer {
	return &SendGridMailer{apiKey: apiKey, logger: logger.With("component", "mailer")}
}

// Send delivers one message through SendGrid.
func (m *SendGridMailer) Send(ctx context.Context, msg Message) error {
	if m.apiKey == "" {
		return sferrors.ErrMailNotConfigured
	}

	from := mail.NewEmail(msg.FromName, msg.From)
	to := mail.NewEmail("", msg.To)
	message := mail.NewSingleEmail(from, msg.Subject, to, msg.Text, msg.HTML)
	if msg.ReplyTo != "" {
		message.SetReplyTo(mail.NewEmail("", msg.ReplyTo))
	}

	client := sendgrid.NewSendClient(m.apiKey)
	resp, err := client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("%w: %w", sferrors.ErrRelayUnavailable, err)
	}
	if resp.StatusCode >= 400 {
		m.logger.ErrorContext(ctx, "Mail relay refused message", "status", resp.StatusCode, "body", resp.Body)
		return fmt.Errorf("relay answered %d: %w", resp.StatusCode, sferrors.ErrRelayUnavailable)
	}

	m.logger.InfoContext(ctx, "Mail sent", "to", msg.To, "subject", msg.Subject, "status", resp.StatusCode)
	return nil
}
