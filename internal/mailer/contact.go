package mailer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/luxecurl/storefront/pkg/config"
)

// ContactRequest is the submitted contact form. Website is a hidden honeypot
// field: humans leave it empty, bots fill it in.
type ContactRequest struct {
	Name    string `json:"name" validate:"required,max=120"`
	Email   string `json:"email" validate:"required,email"`
	Subject string `json:"subject" validate:"required,max=200"`
	Message string `json:"message" validate:"required,max=5000"`
	Website string `json:"website"`
}

// ContactService turns a contact form submission into a notification to the
// brand inbox plus an auto-reply to the sender.
type ContactService struct {
	mailer Mailer
	cfg    config.MailConfig
	logger *slog.Logger
}

// NewContactService creates a contact service.
func NewContactService(mailer Mailer, cfg config.MailConfig, logger *slog.Logger) *ContactService {
	return &ContactService{mailer: mailer, cfg: cfg, logger: logger.With("component", "contact")}
}

// Submit handles a validated contact form. A populated honeypot is rejected
// silently: no mail is sent and the caller still sees success, so bots learn
// nothing. A failed auto-reply is logged but never surfaced; the inbox
// notification is the delivery that matters.
func (s *ContactService) Submit(ctx context.Context, req ContactRequest) error {
	if req.Website != "" {
		s.logger.InfoContext(ctx, "Honeypot tripped, dropping contact submission", "name", req.Name)
		return nil
	}

	notification := Message{
		FromName: s.cfg.FromName,
		From:     s.cfg.From,
		To:       s.cfg.Inbox,
		Subject:  fmt.Sprintf("Contact form: %s", req.Subject),
		Text:     fmt.Sprintf("From: %s <%s>\n\n%s", req.Name, req.Email, req.Message),
		HTML: fmt.Sprintf("<p><strong>From:</strong> %s &lt;%s&gt;</p><p>%s</p>",
			req.Name, req.Email, req.Message),
		ReplyTo: req.Email,
	}
	if err := s.mailer.Send(ctx, notification); err != nil {
		return fmt.Errorf("failed to deliver contact notification: %w", err)
	}

	autoReply := Message{
		FromName: s.cfg.FromName,
		From:     s.cfg.From,
		To:       req.Email,
		Subject:  "We received your message",
		Text: fmt.Sprintf("Hi %s,\n\nThanks for reaching out. We'll get back to you within two business days.\n\n%s",
			req.Name, s.cfg.FromName),
		HTML: fmt.Sprintf("<p>Hi %s,</p><p>Thanks for reaching out. We'll get back to you within two business days.</p><p>%s</p>",
			req.Name, s.cfg.FromName),
	}
	if err := s.mailer.Send(ctx, autoReply); err != nil {
		s.logger.WarnContext(ctx, "Failed to send contact auto-reply", "to", req.Email, "error", err)
	}
	return nil
}
