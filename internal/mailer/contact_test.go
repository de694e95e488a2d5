package mailer

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	sferrors "github.com/luxecurl/storefront/internal/errors"
	"github.com/luxecurl/storefront/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockMailer records sent messages and fails on demand.
type mockMailer struct {
	sent    []Message
	failOn  map[string]error // keyed by recipient
	failAll error
}

func (m *mockMailer) Send(_ context.Context, msg Message) error {
	if m.failAll != nil {
		return m.failAll
	}
	if err, ok := m.failOn[msg.To]; ok {
		return err
	}
	m.sent = append(m.sent, msg)
	return nil
}

var testMailCfg = config.MailConfig{
	FromName: "LuxeCurl",
	From:     "hello@luxecurl.example",
	Inbox:    "care@luxecurl.example",
}

func newContactService(m Mailer) *ContactService {
	return NewContactService(m, testMailCfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func validRequest() ContactRequest {
	return ContactRequest{
		Name:    "Ada Obi",
		Email:   "ada@example.com",
		Subject: "Order question",
		Message: "Where is my order?",
	}
}

func Test_Submit_SendsNotificationAndAutoReply(t *testing.T) {
	m := &mockMailer{}
	svc := newContactService(m)

	err := svc.Submit(context.Background(), validRequest())

	require.NoError(t, err)
	require.Len(t, m.sent, 2)

	notification := m.sent[0]
	assert.Equal(t, testMailCfg.Inbox, notification.To)
	assert.Equal(t, "ada@example.com", notification.ReplyTo)
	assert.Contains(t, notification.Subject, "Order question")
	assert.Contains(t, notification.Text, "Ada Obi")

	autoReply := m.sent[1]
	assert.Equal(t, "ada@example.com", autoReply.To)
	assert.Empty(t, autoReply.ReplyTo)
}

func Test_Submit_HoneypotDropsSilently(t *testing.T) {
	m := &mockMailer{}
	svc := newContactService(m)

	req := validRequest()
	req.Website = "https://spam.example"

	err := svc.Submit(context.Background(), req)

	assert.NoError(t, err, "honeypot submissions must look like success")
	assert.Empty(t, m.sent, "no mail may be sent for honeypot submissions")
}

func Test_Submit_NotificationFailureSurfaces(t *testing.T) {
	m := &mockMailer{failAll: sferrors.ErrRelayUnavailable}
	svc := newContactService(m)

	err := svc.Submit(context.Background(), validRequest())

	assert.True(t, errors.Is(err, sferrors.ErrRelayUnavailable))
}

func Test_Submit_AutoReplyFailureSwallowed(t *testing.T) {
	m := &mockMailer{failOn: map[string]error{"ada@example.com": sferrors.ErrRelayUnavailable}}
	svc := newContactService(m)

	err := svc.Submit(context.Background(), validRequest())

	assert.NoError(t, err, "a failed auto-reply must not fail the submission")
	require.Len(t, m.sent, 1)
	assert.Equal(t, testMailCfg.Inbox, m.sent[0].To)
}
