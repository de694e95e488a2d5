// Package notifier consumes order placement events from JetStream and sends
// the customer-facing order confirmation email.
package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/luxecurl/storefront/internal/mailer"
	"github.com/luxecurl/storefront/pkg/config"
	"github.com/luxecurl/storefront/pkg/messaging/events"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"golang.org/x/sync/errgroup"
)

// ackableMsg is the slice of jetstream.Msg the handler actually needs.
type ackableMsg interface {
	Data() []byte
	Ack() error
	Nak() error
}

// Notifier turns order created events into confirmation mail.
type Notifier struct {
	mailer  mailer.Mailer
	mailCfg config.MailConfig
	logger  *slog.Logger
}

// New creates a notifier.
func New(m mailer.Mailer, mailCfg config.MailConfig, logger *slog.Logger) *Notifier {
	return &Notifier{mailer: m, mailCfg: mailCfg, logger: logger.With("component", "notifier")}
}

// Start initializes the JetStream consumer and runs worker goroutines until
// the context is cancelled.
func (n *Notifier) Start(ctx context.Context, js jetstream.JetStream, subscriberCfg config.SubscriberConfig) error {
	cfg := jetstream.ConsumerConfig{
		FilterSubject: subscriberCfg.Subject,
		Durable:       subscriberCfg.Consumer,
		AckPolicy:     jetstream.AckExplicitPolicy,
	}
	consumer, err := js.CreateOrUpdateConsumer(ctx, subscriberCfg.Stream, cfg)
	if err != nil {
		return err
	}
	g, gCtx := errgroup.WithContext(ctx)
	for i := 0; i < subscriberCfg.Workers; i++ {
		g.Go(func() error {
			return n.runWorker(gCtx, consumer, subscriberCfg.Timeout, subscriberCfg.Interval)
		})
	}
	return g.Wait()
}

// runWorker fetches messages from the consumer and processes them one at a time.
func (n *Notifier) runWorker(ctx context.Context, consumer jetstream.Consumer, timeout, interval time.Duration) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			batch, err := consumer.Fetch(1, jetstream.FetchMaxWait(timeout))
			if err != nil {
				if errors.Is(err, nats.ErrTimeout) {
					continue
				}
				n.logger.ErrorContext(ctx, "failed to fetch messages", "error", err)
				time.Sleep(interval)
				continue
			}
			for msg := range batch.Messages() {
				n.handleMessage(ctx, msg)
			}
		}
	}
}

// handleMessage processes a single order created event. Malformed payloads
// are acked and dropped: redelivery cannot fix them. Mail failures are nak'd
// so the event is redelivered once the relay recovers.
func (n *Notifier) handleMessage(ctx context.Context, msg ackableMsg) {
	if msg == nil {
		n.logger.ErrorContext(ctx, "received nil message")
		return
	}
	var event events.OrderCreatedEvent
	if err := json.Unmarshal(msg.Data(), &event); err != nil {
		n.logger.ErrorContext(ctx, "failed to unmarshal message, dropping", "error", err)
		if err := msg.Ack(); err != nil {
			n.logger.ErrorContext(ctx, "failed to ack message", "error", err)
		}
		return
	}

	n.logger.InfoContext(ctx, "received order created event",
		slog.String("order_id", event.OrderID),
		slog.String("reference", event.Reference),
		slog.String("created_at", event.CreatedAt.Format(time.RFC3339)))

	if err := n.mailer.Send(ctx, confirmationMessage(n.mailCfg, event)); err != nil {
		n.logger.ErrorContext(ctx, "failed to send order confirmation", "order_id", event.OrderID, "error", err)
		if err := msg.Nak(); err != nil {
			n.logger.ErrorContext(ctx, "failed to nack message", "error", err)
		}
		return
	}

	if err := msg.Ack(); err != nil {
		n.logger.ErrorContext(ctx, "failed to ack message", "error", err)
	}
}

// confirmationMessage renders the order confirmation email.
func confirmationMessage(cfg config.MailConfig, event events.OrderCreatedEvent) mailer.Message {
	total := fmt.Sprintf("%s %.2f", event.Currency, float64(event.GrandTotal)/100)
	return mailer.Message{
		FromName: cfg.FromName,
		From:     cfg.From,
		To:       event.CustomerEmail,
		Subject:  fmt.Sprintf("Order confirmation %s", event.Reference),
		Text: fmt.Sprintf("Hi %s,\n\nThanks for your order %s. We've received it and will email you again once it ships.\n\nOrder total: %s\n\n%s",
			event.CustomerName, event.Reference, total, cfg.FromName),
		HTML: fmt.Sprintf("<p>Hi %s,</p><p>Thanks for your order <strong>%s</strong>. We've received it and will email you again once it ships.</p><p>Order total: %s</p><p>%s</p>",
			event.CustomerName, event.Reference, total, cfg.FromName),
	}
}
