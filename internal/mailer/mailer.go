// Package mailer delivers storefront email through the mail relay.
package mailer

import "context"

// Message is a single outbound email.
type Message struct {
	FromName string
	From     string
	To       string
	Subject  string
	Text     string
	HTML     string
	ReplyTo  string
}

// Mailer sends a message through the relay.
// Implementations report ErrMailNotConfigured when credentials are missing
// and ErrRelayUnavailable when the relay cannot be reached or refuses.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}
