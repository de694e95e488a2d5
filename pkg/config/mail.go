package config

import (
	"fmt"
	"strings"
)

type MailConfig struct {
	APIKey   string `koanf:"apiKey"`
	FromName string `koanf:"fromName"`
	From     string `koanf:"from"`
	Inbox    string `koanf:"inbox"`
}

// String returns a string representation of the mail relay configuration.
func (c *MailConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- Mail ---\n")
	b.WriteString(fmt.Sprintf("  apiKey: %s\n", maskSecret(c.APIKey)))
	b.WriteString(fmt.Sprintf("  fromName: %s\n", c.FromName))
	b.WriteString(fmt.Sprintf("  from: %s\n", c.From))
	b.WriteString(fmt.Sprintf("  inbox: %s\n", c.Inbox))
	return b.String()
}

// Validate intentionally does not require the API key: a missing key is a
// configuration error at the affected operation, not a startup failure.
func (c *MailConfig) Validate() error {
	if c.From == "" {
		return fmt.Errorf("mail sender address is not configured")
	}
	if c.Inbox == "" {
		return fmt.Errorf("mail inbox address is not configured")
	}
	return nil
}

// maskSecret hides all but a short prefix of a credential.
func maskSecret(s string) string {
	if s == "" {
		return "<not configured>"
	}
	if len(s) <= 6 {
		return "****"
	}
	return s[:4] + "****"
}
