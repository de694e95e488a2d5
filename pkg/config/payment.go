package config

import (
	"fmt"
	"strings"
	"time"
)

type PaymentConfig struct {
	BaseURL     string        `koanf:"baseUrl"`
	SecretKey   string        `koanf:"secretKey"`
	CallbackURL string        `koanf:"callbackUrl"`
	Timeout     time.Duration `koanf:"timeout"`
}

// String returns a string representation of the payment gateway configuration.
func (c *PaymentConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- Payment ---\n")
	b.WriteString(fmt.Sprintf("  baseUrl: %s\n", c.BaseURL))
	b.WriteString(fmt.Sprintf("  secretKey: %s\n", maskSecret(c.SecretKey)))
	b.WriteString(fmt.Sprintf("  callbackUrl: %s\n", c.CallbackURL))
	b.WriteString(fmt.Sprintf("  timeout: %s\n", c.Timeout))
	return b.String()
}

func (c *PaymentConfig) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("payment gateway base URL is not configured")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("payment gateway timeout is not configured")
	}
	return nil
}
