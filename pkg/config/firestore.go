package config

import (
	"fmt"
	"strings"
	"time"
)

type FirestoreConfig struct {
	ProjectID       string        `koanf:"projectId"`
	CredentialsFile string        `koanf:"credentialsFile"`
	CartCollection  string        `koanf:"cartCollection"`
	OrderCollection string        `koanf:"orderCollection"`
	Timeout         time.Duration `koanf:"timeout"`
}

// String returns a string representation of the Firestore configuration.
func (c *FirestoreConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- Firestore ---\n")
	b.WriteString(fmt.Sprintf("  projectId: %s\n", c.ProjectID))
	b.WriteString(fmt.Sprintf("  cartCollection: %s\n", c.CartCollection))
	b.WriteString(fmt.Sprintf("  orderCollection: %s\n", c.OrderCollection))
	b.WriteString(fmt.Sprintf("  timeout: %s\n", c.Timeout))
	return b.String()
}

func (c *FirestoreConfig) Validate() error {
	if c.ProjectID == "" {
		return fmt.Errorf("firestore project ID is not configured")
	}
	if c.CartCollection == "" {
		return fmt.Errorf("firestore cart collection is not configured")
	}
	if c.OrderCollection == "" {
		return fmt.Errorf("firestore order collection is not configured")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("firestore timeout is not configured")
	}
	return nil
}
