package config

import (
	"fmt"
	"strings"
)

type ImagesConfig struct {
	Dir string `koanf:"dir"`
}

// String returns a string representation of the image store configuration.
func (c *ImagesConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- Images ---\n")
	b.WriteString(fmt.Sprintf("  dir: %s\n", c.Dir))
	return b.String()
}

func (c *ImagesConfig) Validate() error {
	if c.Dir == "" {
		return fmt.Errorf("image directory is not configured")
	}
	return nil
}
