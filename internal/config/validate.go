package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}

	c.Run.IDField = strings.TrimSpace(c.Run.IDField)
	c.Run.LockFile = strings.TrimSpace(c.Run.LockFile)
	if c.Run.LockFile != "" {
		expanded, err := expandPath(c.Run.LockFile)
		if err != nil {
			return fmt.Errorf("run.lock_file: %w", err)
		}
		c.Run.LockFile = expanded
	}

	if c.Fields == nil {
		c.Fields = map[string]string{}
	}
	return nil
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}

	if c.Run.IDField == "message" {
		return fmt.Errorf("run.id_field can not use the reserved field %q", "message")
	}

	for key := range c.Fields {
		if strings.TrimSpace(key) == "" {
			return fmt.Errorf("fields contains an empty key")
		}
	}
	return nil
}
