package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate checks the config and reports the first offending field.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.RateLimit.Capacity < 0 || c.RateLimit.RefillPerSecond < 0 {
		return errors.New("rateLimit.capacity and rateLimit.refillPerSecond must not be negative")
	}

	switch c.Transport.Mode {
	case "http":
		u, err := url.Parse(c.Transport.Endpoint)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("transport.endpoint must be an http(s) URL, got %q", c.Transport.Endpoint)
		}
	case "openai":
		if c.Transport.OpenAIKey() == "" {
			return fmt.Errorf("transport.openai.apiKey or $%s is required for openai mode", c.Transport.OpenAI.APIKeyEnv)
		}
	case "static":
	default:
		return fmt.Errorf("transport.mode must be one of http, openai, static, got %q", c.Transport.Mode)
	}
	if c.Transport.TimeoutSeconds < 0 {
		return errors.New("transport.timeoutSeconds must not be negative")
	}

	switch c.Storage.Driver {
	case "memory":
	case "file", "sqlite":
		if strings.TrimSpace(c.Storage.Path) == "" {
			return fmt.Errorf("storage.path is required for driver %s", c.Storage.Driver)
		}
	case "mysql", "postgres":
		if c.Storage.Database.Host == "" || c.Storage.Database.Name == "" {
			return fmt.Errorf("storage.database.host and storage.database.name are required for driver %s", c.Storage.Driver)
		}
	case "minio":
		if c.Storage.Minio.Endpoint == "" {
			return errors.New("storage.minio.endpoint is required for driver minio")
		}
	default:
		return fmt.Errorf("storage.driver must be one of memory, file, sqlite, mysql, postgres, minio, got %q", c.Storage.Driver)
	}
	return nil
}
