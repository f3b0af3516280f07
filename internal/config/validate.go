package config

import (
	"github.com/agentdeck/agentdeck/internal/errors"
)

// Validate checks the configuration for invalid or inconsistent values.
// It returns an error describing the first validation failure found.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.ErrConfigNil
	}

	if cfg.Server.ListenAddress == "" {
		return errors.Wrap(errors.ErrConfigInvalidServer, "server.listen_address must not be empty")
	}
	if cfg.Server.ShutdownTimeout <= 0 {
		return errors.Wrapf(errors.ErrConfigInvalidTimeout,
			"server.shutdown_timeout must be positive, got %s", cfg.Server.ShutdownTimeout)
	}

	if cfg.Storage.DataDir == "" {
		return errors.Wrap(errors.ErrConfigInvalidServer, "storage.data_dir must not be empty")
	}

	if cfg.Scripts.HealthTimeout <= 0 {
		return errors.Wrapf(errors.ErrConfigInvalidTimeout,
			"scripts.health_timeout must be positive, got %s", cfg.Scripts.HealthTimeout)
	}
	if cfg.Scripts.UsageTimeout <= 0 {
		return errors.Wrapf(errors.ErrConfigInvalidTimeout,
			"scripts.usage_timeout must be positive, got %s", cfg.Scripts.UsageTimeout)
	}

	return nil
}
