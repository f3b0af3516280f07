// Package config provides configuration loading and validation for the
// agentdeck server.
//
// Configuration is resolved in the following order (highest precedence
// first): environment variables (AGENTDECK_* prefix), an optional config
// file, then built-in defaults.
package config

import "time"

// Config is the root configuration for the agentdeck server.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Storage StorageConfig `mapstructure:"storage"`
	Memory  MemoryConfig  `mapstructure:"memory"`
	Scripts ScriptsConfig `mapstructure:"scripts"`
	Trigger TriggerConfig `mapstructure:"trigger"`
	Log     LogConfig     `mapstructure:"log"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	// ListenAddress is the host:port the gateway binds to.
	ListenAddress string `mapstructure:"listen_address"`

	// ShutdownTimeout bounds graceful drain on SIGINT/SIGTERM.
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// StorageConfig controls the JSON snapshot store.
type StorageConfig struct {
	// DataDir holds the per-collection JSON snapshot files.
	DataDir string `mapstructure:"data_dir"`
}

// MemoryConfig points at the external long-term memory database.
type MemoryConfig struct {
	// DatabasePath is the SQLite file owned by the memory process.
	// Empty disables the memory endpoints (they report unavailable).
	DatabasePath string `mapstructure:"database_path"`
}

// ScriptsConfig names the operator probe scripts.
type ScriptsConfig struct {
	HealthPath    string        `mapstructure:"health_path"`
	UsagePath     string        `mapstructure:"usage_path"`
	HealthTimeout time.Duration `mapstructure:"health_timeout"`
	UsageTimeout  time.Duration `mapstructure:"usage_timeout"`
}

// TriggerConfig controls agent wake-up notifications.
type TriggerConfig struct {
	// URL is the agent runner endpoint. Empty disables triggering.
	URL string `mapstructure:"url"`
}

// LogConfig controls log output.
type LogConfig struct {
	// Level is a zerolog level name (trace, debug, info, warn, error).
	Level string `mapstructure:"level"`

	// File, when set, also writes logs to a rotated file.
	File string `mapstructure:"file"`
}
