package config

import (
	"time"

	"github.com/spf13/viper"

	"github.com/agentdeck/agentdeck/internal/script"
)

// Built-in defaults. Everything else starts empty and the server degrades
// gracefully (no memory store, no probe scripts, no agent trigger).
const (
	DefaultListenAddress   = ":8765"
	DefaultDataDir         = "data"
	DefaultShutdownTimeout = 10 * time.Second
	DefaultLogLevel        = "info"
)

// setDefaults installs the default value for every known key so viper can
// bind AGENTDECK_* environment variables without explicit BindEnv calls.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.listen_address", DefaultListenAddress)
	v.SetDefault("server.shutdown_timeout", DefaultShutdownTimeout)

	v.SetDefault("storage.data_dir", DefaultDataDir)

	v.SetDefault("memory.database_path", "")

	v.SetDefault("scripts.health_path", "")
	v.SetDefault("scripts.usage_path", "")
	v.SetDefault("scripts.health_timeout", script.HealthTimeout)
	v.SetDefault("scripts.usage_timeout", script.UsageTimeout)

	v.SetDefault("trigger.url", "")

	v.SetDefault("log.level", DefaultLogLevel)
	v.SetDefault("log.file", "")
}
