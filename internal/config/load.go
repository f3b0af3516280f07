package config

import (
	stderrors "errors"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/agentdeck/agentdeck/internal/errors"
)

// newViperInstance creates a Viper instance with the standard agentdeck
// setup: defaults, AGENTDECK_ env prefix, and a dot-to-underscore key
// replacer so server.listen_address binds AGENTDECK_SERVER_LISTEN_ADDRESS.
func newViperInstance() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("AGENTDECK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads configuration from defaults, the optional config file at
// filePath, and AGENTDECK_* environment variables, then validates it.
// An empty filePath skips the file layer entirely.
func Load(filePath string) (*Config, error) {
	v := newViperInstance()

	if filePath != "" {
		v.SetConfigFile(filePath)
		if err := v.ReadInConfig(); err != nil && !isConfigNotFoundError(err) {
			return nil, errors.Wrap(err, "failed to read config file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viperDecoderOption()); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}

	if err := Validate(&cfg); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return &cfg, nil
}

// isConfigNotFoundError reports whether err is viper's missing-file error.
func isConfigNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	var notFound viper.ConfigFileNotFoundError
	return stderrors.As(err, &notFound)
}

// viperDecoderOption returns the decoder options for Viper unmarshal.
// Duration strings like "10s" decode into time.Duration fields.
func viperDecoderOption() viper.DecoderConfigOption {
	return viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
		),
	)
}
