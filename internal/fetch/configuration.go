package fetch

import "time"

const (
	remoteTimeoutKeyConstant   = "remote_timeout"
	fallbackEnabledKeyConstant = "fallback_enabled"
	keySeparatorConstant       = "."
)

// Configuration controls the fetch strategy.
type Configuration struct {
	RemoteTimeout   time.Duration `mapstructure:"remote_timeout"`
	FallbackEnabled bool          `mapstructure:"fallback_enabled"`
}

// DefaultConfiguration returns the fetch defaults: no timeout, fallback enabled.
func DefaultConfiguration() Configuration {
	return Configuration{FallbackEnabled: true}
}

// DefaultConfigurationValues exposes the defaults keyed for viper registration under rootKey.
func DefaultConfigurationValues(rootKey string) map[string]any {
	defaults := DefaultConfiguration()
	return map[string]any{
		rootKey + keySeparatorConstant + remoteTimeoutKeyConstant:   defaults.RemoteTimeout,
		rootKey + keySeparatorConstant + fallbackEnabledKeyConstant: defaults.FallbackEnabled,
	}
}

// Sanitize clamps negative timeouts to zero, which disables the timeout.
func (configuration Configuration) Sanitize() Configuration {
	sanitized := configuration
	if sanitized.RemoteTimeout < 0 {
		sanitized.RemoteTimeout = 0
	}
	return sanitized
}
