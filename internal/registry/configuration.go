package registry

import "strings"

const (
	// DefaultRegistryPathConstant is the registry location before home expansion.
	DefaultRegistryPathConstant  = "~/.reposcan"
	pathConfigurationKeyConstant = "path"
	configurationKeySeparator    = "."
)

// Configuration captures the persisted registry settings.
type Configuration struct {
	Path string `mapstructure:"path"`
}

// DefaultConfiguration returns the baseline registry settings.
func DefaultConfiguration() Configuration {
	return Configuration{Path: DefaultRegistryPathConstant}
}

// DefaultConfigurationValues exposes the defaults keyed under rootKey for the configuration loader.
func DefaultConfigurationValues(rootKey string) map[string]any {
	return map[string]any{
		rootKey + configurationKeySeparator + pathConfigurationKeyConstant: DefaultRegistryPathConstant,
	}
}

// Sanitize trims whitespace and restores the default path when unset.
func (configuration Configuration) Sanitize() Configuration {
	sanitized := configuration
	sanitized.Path = strings.TrimSpace(configuration.Path)
	if len(sanitized.Path) == 0 {
		sanitized.Path = DefaultRegistryPathConstant
	}
	return sanitized
}
