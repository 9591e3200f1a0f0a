package cli

import (
	"bytes"
	_ "embed"
)

// defaultConfigurationYAML holds the log, registry, discovery and fetch defaults merged beneath every user configuration.
//
//go:embed default_config.yaml
var defaultConfigurationYAML []byte

// EmbeddedDefaultConfiguration returns a copy of the embedded default configuration and its viper type.
func EmbeddedDefaultConfiguration() ([]byte, string) {
	return bytes.Clone(defaultConfigurationYAML), configurationTypeConstant
}
