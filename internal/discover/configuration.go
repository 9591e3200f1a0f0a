package discover

import (
	"strings"

	"github.com/temirov/reposcan/internal/repos/discovery"
	"github.com/temirov/reposcan/internal/repos/shared"
)

const (
	markerFileKeyConstant = "marker_file"
	maxDepthKeyConstant   = "max_depth"
	keySeparatorConstant  = "."
)

// Configuration tunes the discovery scan.
type Configuration struct {
	MarkerFile string `mapstructure:"marker_file"`
	MaxDepth   int    `mapstructure:"max_depth"`
}

// DefaultConfiguration honors .reposcanignore and descends without limit.
func DefaultConfiguration() Configuration {
	return Configuration{MarkerFile: shared.DefaultExclusionMarkerFileNameConstant}
}

// DefaultConfigurationValues exposes the defaults keyed for viper registration under rootKey.
func DefaultConfigurationValues(rootKey string) map[string]any {
	defaults := DefaultConfiguration()
	return map[string]any{
		rootKey + keySeparatorConstant + markerFileKeyConstant: defaults.MarkerFile,
		rootKey + keySeparatorConstant + maxDepthKeyConstant:   defaults.MaxDepth,
	}
}

// Sanitize restores the default marker name when blank and clamps negative depths.
func (configuration Configuration) Sanitize() Configuration {
	sanitized := configuration
	sanitized.MarkerFile = strings.TrimSpace(sanitized.MarkerFile)
	if len(sanitized.MarkerFile) == 0 {
		sanitized.MarkerFile = shared.DefaultExclusionMarkerFileNameConstant
	}
	if sanitized.MaxDepth < 0 {
		sanitized.MaxDepth = 0
	}
	return sanitized
}

// ScannerOptions converts the configuration into discovery options.
func (configuration Configuration) ScannerOptions() discovery.ScannerOptions {
	sanitized := configuration.Sanitize()
	return discovery.ScannerOptions{MarkerFileName: sanitized.MarkerFile, MaxDepth: sanitized.MaxDepth}
}
