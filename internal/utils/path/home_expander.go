package pathutils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const (
	tildeSymbolConstant                  = "~"
	tildeForwardSlashPrefixConstant      = "~/"
	homeDirectoryResolutionErrorTemplate = "unable to resolve home directory for %s: %w"
)

var tildeWithPathSeparatorPrefix = tildeSymbolConstant + string(os.PathSeparator)

// HomeDirectoryProvider resolves the current user's home directory path.
type HomeDirectoryProvider func() (string, error)

// HomeExpander converts user home shortcuts to absolute paths.
type HomeExpander struct {
	homeDirectoryProvider HomeDirectoryProvider
	homeDirectory         string
	homeDirectoryError    error
	initializationGuard   sync.Once
}

// NewHomeExpander constructs a HomeExpander using the operating system lookup.
func NewHomeExpander() *HomeExpander {
	return NewHomeExpanderWithProvider(os.UserHomeDir)
}

// NewHomeExpanderWithProvider constructs a HomeExpander with a custom provider.
func NewHomeExpanderWithProvider(provider HomeDirectoryProvider) *HomeExpander {
	if provider == nil {
		provider = os.UserHomeDir
	}
	return &HomeExpander{homeDirectoryProvider: provider}
}

// Expand resolves leading tilde prefixes, returning the input unchanged when the home directory is unknown.
func (expander *HomeExpander) Expand(candidatePath string) string {
	expandedPath, expansionError := expander.Resolve(candidatePath)
	if expansionError != nil {
		return candidatePath
	}
	return expandedPath
}

// Resolve resolves leading tilde prefixes and reports home directory lookup failures.
func (expander *HomeExpander) Resolve(candidatePath string) (string, error) {
	if expander == nil || len(candidatePath) == 0 || !strings.HasPrefix(candidatePath, tildeSymbolConstant) {
		return candidatePath, nil
	}

	relativePath, hasHomePrefix := trimHomePrefix(candidatePath)
	if !hasHomePrefix {
		return candidatePath, nil
	}

	resolvedHomeDirectory, resolutionError := expander.resolveHomeDirectory()
	if resolutionError != nil {
		return "", fmt.Errorf(homeDirectoryResolutionErrorTemplate, candidatePath, resolutionError)
	}

	if len(relativePath) == 0 {
		return resolvedHomeDirectory, nil
	}
	return filepath.Join(resolvedHomeDirectory, relativePath), nil
}

// trimHomePrefix reports the remainder after "~", "~/" or "~<separator>". "~user" forms are left alone.
func trimHomePrefix(candidatePath string) (string, bool) {
	switch {
	case candidatePath == tildeSymbolConstant:
		return "", true
	case strings.HasPrefix(candidatePath, tildeForwardSlashPrefixConstant):
		return strings.TrimPrefix(candidatePath, tildeForwardSlashPrefixConstant), true
	case strings.HasPrefix(candidatePath, tildeWithPathSeparatorPrefix):
		return strings.TrimPrefix(candidatePath, tildeWithPathSeparatorPrefix), true
	default:
		return "", false
	}
}

func (expander *HomeExpander) resolveHomeDirectory() (string, error) {
	expander.initializationGuard.Do(func() {
		expander.homeDirectory, expander.homeDirectoryError = expander.homeDirectoryProvider()
		if expander.homeDirectoryError == nil && len(strings.TrimSpace(expander.homeDirectory)) == 0 {
			expander.homeDirectoryError = os.ErrNotExist
		}
	})
	return expander.homeDirectory, expander.homeDirectoryError
}
