package registry

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

const (
	registryPathNotConfiguredMessageConstant = "registry path not configured"
	fileSystemNotConfiguredMessageConstant   = "registry file system not configured"
	registryReadErrorTemplateConstant        = "unable to read registry %s: %w"
	registryDirectoryErrorTemplateConstant   = "unable to create registry directory %s: %w"
	registryWriteErrorTemplateConstant       = "unable to write registry %s: %w"
	registryReplaceErrorTemplateConstant     = "unable to replace registry %s: %w"
	temporaryFileSuffixConstant              = ".tmp"
	registryFilePermissions                  = fs.FileMode(0o644)
	registryDirectoryPermissions             = fs.FileMode(0o755)
	registryLoadedMessageConstant            = "registry loaded"
	registrySavedMessageConstant             = "registry saved"
	registryMissingMessageConstant           = "registry file missing, starting empty"
	registryPathFieldConstant                = "registry_path"
	repositoryCountFieldConstant             = "repository_count"
)

// ErrRegistryPathNotConfigured indicates the store was created without a file path.
var ErrRegistryPathNotConfigured = errors.New(registryPathNotConfiguredMessageConstant)

// ErrFileSystemNotConfigured indicates the store was created without a file system.
var ErrFileSystemNotConfigured = errors.New(fileSystemNotConfiguredMessageConstant)

// FileSystem exposes the file operations used by Store.
type FileSystem interface {
	ReadFile(path string) ([]byte, error)
	WriteFile(path string, data []byte, permissions fs.FileMode) error
	Rename(oldPath string, newPath string) error
	Remove(path string) error
	MkdirAll(path string, permissions fs.FileMode) error
}

// StoreDependencies wires a Store.
type StoreDependencies struct {
	FileSystem   FileSystem
	RegistryPath string
	Logger       *zap.Logger
}

// Store loads and persists the registry file.
type Store struct {
	fileSystem   FileSystem
	registryPath string
	logger       *zap.Logger
}

// NewStore validates dependencies and constructs a Store.
func NewStore(dependencies StoreDependencies) (*Store, error) {
	if dependencies.FileSystem == nil {
		return nil, ErrFileSystemNotConfigured
	}
	trimmedPath := strings.TrimSpace(dependencies.RegistryPath)
	if len(trimmedPath) == 0 {
		return nil, ErrRegistryPathNotConfigured
	}
	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{fileSystem: dependencies.FileSystem, registryPath: trimmedPath, logger: logger}, nil
}

// Path returns the registry file location.
func (store *Store) Path() string {
	return store.registryPath
}

// Load reads the registry. A missing file yields an empty registry.
func (store *Store) Load() (Registry, error) {
	contents, readError := store.fileSystem.ReadFile(store.registryPath)
	if readError != nil {
		if errors.Is(readError, fs.ErrNotExist) {
			store.logger.Debug(registryMissingMessageConstant, zap.String(registryPathFieldConstant, store.registryPath))
			return New(), nil
		}
		return Registry{}, fmt.Errorf(registryReadErrorTemplateConstant, store.registryPath, readError)
	}

	registry := Parse(contents)
	store.logger.Debug(registryLoadedMessageConstant, zap.String(registryPathFieldConstant, store.registryPath), zap.Int(repositoryCountFieldConstant, registry.Len()))
	return registry, nil
}

// Save overwrites the registry file through a temporary sibling and a rename.
func (store *Store) Save(registry Registry) error {
	registryDirectory := filepath.Dir(store.registryPath)
	if mkdirError := store.fileSystem.MkdirAll(registryDirectory, registryDirectoryPermissions); mkdirError != nil {
		return fmt.Errorf(registryDirectoryErrorTemplateConstant, registryDirectory, mkdirError)
	}

	temporaryPath := store.registryPath + temporaryFileSuffixConstant
	if writeError := store.fileSystem.WriteFile(temporaryPath, registry.Encode(), registryFilePermissions); writeError != nil {
		return fmt.Errorf(registryWriteErrorTemplateConstant, temporaryPath, writeError)
	}

	if renameError := store.fileSystem.Rename(temporaryPath, store.registryPath); renameError != nil {
		_ = store.fileSystem.Remove(temporaryPath)
		return fmt.Errorf(registryReplaceErrorTemplateConstant, store.registryPath, renameError)
	}

	store.logger.Debug(registrySavedMessageConstant, zap.String(registryPathFieldConstant, store.registryPath), zap.Int(repositoryCountFieldConstant, registry.Len()))
	return nil
}
