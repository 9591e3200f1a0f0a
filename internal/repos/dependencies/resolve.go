package dependencies

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/reposcan/internal/execshell"
	"github.com/temirov/reposcan/internal/gitrepo"
	"github.com/temirov/reposcan/internal/registry"
	"github.com/temirov/reposcan/internal/repos/discovery"
	"github.com/temirov/reposcan/internal/repos/filesystem"
	"github.com/temirov/reposcan/internal/repos/shared"
	"github.com/temirov/reposcan/internal/ui"
	pathutils "github.com/temirov/reposcan/internal/utils/path"
)

const (
	workingDirectoryErrorTemplateConstant = "unable to resolve working directory: %w"
	registryPathErrorTemplateConstant     = "unable to resolve registry path: %w"
)

// ResolveRepositoryDiscoverer returns the provided discoverer or a filesystem-backed default.
func ResolveRepositoryDiscoverer(existing shared.RepositoryDiscoverer, fileSystem shared.FileSystem, options discovery.ScannerOptions, observers ...discovery.TraversalObserver) shared.RepositoryDiscoverer {
	if existing != nil {
		return existing
	}
	return discovery.NewFilesystemRepositoryDiscoverer(ResolveFileSystem(fileSystem), options, observers...)
}

// ResolveFileSystem returns the provided filesystem or an OS-backed default.
func ResolveFileSystem(existing shared.FileSystem) shared.FileSystem {
	if existing != nil {
		return existing
	}
	return filesystem.OSFileSystem{}
}

// ResolveGitExecutor returns the provided executor or constructs a shell-backed default.
// Human-readable logging attaches a console observer that narrates each command.
func ResolveGitExecutor(existing shared.GitExecutor, logger *zap.Logger, humanReadableLogging bool) (shared.GitExecutor, error) {
	if existing != nil {
		return existing, nil
	}

	var observers []execshell.CommandEventObserver
	if humanReadableLogging {
		observers = append(observers, ui.NewConsoleCommandEventLogger(logger))
	}

	shellExecutor, creationError := execshell.NewShellExecutor(logger, execshell.NewOSCommandRunner(), observers...)
	if creationError != nil {
		return nil, creationError
	}
	return shellExecutor, nil
}

// ResolveRepositoryOpener returns the provided opener or the go-git backed default.
func ResolveRepositoryOpener(existing gitrepo.Opener) gitrepo.Opener {
	if existing != nil {
		return existing
	}
	return gitrepo.NewGoGitOpener()
}

// ResolveRegistryStore returns the provided store or one backed by the configured registry file.
func ResolveRegistryStore(existing shared.RegistryStore, fileSystem shared.FileSystem, configuration registry.Configuration, homeExpander *pathutils.HomeExpander, logger *zap.Logger) (shared.RegistryStore, error) {
	if existing != nil {
		return existing, nil
	}
	if homeExpander == nil {
		homeExpander = pathutils.NewHomeExpander()
	}

	registryPath, resolutionError := homeExpander.Resolve(configuration.Sanitize().Path)
	if resolutionError != nil {
		return nil, fmt.Errorf(registryPathErrorTemplateConstant, resolutionError)
	}

	return registry.NewStore(registry.StoreDependencies{
		FileSystem:   ResolveFileSystem(fileSystem),
		RegistryPath: registryPath,
		Logger:       logger,
	})
}

// ResolveWorkingDirectory returns the provided directory or the process working directory.
func ResolveWorkingDirectory(existing string, fileSystem shared.FileSystem) (string, error) {
	if trimmed := strings.TrimSpace(existing); len(trimmed) > 0 {
		return trimmed, nil
	}
	workingDirectory, workingDirectoryError := ResolveFileSystem(fileSystem).Getwd()
	if workingDirectoryError != nil {
		return "", fmt.Errorf(workingDirectoryErrorTemplateConstant, workingDirectoryError)
	}
	return workingDirectory, nil
}
