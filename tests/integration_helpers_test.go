package tests

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const (
	integrationBinaryNameConstant    = "reposcan"
	integrationBuildTimeoutConstant  = 2 * time.Minute
	integrationGoExecutableConstant  = "go"
	integrationBuildSubcommand       = "build"
	integrationOutputFlagConstant    = "-o"
	integrationCurrentPackageLiteral = "."
)

func repositoryRootDirectory(testInstance *testing.T) string {
	testInstance.Helper()
	currentWorkingDirectory, workingDirectoryError := os.Getwd()
	require.NoError(testInstance, workingDirectoryError)
	return filepath.Dir(currentWorkingDirectory)
}

func buildIntegrationBinary(testInstance *testing.T) string {
	testInstance.Helper()

	binaryPath := filepath.Join(testInstance.TempDir(), integrationBinaryNameConstant)
	executionContext, cancel := context.WithTimeout(context.Background(), integrationBuildTimeoutConstant)
	defer cancel()

	command := exec.CommandContext(executionContext, integrationGoExecutableConstant, integrationBuildSubcommand, integrationOutputFlagConstant, binaryPath, integrationCurrentPackageLiteral)
	command.Dir = repositoryRootDirectory(testInstance)
	command.Env = os.Environ()

	outputBytes, buildError := command.CombinedOutput()
	requireNoError(testInstance, buildError, string(outputBytes))
	return binaryPath
}

func runIntegrationCommand(testInstance *testing.T, executable string, workingDirectory string, environment []string, timeout time.Duration, arguments []string) string {
	testInstance.Helper()

	executionContext, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	command := exec.CommandContext(executionContext, executable, arguments...)
	command.Dir = workingDirectory
	command.Env = append(append([]string{}, os.Environ()...), environment...)

	outputBytes, runError := command.CombinedOutput()
	outputText := string(outputBytes)
	requireNoError(testInstance, runError, outputText)
	return outputText
}

func filterStructuredOutput(rawOutput string) string {
	lines := strings.Split(rawOutput, "\n")
	var filtered []string
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "{") {
			continue
		}
		filtered = append(filtered, line)
	}
	return strings.Join(filtered, "\n")
}

func requireNoError(testInstance *testing.T, err error, output string) {
	testInstance.Helper()
	if err != nil {
		testInstance.Fatalf("command failed: %v\n%s", err, output)
	}
}
