package docs_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/temirov/reposcan/cmd/cli"
	"github.com/temirov/reposcan/internal/utils"
)

const (
	readmeFileNameConstant           = "README.md"
	yamlFenceStartConstant           = "```yaml"
	yamlFenceEndConstant             = "```"
	configHeaderMarkerConstant       = "# config.yaml"
	readmeSnippetFileNameConstant    = "config.yaml"
	parentDirectoryReferenceConstant = ".."
	missingHeaderMessageConstant     = "README example missing config header marker"
	missingStartFenceMessageConstant = "README example missing yaml fence start"
	missingEndFenceMessageConstant   = "README example missing yaml fence end"
	testEnvironmentPrefixConstant    = "READMETESTREPOSCAN"
)

func extractReadmeConfiguration(testInstance *testing.T) string {
	testInstance.Helper()

	workingDirectory, workingDirectoryError := os.Getwd()
	require.NoError(testInstance, workingDirectoryError)

	readmePath := filepath.Join(workingDirectory, parentDirectoryReferenceConstant, readmeFileNameConstant)
	contentBytes, readError := os.ReadFile(readmePath)
	require.NoError(testInstance, readError)

	contentText := string(contentBytes)
	headerIndex := strings.Index(contentText, configHeaderMarkerConstant)
	require.NotEqual(testInstance, -1, headerIndex, missingHeaderMessageConstant)

	fenceStartIndex := strings.LastIndex(contentText[:headerIndex], yamlFenceStartConstant)
	require.NotEqual(testInstance, -1, fenceStartIndex, missingStartFenceMessageConstant)

	remainingText := contentText[headerIndex:]
	fenceEndRelativeIndex := strings.Index(remainingText, yamlFenceEndConstant)
	require.NotEqual(testInstance, -1, fenceEndRelativeIndex, missingEndFenceMessageConstant)
	fenceEndIndex := headerIndex + fenceEndRelativeIndex

	return strings.TrimSpace(contentText[fenceStartIndex+len(yamlFenceStartConstant) : fenceEndIndex])
}

func TestReadmeConfigurationMatchesEmbeddedDefaults(testInstance *testing.T) {
	snippetContent := extractReadmeConfiguration(testInstance)

	var readmeDocument map[string]any
	require.NoError(testInstance, yaml.Unmarshal([]byte(snippetContent), &readmeDocument))

	embeddedContent, _ := cli.EmbeddedDefaultConfiguration()
	var embeddedDocument map[string]any
	require.NoError(testInstance, yaml.Unmarshal(embeddedContent, &embeddedDocument))

	require.Equal(testInstance, embeddedDocument, readmeDocument)
}

func TestReadmeConfigurationLoads(testInstance *testing.T) {
	snippetContent := extractReadmeConfiguration(testInstance)
	configurationPath := filepath.Join(testInstance.TempDir(), readmeSnippetFileNameConstant)
	require.NoError(testInstance, os.WriteFile(configurationPath, []byte(snippetContent), 0o600))

	loader := utils.NewConfigurationLoader("config", "yaml", testEnvironmentPrefixConstant, nil)
	var configuration cli.ApplicationConfiguration
	loadedConfiguration, loadError := loader.LoadConfiguration(configurationPath, nil, &configuration)
	require.NoError(testInstance, loadError)

	require.Equal(testInstance, configurationPath, loadedConfiguration.ConfigFileUsed)
	require.Equal(testInstance, "warn", configuration.Common.LogLevel)
	require.Equal(testInstance, "~/.reposcan", configuration.Registry.Path)
	require.Equal(testInstance, ".reposcanignore", configuration.Discovery.MarkerFile)
	require.True(testInstance, configuration.Fetch.FallbackEnabled)
	require.Zero(testInstance, configuration.Fetch.RemoteTimeout)
}
