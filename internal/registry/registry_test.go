package registry_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/reposcan/internal/registry"
)

const (
	testFirstRepositoryPath   = "/home/operator/src/alpha"
	testSecondRepositoryPath  = "/home/operator/src/beta"
	testOutsideRepositoryPath = "/opt/projects/gamma"
	testWorkingDirectory      = "/home/operator/src"
)

func TestRegistryCollapsesDuplicates(testInstance *testing.T) {
	knownRegistry := registry.New(testSecondRepositoryPath, testFirstRepositoryPath, testSecondRepositoryPath, "", "  ")

	require.Equal(testInstance, 2, knownRegistry.Len())
	require.Equal(testInstance, []string{testFirstRepositoryPath, testSecondRepositoryPath}, knownRegistry.Paths())
}

func TestRegistryAddRemove(testInstance *testing.T) {
	var knownRegistry registry.Registry

	require.True(testInstance, knownRegistry.Add(testFirstRepositoryPath))
	require.False(testInstance, knownRegistry.Add(testFirstRepositoryPath))
	require.True(testInstance, knownRegistry.Contains(testFirstRepositoryPath))
	require.True(testInstance, knownRegistry.Remove(testFirstRepositoryPath))
	require.False(testInstance, knownRegistry.Remove(testFirstRepositoryPath))
	require.Zero(testInstance, knownRegistry.Len())
}

func TestRegistryParseAndEncode(testInstance *testing.T) {
	testCases := []struct {
		name            string
		contents        string
		expectedPaths   []string
		expectedEncoded string
	}{
		{
			name:            "empty",
			contents:        "",
			expectedPaths:   []string{},
			expectedEncoded: "",
		},
		{
			name:            "unsorted_with_duplicates_and_blank_lines",
			contents:        testSecondRepositoryPath + "\n\n" + testFirstRepositoryPath + "\n" + testSecondRepositoryPath,
			expectedPaths:   []string{testFirstRepositoryPath, testSecondRepositoryPath},
			expectedEncoded: testFirstRepositoryPath + "\n" + testSecondRepositoryPath + "\n",
		},
		{
			name:            "windows_line_endings",
			contents:        testFirstRepositoryPath + "\r\n",
			expectedPaths:   []string{testFirstRepositoryPath},
			expectedEncoded: testFirstRepositoryPath + "\n",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			parsedRegistry := registry.Parse([]byte(testCase.contents))
			require.Equal(testInstance, testCase.expectedPaths, parsedRegistry.Paths())
			require.Equal(testInstance, testCase.expectedEncoded, string(parsedRegistry.Encode()))
		})
	}
}

func TestRegistryScope(testInstance *testing.T) {
	knownRegistry := registry.New(testFirstRepositoryPath, testSecondRepositoryPath, testOutsideRepositoryPath)

	testCases := []struct {
		name                 string
		workingDirectory     string
		expectedScopedPaths  []string
		expectedIgnoredCount int
	}{
		{
			name:                 "partial_scope",
			workingDirectory:     testWorkingDirectory,
			expectedScopedPaths:  []string{testFirstRepositoryPath, testSecondRepositoryPath},
			expectedIgnoredCount: 1,
		},
		{
			name:                 "filesystem_root",
			workingDirectory:     "/",
			expectedScopedPaths:  []string{testFirstRepositoryPath, testSecondRepositoryPath, testOutsideRepositoryPath},
			expectedIgnoredCount: 0,
		},
		{
			name:                 "string_prefix_match",
			workingDirectory:     testFirstRepositoryPath[:len(testFirstRepositoryPath)-2],
			expectedScopedPaths:  []string{testFirstRepositoryPath},
			expectedIgnoredCount: 2,
		},
		{
			name:                 "nothing_in_scope",
			workingDirectory:     "/var",
			expectedScopedPaths:  nil,
			expectedIgnoredCount: 3,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			scope := knownRegistry.Scope(testCase.workingDirectory)
			require.Equal(testInstance, testCase.expectedScopedPaths, scope.RepositoryPaths)
			require.Equal(testInstance, testCase.expectedIgnoredCount, scope.IgnoredCount)
			require.Equal(testInstance, knownRegistry.Len(), scope.Len()+scope.IgnoredCount)
			for _, scopedPath := range scope.RepositoryPaths {
				require.True(testInstance, knownRegistry.Contains(scopedPath))
				require.True(testInstance, scope.Contains(scopedPath))
			}
		})
	}
}

func TestConfigurationSanitize(testInstance *testing.T) {
	require.Equal(testInstance, registry.DefaultConfiguration(), registry.Configuration{Path: "   "}.Sanitize())
	require.Equal(testInstance, "/tmp/registry", registry.Configuration{Path: " /tmp/registry "}.Sanitize().Path)
	require.Equal(testInstance, map[string]any{"registry.path": registry.DefaultRegistryPathConstant}, registry.DefaultConfigurationValues("registry"))
}
