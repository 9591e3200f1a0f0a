package utils_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/reposcan/internal/utils"
)

const (
	testContextConfigurationPathConstant = "/etc/reposcan/config.yaml"
	testContextWorkingDirectoryConstant  = "/home/operator/src"
)

func TestCommandContextAccessorRoundTrip(testInstance *testing.T) {
	accessor := utils.NewCommandContextAccessor()

	executionContext := accessor.WithConfigurationFilePath(context.Background(), testContextConfigurationPathConstant)
	executionContext = accessor.WithWorkingDirectory(executionContext, testContextWorkingDirectoryConstant)
	executionContext = accessor.WithVerboseOutput(executionContext, true)

	configurationPath, configurationAvailable := accessor.ConfigurationFilePath(executionContext)
	require.True(testInstance, configurationAvailable)
	require.Equal(testInstance, testContextConfigurationPathConstant, configurationPath)

	workingDirectory, workingDirectoryAvailable := accessor.WorkingDirectory(executionContext)
	require.True(testInstance, workingDirectoryAvailable)
	require.Equal(testInstance, testContextWorkingDirectoryConstant, workingDirectory)

	require.True(testInstance, accessor.VerboseOutput(executionContext))
}

func TestCommandContextAccessorMissingValues(testInstance *testing.T) {
	accessor := utils.NewCommandContextAccessor()

	testCases := []struct {
		name             string
		executionContext context.Context
	}{
		{name: "background", executionContext: context.Background()},
		{name: "blank_working_directory", executionContext: accessor.WithWorkingDirectory(context.Background(), "  ")},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			_, workingDirectoryAvailable := accessor.WorkingDirectory(testCase.executionContext)
			require.False(testInstance, workingDirectoryAvailable)
			require.False(testInstance, accessor.VerboseOutput(testCase.executionContext))
		})
	}
}
