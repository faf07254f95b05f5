package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/temirov/inventory/internal/config"
	"github.com/temirov/inventory/internal/utils"
)

func TestInitializeConfigurationLocal(testingHandle *testing.T) {
	workingDirectory := testingHandle.TempDir()

	writtenPath, initError := config.InitializeConfiguration(config.InitOptions{
		Target:           config.InitTargetLocal,
		WorkingDirectory: workingDirectory,
	})

	require.NoError(testingHandle, initError)
	assert.Equal(testingHandle, filepath.Join(workingDirectory, utils.ConfigFileName), writtenPath)

	homeDirectory := testingHandle.TempDir()
	testingHandle.Setenv("HOME", homeDirectory)
	testingHandle.Setenv("USERPROFILE", homeDirectory)
	loaded, loadError := config.LoadApplicationConfiguration(config.LoadOptions{WorkingDirectory: workingDirectory})
	require.NoError(testingHandle, loadError)
	assert.Equal(testingHandle, config.DefaultExcludedDirectoryNames, loaded.Scan.Exclude)
	assert.Equal(testingHandle, config.DefaultIncludedExtensions, loaded.Scan.Extensions)
	require.NotNil(testingHandle, loaded.Scan.Jobs)
	assert.Equal(testingHandle, 4, *loaded.Scan.Jobs)
}

func TestInitializeConfigurationGlobal(testingHandle *testing.T) {
	homeDirectory := testingHandle.TempDir()
	testingHandle.Setenv("HOME", homeDirectory)
	testingHandle.Setenv("USERPROFILE", homeDirectory)

	writtenPath, initError := config.InitializeConfiguration(config.InitOptions{Target: config.InitTargetGlobal})

	require.NoError(testingHandle, initError)
	assert.Equal(testingHandle, filepath.Join(homeDirectory, utils.GlobalConfigDirectoryName, utils.ConfigFileName), writtenPath)
	_, statError := os.Stat(writtenPath)
	assert.NoError(testingHandle, statError)
}

func TestInitializeConfigurationDoesNotOverwriteWithoutForce(testingHandle *testing.T) {
	workingDirectory := testingHandle.TempDir()
	existingPath := filepath.Join(workingDirectory, utils.ConfigFileName)
	require.NoError(testingHandle, os.WriteFile(existingPath, []byte("scan: {}\n"), 0o600))

	_, initError := config.InitializeConfiguration(config.InitOptions{WorkingDirectory: workingDirectory})
	require.Error(testingHandle, initError)
	assert.Contains(testingHandle, initError.Error(), "already exists")

	_, forcedError := config.InitializeConfiguration(config.InitOptions{WorkingDirectory: workingDirectory, Force: true})
	require.NoError(testingHandle, forcedError)
	rewritten, readError := os.ReadFile(existingPath)
	require.NoError(testingHandle, readError)
	assert.Contains(testingHandle, string(rewritten), "extensions:")
}

func TestInitializeConfigurationRejectsUnknownTarget(testingHandle *testing.T) {
	_, initError := config.InitializeConfiguration(config.InitOptions{Target: config.InitTarget("remote")})
	require.Error(testingHandle, initError)
}
