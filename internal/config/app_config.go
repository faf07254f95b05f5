package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/temirov/inventory/internal/utils"
)

// LoadOptions controls how application configuration is discovered.
type LoadOptions struct {
	WorkingDirectory string
	ExplicitFilePath string
}

// ApplicationConfiguration holds command-specific configuration defaults.
type ApplicationConfiguration struct {
	Scan ScanConfiguration `mapstructure:"scan"`
}

// ScanConfiguration defines defaults for the scan command.
type ScanConfiguration struct {
	Exclude    []string           `mapstructure:"exclude"`
	Extensions []string           `mapstructure:"extensions"`
	Sorted     *bool              `mapstructure:"sorted"`
	Format     string             `mapstructure:"format"`
	Tokens     TokenConfiguration `mapstructure:"tokens"`
	Copy       *bool              `mapstructure:"copy"`
	Jobs       *int               `mapstructure:"jobs"`
}

// TokenConfiguration controls token counting defaults.
type TokenConfiguration struct {
	Enabled *bool  `mapstructure:"enabled"`
	Model   string `mapstructure:"model"`
}

// LoadApplicationConfiguration loads configuration from global and local files.
func LoadApplicationConfiguration(options LoadOptions) (ApplicationConfiguration, error) {
	workingDirectory := options.WorkingDirectory
	if workingDirectory == "" {
		currentDirectory, err := os.Getwd()
		if err != nil {
			return ApplicationConfiguration{}, fmt.Errorf("determine working directory: %w", err)
		}
		workingDirectory = currentDirectory
	}

	var merged ApplicationConfiguration

	if homeDirectory, err := os.UserHomeDir(); err == nil && homeDirectory != "" {
		globalPath := filepath.Join(homeDirectory, utils.GlobalConfigDirectoryName, utils.ConfigFileName)
		globalConfig, loadErr := loadConfigurationFromPath(globalPath, false)
		if loadErr != nil {
			return ApplicationConfiguration{}, loadErr
		}
		merged = merged.Merge(globalConfig)
	}

	localPath := resolveLocalConfigPath(workingDirectory, options.ExplicitFilePath)
	localConfig, loadErr := loadConfigurationFromPath(localPath, options.ExplicitFilePath != "")
	if loadErr != nil {
		return ApplicationConfiguration{}, loadErr
	}
	merged = merged.Merge(localConfig)

	merged.Scan.Exclude = utils.NormalizeDirectoryNames(merged.Scan.Exclude)
	merged.Scan.Extensions = utils.NormalizeExtensions(merged.Scan.Extensions)

	return merged, nil
}

func resolveLocalConfigPath(workingDirectory, explicitPath string) string {
	if explicitPath != "" {
		if filepath.IsAbs(explicitPath) {
			return explicitPath
		}
		return filepath.Join(workingDirectory, explicitPath)
	}
	return filepath.Join(workingDirectory, utils.ConfigFileName)
}

// loadConfigurationFromPath decodes the YAML file at path. A missing file is an
// empty configuration unless required is set.
func loadConfigurationFromPath(path string, required bool) (ApplicationConfiguration, error) {
	if path == "" {
		return ApplicationConfiguration{}, nil
	}
	info, statErr := os.Stat(path)
	if statErr != nil {
		if os.IsNotExist(statErr) && !required {
			return ApplicationConfiguration{}, nil
		}
		return ApplicationConfiguration{}, fmt.Errorf("stat configuration %s: %w", path, statErr)
	}
	if info.IsDir() {
		return ApplicationConfiguration{}, fmt.Errorf("configuration path %s is a directory", path)
	}

	reader := viper.New()
	reader.SetConfigFile(path)
	reader.SetConfigType("yaml")
	if readErr := reader.ReadInConfig(); readErr != nil {
		return ApplicationConfiguration{}, fmt.Errorf("read configuration from %s: %w", path, readErr)
	}
	var config ApplicationConfiguration
	if decodeErr := reader.Unmarshal(&config); decodeErr != nil {
		return ApplicationConfiguration{}, fmt.Errorf("decode configuration from %s: %w", path, decodeErr)
	}
	return config, nil
}

// Merge overlays override onto the receiver returning the combined configuration.
func (config ApplicationConfiguration) Merge(override ApplicationConfiguration) ApplicationConfiguration {
	result := config
	result.Scan = result.Scan.merge(override.Scan)
	return result
}

func (config ScanConfiguration) merge(override ScanConfiguration) ScanConfiguration {
	result := config
	if len(override.Exclude) > 0 {
		result.Exclude = append([]string{}, override.Exclude...)
	}
	if len(override.Extensions) > 0 {
		result.Extensions = append([]string{}, override.Extensions...)
	}
	if override.Sorted != nil {
		result.Sorted = cloneBool(override.Sorted)
	}
	if override.Format != "" {
		result.Format = override.Format
	}
	result.Tokens = result.Tokens.merge(override.Tokens)
	if override.Copy != nil {
		result.Copy = cloneBool(override.Copy)
	}
	if override.Jobs != nil {
		result.Jobs = cloneInt(override.Jobs)
	}
	return result
}

func (config TokenConfiguration) merge(override TokenConfiguration) TokenConfiguration {
	result := config
	if override.Enabled != nil {
		result.Enabled = cloneBool(override.Enabled)
	}
	if override.Model != "" {
		result.Model = override.Model
	}
	return result
}

func cloneBool(value *bool) *bool {
	if value == nil {
		return nil
	}
	cloned := *value
	return &cloned
}

func cloneInt(value *int) *int {
	if value == nil {
		return nil
	}
	cloned := *value
	return &cloned
}
