package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/temirov/inventory/internal/utils"
)

// InitTarget identifies where configuration should be initialized.
type InitTarget string

const (
	// InitTargetLocal writes configuration into the working directory.
	InitTargetLocal InitTarget = "local"
	// InitTargetGlobal writes configuration into the global configuration directory.
	InitTargetGlobal InitTarget = "global"

	yamlIndentWidth = 2
)

type defaultTokenDocument struct {
	Enabled bool   `yaml:"enabled"`
	Model   string `yaml:"model"`
}

type defaultScanDocument struct {
	Exclude    []string             `yaml:"exclude"`
	Extensions []string             `yaml:"extensions"`
	Sorted     bool                 `yaml:"sorted"`
	Format     string               `yaml:"format"`
	Copy       bool                 `yaml:"copy"`
	Jobs       int                  `yaml:"jobs"`
	Tokens     defaultTokenDocument `yaml:"tokens"`
}

type defaultConfigurationDocument struct {
	Scan defaultScanDocument `yaml:"scan"`
}

// renderDefaultConfiguration encodes the built-in scan defaults as YAML.
func renderDefaultConfiguration() ([]byte, error) {
	document := defaultConfigurationDocument{
		Scan: defaultScanDocument{
			Exclude:    DefaultExcludedDirectoryNames,
			Extensions: DefaultIncludedExtensions,
			Format:     DefaultFormat,
			Jobs:       DefaultJobs,
			Tokens:     defaultTokenDocument{Model: DefaultTokenizerModel},
		},
	}
	var buffer bytes.Buffer
	encoder := yaml.NewEncoder(&buffer)
	encoder.SetIndent(yamlIndentWidth)
	if encodeError := encoder.Encode(document); encodeError != nil {
		return nil, fmt.Errorf("encode default configuration: %w", encodeError)
	}
	if closeError := encoder.Close(); closeError != nil {
		return nil, fmt.Errorf("encode default configuration: %w", closeError)
	}
	return buffer.Bytes(), nil
}

// InitOptions controls how configuration initialization behaves.
type InitOptions struct {
	Target           InitTarget
	Force            bool
	WorkingDirectory string
}

// InitializeConfiguration writes the default configuration to the requested target.
func InitializeConfiguration(options InitOptions) (string, error) {
	target := options.Target
	if target == "" {
		target = InitTargetLocal
	}
	var destinationPath string
	switch target {
	case InitTargetLocal:
		workingDirectory := options.WorkingDirectory
		if workingDirectory == "" {
			current, err := os.Getwd()
			if err != nil {
				return "", fmt.Errorf("determine working directory for configuration: %w", err)
			}
			workingDirectory = current
		}
		destinationPath = filepath.Join(workingDirectory, utils.ConfigFileName)
	case InitTargetGlobal:
		homeDirectory, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory for configuration: %w", err)
		}
		configurationDirectory := filepath.Join(homeDirectory, utils.GlobalConfigDirectoryName)
		if err := os.MkdirAll(configurationDirectory, 0o755); err != nil {
			return "", fmt.Errorf("create configuration directory %s: %w", configurationDirectory, err)
		}
		destinationPath = filepath.Join(configurationDirectory, utils.ConfigFileName)
	default:
		return "", fmt.Errorf("unsupported init target %q", target)
	}

	if _, err := os.Stat(destinationPath); err == nil {
		if !options.Force {
			return "", fmt.Errorf("configuration file already exists at %s", destinationPath)
		}
	} else if !os.IsNotExist(err) {
		return "", fmt.Errorf("inspect configuration path %s: %w", destinationPath, err)
	}

	renderedConfiguration, renderErr := renderDefaultConfiguration()
	if renderErr != nil {
		return "", renderErr
	}
	if err := os.WriteFile(destinationPath, renderedConfiguration, 0o600); err != nil {
		return "", fmt.Errorf("write configuration to %s: %w", destinationPath, err)
	}

	return destinationPath, nil
}
