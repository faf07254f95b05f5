// Package utils contains general helper functions used across the inventory tool.
package utils

import (
	"strings"
)

const (
	// GitDirectoryName is the name of the Git repository directory.
	GitDirectoryName = ".git"
	// ProjectIgnoreFileName lists extra exclusions and extensions inside a scanned root.
	ProjectIgnoreFileName = ".inventoryignore"
	// ConfigFileName is the name of the YAML configuration file.
	ConfigFileName = ".inventory.yaml"
	// GlobalConfigDirectoryName is the directory below the user's home holding the global configuration.
	GlobalConfigDirectoryName = ".inventory"

	extensionSeparator = "."
)

// DeduplicatePatterns removes duplicate values from a slice while preserving order.
// The first occurrence of each unique value is kept.
func DeduplicatePatterns(patterns []string) []string {
	encounteredPatterns := make(map[string]struct{})
	result := make([]string, 0, len(patterns))
	for _, pattern := range patterns {
		if _, exists := encounteredPatterns[pattern]; !exists {
			encounteredPatterns[pattern] = struct{}{}
			result = append(result, pattern)
		}
	}
	return result
}

// StringSet converts values into a lookup set.
func StringSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, value := range values {
		set[value] = struct{}{}
	}
	return set
}

// NormalizeDirectoryNames trims names, drops empty ones and trailing slashes, and deduplicates.
func NormalizeDirectoryNames(names []string) []string {
	normalized := make([]string, 0, len(names))
	for _, name := range names {
		trimmedName := strings.TrimRight(strings.TrimSpace(name), "/\\")
		if trimmedName == "" {
			continue
		}
		normalized = append(normalized, trimmedName)
	}
	return DeduplicatePatterns(normalized)
}

// NormalizeExtensions trims extensions, prefixes a missing leading dot, and deduplicates.
// Matching stays exact, so case is preserved.
func NormalizeExtensions(extensions []string) []string {
	normalized := make([]string, 0, len(extensions))
	for _, extension := range extensions {
		trimmedExtension := strings.TrimSpace(extension)
		if trimmedExtension == "" || trimmedExtension == extensionSeparator {
			continue
		}
		if !strings.HasPrefix(trimmedExtension, extensionSeparator) {
			trimmedExtension = extensionSeparator + trimmedExtension
		}
		normalized = append(normalized, trimmedExtension)
	}
	return DeduplicatePatterns(normalized)
}
