// Package config loads inventory configuration: the YAML application configuration
// and the per-project ignore file kept in a scanned root.
package config

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/temirov/inventory/internal/types"
	"github.com/temirov/inventory/internal/utils"
)

const (
	// excludeSectionHeader identifies the section listing excluded directory basenames.
	excludeSectionHeader = "[exclude]"
	// includeSectionHeader identifies the section listing included file extensions.
	includeSectionHeader = "[include]"
	commentPrefix        = "#"
)

// DefaultExcludedDirectoryNames are skipped when neither flags nor configuration name any.
var DefaultExcludedDirectoryNames = []string{utils.GitDirectoryName, "__pycache__", "docs", "logs", "ztrash"}

// DefaultIncludedExtensions are parsed when neither flags nor configuration name any.
var DefaultIncludedExtensions = []string{".py"}

const (
	// DefaultFormat echoes nothing to stdout.
	DefaultFormat = types.FormatNone
	// DefaultJobs bounds concurrently scanned roots.
	DefaultJobs           = 4
	DefaultTokenizerModel = "gpt-4o"
)

// ProjectPatterns holds the entries read from a project ignore file.
type ProjectPatterns struct {
	ExcludedDirectoryNames []string
	IncludedExtensions     []string
}

// LoadProjectIgnoreFile reads the project ignore file at ignoreFilePath. Lines before any
// section header belong to [exclude]. A missing file yields empty patterns.
//
// #nosec G304
func LoadProjectIgnoreFile(ignoreFilePath string) (ProjectPatterns, error) {
	fileHandle, openFileError := os.Open(ignoreFilePath)
	if openFileError != nil {
		if os.IsNotExist(openFileError) {
			return ProjectPatterns{}, nil
		}
		return ProjectPatterns{}, openFileError
	}
	defer func() {
		closeError := fileHandle.Close()
		if closeError != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to close %s: %v\n", ignoreFilePath, closeError)
		}
	}()

	var patterns ProjectPatterns
	currentSectionHeader := excludeSectionHeader
	scanner := bufio.NewScanner(fileHandle)
	for scanner.Scan() {
		trimmedLine := strings.TrimSpace(scanner.Text())
		if trimmedLine == "" || strings.HasPrefix(trimmedLine, commentPrefix) {
			continue
		}
		if strings.EqualFold(trimmedLine, includeSectionHeader) {
			currentSectionHeader = includeSectionHeader
			continue
		}
		if strings.EqualFold(trimmedLine, excludeSectionHeader) {
			currentSectionHeader = excludeSectionHeader
			continue
		}
		if currentSectionHeader == includeSectionHeader {
			patterns.IncludedExtensions = append(patterns.IncludedExtensions, trimmedLine)
			continue
		}
		patterns.ExcludedDirectoryNames = append(patterns.ExcludedDirectoryNames, trimmedLine)
	}
	if scanError := scanner.Err(); scanError != nil {
		return ProjectPatterns{}, scanError
	}
	patterns.ExcludedDirectoryNames = utils.NormalizeDirectoryNames(patterns.ExcludedDirectoryNames)
	patterns.IncludedExtensions = utils.NormalizeExtensions(patterns.IncludedExtensions)
	return patterns, nil
}

// ResolveScanPatterns combines the configured lists with the project ignore file found in
// rootDirectoryPath. Empty configured lists fall back to the defaults; the project file only
// ever adds entries.
func ResolveScanPatterns(rootDirectoryPath string, excludedDirectoryNames []string, includedExtensions []string) (ProjectPatterns, error) {
	resolved := ProjectPatterns{
		ExcludedDirectoryNames: utils.NormalizeDirectoryNames(excludedDirectoryNames),
		IncludedExtensions:     utils.NormalizeExtensions(includedExtensions),
	}
	if len(resolved.ExcludedDirectoryNames) == 0 {
		resolved.ExcludedDirectoryNames = append([]string{}, DefaultExcludedDirectoryNames...)
	}
	if len(resolved.IncludedExtensions) == 0 {
		resolved.IncludedExtensions = append([]string{}, DefaultIncludedExtensions...)
	}

	ignoreFilePath := filepath.Join(rootDirectoryPath, utils.ProjectIgnoreFileName)
	projectPatterns, loadError := LoadProjectIgnoreFile(ignoreFilePath)
	if loadError != nil {
		return ProjectPatterns{}, fmt.Errorf("loading %s from %s: %w", utils.ProjectIgnoreFileName, rootDirectoryPath, loadError)
	}
	resolved.ExcludedDirectoryNames = utils.DeduplicatePatterns(append(resolved.ExcludedDirectoryNames, projectPatterns.ExcludedDirectoryNames...))
	resolved.IncludedExtensions = utils.DeduplicatePatterns(append(resolved.IncludedExtensions, projectPatterns.IncludedExtensions...))
	return resolved, nil
}
