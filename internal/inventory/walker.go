// Package inventory builds the hierarchical directory/module/class/function
// inventory of a source tree and aggregates its statistics bottom-up.
package inventory

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"syscall"

	"go.uber.org/zap"

	"github.com/temirov/inventory/internal/tokenizer"
	"github.com/temirov/inventory/internal/types"
	"github.com/temirov/inventory/internal/utils"
)

const (
	debugEnterDirectoryMessage = "scanning directory"
	debugParsedModuleMessage   = "parsed module"
	warningTokenCountMessage   = "token count failed"
	debugSkippedLinkMessage    = "skipping unresolvable symlink"

	operationStat          = "stat"
	operationRead          = "read"
	operationOpenDirectory = "open directory"
	operationReadDirectory = "read directory"
	operationNotDirectory  = "not a directory"
)

// Options configures a Walker.
type Options struct {
	// ExcludedDirectoryNames are directory basenames skipped with their whole subtree.
	ExcludedDirectoryNames []string
	// IncludedExtensions are file extensions, with the leading dot, parsed as modules.
	IncludedExtensions []string
	// Sorted visits directory entries by name instead of enumeration order.
	Sorted bool
	// TokenCounter estimates module tokens when set.
	TokenCounter tokenizer.Counter
	Logger       *zap.Logger
}

// Walker builds inventory trees using configured options.
type Walker struct {
	excludedDirectoryNames map[string]struct{}
	includedExtensions     map[string]struct{}
	sorted                 bool
	tokenCounter           tokenizer.Counter
	logger                 *zap.Logger
}

// NewWalker returns a Walker for options.
func NewWalker(options Options) *Walker {
	logger := options.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Walker{
		excludedDirectoryNames: utils.StringSet(options.ExcludedDirectoryNames),
		includedExtensions:     utils.StringSet(options.IncludedExtensions),
		sorted:                 options.Sorted,
		tokenCounter:           options.TokenCounter,
		logger:                 logger,
	}
}

// Walk scans directoryPath and returns its directory node. Any filesystem failure
// aborts the walk with a *FilesystemError; no partial tree is returned.
func (walker *Walker) Walk(ctx context.Context, directoryPath string) (*Node, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	directoryInfo, statError := os.Stat(directoryPath)
	if statError != nil {
		return nil, newFilesystemError(operationStat, directoryPath, statError)
	}
	if !directoryInfo.IsDir() {
		return nil, newFilesystemError(operationNotDirectory, directoryPath, fs.ErrInvalid)
	}
	return walker.walkDirectory(ctx, directoryPath, "")
}

// walkDirectory builds the node for directoryPath. relativePathPrefix is the
// dot-joined path of the parent directory.
func (walker *Walker) walkDirectory(ctx context.Context, directoryPath string, relativePathPrefix string) (*Node, error) {
	if contextError := ctx.Err(); contextError != nil {
		return nil, contextError
	}

	directoryName := filepath.Base(directoryPath)
	directoryNode := &Node{
		Name:         directoryName,
		RelativePath: relativePathPrefix,
		Kind:         types.NodeKindDirectory,
	}
	walker.logger.Debug(debugEnterDirectoryMessage, zap.String("path", directoryPath))

	directoryEntries, readError := walker.readDirectory(directoryPath)
	if readError != nil {
		return nil, readError
	}

	for _, directoryEntry := range directoryEntries {
		entryName := directoryEntry.Name()
		entryPath := filepath.Join(directoryPath, entryName)

		entryMode := directoryEntry.Type()
		if entryMode&fs.ModeSymlink != 0 {
			targetInfo, statError := os.Stat(entryPath)
			if statError != nil {
				if isUnresolvableLink(statError) {
					walker.logger.Debug(debugSkippedLinkMessage, zap.String("path", entryPath), zap.Error(statError))
					continue
				}
				return nil, newFilesystemError(operationStat, entryPath, statError)
			}
			if targetInfo.IsDir() {
				continue
			}
			entryMode = targetInfo.Mode().Type()
		}

		switch {
		case entryMode.IsDir():
			if _, excluded := walker.excludedDirectoryNames[entryName]; excluded {
				continue
			}
			childNode, walkError := walker.walkDirectory(ctx, entryPath, joinRelativePath(relativePathPrefix, entryName))
			if walkError != nil {
				return nil, walkError
			}
			directoryNode.Statistics.Directories += 1 + childNode.Statistics.Directories
			directoryNode.Statistics.Add(foldableStatistics(childNode.Statistics))
			directoryNode.Children = append(directoryNode.Children, childNode)
		case entryMode.IsRegular():
			if _, included := walker.includedExtensions[filepath.Ext(entryName)]; !included {
				continue
			}
			moduleNode, parseError := walker.parseModule(entryPath, relativePathPrefix)
			if parseError != nil {
				return nil, parseError
			}
			directoryNode.Statistics.Modules++
			directoryNode.Statistics.Add(foldableStatistics(moduleNode.Statistics))
			directoryNode.Children = append(directoryNode.Children, moduleNode)
		}
	}

	return directoryNode, nil
}

// isUnresolvableLink reports whether a symlink target is missing or loops back on itself.
func isUnresolvableLink(statError error) bool {
	return errors.Is(statError, fs.ErrNotExist) || errors.Is(statError, syscall.ELOOP)
}

// foldableStatistics drops the directory and module counters, which the caller
// accounts for itself.
func foldableStatistics(statistics Statistics) Statistics {
	statistics.Directories = 0
	statistics.Modules = 0
	return statistics
}

// readDirectory lists directoryPath in native enumeration order, or by name when sorting is enabled.
func (walker *Walker) readDirectory(directoryPath string) ([]fs.DirEntry, error) {
	directoryHandle, openError := os.Open(directoryPath)
	if openError != nil {
		return nil, newFilesystemError(operationOpenDirectory, directoryPath, openError)
	}
	defer directoryHandle.Close()

	directoryEntries, readError := directoryHandle.ReadDir(-1)
	if readError != nil {
		return nil, newFilesystemError(operationReadDirectory, directoryPath, readError)
	}
	if walker.sorted {
		sort.Slice(directoryEntries, func(leftIndex, rightIndex int) bool {
			return directoryEntries[leftIndex].Name() < directoryEntries[rightIndex].Name()
		})
	}
	return directoryEntries, nil
}

// parseModule parses one source file, adding a token estimate when a counter is configured.
func (walker *Walker) parseModule(filePath string, relativePathPrefix string) (*Node, error) {
	moduleNode, source, parseError := parseModuleFile(filePath, relativePathPrefix)
	if parseError != nil {
		return nil, parseError
	}
	if walker.tokenCounter != nil {
		countResult, countError := tokenizer.CountBytes(walker.tokenCounter, []byte(source))
		if countError != nil {
			walker.logger.Warn(warningTokenCountMessage, zap.String("path", filePath), zap.Error(countError))
		} else if countResult.Counted {
			moduleNode.Statistics.Tokens = countResult.Tokens
		}
	}
	walker.logger.Debug(debugParsedModuleMessage,
		zap.String("path", filePath),
		zap.Int("classes", moduleNode.Statistics.Classes),
		zap.Int("functions", moduleNode.Statistics.Functions),
	)
	return moduleNode, nil
}
