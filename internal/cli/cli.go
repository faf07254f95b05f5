// Package cli provides the command line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"github.com/temirov/inventory/internal/config"
	"github.com/temirov/inventory/internal/inventory"
	"github.com/temirov/inventory/internal/output"
	"github.com/temirov/inventory/internal/services/clipboard"
	"github.com/temirov/inventory/internal/tokenizer"
	"github.com/temirov/inventory/internal/types"
	"github.com/temirov/inventory/internal/utils"
)

const (
	excludeFlagName        = "exclude"
	excludeFlagShorthand   = "e"
	extensionFlagName      = "extension"
	extensionFlagShorthand = "x"
	sortedFlagName         = "sorted"
	formatFlagName         = "format"
	dryRunFlagName         = "dry-run"
	tokensFlagName         = "tokens"
	modelFlagName          = "model"
	copyFlagName           = "copy"
	configFlagName         = "config"
	jobsFlagName           = "jobs"
	globalFlagName         = "global"
	forceFlagName          = "force"
	verboseFlagName        = "verbose"
	versionFlagName        = "version"
	versionTemplate        = "inventory version: %s\n"
	defaultPath            = "."

	rootUse              = "inventory"
	rootShortDescription = "inventory command line interface"
	rootLongDescription  = `inventory measures the structure of a Python source tree.
It counts directories, modules, classes, functions, lines and characters, folds them
into a hierarchical report and writes it as Markdown into every scanned directory.
Use --version to print the application version.`

	scanUse              = types.CommandScan + " [paths...]"
	scanAlias            = "s"
	scanShortDescription = "inventory source trees (" + scanAlias + ")"
	scanLongDescription  = `Walk one or more directories and write <name>-<timestamp>.md into each.
Use --format to echo the report to stdout and --dry-run to skip writing report files.
Entries of .inventoryignore inside a scanned directory extend the exclusions ([exclude])
and extensions ([include]).
Symbolic links to files are parsed as the linked file. Symbolic links to directories
are not followed and do not appear in the report; broken links are ignored.`
	scanUsageExample = `  # Report the current directory
  inventory scan

  # Echo a JSON tree for two projects without writing reports
  inventory scan --format json --dry-run ./api ./worker

  # Skip build output and count tokens
  inventory scan -e build -e dist --tokens .`

	initUse              = types.CommandInit
	initShortDescription = "write the default configuration file"
	initLongDescription  = `Write a default .inventory.yaml into the working directory,
or into ~/.inventory with --global. Existing files are kept unless --force is given.`

	excludeFlagDescription   = "exclude directory basename (repeatable)"
	extensionFlagDescription = "parse files with this extension (repeatable)"
	sortedFlagDescription    = "visit directory entries in name order"
	formatFlagDescription    = "stdout echo format: markdown, json, raw or none"
	dryRunFlagDescription    = "do not write report files"
	tokensFlagDescription    = "include token counts"
	modelFlagDescription     = "tokenizer model to use for token counting"
	copyFlagDescription      = "copy the Markdown report to the clipboard"
	configFlagDescription    = "configuration file to use instead of ./" + utils.ConfigFileName
	jobsFlagDescription      = "maximum number of directories scanned concurrently"
	globalFlagDescription    = "write the configuration into the home directory"
	forceFlagDescription     = "overwrite an existing configuration file"
	verboseFlagDescription   = "enable debug logging"
	versionFlagDescription   = "display application version"

	invalidFormatMessage        = "invalid format value '%s'"
	loadConfigurationFormat     = "load configuration: %w"
	tokenizerInitFormat         = "initialize tokenizer: %w"
	resolvePatternsFormat       = "resolve scan patterns: %w"
	scanRootFormat              = "scan %s: %w"
	renderRootFormat            = "render %s: %w"
	copyReportFormat            = "copy report: %w"
	summaryLineFormat           = "%s: %s modules, %s classes, %s functions, %s lines"
	reportWrittenFormat         = " -> %s"
	configurationWrittenMessage = "Configuration written to %s\n"
	errorAbsolutePathFormat     = "abs failed for '%s': %w"
	errorPathMissingFormat      = "path '%s' does not exist"
	errorStatFormat             = "stat failed for '%s': %w"
	errorNotDirectoryFormat     = "path '%s' is not a directory"
	errorNoValidPaths           = "no valid paths"
	debugScanStartMessage       = "scanning root"
)

var summaryColor = color.New(color.FgCyan, color.Bold)

// isSupportedFormat reports whether the provided format is recognized.
func isSupportedFormat(format string) bool {
	switch format {
	case types.FormatMarkdown, types.FormatJSON, types.FormatRaw, types.FormatNone:
		return true
	default:
		return false
	}
}

// application carries the collaborators shared by all commands.
type application struct {
	logger *zap.Logger
	copier clipboard.Copier
	now    func() time.Time
}

// Execute runs the inventory application.
func Execute(logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	app := &application{
		logger: logger,
		copier: clipboard.NewService(),
		now:    time.Now,
	}
	rootCommand := createRootCommand(app)
	rootCommand.SetArgs(normalizeCopyFlagArguments(os.Args[1:]))
	return rootCommand.Execute()
}

// createRootCommand builds the root Cobra command.
func createRootCommand(app *application) *cobra.Command {
	var showVersion bool
	var verbose bool

	rootCommand := &cobra.Command{
		Use:          rootUse,
		Short:        rootShortDescription,
		Long:         rootLongDescription,
		SilenceUsage: true,
		RunE: func(command *cobra.Command, arguments []string) error {
			return command.Help()
		},
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			if showVersion {
				fmt.Fprintf(command.OutOrStdout(), versionTemplate, utils.GetApplicationVersion())
				os.Exit(0)
			}
			if verbose {
				debugLogger, loggerError := utils.NewLeveledLogger(zapcore.DebugLevel)
				if loggerError != nil {
					return fmt.Errorf(utils.LoggerInitializationFailedMessageFormat, loggerError)
				}
				app.logger = debugLogger
			}
			return nil
		},
	}
	rootCommand.PersistentFlags().BoolVar(&showVersion, versionFlagName, false, versionFlagDescription)
	rootCommand.PersistentFlags().BoolVar(&verbose, verboseFlagName, false, verboseFlagDescription)
	rootCommand.AddCommand(
		createScanCommand(app),
		createInitCommand(),
	)
	rootCommand.InitDefaultHelpCmd()
	rootCommand.InitDefaultCompletionCmd()
	return rootCommand
}

// scanOptions holds the resolved settings of one scan invocation.
type scanOptions struct {
	excludedDirectoryNames []string
	includedExtensions     []string
	sorted                 bool
	format                 string
	dryRun                 bool
	tokensEnabled          bool
	tokenModel             string
	copyEnabled            bool
	configPath             string
	jobs                   int
}

// applyConfiguration fills every option whose flag was not set explicitly.
func (options *scanOptions) applyConfiguration(command *cobra.Command, scanConfiguration config.ScanConfiguration) {
	flagChanged := command.Flags().Changed
	if !flagChanged(excludeFlagName) && len(scanConfiguration.Exclude) > 0 {
		options.excludedDirectoryNames = scanConfiguration.Exclude
	}
	if !flagChanged(extensionFlagName) && len(scanConfiguration.Extensions) > 0 {
		options.includedExtensions = scanConfiguration.Extensions
	}
	if !flagChanged(sortedFlagName) && scanConfiguration.Sorted != nil {
		options.sorted = *scanConfiguration.Sorted
	}
	if !flagChanged(formatFlagName) && scanConfiguration.Format != "" {
		options.format = scanConfiguration.Format
	}
	if !flagChanged(tokensFlagName) && scanConfiguration.Tokens.Enabled != nil {
		options.tokensEnabled = *scanConfiguration.Tokens.Enabled
	}
	if !flagChanged(modelFlagName) && scanConfiguration.Tokens.Model != "" {
		options.tokenModel = scanConfiguration.Tokens.Model
	}
	if !flagChanged(copyFlagName) && scanConfiguration.Copy != nil {
		options.copyEnabled = *scanConfiguration.Copy
	}
	if !flagChanged(jobsFlagName) && scanConfiguration.Jobs != nil {
		options.jobs = *scanConfiguration.Jobs
	}
}

// createScanCommand returns the scan subcommand.
func createScanCommand(app *application) *cobra.Command {
	var options scanOptions

	scanCommand := &cobra.Command{
		Use:     scanUse,
		Aliases: []string{scanAlias},
		Short:   scanShortDescription,
		Long:    scanLongDescription,
		Example: scanUsageExample,
		Args:    cobra.ArbitraryArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			applicationConfiguration, configurationError := config.LoadApplicationConfiguration(config.LoadOptions{ExplicitFilePath: options.configPath})
			if configurationError != nil {
				return fmt.Errorf(loadConfigurationFormat, configurationError)
			}
			options.applyConfiguration(command, applicationConfiguration.Scan)
			options.format = strings.ToLower(strings.TrimSpace(options.format))
			if !isSupportedFormat(options.format) {
				return fmt.Errorf(invalidFormatMessage, options.format)
			}
			if len(arguments) == 0 {
				arguments = []string{defaultPath}
			}
			return runScan(command.Context(), app, options, arguments, command.OutOrStdout(), command.ErrOrStderr())
		},
	}

	scanCommand.Flags().StringArrayVarP(&options.excludedDirectoryNames, excludeFlagName, excludeFlagShorthand, nil, excludeFlagDescription)
	scanCommand.Flags().StringArrayVarP(&options.includedExtensions, extensionFlagName, extensionFlagShorthand, nil, extensionFlagDescription)
	scanCommand.Flags().BoolVar(&options.sorted, sortedFlagName, false, sortedFlagDescription)
	scanCommand.Flags().StringVar(&options.format, formatFlagName, config.DefaultFormat, formatFlagDescription)
	scanCommand.Flags().BoolVar(&options.dryRun, dryRunFlagName, false, dryRunFlagDescription)
	scanCommand.Flags().BoolVar(&options.tokensEnabled, tokensFlagName, false, tokensFlagDescription)
	scanCommand.Flags().StringVar(&options.tokenModel, modelFlagName, config.DefaultTokenizerModel, modelFlagDescription)
	registerCopyFlag(scanCommand.Flags(), &options.copyEnabled)
	scanCommand.Flags().StringVar(&options.configPath, configFlagName, "", configFlagDescription)
	scanCommand.Flags().IntVar(&options.jobs, jobsFlagName, config.DefaultJobs, jobsFlagDescription)

	return scanCommand
}

// createInitCommand returns the init subcommand.
func createInitCommand() *cobra.Command {
	var initializeGlobal bool
	var overwriteExisting bool

	initCommand := &cobra.Command{
		Use:   initUse,
		Short: initShortDescription,
		Long:  initLongDescription,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			target := config.InitTargetLocal
			if initializeGlobal {
				target = config.InitTargetGlobal
			}
			writtenPath, initError := config.InitializeConfiguration(config.InitOptions{Target: target, Force: overwriteExisting})
			if initError != nil {
				return initError
			}
			fmt.Fprintf(command.OutOrStdout(), configurationWrittenMessage, writtenPath)
			return nil
		},
	}
	initCommand.Flags().BoolVar(&initializeGlobal, globalFlagName, false, globalFlagDescription)
	initCommand.Flags().BoolVar(&overwriteExisting, forceFlagName, false, forceFlagDescription)
	return initCommand
}

// scanResult is the finished inventory of one root.
type scanResult struct {
	root       *inventory.Node
	metadata   output.ReportMetadata
	markdown   string
	reportPath string
}

// runScan walks every root concurrently, then echoes results in argument order.
// The first failing root cancels the remaining walks.
func runScan(ctx context.Context, app *application, options scanOptions, paths []string, stdout io.Writer, stderr io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	validatedPaths, pathValidationError := resolveAndValidatePaths(paths)
	if pathValidationError != nil {
		return pathValidationError
	}

	var tokenCounter tokenizer.Counter
	if options.tokensEnabled {
		counter, _, counterError := tokenizer.NewCounter(tokenizer.Config{Model: options.tokenModel})
		if counterError != nil {
			return fmt.Errorf(tokenizerInitFormat, counterError)
		}
		tokenCounter = counter
	}

	results := make([]scanResult, len(validatedPaths))
	group, groupContext := errgroup.WithContext(ctx)
	jobs := options.jobs
	if jobs < 1 {
		jobs = 1
	}
	group.SetLimit(jobs)

	for pathIndex, validatedPath := range validatedPaths {
		pathIndex, validatedPath := pathIndex, validatedPath
		group.Go(func() error {
			result, scanError := scanRoot(groupContext, app, options, tokenCounter, validatedPath.AbsolutePath)
			if scanError != nil {
				return scanError
			}
			results[pathIndex] = result
			return nil
		})
	}
	if waitError := group.Wait(); waitError != nil {
		return waitError
	}

	var copiedReports []string
	for _, result := range results {
		if echoError := echoResult(stdout, options.format, result); echoError != nil {
			return echoError
		}
		writeSummary(stderr, result)
		copiedReports = append(copiedReports, result.markdown)
	}

	if options.copyEnabled {
		if copyError := app.copier.Copy(strings.Join(copiedReports, "")); copyError != nil {
			return fmt.Errorf(copyReportFormat, copyError)
		}
	}
	return nil
}

// scanRoot builds the inventory of one directory and writes its report unless dry-run.
func scanRoot(ctx context.Context, app *application, options scanOptions, tokenCounter tokenizer.Counter, rootPath string) (scanResult, error) {
	patterns, patternError := config.ResolveScanPatterns(rootPath, options.excludedDirectoryNames, options.includedExtensions)
	if patternError != nil {
		return scanResult{}, fmt.Errorf(resolvePatternsFormat, patternError)
	}
	app.logger.Debug(debugScanStartMessage,
		zap.String("root", rootPath),
		zap.Strings("exclude", patterns.ExcludedDirectoryNames),
		zap.Strings("extensions", patterns.IncludedExtensions))

	walker := inventory.NewWalker(inventory.Options{
		ExcludedDirectoryNames: patterns.ExcludedDirectoryNames,
		IncludedExtensions:     patterns.IncludedExtensions,
		Sorted:                 options.sorted,
		TokenCounter:           tokenCounter,
		Logger:                 app.logger,
	})
	root, walkError := walker.Walk(ctx, rootPath)
	if walkError != nil {
		return scanResult{}, fmt.Errorf(scanRootFormat, rootPath, walkError)
	}

	metadata := output.ReportMetadata{
		RootPath:      rootPath,
		GeneratedAt:   app.now(),
		IncludeTokens: tokenCounter != nil,
	}
	result := scanResult{root: root, metadata: metadata}
	if options.dryRun {
		result.markdown = output.RenderMarkdown(root, metadata)
		return result, nil
	}
	reportPath, markdown, reportError := output.WriteMarkdownReport(root, metadata)
	if reportError != nil {
		return scanResult{}, reportError
	}
	result.reportPath = reportPath
	result.markdown = markdown
	return result, nil
}

func echoResult(stdout io.Writer, format string, result scanResult) error {
	switch format {
	case types.FormatMarkdown:
		_, writeError := io.WriteString(stdout, result.markdown)
		return writeError
	case types.FormatJSON:
		rendered, renderError := output.RenderJSON(result.root)
		if renderError != nil {
			return fmt.Errorf(renderRootFormat, result.metadata.RootPath, renderError)
		}
		_, writeError := fmt.Fprintln(stdout, rendered)
		return writeError
	case types.FormatRaw:
		_, writeError := io.WriteString(stdout, output.RenderRaw(result.root))
		return writeError
	default:
		return nil
	}
}

func writeSummary(stderr io.Writer, result scanResult) {
	totals := result.root.Statistics
	summaryColor.Fprintf(stderr, summaryLineFormat,
		result.root.Name,
		output.FormatCount(totals.Modules),
		output.FormatCount(totals.Classes),
		output.FormatCount(totals.Functions),
		output.FormatCount(totals.Lines))
	if result.reportPath != "" {
		fmt.Fprintf(stderr, reportWrittenFormat, result.reportPath)
	}
	fmt.Fprintln(stderr)
}

// resolveAndValidatePaths converts input paths to absolute form and validates that
// each one is an existing directory. Duplicates are dropped.
func resolveAndValidatePaths(inputs []string) ([]types.ValidatedPath, error) {
	seen := make(map[string]struct{})
	var result []types.ValidatedPath
	for _, inputPath := range inputs {
		absolutePath, absolutePathError := filepath.Abs(inputPath)
		if absolutePathError != nil {
			return nil, fmt.Errorf(errorAbsolutePathFormat, inputPath, absolutePathError)
		}
		cleanPath := filepath.Clean(absolutePath)
		if _, ok := seen[cleanPath]; ok {
			continue
		}
		info, fileStatusError := os.Stat(cleanPath)
		if fileStatusError != nil {
			if os.IsNotExist(fileStatusError) {
				return nil, fmt.Errorf(errorPathMissingFormat, inputPath)
			}
			return nil, fmt.Errorf(errorStatFormat, inputPath, fileStatusError)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf(errorNotDirectoryFormat, inputPath)
		}
		seen[cleanPath] = struct{}{}
		result = append(result, types.ValidatedPath{AbsolutePath: cleanPath, IsDir: true})
	}
	if len(result) == 0 {
		return nil, fmt.Errorf(errorNoValidPaths)
	}
	return result, nil
}
