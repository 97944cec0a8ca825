// Package cli provides the command line interface.
package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/scharc/snaprepo/internal/classify"
	"github.com/scharc/snaprepo/internal/config"
	"github.com/scharc/snaprepo/internal/ignore"
	"github.com/scharc/snaprepo/internal/render"
	"github.com/scharc/snaprepo/internal/services/clipboard"
	"github.com/scharc/snaprepo/internal/tokenizer"
	"github.com/scharc/snaprepo/internal/types"
	"github.com/scharc/snaprepo/internal/utils"
	"github.com/scharc/snaprepo/internal/walk"
)

const (
	rootUse              = "snaprepo"
	rootShortDescription = "format your project for AI tools"
	rootLongDescription  = `snaprepo creates an AI-friendly Markdown snapshot of a project:
a directory tree plus the contents of included files, with secrets redacted
and binaries excluded. Without a subcommand the snapshot is copied to the
system clipboard.`

	snapUse              = "snap"
	snapShortDescription = "write a Markdown snapshot of the project to a file"
	streamUse            = "stream"
	streamShort          = "stream the snapshot to stdout for piping"
	tokensUse            = "tokens [file]"
	tokensShort          = "print a token analysis of a snapshot file"

	pathFlagName        = "path"
	outputFlagName      = "output"
	maxFileSizeFlagName = "max-file-size"
	summaryFlagName     = "summary"
	forceFlagName       = "force"
	skipCommonFlagName  = "skip-common"
	skipFilesFlagName   = "skip-files"
	tokensFlagName      = "tokens"
	configFlagName      = "config"
	versionFlagName     = "version"

	pathFlagDescription        = "path to the project directory"
	outputFlagDescription      = "output markdown file (default: <projectdir>_source.md)"
	maxFileSizeFlagDescription = "maximum file size in bytes"
	summaryFlagDescription     = "print project statistics after the run"
	forceFlagDescription       = "overwrite an existing output file without asking"
	skipCommonFlagDescription  = "skip commonly referenced files (LICENSE, README boilerplate, ...)"
	skipFilesFlagDescription   = "additional file or directory patterns to skip"
	tokensFlagDescription      = "append per-model token estimates to the snapshot"
	configFlagDescription      = "configuration file to use instead of " + config.ConfigFileName
	versionFlagDescription     = "display application version"

	versionTemplate        = "snaprepo version: %s\n"
	defaultOutputSuffix    = "_source.md"
	overwritePromptFormat  = "File %s already exists. Overwrite? [y/N]: "
	cancelledMessage       = "operation cancelled"
	snapshotWrittenFormat  = "snapshot created at %s"
	clipboardDoneMessage   = "project snapshot copied to clipboard"
	defaultSnapshotMissing = "no snapshot found at %s; run `snaprepo snap` or pass a file name"
)

// Execute runs the snaprepo application.
func Execute(logger *zap.Logger) error {
	rootCommand := createRootCommand(logger)
	return rootCommand.Execute()
}

// snapshotOptions carries the resolved per-run settings shared by the root,
// snap, and stream commands.
type snapshotOptions struct {
	projectPath    string
	outputPath     string
	maxFileSize    int64
	summaryEnabled bool
	skipCommon     bool
	skipFiles      []string
	tokensEnabled  bool
	configPath     string
}

func createRootCommand(logger *zap.Logger) *cobra.Command {
	var showVersion bool
	options := &snapshotOptions{}

	rootCommand := &cobra.Command{
		Use:          rootUse,
		Short:        rootShortDescription,
		Long:         rootLongDescription,
		SilenceUsage: true,
		PersistentPreRun: func(command *cobra.Command, arguments []string) {
			if showVersion {
				fmt.Printf(versionTemplate, utils.GetApplicationVersion())
				os.Exit(0)
			}
		},
		RunE: func(command *cobra.Command, arguments []string) error {
			if resolveError := resolveOptions(command, options); resolveError != nil {
				return resolveError
			}
			return runClipboard(options, logger)
		},
	}
	rootCommand.PersistentFlags().BoolVar(&showVersion, versionFlagName, false, versionFlagDescription)
	rootCommand.PersistentFlags().StringVar(&options.configPath, configFlagName, "", configFlagDescription)
	addSnapshotFlags(rootCommand, options)

	rootCommand.AddCommand(
		createSnapCommand(logger),
		createStreamCommand(logger),
		createTokensCommand(logger),
	)
	rootCommand.InitDefaultHelpCmd()
	rootCommand.InitDefaultCompletionCmd()
	return rootCommand
}

// addSnapshotFlags registers the flags shared by every snapshot-producing command.
func addSnapshotFlags(command *cobra.Command, options *snapshotOptions) {
	command.Flags().StringVarP(&options.projectPath, pathFlagName, "p", ".", pathFlagDescription)
	command.Flags().Int64Var(&options.maxFileSize, maxFileSizeFlagName, classify.DefaultMaxFileSize, maxFileSizeFlagDescription)
	command.Flags().BoolVar(&options.skipCommon, skipCommonFlagName, false, skipCommonFlagDescription)
	command.Flags().StringArrayVar(&options.skipFiles, skipFilesFlagName, nil, skipFilesFlagDescription)
}

func createSnapCommand(logger *zap.Logger) *cobra.Command {
	options := &snapshotOptions{summaryEnabled: true}
	var forceOverwrite bool

	snapCommand := &cobra.Command{
		Use:   snapUse,
		Short: snapShortDescription,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			if resolveError := resolveOptions(command, options); resolveError != nil {
				return resolveError
			}
			return runSnap(options, forceOverwrite, logger)
		},
	}
	addSnapshotFlags(snapCommand, options)
	snapCommand.Flags().StringVarP(&options.outputPath, outputFlagName, "o", "", outputFlagDescription)
	snapCommand.Flags().BoolVar(&options.summaryEnabled, summaryFlagName, true, summaryFlagDescription)
	snapCommand.Flags().BoolVarP(&forceOverwrite, forceFlagName, "f", false, forceFlagDescription)
	snapCommand.Flags().BoolVar(&options.tokensEnabled, tokensFlagName, false, tokensFlagDescription)
	return snapCommand
}

func createStreamCommand(logger *zap.Logger) *cobra.Command {
	options := &snapshotOptions{}

	streamCommand := &cobra.Command{
		Use:   streamUse,
		Short: streamShort,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			if resolveError := resolveOptions(command, options); resolveError != nil {
				return resolveError
			}
			return runStream(options, logger)
		},
	}
	addSnapshotFlags(streamCommand, options)
	return streamCommand
}

func createTokensCommand(logger *zap.Logger) *cobra.Command {
	tokensCommand := &cobra.Command{
		Use:   tokensUse,
		Short: tokensShort,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			snapshotPath := ""
			if len(arguments) > 0 {
				snapshotPath = arguments[0]
			}
			return runTokens(snapshotPath)
		},
	}
	return tokensCommand
}

// resolveOptions overlays file configuration onto flag defaults. Flags the
// user set explicitly always win over configuration values.
func resolveOptions(command *cobra.Command, options *snapshotOptions) error {
	configPath, _ := command.Root().PersistentFlags().GetString(configFlagName)
	if configPath == "" {
		configPath = options.configPath
	}
	configuration, loadError := config.Load(config.LoadOptions{ExplicitFilePath: configPath})
	if loadError != nil {
		return loadError
	}

	flags := command.Flags()
	if configuration.Output != "" && !flags.Changed(outputFlagName) {
		options.outputPath = configuration.Output
	}
	if configuration.MaxFileSize > 0 && !flags.Changed(maxFileSizeFlagName) {
		options.maxFileSize = configuration.MaxFileSize
	}
	if configuration.Summary != nil && !flags.Changed(summaryFlagName) {
		options.summaryEnabled = *configuration.Summary
	}
	if configuration.SkipCommon != nil && !flags.Changed(skipCommonFlagName) {
		options.skipCommon = *configuration.SkipCommon
	}
	if configuration.Tokens != nil && !flags.Changed(tokensFlagName) {
		options.tokensEnabled = *configuration.Tokens
	}
	options.skipFiles = append(options.skipFiles, configuration.Skip...)

	absoluteProjectPath, absoluteError := filepath.Abs(options.projectPath)
	if absoluteError != nil {
		return fmt.Errorf("resolving project path %s: %w", options.projectPath, absoluteError)
	}
	options.projectPath = absoluteProjectPath
	return nil
}

// newPipeline wires the pattern set, classifier, walker, and renderer for one run.
func newPipeline(options *snapshotOptions, logger *zap.Logger) (*walk.Walker, *render.Renderer, *types.RunStats, error) {
	patterns := ignore.Load(options.projectPath, ignore.LoadOptions{
		ExtraPatterns: options.skipFiles,
		SkipCommon:    options.skipCommon,
	}, logger)

	classifier := classify.New(options.projectPath, patterns, classify.Options{
		OutputPath:  options.outputPath,
		MaxFileSize: options.maxFileSize,
		Logger:      logger,
	})

	var counter tokenizer.Counter
	if options.tokensEnabled {
		createdCounter, counterError := tokenizer.NewCounter()
		if counterError != nil {
			return nil, nil, nil, counterError
		}
		counter = createdCounter
	}

	stats := &types.RunStats{}
	walker := walk.New(options.projectPath, classifier, stats, logger)
	renderer := render.New(classifier, stats, counter)
	return walker, renderer, stats, nil
}

// runSnap writes the buffered snapshot artifact to the output file.
func runSnap(options *snapshotOptions, forceOverwrite bool, logger *zap.Logger) error {
	if options.outputPath == "" {
		options.outputPath = filepath.Base(options.projectPath) + defaultOutputSuffix
	}

	if !forceOverwrite {
		if _, statError := os.Stat(options.outputPath); statError == nil {
			if !confirmOverwrite(options.outputPath) {
				logger.Info(cancelledMessage)
				return nil
			}
		}
	}

	walker, renderer, stats, pipelineError := newPipeline(options, logger)
	if pipelineError != nil {
		return pipelineError
	}

	walkResult, walkError := walker.Walk()
	if walkError != nil {
		return walkError
	}
	artifact, renderError := renderer.RenderBuffered(walkResult)
	if renderError != nil {
		return renderError
	}

	if writeError := os.WriteFile(options.outputPath, []byte(artifact), 0o644); writeError != nil {
		return fmt.Errorf("writing snapshot to %s: %w", options.outputPath, writeError)
	}

	logger.Info(fmt.Sprintf(snapshotWrittenFormat, options.outputPath))
	if options.summaryEnabled {
		printSummary(stats)
	}
	return nil
}

// runStream pipes the incremental chunk sequence to stdout.
func runStream(options *snapshotOptions, logger *zap.Logger) error {
	walker, renderer, _, pipelineError := newPipeline(options, logger)
	if pipelineError != nil {
		return pipelineError
	}

	walkResult, walkError := walker.Walk()
	if walkError != nil {
		return walkError
	}
	return renderer.RenderIncremental(walkResult, func(chunk string) error {
		_, writeError := os.Stdout.WriteString(chunk)
		return writeError
	})
}

// runClipboard renders the snapshot and copies it to the system clipboard.
func runClipboard(options *snapshotOptions, logger *zap.Logger) error {
	walker, renderer, _, pipelineError := newPipeline(options, logger)
	if pipelineError != nil {
		return pipelineError
	}

	walkResult, walkError := walker.Walk()
	if walkError != nil {
		return walkError
	}
	artifact, renderError := renderer.RenderBuffered(walkResult)
	if renderError != nil {
		return renderError
	}

	if copyError := clipboard.NewService().Copy(artifact); copyError != nil {
		return fmt.Errorf("copying snapshot to clipboard: %w", copyError)
	}
	logger.Info(clipboardDoneMessage)
	return nil
}

// runTokens analyzes an existing snapshot file and prints per-model token usage.
func runTokens(snapshotPath string) error {
	if snapshotPath == "" {
		workingDirectory, workingDirectoryError := os.Getwd()
		if workingDirectoryError != nil {
			return fmt.Errorf("determine working directory: %w", workingDirectoryError)
		}
		snapshotPath = filepath.Base(workingDirectory) + defaultOutputSuffix
	}

	content, readError := os.ReadFile(snapshotPath)
	if readError != nil {
		if os.IsNotExist(readError) {
			return fmt.Errorf(defaultSnapshotMissing, snapshotPath)
		}
		return fmt.Errorf("reading snapshot %s: %w", snapshotPath, readError)
	}

	counter, counterError := tokenizer.NewCounter()
	if counterError != nil {
		return counterError
	}
	baselineTokens, countError := counter.CountString(string(content))
	if countError != nil {
		return countError
	}

	analysis := tokenizer.AnalyzeSnapshot(string(content))
	fmt.Printf("Snapshot statistics for %s\n", filepath.Base(snapshotPath))
	fmt.Printf("  characters: %d\n", analysis.Characters)
	fmt.Printf("  lines: %d\n", analysis.Lines)
	fmt.Printf("  code blocks: %d\n", analysis.CodeBlocks)
	fmt.Println("Model token estimates:")
	for _, estimate := range tokenizer.EstimateAll(baselineTokens) {
		fmt.Printf("  %s: ~%d tokens | max context %d | usage %.1f%% | remaining %d\n",
			estimate.Name, estimate.Tokens, estimate.MaxContext, estimate.UsagePercent, estimate.Remaining)
	}
	return nil
}

// confirmOverwrite asks on stderr whether the existing output file may be
// replaced and reads the answer from stdin.
func confirmOverwrite(outputPath string) bool {
	fmt.Fprintf(os.Stderr, overwritePromptFormat, outputPath)
	var answer string
	if _, scanError := fmt.Scanln(&answer); scanError != nil {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}

// printSummary reports the run statistics on stderr.
func printSummary(stats *types.RunStats) {
	fmt.Fprintln(os.Stderr, "Project statistics:")
	fmt.Fprintf(os.Stderr, "  files scanned: %d\n", stats.TotalFiles)
	fmt.Fprintf(os.Stderr, "  files included: %d\n", stats.IncludedFiles)
	fmt.Fprintf(os.Stderr, "  binary files: %d\n", stats.BinaryFiles)
	fmt.Fprintf(os.Stderr, "  ignored files: %d\n", stats.IgnoredFiles)
	fmt.Fprintf(os.Stderr, "  total size: %s\n", utils.FormatFileSize(stats.TotalBytes))
	fmt.Fprintf(os.Stderr, "  languages: %s\n", strings.Join(stats.Languages(), ", "))
}
