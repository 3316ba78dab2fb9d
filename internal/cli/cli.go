// Package cli provides the command line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/dirtree/internal/commands"
	"github.com/temirov/dirtree/internal/config"
	"github.com/temirov/dirtree/internal/services/clipboard"
	"github.com/temirov/dirtree/internal/types"
	"github.com/temirov/dirtree/internal/utils"
)

const (
	versionFlagName      = "version"
	verboseFlagName      = "verbose"
	configFlagName       = "config"
	depthFlagName        = "depth"
	indentFlagName       = "indent"
	filesFlagName        = "files"
	hiddenFlagName       = "hidden"
	exclusionFlagName    = "e"
	sortFlagName         = "sort"
	gitignoreFlagName    = "gitignore"
	ignoreFileFlagName   = "ignore-file"
	formatFlagName       = "format"
	extendedFlagName     = "extended"
	boldFlagName         = "bold"
	outputFlagName       = "output"
	forceFlagName        = "force"
	clipboardFlagName    = "clipboard"
	listFlagName         = "list"
	modeFlagName         = "mode"
	globalFlagName       = "global"
	versionTemplate      = "dirtree version: %s\n"
	defaultPath          = "."
	rootUse              = "dirtree"
	rootShortDescription = "dirtree command line interface"
	rootLongDescription  = `dirtree walks a directory and renders it as a tree.
It prints plain text, Markdown, or JSON trees, scans directories with live progress, finds entries by name, and browses trees interactively.
Configuration is read from ~/.dirtree/config.yaml and ./.dirtree.yaml; explicit flags override it.`
	versionFlagDescription = "display application version"
	verboseFlagDescription = "log debug messages"
	configFlagDescription  = "configuration file to use instead of ./.dirtree.yaml"

	treeUse                = "tree [path]"
	scanUse                = "scan [path]"
	findUse                = "find <text> [path]"
	browseUse              = "browse [path]"
	configUse              = "config"
	configInitUse          = "init"
	treeAlias              = "t"
	scanAlias              = "s"
	findAlias              = "f"
	browseAlias            = "b"
	treeShortDescription   = "render a directory tree (" + treeAlias + ")"
	scanShortDescription   = "count files and directories with live progress (" + scanAlias + ")"
	findShortDescription   = "find entries by name (" + findAlias + ")"
	browseShortDescription = "browse a directory tree interactively (" + browseAlias + ")"
	configShortDescription = "manage configuration files"
	configInitDescription  = "write the default configuration"

	// treeLongDescription provides detailed help for the tree command.
	treeLongDescription = `Render the directory tree rooted at path.
Use --format to select text, markdown, or json output, --output to save it to a file, and --clipboard to copy it.`
	// treeUsageExample demonstrates tree command usage.
	treeUsageExample = `  # Render two levels as Markdown
  dirtree tree --depth 2 --format markdown ./internal

  # Exclude build output and save the JSON tree
  dirtree tree -e build -e '*.log' --format json --output tree.json .`

	// scanLongDescription provides detailed help for the scan command.
	scanLongDescription = `Walk path in the background and report its file and directory counts.
Progress is shown on a terminal; Ctrl-C cancels the walk and prints the partial counts.`
	// scanUsageExample demonstrates scan command usage.
	scanUsageExample = `  # Scan the home directory including hidden entries
  dirtree scan --hidden ~

  # Print the scan result as JSON with the ignored paths
  dirtree scan --format json .`

	// findLongDescription provides detailed help for the find command.
	findLongDescription = `Print the paths of entries whose names match text, in tree order.
Use --mode to select contains, case-sensitive, exact, wildcard, or fuzzy matching.`
	// findUsageExample demonstrates find command usage.
	findUsageExample = `  # Find Go test files
  dirtree find --mode wildcard '*_test.go' .`

	depthFlagDescription      = "maximum depth below the root (-1 for unlimited)"
	indentFlagDescription     = "indentation unit of every text tree level"
	filesFlagDescription      = "include files"
	hiddenFlagDescription     = "include hidden entries"
	exclusionFlagDescription  = "exclude entries whose names match the wildcard"
	sortFlagDescription       = "sibling order: dirs-first, files-first, name-asc, name-desc, modified-asc, modified-desc"
	gitignoreFlagDescription  = "honor .gitignore files"
	ignoreFileFlagDescription = "honor the .dirtreeignore file of the root"
	formatFlagDescription     = "output format: text, markdown, or json"
	extendedFlagDescription   = "include file sizes and modification times in JSON"
	boldFlagDescription       = "render directories in bold in Markdown"
	outputFlagDescription     = "write the rendered tree to this file or directory"
	forceFlagDescription      = "overwrite an existing file"
	clipboardFlagDescription  = "copy the rendered tree to the clipboard"
	listFlagDescription       = "list ignored and skipped paths"
	modeFlagDescription       = "match mode: contains, case-sensitive, exact, wildcard, or fuzzy"
	globalFlagDescription     = "write the global configuration instead of the local one"

	errorAbsolutePathFormat   = "abs failed for '%s': %w"
	warningClipboardFormat    = "clipboard copy failed: %v"
	messageSavedFormat        = "Saved %s\n"
	messageConfigurationSaved = "Configuration written to %s\n"
)

// application carries the collaborators shared by every command.
type application struct {
	logger     *zap.Logger
	verbose    bool
	configPath string
	copier     clipboard.Copier
	isTerminal func(io.Writer) bool
}

func newApplication() *application {
	return &application{
		copier:     clipboard.NewService(),
		isTerminal: writerIsTerminal,
	}
}

// Execute runs the dirtree application. Interrupt and terminate signals cancel the running command.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := newApplication()
	defer func() {
		if app.logger != nil {
			_ = app.logger.Sync()
		}
	}()
	rootCommand := createRootCommand(app)
	rootCommand.SetArgs(normalizeBooleanFlagArguments(rootCommand, os.Args[1:]))
	return rootCommand.ExecuteContext(ctx)
}

// createRootCommand builds the root Cobra command.
func createRootCommand(app *application) *cobra.Command {
	var showVersion bool

	rootCommand := &cobra.Command{
		Use:           rootUse,
		Short:         rootShortDescription,
		Long:          rootLongDescription,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(command *cobra.Command, arguments []string) error {
			if showVersion {
				_, err := fmt.Fprintf(command.OutOrStdout(), versionTemplate, utils.GetApplicationVersion())
				return err
			}
			return command.Help()
		},
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			if app.logger != nil {
				return nil
			}
			logger, err := utils.NewApplicationLogger(app.verbose)
			if err != nil {
				return fmt.Errorf(utils.LoggerInitializationFailedMessageFormat, err)
			}
			app.logger = logger
			return nil
		},
	}
	rootCommand.Flags().BoolVar(&showVersion, versionFlagName, false, versionFlagDescription)
	registerBooleanFlag(rootCommand.PersistentFlags(), &app.verbose, verboseFlagName, false, verboseFlagDescription)
	rootCommand.PersistentFlags().StringVar(&app.configPath, configFlagName, "", configFlagDescription)
	rootCommand.AddCommand(
		createTreeCommand(app),
		createScanCommand(app),
		createFindCommand(app),
		createBrowseCommand(app),
		createConfigCommand(),
	)
	rootCommand.InitDefaultHelpCmd()
	rootCommand.InitDefaultCompletionCmd()
	return rootCommand
}

// treeOptions stores the flags every tree-walking command shares.
type treeOptions struct {
	depth             int
	showFiles         bool
	showHidden        bool
	exclusionPatterns []string
	sortMode          string
	useGitignore      bool
	useIgnoreFile     bool
}

// addTreeFlags registers the walk flags on the command.
func addTreeFlags(command *cobra.Command, options *treeOptions) {
	defaults := types.DefaultConfiguration()
	flagSet := command.Flags()
	flagSet.IntVarP(&options.depth, depthFlagName, "d", defaults.MaxDepth, depthFlagDescription)
	registerBooleanFlag(flagSet, &options.showFiles, filesFlagName, defaults.ShowFiles, filesFlagDescription)
	registerBooleanFlag(flagSet, &options.showHidden, hiddenFlagName, defaults.ShowHidden, hiddenFlagDescription)
	flagSet.StringArrayVarP(&options.exclusionPatterns, exclusionFlagName, exclusionFlagName, nil, exclusionFlagDescription)
	flagSet.StringVar(&options.sortMode, sortFlagName, string(defaults.SortMode), sortFlagDescription)
	registerBooleanFlag(flagSet, &options.useGitignore, gitignoreFlagName, defaults.UseGitignore, gitignoreFlagDescription)
	registerBooleanFlag(flagSet, &options.useIgnoreFile, ignoreFileFlagName, true, ignoreFileFlagDescription)
}

// resolveConfiguration layers the built-in defaults, the configuration files,
// and the explicitly set flags, then appends the root's ignore file patterns.
func (app *application) resolveConfiguration(command *cobra.Command, options *treeOptions, rootPath string) (types.Configuration, config.TreeConfiguration, error) {
	applicationConfiguration, loadErr := config.LoadApplicationConfiguration(config.LoadOptions{ExplicitFilePath: app.configPath})
	if loadErr != nil {
		return types.Configuration{}, config.TreeConfiguration{}, loadErr
	}
	fileConfiguration := applicationConfiguration.Tree
	configuration, applyErr := fileConfiguration.Apply(types.DefaultConfiguration())
	if applyErr != nil {
		return types.Configuration{}, config.TreeConfiguration{}, applyErr
	}

	changed := command.Flags().Changed
	if changed(depthFlagName) {
		configuration.MaxDepth = options.depth
	}
	if changed(filesFlagName) {
		configuration.ShowFiles = options.showFiles
	}
	if changed(hiddenFlagName) {
		configuration.ShowHidden = options.showHidden
	}
	if changed(exclusionFlagName) {
		configuration.IgnorePatterns = utils.NormalizePatterns(append(configuration.IgnorePatterns, options.exclusionPatterns...))
	}
	if changed(sortFlagName) {
		sortMode, err := types.ParseSortMode(options.sortMode)
		if err != nil {
			return types.Configuration{}, config.TreeConfiguration{}, err
		}
		configuration.SortMode = sortMode
	}
	if changed(gitignoreFlagName) {
		configuration.UseGitignore = options.useGitignore
	}

	useIgnoreFile := fileConfiguration.IgnoreFileEnabled()
	if changed(ignoreFileFlagName) {
		useIgnoreFile = options.useIgnoreFile
	}
	if useIgnoreFile {
		extended, err := config.AppendIgnoreFilePatterns(configuration, rootPath)
		if err != nil {
			return types.Configuration{}, config.TreeConfiguration{}, err
		}
		configuration = extended
	}
	app.logger.Debug("resolved configuration", zap.String("root", rootPath), zap.Any("configuration", configuration))
	return configuration, fileConfiguration, nil
}

// treeBuilder returns a builder whose walk warnings go to the logger.
func (app *application) treeBuilder() *commands.TreeBuilder {
	return &commands.TreeBuilder{
		Warn: func(message string) {
			app.logger.Warn(message)
		},
	}
}

// resolveRootPath returns the absolute form of the optional path argument.
func resolveRootPath(arguments []string, index int) (string, error) {
	inputPath := defaultPath
	if len(arguments) > index {
		inputPath = arguments[index]
	}
	absolutePath, err := filepath.Abs(inputPath)
	if err != nil {
		return "", fmt.Errorf(errorAbsolutePathFormat, inputPath, err)
	}
	return filepath.Clean(absolutePath), nil
}

func writerIsTerminal(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(file.Fd()) || isatty.IsCygwinTerminal(file.Fd())
}
