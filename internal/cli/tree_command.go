package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/temirov/dirtree/internal/services/export"
	"github.com/temirov/dirtree/internal/types"
)

// renderOptions stores the flags that only affect how a tree is rendered.
type renderOptions struct {
	format          string
	indent          string
	extended        bool
	boldDirectories bool
	outputPath      string
	force           bool
	clipboard       bool
}

// createTreeCommand returns the tree subcommand.
func createTreeCommand(app *application) *cobra.Command {
	var walkConfiguration treeOptions
	var renderConfiguration renderOptions
	defaults := types.DefaultConfiguration()

	treeCommand := &cobra.Command{
		Use:     treeUse,
		Aliases: []string{treeAlias},
		Short:   treeShortDescription,
		Long:    treeLongDescription,
		Example: treeUsageExample,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			rootPath, err := resolveRootPath(arguments, 0)
			if err != nil {
				return err
			}
			configuration, fileConfiguration, err := app.resolveConfiguration(command, &walkConfiguration, rootPath)
			if err != nil {
				return err
			}
			configuration, err = applyRenderFlags(command, renderConfiguration, configuration)
			if err != nil {
				return err
			}
			copyToClipboard := fileConfiguration.ClipboardEnabled()
			if command.Flags().Changed(clipboardFlagName) {
				copyToClipboard = renderConfiguration.clipboard
			}
			return app.runTree(command, rootPath, configuration, renderConfiguration, copyToClipboard)
		},
	}

	addTreeFlags(treeCommand, &walkConfiguration)
	flagSet := treeCommand.Flags()
	flagSet.StringVarP(&renderConfiguration.format, formatFlagName, "f", string(defaults.OutputFormat), formatFlagDescription)
	flagSet.StringVar(&renderConfiguration.indent, indentFlagName, defaults.IndentUnit, indentFlagDescription)
	registerBooleanFlag(flagSet, &renderConfiguration.extended, extendedFlagName, defaults.Extended, extendedFlagDescription)
	registerBooleanFlag(flagSet, &renderConfiguration.boldDirectories, boldFlagName, defaults.BoldDirectories, boldFlagDescription)
	flagSet.StringVarP(&renderConfiguration.outputPath, outputFlagName, "o", "", outputFlagDescription)
	registerBooleanFlag(flagSet, &renderConfiguration.force, forceFlagName, false, forceFlagDescription)
	registerBooleanFlag(flagSet, &renderConfiguration.clipboard, clipboardFlagName, false, clipboardFlagDescription)
	return treeCommand
}

// applyRenderFlags overrides the rendering settings whose flags were set explicitly.
func applyRenderFlags(command *cobra.Command, options renderOptions, configuration types.Configuration) (types.Configuration, error) {
	changed := command.Flags().Changed
	if changed(formatFlagName) {
		format, err := types.ParseOutputFormat(options.format)
		if err != nil {
			return types.Configuration{}, err
		}
		configuration.OutputFormat = format
	}
	if changed(indentFlagName) {
		configuration.IndentUnit = options.indent
	}
	if changed(extendedFlagName) {
		configuration.Extended = options.extended
	}
	if changed(boldFlagName) {
		configuration.BoldDirectories = options.boldDirectories
	}
	return configuration, nil
}

// runTree renders the tree and delivers it to stdout or a file, optionally copying it to the clipboard.
func (app *application) runTree(command *cobra.Command, rootPath string, configuration types.Configuration, options renderOptions, copyToClipboard bool) error {
	rendered, err := app.treeBuilder().GenerateText(command.Context(), rootPath, configuration)
	if err != nil {
		return err
	}

	if options.outputPath != "" {
		targetPath := export.ResolvePath(options.outputPath, configuration.OutputFormat)
		if writeErr := export.WriteFile(targetPath, []byte(rendered), options.force); writeErr != nil {
			return writeErr
		}
		fmt.Fprintf(command.ErrOrStderr(), messageSavedFormat, targetPath)
	} else if _, writeErr := io.WriteString(command.OutOrStdout(), rendered); writeErr != nil {
		return writeErr
	}

	if copyToClipboard {
		if copyErr := app.copier.Copy(rendered); copyErr != nil {
			app.logger.Warn(fmt.Sprintf(warningClipboardFormat, copyErr))
		}
	}
	return nil
}
