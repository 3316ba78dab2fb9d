package cli

import (
	"github.com/spf13/cobra"

	"github.com/temirov/dirtree/internal/browser"
	"github.com/temirov/dirtree/internal/types"
)

// createBrowseCommand returns the browse subcommand.
func createBrowseCommand(app *application) *cobra.Command {
	var walkConfiguration treeOptions
	var matchMode string

	browseCommand := &cobra.Command{
		Use:     browseUse,
		Aliases: []string{browseAlias},
		Short:   browseShortDescription,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			mode, err := types.ParseMatchMode(matchMode)
			if err != nil {
				return err
			}
			rootPath, err := resolveRootPath(arguments, 0)
			if err != nil {
				return err
			}
			configuration, _, err := app.resolveConfiguration(command, &walkConfiguration, rootPath)
			if err != nil {
				return err
			}
			return browser.Run(command.Context(), browser.Options{
				RootPath:      rootPath,
				Configuration: configuration,
				MatchMode:     mode,
				Warn: func(message string) {
					app.logger.Debug(message)
				},
			}, command.ErrOrStderr())
		},
	}

	addTreeFlags(browseCommand, &walkConfiguration)
	browseCommand.Flags().StringVarP(&matchMode, modeFlagName, "m", string(types.MatchContains), modeFlagDescription)
	return browseCommand
}
