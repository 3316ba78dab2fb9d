package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/temirov/dirtree/internal/commands"
	"github.com/temirov/dirtree/internal/types"
)

// createFindCommand returns the find subcommand.
func createFindCommand(app *application) *cobra.Command {
	var walkConfiguration treeOptions
	var matchMode string

	findCommand := &cobra.Command{
		Use:     findUse,
		Aliases: []string{findAlias},
		Short:   findShortDescription,
		Long:    findLongDescription,
		Example: findUsageExample,
		Args:    cobra.RangeArgs(1, 2),
		RunE: func(command *cobra.Command, arguments []string) error {
			mode, err := types.ParseMatchMode(matchMode)
			if err != nil {
				return err
			}
			rootPath, err := resolveRootPath(arguments, 1)
			if err != nil {
				return err
			}
			configuration, _, err := app.resolveConfiguration(command, &walkConfiguration, rootPath)
			if err != nil {
				return err
			}
			store, err := app.treeBuilder().BuildTree(command.Context(), rootPath, configuration)
			if err != nil {
				return err
			}
			matches := commands.Find(store, arguments[0], mode)
			app.logger.Debug(fmt.Sprintf("%d matches for %q", len(matches), arguments[0]))
			for _, match := range matches {
				if _, writeErr := fmt.Fprintln(command.OutOrStdout(), match.Path()); writeErr != nil {
					return writeErr
				}
			}
			return nil
		},
	}

	addTreeFlags(findCommand, &walkConfiguration)
	findCommand.Flags().StringVarP(&matchMode, modeFlagName, "m", string(types.MatchContains), modeFlagDescription)
	return findCommand
}
