package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/temirov/dirtree/internal/config"
)

// createConfigCommand returns the config command group.
func createConfigCommand() *cobra.Command {
	configCommand := &cobra.Command{
		Use:   configUse,
		Short: configShortDescription,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			return command.Help()
		},
	}
	configCommand.AddCommand(createConfigInitCommand())
	return configCommand
}

func createConfigInitCommand() *cobra.Command {
	var global bool
	var force bool

	initCommand := &cobra.Command{
		Use:   configInitUse,
		Short: configInitDescription,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			target := config.InitTargetLocal
			if global {
				target = config.InitTargetGlobal
			}
			path, err := config.InitializeConfiguration(config.InitOptions{Target: target, Force: force})
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(command.OutOrStdout(), messageConfigurationSaved, path)
			return err
		},
	}
	registerBooleanFlag(initCommand.Flags(), &global, globalFlagName, false, globalFlagDescription)
	registerBooleanFlag(initCommand.Flags(), &force, forceFlagName, false, forceFlagDescription)
	return initCommand
}
