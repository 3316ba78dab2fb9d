package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/temirov/dirtree/internal/services/export"
	"github.com/temirov/dirtree/internal/types"
	"github.com/temirov/dirtree/internal/utils"
)

// InitTarget identifies where configuration should be initialized.
type InitTarget string

const (
	// InitTargetLocal writes configuration into the working directory.
	InitTargetLocal InitTarget = "local"
	// InitTargetGlobal writes configuration into the global configuration directory.
	InitTargetGlobal InitTarget = "global"
)

// InitOptions controls how configuration initialization behaves.
type InitOptions struct {
	Target           InitTarget
	Force            bool
	WorkingDirectory string
}

// DefaultApplicationConfiguration spells out every key with its built-in default.
func DefaultApplicationConfiguration() ApplicationConfiguration {
	defaults := types.DefaultConfiguration()
	useIgnoreFile := true
	clipboard := false
	return ApplicationConfiguration{
		Tree: TreeConfiguration{
			MaxDepth:        &defaults.MaxDepth,
			Indent:          &defaults.IndentUnit,
			ShowFiles:       &defaults.ShowFiles,
			ShowHidden:      &defaults.ShowHidden,
			Ignore:          defaults.IgnorePatterns,
			Sort:            string(defaults.SortMode),
			Format:          string(defaults.OutputFormat),
			Extended:        &defaults.Extended,
			BoldDirectories: &defaults.BoldDirectories,
			UseGitignore:    &defaults.UseGitignore,
			UseIgnoreFile:   &useIgnoreFile,
			Clipboard:       &clipboard,
		},
	}
}

// InitializeConfiguration writes the default configuration to the requested target.
func InitializeConfiguration(options InitOptions) (string, error) {
	target := options.Target
	if target == "" {
		target = InitTargetLocal
	}
	var destinationPath string
	switch target {
	case InitTargetLocal:
		workingDirectory := options.WorkingDirectory
		if workingDirectory == "" {
			current, err := os.Getwd()
			if err != nil {
				return "", fmt.Errorf("determine working directory for configuration: %w", err)
			}
			workingDirectory = current
		}
		destinationPath = filepath.Join(workingDirectory, utils.LocalConfigFileName)
	case InitTargetGlobal:
		globalPath, err := GlobalConfigurationPath()
		if err != nil {
			return "", err
		}
		destinationPath = globalPath
	default:
		return "", fmt.Errorf("unsupported init target %q", target)
	}

	encoded, encodeErr := yaml.Marshal(DefaultApplicationConfiguration())
	if encodeErr != nil {
		return "", fmt.Errorf("encode default configuration: %w", encodeErr)
	}

	if err := export.WriteFile(destinationPath, encoded, options.Force); err != nil {
		if errors.Is(err, export.ErrExists) {
			return "", fmt.Errorf("configuration file already exists at %s", destinationPath)
		}
		return "", fmt.Errorf("write configuration to %s: %w", destinationPath, err)
	}

	return destinationPath, nil
}
