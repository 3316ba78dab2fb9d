package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/temirov/dirtree/internal/types"
	"github.com/temirov/dirtree/internal/utils"
)

// LoadOptions controls how application configuration is discovered.
type LoadOptions struct {
	WorkingDirectory string
	ExplicitFilePath string
}

// ApplicationConfiguration holds command defaults read from configuration files.
type ApplicationConfiguration struct {
	Tree TreeConfiguration `mapstructure:"tree" yaml:"tree"`
}

// TreeConfiguration mirrors types.Configuration with optional fields so that
// a local file only overrides the keys it sets.
type TreeConfiguration struct {
	MaxDepth        *int     `mapstructure:"max_depth" yaml:"max_depth,omitempty"`
	Indent          *string  `mapstructure:"indent" yaml:"indent,omitempty"`
	ShowFiles       *bool    `mapstructure:"show_files" yaml:"show_files,omitempty"`
	ShowHidden      *bool    `mapstructure:"show_hidden" yaml:"show_hidden,omitempty"`
	Ignore          []string `mapstructure:"ignore" yaml:"ignore"`
	Sort            string   `mapstructure:"sort" yaml:"sort,omitempty"`
	Format          string   `mapstructure:"format" yaml:"format,omitempty"`
	Extended        *bool    `mapstructure:"extended" yaml:"extended,omitempty"`
	BoldDirectories *bool    `mapstructure:"bold_directories" yaml:"bold_directories,omitempty"`
	UseGitignore    *bool    `mapstructure:"use_gitignore" yaml:"use_gitignore,omitempty"`
	UseIgnoreFile   *bool    `mapstructure:"use_ignore_file" yaml:"use_ignore_file,omitempty"`
	Clipboard       *bool    `mapstructure:"clipboard" yaml:"clipboard,omitempty"`
}

// LoadApplicationConfiguration loads configuration from global and local files.
func LoadApplicationConfiguration(options LoadOptions) (ApplicationConfiguration, error) {
	workingDirectory := options.WorkingDirectory
	if workingDirectory == "" {
		currentDirectory, err := os.Getwd()
		if err != nil {
			return ApplicationConfiguration{}, fmt.Errorf("determine working directory: %w", err)
		}
		workingDirectory = currentDirectory
	}

	var merged ApplicationConfiguration

	if globalPath, err := GlobalConfigurationPath(); err == nil {
		globalConfig, loadErr := loadConfigurationFromPath(globalPath)
		if loadErr != nil {
			return ApplicationConfiguration{}, loadErr
		}
		merged = merged.Merge(globalConfig)
	}

	localPath, resolveErr := resolveLocalConfigPath(workingDirectory, options.ExplicitFilePath)
	if resolveErr != nil {
		return ApplicationConfiguration{}, resolveErr
	}
	localConfig, loadErr := loadConfigurationFromPath(localPath)
	if loadErr != nil {
		return ApplicationConfiguration{}, loadErr
	}
	merged = merged.Merge(localConfig)

	if merged.Tree.Ignore != nil {
		merged.Tree.Ignore = utils.NormalizePatterns(merged.Tree.Ignore)
	}
	return merged, nil
}

// GlobalConfigurationPath returns the per-user configuration file location.
func GlobalConfigurationPath() (string, error) {
	homeDirectory, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory for configuration: %w", err)
	}
	if homeDirectory == "" {
		return "", fmt.Errorf("resolve home directory for configuration: empty home")
	}
	return filepath.Join(homeDirectory, utils.GlobalConfigDirectoryName, utils.GlobalConfigFileName), nil
}

func resolveLocalConfigPath(workingDirectory, explicitPath string) (string, error) {
	if explicitPath != "" {
		if filepath.IsAbs(explicitPath) {
			return explicitPath, nil
		}
		if workingDirectory == "" {
			absolute, err := filepath.Abs(explicitPath)
			if err != nil {
				return "", fmt.Errorf("resolve configuration path %s: %w", explicitPath, err)
			}
			return absolute, nil
		}
		return filepath.Join(workingDirectory, explicitPath), nil
	}
	return filepath.Join(workingDirectory, utils.LocalConfigFileName), nil
}

func loadConfigurationFromPath(path string) (ApplicationConfiguration, error) {
	if path == "" {
		return ApplicationConfiguration{}, nil
	}
	info, statErr := os.Stat(path)
	if statErr != nil {
		if os.IsNotExist(statErr) {
			return ApplicationConfiguration{}, nil
		}
		return ApplicationConfiguration{}, fmt.Errorf("stat configuration %s: %w", path, statErr)
	}
	if info.IsDir() {
		return ApplicationConfiguration{}, fmt.Errorf("configuration path %s is a directory", path)
	}

	reader := viper.New()
	reader.SetConfigFile(path)
	reader.SetConfigType("yaml")
	if readErr := reader.ReadInConfig(); readErr != nil {
		return ApplicationConfiguration{}, fmt.Errorf("read configuration from %s: %w", path, readErr)
	}
	var config ApplicationConfiguration
	if decodeErr := reader.Unmarshal(&config); decodeErr != nil {
		return ApplicationConfiguration{}, fmt.Errorf("decode configuration from %s: %w", path, decodeErr)
	}
	return config, nil
}

// Merge overlays override onto the receiver returning the combined configuration.
func (config ApplicationConfiguration) Merge(override ApplicationConfiguration) ApplicationConfiguration {
	result := config
	result.Tree = result.Tree.merge(override.Tree)
	return result
}

func (config TreeConfiguration) merge(override TreeConfiguration) TreeConfiguration {
	result := config
	if override.MaxDepth != nil {
		result.MaxDepth = cloneInt(override.MaxDepth)
	}
	if override.Indent != nil {
		indent := *override.Indent
		result.Indent = &indent
	}
	if override.ShowFiles != nil {
		result.ShowFiles = cloneBool(override.ShowFiles)
	}
	if override.ShowHidden != nil {
		result.ShowHidden = cloneBool(override.ShowHidden)
	}
	if override.Ignore != nil {
		result.Ignore = append([]string{}, utils.NormalizePatterns(override.Ignore)...)
	}
	if override.Sort != "" {
		result.Sort = override.Sort
	}
	if override.Format != "" {
		result.Format = override.Format
	}
	if override.Extended != nil {
		result.Extended = cloneBool(override.Extended)
	}
	if override.BoldDirectories != nil {
		result.BoldDirectories = cloneBool(override.BoldDirectories)
	}
	if override.UseGitignore != nil {
		result.UseGitignore = cloneBool(override.UseGitignore)
	}
	if override.UseIgnoreFile != nil {
		result.UseIgnoreFile = cloneBool(override.UseIgnoreFile)
	}
	if override.Clipboard != nil {
		result.Clipboard = cloneBool(override.Clipboard)
	}
	return result
}

// Apply overlays the configured keys onto base. Sort and format values are
// validated here so a bad file is reported before any walk starts.
func (config TreeConfiguration) Apply(base types.Configuration) (types.Configuration, error) {
	result := base.Clone()
	if config.MaxDepth != nil {
		result.MaxDepth = *config.MaxDepth
	}
	if config.Indent != nil {
		result.IndentUnit = *config.Indent
	}
	if config.ShowFiles != nil {
		result.ShowFiles = *config.ShowFiles
	}
	if config.ShowHidden != nil {
		result.ShowHidden = *config.ShowHidden
	}
	if config.Ignore != nil {
		result.IgnorePatterns = append([]string{}, config.Ignore...)
	}
	if config.Sort != "" {
		sortMode, err := types.ParseSortMode(config.Sort)
		if err != nil {
			return types.Configuration{}, fmt.Errorf("configuration key tree.sort: %w", err)
		}
		result.SortMode = sortMode
	}
	if config.Format != "" {
		format, err := types.ParseOutputFormat(config.Format)
		if err != nil {
			return types.Configuration{}, fmt.Errorf("configuration key tree.format: %w", err)
		}
		result.OutputFormat = format
	}
	if config.Extended != nil {
		result.Extended = *config.Extended
	}
	if config.BoldDirectories != nil {
		result.BoldDirectories = *config.BoldDirectories
	}
	if config.UseGitignore != nil {
		result.UseGitignore = *config.UseGitignore
	}
	return result, nil
}

// IgnoreFileEnabled reports whether the root's ignore file should be read. It defaults to true.
func (config TreeConfiguration) IgnoreFileEnabled() bool {
	return config.UseIgnoreFile == nil || *config.UseIgnoreFile
}

// ClipboardEnabled reports whether rendered output should be copied by default.
func (config TreeConfiguration) ClipboardEnabled() bool {
	return config.Clipboard != nil && *config.Clipboard
}

func cloneBool(value *bool) *bool {
	if value == nil {
		return nil
	}
	cloned := *value
	return &cloned
}

func cloneInt(value *int) *int {
	if value == nil {
		return nil
	}
	cloned := *value
	return &cloned
}
