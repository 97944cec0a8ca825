// Package config loads the optional snaprepo configuration files and merges
// them into the defaults the CLI flags override.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// ConfigFileName is the configuration file looked up in the home directory
// and in the working directory.
const ConfigFileName = ".snaprepo.yaml"

// LoadOptions controls how application configuration is discovered.
type LoadOptions struct {
	WorkingDirectory string
	ExplicitFilePath string
}

// Configuration holds the file-configurable defaults for snapshot runs.
// Pointer fields distinguish "unset" from an explicit false.
type Configuration struct {
	Output      string   `mapstructure:"output"`
	MaxFileSize int64    `mapstructure:"max_file_size"`
	Summary     *bool    `mapstructure:"summary"`
	SkipCommon  *bool    `mapstructure:"skip_common"`
	Skip        []string `mapstructure:"skip"`
	Tokens      *bool    `mapstructure:"tokens"`
}

// Load reads the global configuration from the user home directory, then the
// local one from the working directory (or the explicit path), and overlays
// the local values onto the global ones. Missing files contribute nothing.
func Load(options LoadOptions) (Configuration, error) {
	workingDirectory := options.WorkingDirectory
	if workingDirectory == "" {
		currentDirectory, workingDirectoryError := os.Getwd()
		if workingDirectoryError != nil {
			return Configuration{}, fmt.Errorf("determine working directory: %w", workingDirectoryError)
		}
		workingDirectory = currentDirectory
	}

	var merged Configuration

	if homeDirectory, homeError := os.UserHomeDir(); homeError == nil && homeDirectory != "" {
		globalConfiguration, loadError := loadFromPath(filepath.Join(homeDirectory, ConfigFileName))
		if loadError != nil {
			return Configuration{}, loadError
		}
		merged = merged.Merge(globalConfiguration)
	}

	localPath := filepath.Join(workingDirectory, ConfigFileName)
	if options.ExplicitFilePath != "" {
		localPath = options.ExplicitFilePath
		if !filepath.IsAbs(localPath) {
			localPath = filepath.Join(workingDirectory, localPath)
		}
	}
	localConfiguration, loadError := loadFromPath(localPath)
	if loadError != nil {
		return Configuration{}, loadError
	}
	merged = merged.Merge(localConfiguration)

	merged.Skip = deduplicate(merged.Skip)
	return merged, nil
}

func loadFromPath(path string) (Configuration, error) {
	fileInfo, statError := os.Stat(path)
	if statError != nil {
		if os.IsNotExist(statError) {
			return Configuration{}, nil
		}
		return Configuration{}, fmt.Errorf("stat configuration %s: %w", path, statError)
	}
	if fileInfo.IsDir() {
		return Configuration{}, fmt.Errorf("configuration path %s is a directory", path)
	}

	reader := viper.New()
	reader.SetConfigFile(path)
	reader.SetConfigType("yaml")
	if readError := reader.ReadInConfig(); readError != nil {
		return Configuration{}, fmt.Errorf("read configuration from %s: %w", path, readError)
	}
	var configuration Configuration
	if decodeError := reader.Unmarshal(&configuration); decodeError != nil {
		return Configuration{}, fmt.Errorf("decode configuration from %s: %w", path, decodeError)
	}
	return configuration, nil
}

// Merge overlays override onto the receiver returning the combined configuration.
func (configuration Configuration) Merge(override Configuration) Configuration {
	result := configuration
	if override.Output != "" {
		result.Output = override.Output
	}
	if override.MaxFileSize > 0 {
		result.MaxFileSize = override.MaxFileSize
	}
	if override.Summary != nil {
		result.Summary = cloneBool(override.Summary)
	}
	if override.SkipCommon != nil {
		result.SkipCommon = cloneBool(override.SkipCommon)
	}
	if len(override.Skip) > 0 {
		result.Skip = append([]string{}, deduplicate(override.Skip)...)
	}
	if override.Tokens != nil {
		result.Tokens = cloneBool(override.Tokens)
	}
	return result
}

// deduplicate removes duplicate patterns while preserving first-seen order.
func deduplicate(patterns []string) []string {
	if len(patterns) == 0 {
		return patterns
	}
	encountered := make(map[string]struct{}, len(patterns))
	result := make([]string, 0, len(patterns))
	for _, pattern := range patterns {
		if _, exists := encountered[pattern]; exists {
			continue
		}
		encountered[pattern] = struct{}{}
		result = append(result, pattern)
	}
	return result
}

func cloneBool(value *bool) *bool {
	if value == nil {
		return nil
	}
	cloned := *value
	return &cloned
}
