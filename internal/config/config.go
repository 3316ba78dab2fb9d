// Package config loads dirtree configuration files and ignore files.
package config

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/temirov/dirtree/internal/types"
	"github.com/temirov/dirtree/internal/utils"
)

const ignoreCommentPrefix = "#"

// LoadIgnoreFilePatterns reads an ignore file and returns one wildcard per non-blank, non-comment line.
// A missing file yields no patterns.
//
// #nosec G304
func LoadIgnoreFilePatterns(ignoreFilePath string) ([]string, error) {
	fileHandle, openFileError := os.Open(ignoreFilePath)
	if openFileError != nil {
		if os.IsNotExist(openFileError) {
			return nil, nil
		}
		return nil, types.ClassifyPathError(ignoreFilePath, openFileError)
	}
	defer func() {
		closeError := fileHandle.Close()
		if closeError != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to close %s: %v\n", ignoreFilePath, closeError)
		}
	}()

	var ignorePatterns []string
	scanner := bufio.NewScanner(fileHandle)
	for scanner.Scan() {
		trimmedLine := strings.TrimSpace(scanner.Text())
		if trimmedLine == "" || strings.HasPrefix(trimmedLine, ignoreCommentPrefix) {
			continue
		}
		ignorePatterns = append(ignorePatterns, trimmedLine)
	}
	if scanError := scanner.Err(); scanError != nil {
		return nil, fmt.Errorf("read %s: %w", ignoreFilePath, scanError)
	}
	return ignorePatterns, nil
}

// AppendIgnoreFilePatterns returns configuration with the patterns of the
// ignore file found directly in rootPath appended to its ignore list.
func AppendIgnoreFilePatterns(configuration types.Configuration, rootPath string) (types.Configuration, error) {
	absoluteRoot, absError := filepath.Abs(rootPath)
	if absError != nil {
		return configuration, fmt.Errorf("resolve %s: %w", rootPath, absError)
	}
	filePatterns, loadError := LoadIgnoreFilePatterns(filepath.Join(absoluteRoot, utils.IgnoreFileName))
	if loadError != nil {
		return configuration, fmt.Errorf("loading %s from %s: %w", utils.IgnoreFileName, absoluteRoot, loadError)
	}
	if len(filePatterns) == 0 {
		return configuration, nil
	}
	result := configuration.Clone()
	result.IgnorePatterns = utils.NormalizePatterns(append(result.IgnorePatterns, filePatterns...))
	return result, nil
}
