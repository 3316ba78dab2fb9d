// Package utils contains general helper functions used across the dirtree tool.
package utils

import (
	"path/filepath"
	"strings"
)

const patternSeparators = `/\`

// NormalizePatterns trims whitespace and trailing path separators from ignore
// patterns, since patterns are matched against entry names, then drops blanks
// and duplicates. The first occurrence of each pattern keeps its position.
func NormalizePatterns(patterns []string) []string {
	seen := make(map[string]struct{}, len(patterns))
	normalized := make([]string, 0, len(patterns))
	for _, pattern := range patterns {
		trimmed := strings.TrimSpace(pattern)
		if stripped := strings.TrimRight(trimmed, patternSeparators); stripped != "" {
			trimmed = stripped
		}
		if trimmed == "" {
			continue
		}
		if _, duplicate := seen[trimmed]; duplicate {
			continue
		}
		seen[trimmed] = struct{}{}
		normalized = append(normalized, trimmed)
	}
	return normalized
}

// RelativePathOrSelf returns fullPath relative to root with forward slashes,
// "." for the root itself, or the cleaned fullPath when no relative form exists.
func RelativePathOrSelf(fullPath, root string) string {
	cleanPath := filepath.Clean(fullPath)
	absoluteRoot, err := filepath.Abs(root)
	if err != nil {
		return cleanPath
	}
	relativePath, relErr := filepath.Rel(absoluteRoot, cleanPath)
	if relErr != nil {
		return cleanPath
	}
	return filepath.ToSlash(relativePath)
}
