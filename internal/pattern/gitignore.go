package pattern

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// GitignoreMatcher applies .gitignore rules found below a root directory.
type GitignoreMatcher struct {
	matcher  gitignore.Matcher
	rootPath string
}

// NewGitignoreMatcher reads every .gitignore file below rootPath.
func NewGitignoreMatcher(rootPath string) (*GitignoreMatcher, error) {
	absoluteRoot, absoluteError := filepath.Abs(rootPath)
	if absoluteError != nil {
		return nil, fmt.Errorf("resolve gitignore root %s: %w", rootPath, absoluteError)
	}
	patterns, readError := gitignore.ReadPatterns(osfs.New(absoluteRoot), nil)
	if readError != nil {
		return nil, fmt.Errorf("read gitignore patterns below %s: %w", absoluteRoot, readError)
	}
	return &GitignoreMatcher{
		matcher:  gitignore.NewMatcher(patterns),
		rootPath: absoluteRoot,
	}, nil
}

// IsIgnored reports whether fullPath is excluded by the loaded rules.
// Paths outside the root are never ignored.
func (ignoreMatcher *GitignoreMatcher) IsIgnored(fullPath string, isDirectory bool) bool {
	if ignoreMatcher == nil {
		return false
	}
	relativePath, relativeError := filepath.Rel(ignoreMatcher.rootPath, fullPath)
	if relativeError != nil || relativePath == "." || strings.HasPrefix(relativePath, "..") {
		return false
	}
	segments := strings.Split(filepath.ToSlash(relativePath), "/")
	return ignoreMatcher.matcher.Match(segments, isDirectory)
}

// RootPath returns the directory the rules were loaded from.
func (ignoreMatcher *GitignoreMatcher) RootPath() string {
	return ignoreMatcher.rootPath
}
