// Package types defines every cross‑package data structure used by the dirtree CLI.
package types

import (
	"fmt"
	"strings"
	"time"
)

const (
	NodeTypeFile      = "file"
	NodeTypeDirectory = "directory"

	CommandTree   = "tree"
	CommandScan   = "scan"
	CommandFind   = "find"
	CommandBrowse = "browse"

	// UnlimitedDepth disables the depth limit.
	UnlimitedDepth = -1
	// DefaultIndentUnit is four spaces.
	DefaultIndentUnit = "    "
)

// OutputFormat selects the Formatter rendition.
type OutputFormat string

const (
	FormatText     OutputFormat = "text"
	FormatMarkdown OutputFormat = "markdown"
	FormatJSON     OutputFormat = "json"
)

// ParseOutputFormat converts user input into an OutputFormat.
func ParseOutputFormat(value string) (OutputFormat, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "text", "txt", "plain":
		return FormatText, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unsupported output format %q", value)
	}
}

// FileExtension returns the export file extension for the format.
func (format OutputFormat) FileExtension() string {
	switch format {
	case FormatMarkdown:
		return ".md"
	case FormatJSON:
		return ".json"
	default:
		return ".txt"
	}
}

// SortMode selects a sibling ordering.
type SortMode string

const (
	SortNameAsc          SortMode = "name-asc"
	SortNameDesc         SortMode = "name-desc"
	SortModifiedAsc      SortMode = "modified-asc"
	SortModifiedDesc     SortMode = "modified-desc"
	SortFilesFirst       SortMode = "files-first"
	SortDirectoriesFirst SortMode = "dirs-first"
)

// SortModes lists every ordering in the order the browser cycles through them.
var SortModes = []SortMode{
	SortDirectoriesFirst,
	SortFilesFirst,
	SortNameAsc,
	SortNameDesc,
	SortModifiedAsc,
	SortModifiedDesc,
}

// ParseSortMode converts user input into a SortMode.
func ParseSortMode(value string) (SortMode, error) {
	normalized := SortMode(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return SortDirectoriesFirst, nil
	}
	for _, mode := range SortModes {
		if mode == normalized {
			return mode, nil
		}
	}
	return "", fmt.Errorf("unsupported sort mode %q", value)
}

// MatchMode selects how TreeStore.Find compares names.
type MatchMode string

const (
	MatchContains      MatchMode = "contains"
	MatchCaseSensitive MatchMode = "case-sensitive"
	MatchExact         MatchMode = "exact"
	MatchWildcard      MatchMode = "wildcard"
	MatchFuzzy         MatchMode = "fuzzy"
)

// ParseMatchMode converts user input into a MatchMode.
func ParseMatchMode(value string) (MatchMode, error) {
	switch MatchMode(strings.ToLower(strings.TrimSpace(value))) {
	case "", MatchContains:
		return MatchContains, nil
	case MatchCaseSensitive:
		return MatchCaseSensitive, nil
	case MatchExact:
		return MatchExact, nil
	case MatchWildcard:
		return MatchWildcard, nil
	case MatchFuzzy:
		return MatchFuzzy, nil
	default:
		return "", fmt.Errorf("unsupported match mode %q", value)
	}
}

// EntryKind distinguishes directories from files.
type EntryKind int

const (
	KindFile EntryKind = iota
	KindDirectory
)

// Entry is one filesystem entry read during a walk. It is not modified after it is read.
type Entry struct {
	Name     string
	FullPath string
	Kind     EntryKind
	Size     int64
	Modified time.Time
}

// IsDirectory reports whether the entry is a directory.
func (entry Entry) IsDirectory() bool {
	return entry.Kind == KindDirectory
}

// Configuration is supplied before each walk or render and is not mutated while one runs.
type Configuration struct {
	MaxDepth        int          `json:"maxDepth"`
	ShowHidden      bool         `json:"showHidden"`
	ShowFiles       bool         `json:"showFiles"`
	IgnorePatterns  []string     `json:"ignorePatterns,omitempty"`
	SortMode        SortMode     `json:"sortMode"`
	OutputFormat    OutputFormat `json:"outputFormat"`
	IndentUnit      string       `json:"indentUnit"`
	Extended        bool         `json:"extended,omitempty"`
	BoldDirectories bool         `json:"boldDirectories,omitempty"`
	UseGitignore    bool         `json:"useGitignore,omitempty"`
}

// DefaultIgnorePatterns are applied when no configuration provides a list.
var DefaultIgnorePatterns = []string{".git", "node_modules", ".idea", "__pycache__"}

// DefaultConfiguration returns the built-in settings.
func DefaultConfiguration() Configuration {
	return Configuration{
		MaxDepth:        UnlimitedDepth,
		ShowHidden:      false,
		ShowFiles:       true,
		IgnorePatterns:  append([]string(nil), DefaultIgnorePatterns...),
		SortMode:        SortDirectoriesFirst,
		OutputFormat:    FormatText,
		IndentUnit:      DefaultIndentUnit,
		BoldDirectories: true,
	}
}

// DepthAllows reports whether a directory at depth may have its children processed.
func (configuration Configuration) DepthAllows(depth int) bool {
	return configuration.MaxDepth <= 0 || depth < configuration.MaxDepth
}

// Clone returns a copy that shares no slices with the receiver.
func (configuration Configuration) Clone() Configuration {
	cloned := configuration
	cloned.IgnorePatterns = append([]string(nil), configuration.IgnorePatterns...)
	return cloned
}

// ScanResult is the summary of one walk. It is owned by the caller once the walk returns.
type ScanResult struct {
	RootPath     string        `json:"rootPath"`
	FileCount    int           `json:"fileCount"`
	DirCount     int           `json:"dirCount"`
	IgnoredItems []string      `json:"ignoredItems"`
	SkippedItems []string      `json:"skippedItems,omitempty"`
	Cancelled    bool          `json:"cancelled"`
	Success      bool          `json:"success"`
	ErrorMessage string        `json:"errorMessage,omitempty"`
	Elapsed      time.Duration `json:"elapsedNanoseconds,omitempty"`
	Err          error         `json:"-"`
}

// TreeDocument is the JSON rendition of one node and its descendants.
type TreeDocument struct {
	Name     string           `json:"name"`
	Path     string           `json:"path"`
	Type     string           `json:"type"`
	Size     *int64           `json:"size,omitempty"`
	Modified string           `json:"modified,omitempty"`
	Children *[]*TreeDocument `json:"children,omitempty"`
}

// CountNodes returns the number of descendants below the document, excluding itself.
func (document *TreeDocument) CountNodes() int {
	if document == nil || document.Children == nil {
		return 0
	}
	total := 0
	for _, child := range *document.Children {
		total += 1 + child.CountNodes()
	}
	return total
}
