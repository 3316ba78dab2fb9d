// Package walker implements the depth-first directory traversal shared by scans, tree builds, and renders.
package walker

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/temirov/dirtree/internal/pattern"
	"github.com/temirov/dirtree/internal/sorter"
	"github.com/temirov/dirtree/internal/types"
)

const (
	// DefaultFileProgressInterval is the number of counted files between progress reports.
	DefaultFileProgressInterval = 100
	// DefaultDirectoryProgressInterval is the number of counted directories between progress reports.
	DefaultDirectoryProgressInterval = 10

	warningReadDirectoryFormat = "Warning: skipping directory %s: %v"
	warningStatEntryFormat     = "Warning: unable to stat %s: %v"
	errorNotDirectoryFormat    = "%w: %s is not a directory"
	errorHandlerFormat         = "walk handler failed at %s: %w"
	errorGitignoreFormat       = "loading gitignore rules: %w"
)

// EventKind identifies a traversal event.
type EventKind int

const (
	EventEnterDirectory EventKind = iota
	EventFile
	EventLeaveDirectory
)

// Event is delivered to Options.Handler in depth-first pre-order.
// Siblings arrive in the configured sort order after ignore and visibility filtering.
type Event struct {
	Kind  EventKind
	Entry types.Entry
	Depth int
}

// Options parameterizes what a walk reports and retains.
type Options struct {
	// OnProgress receives coalesced file and directory counts.
	OnProgress func(filesScanned int, directoriesScanned int)
	// Warn receives messages about entries that were skipped.
	Warn func(message string)
	// Handler receives traversal events. Returning an error aborts the walk.
	Handler func(Event) error
	// FileProgressInterval overrides DefaultFileProgressInterval.
	FileProgressInterval int
	// DirectoryProgressInterval overrides DefaultDirectoryProgressInterval.
	DirectoryProgressInterval int
	// StartDepth is the depth assigned to the root, used when re-walking a subtree.
	StartDepth int
	// Gitignore overrides the matcher loaded when Configuration.UseGitignore is set.
	Gitignore *pattern.GitignoreMatcher
}

type walkContext struct {
	ctx           context.Context
	configuration types.Configuration
	options       Options
	matcher       *pattern.Matcher
	gitignore     *pattern.GitignoreMatcher
	result        *types.ScanResult
}

// Walk traverses rootPath and returns the scan summary.
// A root that cannot be listed fails the whole walk. Unreadable entries below
// the root are skipped and recorded.
func Walk(ctx context.Context, rootPath string, configuration types.Configuration, options Options) types.ScanResult {
	if ctx == nil {
		ctx = context.Background()
	}
	startedAt := time.Now()
	result := types.ScanResult{RootPath: rootPath, IgnoredItems: []string{}}

	finish := func(err error) types.ScanResult {
		result.Elapsed = time.Since(startedAt)
		switch {
		case err == nil && ctx.Err() != nil:
			err = types.ErrCancelled
			fallthrough
		case errors.Is(err, types.ErrCancelled):
			result.Cancelled = true
			result.Success = false
			result.Err = types.ErrCancelled
			result.ErrorMessage = types.ErrCancelled.Error()
		case err != nil:
			result.Success = false
			result.Err = err
			result.ErrorMessage = err.Error()
		default:
			result.Success = true
		}
		return result
	}

	absoluteRoot, absoluteError := filepath.Abs(rootPath)
	if absoluteError != nil {
		return finish(types.ClassifyPathError(rootPath, absoluteError))
	}
	result.RootPath = absoluteRoot

	rootInfo, statError := os.Stat(absoluteRoot)
	if statError != nil {
		return finish(types.ClassifyPathError(absoluteRoot, statError))
	}
	if !rootInfo.IsDir() {
		return finish(fmt.Errorf(errorNotDirectoryFormat, types.ErrNotFound, absoluteRoot))
	}
	rootEntries, readError := os.ReadDir(absoluteRoot)
	if readError != nil {
		return finish(types.ClassifyPathError(absoluteRoot, readError))
	}

	walk := &walkContext{
		ctx:           ctx,
		configuration: configuration,
		options:       options,
		matcher:       pattern.NewMatcher(configuration.IgnorePatterns),
		gitignore:     options.Gitignore,
		result:        &result,
	}
	if walk.options.Warn == nil {
		walk.options.Warn = func(string) {}
	}
	if walk.options.FileProgressInterval <= 0 {
		walk.options.FileProgressInterval = DefaultFileProgressInterval
	}
	if walk.options.DirectoryProgressInterval <= 0 {
		walk.options.DirectoryProgressInterval = DefaultDirectoryProgressInterval
	}
	if configuration.UseGitignore && walk.gitignore == nil {
		loaded, loadError := pattern.NewGitignoreMatcher(absoluteRoot)
		if loadError != nil {
			return finish(fmt.Errorf(errorGitignoreFormat, loadError))
		}
		walk.gitignore = loaded
	}

	rootEntry := types.Entry{
		Name:     displayName(absoluteRoot),
		FullPath: absoluteRoot,
		Kind:     types.KindDirectory,
		Modified: rootInfo.ModTime(),
	}
	return finish(walk.walkDirectory(rootEntry, options.StartDepth, rootEntries))
}

// walkDirectory emits the enter and leave events for entry and processes its children.
// preloaded holds an already-read listing for the root.
func (walk *walkContext) walkDirectory(entry types.Entry, depth int, preloaded []os.DirEntry) error {
	if walk.ctx.Err() != nil {
		return types.ErrCancelled
	}
	if err := walk.emit(Event{Kind: EventEnterDirectory, Entry: entry, Depth: depth}); err != nil {
		return err
	}
	if walk.configuration.DepthAllows(depth) {
		if err := walk.processChildren(entry, depth, preloaded); err != nil {
			return err
		}
	}
	return walk.emit(Event{Kind: EventLeaveDirectory, Entry: entry, Depth: depth})
}

func (walk *walkContext) processChildren(entry types.Entry, depth int, preloaded []os.DirEntry) error {
	listing := preloaded
	if listing == nil {
		readEntries, readError := os.ReadDir(entry.FullPath)
		if readError != nil {
			walk.options.Warn(fmt.Sprintf(warningReadDirectoryFormat, entry.FullPath, readError))
			walk.result.SkippedItems = append(walk.result.SkippedItems, entry.FullPath)
			return nil
		}
		listing = readEntries
	}

	kept, err := walk.partition(entry.FullPath, listing)
	if err != nil {
		return err
	}
	sorter.Sort(kept, walk.configuration.SortMode, sorter.EntryKey)

	for _, child := range kept {
		if walk.ctx.Err() != nil {
			return types.ErrCancelled
		}
		if child.IsDirectory() {
			walk.result.DirCount++
			if walk.result.DirCount%walk.options.DirectoryProgressInterval == 0 {
				walk.reportProgress()
			}
			if err := walk.walkDirectory(child, depth+1, nil); err != nil {
				return err
			}
			continue
		}
		walk.result.FileCount++
		if walk.result.FileCount%walk.options.FileProgressInterval == 0 {
			walk.reportProgress()
		}
		if err := walk.emit(Event{Kind: EventFile, Entry: child, Depth: depth + 1}); err != nil {
			return err
		}
	}
	return nil
}

// partition splits a listing into ignored entries, which are recorded, and kept entries.
// Symbolic links, hidden entries when hidden entries are off, and files when files are off
// are dropped without being recorded.
func (walk *walkContext) partition(directoryPath string, listing []os.DirEntry) ([]types.Entry, error) {
	kept := make([]types.Entry, 0, len(listing))
	for _, directoryEntry := range listing {
		if walk.ctx.Err() != nil {
			return nil, types.ErrCancelled
		}
		if directoryEntry.Type()&fs.ModeSymlink != 0 {
			continue
		}
		name := directoryEntry.Name()
		childPath := filepath.Join(directoryPath, name)
		isDirectory := directoryEntry.IsDir()
		if walk.matcher.ShouldIgnore(name) || walk.gitignore.IsIgnored(childPath, isDirectory) {
			walk.result.IgnoredItems = append(walk.result.IgnoredItems, childPath)
			continue
		}
		if !walk.configuration.ShowHidden && pattern.IsHidden(name) {
			continue
		}
		if !isDirectory && !walk.configuration.ShowFiles {
			continue
		}
		child := types.Entry{Name: name, FullPath: childPath, Kind: types.KindFile}
		if isDirectory {
			child.Kind = types.KindDirectory
		}
		info, infoError := directoryEntry.Info()
		if infoError != nil {
			walk.options.Warn(fmt.Sprintf(warningStatEntryFormat, childPath, infoError))
			walk.result.SkippedItems = append(walk.result.SkippedItems, childPath)
			continue
		}
		child.Modified = info.ModTime()
		if !isDirectory {
			child.Size = info.Size()
		}
		kept = append(kept, child)
	}
	return kept, nil
}

func (walk *walkContext) emit(event Event) error {
	if walk.options.Handler == nil {
		return nil
	}
	if err := walk.options.Handler(event); err != nil {
		if errors.Is(err, types.ErrCancelled) || errors.Is(err, context.Canceled) {
			return types.ErrCancelled
		}
		return fmt.Errorf(errorHandlerFormat, event.Entry.FullPath, err)
	}
	return nil
}

func (walk *walkContext) reportProgress() {
	if walk.options.OnProgress != nil {
		walk.options.OnProgress(walk.result.FileCount, walk.result.DirCount)
	}
}

func displayName(absolutePath string) string {
	name := filepath.Base(absolutePath)
	if name == "." || name == string(filepath.Separator) || name == "" {
		return absolutePath
	}
	return name
}
