// Package treestore materializes a walked subtree into an in-memory hierarchy
// for browsing, searching, and rendering.
//
// A Store is not safe for concurrent use. Refresh, Sort, Find, and rendering
// must be serialized by the caller.
package treestore

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/temirov/dirtree/internal/pattern"
	"github.com/temirov/dirtree/internal/sorter"
	"github.com/temirov/dirtree/internal/types"
	"github.com/temirov/dirtree/internal/walker"
)

const (
	errorForeignNodeFormat = "node %s does not belong to this tree"
	errorBuildFormat       = "build tree %s: %w"
	errorRefreshFormat     = "refresh %s: %w"
)

// ErrForeignNode reports a node that is not part of the store it was passed to.
var ErrForeignNode = errors.New("foreign node")

// Options carries the callbacks forwarded to every walk the store performs.
type Options struct {
	Warn       func(message string)
	OnProgress func(filesScanned int, directoriesScanned int)
}

// Store owns the root node and, transitively, every descendant.
type Store struct {
	root          *Node
	rootPath      string
	configuration types.Configuration
	options       Options
	gitignore     *pattern.GitignoreMatcher
	lastResult    types.ScanResult
}

// Build walks rootPath and materializes the kept entries. A root-level failure
// returns no store.
func Build(ctx context.Context, rootPath string, configuration types.Configuration, options Options) (*Store, error) {
	store := &Store{
		rootPath:      rootPath,
		configuration: configuration.Clone(),
		options:       options,
	}
	root, result, err := store.load(ctx, rootPath, 0)
	if err != nil {
		return nil, fmt.Errorf(errorBuildFormat, rootPath, err)
	}
	root.expanded = true
	store.root = root
	store.rootPath = root.path
	store.lastResult = result
	return store, nil
}

// adopt wraps a result produced by a walk that already materialized root.
func adopt(root *Node, configuration types.Configuration, options Options, result types.ScanResult) *Store {
	root.expanded = true
	return &Store{
		root:          root,
		rootPath:      root.path,
		configuration: configuration.Clone(),
		options:       options,
		lastResult:    result,
	}
}

// Root returns the root node.
func (store *Store) Root() *Node { return store.root }

// RootPath returns the absolute path of the root.
func (store *Store) RootPath() string { return store.rootPath }

// Configuration returns the settings the store was built with.
func (store *Store) Configuration() types.Configuration { return store.configuration.Clone() }

// Result returns the summary of the most recent walk.
func (store *Store) Result() types.ScanResult { return store.lastResult }

// Lookup follows child indexes from the root. An empty path returns the root.
func (store *Store) Lookup(indexes ...int) *Node {
	current := store.root
	for _, index := range indexes {
		if current == nil {
			return nil
		}
		current = current.Child(index)
	}
	return current
}

// Refresh discards the children of node and re-walks its subtree, leaving the
// rest of the store untouched. A nil node rebuilds the whole tree. When a
// subtree walk fails the node is left empty, marked stale, and the error is
// returned. When a full rebuild fails the previous tree is kept.
func (store *Store) Refresh(ctx context.Context, node *Node) error {
	if node == nil || node == store.root {
		return store.rebuild(ctx)
	}
	if node.root() != store.root {
		return fmt.Errorf("%w: "+errorForeignNodeFormat, ErrForeignNode, node.path)
	}
	if !node.isDirectory {
		return store.restat(node)
	}

	replacement, result, err := store.load(ctx, node.path, node.depth)
	if err != nil {
		for _, child := range node.children {
			child.parent = nil
		}
		node.children = nil
		node.stale = true
		return fmt.Errorf(errorRefreshFormat, node.path, err)
	}
	for _, child := range node.children {
		child.parent = nil
	}
	node.children = nil
	for _, child := range replacement.children {
		node.appendChild(child)
	}
	node.modified = replacement.modified
	node.stale = false
	store.lastResult = result
	return nil
}

func (store *Store) rebuild(ctx context.Context) error {
	root, result, err := store.load(ctx, store.rootPath, 0)
	if err != nil {
		return fmt.Errorf(errorRefreshFormat, store.rootPath, err)
	}
	root.expanded = true
	store.root = root
	store.lastResult = result
	return nil
}

func (store *Store) restat(node *Node) error {
	info, statError := os.Lstat(node.path)
	if statError != nil {
		node.stale = true
		return fmt.Errorf(errorRefreshFormat, node.path, types.ClassifyPathError(node.path, statError))
	}
	node.size = info.Size()
	node.modified = info.ModTime()
	node.stale = false
	return nil
}

// load walks path and returns the materialized subtree rooted at it.
func (store *Store) load(ctx context.Context, path string, startDepth int) (*Node, types.ScanResult, error) {
	if store.configuration.UseGitignore && store.gitignore == nil {
		matcher, loadError := pattern.NewGitignoreMatcher(store.rootPath)
		if loadError != nil {
			return nil, types.ScanResult{}, loadError
		}
		store.gitignore = matcher
	}
	builder := newBuilder()
	result := walker.Walk(ctx, path, store.configuration, walker.Options{
		OnProgress: store.options.OnProgress,
		Warn:       store.options.Warn,
		Handler:    builder.handle,
		StartDepth: startDepth,
		Gitignore:  store.gitignore,
	})
	if !result.Success {
		return nil, result, result.Err
	}
	return builder.root, result, nil
}

// Sort reorders every directory's children under mode and makes mode the active ordering.
func (store *Store) Sort(mode types.SortMode) {
	store.configuration.SortMode = mode
	store.root.visit(func(node *Node) {
		sorter.Sort(node.children, mode, nodeKey)
	})
}

// ExpandAll marks every directory as expanded.
func (store *Store) ExpandAll() {
	store.root.visit(func(node *Node) { node.SetExpanded(true) })
}

// CollapseAll collapses every directory below the root.
func (store *Store) CollapseAll() {
	store.root.visit(func(node *Node) { node.SetExpanded(false) })
	store.root.expanded = true
}

// ExpandTo expands every ancestor of node so that it becomes visible.
func (store *Store) ExpandTo(node *Node) {
	if node == nil {
		return
	}
	for _, ancestor := range node.Ancestors() {
		ancestor.SetExpanded(true)
	}
}

// Visible returns the nodes a view shows given the current expansion state, in pre-order.
func (store *Store) Visible() []*Node {
	var nodes []*Node
	var collect func(node *Node)
	collect = func(node *Node) {
		nodes = append(nodes, node)
		if !node.expanded {
			return
		}
		for _, child := range node.children {
			collect(child)
		}
	}
	collect(store.root)
	return nodes
}

func nodeKey(node *Node) sorter.Key {
	return sorter.Key{Name: node.name, IsDirectory: node.isDirectory, Modified: node.modified}
}

// builder assembles walker events into nodes. Events arrive sorted, so
// children are appended in display order.
type builder struct {
	root  *Node
	stack []*Node
}

func newBuilder() *builder {
	return &builder{}
}

func (builder *builder) handle(event walker.Event) error {
	switch event.Kind {
	case walker.EventEnterDirectory:
		node := newNode(event.Entry, event.Depth)
		if len(builder.stack) == 0 {
			builder.root = node
		} else {
			builder.stack[len(builder.stack)-1].appendChild(node)
		}
		builder.stack = append(builder.stack, node)
	case walker.EventFile:
		builder.stack[len(builder.stack)-1].appendChild(newNode(event.Entry, event.Depth))
	case walker.EventLeaveDirectory:
		builder.stack = builder.stack[:len(builder.stack)-1]
	}
	return nil
}

// Collector materializes a tree from walker events emitted by an outside walk.
type Collector struct {
	builder *builder
}

// NewCollector returns a Collector ready to receive events.
func NewCollector() *Collector {
	return &Collector{builder: newBuilder()}
}

// Handle is a walker.Options.Handler.
func (collector *Collector) Handle(event walker.Event) error {
	return collector.builder.handle(event)
}

// Store wraps the collected tree. It returns nil when the walk did not succeed.
func (collector *Collector) Store(configuration types.Configuration, options Options, result types.ScanResult) *Store {
	if !result.Success || collector.builder.root == nil {
		return nil
	}
	return adopt(collector.builder.root, configuration, options, result)
}
