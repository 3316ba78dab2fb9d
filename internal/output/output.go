// Package output renders a materialized tree as plain text, Markdown, or JSON.
//
// Every renderer re-applies the configuration's depth, visibility, ignore, and
// sort rules to the nodes it is given, so a store built with a broad
// configuration can be rendered with a narrower one. Which sibling is last is
// decided after filtering and sorting.
package output

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/temirov/dirtree/internal/pattern"
	"github.com/temirov/dirtree/internal/sorter"
	"github.com/temirov/dirtree/internal/treestore"
	"github.com/temirov/dirtree/internal/types"
)

const (
	indentPrefix = ""
	indentSpacer = "  "

	treeBranchConnector = "├── "
	treeLastConnector   = "└── "
	treeBranchPadding   = "│   "
	treeLastPadding     = "    "
	treeBranchGlyph     = "│"

	errorUnsupportedFormat = "unsupported output format %q"
)

// ErrNothingToRender reports a nil node passed to a renderer.
var ErrNothingToRender = errors.New("nothing to render")

// Render returns the configured rendition of node and its kept descendants.
func Render(node *treestore.Node, configuration types.Configuration) (string, error) {
	var buffer bytes.Buffer
	if err := Write(&buffer, node, configuration); err != nil {
		return "", err
	}
	return buffer.String(), nil
}

// Write streams the configured rendition of node to writer.
func Write(writer io.Writer, node *treestore.Node, configuration types.Configuration) error {
	if node == nil {
		return ErrNothingToRender
	}
	switch configuration.OutputFormat {
	case types.FormatText, "":
		return WriteText(writer, node, configuration)
	case types.FormatMarkdown:
		return WriteMarkdown(writer, node, configuration)
	case types.FormatJSON:
		return WriteJSON(writer, node, configuration)
	default:
		return fmt.Errorf(errorUnsupportedFormat, configuration.OutputFormat)
	}
}

// renderFilter decides which children a renderer shows and in what order.
type renderFilter struct {
	configuration types.Configuration
	matcher       *pattern.Matcher
	baseDepth     int
}

func newRenderFilter(root *treestore.Node, configuration types.Configuration) *renderFilter {
	return &renderFilter{
		configuration: configuration,
		matcher:       pattern.NewMatcher(configuration.IgnorePatterns),
		baseDepth:     root.Depth(),
	}
}

// children returns the kept, sorted children of node, or nil when node sits at the depth limit.
func (filter *renderFilter) children(node *treestore.Node) []*treestore.Node {
	if !node.IsDirectory() || !filter.configuration.DepthAllows(node.Depth()-filter.baseDepth) {
		return nil
	}
	kept := make([]*treestore.Node, 0, node.ChildCount())
	for index := 0; index < node.ChildCount(); index++ {
		child := node.Child(index)
		if filter.matcher.ShouldIgnore(child.Name()) {
			continue
		}
		if !filter.configuration.ShowHidden && pattern.IsHidden(child.Name()) {
			continue
		}
		if !child.IsDirectory() && !filter.configuration.ShowFiles {
			continue
		}
		kept = append(kept, child)
	}
	sorter.Sort(kept, filter.configuration.SortMode, func(child *treestore.Node) sorter.Key {
		return sorter.Key{Name: child.Name(), IsDirectory: child.IsDirectory(), Modified: child.Modified()}
	})
	return kept
}
