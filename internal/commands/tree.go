// Package commands is the boundary between the presentation layer and the tree core.
package commands

import (
	"context"
	"fmt"

	"github.com/temirov/dirtree/internal/output"
	"github.com/temirov/dirtree/internal/treestore"
	"github.com/temirov/dirtree/internal/types"
)

const (
	// errorRenderFormat is used when a built tree cannot be rendered.
	errorRenderFormat = "rendering %s as %s: %w"
)

// BuildTree walks path and returns the materialized store.
func (treeBuilder *TreeBuilder) BuildTree(ctx context.Context, path string, configuration types.Configuration) (*treestore.Store, error) {
	return treestore.Build(ctx, path, configuration, treeBuilder.storeOptions())
}

// GenerateText renders path in the configured output format. JSON is returned as indented text.
func (treeBuilder *TreeBuilder) GenerateText(ctx context.Context, path string, configuration types.Configuration) (string, error) {
	store, buildError := treeBuilder.BuildTree(ctx, path, configuration)
	if buildError != nil {
		return "", buildError
	}
	rendered, renderError := output.Render(store.Root(), configuration)
	if renderError != nil {
		return "", fmt.Errorf(errorRenderFormat, path, configuration.OutputFormat, renderError)
	}
	return rendered, nil
}

// GenerateJSON returns the structured document for path.
func (treeBuilder *TreeBuilder) GenerateJSON(ctx context.Context, path string, configuration types.Configuration) (*types.TreeDocument, error) {
	store, buildError := treeBuilder.BuildTree(ctx, path, configuration)
	if buildError != nil {
		return nil, buildError
	}
	return output.Document(store.Root(), configuration), nil
}

// Refresh reloads node, or the whole tree when node is nil.
func Refresh(ctx context.Context, store *treestore.Store, node *treestore.Node) error {
	return store.Refresh(ctx, node)
}

// Find returns the nodes of store whose names match text under mode, in pre-order.
func Find(store *treestore.Store, text string, mode types.MatchMode) []*treestore.Node {
	return store.Find(text, mode)
}
