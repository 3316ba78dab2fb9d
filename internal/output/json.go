package output

import (
	"encoding/json"
	"io"

	"github.com/temirov/dirtree/internal/treestore"
	"github.com/temirov/dirtree/internal/types"
	"github.com/temirov/dirtree/internal/utils"
)

// Document converts node into the JSON document shape. Directories always
// carry a children list; files carry size and modification time only when the
// configuration asks for extended metadata.
func Document(node *treestore.Node, configuration types.Configuration) *types.TreeDocument {
	if node == nil {
		return nil
	}
	return buildDocument(newRenderFilter(node, configuration), node, configuration.Extended)
}

func buildDocument(filter *renderFilter, node *treestore.Node, extended bool) *types.TreeDocument {
	document := &types.TreeDocument{
		Name: node.Name(),
		Path: node.Path(),
		Type: types.NodeTypeFile,
	}
	if !node.IsDirectory() {
		if extended {
			size := node.Size()
			document.Size = &size
			document.Modified = utils.FormatISOTimestamp(node.Modified())
		}
		return document
	}
	document.Type = types.NodeTypeDirectory
	children := make([]*types.TreeDocument, 0, node.ChildCount())
	for _, child := range filter.children(node) {
		children = append(children, buildDocument(filter, child, extended))
	}
	document.Children = &children
	return document
}

// WriteJSON writes the indented JSON document followed by a newline.
func WriteJSON(writer io.Writer, node *treestore.Node, configuration types.Configuration) error {
	encoded, encodeError := MarshalDocument(Document(node, configuration))
	if encodeError != nil {
		return encodeError
	}
	_, writeError := writer.Write(append(encoded, '\n'))
	return writeError
}

// MarshalDocument encodes any value with the indentation used by every JSON rendition.
func MarshalDocument(value any) ([]byte, error) {
	return json.MarshalIndent(value, indentPrefix, indentSpacer)
}
