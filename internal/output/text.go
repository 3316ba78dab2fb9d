package output

import (
	"bufio"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/temirov/dirtree/internal/treestore"
	"github.com/temirov/dirtree/internal/types"
)

// WriteText renders the box-drawing tree. The root name is the first line.
// Every descendant line starts with one indent unit, then one column per
// ancestor below the root, then the sibling connector. Columns are as wide as
// the indent unit.
func WriteText(writer io.Writer, node *treestore.Node, configuration types.Configuration) error {
	buffered := bufio.NewWriter(writer)
	filter := newRenderFilter(node, configuration)
	branchColumn, lastColumn := textColumns(configuration.IndentUnit)
	buffered.WriteString(node.Name())
	buffered.WriteString("\n")
	writeTextChildren(buffered, filter, node, configuration.IndentUnit, branchColumn, lastColumn)
	return buffered.Flush()
}

// textColumns returns the continuation columns drawn under a non-last and a
// last ancestor. An empty indent unit keeps the connector-wide columns.
func textColumns(indentUnit string) (string, string) {
	if indentUnit == "" {
		return treeBranchPadding, treeLastPadding
	}
	if strings.HasPrefix(indentUnit, " ") {
		_, width := utf8.DecodeRuneInString(indentUnit)
		return treeBranchGlyph + indentUnit[width:], indentUnit
	}
	return treeBranchGlyph + indentUnit, indentUnit
}

func writeTextChildren(writer *bufio.Writer, filter *renderFilter, node *treestore.Node, prefix string, branchColumn string, lastColumn string) {
	children := filter.children(node)
	for index, child := range children {
		isLast := index == len(children)-1
		connector, childPrefix := treeBranchConnector, prefix+branchColumn
		if isLast {
			connector, childPrefix = treeLastConnector, prefix+lastColumn
		}
		writer.WriteString(prefix)
		writer.WriteString(connector)
		writer.WriteString(child.Name())
		writer.WriteString("\n")
		writeTextChildren(writer, filter, child, childPrefix, branchColumn, lastColumn)
	}
}
