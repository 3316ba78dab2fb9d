package output

import (
	"bufio"
	"io"
	"strings"

	"github.com/temirov/dirtree/internal/treestore"
	"github.com/temirov/dirtree/internal/types"
)

const (
	markdownHeadingPrefix = "# "
	markdownItemPrefix    = "- "
	markdownNestIndent    = "  "
	markdownBold          = "**"
)

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`,
	"*", `\*`,
	"_", `\_`,
	"`", "\\`",
	"[", `\[`,
	"]", `\]`,
	"#", `\#`,
	"<", `\<`,
	">", `\>`,
)

// WriteMarkdown renders the root as a heading and every descendant as a nested list item.
func WriteMarkdown(writer io.Writer, node *treestore.Node, configuration types.Configuration) error {
	buffered := bufio.NewWriter(writer)
	filter := newRenderFilter(node, configuration)
	buffered.WriteString(markdownHeadingPrefix)
	buffered.WriteString(escapeMarkdown(node.Name()))
	buffered.WriteString("\n")
	children := filter.children(node)
	if len(children) > 0 {
		buffered.WriteString("\n")
	}
	writeMarkdownItems(buffered, filter, children, 0, configuration.BoldDirectories)
	return buffered.Flush()
}

func writeMarkdownItems(writer *bufio.Writer, filter *renderFilter, nodes []*treestore.Node, level int, boldDirectories bool) {
	indent := strings.Repeat(markdownNestIndent, level)
	for _, node := range nodes {
		writer.WriteString(indent)
		writer.WriteString(markdownItemPrefix)
		name := escapeMarkdown(node.Name())
		if node.IsDirectory() && boldDirectories {
			name = markdownBold + name + markdownBold
		}
		writer.WriteString(name)
		writer.WriteString("\n")
		writeMarkdownItems(writer, filter, filter.children(node), level+1, boldDirectories)
	}
}

func escapeMarkdown(value string) string {
	return markdownEscaper.Replace(value)
}
