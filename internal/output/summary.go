package output

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/temirov/dirtree/internal/types"
	"github.com/temirov/dirtree/internal/utils"
)

const (
	summaryLineFormat     = "Summary: %s %s, %s %s, %s ignored"
	summaryElapsedFormat  = " in %s"
	summaryRootFormat     = "Root: %s\n"
	summaryCancelledLine  = "Scan cancelled"
	summaryErrorFormat    = "Scan failed: %s"
	summarySkippedHeader  = "Skipped:\n"
	summaryIgnoredHeader  = "Ignored:\n"
	summaryListItemFormat = "  %s\n"
)

// FormatSummaryLine formats the counts of a ScanResult into one line.
func FormatSummaryLine(result types.ScanResult) string {
	line := fmt.Sprintf(
		summaryLineFormat,
		utils.FormatCount(result.FileCount),
		utils.Pluralize(result.FileCount, "file", "files"),
		utils.FormatCount(result.DirCount),
		utils.Pluralize(result.DirCount, "directory", "directories"),
		utils.FormatCount(len(result.IgnoredItems)),
	)
	if result.Elapsed > 0 {
		line += fmt.Sprintf(summaryElapsedFormat, result.Elapsed.Round(time.Millisecond))
	}
	return line
}

// WriteScanResult writes a ScanResult as text or, for the JSON format, as an indented document.
// listItems includes the ignored and skipped paths in the text rendition.
func WriteScanResult(writer io.Writer, result types.ScanResult, format types.OutputFormat, listItems bool) error {
	if format == types.FormatJSON {
		encoded, encodeError := MarshalDocument(result)
		if encodeError != nil {
			return encodeError
		}
		_, writeError := writer.Write(append(encoded, '\n'))
		return writeError
	}

	var builder strings.Builder
	fmt.Fprintf(&builder, summaryRootFormat, result.RootPath)
	switch {
	case result.Cancelled:
		builder.WriteString(summaryCancelledLine + "\n")
	case !result.Success:
		fmt.Fprintf(&builder, summaryErrorFormat+"\n", result.ErrorMessage)
	}
	builder.WriteString(FormatSummaryLine(result) + "\n")
	if listItems {
		writeList(&builder, summaryIgnoredHeader, result.IgnoredItems)
		writeList(&builder, summarySkippedHeader, result.SkippedItems)
	}
	_, writeError := io.WriteString(writer, builder.String())
	return writeError
}

func writeList(builder *strings.Builder, header string, items []string) {
	if len(items) == 0 {
		return
	}
	builder.WriteString(header)
	for _, item := range items {
		fmt.Fprintf(builder, summaryListItemFormat, item)
	}
}
