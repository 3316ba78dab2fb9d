package utils

import (
	"github.com/dustin/go-humanize"
)

// FormatFileSize converts a byte length into a human-readable binary-unit string such as "1.5 KiB".
func FormatFileSize(bytes int64) string {
	if bytes < 0 {
		return "0 B"
	}
	return humanize.IBytes(uint64(bytes))
}

// FormatCount renders an integer with thousands separators.
func FormatCount(value int) string {
	return humanize.Comma(int64(value))
}

// Pluralize returns singular when count is one and plural otherwise.
func Pluralize(count int, singular string, plural string) string {
	if count == 1 {
		return singular
	}
	return plural
}
