package utils

import (
	"time"
)

const (
	timestampLayout    = "2006-01-02 15:04"
	isoTimestampLayout = time.RFC3339
)

// FormatTimestamp returns the provided time formatted using the local time zone
// and a layout that includes date and minutes (locale-sensitive via system TZ).
func FormatTimestamp(value time.Time) string {
	if value.IsZero() {
		return ""
	}
	return value.In(time.Local).Format(timestampLayout)
}

// FormatISOTimestamp returns the time as RFC 3339 in UTC, or an empty string for the zero time.
func FormatISOTimestamp(value time.Time) string {
	if value.IsZero() {
		return ""
	}
	return value.UTC().Format(isoTimestampLayout)
}
