package utils

import (
	"time"
)

const (
	reportFileTimestampLayout   = "20060102150405"
	reportHeaderTimestampLayout = "2006-01-02T15:04:05.000000"
)

// FormatReportFileTimestamp renders value as YYYYMMDDHHMMSS in local time for report file names.
func FormatReportFileTimestamp(value time.Time) string {
	return value.In(time.Local).Format(reportFileTimestampLayout)
}

// FormatReportHeaderTimestamp renders value as a local ISO-8601 timestamp with microseconds.
func FormatReportHeaderTimestamp(value time.Time) string {
	if value.IsZero() {
		return ""
	}
	return value.In(time.Local).Format(reportHeaderTimestampLayout)
}
