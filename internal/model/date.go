package model

import (
	"fmt"
	"time"
)

// Accepted datetime layouts. Zone-less values are interpreted in server-local
// time so that the default-hour normalization stays in the user's day.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseDate parses an ISO-8601-ish datetime string, returning nil when the
// value is empty or matches no accepted layout.
func ParseDate(value string) *time.Time {
	if value == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return &t
		}
	}
	return nil
}

// FormatDateText renders a compact due text: "M/D" for date-only values and
// "M/D HH:MM" when the value carries a time of day. Empty when unparseable.
func FormatDateText(value string, hasTime bool) string {
	date := ParseDate(value)
	if date == nil {
		return ""
	}
	if !hasTime {
		return fmt.Sprintf("%d/%d", int(date.Month()), date.Day())
	}
	return fmt.Sprintf("%d/%d %02d:%02d", int(date.Month()), date.Day(), date.Hour(), date.Minute())
}
