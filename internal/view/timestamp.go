// Package view reshapes stored rows into client-ready view models. Every
// function here is pure; the current time is always passed in.
package view

import (
	"fmt"
	"time"

	"plugu/internal/common"
)

// Recently is shown when a timestamp cannot be interpreted.
const Recently = "Recently"

// FormatTimestamp renders ts relative to now. Unparseable input yields
// "Recently" instead of an error.
func FormatTimestamp(ts string, now time.Time) string {
	t, ok := common.ParseDate(ts)
	if !ok {
		return Recently
	}
	return FormatTime(t, now)
}

// FormatTime buckets the age of t: minutes under an hour, hours under a day,
// days under a week, weeks beyond. Future times read as "Just now".
func FormatTime(t, now time.Time) string {
	if t.IsZero() {
		return Recently
	}

	minutes := int64(now.Sub(t) / time.Minute)
	if minutes < 1 {
		return "Just now"
	}
	if minutes < 60 {
		return fmt.Sprintf("%dm ago", minutes)
	}

	hours := minutes / 60
	if hours < 24 {
		return fmt.Sprintf("%dh ago", hours)
	}

	days := hours / 24
	if days < 7 {
		return fmt.Sprintf("%dd ago", days)
	}

	return fmt.Sprintf("%dw ago", days/7)
}
