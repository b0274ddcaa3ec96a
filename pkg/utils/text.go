// Package utils provides shared utilities for text and logging.
package utils

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Truncate returns s truncated to maxLen characters, with "..." appended if truncated.
// If maxLen is 0 or negative, returns s unchanged.
func Truncate(s string, maxLen int) string {
	if maxLen <= 0 || len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

// FormatCount renders n with thousands separators (150000 -> "150,000").
// Used in user-facing size limit messages.
func FormatCount(n int) string {
	return message.NewPrinter(language.English).Sprintf("%d", n)
}
