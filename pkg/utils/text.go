package utils

import (
	"regexp"
	"strings"
)

var unsafeFilenameChars = regexp.MustCompile(`[^\w\-.]`)

// SanitizeFilename reduces a filename to a storage-safe prefix for use in
// generated ids. Anything outside [A-Za-z0-9_-.] becomes '_' and the result
// is capped at maxLen runes.
func SanitizeFilename(filename string, maxLen int) string {
	safe := unsafeFilenameChars.ReplaceAllString(filename, "_")
	runes := []rune(safe)
	if maxLen > 0 && len(runes) > maxLen {
		runes = runes[:maxLen]
	}
	return string(runes)
}

// Truncate shortens s for log output, appending "..." when cut.
func Truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return strings.TrimSpace(string(runes[:maxLen])) + "..."
}
