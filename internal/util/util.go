package util

import (
	"fmt"
	"regexp"
	"strings"
)

// Characters that are invalid in filenames on Windows, plus control
// characters. Unix only forbids '/' and NUL, but archives get copied around.
var invalidFilenameChars = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)

// SanitizeFilename replaces characters that are unsafe in filenames with
// underscores and trims leading/trailing dots and spaces. An empty result
// becomes "unnamed".
func SanitizeFilename(name string) string {
	if name == "" {
		return "unnamed"
	}

	sanitized := invalidFilenameChars.ReplaceAllString(name, "_")
	sanitized = strings.Trim(sanitized, ". ")

	if sanitized == "" {
		return "unnamed"
	}
	return sanitized
}

// FormatSize renders a byte count as a human-readable string, e.g. "1.5 MB".
func FormatSize(sizeBytes int64) string {
	if sizeBytes == 0 {
		return "0 B"
	}

	units := []string{"B", "KB", "MB", "GB", "TB"}
	size := float64(sizeBytes)
	unit := 0

	for size >= 1024 && unit < len(units)-1 {
		size /= 1024
		unit++
	}

	if unit == 0 {
		return fmt.Sprintf("%d %s", int64(size), units[unit])
	}
	return fmt.Sprintf("%.1f %s", size, units[unit])
}
