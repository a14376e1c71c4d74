package utils

import (
	"path/filepath"
	"strings"
	"unicode"
)

const fallbackFileName = "document"

// SanitizeFileName reduces a user-supplied file name to a single safe path
// element: no separators, no "..", no control characters.
func SanitizeFileName(name string) string {
	trimmed := strings.TrimSpace(name)
	trimmed = strings.ReplaceAll(trimmed, "\\", "/")
	trimmed = filepath.Base(trimmed)

	trimmed = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) || r == '/' || r == ':' {
			return '_'
		}
		return r
	}, trimmed)
	for strings.Contains(trimmed, "..") {
		trimmed = strings.ReplaceAll(trimmed, "..", ".")
	}
	trimmed = strings.Trim(trimmed, ". ")

	if trimmed == "" {
		return fallbackFileName
	}
	return trimmed
}

// Stem returns the file name without its final extension.
func Stem(name string) string {
	base := filepath.Base(name)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
