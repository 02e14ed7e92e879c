// src/security/validation/sanitizers.go
package validation

import (
	"html"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/microcosm-cc/bluemonday"
)

var (
	// Definition of strict sanitization policy
	strictHTMLPolicy *bluemonday.Policy
)

func init() {
	strictHTMLPolicy = bluemonday.StrictPolicy() // Removes all HTML tags
}

// SanitizeText removes all HTML tags and attributes from an input string.
// User-visible messages can echo uploaded filenames, so they pass through here first.
func SanitizeText(s string) string {
	// The policy HTML-escapes what it keeps; templates escape again on render.
	return html.UnescapeString(strictHTMLPolicy.Sanitize(StripUnprintable(s)))
}

// StripUnprintable removes non-printable characters, allowing common whitespace
// like space, tab, newline, and carriage return.
func StripUnprintable(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsPrint(r) || r == '\t' || r == '\n' || r == '\r' {
			return r
		}
		return -1
	}, s)
}

// SanitizeFilename replaces characters that are unsafe in file paths or
// Content-Disposition headers and strips control characters.
func SanitizeFilename(name string) string {
	name = strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, name)
	for _, c := range []string{"/", "\\", ":", "*", "?", "\"", "<", ">", "|"} {
		name = strings.ReplaceAll(name, c, "_")
	}
	if name == "" {
		name = "unnamed"
	}
	return name
}

// ConvertedFilename derives the download name "<stem>_converted.csv" from the uploaded filename.
// The stem is everything before the last dot of the base name.
func ConvertedFilename(original string) string {
	base := filepath.Base(strings.ReplaceAll(original, "\\", "/"))
	stem := base
	if idx := strings.LastIndex(base, "."); idx >= 0 {
		stem = base[:idx]
	}
	return SanitizeFilename(stem) + "_converted.csv"
}
