package validation

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/username/bankconv/src/logger"
)

// AllowedExtensions lists the upload extensions the converter accepts, without the dot.
var AllowedExtensions = map[string]bool{
	"csv":  true,
	"xlsx": true,
}

// ErrContentMismatch is returned when the file body does not look like its extension.
var ErrContentMismatch = errors.New("file content does not match its extension")

// Extension returns the lower-cased text after the last dot of a filename, or "" when there is none.
func Extension(filename string) string {
	base := filepath.Base(strings.ReplaceAll(filename, "\\", "/"))
	idx := strings.LastIndex(base, ".")
	if idx < 0 {
		return ""
	}
	return strings.ToLower(base[idx+1:])
}

// AllowedFile reports whether the filename carries an accepted extension.
func AllowedFile(filename string) bool {
	return strings.Contains(filename, ".") && AllowedExtensions[Extension(filename)]
}

// isBinaryContent checks if a buffer contains null bytes or invalid UTF-8,
// which indicate the file is not a text CSV.
func isBinaryContent(buf []byte) bool {
	if bytes.IndexByte(buf, 0) != -1 {
		return true
	}
	return !utf8.Valid(buf)
}

// isZipContainer checks the PK\x03\x04 signature every xlsx workbook starts with.
func isZipContainer(buf []byte) bool {
	return len(buf) >= 4 && buf[0] == 0x50 && buf[1] == 0x4B && buf[2] == 0x03 && buf[3] == 0x04
}

// ValidateFileContent checks the leading bytes of an upload against its declared extension.
// It never picks a format; it only rejects bodies that cannot be what the extension says.
func ValidateFileContent(ext string, data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("%w: file is empty", ErrContentMismatch)
	}

	switch ext {
	case "csv":
		// Sniff on a rune boundary so a multi-byte character cut at the window edge is not flagged.
		window := data
		if len(window) > 4096 {
			window = window[:4096]
			for i := 0; i < utf8.UTFMax-1 && !utf8.Valid(window); i++ {
				window = window[:len(window)-1]
			}
		}
		if isBinaryContent(window) {
			logger.FromContext(context.TODO()).Warn("File rejected: binary content detected in csv upload")
			return fmt.Errorf("%w: file appears to be binary, not UTF-8 text", ErrContentMismatch)
		}
	case "xlsx":
		if !isZipContainer(data) {
			logger.FromContext(context.TODO()).Warn("File rejected: xlsx upload is not a zip container")
			return fmt.Errorf("%w: file is not a valid xlsx workbook", ErrContentMismatch)
		}
	default:
		return fmt.Errorf("%w: unsupported extension %q", ErrContentMismatch, ext)
	}
	return nil
}
