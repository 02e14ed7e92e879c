// Package parsers turns raw export bytes into mapper rows. Each supported file
// extension has exactly one parser; the dispatcher picks it from the filename
// alone and never sniffs content.
package parsers

import (
	"errors"
	"fmt"
	"sort"

	"github.com/username/bankconv/src/mapper"
	"github.com/username/bankconv/src/security/validation"
)

// Parser reads one container format.
type Parser interface {
	// Format returns the extension this parser handles, without the dot.
	Format() string
	// Parse locates the header with m and returns the data rows that follow it.
	Parse(m *mapper.Mapper, data []byte) ([]mapper.Row, error)
}

var (
	// ErrUnsupportedExtension matches every *UnsupportedExtensionError.
	ErrUnsupportedExtension = errors.New("unsupported file type")
	// ErrAmbiguousType is returned when a stream arrives without a filename to take the extension from.
	ErrAmbiguousType = errors.New("cannot determine file type: a filename with an extension is required")
)

// UnsupportedExtensionError names the extension that has no parser.
type UnsupportedExtensionError struct {
	Ext string
}

func (e *UnsupportedExtensionError) Error() string {
	if e.Ext == "" {
		return fmt.Sprintf("%s: (no extension)", ErrUnsupportedExtension)
	}
	return fmt.Sprintf("%s: %s", ErrUnsupportedExtension, e.Ext)
}

func (e *UnsupportedExtensionError) Is(target error) bool {
	return target == ErrUnsupportedExtension
}

var registry = map[string]Parser{}

// Register adds a parser to the registry. Call it from an init function.
func Register(p Parser) {
	registry[p.Format()] = p
}

// ForExtension returns the parser for a lower-case extension without the dot.
func ForExtension(ext string) (Parser, error) {
	if p, ok := registry[ext]; ok {
		return p, nil
	}
	return nil, &UnsupportedExtensionError{Ext: ext}
}

// ForFilename picks a parser from the text after the filename's last dot.
func ForFilename(filename string) (Parser, error) {
	if filename == "" {
		return nil, ErrAmbiguousType
	}
	return ForExtension(validation.Extension(filename))
}

// Formats lists the registered extensions in sorted order.
func Formats() []string {
	out := make([]string, 0, len(registry))
	for ext := range registry {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}
