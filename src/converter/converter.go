// Package converter wires the format dispatcher and the row mapper into whole-file conversions.
package converter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/username/bankconv/src/logger"
	"github.com/username/bankconv/src/mapper"
	"github.com/username/bankconv/src/models"
	"github.com/username/bankconv/src/parsers"
	"github.com/username/bankconv/src/security/validation"
)

// ErrSourceNotFound is returned by ConvertFile when the input path does not exist. It also matches fs.ErrNotExist.
var ErrSourceNotFound = fmt.Errorf("file not found: %w", fs.ErrNotExist)

// Converter turns one bank export into the budgeting-tool CSV. It is immutable and safe for concurrent use.
type Converter struct {
	mapper *mapper.Mapper
}

// New builds a converter for the given profile.
func New(profile models.Profile) (*Converter, error) {
	m, err := mapper.New(profile)
	if err != nil {
		return nil, err
	}
	return &Converter{mapper: m}, nil
}

// Profile returns the profile this converter maps with.
func (c *Converter) Profile() models.Profile {
	return c.mapper.Profile()
}

// Convert reads the whole stream and returns the rendered CSV. The filename is only used to pick the parser.
func (c *Converter) Convert(ctx context.Context, r io.Reader, filename string) ([]byte, error) {
	out, _, err := c.ConvertWithSummary(ctx, r, filename)
	return out, err
}

// ConvertWithSummary is Convert plus a Summary of what was converted.
func (c *Converter) ConvertWithSummary(ctx context.Context, r io.Reader, filename string) ([]byte, Summary, error) {
	log := logger.FromContext(ctx)
	start := time.Now()

	p, err := parsers.ForFilename(filename)
	if err != nil {
		return nil, Summary{}, err
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, Summary{}, fmt.Errorf("failed to read input: %w", err)
	}

	rows, err := p.Parse(c.mapper, data)
	if err != nil {
		return nil, Summary{}, err
	}

	records := c.mapper.ProjectAll(rows)
	out, err := mapper.Render(records)
	if err != nil {
		return nil, Summary{}, err
	}

	summary := Summarize(p.Format(), records)
	log.Debug("conversion finished",
		"filename", filename,
		"format", summary.Format,
		"rows", summary.Rows,
		"net", summary.Net.StringFixed(2),
		"duration", time.Since(start))
	return out, summary, nil
}

// ConvertFile converts the file at inPath. When outPath is not empty the result is also written there.
func (c *Converter) ConvertFile(ctx context.Context, inPath, outPath string) ([]byte, error) {
	f, err := os.Open(inPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, inPath)
		}
		return nil, fmt.Errorf("failed to open input: %w", err)
	}
	defer f.Close()

	out, err := c.Convert(ctx, f, inPath)
	if err != nil {
		return nil, err
	}

	if outPath != "" {
		if err := os.WriteFile(outPath, out, 0o644); err != nil {
			return nil, fmt.Errorf("failed to write output: %w", err)
		}
		logger.FromContext(ctx).Info("output written", "path", outPath, "bytes", len(out))
	}
	return out, nil
}

// IsLabeled reports whether err is one of the expected, user-facing conversion failures
// as opposed to an unexpected internal error.
func IsLabeled(err error) bool {
	return errors.Is(err, mapper.ErrHeaderNotFound) ||
		errors.Is(err, parsers.ErrUnsupportedExtension) ||
		errors.Is(err, parsers.ErrAmbiguousType) ||
		errors.Is(err, validation.ErrContentMismatch)
}
