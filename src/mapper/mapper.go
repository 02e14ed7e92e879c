// Package mapper turns source rows of a bank export into budgeting-tool records.
//
// A Mapper is bound to one immutable Profile at construction. It finds the header row
// behind any amount of leading metadata, resolves where each role lives, projects data
// rows into the fixed eight-column schema and renders the result as CSV.
// A Mapper holds no mutable state and is safe for concurrent use.
package mapper

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"strings"

	"github.com/username/bankconv/src/models"
	"github.com/username/bankconv/src/security/validation"
)

// ErrHeaderNotFound is returned when no row carries all three marker labels.
var ErrHeaderNotFound = errors.New("could not find header row in input")

// Mapper projects rows according to a source-bank profile.
type Mapper struct {
	profile models.Profile
	markers [3]string
}

// New validates the profile and returns a Mapper bound to it.
func New(profile models.Profile) (*Mapper, error) {
	if err := validation.ValidateStruct(profile); err != nil {
		return nil, fmt.Errorf("invalid profile %q: %w", profile.Name, err)
	}
	return &Mapper{profile: profile, markers: profile.Labels.Markers()}, nil
}

// Profile returns a copy of the profile the mapper was built with.
func (m *Mapper) Profile() models.Profile {
	return m.profile
}

// matchesHeader reports whether s contains every marker label as a substring.
func (m *Mapper) matchesHeader(s string) bool {
	for _, marker := range m.markers {
		if !strings.Contains(s, marker) {
			return false
		}
	}
	return true
}

// LocateHeaderLine returns the index of the first raw text line containing all marker labels.
// Lines are matched unsplit; no CSV tokenizing happens before the match.
func (m *Mapper) LocateHeaderLine(lines []string) (int, error) {
	for i, line := range lines {
		if m.matchesHeader(line) {
			return i, nil
		}
	}
	return -1, ErrHeaderNotFound
}

// LocateHeaderRow returns the index of the first grid row whose joined cell text contains all marker labels.
func (m *Mapper) LocateHeaderRow(rows [][]string) (int, error) {
	for i, row := range rows {
		if m.matchesHeader(strings.Join(row, " ")) {
			return i, nil
		}
	}
	return -1, ErrHeaderNotFound
}

// Project builds the output record for one source row.
func (m *Mapper) Project(row Row) models.CanonicalTransaction {
	return models.CanonicalTransaction{
		Account: m.profile.AccountName,
		Date:    row.Value(models.RoleDate),
		Payee:   row.Value(models.RolePayee),
		Notes:   row.Value(models.RoleNotes),
		Amount:  row.Value(models.RoleAmount),
	}
}

// ProjectAll projects every row in order.
func (m *Mapper) ProjectAll(rows []Row) []models.CanonicalTransaction {
	out := make([]models.CanonicalTransaction, 0, len(rows))
	for _, row := range rows {
		out = append(out, m.Project(row))
	}
	return out
}

// Render serializes the header line followed by every record, using standard CSV quoting and CRLF line ends.
func Render(records []models.CanonicalTransaction) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.UseCRLF = true

	if err := w.Write(models.OutputHeader()); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, record := range records {
		if err := w.Write(record.Fields()); err != nil {
			return nil, fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("csv flush error: %w", err)
	}
	return buf.Bytes(), nil
}
