package mapper

import (
	"strings"

	"github.com/username/bankconv/src/models"
)

// Row is one source data row. Text exports yield LabeledRow and spreadsheets yield PositionalRow;
// the parser picks the variant once and the projector only ever asks for role values.
// Missing values are always "", never an error.
type Row interface {
	Value(role models.Role) string
}

// LabeledRow addresses values by header label.
type LabeledRow struct {
	labels models.Labels
	values map[string]string
}

// NewLabeledRow pairs header labels with a record's fields. Later duplicate labels overwrite earlier ones;
// fields beyond the header are dropped and missing trailing fields are simply absent.
func NewLabeledRow(labels models.Labels, header, record []string) LabeledRow {
	values := make(map[string]string, len(header))
	for i, name := range header {
		if i < len(record) {
			values[name] = record[i]
		}
	}
	return LabeledRow{labels: labels, values: values}
}

func (r LabeledRow) Value(role models.Role) string {
	return r.values[r.labels.For(role)]
}

// Columns maps each role to a zero-based column index, or -1 when the header lacks its label.
type Columns [len(models.Roles)]int

// ResolveColumns finds each role's column by exact equality of the trimmed header cell with the role label.
// When a label repeats, the first occurrence wins.
func ResolveColumns(labels models.Labels, header []string) Columns {
	var cols Columns
	for _, role := range models.Roles {
		cols[role] = -1
		want := labels.For(role)
		for i, cell := range header {
			if strings.TrimSpace(cell) == want {
				cols[role] = i
				break
			}
		}
	}
	return cols
}

// Resolved reports whether the role has a column.
func (c Columns) Resolved(role models.Role) bool {
	return c[role] >= 0
}

// PositionalRow addresses values by column index.
type PositionalRow struct {
	cols  Columns
	cells []string
}

// NewPositionalRow binds a row's cells to resolved columns.
func NewPositionalRow(cols Columns, cells []string) PositionalRow {
	return PositionalRow{cols: cols, cells: cells}
}

func (r PositionalRow) Value(role models.Role) string {
	idx := r.cols[role]
	if idx < 0 || idx >= len(r.cells) {
		return ""
	}
	return r.cells[idx]
}

// IsBlankRow reports whether every cell is empty. A row with no cells is blank.
func IsBlankRow(cells []string) bool {
	for _, c := range cells {
		if c != "" {
			return false
		}
	}
	return true
}
