package parsers

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/username/bankconv/src/mapper"
	"github.com/username/bankconv/src/models"
)

// GridParser reads xlsx workbooks. Rows come out position-keyed.
type GridParser struct{}

func init() {
	Register(GridParser{})
}

func (GridParser) Format() string { return "xlsx" }

// Parse reads the active sheet, finds the header row and resolves role columns from it.
// Fully blank rows after the header are skipped. Date cells that hold a real date value
// are rendered with the profile's date layout; every other cell keeps its raw text.
func (GridParser) Parse(m *mapper.Mapper, data []byte) ([]mapper.Row, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open xlsx: %w", err)
	}
	defer f.Close()

	sheet := activeSheet(f)
	if sheet == "" {
		return nil, fmt.Errorf("xlsx has no sheets")
	}

	grid, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read xlsx rows: %w", err)
	}

	headerIdx, err := m.LocateHeaderRow(grid)
	if err != nil {
		return nil, err
	}

	profile := m.Profile()
	cols := mapper.ResolveColumns(profile.Labels, grid[headerIdx])
	dates := dateCoercer{f: f, sheet: sheet, layout: profile.DateLayout, date1904: uses1904(f)}

	var rows []mapper.Row
	for i := headerIdx + 1; i < len(grid); i++ {
		cells := grid[i]
		if mapper.IsBlankRow(cells) {
			continue
		}
		if c := cols[models.RoleDate]; c >= 0 && c < len(cells) && cells[c] != "" {
			cells[c] = dates.coerce(c, i, cells[c])
		}
		rows = append(rows, mapper.NewPositionalRow(cols, cells))
	}
	return rows, nil
}

// activeSheet returns the workbook's active sheet name, falling back to the first sheet.
func activeSheet(f *excelize.File) string {
	if name := f.GetSheetName(f.GetActiveSheetIndex()); name != "" {
		return name
	}
	return f.GetSheetName(0)
}

func uses1904(f *excelize.File) bool {
	props, err := f.GetWorkbookProps()
	if err != nil || props.Date1904 == nil {
		return false
	}
	return *props.Date1904
}

type dateCoercer struct {
	f        *excelize.File
	sheet    string
	layout   string
	date1904 bool
}

var isoLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02T15:04", "2006-01-02"}

// coerce renders a structured date cell with the profile layout. Text cells, and anything that
// fails to parse, are returned unchanged.
func (d dateCoercer) coerce(col, row int, raw string) string {
	axis, err := excelize.CoordinatesToCellName(col+1, row+1)
	if err != nil {
		return raw
	}

	typ, err := d.f.GetCellType(d.sheet, axis)
	if err == nil && typ == excelize.CellTypeDate {
		for _, layout := range isoLayouts {
			if t, err := time.Parse(layout, raw); err == nil {
				return t.Format(d.layout)
			}
		}
	}

	if !d.hasDateFormat(axis) {
		return raw
	}
	serial, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return raw
	}
	t, err := excelize.ExcelDateToTime(serial, d.date1904)
	if err != nil {
		return raw
	}
	return t.Format(d.layout)
}

func (d dateCoercer) hasDateFormat(axis string) bool {
	styleID, err := d.f.GetCellStyle(d.sheet, axis)
	if err != nil || styleID == 0 {
		return false
	}
	style, err := d.f.GetStyle(styleID)
	if err != nil || style == nil {
		return false
	}
	if isBuiltInDateFormat(style.NumFmt) {
		return true
	}
	return style.CustomNumFmt != nil && isDateFormatCode(*style.CustomNumFmt)
}

// isBuiltInDateFormat covers the ECMA-376 built-in date and time number formats, including the CJK ranges.
func isBuiltInDateFormat(id int) bool {
	switch {
	case id >= 14 && id <= 22,
		id >= 27 && id <= 36,
		id >= 45 && id <= 47,
		id >= 50 && id <= 58:
		return true
	}
	return false
}

// isDateFormatCode reports whether a custom number format renders a date or time.
// Quoted literals, bracketed sections and escaped characters are ignored.
func isDateFormatCode(code string) bool {
	var b strings.Builder
	inQuote, inBracket := false, false
	runes := []rune(code)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case inQuote:
			inQuote = r != '"'
		case inBracket:
			inBracket = r != ']'
		case r == '"':
			inQuote = true
		case r == '[':
			inBracket = true
		case r == '\\' || r == '_' || r == '*':
			i++ // skip the escaped or padding character
		default:
			b.WriteRune(r)
		}
	}

	s := strings.ToLower(b.String())
	if s == "" || strings.Contains(s, "general") {
		return false
	}
	if strings.ContainsAny(s, "dyhs") {
		return true
	}
	// A lone "m" is a month only when the format carries no digit placeholders.
	return strings.Contains(s, "m") && !strings.ContainsAny(s, "0#?")
}
