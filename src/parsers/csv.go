package parsers

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/username/bankconv/src/mapper"
)

// TextParser reads line-oriented CSV exports. Rows come out label-keyed.
type TextParser struct{}

func init() {
	Register(TextParser{})
}

func (TextParser) Format() string { return "csv" }

// lineEndings folds CRLF and bare CR (classic Mac exports) into LF.
var lineEndings = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// splitLines breaks text on LF, CRLF or a lone CR.
func splitLines(text string) []string {
	lines := strings.Split(lineEndings.Replace(text), "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	return lines
}

// Parse scans the raw lines for the header, then reads everything from the header on as CSV.
// Every record after the header becomes a row, even when all its fields are empty; only
// physically empty lines are dropped, by the tokenizer.
func (TextParser) Parse(m *mapper.Mapper, data []byte) ([]mapper.Row, error) {
	if !utf8.Valid(data) {
		return nil, errors.New("csv parser: input is not valid UTF-8")
	}
	text := strings.TrimPrefix(string(data), "\ufeff")

	lines := splitLines(text)
	headerIdx, err := m.LocateHeaderLine(lines)
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(strings.NewReader(strings.Join(lines[headerIdx:], "\n")))
	reader.FieldsPerRecord = -1 // Allow variable number of fields per record
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("csv parser: failed to read header: %w", err)
	}

	labels := m.Profile().Labels
	var rows []mapper.Row
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csv parser: failed to read row: %w", err)
		}
		rows = append(rows, mapper.NewLabeledRow(labels, header, record))
	}
	return rows, nil
}
