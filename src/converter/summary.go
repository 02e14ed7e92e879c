package converter

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/username/bankconv/src/models"
)

// Summary describes one conversion. It never influences the rendered output.
type Summary struct {
	Format string          `json:"format"`
	Rows   int             `json:"rows"`
	Net    decimal.Decimal `json:"net"`
	// Unparsed counts rows whose amount could not be read as a number; they are left out of Net.
	Unparsed int `json:"unparsed"`
}

// Summarize totals the amounts of the projected records.
func Summarize(format string, records []models.CanonicalTransaction) Summary {
	s := Summary{Format: format, Rows: len(records), Net: decimal.Zero}
	for _, r := range records {
		amount, ok := ParseAmount(r.Amount)
		if !ok {
			s.Unparsed++
			continue
		}
		s.Net = s.Net.Add(amount)
	}
	return s
}

// ParseAmount reads amounts written either with a decimal point ("-45.30") or in the Italian
// style with dot thousands and a decimal comma ("1.234,56").
func ParseAmount(raw string) (decimal.Decimal, bool) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "€")
	s = strings.TrimSuffix(s, "€")
	s = strings.ReplaceAll(strings.TrimSpace(s), " ", "")
	if s == "" {
		return decimal.Zero, false
	}
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}
