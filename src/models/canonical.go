// src/models/canonical.go
package models

// CanonicalTransaction is one row of the budgeting-tool import file.
// Category, SplitAmount and Cleared have no source equivalent and are always written empty.
type CanonicalTransaction struct {
	Account string `json:"account"` // Constant per profile
	Date    string `json:"date"`
	Payee   string `json:"payee"`
	Notes   string `json:"notes"`
	Amount  string `json:"amount"` // Signed amount, verbatim from the source
}

// outputHeader is the exact column order expected by the importer. Never reorder or rename.
var outputHeader = [...]string{"Account", "Date", "Payee", "Notes", "Category", "Amount", "Split_Amount", "Cleared"}

// OutputHeader returns a fresh copy of the eight-column output header.
func OutputHeader() []string {
	h := outputHeader
	return h[:]
}

// Fields returns the record in output column order.
func (t CanonicalTransaction) Fields() []string {
	return []string{t.Account, t.Date, t.Payee, t.Notes, "", t.Amount, "", ""}
}
