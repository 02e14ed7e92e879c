package models

// Profile describes one source bank's export layout. It is a plain value: copy it freely,
// but never mutate a profile that has been handed to a mapper.
type Profile struct {
	Name        string `json:"name" validate:"required,noBlank"`
	AccountName string `json:"account_name" validate:"required,noBlank"`
	Labels      Labels `json:"labels" validate:"required"`
	// DateLayout is the Go time layout used when a spreadsheet cell holds a real date.
	DateLayout string `json:"date_layout" validate:"required"`
}

// DefaultDateLayout renders dates as DD/MM/YYYY.
const DefaultDateLayout = "02/01/2006"

// IntesaSanPaolo is the built-in profile for Intesa SanPaolo movement exports.
func IntesaSanPaolo() Profile {
	return Profile{
		Name:        "intesa",
		AccountName: "Intesa SanPaolo",
		Labels: Labels{
			Date:   "Data",
			Payee:  "Operazione",
			Notes:  "Dettagli",
			Amount: "Importo",
		},
		DateLayout: DefaultDateLayout,
	}
}
