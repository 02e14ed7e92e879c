package models

// Role is one of the semantic fields extracted from a source row, regardless of column order.
type Role int

const (
	RoleDate Role = iota
	RolePayee
	RoleNotes
	RoleAmount
)

// Roles lists every role in resolution order.
var Roles = [...]Role{RoleDate, RolePayee, RoleNotes, RoleAmount}

func (r Role) String() string {
	switch r {
	case RoleDate:
		return "date"
	case RolePayee:
		return "payee"
	case RoleNotes:
		return "notes"
	case RoleAmount:
		return "amount"
	default:
		return "unknown"
	}
}

// Labels holds the source-language column header for each role.
// Date, Payee and Notes double as the marker labels used to find the header row.
type Labels struct {
	Date   string `json:"date" validate:"required,noBlank"`
	Payee  string `json:"payee" validate:"required,noBlank"`
	Notes  string `json:"notes" validate:"required,noBlank"`
	Amount string `json:"amount" validate:"required,noBlank"`
}

// For returns the label bound to a role.
func (l Labels) For(r Role) string {
	switch r {
	case RoleDate:
		return l.Date
	case RolePayee:
		return l.Payee
	case RoleNotes:
		return l.Notes
	case RoleAmount:
		return l.Amount
	}
	return ""
}

// Markers returns the three labels whose co-occurrence identifies the header row.
func (l Labels) Markers() [3]string {
	return [3]string{l.Date, l.Payee, l.Notes}
}
