package types

import "strings"

// GuestInfo is the contact triple an anonymous purchaser supplies in place of
// an owner identity.
type GuestInfo struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// Complete reports whether all three contact fields are populated.
func (g GuestInfo) Complete() bool {
	return strings.TrimSpace(g.Name) != "" &&
		strings.TrimSpace(g.Email) != "" &&
		strings.TrimSpace(g.Phone) != ""
}
