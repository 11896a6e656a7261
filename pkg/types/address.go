package types

import "strings"

// Address is the shipping destination embedded into an order at creation time.
type Address struct {
	Name       string  `json:"name" gorm:"column:name"`
	Line1      string  `json:"line1" gorm:"column:line1"`
	Line2      *string `json:"line2,omitempty" gorm:"column:line2"`
	City       string  `json:"city" gorm:"column:city"`
	State      string  `json:"state" gorm:"column:state"`
	PostalCode string  `json:"postal_code" gorm:"column:postal_code"`
	Country    string  `json:"country" gorm:"column:country"`
}

// Validate reports the first missing required field, if any.
func (a Address) Validate() string {
	switch {
	case strings.TrimSpace(a.Name) == "":
		return "name"
	case strings.TrimSpace(a.Line1) == "":
		return "line1"
	case strings.TrimSpace(a.City) == "":
		return "city"
	case strings.TrimSpace(a.State) == "":
		return "state"
	case strings.TrimSpace(a.PostalCode) == "":
		return "postal_code"
	case strings.TrimSpace(a.Country) == "":
		return "country"
	}
	return ""
}
