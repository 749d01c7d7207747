package types

import "strings"

// Customer is the contact snapshot captured on an order.
type Customer struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// Address is the delivery snapshot captured on an order.
type Address struct {
	Line1    string `json:"line1"`
	District string `json:"district"`
	Extra    string `json:"extra,omitempty"`
}

// Trimmed returns a copy with surrounding whitespace removed.
func (c Customer) Trimmed() Customer {
	return Customer{Name: strings.TrimSpace(c.Name), Phone: strings.TrimSpace(c.Phone)}
}

// Trimmed returns a copy with surrounding whitespace removed.
func (a Address) Trimmed() Address {
	return Address{
		Line1:    strings.TrimSpace(a.Line1),
		District: strings.TrimSpace(a.District),
		Extra:    strings.TrimSpace(a.Extra),
	}
}

// Line joins the non-empty parts with " - ".
func (a Address) Line() string {
	parts := make([]string, 0, 3)
	for _, part := range []string{a.Line1, a.District, a.Extra} {
		if part != "" {
			parts = append(parts, part)
		}
	}
	return strings.Join(parts, " - ")
}
