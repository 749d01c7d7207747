package filter

import (
	"strings"
	"unicode"

	"github.com/angelmondragon/feiralocal-backend/internal/catalog"
	"github.com/angelmondragon/feiralocal-backend/pkg/enums"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Criteria selects and orders the product grid. Empty Category/Store mean
// "all"; an empty Sort means relevance.
type Criteria struct {
	Search   string        `json:"search"`
	Category string        `json:"category"`
	Store    string        `json:"store"`
	Sort     enums.SortKey `json:"sort"`
}

// Normalized returns the canonical form used as the cache key: search is
// trimmed and lowercased, blanks become the "all"/relevance defaults.
func (c Criteria) Normalized() Criteria {
	out := Criteria{
		Search:   strings.ToLower(strings.TrimSpace(c.Search)),
		Category: strings.TrimSpace(c.Category),
		Store:    strings.TrimSpace(c.Store),
		Sort:     c.Sort,
	}
	if out.Category == "" {
		out.Category = catalog.AllID
	}
	if out.Store == "" {
		out.Store = catalog.AllID
	}
	if !out.Sort.IsValid() {
		out.Sort = enums.SortRelevance
	}
	return out
}

// HasStore reports whether a specific store is selected.
func (c Criteria) HasStore() bool {
	return c.Store != "" && c.Store != catalog.AllID
}

// HasCategory reports whether a specific category is selected.
func (c Criteria) HasCategory() bool {
	return c.Category != "" && c.Category != catalog.AllID
}

// Fold lowercases s and strips combining marks, so "Proteção" and "protecao"
// compare equal.
func Fold(s string) string {
	lower := strings.ToLower(s)
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, lower)
	if err != nil {
		return lower
	}
	return folded
}
