package catalog

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// AllID is the sentinel for "no category/store restriction".
const AllID = "all"

const (
	placeholderProductName = "Produto"
	placeholderStoreName   = "Loja"
	placeholderImage       = "./assets/products/placeholder.jpg"
)

// Product is a sellable item owned by exactly one store. Badge and Image are
// optional; a nil Badge means the product carries no promotional label.
type Product struct {
	ID        string          `json:"id"`
	StoreID   string          `json:"storeId"`
	Name      string          `json:"name"`
	Category  string          `json:"category"`
	Price     decimal.Decimal `json:"price"`
	Available bool            `json:"available"`
	Badge     *string         `json:"badge,omitempty"`
	Image     *string         `json:"image,omitempty"`
}

// HasBadge reports whether the product carries a non-empty promotional label.
func (p Product) HasBadge() bool {
	return p.Badge != nil && *p.Badge != ""
}

// Store is a seller. Fields are fixed after seed.
type Store struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Niche       string          `json:"niche"`
	Coverage    []string        `json:"districtCoverage"`
	DeliveryFee decimal.Decimal `json:"deliveryFee"`
	ETAMin      int             `json:"etaMin"`
	ETAMax      int             `json:"etaMax"`
	Rating      float64         `json:"rating"`
	WhatsApp    string          `json:"whatsapp,omitempty"`
	Image       *string         `json:"image,omitempty"`
}

// ETAEstimate is the rounded midpoint of the delivery window in minutes.
func (s Store) ETAEstimate() int {
	return int(math.Round(float64(s.ETAMin+s.ETAMax) / 2))
}

// ETALabel renders the delivery window, e.g. "60–90 min".
func (s Store) ETALabel() string {
	return fmt.Sprintf("%d–%d min", s.ETAMin, s.ETAMax)
}

type Category struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Image string `json:"image,omitempty"`
}

func strPtr(s string) *string {
	return &s
}
