package cart

import (
	"github.com/angelmondragon/feiralocal-backend/internal/catalog"
	"github.com/angelmondragon/feiralocal-backend/pkg/types"
	"github.com/shopspring/decimal"
)

// SummaryLine is a cart line priced at the live catalog price.
type SummaryLine struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Image     *string         `json:"image,omitempty"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Qty       int             `json:"qty"`
	LineTotal decimal.Decimal `json:"lineTotal"`
}

// Summary is the derived view rendered in the cart drawer.
type Summary struct {
	StoreID     string          `json:"storeId,omitempty"`
	StoreName   string          `json:"storeName,omitempty"`
	Lines       []SummaryLine   `json:"lines"`
	Count       int             `json:"count"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	DeliveryFee decimal.Decimal `json:"deliveryFee"`
	Total       decimal.Decimal `json:"total"`
	TotalLabel  string          `json:"totalLabel"`
	ETAMinutes  *int            `json:"etaMinutes,omitempty"`
}

// Summarize derives totals and display lines from the live catalog.
func (c *Cart) Summarize(cat Catalog) Summary {
	out := Summary{
		StoreID:     c.StoreID,
		Lines:       make([]SummaryLine, 0, len(c.Items)),
		Count:       c.Count(),
		Subtotal:    c.Subtotal(cat),
		DeliveryFee: c.DeliveryFee(cat),
	}
	out.Total = out.Subtotal.Add(out.DeliveryFee)
	out.TotalLabel = types.FormatBRL(out.Total)
	if s, ok := cat.FindStore(c.StoreID); ok {
		out.StoreName = s.Name
	}
	if eta, ok := c.ETA(cat); ok {
		out.ETAMinutes = &eta
	}

	for _, line := range c.Items {
		p, ok := cat.FindProduct(line.ProductID)
		if !ok {
			p = catalog.Product{ID: line.ProductID, Name: "Produto"}
		}
		out.Lines = append(out.Lines, SummaryLine{
			ProductID: line.ProductID,
			Name:      p.Name,
			Image:     p.Image,
			UnitPrice: p.Price,
			Qty:       line.Qty,
			LineTotal: p.Price.Mul(decimal.NewFromInt(int64(line.Qty))),
		})
	}
	return out
}
