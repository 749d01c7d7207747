package dashboard

import (
	"math"
	"sort"
	"strconv"

	"github.com/angelmondragon/feiralocal-backend/internal/catalog"
	"github.com/angelmondragon/feiralocal-backend/internal/orders"
	"github.com/angelmondragon/feiralocal-backend/pkg/types"
	"github.com/shopspring/decimal"
)

const (
	// Placeholder renders a KPI that has no data yet.
	Placeholder = "—"

	// DefaultSLA is shown for the consolidated "all stores" view.
	DefaultSLA = "60–90 min"

	defaultETAMinutes = 75
	topProductsLimit  = 8
)

// StoreFinder resolves stores referenced by orders.
type StoreFinder interface {
	FindStore(id string) (catalog.Store, bool)
}

// Totals are the aggregates shared by every dashboard.
type Totals struct {
	OrderCount     int              `json:"orderCount"`
	Revenue        decimal.Decimal  `json:"revenue"`
	RevenueLabel   string           `json:"revenueLabel"`
	AvgTicket      *decimal.Decimal `json:"avgTicket,omitempty"`
	AvgTicketLabel string           `json:"avgTicketLabel"`
	Delivered      int              `json:"delivered"`
	InProgress     int              `json:"inProgress"`
}

// Summarize aggregates revenue, ticket and delivery progress.
func Summarize(list []orders.Order) Totals {
	t := Totals{OrderCount: len(list), Revenue: decimal.Zero, AvgTicketLabel: Placeholder}
	for _, o := range list {
		t.Revenue = t.Revenue.Add(o.Total)
		if o.IsDelivered() {
			t.Delivered++
		} else {
			t.InProgress++
		}
	}
	t.RevenueLabel = types.FormatBRL(t.Revenue)
	if t.OrderCount > 0 {
		avg := types.AverageOf(t.Revenue, t.OrderCount)
		t.AvgTicket = &avg
		t.AvgTicketLabel = types.FormatBRL(avg)
	}
	return t
}

// CustomerKPIs are the header figures on the customer page.
type CustomerKPIs struct {
	AvgTimeLabel   string `json:"avgTimeLabel"`
	CancelLabel    string `json:"cancelLabel"`
	AvgTicketLabel string `json:"avgTicketLabel"`
}

// Customer derives the average delivery time from each order's store window
// (75 min when the store is gone). Cancellations are not modelled.
func Customer(list []orders.Order, stores StoreFinder) CustomerKPIs {
	if len(list) == 0 {
		return CustomerKPIs{AvgTimeLabel: Placeholder, CancelLabel: Placeholder, AvgTicketLabel: Placeholder}
	}
	var etaSum float64
	for _, o := range list {
		if s, ok := stores.FindStore(o.StoreID); ok {
			etaSum += float64(s.ETAMin+s.ETAMax) / 2
			continue
		}
		etaSum += defaultETAMinutes
	}
	avgETA := int(math.Round(etaSum / float64(len(list))))
	return CustomerKPIs{
		AvgTimeLabel:   strconv.Itoa(avgETA) + " min",
		CancelLabel:    "0%",
		AvgTicketLabel: Summarize(list).AvgTicketLabel,
	}
}

// TopProduct is a product name and the quantity sold across orders.
type TopProduct struct {
	Name string `json:"name"`
	Qty  int    `json:"qty"`
}

// TopProducts sums quantities by frozen item name, highest first. Ties keep
// first-seen order.
func TopProducts(list []orders.Order, limit int) []TopProduct {
	if limit <= 0 {
		limit = topProductsLimit
	}
	index := map[string]int{}
	var out []TopProduct
	for _, o := range list {
		for _, it := range o.Items {
			i, ok := index[it.Name]
			if !ok {
				i = len(out)
				index[it.Name] = i
				out = append(out, TopProduct{Name: it.Name})
			}
			out[i].Qty += it.Qty
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Qty > out[j].Qty })
	if len(out) > limit {
		out = out[:limit]
	}
	if out == nil {
		out = []TopProduct{}
	}
	return out
}
