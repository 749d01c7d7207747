package dashboard

import (
	"strconv"

	"github.com/angelmondragon/feiralocal-backend/internal/catalog"
	"github.com/angelmondragon/feiralocal-backend/internal/orders"
)

// StoreView is the store operator panel for one store or "all".
type StoreView struct {
	StoreID     string         `json:"storeId"`
	StoreName   string         `json:"storeName"`
	Totals      Totals         `json:"totals"`
	SLA         string         `json:"sla"`
	Orders      []orders.Order `json:"orders"`
	TopProducts []TopProduct   `json:"topProducts"`
}

// ForStore builds the operator panel. storeID "all" consolidates every order.
func ForStore(storeID string, history []orders.Order, stores StoreFinder) StoreView {
	view := StoreView{StoreID: storeID, StoreName: "Todas (consolidado)", SLA: DefaultSLA}
	list := history
	if storeID != catalog.AllID {
		list = nil
		for _, o := range history {
			if o.StoreID == storeID {
				list = append(list, o)
			}
		}
		if s, ok := stores.FindStore(storeID); ok {
			view.StoreName = s.Name
			view.SLA = s.ETALabel()
		} else {
			view.StoreName = "Loja"
			view.SLA = Placeholder
		}
	}
	if list == nil {
		list = []orders.Order{}
	}
	view.Orders = list
	view.Totals = Summarize(list)
	view.TopProducts = TopProducts(list, topProductsLimit)
	return view
}

// StoreSummary is one row of the admin per-store table.
type StoreSummary struct {
	StoreID     string `json:"storeId"`
	Name        string `json:"name"`
	Niche       string `json:"niche"`
	Totals      Totals `json:"totals"`
	RatingLabel string `json:"ratingLabel"`
}

// AdminView is the platform admin panel.
type AdminView struct {
	Totals Totals         `json:"totals"`
	Orders []orders.Order `json:"orders"`
	Stores []StoreSummary `json:"stores"`
	// HasStoreData is false while no store has any order.
	HasStoreData bool `json:"hasStoreData"`
}

func Admin(history []orders.Order, stores []catalog.Store) AdminView {
	if history == nil {
		history = []orders.Order{}
	}
	view := AdminView{
		Totals: Summarize(history),
		Orders: history,
		Stores: make([]StoreSummary, 0, len(stores)),
	}
	for _, s := range stores {
		var list []orders.Order
		for _, o := range history {
			if o.StoreID == s.ID {
				list = append(list, o)
			}
		}
		row := StoreSummary{
			StoreID:     s.ID,
			Name:        s.Name,
			Niche:       s.Niche,
			Totals:      Summarize(list),
			RatingLabel: strconv.FormatFloat(s.Rating, 'f', 1, 64),
		}
		if row.Totals.OrderCount > 0 {
			view.HasStoreData = true
		}
		view.Stores = append(view.Stores, row)
	}
	return view
}
