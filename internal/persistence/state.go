package persistence

import (
	"strings"

	"github.com/angelmondragon/feiralocal-backend/internal/cart"
	"github.com/angelmondragon/feiralocal-backend/internal/catalog"
	"github.com/angelmondragon/feiralocal-backend/internal/filter"
	"github.com/angelmondragon/feiralocal-backend/internal/orders"
	"github.com/angelmondragon/feiralocal-backend/pkg/enums"
)

// Storage keys, one slot per state section.
const (
	KeyCart     = "fl_cart_v1"
	KeyOrders   = "fl_orders_v1"
	KeyScope    = "fl_scope_v1"
	KeyFilters  = "fl_filters_v1"
	KeyAuth     = "fl_auth_v1"
	KeyProducts = "fl_products_v1"
)

// Keys lists every slot in save order.
func Keys() []string {
	return []string{KeyCart, KeyOrders, KeyScope, KeyFilters, KeyAuth, KeyProducts}
}

// Scope is the pilot operating scope shown in the customer header.
type Scope struct {
	Area  string `json:"area"`
	Niche string `json:"niche"`
	Hours string `json:"hours"`
	SLA   string `json:"sla"`
}

func DefaultScope() Scope {
	return Scope{
		Area:  "1–2 bairros",
		Niche: "Acessórios de celular",
		Hours: "10h–20h",
		SLA:   "60–90 min",
	}
}

// Merge overrides fields that are non-blank in patch.
func (s Scope) Merge(patch Scope) Scope {
	pick := func(current, next string) string {
		if strings.TrimSpace(next) == "" {
			return current
		}
		return strings.TrimSpace(next)
	}
	return Scope{
		Area:  pick(s.Area, patch.Area),
		Niche: pick(s.Niche, patch.Niche),
		Hours: pick(s.Hours, patch.Hours),
		SLA:   pick(s.SLA, patch.SLA),
	}
}

// Filters are the customer's grid criteria plus panel preferences.
type Filters struct {
	Search             string        `json:"search"`
	Category           string        `json:"category"`
	Store              string        `json:"store"`
	Sort               enums.SortKey `json:"sort"`
	OperatorStoreID    string        `json:"lojaSelectedStoreId"`
	StoreSearch        string        `json:"storeSearch"`
	CollapseCategories bool          `json:"collapseCategories"`
	CollapseStores     bool          `json:"collapseStores"`
	CollapseRules      bool          `json:"collapseRules"`
}

func DefaultFilters() Filters {
	return Filters{
		Category:        catalog.AllID,
		Store:           catalog.AllID,
		Sort:            enums.SortRelevance,
		OperatorStoreID: catalog.AllID,
	}
}

// Criteria extracts the filter engine input.
func (f Filters) Criteria() filter.Criteria {
	return filter.Criteria{Search: f.Search, Category: f.Category, Store: f.Store, Sort: f.Sort}
}

// WithCriteria replaces the grid criteria, keeping panel preferences.
func (f Filters) WithCriteria(c filter.Criteria) Filters {
	f.Search = c.Search
	f.Category = c.Category
	f.Store = c.Store
	f.Sort = c.Sort
	return f
}

type CustomerAuth struct {
	LoggedIn bool   `json:"loggedIn"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
}

type StoreAuth struct {
	LoggedIn bool   `json:"loggedIn"`
	StoreID  string `json:"storeId"`
	Operator string `json:"operator"`
	Email    string `json:"email"`
}

type AdminAuth struct {
	LoggedIn bool   `json:"loggedIn"`
	Name     string `json:"name"`
	Email    string `json:"email"`
}

// Auth is the simulated login state per role. Nothing here is a credential.
type Auth struct {
	Customer CustomerAuth `json:"customer"`
	Store    StoreAuth    `json:"store"`
	Admin    AdminAuth    `json:"admin"`
}

// State is everything the storefront persists.
type State struct {
	Cart     cart.Cart
	Orders   []orders.Order
	Scope    Scope
	Filters  Filters
	Auth     Auth
	Products []catalog.Product
}

// DefaultState is the seed state: empty cart and history, seed products.
func DefaultState() State {
	return State{
		Orders:   []orders.Order{},
		Scope:    DefaultScope(),
		Filters:  DefaultFilters(),
		Products: catalog.SeedProducts(),
	}
}
