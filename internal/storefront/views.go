package storefront

import (
	"context"
	"strconv"
	"strings"

	"github.com/angelmondragon/feiralocal-backend/internal/cart"
	"github.com/angelmondragon/feiralocal-backend/internal/catalog"
	"github.com/angelmondragon/feiralocal-backend/internal/dashboard"
	"github.com/angelmondragon/feiralocal-backend/internal/discovery"
	"github.com/angelmondragon/feiralocal-backend/internal/filter"
	"github.com/angelmondragon/feiralocal-backend/internal/orders"
	"github.com/angelmondragon/feiralocal-backend/internal/persistence"
	"github.com/angelmondragon/feiralocal-backend/internal/scheduler"
	"github.com/angelmondragon/feiralocal-backend/pkg/enums"
)

// StoreTile is one entry of the store sidebar.
type StoreTile struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Niche       string `json:"niche"`
	RatingLabel string `json:"ratingLabel"`
	Selected    bool   `json:"selected"`
}

// CatalogView is everything the customer screen renders.
type CatalogView struct {
	Criteria   filter.Criteria          `json:"criteria"`
	Products   []catalog.Product        `json:"products"`
	Hint       string                   `json:"hint"`
	Rows       []discovery.Row          `json:"rows"`
	Categories []catalog.Category       `json:"categories"`
	Stores     []StoreTile              `json:"stores"`
	Cart       cart.Summary             `json:"cart"`
	Scope      persistence.Scope        `json:"scope"`
	KPIs       dashboard.CustomerKPIs   `json:"kpis"`
	Auth       persistence.CustomerAuth `json:"auth"`
}

// ProductsView is the filtered grid alone.
type ProductsView struct {
	Criteria filter.Criteria   `json:"criteria"`
	Products []catalog.Product `json:"products"`
	Hint     string            `json:"hint"`
}

// ProductQuery overrides the persisted criteria for one read; nil fields
// keep the persisted value.
type ProductQuery struct {
	Search   *string
	Category *string
	Store    *string
	Sort     *string
}

// snapshot holds the regions computed by the last refresh pass.
type snapshot struct {
	criteria   filter.Criteria
	grid       []catalog.Product
	hint       string
	rows       []discovery.Row
	categories []catalog.Category
	tiles      []StoreTile
	kpis       dashboard.CustomerKPIs
}

func (s *Storefront) render(_ context.Context, flags scheduler.Flags) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.renderLocked(flags)
	return nil
}

func (s *Storefront) renderLocked(flags scheduler.Flags) {
	criteria := s.state.Filters.Criteria().Normalized()
	if flags.Grid {
		s.snap.criteria = criteria
		s.snap.grid = s.engine.Filter(criteria, s.cat)
		s.snap.hint = filter.Hint(criteria, s.cat)
	}
	if flags.Rows {
		s.snap.rows = s.composer.Compose(s.cat.Available(), criteria, s.state.Cart.StoreID)
	}
	if flags.Sidebar {
		s.snap.categories = s.cat.ListCategories()
		s.snap.tiles = s.storeTilesLocked(s.state.Filters.StoreSearch)
	}
	if flags.KPIs {
		s.snap.kpis = dashboard.Customer(s.orders.Orders(), s.cat)
	}
}

// refresh runs any pending refresh pass so reads see the latest mutation.
func (s *Storefront) refresh(ctx context.Context) {
	if _, err := s.coalescer.Flush(ctx); err != nil {
		s.logg.Error(ctx, "refresh before read failed", err)
	}
}

// Catalog returns the customer screen.
func (s *Storefront) Catalog(ctx context.Context) CatalogView {
	s.refresh(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	return CatalogView{
		Criteria:   s.snap.criteria,
		Products:   nonNilProducts(s.snap.grid),
		Hint:       s.snap.hint,
		Rows:       nonNilRows(s.snap.rows),
		Categories: s.snap.categories,
		Stores:     s.snap.tiles,
		Cart:       s.state.Cart.Summarize(s.cat),
		Scope:      s.state.Scope,
		KPIs:       s.snap.kpis,
		Auth:       s.state.Auth.Customer,
	}
}

// Products filters with the persisted criteria, overridden by q, without
// changing what is persisted.
func (s *Storefront) Products(_ context.Context, q ProductQuery) (ProductsView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	criteria := s.state.Filters.Criteria()
	if q.Search != nil {
		criteria.Search = *q.Search
	}
	if q.Category != nil {
		criteria.Category = *q.Category
	}
	if q.Store != nil {
		criteria.Store = *q.Store
	}
	if q.Sort != nil {
		sortKey, err := parseSort(*q.Sort)
		if err != nil {
			return ProductsView{}, err
		}
		criteria.Sort = sortKey
	}
	criteria = criteria.Normalized()
	return ProductsView{
		Criteria: criteria,
		Products: s.engine.Filter(criteria, s.cat),
		Hint:     filter.Hint(criteria, s.cat),
	}, nil
}

// Discovery returns the discovery rows of the last refresh pass.
func (s *Storefront) Discovery(ctx context.Context) []discovery.Row {
	s.refresh(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	return nonNilRows(s.snap.rows)
}

func (s *Storefront) Categories(context.Context) []catalog.Category {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cat.ListCategories()
}

// StoreTiles lists the "all" tile followed by stores matching query by name
// or niche. An empty query uses the persisted store search.
func (s *Storefront) StoreTiles(_ context.Context, query string) []StoreTile {
	s.mu.Lock()
	defer s.mu.Unlock()
	if strings.TrimSpace(query) == "" {
		query = s.state.Filters.StoreSearch
	}
	return s.storeTilesLocked(query)
}

func (s *Storefront) storeTilesLocked(query string) []StoreTile {
	matches := s.cat.SearchStores(query)
	tiles := make([]StoreTile, 0, len(matches)+1)
	tiles = append(tiles, StoreTile{
		ID:          catalog.AllID,
		Name:        "Todas as lojas",
		Niche:       "Catalogo completo",
		RatingLabel: "Sem rating",
	})
	for _, st := range matches {
		label := "Sem rating"
		if st.Rating > 0 {
			label = "Rating " + strconv.FormatFloat(st.Rating, 'f', 1, 64)
		}
		tiles = append(tiles, StoreTile{ID: st.ID, Name: st.Name, Niche: st.Niche, RatingLabel: label})
	}
	selected := s.state.Filters.Store
	if selected == "" {
		selected = catalog.AllID
	}
	for i := range tiles {
		tiles[i].Selected = tiles[i].ID == selected
	}
	return tiles
}

func (s *Storefront) Cart(context.Context) cart.Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Cart.Summarize(s.cat)
}

// Orders returns the history, most recent first.
func (s *Storefront) Orders(context.Context) []orders.Order {
	return s.orders.Orders()
}

func (s *Storefront) Filters(context.Context) persistence.Filters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Filters
}

func (s *Storefront) Scope(context.Context) persistence.Scope {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Scope
}

func (s *Storefront) Auth(context.Context) persistence.Auth {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Auth
}

func parseSort(raw string) (enums.SortKey, error) {
	sortKey, err := enums.ParseSortKey(strings.TrimSpace(raw))
	if err != nil {
		return "", validation(err.Error(), map[string]any{"sort": raw})
	}
	return sortKey, nil
}

func nonNilProducts(list []catalog.Product) []catalog.Product {
	if list == nil {
		return []catalog.Product{}
	}
	return list
}

func nonNilRows(rows []discovery.Row) []discovery.Row {
	if rows == nil {
		return []discovery.Row{}
	}
	return rows
}
