package persistence

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/angelmondragon/feiralocal-backend/internal/cart"
	"github.com/angelmondragon/feiralocal-backend/internal/catalog"
	"github.com/angelmondragon/feiralocal-backend/internal/orders"
	"github.com/angelmondragon/feiralocal-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/feiralocal-backend/pkg/errors"
	"github.com/angelmondragon/feiralocal-backend/pkg/logger"
	"github.com/angelmondragon/feiralocal-backend/pkg/metrics"
	"go.uber.org/multierr"
)

// GatewayParams configure the persistence gateway.
type GatewayParams struct {
	Backend Backend
	// Stores are the known sellers; products and carts of other stores are
	// dropped on load. Defaults to the seed stores.
	Stores  []catalog.Store
	Logger  *logger.Logger
	Metrics *metrics.StorefrontMetrics
}

// Gateway loads, saves and resets the storefront state.
type Gateway struct {
	backend Backend
	stores  []catalog.Store
	logg    *logger.Logger
	metrics *metrics.StorefrontMetrics
}

func NewGateway(params GatewayParams) (*Gateway, error) {
	if params.Backend == nil {
		return nil, fmt.Errorf("persistence backend required")
	}
	stores := params.Stores
	if len(stores) == 0 {
		stores = catalog.SeedStores()
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &Gateway{backend: params.Backend, stores: stores, logg: logg, metrics: params.Metrics}, nil
}

// Ping checks the backend.
func (g *Gateway) Ping(ctx context.Context) error {
	return g.backend.Ping(ctx)
}

// Load restores every slot independently. Absent or malformed slots fall back
// to defaults and are never reported as errors; the returned error only
// aggregates backend read failures, and the state is usable either way.
func (g *Gateway) Load(ctx context.Context) (State, error) {
	st := DefaultState()
	var errs error

	read := func(key string) (string, bool) {
		raw, ok, err := g.backend.Get(ctx, key)
		if err != nil {
			g.metrics.IncStorageFailure("load")
			errs = multierr.Append(errs, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read "+key))
			return "", false
		}
		raw = strings.TrimSpace(raw)
		if !ok || raw == "" || raw == "null" {
			return "", false
		}
		return raw, true
	}
	discard := func(key string, err error) {
		g.logg.Warn(g.logg.WithFields(ctx, map[string]any{"key": key, "reason": err.Error()}), "discarding malformed persisted state")
	}

	if raw, ok := read(KeyProducts); ok {
		if products, err := decodeProducts(raw); err != nil {
			discard(KeyProducts, err)
		} else {
			st.Products = products
		}
	}
	if raw, ok := read(KeyCart); ok {
		if c, err := decodeCart(raw); err != nil {
			discard(KeyCart, err)
		} else {
			st.Cart = c
		}
	}
	if raw, ok := read(KeyOrders); ok {
		if list, err := decodeOrders(raw); err != nil {
			discard(KeyOrders, err)
		} else {
			st.Orders = list
		}
	}
	if raw, ok := read(KeyScope); ok {
		if err := json.Unmarshal([]byte(raw), &st.Scope); err != nil {
			discard(KeyScope, err)
			st.Scope = DefaultScope()
		}
	}
	if raw, ok := read(KeyFilters); ok {
		if err := json.Unmarshal([]byte(raw), &st.Filters); err != nil {
			discard(KeyFilters, err)
			st.Filters = DefaultFilters()
		}
		st.Filters = normalizeFilters(st.Filters)
	}
	if raw, ok := read(KeyAuth); ok {
		if err := json.Unmarshal([]byte(raw), &st.Auth); err != nil {
			discard(KeyAuth, err)
			st.Auth = Auth{}
		}
	}

	cat := catalog.New(g.stores, st.Products, nil)
	if dropped := len(st.Products) - len(cat.Products()); dropped > 0 {
		g.logg.Debug(g.logg.WithField(ctx, "dropped", dropped), "dropped persisted products of unknown stores")
	}
	st.Products = cat.Products()
	if st.Cart.Sanitize(cat) {
		g.logg.Debug(g.logg.WithStoreID(ctx, st.Cart.StoreID), "cleaned persisted cart")
	}
	return st, errs
}

// Save writes every slot. Failures are aggregated; successful slots stay
// written.
func (g *Gateway) Save(ctx context.Context, st State) error {
	slots := map[string]any{
		KeyCart:     st.Cart,
		KeyOrders:   nonNilOrders(st.Orders),
		KeyScope:    st.Scope,
		KeyFilters:  st.Filters,
		KeyAuth:     st.Auth,
		KeyProducts: nonNilProducts(st.Products),
	}
	var errs error
	for _, key := range Keys() {
		payload, err := json.Marshal(slots[key])
		if err != nil {
			errs = multierr.Append(errs, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode "+key))
			continue
		}
		if err := g.backend.Set(ctx, key, string(payload)); err != nil {
			errs = multierr.Append(errs, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "write "+key))
		}
	}
	if errs != nil {
		g.metrics.IncStorageFailure("save")
	}
	return errs
}

// Reset erases every slot and returns the seed state.
func (g *Gateway) Reset(ctx context.Context) (State, error) {
	if err := g.backend.Delete(ctx, Keys()...); err != nil {
		g.metrics.IncStorageFailure("reset")
		return DefaultState(), pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reset state")
	}
	return DefaultState(), nil
}

func decodeCart(raw string) (cart.Cart, error) {
	var probe struct {
		StoreID *string      `json:"storeId"`
		Items   *[]cart.Line `json:"items"`
	}
	if err := json.Unmarshal([]byte(raw), &probe); err != nil {
		return cart.Cart{}, err
	}
	if probe.Items == nil {
		return cart.Cart{}, fmt.Errorf("cart without items")
	}
	c := cart.Cart{Items: *probe.Items}
	if probe.StoreID != nil {
		c.StoreID = *probe.StoreID
	}
	return c, nil
}

func decodeOrders(raw string) ([]orders.Order, error) {
	var list []orders.Order
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		return nil, err
	}
	for i := range list {
		switch {
		case list[i].StatusIndex < enums.OrderStatusReceived:
			list[i].StatusIndex = enums.OrderStatusReceived
		case list[i].StatusIndex > enums.OrderStatusDelivered:
			list[i].StatusIndex = enums.OrderStatusDelivered
		}
	}
	return nonNilOrders(list), nil
}

// storedProduct distinguishes a missing availability flag from false.
type storedProduct struct {
	catalog.Product
	Available *bool `json:"available"`
}

func decodeProducts(raw string) ([]catalog.Product, error) {
	var stored []storedProduct
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		return nil, err
	}
	out := make([]catalog.Product, 0, len(stored))
	for _, sp := range stored {
		p := sp.Product
		p.Available = sp.Available == nil || *sp.Available
		out = append(out, p)
	}
	return out, nil
}

func normalizeFilters(f Filters) Filters {
	if strings.TrimSpace(f.Category) == "" {
		f.Category = catalog.AllID
	}
	if strings.TrimSpace(f.Store) == "" {
		f.Store = catalog.AllID
	}
	if strings.TrimSpace(f.OperatorStoreID) == "" {
		f.OperatorStoreID = catalog.AllID
	}
	if !f.Sort.IsValid() {
		f.Sort = enums.SortRelevance
	}
	return f
}

func nonNilOrders(list []orders.Order) []orders.Order {
	if list == nil {
		return []orders.Order{}
	}
	return list
}

func nonNilProducts(list []catalog.Product) []catalog.Product {
	if list == nil {
		return []catalog.Product{}
	}
	return list
}
