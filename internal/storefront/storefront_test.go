package storefront

import (
	"context"
	"testing"
	"time"

	"github.com/angelmondragon/feiralocal-backend/internal/catalog"
	"github.com/angelmondragon/feiralocal-backend/internal/discovery"
	"github.com/angelmondragon/feiralocal-backend/internal/orders"
	"github.com/angelmondragon/feiralocal-backend/internal/persistence"
	"github.com/angelmondragon/feiralocal-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/feiralocal-backend/pkg/errors"
	"github.com/angelmondragon/feiralocal-backend/pkg/metrics"
	"github.com/angelmondragon/feiralocal-backend/pkg/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 3, 14, 15, 0, 0, 0, time.UTC)

func newTestStorefront(t *testing.T, backend persistence.Backend) *Storefront {
	t.Helper()
	gateway, err := persistence.NewGateway(persistence.GatewayParams{Backend: backend})
	require.NoError(t, err)
	sf, err := New(context.Background(), Params{
		Gateway: gateway,
		Metrics: metrics.NewStorefrontMetrics(prometheus.NewRegistry()),
		Seed:    7,
		Clock:   func() time.Time { return fixedNow },
	})
	require.NoError(t, err)
	return sf
}

func validCheckout() orders.Checkout {
	return orders.Checkout{
		Customer:  types.Customer{Name: "Ana", Phone: "41999990000"},
		Address:   types.Address{Line1: "Rua A, 1", District: "Centro"},
		PayMethod: enums.PaymentMethodCard,
	}
}

func TestNewRequiresGateway(t *testing.T) {
	_, err := New(context.Background(), Params{})
	require.Error(t, err)
}

func TestCatalogViewOnSeed(t *testing.T) {
	sf := newTestStorefront(t, persistence.NewMemoryBackend())
	view := sf.Catalog(context.Background())

	assert.Len(t, view.Products, 9)
	assert.Equal(t, "Navegue com tranquilidade - entrega rápida na sua área.", view.Hint)
	require.NotEmpty(t, view.Rows)
	assert.Equal(t, discovery.TitleQuickPicks, view.Rows[0].Title)
	assert.Equal(t, catalog.AllID, view.Categories[0].ID)
	require.Len(t, view.Stores, 4)
	assert.Equal(t, "Todas as lojas", view.Stores[0].Name)
	assert.True(t, view.Stores[0].Selected)
	assert.Equal(t, "—", view.KPIs.AvgTicketLabel)
	assert.Equal(t, persistence.DefaultScope(), view.Scope)
	assert.Equal(t, 0, view.Cart.Count)
}

func TestMutationsArePersisted(t *testing.T) {
	ctx := context.Background()
	backend := persistence.NewMemoryBackend()
	sf := newTestStorefront(t, backend)

	_, err := sf.AddToCart(ctx, "p-001")
	require.NoError(t, err)
	_, err = sf.AddToCart(ctx, "p-002")
	require.NoError(t, err)
	search := "cabo"
	_, err = sf.UpdateFilters(ctx, FilterPatch{Search: &search})
	require.NoError(t, err)
	sf.UpdateScope(ctx, persistence.Scope{Area: "Batel"})
	_, err = sf.Login(ctx, enums.ActorRoleCustomer, Login{Name: "Ana", Phone: "41999990000"})
	require.NoError(t, err)

	reloaded := newTestStorefront(t, backend)
	summary := reloaded.Cart(ctx)
	assert.Equal(t, "loja-01", summary.StoreID)
	assert.Equal(t, 2, summary.Count)
	assert.Equal(t, "cabo", reloaded.Filters(ctx).Search)
	assert.Equal(t, "Batel", reloaded.Scope(ctx).Area)
	assert.True(t, reloaded.Auth(ctx).Customer.LoggedIn)

	view := reloaded.Catalog(ctx)
	require.Len(t, view.Products, 1)
	assert.Equal(t, "p-001", view.Products[0].ID)
}

func TestCrossStoreAddLeavesCartUnchanged(t *testing.T) {
	ctx := context.Background()
	sf := newTestStorefront(t, persistence.NewMemoryBackend())

	_, err := sf.AddToCart(ctx, "p-001")
	require.NoError(t, err)
	before := sf.Cart(ctx)

	_, err = sf.AddToCart(ctx, "p-101")
	require.Error(t, err)
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeConflict))
	assert.Equal(t, before, sf.Cart(ctx))
}

func TestUpdateFiltersValidation(t *testing.T) {
	ctx := context.Background()
	sf := newTestStorefront(t, persistence.NewMemoryBackend())

	bogus := "bogus"
	tests := []struct {
		name  string
		patch FilterPatch
		code  pkgerrors.Code
	}{
		{"unknown category", FilterPatch{Category: &bogus}, pkgerrors.CodeValidation},
		{"unknown store", FilterPatch{Store: &bogus}, pkgerrors.CodeNotFound},
		{"unknown operator store", FilterPatch{OperatorStoreID: &bogus}, pkgerrors.CodeNotFound},
		{"unknown sort", FilterPatch{Sort: &bogus}, pkgerrors.CodeValidation},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := sf.UpdateFilters(ctx, tc.patch)
			require.Error(t, err)
			assert.True(t, pkgerrors.Is(err, tc.code), "got %v", err)
			assert.Equal(t, persistence.DefaultFilters(), got)
		})
	}

	blank := " "
	collapsed := true
	got, err := sf.UpdateFilters(ctx, FilterPatch{Category: &blank, CollapseRules: &collapsed})
	require.NoError(t, err)
	assert.Equal(t, catalog.AllID, got.Category)
	assert.True(t, got.CollapseRules)
}

func TestProductsQueryDoesNotPersist(t *testing.T) {
	ctx := context.Background()
	sf := newTestStorefront(t, persistence.NewMemoryBackend())

	store := "loja-03"
	sortKey := "price_desc"
	view, err := sf.Products(ctx, ProductQuery{Store: &store, Sort: &sortKey})
	require.NoError(t, err)
	ids := make([]string, 0, len(view.Products))
	for _, p := range view.Products {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []string{"p-201", "p-203", "p-202"}, ids)
	assert.Contains(t, view.Hint, "Loja: Papel & Cia")
	assert.Equal(t, catalog.AllID, sf.Filters(ctx).Store)

	bad := "cheapest"
	_, err = sf.Products(ctx, ProductQuery{Sort: &bad})
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation))
}

func TestStoreTiles(t *testing.T) {
	ctx := context.Background()
	sf := newTestStorefront(t, persistence.NewMemoryBackend())

	tiles := sf.StoreTiles(ctx, "perfum")
	require.Len(t, tiles, 2)
	assert.Equal(t, catalog.AllID, tiles[0].ID)
	assert.Equal(t, "loja-02", tiles[1].ID)
	assert.Contains(t, tiles[1].RatingLabel, "Rating ")

	store := "loja-02"
	_, err := sf.UpdateFilters(ctx, FilterPatch{Store: &store})
	require.NoError(t, err)
	for _, tile := range sf.StoreTiles(ctx, "") {
		assert.Equal(t, tile.ID == "loja-02", tile.Selected, tile.ID)
	}
}

func TestQuickStartStaysInCartStore(t *testing.T) {
	ctx := context.Background()
	sf := newTestStorefront(t, persistence.NewMemoryBackend())

	_, err := sf.AddToCart(ctx, "p-201")
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		summary, p, err := sf.QuickStart(ctx)
		require.NoError(t, err)
		assert.Equal(t, "loja-03", p.StoreID)
		assert.Equal(t, "loja-03", summary.StoreID)
	}
	assert.Equal(t, 11, sf.Cart(ctx).Count)
}

func TestQuickStartWithoutProducts(t *testing.T) {
	ctx := context.Background()
	backend := persistence.NewMemoryBackend()
	require.NoError(t, backend.Set(ctx, persistence.KeyProducts, "[]"))
	sf := newTestStorefront(t, backend)

	_, _, err := sf.QuickStart(ctx)
	require.Error(t, err)
	assert.Equal(t, MsgNoProducts, pkgerrors.As(err).Message())
}

func TestCheckoutFlow(t *testing.T) {
	ctx := context.Background()
	sf := newTestStorefront(t, persistence.NewMemoryBackend())

	_, err := sf.AddToCart(ctx, "p-001")
	require.NoError(t, err)
	_, err = sf.ChangeQuantity(ctx, "p-001", 1)
	require.NoError(t, err)

	result, notices, err := sf.Checkout(ctx, validCheckout())
	require.NoError(t, err)
	assert.Empty(t, notices)
	require.NotNil(t, result.Notification)
	assert.Contains(t, result.Notification.Message, "Pedido "+result.Order.ID)
	assert.True(t, result.Order.Total.Equal(decimal.RequireFromString("57.70")), result.Order.Total.String())
	assert.Equal(t, enums.OrderStatusAccepted, result.Order.StatusIndex)
	assert.True(t, result.Order.CreatedAt.Equal(fixedNow))

	assert.Equal(t, 0, sf.Cart(ctx).Count)
	view := sf.Catalog(ctx)
	assert.Equal(t, "R$ 57,70", view.KPIs.AvgTicketLabel)

	_, _, err = sf.Checkout(ctx, validCheckout())
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation))
	assert.Len(t, sf.Orders(ctx), 1)
}

func TestAdvanceAndResetOrders(t *testing.T) {
	ctx := context.Background()
	sf := newTestStorefront(t, persistence.NewMemoryBackend())

	_, err := sf.AdvanceOrder(ctx)
	require.Error(t, err)
	assert.Equal(t, orders.MsgNoOrders, pkgerrors.As(err).Message())

	_, err = sf.AddToCart(ctx, "p-102")
	require.NoError(t, err)
	_, _, err = sf.Checkout(ctx, validCheckout())
	require.NoError(t, err)

	advanced, err := sf.AdvanceOrder(ctx)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusPaid, advanced.StatusIndex)

	sf.ResetOrders(ctx)
	assert.Empty(t, sf.Orders(ctx))
}

func TestLoginLogout(t *testing.T) {
	ctx := context.Background()
	sf := newTestStorefront(t, persistence.NewMemoryBackend())

	tests := []struct {
		name string
		role enums.ActorRole
		in   Login
		msg  string
	}{
		{"customer without phone", enums.ActorRoleCustomer, Login{Name: "Ana"}, MsgCustomerLogin},
		{"store without operator", enums.ActorRoleStore, Login{StoreID: "loja-01"}, MsgStoreLogin},
		{"admin without password", enums.ActorRoleAdmin, Login{Email: "a@b.c"}, MsgAdminLogin},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := sf.Login(ctx, tc.role, tc.in)
			require.Error(t, err)
			assert.Equal(t, tc.msg, pkgerrors.As(err).Message())
		})
	}

	_, err := sf.Login(ctx, enums.ActorRoleStore, Login{StoreID: "loja-09", Operator: "Bia"})
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeNotFound))

	auth, err := sf.Login(ctx, enums.ActorRoleStore, Login{StoreID: "loja-02", Operator: " Bia "})
	require.NoError(t, err)
	assert.Equal(t, persistence.StoreAuth{LoggedIn: true, StoreID: "loja-02", Operator: "Bia"}, auth.Store)
	assert.Equal(t, "loja-02", sf.Filters(ctx).OperatorStoreID)

	auth, err = sf.Login(ctx, enums.ActorRoleAdmin, Login{Email: "admin@feira.local", Password: "x"})
	require.NoError(t, err)
	assert.Equal(t, "Admin", auth.Admin.Name)

	auth, err = sf.Logout(ctx, enums.ActorRoleStore)
	require.NoError(t, err)
	assert.False(t, auth.Store.LoggedIn)
	assert.True(t, auth.Admin.LoggedIn)

	_, err = sf.Logout(ctx, enums.ActorRole("guest"))
	assert.Error(t, err)
}

func TestOperatorProductActions(t *testing.T) {
	ctx := context.Background()
	sf := newTestStorefront(t, persistence.NewMemoryBackend())

	p, err := sf.AddProduct(ctx, "loja-01", catalog.NewProduct{Name: "Suporte Veicular", Category: "Acessórios", Price: decimal.RequireFromString("45")})
	require.NoError(t, err)
	assert.True(t, p.Available)

	list, err := sf.StoreProducts(ctx, "loja-01")
	require.NoError(t, err)
	assert.Len(t, list, 4)

	_, err = sf.UpdateProduct(ctx, "loja-02", p.ID, catalog.ProductPatch{})
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeNotFound), "other store's product")

	_, err = sf.AddToCart(ctx, p.ID)
	require.NoError(t, err)
	require.NoError(t, sf.DeleteProduct(ctx, "loja-01", p.ID))
	assert.Equal(t, 0, sf.Cart(ctx).Count, "cart lines of deleted products are dropped")

	_, err = sf.StoreProducts(ctx, "loja-99")
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeNotFound))
}

func TestDashboardsSeedAndReset(t *testing.T) {
	ctx := context.Background()
	backend := persistence.NewMemoryBackend()
	sf := newTestStorefront(t, backend)

	seeded := sf.SeedDemoOrders(ctx)
	require.Len(t, seeded, defaultDemoOrders)
	for _, o := range seeded {
		assert.True(t, o.StatusIndex.IsValid())
		sum := decimal.Zero
		for _, it := range o.Items {
			sum = sum.Add(it.LineTotal())
		}
		assert.True(t, o.Total.Equal(sum.Add(o.DeliveryFee)))
	}

	admin := sf.AdminDashboard(ctx)
	assert.Equal(t, defaultDemoOrders, admin.Totals.OrderCount)
	assert.True(t, admin.HasStoreData)
	assert.Len(t, admin.Stores, 3)

	all, err := sf.StoreDashboard(ctx, "all")
	require.NoError(t, err)
	assert.Len(t, all.Orders, defaultDemoOrders)
	_, err = sf.StoreDashboard(ctx, "loja-77")
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeNotFound))

	_, err = sf.AddToCart(ctx, "p-001")
	require.NoError(t, err)
	require.NoError(t, sf.ResetAll(ctx))
	assert.Empty(t, sf.Orders(ctx))
	assert.Equal(t, 0, sf.Cart(ctx).Count)
	for _, key := range persistence.Keys() {
		_, ok, _ := backend.Get(ctx, key)
		assert.False(t, ok, key)
	}
}

func TestCloseSavesState(t *testing.T) {
	ctx := context.Background()
	backend := persistence.NewMemoryBackend()
	sf := newTestStorefront(t, backend)

	require.NoError(t, sf.Close(ctx))
	_, ok, err := backend.Get(ctx, persistence.KeyProducts)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, sf.Ping(ctx))
}

func TestRunRefreshesInBackground(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	sf := newTestStorefront(t, persistence.NewMemoryBackend())

	done := make(chan error, 1)
	go func() { done <- sf.Run(ctx) }()

	require.Eventually(t, func() bool {
		return sf.coalescer.Pending().IsZero()
	}, 2*time.Second, 5*time.Millisecond)

	cancel()
	require.ErrorIs(t, <-done, context.Canceled)
}
