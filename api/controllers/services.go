package controllers

import (
	"context"

	"github.com/angelmondragon/feiralocal-backend/internal/cart"
	"github.com/angelmondragon/feiralocal-backend/internal/catalog"
	"github.com/angelmondragon/feiralocal-backend/internal/dashboard"
	"github.com/angelmondragon/feiralocal-backend/internal/discovery"
	"github.com/angelmondragon/feiralocal-backend/internal/orders"
	"github.com/angelmondragon/feiralocal-backend/internal/persistence"
	"github.com/angelmondragon/feiralocal-backend/internal/storefront"
	"github.com/angelmondragon/feiralocal-backend/pkg/enums"
	"github.com/angelmondragon/feiralocal-backend/pkg/types"
)

// CatalogService backs the browsing endpoints.
type CatalogService interface {
	Catalog(ctx context.Context) storefront.CatalogView
	Products(ctx context.Context, q storefront.ProductQuery) (storefront.ProductsView, error)
	Categories(ctx context.Context) []catalog.Category
	StoreTiles(ctx context.Context, query string) []storefront.StoreTile
	Discovery(ctx context.Context) []discovery.Row
	Filters(ctx context.Context) persistence.Filters
	UpdateFilters(ctx context.Context, patch storefront.FilterPatch) (persistence.Filters, error)
	SetSearch(ctx context.Context, raw string) (persistence.Filters, error)
}

// CartService backs the cart and checkout endpoints.
type CartService interface {
	Cart(ctx context.Context) cart.Summary
	AddToCart(ctx context.Context, productID string) (cart.Summary, error)
	ChangeQuantity(ctx context.Context, productID string, delta int) (cart.Summary, error)
	ClearCart(ctx context.Context) cart.Summary
	QuickStart(ctx context.Context) (cart.Summary, catalog.Product, error)
	Checkout(ctx context.Context, in orders.Checkout) (storefront.CheckoutResult, []types.Notice, error)
}

// OrderService backs the order history endpoints.
type OrderService interface {
	Orders(ctx context.Context) []orders.Order
	AdvanceOrder(ctx context.Context) (orders.Order, error)
	ResetOrders(ctx context.Context)
}

// SessionService backs scope and simulated login.
type SessionService interface {
	Scope(ctx context.Context) persistence.Scope
	UpdateScope(ctx context.Context, patch persistence.Scope) persistence.Scope
	Auth(ctx context.Context) persistence.Auth
	Login(ctx context.Context, role enums.ActorRole, in storefront.Login) (persistence.Auth, error)
	Logout(ctx context.Context, role enums.ActorRole) (persistence.Auth, error)
}

// OperatorService backs the store panel.
type OperatorService interface {
	StoreDashboard(ctx context.Context, storeID string) (dashboard.StoreView, error)
	StoreProducts(ctx context.Context, storeID string) ([]catalog.Product, error)
	AddProduct(ctx context.Context, storeID string, in catalog.NewProduct) (catalog.Product, error)
	UpdateProduct(ctx context.Context, storeID, productID string, patch catalog.ProductPatch) (catalog.Product, error)
	DeleteProduct(ctx context.Context, storeID, productID string) error
}

// AdminService backs the platform panel.
type AdminService interface {
	AdminDashboard(ctx context.Context) dashboard.AdminView
	SeedDemoOrders(ctx context.Context) []orders.Order
	ResetAll(ctx context.Context) error
}

// Pinger is a dependency checked by the readiness probe.
type Pinger interface {
	Ping(ctx context.Context) error
}
