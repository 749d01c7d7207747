package storefront

import (
	"context"
	"strings"

	"github.com/angelmondragon/feiralocal-backend/internal/catalog"
	"github.com/angelmondragon/feiralocal-backend/internal/dashboard"
	"github.com/angelmondragon/feiralocal-backend/internal/orders"
	"github.com/angelmondragon/feiralocal-backend/internal/persistence"
	"github.com/angelmondragon/feiralocal-backend/internal/scheduler"
	"github.com/angelmondragon/feiralocal-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/feiralocal-backend/pkg/errors"
)

const (
	MsgCustomerLogin = "Informe nome e WhatsApp."
	MsgStoreLogin    = "Selecione a loja e informe o operador."
	MsgAdminLogin    = "Informe email e senha."
)

// Login is the simulated sign-in form. Which fields matter depends on the
// role; the password is checked for presence and never stored.
type Login struct {
	Name     string
	Phone    string
	Email    string
	StoreID  string
	Operator string
	Password string
}

// Login marks role as signed in. A store login also selects that store in
// the operator panel.
func (s *Storefront) Login(ctx context.Context, role enums.ActorRole, in Login) (persistence.Auth, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	trim := strings.TrimSpace
	switch role {
	case enums.ActorRoleCustomer:
		if trim(in.Name) == "" || trim(in.Phone) == "" {
			return s.state.Auth, validation(MsgCustomerLogin, nil)
		}
		s.state.Auth.Customer = persistence.CustomerAuth{LoggedIn: true, Name: trim(in.Name), Phone: trim(in.Phone), Email: trim(in.Email)}
	case enums.ActorRoleStore:
		storeID := trim(in.StoreID)
		if storeID == "" || trim(in.Operator) == "" {
			return s.state.Auth, validation(MsgStoreLogin, nil)
		}
		if _, ok := s.cat.FindStore(storeID); !ok {
			return s.state.Auth, pkgerrors.New(pkgerrors.CodeNotFound, "store not found").WithDetails(map[string]any{"store_id": storeID})
		}
		s.state.Filters.OperatorStoreID = storeID
		s.state.Auth.Store = persistence.StoreAuth{LoggedIn: true, StoreID: storeID, Operator: trim(in.Operator), Email: trim(in.Email)}
	case enums.ActorRoleAdmin:
		if trim(in.Email) == "" || trim(in.Password) == "" {
			return s.state.Auth, validation(MsgAdminLogin, nil)
		}
		s.state.Auth.Admin = persistence.AdminAuth{LoggedIn: true, Name: "Admin", Email: trim(in.Email)}
	default:
		return s.state.Auth, validation("invalid role", map[string]any{"role": string(role)})
	}

	s.logg.Info(s.logg.WithActorRole(ctx, role.String()), "simulated login")
	s.commitLocked(ctx, scheduler.Flags{})
	return s.state.Auth, nil
}

// Logout clears the role's session.
func (s *Storefront) Logout(ctx context.Context, role enums.ActorRole) (persistence.Auth, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch role {
	case enums.ActorRoleCustomer:
		s.state.Auth.Customer = persistence.CustomerAuth{}
	case enums.ActorRoleStore:
		s.state.Auth.Store = persistence.StoreAuth{}
	case enums.ActorRoleAdmin:
		s.state.Auth.Admin = persistence.AdminAuth{}
	default:
		return s.state.Auth, validation("invalid role", map[string]any{"role": string(role)})
	}
	s.commitLocked(ctx, scheduler.Flags{})
	return s.state.Auth, nil
}

// StoreDashboard builds the operator panel for a store or "all".
func (s *Storefront) StoreDashboard(_ context.Context, storeID string) (dashboard.StoreView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.knownStoreOrAllLocked(storeID)
	if err != nil {
		return dashboard.StoreView{}, err
	}
	return dashboard.ForStore(id, s.orders.Orders(), s.cat), nil
}

// StoreProducts lists a store's products, unavailable ones included.
func (s *Storefront) StoreProducts(_ context.Context, storeID string) ([]catalog.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.cat.FindStore(storeID); !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "store not found").WithDetails(map[string]any{"store_id": storeID})
	}
	return nonNilProducts(s.cat.ProductsOfStore(storeID)), nil
}

// operatorFlags are the regions a catalog edit can change. The filter cache
// keeps serving results computed before the edit until the criteria change
// or the entry is evicted.
var operatorFlags = scheduler.Flags{Grid: true, Rows: true, Sidebar: true}

func (s *Storefront) AddProduct(ctx context.Context, storeID string, in catalog.NewProduct) (catalog.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.cat.AddProduct(storeID, in)
	if err != nil {
		return catalog.Product{}, err
	}
	s.logg.Info(s.logg.WithFields(s.logg.WithStoreID(ctx, storeID), map[string]any{"product_id": p.ID}), "product added")
	s.commitLocked(ctx, operatorFlags)
	return p, nil
}

func (s *Storefront) UpdateProduct(ctx context.Context, storeID, productID string, patch catalog.ProductPatch) (catalog.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.cat.UpdateProduct(storeID, productID, patch)
	if err != nil {
		return catalog.Product{}, err
	}
	s.commitLocked(ctx, operatorFlags)
	return p, nil
}

// DeleteProduct removes the product and any cart line pointing at it.
func (s *Storefront) DeleteProduct(ctx context.Context, storeID, productID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.cat.DeleteProduct(storeID, productID); err != nil {
		return err
	}
	s.state.Cart.Sanitize(s.cat)
	s.logg.Info(s.logg.WithFields(s.logg.WithStoreID(ctx, storeID), map[string]any{"product_id": productID}), "product deleted")
	s.commitLocked(ctx, operatorFlags)
	return nil
}

// AdminDashboard builds the platform panel.
func (s *Storefront) AdminDashboard(context.Context) dashboard.AdminView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return dashboard.Admin(s.orders.Orders(), s.cat.Stores())
}

// SeedDemoOrders prepends the configured number of random demo orders.
func (s *Storefront) SeedDemoOrders(ctx context.Context) []orders.Order {
	s.mu.Lock()
	defer s.mu.Unlock()

	created := s.orders.SeedDemo(s.cat, s.demoOrders)
	if created == nil {
		created = []orders.Order{}
	}
	s.metrics.IncOrdersCreated("demo", len(created))
	s.logg.Info(s.logg.WithField(ctx, "count", len(created)), "demo orders seeded")
	s.commitLocked(ctx, scheduler.Flags{KPIs: true})
	return created
}

// ResetAll erases every persisted slot and returns to the seed state. The
// in-memory state is reset even when the backend delete fails.
func (s *Storefront) ResetAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	fresh, resetErr := s.gateway.Reset(ctx)
	if err := s.adopt(fresh); err != nil {
		return err
	}
	if resetErr != nil {
		return resetErr
	}
	s.logg.Info(ctx, "state reset")
	return nil
}
