package storefront

import (
	"context"
	"strings"

	"github.com/angelmondragon/feiralocal-backend/internal/cart"
	"github.com/angelmondragon/feiralocal-backend/internal/catalog"
	"github.com/angelmondragon/feiralocal-backend/internal/notifications"
	"github.com/angelmondragon/feiralocal-backend/internal/orders"
	"github.com/angelmondragon/feiralocal-backend/internal/persistence"
	"github.com/angelmondragon/feiralocal-backend/internal/scheduler"
	pkgerrors "github.com/angelmondragon/feiralocal-backend/pkg/errors"
	"github.com/angelmondragon/feiralocal-backend/pkg/types"
)

const (
	MsgNoProducts = "Nao ha produtos disponiveis."

	// NoticeNotifyFailed tags the notice returned when the store cannot be
	// messaged after checkout.
	NoticeNotifyFailed = "NOTIFY_UNAVAILABLE"
)

// FilterPatch changes the persisted criteria and panel preferences; nil
// fields are left alone.
type FilterPatch struct {
	Search             *string
	Category           *string
	Store              *string
	Sort               *string
	StoreSearch        *string
	OperatorStoreID    *string
	CollapseCategories *bool
	CollapseStores     *bool
	CollapseRules      *bool
}

// UpdateFilters validates and applies a patch. Category and store must be
// listed (or "all"); sort must be a known key.
func (s *Storefront) UpdateFilters(ctx context.Context, patch FilterPatch) (persistence.Filters, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.state.Filters
	if patch.Search != nil {
		next.Search = *patch.Search
	}
	if patch.Category != nil {
		category := strings.TrimSpace(*patch.Category)
		if category == "" {
			category = catalog.AllID
		}
		if !s.cat.HasCategory(category) {
			return s.state.Filters, validation("unknown category", map[string]any{"category": category})
		}
		next.Category = category
	}
	if patch.Store != nil {
		store, err := s.knownStoreOrAllLocked(*patch.Store)
		if err != nil {
			return s.state.Filters, err
		}
		next.Store = store
	}
	if patch.OperatorStoreID != nil {
		store, err := s.knownStoreOrAllLocked(*patch.OperatorStoreID)
		if err != nil {
			return s.state.Filters, err
		}
		next.OperatorStoreID = store
	}
	if patch.Sort != nil {
		sortKey, err := parseSort(*patch.Sort)
		if err != nil {
			return s.state.Filters, err
		}
		next.Sort = sortKey
	}
	if patch.StoreSearch != nil {
		next.StoreSearch = *patch.StoreSearch
	}
	if patch.CollapseCategories != nil {
		next.CollapseCategories = *patch.CollapseCategories
	}
	if patch.CollapseStores != nil {
		next.CollapseStores = *patch.CollapseStores
	}
	if patch.CollapseRules != nil {
		next.CollapseRules = *patch.CollapseRules
	}

	flags := scheduler.Flags{}
	if next.Criteria() != s.state.Filters.Criteria() {
		flags = scheduler.Flags{Grid: true, Rows: true, Sidebar: true}
	} else if next.StoreSearch != s.state.Filters.StoreSearch {
		flags.Sidebar = true
	}
	s.state.Filters = next
	s.commitLocked(ctx, flags)
	return next, nil
}

// SetSearch applies raw search text. The debounced search endpoint lands here.
func (s *Storefront) SetSearch(ctx context.Context, raw string) (persistence.Filters, error) {
	return s.UpdateFilters(ctx, FilterPatch{Search: &raw})
}

func (s *Storefront) knownStoreOrAllLocked(raw string) (string, error) {
	id := strings.TrimSpace(raw)
	if id == "" || id == catalog.AllID {
		return catalog.AllID, nil
	}
	if _, ok := s.cat.FindStore(id); !ok {
		return "", pkgerrors.New(pkgerrors.CodeNotFound, "store not found").WithDetails(map[string]any{"store_id": id})
	}
	return id, nil
}

// AddToCart adds one unit. A product of another store is rejected and the
// cart is left as it was.
func (s *Storefront) AddToCart(ctx context.Context, productID string) (cart.Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	before := s.state.Cart.StoreID
	if err := s.state.Cart.AddItem(s.cat, productID); err != nil {
		return s.state.Cart.Summarize(s.cat), err
	}
	s.commitLocked(ctx, scheduler.Flags{Rows: before != s.state.Cart.StoreID})
	return s.state.Cart.Summarize(s.cat), nil
}

// ChangeQuantity adds delta to a line; a line reaching zero is removed.
func (s *Storefront) ChangeQuantity(ctx context.Context, productID string, delta int) (cart.Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	before := s.state.Cart.StoreID
	if err := s.state.Cart.ChangeQuantity(productID, delta); err != nil {
		return s.state.Cart.Summarize(s.cat), err
	}
	s.commitLocked(ctx, scheduler.Flags{Rows: before != s.state.Cart.StoreID})
	return s.state.Cart.Summarize(s.cat), nil
}

func (s *Storefront) ClearCart(ctx context.Context) cart.Summary {
	s.mu.Lock()
	defer s.mu.Unlock()

	before := s.state.Cart.StoreID
	s.state.Cart.Clear()
	s.commitLocked(ctx, scheduler.Flags{Rows: before != ""})
	return s.state.Cart.Summarize(s.cat)
}

// QuickStart adds one random available product to the cart, drawn from the
// cart's store when the cart already has one.
func (s *Storefront) QuickStart(ctx context.Context) (cart.Summary, catalog.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pool := s.cat.Available()
	if s.state.Cart.StoreID != "" {
		var own []catalog.Product
		for _, p := range pool {
			if p.StoreID == s.state.Cart.StoreID {
				own = append(own, p)
			}
		}
		if len(own) > 0 {
			pool = own
		}
	}
	if len(pool) == 0 {
		return s.state.Cart.Summarize(s.cat), catalog.Product{}, validation(MsgNoProducts, nil)
	}
	p := pool[s.rng.IntN(len(pool))]

	before := s.state.Cart.StoreID
	if err := s.state.Cart.AddItem(s.cat, p.ID); err != nil {
		return s.state.Cart.Summarize(s.cat), p, err
	}
	s.commitLocked(ctx, scheduler.Flags{Rows: before != s.state.Cart.StoreID})
	return s.state.Cart.Summarize(s.cat), p, nil
}

// CheckoutResult is the created order plus, when the store can be reached,
// the message link to send it.
type CheckoutResult struct {
	Order        orders.Order                `json:"order"`
	Notification *notifications.Notification `json:"notification,omitempty"`
}

// Checkout turns the cart into an order. The order stands even when the
// store cannot be messaged; that failure comes back as a notice.
func (s *Storefront) Checkout(ctx context.Context, in orders.Checkout) (CheckoutResult, []types.Notice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, err := s.orders.CreateOrder(&s.state.Cart, s.cat, in)
	if err != nil {
		return CheckoutResult{}, nil, err
	}
	s.metrics.IncOrdersCreated("checkout", 1)
	ctx = s.logg.WithOrderID(s.logg.WithStoreID(ctx, order.StoreID), order.ID)
	s.logg.Info(ctx, "order created")
	s.commitLocked(ctx, scheduler.Flags{Rows: true, KPIs: true})

	result := CheckoutResult{Order: order}
	var notices []types.Notice
	store, _ := s.cat.FindStore(order.StoreID)
	note, err := s.linker.Link(store, order)
	if err != nil {
		s.logg.Warn(ctx, "order notification unavailable")
		notices = append(notices, noticeFor(err))
	} else {
		result.Notification = &note
	}
	return result, notices, nil
}

func noticeFor(err error) types.Notice {
	if typed := pkgerrors.As(err); typed != nil {
		return types.Notice{Code: NoticeNotifyFailed, Message: typed.Message()}
	}
	return types.Notice{Code: NoticeNotifyFailed, Message: err.Error()}
}

// AdvanceOrder simulates progress on the oldest unfinished order.
func (s *Storefront) AdvanceOrder(ctx context.Context) (orders.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, err := s.orders.AdvanceOldestUnfinished()
	if err != nil {
		return orders.Order{}, err
	}
	s.metrics.IncStatusAdvance()
	s.logg.Debug(s.logg.WithFields(ctx, map[string]any{"order_id": order.ID, "status": order.StatusLabel()}), "order advanced")
	s.commitLocked(ctx, scheduler.Flags{KPIs: true})
	return order, nil
}

// ResetOrders empties the history.
func (s *Storefront) ResetOrders(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.orders.ResetAll()
	s.commitLocked(ctx, scheduler.Flags{KPIs: true})
}

// UpdateScope merges the non-blank fields of patch.
func (s *Storefront) UpdateScope(ctx context.Context, patch persistence.Scope) persistence.Scope {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.Scope = s.state.Scope.Merge(patch)
	s.commitLocked(ctx, scheduler.Flags{})
	return s.state.Scope
}

func validation(message string, details map[string]any) error {
	err := pkgerrors.New(pkgerrors.CodeValidation, message)
	if details != nil {
		err = err.WithDetails(details)
	}
	return err
}
