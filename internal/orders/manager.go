package orders

import (
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/angelmondragon/feiralocal-backend/internal/cart"
	"github.com/angelmondragon/feiralocal-backend/internal/catalog"
	"github.com/angelmondragon/feiralocal-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/feiralocal-backend/pkg/errors"
	"github.com/angelmondragon/feiralocal-backend/pkg/types"
	"github.com/shopspring/decimal"
)

const (
	MsgEmptyCart     = "Seu carrinho está vazio."
	MsgMissingFields = "Preencha nome, WhatsApp, rua/número e bairro."
	MsgInvalidStore  = "Selecione itens de uma loja válida."
	MsgNoOrders      = "Não há pedidos."
	MsgAllDelivered  = "Todos os pedidos já estão entregues."

	idPrefix = "ORD"
)

// Catalog is what checkout and demo seeding read from.
type Catalog interface {
	cart.Catalog
	Stores() []catalog.Store
	ProductsOfStore(storeID string) []catalog.Product
}

// Manager owns the order history, most recent first.
type Manager struct {
	mu     sync.Mutex
	orders []Order
	now    func() time.Time
	rng    *rand.Rand
}

// Option customizes a Manager.
type Option func(*Manager)

// WithClock overrides the time source used for ids and timestamps.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// WithRand overrides the random source used for ids and demo orders.
func WithRand(rng *rand.Rand) Option {
	return func(m *Manager) {
		if rng != nil {
			m.rng = rng
		}
	}
}

func NewManager(opts ...Option) *Manager {
	seed := uint64(time.Now().UnixNano())
	m := &Manager{
		now: time.Now,
		rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Orders returns a copy of the history, most recent first.
func (m *Manager) Orders() []Order {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Order, 0, len(m.orders))
	for _, o := range m.orders {
		out = append(out, o.clone())
	}
	return out
}

// ForStore returns the store's orders, most recent first.
func (m *Manager) ForStore(storeID string) []Order {
	var out []Order
	for _, o := range m.Orders() {
		if o.StoreID == storeID {
			out = append(out, o)
		}
	}
	return out
}

// Restore replaces the history with previously persisted orders.
func (m *Manager) Restore(orders []Order) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders = make([]Order, 0, len(orders))
	for _, o := range orders {
		m.orders = append(m.orders, o.clone())
	}
}

// CreateOrder validates the cart and checkout input, freezes names and
// prices into a new order seeded at "Aceito", prepends it and clears the
// cart. Nothing changes when validation fails.
func (m *Manager) CreateOrder(c *cart.Cart, cat Catalog, in Checkout) (Order, error) {
	if c == nil || c.IsEmpty() {
		return Order{}, pkgerrors.New(pkgerrors.CodeValidation, MsgEmptyCart)
	}
	customer := in.Customer.Trimmed()
	address := in.Address.Trimmed()
	if customer.Name == "" || customer.Phone == "" || address.Line1 == "" || address.District == "" {
		return Order{}, pkgerrors.New(pkgerrors.CodeValidation, MsgMissingFields)
	}
	payMethod := in.PayMethod
	if payMethod == "" {
		payMethod = enums.PaymentMethodPix
	}
	if !payMethod.IsValid() {
		return Order{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment method").
			WithDetails(map[string]any{"paymethod": string(in.PayMethod)})
	}
	store, ok := cat.FindStore(c.StoreID)
	if !ok {
		return Order{}, pkgerrors.New(pkgerrors.CodeValidation, MsgInvalidStore)
	}

	items := make([]Item, 0, len(c.Items))
	for _, line := range c.Items {
		item := Item{ProductID: line.ProductID, Name: "Produto", Price: decimal.Zero, Qty: line.Qty}
		if p, ok := cat.FindProduct(line.ProductID); ok {
			item.Name = p.Name
			item.Price = p.Price
		}
		items = append(items, item)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	order := m.build(store, items, payMethod, enums.OrderStatusAccepted, customer, address)
	m.orders = append([]Order{order}, m.orders...)
	c.Clear()
	return order.clone(), nil
}

// AdvanceOldestUnfinished scans the history front to back and moves the
// first undelivered order one stage forward.
func (m *Manager) AdvanceOldestUnfinished() (Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.orders) == 0 {
		return Order{}, pkgerrors.New(pkgerrors.CodeStateConflict, MsgNoOrders)
	}
	for i := range m.orders {
		if m.orders[i].IsDelivered() {
			continue
		}
		m.orders[i].StatusIndex = m.orders[i].StatusIndex.Next()
		return m.orders[i].clone(), nil
	}
	return Order{}, pkgerrors.New(pkgerrors.CodeStateConflict, MsgAllDelivered)
}

// ResetAll clears the history.
func (m *Manager) ResetAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders = nil
}

// SeedDemo prepends n random orders: random store, one to three distinct
// products with quantities 1–3, random payment method and status.
func (m *Manager) SeedDemo(cat Catalog, n int) []Order {
	var stores []catalog.Store
	for _, s := range cat.Stores() {
		if len(cat.ProductsOfStore(s.ID)) > 0 {
			stores = append(stores, s)
		}
	}
	if len(stores) == 0 || n <= 0 {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	created := make([]Order, 0, n)
	for i := 0; i < n; i++ {
		store := stores[m.rng.IntN(len(stores))]
		products := cat.ProductsOfStore(store.ID)
		pick := 1 + m.rng.IntN(min(3, len(products)))

		items := make([]Item, 0, pick)
		for _, idx := range m.rng.Perm(len(products))[:pick] {
			p := products[idx]
			items = append(items, Item{ProductID: p.ID, Name: p.Name, Price: p.Price, Qty: 1 + m.rng.IntN(3)})
		}
		payMethod := enums.PaymentMethodPix
		if m.rng.IntN(2) == 1 {
			payMethod = enums.PaymentMethodCard
		}
		order := m.build(
			store,
			items,
			payMethod,
			enums.OrderStatus(m.rng.IntN(int(enums.OrderStatusDelivered)+1)),
			types.Customer{Name: "Cliente Demo", Phone: "(11) 90000-0000"},
			types.Address{Line1: "Rua Exemplo, 123", District: "Centro"},
		)
		m.orders = append([]Order{order}, m.orders...)
		created = append(created, order.clone())
	}
	return created
}

// build assumes m.mu is held.
func (m *Manager) build(store catalog.Store, items []Item, payMethod enums.PaymentMethod, status enums.OrderStatus, customer types.Customer, address types.Address) Order {
	subtotal := decimal.Zero
	for _, it := range items {
		subtotal = subtotal.Add(it.LineTotal())
	}
	now := m.now()
	return Order{
		ID:          m.newID(now),
		CreatedAt:   now.UTC(),
		StoreID:     store.ID,
		StoreName:   store.Name,
		Items:       items,
		Subtotal:    subtotal,
		DeliveryFee: store.DeliveryFee,
		Total:       subtotal.Add(store.DeliveryFee),
		PayMethod:   payMethod,
		StatusIndex: status,
		Customer:    customer,
		Address:     address,
	}
}

// newID yields ORD-YYYYMMDD-NNNNNN. Uniqueness is probabilistic.
func (m *Manager) newID(now time.Time) string {
	return fmt.Sprintf("%s-%s-%d", idPrefix, now.Format("20060102"), 100000+m.rng.IntN(900000))
}
