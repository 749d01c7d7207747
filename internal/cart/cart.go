package cart

import (
	"github.com/angelmondragon/feiralocal-backend/internal/catalog"
	pkgerrors "github.com/angelmondragon/feiralocal-backend/pkg/errors"
	"github.com/shopspring/decimal"
)

// MsgOtherStore is shown when an item from a second store is added.
const MsgOtherStore = "Seu carrinho já tem itens de outra loja. Finalize ou limpe o carrinho."

// MaxLineQty caps the quantity of a single line.
const MaxLineQty = 999

// Catalog resolves the products and stores a cart refers to.
type Catalog interface {
	FindProduct(id string) (catalog.Product, bool)
	FindStore(id string) (catalog.Store, bool)
}

// Line is a product and its quantity; Qty is always at least 1.
type Line struct {
	ProductID string `json:"productId"`
	Qty       int    `json:"qty"`
}

// Cart holds line items of a single store in insertion order. The zero value
// is an empty cart.
type Cart struct {
	StoreID string `json:"storeId,omitempty"`
	Items   []Line `json:"items"`
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// Clone returns a deep copy.
func (c *Cart) Clone() Cart {
	return Cart{StoreID: c.StoreID, Items: append([]Line(nil), c.Items...)}
}

// AddItem adds one unit of the product. A product from a store other than
// the cart's owner is rejected with CodeConflict and the cart is unchanged.
func (c *Cart) AddItem(cat Catalog, productID string) error {
	p, ok := cat.FindProduct(productID)
	if !ok {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not found").WithDetails(map[string]any{"product_id": productID})
	}
	if !p.Available {
		return pkgerrors.New(pkgerrors.CodeValidation, "product unavailable").WithDetails(map[string]any{"product_id": productID})
	}
	if c.StoreID != "" && !c.IsEmpty() && c.StoreID != p.StoreID {
		return pkgerrors.New(pkgerrors.CodeConflict, MsgOtherStore).
			WithDetails(map[string]any{"cart_store_id": c.StoreID, "product_store_id": p.StoreID})
	}

	c.StoreID = p.StoreID
	if i := c.indexOf(productID); i >= 0 {
		if c.Items[i].Qty >= MaxLineQty {
			return lineCapError(productID)
		}
		c.Items[i].Qty++
		return nil
	}
	c.Items = append(c.Items, Line{ProductID: productID, Qty: 1})
	return nil
}

// ChangeQuantity adjusts a line by delta. A line reaching zero is removed and
// an emptied cart loses its store. A result above MaxLineQty is rejected with
// CodeValidation and the cart is unchanged.
func (c *Cart) ChangeQuantity(productID string, delta int) error {
	i := c.indexOf(productID)
	if i < 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "item not in cart").WithDetails(map[string]any{"product_id": productID})
	}
	if delta > MaxLineQty-c.Items[i].Qty {
		return lineCapError(productID)
	}
	if delta <= -c.Items[i].Qty {
		delta = -c.Items[i].Qty
	}
	c.Items[i].Qty += delta
	if c.Items[i].Qty <= 0 {
		c.Items = append(c.Items[:i], c.Items[i+1:]...)
	}
	if c.IsEmpty() {
		c.Clear()
	}
	return nil
}

func lineCapError(productID string) error {
	return pkgerrors.New(pkgerrors.CodeValidation, "quantity limit reached").
		WithDetails(map[string]any{"product_id": productID, "max_qty": MaxLineQty})
}

func (c *Cart) Clear() {
	c.StoreID = ""
	c.Items = nil
}

// Sanitize drops lines whose product is unknown, belongs to another store, or
// has a non-positive quantity, clamps quantities to MaxLineQty, and clears the
// cart when its store no longer exists. It reports whether anything changed.
func (c *Cart) Sanitize(cat Catalog) bool {
	if c.StoreID != "" {
		if _, ok := cat.FindStore(c.StoreID); !ok {
			c.Clear()
			return true
		}
	}
	before := c.Clone()

	kept := c.Items[:0]
	for _, line := range c.Items {
		p, ok := cat.FindProduct(line.ProductID)
		if !ok || line.Qty <= 0 {
			continue
		}
		if c.StoreID == "" {
			c.StoreID = p.StoreID
		}
		if p.StoreID != c.StoreID {
			continue
		}
		line.Qty = min(line.Qty, MaxLineQty)
		kept = append(kept, line)
	}
	c.Items = kept
	if c.IsEmpty() {
		c.Clear()
	}
	return !equal(before, *c)
}

// Count is the sum of quantities.
func (c *Cart) Count() int {
	n := 0
	for _, line := range c.Items {
		n += line.Qty
	}
	return n
}

// Subtotal prices the lines at live catalog prices. Unknown products count
// as zero.
func (c *Cart) Subtotal(cat Catalog) decimal.Decimal {
	total := decimal.Zero
	for _, line := range c.Items {
		if p, ok := cat.FindProduct(line.ProductID); ok {
			total = total.Add(p.Price.Mul(decimal.NewFromInt(int64(line.Qty))))
		}
	}
	return total
}

// DeliveryFee is the owning store's fee, zero when empty.
func (c *Cart) DeliveryFee(cat Catalog) decimal.Decimal {
	if c.StoreID == "" {
		return decimal.Zero
	}
	if s, ok := cat.FindStore(c.StoreID); ok {
		return s.DeliveryFee
	}
	return decimal.Zero
}

func (c *Cart) Total(cat Catalog) decimal.Decimal {
	return c.Subtotal(cat).Add(c.DeliveryFee(cat))
}

// ETA is the owning store's estimated delivery in minutes; false when empty.
func (c *Cart) ETA(cat Catalog) (int, bool) {
	if c.StoreID == "" {
		return 0, false
	}
	s, ok := cat.FindStore(c.StoreID)
	if !ok {
		return 0, false
	}
	return s.ETAEstimate(), true
}

func (c *Cart) indexOf(productID string) int {
	for i, line := range c.Items {
		if line.ProductID == productID {
			return i
		}
	}
	return -1
}

func equal(a, b Cart) bool {
	if a.StoreID != b.StoreID || len(a.Items) != len(b.Items) {
		return false
	}
	for i := range a.Items {
		if a.Items[i] != b.Items[i] {
			return false
		}
	}
	return true
}
