package orders

import (
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/feiralocal-backend/pkg/enums"
	"github.com/angelmondragon/feiralocal-backend/pkg/types"
	"github.com/shopspring/decimal"
)

// Item is a line frozen at order time; later catalog edits never touch it.
type Item struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Qty       int             `json:"qty"`
}

// LineTotal is Price × Qty.
func (i Item) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Qty)))
}

// Order is immutable after creation apart from StatusIndex, which only grows.
type Order struct {
	ID          string              `json:"id"`
	CreatedAt   time.Time           `json:"createdAt"`
	StoreID     string              `json:"storeId"`
	StoreName   string              `json:"storeName"`
	Items       []Item              `json:"items"`
	Subtotal    decimal.Decimal     `json:"subtotal"`
	DeliveryFee decimal.Decimal     `json:"deliveryFee"`
	Total       decimal.Decimal     `json:"total"`
	PayMethod   enums.PaymentMethod `json:"paymethod"`
	StatusIndex enums.OrderStatus   `json:"statusIndex"`
	Customer    types.Customer      `json:"customer"`
	Address     types.Address       `json:"address"`
}

// StatusLabel renders the status index, "—" when out of range.
func (o Order) StatusLabel() string {
	return o.StatusIndex.String()
}

// IsDelivered reports whether the order reached the terminal stage.
func (o Order) IsDelivered() bool {
	return o.StatusIndex.IsTerminal()
}

// ItemsLine renders the items as "2x Cabo, 1x Película".
func (o Order) ItemsLine() string {
	parts := make([]string, 0, len(o.Items))
	for _, it := range o.Items {
		parts = append(parts, fmt.Sprintf("%dx %s", it.Qty, it.Name))
	}
	return strings.Join(parts, ", ")
}

func (o Order) clone() Order {
	o.Items = append([]Item(nil), o.Items...)
	return o
}

// Checkout is the customer's input at order time.
type Checkout struct {
	Customer  types.Customer
	Address   types.Address
	PayMethod enums.PaymentMethod
}
