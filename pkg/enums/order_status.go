package enums

import "fmt"

// OrderStatus is the delivery-simulation stage of an order. It is persisted
// as its integer index and only ever moves forward.
type OrderStatus int

const (
	OrderStatusReceived OrderStatus = iota
	OrderStatusAccepted
	OrderStatusPaid
	OrderStatusRoute
	OrderStatusDelivered
)

var orderStatusLabels = []string{"Recebido", "Aceito", "Pago", "Em rota", "Entregue"}

// String returns the customer-facing label, or "—" for out-of-range values.
func (s OrderStatus) String() string {
	if !s.IsValid() {
		return "—"
	}
	return orderStatusLabels[s]
}

// IsValid reports whether the index is within 0..4.
func (s OrderStatus) IsValid() bool {
	return s >= OrderStatusReceived && s <= OrderStatusDelivered
}

// IsTerminal reports whether the order has been delivered.
func (s OrderStatus) IsTerminal() bool {
	return s >= OrderStatusDelivered
}

// Next returns the following stage, saturating at delivered.
func (s OrderStatus) Next() OrderStatus {
	if s.IsTerminal() {
		return OrderStatusDelivered
	}
	return s + 1
}

// OrderStatusLabels lists the stage labels in order.
func OrderStatusLabels() []string {
	return append([]string(nil), orderStatusLabels...)
}

// ParseOrderStatus validates a raw index.
func ParseOrderStatus(index int) (OrderStatus, error) {
	status := OrderStatus(index)
	if !status.IsValid() {
		return 0, fmt.Errorf("invalid order status index %d", index)
	}
	return status, nil
}
