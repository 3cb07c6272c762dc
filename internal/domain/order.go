package domain

import "time"

// OrderStatus is the fulfillment state of a persisted order. The stored values
// are the labels the back office has always used.
type OrderStatus string

const (
	StatusPending         OrderStatus = "Pendiente"
	StatusPendingApproval OrderStatus = "En Aprobación"
	StatusShipped         OrderStatus = "Enviado"
	StatusDelivered       OrderStatus = "Entregado"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPending, StatusPendingApproval, StatusShipped, StatusDelivered:
		return true
	}
	return false
}

// shipped orders are past the point of no return
func (s OrderStatus) dispatched() bool {
	return s == StatusShipped || s == StatusDelivered
}

// CanTransition reports whether an admin may move an order from one status to
// another. Progression is monotonic: once an order is shipped or delivered it
// cannot go back to a pre-dispatch status. Sideways and no-op transitions are
// allowed.
func CanTransition(from, to OrderStatus) bool {
	if from.dispatched() && !to.dispatched() {
		return false
	}
	return true
}

func (s OrderStatus) String() string {
	return string(s)
}

// ShippingMethod is the carrier delivery mode chosen at checkout.
type ShippingMethod string

const (
	ShippingHomeDelivery ShippingMethod = "D"
	ShippingBranchPickup ShippingMethod = "S"
)

// Label returns the human-readable name of the method, empty for unknown codes.
func (m ShippingMethod) Label() string {
	switch m {
	case ShippingHomeDelivery:
		return "Home delivery"
	case ShippingBranchPickup:
		return "Pickup at branch"
	}
	return ""
}

// OrderLine freezes what was bought: name and unit price are captured at
// purchase time and never follow later product changes. ProductID is nullable
// because a product may be removed long after the order was placed.
type OrderLine struct {
	ID          int64   `json:"id"`
	OrderID     int64   `json:"order_id"`
	ProductID   *int64  `json:"product_id"`
	ProductName string  `json:"product_name"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
}

func (l OrderLine) Subtotal() float64 {
	return l.UnitPrice * float64(l.Quantity)
}

// Order is the persisted record of a completed purchase. Lines are owned
// exclusively by their order and are immutable after creation; only the
// fulfillment fields (Status, Paid, tracking info) mutate afterwards.
type Order struct {
	ID              int64          `json:"id"`
	CustomerName    string         `json:"customer_name"`
	CustomerEmail   string         `json:"customer_email"`
	CustomerPhone   string         `json:"customer_phone"`
	CustomerAddress string         `json:"customer_address"`
	PostalCode      string         `json:"postal_code"`
	ShippingMethod  ShippingMethod `json:"shipping_method"`
	ShippingCarrier string         `json:"shipping_carrier"`
	ShippingCost    float64        `json:"shipping_cost"`
	Subtotal        float64        `json:"subtotal"`
	Total           float64        `json:"total"`
	CreatedAt       time.Time      `json:"created_at"`

	Status       OrderStatus `json:"status"`
	Paid         bool        `json:"paid"`
	TrackingCode string      `json:"tracking_code"`
	TrackingLink string      `json:"tracking_link"`
	CarrierName  string      `json:"carrier_name"`

	Lines []OrderLine `json:"lines"`
}
