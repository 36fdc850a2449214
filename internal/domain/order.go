package domain

import (
	"time"

	"github.com/google/uuid"
)

// OrderStatus is an order's fulfillment state. The four forward states advance
// strictly in order; cancelled is absorbing and reachable from any non-terminal
// state.
type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderProcessing OrderStatus = "processing"
	OrderShipped    OrderStatus = "shipped"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"
)

// forwardStatuses in progression order.
var forwardStatuses = []OrderStatus{OrderPending, OrderProcessing, OrderShipped, OrderDelivered}

// Valid reports whether s is a known status value.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderProcessing, OrderShipped, OrderDelivered, OrderCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transition out of s is allowed.
func (s OrderStatus) Terminal() bool {
	return s == OrderDelivered || s == OrderCancelled
}

// index returns the position of s on the forward track, or -1 for cancelled
// and unknown values.
func (s OrderStatus) index() int {
	for i, fs := range forwardStatuses {
		if s == fs {
			return i
		}
	}
	return -1
}

// CanTransition reports whether an order in status s may move to next.
// Forward moves advance exactly one step; cancellation is allowed from any
// non-terminal state; terminal states admit nothing.
func (s OrderStatus) CanTransition(next OrderStatus) bool {
	if !s.Valid() || !next.Valid() || s.Terminal() {
		return false
	}
	if next == OrderCancelled {
		return true
	}
	return next.index() == s.index()+1
}

// ProgressFraction maps a status onto the customer-facing progress bar:
// pending=0, processing=1/3, shipped=2/3, delivered=1. Cancelled sits outside
// the 0-1 scale and returns -1.
func (s OrderStatus) ProgressFraction() float64 {
	i := s.index()
	if i < 0 {
		return -1
	}
	return float64(i) / float64(len(forwardStatuses)-1)
}

// Payment methods and statuses recorded on an order. Card capture itself
// happens outside this service; only the outcome is stored.
const (
	PaymentMethodCard   = "card"
	PaymentMethodPoints = "points"

	PaymentStatusPaid   = "paid"
	PaymentStatusUnpaid = "unpaid"
)

// ShippingAddress is the delivery destination captured at checkout.
type ShippingAddress struct {
	FullName   string   `json:"full_name"`
	Street     string   `json:"street"`
	City       string   `json:"city"`
	Country    string   `json:"country"`
	PostalCode string   `json:"postal_code"`
	Phone      string   `json:"phone"`
	Lat        *float64 `json:"lat,omitempty"`
	Lng        *float64 `json:"lng,omitempty"`
}

// Order is created once at checkout. Items are a snapshot of the cart at that
// moment, not a live reference; only Status, TrackingNumber and
// EstimatedDelivery change afterwards.
type Order struct {
	ID                string           `json:"id" db:"id"`
	UserID            uuid.UUID        `json:"user_id" db:"user_id"`
	CustomerName      string           `json:"customer_name" db:"customer_name"`
	CustomerEmail     string           `json:"customer_email" db:"customer_email"`
	Items             []CartItem       `json:"items"`
	Total             float64          `json:"total" db:"total"`
	Profit            float64          `json:"profit" db:"profit"`
	Status            OrderStatus      `json:"status" db:"status"`
	PaymentMethod     string           `json:"payment_method,omitempty" db:"payment_method"`
	PaymentStatus     string           `json:"payment_status,omitempty" db:"payment_status"`
	ShippingAddress   *ShippingAddress `json:"shipping_address,omitempty"`
	ShippingCost      float64          `json:"shipping_cost" db:"shipping_cost"`
	TrackingNumber    string           `json:"tracking_number,omitempty" db:"tracking_number"`
	EstimatedDelivery string           `json:"estimated_delivery,omitempty" db:"estimated_delivery"`
	CreatedAt         time.Time        `json:"created_at" db:"created_at"`
}

// Analytics summarizes non-cancelled orders for the admin and seller consoles.
type Analytics struct {
	TotalRevenue float64 `json:"total_revenue"`
	TotalProfit  float64 `json:"total_profit"`
	ActiveOrders int     `json:"active_orders"`
	GrowthRate   float64 `json:"growth_rate"`
}
