package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderState is the lifecycle state of an order.
type OrderState string

const (
	OrderStatePending   OrderState = "pending"
	OrderStatePaid      OrderState = "paid"
	OrderStateShipped   OrderState = "shipped"
	OrderStateDelivered OrderState = "delivered"
	OrderStateCancelled OrderState = "cancelled"
)

// orderTransitions lists the forward edges of the order state machine.
// Cancellation is handled separately because it also returns stock.
var orderTransitions = map[OrderState]OrderState{
	OrderStatePending: OrderStatePaid,
	OrderStatePaid:    OrderStateShipped,
	OrderStateShipped: OrderStateDelivered,
}

// Valid reports whether s is a known state.
func (s OrderState) Valid() bool {
	switch s {
	case OrderStatePending, OrderStatePaid, OrderStateShipped, OrderStateDelivered, OrderStateCancelled:
		return true
	}
	return false
}

// Terminal reports whether no transition may leave s.
func (s OrderState) Terminal() bool {
	return s == OrderStateDelivered || s == OrderStateCancelled
}

// Cancellable reports whether an order in state s may be cancelled.
func (s OrderState) Cancellable() bool {
	return s == OrderStatePending || s == OrderStatePaid
}

// CanTransitionTo reports whether s -> next is a forward edge of the state machine.
func (s OrderState) CanTransitionTo(next OrderState) bool {
	if next == OrderStateCancelled {
		return s.Cancellable()
	}
	return orderTransitions[s] == next
}

// ParseOrderState parses a state name.
func ParseOrderState(s string) (OrderState, bool) {
	state := OrderState(s)
	return state, state.Valid()
}

// Order represents a customer order. Only State and the lifecycle
// timestamps change after creation.
type Order struct {
	ID              uuid.UUID       `json:"id" db:"id"`
	UserID          uuid.UUID       `json:"userId" db:"user_id"`
	ShippingAddress string          `json:"shippingAddress" db:"shipping_address"`
	ContactPhone    string          `json:"contactPhone" db:"contact_phone"`
	Notes           *string         `json:"notes,omitempty" db:"notes"`
	Total           decimal.Decimal `json:"total" db:"total"`
	State           OrderState      `json:"state" db:"state"`
	PaidAt          *time.Time      `json:"paidAt,omitempty" db:"paid_at"`
	ShippedAt       *time.Time      `json:"shippedAt,omitempty" db:"shipped_at"`
	DeliveredAt     *time.Time      `json:"deliveredAt,omitempty" db:"delivered_at"`
	CancelledAt     *time.Time      `json:"cancelledAt,omitempty" db:"cancelled_at"`
	CreatedAt       time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time       `json:"updatedAt" db:"updated_at"`
}

// OrderLine is an immutable copy of a cart line taken at order creation.
type OrderLine struct {
	OrderID   uuid.UUID       `json:"-" db:"order_id"`
	ProductID uuid.UUID       `json:"productId" db:"product_id"`
	Quantity  int             `json:"quantity" db:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice" db:"unit_price"`
}

// Subtotal returns quantity * unit price.
func (l OrderLine) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// OrderRequest represents the request payload for creating an order from a cart.
type OrderRequest struct {
	ShippingAddress string  `json:"shippingAddress"`
	ContactPhone    string  `json:"contactPhone"`
	Notes           *string `json:"notes,omitempty"`
}

// TransitionRequest represents the request payload for an order state change.
type TransitionRequest struct {
	State OrderState `json:"state"`
}

// OrderResponse represents the response payload for an order.
type OrderResponse struct {
	Order
	Lines []OrderLine `json:"lines"`
}
