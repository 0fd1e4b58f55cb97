package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartLine is one product in a user's cart. UnitPrice is a snapshot taken
// when the line was first added and never follows later price changes.
type CartLine struct {
	UserID    uuid.UUID       `json:"userId" db:"user_id"`
	ProductID uuid.UUID       `json:"productId" db:"product_id"`
	Quantity  int             `json:"quantity" db:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice" db:"unit_price"`
	CreatedAt time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time       `json:"updatedAt" db:"updated_at"`
}

// Subtotal returns quantity * unit price.
func (l CartLine) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// CartItemRequest represents the request payload for setting a cart line quantity.
type CartItemRequest struct {
	Quantity int `json:"quantity"`
}

// CartResponse represents the response payload for a cart.
type CartResponse struct {
	UserID uuid.UUID       `json:"userId"`
	Lines  []CartLine      `json:"lines"`
	Total  decimal.Decimal `json:"total"`
}

// CartTotal sums the subtotals of lines.
func CartTotal(lines []CartLine) decimal.Decimal {
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.Subtotal())
	}
	return total
}

// CartTotalResponse represents the response payload for a cart total.
type CartTotalResponse struct {
	UserID uuid.UUID       `json:"userId"`
	Total  decimal.Decimal `json:"total"`
}
