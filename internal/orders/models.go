package orders

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	StatusCompleted = "completed"
)

// Payment method tags accepted at checkout.
const (
	PaymentCash = "Cash"
	PaymentUPI  = "UPI"
	PaymentCard = "Card"
)

var allowedPaymentMethods = map[string]bool{
	PaymentCash: true,
	PaymentUPI:  true,
	PaymentCard: true,
}

// NewOrderItem is one requested line. UnitPrice may be supplied by the
// caller but is never trusted; the catalog price at checkout time wins.
type NewOrderItem struct {
	ProductID string           `json:"product_id" validate:"required"`
	Quantity  decimal.Decimal  `json:"quantity" validate:"required"`
	UnitPrice *decimal.Decimal `json:"unit_price"`
}

type NewOrder struct {
	Items         []NewOrderItem `json:"items"`
	PaymentMethod string         `json:"payment_method"`
}

// Receipt is the result of a successful checkout.
type Receipt struct {
	OrderID   string          `json:"order_id"`
	Total     decimal.Decimal `json:"total"`
	ItemCount int             `json:"item_count"`
}

// Order is one ledger entry. Immutable once written.
type Order struct {
	ID            string          `json:"id"`
	CustomerID    string          `json:"customer_id,omitempty"`
	CustomerName  string          `json:"customer_name,omitempty"`
	Total         decimal.Decimal `json:"total"`
	PaymentMethod string          `json:"payment_method"`
	Status        string          `json:"status"`
	ItemCount     int             `json:"item_count"`
	CreatedAt     time.Time       `json:"created_at"`
}

type OrderItem struct {
	ProductID string          `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
}
