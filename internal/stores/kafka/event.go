package kafka

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	TopicOrderPlaced = `shop-service.order-placed`
)

// OrderPlacedEvent is published after a checkout transaction commits.
type OrderPlacedEvent struct {
	OrderID    string          `json:"order_id"`
	CustomerID string          `json:"customer_id"`
	Total      decimal.Decimal `json:"total"`
	ItemCount  int             `json:"item_count"`
	CreatedAt  time.Time       `json:"created_at"`
}
