package products

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product represents a catalog entry. Stock is NUMERIC because goods sold
// by weight or volume carry fractional quantities.
type Product struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Category  string          `json:"category"`
	Price     decimal.Decimal `json:"price"`
	Stock     decimal.Decimal `json:"stock"`
	Unit      string          `json:"unit"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

type NewProduct struct {
	Name     string          `json:"name" validate:"required"`
	Category string          `json:"category" validate:"required"`
	Price    decimal.Decimal `json:"price" validate:"required"`
	Stock    decimal.Decimal `json:"stock"`
	Unit     string          `json:"unit" validate:"required"`
}

// UpdateProduct carries a partial field set; nil fields are left untouched.
type UpdateProduct struct {
	Name     *string          `json:"name"`
	Category *string          `json:"category"`
	Price    *decimal.Decimal `json:"price"`
	Stock    *decimal.Decimal `json:"stock"`
	Unit     *string          `json:"unit"`
}
