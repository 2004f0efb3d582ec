package products

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Conf struct {
	db *sql.DB
}

func NewConf(db *sql.DB) (Conf, error) {
	if db == nil {
		return Conf{}, fmt.Errorf("db is nil")
	}
	return Conf{db: db}, nil
}

// InsertProduct saves a new product and returns the stored row.
func (c *Conf) InsertProduct(ctx context.Context, np NewProduct) (Product, error) {
	if np.Price.IsNegative() {
		return Product{}, fmt.Errorf("price cannot be negative")
	}
	if np.Stock.IsNegative() {
		return Product{}, fmt.Errorf("stock cannot be negative")
	}

	p := Product{
		ID:       uuid.NewString(),
		Name:     np.Name,
		Category: np.Category,
		Price:    np.Price,
		Stock:    np.Stock,
		Unit:     np.Unit,
	}

	query := `
		INSERT INTO products (product_id, name, category, price, stock_quantity, unit, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING created_at, updated_at
	`
	err := c.db.QueryRowContext(ctx, query,
		p.ID, p.Name, p.Category, p.Price, p.Stock, p.Unit).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return Product{}, fmt.Errorf("failed to insert product: %w", err)
	}
	return p, nil
}

// GetProductByID returns sql.ErrNoRows when the product does not exist.
func (c *Conf) GetProductByID(ctx context.Context, productID string) (Product, error) {
	query := `
		SELECT product_id, name, category, price, stock_quantity, unit, created_at, updated_at
		FROM products
		WHERE product_id = $1
	`
	var p Product
	err := c.db.QueryRowContext(ctx, query, productID).Scan(
		&p.ID, &p.Name, &p.Category, &p.Price, &p.Stock, &p.Unit, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return Product{}, err
	}
	return p, nil
}

// ListProductsByCategory returns in-stock products of a category ordered by id.
func (c *Conf) ListProductsByCategory(ctx context.Context, category string) ([]Product, error) {
	query := `
		SELECT product_id, name, category, price, stock_quantity, unit, created_at, updated_at
		FROM products
		WHERE category = $1 AND stock_quantity > 0
		ORDER BY product_id
	`
	rows, err := c.db.QueryContext(ctx, query, category)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()
	return scanProducts(rows)
}

// ListProducts returns the whole catalog, newest first.
func (c *Conf) ListProducts(ctx context.Context) ([]Product, error) {
	query := `
		SELECT product_id, name, category, price, stock_quantity, unit, created_at, updated_at
		FROM products
		ORDER BY created_at DESC
	`
	rows, err := c.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()
	return scanProducts(rows)
}

func scanProducts(rows *sql.Rows) ([]Product, error) {
	out := []Product{}
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Category, &p.Price, &p.Stock, &p.Unit, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}
	return out, nil
}

// UpdateProductInDB applies a partial update and returns the stored row.
// Returns sql.ErrNoRows when the product does not exist.
func (c *Conf) UpdateProductInDB(ctx context.Context, productID string, up UpdateProduct) (Product, error) {
	if up.Price != nil && up.Price.IsNegative() {
		return Product{}, fmt.Errorf("price cannot be negative")
	}
	if up.Stock != nil && up.Stock.IsNegative() {
		return Product{}, fmt.Errorf("stock cannot be negative")
	}

	query := `
		UPDATE products
		SET name           = COALESCE($1, name),
		    category       = COALESCE($2, category),
		    price          = COALESCE($3, price),
		    stock_quantity = COALESCE($4, stock_quantity),
		    unit           = COALESCE($5, unit),
		    updated_at     = NOW()
		WHERE product_id = $6
		RETURNING product_id, name, category, price, stock_quantity, unit, created_at, updated_at
	`
	var p Product
	err := c.db.QueryRowContext(ctx, query,
		up.Name, up.Category, decimalOrNil(up.Price), decimalOrNil(up.Stock), up.Unit, productID).Scan(
		&p.ID, &p.Name, &p.Category, &p.Price, &p.Stock, &p.Unit, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return Product{}, err
	}
	return p, nil
}

// DeleteProductFromDB returns sql.ErrNoRows when the product does not exist.
func (c *Conf) DeleteProductFromDB(ctx context.Context, productID string) error {
	res, err := c.db.ExecContext(ctx, `DELETE FROM products WHERE product_id = $1`, productID)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// decimalOrNil keeps a nil pointer out of the driver.Valuer path so the
// COALESCE arm sees a SQL NULL.
func decimalOrNil(d *decimal.Decimal) interface{} {
	if d == nil {
		return nil
	}
	return *d
}
