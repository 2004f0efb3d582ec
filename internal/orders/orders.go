package orders

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Conf struct {
	db *sql.DB
}

func NewConf(db *sql.DB) (*Conf, error) {
	if db == nil {
		return nil, fmt.Errorf("db is nil")
	}
	return &Conf{db: db}, nil
}

// lockedProduct is the authoritative catalog state read under FOR UPDATE.
type lockedProduct struct {
	price     decimal.Decimal
	stock     decimal.Decimal
	remaining decimal.Decimal
}

// PlaceOrder validates the requested line items against current stock,
// recomputes the total from catalog prices, and applies stock decrements,
// the ledger append and the customer aggregate update in one transaction.
// Any failure leaves no partial effect.
//
// Caller-supplied unit prices are ignored: the ledger records the catalog
// price at the moment of checkout.
func (c *Conf) PlaceOrder(ctx context.Context, customerID string, no NewOrder) (Receipt, error) {
	if len(no.Items) == 0 {
		return Receipt{}, ValidationError{Msg: "order must contain items"}
	}
	if no.PaymentMethod == "" {
		return Receipt{}, ValidationError{Msg: "payment method required"}
	}
	if !allowedPaymentMethods[no.PaymentMethod] {
		return Receipt{}, ValidationError{Msg: fmt.Sprintf("payment method %q not allowed", no.PaymentMethod)}
	}

	var receipt Receipt
	err := c.withTx(ctx, func(tx *sql.Tx) error {
		// Lock product rows in id order so two concurrent checkouts can
		// never deadlock on each other.
		ids := distinctSortedProductIDs(no.Items)
		locked := make(map[string]*lockedProduct, len(ids))
		for _, id := range ids {
			lp := &lockedProduct{}
			err := tx.QueryRowContext(ctx,
				`SELECT price, stock_quantity FROM products WHERE product_id = $1 FOR UPDATE`,
				id).Scan(&lp.price, &lp.stock)
			if errors.Is(err, sql.ErrNoRows) {
				return NotFoundError{Resource: "product", ID: id}
			}
			if err != nil {
				return StorageError{Err: err}
			}
			lp.remaining = lp.stock
			locked[id] = lp
		}

		// Validate quantities in request order. remaining tracks stock
		// already claimed by earlier lines of the same product.
		total := decimal.Zero
		lines := make([]OrderItem, 0, len(no.Items))
		for _, item := range no.Items {
			lp := locked[item.ProductID]
			if item.Quantity.Sign() <= 0 || lp.remaining.LessThan(item.Quantity) {
				return InsufficientStockError{
					ProductID: item.ProductID,
					Available: lp.remaining,
					Requested: item.Quantity,
				}
			}
			lp.remaining = lp.remaining.Sub(item.Quantity)
			lineTotal := lp.price.Mul(item.Quantity)
			lines = append(lines, OrderItem{
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				UnitPrice: lp.price,
				LineTotal: lineTotal,
			})
			total = total.Add(lineTotal)
		}

		// Apply stock decrements. The stock_quantity >= $1 guard keeps the
		// invariant even if the row lock was somehow lost.
		for _, id := range ids {
			lp := locked[id]
			qty := lp.stock.Sub(lp.remaining)
			res, err := tx.ExecContext(ctx,
				`UPDATE products SET stock_quantity = stock_quantity - $1, updated_at = NOW() WHERE product_id = $2 AND stock_quantity >= $1`,
				qty, id)
			if err != nil {
				return StorageError{Err: err}
			}
			n, err := res.RowsAffected()
			if err != nil {
				return StorageError{Err: err}
			}
			if n == 0 {
				return InsufficientStockError{ProductID: id, Available: lp.stock, Requested: qty}
			}
		}

		// Append the order to the ledger.
		orderID := uuid.NewString()
		_, err := tx.ExecContext(ctx,
			`INSERT INTO orders (order_id, customer_id, total, payment_method, status, created_at) VALUES ($1, $2, $3, $4, $5, NOW())`,
			orderID, customerID, total, no.PaymentMethod, StatusCompleted)
		if err != nil {
			return StorageError{Err: err}
		}
		for _, line := range lines {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO order_items (order_id, product_id, quantity, unit_price, line_total) VALUES ($1, $2, $3, $4, $5)`,
				orderID, line.ProductID, line.Quantity, line.UnitPrice, line.LineTotal)
			if err != nil {
				return StorageError{Err: err}
			}
		}

		// Bump the customer aggregates. The role predicate keeps shopkeeper
		// ids from ever accumulating spend.
		res, err := tx.ExecContext(ctx,
			`UPDATE users SET total_orders = total_orders + 1, total_spent = total_spent + $1, updated_at = NOW() WHERE user_id = $2 AND role = 'customer'`,
			total, customerID)
		if err != nil {
			return StorageError{Err: err}
		}
		n, err := res.RowsAffected()
		if err != nil {
			return StorageError{Err: err}
		}
		if n == 0 {
			return NotFoundError{Resource: "customer", ID: customerID}
		}

		receipt = Receipt{OrderID: orderID, Total: total, ItemCount: len(lines)}
		return nil
	})
	if err != nil {
		return Receipt{}, err
	}
	return receipt, nil
}

// ListOrdersByCustomer returns the customer's ledger entries, newest first.
func (c *Conf) ListOrdersByCustomer(ctx context.Context, customerID string) ([]Order, error) {
	query := `
		SELECT o.order_id, o.total, o.payment_method, o.status, o.created_at,
		       (SELECT COUNT(*) FROM order_items oi WHERE oi.order_id = o.order_id) AS item_count
		FROM orders o
		WHERE o.customer_id = $1
		ORDER BY o.created_at DESC
	`
	rows, err := c.db.QueryContext(ctx, query, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	out := []Order{}
	for rows.Next() {
		var o Order
		if err := rows.Scan(&o.ID, &o.Total, &o.PaymentMethod, &o.Status, &o.CreatedAt, &o.ItemCount); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}
	return out, nil
}

// ListAllOrders returns every ledger entry with the customer's display name.
func (c *Conf) ListAllOrders(ctx context.Context) ([]Order, error) {
	query := `
		SELECT o.order_id, o.customer_id, COALESCE(u.first_name || ' ' || u.last_name, 'Unknown') AS customer_name,
		       o.total, o.payment_method, o.status, o.created_at,
		       (SELECT COUNT(*) FROM order_items oi WHERE oi.order_id = o.order_id) AS item_count
		FROM orders o
		LEFT JOIN users u ON u.user_id = o.customer_id
		ORDER BY o.created_at DESC
	`
	rows, err := c.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	out := []Order{}
	for rows.Next() {
		var o Order
		if err := rows.Scan(&o.ID, &o.CustomerID, &o.CustomerName, &o.Total, &o.PaymentMethod,
			&o.Status, &o.CreatedAt, &o.ItemCount); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}
	return out, nil
}

// GetOrderItems returns the line items of one ledger entry.
func (c *Conf) GetOrderItems(ctx context.Context, orderID string) ([]OrderItem, error) {
	query := `
		SELECT product_id, quantity, unit_price, line_total
		FROM order_items
		WHERE order_id = $1
		ORDER BY id
	`
	rows, err := c.db.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	out := []OrderItem{}
	for rows.Next() {
		var it OrderItem
		if err := rows.Scan(&it.ProductID, &it.Quantity, &it.UnitPrice, &it.LineTotal); err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		out = append(out, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating order items: %w", err)
	}
	return out, nil
}

func distinctSortedProductIDs(items []NewOrderItem) []string {
	seen := make(map[string]bool, len(items))
	ids := make([]string, 0, len(items))
	for _, item := range items {
		if !seen[item.ProductID] {
			seen[item.ProductID] = true
			ids = append(ids, item.ProductID)
		}
	}
	sort.Strings(ids)
	return ids
}

// withTx runs fn inside a transaction. Domain errors pass through
// untouched; begin/commit failures surface as StorageError.
func (c *Conf) withTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return StorageError{Err: fmt.Errorf("failed to begin tx: %w", err)}
	}

	if err := fn(tx); err != nil {
		if er := tx.Rollback(); er != nil && !errors.Is(er, sql.ErrTxDone) {
			return StorageError{Err: fmt.Errorf("failed to rollback: %w", er)}
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return StorageError{Err: fmt.Errorf("failed to commit: %w", err)}
	}
	return nil
}
