// Package reports holds the read-side sales aggregations. These are pure
// projections over the product and order collections; they enforce no
// invariants beyond reflecting stored state at query time.
package reports

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// LowStockThreshold marks products that need restocking soon.
const LowStockThreshold = 10

type Conf struct {
	db *sql.DB
}

func NewConf(db *sql.DB) (Conf, error) {
	if db == nil {
		return Conf{}, fmt.Errorf("db is nil")
	}
	return Conf{db: db}, nil
}

// Stats is the shopkeeper dashboard roll-up.
type Stats struct {
	TodaySales     decimal.Decimal `json:"today_sales"`
	TodayOrders    int             `json:"today_orders"`
	TotalProducts  int             `json:"total_products"`
	LowStockCount  int             `json:"low_stock_count"`
	OutOfStock     int             `json:"out_of_stock"`
	TotalCustomers int             `json:"total_customers"`
	TotalOrders    int             `json:"total_orders"`
	TotalRevenue   decimal.Decimal `json:"total_revenue"`
}

// DailySales returns the sum and count of orders dated today (UTC).
func (c *Conf) DailySales(ctx context.Context) (decimal.Decimal, int, error) {
	query := `
		SELECT COALESCE(SUM(total), 0), COUNT(*)
		FROM orders
		WHERE created_at >= date_trunc('day', now() AT TIME ZONE 'utc')
	`
	var total decimal.Decimal
	var count int
	if err := c.db.QueryRowContext(ctx, query).Scan(&total, &count); err != nil {
		return decimal.Zero, 0, fmt.Errorf("failed to query daily sales: %w", err)
	}
	return total, count, nil
}

// GetStats gathers the dashboard counters in one pass.
func (c *Conf) GetStats(ctx context.Context) (Stats, error) {
	var s Stats

	total, count, err := c.DailySales(ctx)
	if err != nil {
		return Stats{}, err
	}
	s.TodaySales = total
	s.TodayOrders = count

	query := `
		SELECT
			(SELECT COUNT(*) FROM products),
			(SELECT COUNT(*) FROM products WHERE stock_quantity <= $1),
			(SELECT COUNT(*) FROM products WHERE stock_quantity = 0),
			(SELECT COUNT(*) FROM users WHERE role = 'customer'),
			(SELECT COUNT(*) FROM orders),
			(SELECT COALESCE(SUM(total), 0) FROM orders)
	`
	err = c.db.QueryRowContext(ctx, query, LowStockThreshold).Scan(
		&s.TotalProducts, &s.LowStockCount, &s.OutOfStock,
		&s.TotalCustomers, &s.TotalOrders, &s.TotalRevenue)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to query stats: %w", err)
	}
	return s, nil
}

// DayBucket is one calendar day of the trailing sales series.
type DayBucket struct {
	Day   string          `json:"day"`
	Total decimal.Decimal `json:"total"`
}

// CategoryCount is one slice of the category distribution.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// SalesSeries returns order totals bucketed by calendar day for the
// trailing seven days, oldest first. Days without sales appear as zero.
func (c *Conf) SalesSeries(ctx context.Context) ([]DayBucket, error) {
	query := `
		SELECT date_trunc('day', created_at)::date, COALESCE(SUM(total), 0)
		FROM orders
		WHERE created_at >= date_trunc('day', now() AT TIME ZONE 'utc') - INTERVAL '6 days'
		GROUP BY 1
		ORDER BY 1
	`
	rows, err := c.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query sales series: %w", err)
	}
	defer rows.Close()

	totals := map[string]decimal.Decimal{}
	for rows.Next() {
		var day time.Time
		var total decimal.Decimal
		if err := rows.Scan(&day, &total); err != nil {
			return nil, fmt.Errorf("failed to scan sales bucket: %w", err)
		}
		totals[day.UTC().Format("2006-01-02")] = total
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sales series: %w", err)
	}

	today := time.Now().UTC().Truncate(24 * time.Hour)
	out := make([]DayBucket, 0, 7)
	for i := 6; i >= 0; i-- {
		day := today.AddDate(0, 0, -i)
		total, ok := totals[day.Format("2006-01-02")]
		if !ok {
			total = decimal.Zero
		}
		out = append(out, DayBucket{Day: day.Format("Mon"), Total: total})
	}
	return out, nil
}

// CategoryDistribution counts products per category.
func (c *Conf) CategoryDistribution(ctx context.Context) ([]CategoryCount, error) {
	query := `
		SELECT category, COUNT(*)
		FROM products
		GROUP BY category
		ORDER BY category
	`
	rows, err := c.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query category distribution: %w", err)
	}
	defer rows.Close()

	out := []CategoryCount{}
	for rows.Next() {
		var cc CategoryCount
		if err := rows.Scan(&cc.Category, &cc.Count); err != nil {
			return nil, fmt.Errorf("failed to scan category count: %w", err)
		}
		out = append(out, cc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}
	return out, nil
}
