package reports

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
)

func newTestConf(t *testing.T) (Conf, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	conf, err := NewConf(db)
	if err != nil {
		t.Fatalf("NewConf: %v", err)
	}
	return conf, mock, func() { db.Close() }
}

func TestDailySales(t *testing.T) {
	conf, mock, closeFn := newTestConf(t)
	defer closeFn()

	mock.ExpectQuery("SELECT COALESCE").
		WillReturnRows(sqlmock.NewRows([]string{"sum", "count"}).AddRow("360", 3))

	total, count, err := conf.DailySales(context.Background())
	if err != nil {
		t.Fatalf("DailySales failed: %v", err)
	}
	if !total.Equal(decimal.NewFromInt(360)) || count != 3 {
		t.Fatalf("unexpected daily sales: %s %d", total, count)
	}
}

func TestGetStats(t *testing.T) {
	conf, mock, closeFn := newTestConf(t)
	defer closeFn()

	mock.ExpectQuery("FROM orders").
		WillReturnRows(sqlmock.NewRows([]string{"sum", "count"}).AddRow("360", 3))
	mock.ExpectQuery("SELECT").
		WithArgs(LowStockThreshold).
		WillReturnRows(sqlmock.NewRows([]string{"products", "low", "out", "customers", "orders", "revenue"}).
			AddRow(33, 4, 1, 12, 57, "8400"))

	s, err := conf.GetStats(context.Background())
	if err != nil {
		t.Fatalf("GetStats failed: %v", err)
	}
	if s.TodayOrders != 3 || s.TotalProducts != 33 || s.LowStockCount != 4 {
		t.Fatalf("unexpected stats: %+v", s)
	}
	if !s.TotalRevenue.Equal(decimal.NewFromInt(8400)) {
		t.Fatalf("unexpected revenue: %s", s.TotalRevenue)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSalesSeries_FillsMissingDays(t *testing.T) {
	conf, mock, closeFn := newTestConf(t)
	defer closeFn()

	today := time.Now().UTC().Truncate(24 * time.Hour)
	rows := sqlmock.NewRows([]string{"day", "total"}).
		AddRow(today, "120")
	mock.ExpectQuery("GROUP BY 1").
		WillReturnRows(rows)

	got, err := conf.SalesSeries(context.Background())
	if err != nil {
		t.Fatalf("SalesSeries failed: %v", err)
	}
	if len(got) != 7 {
		t.Fatalf("expected 7 buckets, got %d", len(got))
	}
	for _, b := range got[:6] {
		if !b.Total.IsZero() {
			t.Fatalf("expected zero-filled bucket, got %+v", b)
		}
	}
	if !got[6].Total.Equal(decimal.NewFromInt(120)) {
		t.Fatalf("expected today's total in the last bucket, got %+v", got[6])
	}
}

func TestCategoryDistribution(t *testing.T) {
	conf, mock, closeFn := newTestConf(t)
	defer closeFn()

	rows := sqlmock.NewRows([]string{"category", "count"}).
		AddRow("DAIRY", 7).
		AddRow("GROCERY", 9)
	mock.ExpectQuery("GROUP BY category").
		WillReturnRows(rows)

	got, err := conf.CategoryDistribution(context.Background())
	if err != nil {
		t.Fatalf("CategoryDistribution failed: %v", err)
	}
	if len(got) != 2 || got[0].Category != "DAIRY" || got[1].Count != 9 {
		t.Fatalf("unexpected distribution: %+v", got)
	}
}
