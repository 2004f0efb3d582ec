package products

import (
	"context"
	"database/sql"
	"errors"
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

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

func TestInsertProduct(t *testing.T) {
	conf, mock, closeFn := newTestConf(t)
	defer closeFn()

	now := time.Now()
	mock.ExpectQuery("INSERT INTO products").
		WithArgs(sqlmock.AnyArg(), "Sugar", "GROCERY", "40", "100", "kg").
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	p, err := conf.InsertProduct(context.Background(), NewProduct{
		Name:     "Sugar",
		Category: "GROCERY",
		Price:    dec("40"),
		Stock:    dec("100"),
		Unit:     "kg",
	})
	if err != nil {
		t.Fatalf("InsertProduct failed: %v", err)
	}
	if p.ID == "" {
		t.Fatalf("expected a generated product id")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestInsertProduct_NegativePrice(t *testing.T) {
	conf, mock, closeFn := newTestConf(t)
	defer closeFn()

	_, err := conf.InsertProduct(context.Background(), NewProduct{
		Name:     "Sugar",
		Category: "GROCERY",
		Price:    dec("-1"),
		Unit:     "kg",
	})
	if err == nil {
		t.Fatalf("expected error for negative price")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("store was touched: %v", err)
	}
}

func TestGetProductByID_NotFound(t *testing.T) {
	conf, mock, closeFn := newTestConf(t)
	defer closeFn()

	mock.ExpectQuery("SELECT product_id, name").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := conf.GetProductByID(context.Background(), "missing")
	if !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("expected sql.ErrNoRows, got %v", err)
	}
}

func TestListProductsByCategory(t *testing.T) {
	conf, mock, closeFn := newTestConf(t)
	defer closeFn()

	now := time.Now()
	rows := sqlmock.NewRows([]string{"product_id", "name", "category", "price", "stock_quantity", "unit", "created_at", "updated_at"}).
		AddRow("p1", "Sugar", "GROCERY", "40", "100", "kg", now, now).
		AddRow("p2", "Rice", "GROCERY", "120", "200", "kg", now, now)
	mock.ExpectQuery("WHERE category = .+ AND stock_quantity > 0").
		WithArgs("GROCERY").
		WillReturnRows(rows)

	got, err := conf.ListProductsByCategory(context.Background(), "GROCERY")
	if err != nil {
		t.Fatalf("ListProductsByCategory failed: %v", err)
	}
	if len(got) != 2 || got[0].Name != "Sugar" || !got[1].Price.Equal(dec("120")) {
		t.Fatalf("unexpected products: %+v", got)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUpdateProductInDB_Partial(t *testing.T) {
	conf, mock, closeFn := newTestConf(t)
	defer closeFn()

	now := time.Now()
	price := dec("45")
	mock.ExpectQuery("UPDATE products").
		WithArgs(nil, nil, "45", nil, nil, "p1").
		WillReturnRows(sqlmock.NewRows([]string{"product_id", "name", "category", "price", "stock_quantity", "unit", "created_at", "updated_at"}).
			AddRow("p1", "Sugar", "GROCERY", "45", "100", "kg", now, now))

	p, err := conf.UpdateProductInDB(context.Background(), "p1", UpdateProduct{Price: &price})
	if err != nil {
		t.Fatalf("UpdateProductInDB failed: %v", err)
	}
	if !p.Price.Equal(dec("45")) || p.Name != "Sugar" {
		t.Fatalf("unexpected product: %+v", p)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestDeleteProductFromDB_NotFound(t *testing.T) {
	conf, mock, closeFn := newTestConf(t)
	defer closeFn()

	mock.ExpectExec("DELETE FROM products").
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := conf.DeleteProductFromDB(context.Background(), "missing")
	if !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("expected sql.ErrNoRows, got %v", err)
	}
}
