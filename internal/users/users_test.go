package users

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"golang.org/x/crypto/bcrypt"
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

func TestInsertUser(t *testing.T) {
	conf, mock, closeFn := newTestConf(t)
	defer closeFn()

	now := time.Now()
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("asha@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectQuery("INSERT INTO users").
		WithArgs(sqlmock.AnyArg(), "Asha", "Rao", "asha@example.com", "9999999999", sqlmock.AnyArg(), "customer").
		WillReturnRows(sqlmock.NewRows([]string{"total_orders", "total_spent", "created_at", "updated_at"}).
			AddRow(0, "0", now, now))

	u, err := conf.InsertUser(context.Background(), NewUser{
		FirstName: "Asha",
		LastName:  "Rao",
		Email:     "asha@example.com",
		Phone:     "9999999999",
		Password:  "supersecret",
		Role:      "customer",
	})
	if err != nil {
		t.Fatalf("InsertUser failed: %v", err)
	}
	if u.ID == "" || u.TotalOrders != 0 {
		t.Fatalf("unexpected user: %+v", u)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestInsertUser_EmailTaken(t *testing.T) {
	conf, mock, closeFn := newTestConf(t)
	defer closeFn()

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("asha@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	_, err := conf.InsertUser(context.Background(), NewUser{
		FirstName: "Asha",
		LastName:  "Rao",
		Email:     "asha@example.com",
		Phone:     "9999999999",
		Password:  "supersecret",
		Role:      "customer",
	})
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAuthenticateUser(t *testing.T) {
	conf, mock, closeFn := newTestConf(t)
	defer closeFn()

	hash, err := bcrypt.GenerateFromPassword([]byte("supersecret"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	now := time.Now()
	userRow := func() *sqlmock.Rows {
		return sqlmock.NewRows([]string{"user_id", "first_name", "last_name", "email", "phone",
			"password_hash", "role", "total_orders", "total_spent", "created_at", "updated_at"}).
			AddRow("u1", "Asha", "Rao", "asha@example.com", "9999999999", string(hash), "customer", 3, "360", now, now)
	}

	mock.ExpectQuery("SELECT user_id, first_name").
		WithArgs("asha@example.com").
		WillReturnRows(userRow())

	u, err := conf.AuthenticateUser(context.Background(), "asha@example.com", "supersecret")
	if err != nil {
		t.Fatalf("AuthenticateUser failed: %v", err)
	}
	if u.ID != "u1" || u.Role != "customer" {
		t.Fatalf("unexpected user: %+v", u)
	}

	mock.ExpectQuery("SELECT user_id, first_name").
		WithArgs("asha@example.com").
		WillReturnRows(userRow())

	_, err = conf.AuthenticateUser(context.Background(), "asha@example.com", "wrongpassword")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAuthenticateUser_UnknownEmail(t *testing.T) {
	conf, mock, closeFn := newTestConf(t)
	defer closeFn()

	mock.ExpectQuery("SELECT user_id, first_name").
		WithArgs("nobody@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "first_name", "last_name", "email", "phone",
			"password_hash", "role", "total_orders", "total_spent", "created_at", "updated_at"}))

	_, err := conf.AuthenticateUser(context.Background(), "nobody@example.com", "whatever")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestListCustomers(t *testing.T) {
	conf, mock, closeFn := newTestConf(t)
	defer closeFn()

	now := time.Now()
	rows := sqlmock.NewRows([]string{"user_id", "first_name", "last_name", "email", "phone", "role",
		"total_orders", "total_spent", "created_at", "updated_at"}).
		AddRow("u1", "Asha", "Rao", "asha@example.com", "9999999999", "customer", 3, "360", now, now)
	mock.ExpectQuery("WHERE role = 'customer'").
		WillReturnRows(rows)

	got, err := conf.ListCustomers(context.Background())
	if err != nil {
		t.Fatalf("ListCustomers failed: %v", err)
	}
	if len(got) != 1 || got[0].TotalOrders != 3 {
		t.Fatalf("unexpected customers: %+v", got)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
