package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
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

// InsertUser registers a new user with a bcrypt-hashed password.
func (c *Conf) InsertUser(ctx context.Context, nu NewUser) (User, error) {
	var exists bool
	err := c.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`, nu.Email).Scan(&exists)
	if err != nil {
		return User{}, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return User{}, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(nu.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	u := User{
		ID:        uuid.NewString(),
		FirstName: nu.FirstName,
		LastName:  nu.LastName,
		Email:     nu.Email,
		Phone:     nu.Phone,
		Role:      nu.Role,
	}

	query := `
		INSERT INTO users (user_id, first_name, last_name, email, phone, password_hash, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING total_orders, total_spent, created_at, updated_at
	`
	err = c.db.QueryRowContext(ctx, query,
		u.ID, u.FirstName, u.LastName, u.Email, u.Phone, string(hash), u.Role).Scan(
		&u.TotalOrders, &u.TotalSpent, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return User{}, fmt.Errorf("failed to insert user: %w", err)
	}
	return u, nil
}

// AuthenticateUser verifies email and password and returns the user.
// Returns ErrInvalidCredentials for both unknown emails and bad passwords.
func (c *Conf) AuthenticateUser(ctx context.Context, email, password string) (User, error) {
	query := `
		SELECT user_id, first_name, last_name, email, phone, password_hash, role,
		       total_orders, total_spent, created_at, updated_at
		FROM users
		WHERE email = $1
	`
	var u User
	var hash string
	err := c.db.QueryRowContext(ctx, query, email).Scan(
		&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.Phone, &hash, &u.Role,
		&u.TotalOrders, &u.TotalSpent, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrInvalidCredentials
		}
		return User{}, fmt.Errorf("failed to query user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return User{}, ErrInvalidCredentials
	}
	return u, nil
}

// GetUserByID returns sql.ErrNoRows when the user does not exist.
func (c *Conf) GetUserByID(ctx context.Context, userID string) (User, error) {
	query := `
		SELECT user_id, first_name, last_name, email, phone, role,
		       total_orders, total_spent, created_at, updated_at
		FROM users
		WHERE user_id = $1
	`
	var u User
	err := c.db.QueryRowContext(ctx, query, userID).Scan(
		&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.Phone, &u.Role,
		&u.TotalOrders, &u.TotalSpent, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return User{}, err
	}
	return u, nil
}

// ListCustomers returns every user holding the customer role.
func (c *Conf) ListCustomers(ctx context.Context) ([]User, error) {
	query := `
		SELECT user_id, first_name, last_name, email, phone, role,
		       total_orders, total_spent, created_at, updated_at
		FROM users
		WHERE role = 'customer'
		ORDER BY created_at DESC
	`
	rows, err := c.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query customers: %w", err)
	}
	defer rows.Close()

	out := []User{}
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.Phone, &u.Role,
			&u.TotalOrders, &u.TotalSpent, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan customer: %w", err)
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating customers: %w", err)
	}
	return out, nil
}
