package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const userColumns = "id, email, hashed_password, full_name, is_active, created_at"

// userRepo implements UserRepository.
type userRepo struct {
	pool PgxPool
}

func (r *userRepo) Create(ctx context.Context, email, hashedPassword string, fullName *string) (*User, error) {
	defer observeDB(ctx, "db.users.create")()

	const q = `INSERT INTO users (email, hashed_password, full_name)
VALUES ($1, $2, $3)
RETURNING ` + userColumns

	var u User
	err := r.pool.QueryRow(ctx, q, email, hashedPassword, fullName).
		Scan(&u.ID, &u.Email, &u.HashedPassword, &u.FullName, &u.IsActive, &u.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return &u, nil
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*User, error) {
	defer observeDB(ctx, "db.users.get_by_email")()

	const q = `SELECT ` + userColumns + ` FROM users WHERE email=$1`
	return scanUser(r.pool.QueryRow(ctx, q, email))
}

func (r *userRepo) GetByID(ctx context.Context, id int64) (*User, error) {
	defer observeDB(ctx, "db.users.get_by_id")()

	const q = `SELECT ` + userColumns + ` FROM users WHERE id=$1`
	return scanUser(r.pool.QueryRow(ctx, q, id))
}

func scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.HashedPassword, &u.FullName, &u.IsActive, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("query user: %w", err)
	}
	return &u, nil
}
