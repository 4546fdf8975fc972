package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store interface {
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	SaveRefreshToken(ctx context.Context, userID int64, refreshToken string) error
	GetRefreshToken(ctx context.Context, userID int64) (string, error)
	DeleteRefreshToken(ctx context.Context, userID int64) error
}

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Store {
	return &Repository{db: db}
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*User, error) {
	query := `
		SELECT id, name, email, role, password_hash, is_active, created_at, updated_at
		FROM users
		WHERE id = $1 AND is_active = true;
	`
	return r.scanUser(r.db.QueryRow(ctx, query, id))
}

func (r *Repository) GetByEmail(ctx context.Context, email string) (*User, error) {
	query := `
		SELECT id, name, email, role, password_hash, is_active, created_at, updated_at
		FROM users
		WHERE email = $1 AND is_active = true;
	`
	return r.scanUser(r.db.QueryRow(ctx, query, email))
}

func (r *Repository) scanUser(row pgx.Row) (*User, error) {
	u := &User{}
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.Password.hash, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return u, nil
}

func (r *Repository) SaveRefreshToken(ctx context.Context, userID int64, refreshToken string) error {
	query := `UPDATE users SET refresh_token = $2, updated_at = NOW() WHERE id = $1;`
	tag, err := r.db.Exec(ctx, query, userID, refreshToken)
	if err != nil {
		return fmt.Errorf("save refresh token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) GetRefreshToken(ctx context.Context, userID int64) (string, error) {
	var token string
	err := r.db.QueryRow(ctx, `SELECT COALESCE(refresh_token, '') FROM users WHERE id = $1;`, userID).Scan(&token)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("get refresh token: %w", err)
	}
	return token, nil
}

func (r *Repository) DeleteRefreshToken(ctx context.Context, userID int64) error {
	if _, err := r.db.Exec(ctx, `UPDATE users SET refresh_token = NULL WHERE id = $1;`, userID); err != nil {
		return fmt.Errorf("delete refresh token: %w", err)
	}
	return nil
}
