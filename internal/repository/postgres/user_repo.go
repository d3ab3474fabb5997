package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"citymove/internal/domain/entities"
	"citymove/internal/repository"
)

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *entities.User) error {
	q := `INSERT INTO users (id, email, password_hash, created_at) VALUES ($1, $2, $3, $4)`
	_, err := r.db.ExecContext(ctx, q, user.ID, user.Email, user.PasswordHash, user.CreatedAt)
	if isUniqueViolation(err) {
		return repository.ErrUserExists
	}
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entities.User, error) {
	q := `SELECT id, email, password_hash, created_at FROM users WHERE id = $1`
	return r.getOne(ctx, q, id)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entities.User, error) {
	q := `SELECT id, email, password_hash, created_at FROM users WHERE lower(email) = lower($1)`
	return r.getOne(ctx, q, email)
}

func (r *UserRepository) getOne(ctx context.Context, q string, arg string) (*entities.User, error) {
	var u entities.User
	err := r.db.QueryRowContext(ctx, q, arg).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query user: %w", err)
	}
	return &u, nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id string, passwordHash []byte) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET password_hash = $2 WHERE id = $1`, id, passwordHash)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrUserNotFound
	}
	return nil
}
