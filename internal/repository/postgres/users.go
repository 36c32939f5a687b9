package postgres

import (
	"context"
	"fmt"

	"github.com/gfdmit/web-forum/posts-api/internal/model"
)

const userColumns = "id, username, email, password, refresh_token, confirmed, created_at, updated_at"

type Users struct {
	*DB
}

func NewUsers(db *DB) *Users {
	return &Users{DB: db}
}

func (r *Users) GetByID(ctx context.Context, id int64) (*model.User, error) {
	user := &model.User{}
	err := r.conn(ctx).GetContext(ctx, user, "SELECT "+userColumns+" FROM users WHERE id = $1", id)
	if err != nil {
		return nil, fmt.Errorf("users.GetByID: %w", mapError(err))
	}
	return user, nil
}

func (r *Users) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	user := &model.User{}
	err := r.conn(ctx).GetContext(ctx, user, "SELECT "+userColumns+" FROM users WHERE email = $1", email)
	if err != nil {
		return nil, fmt.Errorf("users.GetByEmail: %w", mapError(err))
	}
	return user, nil
}

func (r *Users) Create(ctx context.Context, username, email, passwordHash string) (*model.User, error) {
	user := &model.User{}
	err := r.conn(ctx).GetContext(ctx, user,
		"INSERT INTO users (username, email, password) VALUES ($1, $2, $3) RETURNING "+userColumns,
		username, email, passwordHash)
	if err != nil {
		return nil, fmt.Errorf("users.Create: %w", mapError(err))
	}
	return user, nil
}

func (r *Users) UpdateToken(ctx context.Context, id int64, refreshToken *string) error {
	res, err := r.conn(ctx).ExecContext(ctx,
		"UPDATE users SET refresh_token = $1, updated_at = NOW() WHERE id = $2", refreshToken, id)
	if err != nil {
		return fmt.Errorf("users.UpdateToken: %w", mapError(err))
	}
	return affected(res)
}

func (r *Users) Confirm(ctx context.Context, id int64) error {
	res, err := r.conn(ctx).ExecContext(ctx,
		"UPDATE users SET confirmed = TRUE, updated_at = NOW() WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("users.Confirm: %w", mapError(err))
	}
	return affected(res)
}

func (r *Users) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	res, err := r.conn(ctx).ExecContext(ctx,
		"UPDATE users SET password = $1, refresh_token = NULL, updated_at = NOW() WHERE id = $2", passwordHash, id)
	if err != nil {
		return fmt.Errorf("users.UpdatePassword: %w", mapError(err))
	}
	return affected(res)
}
