package service

import (
	"context"
	"errors"

	"github.com/gfdmit/web-forum/posts-api/internal/apperr"
	"github.com/gfdmit/web-forum/posts-api/internal/repository"
)

func (svc *Service) SetValue(ctx context.Context, key, value string) error {
	return svc.kv.Set(ctx, key, value, 0)
}

func (svc *Service) GetValue(ctx context.Context, key string) (string, error) {
	value, err := svc.kv.Get(ctx, key)
	if errors.Is(err, repository.ErrNotFound) {
		return "", apperr.NotFound("Key %q has not been found", key)
	}
	return value, err
}

func (svc *Service) CheckDB(ctx context.Context) error {
	if err := svc.tx.Ping(ctx); err != nil {
		return apperr.Upstream(err, "Database is not configured correctly")
	}
	return nil
}

func (svc *Service) CheckKV(ctx context.Context) error {
	if err := svc.kv.Ping(ctx); err != nil {
		return apperr.Upstream(err, "Key/value store is not configured correctly")
	}
	return nil
}
