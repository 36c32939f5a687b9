package postgres

import (
	"context"
	"fmt"

	"github.com/gfdmit/web-forum/posts-api/internal/model"
)

type Media struct {
	*DB
}

func NewMedia(db *DB) *Media {
	return &Media{DB: db}
}

func (r *Media) Create(ctx context.Context, m model.PostMedia) (*model.PostMedia, error) {
	media := &model.PostMedia{}
	err := r.conn(ctx).GetContext(ctx, media,
		`INSERT INTO post_media (post_id, object_key, content_type, size) VALUES ($1, $2, $3, $4)
		RETURNING id, post_id, object_key, content_type, size, created_at`,
		m.PostID, m.ObjectKey, m.ContentType, m.Size)
	if err != nil {
		return nil, fmt.Errorf("media.Create: %w", mapError(err))
	}
	return media, nil
}

func (r *Media) ListByPost(ctx context.Context, postID int64) ([]model.PostMedia, error) {
	media := []model.PostMedia{}
	err := r.conn(ctx).SelectContext(ctx, &media,
		"SELECT id, post_id, object_key, content_type, size, created_at FROM post_media WHERE post_id = $1 ORDER BY id",
		postID)
	if err != nil {
		return nil, fmt.Errorf("media.ListByPost: %w", mapError(err))
	}
	return media, nil
}
