package postgres

import (
	"context"
	"fmt"

	"github.com/gfdmit/web-forum/posts-api/internal/model"
)

const postColumns = "id, user_id, title, content, status, censored, automatic_reply_enabled, reply_delay, created_at, updated_at"

type Posts struct {
	*DB
}

func NewPosts(db *DB) *Posts {
	return &Posts{DB: db}
}

func (r *Posts) ListPublished(ctx context.Context, limit, offset int) ([]model.Post, error) {
	posts := []model.Post{}
	err := r.conn(ctx).SelectContext(ctx, &posts,
		"SELECT "+postColumns+" FROM posts WHERE status = $1 AND censored = FALSE ORDER BY created_at, id LIMIT $2 OFFSET $3",
		model.StatusPublished, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("posts.ListPublished: %w", mapError(err))
	}
	return posts, nil
}

func (r *Posts) ListCensored(ctx context.Context, limit, offset int) ([]model.Post, error) {
	posts := []model.Post{}
	err := r.conn(ctx).SelectContext(ctx, &posts,
		"SELECT "+postColumns+" FROM posts WHERE censored = TRUE ORDER BY created_at, id LIMIT $1 OFFSET $2",
		limit, offset)
	if err != nil {
		return nil, fmt.Errorf("posts.ListCensored: %w", mapError(err))
	}
	return posts, nil
}

func (r *Posts) Get(ctx context.Context, id int64) (*model.Post, error) {
	post := &model.Post{}
	err := r.conn(ctx).GetContext(ctx, post, "SELECT "+postColumns+" FROM posts WHERE id = $1", id)
	if err != nil {
		return nil, fmt.Errorf("posts.Get: %w", mapError(err))
	}
	return post, nil
}

func (r *Posts) Lock(ctx context.Context, id int64) (*model.Post, error) {
	post := &model.Post{}
	err := r.conn(ctx).GetContext(ctx, post, "SELECT "+postColumns+" FROM posts WHERE id = $1 FOR SHARE", id)
	if err != nil {
		return nil, fmt.Errorf("posts.Lock: %w", mapError(err))
	}
	return post, nil
}

func (r *Posts) ExistsWithContent(ctx context.Context, title, content string) (bool, error) {
	var exists bool
	err := r.conn(ctx).GetContext(ctx, &exists,
		"SELECT EXISTS (SELECT 1 FROM posts WHERE title = $1 AND content = $2)", title, content)
	if err != nil {
		return false, fmt.Errorf("posts.ExistsWithContent: %w", mapError(err))
	}
	return exists, nil
}

func (r *Posts) Create(ctx context.Context, p model.Post) (*model.Post, error) {
	post := &model.Post{}
	err := r.conn(ctx).GetContext(ctx, post,
		`INSERT INTO posts (user_id, title, content, status, censored, automatic_reply_enabled, reply_delay)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING `+postColumns,
		p.UserID, p.Title, p.Content, p.Status, p.Censored, p.AutomaticReplyEnabled, p.ReplyDelay)
	if err != nil {
		return nil, fmt.Errorf("posts.Create: %w", mapError(err))
	}
	return post, nil
}

func (r *Posts) Update(ctx context.Context, p model.Post) (*model.Post, error) {
	post := &model.Post{}
	err := r.conn(ctx).GetContext(ctx, post,
		`UPDATE posts SET title = $1, content = $2, status = $3, censored = $4,
		automatic_reply_enabled = $5, reply_delay = $6, updated_at = NOW()
		WHERE id = $7 RETURNING `+postColumns,
		p.Title, p.Content, p.Status, p.Censored, p.AutomaticReplyEnabled, p.ReplyDelay, p.ID)
	if err != nil {
		return nil, fmt.Errorf("posts.Update: %w", mapError(err))
	}
	return post, nil
}

func (r *Posts) UpdateStatus(ctx context.Context, id int64, status model.PostStatus) (*model.Post, error) {
	post := &model.Post{}
	err := r.conn(ctx).GetContext(ctx, post,
		"UPDATE posts SET status = $1, updated_at = NOW() WHERE id = $2 RETURNING "+postColumns, status, id)
	if err != nil {
		return nil, fmt.Errorf("posts.UpdateStatus: %w", mapError(err))
	}
	return post, nil
}

// Delete removes the post; comments and media rows go with it through
// ON DELETE CASCADE.
func (r *Posts) Delete(ctx context.Context, id int64) error {
	res, err := r.conn(ctx).ExecContext(ctx, "DELETE FROM posts WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("posts.Delete: %w", mapError(err))
	}
	return affected(res)
}
