package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/gfdmit/web-forum/posts-api/internal/model"
)

const commentSelect = `SELECT c.id, c.post_id, c.user_id, c.content, c.censored, c.created_at, c.updated_at,
	u.username, u.email
	FROM comments c JOIN users u ON u.id = c.user_id`

type Comments struct {
	*DB
}

func NewComments(db *DB) *Comments {
	return &Comments{DB: db}
}

func (r *Comments) List(ctx context.Context) ([]model.Comment, error) {
	comments := []model.Comment{}
	err := r.conn(ctx).SelectContext(ctx, &comments,
		commentSelect+" WHERE c.censored = FALSE ORDER BY c.created_at, c.id")
	if err != nil {
		return nil, fmt.Errorf("comments.List: %w", mapError(err))
	}
	return comments, nil
}

func (r *Comments) ListByPost(ctx context.Context, postID int64) ([]model.Comment, error) {
	comments := []model.Comment{}
	err := r.conn(ctx).SelectContext(ctx, &comments,
		commentSelect+" WHERE c.post_id = $1 AND c.censored = FALSE ORDER BY c.created_at, c.id", postID)
	if err != nil {
		return nil, fmt.Errorf("comments.ListByPost: %w", mapError(err))
	}
	return comments, nil
}

func (r *Comments) ListCensored(ctx context.Context, userID int64, limit, offset int) ([]model.Comment, error) {
	comments := []model.Comment{}
	err := r.conn(ctx).SelectContext(ctx, &comments,
		commentSelect+" WHERE c.user_id = $1 AND c.censored = TRUE ORDER BY c.created_at, c.id LIMIT $2 OFFSET $3",
		userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("comments.ListCensored: %w", mapError(err))
	}
	return comments, nil
}

func (r *Comments) Get(ctx context.Context, id int64) (*model.Comment, error) {
	comment := &model.Comment{}
	err := r.conn(ctx).GetContext(ctx, comment, commentSelect+" WHERE c.id = $1", id)
	if err != nil {
		return nil, fmt.Errorf("comments.Get: %w", mapError(err))
	}
	return comment, nil
}

func (r *Comments) ExistsOnPost(ctx context.Context, postID int64, content string) (bool, error) {
	var exists bool
	err := r.conn(ctx).GetContext(ctx, &exists,
		"SELECT EXISTS (SELECT 1 FROM comments WHERE post_id = $1 AND content = $2)", postID, content)
	if err != nil {
		return false, fmt.Errorf("comments.ExistsOnPost: %w", mapError(err))
	}
	return exists, nil
}

func (r *Comments) Create(ctx context.Context, c model.Comment) (*model.Comment, error) {
	var id int64
	err := r.conn(ctx).GetContext(ctx, &id,
		"INSERT INTO comments (post_id, user_id, content, censored) VALUES ($1, $2, $3, $4) RETURNING id",
		c.PostID, c.UserID, c.Content, c.Censored)
	if err != nil {
		return nil, fmt.Errorf("comments.Create: %w", mapError(err))
	}
	return r.Get(ctx, id)
}

func (r *Comments) Update(ctx context.Context, id int64, content string, censored bool) (*model.Comment, error) {
	res, err := r.conn(ctx).ExecContext(ctx,
		"UPDATE comments SET content = $1, censored = $2, updated_at = NOW() WHERE id = $3", content, censored, id)
	if err != nil {
		return nil, fmt.Errorf("comments.Update: %w", mapError(err))
	}
	if err := affected(res); err != nil {
		return nil, fmt.Errorf("comments.Update: %w", err)
	}
	return r.Get(ctx, id)
}

func (r *Comments) Delete(ctx context.Context, id int64) error {
	res, err := r.conn(ctx).ExecContext(ctx, "DELETE FROM comments WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("comments.Delete: %w", mapError(err))
	}
	return affected(res)
}

func (r *Comments) DailyBreakdown(ctx context.Context, userID int64, from, to time.Time) ([]model.DailyCount, error) {
	rows := []model.DailyCount{}
	err := r.conn(ctx).SelectContext(ctx, &rows,
		`SELECT created_at::date AS day, COUNT(id) AS comment_count
		FROM comments
		WHERE user_id = $1 AND created_at >= $2 AND created_at <= $3
		GROUP BY created_at::date
		ORDER BY day`,
		userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("comments.DailyBreakdown: %w", mapError(err))
	}
	return rows, nil
}
