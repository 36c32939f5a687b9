//go:generate go run go.uber.org/mock/mockgen -source=repository.go -destination=../mocks/mock_repository.go -package=mocks
package repository

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/gfdmit/web-forum/posts-api/internal/model"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
	ErrReference = errors.New("referenced record does not exist")
)

// Transactor runs fn in a single transaction. Repository calls made with the
// ctx handed to fn join that transaction.
type Transactor interface {
	WithinTx(ctx context.Context, reason string, fn func(ctx context.Context) error) error
	Ping(ctx context.Context) error
}

type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	Create(ctx context.Context, username, email, passwordHash string) (*model.User, error)
	UpdateToken(ctx context.Context, id int64, refreshToken *string) error
	Confirm(ctx context.Context, id int64) error
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
}

type PostRepository interface {
	ListPublished(ctx context.Context, limit, offset int) ([]model.Post, error)
	ListCensored(ctx context.Context, limit, offset int) ([]model.Post, error)
	Get(ctx context.Context, id int64) (*model.Post, error)
	// Lock reads the post with a row lock held until the surrounding
	// transaction ends.
	Lock(ctx context.Context, id int64) (*model.Post, error)
	ExistsWithContent(ctx context.Context, title, content string) (bool, error)
	Create(ctx context.Context, post model.Post) (*model.Post, error)
	Update(ctx context.Context, post model.Post) (*model.Post, error)
	UpdateStatus(ctx context.Context, id int64, status model.PostStatus) (*model.Post, error)
	Delete(ctx context.Context, id int64) error
}

type CommentRepository interface {
	List(ctx context.Context) ([]model.Comment, error)
	ListByPost(ctx context.Context, postID int64) ([]model.Comment, error)
	ListCensored(ctx context.Context, userID int64, limit, offset int) ([]model.Comment, error)
	Get(ctx context.Context, id int64) (*model.Comment, error)
	ExistsOnPost(ctx context.Context, postID int64, content string) (bool, error)
	Create(ctx context.Context, comment model.Comment) (*model.Comment, error)
	Update(ctx context.Context, id int64, content string, censored bool) (*model.Comment, error)
	Delete(ctx context.Context, id int64) error
	DailyBreakdown(ctx context.Context, userID int64, from, to time.Time) ([]model.DailyCount, error)
}

type MediaRepository interface {
	Create(ctx context.Context, media model.PostMedia) (*model.PostMedia, error)
	ListByPost(ctx context.Context, postID int64) ([]model.PostMedia, error)
}

// ObjectStore keeps uploaded files outside the database.
type ObjectStore interface {
	Put(ctx context.Context, key, contentType string, r io.Reader, size int64) error
	URL(ctx context.Context, key string) (string, error)
	Remove(ctx context.Context, key string) error
}
