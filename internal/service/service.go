//go:generate go run go.uber.org/mock/mockgen -source=service.go -destination=../mocks/mock_service.go -package=mocks
package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/gfdmit/web-forum/posts-api/internal/apperr"
	"github.com/gfdmit/web-forum/posts-api/internal/auth"
	"github.com/gfdmit/web-forum/posts-api/internal/model"
	"github.com/gfdmit/web-forum/posts-api/internal/notifier"
	"github.com/gfdmit/web-forum/posts-api/internal/repository"
)

// Notifier hands work to the background worker pool. Both calls only
// enqueue; delivery happens later.
type Notifier interface {
	Notify(ctx context.Context, n notifier.Notification) error
	Schedule(ctx context.Context, kind string, payload any, delay time.Duration) error
}

type Moderator interface {
	Flagged(ctx context.Context, text string) bool
}

type Replier interface {
	Reply(ctx context.Context, post, comment string) string
}

type UserCache interface {
	Get(email string) (*model.User, bool)
	Set(user model.User)
	Invalidate(email string)
}

type KV interface {
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Ping(ctx context.Context) error
}

type Deps struct {
	Tx       repository.Transactor
	Users    repository.UserRepository
	Posts    repository.PostRepository
	Comments repository.CommentRepository
	Media    repository.MediaRepository
	// Objects is nil when media uploads are disabled.
	Objects   repository.ObjectStore
	Notifier  Notifier
	Moderator Moderator
	Replier   Replier
	Cache     UserCache
	KV        KV
	Tokens    *auth.Tokens
	// PublicURL prefixes links in emails. It ends with a slash.
	PublicURL string
}

type Service struct {
	tx        repository.Transactor
	users     repository.UserRepository
	posts     repository.PostRepository
	comments  repository.CommentRepository
	media     repository.MediaRepository
	objects   repository.ObjectStore
	notifier  Notifier
	moderator Moderator
	replier   Replier
	cache     UserCache
	kv        KV
	tokens    *auth.Tokens
	publicURL string
}

func New(d Deps) *Service {
	return &Service{
		tx:        d.Tx,
		users:     d.Users,
		posts:     d.Posts,
		comments:  d.Comments,
		media:     d.Media,
		objects:   d.Objects,
		notifier:  d.Notifier,
		moderator: d.Moderator,
		replier:   d.Replier,
		cache:     d.Cache,
		kv:        d.KV,
		tokens:    d.Tokens,
		publicURL: d.PublicURL,
	}
}

// flagged runs every text through the moderator and reports whether any of
// them contains inappropriate language.
func (svc *Service) flagged(ctx context.Context, texts ...string) bool {
	for _, text := range texts {
		if svc.moderator.Flagged(ctx, text) {
			return true
		}
	}
	return false
}

// notify enqueues an email. Enqueue failures are logged and swallowed.
func (svc *Service) notify(ctx context.Context, n notifier.Notification) {
	if err := svc.notifier.Notify(ctx, n); err != nil {
		log.Printf("[SERVICE] failed to enqueue %s email to %s: %v", n.Template, n.Recipient, err)
	}
}

// translate maps persistence errors to domain errors. what names the entity
// in client-facing messages.
func translate(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.As(err, new(*apperr.Error)):
		return err
	case errors.Is(err, repository.ErrNotFound):
		return apperr.NotFound("%s has not been found", what)
	case errors.Is(err, repository.ErrDuplicate):
		return apperr.Conflict("%s already exists", what)
	case errors.Is(err, repository.ErrReference):
		return apperr.Conflict("%s references a record that does not exist", what)
	}
	return err
}

func owns(user model.User, ownerID int64) error {
	if user.ID != ownerID {
		return apperr.Forbidden("Not enough permissions")
	}
	return nil
}
