package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	"github.com/gfdmit/web-forum/posts-api/config"
	"github.com/gfdmit/web-forum/posts-api/internal/auth"
	"github.com/gfdmit/web-forum/posts-api/internal/mocks"
	"github.com/gfdmit/web-forum/posts-api/internal/model"
	"github.com/gfdmit/web-forum/posts-api/internal/notifier"
)

type fixture struct {
	tx        *mocks.MockTransactor
	users     *mocks.MockUserRepository
	posts     *mocks.MockPostRepository
	comments  *mocks.MockCommentRepository
	media     *mocks.MockMediaRepository
	objects   *mocks.MockObjectStore
	notifier  *mocks.MockNotifier
	moderator *mocks.MockModerator
	replier   *mocks.MockReplier
	cache     *mocks.MockUserCache
	kv        *mocks.MockKV
	tokens    *auth.Tokens
	svc       *Service
}

func runTx(ctx context.Context, _ string, fn func(context.Context) error) error {
	return fn(ctx)
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	f := &fixture{
		tx:        mocks.NewMockTransactor(ctrl),
		users:     mocks.NewMockUserRepository(ctrl),
		posts:     mocks.NewMockPostRepository(ctrl),
		comments:  mocks.NewMockCommentRepository(ctrl),
		media:     mocks.NewMockMediaRepository(ctrl),
		objects:   mocks.NewMockObjectStore(ctrl),
		notifier:  mocks.NewMockNotifier(ctrl),
		moderator: mocks.NewMockModerator(ctrl),
		replier:   mocks.NewMockReplier(ctrl),
		cache:     mocks.NewMockUserCache(ctrl),
		kv:        mocks.NewMockKV(ctrl),
		tokens: auth.NewTokens(config.Auth{
			SecretKey:       "test-secret",
			AccessTokenTTL:  15 * time.Minute,
			RefreshTokenTTL: time.Hour,
			EmailTokenTTL:   24 * time.Hour,
		}),
	}
	f.tx.EXPECT().WithinTx(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(runTx).AnyTimes()
	f.svc = New(Deps{
		Tx:        f.tx,
		Users:     f.users,
		Posts:     f.posts,
		Comments:  f.comments,
		Media:     f.media,
		Objects:   f.objects,
		Notifier:  f.notifier,
		Moderator: f.moderator,
		Replier:   f.replier,
		Cache:     f.cache,
		KV:        f.kv,
		Tokens:    f.tokens,
		PublicURL: "http://localhost:8000/",
	})
	return f
}

// clean makes the moderator pass every text.
func (f *fixture) clean() {
	f.moderator.EXPECT().Flagged(gomock.Any(), gomock.Any()).Return(false).AnyTimes()
}

type notificationMatcher struct {
	recipient string
	template  string
}

func (m notificationMatcher) Matches(x any) bool {
	n, ok := x.(notifier.Notification)
	return ok && n.Recipient == m.recipient && n.Template == m.template
}

func (m notificationMatcher) String() string {
	return fmt.Sprintf("is a %s notification to %s", m.template, m.recipient)
}

var (
	alice = model.User{ID: 1, Username: "alice", Email: "alice@example.com", Confirmed: true}
	bob   = model.User{ID: 2, Username: "bob", Email: "bob@example.com", Confirmed: true}
)
