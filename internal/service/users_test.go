package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/gfdmit/web-forum/posts-api/internal/apperr"
	"github.com/gfdmit/web-forum/posts-api/internal/auth"
	"github.com/gfdmit/web-forum/posts-api/internal/mail"
	"github.com/gfdmit/web-forum/posts-api/internal/model"
	"github.com/gfdmit/web-forum/posts-api/internal/notifier"
	"github.com/gfdmit/web-forum/posts-api/internal/repository"
)

func TestSignup(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)

	f.users.EXPECT().GetByEmail(gomock.Any(), "carol@example.com").Return(nil, repository.ErrNotFound)
	f.users.EXPECT().Create(gomock.Any(), "carol", "carol@example.com", gomock.Any()).
		DoAndReturn(func(_ context.Context, username, email, hash string) (*model.User, error) {
			req.True(auth.CheckPassword(hash, "secret1"))
			return &model.User{ID: 3, Username: username, Email: email}, nil
		})

	var sent notifier.Notification
	f.notifier.EXPECT().
		Notify(gomock.Any(), notificationMatcher{recipient: "carol@example.com", template: mail.TemplateEmailVerification}).
		DoAndReturn(func(_ context.Context, n notifier.Notification) error {
			sent = n
			return nil
		})

	user, err := f.svc.Signup(context.Background(), SignupInput{Username: "carol", Email: "carol@example.com", Password: "secret1"})
	req.NoError(err)
	req.EqualValues(3, user.ID)

	email, err := f.tokens.Parse(sent.Params["token"], auth.ScopeEmail)
	req.NoError(err)
	req.Equal("carol@example.com", email)
	req.Equal("http://localhost:8000/", sent.Params["host"])
}

func TestSignup_Exists(t *testing.T) {
	f := newFixture(t)
	f.users.EXPECT().GetByEmail(gomock.Any(), alice.Email).Return(&alice, nil)

	_, err := f.svc.Signup(context.Background(), SignupInput{Username: "alice", Email: alice.Email, Password: "secret1"})
	require.ErrorIs(t, err, apperr.ErrConflict)
}

func TestLogin(t *testing.T) {
	hash, err := auth.HashPassword("secret1")
	require.NoError(t, err)
	stored := alice
	stored.Password = hash

	t.Run("success", func(t *testing.T) {
		req := require.New(t)
		f := newFixture(t)
		f.users.EXPECT().GetByEmail(gomock.Any(), alice.Email).Return(&stored, nil)
		f.users.EXPECT().UpdateToken(gomock.Any(), alice.ID, gomock.Not(gomock.Nil())).Return(nil)

		pair, err := f.svc.Login(context.Background(), alice.Email, "secret1")
		req.NoError(err)
		req.Equal("bearer", pair.TokenType)

		email, err := f.tokens.Parse(pair.AccessToken, auth.ScopeAccess)
		req.NoError(err)
		req.Equal(alice.Email, email)
		_, err = f.tokens.Parse(pair.RefreshToken, auth.ScopeRefresh)
		req.NoError(err)
	})

	t.Run("wrong password", func(t *testing.T) {
		f := newFixture(t)
		f.users.EXPECT().GetByEmail(gomock.Any(), alice.Email).Return(&stored, nil)

		_, err := f.svc.Login(context.Background(), alice.Email, "secret2")
		require.ErrorIs(t, err, apperr.ErrUnauthorized)
	})

	t.Run("unconfirmed", func(t *testing.T) {
		f := newFixture(t)
		unconfirmed := stored
		unconfirmed.Confirmed = false
		f.users.EXPECT().GetByEmail(gomock.Any(), alice.Email).Return(&unconfirmed, nil)

		_, err := f.svc.Login(context.Background(), alice.Email, "secret1")
		require.ErrorIs(t, err, apperr.ErrUnauthorized)
	})

	t.Run("unknown user", func(t *testing.T) {
		f := newFixture(t)
		f.users.EXPECT().GetByEmail(gomock.Any(), "nobody@example.com").Return(nil, repository.ErrNotFound)

		_, err := f.svc.Login(context.Background(), "nobody@example.com", "secret1")
		require.ErrorIs(t, err, apperr.ErrUnauthorized)
	})
}

func TestRefresh(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	ctx := context.Background()

	token, err := f.tokens.Issue(alice.Email, auth.ScopeRefresh)
	req.NoError(err)
	stored := alice
	stored.RefreshToken = &token

	f.users.EXPECT().GetByEmail(gomock.Any(), alice.Email).Return(&stored, nil)
	f.users.EXPECT().UpdateToken(gomock.Any(), alice.ID, gomock.Not(gomock.Nil())).Return(nil)

	pair, err := f.svc.Refresh(ctx, token)
	req.NoError(err)
	req.NotEqual(token, pair.RefreshToken)
}

func TestRefresh_ReuseRevokesSession(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)

	old, err := f.tokens.Issue(alice.Email, auth.ScopeRefresh)
	req.NoError(err)
	latest, err := f.tokens.Issue(alice.Email, auth.ScopeRefresh)
	req.NoError(err)
	stored := alice
	stored.RefreshToken = &latest

	f.users.EXPECT().GetByEmail(gomock.Any(), alice.Email).Return(&stored, nil)
	f.users.EXPECT().UpdateToken(gomock.Any(), alice.ID, gomock.Nil()).Return(nil)

	_, err = f.svc.Refresh(context.Background(), old)
	req.ErrorIs(err, apperr.ErrUnauthorized)
	req.Equal("Invalid refresh token", apperr.MessageOf(err))
}

func TestRefresh_AccessTokenRejected(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)

	access, err := f.tokens.Issue(alice.Email, auth.ScopeAccess)
	req.NoError(err)

	_, err = f.svc.Refresh(context.Background(), access)
	req.ErrorIs(err, apperr.ErrUnauthorized)
	req.Equal("Invalid scope for token", apperr.MessageOf(err))
}

func TestCurrentUser(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	ctx := context.Background()

	token, err := f.tokens.Issue(alice.Email, auth.ScopeAccess)
	req.NoError(err)

	gomock.InOrder(
		f.cache.EXPECT().Get(alice.Email).Return(nil, false),
		f.cache.EXPECT().Get(alice.Email).Return(&alice, true),
	)
	f.users.EXPECT().GetByEmail(gomock.Any(), alice.Email).Return(&alice, nil).Times(1)
	f.cache.EXPECT().Set(alice)

	user, err := f.svc.CurrentUser(ctx, token)
	req.NoError(err)
	req.Equal(alice.ID, user.ID)

	user, err = f.svc.CurrentUser(ctx, token)
	req.NoError(err)
	req.Equal(alice.ID, user.ID)

	_, err = f.svc.CurrentUser(ctx, "garbage")
	req.ErrorIs(err, apperr.ErrUnauthorized)
}

func TestConfirmEmail(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	ctx := context.Background()

	token, err := f.tokens.Issue("carol@example.com", auth.ScopeEmail)
	req.NoError(err)
	carol := model.User{ID: 3, Email: "carol@example.com"}
	confirmed := carol
	confirmed.Confirmed = true

	gomock.InOrder(
		f.users.EXPECT().GetByEmail(gomock.Any(), carol.Email).Return(&carol, nil),
		f.users.EXPECT().GetByEmail(gomock.Any(), carol.Email).Return(&confirmed, nil),
	)
	f.users.EXPECT().Confirm(gomock.Any(), carol.ID).Return(nil)
	f.cache.EXPECT().Invalidate(carol.Email)

	msg, err := f.svc.ConfirmEmail(ctx, token)
	req.NoError(err)
	req.Equal("Email confirmed", msg)

	msg, err = f.svc.ConfirmEmail(ctx, token)
	req.NoError(err)
	req.Equal("Your email is already confirmed", msg)

	_, err = f.svc.ConfirmEmail(ctx, "bad-token")
	req.ErrorIs(err, apperr.ErrValidation)
}

func TestRequestPasswordReset(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	ctx := context.Background()

	f.users.EXPECT().GetByEmail(gomock.Any(), alice.Email).Return(&alice, nil)
	f.notifier.EXPECT().
		Notify(gomock.Any(), notificationMatcher{recipient: alice.Email, template: mail.TemplatePasswordReset}).
		Return(nil)

	msg, err := f.svc.RequestPasswordReset(ctx, alice.Email)
	req.NoError(err)
	req.Equal("Check your email to reset password.", msg)

	f.users.EXPECT().GetByEmail(gomock.Any(), "nobody@example.com").Return(nil, repository.ErrNotFound)
	msg, err = f.svc.RequestPasswordReset(ctx, "nobody@example.com")
	req.NoError(err)
	req.Equal("User not found.", msg)
}

func TestResetPassword(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	ctx := context.Background()

	token, err := f.tokens.Issue(alice.Email, auth.ScopeEmail)
	req.NoError(err)

	f.users.EXPECT().GetByEmail(gomock.Any(), alice.Email).Return(&alice, nil)
	f.users.EXPECT().UpdatePassword(gomock.Any(), alice.ID, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ int64, hash string) error {
			req.True(auth.CheckPassword(hash, "newpass"))
			return nil
		})
	f.cache.EXPECT().Invalidate(alice.Email)

	req.NoError(f.svc.ResetPassword(ctx, token, "newpass"))

	access, err := f.tokens.Issue(alice.Email, auth.ScopeAccess)
	req.NoError(err)
	req.ErrorIs(f.svc.ResetPassword(ctx, access, "newpass"), apperr.ErrValidation)
}

func TestRequestConfirmation(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	ctx := context.Background()

	carol := model.User{ID: 3, Username: "carol", Email: "carol@example.com"}
	f.users.EXPECT().GetByEmail(gomock.Any(), carol.Email).Return(&carol, nil)
	f.notifier.EXPECT().
		Notify(gomock.Any(), notificationMatcher{recipient: carol.Email, template: mail.TemplateEmailVerification}).
		Return(nil)

	msg, err := f.svc.RequestConfirmation(ctx, carol.Email)
	req.NoError(err)
	req.Equal("Check your email for confirmation.", msg)

	f.users.EXPECT().GetByEmail(gomock.Any(), alice.Email).Return(&alice, nil)
	msg, err = f.svc.RequestConfirmation(ctx, alice.Email)
	req.NoError(err)
	req.Equal("Your email is already confirmed", msg)
}
