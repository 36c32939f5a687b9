package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/gfdmit/web-forum/posts-api/config"
)

func newTokens() *Tokens {
	return NewTokens(config.Auth{
		SecretKey:       "test-secret",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 7 * 24 * time.Hour,
		EmailTokenTTL:   24 * time.Hour,
	})
}

func TestHashAndCheck(t *testing.T) {
	req := require.New(t)

	hash, err := HashPassword("secret1")
	req.NoError(err)
	req.NotEqual("secret1", hash)
	req.True(CheckPassword(hash, "secret1"))
	req.False(CheckPassword(hash, "secret2"))
	req.False(CheckPassword("not-a-hash", "secret1"))
}

func TestTokens_IssueParse(t *testing.T) {
	req := require.New(t)
	tokens := newTokens()

	for _, scope := range []string{ScopeAccess, ScopeRefresh, ScopeEmail} {
		token, err := tokens.Issue("alice@example.com", scope)
		req.NoError(err)

		email, err := tokens.Parse(token, scope)
		req.NoError(err)
		req.Equal("alice@example.com", email)
	}

	_, err := tokens.Issue("alice@example.com", "admin")
	req.Error(err)
}

func TestTokens_Unique(t *testing.T) {
	req := require.New(t)
	tokens := newTokens()

	first, err := tokens.Issue("alice@example.com", ScopeRefresh)
	req.NoError(err)
	second, err := tokens.Issue("alice@example.com", ScopeRefresh)
	req.NoError(err)
	req.NotEqual(first, second)
}

func TestTokens_WrongScope(t *testing.T) {
	req := require.New(t)
	tokens := newTokens()

	refresh, err := tokens.Issue("alice@example.com", ScopeRefresh)
	req.NoError(err)

	_, err = tokens.Parse(refresh, ScopeAccess)
	req.ErrorIs(err, ErrInvalidScope)
}

func TestTokens_Expired(t *testing.T) {
	req := require.New(t)
	tokens := newTokens()
	issued := time.Now().Add(-time.Hour)
	tokens.now = func() time.Time { return issued }

	token, err := tokens.Issue("alice@example.com", ScopeAccess)
	req.NoError(err)

	tokens.now = time.Now
	_, err = tokens.Parse(token, ScopeAccess)
	req.ErrorIs(err, ErrInvalidToken)
}

func TestTokens_BadSignature(t *testing.T) {
	req := require.New(t)

	token, err := newTokens().Issue("alice@example.com", ScopeAccess)
	req.NoError(err)

	other := NewTokens(config.Auth{SecretKey: "another-secret", AccessTokenTTL: time.Minute})
	_, err = other.Parse(token, ScopeAccess)
	req.ErrorIs(err, ErrInvalidToken)

	_, err = other.Parse("garbage", ScopeAccess)
	req.ErrorIs(err, ErrInvalidToken)
}
