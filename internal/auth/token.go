package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/gfdmit/web-forum/posts-api/config"
)

// Token scopes. A token is only accepted where its scope is expected.
const (
	ScopeAccess  = "access_token"
	ScopeRefresh = "refresh_token"
	ScopeEmail   = "email_token"
)

var (
	ErrInvalidToken = errors.New("could not validate credentials")
	ErrInvalidScope = errors.New("invalid scope for token")
)

// Claims is the payload of every token. The subject is the user's email.
type Claims struct {
	Scope string `json:"scope"`
	jwt.RegisteredClaims
}

// Tokens signs and validates HS256 tokens with the configured secret.
type Tokens struct {
	secret []byte
	ttl    map[string]time.Duration
	now    func() time.Time
}

func NewTokens(conf config.Auth) *Tokens {
	return &Tokens{
		secret: []byte(conf.SecretKey),
		ttl: map[string]time.Duration{
			ScopeAccess:  conf.AccessTokenTTL,
			ScopeRefresh: conf.RefreshTokenTTL,
			ScopeEmail:   conf.EmailTokenTTL,
		},
		now: time.Now,
	}
}

func (t *Tokens) Issue(email, scope string) (string, error) {
	ttl, ok := t.ttl[scope]
	if !ok {
		return "", fmt.Errorf("auth.Issue: unknown scope %q", scope)
	}
	now := t.now()
	claims := &Claims{
		Scope: scope,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("auth.Issue: %v", err)
	}
	return signed, nil
}

// Parse validates the token signature, expiry and scope and returns the email
// it was issued for.
func (t *Tokens) Parse(raw, scope string) (string, error) {
	token, err := jwt.ParseWithClaims(raw, &Claims{}, func(*jwt.Token) (interface{}, error) {
		return t.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(t.now))
	if err != nil {
		return "", ErrInvalidToken
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject == "" {
		return "", ErrInvalidToken
	}
	if claims.Scope != scope {
		return "", ErrInvalidScope
	}
	return claims.Subject, nil
}
