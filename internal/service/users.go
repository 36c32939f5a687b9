package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/gfdmit/web-forum/posts-api/internal/apperr"
	"github.com/gfdmit/web-forum/posts-api/internal/auth"
	"github.com/gfdmit/web-forum/posts-api/internal/mail"
	"github.com/gfdmit/web-forum/posts-api/internal/model"
	"github.com/gfdmit/web-forum/posts-api/internal/notifier"
	"github.com/gfdmit/web-forum/posts-api/internal/repository"
)

type SignupInput struct {
	Username string
	Email    string
	Password string
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

const (
	msgAlreadyConfirmed = "Your email is already confirmed"
	msgCheckEmail       = "Check your email for confirmation."
)

var errInvalidCredentials = apperr.Unauthorized("Invalid credentials")

// Signup creates an unconfirmed account and sends the confirmation email.
func (svc *Service) Signup(ctx context.Context, in SignupInput) (*model.User, error) {
	_, err := svc.users.GetByEmail(ctx, in.Email)
	if err == nil {
		return nil, apperr.Conflict("Account already exists")
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("service.Signup: %w", err)
	}
	user, err := svc.users.Create(ctx, in.Username, in.Email, hash)
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, apperr.Conflict("Account already exists")
	}
	if err != nil {
		return nil, err
	}

	svc.sendEmailToken(ctx, *user, mail.TemplateEmailVerification)
	return user, nil
}

// Login checks the credentials of a confirmed user and starts a new session.
// The issued refresh token replaces any previous one.
func (svc *Service) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	user, err := svc.users.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, errInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !user.Confirmed {
		return nil, errInvalidCredentials
	}
	if !auth.CheckPassword(user.Password, password) {
		return nil, errInvalidCredentials
	}
	return svc.issue(ctx, *user)
}

// Refresh rotates the refresh token. Presenting a token other than the
// latest one revokes the session.
func (svc *Service) Refresh(ctx context.Context, token string) (*TokenPair, error) {
	email, err := svc.tokens.Parse(token, auth.ScopeRefresh)
	if err != nil {
		return nil, apperr.Unauthorized("%s", capitalize(err.Error()))
	}
	user, err := svc.users.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.Unauthorized("Could not validate credentials")
	}
	if err != nil {
		return nil, err
	}
	if user.RefreshToken == nil || *user.RefreshToken != token {
		if err := svc.users.UpdateToken(ctx, user.ID, nil); err != nil {
			return nil, err
		}
		return nil, apperr.Unauthorized("Invalid refresh token")
	}
	return svc.issue(ctx, *user)
}

func (svc *Service) issue(ctx context.Context, user model.User) (*TokenPair, error) {
	access, err := svc.tokens.Issue(user.Email, auth.ScopeAccess)
	if err != nil {
		return nil, err
	}
	refresh, err := svc.tokens.Issue(user.Email, auth.ScopeRefresh)
	if err != nil {
		return nil, err
	}
	if err := svc.users.UpdateToken(ctx, user.ID, &refresh); err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh, TokenType: "bearer"}, nil
}

// CurrentUser resolves an access token to its user, through the cache.
func (svc *Service) CurrentUser(ctx context.Context, token string) (*model.User, error) {
	email, err := svc.tokens.Parse(token, auth.ScopeAccess)
	if err != nil {
		return nil, apperr.Unauthorized("Could not validate credentials")
	}
	if user, ok := svc.cache.Get(email); ok {
		return user, nil
	}
	user, err := svc.users.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.Unauthorized("Could not validate credentials")
	}
	if err != nil {
		return nil, err
	}
	svc.cache.Set(*user)
	return user, nil
}

func (svc *Service) ConfirmEmail(ctx context.Context, token string) (string, error) {
	user, err := svc.userFromEmailToken(ctx, token)
	if err != nil {
		return "", err
	}
	if user.Confirmed {
		return msgAlreadyConfirmed, nil
	}
	if err := svc.users.Confirm(ctx, user.ID); err != nil {
		return "", err
	}
	svc.cache.Invalidate(user.Email)
	return "Email confirmed", nil
}

// RequestConfirmation resends the confirmation email. The answer does not
// reveal whether the address is registered.
func (svc *Service) RequestConfirmation(ctx context.Context, email string) (string, error) {
	user, err := svc.users.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return msgCheckEmail, nil
	}
	if err != nil {
		return "", err
	}
	if user.Confirmed {
		return msgAlreadyConfirmed, nil
	}
	svc.sendEmailToken(ctx, *user, mail.TemplateEmailVerification)
	return msgCheckEmail, nil
}

func (svc *Service) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	user, err := svc.users.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return "User not found.", nil
	}
	if err != nil {
		return "", err
	}
	svc.sendEmailToken(ctx, *user, mail.TemplatePasswordReset)
	return "Check your email to reset password.", nil
}

// CheckResetToken validates a password reset link before the form is shown.
func (svc *Service) CheckResetToken(ctx context.Context, token string) error {
	_, err := svc.userFromEmailToken(ctx, token)
	return err
}

// ResetPassword sets a new password and ends the user's current session.
func (svc *Service) ResetPassword(ctx context.Context, token, password string) error {
	email, err := svc.tokens.Parse(token, auth.ScopeEmail)
	if err != nil {
		return apperr.Validation("Invalid token for email verification")
	}
	user, err := svc.users.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound("User not found")
	}
	if err != nil {
		return err
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("service.ResetPassword: %w", err)
	}
	if err := svc.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		return err
	}
	svc.cache.Invalidate(user.Email)
	return nil
}

func (svc *Service) userFromEmailToken(ctx context.Context, token string) (*model.User, error) {
	email, err := svc.tokens.Parse(token, auth.ScopeEmail)
	if err != nil {
		return nil, apperr.Validation("Invalid token for email verification")
	}
	user, err := svc.users.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.Validation("Verification error")
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// sendEmailToken enqueues an email carrying a signed email token.
func (svc *Service) sendEmailToken(ctx context.Context, user model.User, template string) {
	token, err := svc.tokens.Issue(user.Email, auth.ScopeEmail)
	if err != nil {
		log.Printf("[SERVICE] failed to issue email token for %s: %v", user.Email, err)
		return
	}
	svc.notify(ctx, notifier.Notification{
		Recipient: user.Email,
		Template:  template,
		Params: map[string]string{
			"host":     svc.publicURL,
			"username": user.Username,
			"token":    token,
		},
	})
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
