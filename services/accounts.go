package services

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"marketplace/apperror"
	"marketplace/auth"
	"marketplace/models"
)

const minPasswordLength = 6

type Accounts struct {
	users  UserStore
	tokens *auth.TokenManager
}

func NewAccounts(users UserStore, tokens *auth.TokenManager) *Accounts {
	return &Accounts{users: users, tokens: tokens}
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     models.UserRole
}

// Register creates a user and returns it with a fresh access token
func (a *Accounts) Register(ctx context.Context, in RegisterInput) (*models.User, string, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" || strings.TrimSpace(in.Email) == "" || in.Password == "" || in.Role == "" {
		return nil, "", apperror.New(apperror.Validation, "All fields are required")
	}
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return nil, "", apperror.New(apperror.Validation, "Invalid email address")
	}
	in.Email = email
	if len(in.Password) < minPasswordLength {
		return nil, "", apperror.New(apperror.Validation, "Password must be at least 6 characters")
	}
	if !in.Role.Valid() {
		return nil, "", apperror.New(apperror.Validation, "Invalid role. Must be: customer or delivery")
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, "", apperror.Wrap(apperror.Internal, "hashing password", err)
	}
	user := &models.User{Name: in.Name, Email: in.Email, PasswordHash: hash, Role: in.Role}
	if err := a.users.CreateUser(ctx, user); err != nil {
		return nil, "", err
	}

	token, err := a.tokens.IssueAccess(user)
	if err != nil {
		return nil, "", apperror.Wrap(apperror.Internal, "signing access token", err)
	}
	return user, token, nil
}

// normalizeEmail reduces any RFC 5322 form, such as "Bob <bob@x.com>",
// to the bare lowercased mailbox so each mailbox has exactly one key.
func normalizeEmail(raw string) (string, error) {
	addr, err := mail.ParseAddress(strings.TrimSpace(raw))
	if err != nil {
		return "", err
	}
	return strings.ToLower(addr.Address), nil
}

// Session is what a successful login hands back
type Session struct {
	User         *models.User
	AccessToken  string
	RefreshToken string
}

func (a *Accounts) Login(ctx context.Context, email, password string) (*Session, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, apperror.New(apperror.Validation, "Email and password are required")
	}
	if normalized, err := normalizeEmail(email); err == nil {
		email = normalized
	}

	user, err := a.users.UserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.New(apperror.Unauthorized, "Invalid credentials")
		}
		return nil, err
	}
	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, apperror.New(apperror.Unauthorized, "Invalid credentials")
	}

	access, err := a.tokens.IssueAccess(user)
	if err != nil {
		return nil, apperror.Wrap(apperror.Internal, "signing access token", err)
	}
	refresh, err := a.tokens.IssueRefresh(user)
	if err != nil {
		return nil, apperror.Wrap(apperror.Internal, "signing refresh token", err)
	}
	return &Session{User: user, AccessToken: access, RefreshToken: refresh}, nil
}

// Refresh exchanges a valid refresh token for a new access token. The user
// is re-read so the new token carries the current name and role.
func (a *Accounts) Refresh(ctx context.Context, refreshToken string) (string, error) {
	if refreshToken == "" {
		return "", apperror.New(apperror.Unauthorized, "Unauthorized")
	}
	userID, err := a.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return "", apperror.Wrap(apperror.Forbidden, "Invalid refresh token", err)
	}
	user, err := a.users.UserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return "", apperror.New(apperror.Forbidden, "Invalid refresh token")
		}
		return "", err
	}
	access, err := a.tokens.IssueAccess(user)
	if err != nil {
		return "", apperror.Wrap(apperror.Internal, "signing access token", err)
	}
	return access, nil
}

func (a *Accounts) Profile(ctx context.Context, caller Caller) (*models.User, error) {
	return a.users.UserByID(ctx, caller.ID)
}
