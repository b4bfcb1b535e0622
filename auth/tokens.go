// Package auth issues and verifies the marketplace's bearer credentials.
//
// Access tokens carry the caller's id, role and name and are signed with
// the access secret. Refresh tokens carry only the id and are signed with
// a separate secret, so neither kind can stand in for the other. Every
// identity or role decision goes through Verify; there is no unverified
// decode path.
package auth

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"

	"marketplace/models"
)

var (
	ErrMissingToken = errors.New("missing bearer token")
	ErrInvalidToken = errors.New("invalid or expired token")
)

// Claims is the payload of an access token
type Claims struct {
	UserID string          `json:"_id"`
	Role   models.UserRole `json:"role"`
	Name   string          `json:"name"`
	jwt.RegisteredClaims
}

type refreshClaims struct {
	UserID string `json:"_id"`
	jwt.RegisteredClaims
}

const (
	accessAudience  = "access"
	refreshAudience = "refresh"
)

type TokenManager struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

func NewTokenManager(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *TokenManager {
	return &TokenManager{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		now:           time.Now,
	}
}

// RefreshTTL is how long a refresh cookie should live
func (m *TokenManager) RefreshTTL() time.Duration { return m.refreshTTL }

// IssueAccess creates a short-lived signed access token for user
func (m *TokenManager) IssueAccess(user *models.User) (string, error) {
	now := m.now()
	claims := Claims{
		UserID: user.ID,
		Role:   user.Role,
		Name:   user.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			Audience:  jwt.ClaimStrings{accessAudience},
			ExpiresAt: jwt.NewNumericDate(now.Add(m.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.accessSecret)
}

// IssueRefresh creates a longer-lived refresh token for user
func (m *TokenManager) IssueRefresh(user *models.User) (string, error) {
	now := m.now()
	claims := refreshClaims{
		UserID: user.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			Audience:  jwt.ClaimStrings{refreshAudience},
			ExpiresAt: jwt.NewNumericDate(now.Add(m.refreshTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.refreshSecret)
}

// Verify checks an access token's signature, expiry and audience and
// returns its claims.
func (m *TokenManager) Verify(tokenStr string) (*Claims, error) {
	if tokenStr == "" {
		return nil, ErrMissingToken
	}
	claims := &Claims{}
	if err := m.parse(tokenStr, claims, m.accessSecret, accessAudience); err != nil {
		return nil, err
	}
	if claims.UserID == "" || !claims.Role.Valid() {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// VerifyRefresh checks a refresh token and returns the user id it names
func (m *TokenManager) VerifyRefresh(tokenStr string) (string, error) {
	if tokenStr == "" {
		return "", ErrMissingToken
	}
	claims := &refreshClaims{}
	if err := m.parse(tokenStr, claims, m.refreshSecret, refreshAudience); err != nil {
		return "", err
	}
	if claims.UserID == "" {
		return "", ErrInvalidToken
	}
	return claims.UserID, nil
}

func (m *TokenManager) parse(tokenStr string, claims jwt.Claims, secret []byte, audience string) error {
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(audience),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !token.Valid {
		return ErrInvalidToken
	}
	return nil
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header value
func BearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, prefix))
	return token, token != ""
}
