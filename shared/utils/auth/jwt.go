package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

var (
	ErrInvalidToken   = errors.New("invalid token")
	ErrWrongTokenType = errors.New("wrong token type")
)

type Claims struct {
	UserID         string `json:"user_id"`
	Email          string `json:"email"`
	TenantID       string `json:"tenant_id"`
	OrganizationID string `json:"organization_id,omitempty"`
	UserRole       string `json:"user_role"`
	TokenType      string `json:"token_type"`
	jwt.RegisteredClaims
}

// Subject is the identity a token is issued for.
type Subject struct {
	UserID         string
	Email          string
	TenantID       string
	OrganizationID string
	UserRole       string
}

// TokenManager issues and validates HS256 access and refresh tokens.
type TokenManager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewTokenManager creates a token manager. An empty secret falls back to a
// development key.
func NewTokenManager(secret string, accessTTL, refreshTTL time.Duration) *TokenManager {
	if secret == "" {
		secret = "fallback-secret-key-for-development"
	}
	return &TokenManager{secret: []byte(secret), accessTTL: accessTTL, refreshTTL: refreshTTL}
}

// AccessTTL returns the lifetime of access tokens.
func (m *TokenManager) AccessTTL() time.Duration {
	return m.accessTTL
}

func (m *TokenManager) sign(s Subject, tokenType string, ttl time.Duration) (string, *Claims, error) {
	now := time.Now()
	claims := Claims{
		UserID:         s.UserID,
		Email:          s.Email,
		TenantID:       s.TenantID,
		OrganizationID: s.OrganizationID,
		UserRole:       s.UserRole,
		TokenType:      tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   s.UserID,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", nil, err
	}
	return signed, &claims, nil
}

// IssueAccessToken issues an access token and returns its claims.
func (m *TokenManager) IssueAccessToken(s Subject) (string, *Claims, error) {
	return m.sign(s, tokenTypeAccess, m.accessTTL)
}

// GenerateJWT issues an access token.
func (m *TokenManager) GenerateJWT(s Subject) (string, error) {
	token, _, err := m.sign(s, tokenTypeAccess, m.accessTTL)
	return token, err
}

// GenerateRefreshJWT issues a refresh token.
func (m *TokenManager) GenerateRefreshJWT(s Subject) (string, error) {
	token, _, err := m.sign(s, tokenTypeRefresh, m.refreshTTL)
	return token, err
}

func (m *TokenManager) parse(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}
	return nil, ErrInvalidToken
}

// ValidateJWT validates an access token.
func (m *TokenManager) ValidateJWT(tokenString string) (*Claims, error) {
	claims, err := m.parse(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != tokenTypeAccess {
		return nil, ErrWrongTokenType
	}
	return claims, nil
}

// ValidateRefreshJWT validates a refresh token.
func (m *TokenManager) ValidateRefreshJWT(tokenString string) (*Claims, error) {
	claims, err := m.parse(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != tokenTypeRefresh {
		return nil, ErrWrongTokenType
	}
	return claims, nil
}

// IsTokenExpired reports whether the token is unusable.
func (m *TokenManager) IsTokenExpired(tokenString string) bool {
	claims, err := m.parse(tokenString)
	if err != nil {
		return true
	}
	return claims.ExpiresAt.Before(time.Now())
}
