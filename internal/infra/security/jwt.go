package security

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	uuid "github.com/google/uuid"

	"github.com/Domis382/Redibo-back-wtt/internal/core/domain"
)

var (
	// ErrMissingToken indicates no bearer token was supplied.
	ErrMissingToken = errors.New("jwt: missing token")
	// ErrInvalidToken indicates the token signature or structure is invalid.
	ErrInvalidToken = errors.New("jwt: invalid token")
)

// AccessTokenClaims carries the identity claims embedded in bearer tokens.
// The JSON names are the wire contract consumed by existing clients.
type AccessTokenClaims struct {
	UserID      int64  `json:"id_usuario"`
	Email       string `json:"email"`
	DisplayName string `json:"nombre_completo"`
	jwt.RegisteredClaims
}

// Principal converts verified claims into a request principal.
func (c *AccessTokenClaims) Principal() domain.Principal {
	return domain.Principal{
		ID:          c.UserID,
		Email:       c.Email,
		DisplayName: c.DisplayName,
	}
}

// TokenIssuer mints and verifies HS256 bearer tokens signed with a
// server-held secret.
type TokenIssuer struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

const defaultAccessTokenTTL = 24 * time.Hour

// NewTokenIssuer constructs a TokenIssuer. The secret is required; a
// non-positive ttl falls back to the default.
func NewTokenIssuer(secret, issuer string, ttl time.Duration) (*TokenIssuer, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, fmt.Errorf("jwt: signing secret is required")
	}
	if ttl <= 0 {
		ttl = defaultAccessTokenTTL
	}
	return &TokenIssuer{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
	}, nil
}

// Issue signs a bearer token for the provided principal.
func (i *TokenIssuer) Issue(principal domain.Principal) (string, error) {
	now := time.Now().UTC()

	claims := &AccessTokenClaims{
		UserID:      principal.ID,
		Email:       principal.Email,
		DisplayName: principal.DisplayName,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    i.issuer,
			Subject:   fmt.Sprintf("%d", principal.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("jwt: sign token: %w", err)
	}

	return signed, nil
}

// Authenticate verifies a bearer token and returns its claims. An empty
// token yields ErrMissingToken; any structural or signature failure yields
// ErrInvalidToken without distinguishing the cause.
func (i *TokenIssuer) Authenticate(token string) (*AccessTokenClaims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrMissingToken
	}

	claims := &AccessTokenClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return i.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
