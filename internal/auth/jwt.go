package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	issuer = "artfolio"

	// adminSubject is the only subject this service ever issues. There is
	// one admin, so the token carries no per-user identity.
	adminSubject = "admin"

	// sessionLifetime is generous because this is a personal catalog:
	// re-typing the password daily would be all cost and no benefit.
	sessionLifetime = 24 * time.Hour
)

// TokenService issues and validates admin session tokens.
//
// HS256 with a shared secret: the same server signs and verifies, so a
// symmetric key is the simplest thing that works.
type TokenService struct {
	secret []byte
}

// NewTokenService creates a TokenService with the given secret.
// The secret should be at least 32 bytes of random data in production,
// e.g. `openssl rand -hex 32`.
func NewTokenService(secret string) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	return &TokenService{secret: []byte(secret)}, nil
}

type claims struct {
	jwt.RegisteredClaims
}

// Generate creates and signs a new admin session token.
func (s *TokenService) Generate() (string, error) {
	return s.GenerateWithDuration(sessionLifetime)
}

// GenerateWithDuration creates a token with a custom expiry. Used in
// tests to mint already-expired tokens.
func (s *TokenService) GenerateWithDuration(d time.Duration) (string, error) {
	now := time.Now()

	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   adminSubject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(d)),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}

	return signed, nil
}

// Validate parses and verifies a token string.
//
// The jwt library checks signature, expiry and issuer; restricting valid
// methods to HS256 blocks algorithm-confusion tokens. On top of that we
// require the admin subject.
func (s *TokenService) Validate(tokenStr string) error {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return fmt.Errorf("auth: token expired")
		}
		return fmt.Errorf("auth: invalid token: %w", err)
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return fmt.Errorf("auth: invalid token claims")
	}
	if c.Subject != adminSubject {
		return fmt.Errorf("auth: unexpected token subject")
	}

	return nil
}
