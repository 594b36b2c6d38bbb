// Package auth provides the stateless token service and the password
// credential store. Both are plain structs constructed in main and passed to
// whatever needs them; there is no package-level state.
package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenService issues and validates signed, time-limited identity tokens.
// Tokens are HMAC-signed JWTs carrying a subject (the username) and an
// absolute expiry. They are never persisted and never revoked server-side;
// rotating the secret invalidates every outstanding token at once.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	method jwt.SigningMethod
}

// NewTokenService returns a TokenService signing with HMAC-SHA256.
// The secret and default TTL come from configuration.
func NewTokenService(secret string, ttl time.Duration) *TokenService {
	return &TokenService{
		secret: []byte(secret),
		ttl:    ttl,
		method: jwt.SigningMethodHS256,
	}
}

// Issue produces a signed token for subject that expires after the service's
// default TTL.
func (s *TokenService) Issue(subject string) (string, error) {
	return s.IssueWithTTL(subject, s.ttl)
}

// IssueWithTTL produces a signed token for subject with expiry now + ttl.
func (s *TokenService) IssueWithTTL(subject string, ttl time.Duration) (string, error) {
	now := time.Now()

	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}

	token := jwt.NewWithClaims(s.method, claims)
	return token.SignedString(s.secret)
}

// Validate verifies the token's signature and expiry and returns its subject.
// It never returns an error: a malformed token, a signature produced with a
// different secret or algorithm, a missing subject claim, or an expired token
// all report ok == false. Callers treat that as "anonymous", not as a failure.
func (s *TokenService) Validate(tokenString string) (subject string, ok bool) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{},
		func(token *jwt.Token) (any, error) {
			if token.Method.Alg() != s.method.Alg() {
				return nil, jwt.ErrSignatureInvalid
			}
			return s.secret, nil
		})
	if err != nil || !token.Valid {
		return "", false
	}

	claims, okClaims := token.Claims.(*jwt.RegisteredClaims)
	if !okClaims || claims.Subject == "" {
		return "", false
	}

	return claims.Subject, true
}
