// Package auth issues and verifies session tokens, hashes credentials and
// evaluates role predicates.
package auth

import (
	"errors"
	"fmt"
	"time"

	"project-tracker/internal/entities"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the signed token payload.
type Claims struct {
	ID          string        `json:"id"`
	Role        entities.Role `json:"role"`
	EmailDomain string        `json:"email_domain"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies HS256 session tokens.
type TokenIssuer struct {
	secret []byte
	now    func() time.Time
}

// NewTokenIssuer returns an issuer keyed by secret.
func NewTokenIssuer(secret string) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), now: time.Now}
}

// Issue signs a token for id valid for ttl.
func (t *TokenIssuer) Issue(id entities.Identity, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		return "", errors.New("token ttl must be positive")
	}
	now := t.now()
	claims := Claims{
		ID:          id.ID,
		Role:        id.Role,
		EmailDomain: id.EmailDomain,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks signature and expiry and returns the decoded identity.
func (t *TokenIssuer) Verify(token string) (entities.Identity, error) {
	if token == "" {
		return entities.Identity{}, entities.ErrMissingToken
	}

	var claims Claims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(tok *jwt.Token) (interface{}, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return t.secret, nil
	}, jwt.WithExpirationRequired(), jwt.WithTimeFunc(t.now))
	if err != nil || !parsed.Valid {
		return entities.Identity{}, entities.ErrInvalidToken
	}
	if claims.ID == "" || !claims.Role.Valid() {
		return entities.Identity{}, entities.ErrInvalidToken
	}

	return entities.Identity{ID: claims.ID, Role: claims.Role, EmailDomain: claims.EmailDomain}, nil
}
