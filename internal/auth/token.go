package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for tokens that fail signature or claim checks.
var ErrInvalidToken = errors.New("invalid token")

// Claims carried in an identity token.
type Claims struct {
	jwt.RegisteredClaims
}

// Tokens issues and verifies HS256 identity tokens.
type Tokens struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

func NewTokens(secret, issuer string, ttl time.Duration) *Tokens {
	return &Tokens{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
	}
}

// Enabled is false when no secret is configured; every caller is then a guest.
func (t *Tokens) Enabled() bool {
	return len(t.secret) > 0
}

// Issue signs a token for principal.
func (t *Tokens) Issue(principal string) (string, error) {
	if !t.Enabled() {
		return "", errors.New("auth secret not configured")
	}
	if principal == "" {
		return "", errors.New("principal is required")
	}
	now := t.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   principal,
			Issuer:    t.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	if t.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(t.ttl))
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

// Verify parses raw and returns the identity it names.
func (t *Tokens) Verify(raw string) (Identity, error) {
	if !t.Enabled() {
		return Guest, fmt.Errorf("%w: auth disabled", ErrInvalidToken)
	}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(t.now),
	}
	if t.issuer != "" {
		opts = append(opts, jwt.WithIssuer(t.issuer))
	}
	token, err := jwt.ParseWithClaims(raw, &Claims{}, func(*jwt.Token) (interface{}, error) {
		return t.secret, nil
	}, opts...)
	if err != nil {
		return Guest, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject == "" {
		return Guest, ErrInvalidToken
	}
	return Identity{Principal: claims.Subject}, nil
}
