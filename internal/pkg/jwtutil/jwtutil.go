// Package jwtutil issues and parses the stateless bearer tokens used by the
// API. A token carries the account email as subject, an absolute expiry, and
// a unique id. Nothing is stored server-side, expiry is the only invalidation.
package jwtutil

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"
)

var (
	ErrExpired   = errors.New("token expired")
	ErrMalformed = errors.New("token malformed")
)

type Claims struct {
	jwt.RegisteredClaims
}

// Token is a freshly minted access token.
type Token struct {
	Value     string
	ExpiresAt time.Time
}

type Option func(*Codec)

// WithClock replaces the wall clock used by Issue and Parse.
func WithClock(now func() time.Time) Option {
	return func(c *Codec) {
		c.now = now
	}
}

type Codec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewCodec(secret string, ttl time.Duration, opts ...Option) (*Codec, error) {
	if secret == "" {
		return nil, errors.New("jwt secret is empty")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("jwt ttl must be positive, got %s", ttl)
	}

	c := &Codec{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Codec) TTL() time.Duration {
	return c.ttl
}

func (c *Codec) Issue(subject string) (Token, error) {
	return c.IssueAt(subject, c.now(), c.ttl)
}

// IssueAt signs a token for subject that expires at now+ttl.
func (c *Codec) IssueAt(subject string, now time.Time, ttl time.Duration) (Token, error) {
	if strings.TrimSpace(subject) == "" {
		return Token{}, errors.New("token subject is empty")
	}

	expiresAt := now.Add(ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        ulid.Make().String(),
		},
	})

	signed, err := token.SignedString(c.secret)
	if err != nil {
		return Token{}, fmt.Errorf("sign token failed: %w", err)
	}
	return Token{Value: signed, ExpiresAt: expiresAt.Truncate(time.Second)}, nil
}

func (c *Codec) Parse(tokenString string) (*Claims, error) {
	return c.ParseAt(tokenString, c.now())
}

// ParseAt verifies the signature, then the expiry against now. A token whose
// signature does not check out is ErrMalformed even if it is also expired.
func (c *Codec) ParseAt(tokenString string, now time.Time) (*Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)

	claims := &Claims{}
	token, err := parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return c.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if !token.Valid || claims.Subject == "" {
		return nil, ErrMalformed
	}
	return claims, nil
}
