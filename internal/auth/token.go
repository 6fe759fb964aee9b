package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrTokenInvalid = errors.New("token invalid")
	ErrTokenExpired = errors.New("token expired")
)

// Identity is the authenticated user extracted from a verified token.
// It lives for a single request.
type Identity struct {
	UserID string
}

type Claims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// Codec signs and verifies identity tokens. The secret is loaded once
// at startup and never mutated afterwards.
type Codec struct {
	secret []byte
	ttl    time.Duration
}

func NewCodec(secret string, ttl time.Duration) *Codec {
	return &Codec{secret: []byte(secret), ttl: ttl}
}

func (c *Codec) Issue(userID string) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(c.secret)
}

// Verify checks signature and expiry. Callers can tell an expired token
// from a malformed one via ErrTokenExpired / ErrTokenInvalid.
func (c *Codec) Verify(token string) (Identity, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(_ *jwt.Token) (interface{}, error) {
		return c.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Identity{}, ErrTokenExpired
		}
		return Identity{}, ErrTokenInvalid
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.UserID == "" {
		return Identity{}, ErrTokenInvalid
	}
	return Identity{UserID: claims.UserID}, nil
}

// TTL is the lifetime issued tokens carry.
func (c *Codec) TTL() time.Duration {
	return c.ttl
}
