package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token decode failures. The authorization gate collapses all of these into
// shared.ErrUnauthenticated before they reach a caller; they stay distinct here
// for logging and tests.
var (
	ErrTokenExpired   = errors.New("auth: token expired")
	ErrTokenMalformed = errors.New("auth: token malformed")
	ErrTokenSignature = errors.New("auth: token signature invalid")
)

// Claims is the payload carried by an access token. The role list is a
// snapshot taken at issuance time and is not refreshed against the ledger.
type Claims struct {
	Roles []string `json:"roles"`
	jwt.RegisteredClaims
}

// Codec signs and verifies stateless bearer tokens. The signing key and
// algorithm are fixed at construction; key rotation is an operational concern
// outside this process.
type Codec struct {
	secret     []byte
	method     jwt.SigningMethod
	defaultTTL time.Duration
	now        func() time.Time
}

// NewCodec builds a Codec for an HMAC signing algorithm such as HS256.
func NewCodec(secret, algorithm string, defaultTTL time.Duration) (*Codec, error) {
	method := jwt.GetSigningMethod(algorithm)
	if method == nil {
		return nil, fmt.Errorf("auth: unknown signing algorithm %q", algorithm)
	}
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("auth: signing algorithm %q is not HMAC based", algorithm)
	}
	if defaultTTL <= 0 {
		defaultTTL = 30 * time.Minute
	}
	return &Codec{
		secret:     []byte(secret),
		method:     method,
		defaultTTL: defaultTTL,
		now:        time.Now,
	}, nil
}

// Encode issues a signed token for subject with a role snapshot and absolute
// expiry of now+ttl. A non-positive ttl falls back to the configured default.
func (c *Codec) Encode(subject string, roles []string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	now := c.now()
	claims := Claims{
		Roles: append([]string(nil), roles...),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(c.method, claims).SignedString(c.secret)
}

// Decode verifies a token and returns its claims. The result is a pure
// function of the token bytes, the signing key and the current time.
func (c *Codec) Decode(raw string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{c.method.Alg()}),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrTokenSignature
		default:
			return nil, ErrTokenMalformed
		}
	}
	if claims.Subject == "" {
		return nil, ErrTokenMalformed
	}
	return claims, nil
}

// DefaultTTL exposes the configured token lifetime.
func (c *Codec) DefaultTTL() time.Duration {
	return c.defaultTTL
}
