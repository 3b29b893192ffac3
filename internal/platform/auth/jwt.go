// Package auth issues and verifies the session tokens carried in the
// "token" cookie.
package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// CookieName is the cookie holding the signed token.
const CookieName = "token"

// DefaultTTL matches the 365 day browser session.
const DefaultTTL = 365 * 24 * time.Hour

var (
	ErrMissingSecret = errors.New("token signing secret is empty")
	ErrMissingEmail  = errors.New("token subject email is required")
	ErrInvalidToken  = errors.New("invalid token")
)

// Claims holds the typed JWT payload. ID (jti) identifies the token for
// revocation on logout.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Issuer signs and verifies HS256 tokens.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewIssuer(secret string, ttl time.Duration) (*Issuer, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, ErrMissingSecret
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Issuer{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// Issue signs a token for email.
func (i *Issuer) Issue(email string) (string, *Claims, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return "", nil, ErrMissingEmail
	}
	now := i.now()
	claims := &Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}
	return signed, claims, nil
}

// Parse validates signature, algorithm and expiry.
func (i *Issuer) Parse(raw string) (*Claims, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, ErrInvalidToken
	}
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !token.Valid || claims.Email == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// CookiePolicy decides the cookie attributes per environment: cross-site in
// production (Secure, SameSite=None), strict same-site otherwise.
type CookiePolicy struct {
	Production bool
	MaxAge     time.Duration
}

// SameSite returns the SameSite mode for the environment.
func (p CookiePolicy) SameSite() http.SameSite {
	if p.Production {
		return http.SameSiteNoneMode
	}
	return http.SameSiteStrictMode
}

// Secure reports whether the cookie is restricted to HTTPS.
func (p CookiePolicy) Secure() bool { return p.Production }

// MaxAgeSeconds is the cookie Max-Age attribute.
func (p CookiePolicy) MaxAgeSeconds() int {
	if p.MaxAge <= 0 {
		return int(DefaultTTL.Seconds())
	}
	return int(p.MaxAge.Seconds())
}
