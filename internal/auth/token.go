// Package auth verifies bearer tokens minted by the external auth provider and
// extracts the caller identity. It never authenticates users itself.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/nagarrakshak/caseledger/internal/access"
	"github.com/nagarrakshak/caseledger/internal/errs"
	"github.com/nagarrakshak/caseledger/internal/model"
)

// Claims is the token payload shared with the auth provider.
type Claims struct {
	jwt.RegisteredClaims
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Verifier checks HS256 tokens with a shared key.
type Verifier struct {
	key    []byte
	leeway time.Duration
}

// NewVerifier constructs a verifier for the given signing key.
func NewVerifier(key []byte) *Verifier {
	return &Verifier{key: key, leeway: 30 * time.Second}
}

// Verify parses and validates a token and returns the identity it carries.
func (v *Verifier) Verify(token string) (model.Identity, error) {
	var claims Claims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return v.key, nil
	}, jwt.WithLeeway(v.leeway), jwt.WithExpirationRequired())
	if err != nil || !parsed.Valid {
		return model.Identity{}, fmt.Errorf("%w: invalid token", errs.ErrUnauthorized)
	}
	return identityOf(claims.Subject, claims.Name, claims.Email, claims.Role)
}

// IdentityFromMap converts already-verified map claims (as left by fiber's jwt middleware).
func IdentityFromMap(m jwt.MapClaims) (model.Identity, error) {
	str := func(k string) string { s, _ := m[k].(string); return s }
	return identityOf(str("sub"), str("name"), str("email"), str("role"))
}

func identityOf(sub, name, email, role string) (model.Identity, error) {
	if strings.TrimSpace(sub) == "" {
		return model.Identity{}, fmt.Errorf("%w: missing subject", errs.ErrUnauthorized)
	}
	r, ok := access.ParseRole(role)
	if !ok {
		return model.Identity{}, fmt.Errorf("%w: unknown role %q", errs.ErrUnauthorized, role)
	}
	return model.Identity{Subject: sub, Name: name, Email: email, Role: r}, nil
}

// Issue signs a token for id. The service uses it only in development tooling and tests.
func Issue(key []byte, id model.Identity, ttl time.Duration, now time.Time) (string, error) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.Subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Name:  id.Name,
		Email: id.Email,
		Role:  string(id.Role),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
}

// BearerToken extracts the token from an "Authorization: Bearer <t>" value.
func BearerToken(header string) (string, error) {
	v := strings.TrimSpace(header)
	if len(v) >= 7 && strings.EqualFold(v[:7], "bearer ") {
		if t := strings.TrimSpace(v[7:]); t != "" {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: no bearer token", errs.ErrUnauthorized)
}
