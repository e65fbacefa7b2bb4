package httpserver

import (
	"fmt"

	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/nagarrakshak/caseledger/internal/access"
	"github.com/nagarrakshak/caseledger/internal/auth"
	"github.com/nagarrakshak/caseledger/internal/errs"
)

const principalKey = "principal"

// jwtProtected verifies the bearer token and stores the caller's Principal in locals.
func (h *handlers) jwtProtected() fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey: jwtware.SigningKey{JWTAlg: jwtware.HS256, Key: h.JWTKey},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return fmt.Errorf("%w: invalid or expired token", errs.ErrUnauthorized)
		},
	})
}

func (h *handlers) loadPrincipal(c *fiber.Ctx) error {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok || token == nil {
		return errs.ErrUnauthorized
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return fmt.Errorf("%w: invalid claims", errs.ErrUnauthorized)
	}
	if exp, err := claims.GetExpirationTime(); err != nil || exp == nil {
		return fmt.Errorf("%w: token has no expiry", errs.ErrUnauthorized)
	}
	id, err := auth.IdentityFromMap(claims)
	if err != nil {
		return err
	}
	c.Locals(principalKey, access.NewPrincipal(id))
	return c.Next()
}

func principal(c *fiber.Ctx) access.Principal {
	p, _ := c.Locals(principalKey).(access.Principal)
	return p
}

// requireCap rejects callers lacking the capability.
func requireCap(cp access.Capability) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !principal(c).Can(cp) {
			return errs.ErrForbidden
		}
		return c.Next()
	}
}

func bearer(c *fiber.Ctx) (string, error) {
	return auth.BearerToken(c.Get(fiber.HeaderAuthorization))
}
