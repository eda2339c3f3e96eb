package auth

import (
	"errors"

	fiber "github.com/gofiber/fiber/v2"

	"github.com/celestiaorg/quill/internal/types"
)

// CronSecretHeader is the header internal schedulers present the shared secret in
const CronSecretHeader = "X-Cron-Secret"

const principalKey = "principal"

// Required rejects requests without a valid principal and stores the
// principal in the request locals
func (a *Authenticator) Required() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := a.Resolve(c.Get(fiber.HeaderAuthorization), c.Get(CronSecretHeader))
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(types.ErrUnauthorized(err.Error()))
		}
		c.Locals(principalKey, p)
		return c.Next()
	}
}

// CronOnly accepts only callers presenting the cron secret
func (a *Authenticator) CronOnly() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := a.Resolve(c.Get(fiber.HeaderAuthorization), c.Get(CronSecretHeader))
		if err == nil && !p.Internal {
			err = errors.New("cron secret required")
		}
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(types.ErrUnauthorized(err.Error()))
		}
		c.Locals(principalKey, p)
		return c.Next()
	}
}

// PrincipalFrom returns the principal stored by the middlewares, or nil
func PrincipalFrom(c *fiber.Ctx) *Principal {
	p, _ := c.Locals(principalKey).(*Principal)
	return p
}
