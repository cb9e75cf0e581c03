package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/medibook/medibook_backend/pkg/authorize"
)

// RequirePermission checks the caller's role against the casbin policy.
// It must run after AuthRequired.
func RequirePermission(auth authorize.IAuthorization, resource authorize.Resource, action authorize.Action) fiber.Handler {
	return func(c fiber.Ctx) error {
		actor, err := authorize.ActorFromContext(c.Context())
		if err != nil {
			return fiber.ErrUnauthorized
		}

		if err := auth.MustEnforce(c.Context(), actor.Role, resource, action); err != nil {
			if errors.Is(err, authorize.ErrForbidden) || errors.Is(err, authorize.ErrInvalidArgs) {
				return fiber.ErrForbidden
			}
			return err
		}

		return c.Next()
	}
}
