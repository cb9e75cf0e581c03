package middleware

import (
	"log/slog"

	"github.com/gofiber/fiber/v3"

	"github.com/medibook/medibook_backend/pkg/redis"
	"github.com/medibook/medibook_backend/pkg/reqctx"
	"github.com/medibook/medibook_backend/pkg/token"
)

// AuthRequired validates the bearer access token and checks its session.
// On success the claims are stored in c.Locals(token.CtxKeyClaims) and on the
// request context for services.
func AuthRequired(mgr *token.Manager, sessions redis.SessionStore) fiber.Handler {
	return func(c fiber.Ctx) error {
		raw := token.BearerFromFiber(c)
		if raw == "" {
			return fiber.ErrUnauthorized
		}

		claims, err := mgr.Verify(raw)
		if err != nil {
			return fiber.ErrUnauthorized
		}

		// a logged-out session invalidates its token before expiry
		if claims.SessionID != nil {
			alive, err := sessions.Exists(c.Context(), *claims.SessionID)
			if err != nil {
				slog.Warn("session lookup failed", "session_id", claims.SessionID, "error", err)
				return fiber.ErrUnauthorized
			}
			if !alive {
				return fiber.ErrUnauthorized
			}
		}

		c.Locals(token.CtxKeyClaims, claims)
		c.SetContext(reqctx.WithClaims(c.Context(), claims))
		return c.Next()
	}
}
