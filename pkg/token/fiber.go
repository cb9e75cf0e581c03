package token

import (
	"strings"

	"github.com/gofiber/fiber/v3"
)

const CtxKeyClaims = "auth.claims"

// BearerFromFiber reads the Authorization header. The WebSocket endpoint
// falls back to the token query parameter since browsers cannot set headers
// on upgrade requests.
func BearerFromFiber(c fiber.Ctx) string {
	h := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
	if h != "" {
		parts := strings.SplitN(h, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	return strings.TrimSpace(c.Query("token"))
}

func ClaimsFromFiber(c fiber.Ctx) (*Claims, bool) {
	v := c.Locals(CtxKeyClaims)
	cl, ok := v.(*Claims)
	return cl, ok && cl != nil
}
