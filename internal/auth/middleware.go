package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// Gate validates bearer tokens and stores user_id in locals. A request
// without a token is rejected before any verification happens.
func Gate(codec *Codec) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerFromHeader(c.Get("Authorization"))
		if token == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "no token supplied")
		}

		identity, err := codec.Verify(token)
		if err != nil {
			if errors.Is(err, ErrTokenExpired) {
				return fiber.NewError(fiber.StatusUnauthorized, "token expired")
			}
			return fiber.NewError(fiber.StatusUnauthorized, "token invalid")
		}

		c.Locals("user_id", identity.UserID)
		return c.Next()
	}
}

// UserID returns the authenticated user id that Gate stored in locals.
func UserID(c *fiber.Ctx) string {
	id, _ := c.Locals("user_id").(string)
	return id
}

func bearerFromHeader(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
