package auth

import (
	"context"
	"strings"

	"github.com/clonos/dashboard-backend/model"
	"github.com/gofiber/fiber/v2"
)

// tokenFromRequest reads the session token from the cookie, then the
// Authorization header.
func tokenFromRequest(c *fiber.Ctx) string {
	if token := c.Cookies(CookieName); token != "" {
		return token
	}
	header := c.Get(fiber.HeaderAuthorization)
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}

func setUser(c *fiber.Ctx, claims *Claims) {
	c.Locals(LocalAuthenticated, true)
	c.Locals(LocalUser, claims.User())
	c.Locals(LocalUserID, claims.Subject)
}

// RequireAuth middleware validates the session token and blocks guests
func RequireAuth(c *fiber.Ctx) error {
	token := tokenFromRequest(c)
	if token == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"error":   "Authentication required",
		})
	}

	claims, err := ValidateJWT(token)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid or expired session",
		})
	}

	setUser(c, claims)
	return c.Next()
}

// OptionalAuth identifies the user if a token is present but does not block guests.
func OptionalAuth(c *fiber.Ctx) error {
	c.Locals(LocalAuthenticated, false)

	token := tokenFromRequest(c)
	if token == "" {
		return c.Next()
	}

	// Invalid or expired tokens are treated as guest access
	if claims, err := ValidateJWT(token); err == nil {
		setUser(c, claims)
	}
	return c.Next()
}

// CurrentUser returns the authenticated user, if any.
func CurrentUser(c *fiber.Ctx) (model.User, bool) {
	user, ok := c.Locals(LocalUser).(model.User)
	return user, ok
}

// UserID returns the authenticated user's ID, or "" for guests.
func UserID(c *fiber.Ctx) string {
	id, _ := c.Locals(LocalUserID).(string)
	return id
}

// WithUser copies the authenticated user ID from the request into ctx.
func WithUser(ctx context.Context, c *fiber.Ctx) context.Context {
	if id := UserID(c); id != "" {
		return context.WithValue(ctx, UserKey, id)
	}
	return ctx
}

// UserIDFromContext returns the user ID stored by WithUser, or "".
func UserIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(UserKey).(string)
	return id
}
