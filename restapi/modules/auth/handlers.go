package auth

import (
	"strings"
	"time"

	"github.com/clonos/dashboard-backend/model"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Login accepts any non-empty email and password, issues a session token and
// sets it as a cookie.
func Login(logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req LoginRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"error":   "Invalid request body",
			})
		}

		req.Email = strings.TrimSpace(req.Email)
		if req.Email == "" || req.Password == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"error":   "Email and password are required",
			})
		}

		user := model.NewDemoUser(req.Email)
		token, err := GenerateJWT(user)
		if err != nil {
			logger.Error("Failed to generate token", zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"error":   "Failed to generate token",
			})
		}

		SetAuthCookie(c, token)

		return c.JSON(fiber.Map{
			"success": true,
			"message": "Login successful",
			"token":   token,
			"user":    user,
		})
	}
}

// Logout clears the auth cookie
func Logout() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Cookie(&fiber.Cookie{
			Name:     CookieName,
			Value:    "",
			Expires:  time.Now().Add(-1 * time.Hour),
			MaxAge:   -1,
			HTTPOnly: true,
			Secure:   false,
			SameSite: "Lax",
			Path:     "/",
		})
		return c.JSON(fiber.Map{"success": true, "message": "Logged out successfully"})
	}
}

// Me returns the current user. Mount behind OptionalAuth.
func Me() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := CurrentUser(c)
		if !ok {
			return c.JSON(fiber.Map{"success": true, "authenticated": false})
		}
		return c.JSON(fiber.Map{
			"success":       true,
			"authenticated": true,
			"user":          user,
		})
	}
}

// SetAuthCookie stores the session token in an HTTP-only cookie
func SetAuthCookie(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     CookieName,
		Value:    token,
		HTTPOnly: true,
		Secure:   false,
		SameSite: "Lax",
		MaxAge:   int(GetJWTExpirationTime().Seconds()),
		Path:     "/",
	})
}
