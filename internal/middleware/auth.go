package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/myportfolios/task-app/internal/auth"
	"github.com/myportfolios/task-app/internal/repository"
	"github.com/myportfolios/task-app/pkg/logger"
)

// Locals keys set by RequireAuth for downstream handlers.
const (
	LocalUser  = "user"
	LocalToken = "token"
)

// RequireAuth verifies the bearer token and resolves its user. Every failure
// mode answers the same 401 body so clients cannot tell a forged token from
// a revoked one.
func RequireAuth(store *repository.Store, secret []byte) fiber.Handler {
	unauthenticated := func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Please authenticate.",
		})
	}

	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			logger.SecurityLogger.Warn("Missing or malformed Authorization header",
				zap.String("url", c.OriginalURL()))
			return unauthenticated(c)
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		userID, err := auth.ParseToken(tokenString, secret)
		if err != nil {
			logger.SecurityLogger.Warn("Invalid token", zap.Error(err))
			return unauthenticated(c)
		}

		// A cryptographically valid token is still rejected once it has
		// been removed from the user's session list
		user, err := store.GetUserByIDAndToken(userID, tokenString)
		if err != nil {
			logger.SecurityLogger.Warn("Token not recognized", zap.Int("user_id", userID))
			return unauthenticated(c)
		}

		c.Locals(LocalUser, user)
		c.Locals(LocalToken, tokenString)
		return c.Next()
	}
}
