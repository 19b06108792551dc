package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/nutricart/nutricart-api/internal/utils"
)

// UserIDKey is the fiber locals key carrying the authenticated user id.
const UserIDKey = "userID"

// Auth validates the Authorization bearer token and stores the token's
// user id in request locals. Token issuance lives in the auth frontend;
// this service only verifies.
func Auth(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			return utils.ErrorResponse(c, "Missing bearer token", fiber.StatusUnauthorized, "auth")
		}
		tokenString := strings.TrimPrefix(header, "Bearer ")

		claims := jwt.MapClaims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			return utils.ErrorResponse(c, "Invalid or expired token", fiber.StatusUnauthorized, "auth")
		}

		userID, ok := claims["user_id"].(float64)
		if !ok || userID <= 0 {
			return utils.ErrorResponse(c, "Token missing user id", fiber.StatusUnauthorized, "auth")
		}

		c.Locals(UserIDKey, uint64(userID))
		return c.Next()
	}
}

// UserID reads the authenticated user id set by Auth.
func UserID(c *fiber.Ctx) uint64 {
	if id, ok := c.Locals(UserIDKey).(uint64); ok {
		return id
	}
	return 0
}
