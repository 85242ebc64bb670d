package middleware

import (
	"crypto/subtle"
	"strings"

	"spacegame-combat/internal/service"

	"github.com/gofiber/fiber/v2"
)

const (
	localPlayerID = "player_id"
	localUsername = "username"
)

// Auth requires a Bearer access token and stores the pilot identity in the
// request locals.
func Auth(jwtSecret string) fiber.Handler {
	secret := []byte(jwtSecret)
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(401).JSON(fiber.Map{"error": "missing authorization header"})
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			return c.Status(401).JSON(fiber.Map{"error": "invalid authorization format"})
		}

		playerID, username, err := service.ParseAccessToken(secret, tokenString)
		if err != nil {
			return c.Status(401).JSON(fiber.Map{"error": err.Error()})
		}

		c.Locals(localPlayerID, playerID)
		c.Locals(localUsername, username)
		return c.Next()
	}
}

func PlayerID(c *fiber.Ctx) string {
	id, _ := c.Locals(localPlayerID).(string)
	return id
}

func Username(c *fiber.Ctx) string {
	name, _ := c.Locals(localUsername).(string)
	return name
}

func AdminKey(expectedKey string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := c.Get("X-Admin-Key")
		if key == "" || expectedKey == "" || subtle.ConstantTimeCompare([]byte(key), []byte(expectedKey)) != 1 {
			return c.Status(403).JSON(fiber.Map{"error": "invalid admin key"})
		}
		return c.Next()
	}
}
