package middleware

import (
	"log/slog"
	"strconv"

	"repo-browser/fetch"
	"repo-browser/models"
	"repo-browser/session"

	"github.com/gofiber/fiber/v2"
)

// CurrentSession resolves the session cookie, if any, and stores the session
// in Locals. Stale cookies are cleared. It never rejects a request.
func CurrentSession(sessionStore *session.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sessionID := c.Cookies(fetch.SessionCookie)
		if sessionID == "" {
			return c.Next()
		}

		sess, err := sessionStore.Get(sessionID)
		if err != nil {
			slog.Warn("session lookup failed", "error", err)
			return c.Next()
		}
		if sess == nil {
			c.ClearCookie(fetch.SessionCookie)
			return c.Next()
		}

		c.Locals("session", sess)
		c.Locals("userID", strconv.FormatInt(sess.UserID, 10))
		return c.Next()
	}
}

// AuthRequired rejects API requests without a signed-in session
func AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if GetSession(c) == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Not signed in",
			})
		}
		return c.Next()
	}
}

func GetSession(c *fiber.Ctx) *models.Session {
	sess, ok := c.Locals("session").(*models.Session)
	if !ok {
		return nil
	}
	return sess
}

// GetSessionID returns the id of a valid session, or "" when signed out
func GetSessionID(c *fiber.Ctx) string {
	if sess := GetSession(c); sess != nil {
		return sess.ID
	}
	return ""
}
