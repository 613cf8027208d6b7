package setup

import (
	"log/slog"
	"strings"
	"time"

	"repo-browser/config"
	"repo-browser/middleware"
	"repo-browser/session"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// ApplyMiddleware applies all global middleware to the Fiber app
func ApplyMiddleware(app *fiber.App, sessionStore *session.Store, logger *slog.Logger) {
	app.Use(
		recover.New(),
		middleware.StructuredLogger(logger),
		middleware.Security(config.AppConfig.Env == "production"),
		cors.New(cors.Config{
			AllowOrigins:     config.GetEnv("CORS_ORIGINS", "*"),
			AllowMethods:     "GET,POST,OPTIONS",
			AllowHeaders:     "Origin,Content-Type,Accept",
			AllowCredentials: false,
			MaxAge:           86400,
		}),
		limiter.New(limiter.Config{
			Max:        200,
			Expiration: time.Minute,
			Next:       isLoopbackAPIRead,
			KeyGenerator: func(c *fiber.Ctx) string {
				return c.IP()
			},
			LimitReached: func(c *fiber.Ctx) error {
				return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
					"error": "Rate limit exceeded",
				})
			},
		}),
		middleware.CurrentSession(sessionStore),
	)
}

// isLoopbackAPIRead matches the reads pages make against our own API. Those
// were already counted on the page request.
func isLoopbackAPIRead(c *fiber.Ctx) bool {
	return c.IsFromLocal() &&
		c.Method() == fiber.MethodGet &&
		strings.HasPrefix(c.Path(), "/api/")
}
