package setup

import (
	"time"

	"repo-browser/app"
	"repo-browser/handlers"
	"repo-browser/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// RegisterRoutes registers all application routes
func RegisterRoutes(fiberApp *fiber.App, application *app.App) {

	fiberApp.Static("/static", "./static", fiber.Static{
		Compress: true,
		MaxAge:   86400,
	})
	fiberApp.Get("/health", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"status": "ok"}) })

	// Pages
	fiberApp.Get("/", handlers.HomePage(application))
	fiberApp.Get("/repositories/*", handlers.RepositoryPage(application))
	fiberApp.Get("/signin", handlers.SignInPage(application))
	fiberApp.Post("/signin", handlers.SignInSubmit(application))
	fiberApp.Get("/signup", handlers.SignUpPage(application))
	fiberApp.Post("/signup", handlers.SignUpSubmit(application))
	fiberApp.Get("/signout", handlers.SignOut(application))

	// JSON API
	api := fiberApp.Group("/api")
	api.Get("/user", handlers.CurrentUser(application))
	api.Get("/repositories", handlers.SearchRepositories(application))
	api.Get("/repositories/:owner/:name", handlers.GetRepository(application))

	// Credential endpoints get a tighter per-IP limit
	auth := api.Group("/auth", limiter.New(limiter.Config{
		Max:        20,
		Expiration: time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return "auth:" + c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many sign-in attempts, try again later",
			})
		},
	}))
	auth.Post("/signup", handlers.APISignUp(application))
	auth.Post("/signin", handlers.APISignIn(application))
	auth.Post("/signout", middleware.AuthRequired(), handlers.APISignOut(application))

	api.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Not found"})
	})
	fiberApp.Use(handlers.NotFoundPage(application))
}
