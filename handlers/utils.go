package handlers

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"repo-browser/app"
	"repo-browser/fetch"
	"repo-browser/models"
	"repo-browser/validator"

	"github.com/a-h/templ"
	"github.com/gofiber/fiber/v2"
)

func success(c *fiber.Ctx, data fiber.Map) error {
	return c.JSON(data)
}

func created(c *fiber.Ctx, data fiber.Map) error {
	return c.Status(fiber.StatusCreated).JSON(data)
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": message})
}

func validationError(c *fiber.Ctx, err error) error {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":  validationErrs.Error(),
			"fields": validationErrs,
		})
	}
	return badRequest(c, err.Error())
}

func serverErrorWithDetails(c *fiber.Ctx, message string, err error) error {
	requestID := ""
	if id, ok := c.Locals("requestID").(string); ok {
		requestID = id
	}

	slog.Error("server error",
		"request_id", requestID,
		"method", c.Method(),
		"path", c.Path(),
		"message", message,
		"error", err,
	)

	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": message})
}

// render writes a templ component as the HTML response
func render(c *fiber.Ctx, status int, component templ.Component) error {
	c.Status(status)
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return component.Render(c.UserContext(), c.Response().BodyWriter())
}

// fetchContext bounds the reads of one request. Cancel it when the
// request is done so reads still in flight are aborted.
func fetchContext(c *fiber.Ctx, a *app.App) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.UserContext(), a.Options.FetchTimeout)
}

// loadUser reads the current user for the page header. It must not touch the
// fiber.Ctx, since pages call it from errgroup goroutines. A failed read is
// logged and rendered like signed out.
func loadUser(ctx context.Context, a *app.App, sessionID string) fetch.Result[*models.User] {
	user := fetch.Load(ctx, func(ctx context.Context) (*models.User, error) {
		return a.Fetcher.CurrentUser(ctx, sessionID)
	})
	if user.State == fetch.Error {
		a.Logger.Warn("current user read failed", "error", user.Err)
	}
	return user
}

func setSessionCookie(c *fiber.Ctx, a *app.App, sessionID string, expires time.Time) {
	c.Cookie(&fiber.Cookie{
		Name:     fetch.SessionCookie,
		Value:    sessionID,
		Expires:  expires,
		HTTPOnly: true,
		Secure:   a.Options.SecureCookies,
		SameSite: "Lax",
		Path:     "/",
	})
}

func clearSessionCookie(c *fiber.Ctx) {
	c.ClearCookie(fetch.SessionCookie)
}
