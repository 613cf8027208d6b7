package handlers

import (
	"errors"

	"repo-browser/app"
	"repo-browser/fetch"
	"repo-browser/middleware"
	"repo-browser/models"
	"repo-browser/services"
	"repo-browser/templates/pages"

	"github.com/a-h/templ"
	"github.com/gofiber/fiber/v2"
)

// ==================== UI ====================

// SignInPage renders the sign-in form
func SignInPage(a *app.App) fiber.Handler {
	return authPage(a, pages.SignIn)
}

// SignUpPage renders the sign-up form
func SignUpPage(a *app.App) fiber.Handler {
	return authPage(a, pages.SignUp)
}

type authPageFunc func(user fetch.Result[*models.User], form pages.AuthForm) templ.Component

func authPage(a *app.App, page authPageFunc) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := fetchContext(c, a)
		defer cancel()

		return render(c, fiber.StatusOK, page(loadUser(ctx, a, middleware.GetSessionID(c)), pages.AuthForm{}))
	}
}

// SignInSubmit handles the sign-in form post
func SignInSubmit(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req models.SignInRequest
		if err := c.BodyParser(&req); err != nil {
			return rerenderAuthForm(c, a, pages.SignIn, fiber.StatusBadRequest, req.Email, "Invalid form submission")
		}

		if err := a.Validator.Validate(&req); err != nil {
			return rerenderAuthForm(c, a, pages.SignIn, fiber.StatusBadRequest, req.Email, err.Error())
		}

		result, err := a.AuthService.SignIn(req.Email, req.Password)
		if err != nil {
			if errors.Is(err, services.ErrInvalidCredentials) {
				return rerenderAuthForm(c, a, pages.SignIn, fiber.StatusUnauthorized, req.Email, "Invalid email or password")
			}
			a.Logger.Error("sign in failed", "error", err)
			return rerenderAuthForm(c, a, pages.SignIn, fiber.StatusInternalServerError, req.Email, "Something went wrong, please try again")
		}

		setSessionCookie(c, a, result.Session.ID, result.Session.ExpiresAt)
		return c.Redirect("/", fiber.StatusSeeOther)
	}
}

// SignUpSubmit handles the sign-up form post
func SignUpSubmit(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req models.SignUpRequest
		if err := c.BodyParser(&req); err != nil {
			return rerenderAuthForm(c, a, pages.SignUp, fiber.StatusBadRequest, req.Email, "Invalid form submission")
		}

		if err := a.Validator.Validate(&req); err != nil {
			return rerenderAuthForm(c, a, pages.SignUp, fiber.StatusBadRequest, req.Email, err.Error())
		}

		result, err := a.AuthService.SignUp(req.Email, req.Password)
		if err != nil {
			if errors.Is(err, services.ErrEmailTaken) {
				return rerenderAuthForm(c, a, pages.SignUp, fiber.StatusConflict, req.Email, "An account with this email already exists")
			}
			a.Logger.Error("sign up failed", "error", err)
			return rerenderAuthForm(c, a, pages.SignUp, fiber.StatusInternalServerError, req.Email, "Something went wrong, please try again")
		}

		setSessionCookie(c, a, result.Session.ID, result.Session.ExpiresAt)
		return c.Redirect("/", fiber.StatusSeeOther)
	}
}

// SignOut is the target of the Sign Out link
func SignOut(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if sessionID := middleware.GetSessionID(c); sessionID != "" {
			if err := a.AuthService.SignOut(sessionID); err != nil {
				a.Logger.Warn("sign out failed", "error", err)
			}
		}

		clearSessionCookie(c)
		return c.Redirect("/", fiber.StatusSeeOther)
	}
}

func rerenderAuthForm(c *fiber.Ctx, a *app.App, page authPageFunc, status int, email, message string) error {
	ctx, cancel := fetchContext(c, a)
	defer cancel()

	form := pages.AuthForm{Email: email, Error: message}
	return render(c, status, page(loadUser(ctx, a, middleware.GetSessionID(c)), form))
}

// ==================== API ====================

// CurrentUser returns {"user": {...}} or {"user": null}
func CurrentUser(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := a.AuthService.CurrentUser(middleware.GetSessionID(c))
		if err != nil {
			return serverErrorWithDetails(c, "Failed to read current user", err)
		}

		return c.JSON(models.CurrentUserResponse{User: user.Public()})
	}
}

// APISignUp registers a user and sets the session cookie
func APISignUp(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req models.SignUpRequest
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "Invalid request body")
		}

		if err := a.Validator.Validate(&req); err != nil {
			return validationError(c, err)
		}

		result, err := a.AuthService.SignUp(req.Email, req.Password)
		if err != nil {
			if errors.Is(err, services.ErrEmailTaken) {
				return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Email is already registered"})
			}
			return serverErrorWithDetails(c, "Failed to sign up", err)
		}

		setSessionCookie(c, a, result.Session.ID, result.Session.ExpiresAt)
		return created(c, fiber.Map{"user": result.User.Public()})
	}
}

// APISignIn checks credentials and sets the session cookie
func APISignIn(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req models.SignInRequest
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "Invalid request body")
		}

		if err := a.Validator.Validate(&req); err != nil {
			return validationError(c, err)
		}

		result, err := a.AuthService.SignIn(req.Email, req.Password)
		if err != nil {
			if errors.Is(err, services.ErrInvalidCredentials) {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid email or password"})
			}
			return serverErrorWithDetails(c, "Failed to sign in", err)
		}

		setSessionCookie(c, a, result.Session.ID, result.Session.ExpiresAt)
		return success(c, fiber.Map{"user": result.User.Public()})
	}
}

// APISignOut deletes the session. Routed behind AuthRequired.
func APISignOut(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := a.AuthService.SignOut(middleware.GetSessionID(c)); err != nil {
			return serverErrorWithDetails(c, "Failed to sign out", err)
		}

		clearSessionCookie(c)
		return success(c, fiber.Map{"success": true})
	}
}
