package handlers

import (
	"context"
	"errors"

	"repo-browser/app"
	"repo-browser/models"
	"repo-browser/services"

	"github.com/gofiber/fiber/v2"
)

// SearchRepositories serves GET /api/repositories?q=
func SearchRepositories(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req models.SearchRequest
		if err := c.QueryParser(&req); err != nil {
			return badRequest(c, "Invalid query parameters")
		}

		if err := a.Validator.Validate(&req); err != nil {
			return validationError(c, err)
		}

		ctx, cancel := fetchContext(c, a)
		defer cancel()

		items, err := a.RepositoryService.Search(ctx, req.Query)
		if err != nil {
			return repositoryError(c, "Failed to search repositories", err)
		}

		return c.JSON(models.SearchResult{Items: items})
	}
}

// GetRepository serves GET /api/repositories/:owner/:name
func GetRepository(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		owner := c.Params("owner")
		name := c.Params("name")
		if owner == "" || name == "" {
			return badRequest(c, "owner and name are required")
		}

		ctx, cancel := fetchContext(c, a)
		defer cancel()

		repo, err := a.RepositoryService.Get(ctx, owner, name)
		if err != nil {
			return repositoryError(c, "Failed to read repository", err)
		}

		return c.JSON(repo)
	}
}

func repositoryError(c *fiber.Ctx, message string, err error) error {
	switch {
	case errors.Is(err, services.ErrInvalidQuery):
		return badRequest(c, "Invalid search query")
	case errors.Is(err, services.ErrRepositoryNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Repository not found"})
	case errors.Is(err, services.ErrRateLimited):
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "GitHub rate limit exceeded, try again later"})
	case errors.Is(err, services.ErrUpstreamTimeout), errors.Is(err, context.DeadlineExceeded):
		return c.Status(fiber.StatusGatewayTimeout).JSON(fiber.Map{"error": "GitHub did not answer in time"})
	default:
		return serverErrorWithDetails(c, message, err)
	}
}
