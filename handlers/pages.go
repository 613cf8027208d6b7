package handlers

import (
	"context"
	"errors"
	"net/url"

	"repo-browser/app"
	"repo-browser/fetch"
	"repo-browser/middleware"
	"repo-browser/models"
	"repo-browser/templates/pages"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/sync/errgroup"
)

// HomePage runs one search per home language alongside the current user read.
// Every language keeps its own result; sections render in HomeLanguages order.
func HomePage(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := fetchContext(c, a)
		defer cancel()

		sessionID := middleware.GetSessionID(c)
		sections := make([]pages.LanguageSection, len(models.HomeLanguages))
		var user fetch.Result[*models.User]

		g := new(errgroup.Group)
		g.SetLimit(a.Options.FetchConcurrency)

		g.Go(func() error {
			user = loadUser(ctx, a, sessionID)
			return nil
		})
		for i, language := range models.HomeLanguages {
			g.Go(func() error {
				query := models.LanguageQuery(language)
				result := fetch.Load(ctx, func(ctx context.Context) ([]models.Repository, error) {
					return a.Fetcher.SearchRepositories(ctx, query)
				})
				if result.State == fetch.Error {
					a.Logger.Warn("repository search failed", "query", query, "error", result.Err)
				}
				sections[i] = pages.LanguageSection{Language: language, Result: result}
				return nil
			})
		}
		_ = g.Wait()

		return render(c, fiber.StatusOK, pages.Home(user, sections))
	}
}

// RepositoryPage renders /repositories/<owner>/<name>
func RepositoryPage(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := fetchContext(c, a)
		defer cancel()

		fullName, err := url.PathUnescape(c.Params("*"))
		if err != nil {
			fullName = ""
		}

		sessionID := middleware.GetSessionID(c)
		if _, _, ok := models.SplitFullName(fullName); !ok {
			return render(c, fiber.StatusNotFound, pages.NotFound(loadUser(ctx, a, sessionID)))
		}

		var user fetch.Result[*models.User]
		var repo fetch.Result[*models.Repository]

		g := new(errgroup.Group)
		g.Go(func() error {
			user = loadUser(ctx, a, sessionID)
			return nil
		})
		g.Go(func() error {
			repo = fetch.Load(ctx, func(ctx context.Context) (*models.Repository, error) {
				return a.Fetcher.Repository(ctx, fullName)
			})
			return nil
		})
		_ = g.Wait()

		if repo.State == fetch.Error {
			if errors.Is(repo.Err, fetch.ErrNotFound) {
				return render(c, fiber.StatusNotFound, pages.NotFound(user))
			}
			a.Logger.Warn("repository read failed", "full_name", fullName, "error", repo.Err)
		}

		return render(c, fiber.StatusOK, pages.RepositoryShow(user, fullName, repo))
	}
}

// NotFoundPage is the catch-all for unknown UI routes
func NotFoundPage(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := fetchContext(c, a)
		defer cancel()

		return render(c, fiber.StatusNotFound, pages.NotFound(loadUser(ctx, a, middleware.GetSessionID(c))))
	}
}
