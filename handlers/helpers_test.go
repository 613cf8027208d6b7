package handlers_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"repo-browser/app"
	"repo-browser/config/setup"
	"repo-browser/database"
	"repo-browser/fetch"
	"repo-browser/middleware"
	"repo-browser/models"
	"repo-browser/services"
	"repo-browser/session"

	"github.com/PuerkitoBio/goquery"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/stretchr/testify/require"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// fakeSource stands in for GitHub behind the repository service
type fakeSource struct {
	searches map[string][]models.Repository
	repos    map[string]*models.Repository
	err      error
	// hang blocks every call until ctx is done
	hang bool
}

var _ services.RepositorySource = (*fakeSource)(nil)

func (s *fakeSource) SearchRepositories(ctx context.Context, query string, perPage int) ([]models.Repository, error) {
	if s.hang {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if s.err != nil {
		return nil, s.err
	}
	items := s.searches[query]
	if len(items) > perPage {
		items = items[:perPage]
	}
	return items, nil
}

func (s *fakeSource) GetRepository(ctx context.Context, owner, name string) (*models.Repository, error) {
	if s.hang {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if s.err != nil {
		return nil, s.err
	}
	repo, ok := s.repos[owner+"/"+name]
	if !ok {
		return nil, services.ErrRepositoryNotFound
	}
	return repo, nil
}

func setupTestDB(t *testing.T) *database.DB {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "repo-browser-handlers-*")
	require.NoError(t, err)

	db, err := database.New(filepath.Join(tmpDir, "test.db"))
	require.NoError(t, err)
	require.NoError(t, db.Migrate())

	t.Cleanup(func() {
		db.Close()
		os.RemoveAll(tmpDir)
	})
	return db
}

// newTestApp builds the full route table. A nil fetcher is replaced by a
// client that reads the app's own API through a real HTTP server.
func newTestApp(t *testing.T, fetcher fetch.Fetcher, source *fakeSource) (*fiber.App, *app.App) {
	t.Helper()

	if source == nil {
		source = &fakeSource{}
	}

	db := setupTestDB(t)
	sessionStore := session.NewStore(db.DB)
	authService := services.NewAuthService(database.NewRepository(db), sessionStore)
	repositoryService := services.NewRepositoryService(source, 10)

	application := app.New(authService, repositoryService, sessionStore, fetcher, testLogger, app.Options{
		FetchTimeout:     2 * time.Second,
		FetchConcurrency: 3,
	})

	fiberApp := fiber.New(fiber.Config{ErrorHandler: setup.CustomErrorHandler(testLogger)})
	fiberApp.Use(middleware.CurrentSession(sessionStore))
	setup.RegisterRoutes(fiberApp, application)

	if fetcher == nil {
		server := httptest.NewServer(adaptor.FiberApp(fiberApp))
		t.Cleanup(server.Close)
		application.Fetcher = fetch.NewClient(server.URL, fetch.WithLogger(testLogger))
	}

	return fiberApp, application
}

func doRequest(t *testing.T, fiberApp *fiber.App, req *http.Request) *http.Response {
	t.Helper()

	resp, err := fiberApp.Test(req, -1)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func get(t *testing.T, fiberApp *fiber.App, target string, cookies ...*http.Cookie) *http.Response {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, target, nil)
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	return doRequest(t, fiberApp, req)
}

func postForm(t *testing.T, fiberApp *fiber.App, target, body string) *http.Response {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set("Content-Type", fiber.MIMEApplicationForm)
	return doRequest(t, fiberApp, req)
}

func postJSON(t *testing.T, fiberApp *fiber.App, target, body string, cookies ...*http.Cookie) *http.Response {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set("Content-Type", fiber.MIMEApplicationJSON)
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	return doRequest(t, fiberApp, req)
}

func document(t *testing.T, resp *http.Response) *goquery.Document {
	t.Helper()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	require.NoError(t, err)
	return doc
}

// linkByText returns the anchors whose trimmed text equals text
func linkByText(doc *goquery.Document, text string) *goquery.Selection {
	return doc.Find("a").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return strings.TrimSpace(s.Text()) == text
	})
}

func sessionCookie(resp *http.Response) *http.Cookie {
	for _, cookie := range resp.Cookies() {
		if cookie.Name == fetch.SessionCookie && cookie.Value != "" {
			return cookie
		}
	}
	return nil
}
