package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"repo-browser/models"
)

// SessionCookie is the cookie the API reads the signed-in session from.
const SessionCookie = "session_id"

// Fetcher is everything the pages read.
type Fetcher interface {
	CurrentUser(ctx context.Context, sessionID string) (*models.User, error)
	SearchRepositories(ctx context.Context, query string) ([]models.Repository, error)
	Repository(ctx context.Context, fullName string) (*models.Repository, error)
}

var _ Fetcher = (*Client)(nil)

// Client reads the JSON API over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
	cache      Cache
	logger     *slog.Logger
}

type Option func(*Client)

func WithCache(cache Cache) Option {
	return func(c *Client) { c.cache = cache }
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) { c.httpClient = httpClient }
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
		cache:      NoCache{},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CurrentUser returns nil without an error when nobody is signed in.
func (c *Client) CurrentUser(ctx context.Context, sessionID string) (*models.User, error) {
	var body models.CurrentUserResponse
	if err := c.getJSON(ctx, "/api/user", nil, sessionID, &body); err != nil {
		return nil, fmt.Errorf("read current user: %w", err)
	}

	if body.User == nil {
		return nil, nil
	}
	return &models.User{ID: body.User.ID, Email: body.User.Email}, nil
}

// SearchRepositories returns the items of the response in order.
func (c *Client) SearchRepositories(ctx context.Context, query string) ([]models.Repository, error) {
	if items, ok := c.cache.Get(query); ok {
		c.logger.Debug("search cache hit", "query", query)
		return items, nil
	}
	return c.search(ctx, query)
}

// Prefetch refreshes the cached result for query without reading the cache.
func (c *Client) Prefetch(ctx context.Context, query string) error {
	_, err := c.search(ctx, query)
	return err
}

func (c *Client) search(ctx context.Context, query string) ([]models.Repository, error) {
	var body models.SearchResult
	params := url.Values{"q": {query}}
	if err := c.getJSON(ctx, "/api/repositories", params, "", &body); err != nil {
		return nil, fmt.Errorf("search repositories %q: %w", query, err)
	}

	items := body.Items
	if items == nil {
		items = []models.Repository{}
	}
	c.cache.Set(query, items)
	return items, nil
}

func (c *Client) Repository(ctx context.Context, fullName string) (*models.Repository, error) {
	var repo models.Repository
	if err := c.getJSON(ctx, "/api/repositories/"+models.EscapeFullName(fullName), nil, "", &repo); err != nil {
		return nil, fmt.Errorf("read repository %q: %w", fullName, err)
	}
	return &repo, nil
}

func (c *Client) getJSON(ctx context.Context, path string, params url.Values, sessionID string, out any) error {
	target := c.baseURL + path
	if len(params) > 0 {
		target += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if sessionID != "" {
		req.AddCookie(&http.Cookie{Name: SessionCookie, Value: sessionID})
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Code: resp.StatusCode, Message: readErrorMessage(resp.Body)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// readErrorMessage pulls "error" out of a JSON error body, if there is one.
func readErrorMessage(r io.Reader) string {
	var body struct {
		Error string `json:"error"`
	}
	data, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil {
		return ""
	}
	if json.Unmarshal(data, &body) == nil {
		return body.Error
	}
	return ""
}
