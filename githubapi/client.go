// Package githubapi is the upstream RepositorySource backed by the GitHub REST API.
package githubapi

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"repo-browser/models"
	"repo-browser/services"

	"github.com/google/go-github/v82/github"
	"golang.org/x/oauth2"
)

var _ services.RepositorySource = (*Client)(nil)

type Client struct {
	gh *github.Client
}

// NewClient builds a GitHub client. An empty token uses anonymous access; an
// empty baseURL uses api.github.com. Every request is bounded by timeout.
func NewClient(ctx context.Context, token, baseURL string, timeout time.Duration) (*Client, error) {
	httpClient := &http.Client{Timeout: timeout}
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		httpClient = oauth2.NewClient(context.WithValue(ctx, oauth2.HTTPClient, httpClient), ts)
		httpClient.Timeout = timeout
	}

	gh := github.NewClient(httpClient)

	if baseURL != "" {
		u, err := url.Parse(baseURL)
		if err != nil {
			return nil, fmt.Errorf("invalid GitHub API URL %q: %w", baseURL, err)
		}
		if !strings.HasSuffix(u.Path, "/") {
			u.Path += "/"
		}
		gh.BaseURL = u
	}

	return &Client{gh: gh}, nil
}

// SearchRepositories runs a repository search ordered by stars, most first.
func (c *Client) SearchRepositories(ctx context.Context, query string, perPage int) ([]models.Repository, error) {
	result, _, err := c.gh.Search.Repositories(ctx, query, &github.SearchOptions{
		Sort:        "stars",
		Order:       "desc",
		ListOptions: github.ListOptions{PerPage: perPage},
	})
	if err != nil {
		return nil, mapError(fmt.Sprintf("search %q", query), err)
	}

	items := make([]models.Repository, 0, len(result.Repositories))
	for _, repo := range result.Repositories {
		items = append(items, convertRepository(repo))
	}
	return items, nil
}

func (c *Client) GetRepository(ctx context.Context, owner, name string) (*models.Repository, error) {
	repo, _, err := c.gh.Repositories.Get(ctx, owner, name)
	if err != nil {
		return nil, mapError(fmt.Sprintf("get %s/%s", owner, name), err)
	}

	converted := convertRepository(repo)
	return &converted, nil
}

func convertRepository(repo *github.Repository) models.Repository {
	return models.Repository{
		ID:              repo.GetID(),
		FullName:        repo.GetFullName(),
		Description:     repo.GetDescription(),
		HTMLURL:         repo.GetHTMLURL(),
		Language:        repo.GetLanguage(),
		StargazersCount: repo.GetStargazersCount(),
		OpenIssues:      repo.GetOpenIssuesCount(),
		Forks:           repo.GetForksCount(),
	}
}

// mapError translates go-github errors onto the service sentinels.
func mapError(op string, err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Errorf("%s: %w: %v", op, services.ErrUpstreamTimeout, err)
	}

	var rateErr *github.RateLimitError
	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &rateErr) || errors.As(err, &abuseErr) {
		return fmt.Errorf("%s: %w: %v", op, services.ErrRateLimited, err)
	}

	var respErr *github.ErrorResponse
	if errors.As(err, &respErr) && respErr.Response != nil {
		switch respErr.Response.StatusCode {
		case http.StatusNotFound:
			return fmt.Errorf("%s: %w", op, services.ErrRepositoryNotFound)
		case http.StatusUnprocessableEntity:
			return fmt.Errorf("%s: %w: %v", op, services.ErrInvalidQuery, err)
		}
	}

	return fmt.Errorf("%s: %w", op, err)
}
