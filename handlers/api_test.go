package handlers_test

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"repo-browser/models"
	"repo-browser/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func testSource() *fakeSource {
	return &fakeSource{
		searches: map[string][]models.Repository{
			"language:go": {
				{ID: 1, FullName: "golang/go", StargazersCount: 120000},
				{ID: 2, FullName: "gohugoio/hugo", StargazersCount: 75000},
			},
		},
		repos: map[string]*models.Repository{
			"golang/go": {ID: 1, FullName: "golang/go", Forks: 17000},
		},
	}
}

func TestAPI_SearchRepositories(t *testing.T) {
	fiberApp, _ := newTestApp(t, nil, testSource())

	t.Run("returns items in upstream order", func(t *testing.T) {
		resp := get(t, fiberApp, "/api/repositories?q=language:go")
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var body models.SearchResult
		decode(t, resp, &body)
		require.Len(t, body.Items, 2)
		assert.Equal(t, "golang/go", body.Items[0].FullName)
		assert.Equal(t, "gohugoio/hugo", body.Items[1].FullName)
	})

	t.Run("empty result is an empty list", func(t *testing.T) {
		resp := get(t, fiberApp, "/api/repositories?q=language:cobol")
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]any
		decode(t, resp, &body)
		assert.Equal(t, []any{}, body["items"])
	})

	t.Run("missing query is rejected", func(t *testing.T) {
		resp := get(t, fiberApp, "/api/repositories")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("blank query is rejected", func(t *testing.T) {
		resp := get(t, fiberApp, "/api/repositories?q=%20%20")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestAPI_GetRepository(t *testing.T) {
	fiberApp, _ := newTestApp(t, nil, testSource())

	resp := get(t, fiberApp, "/api/repositories/golang/go")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var repo models.Repository
	decode(t, resp, &repo)
	assert.Equal(t, "golang/go", repo.FullName)
	assert.Equal(t, 17000, repo.Forks)

	resp = get(t, fiberApp, "/api/repositories/golang/missing")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAPI_UpstreamErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{name: "rate limited", err: services.ErrRateLimited, expected: http.StatusTooManyRequests},
		{name: "invalid query", err: services.ErrInvalidQuery, expected: http.StatusBadRequest},
		{name: "upstream timeout", err: services.ErrUpstreamTimeout, expected: http.StatusGatewayTimeout},
		{name: "anything else", err: assert.AnError, expected: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fiberApp, _ := newTestApp(t, nil, &fakeSource{err: tt.err})

			resp := get(t, fiberApp, "/api/repositories?q=language:go")
			assert.Equal(t, tt.expected, resp.StatusCode)

			var body map[string]any
			decode(t, resp, &body)
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestAPI_UpstreamHangs(t *testing.T) {
	fiberApp, application := newTestApp(t, nil, &fakeSource{hang: true})
	application.Options.FetchTimeout = 100 * time.Millisecond

	for _, target := range []string{"/api/repositories?q=language:go", "/api/repositories/golang/go"} {
		t.Run(target, func(t *testing.T) {
			start := time.Now()
			resp := get(t, fiberApp, target)
			assert.Less(t, time.Since(start), 2*time.Second)
			assert.Equal(t, http.StatusGatewayTimeout, resp.StatusCode)
		})
	}
}

func TestAPI_UnknownRouteIsJSON(t *testing.T) {
	fiberApp, _ := newTestApp(t, nil, nil)

	resp := get(t, fiberApp, "/api/nothing-here")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "application/json")
}

func TestAPI_AuthFlow(t *testing.T) {
	fiberApp, _ := newTestApp(t, nil, nil)
	credentials := `{"email":"User@Email.com","password":"correct-horse"}`

	resp := get(t, fiberApp, "/api/user")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var anonymous models.CurrentUserResponse
	decode(t, resp, &anonymous)
	assert.Nil(t, anonymous.User)

	resp = postJSON(t, fiberApp, "/api/auth/signup", credentials)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	cookie := sessionCookie(resp)
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)

	t.Run("current user follows the cookie", func(t *testing.T) {
		resp := get(t, fiberApp, "/api/user", cookie)
		var body models.CurrentUserResponse
		decode(t, resp, &body)
		require.NotNil(t, body.User)
		assert.Equal(t, "user@email.com", body.User.Email)
	})

	t.Run("password hash is never serialized", func(t *testing.T) {
		resp := get(t, fiberApp, "/api/user", cookie)
		var body map[string]map[string]any
		decode(t, resp, &body)
		assert.NotContains(t, body["user"], "password_hash")
		assert.NotContains(t, body["user"], "PasswordHash")
	})

	t.Run("duplicate email conflicts", func(t *testing.T) {
		resp := postJSON(t, fiberApp, "/api/auth/signup", `{"email":"user@email.com","password":"another-pass"}`)
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})

	t.Run("short password is rejected", func(t *testing.T) {
		resp := postJSON(t, fiberApp, "/api/auth/signup", `{"email":"other@email.com","password":"short"}`)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("wrong password is unauthorized", func(t *testing.T) {
		resp := postJSON(t, fiberApp, "/api/auth/signin", `{"email":"user@email.com","password":"wrong-horse"}`)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Nil(t, sessionCookie(resp))
	})

	t.Run("sign in issues a new session", func(t *testing.T) {
		resp := postJSON(t, fiberApp, "/api/auth/signin", credentials)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		second := sessionCookie(resp)
		require.NotNil(t, second)
		assert.NotEqual(t, cookie.Value, second.Value)
	})

	t.Run("sign out ends the session", func(t *testing.T) {
		resp := postJSON(t, fiberApp, "/api/auth/signout", "", cookie)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		resp = get(t, fiberApp, "/api/user", cookie)
		var body models.CurrentUserResponse
		decode(t, resp, &body)
		assert.Nil(t, body.User)
	})

	t.Run("sign out without a session is unauthorized", func(t *testing.T) {
		resp := postJSON(t, fiberApp, "/api/auth/signout", "")
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}
