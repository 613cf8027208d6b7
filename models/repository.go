package models

import (
	"net/url"
	"strings"
)

// HomeLanguages is the ordered list of languages shown on the home page.
var HomeLanguages = []string{
	"rust",
	"javascript",
	"typescript",
	"go",
	"java",
	"python",
}

// LanguageQuery builds the search query for a language, e.g. "language:go".
func LanguageQuery(language string) string {
	return "language:" + language
}

type Repository struct {
	ID              int64  `json:"id"`
	FullName        string `json:"full_name"`
	Description     string `json:"description,omitempty"`
	HTMLURL         string `json:"html_url,omitempty"`
	Language        string `json:"language,omitempty"`
	StargazersCount int    `json:"stargazers_count"`
	OpenIssues      int    `json:"open_issues"`
	Forks           int    `json:"forks"`
}

// Path returns the detail page target for the repository.
func (r Repository) Path() string {
	return RepositoryPath(r.FullName)
}

// SearchResult is the body of GET /api/repositories.
type SearchResult struct {
	Items []Repository `json:"items"`
}

type SearchRequest struct {
	Query string `query:"q" json:"q" validate:"required,searchquery"`
}

// RepositoryPath maps a full name onto /repositories/<full_name>, escaping
// each path segment on its own so the owner/name separator survives.
func RepositoryPath(fullName string) string {
	return "/repositories/" + EscapeFullName(fullName)
}

func EscapeFullName(fullName string) string {
	segments := strings.Split(fullName, "/")
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}
	return strings.Join(segments, "/")
}

// SplitFullName splits "owner/name". Both parts must be non-empty.
func SplitFullName(fullName string) (owner, name string, ok bool) {
	owner, name, found := strings.Cut(strings.Trim(fullName, "/"), "/")
	if !found || owner == "" || name == "" || strings.Contains(name, "/") {
		return "", "", false
	}
	return owner, name, true
}
