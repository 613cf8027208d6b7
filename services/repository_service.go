package services

import (
	"context"
	"strings"

	"repo-browser/models"
)

// MaxPerPage is the largest page the search API will serve.
const MaxPerPage = 100

// RepositoryService serves repository search and detail reads
type RepositoryService struct {
	source  RepositorySource
	perPage int
}

// NewRepositoryService creates a repository service. perPage is clamped to 1..MaxPerPage.
func NewRepositoryService(source RepositorySource, perPage int) *RepositoryService {
	if perPage < 1 {
		perPage = 1
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}
	return &RepositoryService{source: source, perPage: perPage}
}

// Search returns the upstream items for query in upstream order
func (rs *RepositoryService) Search(ctx context.Context, query string) ([]models.Repository, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrInvalidQuery
	}

	items, err := rs.source.SearchRepositories(ctx, query, rs.perPage)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []models.Repository{}
	}
	return items, nil
}

// Get returns a single repository by owner and name
func (rs *RepositoryService) Get(ctx context.Context, owner, name string) (*models.Repository, error) {
	if owner == "" || name == "" {
		return nil, ErrInvalidQuery
	}
	return rs.source.GetRepository(ctx, owner, name)
}
