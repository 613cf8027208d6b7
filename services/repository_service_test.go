package services

import (
	"context"
	"testing"

	"repo-browser/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockRepositorySource is a mock implementation of RepositorySource interface
type MockRepositorySource struct {
	mock.Mock
}

var _ RepositorySource = (*MockRepositorySource)(nil)

func (m *MockRepositorySource) SearchRepositories(ctx context.Context, query string, perPage int) ([]models.Repository, error) {
	args := m.Called(ctx, query, perPage)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Repository), args.Error(1)
}

func (m *MockRepositorySource) GetRepository(ctx context.Context, owner, name string) (*models.Repository, error) {
	args := m.Called(ctx, owner, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Repository), args.Error(1)
}

func TestRepositoryService_Search(t *testing.T) {
	items := []models.Repository{{ID: 1, FullName: "rust_one"}, {ID: 2, FullName: "rust_two"}}

	tests := []struct {
		name          string
		query         string
		mockSetup     func(*MockRepositorySource)
		expected      []models.Repository
		expectedError error
	}{
		{
			name:  "Success - Returns items in upstream order",
			query: "language:rust",
			mockSetup: func(src *MockRepositorySource) {
				src.On("SearchRepositories", mock.Anything, "language:rust", 10).Return(items, nil)
			},
			expected: items,
		},
		{
			name:  "Success - Nil upstream result becomes empty",
			query: " language:go ",
			mockSetup: func(src *MockRepositorySource) {
				src.On("SearchRepositories", mock.Anything, "language:go", 10).Return(nil, nil)
			},
			expected: []models.Repository{},
		},
		{
			name:          "Error - Blank query",
			query:         "  ",
			mockSetup:     func(*MockRepositorySource) {},
			expectedError: ErrInvalidQuery,
		},
		{
			name:  "Error - Upstream rate limited",
			query: "language:java",
			mockSetup: func(src *MockRepositorySource) {
				src.On("SearchRepositories", mock.Anything, "language:java", 10).Return(nil, ErrRateLimited)
			},
			expectedError: ErrRateLimited,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := new(MockRepositorySource)
			tt.mockSetup(src)

			got, err := NewRepositoryService(src, 10).Search(context.Background(), tt.query)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.expected, got)
			}

			src.AssertExpectations(t)
		})
	}
}

func TestRepositoryService_Get(t *testing.T) {
	src := new(MockRepositorySource)
	repo := &models.Repository{ID: 7, FullName: "golang/go"}
	src.On("GetRepository", mock.Anything, "golang", "go").Return(repo, nil)
	src.On("GetRepository", mock.Anything, "nope", "nope").Return(nil, ErrRepositoryNotFound)

	service := NewRepositoryService(src, 10)

	got, err := service.Get(context.Background(), "golang", "go")
	require.NoError(t, err)
	assert.Equal(t, repo, got)

	_, err = service.Get(context.Background(), "nope", "nope")
	assert.ErrorIs(t, err, ErrRepositoryNotFound)

	_, err = service.Get(context.Background(), "", "go")
	assert.ErrorIs(t, err, ErrInvalidQuery)

	src.AssertExpectations(t)
}

func TestNewRepositoryService_ClampsPageSize(t *testing.T) {
	assert.Equal(t, 1, NewRepositoryService(nil, 0).perPage)
	assert.Equal(t, MaxPerPage, NewRepositoryService(nil, 500).perPage)
	assert.Equal(t, 25, NewRepositoryService(nil, 25).perPage)
}
