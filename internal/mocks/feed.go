package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/pageza/mealshare/backend/internal/service"
	"github.com/pageza/mealshare/backend/internal/types"
)

// MockFeedService is a mock implementation of the feed service
type MockFeedService struct {
	mock.Mock
}

var _ service.IFeedService = (*MockFeedService)(nil)

func (m *MockFeedService) views(args mock.Arguments) ([]types.RecipeView, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.RecipeView), args.Error(1)
}

// FollowingFeed mocks the FollowingFeed method
func (m *MockFeedService) FollowingFeed(ctx context.Context, viewerID uuid.UUID) ([]types.RecipeView, error) {
	return m.views(m.Called(ctx, viewerID))
}

// MostLiked mocks the MostLiked method
func (m *MockFeedService) MostLiked(ctx context.Context, limit int) ([]types.RecipeView, error) {
	return m.views(m.Called(ctx, limit))
}

// MostRecent mocks the MostRecent method
func (m *MockFeedService) MostRecent(ctx context.Context, limit int) ([]types.RecipeView, error) {
	return m.views(m.Called(ctx, limit))
}

// QuickPicks mocks the QuickPicks method
func (m *MockFeedService) QuickPicks(ctx context.Context) ([]types.RecipeView, error) {
	return m.views(m.Called(ctx))
}

// ByDifficulty mocks the ByDifficulty method
func (m *MockFeedService) ByDifficulty(ctx context.Context, levels ...string) ([]types.RecipeView, error) {
	return m.views(m.Called(ctx, levels))
}

// Easy mocks the Easy method
func (m *MockFeedService) Easy(ctx context.Context) ([]types.RecipeView, error) {
	return m.views(m.Called(ctx))
}
