package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/pageza/mealshare/backend/internal/service"
	"github.com/pageza/mealshare/backend/internal/types"
)

// MockResolver is a mock implementation of the cross-partition resolver
type MockResolver struct {
	mock.Mock
}

var _ service.IResolver = (*MockResolver)(nil)

// FindAnywhere mocks the FindAnywhere method
func (m *MockResolver) FindAnywhere(ctx context.Context, recipeID uuid.UUID) (*types.RecipeView, error) {
	args := m.Called(ctx, recipeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.RecipeView), args.Error(1)
}

// ListAll mocks the ListAll method
func (m *MockResolver) ListAll(ctx context.Context, filter service.ListFilter) ([]types.RecipeView, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.RecipeView), args.Error(1)
}
