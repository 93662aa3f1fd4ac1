package mocks

import (
	"context"
	"time"

	"github.com/pageza/pantry-chef/backend/internal/types"
	"github.com/stretchr/testify/mock"
)

// MockChefService is a mock implementation of service.ChefServiceInterface
type MockChefService struct {
	mock.Mock
}

func (m *MockChefService) SuggestRecipe(ctx context.Context, userIngredients string) (*types.Recipe, error) {
	args := m.Called(ctx, userIngredients)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Recipe), args.Error(1)
}

func (m *MockChefService) SuggestSubstitution(ctx context.Context, missingIngredient string, availableIngredients []string) (*types.Substitution, error) {
	args := m.Called(ctx, missingIngredient, availableIngredients)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Substitution), args.Error(1)
}

// MockSessionService is a mock implementation of service.SessionServiceInterface
type MockSessionService struct {
	mock.Mock
}

func (m *MockSessionService) IssueToken() (string, string, time.Time, error) {
	args := m.Called()
	return args.String(0), args.String(1), args.Get(2).(time.Time), args.Error(3)
}

func (m *MockSessionService) ValidateToken(token string) (*types.SessionClaims, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.SessionClaims), args.Error(1)
}
