package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/palate-app/palate-backend/internal/service"
)

// MockLLMService is a mock implementation of the ILLMService interface
type MockLLMService struct {
	mock.Mock
}

func (m *MockLLMService) Configured() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *MockLLMService) GenerateRecipe(ctx context.Context, description string, allergens []string, spiceLevel int) (*service.GeneratedRecipe, error) {
	args := m.Called(ctx, description, allergens, spiceLevel)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.GeneratedRecipe), args.Error(1)
}

func (m *MockLLMService) AnalyzeImage(ctx context.Context, image []byte) (string, error) {
	args := m.Called(ctx, image)
	return args.String(0), args.Error(1)
}

// MockImageService is a mock implementation of the IImageService interface
type MockImageService struct {
	mock.Mock
}

func (m *MockImageService) SearchRecipeImage(ctx context.Context, recipeName, cuisineType string) string {
	args := m.Called(ctx, recipeName, cuisineType)
	return args.String(0)
}
