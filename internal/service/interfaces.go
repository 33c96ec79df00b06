package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/palate-app/palate-backend/internal/models"
	"github.com/palate-app/palate-backend/internal/types"
)

// ILLMService defines the interface for the recipe generation provider.
type ILLMService interface {
	Configured() bool
	GenerateRecipe(ctx context.Context, description string, allergens []string, spiceLevel int) (*GeneratedRecipe, error)
	AnalyzeImage(ctx context.Context, image []byte) (string, error)
}

// IImageService defines the interface for the illustrative image lookup.
type IImageService interface {
	SearchRecipeImage(ctx context.Context, recipeName, cuisineType string) string
}

// IAuthService defines the interface for authentication operations.
type IAuthService interface {
	Register(ctx context.Context, name, email, password string) (*models.User, string, error)
	Login(ctx context.Context, email, password string) (*models.User, string, error)
	ValidateToken(token string) (*types.TokenClaims, error)
	ResolveEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, userID uuid.UUID) (*models.User, error)
}
