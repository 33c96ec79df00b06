package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/palate-app/palate-backend/internal/models"
)

// MaxImageBytes is the largest accepted upload for image-based generation.
const MaxImageBytes = 10 << 20

// GenerateInput is one generation request. Exactly one of Text and Image must
// be present; when both are supplied the image wins.
type GenerateInput struct {
	Text       string
	Image      []byte
	Allergens  []string
	SpiceLevel int
	UserID     *uuid.UUID
}

// GenerateService orchestrates the generation pipeline: input classification,
// description derivation, structured generation, image lookup, persistence.
type GenerateService struct {
	db     *gorm.DB
	llm    ILLMService
	images IImageService
}

// NewGenerateService creates a new GenerateService instance.
func NewGenerateService(db *gorm.DB, llm ILLMService, images IImageService) *GenerateService {
	return &GenerateService{
		db:     db,
		llm:    llm,
		images: images,
	}
}

// Generate runs the full pipeline and returns the stored recipe. Each step is
// a closed transition: any failure before the insert leaves nothing behind.
func (s *GenerateService) Generate(ctx context.Context, input GenerateInput) (*models.Recipe, error) {
	if input.SpiceLevel < 0 || input.SpiceLevel > 10 {
		return nil, fmt.Errorf("%w: spice level must be between 0 and 10", ErrValidation)
	}

	var description string
	var inputType string

	switch {
	case len(input.Image) > 0:
		inputType = models.InputTypeImage
		if len(input.Image) > MaxImageBytes {
			return nil, fmt.Errorf("%w: image exceeds 10MB limit", ErrValidation)
		}
		desc, err := s.llm.AnalyzeImage(ctx, input.Image)
		if err != nil {
			return nil, err
		}
		description = desc
	case strings.TrimSpace(input.Text) != "":
		inputType = models.InputTypeText
		description = strings.TrimSpace(input.Text)
		if len(description) < 3 || len(description) > 500 {
			return nil, fmt.Errorf("%w: text description must be between 3 and 500 characters", ErrValidation)
		}
	default:
		return nil, fmt.Errorf("%w: either text description or image is required", ErrValidation)
	}

	generated, err := s.llm.GenerateRecipe(ctx, description, input.Allergens, input.SpiceLevel)
	if err != nil {
		return nil, err
	}

	imageURL := s.images.SearchRecipeImage(ctx, generated.RecipeName, generated.CuisineType)

	recipe := &models.Recipe{
		RecipeName:    generated.RecipeName,
		Ingredients:   models.JSONBStringArray(generated.Ingredients),
		Instructions:  models.JSONBStringArray(generated.Instructions),
		CuisineType:   generated.CuisineType,
		Tags:          models.JSONBStringArray(generated.Tags),
		ImageURL:      imageURL,
		CookingTime:   generated.CookingTime,
		Servings:      generated.Servings,
		Difficulty:    generated.Difficulty,
		SpiceLevel:    input.SpiceLevel,
		Allergens:     models.JSONBStringArray(input.Allergens),
		OriginalInput: description,
		InputType:     inputType,
		Nutrition:     generated.Nutrition,
		UserID:        input.UserID,
	}
	recipe.NormalizeTags()
	if recipe.Difficulty == "" {
		recipe.Difficulty = models.DifficultyMedium
	}
	if recipe.Servings < 1 || recipe.Servings > 20 {
		recipe.Servings = 0
	}

	if err := recipe.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRecipe, err)
	}

	if err := s.db.WithContext(ctx).Create(recipe).Error; err != nil {
		log.Printf("[GenerateService] failed to persist recipe: %v", err)
		return nil, fmt.Errorf("failed to save recipe: %w", err)
	}

	return recipe, nil
}
