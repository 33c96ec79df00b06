package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/palate-app/palate-backend/internal/models"
)

// ListOptions control pagination and ordering of recipe listings.
type ListOptions struct {
	Page      int
	Limit     int
	SortBy    string
	SortOrder string
}

// SearchFilters are the recognized recipe search parameters.
type SearchFilters struct {
	Query      string
	Cuisine    string
	Difficulty string
	// SpiceLevel filters to recipes at most this hot; nil disables the filter.
	SpiceLevel *int
	// Allergens excludes recipes containing any of these allergens.
	Allergens []string
}

// sortColumns is the allow-list of sortable fields.
var sortColumns = map[string]string{
	"createdAt":  "created_at",
	"updatedAt":  "updated_at",
	"recipeName": "recipe_name",
	"spiceLevel": "spice_level",
}

const (
	defaultLimit = 10
	maxLimit     = 50
)

// RecipeService answers listing, search and ownership queries over stored
// recipes.
type RecipeService struct {
	db *gorm.DB
}

// NewRecipeService creates a new RecipeService instance.
func NewRecipeService(db *gorm.DB) *RecipeService {
	return &RecipeService{db: db}
}

func (o *ListOptions) normalize() {
	if o.Page < 1 {
		o.Page = 1
	}
	if o.Limit < 1 {
		o.Limit = defaultLimit
	}
	if o.Limit > maxLimit {
		o.Limit = maxLimit
	}
	if _, ok := sortColumns[o.SortBy]; !ok {
		o.SortBy = "createdAt"
	}
	if o.SortOrder != "asc" {
		o.SortOrder = "desc"
	}
}

func (o ListOptions) order() string {
	return sortColumns[o.SortBy] + " " + o.SortOrder
}

// ListByUser returns one page of the user's recipes plus the total match count.
func (s *RecipeService) ListByUser(ctx context.Context, userID uuid.UUID, opts ListOptions) ([]models.Recipe, int64, error) {
	opts.normalize()

	query := s.db.WithContext(ctx).Model(&models.Recipe{}).Where("user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var recipes []models.Recipe
	err := query.Order(opts.order()).
		Offset((opts.Page - 1) * opts.Limit).
		Limit(opts.Limit).
		Find(&recipes).Error
	if err != nil {
		return nil, 0, err
	}
	return recipes, total, nil
}

// GetByID fetches one recipe. An owned recipe requested by anyone other than
// its owner yields ErrForbidden; anonymous recipes are visible to all callers.
func (s *RecipeService) GetByID(ctx context.Context, id uuid.UUID, requester *uuid.UUID) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, "id = ?", id).Error; err != nil {
		return nil, err
	}

	if recipe.UserID != nil && requester != nil && *recipe.UserID != *requester {
		return nil, ErrForbidden
	}

	return &recipe, nil
}

// Search runs the filtered/text search. When owner is non-nil the results are
// scoped to that user's recipes.
func (s *RecipeService) Search(ctx context.Context, filters SearchFilters, owner *uuid.UUID, opts ListOptions) ([]models.Recipe, int64, error) {
	opts.normalize()

	query := s.db.WithContext(ctx).Model(&models.Recipe{})
	query = s.applyFilters(query, filters)
	if owner != nil {
		query = query.Where("user_id = ?", *owner)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var recipes []models.Recipe
	err := query.Order("created_at desc").
		Offset((opts.Page - 1) * opts.Limit).
		Limit(opts.Limit).
		Find(&recipes).Error
	if err != nil {
		return nil, 0, err
	}
	return recipes, total, nil
}

// ListPublic is the discovery listing over all recipes; the handler strips
// owner references before responding.
func (s *RecipeService) ListPublic(ctx context.Context, filters SearchFilters, opts ListOptions) ([]models.Recipe, int64, error) {
	return s.Search(ctx, filters, nil, opts)
}

// Delete hard-removes a recipe the caller owns. A missing id yields
// gorm.ErrRecordNotFound; someone else's recipe yields ErrForbidden.
func (s *RecipeService) Delete(ctx context.Context, id, userID uuid.UUID) error {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, "id = ?", id).Error; err != nil {
		return err
	}

	if recipe.UserID != nil && *recipe.UserID != userID {
		return ErrForbidden
	}

	return s.db.WithContext(ctx).Delete(&models.Recipe{}, "id = ?", id).Error
}

func (s *RecipeService) applyFilters(query *gorm.DB, filters SearchFilters) *gorm.DB {
	ingredientsCol := "ingredients"
	tagsCol := "tags"
	allergensCol := "allergens"
	if s.db.Dialector.Name() == "postgres" {
		ingredientsCol = "ingredients::text"
		tagsCol = "tags::text"
		allergensCol = "allergens::text"
	}

	if q := strings.TrimSpace(filters.Query); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		query = query.Where(
			"LOWER(recipe_name) LIKE ? OR LOWER("+ingredientsCol+") LIKE ? OR LOWER(cuisine_type) LIKE ? OR LOWER("+tagsCol+") LIKE ?",
			like, like, like, like,
		)
	}

	if filters.Cuisine != "" {
		query = query.Where("LOWER(cuisine_type) LIKE ?", "%"+strings.ToLower(filters.Cuisine)+"%")
	}

	if filters.Difficulty != "" {
		query = query.Where("difficulty = ?", filters.Difficulty)
	}

	if filters.SpiceLevel != nil {
		query = query.Where("spice_level <= ?", *filters.SpiceLevel)
	}

	for _, a := range filters.Allergens {
		a = strings.TrimSpace(a)
		if a == "" {
			continue
		}
		query = query.Where("LOWER("+allergensCol+") NOT LIKE ?", "%"+strings.ToLower(a)+"%")
	}

	return query
}
