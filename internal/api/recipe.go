package api

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/palate-app/palate-backend/internal/middleware"
	"github.com/palate-app/palate-backend/internal/service"
)

// RecipeHandler serves the generation pipeline and the recipe listings.
type RecipeHandler struct {
	generateService *service.GenerateService
	recipeService   *service.RecipeService
	statsService    *service.StatsService
	authService     service.IAuthService
}

// NewRecipeHandler creates a new RecipeHandler instance.
func NewRecipeHandler(generateService *service.GenerateService, recipeService *service.RecipeService, statsService *service.StatsService, authService service.IAuthService) *RecipeHandler {
	return &RecipeHandler{
		generateService: generateService,
		recipeService:   recipeService,
		statsService:    statsService,
		authService:     authService,
	}
}

// RegisterRoutes registers the recipe routes.
func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup) {
	recipes := router.Group("/recipes")
	{
		recipes.POST("/generate", middleware.OptionalAuthMiddleware(h.authService), h.Generate)
		recipes.GET("", middleware.AuthMiddleware(h.authService), h.ListRecipes)
		recipes.GET("/search", middleware.OptionalAuthMiddleware(h.authService), h.SearchRecipes)
		recipes.GET("/public", h.ListPublicRecipes)
		recipes.GET("/:id", middleware.OptionalAuthMiddleware(h.authService), h.GetRecipe)
		recipes.DELETE("/:id", middleware.AuthMiddleware(h.authService), h.DeleteRecipe)
	}
}

// Generate runs the generation pipeline. Multipart fields: optional image,
// optional text, allergens as a JSON-encoded array, spiceLevel integer.
func (h *RecipeHandler) Generate(c *gin.Context) {
	input := service.GenerateInput{SpiceLevel: 5}

	if file, err := c.FormFile("image"); err == nil && file != nil {
		if file.Size > service.MaxImageBytes {
			respondError(c, http.StatusBadRequest, "image exceeds 10MB limit")
			return
		}
		if ct := file.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, "image/") {
			respondError(c, http.StatusBadRequest, "only image files are allowed")
			return
		}
		src, err := file.Open()
		if err != nil {
			respondError(c, http.StatusBadRequest, "failed to read uploaded image")
			return
		}
		defer func() { _ = src.Close() }()
		data, err := io.ReadAll(src)
		if err != nil {
			respondError(c, http.StatusBadRequest, "failed to read uploaded image")
			return
		}
		input.Image = data
	}

	input.Text = c.PostForm("text")

	if raw := c.PostForm("allergens"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &input.Allergens); err != nil {
			respondError(c, http.StatusBadRequest, "allergens must be a JSON array of strings")
			return
		}
	}

	if raw := c.PostForm("spiceLevel"); raw != "" {
		level, err := strconv.Atoi(raw)
		if err != nil {
			respondError(c, http.StatusBadRequest, "spiceLevel must be an integer")
			return
		}
		input.SpiceLevel = level
	}

	if userID, ok := currentUserID(c); ok {
		input.UserID = &userID
	}

	recipe, err := h.generateService.Generate(c.Request.Context(), input)
	if err != nil {
		h.respondGenerateError(c, err)
		return
	}

	if input.UserID != nil {
		h.statsService.Invalidate(c.Request.Context(), *input.UserID)
	}

	respondMessage(c, http.StatusCreated, "Recipe generated successfully", gin.H{"recipe": recipe})
}

// respondGenerateError maps pipeline failures onto the documented statuses.
func (h *RecipeHandler) respondGenerateError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		respondError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrLLMNotConfigured):
		respondError(c, http.StatusServiceUnavailable, "recipe generation is not configured")
	case errors.Is(err, service.ErrImageAnalysis):
		respondError(c, http.StatusBadGateway, "could not analyze image, try text instead")
	case errors.Is(err, service.ErrRecipeParse):
		respondError(c, http.StatusBadGateway, "failed to parse recipe from AI response")
	case errors.Is(err, service.ErrInvalidRecipe):
		respondError(c, http.StatusBadGateway, "invalid recipe format received from AI")
	case errors.Is(err, service.ErrGenerationFailed):
		respondError(c, http.StatusBadGateway, "failed to generate recipe")
	default:
		log.Printf("[RecipeHandler] generation failed: %v", err)
		respondError(c, http.StatusInternalServerError, "failed to save recipe")
	}
}

// ListRecipes returns the caller's recipes, paginated and sorted.
func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "user not authenticated")
		return
	}

	opts := listOptionsFromQuery(c)
	recipes, total, err := h.recipeService.ListByUser(c.Request.Context(), userID, opts)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to fetch recipes")
		return
	}

	respondData(c, http.StatusOK, gin.H{
		"recipes":    recipes,
		"pagination": NewPagination(opts.Page, opts.Limit, total),
	})
}

// GetRecipe fetches one recipe with an ownership check.
func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid recipe id")
		return
	}

	var requester *uuid.UUID
	if userID, ok := currentUserID(c); ok {
		requester = &userID
	}

	recipe, err := h.recipeService.GetByID(c.Request.Context(), id, requester)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		respondError(c, http.StatusNotFound, "Recipe not found")
		return
	case errors.Is(err, service.ErrForbidden):
		respondError(c, http.StatusForbidden, "Not authorized to access this recipe")
		return
	case err != nil:
		respondError(c, http.StatusInternalServerError, "failed to fetch recipe")
		return
	}

	respondData(c, http.StatusOK, gin.H{"recipe": recipe})
}

// SearchRecipes runs the filtered/text search, scoped to the caller when
// authenticated.
func (h *RecipeHandler) SearchRecipes(c *gin.Context) {
	filters := searchFiltersFromQuery(c)
	opts := listOptionsFromQuery(c)

	var owner *uuid.UUID
	if userID, ok := currentUserID(c); ok {
		owner = &userID
	}

	recipes, total, err := h.recipeService.Search(c.Request.Context(), filters, owner, opts)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to search recipes")
		return
	}

	respondData(c, http.StatusOK, gin.H{
		"recipes":    recipes,
		"pagination": NewPagination(opts.Page, opts.Limit, total),
	})
}

// ListPublicRecipes is the unauthenticated discovery listing. Owner references
// are stripped from the output.
func (h *RecipeHandler) ListPublicRecipes(c *gin.Context) {
	filters := service.SearchFilters{
		Cuisine:    c.Query("cuisine"),
		Difficulty: c.Query("difficulty"),
	}
	opts := listOptionsFromQuery(c)

	recipes, total, err := h.recipeService.ListPublic(c.Request.Context(), filters, opts)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to fetch public recipes")
		return
	}

	for i := range recipes {
		recipes[i].UserID = nil
	}

	respondData(c, http.StatusOK, gin.H{
		"recipes":    recipes,
		"pagination": NewPagination(opts.Page, opts.Limit, total),
	})
}

// DeleteRecipe hard-removes a recipe the caller owns.
func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "user not authenticated")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid recipe id")
		return
	}

	err = h.recipeService.Delete(c.Request.Context(), id, userID)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		respondError(c, http.StatusNotFound, "Recipe not found")
		return
	case errors.Is(err, service.ErrForbidden):
		respondError(c, http.StatusForbidden, "Not authorized to delete this recipe")
		return
	case err != nil:
		respondError(c, http.StatusInternalServerError, "failed to delete recipe")
		return
	}

	h.statsService.Invalidate(c.Request.Context(), userID)
	respondMessage(c, http.StatusOK, "Recipe deleted successfully", nil)
}

func listOptionsFromQuery(c *gin.Context) service.ListOptions {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	return service.ListOptions{
		Page:      page,
		Limit:     limit,
		SortBy:    c.DefaultQuery("sortBy", "createdAt"),
		SortOrder: c.DefaultQuery("sortOrder", "desc"),
	}
}

func searchFiltersFromQuery(c *gin.Context) service.SearchFilters {
	filters := service.SearchFilters{
		Query:      c.Query("q"),
		Cuisine:    c.Query("cuisine"),
		Difficulty: c.Query("difficulty"),
	}
	if raw := c.Query("spiceLevel"); raw != "" {
		if level, err := strconv.Atoi(raw); err == nil {
			filters.SpiceLevel = &level
		}
	}
	if raw := c.Query("allergens"); raw != "" {
		filters.Allergens = strings.Split(raw, ",")
	}
	return filters
}
