package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palate-app/palate-backend/internal/models"
	"github.com/palate-app/palate-backend/internal/testhelpers"
)

func recipesWithSpice(levels ...int) []models.Recipe {
	recipes := make([]models.Recipe, len(levels))
	for i, l := range levels {
		recipes[i].SpiceLevel = l
	}
	return recipes
}

func TestAverageSpiceLevel(t *testing.T) {
	assert.Equal(t, 0.0, averageSpiceLevel(nil))
	assert.Equal(t, 4.0, averageSpiceLevel(recipesWithSpice(2, 4, 6)))
	assert.Equal(t, 3.5, averageSpiceLevel(recipesWithSpice(3, 4)))
	// Rounded to one decimal place.
	assert.Equal(t, 3.3, averageSpiceLevel(recipesWithSpice(3, 3, 4)))
}

func TestTopIngredients(t *testing.T) {
	recipes := []models.Recipe{
		{Ingredients: models.JSONBStringArray{"Garlic ", "onion", "salt"}},
		{Ingredients: models.JSONBStringArray{"garlic", "onion"}},
		{Ingredients: models.JSONBStringArray{"GARLIC"}},
	}

	top := topIngredients(recipes, 2)
	assert.Equal(t, []string{"garlic", "onion"}, top, "case and whitespace variants count as one")

	all := topIngredients(recipes, 10)
	assert.Equal(t, []string{"garlic", "onion", "salt"}, all)

	assert.Empty(t, topIngredients(nil, 10))
}

func TestRecipesOverTime(t *testing.T) {
	now := time.Date(2026, 8, 31, 15, 0, 0, 0, time.UTC)
	recipes := []models.Recipe{
		{},
		{},
		{},
	}
	recipes[0].CreatedAt = now
	recipes[1].CreatedAt = now.AddDate(0, 0, -1)
	recipes[2].CreatedAt = now.AddDate(0, 0, -45) // outside the window

	series := recipesOverTime(recipes, 30, now)
	require.Len(t, series, 30)

	assert.Equal(t, "2026-08-02", series[0].Date, "oldest day first")
	assert.Equal(t, "2026-08-31", series[29].Date)
	assert.Equal(t, 1, series[29].Count)
	assert.Equal(t, 1, series[28].Count)

	total := 0
	for _, d := range series {
		total += d.Count
	}
	assert.Equal(t, 2, total, "recipes outside the window are not counted")
}

func TestTopN(t *testing.T) {
	counts := map[string]int{"Italian": 5, "Thai": 5, "Indian": 2, "French": 1}

	top := topN(counts, 2)
	assert.Len(t, top, 2)
	// Ties break alphabetically.
	assert.Equal(t, map[string]int{"Italian": 5, "Thai": 5}, top)
}

func TestGetUserStats(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	svc := NewStatsService(db, nil)
	ctx := context.Background()

	userID := uuid.New()
	for i := 0; i < 3; i++ {
		recipe := models.Recipe{
			RecipeName:    "Recipe",
			Ingredients:   models.JSONBStringArray{"rice", "egg"},
			Instructions:  models.JSONBStringArray{"cook"},
			CuisineType:   "Thai",
			ImageURL:      "https://images.example.com/r.jpg",
			Difficulty:    models.DifficultyEasy,
			SpiceLevel:    4,
			OriginalInput: "x",
			InputType:     models.InputTypeText,
			UserID:        &userID,
		}
		require.NoError(t, db.Create(&recipe).Error)
	}

	stats, err := svc.GetUserStats(ctx, userID)
	require.NoError(t, err)

	assert.Equal(t, 3, stats.TotalRecipes)
	assert.Equal(t, map[string]int{"Thai": 3}, stats.TopCuisines)
	assert.Equal(t, []string{"rice", "egg"}, stats.FavoriteIngredients)
	assert.Equal(t, 4.0, stats.AverageSpiceLevel)
	assert.Len(t, stats.RecentRecipes, 3)
	assert.Len(t, stats.RecipesOverTime, 30)

	t.Run("empty user", func(t *testing.T) {
		stats, err := svc.GetUserStats(ctx, uuid.New())
		require.NoError(t, err)
		assert.Zero(t, stats.TotalRecipes)
		assert.Zero(t, stats.AverageSpiceLevel)
		assert.Len(t, stats.RecipesOverTime, 30)
	})
}

func TestGetDashboard(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	svc := NewStatsService(db, nil)
	ctx := context.Background()

	user := models.User{Name: "Dana", Email: "dana@example.com"}
	require.NoError(t, db.Create(&user).Error)

	old := models.Recipe{
		RecipeName:    "Old",
		Ingredients:   models.JSONBStringArray{"a"},
		Instructions:  models.JSONBStringArray{"b"},
		CuisineType:   "Italian",
		ImageURL:      "https://images.example.com/r.jpg",
		Difficulty:    models.DifficultyEasy,
		OriginalInput: "x",
		InputType:     models.InputTypeText,
		UserID:        &user.ID,
	}
	old.CreatedAt = time.Now().AddDate(0, 0, -20)
	require.NoError(t, db.Create(&old).Error)

	fresh := old
	fresh.ID = uuid.Nil
	fresh.RecipeName = "Fresh"
	fresh.CreatedAt = time.Now().Add(-time.Hour)
	require.NoError(t, db.Create(&fresh).Error)

	data, err := svc.GetDashboard(ctx, &user)
	require.NoError(t, err)

	assert.Equal(t, "Dana", data.User.Name)
	assert.Equal(t, 2, data.Stats.TotalRecipes)
	assert.Equal(t, 1, data.Stats.WeeklyActivity)
	assert.Equal(t, 2, data.Stats.MonthlyActivity)
	assert.Equal(t, map[string]int{"Italian": 2}, data.Stats.TopCuisines)
	require.NotEmpty(t, data.RecentRecipes)
	assert.Equal(t, "Fresh", data.RecentRecipes[0].RecipeName)
}
