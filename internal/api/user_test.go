package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palate-app/palate-backend/internal/models"
	"github.com/palate-app/palate-backend/internal/service"
)

func jsonBody(t *testing.T, v interface{}) *bytes.Buffer {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(data)
}

func TestRegisterEndpoint(t *testing.T) {
	app := setupApp(t)

	t.Run("creates an account", func(t *testing.T) {
		body := jsonBody(t, map[string]string{
			"name":     "Dana",
			"email":    "dana@example.com",
			"password": "long enough password",
		})
		w := app.do(t, http.MethodPost, "/api/v1/auth/register", "", body, "application/json")
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		assert.Contains(t, w.Body.String(), `"token"`)
		assert.NotContains(t, w.Body.String(), "password", "password material must not appear in responses")
	})

	t.Run("duplicate email conflicts", func(t *testing.T) {
		body := jsonBody(t, map[string]string{
			"name":     "Dana Again",
			"email":    "dana@example.com",
			"password": "another long password",
		})
		w := app.do(t, http.MethodPost, "/api/v1/auth/register", "", body, "application/json")
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("short password rejected", func(t *testing.T) {
		body := jsonBody(t, map[string]string{
			"name":     "Dana",
			"email":    "other@example.com",
			"password": "short",
		})
		w := app.do(t, http.MethodPost, "/api/v1/auth/register", "", body, "application/json")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestLoginEndpoint(t *testing.T) {
	app := setupApp(t)
	app.registerUser(t, "dana@example.com")

	t.Run("valid credentials", func(t *testing.T) {
		body := jsonBody(t, map[string]string{
			"email":    "dana@example.com",
			"password": "long enough password",
		})
		w := app.do(t, http.MethodPost, "/api/v1/auth/login", "", body, "application/json")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"token"`)
	})

	t.Run("wrong password", func(t *testing.T) {
		body := jsonBody(t, map[string]string{
			"email":    "dana@example.com",
			"password": "wrong password here",
		})
		w := app.do(t, http.MethodPost, "/api/v1/auth/login", "", body, "application/json")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestMeEndpoint(t *testing.T) {
	app := setupApp(t)
	_, token := app.registerUser(t, "dana@example.com")

	w := app.do(t, http.MethodGet, "/api/v1/auth/me", token, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "dana@example.com")

	w = app.do(t, http.MethodGet, "/api/v1/auth/me", "", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestProfileEndpoints(t *testing.T) {
	app := setupApp(t)
	_, token := app.registerUser(t, "dana@example.com")

	t.Run("get profile", func(t *testing.T) {
		w := app.do(t, http.MethodGet, "/api/v1/user/profile", token, nil, "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "dana@example.com")
	})

	t.Run("update name and avatar", func(t *testing.T) {
		body := jsonBody(t, map[string]string{
			"name":   "Dana Renamed",
			"avatar": "https://images.example.com/avatar.png",
		})
		w := app.do(t, http.MethodPut, "/api/v1/auth/profile", token, body, "application/json")
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Contains(t, w.Body.String(), "Dana Renamed")
	})

	t.Run("name too short", func(t *testing.T) {
		body := jsonBody(t, map[string]string{"name": "D"})
		w := app.do(t, http.MethodPut, "/api/v1/auth/profile", token, body, "application/json")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestPreferencesEndpoint(t *testing.T) {
	app := setupApp(t)
	_, token := app.registerUser(t, "dana@example.com")

	body := jsonBody(t, map[string]interface{}{
		"favoriteCategories": []string{"Thai"},
		"allergens":          []string{"peanuts"},
		"spiceLevel":         9,
	})
	w := app.do(t, http.MethodPut, "/api/v1/user/preferences", token, body, "application/json")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Data struct {
			User models.User `json:"user"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 9, resp.Data.User.Preferences.SpiceLevel)
	assert.Equal(t, models.JSONBStringArray{"peanuts"}, resp.Data.User.Preferences.Allergens)

	t.Run("out of range spice level", func(t *testing.T) {
		body := jsonBody(t, map[string]int{"spiceLevel": 11})
		w := app.do(t, http.MethodPut, "/api/v1/user/preferences", token, body, "application/json")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestStatsEndpoint(t *testing.T) {
	app := setupApp(t)
	userID, token := app.registerUser(t, "dana@example.com")
	app.seedRecipe(t, "Recipe A", &userID)
	app.seedRecipe(t, "Recipe B", &userID)

	w := app.do(t, http.MethodGet, "/api/v1/user/stats", token, nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			Stats service.UserStats `json:"stats"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Data.Stats.TotalRecipes)
	assert.Len(t, resp.Data.Stats.RecipesOverTime, 30)
}

func TestDashboardEndpoint(t *testing.T) {
	app := setupApp(t)
	userID, token := app.registerUser(t, "dana@example.com")
	app.seedRecipe(t, "Recipe A", &userID)

	w := app.do(t, http.MethodGet, "/api/v1/user/dashboard", token, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "dana@example.com")
	assert.Contains(t, w.Body.String(), "Recipe A")
}

func TestDeleteAccountEndpoint(t *testing.T) {
	app := setupApp(t)
	userID, token := app.registerUser(t, "dana@example.com")
	recipe := app.seedRecipe(t, "Kept", &userID)

	w := app.do(t, http.MethodDelete, "/api/v1/auth/account", token, nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	var users int64
	app.db.Model(&models.User{}).Count(&users)
	assert.Zero(t, users)

	var recipes int64
	app.db.Model(&models.Recipe{}).Where("id = ?", recipe.ID).Count(&recipes)
	assert.EqualValues(t, 1, recipes, "recipes outlive the account")
}
