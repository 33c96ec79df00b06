package middleware_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/palate-app/palate-backend/internal/middleware"
	"github.com/palate-app/palate-backend/internal/mocks"
	"github.com/palate-app/palate-backend/internal/models"
	"github.com/palate-app/palate-backend/internal/types"
)

func echoUserID(c *gin.Context) {
	if id, exists := c.Get("user_id"); exists {
		c.JSON(http.StatusOK, gin.H{"user_id": id.(uuid.UUID).String()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user_id": nil})
}

func performRequest(handler gin.HandlerFunc, headers map[string]string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/protected", handler, echoUserID)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	userID := uuid.New()

	t.Run("valid bearer token", func(t *testing.T) {
		auth := new(mocks.MockAuthService)
		auth.On("ValidateToken", "good-token").Return(&types.TokenClaims{UserID: userID}, nil)

		w := performRequest(middleware.AuthMiddleware(auth), map[string]string{
			"Authorization": "Bearer good-token",
		})

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), userID.String())
	})

	t.Run("invalid token", func(t *testing.T) {
		auth := new(mocks.MockAuthService)
		auth.On("ValidateToken", "bad-token").Return(nil, errors.New("token is malformed"))

		w := performRequest(middleware.AuthMiddleware(auth), map[string]string{
			"Authorization": "Bearer bad-token",
		})

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), `"success":false`)
	})

	t.Run("malformed authorization header", func(t *testing.T) {
		auth := new(mocks.MockAuthService)

		w := performRequest(middleware.AuthMiddleware(auth), map[string]string{
			"Authorization": "Basic dXNlcjpwYXNz",
		})

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		auth.AssertNotCalled(t, "ValidateToken")
	})

	t.Run("identity header resolves", func(t *testing.T) {
		auth := new(mocks.MockAuthService)
		auth.On("ResolveEmail", mock.Anything, "dana@example.com").
			Return(&models.User{ID: userID}, nil)

		w := performRequest(middleware.AuthMiddleware(auth), map[string]string{
			middleware.EmailHeader: "dana@example.com",
		})

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), userID.String())
	})

	t.Run("bearer token wins over identity header", func(t *testing.T) {
		auth := new(mocks.MockAuthService)
		auth.On("ValidateToken", "good-token").Return(&types.TokenClaims{UserID: userID}, nil)

		w := performRequest(middleware.AuthMiddleware(auth), map[string]string{
			"Authorization":        "Bearer good-token",
			middleware.EmailHeader: "dana@example.com",
		})

		assert.Equal(t, http.StatusOK, w.Code)
		auth.AssertNotCalled(t, "ResolveEmail")
	})

	t.Run("no credentials", func(t *testing.T) {
		auth := new(mocks.MockAuthService)

		w := performRequest(middleware.AuthMiddleware(auth), nil)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestOptionalAuthMiddleware(t *testing.T) {
	userID := uuid.New()

	t.Run("no credentials proceeds anonymously", func(t *testing.T) {
		auth := new(mocks.MockAuthService)

		w := performRequest(middleware.OptionalAuthMiddleware(auth), nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"user_id":null`)
	})

	t.Run("invalid token proceeds anonymously", func(t *testing.T) {
		auth := new(mocks.MockAuthService)
		auth.On("ValidateToken", "bad-token").Return(nil, errors.New("token is malformed"))

		w := performRequest(middleware.OptionalAuthMiddleware(auth), map[string]string{
			"Authorization": "Bearer bad-token",
		})

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"user_id":null`)
	})

	t.Run("valid token attaches identity", func(t *testing.T) {
		auth := new(mocks.MockAuthService)
		auth.On("ValidateToken", "good-token").Return(&types.TokenClaims{UserID: userID}, nil)

		w := performRequest(middleware.OptionalAuthMiddleware(auth), map[string]string{
			"Authorization": "Bearer good-token",
		})

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), userID.String())
	})
}
