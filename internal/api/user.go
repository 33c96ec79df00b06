package api

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/palate-app/palate-backend/internal/middleware"
	"github.com/palate-app/palate-backend/internal/service"
)

// UserHandler serves the profile view, preferences and the stats aggregates.
type UserHandler struct {
	authService  *service.AuthService
	statsService *service.StatsService
}

// NewUserHandler creates a new UserHandler instance.
func NewUserHandler(authService *service.AuthService, statsService *service.StatsService) *UserHandler {
	return &UserHandler{
		authService:  authService,
		statsService: statsService,
	}
}

// RegisterRoutes registers the user routes. All of them require auth.
func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	user := router.Group("/user", middleware.AuthMiddleware(h.authService))
	{
		user.GET("/profile", h.GetProfile)
		user.GET("/stats", h.GetStats)
		user.GET("/dashboard", h.GetDashboard)
		user.PUT("/preferences", h.UpdatePreferences)
	}
}

// GetProfile returns the caller's account.
func (h *UserHandler) GetProfile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "user not authenticated")
		return
	}

	user, err := h.authService.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		respondError(c, http.StatusNotFound, "user not found")
		return
	}

	respondData(c, http.StatusOK, gin.H{"user": user})
}

type updatePreferencesRequest struct {
	FavoriteCategories *[]string `json:"favoriteCategories"`
	Allergens          *[]string `json:"allergens"`
	SpiceLevel         *int      `json:"spiceLevel"`
}

// UpdatePreferences changes the default generation preferences.
func (h *UserHandler) UpdatePreferences(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "user not authenticated")
		return
	}

	var req updatePreferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.authService.UpdatePreferences(c.Request.Context(), userID, service.PreferencesUpdate{
		FavoriteCategories: req.FavoriteCategories,
		Allergens:          req.Allergens,
		SpiceLevel:         req.SpiceLevel,
	})
	switch {
	case errors.Is(err, service.ErrValidation):
		respondError(c, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, gorm.ErrRecordNotFound):
		respondError(c, http.StatusNotFound, "user not found")
		return
	case err != nil:
		log.Printf("[UserHandler] preferences update failed: %v", err)
		respondError(c, http.StatusInternalServerError, "failed to update preferences")
		return
	}

	respondMessage(c, http.StatusOK, "Preferences updated successfully", gin.H{"user": user})
}

// GetStats returns the aggregate stats view for the caller.
func (h *UserHandler) GetStats(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "user not authenticated")
		return
	}

	stats, err := h.statsService.GetUserStats(c.Request.Context(), userID)
	if err != nil {
		log.Printf("[UserHandler] stats failed: %v", err)
		respondError(c, http.StatusInternalServerError, "failed to compute stats")
		return
	}

	respondData(c, http.StatusOK, gin.H{"stats": stats})
}

// GetDashboard returns the combined profile-plus-activity view.
func (h *UserHandler) GetDashboard(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "user not authenticated")
		return
	}

	user, err := h.authService.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		respondError(c, http.StatusNotFound, "user not found")
		return
	}

	dashboard, err := h.statsService.GetDashboard(c.Request.Context(), user)
	if err != nil {
		log.Printf("[UserHandler] dashboard failed: %v", err)
		respondError(c, http.StatusInternalServerError, "failed to build dashboard")
		return
	}

	respondData(c, http.StatusOK, gin.H{"dashboard": dashboard})
}
