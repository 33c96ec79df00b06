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

// AuthHandler handles registration, login and account self-service.
type AuthHandler struct {
	authService  *service.AuthService
	statsService *service.StatsService
}

// NewAuthHandler creates a new AuthHandler instance.
func NewAuthHandler(authService *service.AuthService, statsService *service.StatsService) *AuthHandler {
	return &AuthHandler{authService: authService, statsService: statsService}
}

// RegisterRoutes registers the auth routes.
func (h *AuthHandler) RegisterRoutes(router *gin.RouterGroup) {
	auth := router.Group("/auth")
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
		auth.GET("/me", middleware.AuthMiddleware(h.authService), h.Me)
		auth.PUT("/profile", middleware.AuthMiddleware(h.authService), h.UpdateProfile)
		auth.DELETE("/account", middleware.AuthMiddleware(h.authService), h.DeleteAccount)
	}
}

type registerRequest struct {
	Name     string `json:"name" binding:"required,min=2,max=50"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Register creates an account and returns a signed token alongside the user.
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "name, email and password (min 8 characters) are required")
		return
	}

	user, token, err := h.authService.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	switch {
	case errors.Is(err, service.ErrEmailTaken):
		respondError(c, http.StatusConflict, "an account with this email already exists")
		return
	case errors.Is(err, service.ErrValidation):
		respondError(c, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		log.Printf("[AuthHandler] registration failed: %v", err)
		respondError(c, http.StatusInternalServerError, "failed to create account")
		return
	}

	respondMessage(c, http.StatusCreated, "Account created successfully", gin.H{
		"user":  user,
		"token": token,
	})
}

// Login verifies credentials and issues a token.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "email and password are required")
		return
	}

	user, token, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		respondError(c, http.StatusUnauthorized, "invalid email or password")
		return
	case err != nil:
		log.Printf("[AuthHandler] login failed: %v", err)
		respondError(c, http.StatusInternalServerError, "failed to log in")
		return
	}

	respondData(c, http.StatusOK, gin.H{
		"user":  user,
		"token": token,
	})
}

// Me returns the authenticated user's account.
func (h *AuthHandler) Me(c *gin.Context) {
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

type updateProfileRequest struct {
	Name   *string `json:"name"`
	Avatar *string `json:"avatar"`
}

// UpdateProfile changes the display name and/or avatar URL.
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "user not authenticated")
		return
	}

	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.authService.UpdateProfile(c.Request.Context(), userID, service.ProfileUpdate{
		Name:   req.Name,
		Avatar: req.Avatar,
	})
	switch {
	case errors.Is(err, service.ErrValidation):
		respondError(c, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, gorm.ErrRecordNotFound):
		respondError(c, http.StatusNotFound, "user not found")
		return
	case err != nil:
		log.Printf("[AuthHandler] profile update failed: %v", err)
		respondError(c, http.StatusInternalServerError, "failed to update profile")
		return
	}

	respondMessage(c, http.StatusOK, "Profile updated successfully", gin.H{"user": user})
}

// DeleteAccount removes the account. Generated recipes are kept but detached
// from the user.
func (h *AuthHandler) DeleteAccount(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "user not authenticated")
		return
	}

	if err := h.authService.DeleteAccount(c.Request.Context(), userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusNotFound, "user not found")
			return
		}
		log.Printf("[AuthHandler] account deletion failed: %v", err)
		respondError(c, http.StatusInternalServerError, "failed to delete account")
		return
	}

	h.statsService.Invalidate(c.Request.Context(), userID)
	respondMessage(c, http.StatusOK, "Account deleted successfully", nil)
}
