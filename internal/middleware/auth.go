package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/palate-app/palate-backend/internal/models"
	"github.com/palate-app/palate-backend/internal/types"
)

// EmailHeader is the identity header set by externally-authenticated callers.
const EmailHeader = "X-User-Email"

// IdentityResolver resolves a caller identity from a bearer token or an
// identity-header email, auto-provisioning unknown emails.
type IdentityResolver interface {
	ValidateToken(token string) (*types.TokenClaims, error)
	ResolveEmail(ctx context.Context, email string) (*models.User, error)
}

// AuthMiddleware requires a resolvable identity: a valid bearer token, or an
// identity-header email. Missing or invalid credentials reject the request.
func AuthMiddleware(resolver IdentityResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		if ok, err := resolve(c, resolver); !ok {
			msg := "missing authorization credentials"
			if err != nil {
				msg = err.Error()
			}
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": msg})
			c.Abort()
			return
		}
		c.Next()
	}
}

// OptionalAuthMiddleware resolves an identity when one is presented but lets
// unauthenticated requests proceed. Credential errors are swallowed.
func OptionalAuthMiddleware(resolver IdentityResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, _ = resolve(c, resolver)
		c.Next()
	}
}

// resolve stores the caller's user id in the context. The bearer token is
// consulted before the identity header.
func resolve(c *gin.Context, resolver IdentityResolver) (bool, error) {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return false, nil
		}
		claims, err := resolver.ValidateToken(parts[1])
		if err != nil {
			return false, err
		}
		c.Set("user_id", claims.UserID)
		return true, nil
	}

	if email := c.GetHeader(EmailHeader); email != "" {
		user, err := resolver.ResolveEmail(c.Request.Context(), email)
		if err != nil {
			return false, err
		}
		c.Set("user_id", user.ID)
		return true, nil
	}

	return false, nil
}
