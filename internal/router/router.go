package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/palate-app/palate-backend/internal/api"
)

// Handlers collects every route-owning handler so SetupRouter stays a pure
// wiring function.
type Handlers struct {
	Auth   *api.AuthHandler
	Recipe *api.RecipeHandler
	User   *api.UserHandler
	Health *api.HealthHandler
}

// SetupRouter configures the application routes.
func SetupRouter(h Handlers, corsOrigins []string) *gin.Engine {
	router := gin.Default()

	router.Use(cors.New(corsConfig(corsOrigins)))

	v1 := router.Group("/api/v1")

	h.Health.RegisterRoutes(v1)
	h.Auth.RegisterRoutes(v1)
	h.Recipe.RegisterRoutes(v1)
	h.User.RegisterRoutes(v1)

	return router
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Authorization", "Accept", "Origin", "X-Requested-With", "X-User-Email"},
		AllowCredentials: true,
		MaxAge:           24 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		cfg.AllowCredentials = false
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}
