package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/palate-app/palate-backend/config"
	"github.com/palate-app/palate-backend/internal/api"
	"github.com/palate-app/palate-backend/internal/router"
	"github.com/palate-app/palate-backend/internal/service"
)

// Server wires the services and handlers together and owns the HTTP listener.
type Server struct {
	cfg  *config.Config
	http *http.Server
}

// New builds the full service graph from the configuration.
func New(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) *Server {
	llmService := service.NewLLMService(cfg)
	imageService := service.NewImageService(cfg)
	authService := service.NewAuthService(db, cfg.JWTSecret)
	recipeService := service.NewRecipeService(db)
	statsService := service.NewStatsService(db, redisClient)
	generateService := service.NewGenerateService(db, llmService, imageService)

	if !llmService.Configured() {
		log.Printf("[Server] OPENAI_API_KEY not set, recipe generation disabled")
	}

	handlers := router.Handlers{
		Auth:   api.NewAuthHandler(authService, statsService),
		Recipe: api.NewRecipeHandler(generateService, recipeService, statsService, authService),
		User:   api.NewUserHandler(authService, statsService),
		Health: api.NewHealthHandler(),
	}

	engine := router.SetupRouter(handlers, cfg.CORSOrigins)

	return &Server{
		cfg: cfg,
		http: &http.Server{
			Addr:         fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort),
			Handler:      engine,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 60 * time.Second,
		},
	}
}

// Start runs the HTTP listener until Shutdown is called.
func (s *Server) Start() error {
	log.Printf("[Server] listening on %s", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return s.http.Shutdown(ctx)
}
