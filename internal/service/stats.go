package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/palate-app/palate-backend/internal/models"
)

const statsCacheTTL = 5 * time.Minute

// DailyCount is one entry of the recipes-over-time series.
type DailyCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// UserStats aggregates a user's stored recipes.
type UserStats struct {
	TotalRecipes        int             `json:"totalRecipes"`
	TopCuisines         map[string]int  `json:"topCuisines"`
	FavoriteIngredients []string        `json:"favoriteIngredients"`
	AverageSpiceLevel   float64         `json:"averageSpiceLevel"`
	RecentRecipes       []models.Recipe `json:"recentRecipes"`
	RecipesOverTime     []DailyCount    `json:"recipesOverTime"`
}

// DashboardData combines profile info with quick activity stats.
type DashboardData struct {
	User struct {
		Name        string                 `json:"name"`
		Email       string                 `json:"email"`
		Avatar      string                 `json:"avatar,omitempty"`
		Preferences models.UserPreferences `json:"preferences"`
	} `json:"user"`
	Stats struct {
		TotalRecipes    int            `json:"totalRecipes"`
		WeeklyActivity  int            `json:"weeklyActivity"`
		MonthlyActivity int            `json:"monthlyActivity"`
		TopCuisines     map[string]int `json:"topCuisines"`
	} `json:"stats"`
	RecentRecipes []models.Recipe `json:"recentRecipes"`
}

// StatsService computes per-user recipe statistics. Results are cached in
// Redis for a short TTL when a client is available; the service works without
// one.
type StatsService struct {
	db    *gorm.DB
	redis *redis.Client
}

// NewStatsService creates a new StatsService instance. redisClient may be nil.
func NewStatsService(db *gorm.DB, redisClient *redis.Client) *StatsService {
	return &StatsService{db: db, redis: redisClient}
}

// GetUserStats returns the aggregate statistics for one user.
func (s *StatsService) GetUserStats(ctx context.Context, userID uuid.UUID) (*UserStats, error) {
	if cached := s.getCached(ctx, userID); cached != nil {
		return cached, nil
	}

	recipes, err := s.userRecipes(ctx, userID)
	if err != nil {
		return nil, err
	}

	stats := &UserStats{
		TotalRecipes:        len(recipes),
		TopCuisines:         cuisineCounts(recipes),
		FavoriteIngredients: topIngredients(recipes, 10),
		AverageSpiceLevel:   averageSpiceLevel(recipes),
		RecentRecipes:       firstN(recipes, 10),
		RecipesOverTime:     recipesOverTime(recipes, 30, time.Now()),
	}

	s.putCached(ctx, userID, stats)
	return stats, nil
}

// GetDashboard returns the combined dashboard view for one user.
func (s *StatsService) GetDashboard(ctx context.Context, user *models.User) (*DashboardData, error) {
	recipes, err := s.userRecipes(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	data := &DashboardData{}
	data.User.Name = user.Name
	data.User.Email = user.Email
	data.User.Avatar = user.AvatarURL
	data.User.Preferences = user.Preferences
	data.Stats.TotalRecipes = len(recipes)
	data.Stats.WeeklyActivity = countSince(recipes, time.Now().AddDate(0, 0, -7))
	data.Stats.MonthlyActivity = countSince(recipes, time.Now().AddDate(0, 0, -30))
	data.Stats.TopCuisines = topN(cuisineCounts(recipes), 5)
	data.RecentRecipes = firstN(recipes, 5)

	return data, nil
}

// Invalidate drops the cached stats for a user. Called when the user's recipe
// set changes.
func (s *StatsService) Invalidate(ctx context.Context, userID uuid.UUID) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Del(ctx, statsCacheKey(userID)).Err(); err != nil {
		log.Printf("[StatsService] failed to invalidate cache: %v", err)
	}
}

func (s *StatsService) userRecipes(ctx context.Context, userID uuid.UUID) ([]models.Recipe, error) {
	var recipes []models.Recipe
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&recipes).Error
	if err != nil {
		return nil, err
	}
	return recipes, nil
}

func statsCacheKey(userID uuid.UUID) string {
	return fmt.Sprintf("user:stats:%s", userID)
}

func (s *StatsService) getCached(ctx context.Context, userID uuid.UUID) *UserStats {
	if s.redis == nil {
		return nil
	}
	data, err := s.redis.Get(ctx, statsCacheKey(userID)).Bytes()
	if err != nil {
		return nil
	}
	var stats UserStats
	if err := json.Unmarshal(data, &stats); err != nil {
		return nil
	}
	return &stats
}

func (s *StatsService) putCached(ctx context.Context, userID uuid.UUID, stats *UserStats) {
	if s.redis == nil {
		return
	}
	data, err := json.Marshal(stats)
	if err != nil {
		return
	}
	if err := s.redis.Set(ctx, statsCacheKey(userID), data, statsCacheTTL).Err(); err != nil {
		log.Printf("[StatsService] failed to cache stats: %v", err)
	}
}

func cuisineCounts(recipes []models.Recipe) map[string]int {
	counts := make(map[string]int)
	for _, r := range recipes {
		counts[r.CuisineType]++
	}
	return counts
}

// topIngredients returns the n most frequent normalized ingredient strings.
// Ties keep first-encountered order.
func topIngredients(recipes []models.Recipe, n int) []string {
	counts := make(map[string]int)
	var order []string
	for _, r := range recipes {
		for _, ing := range r.Ingredients {
			normalized := strings.ToLower(strings.TrimSpace(ing))
			if _, seen := counts[normalized]; !seen {
				order = append(order, normalized)
			}
			counts[normalized]++
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})

	if len(order) > n {
		order = order[:n]
	}
	return order
}

func averageSpiceLevel(recipes []models.Recipe) float64 {
	if len(recipes) == 0 {
		return 0
	}
	total := 0
	for _, r := range recipes {
		total += r.SpiceLevel
	}
	avg := float64(total) / float64(len(recipes))
	return math.Round(avg*10) / 10
}

// recipesOverTime buckets creations by calendar day for the last `days` days,
// oldest first, including zero-count days.
func recipesOverTime(recipes []models.Recipe, days int, now time.Time) []DailyCount {
	series := make([]DailyCount, 0, days)
	index := make(map[string]int, days)
	for i := days - 1; i >= 0; i-- {
		date := now.AddDate(0, 0, -i).Format("2006-01-02")
		index[date] = len(series)
		series = append(series, DailyCount{Date: date})
	}

	for _, r := range recipes {
		date := r.CreatedAt.Format("2006-01-02")
		if i, ok := index[date]; ok {
			series[i].Count++
		}
	}
	return series
}

func countSince(recipes []models.Recipe, since time.Time) int {
	count := 0
	for _, r := range recipes {
		if r.CreatedAt.After(since) {
			count++
		}
	}
	return count
}

func firstN(recipes []models.Recipe, n int) []models.Recipe {
	if len(recipes) > n {
		return recipes[:n]
	}
	return recipes
}

func topN(counts map[string]int, n int) map[string]int {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})
	if len(keys) > n {
		keys = keys[:n]
	}
	top := make(map[string]int, len(keys))
	for _, k := range keys {
		top[k] = counts[k]
	}
	return top
}
