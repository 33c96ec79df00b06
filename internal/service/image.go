package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math/rand"
	"net/http"
	"net/url"
	"time"

	"github.com/palate-app/palate-backend/config"
)

// ImageService finds an illustrative photograph for a generated recipe using
// the Unsplash search API. Lookups never fail: every tier of the search
// degrades to the next, terminating in a deterministic placeholder URL.
type ImageService struct {
	accessKey string
	apiURL    string
	client    *http.Client
}

// NewImageService creates a new ImageService instance. An empty access key
// makes every lookup resolve to the placeholder.
func NewImageService(cfg *config.Config) *ImageService {
	return &ImageService{
		accessKey: cfg.UnsplashAccessKey,
		apiURL:    cfg.UnsplashAPIURL,
		client: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

type searchResponse struct {
	Results []struct {
		URLs struct {
			Regular string `json:"regular"`
		} `json:"urls"`
	} `json:"results"`
}

// SearchRecipeImage returns a photograph URL for the recipe. Tiers: full
// query with name and cuisine, cuisine-only query, generic food query,
// placeholder. This never returns an empty string.
func (s *ImageService) SearchRecipeImage(ctx context.Context, recipeName, cuisineType string) string {
	if s.accessKey == "" {
		log.Printf("[ImageService] Unsplash access key not configured, using placeholder image")
		return PlaceholderImageURL(recipeName)
	}

	query := fmt.Sprintf("%s %s food dish delicious", recipeName, cuisineType)
	photos, err := s.search(ctx, query, 10)
	if err != nil {
		log.Printf("[ImageService] search failed: %v", err)
		return PlaceholderImageURL(recipeName)
	}
	if len(photos) > 0 {
		// Any of the top few results is acceptable.
		n := len(photos)
		if n > 5 {
			n = 5
		}
		return photos[rand.Intn(n)]
	}

	photos, err = s.search(ctx, fmt.Sprintf("%s food delicious", cuisineType), 5)
	if err == nil && len(photos) > 0 {
		return photos[0]
	}

	photos, err = s.search(ctx, "delicious food", 5)
	if err == nil && len(photos) > 0 {
		return photos[0]
	}

	return PlaceholderImageURL(recipeName)
}

func (s *ImageService) search(ctx context.Context, query string, perPage int) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", s.apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	q := req.URL.Query()
	q.Set("query", query)
	q.Set("per_page", fmt.Sprintf("%d", perPage))
	q.Set("orientation", "landscape")
	q.Set("content_filter", "high")
	req.URL.RawQuery = q.Encode()
	req.Header.Set("Authorization", "Client-ID "+s.accessKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API request failed with status %d", resp.StatusCode)
	}

	var result searchResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	urls := make([]string, 0, len(result.Results))
	for _, r := range result.Results {
		if r.URLs.Regular != "" {
			urls = append(urls, r.URLs.Regular)
		}
	}
	return urls, nil
}

// PlaceholderImageURL is the terminal image fallback. It is a pure function of
// the recipe name.
func PlaceholderImageURL(recipeName string) string {
	return "https://via.placeholder.com/800x600/1f2937/f97316?text=" + url.QueryEscape(recipeName)
}
