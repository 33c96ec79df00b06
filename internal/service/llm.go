package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/palate-app/palate-backend/config"
	"github.com/palate-app/palate-backend/internal/models"
)

// GeneratedRecipe is the structure of a recipe as returned by the LLM.
type GeneratedRecipe struct {
	RecipeName   string                  `json:"recipeName"`
	Ingredients  []string                `json:"ingredients"`
	Instructions []string                `json:"instructions"`
	CuisineType  string                  `json:"cuisineType"`
	Tags         []string                `json:"tags"`
	CookingTime  string                  `json:"cookingTime"`
	Servings     int                     `json:"servings"`
	Difficulty   string                  `json:"difficulty"`
	Nutrition    *models.NutritionalInfo `json:"nutritionalInfo,omitempty"`
}

// LLMService calls an OpenAI-compatible chat-completions API for recipe
// generation and image analysis.
type LLMService struct {
	apiKey string
	apiURL string
	client *http.Client
}

// NewLLMService creates a new LLMService instance. An empty API key is
// allowed; calls then fail with ErrLLMNotConfigured.
func NewLLMService(cfg *config.Config) *LLMService {
	return &LLMService{
		apiKey: cfg.OpenAIAPIKey,
		apiURL: cfg.OpenAIAPIURL,
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// Configured reports whether a generation API key is present.
func (s *LLMService) Configured() bool {
	return s.apiKey != ""
}

type chatMessage struct {
	Role    string      `json:"role"`
	Content interface{} `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// visionPart is one element of a multi-part vision message.
type visionPart struct {
	Type     string `json:"type"`
	Text     string `json:"text,omitempty"`
	ImageURL *struct {
		URL string `json:"url"`
	} `json:"image_url,omitempty"`
}

// GenerateRecipe asks the model for a structured recipe for the given
// description, avoiding the listed allergens and scaling to the spice level.
func (s *LLMService) GenerateRecipe(ctx context.Context, description string, allergens []string, spiceLevel int) (*GeneratedRecipe, error) {
	if !s.Configured() {
		return nil, fmt.Errorf("%w: OPENAI_API_KEY is not set", ErrLLMNotConfigured)
	}

	allergenText := ""
	if len(allergens) > 0 {
		allergenText = fmt.Sprintf("Avoid these allergens: %s. ", strings.Join(allergens, ", "))
	}
	spiceText := fmt.Sprintf("Spice level: %d/10 (0=mild, 10=extremely hot). ", spiceLevel)

	prompt := fmt.Sprintf(`Create a detailed recipe based on this description: "%s"

%s%s

Please respond with a JSON object in this exact format:
{
  "recipeName": "Name of the dish",
  "ingredients": ["ingredient 1 with quantity", "ingredient 2 with quantity"],
  "instructions": ["detailed step 1", "detailed step 2"],
  "cuisineType": "Type of cuisine (e.g., Italian, Mexican, Indian)",
  "tags": ["tag1", "tag2"],
  "cookingTime": "Total time (e.g., '30 minutes')",
  "servings": 4,
  "difficulty": "Easy/Medium/Hard",
  "nutritionalInfo": {
    "calories": 450,
    "protein": 25,
    "carbs": 35,
    "fat": 18
  }
}

Requirements:
- Instructions must be clear, detailed, and actionable
- Ingredients must include specific quantities and measurements
- Tags should accurately describe the dish characteristics
- Cooking time should be realistic and include prep + cook time
- Strictly respect allergen restrictions
- Adjust spiciness and ingredients according to the spice level
- Provide reasonable nutritional estimates per serving
- Ensure the recipe is practical and achievable`, description, allergenText, spiceText)

	messages := []chatMessage{
		{
			Role:    "system",
			Content: "You are a professional chef and recipe creator with expertise in nutrition. Always respond with valid JSON only, no additional text or formatting.",
		},
		{
			Role:    "user",
			Content: prompt,
		},
	}

	content, err := s.complete(ctx, chatRequest{
		Model:       "gpt-3.5-turbo",
		Messages:    messages,
		Temperature: 0.7,
		MaxTokens:   2500,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	var recipe GeneratedRecipe
	if err := json.Unmarshal([]byte(stripCodeFences(content)), &recipe); err != nil {
		log.Printf("[LLMService] unparsable model response: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrRecipeParse, err)
	}

	if recipe.RecipeName == "" || len(recipe.Ingredients) == 0 || len(recipe.Instructions) == 0 {
		return nil, ErrInvalidRecipe
	}

	return &recipe, nil
}

// AnalyzeImage sends the image to the model's vision capability and returns a
// free-text description of the dish suitable as generation input.
func (s *LLMService) AnalyzeImage(ctx context.Context, image []byte) (string, error) {
	if !s.Configured() {
		return "", fmt.Errorf("%w: OPENAI_API_KEY is not set", ErrLLMNotConfigured)
	}

	encoded := base64.StdEncoding.EncodeToString(image)

	parts := []visionPart{
		{
			Type: "text",
			Text: `Analyze this food image and provide a detailed description that could be used to recreate this dish. Include:
1. The main dish name or type
2. Visible ingredients you can identify
3. Cooking method (if apparent)
4. Style or cuisine type
5. Any garnishes or sides visible

Respond with a clear, descriptive paragraph that would help someone recreate this exact dish.`,
		},
		{
			Type: "image_url",
			ImageURL: &struct {
				URL string `json:"url"`
			}{URL: "data:image/jpeg;base64," + encoded},
		},
	}

	content, err := s.complete(ctx, chatRequest{
		Model:     "gpt-4o",
		Messages:  []chatMessage{{Role: "user", Content: parts}},
		MaxTokens: 400,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrImageAnalysis, err)
	}

	description := strings.TrimSpace(content)
	if description == "" {
		return "", fmt.Errorf("%w: no description received", ErrImageAnalysis)
	}

	return description, nil
}

// complete performs one chat-completion round trip and returns the first
// choice's message content.
func (s *LLMService) complete(ctx context.Context, reqBody chatRequest) (string, error) {
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.apiURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", s.apiKey))

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		log.Printf("[LLMService] API request failed with status %d: %s", resp.StatusCode, string(body))
		return "", fmt.Errorf("API request failed with status %d", resp.StatusCode)
	}

	var result chatResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	if len(result.Choices) == 0 {
		return "", fmt.Errorf("no response from API")
	}

	return result.Choices[0].Message.Content, nil
}

var codeFenceRe = regexp.MustCompile("```(?:json)?\n?")

// stripCodeFences removes markdown code-fence wrapping the model sometimes
// adds around its JSON output.
func stripCodeFences(content string) string {
	return strings.TrimSpace(codeFenceRe.ReplaceAllString(content, ""))
}
