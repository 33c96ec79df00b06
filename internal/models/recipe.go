package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// JSONBStringArray is a custom type for handling string arrays in JSONB
type JSONBStringArray []string

// Value implements the driver.Valuer interface
func (a JSONBStringArray) Value() (driver.Value, error) {
	if len(a) == 0 {
		return "[]", nil
	}
	return json.Marshal(a)
}

// Scan implements the sql.Scanner interface
func (a *JSONBStringArray) Scan(value interface{}) error {
	if value == nil {
		*a = JSONBStringArray{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return nil
	}

	return json.Unmarshal(bytes, a)
}

// Difficulty levels a recipe may carry.
const (
	DifficultyEasy   = "Easy"
	DifficultyMedium = "Medium"
	DifficultyHard   = "Hard"
)

// Input types recording how a recipe was requested.
const (
	InputTypeText  = "text"
	InputTypeImage = "image"
)

// NutritionalInfo holds per-serving estimates provided by the generator.
type NutritionalInfo struct {
	Calories float64 `gorm:"type:float" json:"calories"`
	Protein  float64 `gorm:"type:float" json:"protein"`
	Carbs    float64 `gorm:"type:float" json:"carbs"`
	Fat      float64 `gorm:"type:float" json:"fat"`
}

// Recipe is one generated recipe. UserID is nil for recipes generated
// anonymously.
type Recipe struct {
	ID            uuid.UUID        `gorm:"type:uuid;primary_key" json:"id"`
	CreatedAt     time.Time        `json:"createdAt"`
	UpdatedAt     time.Time        `json:"updatedAt"`
	RecipeName    string           `gorm:"size:100;not null" json:"recipeName"`
	Ingredients   JSONBStringArray `gorm:"type:jsonb;not null;default:'[]'" json:"ingredients"`
	Instructions  JSONBStringArray `gorm:"type:jsonb;not null;default:'[]'" json:"instructions"`
	CuisineType   string           `gorm:"size:50" json:"cuisineType"`
	Tags          JSONBStringArray `gorm:"type:jsonb;default:'[]'" json:"tags"`
	ImageURL      string           `gorm:"size:512;not null" json:"imageUrl"`
	CookingTime   string           `gorm:"size:50" json:"cookingTime"`
	Servings      int              `json:"servings,omitempty"`
	Difficulty    string           `gorm:"size:10;default:Medium" json:"difficulty"`
	SpiceLevel    int              `json:"spiceLevel"`
	Allergens     JSONBStringArray `gorm:"type:jsonb;default:'[]'" json:"allergens"`
	OriginalInput string           `gorm:"type:text;not null" json:"originalInput"`
	InputType     string           `gorm:"size:10;not null" json:"inputType"`
	Nutrition     *NutritionalInfo `gorm:"embedded;embeddedPrefix:nutrition_" json:"nutritionalInfo,omitempty"`
	UserID        *uuid.UUID       `gorm:"type:uuid;index" json:"userId,omitempty"`
}

// BeforeCreate assigns the recipe identity.
func (r *Recipe) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// NormalizeTags lowercases and trims tags, dropping empties and duplicates.
func (r *Recipe) NormalizeTags() {
	seen := make(map[string]bool, len(r.Tags))
	normalized := make(JSONBStringArray, 0, len(r.Tags))
	for _, tag := range r.Tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		normalized = append(normalized, tag)
	}
	r.Tags = normalized
}

// Validate checks the recipe invariants before persistence. All problems are
// reported at once.
func (r *Recipe) Validate() error {
	var problems []string

	if strings.TrimSpace(r.RecipeName) == "" {
		problems = append(problems, "recipe name is required")
	} else if len(r.RecipeName) > 100 {
		problems = append(problems, "recipe name must be at most 100 characters")
	}
	if len(r.Ingredients) == 0 {
		problems = append(problems, "at least one ingredient is required")
	}
	if len(r.Instructions) == 0 {
		problems = append(problems, "at least one instruction is required")
	}
	if len(r.CuisineType) > 50 {
		problems = append(problems, "cuisine type must be at most 50 characters")
	}
	if r.ImageURL == "" {
		problems = append(problems, "image URL is required")
	}
	if r.Servings != 0 && (r.Servings < 1 || r.Servings > 20) {
		problems = append(problems, "servings must be between 1 and 20")
	}
	switch r.Difficulty {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
	default:
		problems = append(problems, "difficulty must be Easy, Medium or Hard")
	}
	if r.SpiceLevel < 0 || r.SpiceLevel > 10 {
		problems = append(problems, "spice level must be between 0 and 10")
	}
	if strings.TrimSpace(r.OriginalInput) == "" {
		problems = append(problems, "original input is required")
	}
	switch r.InputType {
	case InputTypeText, InputTypeImage:
	default:
		problems = append(problems, "input type must be text or image")
	}
	if r.Nutrition != nil {
		if r.Nutrition.Calories < 0 || r.Nutrition.Protein < 0 || r.Nutrition.Carbs < 0 || r.Nutrition.Fat < 0 {
			problems = append(problems, "nutritional values must not be negative")
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid recipe: %s", strings.Join(problems, "; "))
	}
	return nil
}
