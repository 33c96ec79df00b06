package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserPreferences holds the generation defaults a user has saved.
type UserPreferences struct {
	FavoriteCategories JSONBStringArray `gorm:"type:jsonb;default:'[]'" json:"favoriteCategories"`
	Allergens          JSONBStringArray `gorm:"type:jsonb;default:'[]'" json:"allergens"`
	SpiceLevel         int              `gorm:"default:5" json:"spiceLevel"`
}

// User is an account holder. Users created implicitly from an identity header
// carry no password hash and cannot log in with credentials.
type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
	Name         string    `gorm:"size:50;not null" json:"name"`
	Email        string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"size:255" json:"-"`
	AvatarURL    string    `gorm:"size:512" json:"avatar,omitempty"`

	Preferences UserPreferences `gorm:"embedded;embeddedPrefix:pref_" json:"preferences"`
}

// BeforeCreate assigns the user identity and preference defaults.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.Preferences.SpiceLevel == 0 {
		u.Preferences.SpiceLevel = 5
	}
	return nil
}
