package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is an account record. Following, Followers and SavedPosts are only
// mutated through the social and engagement services.
type User struct {
	ID                  uuid.UUID      `gorm:"type:varchar(36);primaryKey" json:"id"`
	Username            string         `gorm:"size:50;not null;uniqueIndex" json:"username"`
	Email               string         `gorm:"size:255;not null;uniqueIndex" json:"email"`
	PasswordHash        string         `gorm:"not null" json:"-"`
	Country             string         `gorm:"size:64" json:"country"`
	Bio                 string         `gorm:"type:text" json:"bio"`
	About               string         `gorm:"type:text" json:"about"`
	ProfileImageURL     string         `gorm:"size:512" json:"profile_image_url"`
	ProfileImageAssetID string         `gorm:"size:255" json:"-"`
	Preferences         Set[string]    `json:"preferences"`
	Following           Set[uuid.UUID] `json:"following"`
	Followers           Set[uuid.UUID] `json:"followers"`
	SavedPosts          Set[uuid.UUID] `json:"saved_posts"`
	CreatedAt           time.Time      `json:"created_at"`
	UpdatedAt           time.Time      `json:"updated_at"`
}

// TableName pins the table name
func (User) TableName() string {
	return "users"
}

// BeforeCreate assigns a random id when none was set
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
