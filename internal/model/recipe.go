package model

import (
	"time"

	"github.com/google/uuid"
)

// Image is one stored asset attached to a recipe
type Image struct {
	URL     string `json:"url"`
	AssetID string `json:"asset_id"`
}

// Recipe is a record in its owner's partition. The primary key is the
// two-level partition key (owner_id, id); id alone is not indexed.
type Recipe struct {
	OwnerID      uuid.UUID       `gorm:"type:varchar(36);primaryKey" json:"owner_id"`
	ID           uuid.UUID       `gorm:"type:varchar(36);primaryKey" json:"id"`
	Title        string          `gorm:"size:255" json:"title"`
	Description  string          `gorm:"type:text" json:"description"`
	CookingTime  string          `gorm:"size:64" json:"cooking_time"`
	Difficulty   string          `gorm:"size:32" json:"difficulty"`
	Servings     string          `gorm:"size:32" json:"servings"`
	Ingredients  string          `gorm:"type:text" json:"ingredients"`
	Instructions string          `gorm:"type:text" json:"instructions"`
	DatePosted   time.Time       `gorm:"index" json:"date_posted"`
	ImageList    JSONList[Image] `json:"image_list"`
	Likes        int             `gorm:"not null;default:0" json:"likes"`
	LikedBy      Set[uuid.UUID]  `json:"liked_by"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// TableName pins the table name
func (Recipe) TableName() string {
	return "recipes"
}

// PostedAt returns the timestamp used for recency ordering: date_posted, then
// the row creation time for records written before date_posted existed.
func (r *Recipe) PostedAt() time.Time {
	if !r.DatePosted.IsZero() {
		return r.DatePosted
	}
	return r.CreatedAt
}

// AssetIDs lists the blob asset ids referenced by the recipe
func (r *Recipe) AssetIDs() []string {
	ids := make([]string, 0, len(r.ImageList))
	for _, img := range r.ImageList {
		ids = append(ids, img.AssetID)
	}
	return ids
}
