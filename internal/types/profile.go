package types

import (
	"github.com/google/uuid"
	"github.com/pageza/mealshare/backend/internal/model"
)

// UserSummary is the public card for a user, decorated for one viewer
type UserSummary struct {
	UserID          uuid.UUID `json:"user_id"`
	Username        string    `json:"username"`
	ProfileImageURL string    `json:"profile_image_url"`
	IsFollowing     bool      `json:"is_following"`
}

// NewUserSummary builds the card for u as seen by a viewer following the given set
func NewUserSummary(u *model.User, viewerFollowing model.Set[uuid.UUID]) UserSummary {
	return UserSummary{
		UserID:          u.ID,
		Username:        u.Username,
		ProfileImageURL: u.ProfileImageURL,
		IsFollowing:     viewerFollowing.Has(u.ID),
	}
}

// ProfileView is a user's public profile with their partition
type ProfileView struct {
	User           *model.User  `json:"user"`
	FollowerCount  int          `json:"follower_count"`
	FollowingCount int          `json:"following_count"`
	RecipeCount    int          `json:"recipe_count"`
	Recipes        []RecipeView `json:"recipes"`
}
