package types

import (
	"github.com/google/uuid"
	"github.com/pageza/mealshare/backend/internal/model"
)

// RecipeView is a recipe decorated at read time with its owner's live
// account fields. Nothing here is stored on the recipe record.
type RecipeView struct {
	model.Recipe
	Author          string    `json:"author"`
	AuthorID        uuid.UUID `json:"author_id"`
	ProfileImageURL string    `json:"profile_image_url"`
}

// NewRecipeView decorates r with owner's username and profile image
func NewRecipeView(r model.Recipe, owner *model.User) RecipeView {
	return RecipeView{
		Recipe:          r,
		Author:          owner.Username,
		AuthorID:        owner.ID,
		ProfileImageURL: owner.ProfileImageURL,
	}
}

// RecipeFields is the normalised recipe input. Nil fields are left unchanged
// on update.
type RecipeFields struct {
	Title        *string `form:"title" json:"title"`
	Description  *string `form:"description" json:"description"`
	CookingTime  *string `form:"cooking_time" json:"cooking_time"`
	Difficulty   *string `form:"difficulty" json:"difficulty"`
	Servings     *string `form:"servings" json:"servings"`
	Ingredients  *string `form:"ingredients" json:"ingredients"`
	Instructions *string `form:"instructions" json:"instructions"`
}

// Apply copies every supplied field onto r
func (f RecipeFields) Apply(r *model.Recipe) {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&r.Title, f.Title)
	set(&r.Description, f.Description)
	set(&r.CookingTime, f.CookingTime)
	set(&r.Difficulty, f.Difficulty)
	set(&r.Servings, f.Servings)
	set(&r.Ingredients, f.Ingredients)
	set(&r.Instructions, f.Instructions)
}

// UpdateRecipeRequest carries field edits plus the asset ids to drop.
// New images arrive as multipart files next to it.
type UpdateRecipeRequest struct {
	RecipeFields
	OwnerID        string   `form:"owner_id" json:"owner_id" binding:"omitempty,uuid"`
	RemoveAssetIDs []string `form:"remove_asset_ids" json:"remove_asset_ids"`
}
