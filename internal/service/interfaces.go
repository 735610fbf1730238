package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/pageza/mealshare/backend/internal/model"
	"github.com/pageza/mealshare/backend/internal/storage"
	"github.com/pageza/mealshare/backend/internal/types"
)

// IAuthService defines the token operations used by the HTTP layer
type IAuthService interface {
	GenerateToken(user *model.User) (string, error)
	ValidateToken(token string) (*types.TokenClaims, error)
}

// IAccountService defines the interface for user record operations
type IAccountService interface {
	Register(ctx context.Context, req types.RegisterRequest) (*model.User, error)
	Login(ctx context.Context, identifier, password string) (string, *model.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, req types.UpdateProfileRequest, image *storage.Upload) (*model.User, error)
	ChangePassword(ctx context.Context, userID uuid.UUID, oldPassword, newPassword string) error
	SearchUsers(ctx context.Context, query string, limit int, viewer *uuid.UUID) ([]types.UserSummary, error)
	BatchUserInfo(ctx context.Context, ids []uuid.UUID, viewer *uuid.UUID) ([]types.UserSummary, error)
	ProfileWithRecipes(ctx context.Context, username string) (*types.ProfileView, error)
	SavePost(ctx context.Context, userID, postID uuid.UUID) (*model.User, error)
	UnsavePost(ctx context.Context, userID, postID uuid.UUID) (*model.User, error)
	SavedPosts(ctx context.Context, userID uuid.UUID) ([]types.RecipeView, error)
}

// IRecipeService defines the interface for partition-local recipe operations
type IRecipeService interface {
	Create(ctx context.Context, ownerID uuid.UUID, fields types.RecipeFields, images []storage.Upload) (*model.Recipe, error)
	Read(ctx context.Context, ownerID, recipeID uuid.UUID) (*model.Recipe, error)
	Update(ctx context.Context, ownerID, recipeID uuid.UUID, fields types.RecipeFields, add []storage.Upload, removeAssetIDs []string) (*model.Recipe, error)
	Delete(ctx context.Context, ownerID, recipeID uuid.UUID) (bool, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.Recipe, error)
}

// IResolver defines cross-partition lookups
type IResolver interface {
	FindAnywhere(ctx context.Context, recipeID uuid.UUID) (*types.RecipeView, error)
	ListAll(ctx context.Context, filter ListFilter) ([]types.RecipeView, error)
}

// ISocialService defines the interface for follow graph operations
type ISocialService interface {
	Follow(ctx context.Context, a, b uuid.UUID) error
	Unfollow(ctx context.Context, a, b uuid.UUID) error
	IsFollowing(ctx context.Context, a, b uuid.UUID) (bool, error)
	Suggestions(ctx context.Context, a uuid.UUID, limit int) ([]types.UserSummary, error)
	Followers(ctx context.Context, userID uuid.UUID, viewer *uuid.UUID) ([]types.UserSummary, error)
	Following(ctx context.Context, userID uuid.UUID, viewer *uuid.UUID) ([]types.UserSummary, error)
}

// IEngagementService defines like/unlike
type IEngagementService interface {
	Like(ctx context.Context, ownerID, recipeID, likerID uuid.UUID) (*model.Recipe, error)
	Unlike(ctx context.Context, ownerID, recipeID, likerID uuid.UUID) (*model.Recipe, error)
}

// IFeedService defines the read-only aggregations
type IFeedService interface {
	FollowingFeed(ctx context.Context, viewerID uuid.UUID) ([]types.RecipeView, error)
	MostLiked(ctx context.Context, limit int) ([]types.RecipeView, error)
	MostRecent(ctx context.Context, limit int) ([]types.RecipeView, error)
	QuickPicks(ctx context.Context) ([]types.RecipeView, error)
	ByDifficulty(ctx context.Context, levels ...string) ([]types.RecipeView, error)
	Easy(ctx context.Context) ([]types.RecipeView, error)
}

var (
	_ IAuthService       = (*AuthService)(nil)
	_ IAccountService    = (*AccountService)(nil)
	_ IRecipeService     = (*RecipeService)(nil)
	_ IResolver          = (*Resolver)(nil)
	_ ISocialService     = (*SocialService)(nil)
	_ IEngagementService = (*EngagementService)(nil)
	_ IFeedService       = (*FeedService)(nil)
)
