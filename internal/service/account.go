package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pageza/mealshare/backend/internal/logging"
	"github.com/pageza/mealshare/backend/internal/metrics"
	"github.com/pageza/mealshare/backend/internal/model"
	"github.com/pageza/mealshare/backend/internal/storage"
	"github.com/pageza/mealshare/backend/internal/types"
	"gorm.io/gorm"
)

var validate = validator.New()

// AccountService owns user records: registration, lookups, profile edits and
// the saved-posts set
type AccountService struct {
	db            *gorm.DB
	auth          *AuthService
	blobs         storage.BlobStore
	resolver      *Resolver
	profileFolder string
}

// NewAccountService creates a new AccountService instance
func NewAccountService(db *gorm.DB, auth *AuthService, blobs storage.BlobStore, resolver *Resolver, profileFolder string) *AccountService {
	return &AccountService{
		db:            db,
		auth:          auth,
		blobs:         blobs,
		resolver:      resolver,
		profileFolder: profileFolder,
	}
}

// Register creates a user. Username and email must both be unused.
func (s *AccountService) Register(ctx context.Context, req types.RegisterRequest) (*model.User, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Username == "" {
		return nil, fmt.Errorf("username is required: %w", ErrInvalidInput)
	}
	if err := validate.Var(req.Email, "required,email"); err != nil {
		return nil, fmt.Errorf("email %q: %w", req.Email, ErrInvalidInput)
	}
	if req.Password == "" {
		return nil, fmt.Errorf("password is required: %w", ErrInvalidInput)
	}

	if taken, err := s.exists(ctx, "username = ?", req.Username); err != nil {
		return nil, err
	} else if taken {
		return nil, fmt.Errorf("username %q: %w", req.Username, ErrConflict)
	}
	if taken, err := s.exists(ctx, "email = ?", req.Email); err != nil {
		return nil, err
	} else if taken {
		return nil, fmt.Errorf("email %q: %w", req.Email, ErrConflict)
	}

	hash, err := s.auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := model.User{
		ID:           uuid.New(),
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		Country:      req.Country,
		Preferences:  model.NewSet(req.Preferences...),
	}
	// the unique indexes still catch a concurrent registration
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, storeError(err, "failed to create user")
	}

	logging.Ctx(ctx).Info().Str("user_id", user.ID.String()).Str("username", user.Username).Msg("user registered")
	return &user, nil
}

// Login checks the password of the user named by identifier, a username or
// an email, and returns a session token
func (s *AccountService) Login(ctx context.Context, identifier, password string) (string, *model.User, error) {
	identifier = strings.TrimSpace(identifier)
	var user model.User
	err := s.db.WithContext(ctx).
		Where("username = ? OR email = ?", identifier, strings.ToLower(identifier)).
		Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil, ErrInvalidCredentials
	}
	if err != nil {
		return "", nil, storeError(err, "failed to load user")
	}
	if err := s.auth.CheckPassword(user.PasswordHash, password); err != nil {
		return "", nil, err
	}

	token, err := s.auth.GenerateToken(&user)
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate token: %w", err)
	}
	return token, &user, nil
}

// GetByID looks a user up by primary key
func (s *AccountService) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return s.getBy(ctx, "id = ?", id)
}

// GetByUsername looks a user up by exact username
func (s *AccountService) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	return s.getBy(ctx, "username = ?", username)
}

// GetByEmail looks a user up by email, ignoring case
func (s *AccountService) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.getBy(ctx, "email = ?", strings.ToLower(email))
}

func (s *AccountService) getBy(ctx context.Context, query string, arg any) (*model.User, error) {
	var user model.User
	if err := s.db.WithContext(ctx).Where(query, arg).Take(&user).Error; err != nil {
		return nil, storeError(err, "failed to load user")
	}
	return &user, nil
}

func (s *AccountService) exists(ctx context.Context, query string, arg any) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&model.User{}).Where(query, arg).Count(&count).Error; err != nil {
		return false, storeError(err, "failed to check user")
	}
	return count > 0, nil
}

// UpdateProfile applies the supplied edits. A new profile image replaces the
// previous one, whose asset is deleted after the record is updated.
func (s *AccountService) UpdateProfile(ctx context.Context, userID uuid.UUID, req types.UpdateProfileRequest, image *storage.Upload) (*model.User, error) {
	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	cols := []string{}
	if req.Username != nil && strings.TrimSpace(*req.Username) != user.Username {
		name := strings.TrimSpace(*req.Username)
		if name == "" {
			return nil, fmt.Errorf("username is required: %w", ErrInvalidInput)
		}
		if taken, err := s.exists(ctx, "username = ?", name); err != nil {
			return nil, err
		} else if taken {
			return nil, fmt.Errorf("username %q: %w", name, ErrConflict)
		}
		user.Username = name
		cols = append(cols, "Username")
	}
	if req.Bio != nil {
		user.Bio = *req.Bio
		cols = append(cols, "Bio")
	}
	if req.About != nil {
		user.About = *req.About
		cols = append(cols, "About")
	}

	previousAsset := ""
	if image != nil {
		asset, err := s.blobs.Upload(ctx, *image, storage.UploadOptions{
			Folder:     s.profileFolder,
			ProposedID: "profile_" + uuid.NewString(),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to upload profile image: %w", err)
		}
		previousAsset = user.ProfileImageAssetID
		user.ProfileImageURL = asset.URL
		user.ProfileImageAssetID = asset.AssetID
		cols = append(cols, "ProfileImageURL", "ProfileImageAssetID")
	}

	if len(cols) == 0 {
		return user, nil
	}
	if err := s.db.WithContext(ctx).Model(user).Select(cols).Updates(user).Error; err != nil {
		if image != nil {
			if derr := s.blobs.Delete(ctx, user.ProfileImageAssetID); derr != nil && !errors.Is(derr, storage.ErrAssetNotFound) {
				logging.Ctx(ctx).Error().Err(derr).Str("asset_id", user.ProfileImageAssetID).Msg("failed to delete uploaded profile image")
			}
		}
		return nil, storeError(err, "failed to update profile")
	}

	if previousAsset != "" {
		if err := s.blobs.Delete(ctx, previousAsset); err != nil && !errors.Is(err, storage.ErrAssetNotFound) {
			logging.Ctx(ctx).Error().Err(err).Str("asset_id", previousAsset).Msg("failed to delete old profile image")
		}
	}
	return user, nil
}

// ChangePassword replaces the credential hash after verifying oldPassword
func (s *AccountService) ChangePassword(ctx context.Context, userID uuid.UUID, oldPassword, newPassword string) error {
	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.auth.CheckPassword(user.PasswordHash, oldPassword); err != nil {
		return err
	}
	if newPassword == "" {
		return fmt.Errorf("new password is required: %w", ErrInvalidInput)
	}
	hash, err := s.auth.HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Model(user).Update("password_hash", hash).Error; err != nil {
		return storeError(err, "failed to change password")
	}
	return nil
}

// SearchUsers matches query against usernames, ignoring case
func (s *AccountService) SearchUsers(ctx context.Context, query string, limit int, viewer *uuid.UUID) ([]types.UserSummary, error) {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return []types.UserSummary{}, nil
	}
	following, err := viewerFollowing(ctx, s.db, viewer)
	if err != nil {
		return nil, err
	}

	q := s.db.WithContext(ctx).
		Where("LOWER(username) LIKE ? ESCAPE '\\'", "%"+escapeLike(query)+"%").
		Order("username")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var users []model.User
	if err := q.Find(&users).Error; err != nil {
		return nil, storeError(err, "failed to search users")
	}
	out := make([]types.UserSummary, 0, len(users))
	for i := range users {
		out = append(out, types.NewUserSummary(&users[i], following))
	}
	return out, nil
}

// BatchUserInfo returns summaries for ids in request order. Unknown ids are skipped.
func (s *AccountService) BatchUserInfo(ctx context.Context, ids []uuid.UUID, viewer *uuid.UUID) ([]types.UserSummary, error) {
	if len(ids) == 0 {
		return []types.UserSummary{}, nil
	}
	following, err := viewerFollowing(ctx, s.db, viewer)
	if err != nil {
		return nil, err
	}

	var users []model.User
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, storeError(err, "failed to load users")
	}
	byID := make(map[uuid.UUID]*model.User, len(users))
	for i := range users {
		byID[users[i].ID] = &users[i]
	}

	out := make([]types.UserSummary, 0, len(users))
	seen := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		if u, ok := byID[id]; ok && !seen[id] {
			seen[id] = true
			out = append(out, types.NewUserSummary(u, following))
		}
	}
	return out, nil
}

// ProfileWithRecipes loads a user by username together with their partition
func (s *AccountService) ProfileWithRecipes(ctx context.Context, username string) (*types.ProfileView, error) {
	user, err := s.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	recipes, err := s.resolver.ListByOwner(ctx, user)
	if err != nil {
		return nil, err
	}
	sortNewestFirst(recipes)
	return &types.ProfileView{
		User:           user,
		FollowerCount:  user.Followers.Len(),
		FollowingCount: user.Following.Len(),
		RecipeCount:    len(recipes),
		Recipes:        recipes,
	}, nil
}

// SavePost adds postID to the user's saved posts. The post must exist in some partition.
func (s *AccountService) SavePost(ctx context.Context, userID, postID uuid.UUID) (*model.User, error) {
	return s.mutateSaved(ctx, "save", userID, postID, func(saved *model.Set[uuid.UUID]) bool {
		return saved.Add(postID)
	})
}

// UnsavePost removes postID from the user's saved posts
func (s *AccountService) UnsavePost(ctx context.Context, userID, postID uuid.UUID) (*model.User, error) {
	return s.mutateSaved(ctx, "unsave", userID, postID, func(saved *model.Set[uuid.UUID]) bool {
		return saved.Remove(postID)
	})
}

func (s *AccountService) mutateSaved(ctx context.Context, op string, userID, postID uuid.UUID, fn func(*model.Set[uuid.UUID]) bool) (*model.User, error) {
	if _, err := s.resolver.FindAnywhere(ctx, postID); err != nil {
		return nil, err
	}

	var user model.User
	changed := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockUser(tx, userID, &user); err != nil {
			return err
		}
		if changed = fn(&user.SavedPosts); !changed {
			return nil
		}
		return tx.Model(&user).Select("SavedPosts").Updates(&user).Error
	})
	if err != nil {
		return nil, storeError(err, "failed to "+op+" post")
	}
	metrics.EngagementMutations.WithLabelValues(op, metrics.Outcome(changed)).Inc()
	return &user, nil
}

// SavedPosts resolves the user's saved posts. Entries whose recipe has been
// deleted are dropped from the result but left in the stored set.
func (s *AccountService) SavedPosts(ctx context.Context, userID uuid.UUID) ([]types.RecipeView, error) {
	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]types.RecipeView, 0, user.SavedPosts.Len())
	for _, id := range user.SavedPosts {
		view, err := s.resolver.FindAnywhere(ctx, id)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, *view)
	}
	return out, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
