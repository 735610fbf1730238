package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pageza/mealshare/backend/internal/logging"
	"github.com/pageza/mealshare/backend/internal/model"
	"github.com/pageza/mealshare/backend/internal/storage"
	"github.com/pageza/mealshare/backend/internal/types"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RecipeService owns recipe records inside their owners' partitions
type RecipeService struct {
	db     *gorm.DB
	blobs  storage.BlobStore
	hints  *OwnerHints
	folder string
	now    func() time.Time
}

// NewRecipeService creates a new RecipeService instance
func NewRecipeService(db *gorm.DB, blobs storage.BlobStore, hints *OwnerHints, folder string) *RecipeService {
	return &RecipeService{
		db:     db,
		blobs:  blobs,
		hints:  hints,
		folder: folder,
		now:    time.Now,
	}
}

// Create stores a new recipe under ownerID with a random 128-bit id. Images
// are uploaded first; if the insert fails they are released again.
func (s *RecipeService) Create(ctx context.Context, ownerID uuid.UUID, fields types.RecipeFields, images []storage.Upload) (*model.Recipe, error) {
	if err := s.ensureOwner(ctx, ownerID); err != nil {
		return nil, err
	}

	recipe := model.Recipe{
		OwnerID:    ownerID,
		ID:         uuid.New(),
		DatePosted: s.now().UTC(),
	}
	fields.Apply(&recipe)
	if recipe.Title == "" {
		return nil, fmt.Errorf("title is required: %w", ErrInvalidInput)
	}

	uploaded, err := s.upload(ctx, images)
	if err != nil {
		return nil, err
	}
	recipe.ImageList = uploaded

	if err := s.db.WithContext(ctx).Create(&recipe).Error; err != nil {
		s.release(ctx, recipe.AssetIDs())
		return nil, storeError(err, "failed to create recipe")
	}

	s.hints.Remember(ctx, recipe.ID, ownerID)
	logging.Ctx(ctx).Info().
		Str("owner_id", ownerID.String()).
		Str("recipe_id", recipe.ID.String()).
		Int("images", len(recipe.ImageList)).
		Msg("recipe created")
	return &recipe, nil
}

// Read returns one recipe from ownerID's partition
func (s *RecipeService) Read(ctx context.Context, ownerID, recipeID uuid.UUID) (*model.Recipe, error) {
	var recipe model.Recipe
	err := s.db.WithContext(ctx).
		Where("owner_id = ? AND id = ?", ownerID, recipeID).
		Take(&recipe).Error
	if err != nil {
		return nil, storeError(err, "failed to read recipe")
	}
	return &recipe, nil
}

// Update merges the supplied fields and reconciles the image list. Removals
// are processed before additions in the stored list; removed assets the recipe
// held are deleted from the blob store only after the update commits.
func (s *RecipeService) Update(ctx context.Context, ownerID, recipeID uuid.UUID, fields types.RecipeFields, add []storage.Upload, removeAssetIDs []string) (*model.Recipe, error) {
	if _, err := s.Read(ctx, ownerID, recipeID); err != nil {
		return nil, err
	}

	remove := make(map[string]bool, len(removeAssetIDs))
	for _, id := range removeAssetIDs {
		remove[id] = true
	}

	uploaded, err := s.upload(ctx, add)
	if err != nil {
		return nil, err
	}

	var (
		updated  model.Recipe
		released []string
	)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockRecipe(tx, ownerID, recipeID, &updated); err != nil {
			return err
		}
		fields.Apply(&updated)

		released = released[:0]
		kept := make(model.JSONList[model.Image], 0, len(updated.ImageList)+len(uploaded))
		for _, img := range updated.ImageList {
			if remove[img.AssetID] {
				released = append(released, img.AssetID)
				continue
			}
			kept = append(kept, img)
		}
		updated.ImageList = append(kept, uploaded...)

		return tx.Model(&updated).
			Select("Title", "Description", "CookingTime", "Difficulty", "Servings", "Ingredients", "Instructions", "ImageList").
			Updates(&updated).Error
	})
	if err != nil {
		s.release(ctx, assetIDs(uploaded))
		return nil, storeError(err, "failed to update recipe")
	}

	s.release(ctx, released)
	return &updated, nil
}

// Delete removes the recipe and releases its images. It reports false when
// the recipe was already gone. References held in other users' saved posts
// or like sets are left in place.
func (s *RecipeService) Delete(ctx context.Context, ownerID, recipeID uuid.UUID) (bool, error) {
	var removed model.Recipe
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockRecipe(tx, ownerID, recipeID, &removed); err != nil {
			return err
		}
		return tx.Where("owner_id = ? AND id = ?", ownerID, recipeID).Delete(&model.Recipe{}).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, storeError(err, "failed to delete recipe")
	}

	s.hints.Forget(ctx, recipeID)
	s.release(ctx, removed.AssetIDs())
	return true, nil
}

// ListByOwner scans one partition
func (s *RecipeService) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.Recipe, error) {
	if err := s.ensureOwner(ctx, ownerID); err != nil {
		return nil, err
	}
	var recipes []model.Recipe
	if err := s.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("date_posted DESC").
		Find(&recipes).Error; err != nil {
		return nil, storeError(err, "failed to list recipes")
	}
	return recipes, nil
}

func (s *RecipeService) ensureOwner(ctx context.Context, ownerID uuid.UUID) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", ownerID).Count(&count).Error; err != nil {
		return storeError(err, "failed to look up owner")
	}
	if count == 0 {
		return fmt.Errorf("owner %s: %w", ownerID, ErrNotFound)
	}
	return nil
}

func (s *RecipeService) upload(ctx context.Context, files []storage.Upload) (model.JSONList[model.Image], error) {
	images := make(model.JSONList[model.Image], 0, len(files))
	for _, f := range files {
		asset, err := s.blobs.Upload(ctx, f, storage.UploadOptions{
			Folder:     s.folder,
			ProposedID: "recipe_" + uuid.NewString(),
		})
		if err != nil {
			s.release(ctx, assetIDs(images))
			return nil, fmt.Errorf("failed to upload image: %w", err)
		}
		images = append(images, model.Image{URL: asset.URL, AssetID: asset.AssetID})
	}
	return images, nil
}

// release deletes assets, logging failures instead of returning them
func (s *RecipeService) release(ctx context.Context, ids []string) {
	for _, id := range ids {
		if err := s.blobs.Delete(ctx, id); err != nil && !errors.Is(err, storage.ErrAssetNotFound) {
			logging.Ctx(ctx).Error().Err(err).Str("asset_id", id).Msg("failed to delete image asset")
		}
	}
}

// lockRecipe reads a recipe row for update inside tx
func lockRecipe(tx *gorm.DB, ownerID, recipeID uuid.UUID, dst *model.Recipe) error {
	return tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("owner_id = ? AND id = ?", ownerID, recipeID).
		Take(dst).Error
}

func assetIDs(images model.JSONList[model.Image]) []string {
	ids := make([]string, 0, len(images))
	for _, img := range images {
		ids = append(ids, img.AssetID)
	}
	return ids
}
