package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/pageza/mealshare/backend/internal/metrics"
	"github.com/pageza/mealshare/backend/internal/model"
	"gorm.io/gorm"
)

// EngagementService keeps the like counter of a recipe in step with its
// like set. likes == |liked_by| holds after every committed transaction.
type EngagementService struct {
	db *gorm.DB
}

// NewEngagementService creates a new EngagementService instance
func NewEngagementService(db *gorm.DB) *EngagementService {
	return &EngagementService{db: db}
}

// Like adds likerID to the recipe's like set. Liking twice counts once.
func (s *EngagementService) Like(ctx context.Context, ownerID, recipeID, likerID uuid.UUID) (*model.Recipe, error) {
	return s.mutate(ctx, "like", ownerID, recipeID, func(r *model.Recipe) bool {
		return r.LikedBy.Add(likerID)
	})
}

// Unlike removes likerID from the recipe's like set if present
func (s *EngagementService) Unlike(ctx context.Context, ownerID, recipeID, likerID uuid.UUID) (*model.Recipe, error) {
	return s.mutate(ctx, "unlike", ownerID, recipeID, func(r *model.Recipe) bool {
		return r.LikedBy.Remove(likerID)
	})
}

func (s *EngagementService) mutate(ctx context.Context, op string, ownerID, recipeID uuid.UUID, fn func(*model.Recipe) bool) (*model.Recipe, error) {
	var recipe model.Recipe
	changed := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockRecipe(tx, ownerID, recipeID, &recipe); err != nil {
			return err
		}
		if changed = fn(&recipe); !changed {
			return nil
		}
		recipe.Likes = recipe.LikedBy.Len()
		return tx.Model(&recipe).Select("Likes", "LikedBy").Updates(&recipe).Error
	})
	if err != nil {
		return nil, storeError(err, "failed to "+op+" recipe")
	}
	metrics.EngagementMutations.WithLabelValues(op, metrics.Outcome(changed)).Inc()
	return &recipe, nil
}
