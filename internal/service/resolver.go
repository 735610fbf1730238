package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/pageza/mealshare/backend/internal/logging"
	"github.com/pageza/mealshare/backend/internal/metrics"
	"github.com/pageza/mealshare/backend/internal/model"
	"github.com/pageza/mealshare/backend/internal/types"
	"gorm.io/gorm"
)

// ListFilter narrows a cross-partition listing. Zero value lists everything.
type ListFilter struct {
	// Owners restricts the scan to these partitions when non-empty
	Owners []uuid.UUID
	// ExcludeOwners skips these partitions
	ExcludeOwners []uuid.UUID
	// Difficulties keeps recipes whose difficulty matches one of these, ignoring case
	Difficulties []string
	// Match is applied to every record after the other filters
	Match func(*model.Recipe) bool
}

// Resolver answers lookups across owner partitions without a global index on
// recipe id. Partitions are visited in ascending owner id order and records
// inside a partition in ascending recipe id order; that is the scan order
// callers see.
type Resolver struct {
	db    *gorm.DB
	hints *OwnerHints
}

// NewResolver creates a resolver. hints may be nil.
func NewResolver(db *gorm.DB, hints *OwnerHints) *Resolver {
	return &Resolver{db: db, hints: hints}
}

// owners enumerates partitions with the account fields used for decoration
func (r *Resolver) owners(ctx context.Context, filter ListFilter) ([]model.User, error) {
	q := r.db.WithContext(ctx).
		Select("id", "username", "profile_image_url").
		Order("id")
	if len(filter.Owners) > 0 {
		q = q.Where("id IN ?", filter.Owners)
	}
	if len(filter.ExcludeOwners) > 0 {
		q = q.Where("id NOT IN ?", filter.ExcludeOwners)
	}
	var owners []model.User
	if err := q.Find(&owners).Error; err != nil {
		return nil, storeError(err, "failed to enumerate owners")
	}
	return owners, nil
}

// probe reads recipeID from one partition. found is false when the partition
// does not hold it.
func (r *Resolver) probe(ctx context.Context, ownerID, recipeID uuid.UUID) (*model.Recipe, bool, error) {
	var recipe model.Recipe
	err := r.db.WithContext(ctx).
		Where("owner_id = ? AND id = ?", ownerID, recipeID).
		Take(&recipe).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return &recipe, true, nil
}

// FindAnywhere locates recipeID in whichever partition holds it
func (r *Resolver) FindAnywhere(ctx context.Context, recipeID uuid.UUID) (*types.RecipeView, error) {
	if ownerID, ok := r.hints.Lookup(ctx, recipeID); ok {
		if view, ok := r.findWithHint(ctx, ownerID, recipeID); ok {
			metrics.OwnerHintLookups.WithLabelValues("hit").Inc()
			return view, nil
		}
		metrics.OwnerHintLookups.WithLabelValues("stale").Inc()
		r.hints.Forget(ctx, recipeID)
	}

	owners, err := r.owners(ctx, ListFilter{})
	if err != nil {
		return nil, err
	}
	for i := range owners {
		owner := &owners[i]
		recipe, found, err := r.probe(ctx, owner.ID, recipeID)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			r.skipPartition(ctx, "find", owner.ID, err)
			continue
		}
		if found {
			r.hints.Remember(ctx, recipeID, owner.ID)
			view := types.NewRecipeView(*recipe, owner)
			return &view, nil
		}
	}
	return nil, ErrNotFound
}

func (r *Resolver) findWithHint(ctx context.Context, ownerID, recipeID uuid.UUID) (*types.RecipeView, bool) {
	var owner model.User
	if err := r.db.WithContext(ctx).
		Select("id", "username", "profile_image_url").
		Where("id = ?", ownerID).
		Take(&owner).Error; err != nil {
		return nil, false
	}
	recipe, found, err := r.probe(ctx, ownerID, recipeID)
	if err != nil || !found {
		return nil, false
	}
	view := types.NewRecipeView(*recipe, &owner)
	return &view, true
}

// ListAll scans every partition selected by filter. A partition that fails
// to read is logged and skipped; the rest of the scan still returns.
func (r *Resolver) ListAll(ctx context.Context, filter ListFilter) ([]types.RecipeView, error) {
	owners, err := r.owners(ctx, filter)
	if err != nil {
		return nil, err
	}

	levels := make([]string, 0, len(filter.Difficulties))
	for _, d := range filter.Difficulties {
		if d = strings.ToLower(strings.TrimSpace(d)); d != "" {
			levels = append(levels, d)
		}
	}

	views := make([]types.RecipeView, 0)
	for i := range owners {
		owner := &owners[i]
		recipes, err := r.scanPartition(ctx, owner.ID, levels)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			r.skipPartition(ctx, "list", owner.ID, err)
			continue
		}
		for j := range recipes {
			if filter.Match != nil && !filter.Match(&recipes[j]) {
				continue
			}
			views = append(views, types.NewRecipeView(recipes[j], owner))
		}
	}
	return views, nil
}

// ListByOwner returns one partition, decorated with its owner
func (r *Resolver) ListByOwner(ctx context.Context, owner *model.User) ([]types.RecipeView, error) {
	recipes, err := r.scanPartition(ctx, owner.ID, nil)
	if err != nil {
		return nil, storeError(err, "failed to list recipes")
	}
	views := make([]types.RecipeView, 0, len(recipes))
	for i := range recipes {
		views = append(views, types.NewRecipeView(recipes[i], owner))
	}
	return views, nil
}

func (r *Resolver) scanPartition(ctx context.Context, ownerID uuid.UUID, levels []string) ([]model.Recipe, error) {
	q := r.db.WithContext(ctx).Where("owner_id = ?", ownerID)
	if len(levels) > 0 {
		q = q.Where("LOWER(difficulty) IN ?", levels)
	}
	var recipes []model.Recipe
	if err := q.Order("id").Find(&recipes).Error; err != nil {
		return nil, err
	}
	return recipes, nil
}

func (r *Resolver) skipPartition(ctx context.Context, operation string, ownerID uuid.UUID, err error) {
	metrics.PartitionScanFailures.WithLabelValues(operation).Inc()
	logging.Ctx(ctx).Warn().
		Err(err).
		Str("operation", operation).
		Str("owner_id", ownerID.String()).
		Msg("skipping unreadable partition")
}
