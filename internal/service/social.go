package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/pageza/mealshare/backend/internal/logging"
	"github.com/pageza/mealshare/backend/internal/model"
	"github.com/pageza/mealshare/backend/internal/types"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SocialService maintains the follow graph. Every edge is stored twice, in
// a.Following and in b.Followers, and both copies change in one transaction.
type SocialService struct {
	db *gorm.DB
}

// NewSocialService creates a new SocialService instance
func NewSocialService(db *gorm.DB) *SocialService {
	return &SocialService{db: db}
}

// Follow adds the edge a -> b. Following an already followed user is a no-op.
func (s *SocialService) Follow(ctx context.Context, a, b uuid.UUID) error {
	return s.mutateEdge(ctx, "follow", a, b, func(follower, followee *model.User) bool {
		added := follower.Following.Add(followee.ID)
		return followee.Followers.Add(follower.ID) || added
	})
}

// Unfollow removes the edge a -> b. Removing a missing edge is a no-op.
func (s *SocialService) Unfollow(ctx context.Context, a, b uuid.UUID) error {
	return s.mutateEdge(ctx, "unfollow", a, b, func(follower, followee *model.User) bool {
		removed := follower.Following.Remove(followee.ID)
		return followee.Followers.Remove(follower.ID) || removed
	})
}

// mutateEdge locks both user rows in ascending id order, applies fn and
// writes both sides back only if fn changed something.
func (s *SocialService) mutateEdge(ctx context.Context, op string, a, b uuid.UUID, fn func(follower, followee *model.User) bool) error {
	if a == b {
		return fmt.Errorf("cannot %s yourself: %w", op, ErrInvalidInput)
	}

	changed := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ids := []uuid.UUID{a, b}
		sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })

		locked := make(map[uuid.UUID]*model.User, 2)
		for _, id := range ids {
			var u model.User
			if err := lockUser(tx, id, &u); err != nil {
				return storeError(err, fmt.Sprintf("user %s", id))
			}
			locked[id] = &u
		}

		follower, followee := locked[a], locked[b]
		if changed = fn(follower, followee); !changed {
			return nil
		}
		if err := tx.Model(follower).Select("Following").Updates(follower).Error; err != nil {
			return err
		}
		return tx.Model(followee).Select("Followers").Updates(followee).Error
	})
	if err != nil {
		return err
	}

	logging.Ctx(ctx).Debug().
		Str("op", op).
		Str("follower", a.String()).
		Str("followee", b.String()).
		Bool("changed", changed).
		Msg("follow graph updated")
	return nil
}

// IsFollowing reports whether a follows b
func (s *SocialService) IsFollowing(ctx context.Context, a, b uuid.UUID) (bool, error) {
	var u model.User
	if err := s.db.WithContext(ctx).Select("id", "following").Where("id = ?", a).Take(&u).Error; err != nil {
		return false, storeError(err, "failed to load user")
	}
	return u.Following.Has(b), nil
}

// Suggestions returns up to limit users that a does not follow yet, never a
// itself. The sample is taken in username order.
func (s *SocialService) Suggestions(ctx context.Context, a uuid.UUID, limit int) ([]types.UserSummary, error) {
	var viewer model.User
	if err := s.db.WithContext(ctx).Where("id = ?", a).Take(&viewer).Error; err != nil {
		return nil, storeError(err, "failed to load user")
	}

	if limit <= 0 {
		return []types.UserSummary{}, nil
	}
	exclude := append([]uuid.UUID{a}, viewer.Following...)
	var candidates []model.User
	if err := s.db.WithContext(ctx).
		Where("id NOT IN ?", exclude).
		Order("username").
		Limit(limit).
		Find(&candidates).Error; err != nil {
		return nil, storeError(err, "failed to load suggestions")
	}

	out := make([]types.UserSummary, 0, len(candidates))
	for i := range candidates {
		out = append(out, types.NewUserSummary(&candidates[i], nil))
	}
	return out, nil
}

// Followers lists the users following userID, decorated for viewer
func (s *SocialService) Followers(ctx context.Context, userID uuid.UUID, viewer *uuid.UUID) ([]types.UserSummary, error) {
	return s.edgeList(ctx, userID, viewer, func(u *model.User) model.Set[uuid.UUID] { return u.Followers })
}

// Following lists the users userID follows, decorated for viewer
func (s *SocialService) Following(ctx context.Context, userID uuid.UUID, viewer *uuid.UUID) ([]types.UserSummary, error) {
	return s.edgeList(ctx, userID, viewer, func(u *model.User) model.Set[uuid.UUID] { return u.Following })
}

func (s *SocialService) edgeList(ctx context.Context, userID uuid.UUID, viewer *uuid.UUID, side func(*model.User) model.Set[uuid.UUID]) ([]types.UserSummary, error) {
	var u model.User
	if err := s.db.WithContext(ctx).Where("id = ?", userID).Take(&u).Error; err != nil {
		return nil, storeError(err, "failed to load user")
	}
	ids := side(&u)
	if ids.Len() == 0 {
		return []types.UserSummary{}, nil
	}

	following, err := viewerFollowing(ctx, s.db, viewer)
	if err != nil {
		return nil, err
	}

	var users []model.User
	if err := s.db.WithContext(ctx).Where("id IN ?", []uuid.UUID(ids)).Order("username").Find(&users).Error; err != nil {
		return nil, storeError(err, "failed to load users")
	}
	out := make([]types.UserSummary, 0, len(users))
	for i := range users {
		out = append(out, types.NewUserSummary(&users[i], following))
	}
	return out, nil
}

// viewerFollowing returns the viewer's follow set, empty for anonymous viewers
func viewerFollowing(ctx context.Context, db *gorm.DB, viewer *uuid.UUID) (model.Set[uuid.UUID], error) {
	if viewer == nil {
		return nil, nil
	}
	var v model.User
	err := db.WithContext(ctx).Select("id", "following").Where("id = ?", *viewer).Take(&v).Error
	if err != nil {
		return nil, storeError(err, "failed to load viewer")
	}
	return v.Following, nil
}

// lockUser reads a user row for update inside tx
func lockUser(tx *gorm.DB, id uuid.UUID, dst *model.User) error {
	return tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id).Take(dst).Error
}
