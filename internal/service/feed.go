package service

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/pageza/mealshare/backend/config"
	"github.com/pageza/mealshare/backend/internal/model"
	"github.com/pageza/mealshare/backend/internal/types"
	"gorm.io/gorm"
)

// FeedService builds read-only aggregations over the resolver's full scan.
// All sorts are stable, so equal keys keep the resolver's scan order.
type FeedService struct {
	db       *gorm.DB
	resolver *Resolver
	cfg      config.FeedConfig
}

// NewFeedService creates a new FeedService instance
func NewFeedService(db *gorm.DB, resolver *Resolver, cfg config.FeedConfig) *FeedService {
	return &FeedService{db: db, resolver: resolver, cfg: cfg}
}

// FollowingFeed returns every recipe owned by someone the viewer follows,
// newest first
func (s *FeedService) FollowingFeed(ctx context.Context, viewerID uuid.UUID) ([]types.RecipeView, error) {
	var viewer model.User
	if err := s.db.WithContext(ctx).Select("id", "following").Where("id = ?", viewerID).Take(&viewer).Error; err != nil {
		return nil, storeError(err, "failed to load viewer")
	}
	if viewer.Following.Len() == 0 {
		return []types.RecipeView{}, nil
	}

	views, err := s.resolver.ListAll(ctx, ListFilter{Owners: viewer.Following})
	if err != nil {
		return nil, err
	}
	sortNewestFirst(views)
	return views, nil
}

// MostLiked orders every recipe by like count. limit <= 0 returns all.
func (s *FeedService) MostLiked(ctx context.Context, limit int) ([]types.RecipeView, error) {
	views, err := s.resolver.ListAll(ctx, ListFilter{})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(views, func(i, j int) bool { return views[i].Likes > views[j].Likes })
	return capped(views, limit), nil
}

// MostRecent returns the newest recipes, at most limit of them. limit <= 0
// uses the configured default.
func (s *FeedService) MostRecent(ctx context.Context, limit int) ([]types.RecipeView, error) {
	if limit <= 0 {
		limit = s.cfg.RecentLimit
	}
	views, err := s.resolver.ListAll(ctx, ListFilter{})
	if err != nil {
		return nil, err
	}
	sortNewestFirst(views)
	return capped(views, limit), nil
}

// QuickPicks lists recipes whose cooking time parses to at most the
// configured minutes, fastest first. Unparsable cooking times are skipped.
func (s *FeedService) QuickPicks(ctx context.Context) ([]types.RecipeView, error) {
	views, err := s.resolver.ListAll(ctx, ListFilter{
		Match: func(r *model.Recipe) bool {
			m, err := ParseCookingMinutes(r.CookingTime)
			return err == nil && m <= s.cfg.QuickMaxMinutes
		},
	})
	if err != nil {
		return nil, err
	}

	parsed := make([]int, len(views))
	for i := range views {
		parsed[i], _ = ParseCookingMinutes(views[i].CookingTime)
	}
	sort.Stable(byMinutes{views: views, minutes: parsed})
	return views, nil
}

// ByDifficulty lists recipes whose difficulty is one of levels, ignoring case
func (s *FeedService) ByDifficulty(ctx context.Context, levels ...string) ([]types.RecipeView, error) {
	if len(levels) == 0 {
		return []types.RecipeView{}, nil
	}
	return s.resolver.ListAll(ctx, ListFilter{Difficulties: levels})
}

// Easy lists recipes marked easy
func (s *FeedService) Easy(ctx context.Context) ([]types.RecipeView, error) {
	return s.ByDifficulty(ctx, "easy")
}

func sortNewestFirst(views []types.RecipeView) {
	sort.SliceStable(views, func(i, j int) bool {
		return views[i].PostedAt().After(views[j].PostedAt())
	})
}

func capped(views []types.RecipeView, limit int) []types.RecipeView {
	if limit > 0 && len(views) > limit {
		return views[:limit]
	}
	return views
}

type byMinutes struct {
	views   []types.RecipeView
	minutes []int
}

func (b byMinutes) Len() int           { return len(b.views) }
func (b byMinutes) Less(i, j int) bool { return b.minutes[i] < b.minutes[j] }
func (b byMinutes) Swap(i, j int) {
	b.views[i], b.views[j] = b.views[j], b.views[i]
	b.minutes[i], b.minutes[j] = b.minutes[j], b.minutes[i]
}
