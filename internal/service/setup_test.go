package service_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pageza/mealshare/backend/config"
	"github.com/pageza/mealshare/backend/internal/model"
	"github.com/pageza/mealshare/backend/internal/service"
	"github.com/pageza/mealshare/backend/internal/storage"
	"github.com/pageza/mealshare/backend/internal/testhelpers"
	"github.com/pageza/mealshare/backend/internal/types"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	db         *gorm.DB
	blobs      *testhelpers.MemoryBlobStore
	hints      *service.OwnerHints
	auth       *service.AuthService
	resolver   *service.Resolver
	recipes    *service.RecipeService
	social     *service.SocialService
	engagement *service.EngagementService
	feed       *service.FeedService
	accounts   *service.AccountService
}

func newFixture(t *testing.T) *fixture {
	return newFixtureWithRedis(t, nil)
}

func newFixtureWithRedis(t *testing.T, client *redis.Client) *fixture {
	t.Helper()
	db := testhelpers.SetupTestDatabase(t)
	blobs := testhelpers.NewMemoryBlobStore()
	hints := service.NewOwnerHints(client, time.Hour)
	auth := service.NewAuthService("test-secret", time.Hour)
	resolver := service.NewResolver(db, hints)

	return &fixture{
		db:         db,
		blobs:      blobs,
		hints:      hints,
		auth:       auth,
		resolver:   resolver,
		recipes:    service.NewRecipeService(db, blobs, hints, "recipe_images"),
		social:     service.NewSocialService(db),
		engagement: service.NewEngagementService(db),
		feed: service.NewFeedService(db, resolver, config.FeedConfig{
			RecentLimit:     100,
			QuickMaxMinutes: 30,
			SuggestionLimit: 5,
		}),
		accounts: service.NewAccountService(db, auth, blobs, resolver, "profile_images"),
	}
}

func (f *fixture) user(t *testing.T, username string) *model.User {
	return testhelpers.CreateTestUser(t, f.db, username)
}

type recipeOpts struct {
	difficulty  string
	cookingTime string
	postedAt    time.Time
	images      int
}

func (f *fixture) recipe(t *testing.T, owner *model.User, title string, opts recipeOpts) *model.Recipe {
	t.Helper()
	fields := types.RecipeFields{
		Title:       ptr(title),
		Difficulty:  ptr(opts.difficulty),
		CookingTime: ptr(opts.cookingTime),
	}
	var uploads []storage.Upload
	for i := 0; i < opts.images; i++ {
		uploads = append(uploads, upload("img.jpg"))
	}
	r, err := f.recipes.Create(context.Background(), owner.ID, fields, uploads)
	require.NoError(t, err)

	if !opts.postedAt.IsZero() {
		require.NoError(t, f.db.Model(&model.Recipe{}).
			Where("owner_id = ? AND id = ?", owner.ID, r.ID).
			Update("date_posted", opts.postedAt).Error)
		r.DatePosted = opts.postedAt
	}
	return r
}

func upload(name string) storage.Upload {
	return storage.Upload{Filename: name, ContentType: "image/jpeg", Body: strings.NewReader("bytes of " + name)}
}

func ptr[T any](v T) *T {
	return &v
}

func ids(views []types.RecipeView) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(views))
	for _, v := range views {
		out = append(out, v.ID)
	}
	return out
}
