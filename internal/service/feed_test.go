package service_test

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pageza/mealshare/backend/internal/model"
	"github.com/pageza/mealshare/backend/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFollowingFeed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	viewer := f.user(t, "viewer")
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")
	stranger := f.user(t, "stranger")

	empty, err := f.feed.FollowingFeed(ctx, viewer.ID)
	require.NoError(t, err)
	assert.Empty(t, empty)

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	oldest := f.recipe(t, alice, "Old", recipeOpts{postedAt: base})
	newest := f.recipe(t, bob, "New", recipeOpts{postedAt: base.Add(2 * time.Hour)})
	middle := f.recipe(t, alice, "Mid", recipeOpts{postedAt: base.Add(time.Hour)})
	f.recipe(t, stranger, "Hidden", recipeOpts{postedAt: base.Add(3 * time.Hour)})

	require.NoError(t, f.social.Follow(ctx, viewer.ID, alice.ID))
	require.NoError(t, f.social.Follow(ctx, viewer.ID, bob.ID))

	feed, err := f.feed.FollowingFeed(ctx, viewer.ID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{newest.ID, middle.ID, oldest.ID}, ids(feed))
	assert.Equal(t, "bob", feed[0].Author)
	assert.Equal(t, bob.ID, feed[0].AuthorID)
	assert.Equal(t, "alice", feed[1].Author)
}

func TestFollowingFeedSingleRecipe(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	viewer := f.user(t, "viewer")
	cook := f.user(t, "cook")
	r := f.recipe(t, cook, "Only", recipeOpts{})
	require.NoError(t, f.social.Follow(ctx, viewer.ID, cook.ID))

	feed, err := f.feed.FollowingFeed(ctx, viewer.ID)
	require.NoError(t, err)
	require.Len(t, feed, 1)
	assert.Equal(t, r.ID, feed[0].ID)
	assert.Equal(t, "cook", feed[0].Author)
}

func TestFollowingFeedUnknownViewer(t *testing.T) {
	f := newFixture(t)

	_, err := f.feed.FollowingFeed(context.Background(), uuid.New())
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestFeedTiesKeepScanOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	viewer := f.user(t, "viewer")
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")
	same := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	recipes := []*model.Recipe{
		f.recipe(t, alice, "A1", recipeOpts{postedAt: same}),
		f.recipe(t, alice, "A2", recipeOpts{postedAt: same}),
		f.recipe(t, bob, "B1", recipeOpts{postedAt: same}),
	}
	require.NoError(t, f.social.Follow(ctx, viewer.ID, alice.ID))
	require.NoError(t, f.social.Follow(ctx, viewer.ID, bob.ID))

	// scan order: owner id, then recipe id
	sort.Slice(recipes, func(i, j int) bool {
		if recipes[i].OwnerID != recipes[j].OwnerID {
			return recipes[i].OwnerID.String() < recipes[j].OwnerID.String()
		}
		return recipes[i].ID.String() < recipes[j].ID.String()
	})
	want := []uuid.UUID{recipes[0].ID, recipes[1].ID, recipes[2].ID}

	feed, err := f.feed.FollowingFeed(ctx, viewer.ID)
	require.NoError(t, err)
	assert.Equal(t, want, ids(feed))
}

func TestMostLikedAndMostRecent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "chef")
	fans := []*model.User{f.user(t, "fan1"), f.user(t, "fan2")}
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	popular := f.recipe(t, owner, "Popular", recipeOpts{postedAt: base})
	liked := f.recipe(t, owner, "Liked", recipeOpts{postedAt: base.Add(time.Hour)})
	fresh := f.recipe(t, owner, "Fresh", recipeOpts{postedAt: base.Add(2 * time.Hour)})

	for _, fan := range fans {
		_, err := f.engagement.Like(ctx, owner.ID, popular.ID, fan.ID)
		require.NoError(t, err)
	}
	_, err := f.engagement.Like(ctx, owner.ID, liked.ID, fans[0].ID)
	require.NoError(t, err)

	top, err := f.feed.MostLiked(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{popular.ID, liked.ID, fresh.ID}, ids(top))

	top, err = f.feed.MostLiked(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{popular.ID}, ids(top))

	recent, err := f.feed.MostRecent(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{fresh.ID, liked.ID}, ids(recent))

	recent, err = f.feed.MostRecent(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, recent, 3)
}

func TestQuickPicks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "chef")
	r20 := f.recipe(t, owner, "Twenty", recipeOpts{cookingTime: "20 mins"})
	r15 := f.recipe(t, owner, "Fifteen", recipeOpts{cookingTime: "15 mins"})
	r30 := f.recipe(t, owner, "Half hour", recipeOpts{cookingTime: "30 minutes"})
	f.recipe(t, owner, "Slow", recipeOpts{cookingTime: "45 mins"})
	f.recipe(t, owner, "Vague", recipeOpts{cookingTime: "a while"})
	f.recipe(t, owner, "Blank", recipeOpts{})

	quick, err := f.feed.QuickPicks(ctx)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{r15.ID, r20.ID, r30.ID}, ids(quick))
}

func TestByDifficulty(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "chef")
	easy := f.recipe(t, owner, "Toast", recipeOpts{difficulty: "Easy"})
	medium := f.recipe(t, owner, "Risotto", recipeOpts{difficulty: "MEDIUM"})
	f.recipe(t, owner, "Souffle", recipeOpts{difficulty: "hard"})

	got, err := f.feed.Easy(ctx)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{easy.ID}, ids(got))

	got, err = f.feed.ByDifficulty(ctx, "easy", "Medium")
	require.NoError(t, err)
	assert.ElementsMatch(t, []uuid.UUID{easy.ID, medium.ID}, ids(got))

	got, err = f.feed.ByDifficulty(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
}
