package service_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/pageza/mealshare/backend/internal/model"
	"github.com/pageza/mealshare/backend/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLikeIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "chef")
	fan := f.user(t, "fan")
	r := f.recipe(t, owner, "Pie", recipeOpts{})

	liked, err := f.engagement.Like(ctx, owner.ID, r.ID, fan.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, liked.Likes)

	liked, err = f.engagement.Like(ctx, owner.ID, r.ID, fan.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, liked.Likes)
	assert.Equal(t, model.NewSet(fan.ID), liked.LikedBy)

	unliked, err := f.engagement.Unlike(ctx, owner.ID, r.ID, fan.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, unliked.Likes)
	assert.Equal(t, 0, unliked.LikedBy.Len())

	unliked, err = f.engagement.Unlike(ctx, owner.ID, r.ID, fan.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, unliked.Likes)

	stored, err := f.recipes.Read(ctx, owner.ID, r.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.Likes)
}

func TestLikeNotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "chef")
	other := f.user(t, "other")
	r := f.recipe(t, owner, "Pie", recipeOpts{})

	_, err := f.engagement.Like(ctx, owner.ID, uuid.New(), owner.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)

	// the recipe lives in owner's partition, not other's
	_, err = f.engagement.Like(ctx, other.ID, r.ID, owner.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)

	_, err = f.engagement.Unlike(ctx, owner.ID, uuid.New(), owner.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestConcurrentLikesKeepCounterInStep(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "chef")
	r := f.recipe(t, owner, "Pie", recipeOpts{})

	const n = 16
	likers := make([]uuid.UUID, n)
	for i := range likers {
		likers[i] = f.user(t, fmt.Sprintf("fan%02d", i)).ID
	}

	var wg sync.WaitGroup
	for _, id := range likers {
		// each liker races with a duplicate of its own request
		for j := 0; j < 2; j++ {
			wg.Add(1)
			go func(liker uuid.UUID) {
				defer wg.Done()
				_, err := f.engagement.Like(ctx, owner.ID, r.ID, liker)
				assert.NoError(t, err)
			}(id)
		}
	}
	wg.Wait()

	stored, err := f.recipes.Read(ctx, owner.ID, r.ID)
	require.NoError(t, err)
	assert.Equal(t, n, stored.Likes)
	assert.Equal(t, stored.Likes, stored.LikedBy.Len())
	for _, id := range likers {
		assert.True(t, stored.LikedBy.Has(id))
	}
}
