package integration

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/mealshare/backend/config"
	"github.com/pageza/mealshare/backend/internal/api"
	"github.com/pageza/mealshare/backend/internal/router"
	"github.com/pageza/mealshare/backend/internal/service"
	"github.com/pageza/mealshare/backend/internal/testhelpers"
)

type client struct {
	t    *testing.T
	base string
}

func (c client) call(method, path, token string, body any) (int, map[string]any) {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, c.base+path, &buf)
	require.NoError(c.t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()

	var out map[string]any
	require.NoError(c.t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

// setupServer runs the full route table against a Postgres container
func setupServer(t *testing.T) client {
	gin.SetMode(gin.TestMode)
	db := testhelpers.SetupPostgresDatabase(t)
	redisClient, _ := testhelpers.SetupRedis(t)
	blobs := testhelpers.NewMemoryBlobStore()

	hints := service.NewOwnerHints(redisClient, time.Hour)
	auth := service.NewAuthService("integration-secret", time.Hour)
	resolver := service.NewResolver(db, hints)
	feed := service.NewFeedService(db, resolver, config.FeedConfig{RecentLimit: 100, QuickMaxMinutes: 30, SuggestionLimit: 5})
	accounts := service.NewAccountService(db, auth, blobs, resolver, "profile_images")

	handler := router.SetupRouter(router.Handlers{
		Health: api.NewHealthHandler(db, redisClient),
		Auth:   api.NewAuthHandler(accounts, auth),
		Recipes: api.NewRecipeHandler(
			service.NewRecipeService(db, blobs, hints, "recipe_images"),
			resolver,
			service.NewEngagementService(db),
			feed,
			auth,
			nil, nil,
		),
		Profile: api.NewProfileHandler(accounts, service.NewSocialService(db), feed, auth, nil, 5),
	}, nil)

	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	return client{t: t, base: ts.URL}
}

func (c client) register(username string) (string, string) {
	c.t.Helper()
	status, body := c.call(http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": "correct-horse",
	})
	require.Equal(c.t, http.StatusCreated, status, body)
	return body["token"].(string), body["user"].(map[string]any)["id"].(string)
}

func TestIntegrationRegisterFollowPostLike(t *testing.T) {
	c := setupServer(t)

	aliceToken, aliceID := c.register("alice")
	bobToken, bobID := c.register("bob")

	status, _ := c.call(http.MethodPost, "/api/v1/profile/follow", aliceToken, map[string]string{"target_user_id": bobID})
	require.Equal(t, http.StatusOK, status)

	status, body := c.call(http.MethodPost, "/api/v1/recipes", bobToken, map[string]string{
		"title":        "Soup",
		"cooking_time": "20 min",
		"difficulty":   "Easy",
	})
	require.Equal(t, http.StatusCreated, status, body)
	recipeID := body["recipe"].(map[string]any)["id"].(string)

	status, body = c.call(http.MethodGet, "/api/v1/profile/feed", aliceToken, nil)
	require.Equal(t, http.StatusOK, status)
	feed := body["recipes"].([]any)
	require.Len(t, feed, 1)
	assert.Equal(t, "bob", feed[0].(map[string]any)["author"])

	status, body = c.call(http.MethodPost, "/api/v1/recipes/"+recipeID+"/like", aliceToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 1, body["likes"])

	status, body = c.call(http.MethodGet, "/api/v1/users/bob/followers", bobToken, nil)
	require.Equal(t, http.StatusOK, status)
	followers := body["users"].([]any)
	require.Len(t, followers, 1)
	assert.Equal(t, aliceID, followers[0].(map[string]any)["user_id"])
}

func TestIntegrationConcurrentLikesUnderRowLocks(t *testing.T) {
	c := setupServer(t)

	ownerToken, _ := c.register("owner")
	status, body := c.call(http.MethodPost, "/api/v1/recipes", ownerToken, map[string]string{"title": "Popular"})
	require.Equal(t, http.StatusCreated, status, body)
	recipeID := body["recipe"].(map[string]any)["id"].(string)

	const likers = 8
	tokens := make([]string, likers)
	for i := range tokens {
		tokens[i], _ = c.register("liker" + string(rune('a'+i)))
	}

	var wg sync.WaitGroup
	for _, token := range tokens {
		for j := 0; j < 2; j++ {
			wg.Add(1)
			go func(token string) {
				defer wg.Done()
				status, _ := c.call(http.MethodPost, "/api/v1/recipes/"+recipeID+"/like", token, nil)
				assert.Equal(t, http.StatusOK, status)
			}(token)
		}
	}
	wg.Wait()

	status, body = c.call(http.MethodGet, "/api/v1/recipes/"+recipeID, "", nil)
	require.Equal(t, http.StatusOK, status)
	recipe := body["recipe"].(map[string]any)
	assert.EqualValues(t, likers, recipe["likes"])
	assert.Len(t, recipe["liked_by"], likers)
}
