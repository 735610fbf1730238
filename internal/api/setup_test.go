package api_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pageza/mealshare/backend/config"
	"github.com/pageza/mealshare/backend/internal/api"
	"github.com/pageza/mealshare/backend/internal/middleware"
	"github.com/pageza/mealshare/backend/internal/model"
	"github.com/pageza/mealshare/backend/internal/router"
	"github.com/pageza/mealshare/backend/internal/service"
	"github.com/pageza/mealshare/backend/internal/testhelpers"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testAPI struct {
	router *gin.Engine
	db     *gorm.DB
	blobs  *testhelpers.MemoryBlobStore
	auth   *service.AuthService
}

func setupAPI(t *testing.T) *testAPI {
	t.Helper()
	db := testhelpers.SetupTestDatabase(t)
	client, _ := testhelpers.SetupRedis(t)
	blobs := testhelpers.NewMemoryBlobStore()

	hints := service.NewOwnerHints(client, time.Hour)
	auth := service.NewAuthService("test-secret", time.Hour)
	resolver := service.NewResolver(db, hints)
	recipes := service.NewRecipeService(db, blobs, hints, "recipe_images")
	social := service.NewSocialService(db)
	engagement := service.NewEngagementService(db)
	feed := service.NewFeedService(db, resolver, config.FeedConfig{RecentLimit: 100, QuickMaxMinutes: 30, SuggestionLimit: 5})
	accounts := service.NewAccountService(db, auth, blobs, resolver, "profile_images")

	createLimiter := middleware.NewRecipeCreationRateLimiter(client, time.Hour, 3)
	socialLimiter := middleware.NewSocialWriteRateLimiter(client, time.Hour, 100)

	r := router.SetupRouter(router.Handlers{
		Health:  api.NewHealthHandler(db, client),
		Auth:    api.NewAuthHandler(accounts, auth),
		Recipes: api.NewRecipeHandler(recipes, resolver, engagement, feed, auth, createLimiter, socialLimiter),
		Profile: api.NewProfileHandler(accounts, social, feed, auth, socialLimiter, 5),
	}, []string{"http://localhost:3000"})

	return &testAPI{router: r, db: db, blobs: blobs, auth: auth}
}

// user creates an account and returns it with a signed token
func (a *testAPI) user(t *testing.T, username string) (*model.User, string) {
	t.Helper()
	u := testhelpers.CreateTestUser(t, a.db, username)
	token, err := a.auth.GenerateToken(u)
	require.NoError(t, err)
	return u, token
}

func (a *testAPI) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

// doMultipart sends fields and files (field name -> file names) as multipart/form-data
func (a *testAPI) doMultipart(t *testing.T, method, path, token string, fields map[string]string, files map[string][]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for field, names := range files {
		for _, name := range names {
			fw, err := mw.CreateFormFile(field, name)
			require.NoError(t, err)
			_, err = fw.Write([]byte("image:" + name))
			require.NoError(t, err)
		}
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func requireStatus(t *testing.T, w *httptest.ResponseRecorder, status int) {
	t.Helper()
	require.Equal(t, status, w.Code, w.Body.String())
}

// createRecipe posts a JSON recipe as token's owner and returns its id
func (a *testAPI) createRecipe(t *testing.T, token string, body map[string]string) string {
	t.Helper()
	w := a.do(t, http.MethodPost, "/api/v1/recipes", token, body)
	requireStatus(t, w, http.StatusCreated)
	return decode(t, w)["recipe"].(map[string]any)["id"].(string)
}
