package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pageza/mealshare/backend/internal/middleware"
	"github.com/pageza/mealshare/backend/internal/model"
	"github.com/pageza/mealshare/backend/internal/service"
	"github.com/pageza/mealshare/backend/internal/types"
)

type RecipeHandler struct {
	recipes       service.IRecipeService
	resolver      service.IResolver
	engagement    service.IEngagementService
	feed          service.IFeedService
	auth          middleware.TokenValidator
	createLimiter *middleware.RateLimiter
	socialLimiter *middleware.RateLimiter
}

func NewRecipeHandler(
	recipes service.IRecipeService,
	resolver service.IResolver,
	engagement service.IEngagementService,
	feed service.IFeedService,
	auth middleware.TokenValidator,
	createLimiter, socialLimiter *middleware.RateLimiter,
) *RecipeHandler {
	return &RecipeHandler{
		recipes:       recipes,
		resolver:      resolver,
		engagement:    engagement,
		feed:          feed,
		auth:          auth,
		createLimiter: createLimiter,
		socialLimiter: socialLimiter,
	}
}

func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup) {
	authed := middleware.AuthMiddleware(h.auth)

	recipes := router.Group("/recipes")
	{
		recipes.GET("", h.ListRecipes)
		recipes.GET("/most-liked", h.MostLiked)
		recipes.GET("/recent", h.MostRecent)
		recipes.GET("/easy", h.Easy)
		recipes.GET("/quick", h.QuickPicks)
		recipes.GET("/:id", h.GetRecipe)
		recipes.POST("", authed, h.createLimiter.RateLimitMiddleware(), h.CreateRecipe)
		recipes.PUT("/:id", authed, h.UpdateRecipe)
		recipes.DELETE("/:id", authed, h.DeleteRecipe)
		recipes.POST("/:id/like", authed, h.socialLimiter.RateLimitMiddleware(), h.LikeRecipe)
		recipes.DELETE("/:id/like", authed, h.socialLimiter.RateLimitMiddleware(), h.UnlikeRecipe)
	}
}

// ListRecipes scans every partition. owner and difficulty (comma separated)
// narrow the listing.
func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	var filter service.ListFilter
	if owner := c.Query("owner"); owner != "" {
		id, err := uuid.Parse(owner)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid owner"})
			return
		}
		filter.Owners = []uuid.UUID{id}
	}
	if difficulty := c.Query("difficulty"); difficulty != "" {
		for _, level := range strings.Split(difficulty, ",") {
			if level = strings.TrimSpace(level); level != "" {
				filter.Difficulties = append(filter.Difficulties, level)
			}
		}
	}

	views, err := h.resolver.ListAll(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipes": views})
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	view, err := h.resolver.FindAnywhere(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipe": view})
}

func (h *RecipeHandler) MostLiked(c *gin.Context) {
	limit, ok := queryLimit(c)
	if !ok {
		return
	}
	h.respondFeed(c)(h.feed.MostLiked(c.Request.Context(), limit))
}

func (h *RecipeHandler) MostRecent(c *gin.Context) {
	limit, ok := queryLimit(c)
	if !ok {
		return
	}
	h.respondFeed(c)(h.feed.MostRecent(c.Request.Context(), limit))
}

func (h *RecipeHandler) Easy(c *gin.Context) {
	h.respondFeed(c)(h.feed.Easy(c.Request.Context()))
}

func (h *RecipeHandler) QuickPicks(c *gin.Context) {
	h.respondFeed(c)(h.feed.QuickPicks(c.Request.Context()))
}

func (h *RecipeHandler) respondFeed(c *gin.Context) func([]types.RecipeView, error) {
	return func(views []types.RecipeView, err error) {
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"recipes": views})
	}
}

// CreateRecipe accepts the recipe fields as JSON or as a multipart form with
// image files under "images"
func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	ownerID, ok := callerID(c)
	if !ok {
		return
	}

	var fields types.RecipeFields
	if err := c.ShouldBind(&fields); err != nil {
		badRequest(c, err)
		return
	}
	images, closeImages, err := formFiles(c, "images")
	if err != nil {
		badRequest(c, err)
		return
	}
	defer closeImages()

	recipe, err := h.recipes.Create(c.Request.Context(), ownerID, fields, images)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"recipe": recipe})
}

// UpdateRecipe edits a recipe in the caller's own partition
func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	ownerID, ok := callerID(c)
	if !ok {
		return
	}
	recipeID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req types.UpdateRecipeRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, err)
		return
	}
	if req.OwnerID != "" && req.OwnerID != ownerID.String() {
		respondError(c, fmt.Errorf("recipe belongs to another user: %w", service.ErrForbidden))
		return
	}
	images, closeImages, err := formFiles(c, "images")
	if err != nil {
		badRequest(c, err)
		return
	}
	defer closeImages()

	recipe, err := h.recipes.Update(c.Request.Context(), ownerID, recipeID, req.RecipeFields, images, req.RemoveAssetIDs)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipe": recipe})
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	ownerID, ok := callerID(c)
	if !ok {
		return
	}
	recipeID, ok := pathID(c, "id")
	if !ok {
		return
	}

	deleted, err := h.recipes.Delete(c.Request.Context(), ownerID, recipeID)
	if err != nil {
		respondError(c, err)
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "recipe not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "recipe deleted"})
}

func (h *RecipeHandler) LikeRecipe(c *gin.Context) {
	h.engage(c, h.engagement.Like)
}

func (h *RecipeHandler) UnlikeRecipe(c *gin.Context) {
	h.engage(c, h.engagement.Unlike)
}

// engage resolves the recipe's partition before applying op, since the
// route only names the recipe
func (h *RecipeHandler) engage(c *gin.Context, op func(ctx context.Context, ownerID, recipeID, likerID uuid.UUID) (*model.Recipe, error)) {
	likerID, ok := callerID(c)
	if !ok {
		return
	}
	recipeID, ok := pathID(c, "id")
	if !ok {
		return
	}

	view, err := h.resolver.FindAnywhere(c.Request.Context(), recipeID)
	if err != nil {
		respondError(c, err)
		return
	}
	recipe, err := op(c.Request.Context(), view.OwnerID, recipeID, likerID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"likes": recipe.Likes,
		"liked": recipe.LikedBy.Has(likerID),
	})
}

// queryLimit reads the optional limit query parameter; 0 means unset
func queryLimit(c *gin.Context) (int, bool) {
	raw := c.Query("limit")
	if raw == "" {
		return 0, true
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
		return 0, false
	}
	return limit, true
}
