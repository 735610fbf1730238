package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pageza/mealshare/backend/internal/middleware"
	"github.com/pageza/mealshare/backend/internal/model"
	"github.com/pageza/mealshare/backend/internal/service"
	"github.com/pageza/mealshare/backend/internal/types"
)

const defaultSearchLimit = 20

// ProfileHandler serves account, follow graph and saved post routes
type ProfileHandler struct {
	accounts        service.IAccountService
	social          service.ISocialService
	feed            service.IFeedService
	auth            middleware.TokenValidator
	socialLimiter   *middleware.RateLimiter
	suggestionLimit int
}

func NewProfileHandler(
	accounts service.IAccountService,
	social service.ISocialService,
	feed service.IFeedService,
	auth middleware.TokenValidator,
	socialLimiter *middleware.RateLimiter,
	suggestionLimit int,
) *ProfileHandler {
	return &ProfileHandler{
		accounts:        accounts,
		social:          social,
		feed:            feed,
		auth:            auth,
		socialLimiter:   socialLimiter,
		suggestionLimit: suggestionLimit,
	}
}

func (h *ProfileHandler) RegisterRoutes(router *gin.RouterGroup) {
	limited := h.socialLimiter.RateLimitMiddleware()

	profile := router.Group("/profile", middleware.AuthMiddleware(h.auth))
	{
		profile.GET("", h.GetProfile)
		profile.PUT("", h.UpdateProfile)
		profile.PUT("/password", h.ChangePassword)
		profile.POST("/follow", limited, h.Follow)
		profile.POST("/unfollow", limited, h.Unfollow)
		profile.GET("/is-following/:id", h.IsFollowing)
		profile.GET("/suggested", h.Suggested)
		profile.GET("/feed", h.Feed)
		profile.POST("/save", limited, h.SavePost)
		profile.POST("/unsave", limited, h.UnsavePost)
		profile.GET("/saved", h.SavedPosts)
		profile.POST("/batch-info", h.BatchInfo)
	}

	users := router.Group("/users", middleware.OptionalAuth(h.auth))
	{
		users.GET("/search", h.SearchUsers)
		users.GET("/:username", h.GetUserProfile)
		users.GET("/:username/followers", h.Followers)
		users.GET("/:username/following", h.Following)
	}
}

// GetProfile returns the caller's own profile with their recipes
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	user, err := h.accounts.GetByID(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	h.respondProfile(c, user.Username)
}

// GetUserProfile returns anyone's public profile
func (h *ProfileHandler) GetUserProfile(c *gin.Context) {
	h.respondProfile(c, c.Param("username"))
}

func (h *ProfileHandler) respondProfile(c *gin.Context, username string) {
	profile, err := h.accounts.ProfileWithRecipes(c.Request.Context(), username)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// UpdateProfile applies optional edits; a new image arrives as profile_image
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	var req types.UpdateProfileRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, err)
		return
	}
	image, closeImage, err := formFile(c, "profile_image")
	if err != nil {
		badRequest(c, err)
		return
	}
	defer closeImage()

	user, err := h.accounts.UpdateProfile(c.Request.Context(), userID, req, image)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (h *ProfileHandler) ChangePassword(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	var req types.ChangePasswordRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.accounts.ChangePassword(c.Request.Context(), userID, req.OldPassword, req.NewPassword); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "password updated"})
}

func (h *ProfileHandler) Follow(c *gin.Context) {
	h.mutateEdge(c, h.social.Follow, "followed")
}

func (h *ProfileHandler) Unfollow(c *gin.Context) {
	h.mutateEdge(c, h.social.Unfollow, "unfollowed")
}

func (h *ProfileHandler) mutateEdge(c *gin.Context, op func(ctx context.Context, a, b uuid.UUID) error, done string) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	var req types.TargetUserRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, err)
		return
	}
	target := uuid.MustParse(req.TargetUserID)

	if err := op(c.Request.Context(), userID, target); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": done, "target_user_id": target})
}

func (h *ProfileHandler) IsFollowing(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	target, ok := pathID(c, "id")
	if !ok {
		return
	}
	following, err := h.social.IsFollowing(c.Request.Context(), userID, target)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"is_following": following})
}

func (h *ProfileHandler) Suggested(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	users, err := h.social.Suggestions(c.Request.Context(), userID, h.suggestionLimit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

// Feed lists recipes from everyone the caller follows, newest first
func (h *ProfileHandler) Feed(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	views, err := h.feed.FollowingFeed(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipes": views})
}

func (h *ProfileHandler) SavePost(c *gin.Context) {
	h.mutateSaved(c, h.accounts.SavePost)
}

func (h *ProfileHandler) UnsavePost(c *gin.Context) {
	h.mutateSaved(c, h.accounts.UnsavePost)
}

func (h *ProfileHandler) mutateSaved(c *gin.Context, op func(ctx context.Context, userID, postID uuid.UUID) (*model.User, error)) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	var req types.PostRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, err)
		return
	}

	user, err := op(c.Request.Context(), userID, uuid.MustParse(req.PostID))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"saved_posts": user.SavedPosts})
}

func (h *ProfileHandler) SavedPosts(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	views, err := h.accounts.SavedPosts(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipes": views})
}

func (h *ProfileHandler) BatchInfo(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	var req types.BatchUserInfoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	users, err := h.accounts.BatchUserInfo(c.Request.Context(), req.UserIDs, &userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

func (h *ProfileHandler) SearchUsers(c *gin.Context) {
	limit, ok := queryLimit(c)
	if !ok {
		return
	}
	if limit == 0 {
		limit = defaultSearchLimit
	}
	users, err := h.accounts.SearchUsers(c.Request.Context(), c.Query("q"), limit, viewer(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

func (h *ProfileHandler) Followers(c *gin.Context) {
	h.edgeList(c, h.social.Followers)
}

func (h *ProfileHandler) Following(c *gin.Context) {
	h.edgeList(c, h.social.Following)
}

func (h *ProfileHandler) edgeList(c *gin.Context, list func(ctx context.Context, userID uuid.UUID, viewer *uuid.UUID) ([]types.UserSummary, error)) {
	user, err := h.accounts.GetByUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		respondError(c, err)
		return
	}
	users, err := list(c.Request.Context(), user.ID, viewer(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}
