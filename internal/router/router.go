package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pageza/mealshare/backend/internal/api"
	"github.com/pageza/mealshare/backend/internal/middleware"
)

const maxMultipartMemory = 32 << 20

// Handlers groups everything mounted under /api/v1
type Handlers struct {
	Health  *api.HealthHandler
	Auth    *api.AuthHandler
	Recipes *api.RecipeHandler
	Profile *api.ProfileHandler
}

// SetupRouter configures the application routes
func SetupRouter(h Handlers, corsOrigins []string) *gin.Engine {
	router := gin.New()
	router.MaxMultipartMemory = maxMultipartMemory

	router.Use(middleware.RequestLogger())
	router.Use(middleware.Recovery())
	router.Use(middleware.CORS(corsOrigins))

	router.GET("/health", h.Health.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	h.Auth.RegisterRoutes(v1)
	h.Recipes.RegisterRoutes(v1)
	h.Profile.RegisterRoutes(v1)

	return router
}
