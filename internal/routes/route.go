package routes

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/joshua-takyi/spk/internal/container"
	"github.com/joshua-takyi/spk/internal/handlers"
	"github.com/joshua-takyi/spk/internal/helpers"
	"github.com/joshua-takyi/spk/internal/middleware"
	"github.com/joshua-takyi/spk/internal/models"
)

// SetupRoutes configures all routes with the dependency container
func SetupRoutes(container *container.Container) *gin.Engine {
	cfg := container.Config
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	secureCookies := cfg.IsProduction()

	r := gin.New()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
	}))

	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(container.Logger))
	r.Use(middleware.Metrics(container.Metrics))
	r.Use(middleware.ErrorHandler(container.Logger))
	r.Use(gin.Recovery())

	r.GET("/metrics", gin.WrapH(container.Metrics.Handler()))

	v1 := r.Group("/api/v1")
	v1.Use(middleware.RateLimit(container.RateLimiter))
	{
		v1.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"status":  "OK",
				"service": "spk-api",
			})
		})

		v1.GET("/events", handlers.ListEvents(container.EventService))
		v1.GET("/events/filters", handlers.ListFilters(container.EventService))
		v1.GET("/organizations", handlers.ListOrganizations(container.OrganizationService))
		v1.GET("/organizations/categories", handlers.ListOrganizationCategories(container.OrganizationService))

		v1.POST("/onboarding", handlers.SaveOnboarding(container.SessionService))
		v1.GET("/onboarding/:code", handlers.ResumeOnboarding(container.SessionService))
		v1.DELETE("/onboarding/:code", handlers.DeleteOnboarding(container.SessionService))

		v1.POST("/logout", handlers.Logout(container.AuthService, secureCookies, container.Logger))
	}

	protected := v1.Group("/me")
	protected.Use(middleware.AuthMiddleware(container.TokenValidator, container.AuthService, secureCookies, container.Logger))
	{
		protected.GET("/profile", func(c *gin.Context) {
			claims, ok := c.MustGet("user").(*helpers.EnhancedClaims)
			if !ok {
				c.JSON(http.StatusInternalServerError, models.ErrorResponse("Invalid user claims format"))
				return
			}
			c.JSON(http.StatusOK, models.SuccessResponse(gin.H{
				"user_id": claims.UserID,
				"email":   claims.Email,
				"role":    claims.GetSafeRole(),
			}, ""))
		})
		protected.GET("/preferences", handlers.GetPreferences(container.PreferenceService))
		protected.PUT("/persona", handlers.SetPersona(container.PreferenceService))
		protected.POST("/favourites/:id", handlers.AddToFavourites(container.PreferenceService))
		protected.DELETE("/favourites/:id", handlers.RemoveFromFavourites(container.PreferenceService))
	}

	return r
}
