package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/joshua-takyi/spk/internal/middleware"
	"github.com/joshua-takyi/spk/internal/models"
	"github.com/joshua-takyi/spk/internal/services"
)

// Logout revokes the Supabase session when one is present and clears the
// auth cookies either way.
func Logout(as *services.AuthService, secureCookies bool, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, err := c.Cookie(middleware.AccessTokenCookie); err == nil {
			if err := as.Logout(c.Request.Context(), token); err != nil {
				logger.Warn("Supabase logout failed", "error", err)
			}
		}

		c.SetCookie(middleware.AccessTokenCookie, "", -1, "/", "", secureCookies, true)
		c.SetCookie(middleware.RefreshTokenCookie, "", -1, "/", "", secureCookies, true)

		c.JSON(http.StatusOK, models.SuccessResponse(nil, "Logged out successfully"))
	}
}
