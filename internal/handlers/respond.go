package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/joshua-takyi/spk/internal/campus"
	"github.com/joshua-takyi/spk/internal/helpers"
	"github.com/joshua-takyi/spk/internal/models"
	"github.com/joshua-takyi/spk/internal/services"
)

// statusFor maps a service error to the HTTP status returned to clients.
func statusFor(err error) int {
	var ue *campus.UpstreamError
	switch {
	case errors.As(err, &ue):
		return http.StatusBadGateway
	case errors.Is(err, services.ErrInvalidInput), errors.Is(err, models.ErrInvalidCode):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrAuthUnavailable):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// fail writes the error envelope. Server errors are also attached to the
// context so ErrorHandler logs them.
func fail(c *gin.Context, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		msg = "Internal server error"
	}
	c.JSON(status, models.ErrorResponse(msg))
}

// currentUser returns the authenticated user's id set by AuthMiddleware.
func currentUser(c *gin.Context) (uuid.UUID, bool) {
	claims, exists := c.Get("user")
	if !exists {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse("Unauthorized"))
		return uuid.Nil, false
	}
	userClaims, ok := claims.(*helpers.EnhancedClaims)
	if !ok {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse("Invalid user claims"))
		return uuid.Nil, false
	}
	id, err := uuid.Parse(userClaims.UserID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse("Invalid user ID"))
		return uuid.Nil, false
	}
	return id, true
}
