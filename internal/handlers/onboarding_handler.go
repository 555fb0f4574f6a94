package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/joshua-takyi/spk/internal/helpers"
	"github.com/joshua-takyi/spk/internal/models"
	"github.com/joshua-takyi/spk/internal/services"
)

// SaveOnboarding stores wizard progress. A body without a code gets a new
// one; a body with a code overwrites that save.
func SaveOnboarding(ss *services.SessionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var state models.SessionState
		if err := c.ShouldBindJSON(&state); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("Invalid request body: "+err.Error()))
			return
		}
		isNew := state.Code == ""

		saved, err := ss.Save(c.Request.Context(), &state)
		if err != nil {
			fail(c, err)
			return
		}
		status := http.StatusOK
		if isNew {
			status = http.StatusCreated
		}
		c.JSON(status, models.SuccessResponse(saved, "Progress saved"))
	}
}

func ResumeOnboarding(ss *services.SessionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		state, err := ss.Resume(c.Request.Context(), helpers.StringTrim(c.Param("code")))
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(state, "Progress restored"))
	}
}

func DeleteOnboarding(ss *services.SessionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := ss.Delete(c.Request.Context(), helpers.StringTrim(c.Param("code"))); err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(nil, "Progress deleted"))
	}
}
