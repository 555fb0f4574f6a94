package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/joshua-takyi/spk/internal/helpers"
	"github.com/joshua-takyi/spk/internal/models"
	"github.com/joshua-takyi/spk/internal/services"
)

func GetPreferences(ps *services.PreferenceService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUser(c)
		if !ok {
			return
		}
		prefs, err := ps.GetPreferences(c.Request.Context(), userID)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(prefs, ""))
	}
}

func SetPersona(ps *services.PreferenceService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUser(c)
		if !ok {
			return
		}
		var reqBody struct {
			Persona models.Persona `json:"persona"`
		}
		if err := c.ShouldBindJSON(&reqBody); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("Invalid request body: "+err.Error()))
			return
		}
		prefs, err := ps.SetPersona(c.Request.Context(), userID, reqBody.Persona)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(prefs, "Persona updated"))
	}
}

func AddToFavourites(ps *services.PreferenceService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUser(c)
		if !ok {
			return
		}
		var reqBody struct {
			ItemType string `json:"item_type" binding:"required"`
		}
		if err := c.ShouldBindJSON(&reqBody); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("Invalid request body: "+err.Error()))
			return
		}

		prefs, err := ps.AddToFavourites(c.Request.Context(), userID, helpers.StringTrim(c.Param("id")), reqBody.ItemType)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(prefs, "Item added to favourites"))
	}
}

func RemoveFromFavourites(ps *services.PreferenceService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUser(c)
		if !ok {
			return
		}
		if err := ps.RemoveFromFavourites(c.Request.Context(), userID, helpers.StringTrim(c.Param("id"))); err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(nil, "Item removed from favourites"))
	}
}
