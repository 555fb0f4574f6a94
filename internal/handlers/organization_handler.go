package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/joshua-takyi/spk/internal/helpers"
	"github.com/joshua-takyi/spk/internal/models"
	"github.com/joshua-takyi/spk/internal/services"
)

func ListOrganizations(ors *services.OrganizationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		query := helpers.StringTrim(c.Query("q"))
		tag := helpers.StringTrim(c.Query("tag"))

		orgs, err := ors.List(c.Request.Context(), query, tag)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, models.PaginatedResponse(orgs, "Organizations retrieved successfully", 0, 0, len(orgs)))
	}
}

func ListOrganizationCategories(ors *services.OrganizationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		categories, err := ors.Categories(c.Request.Context())
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(categories, "Categories retrieved successfully"))
	}
}
