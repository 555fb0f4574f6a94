package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/joshua-takyi/spk/internal/engine"
	"github.com/joshua-takyi/spk/internal/helpers"
	"github.com/joshua-takyi/spk/internal/models"
	"github.com/joshua-takyi/spk/internal/services"
)

const maxPageSize = 50

// parseEventsRequest reads the pipeline inputs from the query string.
// filters may be repeated or comma separated.
func parseEventsRequest(c *gin.Context) (engine.Request, error) {
	req := engine.Request{
		Query:      c.Query("q"),
		PinnedTag:  helpers.StringTrim(c.Query("tag")),
		PinnedOrg:  helpers.StringTrim(c.Query("org")),
		Generation: c.Query("gen"),
	}

	for _, raw := range c.QueryArray("filters") {
		for _, id := range strings.Split(raw, ",") {
			if id = strings.ToLower(helpers.StringTrim(id)); id != "" {
				req.ActiveFilters = append(req.ActiveFilters, id)
			}
		}
	}

	switch p := models.Persona(strings.ToLower(helpers.StringTrim(c.Query("persona")))); p {
	case models.PersonaNone, models.PersonaCommuter, models.PersonaResident:
		req.Persona = p
	default:
		return req, badRequest("persona must be 'commuter', 'resident' or empty")
	}

	var err error
	if req.Page, err = intParam(c, "page", 1); err != nil {
		return req, err
	}
	if req.PageSize, err = intParam(c, "page_size", 0); err != nil {
		return req, err
	}
	if req.Page < 1 {
		return req, badRequest("page must be at least 1")
	}
	if req.PageSize < 0 || req.PageSize > maxPageSize {
		return req, badRequest("page_size must be between 0 and 50 (0 = default)")
	}
	return req, nil
}

func intParam(c *gin.Context, key string, def int) (int, error) {
	raw := helpers.StringTrim(c.Query(key))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, badRequest(key + " must be an integer")
	}
	return n, nil
}

func badRequest(msg string) error { return errors.New(msg) }

// ListEvents runs the events pipeline for the query string inputs.
func ListEvents(es *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		req, err := parseEventsRequest(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}

		res, err := es.Events(c.Request.Context(), req)
		if err != nil {
			fail(c, err)
			return
		}

		msg := res.Message
		if msg == "" {
			msg = "Events retrieved successfully"
		}
		pageSize := req.PageSize
		if pageSize == 0 {
			pageSize = engine.DefaultPageSize
		}
		c.JSON(http.StatusOK, models.PaginatedResponse(res, msg, req.Page, pageSize, res.TotalDateKeys))
	}
}

// ListFilters returns the filter vocabulary grouped by category.
func ListFilters(es *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, models.SuccessResponse(es.Filters(), "Filters retrieved successfully"))
	}
}
