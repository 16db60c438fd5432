package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/khabar-news/khabar/internal/models"
	"github.com/khabar-news/khabar/internal/service"
	"github.com/rs/zerolog"
)

// SearchHandler handles the search endpoints
type SearchHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewSearchHandler creates a new SearchHandler
func NewSearchHandler(services *service.Services, log zerolog.Logger) *SearchHandler {
	return &SearchHandler{
		services: services,
		log:      log.With().Str("handler", "search").Logger(),
	}
}

// Search handles GET /api/search?q=&type=&page=&limit=&suggestions=
func (h *SearchHandler) Search(c *gin.Context) {
	req := parseSearchRequest(c)

	resp, err := h.services.Search.Search(c.Request.Context(), req)
	if err != nil {
		h.log.Error().Err(err).Str("term", req.Term).Msg("Search failed")
		c.JSON(http.StatusInternalServerError, gin.H{
			"results":     []models.SearchResult{},
			"totalCount":  0,
			"suggestions": []models.Suggestion{},
			"error":       msgSearchFailed,
		})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Record handles POST /api/search
func (h *SearchHandler) Record(c *gin.Context) {
	var body struct {
		SearchTerm string `json:"searchTerm"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, msgBadRequest)
		return
	}

	if err := h.services.Search.RecordSearch(c.Request.Context(), body.SearchTerm); err != nil {
		h.log.Error().Err(err).Msg("Failed to record search")
		fail(c, http.StatusInternalServerError, msgInternal)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// parseSearchRequest reads the query string; malformed numbers fall back to defaults
func parseSearchRequest(c *gin.Context) models.SearchRequest {
	page, _ := strconv.Atoi(c.Query("page"))
	limit, _ := strconv.Atoi(c.Query("limit"))
	suggestions, _ := strconv.ParseBool(strings.TrimSpace(c.Query("suggestions")))

	return models.SearchRequest{
		Term:        c.Query("q"),
		Type:        c.DefaultQuery("type", models.SearchTypeAll),
		Page:        page,
		Limit:       limit,
		Suggestions: suggestions,
	}
}
