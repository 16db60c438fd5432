package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/khabar-news/khabar/internal/cms"
	"github.com/khabar-news/khabar/internal/models"
	"github.com/khabar-news/khabar/internal/service"
	"github.com/khabar-news/khabar/internal/web"
	"github.com/rs/zerolog"
)

// PageHandler renders the HTML pages
type PageHandler struct {
	services *service.Services
	renderer *web.Renderer
	log      zerolog.Logger
}

// NewPageHandler creates a new PageHandler
func NewPageHandler(services *service.Services, renderer *web.Renderer, log zerolog.Logger) *PageHandler {
	return &PageHandler{
		services: services,
		renderer: renderer,
		log:      log.With().Str("handler", "page").Logger(),
	}
}

// Home handles GET /
func (h *PageHandler) Home(c *gin.Context) {
	home, err := h.services.Content.Home(c.Request.Context())
	if err != nil {
		h.serverError(c, "home", err)
		return
	}
	h.render(c, web.PageHome, "", home)
}

// Article handles GET /articles/:slug
func (h *PageHandler) Article(c *gin.Context) {
	page, err := h.services.Content.Article(c.Request.Context(), c.Param("slug"))
	if err != nil {
		h.contentError(c, "article", err)
		return
	}
	h.renderWith(c, http.StatusOK, web.PageArticle, web.PageData{
		Title:       page.Article.Title,
		Description: page.Article.Excerpt,
		Content:     page,
	})
}

// Category handles GET /category/:slug?page=
func (h *PageHandler) Category(c *gin.Context) {
	slug := c.Param("slug")
	page, err := h.services.Content.Category(c.Request.Context(), slug, pageParam(c))
	if err != nil {
		h.contentError(c, "category", err)
		return
	}
	h.renderWith(c, http.StatusOK, web.PageCategory, web.PageData{
		Title:       page.Category.DisplayTitle(),
		Description: page.Category.Description,
		Content:     web.CategoryView{CategoryPage: page, Base: "/category/" + slug},
	})
}

// Calendar handles GET /calendar?month=YYYY-MM
func (h *PageHandler) Calendar(c *gin.Context) {
	var month time.Time
	if raw := c.Query("month"); raw != "" {
		parsed, err := time.Parse("2006-01", raw)
		if err != nil {
			h.NotFound(c)
			return
		}
		month = parsed
	}

	page, err := h.services.Content.Calendar(c.Request.Context(), month)
	if err != nil {
		h.serverError(c, "calendar", err)
		return
	}
	h.render(c, web.PageCalendar, "कार्यक्रम कैलेंडर", page)
}

// Event handles GET /calendar/event/:slug
func (h *PageHandler) Event(c *gin.Context) {
	page, err := h.services.Content.Event(c.Request.Context(), c.Param("slug"))
	if err != nil {
		h.contentError(c, "event", err)
		return
	}
	h.renderWith(c, http.StatusOK, web.PageEvent, web.PageData{
		Title:       page.Event.Title,
		Description: page.Event.Description,
		Content:     page,
	})
}

// Videos handles GET /videos?page=
func (h *PageHandler) Videos(c *gin.Context) {
	page, err := h.services.Content.Videos(c.Request.Context(), pageParam(c))
	if err != nil {
		h.serverError(c, "videos", err)
		return
	}
	h.render(c, web.PageVideos, "वीडियो", web.VideosView{VideosPage: page, Base: "/videos"})
}

// WeeklyPDF handles GET /weekly-pdf
func (h *PageHandler) WeeklyPDF(c *gin.Context) {
	pdfs, err := h.services.Content.WeeklyPDFs(c.Request.Context())
	if err != nil {
		h.serverError(c, "weekly pdf", err)
		return
	}
	h.render(c, web.PageWeeklyPDF, "साप्ताहिक अंक", pdfs)
}

// RSSFeed handles GET /rss-feed. When no source yields a feed the page is not found.
func (h *PageHandler) RSSFeed(c *gin.Context) {
	feed, err := h.services.Feed.Latest(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("External feed unavailable")
		h.NotFound(c)
		return
	}
	h.render(c, web.PageRSSFeed, "अन्य समाचार", feed)
}

// Search handles GET /search?q=&type=&page=
func (h *PageHandler) Search(c *gin.Context) {
	req := parseSearchRequest(c)
	view := web.SearchView{
		Query: req.Term,
		Type:  req.Type,
		Types: models.SearchTypes,
	}

	if req.Term != "" {
		resp, err := h.services.Search.Search(c.Request.Context(), req)
		if err != nil {
			h.log.Error().Err(err).Str("term", req.Term).Msg("Search failed")
			view.Error = msgSearchFailed
		} else {
			view.Response = resp
		}
	}
	h.render(c, web.PageSearch, "खोजें", view)
}

// Static renders a page whose content does not come from the CMS
func (h *PageHandler) Static(page, title string, content any) gin.HandlerFunc {
	return func(c *gin.Context) {
		h.render(c, page, title, content)
	}
}

// NotFound renders the 404 page
func (h *PageHandler) NotFound(c *gin.Context) {
	h.renderWith(c, http.StatusNotFound, web.PageNotFound, web.PageData{Title: "पृष्ठ नहीं मिला"})
}

func (h *PageHandler) render(c *gin.Context, page, title string, content any) {
	h.renderWith(c, http.StatusOK, page, web.PageData{Title: title, Content: content})
}

// renderWith loads the shared layout and renders page. A layout failure degrades
// to an empty navigation rather than failing the page.
func (h *PageHandler) renderWith(c *gin.Context, status int, page string, data web.PageData) {
	data.Layout = h.layout(c.Request.Context())
	h.renderer.Render(c, status, page, data)
}

func (h *PageHandler) layout(ctx context.Context) *models.Layout {
	layout, err := h.services.Content.Layout(ctx)
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to load layout")
		return &models.Layout{}
	}
	return layout
}

// contentError renders 404 for a missing slug and 500 otherwise
func (h *PageHandler) contentError(c *gin.Context, page string, err error) {
	if errors.Is(err, cms.ErrNotFound) {
		h.NotFound(c)
		return
	}
	h.serverError(c, page, err)
}

func (h *PageHandler) serverError(c *gin.Context, page string, err error) {
	h.log.Error().Err(err).Str("page", page).Msg("Failed to load page")
	h.renderWith(c, http.StatusInternalServerError, web.PageError, web.PageData{Title: "त्रुटि"})
}

func pageParam(c *gin.Context) int {
	page, err := strconv.Atoi(c.Query("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}
