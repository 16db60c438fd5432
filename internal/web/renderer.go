// Package web holds the HTML templates and the renderer that serves them.
package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/khabar-news/khabar/internal/config"
	"github.com/khabar-news/khabar/internal/models"
	"github.com/rs/zerolog"
)

//go:embed templates
var templateFS embed.FS

// Page names
const (
	PageHome        = "home"
	PageArticle     = "article"
	PageCategory    = "category"
	PageCalendar    = "calendar"
	PageEvent       = "event"
	PageVideos      = "videos"
	PageWeeklyPDF   = "weekly_pdf"
	PageRSSFeed     = "rss_feed"
	PageSearch      = "search"
	PageAbout       = "about"
	PageContact     = "contact"
	PageSubmissions = "submissions"
	PageTerms       = "terms"
	PagePrivacy     = "privacy"
	PageDisclaimer  = "disclaimer"
	PageNotFound    = "not_found"
	PageError       = "error"
)

// PageData is what every page template receives
type PageData struct {
	Title       string
	Description string
	Path        string
	Site        config.SiteConfig
	Layout      *models.Layout
	Year        int
	Content     any
}

// Renderer executes a page inside the shared layout
type Renderer struct {
	pages map[string]*template.Template
	site  config.SiteConfig
	log   zerolog.Logger
}

// NewRenderer parses the layout and partials once per page
func NewRenderer(site config.SiteConfig, log zerolog.Logger) (*Renderer, error) {
	pageFiles, err := fs.Glob(templateFS, "templates/pages/*.html")
	if err != nil {
		return nil, fmt.Errorf("listing page templates: %w", err)
	}

	r := &Renderer{
		pages: make(map[string]*template.Template, len(pageFiles)),
		site:  site,
		log:   log.With().Str("component", "renderer").Logger(),
	}
	for _, file := range pageFiles {
		name := strings.TrimSuffix(path.Base(file), ".html")
		tmpl, err := template.New(name).
			Funcs(funcMap()).
			ParseFS(templateFS, "templates/layout.html", "templates/partials/*.html", file)
		if err != nil {
			return nil, fmt.Errorf("parsing page %s: %w", name, err)
		}
		r.pages[name] = tmpl
	}
	return r, nil
}

// Has reports whether a page template exists
func (r *Renderer) Has(page string) bool {
	_, ok := r.pages[page]
	return ok
}

// Render writes page with status. The page is buffered so a template error
// never leaves a half-written response.
func (r *Renderer) Render(c *gin.Context, status int, page string, data PageData) {
	tmpl, ok := r.pages[page]
	if !ok {
		r.log.Error().Str("page", page).Msg("Unknown page template")
		c.String(http.StatusInternalServerError, "internal server error")
		return
	}

	data.Site = r.site
	if data.Layout == nil {
		data.Layout = &models.Layout{}
	}
	if data.Path == "" {
		data.Path = c.Request.URL.Path
	}
	if data.Year == 0 {
		data.Year = time.Now().Year()
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		r.log.Error().Err(err).Str("page", page).Msg("Failed to render page")
		c.String(http.StatusInternalServerError, "internal server error")
		return
	}
	c.Data(status, "text/html; charset=utf-8", buf.Bytes())
}
