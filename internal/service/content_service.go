package service

import (
	"context"
	"fmt"
	"time"

	"github.com/khabar-news/khabar/internal/cms"
	"github.com/khabar-news/khabar/internal/models"
	"github.com/khabar-news/khabar/internal/portabletext"
	"github.com/khabar-news/khabar/internal/queries"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Listing sizes
const (
	HomeLatestCount    = 12
	TrendingCount      = 5
	EditorPickCount    = 4
	HomeEventCount     = 3
	HomeVideoCount     = 4
	TestimonialCount   = 6
	RelatedCount       = 4
	ArticlesPerPage    = 12
	VideosPerPage      = 12
	UpcomingEventCount = 5
	WeeklyPDFCount     = 20
)

// contentService is the implementation of ContentService
type contentService struct {
	querier cms.Querier
	catalog *queries.Catalog
	now     func() time.Time
	log     zerolog.Logger
}

func newContentService(querier cms.Querier, catalog *queries.Catalog, now func() time.Time, log zerolog.Logger) *contentService {
	return &contentService{
		querier: querier,
		catalog: catalog,
		now:     now,
		log:     log.With().Str("service", "content").Logger(),
	}
}

// Layout loads the navigation categories and the notice ticker
func (s *contentService) Layout(ctx context.Context) (*models.Layout, error) {
	layout := &models.Layout{}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		cats, err := cms.Fetch[[]models.Category](gctx, s.querier, s.catalog.Categories, nil)
		if err != nil {
			return fmt.Errorf("loading categories: %w", err)
		}
		layout.Categories = cats
		return nil
	})
	g.Go(func() error {
		layout.Notices = optional(gctx, s.log, "notices", func(ctx context.Context) ([]models.Notice, error) {
			return cms.Fetch[[]models.Notice](ctx, s.querier, s.catalog.ActiveNotices, nil)
		})
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return layout, nil
}

// Home fetches every home page section concurrently. Only the latest articles are
// required; the other sections render empty when their query fails.
func (s *contentService) Home(ctx context.Context) (*models.HomePage, error) {
	page := &models.HomePage{}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		latest, err := cms.Fetch[[]models.ArticleSummary](gctx, s.querier, s.catalog.LatestArticles, queries.Page(1, HomeLatestCount))
		if err != nil {
			return fmt.Errorf("loading latest articles: %w", err)
		}
		page.Latest = latest
		return nil
	})
	g.Go(func() error {
		page.Trending = s.articles(gctx, "trending", s.catalog.TrendingArticles, TrendingCount)
		return nil
	})
	g.Go(func() error {
		page.EditorPicks = s.articles(gctx, "editor picks", s.catalog.EditorPicks, EditorPickCount)
		return nil
	})
	g.Go(func() error {
		page.Events = optional(gctx, s.log, "featured events", func(ctx context.Context) ([]models.Event, error) {
			return cms.Fetch[[]models.Event](ctx, s.querier, s.catalog.FeaturedEvents, cms.Params{"limit": HomeEventCount})
		})
		return nil
	})
	g.Go(func() error {
		page.Videos = optional(gctx, s.log, "latest videos", func(ctx context.Context) ([]models.Video, error) {
			return cms.Fetch[[]models.Video](ctx, s.querier, s.catalog.LatestVideos, cms.Params{"limit": HomeVideoCount})
		})
		return nil
	})
	g.Go(func() error {
		page.Testimonials = optional(gctx, s.log, "testimonials", func(ctx context.Context) ([]models.Testimonial, error) {
			return cms.Fetch[[]models.Testimonial](ctx, s.querier, s.catalog.FeaturedTestimonials, cms.Params{"limit": TestimonialCount})
		})
		return nil
	})
	g.Go(func() error {
		page.TopAds = s.ads(gctx, models.PlacementHomeTop)
		return nil
	})
	g.Go(func() error {
		page.SidebarAds = s.ads(gctx, models.PlacementHomeSidebar)
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return page, nil
}

// Article loads an article by slug with related articles and its ad slots.
// A missing slug returns cms.ErrNotFound.
func (s *contentService) Article(ctx context.Context, slug string) (*models.ArticlePage, error) {
	article, err := cms.FetchOne[models.Article](ctx, s.querier, s.catalog.ArticleBySlug, cms.Params{"slug": slug})
	if err != nil {
		return nil, err
	}

	page := &models.ArticlePage{Article: article}
	if body, err := portabletext.Render(article.Body); err != nil {
		s.log.Warn().Err(err).Str("slug", slug).Msg("Failed to render article body")
	} else {
		page.BodyHTML = body
	}

	tags := article.Tags
	if tags == nil {
		tags = []string{}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		page.Related = optional(gctx, s.log, "related articles", func(ctx context.Context) ([]models.ArticleSummary, error) {
			return cms.Fetch[[]models.ArticleSummary](ctx, s.querier, s.catalog.RelatedArticles, cms.Params{
				"slug":          slug,
				"categoryId":    article.CategoryID(),
				"subcategoryId": article.SubcategoryID(),
				"tags":          tags,
				"limit":         RelatedCount,
			})
		})
		return nil
	})
	g.Go(func() error {
		page.TopAds = s.ads(gctx, models.PlacementArticleTop)
		return nil
	})
	g.Go(func() error {
		page.InlineAds = s.ads(gctx, models.PlacementArticleInline)
		return nil
	})
	g.Go(func() error {
		page.SidebarAds = s.ads(gctx, models.PlacementArticleSide)
		return nil
	})
	_ = g.Wait()

	return page, nil
}

// Category loads one page of a category listing
func (s *contentService) Category(ctx context.Context, slug string, pageNum int) (*models.CategoryPage, error) {
	if pageNum < 1 {
		pageNum = 1
	}

	category, err := cms.FetchOne[models.Category](ctx, s.querier, s.catalog.CategoryBySlug, cms.Params{"slug": slug})
	if err != nil {
		return nil, err
	}

	page := &models.CategoryPage{Category: category}
	var total int
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		articles, err := cms.Fetch[[]models.ArticleSummary](gctx, s.querier, s.catalog.ArticlesByCategory,
			queries.Merge(cms.Params{"slug": slug}, queries.Page(pageNum, ArticlesPerPage)))
		if err != nil {
			return fmt.Errorf("loading category articles: %w", err)
		}
		page.Articles = articles
		return nil
	})
	g.Go(func() error {
		n, err := cms.Fetch[int](gctx, s.querier, s.catalog.CountByCategory, cms.Params{"slug": slug})
		if err != nil {
			return fmt.Errorf("counting category articles: %w", err)
		}
		total = n
		return nil
	})
	g.Go(func() error {
		page.Ads = s.ads(gctx, models.PlacementCategory)
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	page.Pagination = models.NewPagination(pageNum, ArticlesPerPage, total)
	return page, nil
}

// Calendar loads the events overlapping the month containing month
func (s *contentService) Calendar(ctx context.Context, month time.Time) (*models.CalendarPage, error) {
	if month.IsZero() {
		month = s.now()
	}
	first := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, month.Location())
	next := first.AddDate(0, 1, 0)

	page := &models.CalendarPage{
		Month: first,
		Prev:  first.AddDate(0, -1, 0),
		Next:  next,
	}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		events, err := cms.Fetch[[]models.Event](gctx, s.querier, s.catalog.EventsBetween, cms.Params{
			"from": first.Format(time.RFC3339),
			"to":   next.Format(time.RFC3339),
		})
		if err != nil {
			return fmt.Errorf("loading events: %w", err)
		}
		page.Events = events
		return nil
	})
	g.Go(func() error {
		page.Upcoming = s.upcoming(gctx)
		return nil
	})
	g.Go(func() error {
		page.Ads = s.ads(gctx, models.PlacementCalendar)
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	page.Weeks = monthGrid(first, page.Events, s.now())
	return page, nil
}

// Event loads a single event by slug
func (s *contentService) Event(ctx context.Context, slug string) (*models.EventPage, error) {
	event, err := cms.FetchOne[models.Event](ctx, s.querier, s.catalog.EventBySlug, cms.Params{"slug": slug})
	if err != nil {
		return nil, err
	}

	page := &models.EventPage{Event: event}
	if details, err := portabletext.Render(event.DetailedDescription); err != nil {
		s.log.Warn().Err(err).Str("slug", slug).Msg("Failed to render event description")
	} else {
		page.DetailsHTML = details
	}

	for _, e := range s.upcoming(ctx) {
		if e.ID != event.ID {
			page.Upcoming = append(page.Upcoming, e)
		}
	}
	return page, nil
}

// Videos loads one page of the video gallery
func (s *contentService) Videos(ctx context.Context, pageNum int) (*models.VideosPage, error) {
	if pageNum < 1 {
		pageNum = 1
	}

	page := &models.VideosPage{}
	var total int
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		videos, err := cms.Fetch[[]models.Video](gctx, s.querier, s.catalog.Videos, queries.Page(pageNum, VideosPerPage))
		if err != nil {
			return fmt.Errorf("loading videos: %w", err)
		}
		page.Videos = videos
		return nil
	})
	g.Go(func() error {
		n, err := cms.Fetch[int](gctx, s.querier, s.catalog.CountVideos, nil)
		if err != nil {
			return fmt.Errorf("counting videos: %w", err)
		}
		total = n
		return nil
	})
	g.Go(func() error {
		page.Ads = s.ads(gctx, models.PlacementVideos)
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	page.Pagination = models.NewPagination(pageNum, VideosPerPage, total)
	return page, nil
}

// WeeklyPDFs lists the latest print editions
func (s *contentService) WeeklyPDFs(ctx context.Context) ([]models.WeeklyPDF, error) {
	pdfs, err := cms.Fetch[[]models.WeeklyPDF](ctx, s.querier, s.catalog.WeeklyPDFs, cms.Params{"limit": WeeklyPDFCount})
	if err != nil {
		return nil, fmt.Errorf("loading weekly pdfs: %w", err)
	}
	return pdfs, nil
}

func (s *contentService) articles(ctx context.Context, section string, q cms.Query, limit int) []models.ArticleSummary {
	return optional(ctx, s.log, section, func(ctx context.Context) ([]models.ArticleSummary, error) {
		return cms.Fetch[[]models.ArticleSummary](ctx, s.querier, q, cms.Params{"limit": limit})
	})
}

func (s *contentService) upcoming(ctx context.Context) []models.Event {
	return optional(ctx, s.log, "upcoming events", func(ctx context.Context) ([]models.Event, error) {
		return cms.Fetch[[]models.Event](ctx, s.querier, s.catalog.UpcomingEvents, cms.Params{"limit": UpcomingEventCount})
	})
}

// ads loads the active ads for slot. The window is re-checked locally because a
// cached result can outlive an ad's end date.
func (s *contentService) ads(ctx context.Context, slot string) []models.Advertisement {
	ads := optional(ctx, s.log, "ads "+slot, func(ctx context.Context) ([]models.Advertisement, error) {
		return cms.Fetch[[]models.Advertisement](ctx, s.querier, s.catalog.ActiveAds, cms.Params{"placement": slot})
	})
	return models.FilterActiveAds(ads, slot, s.now())
}

// optional runs a secondary section query; failures are logged and yield nil
func optional[T any](ctx context.Context, log zerolog.Logger, section string, fn func(context.Context) ([]T, error)) []T {
	items, err := fn(ctx)
	if err != nil {
		log.Warn().Err(err).Str("section", section).Msg("Section query failed; rendering without it")
		return nil
	}
	return items
}

// monthGrid lays out the weeks covering first's month, Sunday first
func monthGrid(first time.Time, events []models.Event, now time.Time) [][]models.CalendarDay {
	start := first.AddDate(0, 0, -int(first.Weekday()))
	next := first.AddDate(0, 1, 0)
	now = now.In(first.Location())
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, first.Location())

	var weeks [][]models.CalendarDay
	for day := start; day.Before(next); {
		week := make([]models.CalendarDay, 0, 7)
		for i := 0; i < 7; i++ {
			week = append(week, models.CalendarDay{
				Date:    day,
				InMonth: day.Month() == first.Month(),
				Today:   day.Equal(today),
				Events:  eventsOn(day, events),
			})
			day = day.AddDate(0, 0, 1)
		}
		weeks = append(weeks, week)
	}
	return weeks
}

// eventsOn returns the events whose date range covers day
func eventsOn(day time.Time, events []models.Event) []models.Event {
	dayEnd := day.AddDate(0, 0, 1)
	var out []models.Event
	for _, e := range events {
		start := e.StartDate.In(day.Location())
		end := start
		if e.EndDate != nil {
			end = e.EndDate.In(day.Location())
		}
		if start.Before(dayEnd) && !end.Before(day) {
			out = append(out, e)
		}
	}
	return out
}
