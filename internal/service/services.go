package service

import (
	"context"
	"time"

	"github.com/khabar-news/khabar/internal/cache"
	"github.com/khabar-news/khabar/internal/cms"
	"github.com/khabar-news/khabar/internal/config"
	"github.com/khabar-news/khabar/internal/mail"
	"github.com/khabar-news/khabar/internal/models"
	"github.com/khabar-news/khabar/internal/queries"
	"github.com/khabar-news/khabar/internal/repository"
	"github.com/khabar-news/khabar/internal/rss"
	"github.com/rs/zerolog"
)

// ContentService defines the read operations behind the HTML pages
type ContentService interface {
	Layout(ctx context.Context) (*models.Layout, error)
	Home(ctx context.Context) (*models.HomePage, error)
	Article(ctx context.Context, slug string) (*models.ArticlePage, error)
	Category(ctx context.Context, slug string, page int) (*models.CategoryPage, error)
	Calendar(ctx context.Context, month time.Time) (*models.CalendarPage, error)
	Event(ctx context.Context, slug string) (*models.EventPage, error)
	Videos(ctx context.Context, page int) (*models.VideosPage, error)
	WeeklyPDFs(ctx context.Context) ([]models.WeeklyPDF, error)
}

// SearchService defines the interface for full-text search
type SearchService interface {
	Search(ctx context.Context, req models.SearchRequest) (*models.SearchResponse, error)
	RecordSearch(ctx context.Context, term string) error
	CacheSize() int
	Purge()
}

// DispatchService delivers contact and submission forms by email
type DispatchService interface {
	SendContact(ctx context.Context, req *models.ContactRequest) error
	SendSubmission(ctx context.Context, req *models.SubmissionRequest) error
	Stats(ctx context.Context) (map[models.DispatchStatus]int, error)
	RecentFailures(ctx context.Context, limit int) ([]*models.DispatchRecord, error)
}

// FeedService returns the aggregated external news feed
type FeedService interface {
	Latest(ctx context.Context) (*models.Feed, error)
}

// CacheService invalidates cached content by tag
type CacheService interface {
	Invalidate(ctx context.Context, tag string) (int, error)
}

// Services holds all service interfaces
type Services struct {
	Content  ContentService
	Search   SearchService
	Dispatch DispatchService
	Feed     FeedService
	Cache    CacheService
}

// Deps are the collaborators shared by the services
type Deps struct {
	Querier cms.Querier
	Catalog *queries.Catalog
	Store   cache.TagStore
	Mailers mail.Factory
	Fetcher rss.Fetcher
	Repos   *repository.Repositories
	Now     func() time.Time
}

// NewServices creates all services
func NewServices(deps Deps, cfg *config.Config, log zerolog.Logger) *Services {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Repos == nil {
		deps.Repos = repository.New(nil)
	}

	searchSvc := newSearchService(deps.Querier, deps.Catalog, &cfg.Search, log)

	return &Services{
		Content:  newContentService(deps.Querier, deps.Catalog, deps.Now, log),
		Search:   searchSvc,
		Dispatch: newDispatchService(deps.Querier, deps.Catalog, deps.Mailers, deps.Repos.Dispatch, cfg, deps.Now, log),
		Feed:     newFeedService(rss.NewOrchestrator(deps.Fetcher, cfg.RSS.Sources, log), log),
		Cache:    newCacheService(deps.Store, searchSvc, log),
	}
}
