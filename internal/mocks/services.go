package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/khabar-news/khabar/internal/cms"
	"github.com/khabar-news/khabar/internal/models"
	"github.com/khabar-news/khabar/internal/service"
)

// MockContentService is a mock implementation of ContentService.
// Unset funcs return empty pages; unknown slugs return cms.ErrNotFound.
type MockContentService struct {
	LayoutFunc   func(ctx context.Context) (*models.Layout, error)
	HomeFunc     func(ctx context.Context) (*models.HomePage, error)
	ArticleFunc  func(ctx context.Context, slug string) (*models.ArticlePage, error)
	CategoryFunc func(ctx context.Context, slug string, page int) (*models.CategoryPage, error)
	CalendarFunc func(ctx context.Context, month time.Time) (*models.CalendarPage, error)
	EventFunc    func(ctx context.Context, slug string) (*models.EventPage, error)
	VideosFunc   func(ctx context.Context, page int) (*models.VideosPage, error)
	PDFsFunc     func(ctx context.Context) ([]models.WeeklyPDF, error)
}

// Verify interface compliance
var _ service.ContentService = (*MockContentService)(nil)

func NewMockContentService() *MockContentService {
	return &MockContentService{}
}

func (m *MockContentService) Layout(ctx context.Context) (*models.Layout, error) {
	if m.LayoutFunc != nil {
		return m.LayoutFunc(ctx)
	}
	return &models.Layout{}, nil
}

func (m *MockContentService) Home(ctx context.Context) (*models.HomePage, error) {
	if m.HomeFunc != nil {
		return m.HomeFunc(ctx)
	}
	return &models.HomePage{}, nil
}

func (m *MockContentService) Article(ctx context.Context, slug string) (*models.ArticlePage, error) {
	if m.ArticleFunc != nil {
		return m.ArticleFunc(ctx, slug)
	}
	return nil, cms.ErrNotFound
}

func (m *MockContentService) Category(ctx context.Context, slug string, page int) (*models.CategoryPage, error) {
	if m.CategoryFunc != nil {
		return m.CategoryFunc(ctx, slug, page)
	}
	return nil, cms.ErrNotFound
}

func (m *MockContentService) Calendar(ctx context.Context, month time.Time) (*models.CalendarPage, error) {
	if m.CalendarFunc != nil {
		return m.CalendarFunc(ctx, month)
	}
	return &models.CalendarPage{Month: month}, nil
}

func (m *MockContentService) Event(ctx context.Context, slug string) (*models.EventPage, error) {
	if m.EventFunc != nil {
		return m.EventFunc(ctx, slug)
	}
	return nil, cms.ErrNotFound
}

func (m *MockContentService) Videos(ctx context.Context, page int) (*models.VideosPage, error) {
	if m.VideosFunc != nil {
		return m.VideosFunc(ctx, page)
	}
	return &models.VideosPage{}, nil
}

func (m *MockContentService) WeeklyPDFs(ctx context.Context) ([]models.WeeklyPDF, error) {
	if m.PDFsFunc != nil {
		return m.PDFsFunc(ctx)
	}
	return nil, nil
}

// MockSearchService is a mock implementation of SearchService
type MockSearchService struct {
	mu         sync.Mutex
	SearchFunc func(ctx context.Context, req models.SearchRequest) (*models.SearchResponse, error)
	Requests   []models.SearchRequest
	Recorded   []string
	Size       int
	Purges     int
}

// Verify interface compliance
var _ service.SearchService = (*MockSearchService)(nil)

func NewMockSearchService() *MockSearchService {
	return &MockSearchService{}
}

func (m *MockSearchService) Search(ctx context.Context, req models.SearchRequest) (*models.SearchResponse, error) {
	m.mu.Lock()
	m.Requests = append(m.Requests, req)
	m.mu.Unlock()
	if m.SearchFunc != nil {
		return m.SearchFunc(ctx, req)
	}
	return models.EmptySearchResponse(""), nil
}

func (m *MockSearchService) RecordSearch(ctx context.Context, term string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Recorded = append(m.Recorded, term)
	return nil
}

func (m *MockSearchService) CacheSize() int {
	return m.Size
}

func (m *MockSearchService) Purge() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Purges++
}

// MockFeedService is a mock implementation of FeedService
type MockFeedService struct {
	Feed  *models.Feed
	Err   error
	Calls int
}

// Verify interface compliance
var _ service.FeedService = (*MockFeedService)(nil)

func (m *MockFeedService) Latest(ctx context.Context) (*models.Feed, error) {
	m.Calls++
	return m.Feed, m.Err
}

// MockCacheService is a mock implementation of CacheService
type MockCacheService struct {
	Invalidated []string
	Count       int
	Err         error
}

// Verify interface compliance
var _ service.CacheService = (*MockCacheService)(nil)

func (m *MockCacheService) Invalidate(ctx context.Context, tag string) (int, error) {
	if m.Err != nil {
		return 0, m.Err
	}
	m.Invalidated = append(m.Invalidated, tag)
	return m.Count, nil
}
