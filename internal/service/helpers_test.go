package service_test

import (
	"context"
	"errors"
	"time"

	"github.com/khabar-news/khabar/internal/cache"
	"github.com/khabar-news/khabar/internal/config"
	"github.com/khabar-news/khabar/internal/mocks"
	"github.com/khabar-news/khabar/internal/models"
	"github.com/khabar-news/khabar/internal/queries"
	"github.com/khabar-news/khabar/internal/repository"
	"github.com/khabar-news/khabar/internal/service"
	"github.com/rs/zerolog"
)

var fixedNow = time.Date(2025, 3, 15, 10, 0, 0, 0, time.UTC)

type testHarness struct {
	querier  *mocks.MockQuerier
	mailers  *mocks.MockMailerFactory
	repo     *mocks.MockDispatchRepository
	store    *cache.MemoryTagStore
	fetcher  *stubFetcher
	cfg      *config.Config
	services *service.Services
}

func testConfig() *config.Config {
	return &config.Config{
		Search: config.SearchConfig{
			CacheTTL:        5 * time.Minute,
			CacheCapacity:   100,
			DefaultLimit:    10,
			MaxLimit:        50,
			SuggestionCount: 5,
		},
		Mail: config.MailConfig{DefaultFrom: "noreply@khabar.news"},
		Site: config.SiteConfig{Name: "खबर"},
	}
}

func newHarness(mutate ...func(cfg *config.Config)) *testHarness {
	cfg := testConfig()
	for _, fn := range mutate {
		fn(cfg)
	}

	h := &testHarness{
		querier: mocks.NewMockQuerier(),
		mailers: mocks.NewMockMailerFactory(),
		repo:    mocks.NewMockDispatchRepository(),
		store:   cache.NewMemoryTagStore(),
		fetcher: &stubFetcher{feeds: map[string]*models.Feed{}, errs: map[string]error{}},
		cfg:     cfg,
	}
	h.services = service.NewServices(service.Deps{
		Querier: h.querier,
		Catalog: queries.NewCatalog(time.Minute),
		Store:   h.store,
		Mailers: h.mailers,
		Fetcher: h.fetcher,
		Repos:   &repository.Repositories{Dispatch: h.repo},
		Now:     func() time.Time { return fixedNow },
	}, cfg, zerolog.Nop())
	return h
}

// stubFetcher answers feed fetches by source URL
type stubFetcher struct {
	feeds map[string]*models.Feed
	errs  map[string]error
	calls []string
}

func (f *stubFetcher) Fetch(ctx context.Context, source config.FeedSource) (*models.Feed, error) {
	f.calls = append(f.calls, source.URL)
	if err := f.errs[source.URL]; err != nil {
		return nil, err
	}
	if feed, ok := f.feeds[source.URL]; ok {
		return feed, nil
	}
	return nil, errors.New("unreachable")
}
