package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/khabar-news/khabar/internal/cache"
	"github.com/khabar-news/khabar/internal/cms"
	"github.com/khabar-news/khabar/internal/config"
	"github.com/khabar-news/khabar/internal/debounce"
	"github.com/khabar-news/khabar/internal/models"
	"github.com/khabar-news/khabar/internal/queries"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// MinSearchTermLength is the shortest term, in characters, that reaches the CMS
const MinSearchTermLength = 2

// ShortTermMessage is returned with the empty response for short terms
const ShortTermMessage = "कृपया कम से कम 2 अक्षर लिखें"

// searchService is the implementation of SearchService
type searchService struct {
	querier   cms.Querier
	catalog   *queries.Catalog
	cfg       *config.SearchConfig
	results   *cache.Bounded[string, *models.SearchResponse]
	debouncer *debounce.Debouncer[*models.SearchResponse]
	log       zerolog.Logger
}

func newSearchService(querier cms.Querier, catalog *queries.Catalog, cfg *config.SearchConfig, log zerolog.Logger) *searchService {
	return &searchService{
		querier:   querier,
		catalog:   catalog,
		cfg:       cfg,
		results:   cache.NewBounded[string, *models.SearchResponse](cfg.CacheCapacity, cfg.CacheTTL),
		debouncer: debounce.New[*models.SearchResponse](cfg.DebounceDelay),
		log:       log.With().Str("service", "search").Logger(),
	}
}

// Search answers a normalized request from the result cache when possible; otherwise
// the request is debounced per cache key and executed once for the whole burst.
func (s *searchService) Search(ctx context.Context, req models.SearchRequest) (*models.SearchResponse, error) {
	term := strings.TrimSpace(req.Term)
	if utf8.RuneCountInString(term) < MinSearchTermLength {
		return models.EmptySearchResponse(ShortTermMessage), nil
	}

	req = s.normalize(req)
	key := cacheKey(req)

	if resp, ok := s.results.Get(key); ok {
		s.log.Debug().Str("key", key).Msg("Search cache hit")
		return resp, nil
	}

	return s.debouncer.Do(ctx, key, func() (*models.SearchResponse, error) {
		// a burst that finished while this one was waiting may have filled the entry
		if resp, ok := s.results.Get(key); ok {
			return resp, nil
		}

		// the upstream call outlives any single waiter that gives up
		resp, err := s.execute(context.WithoutCancel(ctx), req)
		if err != nil {
			return nil, err
		}

		if evicted := s.results.Set(key, resp); evicted > 0 {
			s.log.Debug().Int("evicted", evicted).Msg("Search cache at capacity")
		}
		return resp, nil
	})
}

// RecordSearch logs a submitted term; nothing is persisted
func (s *searchService) RecordSearch(ctx context.Context, term string) error {
	s.log.Info().Str("term", strings.TrimSpace(term)).Msg("Search recorded")
	return nil
}

func (s *searchService) CacheSize() int {
	return s.results.Len()
}

func (s *searchService) Purge() {
	s.results.Purge()
}

func (s *searchService) normalize(req models.SearchRequest) models.SearchRequest {
	req.Term = strings.ToLower(strings.TrimSpace(req.Term))

	req.Type = strings.ToLower(strings.TrimSpace(req.Type))
	switch req.Type {
	case models.SearchTypeArticle, models.SearchTypeVideo, models.SearchTypeEvent:
	default:
		req.Type = models.SearchTypeAll
	}

	if req.Page < 1 {
		req.Page = 1
	}
	if req.Limit < 1 {
		req.Limit = s.cfg.DefaultLimit
	}
	if req.Limit > s.cfg.MaxLimit {
		req.Limit = s.cfg.MaxLimit
	}
	return req
}

func cacheKey(req models.SearchRequest) string {
	return fmt.Sprintf("%s|%s|%d|%d|%t", req.Term, req.Type, req.Page, req.Limit, req.Suggestions)
}

func (s *searchService) execute(ctx context.Context, req models.SearchRequest) (*models.SearchResponse, error) {
	types := models.SearchTypes
	if req.Type != models.SearchTypeAll {
		types = []string{req.Type}
	}
	base := cms.Params{
		"types":   types,
		"pattern": req.Term + "*",
	}

	var (
		matches     []models.SearchResult
		total       int
		suggestions []models.Suggestion
	)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		matches, err = cms.Fetch[[]models.SearchResult](gctx, s.querier, s.catalog.SearchMatches,
			queries.Merge(base, queries.Page(req.Page, req.Limit)))
		if err != nil {
			return fmt.Errorf("search matches: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		total, err = cms.Fetch[int](gctx, s.querier, s.catalog.SearchCount, base)
		if err != nil {
			return fmt.Errorf("search count: %w", err)
		}
		return nil
	})
	if req.Suggestions {
		g.Go(func() error {
			var err error
			suggestions, err = cms.Fetch[[]models.Suggestion](gctx, s.querier, s.catalog.SearchSuggestions, cms.Params{
				"types":  types,
				"prefix": req.Term + "*",
				"limit":  s.cfg.SuggestionCount,
			})
			if err != nil {
				return fmt.Errorf("search suggestions: %w", err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		s.log.Error().Err(err).Str("term", req.Term).Msg("Search query failed")
		return nil, err
	}

	results := make([]models.SearchResult, 0, len(matches))
	for _, m := range matches {
		if req.Type == models.SearchTypeAll || m.Type == req.Type {
			results = append(results, m)
		}
	}
	if suggestions == nil {
		suggestions = []models.Suggestion{}
	}

	pagination := models.NewPagination(req.Page, req.Limit, total)
	return &models.SearchResponse{
		Results:     results,
		TotalCount:  total,
		Suggestions: suggestions,
		Page:        req.Page,
		TotalPages:  pagination.TotalPages,
		HasMore:     pagination.HasNext,
		SearchTerm:  req.Term,
		Type:        req.Type,
	}, nil
}
