package service

import (
	"context"
	"fmt"

	"github.com/khabar-news/khabar/internal/cache"
	"github.com/khabar-news/khabar/internal/models"
	"github.com/rs/zerolog"
)

// cacheService is the implementation of CacheService
type cacheService struct {
	store  cache.TagStore
	search SearchService
	log    zerolog.Logger
}

func newCacheService(store cache.TagStore, search SearchService, log zerolog.Logger) *cacheService {
	return &cacheService{
		store:  store,
		search: search,
		log:    log.With().Str("service", "cache").Logger(),
	}
}

// Invalidate drops every stored entry tagged with tag. Searchable content types
// also purge the in-process search cache.
func (s *cacheService) Invalidate(ctx context.Context, tag string) (int, error) {
	n := 0
	if s.store != nil {
		var err error
		n, err = s.store.InvalidateTag(ctx, tag)
		if err != nil {
			return 0, fmt.Errorf("invalidating tag %q: %w", tag, err)
		}
	}

	for _, t := range models.SearchTypes {
		if t == tag {
			s.search.Purge()
			break
		}
	}

	s.log.Info().Str("tag", tag).Int("entries", n).Msg("Cache tag revalidated")
	return n, nil
}
