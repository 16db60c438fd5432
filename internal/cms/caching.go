package cms

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/khabar-news/khabar/internal/cache"
	"github.com/rs/zerolog"
)

// CachingQuerier serves repeated queries from a TagStore for their revalidate window.
// Store failures degrade to direct queries.
type CachingQuerier struct {
	next  Querier
	store cache.TagStore
	log   zerolog.Logger
}

var _ Querier = (*CachingQuerier)(nil)

// NewCachingQuerier wraps next with store
func NewCachingQuerier(next Querier, store cache.TagStore, log zerolog.Logger) *CachingQuerier {
	return &CachingQuerier{
		next:  next,
		store: store,
		log:   log.With().Str("component", "cms_cache").Logger(),
	}
}

func (c *CachingQuerier) Query(ctx context.Context, q Query, params Params) (json.RawMessage, error) {
	if q.Revalidate <= 0 {
		return c.next.Query(ctx, q, params)
	}

	key, err := CacheKey(q, params)
	if err != nil {
		return c.next.Query(ctx, q, params)
	}

	if data, ok, err := c.store.Get(ctx, key); err != nil {
		c.log.Warn().Err(err).Str("query", q.Name).Msg("Cache read failed")
	} else if ok {
		return json.RawMessage(data), nil
	}

	raw, err := c.next.Query(ctx, q, params)
	if err != nil {
		return nil, err
	}
	if err := c.store.Set(ctx, key, raw, q.Revalidate, q.Tags); err != nil {
		c.log.Warn().Err(err).Str("query", q.Name).Msg("Cache write failed")
	}
	return raw, nil
}

// CacheKey derives a stable key from the query name and its parameters
func CacheKey(q Query, params Params) (string, error) {
	// encoding/json sorts map keys, so equal params encode identically
	encoded, err := json.Marshal(params)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(encoded)
	return "cms:" + q.Name + ":" + hex.EncodeToString(sum[:12]), nil
}
