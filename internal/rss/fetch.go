// Package rss fetches external feeds and picks the first usable one from an ordered list.
package rss

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/khabar-news/khabar/internal/cache"
	"github.com/khabar-news/khabar/internal/config"
	"github.com/khabar-news/khabar/internal/models"
	"github.com/mmcdole/gofeed"
	"github.com/rs/zerolog"
)

// CacheTag groups every cached feed body
const CacheTag = "rss"

const (
	maxFeedBytes = 5 << 20
	userAgent    = "khabar-feed-reader/1.0"
)

// Fetcher retrieves and parses one feed source
type Fetcher interface {
	Fetch(ctx context.Context, source config.FeedSource) (*models.Feed, error)
}

// HTTPFetcher downloads feeds with a cache-busting parameter and keeps the body
// for the revalidate window
type HTTPFetcher struct {
	client     *http.Client
	store      cache.TagStore
	revalidate time.Duration
	log        zerolog.Logger
	now        func() time.Time
}

var _ Fetcher = (*HTTPFetcher)(nil)

// NewHTTPFetcher creates a fetcher; store may be nil to disable body caching
func NewHTTPFetcher(cfg *config.RSSConfig, store cache.TagStore, log zerolog.Logger) *HTTPFetcher {
	return &HTTPFetcher{
		client:     &http.Client{Timeout: cfg.Timeout},
		store:      store,
		revalidate: cfg.Revalidate,
		log:        log.With().Str("component", "rss").Logger(),
		now:        time.Now,
	}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, source config.FeedSource) (*models.Feed, error) {
	cacheKey := "rss:" + source.URL

	if f.store != nil {
		if body, ok, err := f.store.Get(ctx, cacheKey); err == nil && ok {
			return f.parse(source, body)
		}
	}

	body, err := f.download(ctx, source)
	if err != nil {
		return nil, err
	}

	feed, err := f.parse(source, body)
	if err != nil {
		return nil, err
	}

	if f.store != nil && f.revalidate > 0 {
		if err := f.store.Set(ctx, cacheKey, body, f.revalidate, []string{CacheTag}); err != nil {
			f.log.Warn().Err(err).Str("source", source.Name).Msg("Failed to cache feed body")
		}
	}
	return feed, nil
}

func (f *HTTPFetcher) download(ctx context.Context, source config.FeedSource) ([]byte, error) {
	target, err := cacheBust(source.URL, f.now())
	if err != nil {
		return nil, fmt.Errorf("feed %s: %w", source.Name, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("feed %s: %w", source.Name, err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml, text/xml;q=0.9, */*;q=0.8")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", source.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching %s: unexpected status %d", source.Name, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedBytes))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", source.Name, err)
	}
	return body, nil
}

func (f *HTTPFetcher) parse(source config.FeedSource, body []byte) (*models.Feed, error) {
	parsed, err := gofeed.NewParser().Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", source.Name, err)
	}

	now := f.now()
	feed := &models.Feed{
		Source:      source.Name,
		Title:       strings.TrimSpace(parsed.Title),
		Link:        parsed.Link,
		Description: parsed.Description,
		Items:       make([]models.FeedItem, 0, len(parsed.Items)),
	}

	estimated := 0
	for _, item := range parsed.Items {
		if item == nil {
			continue
		}
		published, src := normalizeDate(item, now)
		if src != dateFromFeed {
			estimated++
		}
		feed.Items = append(feed.Items, models.FeedItem{
			Title:         strings.TrimSpace(item.Title),
			Link:          item.Link,
			Description:   item.Description,
			Image:         itemImage(item),
			Categories:    item.Categories,
			PublishedAt:   published,
			DateEstimated: src != dateFromFeed,
		})
	}

	if estimated > 0 {
		f.log.Warn().
			Str("source", source.Name).
			Int("items", estimated).
			Msg("Feed items without a parseable publish date; dates estimated")
	}
	return feed, nil
}

func itemImage(item *gofeed.Item) string {
	if item.Image != nil && item.Image.URL != "" {
		return item.Image.URL
	}
	for _, enc := range item.Enclosures {
		if enc != nil && strings.HasPrefix(enc.Type, "image/") {
			return enc.URL
		}
	}
	return ""
}

// cacheBust appends a timestamp parameter so intermediaries do not serve a stale copy
func cacheBust(raw string, now time.Time) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("_t", strconv.FormatInt(now.UnixNano(), 10))
	u.RawQuery = q.Encode()
	return u.String(), nil
}
