package rss

import (
	"context"
	"errors"

	"github.com/khabar-news/khabar/internal/config"
	"github.com/khabar-news/khabar/internal/models"
	"github.com/rs/zerolog"
)

// ErrNoUsableFeed means sources answered but none had items or a title
var ErrNoUsableFeed = errors.New("no feed source returned usable content")

// Orchestrator tries sources in order and returns the first feed with items
type Orchestrator struct {
	fetcher Fetcher
	sources []config.FeedSource
	log     zerolog.Logger
}

// NewOrchestrator creates an orchestrator over the ordered sources
func NewOrchestrator(fetcher Fetcher, sources []config.FeedSource, log zerolog.Logger) *Orchestrator {
	return &Orchestrator{
		fetcher: fetcher,
		sources: sources,
		log:     log.With().Str("component", "rss_fallback").Logger(),
	}
}

// Fetch makes a single pass over the sources. The first feed with items wins;
// failing that, the first feed with a title is returned marked Partial. When every
// source failed outright the last error is returned.
func (o *Orchestrator) Fetch(ctx context.Context) (*models.Feed, error) {
	var (
		partial   *models.Feed
		lastErr   error
		responded bool
	)

	for _, src := range o.sources {
		feed, err := o.fetcher.Fetch(ctx, src)
		if err != nil {
			o.log.Warn().Err(err).Str("source", src.Name).Msg("Feed source failed")
			lastErr = err
			continue
		}
		responded = true

		if len(feed.Items) > 0 {
			o.log.Debug().Str("source", src.Name).Int("items", len(feed.Items)).Msg("Feed source selected")
			return feed, nil
		}
		if partial == nil && feed.Title != "" {
			partial = feed
		}
		o.log.Info().Str("source", src.Name).Msg("Feed source returned no items")
	}

	if partial != nil {
		partial.Partial = true
		return partial, nil
	}
	if !responded && lastErr != nil {
		return nil, lastErr
	}
	if lastErr != nil {
		return nil, errors.Join(ErrNoUsableFeed, lastErr)
	}
	return nil, ErrNoUsableFeed
}

// Sources returns the configured order
func (o *Orchestrator) Sources() []config.FeedSource {
	return o.sources
}
