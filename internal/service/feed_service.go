package service

import (
	"context"

	"github.com/khabar-news/khabar/internal/models"
	"github.com/khabar-news/khabar/internal/rss"
	"github.com/rs/zerolog"
)

// feedService is the implementation of FeedService
type feedService struct {
	orchestrator *rss.Orchestrator
	log          zerolog.Logger
}

func newFeedService(orchestrator *rss.Orchestrator, log zerolog.Logger) *feedService {
	return &feedService{
		orchestrator: orchestrator,
		log:          log.With().Str("service", "feed").Logger(),
	}
}

// Latest returns the first usable external feed
func (s *feedService) Latest(ctx context.Context) (*models.Feed, error) {
	feed, err := s.orchestrator.Fetch(ctx)
	if err != nil {
		s.log.Error().Err(err).Int("sources", len(s.orchestrator.Sources())).Msg("No feed source usable")
		return nil, err
	}
	if feed.Partial {
		s.log.Warn().Str("source", feed.Source).Msg("Serving partial feed without items")
	}
	return feed, nil
}
