package sources

import (
	"context"
	"time"

	"github.com/mikey/knowledge-engine/internal/core"
	"github.com/mikey/knowledge-engine/internal/textutil"
	"github.com/mmcdole/gofeed"
	"go.uber.org/zap"
)

const newsLabel = "News feed"

// NewsFeedSource reads headlines from configured RSS feeds. Feeds are tried
// in order; the first one that parses wins
type NewsFeedSource struct {
	parser       *gofeed.Parser
	feeds        []string
	maxHeadlines int
	cache        core.CacheRepository
	ttl          time.Duration
	logger       *zap.Logger
}

// NewNewsFeedSource creates a new news feed source
func NewNewsFeedSource(feeds []string, maxHeadlines int, cache core.CacheRepository, ttl time.Duration, logger *zap.Logger) *NewsFeedSource {
	if maxHeadlines <= 0 {
		maxHeadlines = 5
	}
	return &NewsFeedSource{
		parser:       gofeed.NewParser(),
		feeds:        feeds,
		maxHeadlines: maxHeadlines,
		cache:        cache,
		ttl:          ttl,
		logger:       logger,
	}
}

// Category returns the fan-out category this source serves
func (s *NewsFeedSource) Category() core.Category { return core.CategoryNews }

// Fetch returns the latest headlines
func (s *NewsFeedSource) Fetch(ctx context.Context, _ core.IntentAnalysis) (*core.SourceResult, error) {
	key := textutil.CacheKey(string(core.CategoryNews), "headlines")
	if s.cache != nil {
		if cached, ok := s.cache.Get(key, s.ttl); ok {
			return cached, nil
		}
	}

	var lastErr error
	for _, feedURL := range s.feeds {
		feed, err := s.parser.ParseURLWithContext(feedURL, ctx)
		if err != nil {
			s.logger.Debug("feed parse failed", zap.String("feed", feedURL), zap.Error(err))
			lastErr = err
			continue
		}
		if len(feed.Items) == 0 {
			continue
		}

		items := make([]string, 0, s.maxHeadlines)
		for _, item := range feed.Items {
			if len(items) == s.maxHeadlines {
				break
			}
			items = append(items, item.Title)
		}

		result := &core.SourceResult{
			Type:       core.TypeRawSearchResults,
			Items:      items,
			Confidence: 0.8,
			Source:     feed.Title,
			URL:        feedURL,
			Title:      feed.Title,
		}
		if result.Source == "" {
			result.Source = newsLabel
		}
		if s.cache != nil {
			s.cache.Set(key, result, s.ttl)
		}
		return result, nil
	}
	return nil, lastErr
}
