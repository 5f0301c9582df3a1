package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/mikey/knowledge-engine/internal/core"
	"github.com/mikey/knowledge-engine/internal/textutil"
	"go.uber.org/zap"
)

const wikipediaLabel = "Wikipedia"

type wikipediaSummary struct {
	Title       string `json:"title"`
	Extract     string `json:"extract"`
	Type        string `json:"type"`
	ContentURLs struct {
		Desktop struct {
			Page string `json:"page"`
		} `json:"desktop"`
	} `json:"content_urls"`
	Thumbnail struct {
		Source string `json:"source"`
	} `json:"thumbnail"`
}

// WikipediaSource wraps the Wikipedia REST summary endpoint (the chain's
// encyclopedic step and the encyclopedia category) plus the opensearch
// endpoint used as a raw-search probe
type WikipediaSource struct {
	http    *HTTPClient
	baseURL string
	cache   core.CacheRepository
	ttl     time.Duration
	logger  *zap.Logger
}

// NewWikipediaSource creates a new Wikipedia source
func NewWikipediaSource(http *HTTPClient, baseURL string, cache core.CacheRepository, ttl time.Duration, logger *zap.Logger) *WikipediaSource {
	return &WikipediaSource{
		http:    http,
		baseURL: baseURL,
		cache:   cache,
		ttl:     ttl,
		logger:  logger,
	}
}

// Name returns the attribution label
func (s *WikipediaSource) Name() string { return wikipediaLabel }

// Category returns the fan-out category this source serves
func (s *WikipediaSource) Category() core.Category { return core.CategoryEncyclopedia }

// Fetch serves the categorized fan-out with the query's search term
func (s *WikipediaSource) Fetch(ctx context.Context, analysis core.IntentAnalysis) (*core.SourceResult, error) {
	return s.Search(ctx, analysis.FallbackTerm())
}

// Search fetches the page summary for a term. Disambiguation pages and
// missing articles yield (nil, nil)
func (s *WikipediaSource) Search(ctx context.Context, term string) (*core.SourceResult, error) {
	key := textutil.CacheKey(string(core.CategoryEncyclopedia), term)
	if s.cache != nil {
		if cached, ok := s.cache.Get(key, s.ttl); ok {
			return cached, nil
		}
	}

	title := strings.ReplaceAll(strings.TrimSpace(term), " ", "_")
	endpoint := fmt.Sprintf("%s/api/rest_v1/page/summary/%s", s.baseURL, url.PathEscape(title))
	var summary wikipediaSummary
	if err := s.http.getJSON(ctx, endpoint, &summary); err != nil {
		return nil, fmt.Errorf("wikipedia summary: %w", err)
	}

	if summary.Extract == "" || summary.Type == "disambiguation" {
		return nil, nil
	}

	result := &core.SourceResult{
		Type:       core.TypeEncyclopediaSummary,
		Text:       summary.Extract,
		Confidence: 0.85,
		Source:     wikipediaLabel,
		URL:        summary.ContentURLs.Desktop.Page,
		Title:      summary.Title,
		Image:      summary.Thumbnail.Source,
	}
	if s.cache != nil {
		s.cache.Set(key, result, s.ttl)
	}
	return result, nil
}

// OpenSearchProbe returns a raw-search view of this source for the chain's
// parallel step
func (s *WikipediaSource) OpenSearchProbe() core.SearchProbe {
	return &wikipediaOpenSearch{source: s}
}

type wikipediaOpenSearch struct {
	source *WikipediaSource
}

func (p *wikipediaOpenSearch) Name() string { return wikipediaLabel + " search" }

// Search lists matching article titles. The opensearch payload is a
// positional JSON array: [term, titles, descriptions, urls]
func (p *wikipediaOpenSearch) Search(ctx context.Context, term string) (*core.SourceResult, error) {
	s := p.source
	endpoint := fmt.Sprintf("%s/w/api.php?action=opensearch&format=json&limit=5&search=%s",
		s.baseURL, url.QueryEscape(term))

	var payload []json.RawMessage
	if err := s.http.getJSON(ctx, endpoint, &payload); err != nil {
		return nil, fmt.Errorf("wikipedia opensearch: %w", err)
	}
	if len(payload) < 2 {
		return nil, nil
	}

	var titles []string
	if err := json.Unmarshal(payload[1], &titles); err != nil {
		return nil, fmt.Errorf("wikipedia opensearch titles: %w", err)
	}
	if len(titles) == 0 {
		return nil, nil
	}

	return &core.SourceResult{
		Type:       core.TypeRawSearchResults,
		Items:      titles,
		Confidence: 0.4,
		Source:     wikipediaLabel,
	}, nil
}
