package sources

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/mikey/knowledge-engine/internal/core"
	"github.com/mikey/knowledge-engine/internal/textutil"
	"go.uber.org/zap"
)

const duckDuckGoLabel = "DuckDuckGo"

type duckDuckGoResponse struct {
	Answer        string `json:"Answer"`
	AnswerType    string `json:"AnswerType"`
	AbstractText  string `json:"AbstractText"`
	AbstractURL   string `json:"AbstractURL"`
	Heading       string `json:"Heading"`
	Image         string `json:"Image"`
	RelatedTopics []struct {
		Text     string `json:"Text"`
		FirstURL string `json:"FirstURL"`
	} `json:"RelatedTopics"`
}

// DuckDuckGoSource wraps the DuckDuckGo instant answer API. It serves both
// the direct-answer step of the fallback chain and the web-search category
type DuckDuckGoSource struct {
	http    *HTTPClient
	baseURL string
	cache   core.CacheRepository
	ttl     time.Duration
	logger  *zap.Logger
}

// NewDuckDuckGoSource creates a new DuckDuckGo source
func NewDuckDuckGoSource(http *HTTPClient, baseURL string, cache core.CacheRepository, ttl time.Duration, logger *zap.Logger) *DuckDuckGoSource {
	return &DuckDuckGoSource{
		http:    http,
		baseURL: baseURL,
		cache:   cache,
		ttl:     ttl,
		logger:  logger,
	}
}

// Name returns the attribution label
func (s *DuckDuckGoSource) Name() string { return duckDuckGoLabel }

// Category returns the fan-out category this source serves
func (s *DuckDuckGoSource) Category() core.Category { return core.CategoryWebSearch }

// Fetch serves the categorized fan-out with the query's search term
func (s *DuckDuckGoSource) Fetch(ctx context.Context, analysis core.IntentAnalysis) (*core.SourceResult, error) {
	return s.Search(ctx, analysis.FallbackTerm())
}

// Search queries the instant answer API. A direct answer beats an abstract,
// an abstract beats related topics; nothing usable yields (nil, nil)
func (s *DuckDuckGoSource) Search(ctx context.Context, term string) (*core.SourceResult, error) {
	key := textutil.CacheKey(string(core.CategoryWebSearch), term)
	if s.cache != nil {
		if cached, ok := s.cache.Get(key, s.ttl); ok {
			return cached, nil
		}
	}

	endpoint := fmt.Sprintf("%s/?q=%s&format=json&no_html=1&skip_disambig=1", s.baseURL, url.QueryEscape(term))
	var resp duckDuckGoResponse
	if err := s.http.getJSON(ctx, endpoint, &resp); err != nil {
		return nil, fmt.Errorf("duckduckgo search: %w", err)
	}

	result := s.normalize(&resp)
	if result == nil {
		return nil, nil
	}
	if s.cache != nil {
		s.cache.Set(key, result, s.ttl)
	}
	return result, nil
}

func (s *DuckDuckGoSource) normalize(resp *duckDuckGoResponse) *core.SourceResult {
	if resp.Answer != "" {
		return &core.SourceResult{
			Type:       core.TypeInstantAnswer,
			Text:       resp.Answer,
			Confidence: 0.95,
			Source:     duckDuckGoLabel,
			Title:      resp.Heading,
			Image:      resp.Image,
		}
	}
	if resp.AbstractText != "" {
		return &core.SourceResult{
			Type:       core.TypeAbstract,
			Text:       resp.AbstractText,
			Confidence: 0.9,
			Source:     duckDuckGoLabel,
			URL:        resp.AbstractURL,
			Title:      resp.Heading,
			Image:      resp.Image,
		}
	}
	if len(resp.RelatedTopics) > 0 {
		items := make([]string, 0, len(resp.RelatedTopics))
		for _, topic := range resp.RelatedTopics {
			if topic.Text != "" {
				items = append(items, topic.Text)
			}
		}
		if len(items) == 0 {
			return nil
		}
		return &core.SourceResult{
			Type:       core.TypeRelatedTopics,
			Items:      items,
			Confidence: 0.5,
			Source:     duckDuckGoLabel,
			Title:      resp.Heading,
		}
	}
	return nil
}
