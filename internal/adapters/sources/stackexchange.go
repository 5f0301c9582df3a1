package sources

import (
	"context"
	"fmt"
	"net/url"

	"github.com/mikey/knowledge-engine/internal/core"
	"go.uber.org/zap"
)

const stackExchangeLabel = "Stack Exchange"

type stackExchangeResponse struct {
	Items []struct {
		Title       string `json:"title"`
		Link        string `json:"link"`
		IsAnswered  bool   `json:"is_answered"`
		AnswerCount int    `json:"answer_count"`
		Score       int    `json:"score"`
	} `json:"items"`
}

// StackExchangeSource wraps the Stack Exchange search API for technical
// questions. It is only consulted behind the tech classifier gate
type StackExchangeSource struct {
	http    *HTTPClient
	baseURL string
	site    string
	logger  *zap.Logger
}

// NewStackExchangeSource creates a new Stack Exchange source
func NewStackExchangeSource(http *HTTPClient, baseURL, site string, logger *zap.Logger) *StackExchangeSource {
	return &StackExchangeSource{
		http:    http,
		baseURL: baseURL,
		site:    site,
		logger:  logger,
	}
}

// Name returns the attribution label
func (s *StackExchangeSource) Name() string { return stackExchangeLabel }

// Search looks up the most relevant answered question for a term
func (s *StackExchangeSource) Search(ctx context.Context, term string) (*core.SourceResult, error) {
	endpoint := fmt.Sprintf("%s/2.3/search/advanced?order=desc&sort=relevance&accepted=True&site=%s&q=%s",
		s.baseURL, url.QueryEscape(s.site), url.QueryEscape(term))

	var resp stackExchangeResponse
	if err := s.http.getJSON(ctx, endpoint, &resp); err != nil {
		return nil, fmt.Errorf("stackexchange search: %w", err)
	}

	for _, item := range resp.Items {
		if !item.IsAnswered {
			continue
		}
		return &core.SourceResult{
			Type:       core.TypeTechQAAnswer,
			Text:       item.Title,
			Confidence: 0.75,
			Source:     stackExchangeLabel,
			URL:        item.Link,
			Title:      item.Title,
		}, nil
	}
	return nil, nil
}
