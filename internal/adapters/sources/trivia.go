package sources

import (
	"context"
	"fmt"

	"github.com/mikey/knowledge-engine/internal/core"
	"go.uber.org/zap"
)

const triviaLabel = "Useless Facts"

type triviaFact struct {
	Text string `json:"text"`
}

// TriviaSource wraps the random-fact API for trivia queries. Random facts
// are never cached
type TriviaSource struct {
	http    *HTTPClient
	baseURL string
	logger  *zap.Logger
}

// NewTriviaSource creates a new trivia source
func NewTriviaSource(http *HTTPClient, baseURL string, logger *zap.Logger) *TriviaSource {
	return &TriviaSource{
		http:    http,
		baseURL: baseURL,
		logger:  logger,
	}
}

// Category returns the fan-out category this source serves
func (s *TriviaSource) Category() core.Category { return core.CategoryTrivia }

// Fetch returns one random fact
func (s *TriviaSource) Fetch(ctx context.Context, _ core.IntentAnalysis) (*core.SourceResult, error) {
	endpoint := fmt.Sprintf("%s/api/v2/facts/random", s.baseURL)
	var fact triviaFact
	if err := s.http.getJSON(ctx, endpoint, &fact); err != nil {
		return nil, fmt.Errorf("trivia lookup: %w", err)
	}
	if fact.Text == "" {
		return nil, nil
	}

	return &core.SourceResult{
		Type:       core.TypeInstantAnswer,
		Text:       fact.Text,
		Confidence: 0.7,
		Source:     triviaLabel,
	}, nil
}
