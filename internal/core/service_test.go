package core

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestService(registry map[Category]SourceFetcher, chain *FallbackChain) *KnowledgeService {
	logger := zap.NewNop()
	if chain == nil {
		chain = NewFallbackChain(nil, nil, nil, nil, nil, nil, time.Second, logger)
	}
	return NewKnowledgeService(
		NewIntentAnalyzer(3, logger),
		NewSourceOrchestrator(registry, logger),
		chain,
		time.Second,
		logger,
	)
}

func TestAnswerPrefersPrimaryIntentCategory(t *testing.T) {
	registry := map[Category]SourceFetcher{
		CategoryTime:    &stubFetcher{category: CategoryTime, result: instant("time", 0.6)},
		CategoryWeather: &stubFetcher{category: CategoryWeather, result: instant("weather", 0.99)},
	}
	service := newTestService(registry, nil)

	result := service.Answer(context.Background(), "what time is it and what is the weather")

	require.NotNil(t, result.BestAnswer)
	assert.Equal(t, "time", result.BestAnswer.Source)
	assert.Len(t, result.AllResults, 2)
	assert.Equal(t, "weather", result.AllResults[0].Source)
}

func TestAnswerFallsBackToTopRanked(t *testing.T) {
	// The primary intent's own category produced nothing, so the best of what
	// arrived is selected instead
	registry := map[Category]SourceFetcher{
		CategoryTime:    &stubFetcher{category: CategoryTime},
		CategoryWeather: &stubFetcher{category: CategoryWeather, result: instant("weather", 0.9)},
	}
	service := newTestService(registry, nil)

	result := service.Answer(context.Background(), "what time is it and what is the weather")

	require.NotNil(t, result.BestAnswer)
	assert.Equal(t, "weather", result.BestAnswer.Source)
}

func TestAnswerRunsChainWhenFanOutEmpty(t *testing.T) {
	direct := &stubProbe{name: "direct", result: instant("direct", 0.95)}
	chain := NewFallbackChain(direct, nil, nil, nil, nil, nil, time.Second, zap.NewNop())
	service := newTestService(map[Category]SourceFetcher{}, chain)

	result := service.Answer(context.Background(), "obscure handle nobody indexed")

	require.NotNil(t, result.BestAnswer)
	assert.Equal(t, "direct", result.BestAnswer.Source)
	assert.Equal(t, int32(1), direct.calls.Load())
}

func TestAnswerSkipsChainForStructuredIntents(t *testing.T) {
	// A currency query that produced nothing must not degrade into a web search
	direct := &stubProbe{name: "direct", result: instant("direct", 0.95)}
	chain := NewFallbackChain(direct, nil, nil, nil, nil, nil, time.Second, zap.NewNop())
	service := newTestService(map[Category]SourceFetcher{}, chain)

	result := service.Answer(context.Background(), "convert 100 usd to eur")

	assert.Nil(t, result.BestAnswer)
	assert.Equal(t, int32(0), direct.calls.Load())
}

func TestAnswerNeverFails(t *testing.T) {
	service := newTestService(map[Category]SourceFetcher{}, nil)

	result := service.Answer(context.Background(), "zz")

	require.NotNil(t, result)
	assert.Nil(t, result.BestAnswer)
	assert.Empty(t, result.AllResults)
}

func TestAnswerDeduplicatesSources(t *testing.T) {
	registry := map[Category]SourceFetcher{
		CategoryEncyclopedia: &stubFetcher{category: CategoryEncyclopedia, result: &SourceResult{
			Type: TypeEncyclopediaSummary, Text: "summary", Confidence: 0.85, Source: "shared",
		}},
		CategoryWebSearch: &stubFetcher{category: CategoryWebSearch, result: &SourceResult{
			Type: TypeAbstract, Text: "abstract", Confidence: 0.9, Source: "shared",
		}},
	}
	service := newTestService(registry, nil)

	result := service.Answer(context.Background(), "who is Marie Curie")

	assert.Equal(t, []string{"shared"}, result.SourcesUsed)
}
