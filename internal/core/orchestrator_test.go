package core

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubFetcher struct {
	category Category
	result   *SourceResult
	err      error
	block    bool
}

func (f *stubFetcher) Category() Category { return f.category }

func (f *stubFetcher) Fetch(ctx context.Context, _ IntentAnalysis) (*SourceResult, error) {
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return f.result, f.err
}

func analysisFor(cats ...Category) IntentAnalysis {
	flagged := make(map[Category]bool, len(cats))
	for _, cat := range cats {
		flagged[cat] = true
	}
	return IntentAnalysis{Query: "test", categories: flagged}
}

func TestFetchCategorizedCollectsFlaggedCategories(t *testing.T) {
	registry := map[Category]SourceFetcher{
		CategoryTime:    &stubFetcher{category: CategoryTime, result: instant("time", 0.9)},
		CategoryWeather: &stubFetcher{category: CategoryWeather, result: instant("weather", 0.9)},
		CategoryNews:    &stubFetcher{category: CategoryNews, result: instant("news", 0.8)},
	}
	o := NewSourceOrchestrator(registry, zap.NewNop())

	results := o.FetchCategorized(context.Background(), analysisFor(CategoryTime, CategoryWeather), time.Second)

	require.Len(t, results, 2)
	assert.Equal(t, "time", results[CategoryTime].Source)
	assert.Equal(t, "weather", results[CategoryWeather].Source)
	assert.NotContains(t, results, CategoryNews)
}

func TestFetchCategorizedIsolatesFailures(t *testing.T) {
	registry := map[Category]SourceFetcher{
		CategoryTime:    &stubFetcher{category: CategoryTime, result: instant("time", 0.9)},
		CategoryWeather: &stubFetcher{category: CategoryWeather, err: assert.AnError},
		CategoryNews:    &stubFetcher{category: CategoryNews, result: instant("news", 0.8)},
	}
	o := NewSourceOrchestrator(registry, zap.NewNop())

	results := o.FetchCategorized(context.Background(),
		analysisFor(CategoryTime, CategoryWeather, CategoryNews), time.Second)

	require.Len(t, results, 2)
	assert.NotContains(t, results, CategoryWeather)
}

func TestFetchCategorizedHonorsBudget(t *testing.T) {
	registry := map[Category]SourceFetcher{
		CategoryTime:    &stubFetcher{category: CategoryTime, result: instant("time", 0.9)},
		CategoryWeather: &stubFetcher{category: CategoryWeather, block: true},
	}
	o := NewSourceOrchestrator(registry, zap.NewNop())

	start := time.Now()
	results := o.FetchCategorized(context.Background(),
		analysisFor(CategoryTime, CategoryWeather), 100*time.Millisecond)
	elapsed := time.Since(start)

	assert.Less(t, elapsed, time.Second)
	require.Len(t, results, 1)
	assert.Contains(t, results, CategoryTime)
}

func TestFetchCategorizedSkipsAbsentResults(t *testing.T) {
	registry := map[Category]SourceFetcher{
		CategoryTrivia: &stubFetcher{category: CategoryTrivia},
	}
	o := NewSourceOrchestrator(registry, zap.NewNop())

	results := o.FetchCategorized(context.Background(), analysisFor(CategoryTrivia), time.Second)

	assert.Empty(t, results)
}

func TestFetchCategorizedUnknownCategoryIgnored(t *testing.T) {
	o := NewSourceOrchestrator(map[Category]SourceFetcher{}, zap.NewNop())

	results := o.FetchCategorized(context.Background(), analysisFor(CategoryQuote), time.Second)

	assert.Empty(t, results)
}
