package core

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubProbe struct {
	name   string
	result *SourceResult
	err    error
	calls  atomic.Int32
}

func (p *stubProbe) Name() string { return p.name }

func (p *stubProbe) Search(_ context.Context, _ string) (*SourceResult, error) {
	p.calls.Add(1)
	return p.result, p.err
}

func instant(source string, confidence float64) *SourceResult {
	return &SourceResult{Type: TypeInstantAnswer, Text: "answer", Confidence: confidence, Source: source}
}

func TestChainShortCircuitsOnDirectAnswer(t *testing.T) {
	direct := &stubProbe{name: "direct", result: instant("direct", 0.95)}
	encyclopedia := &stubProbe{name: "encyclopedia", result: instant("encyclopedia", 0.85)}

	chain := NewFallbackChain(direct, encyclopedia, nil, nil, nil, nil, time.Second, zap.NewNop())
	answer := chain.FindBestAnswer(context.Background(), "anything")

	require.True(t, answer.Found)
	assert.Equal(t, "direct", answer.Result.Source)
	assert.Equal(t, int32(1), direct.calls.Load())
	assert.Equal(t, int32(0), encyclopedia.calls.Load())
}

func TestChainRejectsTopicListAsDirectAnswer(t *testing.T) {
	direct := &stubProbe{name: "direct", result: &SourceResult{
		Type: TypeRelatedTopics, Items: []string{"a", "b"}, Confidence: 0.5, Source: "direct",
	}}
	encyclopedia := &stubProbe{name: "encyclopedia", result: &SourceResult{
		Type: TypeEncyclopediaSummary, Text: "summary", Confidence: 0.85, Source: "encyclopedia",
	}}

	chain := NewFallbackChain(direct, encyclopedia, nil, nil, nil, nil, time.Second, zap.NewNop())
	answer := chain.FindBestAnswer(context.Background(), "anything")

	require.True(t, answer.Found)
	assert.Equal(t, "encyclopedia", answer.Result.Source)
	assert.Equal(t, int32(1), direct.calls.Load())
}

func TestChainDictionaryStepIsGated(t *testing.T) {
	dictionary := &stubProbe{name: "dictionary", result: &SourceResult{
		Type: TypeDefinition, Text: "a lucky find", Confidence: 0.9, Source: "dictionary",
	}}

	chain := NewFallbackChain(nil, nil, dictionary, nil, nil, nil, time.Second, zap.NewNop())

	answer := chain.FindBestAnswer(context.Background(), "serendipity facts")
	assert.False(t, answer.Found)
	assert.Equal(t, int32(0), dictionary.calls.Load())

	answer = chain.FindBestAnswer(context.Background(), "define serendipity")
	require.True(t, answer.Found)
	assert.Equal(t, "dictionary", answer.Result.Source)
	assert.Equal(t, int32(1), dictionary.calls.Load())
}

func TestChainTechStepIsGated(t *testing.T) {
	techQA := &stubProbe{name: "techqa", result: &SourceResult{
		Type: TypeTechQAAnswer, Text: "use a mutex", Confidence: 0.75, Source: "techqa",
	}}
	isTech := func(q string) bool { return q == "tech question" }

	chain := NewFallbackChain(nil, nil, nil, techQA, nil, isTech, time.Second, zap.NewNop())

	answer := chain.FindBestAnswer(context.Background(), "plain question")
	assert.False(t, answer.Found)
	assert.Equal(t, int32(0), techQA.calls.Load())

	answer = chain.FindBestAnswer(context.Background(), "tech question")
	require.True(t, answer.Found)
	assert.Equal(t, "techqa", answer.Result.Source)
}

func TestChainFailedProbeDegradesToNextStep(t *testing.T) {
	direct := &stubProbe{name: "direct", err: assert.AnError}
	encyclopedia := &stubProbe{name: "encyclopedia", result: &SourceResult{
		Type: TypeEncyclopediaSummary, Text: "summary", Confidence: 0.85, Source: "encyclopedia",
	}}

	chain := NewFallbackChain(direct, encyclopedia, nil, nil, nil, nil, time.Second, zap.NewNop())
	answer := chain.FindBestAnswer(context.Background(), "anything")

	require.True(t, answer.Found)
	assert.Equal(t, "encyclopedia", answer.Result.Source)
}

func TestChainParallelSearchRanksCollected(t *testing.T) {
	searchers := []SearchProbe{
		&stubProbe{name: "low", result: &SourceResult{
			Type: TypeRelatedTopics, Items: []string{"x"}, Confidence: 0.5, Source: "low",
		}},
		&stubProbe{name: "high", result: &SourceResult{
			Type: TypeAbstract, Text: "abstract", Confidence: 0.9, Source: "high",
		}},
		&stubProbe{name: "broken", err: assert.AnError},
	}

	chain := NewFallbackChain(nil, nil, nil, nil, searchers, nil, time.Second, zap.NewNop())
	answer := chain.FindBestAnswer(context.Background(), "anything")

	require.True(t, answer.Found)
	assert.Equal(t, "high", answer.Result.Source)
	require.Len(t, answer.PartialResults, 1)
	assert.Equal(t, "low", answer.PartialResults[0].Source)
}

func TestChainTopicOnlySearchYieldsPartials(t *testing.T) {
	searchers := []SearchProbe{
		&stubProbe{name: "topics", result: &SourceResult{
			Type: TypeRelatedTopics, Items: []string{"x"}, Confidence: 0.5, Source: "topics",
		}},
		&stubProbe{name: "raw", result: &SourceResult{
			Type: TypeRawSearchResults, Items: []string{"y"}, Confidence: 0.4, Source: "raw",
		}},
	}

	chain := NewFallbackChain(nil, nil, nil, nil, searchers, nil, time.Second, zap.NewNop())
	answer := chain.FindBestAnswer(context.Background(), "anything")

	assert.False(t, answer.Found)
	assert.Nil(t, answer.Result)
	assert.Len(t, answer.PartialResults, 2)
}

func TestChainEmptyYieldsNotFound(t *testing.T) {
	chain := NewFallbackChain(nil, nil, nil, nil, nil, nil, time.Second, zap.NewNop())
	answer := chain.FindBestAnswer(context.Background(), "anything")

	assert.False(t, answer.Found)
	assert.Empty(t, answer.PartialResults)
}

func TestRankResultsByConfidence(t *testing.T) {
	ranked := RankResults([]SourceResult{
		{Type: TypeRelatedTopics, Confidence: 0.6, Source: "topics"},
		{Type: TypeDictionaryEntry, Confidence: 0.9, Source: "dictionary"},
		{Type: TypeInstantAnswer, Confidence: 0.7, Source: "instant"},
	})

	assert.Equal(t, "dictionary", ranked[0].Source)
	assert.Equal(t, "instant", ranked[1].Source)
	assert.Equal(t, "topics", ranked[2].Source)
}

func TestRankResultsTieBreaksOnType(t *testing.T) {
	ranked := RankResults([]SourceResult{
		{Type: TypeRawSearchResults, Confidence: 0.8, Source: "raw"},
		{Type: TypeInstantAnswer, Confidence: 0.8, Source: "instant"},
		{Type: TypeEncyclopediaSummary, Confidence: 0.8, Source: "encyclopedia"},
	})

	assert.Equal(t, "instant", ranked[0].Source)
	assert.Equal(t, "encyclopedia", ranked[1].Source)
	assert.Equal(t, "raw", ranked[2].Source)
}

func TestIsTechQuery(t *testing.T) {
	assert.True(t, IsTechQuery("golang slice of maps"))
	assert.True(t, IsTechQuery("what causes a segfault"))
	assert.False(t, IsTechQuery("weather in paris"))
}
