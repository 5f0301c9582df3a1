package core

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// intentCategory maps each primary intent to the category whose result should
// lead the aggregated answer
var intentCategory = map[Intent]Category{
	IntentTime:            CategoryTime,
	IntentDate:            CategoryDate,
	IntentWeather:         CategoryWeather,
	IntentAirQuality:      CategoryAirQuality,
	IntentCurrencyConvert: CategoryCurrency,
	IntentCurrencyRate:    CategoryCurrency,
	IntentCryptoPrice:     CategoryCrypto,
	IntentCryptoMarket:    CategoryCryptoMarket,
	IntentDictionary:      CategoryDictionary,
	IntentMath:            CategoryMath,
	IntentNews:            CategoryNews,
	IntentCountry:         CategoryCountry,
	IntentHolidays:        CategoryHolidays,
	IntentTrivia:          CategoryTrivia,
	IntentEncyclopedia:    CategoryEncyclopedia,
	IntentWebSearch:       CategoryWebSearch,
}

// KnowledgeService ties the analyzer, the categorized fan-out and the
// fallback chain together into one query-answering entry point
type KnowledgeService struct {
	analyzer     *IntentAnalyzer
	orchestrator *SourceOrchestrator
	chain        *FallbackChain
	budget       time.Duration
	logger       *zap.Logger
}

// NewKnowledgeService creates a new knowledge aggregation service
func NewKnowledgeService(
	analyzer *IntentAnalyzer,
	orchestrator *SourceOrchestrator,
	chain *FallbackChain,
	budget time.Duration,
	logger *zap.Logger,
) *KnowledgeService {
	return &KnowledgeService{
		analyzer:     analyzer,
		orchestrator: orchestrator,
		chain:        chain,
		budget:       budget,
		logger:       logger,
	}
}

// Answer classifies a query, fans out to the flagged sources and selects a
// best answer. When the categorized fan-out yields nothing and the query has
// a web-search or encyclopedic need, the fallback chain runs as a secondary
// pass. Answer never fails; an unanswerable query produces an aggregate with
// no best answer
func (s *KnowledgeService) Answer(ctx context.Context, query string) *AggregatedResult {
	analysis := s.analyzer.Analyze(query)
	categorized := s.orchestrator.FetchCategorized(ctx, analysis, s.budget)

	agg := &AggregatedResult{
		Analysis:    analysis,
		Categorized: categorized,
	}
	for _, result := range categorized {
		agg.AllResults = append(agg.AllResults, result)
	}
	agg.AllResults = RankResults(agg.AllResults)

	if len(categorized) > 0 {
		agg.BestAnswer = s.selectBest(analysis, categorized, agg.AllResults)
	} else if analysis.Needs(CategoryWebSearch) || analysis.Needs(CategoryEncyclopedia) {
		term := analysis.FallbackTerm()
		s.logger.Debug("categorized fan-out empty, running fallback chain",
			zap.String("term", term))
		answer := s.chain.FindBestAnswer(ctx, term)
		if answer.Found {
			agg.BestAnswer = answer.Result
			agg.AllResults = append(agg.AllResults, *answer.Result)
		}
		agg.AllResults = append(agg.AllResults, answer.PartialResults...)
	}

	seen := make(map[string]bool)
	for _, result := range agg.AllResults {
		if result.Source != "" && !seen[result.Source] {
			seen[result.Source] = true
			agg.SourcesUsed = append(agg.SourcesUsed, result.Source)
		}
	}

	s.logger.Info("query answered",
		zap.String("query", query),
		zap.String("primary_intent", string(analysis.PrimaryIntent)),
		zap.Int("results", len(agg.AllResults)),
		zap.Bool("answered", agg.BestAnswer != nil))
	return agg
}

// selectBest prefers the primary intent's own category result, falling back
// to the overall top-ranked result
func (s *KnowledgeService) selectBest(analysis IntentAnalysis, categorized map[Category]SourceResult, ranked []SourceResult) *SourceResult {
	if cat, ok := intentCategory[analysis.PrimaryIntent]; ok {
		if result, ok := categorized[cat]; ok {
			return &result
		}
	}
	if len(ranked) > 0 {
		best := ranked[0]
		return &best
	}
	return nil
}
