package core

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// SourceOrchestrator fans out to one fetcher per flagged category under a
// single wall-clock budget. A failing or over-budget fetcher costs only its
// own category; siblings are unaffected
type SourceOrchestrator struct {
	registry map[Category]SourceFetcher
	logger   *zap.Logger
}

// NewSourceOrchestrator creates an orchestrator over a category→fetcher registry
func NewSourceOrchestrator(registry map[Category]SourceFetcher, logger *zap.Logger) *SourceOrchestrator {
	return &SourceOrchestrator{
		registry: registry,
		logger:   logger,
	}
}

type fetchOutcome struct {
	category Category
	result   *SourceResult
}

// FetchCategorized issues one concurrent fetch per flagged category and waits
// until all complete or the budget elapses. The budget is a context deadline
// propagated into every fetch, so in-flight I/O is cancelled rather than left
// running with no caller; whatever a cancelled fetch eventually produces is
// discarded. Fetcher errors are degraded to an absent category
func (o *SourceOrchestrator) FetchCategorized(ctx context.Context, analysis IntentAnalysis, budget time.Duration) map[Category]SourceResult {
	ctx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()

	launched := 0
	// Buffered to the number of launches so abandoned fetches never block on send
	outcomes := make(chan fetchOutcome, len(o.registry))

	for _, cat := range analysis.Categories() {
		fetcher, ok := o.registry[cat]
		if !ok {
			continue
		}
		launched++
		go func(cat Category, fetcher SourceFetcher) {
			result, err := fetcher.Fetch(ctx, analysis)
			if err != nil {
				o.logger.Debug("source fetch failed",
					zap.String("category", string(cat)),
					zap.Error(err))
				result = nil
			}
			outcomes <- fetchOutcome{category: cat, result: result}
		}(cat, fetcher)
	}

	results := make(map[Category]SourceResult, launched)
	for i := 0; i < launched; i++ {
		select {
		case out := <-outcomes:
			if out.result != nil {
				results[out.category] = *out.result
			}
		case <-ctx.Done():
			o.logger.Debug("fan-out budget elapsed",
				zap.Duration("budget", budget),
				zap.Int("collected", len(results)),
				zap.Int("pending", launched-i))
			return results
		}
	}
	return results
}
