package core

import (
	"context"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var defineQueryRe = regexp.MustCompile(`\bdefine\b|definition of|meaning of`)

// techKeywords gates the technical Q&A probe
var techKeywords = []string{
	"code", "programming", "compiler", "golang", "python", "javascript",
	"typescript", "java ", "rust", "sql", "database", "api", "http", "json",
	"docker", "kubernetes", "linux", "git", "regex", "algorithm", "function",
	"error", "exception", "stack trace", "segfault", "nullpointer", "framework",
	"library", "server", "frontend", "backend", "css", "html",
}

// IsTechQuery is the default TechClassifier: a keyword heuristic over the
// programming and technology domain
func IsTechQuery(query string) bool {
	q := strings.ToLower(query)
	for _, kw := range techKeywords {
		if strings.Contains(q, kw) {
			return true
		}
	}
	return false
}

// typePriority is the fixed source-priority order used for ranking tie-breaks:
// direct answers beat encyclopedia, encyclopedia beats dictionary, and so on
// down to raw search results
var typePriority = map[ResultType]int{
	TypeInstantAnswer:       0,
	TypeAbstract:            1,
	TypeEncyclopediaSummary: 2,
	TypeDefinition:          3,
	TypeDictionaryEntry:     4,
	TypeTechQAAnswer:        5,
	TypeRelatedTopics:       6,
	TypeRawSearchResults:    7,
}

// RankResults orders results by descending confidence, breaking ties with the
// fixed source-priority order
func RankResults(results []SourceResult) []SourceResult {
	ranked := make([]SourceResult, len(results))
	copy(ranked, results)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Confidence != ranked[j].Confidence {
			return ranked[i].Confidence > ranked[j].Confidence
		}
		return typePriority[ranked[i].Type] < typePriority[ranked[j].Type]
	})
	return ranked
}

// answerBearing reports whether a result type can stand alone as a best
// answer; topic and raw-search lists only ever qualify as partial results
func answerBearing(t ResultType) bool {
	return t != TypeRelatedTopics && t != TypeRawSearchResults
}

// FallbackChain runs a strict, ordered, short-circuiting sequence of probes
// for the "find one good answer" use case. Steps run sequentially; only the
// final multi-source search step is internally parallel. Every probe is
// independently fault-tolerant: a failure yields "no result" for that probe
type FallbackChain struct {
	direct       SearchProbe
	encyclopedia SearchProbe
	dictionary   SearchProbe
	techQA       SearchProbe
	searchers    []SearchProbe
	isTech       TechClassifier
	probeTimeout time.Duration
	logger       *zap.Logger
}

// NewFallbackChain creates a chain over the given probes. Any probe may be
// nil, in which case its step is skipped. A nil classifier falls back to the
// default keyword heuristic
func NewFallbackChain(
	direct SearchProbe,
	encyclopedia SearchProbe,
	dictionary SearchProbe,
	techQA SearchProbe,
	searchers []SearchProbe,
	isTech TechClassifier,
	probeTimeout time.Duration,
	logger *zap.Logger,
) *FallbackChain {
	if isTech == nil {
		isTech = IsTechQuery
	}
	return &FallbackChain{
		direct:       direct,
		encyclopedia: encyclopedia,
		dictionary:   dictionary,
		techQA:       techQA,
		searchers:    searchers,
		isTech:       isTech,
		probeTimeout: probeTimeout,
		logger:       logger,
	}
}

// probe runs one chain step under the per-probe timeout, degrading any error
// to "no result"
func (c *FallbackChain) probe(ctx context.Context, p SearchProbe, term string) *SourceResult {
	if p == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, c.probeTimeout)
	defer cancel()

	result, err := p.Search(ctx, term)
	if err != nil {
		c.logger.Debug("fallback probe failed",
			zap.String("probe", p.Name()),
			zap.Error(err))
		return nil
	}
	return result
}

// FindBestAnswer walks the chain for a free-text query, returning the first
// acceptable answer. When no step produces one, whatever the parallel search
// collected is returned as partial results
func (c *FallbackChain) FindBestAnswer(ctx context.Context, query string) BestAnswer {
	// Step 1: direct-answer source, cheapest first
	if result := c.probe(ctx, c.direct, query); result != nil {
		if result.Type == TypeInstantAnswer || result.Type == TypeAbstract {
			c.logger.Debug("direct answer found", zap.String("source", result.Source))
			return BestAnswer{Found: true, Result: result}
		}
	}

	// Step 2: encyclopedic summary
	if result := c.probe(ctx, c.encyclopedia, query); result != nil && result.Text != "" {
		c.logger.Debug("encyclopedia answer found", zap.String("source", result.Source))
		return BestAnswer{Found: true, Result: result}
	}

	// Step 3: dictionary, only for define/meaning phrasings
	if defineQueryRe.MatchString(strings.ToLower(query)) {
		if result := c.probe(ctx, c.dictionary, query); result != nil {
			c.logger.Debug("dictionary answer found", zap.String("source", result.Source))
			return BestAnswer{Found: true, Result: result}
		}
	}

	// Step 4: technical Q&A, gated by the tech classifier
	if c.isTech(query) {
		if result := c.probe(ctx, c.techQA, query); result != nil {
			c.logger.Debug("tech answer found", zap.String("source", result.Source))
			return BestAnswer{Found: true, Result: result}
		}
	}

	// Step 5: full parallel multi-source search with confidence ranking
	collected := c.searchAll(ctx, query)
	if len(collected) == 0 {
		return BestAnswer{Found: false}
	}

	ranked := RankResults(collected)
	if answerBearing(ranked[0].Type) {
		best := ranked[0]
		return BestAnswer{Found: true, Result: &best, PartialResults: ranked[1:]}
	}
	return BestAnswer{Found: false, PartialResults: ranked}
}

// searchAll runs every remaining search source concurrently, tolerating
// individual failures, and returns whatever arrived
func (c *FallbackChain) searchAll(ctx context.Context, query string) []SourceResult {
	var (
		mu        sync.Mutex
		collected []SourceResult
	)

	g, ctx := errgroup.WithContext(ctx)
	for _, s := range c.searchers {
		searcher := s
		g.Go(func() error {
			result := c.probe(ctx, searcher, query)
			if result == nil {
				return nil
			}
			mu.Lock()
			collected = append(collected, *result)
			mu.Unlock()
			return nil
		})
	}
	// probes never return errors, so this only waits for completion
	_ = g.Wait()
	return collected
}
