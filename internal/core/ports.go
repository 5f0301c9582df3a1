package core

import (
	"context"
	"time"
)

// SourceFetcher wraps one external data provider for categorized fan-out.
// A fetch that finds nothing returns (nil, nil); errors are reserved for
// transport-level failures and are degraded to "no result" by the caller
type SourceFetcher interface {
	// Category returns the information category this fetcher serves
	Category() Category

	// Fetch retrieves a normalized result for the analyzed query
	Fetch(ctx context.Context, analysis IntentAnalysis) (*SourceResult, error)
}

// SearchProbe is a single free-text lookup step in the fallback chain
type SearchProbe interface {
	// Name returns the attribution label for this probe
	Name() string

	// Search looks up a free-text term and returns a normalized result,
	// or (nil, nil) when the provider has nothing
	Search(ctx context.Context, term string) (*SourceResult, error)
}

// CacheRepository defines the interface for caching source results
type CacheRepository interface {
	// Get retrieves a result if it is younger than maxAge relative to now;
	// a stale entry is evicted and reported as a miss
	Get(key string, maxAge time.Duration) (*SourceResult, bool)

	// Set stores a result with its validity window, overwriting any
	// previous entry for the key and resetting its timer
	Set(key string, result *SourceResult, ttl time.Duration)

	// Has reports whether a result younger than maxAge exists for the key
	Has(key string, maxAge time.Duration) bool

	// Delete removes a cache entry
	Delete(key string)

	// Clear removes all entries
	Clear()

	// Keys returns the keys of all physically present entries
	Keys() []string

	// Stats returns hit/miss/set counters and current size
	Stats() CacheStats
}

// TechClassifier decides whether a query belongs to the programming and
// technology domain, gating the technical Q&A probe. Kept pluggable so the
// heuristic can be swapped and tested independently of the chain control flow
type TechClassifier func(query string) bool
