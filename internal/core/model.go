package core

import (
	"time"
)

// Category identifies one class of external information need
type Category string

const (
	CategoryTime         Category = "time"
	CategoryDate         Category = "date"
	CategoryWeather      Category = "weather"
	CategoryAirQuality   Category = "air_quality"
	CategoryCurrency     Category = "currency"
	CategoryCrypto       Category = "crypto"
	CategoryCryptoMarket Category = "crypto_market"
	CategoryDictionary   Category = "dictionary"
	CategoryMath         Category = "math"
	CategoryNews         Category = "news"
	CategoryCountry      Category = "country"
	CategoryHolidays     Category = "holidays"
	CategoryQuote        Category = "quote"
	CategoryJoke         Category = "joke"
	CategoryTrivia       Category = "trivia"
	CategoryEncyclopedia Category = "encyclopedia"
	CategoryWebSearch    Category = "web_search"
)

// Intent is the single classified purpose governing the fallback path
type Intent string

const (
	IntentTime            Intent = "time"
	IntentDate            Intent = "date"
	IntentWeather         Intent = "weather"
	IntentAirQuality      Intent = "air_quality"
	IntentCurrencyConvert Intent = "currency_convert"
	IntentCurrencyRate    Intent = "currency_rate"
	IntentCryptoPrice     Intent = "crypto_price"
	IntentCryptoMarket    Intent = "crypto_market"
	IntentDictionary      Intent = "dictionary"
	IntentMath            Intent = "math"
	IntentNews            Intent = "news"
	IntentCountry         Intent = "country"
	IntentHolidays        Intent = "holidays"
	IntentQuote           Intent = "quote"
	IntentJoke            Intent = "joke"
	IntentTrivia          Intent = "trivia"
	IntentEncyclopedia    Intent = "encyclopedia"
	IntentWebSearch       Intent = "web_search"
)

// Params holds the structured values extracted from a query during analysis
type Params struct {
	TimeLocation    string
	WeatherLocation string
	CurrencyAmount  float64
	CurrencyFrom    string
	CurrencyTo      string
	CryptoID        string
	MathExpression  string
	DictionaryWord  string
	CountryName     string
	SearchTerm      string
}

// IntentAnalysis is the immutable classification of a single query.
// At most one PrimaryIntent is ever set; an unclassifiable non-trivial query
// defaults to a web-search intent rather than no intent at all.
type IntentAnalysis struct {
	Query         string
	categories    map[Category]bool
	Params        Params
	SearchTerms   []string
	PrimaryIntent Intent
	Confidence    float64
}

// Needs reports whether the analysis flagged the given category
func (a IntentAnalysis) Needs(cat Category) bool {
	return a.categories[cat]
}

// Categories returns the flagged categories
func (a IntentAnalysis) Categories() []Category {
	cats := make([]Category, 0, len(a.categories))
	for cat := range a.categories {
		cats = append(cats, cat)
	}
	return cats
}

// ResultType tags the payload variant carried by a SourceResult
type ResultType string

const (
	TypeInstantAnswer       ResultType = "instant_answer"
	TypeAbstract            ResultType = "abstract"
	TypeEncyclopediaSummary ResultType = "encyclopedia_summary"
	TypeDefinition          ResultType = "definition"
	TypeDictionaryEntry     ResultType = "dictionary_entry"
	TypeTechQAAnswer        ResultType = "tech_qa_answer"
	TypeRelatedTopics       ResultType = "related_topics"
	TypeRawSearchResults    ResultType = "raw_search_results"
)

// SourceResult is the normalized output of one source fetch. Absence of a
// result is represented by a nil *SourceResult, never by an error
type SourceResult struct {
	Type       ResultType
	Text       string   // textual payload (answers, summaries, definitions)
	Items      []string // list payload (meanings, topics, search hits, headlines)
	Value      float64  // numeric payload (rates, prices)
	Confidence float64
	Source     string
	URL        string
	Title      string
	Image      string
}

// BestAnswer is the outcome of a fallback-chain run
type BestAnswer struct {
	Found          bool
	Result         *SourceResult
	PartialResults []SourceResult
}

// AggregatedResult holds everything collected for one query. It is created
// fresh per request and discarded after the response is returned
type AggregatedResult struct {
	Analysis    IntentAnalysis
	Categorized map[Category]SourceResult
	AllResults  []SourceResult
	BestAnswer  *SourceResult
	SourcesUsed []string
}

// CacheEntry is a stored source result with its validity window
type CacheEntry struct {
	Key      string
	Result   *SourceResult
	StoredAt time.Time
	TTL      time.Duration
}

// Expired reports whether the entry is older than maxAge at the given instant
func (e *CacheEntry) Expired(now time.Time, maxAge time.Duration) bool {
	return now.Sub(e.StoredAt) >= maxAge
}

// CacheStats reports cache performance counters
type CacheStats struct {
	Hits    int64
	Misses  int64
	Sets    int64
	Size    int
	HitRate float64
}
