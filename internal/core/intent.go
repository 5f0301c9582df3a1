package core

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/mikey/knowledge-engine/internal/textutil"
	"go.uber.org/zap"
)

// Rule confidences reflect pattern specificity: 0.95+ is reserved for exact
// structural matches, 0.5 is the floor for an unclassified fallback
const (
	confExactStructural = 0.95
	confStrongKeyword   = 0.9
	confCategoryKeyword = 0.85
	confGenericKnowing  = 0.8
	confGenericQuestion = 0.6
	confWebFallback     = 0.5
)

var (
	timeRe    = regexp.MustCompile(`what(?:'s| is)? (?:the )?time|what time is it|current time|local time|time (?:in|at) [a-z]`)
	timeLocRe = regexp.MustCompile(`time (?:in|at) ([a-z][a-z .'-]*)`)
	dateRe    = regexp.MustCompile(`what(?:'s| is)? (?:the |today'?s )?date\b|what day is it(?: today)?`)

	weatherRe    = regexp.MustCompile(`\b(?:weather|forecast|temperature)\b|how (?:hot|cold) is it`)
	weatherLocRe = regexp.MustCompile(`\b(?:in|at|for) ([a-z][a-z .'-]*)`)
	airRe        = regexp.MustCompile(`air quality|\baqi\b|pollution`)

	convertRe    = regexp.MustCompile(`convert ([0-9]+(?:\.[0-9]+)?) ?([a-z]{2,10}) (?:to|into|in) ([a-z]{2,10})\b`)
	altConvertRe = regexp.MustCompile(`\b([0-9]+(?:\.[0-9]+)?) ?([a-z]{3}) (?:to|into|in) ([a-z]{3})\b`)
	rateRe    = regexp.MustCompile(`(?:exchange|conversion) rate (?:of |for |between )?([a-z]{3})(?: (?:to|and|vs) ([a-z]{3}))?`)

	cryptoRe       = regexp.MustCompile(`\b(bitcoin|btc|ethereum|eth|dogecoin|doge|solana|sol|cardano|ada|ripple|xrp|litecoin|ltc|polkadot|dot|binance coin|bnb)\b`)
	cryptoMarketRe = regexp.MustCompile(`top (?:[0-9]+ )?crypto(?:s|currencies| coins)?|crypto(?:currency)? market|crypto prices`)

	dictionaryRe = regexp.MustCompile(`(?:\bdefine\b|definition of|meaning of|what does) ([a-z'-]+)(?: mean)?`)

	mathPrefixRe = regexp.MustCompile(`^(?:what(?:'s| is) |calculate |compute |solve |evaluate )`)
	mathExprRe   = regexp.MustCompile(`^[0-9 ().+\-*/%^]+$`)
	mathOpRe     = regexp.MustCompile(`[0-9] *[+\-*/^%] *[0-9(]`)

	quoteRe  = regexp.MustCompile(`\b(?:inspirational |motivational )?quote\b|inspire me`)
	jokeRe   = regexp.MustCompile(`\bjoke\b|make me laugh|something funny`)
	triviaRe = regexp.MustCompile(`\btrivia\b|(?:fun|random|interesting) fact`)

	newsRe     = regexp.MustCompile(`\bnews\b|\bheadlines\b|what'?s happening`)
	countryRe  = regexp.MustCompile(`(?:capital|population|flag|currency|language)s? of (?:the )?([a-z][a-z .'-]*)`)
	holidayRe  = regexp.MustCompile(`(?:public |national )?holidays? (?:in|for) ([a-z][a-z .'-]*)|\bpublic holidays\b`)
	encycloRe  = regexp.MustCompile(`^(?:who (?:is|was|are|were)|what (?:is|are|was|were)|tell me about|what do you know about) (.+)$`)
	questionRe = regexp.MustCompile(`\?$`)
)

// cryptoAliases maps ticker shorthand to canonical identifiers
var cryptoAliases = map[string]string{
	"btc": "bitcoin", "eth": "ethereum", "doge": "dogecoin",
	"sol": "solana", "ada": "cardano", "xrp": "ripple",
	"ltc": "litecoin", "dot": "polkadot", "bnb": "binancecoin",
	"binance coin": "binancecoin",
}

// analysisBuilder accumulates category flags and parameters, then finalizes a
// single immutable IntentAnalysis. The first structural match wins the primary
// intent; later rules only add their own flags
type analysisBuilder struct {
	query       string
	categories  map[Category]bool
	params      Params
	searchTerms []string
	primary     Intent
	confidence  float64
}

func newAnalysisBuilder(query string) *analysisBuilder {
	return &analysisBuilder{
		query:      query,
		categories: make(map[Category]bool),
	}
}

func (b *analysisBuilder) flag(cat Category) {
	b.categories[cat] = true
}

func (b *analysisBuilder) setPrimary(intent Intent, confidence float64) {
	if b.primary != "" {
		return
	}
	b.primary = intent
	b.confidence = confidence
}

func (b *analysisBuilder) addSearchTerm(term string) {
	term = textutil.StripFiller(term)
	if term == "" {
		return
	}
	if b.params.SearchTerm == "" {
		b.params.SearchTerm = term
	}
	b.searchTerms = append(b.searchTerms, term)
}

func (b *analysisBuilder) build() IntentAnalysis {
	return IntentAnalysis{
		Query:         b.query,
		categories:    b.categories,
		Params:        b.params,
		SearchTerms:   b.searchTerms,
		PrimaryIntent: b.primary,
		Confidence:    b.confidence,
	}
}

// intentRule is one (predicate, extractor, confidence) step of the cascade.
// match inspects the lowercased query, records flags and extracted parameters
// on the builder, and reports whether its structural pattern applied
type intentRule struct {
	name  string
	match func(b *analysisBuilder, q string) bool
}

// IntentAnalyzer classifies a raw query into flagged categories, extracted
// parameters and a single primary intent. Analyze never fails
type IntentAnalyzer struct {
	rules          []intentRule
	minQueryLength int
	logger         *zap.Logger
}

// NewIntentAnalyzer creates an analyzer with the fixed rule precedence order
func NewIntentAnalyzer(minQueryLength int, logger *zap.Logger) *IntentAnalyzer {
	a := &IntentAnalyzer{
		minQueryLength: minQueryLength,
		logger:         logger,
	}
	a.rules = a.buildRules()
	return a
}

// Analyze classifies a query. The rule groups run in fixed precedence order;
// the first structural match sets the primary intent, later matches only add
// independent category flags
func (a *IntentAnalyzer) Analyze(query string) IntentAnalysis {
	normalized := textutil.Normalize(query)
	b := newAnalysisBuilder(query)

	for _, rule := range a.rules {
		if rule.match(b, normalized) {
			a.logger.Debug("intent rule matched",
				zap.String("rule", rule.name),
				zap.String("primary", string(b.primary)))
		}
	}

	analysis := b.build()
	a.logger.Debug("query analyzed",
		zap.String("query", query),
		zap.String("primary_intent", string(analysis.PrimaryIntent)),
		zap.Float64("confidence", analysis.Confidence))
	return analysis
}

func (a *IntentAnalyzer) buildRules() []intentRule {
	return []intentRule{
		{name: "time", match: matchTime},
		{name: "date", match: matchDate},
		{name: "weather", match: matchWeather},
		{name: "air_quality", match: matchAirQuality},
		{name: "currency_convert", match: matchCurrencyConvert},
		{name: "currency_rate", match: matchCurrencyRate},
		{name: "crypto_price", match: matchCryptoPrice},
		{name: "crypto_market", match: matchCryptoMarket},
		{name: "dictionary", match: matchDictionary},
		{name: "math", match: matchMath},
		{name: "quote", match: matchEntertainment(quoteRe, CategoryQuote, IntentQuote)},
		{name: "joke", match: matchEntertainment(jokeRe, CategoryJoke, IntentJoke)},
		{name: "trivia", match: matchEntertainment(triviaRe, CategoryTrivia, IntentTrivia)},
		{name: "news", match: matchNews},
		{name: "country", match: matchCountry},
		{name: "holidays", match: matchHolidays},
		{name: "encyclopedia", match: matchEncyclopedia},
		{name: "generic_question", match: a.matchGenericQuestion},
		{name: "web_search", match: a.matchWebSearch},
	}
}

// extractLocation trims filler and rejects bare function words so fragments
// like "is a" never pass for a place name
func extractLocation(raw string) string {
	loc := textutil.StripFiller(raw)
	if loc == "" || textutil.IsFunctionWord(loc) {
		return ""
	}
	return loc
}

func matchTime(b *analysisBuilder, q string) bool {
	if !timeRe.MatchString(q) {
		return false
	}
	b.flag(CategoryTime)
	if m := timeLocRe.FindStringSubmatch(q); m != nil {
		b.params.TimeLocation = extractLocation(m[1])
	}
	b.setPrimary(IntentTime, confStrongKeyword)
	return true
}

func matchDate(b *analysisBuilder, q string) bool {
	if !dateRe.MatchString(q) {
		return false
	}
	b.flag(CategoryDate)
	b.setPrimary(IntentDate, confStrongKeyword)
	return true
}

func matchWeather(b *analysisBuilder, q string) bool {
	if !weatherRe.MatchString(q) {
		return false
	}
	b.flag(CategoryWeather)
	if m := weatherLocRe.FindStringSubmatch(q); m != nil {
		b.params.WeatherLocation = extractLocation(m[1])
	}
	b.setPrimary(IntentWeather, confStrongKeyword)
	return true
}

func matchAirQuality(b *analysisBuilder, q string) bool {
	if !airRe.MatchString(q) {
		return false
	}
	b.flag(CategoryAirQuality)
	if b.params.WeatherLocation == "" {
		if m := weatherLocRe.FindStringSubmatch(q); m != nil {
			b.params.WeatherLocation = extractLocation(m[1])
		}
	}
	b.setPrimary(IntentAirQuality, confCategoryKeyword)
	return true
}

func matchCurrencyConvert(b *analysisBuilder, q string) bool {
	m := convertRe.FindStringSubmatch(q)
	if m == nil {
		m = altConvertRe.FindStringSubmatch(q)
	}
	if m == nil {
		return false
	}
	amount, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return false
	}
	from, to := m[2], m[3]
	if _, ok := cryptoAliases[from]; ok || cryptoRe.MatchString(from) {
		// crypto conversions belong to the crypto rules
		return false
	}
	b.flag(CategoryCurrency)
	b.params.CurrencyAmount = amount
	b.params.CurrencyFrom = strings.ToUpper(from)
	b.params.CurrencyTo = strings.ToUpper(to)
	b.setPrimary(IntentCurrencyConvert, confExactStructural)
	return true
}

func matchCurrencyRate(b *analysisBuilder, q string) bool {
	m := rateRe.FindStringSubmatch(q)
	if m == nil {
		return false
	}
	b.flag(CategoryCurrency)
	b.params.CurrencyFrom = strings.ToUpper(m[1])
	if m[2] != "" {
		b.params.CurrencyTo = strings.ToUpper(m[2])
	}
	b.setPrimary(IntentCurrencyRate, confStrongKeyword)
	return true
}

func matchCryptoPrice(b *analysisBuilder, q string) bool {
	m := cryptoRe.FindStringSubmatch(q)
	if m == nil {
		return false
	}
	name := m[1]
	if canonical, ok := cryptoAliases[name]; ok {
		name = canonical
	}
	b.flag(CategoryCrypto)
	b.params.CryptoID = name
	b.setPrimary(IntentCryptoPrice, confStrongKeyword)
	return true
}

func matchCryptoMarket(b *analysisBuilder, q string) bool {
	if !cryptoMarketRe.MatchString(q) {
		return false
	}
	b.flag(CategoryCryptoMarket)
	b.setPrimary(IntentCryptoMarket, confCategoryKeyword)
	return true
}

func matchDictionary(b *analysisBuilder, q string) bool {
	m := dictionaryRe.FindStringSubmatch(q)
	if m == nil {
		return false
	}
	word := strings.Trim(m[1], "'-")
	if word == "" || textutil.IsFunctionWord(word) {
		return false
	}
	b.flag(CategoryDictionary)
	b.params.DictionaryWord = word
	b.setPrimary(IntentDictionary, confStrongKeyword)
	return true
}

func matchMath(b *analysisBuilder, q string) bool {
	expr := strings.TrimSpace(mathPrefixRe.ReplaceAllString(q, ""))
	expr = strings.TrimSuffix(expr, "?")
	expr = strings.TrimSpace(expr)
	if expr == "" || !mathExprRe.MatchString(expr) || !mathOpRe.MatchString(expr) {
		return false
	}
	b.flag(CategoryMath)
	b.params.MathExpression = expr
	b.setPrimary(IntentMath, confExactStructural)
	return true
}

func matchEntertainment(re *regexp.Regexp, cat Category, intent Intent) func(*analysisBuilder, string) bool {
	return func(b *analysisBuilder, q string) bool {
		if !re.MatchString(q) {
			return false
		}
		b.flag(cat)
		b.setPrimary(intent, confCategoryKeyword)
		return true
	}
}

func matchNews(b *analysisBuilder, q string) bool {
	if !newsRe.MatchString(q) {
		return false
	}
	b.flag(CategoryNews)
	b.setPrimary(IntentNews, confCategoryKeyword)
	return true
}

func matchCountry(b *analysisBuilder, q string) bool {
	m := countryRe.FindStringSubmatch(q)
	if m == nil {
		return false
	}
	name := extractLocation(m[1])
	if name == "" {
		return false
	}
	b.flag(CategoryCountry)
	b.params.CountryName = name
	b.setPrimary(IntentCountry, confCategoryKeyword)
	return true
}

func matchHolidays(b *analysisBuilder, q string) bool {
	m := holidayRe.FindStringSubmatch(q)
	if m == nil {
		return false
	}
	b.flag(CategoryHolidays)
	if len(m) > 1 && m[1] != "" {
		b.params.CountryName = extractLocation(m[1])
	}
	b.setPrimary(IntentHolidays, confCategoryKeyword)
	return true
}

// matchEncyclopedia classifies the whole query's purpose, so it only applies
// when no earlier structural rule claimed the primary intent
func matchEncyclopedia(b *analysisBuilder, q string) bool {
	if b.primary != "" {
		return false
	}
	m := encycloRe.FindStringSubmatch(q)
	if m == nil {
		return false
	}
	term := textutil.StripFiller(m[1])
	if term == "" || textutil.IsFunctionWord(term) {
		return false
	}
	b.flag(CategoryEncyclopedia)
	b.flag(CategoryWebSearch)
	b.addSearchTerm(term)
	b.setPrimary(IntentEncyclopedia, confGenericKnowing)
	return true
}

func (a *IntentAnalyzer) matchGenericQuestion(b *analysisBuilder, q string) bool {
	if b.primary != "" || !questionRe.MatchString(q) {
		return false
	}
	if len(strings.TrimSpace(q)) <= a.minQueryLength {
		return false
	}
	b.flag(CategoryEncyclopedia)
	b.flag(CategoryWebSearch)
	b.addSearchTerm(textutil.TrimQuestionPrefix(q))
	b.setPrimary(IntentEncyclopedia, confGenericQuestion)
	return true
}

func (a *IntentAnalyzer) matchWebSearch(b *analysisBuilder, q string) bool {
	if b.primary != "" {
		return false
	}
	trimmed := strings.TrimSpace(strings.TrimSuffix(q, "?"))
	if len(trimmed) <= a.minQueryLength {
		return false
	}
	b.flag(CategoryWebSearch)
	b.addSearchTerm(trimmed)
	b.setPrimary(IntentWebSearch, confWebFallback)
	return true
}

// FallbackTerm is the free-text term handed to the fallback chain: the first
// extracted search term, or the raw query with a trailing "?" stripped
func (a IntentAnalysis) FallbackTerm() string {
	if len(a.SearchTerms) > 0 {
		return a.SearchTerms[0]
	}
	return strings.TrimSpace(strings.TrimSuffix(a.Query, "?"))
}
