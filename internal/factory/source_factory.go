package factory

import (
	"fmt"

	"github.com/mikey/knowledge-engine/internal/adapters/sources"
	"github.com/mikey/knowledge-engine/internal/config"
	"github.com/mikey/knowledge-engine/internal/core"
	"go.uber.org/zap"
)

// SourceFactory creates the source registry and the fallback chain from
// configuration. The constructed sources share one HTTP client and one cache
// repository (which may be nil when caching is disabled)
type SourceFactory struct {
	cfg    *config.Config
	cache  core.CacheRepository
	logger *zap.Logger

	http      *sources.HTTPClient
	duckduck  *sources.DuckDuckGoSource
	wikipedia *sources.WikipediaSource
	dict      *sources.DictionarySource
	stack     *sources.StackExchangeSource
}

// NewSourceFactory creates a new source factory
func NewSourceFactory(cfg *config.Config, cache core.CacheRepository, logger *zap.Logger) (*SourceFactory, error) {
	httpCfg, err := cfg.GetHTTP()
	if err != nil {
		return nil, fmt.Errorf("invalid http configuration: %w", err)
	}

	f := &SourceFactory{
		cfg:    cfg,
		cache:  cache,
		logger: logger,
		http:   sources.NewHTTPClient(httpCfg.Timeout, httpCfg.UserAgent),
	}

	webTTL, err := cfg.GetSourceTTL("web_search")
	if err != nil {
		return nil, fmt.Errorf("invalid web_search ttl: %w", err)
	}
	encycloTTL, err := cfg.GetSourceTTL("encyclopedia")
	if err != nil {
		return nil, fmt.Errorf("invalid encyclopedia ttl: %w", err)
	}
	dictTTL, err := cfg.GetSourceTTL("dictionary")
	if err != nil {
		return nil, fmt.Errorf("invalid dictionary ttl: %w", err)
	}

	f.duckduck = sources.NewDuckDuckGoSource(f.http,
		cfg.GetString("sources.duckduckgo.base_url"), cache, webTTL, logger)
	f.wikipedia = sources.NewWikipediaSource(f.http,
		cfg.GetString("sources.wikipedia.base_url"), cache, encycloTTL, logger)
	f.dict = sources.NewDictionarySource(f.http,
		cfg.GetString("sources.dictionary.base_url"), cache, dictTTL, logger)
	f.stack = sources.NewStackExchangeSource(f.http,
		cfg.GetString("sources.stackexchange.base_url"),
		cfg.GetString("sources.stackexchange.site"), logger)

	return f, nil
}

// CreateSourceRegistry builds the category-to-fetcher map consulted by the
// concurrent fan-out. Every category a query can be classified into has at
// most one fetcher here
func (f *SourceFactory) CreateSourceRegistry() (map[core.Category]core.SourceFetcher, error) {
	ttl := f.cfg.GetSourceTTL

	timeTTL, err := ttl("time")
	if err != nil {
		return nil, err
	}
	weatherTTL, err := ttl("weather")
	if err != nil {
		return nil, err
	}
	airTTL, err := ttl("air_quality")
	if err != nil {
		return nil, err
	}
	fxTTL, err := ttl("exchange_rate")
	if err != nil {
		return nil, err
	}
	cryptoTTL, err := ttl("crypto_price")
	if err != nil {
		return nil, err
	}
	marketTTL, err := ttl("crypto_market")
	if err != nil {
		return nil, err
	}
	newsTTL, err := ttl("news")
	if err != nil {
		return nil, err
	}
	countryTTL, err := ttl("country")
	if err != nil {
		return nil, err
	}
	holidaysTTL, err := ttl("holidays")
	if err != nil {
		return nil, err
	}

	newsCfg := f.cfg.GetNews()

	registry := map[core.Category]core.SourceFetcher{
		core.CategoryTime: sources.NewWorldTimeSource(f.http,
			f.cfg.GetString("sources.worldtime.base_url"), f.cache, timeTTL, f.logger),
		core.CategoryDate: sources.NewDateSource(),
		core.CategoryWeather: sources.NewWeatherSource(f.http,
			f.cfg.GetString("sources.weather.base_url"), f.cache, weatherTTL, f.logger),
		core.CategoryAirQuality: sources.NewAirQualitySource(f.http,
			f.cfg.GetString("sources.air_quality.base_url"),
			f.cfg.GetString("sources.geocoding.base_url"), f.cache, airTTL, f.logger),
		core.CategoryCurrency: sources.NewExchangeRateSource(f.http,
			f.cfg.GetString("sources.exchange_rate.base_url"), f.cache, fxTTL, f.logger),
		core.CategoryCrypto: sources.NewCryptoPriceSource(f.http,
			f.cfg.GetString("sources.crypto.base_url"), f.cache, cryptoTTL, f.logger),
		core.CategoryCryptoMarket: sources.NewCryptoMarketSource(f.http,
			f.cfg.GetString("sources.crypto.base_url"), f.cache, marketTTL, f.logger),
		core.CategoryDictionary: f.dict,
		core.CategoryMath:       sources.NewCalculatorSource(f.logger),
		core.CategoryNews: sources.NewNewsFeedSource(newsCfg.Feeds,
			newsCfg.MaxHeadlines, f.cache, newsTTL, f.logger),
		core.CategoryCountry: sources.NewCountrySource(f.http,
			f.cfg.GetString("sources.country.base_url"), f.cache, countryTTL, f.logger),
		core.CategoryHolidays: sources.NewHolidaysSource(f.http,
			f.cfg.GetString("sources.holidays.base_url"), f.cache, holidaysTTL, f.logger),
		core.CategoryTrivia: sources.NewTriviaSource(f.http,
			f.cfg.GetString("sources.trivia.base_url"), f.logger),
		core.CategoryEncyclopedia: f.wikipedia,
		core.CategoryWebSearch:    f.duckduck,
	}
	return registry, nil
}

// CreateFallbackChain wires the ordered probe sequence: DuckDuckGo first,
// then Wikipedia, the dictionary and Stack Exchange behind their gates, and
// the parallel multi-source search last
func (f *SourceFactory) CreateFallbackChain() (*core.FallbackChain, error) {
	engineCfg, err := f.cfg.GetEngine()
	if err != nil {
		return nil, fmt.Errorf("invalid engine configuration: %w", err)
	}

	searchers := []core.SearchProbe{
		f.duckduck,
		f.wikipedia.OpenSearchProbe(),
		f.stack,
	}
	return core.NewFallbackChain(
		f.duckduck,
		f.wikipedia,
		f.dict,
		f.stack,
		searchers,
		nil,
		engineCfg.ProbeTimeout,
		f.logger,
	), nil
}
