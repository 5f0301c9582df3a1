package sources

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/mikey/knowledge-engine/internal/core"
	"github.com/mikey/knowledge-engine/internal/textutil"
	"go.uber.org/zap"
)

const coinGeckoLabel = "CoinGecko"

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// CryptoPriceSource wraps the CoinGecko simple price endpoint
type CryptoPriceSource struct {
	http    *HTTPClient
	baseURL string
	cache   core.CacheRepository
	ttl     time.Duration
	logger  *zap.Logger
}

// NewCryptoPriceSource creates a new crypto price source
func NewCryptoPriceSource(http *HTTPClient, baseURL string, cache core.CacheRepository, ttl time.Duration, logger *zap.Logger) *CryptoPriceSource {
	return &CryptoPriceSource{
		http:    http,
		baseURL: baseURL,
		cache:   cache,
		ttl:     ttl,
		logger:  logger,
	}
}

// Category returns the fan-out category this source serves
func (s *CryptoPriceSource) Category() core.Category { return core.CategoryCrypto }

// Fetch returns the USD price of the extracted coin
func (s *CryptoPriceSource) Fetch(ctx context.Context, analysis core.IntentAnalysis) (*core.SourceResult, error) {
	coin := analysis.Params.CryptoID
	if coin == "" {
		return nil, nil
	}

	key := textutil.CacheKey("crypto_price", coin)
	if s.cache != nil {
		if cached, ok := s.cache.Get(key, s.ttl); ok {
			return cached, nil
		}
	}

	endpoint := fmt.Sprintf("%s/api/v3/simple/price?ids=%s&vs_currencies=usd&include_24hr_change=true",
		s.baseURL, url.QueryEscape(coin))
	var resp map[string]map[string]float64
	if err := s.http.getJSON(ctx, endpoint, &resp); err != nil {
		return nil, fmt.Errorf("crypto price lookup: %w", err)
	}

	quote, ok := resp[coin]
	if !ok {
		return nil, nil
	}
	price, ok := quote["usd"]
	if !ok {
		return nil, nil
	}

	result := &core.SourceResult{
		Type:       core.TypeInstantAnswer,
		Text:       fmt.Sprintf("%s: $%.2f (24h: %+.2f%%)", capitalize(coin), price, quote["usd_24h_change"]),
		Value:      price,
		Confidence: 0.9,
		Source:     coinGeckoLabel,
		Title:      coin,
	}
	if s.cache != nil {
		s.cache.Set(key, result, s.ttl)
	}
	return result, nil
}

// CryptoMarketSource wraps the CoinGecko markets endpoint for top-coin lists
type CryptoMarketSource struct {
	http    *HTTPClient
	baseURL string
	cache   core.CacheRepository
	ttl     time.Duration
	logger  *zap.Logger
}

// NewCryptoMarketSource creates a new crypto market source
func NewCryptoMarketSource(http *HTTPClient, baseURL string, cache core.CacheRepository, ttl time.Duration, logger *zap.Logger) *CryptoMarketSource {
	return &CryptoMarketSource{
		http:    http,
		baseURL: baseURL,
		cache:   cache,
		ttl:     ttl,
		logger:  logger,
	}
}

// Category returns the fan-out category this source serves
func (s *CryptoMarketSource) Category() core.Category { return core.CategoryCryptoMarket }

// Fetch returns the top coins by market cap
func (s *CryptoMarketSource) Fetch(ctx context.Context, _ core.IntentAnalysis) (*core.SourceResult, error) {
	key := textutil.CacheKey("crypto_market", "top")
	if s.cache != nil {
		if cached, ok := s.cache.Get(key, s.ttl); ok {
			return cached, nil
		}
	}

	endpoint := fmt.Sprintf("%s/api/v3/coins/markets?vs_currency=usd&order=market_cap_desc&per_page=10&page=1", s.baseURL)
	var coins []struct {
		Name      string  `json:"name"`
		Symbol    string  `json:"symbol"`
		Price     float64 `json:"current_price"`
		Change24h float64 `json:"price_change_percentage_24h"`
	}
	if err := s.http.getJSON(ctx, endpoint, &coins); err != nil {
		return nil, fmt.Errorf("crypto market lookup: %w", err)
	}
	if len(coins) == 0 {
		return nil, nil
	}

	items := make([]string, 0, len(coins))
	for _, coin := range coins {
		items = append(items, fmt.Sprintf("%s (%s): $%.2f (%+.2f%%)",
			coin.Name, strings.ToUpper(coin.Symbol), coin.Price, coin.Change24h))
	}

	result := &core.SourceResult{
		Type:       core.TypeRawSearchResults,
		Items:      items,
		Confidence: 0.85,
		Source:     coinGeckoLabel,
		Title:      "Top cryptocurrencies by market cap",
	}
	if s.cache != nil {
		s.cache.Set(key, result, s.ttl)
	}
	return result, nil
}
