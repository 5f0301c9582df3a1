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

const exchangeRateLabel = "Open Exchange Rates"

type exchangeRateResponse struct {
	Result string             `json:"result"`
	Rates  map[string]float64 `json:"rates"`
}

// ExchangeRateSource wraps the open.er-api.com rate feed. The per-pair rate
// is what gets cached; conversions are computed fresh from the cached rate
// so the same pair serves any amount
type ExchangeRateSource struct {
	http    *HTTPClient
	baseURL string
	cache   core.CacheRepository
	ttl     time.Duration
	logger  *zap.Logger
}

// NewExchangeRateSource creates a new exchange rate source
func NewExchangeRateSource(http *HTTPClient, baseURL string, cache core.CacheRepository, ttl time.Duration, logger *zap.Logger) *ExchangeRateSource {
	return &ExchangeRateSource{
		http:    http,
		baseURL: baseURL,
		cache:   cache,
		ttl:     ttl,
		logger:  logger,
	}
}

// Category returns the fan-out category this source serves
func (s *ExchangeRateSource) Category() core.Category { return core.CategoryCurrency }

// Fetch answers both rate and conversion intents
func (s *ExchangeRateSource) Fetch(ctx context.Context, analysis core.IntentAnalysis) (*core.SourceResult, error) {
	from := analysis.Params.CurrencyFrom
	to := analysis.Params.CurrencyTo
	if from == "" {
		return nil, nil
	}
	if to == "" {
		to = "USD"
	}

	rate, err := s.rate(ctx, from, to)
	if err != nil {
		return nil, err
	}
	if rate == nil {
		return nil, nil
	}

	if amount := analysis.Params.CurrencyAmount; amount > 0 {
		converted := amount * rate.Value
		return &core.SourceResult{
			Type:       core.TypeInstantAnswer,
			Text:       fmt.Sprintf("%.2f %s = %.2f %s", amount, from, converted, to),
			Value:      converted,
			Confidence: 0.95,
			Source:     exchangeRateLabel,
		}, nil
	}
	return rate, nil
}

// rate returns the cached or freshly fetched rate for one currency pair
func (s *ExchangeRateSource) rate(ctx context.Context, from, to string) (*core.SourceResult, error) {
	from = strings.ToUpper(from)
	to = strings.ToUpper(to)

	key := textutil.CacheKey("exchange_rate", from+" "+to)
	if s.cache != nil {
		if cached, ok := s.cache.Get(key, s.ttl); ok {
			return cached, nil
		}
	}

	endpoint := fmt.Sprintf("%s/v6/latest/%s", s.baseURL, url.PathEscape(from))
	var resp exchangeRateResponse
	if err := s.http.getJSON(ctx, endpoint, &resp); err != nil {
		return nil, fmt.Errorf("exchange rate lookup: %w", err)
	}
	if resp.Result != "success" {
		return nil, nil
	}

	rate, ok := resp.Rates[to]
	if !ok {
		return nil, nil
	}

	result := &core.SourceResult{
		Type:       core.TypeInstantAnswer,
		Text:       fmt.Sprintf("1 %s = %.4f %s", from, rate, to),
		Value:      rate,
		Confidence: 0.9,
		Source:     exchangeRateLabel,
	}
	if s.cache != nil {
		s.cache.Set(key, result, s.ttl)
	}
	return result, nil
}
