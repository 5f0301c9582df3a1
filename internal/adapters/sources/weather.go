package sources

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/mikey/knowledge-engine/internal/core"
	"github.com/mikey/knowledge-engine/internal/textutil"
	"go.uber.org/zap"
)

const weatherLabel = "wttr.in"

type wttrResponse struct {
	CurrentCondition []struct {
		TempC       string `json:"temp_C"`
		FeelsLikeC  string `json:"FeelsLikeC"`
		Humidity    string `json:"humidity"`
		WindKmph    string `json:"windspeedKmph"`
		WeatherDesc []struct {
			Value string `json:"value"`
		} `json:"weatherDesc"`
	} `json:"current_condition"`
}

// WeatherSource wraps the wttr.in JSON endpoint for current conditions
type WeatherSource struct {
	http    *HTTPClient
	baseURL string
	cache   core.CacheRepository
	ttl     time.Duration
	logger  *zap.Logger
}

// NewWeatherSource creates a new weather source
func NewWeatherSource(http *HTTPClient, baseURL string, cache core.CacheRepository, ttl time.Duration, logger *zap.Logger) *WeatherSource {
	return &WeatherSource{
		http:    http,
		baseURL: baseURL,
		cache:   cache,
		ttl:     ttl,
		logger:  logger,
	}
}

// Category returns the fan-out category this source serves
func (s *WeatherSource) Category() core.Category { return core.CategoryWeather }

// Fetch returns current conditions for the extracted location
func (s *WeatherSource) Fetch(ctx context.Context, analysis core.IntentAnalysis) (*core.SourceResult, error) {
	location := analysis.Params.WeatherLocation
	if location == "" {
		return nil, nil
	}

	key := textutil.CacheKey(string(core.CategoryWeather), location)
	if s.cache != nil {
		if cached, ok := s.cache.Get(key, s.ttl); ok {
			return cached, nil
		}
	}

	endpoint := fmt.Sprintf("%s/%s?format=j1", s.baseURL, url.PathEscape(location))
	var resp wttrResponse
	if err := s.http.getJSON(ctx, endpoint, &resp); err != nil {
		return nil, fmt.Errorf("weather lookup: %w", err)
	}
	if len(resp.CurrentCondition) == 0 {
		return nil, nil
	}

	current := resp.CurrentCondition[0]
	desc := ""
	if len(current.WeatherDesc) > 0 {
		desc = current.WeatherDesc[0].Value
	}

	result := &core.SourceResult{
		Type: core.TypeInstantAnswer,
		Text: fmt.Sprintf("%s°C (feels like %s°C), %s, humidity %s%%, wind %s km/h in %s",
			current.TempC, current.FeelsLikeC, desc, current.Humidity, current.WindKmph, location),
		Confidence: 0.9,
		Source:     weatherLabel,
		Title:      location,
	}
	if s.cache != nil {
		s.cache.Set(key, result, s.ttl)
	}
	return result, nil
}
