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

const airQualityLabel = "Open-Meteo"

type geocodingResponse struct {
	Results []struct {
		Name      string  `json:"name"`
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	} `json:"results"`
}

type airQualityResponse struct {
	Current struct {
		EuropeanAQI float64 `json:"european_aqi"`
		PM25        float64 `json:"pm2_5"`
	} `json:"current"`
}

// AirQualitySource geocodes a location and reads its air quality index
type AirQualitySource struct {
	http       *HTTPClient
	baseURL    string
	geocodeURL string
	cache      core.CacheRepository
	ttl        time.Duration
	logger     *zap.Logger
}

// NewAirQualitySource creates a new air quality source
func NewAirQualitySource(http *HTTPClient, baseURL, geocodeURL string, cache core.CacheRepository, ttl time.Duration, logger *zap.Logger) *AirQualitySource {
	return &AirQualitySource{
		http:       http,
		baseURL:    baseURL,
		geocodeURL: geocodeURL,
		cache:      cache,
		ttl:        ttl,
		logger:     logger,
	}
}

// Category returns the fan-out category this source serves
func (s *AirQualitySource) Category() core.Category { return core.CategoryAirQuality }

// Fetch returns the air quality index for the extracted location
func (s *AirQualitySource) Fetch(ctx context.Context, analysis core.IntentAnalysis) (*core.SourceResult, error) {
	location := analysis.Params.WeatherLocation
	if location == "" {
		return nil, nil
	}

	key := textutil.CacheKey(string(core.CategoryAirQuality), location)
	if s.cache != nil {
		if cached, ok := s.cache.Get(key, s.ttl); ok {
			return cached, nil
		}
	}

	geoEndpoint := fmt.Sprintf("%s/v1/search?name=%s&count=1", s.geocodeURL, url.QueryEscape(location))
	var geo geocodingResponse
	if err := s.http.getJSON(ctx, geoEndpoint, &geo); err != nil {
		return nil, fmt.Errorf("geocoding %q: %w", location, err)
	}
	if len(geo.Results) == 0 {
		return nil, nil
	}

	place := geo.Results[0]
	aqiEndpoint := fmt.Sprintf("%s/v1/air-quality?latitude=%.4f&longitude=%.4f&current=european_aqi,pm2_5",
		s.baseURL, place.Latitude, place.Longitude)
	var aqi airQualityResponse
	if err := s.http.getJSON(ctx, aqiEndpoint, &aqi); err != nil {
		return nil, fmt.Errorf("air quality lookup: %w", err)
	}

	result := &core.SourceResult{
		Type: core.TypeInstantAnswer,
		Text: fmt.Sprintf("Air quality in %s: European AQI %.0f, PM2.5 %.1f µg/m³",
			place.Name, aqi.Current.EuropeanAQI, aqi.Current.PM25),
		Value:      aqi.Current.EuropeanAQI,
		Confidence: 0.85,
		Source:     airQualityLabel,
		Title:      place.Name,
	}
	if s.cache != nil {
		s.cache.Set(key, result, s.ttl)
	}
	return result, nil
}
