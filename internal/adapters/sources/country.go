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

const countryLabel = "REST Countries"

type countryInfo struct {
	Name struct {
		Common string `json:"common"`
	} `json:"name"`
	Capital    []string `json:"capital"`
	Population int64    `json:"population"`
	Region     string   `json:"region"`
	Subregion  string   `json:"subregion"`
}

// CountrySource wraps the REST Countries API for country facts
type CountrySource struct {
	http    *HTTPClient
	baseURL string
	cache   core.CacheRepository
	ttl     time.Duration
	logger  *zap.Logger
}

// NewCountrySource creates a new country source
func NewCountrySource(http *HTTPClient, baseURL string, cache core.CacheRepository, ttl time.Duration, logger *zap.Logger) *CountrySource {
	return &CountrySource{
		http:    http,
		baseURL: baseURL,
		cache:   cache,
		ttl:     ttl,
		logger:  logger,
	}
}

// Category returns the fan-out category this source serves
func (s *CountrySource) Category() core.Category { return core.CategoryCountry }

// Fetch returns facts about the extracted country
func (s *CountrySource) Fetch(ctx context.Context, analysis core.IntentAnalysis) (*core.SourceResult, error) {
	name := analysis.Params.CountryName
	if name == "" {
		return nil, nil
	}

	key := textutil.CacheKey(string(core.CategoryCountry), name)
	if s.cache != nil {
		if cached, ok := s.cache.Get(key, s.ttl); ok {
			return cached, nil
		}
	}

	endpoint := fmt.Sprintf("%s/v3.1/name/%s?fields=name,capital,population,region,subregion", s.baseURL, url.PathEscape(name))
	var countries []countryInfo
	if err := s.http.getJSON(ctx, endpoint, &countries); err != nil {
		return nil, fmt.Errorf("country lookup: %w", err)
	}
	if len(countries) == 0 {
		return nil, nil
	}

	country := countries[0]
	capital := "n/a"
	if len(country.Capital) > 0 {
		capital = strings.Join(country.Capital, ", ")
	}

	result := &core.SourceResult{
		Type: core.TypeInstantAnswer,
		Text: fmt.Sprintf("%s: capital %s, population %d, region %s (%s)",
			country.Name.Common, capital, country.Population, country.Region, country.Subregion),
		Confidence: 0.85,
		Source:     countryLabel,
		Title:      country.Name.Common,
	}
	if s.cache != nil {
		s.cache.Set(key, result, s.ttl)
	}
	return result, nil
}
