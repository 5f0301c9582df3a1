package sources

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mikey/knowledge-engine/internal/core"
	"github.com/mikey/knowledge-engine/internal/textutil"
	"go.uber.org/zap"
)

const holidaysLabel = "Nager.Date"

// countryCodes maps common country spellings to ISO 3166-1 alpha-2 codes
var countryCodes = map[string]string{
	"usa": "US", "us": "US", "united states": "US", "america": "US",
	"uk": "GB", "united kingdom": "GB", "england": "GB", "britain": "GB",
	"germany": "DE", "france": "FR", "spain": "ES", "italy": "IT",
	"netherlands": "NL", "belgium": "BE", "austria": "AT", "switzerland": "CH",
	"poland": "PL", "portugal": "PT", "ireland": "IE", "sweden": "SE",
	"norway": "NO", "denmark": "DK", "finland": "FI", "japan": "JP",
	"canada": "CA", "australia": "AU", "new zealand": "NZ", "brazil": "BR",
	"mexico": "MX", "india": "IN", "south africa": "ZA",
}

type publicHoliday struct {
	Date      string `json:"date"`
	LocalName string `json:"localName"`
	Name      string `json:"name"`
}

// HolidaysSource wraps the Nager.Date public holiday API
type HolidaysSource struct {
	http    *HTTPClient
	baseURL string
	cache   core.CacheRepository
	ttl     time.Duration
	logger  *zap.Logger
	now     func() time.Time
}

// NewHolidaysSource creates a new public holidays source
func NewHolidaysSource(http *HTTPClient, baseURL string, cache core.CacheRepository, ttl time.Duration, logger *zap.Logger) *HolidaysSource {
	return &HolidaysSource{
		http:    http,
		baseURL: baseURL,
		cache:   cache,
		ttl:     ttl,
		logger:  logger,
		now:     time.Now,
	}
}

// Category returns the fan-out category this source serves
func (s *HolidaysSource) Category() core.Category { return core.CategoryHolidays }

// Fetch returns this year's remaining public holidays for the extracted country
func (s *HolidaysSource) Fetch(ctx context.Context, analysis core.IntentAnalysis) (*core.SourceResult, error) {
	name := analysis.Params.CountryName
	if name == "" {
		return nil, nil
	}
	code, ok := countryCodes[strings.ToLower(name)]
	if !ok {
		return nil, nil
	}

	year := s.now().Year()
	key := textutil.CacheKey(string(core.CategoryHolidays), fmt.Sprintf("%s %d", code, year))
	if s.cache != nil {
		if cached, ok := s.cache.Get(key, s.ttl); ok {
			return cached, nil
		}
	}

	endpoint := fmt.Sprintf("%s/api/v3/PublicHolidays/%d/%s", s.baseURL, year, code)
	var holidays []publicHoliday
	if err := s.http.getJSON(ctx, endpoint, &holidays); err != nil {
		return nil, fmt.Errorf("holidays lookup: %w", err)
	}
	if len(holidays) == 0 {
		return nil, nil
	}

	today := s.now().Format("2006-01-02")
	items := make([]string, 0, len(holidays))
	for _, holiday := range holidays {
		if holiday.Date < today {
			continue
		}
		items = append(items, fmt.Sprintf("%s: %s", holiday.Date, holiday.Name))
	}
	if len(items) == 0 {
		return nil, nil
	}

	result := &core.SourceResult{
		Type:       core.TypeRawSearchResults,
		Items:      items,
		Confidence: 0.85,
		Source:     holidaysLabel,
		Title:      fmt.Sprintf("Public holidays in %s (%d)", name, year),
	}
	if s.cache != nil {
		s.cache.Set(key, result, s.ttl)
	}
	return result, nil
}
