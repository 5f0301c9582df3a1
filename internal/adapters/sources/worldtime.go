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

const worldTimeLabel = "World Time API"

// cityZones maps common city and country names to IANA timezones; unknown
// locations fall back to UTC
var cityZones = map[string]string{
	"london": "Europe/London", "uk": "Europe/London", "paris": "Europe/Paris",
	"france": "Europe/Paris", "berlin": "Europe/Berlin", "germany": "Europe/Berlin",
	"madrid": "Europe/Madrid", "rome": "Europe/Rome", "moscow": "Europe/Moscow",
	"new york": "America/New_York", "los angeles": "America/Los_Angeles",
	"chicago": "America/Chicago", "toronto": "America/Toronto",
	"mexico city": "America/Mexico_City", "sao paulo": "America/Sao_Paulo",
	"tokyo": "Asia/Tokyo", "japan": "Asia/Tokyo", "beijing": "Asia/Shanghai",
	"shanghai": "Asia/Shanghai", "china": "Asia/Shanghai", "seoul": "Asia/Seoul",
	"singapore": "Asia/Singapore", "hong kong": "Asia/Hong_Kong",
	"delhi": "Asia/Kolkata", "mumbai": "Asia/Kolkata", "india": "Asia/Kolkata",
	"dubai": "Asia/Dubai", "sydney": "Australia/Sydney", "melbourne": "Australia/Melbourne",
	"auckland": "Pacific/Auckland", "cairo": "Africa/Cairo", "lagos": "Africa/Lagos",
	"nairobi": "Africa/Nairobi", "johannesburg": "Africa/Johannesburg",
}

type worldTimeResponse struct {
	Datetime     string `json:"datetime"`
	Timezone     string `json:"timezone"`
	Abbreviation string `json:"abbreviation"`
	DayOfWeek    int    `json:"day_of_week"`
}

// WorldTimeSource wraps the world time API for current-time queries
type WorldTimeSource struct {
	http    *HTTPClient
	baseURL string
	cache   core.CacheRepository
	ttl     time.Duration
	logger  *zap.Logger
}

// NewWorldTimeSource creates a new world time source
func NewWorldTimeSource(http *HTTPClient, baseURL string, cache core.CacheRepository, ttl time.Duration, logger *zap.Logger) *WorldTimeSource {
	return &WorldTimeSource{
		http:    http,
		baseURL: baseURL,
		cache:   cache,
		ttl:     ttl,
		logger:  logger,
	}
}

// Category returns the fan-out category this source serves
func (s *WorldTimeSource) Category() core.Category { return core.CategoryTime }

// Fetch returns the current time at the extracted location (UTC by default)
func (s *WorldTimeSource) Fetch(ctx context.Context, analysis core.IntentAnalysis) (*core.SourceResult, error) {
	location := analysis.Params.TimeLocation
	zone := "Etc/UTC"
	label := "UTC"
	if location != "" {
		if z, ok := cityZones[strings.ToLower(location)]; ok {
			zone = z
		}
		label = location
	}

	key := textutil.CacheKey(string(core.CategoryTime), zone)
	if s.cache != nil {
		if cached, ok := s.cache.Get(key, s.ttl); ok {
			return cached, nil
		}
	}

	endpoint := fmt.Sprintf("%s/api/timezone/%s", s.baseURL, zonePath(zone))
	var resp worldTimeResponse
	if err := s.http.getJSON(ctx, endpoint, &resp); err != nil {
		return nil, fmt.Errorf("world time lookup: %w", err)
	}

	parsed, err := time.Parse(time.RFC3339Nano, resp.Datetime)
	if err != nil {
		return nil, fmt.Errorf("parsing world time datetime: %w", err)
	}

	result := &core.SourceResult{
		Type:       core.TypeInstantAnswer,
		Text:       fmt.Sprintf("%s (%s) in %s", parsed.Format("15:04"), resp.Abbreviation, label),
		Confidence: 0.9,
		Source:     worldTimeLabel,
		Title:      resp.Timezone,
	}
	if s.cache != nil {
		s.cache.Set(key, result, s.ttl)
	}
	return result, nil
}

func zonePath(zone string) string {
	parts := strings.Split(zone, "/")
	for i, part := range parts {
		parts[i] = url.PathEscape(part)
	}
	return strings.Join(parts, "/")
}

// DateSource answers date queries locally; no provider round-trip is needed
type DateSource struct {
	now func() time.Time
}

// NewDateSource creates a new date source
func NewDateSource() *DateSource {
	return &DateSource{now: time.Now}
}

// Category returns the fan-out category this source serves
func (s *DateSource) Category() core.Category { return core.CategoryDate }

// Fetch returns today's date
func (s *DateSource) Fetch(_ context.Context, _ core.IntentAnalysis) (*core.SourceResult, error) {
	return &core.SourceResult{
		Type:       core.TypeInstantAnswer,
		Text:       s.now().Format("Monday, January 2, 2006"),
		Confidence: 0.95,
		Source:     "system clock",
	}, nil
}
