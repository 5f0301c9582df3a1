package config

import "time"

// EngineConfig represents the configuration for the aggregation engine
type EngineConfig struct {
	Budget         time.Duration
	ProbeTimeout   time.Duration
	MinQueryLength int
}

// HTTPConfig represents the configuration for outbound HTTP calls
type HTTPConfig struct {
	Timeout   time.Duration
	UserAgent string
}

// CacheConfig represents the configuration for the cache layer
type CacheConfig struct {
	Type             string
	Enabled          bool
	CleanupFrequency time.Duration
	SQLitePath       string
	MySQLDSN         string
}

// NewsConfig represents the configuration for the news feed source
type NewsConfig struct {
	Feeds        []string
	MaxHeadlines int
}

// GetEngine returns the engine configuration
func (c *Config) GetEngine() (EngineConfig, error) {
	budget, err := c.GetDuration("engine.budget")
	if err != nil {
		return EngineConfig{}, err
	}
	probeTimeout, err := c.GetDuration("engine.probe_timeout")
	if err != nil {
		return EngineConfig{}, err
	}
	return EngineConfig{
		Budget:         budget,
		ProbeTimeout:   probeTimeout,
		MinQueryLength: c.GetInt("engine.min_query_length"),
	}, nil
}

// GetHTTP returns the outbound HTTP configuration
func (c *Config) GetHTTP() (HTTPConfig, error) {
	timeout, err := c.GetDuration("http.timeout")
	if err != nil {
		return HTTPConfig{}, err
	}
	return HTTPConfig{
		Timeout:   timeout,
		UserAgent: c.GetString("http.user_agent"),
	}, nil
}

// GetCache returns the cache configuration
func (c *Config) GetCache() (CacheConfig, error) {
	cleanupFreq, err := c.GetDuration("cache.cleanup_frequency")
	if err != nil {
		return CacheConfig{}, err
	}
	return CacheConfig{
		Type:             c.GetString("cache.type"),
		Enabled:          c.GetBool("cache.enabled"),
		CleanupFrequency: cleanupFreq,
		SQLitePath:       c.GetString("cache.sqlite_path"),
		MySQLDSN:         c.GetString("cache.mysql_dsn"),
	}, nil
}

// GetNews returns the news feed configuration
func (c *Config) GetNews() NewsConfig {
	return NewsConfig{
		Feeds:        c.GetStringSlice("sources.news.feeds"),
		MaxHeadlines: c.GetInt("sources.news.max_headlines"),
	}
}

// GetSourceTTL returns the cache validity window for a source category key
func (c *Config) GetSourceTTL(key string) (time.Duration, error) {
	return c.GetDuration("sources.ttl." + key)
}
