package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	v *viper.Viper
}

// New creates a new configuration instance
func New() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("/etc/knowledge-engine/")
	v.AddConfigPath("$HOME/.knowledge-engine")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")

	// Set defaults
	setDefaults(v)

	// Environment variables
	v.AutomaticEnv()
	v.SetEnvPrefix("KNOWLEDGE_ENGINE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found, using defaults
	}

	return &Config{v: v}, nil
}

// NewFromViper creates a new configuration instance from an existing Viper instance
func NewFromViper(v *viper.Viper) *Config {
	return &Config{v: v}
}

// NewEmptyViper creates a new Viper instance with defaults
func NewEmptyViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

// setDefaults sets the default configuration values
func setDefaults(v *viper.Viper) {
	// Engine defaults
	v.SetDefault("engine.budget", "3s")
	v.SetDefault("engine.probe_timeout", "2s")
	v.SetDefault("engine.min_query_length", 3)

	// HTTP defaults
	v.SetDefault("http.timeout", "5s")
	v.SetDefault("http.user_agent", "knowledge-engine/1.0")

	// Cache defaults
	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.cleanup_frequency", "5m")
	v.SetDefault("cache.sqlite_path", "/data/knowledge_cache.db")
	v.SetDefault("cache.mysql_dsn", "user:password@tcp(localhost:3306)/knowledge_engine")

	// Per-category cache validity windows
	v.SetDefault("sources.ttl.time", "30s")
	v.SetDefault("sources.ttl.weather", "10m")
	v.SetDefault("sources.ttl.air_quality", "30m")
	v.SetDefault("sources.ttl.exchange_rate", "1h")
	v.SetDefault("sources.ttl.crypto_price", "1m")
	v.SetDefault("sources.ttl.crypto_market", "2m")
	v.SetDefault("sources.ttl.news", "30m")
	v.SetDefault("sources.ttl.country", "24h")
	v.SetDefault("sources.ttl.holidays", "24h")
	v.SetDefault("sources.ttl.dictionary", "24h")
	v.SetDefault("sources.ttl.encyclopedia", "6h")
	v.SetDefault("sources.ttl.web_search", "30m")

	// Source endpoints
	v.SetDefault("sources.duckduckgo.base_url", "https://api.duckduckgo.com")
	v.SetDefault("sources.wikipedia.base_url", "https://en.wikipedia.org")
	v.SetDefault("sources.dictionary.base_url", "https://api.dictionaryapi.dev")
	v.SetDefault("sources.stackexchange.base_url", "https://api.stackexchange.com")
	v.SetDefault("sources.stackexchange.site", "stackoverflow")
	v.SetDefault("sources.worldtime.base_url", "https://worldtimeapi.org")
	v.SetDefault("sources.weather.base_url", "https://wttr.in")
	v.SetDefault("sources.air_quality.base_url", "https://air-quality-api.open-meteo.com")
	v.SetDefault("sources.geocoding.base_url", "https://geocoding-api.open-meteo.com")
	v.SetDefault("sources.exchange_rate.base_url", "https://open.er-api.com")
	v.SetDefault("sources.crypto.base_url", "https://api.coingecko.com")
	v.SetDefault("sources.country.base_url", "https://restcountries.com")
	v.SetDefault("sources.holidays.base_url", "https://date.nager.at")
	v.SetDefault("sources.trivia.base_url", "https://uselessfacts.jsph.pl")
	v.SetDefault("sources.news.feeds", []string{
		"https://feeds.bbci.co.uk/news/world/rss.xml",
	})
	v.SetDefault("sources.news.max_headlines", 5)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// GetString gets a string value from the configuration
func (c *Config) GetString(key string) string {
	return c.v.GetString(key)
}

// GetInt gets an integer value from the configuration
func (c *Config) GetInt(key string) int {
	return c.v.GetInt(key)
}

// GetFloat64 gets a float64 value from the configuration
func (c *Config) GetFloat64(key string) float64 {
	return c.v.GetFloat64(key)
}

// GetBool gets a boolean value from the configuration
func (c *Config) GetBool(key string) bool {
	return c.v.GetBool(key)
}

// GetStringSlice gets a string slice value from the configuration
func (c *Config) GetStringSlice(key string) []string {
	return c.v.GetStringSlice(key)
}

// GetDuration gets a duration value from the configuration
func (c *Config) GetDuration(key string) (time.Duration, error) {
	return time.ParseDuration(c.GetString(key))
}

// GetViper returns the underlying Viper instance
func (c *Config) GetViper() *viper.Viper {
	return c.v
}
