package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config aggregates runtime configuration used across the service.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Geocoding GeocodingConfig `yaml:"geocoding"`
	Weather   WeatherConfig   `yaml:"weather"`
	Training  TrainingConfig  `yaml:"training"`
	Snapshots SnapshotsConfig `yaml:"snapshots"`
	Defaults  DefaultsConfig  `yaml:"defaults"`
}

// HTTPConfig controls server level behavior.
type HTTPConfig struct {
	Address        string          `yaml:"address"`
	ReadTimeout    time.Duration   `yaml:"readTimeout"`
	WriteTimeout   time.Duration   `yaml:"writeTimeout"`
	ShutdownGrace  time.Duration   `yaml:"shutdownGrace"`
	AllowedOrigins []string        `yaml:"allowedOrigins"`
	RateLimit      RateLimitConfig `yaml:"rateLimit"`
	Retry          RetryConfig     `yaml:"retry"`
}

// RateLimitConfig drives the per-IP request limiting middleware.
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requestsPerMinute"`
	Burst             int  `yaml:"burst"`
}

// RetryConfig configures best-effort retries for idempotent requests.
type RetryConfig struct {
	Enabled     bool          `yaml:"enabled"`
	MaxAttempts int           `yaml:"maxAttempts"`
	BaseBackoff time.Duration `yaml:"baseBackoff"`
	Exclude     []string      `yaml:"exclude"`
}

// GeocodingConfig configures the OpenWeatherMap geocoding collaborator.
type GeocodingConfig struct {
	BaseURL        string             `yaml:"baseUrl"`
	APIKey         string             `yaml:"apiKey"`
	Timeout        time.Duration      `yaml:"timeout"`
	SearchLimit    int                `yaml:"searchLimit"`
	MaxSearchLimit int                `yaml:"maxSearchLimit"`
	MinQueryLength int                `yaml:"minQueryLength"`
	RateLimit      SlidingLimitConfig `yaml:"rateLimit"`
}

// SlidingLimitConfig bounds outbound geocoding calls.
type SlidingLimitConfig struct {
	Window      time.Duration `yaml:"window"`
	MaxRequests int           `yaml:"maxRequests"`
}

// WeatherConfig configures the Open-Meteo collaborators.
type WeatherConfig struct {
	ForecastURL      string        `yaml:"forecastUrl"`
	ArchiveURL       string        `yaml:"archiveUrl"`
	Timeout          time.Duration `yaml:"timeout"`
	ForecastDays     int           `yaml:"forecastDays"`
	DisplayDays      int           `yaml:"displayDays"`
	HistoryDays      int           `yaml:"historyDays"`
	CorrectionFactor float64       `yaml:"correctionFactor"`
	ForecastCacheTTL time.Duration `yaml:"forecastCacheTtl"`
	ArchiveCacheTTL  time.Duration `yaml:"archiveCacheTtl"`
}

// TrainingConfig shapes the sun-hours regressor.
type TrainingConfig struct {
	Epochs          int           `yaml:"epochs"`
	BatchSize       int           `yaml:"batchSize"`
	LearningRate    float64       `yaml:"learningRate"`
	ValidationSplit float64       `yaml:"validationSplit"`
	Dropout         float64       `yaml:"dropout"`
	HiddenUnits     []int         `yaml:"hiddenUnits"`
	Seed            uint64        `yaml:"seed"`
	ModelTTL        time.Duration `yaml:"modelTtl"`
}

// SnapshotsConfig controls where submission snapshots live.
type SnapshotsConfig struct {
	TTL    time.Duration `yaml:"ttl"`
	Valkey ValkeyConfig  `yaml:"valkey"`
}

// ValkeyConfig contains connection information for the shared snapshot store.
type ValkeyConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Addr     string `yaml:"addr"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	TLS      bool   `yaml:"tls"`
	Prefix   string `yaml:"prefix"`
}

// DefaultsConfig holds fallbacks for user-facing values.
type DefaultsConfig struct {
	Language    string  `yaml:"language"`
	Temperature float64 `yaml:"temperature"`
	Cloudiness  float64 `yaml:"cloudiness"`
}

// Load reads configuration from a YAML file and environment variables.
func Load() (*Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat("configs/config.yaml"); err == nil {
		if err := hydrateFromFile(cfg, "configs/config.yaml"); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func hydrateFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	setString("HTTP_ADDRESS", &cfg.HTTP.Address)
	setDuration("HTTP_SHUTDOWN_GRACE", &cfg.HTTP.ShutdownGrace)
	if v := os.Getenv("HTTP_ALLOWED_ORIGINS"); v != "" {
		cfg.HTTP.AllowedOrigins = splitList(v)
	}
	setBool("HTTP_RATE_LIMIT_ENABLED", &cfg.HTTP.RateLimit.Enabled)
	setInt("HTTP_RATE_LIMIT_RPM", &cfg.HTTP.RateLimit.RequestsPerMinute)
	setInt("HTTP_RATE_LIMIT_BURST", &cfg.HTTP.RateLimit.Burst)
	setBool("HTTP_RETRY_ENABLED", &cfg.HTTP.Retry.Enabled)
	setInt("HTTP_RETRY_MAX_ATTEMPTS", &cfg.HTTP.Retry.MaxAttempts)
	setDuration("HTTP_RETRY_BASE_BACKOFF", &cfg.HTTP.Retry.BaseBackoff)

	setString("GEOCODING_BASE_URL", &cfg.Geocoding.BaseURL)
	setString("OPENWEATHER_API_KEY", &cfg.Geocoding.APIKey)
	setInt("GEOCODING_SEARCH_LIMIT", &cfg.Geocoding.SearchLimit)
	setDuration("GEOCODING_RATE_WINDOW", &cfg.Geocoding.RateLimit.Window)
	setInt("GEOCODING_RATE_MAX", &cfg.Geocoding.RateLimit.MaxRequests)

	setString("WEATHER_FORECAST_URL", &cfg.Weather.ForecastURL)
	setString("WEATHER_ARCHIVE_URL", &cfg.Weather.ArchiveURL)
	setInt("WEATHER_HISTORY_DAYS", &cfg.Weather.HistoryDays)
	setFloat("WEATHER_CORRECTION_FACTOR", &cfg.Weather.CorrectionFactor)

	setInt("TRAINING_EPOCHS", &cfg.Training.Epochs)
	setInt("TRAINING_BATCH_SIZE", &cfg.Training.BatchSize)
	setFloat("TRAINING_LEARNING_RATE", &cfg.Training.LearningRate)
	if v := os.Getenv("TRAINING_SEED"); v != "" {
		if parsed, err := strconv.ParseUint(v, 10, 64); err == nil {
			cfg.Training.Seed = parsed
		}
	}

	setDuration("SNAPSHOT_TTL", &cfg.Snapshots.TTL)
	setBool("VALKEY_ENABLED", &cfg.Snapshots.Valkey.Enabled)
	setString("VALKEY_ADDR", &cfg.Snapshots.Valkey.Addr)
	setString("VALKEY_USERNAME", &cfg.Snapshots.Valkey.Username)
	setString("VALKEY_PASSWORD", &cfg.Snapshots.Valkey.Password)
	setBool("VALKEY_TLS", &cfg.Snapshots.Valkey.TLS)

	setString("DEFAULT_LANGUAGE", &cfg.Defaults.Language)
}

func setString(key string, dst *string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setBool(key string, dst *bool) {
	if v := os.Getenv(key); v != "" {
		*dst = v == "1" || strings.EqualFold(v, "true")
	}
}

func setInt(key string, dst *int) {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			*dst = parsed
		}
	}
}

func setFloat(key string, dst *float64) {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = parsed
		}
	}
}

func setDuration(key string, dst *time.Duration) {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			*dst = parsed
		}
	}
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if clean := strings.TrimSpace(p); clean != "" {
			out = append(out, clean)
		}
	}
	return out
}

func defaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Address:       ":8080",
			ReadTimeout:   5 * time.Second,
			WriteTimeout:  2 * time.Minute,
			ShutdownGrace: 10 * time.Second,
			RateLimit: RateLimitConfig{
				Enabled:           true,
				RequestsPerMinute: 60,
				Burst:             20,
			},
			Retry: RetryConfig{
				Enabled:     true,
				MaxAttempts: 3,
				BaseBackoff: 150 * time.Millisecond,
				Exclude: []string{
					"/api/v1/ai/train/stream",
				},
			},
		},
		Geocoding: GeocodingConfig{
			BaseURL:        "https://api.openweathermap.org/geo/1.0",
			Timeout:        10 * time.Second,
			SearchLimit:    5,
			MaxSearchLimit: 10,
			MinQueryLength: 2,
			RateLimit: SlidingLimitConfig{
				Window:      time.Minute,
				MaxRequests: 10,
			},
		},
		Weather: WeatherConfig{
			ForecastURL:      "https://api.open-meteo.com/v1/forecast",
			ArchiveURL:       "https://archive-api.open-meteo.com/v1/archive",
			Timeout:          15 * time.Second,
			ForecastDays:     7,
			DisplayDays:      5,
			HistoryDays:      180,
			CorrectionFactor: 0.6,
			ForecastCacheTTL: 30 * time.Minute,
			ArchiveCacheTTL:  6 * time.Hour,
		},
		Training: TrainingConfig{
			Epochs:          100,
			BatchSize:       32,
			LearningRate:    0.01,
			ValidationSplit: 0.2,
			Dropout:         0.2,
			HiddenUnits:     []int{16, 8},
			ModelTTL:        30 * time.Minute,
		},
		Snapshots: SnapshotsConfig{
			TTL: time.Hour,
			Valkey: ValkeyConfig{
				Prefix: "solarcast",
			},
		},
		Defaults: DefaultsConfig{
			Language:    "en",
			Temperature: 10,
			Cloudiness:  50,
		},
	}
}

// Validate ensures the configuration is safe to use.
func (c *Config) Validate() error {
	if c.HTTP.Address == "" {
		return errors.New("http.address cannot be empty")
	}
	if c.HTTP.RateLimit.Enabled {
		if c.HTTP.RateLimit.RequestsPerMinute <= 0 {
			return errors.New("http.rateLimit.requestsPerMinute must be positive")
		}
		if c.HTTP.RateLimit.Burst <= 0 {
			return errors.New("http.rateLimit.burst must be positive")
		}
	}
	if c.HTTP.Retry.Enabled {
		if c.HTTP.Retry.MaxAttempts <= 0 {
			return errors.New("http.retry.maxAttempts must be positive")
		}
		if c.HTTP.Retry.BaseBackoff <= 0 {
			return errors.New("http.retry.baseBackoff must be positive")
		}
	}
	if c.Geocoding.SearchLimit <= 0 {
		return errors.New("geocoding.searchLimit must be positive")
	}
	if c.Geocoding.MaxSearchLimit < c.Geocoding.SearchLimit {
		return errors.New("geocoding.maxSearchLimit cannot be below searchLimit")
	}
	if c.Geocoding.RateLimit.Window <= 0 || c.Geocoding.RateLimit.MaxRequests <= 0 {
		return errors.New("geocoding.rateLimit window and maxRequests must be positive")
	}
	if c.Weather.ForecastDays <= 0 || c.Weather.DisplayDays <= 0 {
		return errors.New("weather.forecastDays and weather.displayDays must be positive")
	}
	if c.Weather.DisplayDays > c.Weather.ForecastDays {
		return errors.New("weather.displayDays cannot exceed weather.forecastDays")
	}
	if c.Weather.HistoryDays <= 0 {
		return errors.New("weather.historyDays must be positive")
	}
	if c.Weather.CorrectionFactor <= 0 || c.Weather.CorrectionFactor > 1 {
		return errors.New("weather.correctionFactor must be in (0, 1]")
	}
	if c.Training.Epochs <= 0 || c.Training.BatchSize <= 0 {
		return errors.New("training.epochs and training.batchSize must be positive")
	}
	if c.Training.LearningRate <= 0 {
		return errors.New("training.learningRate must be positive")
	}
	if c.Training.ValidationSplit < 0 || c.Training.ValidationSplit >= 1 {
		return errors.New("training.validationSplit must be in [0, 1)")
	}
	if c.Training.Dropout < 0 || c.Training.Dropout >= 1 {
		return errors.New("training.dropout must be in [0, 1)")
	}
	for _, units := range c.Training.HiddenUnits {
		if units <= 0 {
			return errors.New("training.hiddenUnits must be positive")
		}
	}
	if c.Snapshots.TTL < 0 {
		return errors.New("snapshots.ttl cannot be negative")
	}
	if c.Snapshots.Valkey.Enabled && strings.TrimSpace(c.Snapshots.Valkey.Addr) == "" {
		return errors.New("snapshots.valkey.addr cannot be empty when valkey is enabled")
	}
	if strings.TrimSpace(c.Defaults.Language) == "" {
		return errors.New("defaults.language cannot be empty")
	}
	return nil
}
