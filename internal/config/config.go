package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/joho/godotenv"
)

const (
	defaultHTTPAddr       = ":8080"
	defaultKafkaBroker    = "localhost:9092"
	defaultKafkaTopic     = "epw-derived-rows"
	defaultMaxUploadBytes = 32 << 20
	maxBatchSize          = 10000
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Upload and decode settings.
	MaxUploadBytes int64
	AllowGaps      bool

	// Loaded-file store settings.
	CacheSize int
	CacheTTL  time.Duration

	// Kafka publishing of derived rows. The serve command registers the
	// publish route only when KafkaEnabled is set.
	KafkaEnabled bool
	KafkaBrokers []string
	KafkaTopic   string
	BatchSize    int

	// Mapbox geocoding configuration.
	MapboxToken   string
	MapboxEnabled bool
	MapboxTimeout time.Duration
}

// Load reads configuration from environment variables, applying defaults
// where unset. A .env file in the working directory is loaded first when
// present; variables already set in the environment win. Every invalid
// setting is reported, not just the first.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var errs *multierror.Error
	p := parser{errs: &errs}

	mapboxToken := os.Getenv("MAPBOX_TOKEN")
	cfg := &Config{
		HTTPAddr:        EnvOrDefault("HTTP_ADDR", defaultHTTPAddr),
		LogLevel:        EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: p.duration("SHUTDOWN_TIMEOUT", 10*time.Second),

		MaxUploadBytes: int64(p.positiveInt("MAX_UPLOAD_BYTES", defaultMaxUploadBytes, 0)),
		AllowGaps:      p.flag("ALLOW_GAPS", false),

		CacheSize: p.positiveInt("CACHE_SIZE", 16, 0),
		CacheTTL:  p.duration("CACHE_TTL", time.Hour),

		KafkaEnabled: p.flag("KAFKA_ENABLED", false),
		KafkaBrokers: ParseBrokers(EnvOrDefault("KAFKA_BROKERS", defaultKafkaBroker)),
		KafkaTopic:   EnvOrDefault("KAFKA_TOPIC", defaultKafkaTopic),
		BatchSize:    p.positiveInt("BATCH_SIZE", 500, maxBatchSize),

		MapboxToken:   mapboxToken,
		MapboxEnabled: p.flag("MAPBOX_ENABLED", mapboxToken != ""),
		MapboxTimeout: p.duration("MAPBOX_TIMEOUT", 5*time.Second),
	}

	if len(cfg.KafkaBrokers) == 0 {
		errs = multierror.Append(errs, errors.New("KAFKA_BROKERS is required"))
	}
	if cfg.KafkaTopic == "" {
		errs = multierror.Append(errs, errors.New("KAFKA_TOPIC is required"))
	}
	if cfg.MapboxEnabled && cfg.MapboxToken == "" {
		errs = multierror.Append(errs, errors.New("MAPBOX_ENABLED is true but MAPBOX_TOKEN is not set"))
	}

	if err := errs.ErrorOrNil(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// EnvOrDefault returns the value of key, or fallback when it is unset or empty.
func EnvOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// ParseBrokers splits a comma-separated broker list, dropping empty entries.
func ParseBrokers(s string) []string {
	var out []string
	for _, b := range strings.Split(s, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}

// parser reads typed variables and collects their errors.
type parser struct {
	errs **multierror.Error
}

func (p parser) fail(key, raw, want string) {
	*p.errs = multierror.Append(*p.errs, fmt.Errorf("invalid %s %q: %s", key, raw, want))
}

func (p parser) duration(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		p.fail(key, raw, "must be a positive duration")
		return fallback
	}
	return d
}

// positiveInt parses key as an integer >= 1 and, when limit is positive,
// <= limit.
func (p parser) positiveInt(key string, fallback, limit int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || (limit > 0 && n > limit) {
		want := "must be a positive integer"
		if limit > 0 {
			want = fmt.Sprintf("must be between 1 and %d", limit)
		}
		p.fail(key, raw, want)
		return fallback
	}
	return n
}

func (p parser) flag(key string, fallback bool) bool {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		p.fail(key, raw, "must be true or false")
		return fallback
	}
	return b
}
