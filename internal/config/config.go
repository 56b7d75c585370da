package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Defaults for the upstream feed.
const (
	DefaultFeedURL      = "https://nasa-public-data.s3.amazonaws.com/iss-coords/current/ISS_OEM/ISS.OEM_J2K_EPH.xml"
	DefaultFeedS3Bucket = "nasa-public-data"
	DefaultFeedS3Key    = "iss-coords/current/ISS_OEM/ISS.OEM_J2K_EPH.xml"
	DefaultFeedS3Region = "us-east-1"
)

// Config holds all service settings, populated from environment variables and,
// for anything unset, from the optional YAML file named by CONFIG_FILE.
type Config struct {
	HTTPAddr        string        `env:"HTTP_ADDR" validate:"required"`
	LogLevel        string        `env:"LOG_LEVEL" validate:"oneof=debug info warn error"`
	LogFormat       string        `env:"LOG_FORMAT" validate:"oneof=json text"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" validate:"gt=0"`

	// Telemetry feed.
	FeedSource   string        `env:"FEED_SOURCE" validate:"oneof=http s3"`
	FeedURL      string        `env:"FEED_URL" validate:"required_if=FeedSource http"`
	FeedS3Bucket string        `env:"FEED_S3_BUCKET" validate:"required_if=FeedSource s3"`
	FeedS3Key    string        `env:"FEED_S3_KEY" validate:"required_if=FeedSource s3"`
	FeedS3Region string        `env:"FEED_S3_REGION" validate:"required_if=FeedSource s3"`
	FeedTimeout  time.Duration `env:"FEED_TIMEOUT" validate:"gt=0"`
	FeedMaxBytes int64         `env:"FEED_MAX_BYTES" validate:"gt=0"`

	// RefreshInterval of zero disables periodic reloads.
	RefreshInterval time.Duration `env:"REFRESH_INTERVAL" validate:"gte=0"`

	// Query tuning.
	FreshnessWindow    time.Duration `env:"FRESHNESS_WINDOW" validate:"gt=0"`
	LongitudeOffsetDeg float64       `env:"LONGITUDE_OFFSET_DEG" validate:"gte=-360,lte=360"`

	// Mapbox geocoding configuration.
	MapboxToken     string        `env:"MAPBOX_TOKEN" validate:"required_if=MapboxEnabled true"`
	MapboxEnabled   bool          `env:"MAPBOX_ENABLED"`
	MapboxTimeout   time.Duration `env:"MAPBOX_TIMEOUT" validate:"gt=0"`
	MapboxCacheSize int           `env:"MAPBOX_CACHE_SIZE" validate:"gt=0"`
	MapboxRateLimit float64       `env:"MAPBOX_RATE_LIMIT" validate:"gt=0"`

	// Kafka load-event publishing.
	KafkaEnabled bool     `env:"KAFKA_ENABLED"`
	KafkaBrokers []string `env:"KAFKA_BROKERS" validate:"required_if=KafkaEnabled true"`
	KafkaTopic   string   `env:"KAFKA_TOPIC" validate:"required_if=KafkaEnabled true"`
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	file, err := readFile(os.Getenv("CONFIG_FILE"))
	if err != nil {
		return nil, err
	}
	get := func(key, def string) string {
		if v, ok := file[key]; ok {
			def = v
		}
		return sharedcfg.EnvOrDefault(key, def)
	}

	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	p := parser{get: get}
	mapboxToken := get("MAPBOX_TOKEN", "")
	mapboxEnabled := mapboxToken != ""
	if v := get("MAPBOX_ENABLED", ""); v != "" {
		mapboxEnabled = v == "true"
	}

	cfg := &Config{
		HTTPAddr:        get("HTTP_ADDR", ":5000"),
		LogLevel:        strings.ToLower(get("LOG_LEVEL", "info")),
		LogFormat:       strings.ToLower(get("LOG_FORMAT", "json")),
		ShutdownTimeout: shutdownTimeout,

		FeedSource:   strings.ToLower(get("FEED_SOURCE", "http")),
		FeedURL:      get("FEED_URL", DefaultFeedURL),
		FeedS3Bucket: get("FEED_S3_BUCKET", DefaultFeedS3Bucket),
		FeedS3Key:    get("FEED_S3_KEY", DefaultFeedS3Key),
		FeedS3Region: get("FEED_S3_REGION", DefaultFeedS3Region),
		FeedTimeout:  p.duration("FEED_TIMEOUT", "30s"),
		FeedMaxBytes: p.int64("FEED_MAX_BYTES", "52428800"),

		RefreshInterval: p.duration("REFRESH_INTERVAL", "0s"),

		FreshnessWindow:    p.duration("FRESHNESS_WINDOW", "120s"),
		LongitudeOffsetDeg: p.float("LONGITUDE_OFFSET_DEG", "32"),

		MapboxToken:     mapboxToken,
		MapboxEnabled:   mapboxEnabled,
		MapboxTimeout:   p.duration("MAPBOX_TIMEOUT", "5s"),
		MapboxCacheSize: int(p.int64("MAPBOX_CACHE_SIZE", "1000")),
		MapboxRateLimit: p.float("MAPBOX_RATE_LIMIT", "10"),

		KafkaEnabled: get("KAFKA_ENABLED", "false") == "true",
		KafkaBrokers: sharedcfg.ParseBrokers(get("KAFKA_BROKERS", "localhost:9092")),
		KafkaTopic:   get("KAFKA_TOPIC", "iss-telemetry-loads"),
	}
	if p.err != nil {
		return nil, p.err
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("invalid KAFKA_BROKERS (required_if)")
	}
	return cfg, nil
}

// parser converts raw values, keeping the first failure.
type parser struct {
	get func(key, def string) string
	err error
}

func (p *parser) fail(key string) {
	if p.err == nil {
		p.err = fmt.Errorf("invalid %s", key)
	}
}

func (p *parser) duration(key, def string) time.Duration {
	d, err := time.ParseDuration(p.get(key, def))
	if err != nil {
		p.fail(key)
		return 0
	}
	return d
}

func (p *parser) int64(key, def string) int64 {
	n, err := strconv.ParseInt(p.get(key, def), 10, 64)
	if err != nil {
		p.fail(key)
		return 0
	}
	return n
}

func (p *parser) float(key, def string) float64 {
	f, err := strconv.ParseFloat(p.get(key, def), 64)
	if err != nil {
		p.fail(key)
		return 0
	}
	return f
}

// readFile loads a flat YAML mapping of variable name to value.
func readFile(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read CONFIG_FILE: %w", err)
	}
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse CONFIG_FILE: %w", err)
	}
	out := make(map[string]string, len(raw))
	for k, v := range raw {
		switch vv := v.(type) {
		case []any:
			parts := make([]string, len(vv))
			for i, item := range vv {
				parts[i] = fmt.Sprint(item)
			}
			out[k] = strings.Join(parts, ",")
		default:
			out[k] = fmt.Sprint(vv)
		}
	}
	return out, nil
}

var validate = func() func(*Config) error {
	v := validator.New()
	return func(cfg *Config) error {
		err := v.Struct(cfg)
		if err == nil {
			return nil
		}
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		t := reflect.TypeOf(*cfg)
		msgs := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			name := fe.StructField()
			if f, ok := t.FieldByName(name); ok {
				name = f.Tag.Get("env")
			}
			msgs = append(msgs, fmt.Sprintf("invalid %s (%s)", name, fe.Tag()))
		}
		return errors.New(strings.Join(msgs, "; "))
	}
}()
