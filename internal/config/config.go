package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"gopkg.in/yaml.v3"
)

// Config holds all service settings, populated from an optional YAML file
// (CONFIG_PATH) overridden by environment variables.
type Config struct {
	// Remote project source.
	ProjectsBaseURL string
	ProjectsTimeout time.Duration

	// SynthesisSeed seeds placeholder coordinates. Nil means "seed from the clock".
	SynthesisSeed *uint64

	HTTPAddr        string
	ReloadTimeout   time.Duration
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Mapbox geocoding configuration.
	MapboxToken     string
	MapboxEnabled   bool
	MapboxTimeout   time.Duration
	MapboxCacheSize int
	MapboxCountry   string

	// Kafka snapshot sink.
	KafkaEnabled       bool
	KafkaBrokers       []string
	KafkaSnapshotTopic string
}

// fileConfig mirrors the YAML layout. Secrets (MAPBOX_TOKEN) are env-only.
type fileConfig struct {
	Projects struct {
		BaseURL string `yaml:"base_url"`
		Timeout string `yaml:"timeout"`
	} `yaml:"projects"`
	Synthesis struct {
		Seed string `yaml:"seed"`
	} `yaml:"synthesis"`
	HTTP struct {
		Addr          string `yaml:"addr"`
		ReloadTimeout string `yaml:"reload_timeout"`
	} `yaml:"http"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
	Mapbox struct {
		Enabled   string `yaml:"enabled"`
		Timeout   string `yaml:"timeout"`
		CacheSize string `yaml:"cache_size"`
		Country   string `yaml:"country"`
	} `yaml:"mapbox"`
	Kafka struct {
		Enabled       string   `yaml:"enabled"`
		Brokers       []string `yaml:"brokers"`
		SnapshotTopic string   `yaml:"snapshot_topic"`
	} `yaml:"kafka"`
}

// Load reads configuration from the optional YAML file and environment
// variables, applying defaults where unset.
func Load() (*Config, error) {
	var fc fileConfig
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := loadFromFile(path, &fc); err != nil {
			return nil, err
		}
	}

	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	projectsTimeout, err := parsePositiveDuration("PROJECTS_TIMEOUT", or(fc.Projects.Timeout, "5s"))
	if err != nil {
		return nil, err
	}
	reloadTimeout, err := parsePositiveDuration("RELOAD_TIMEOUT", or(fc.HTTP.ReloadTimeout, "10s"))
	if err != nil {
		return nil, err
	}
	mapboxTimeout, err := parsePositiveDuration("MAPBOX_TIMEOUT", or(fc.Mapbox.Timeout, "5s"))
	if err != nil {
		return nil, err
	}

	seed, err := parseSeed(sharedcfg.EnvOrDefault("SYNTHESIS_SEED", fc.Synthesis.Seed))
	if err != nil {
		return nil, err
	}

	mapboxToken := os.Getenv("MAPBOX_TOKEN")
	mapboxEnabled := mapboxToken != ""
	if v := sharedcfg.EnvOrDefault("MAPBOX_ENABLED", fc.Mapbox.Enabled); v != "" {
		mapboxEnabled = v == "true"
	}

	brokers := strings.Join(fc.Kafka.Brokers, ",")

	cfg := &Config{
		ProjectsBaseURL: strings.TrimRight(sharedcfg.EnvOrDefault("PROJECTS_BASE_URL", or(fc.Projects.BaseURL, "http://localhost:3000/api")), "/"),
		ProjectsTimeout: projectsTimeout,
		SynthesisSeed:   seed,
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", or(fc.HTTP.Addr, ":8080")),
		ReloadTimeout:   reloadTimeout,
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", or(fc.Log.Level, "info")),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", or(fc.Log.Format, "json")),
		ShutdownTimeout: shutdownTimeout,

		MapboxToken:     mapboxToken,
		MapboxEnabled:   mapboxEnabled,
		MapboxTimeout:   mapboxTimeout,
		MapboxCacheSize: parseMapboxCacheSize(fc.Mapbox.CacheSize),
		MapboxCountry:   sharedcfg.EnvOrDefault("MAPBOX_COUNTRY", or(fc.Mapbox.Country, "pt")),

		KafkaEnabled:       sharedcfg.EnvOrDefault("KAFKA_ENABLED", or(fc.Kafka.Enabled, "false")) == "true",
		KafkaBrokers:       sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", or(brokers, "localhost:9092"))),
		KafkaSnapshotTopic: sharedcfg.EnvOrDefault("KAFKA_SNAPSHOT_TOPIC", or(fc.Kafka.SnapshotTopic, "compliance-dashboard")),
	}

	if err := validateBaseURL(cfg.ProjectsBaseURL); err != nil {
		return nil, err
	}
	if cfg.MapboxEnabled && cfg.MapboxToken == "" {
		return nil, errors.New("MAPBOX_ENABLED is true but MAPBOX_TOKEN is not set")
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS is required when KAFKA_ENABLED is true")
	}
	if cfg.KafkaEnabled && cfg.KafkaSnapshotTopic == "" {
		return nil, errors.New("KAFKA_SNAPSHOT_TOPIC is required when KAFKA_ENABLED is true")
	}

	return cfg, nil
}

func loadFromFile(path string, fc *fileConfig) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, fc); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func parsePositiveDuration(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, fallback))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parseSeed(s string) (*uint64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return nil, errors.New("invalid SYNTHESIS_SEED")
	}
	return &v, nil
}

func validateBaseURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid PROJECTS_BASE_URL %q", raw)
	}
	return nil
}

func parseMapboxCacheSize(fromFile string) int {
	if s := sharedcfg.EnvOrDefault("MAPBOX_CACHE_SIZE", fromFile); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return 1000
}

func or(v, fallback string) string {
	if v != "" {
		return v
	}
	return fallback
}
