package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Local artifact storage root; stations/, streamflows/ and catchments/
	// are created underneath it.
	DataDir string

	// Upstream service endpoints.
	NWISSiteURL     string
	NWISDailyURL    string
	NLDIBaseURL     string
	UpstreamTimeout time.Duration

	// NWIS asks automated clients to stay under a handful of requests per
	// second; the limiter is shared by the site and daily-value clients.
	RequestsPerSecond float64

	BasinCacheSize int

	// Kafka progress audit sink (feature-flagged via KAFKA_ENABLED).
	KafkaEnabled bool
	KafkaBrokers []string
	KafkaTopic   string
}

// Load reads configuration from the environment, applying defaults where
// unset. A .env file in the working directory is loaded first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	upstreamTimeout, err := parseDuration("UPSTREAM_TIMEOUT", "60s")
	if err != nil {
		return nil, err
	}

	rps, err := parseRate()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		DataDir: envOrDefault("DATA_DIR", "data"),

		NWISSiteURL:     envOrDefault("NWIS_SITE_URL", "https://waterservices.usgs.gov/nwis/site/"),
		NWISDailyURL:    envOrDefault("NWIS_DAILY_URL", "https://waterservices.usgs.gov/nwis/dv/"),
		NLDIBaseURL:     envOrDefault("NLDI_BASE_URL", "https://api.water.usgs.gov/nldi"),
		UpstreamTimeout: upstreamTimeout,

		RequestsPerSecond: rps,
		BasinCacheSize:    parseBasinCacheSize(),

		KafkaEnabled: os.Getenv("KAFKA_ENABLED") == "true",
		KafkaBrokers: parseBrokers(envOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaTopic:   envOrDefault("KAFKA_TOPIC", "flowdata-progress"),
	}

	if cfg.DataDir == "" {
		return nil, errors.New("DATA_DIR must not be empty")
	}
	if cfg.NWISSiteURL == "" || cfg.NWISDailyURL == "" || cfg.NLDIBaseURL == "" {
		return nil, errors.New("upstream service URLs must not be empty")
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is not set")
	}

	return cfg, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, errors.New("invalid " + key)
	}
	return d, nil
}

func parseRate() (float64, error) {
	s := envOrDefault("NWIS_RATE_LIMIT", "5")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v <= 0 {
		return 0, errors.New("invalid NWIS_RATE_LIMIT")
	}
	return v, nil
}

func parseBasinCacheSize() int {
	if s := os.Getenv("BASIN_CACHE_SIZE"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return 1000
}

func parseBrokers(s string) []string {
	parts := strings.Split(s, ",")
	brokers := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			brokers = append(brokers, p)
		}
	}
	return brokers
}
