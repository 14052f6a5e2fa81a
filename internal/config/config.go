package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const maxRowsCeiling = 1_000_000

// Config holds all service settings, populated from environment variables.
type Config struct {
	TripsCSV        string
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Dataset bounds.
	MaxRows int

	// Hotspot detection parameters.
	HotspotEps       float64
	HotspotMinPoints int
	HotspotMetric    string // "euclidean" (degrees) or "haversine" (meters)

	PDFRowLimit int

	// Optional snapshot publishing.
	KafkaBrokers       []string
	KafkaSnapshotTopic string
	KafkaEnabled       bool
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	maxRows, err := parseInt("MAX_ROWS", 150_000)
	if err != nil {
		return nil, err
	}
	if maxRows < 1 || maxRows > maxRowsCeiling {
		return nil, fmt.Errorf("MAX_ROWS must be between 1 and %d", maxRowsCeiling)
	}

	eps, err := parseFloat("HOTSPOT_EPS", 0.003)
	if err != nil {
		return nil, err
	}
	if eps <= 0 {
		return nil, errors.New("HOTSPOT_EPS must be positive")
	}

	minPoints, err := parseInt("HOTSPOT_MIN_POINTS", 8)
	if err != nil {
		return nil, err
	}
	if minPoints < 1 {
		return nil, errors.New("HOTSPOT_MIN_POINTS must be at least 1")
	}

	metric := envOrDefault("HOTSPOT_METRIC", "euclidean")
	if metric != "euclidean" && metric != "haversine" {
		return nil, errors.New("HOTSPOT_METRIC must be 'euclidean' or 'haversine'")
	}

	pdfRowLimit, err := parseInt("PDF_ROW_LIMIT", 100)
	if err != nil {
		return nil, err
	}
	if pdfRowLimit < 1 {
		return nil, errors.New("PDF_ROW_LIMIT must be at least 1")
	}

	brokers := parseBrokers(os.Getenv("KAFKA_BROKERS"))
	kafkaEnabled := len(brokers) > 0
	if v := os.Getenv("KAFKA_ENABLED"); v != "" {
		kafkaEnabled = v == "true"
	}

	cfg := &Config{
		TripsCSV:        envOrDefault("TRIPS_CSV", "nyc_taxi_with_coords.csv"),
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		MaxRows: maxRows,

		HotspotEps:       eps,
		HotspotMinPoints: minPoints,
		HotspotMetric:    metric,

		PDFRowLimit: pdfRowLimit,

		KafkaBrokers:       brokers,
		KafkaSnapshotTopic: envOrDefault("KAFKA_SNAPSHOT_TOPIC", "taxi-hotspot-snapshots"),
		KafkaEnabled:       kafkaEnabled,
	}

	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is not set")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseDuration(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(key, fallback))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parseInt(key string, fallback int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return n, nil
}

func parseFloat(key string, fallback float64) (float64, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return v, nil
}

func parseBrokers(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	brokers := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			brokers = append(brokers, p)
		}
	}
	return brokers
}
