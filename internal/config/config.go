package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"

	"github.com/sebastiankruger/building-simulator/internal/core"
	"github.com/sebastiankruger/building-simulator/internal/generator"
)

// Run modes
const (
	ModeGenerate = "generate"
	ModeReplay   = "replay"
)

// Config holds all configuration for the simulator
type Config struct {
	// Core settings
	Mode          string
	SimulatorName string
	OPCUAPort     int
	HealthPort    int
	LogLevel      string

	// Generation settings
	Seed           int64
	StartDate      string
	Days           int
	Frequency      time.Duration
	MissingPercent float64
	AnomalyPercent float64

	// Output settings
	OutputDir  string
	XLSXExport bool

	// Replay settings
	PublishInterval time.Duration
	ReplayLoop      bool

	// Kafka settings
	KafkaBrokers []string
	KafkaTopic   string

	// BMS ingestion endpoint, disabled when empty
	BMSEndpoint string
	BMSPath     string
}

// Profile is a YAML generation profile. Unset fields keep their defaults.
type Profile struct {
	Seed           *int64   `yaml:"seed"`
	StartDate      *string  `yaml:"start_date"`
	Days           *int     `yaml:"days"`
	Frequency      *string  `yaml:"frequency"`
	MissingPercent *float64 `yaml:"missing_percent"`
	AnomalyPercent *float64 `yaml:"anomaly_percent"`
}

// Load reads configuration from a .env file, an optional generation
// profile and environment variables. Environment variables win.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Seed:           generator.DefaultSeed,
		StartDate:      generator.DefaultStartDate,
		Days:           generator.DefaultDays,
		Frequency:      generator.DefaultFrequency,
		MissingPercent: generator.DefaultMissingPercent,
		AnomalyPercent: generator.DefaultAnomalyPercent,
	}

	if path := os.Getenv("GENERATION_PROFILE"); path != "" {
		if err := loadProfile(cfg, path); err != nil {
			return nil, err
		}
	}

	// Core settings
	cfg.Mode = strings.ToLower(getEnvOrDefault("MODE", ModeGenerate))
	cfg.SimulatorName = getEnvOrDefault("SIMULATOR_NAME", "Building-01")
	cfg.OPCUAPort = getEnvAsIntOrDefault("OPCUA_PORT", 4840)
	cfg.HealthPort = getEnvAsIntOrDefault("HEALTH_PORT", 8081)
	cfg.LogLevel = getEnvOrDefault("LOG_LEVEL", "info")

	// Generation settings, malformed values are errors
	var err error
	if cfg.Seed, err = parseEnvInt64("SEED", cfg.Seed); err != nil {
		return nil, err
	}
	cfg.StartDate = getEnvOrDefault("START_DATE", cfg.StartDate)
	if cfg.Days, err = parseEnvInt("DAYS", cfg.Days); err != nil {
		return nil, err
	}
	if cfg.MissingPercent, err = parseEnvFloat("MISSING_PERCENT", cfg.MissingPercent); err != nil {
		return nil, err
	}
	if cfg.AnomalyPercent, err = parseEnvFloat("ANOMALY_PERCENT", cfg.AnomalyPercent); err != nil {
		return nil, err
	}
	if value := os.Getenv("FREQUENCY"); value != "" {
		freq, err := generator.ParseFrequency(value)
		if err != nil {
			return nil, err
		}
		cfg.Frequency = freq
	}

	// Output settings
	cfg.OutputDir = getEnvOrDefault("OUTPUT_DIR", "data")
	cfg.XLSXExport = getEnvAsBoolOrDefault("XLSX_EXPORT", false)

	// Replay settings
	cfg.PublishInterval = getDurationOrDefault("PUBLISH_INTERVAL", 1*time.Second)
	cfg.ReplayLoop = getEnvAsBoolOrDefault("REPLAY_LOOP", true)

	// Kafka settings
	cfg.KafkaBrokers = getEnvAsListOrDefault("KAFKA_BROKERS", nil)
	cfg.KafkaTopic = getEnvOrDefault("KAFKA_TOPIC", "building.readings")

	// BMS settings
	cfg.BMSEndpoint = getEnvOrDefault("BMS_ENDPOINT", "")
	cfg.BMSPath = getEnvOrDefault("BMS_PATH", "/api/v1/readings")

	if cfg.Mode != ModeGenerate && cfg.Mode != ModeReplay {
		return nil, fmt.Errorf("unknown MODE %q: expected %s or %s", cfg.Mode, ModeGenerate, ModeReplay)
	}
	if cfg.PublishInterval <= 0 {
		return nil, fmt.Errorf("PUBLISH_INTERVAL must be positive, got %s", cfg.PublishInterval)
	}

	return cfg, nil
}

// GenerationParams returns the generator parameters of this configuration
func (c *Config) GenerationParams() generator.Params {
	return generator.Params{
		StartDate:      c.StartDate,
		Days:           c.Days,
		Frequency:      c.Frequency,
		MissingPercent: c.MissingPercent,
		AnomalyPercent: c.AnomalyPercent,
	}
}

func loadProfile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read generation profile: %w", err)
	}

	var p Profile
	if err := yaml.UnmarshalStrict(data, &p); err != nil {
		return fmt.Errorf("failed to parse generation profile %s: %w", path, err)
	}

	if p.Seed != nil {
		cfg.Seed = *p.Seed
	}
	if p.StartDate != nil {
		cfg.StartDate = *p.StartDate
	}
	if p.Days != nil {
		cfg.Days = *p.Days
	}
	if p.Frequency != nil {
		freq, err := generator.ParseFrequency(*p.Frequency)
		if err != nil {
			return fmt.Errorf("generation profile %s: %w", path, err)
		}
		cfg.Frequency = freq
	}
	if p.MissingPercent != nil {
		cfg.MissingPercent = *p.MissingPercent
	}
	if p.AnomalyPercent != nil {
		cfg.AnomalyPercent = *p.AnomalyPercent
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func parseEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	intVal, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, invalidEnv(key, value, "expected an integer")
	}
	return intVal, nil
}

func parseEnvInt64(key string, defaultValue int64) (int64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	intVal, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return 0, invalidEnv(key, value, "expected an integer")
	}
	return intVal, nil
}

func parseEnvFloat(key string, defaultValue float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	floatVal, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0, invalidEnv(key, value, "expected a number")
	}
	return floatVal, nil
}

func invalidEnv(key, value, reason string) error {
	return &core.InvalidParameterError{Param: key, Value: value, Reason: reason}
}

func getEnvAsBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsListOrDefault(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
