package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sebastiankruger/building-simulator/internal/core"
	"github.com/sebastiankruger/building-simulator/internal/generator"
)

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ModeGenerate, cfg.Mode)
	assert.Equal(t, int64(generator.DefaultSeed), cfg.Seed)
	assert.Equal(t, generator.DefaultParams(), cfg.GenerationParams())
	assert.Equal(t, "data", cfg.OutputDir)
	assert.Equal(t, 4840, cfg.OPCUAPort)
	assert.Equal(t, time.Second, cfg.PublishInterval)
	assert.True(t, cfg.ReplayLoop)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.Empty(t, cfg.BMSEndpoint)
	assert.Equal(t, "/api/v1/readings", cfg.BMSPath)
	assert.False(t, cfg.XLSXExport)
}

func TestLoadFromEnvironment(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("MODE", "Replay")
	t.Setenv("SEED", "7")
	t.Setenv("START_DATE", "2024-06-01")
	t.Setenv("DAYS", "3")
	t.Setenv("FREQUENCY", "5T")
	t.Setenv("MISSING_PERCENT", "0.1")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092")
	t.Setenv("XLSX_EXPORT", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ModeReplay, cfg.Mode)
	assert.Equal(t, int64(7), cfg.Seed)
	assert.Equal(t, "2024-06-01", cfg.StartDate)
	assert.Equal(t, 3, cfg.Days)
	assert.Equal(t, 5*time.Minute, cfg.Frequency)
	assert.Equal(t, 0.1, cfg.MissingPercent)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
	assert.True(t, cfg.XLSXExport)
}

func TestLoadProfile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	profile := filepath.Join(dir, "profile.yaml")
	require.NoError(t, os.WriteFile(profile, []byte(`
seed: 99
start_date: "2024-03-01"
days: 14
frequency: 10min
anomaly_percent: 0.05
`), 0644))
	t.Setenv("GENERATION_PROFILE", profile)
	t.Setenv("DAYS", "2")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, int64(99), cfg.Seed)
	assert.Equal(t, "2024-03-01", cfg.StartDate)
	assert.Equal(t, 2, cfg.Days, "environment overrides the profile")
	assert.Equal(t, 10*time.Minute, cfg.Frequency)
	assert.Equal(t, 0.05, cfg.AnomalyPercent)
	assert.Equal(t, generator.DefaultMissingPercent, cfg.MissingPercent)
}

func TestLoadErrors(t *testing.T) {
	testCases := []struct {
		name  string
		env   map[string]string
		setup func(t *testing.T, dir string) string
	}{
		{name: "UnknownMode", env: map[string]string{"MODE": "stream"}},
		{name: "BadFrequency", env: map[string]string{"FREQUENCY": "often"}},
		{name: "SubSecondFrequency", env: map[string]string{"FREQUENCY": "500ms"}},
		{name: "BadDays", env: map[string]string{"DAYS": "abc"}},
		{name: "BadSeed", env: map[string]string{"SEED": "x"}},
		{name: "BadMissingPercent", env: map[string]string{"MISSING_PERCENT": "two percent"}},
		{name: "BadAnomalyPercent", env: map[string]string{"ANOMALY_PERCENT": "1%"}},
		{name: "MissingProfile", env: map[string]string{"GENERATION_PROFILE": "/does/not/exist.yaml"}},
		{name: "UnknownProfileField", setup: func(t *testing.T, dir string) string {
			path := filepath.Join(dir, "bad.yaml")
			require.NoError(t, os.WriteFile(path, []byte("sensors: 12\n"), 0644))
			return path
		}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			chdir(t, dir)
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			if tc.setup != nil {
				t.Setenv("GENERATION_PROFILE", tc.setup(t, dir))
			}

			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoadReportsMalformedGenerationKey(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("DAYS", "abc")

	_, err := Load()
	var paramErr *core.InvalidParameterError
	require.True(t, errors.As(err, &paramErr))
	assert.Equal(t, "DAYS", paramErr.Param)
}

func TestDotEnvFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("SIMULATOR_NAME=Tower-B\nHEALTH_PORT=9090\n"), 0644))
	t.Cleanup(func() {
		os.Unsetenv("SIMULATOR_NAME")
		os.Unsetenv("HEALTH_PORT")
	})

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "Tower-B", cfg.SimulatorName)
	assert.Equal(t, 9090, cfg.HealthPort)
}

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains: it changes
// the working directory and restores the previous one when the test ends.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatalf("restore working directory: %v", err)
		}
	})
}
