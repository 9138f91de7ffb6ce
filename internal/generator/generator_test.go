package generator

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sebastiankruger/building-simulator/internal/core"
)

func shortParams() Params {
	return Params{
		StartDate:      "2024-01-01",
		Days:           2,
		Frequency:      2 * time.Minute,
		MissingPercent: DefaultMissingPercent,
		AnomalyPercent: DefaultAnomalyPercent,
	}
}

func TestGenerateAllIsDeterministic(t *testing.T) {
	first, err := New(42).GenerateAll(shortParams())
	require.NoError(t, err)
	second, err := New(42).GenerateAll(shortParams())
	require.NoError(t, err)

	assert.Equal(t, first.Sensors, second.Sensors)
	assert.Equal(t, first.Energy, second.Energy)
	assert.Equal(t, first.Equipment, second.Equipment)
	assert.Equal(t, first.Anomalies, second.Anomalies)
}

func TestGenerateAllDiffersBySeed(t *testing.T) {
	first, err := New(1).GenerateAll(shortParams())
	require.NoError(t, err)
	second, err := New(2).GenerateAll(shortParams())
	require.NoError(t, err)

	assert.NotEqual(t, first.Sensors, second.Sensors)
}

func TestRandomSourcesAreIndependent(t *testing.T) {
	g := New(42)

	same := 0
	for i := 0; i < 1000; i++ {
		if g.uniform.Float64() == g.choice.Float64() {
			same++
		}
	}
	assert.Zero(t, same)
}

func TestGenerateAllTableSizes(t *testing.T) {
	ds, err := New(42).GenerateAll(shortParams())
	require.NoError(t, err)

	assert.Len(t, ds.Sensors, 2*720)
	assert.Len(t, ds.Energy, 2*48)
	// 1-minute buckets from the first to the last reading
	assert.Len(t, ds.Equipment, 2*1440-1)
	rows := len(ds.Sensors)
	assert.Len(t, ds.Anomalies, int(float64(rows)*DefaultAnomalyPercent))
}

func TestGenerateAllRejectsParameters(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(p *Params)
		param  string
	}{
		{"ZeroDays", func(p *Params) { p.Days = 0 }, "days"},
		{"NegativeDays", func(p *Params) { p.Days = -3 }, "days"},
		{"ZeroFrequency", func(p *Params) { p.Frequency = 0 }, "frequency"},
		{"NegativeFrequency", func(p *Params) { p.Frequency = -time.Minute }, "frequency"},
		{"SubSecondFrequency", func(p *Params) { p.Frequency = 500 * time.Millisecond }, "frequency"},
		{"BadStartDate", func(p *Params) { p.StartDate = "first of january" }, "start_date"},
		{"MissingAboveOne", func(p *Params) { p.MissingPercent = 1.5 }, "missing_percent"},
		{"AnomalyNegative", func(p *Params) { p.AnomalyPercent = -0.1 }, "anomaly_percent"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p := shortParams()
			tc.mutate(&p)

			ds, err := New(42).GenerateAll(p)
			assert.Nil(t, ds)

			var paramErr *core.InvalidParameterError
			require.True(t, errors.As(err, &paramErr), "expected InvalidParameterError, got %v", err)
			assert.Equal(t, tc.param, paramErr.Param)
		})
	}
}

func TestParseStartDate(t *testing.T) {
	ts, err := ParseStartDate("2024-03-15")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), ts)

	ts, err = ParseStartDate("2024-03-15T06:30:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 15, 6, 30, 0, 0, time.UTC), ts)

	_, err = ParseStartDate("15/03/2024")
	assert.Error(t, err)
}

func TestParseFrequency(t *testing.T) {
	testCases := []struct {
		input    string
		expected time.Duration
		wantErr  bool
	}{
		{input: "2m", expected: 2 * time.Minute},
		{input: "30s", expected: 30 * time.Second},
		{input: "2T", expected: 2 * time.Minute},
		{input: "30min", expected: 30 * time.Minute},
		{input: "1H", expected: time.Hour},
		{input: "T", expected: time.Minute},
		{input: "0m", wantErr: true},
		{input: "500ms", wantErr: true},
		{input: "1.5s", wantErr: true},
		{input: "-5m", wantErr: true},
		{input: "0T", wantErr: true},
		{input: "fortnightly", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			d, err := ParseFrequency(tc.input)
			if tc.wantErr {
				var paramErr *core.InvalidParameterError
				assert.True(t, errors.As(err, &paramErr))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, d)
		})
	}
}

func TestSeasonalPattern(t *testing.T) {
	annual := func(ts time.Time) float64 {
		return 0.3 * math.Sin(2*math.Pi*float64(ts.YearDay()-80)/365)
	}

	// Monday midnight: no daily or weekly component
	monday := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.InDelta(t, 22.0+annual(monday), SeasonalPattern(22.0, monday, 4), 1e-9)

	// Saturday 06:00: daily peak plus weekend offset
	saturday := time.Date(2024, 1, 6, 6, 0, 0, 0, time.UTC)
	assert.InDelta(t, 22.0+4+0.5+annual(saturday), SeasonalPattern(22.0, saturday, 4), 1e-9)

	// Wednesday 18:00: daily trough
	wednesday := time.Date(2024, 6, 5, 18, 0, 0, 0, time.UTC)
	assert.InDelta(t, 50.0-15+annual(wednesday), SeasonalPattern(50.0, wednesday, 15), 1e-9)

	// day 80 has no annual component
	equinox := time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC)
	require.Equal(t, 80, equinox.YearDay())
	assert.InDelta(t, 10.0, SeasonalPattern(10.0, equinox, 1), 1e-9)
}
