package generator

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sebastiankruger/building-simulator/internal/core"
)

// syntheticReadings builds n complete readings one minute apart
func syntheticReadings(n int) []core.SensorReading {
	start := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	readings := make([]core.SensorReading, n)
	for i := range readings {
		readings[i] = core.SensorReading{
			Timestamp:   start.Add(time.Duration(i) * time.Minute),
			SensorID:    SensorID(i),
			Zone:        ZoneID(i),
			Temperature: core.SomeFloat(22.0),
			Humidity:    core.SomeFloat(45.0),
			CO2:         core.SomeInt(500),
			LightLevel:  core.SomeInt(300),
		}
	}
	return readings
}

func TestAddAnomaliesCount(t *testing.T) {
	original := syntheticReadings(1000)

	shocked, anomalies, err := New(42).AddAnomalies(original, 0.01)
	require.NoError(t, err)
	require.Len(t, shocked, 1000)
	require.Len(t, anomalies, 10)

	changedRows := 0
	for i := range original {
		tempChanged := original[i].Temperature != shocked[i].Temperature
		co2Changed := original[i].CO2 != shocked[i].CO2
		assert.False(t, tempChanged && co2Changed, "row %d shocked on both channels", i)
		assert.Equal(t, original[i].Humidity, shocked[i].Humidity)
		assert.Equal(t, original[i].LightLevel, shocked[i].LightLevel)
		if tempChanged || co2Changed {
			changedRows++
		}
	}
	assert.Equal(t, 10, changedRows)

	seen := make(map[int]bool)
	for _, a := range anomalies {
		assert.False(t, seen[a.Row], "row %d selected twice", a.Row)
		seen[a.Row] = true

		switch a.Channel {
		case core.ChannelTemperature:
			shock := a.After.Value - a.Before.Value
			assert.Contains(t, []float64{-8, -5, 7, 10}, math.Round(shock))
			assert.Equal(t, a.After, shocked[a.Row].Temperature)
		case core.ChannelCO2:
			ratio := a.After.Value / a.Before.Value
			assert.GreaterOrEqual(t, ratio, 1.99)
			assert.LessOrEqual(t, ratio, 3.0)
			assert.Equal(t, a.After, shocked[a.Row].CO2.Float())
		default:
			t.Fatalf("unexpected channel %q", a.Channel)
		}
	}
}

func TestAddAnomaliesDoesNotModifyInput(t *testing.T) {
	original := syntheticReadings(500)
	snapshot := make([]core.SensorReading, len(original))
	copy(snapshot, original)

	_, _, err := New(3).AddAnomalies(original, 0.1)
	require.NoError(t, err)
	assert.Equal(t, snapshot, original)
}

func TestAddAnomaliesSkipsTemperatureClamp(t *testing.T) {
	readings := syntheticReadings(200)
	for i := range readings {
		readings[i].Temperature = core.SomeFloat(MaxTemperature)
	}

	shocked, anomalies, err := New(11).AddAnomalies(readings, 0.5)
	require.NoError(t, err)

	outOfRange := 0
	for _, a := range anomalies {
		if a.Channel == core.ChannelTemperature && a.After.Value > MaxTemperature {
			outOfRange++
			assert.Greater(t, shocked[a.Row].Temperature.Value, MaxTemperature)
		}
	}
	assert.Greater(t, outOfRange, 0)
}

func TestAddAnomaliesOnMissingValue(t *testing.T) {
	readings := syntheticReadings(10)
	for i := range readings {
		readings[i].Temperature = core.NullFloat64{}
		readings[i].CO2 = core.NullInt{}
	}

	shocked, anomalies, err := New(5).AddAnomalies(readings, 1.0)
	require.NoError(t, err)
	assert.Len(t, anomalies, 10)
	for i := range shocked {
		assert.False(t, shocked[i].Temperature.Valid)
		assert.False(t, shocked[i].CO2.Valid)
	}
}

func TestAddAnomaliesRoundsDown(t *testing.T) {
	_, anomalies, err := New(42).AddAnomalies(syntheticReadings(99), 0.01)
	require.NoError(t, err)
	assert.Empty(t, anomalies)
}

func TestAddMissingValuesIndependentColumns(t *testing.T) {
	original := syntheticReadings(10000)

	degraded, err := New(42).AddMissingValues(original, 0.02)
	require.NoError(t, err)
	require.Len(t, degraded, len(original))

	masks := map[string][]bool{
		"temperature": make([]bool, len(degraded)),
		"humidity":    make([]bool, len(degraded)),
		"co2":         make([]bool, len(degraded)),
		"light_level": make([]bool, len(degraded)),
	}
	for i, r := range degraded {
		masks["temperature"][i] = !r.Temperature.Valid
		masks["humidity"][i] = !r.Humidity.Valid
		masks["co2"][i] = !r.CO2.Valid
		masks["light_level"][i] = !r.LightLevel.Valid
	}

	// binomial(10000, 0.02): mean 200, sd 14
	for column, mask := range masks {
		missing := 0
		for _, m := range mask {
			if m {
				missing++
			}
		}
		assert.InDelta(t, 200, missing, 70, "column %s", column)
	}

	assert.NotEqual(t, masks["temperature"], masks["humidity"])
	assert.NotEqual(t, masks["temperature"], masks["co2"])
	assert.NotEqual(t, masks["co2"], masks["light_level"])

	// untouched fields keep their values
	for i, r := range degraded {
		if r.Temperature.Valid {
			assert.Equal(t, original[i].Temperature, r.Temperature)
		}
		assert.Equal(t, original[i].Timestamp, r.Timestamp)
		assert.Equal(t, original[i].SensorID, r.SensorID)
	}
}

func TestAddMissingValuesEdges(t *testing.T) {
	original := syntheticReadings(100)

	none, err := New(1).AddMissingValues(original, 0)
	require.NoError(t, err)
	assert.Equal(t, original, none)

	all, err := New(1).AddMissingValues(original, 1)
	require.NoError(t, err)
	for _, r := range all {
		assert.False(t, r.Temperature.Valid)
		assert.False(t, r.Humidity.Valid)
		assert.False(t, r.CO2.Valid)
		assert.False(t, r.LightLevel.Valid)
	}

	_, err = New(1).AddMissingValues(original, 2)
	assert.Error(t, err)
}
