package generator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sebastiankruger/building-simulator/internal/core"
)

func TestTemperatureEffect(t *testing.T) {
	testCases := []struct {
		name     string
		temp     core.NullFloat64
		expected float64
	}{
		{"Missing", core.NullFloat64{}, 0},
		{"CoolingBoundary", core.SomeFloat(24.0), 0},
		{"HeatingBoundary", core.SomeFloat(20.0), 0},
		{"Comfort", core.SomeFloat(22.0), 0},
		{"Cooling", core.SomeFloat(26.5), 30},
		{"Heating", core.SomeFloat(18.0), 16},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.expected, TemperatureEffect(tc.temp), 1e-9)
		})
	}
}

func TestLightEffect(t *testing.T) {
	assert.Equal(t, 0.0, LightEffect(core.NullFloat64{}))
	assert.InDelta(t, 40.0, LightEffect(core.SomeFloat(500)), 1e-9)
}

func TestTimeOfDayMultiplier(t *testing.T) {
	expected := map[int]float64{
		0: 0.4, 6: 0.4, 7: 1.0, 8: 1.8, 9: 1.8, 10: 1.8, 11: 1.0,
		17: 1.0, 18: 1.6, 20: 1.6, 21: 1.0, 22: 0.4, 23: 0.4,
	}
	for hour, mult := range expected {
		assert.Equal(t, mult, TimeOfDayMultiplier(hour), "hour %d", hour)
	}
}

func TestHeatingDemand(t *testing.T) {
	assert.InDelta(t, 0.6, HeatingDemand(time.January, core.SomeFloat(16)), 1e-9)
	assert.Equal(t, 0.0, HeatingDemand(time.July, core.SomeFloat(10)))
	assert.Equal(t, 0.0, HeatingDemand(time.December, core.SomeFloat(21)))
	// missing temperature falls back to 20°C, above the heating base
	assert.Equal(t, 0.0, HeatingDemand(time.November, core.NullFloat64{}))
}

func TestDeriveEnergyMorningPeak(t *testing.T) {
	start := time.Date(2024, 5, 6, 9, 0, 0, 0, time.UTC)
	readings := []core.SensorReading{
		{Timestamp: start, Temperature: core.SomeFloat(22), LightLevel: core.NullInt{}},
		{Timestamp: start.Add(10 * time.Minute), Temperature: core.SomeFloat(22)},
	}

	records := New(7).DeriveEnergy(readings)
	require.Len(t, records, 1)

	noise := core.NewNoiseGenerator(choiceSeed(7)).Gaussian(0, energyNoiseStdDev)
	expected := core.Round(core.ClampPositive(baseLoadKWh*1.8+noise), 2)

	assert.Equal(t, start, records[0].Timestamp)
	assert.Equal(t, expected, records[0].ElectricityKWh)
	assert.Equal(t, 0.0, records[0].HeatingGcal)
	assert.Equal(t, core.Round(expected/0.5, 2), records[0].TotalPowerKW)
}

func TestDeriveEnergyBucketsAndGaps(t *testing.T) {
	start := time.Date(2024, 1, 10, 0, 5, 0, 0, time.UTC)
	readings := []core.SensorReading{
		{Timestamp: start, Temperature: core.SomeFloat(16), LightLevel: core.SomeInt(100)},
		{Timestamp: start.Add(10 * time.Minute), Temperature: core.SomeFloat(18), LightLevel: core.SomeInt(300)},
		// nothing between 00:30 and 01:30
		{Timestamp: start.Add(95 * time.Minute), Temperature: core.NullFloat64{}},
	}

	records := New(1).DeriveEnergy(readings)
	require.Len(t, records, 4)

	for i, r := range records {
		assert.Equal(t, time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC).Add(time.Duration(i)*EnergyBucket), r.Timestamp)
	}

	// mean 17°C in January
	assert.InDelta(t, 0.3, records[0].HeatingGcal, 1e-9)
	// empty and missing buckets fall back to 20°C: no heating
	assert.Equal(t, 0.0, records[1].HeatingGcal)
	assert.Equal(t, 0.0, records[3].HeatingGcal)
}

func TestDeriveEnergyNonNegative(t *testing.T) {
	ds, err := New(99).GenerateAll(Params{
		StartDate:      "2024-01-01",
		Days:           10,
		Frequency:      2 * time.Minute,
		MissingPercent: 0.2,
		AnomalyPercent: 0.05,
	})
	require.NoError(t, err)

	for _, r := range ds.Energy {
		assert.GreaterOrEqual(t, r.ElectricityKWh, 0.0)
		assert.GreaterOrEqual(t, r.HeatingGcal, 0.0)
		assert.GreaterOrEqual(t, r.TotalPowerKW, 0.0)
	}
}

func TestDeriveEnergyEmpty(t *testing.T) {
	assert.Empty(t, New(1).DeriveEnergy(nil))
}
