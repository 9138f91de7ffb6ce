package generator

import (
	"fmt"
	"time"

	"github.com/sebastiankruger/building-simulator/internal/core"
)

// Sensor pools. Rows are assigned round-robin by row index.
const (
	SensorCount = 10
	ZoneCount   = 5
)

// Comfort parameter bounds applied while generating normal readings
const (
	MinTemperature = 18.0
	MaxTemperature = 28.0
	MinHumidity    = 30.0
	MaxHumidity    = 70.0
	MinCO2         = 350.0
	MaxCO2         = 1500.0
	MinLight       = 0.0
	MaxLight       = 800.0
)

const (
	baseTemperature = 22.0
	baseHumidity    = 50.0
	baseCO2         = 450.0
	baseLight       = 150.0

	temperatureAmplitude = 4.0
	humidityAmplitude    = 15.0

	weekendOffset   = 0.5
	annualAmplitude = 0.3
)

// GenerateTimestamps returns instants from start (inclusive) to
// start+days (exclusive), spaced by frequency.
func (g *Generator) GenerateTimestamps(start time.Time, days int, frequency time.Duration) ([]time.Time, error) {
	return generateTimestamps(start, days, frequency)
}

func generateTimestamps(start time.Time, days int, frequency time.Duration) ([]time.Time, error) {
	if err := validateRange(days, frequency); err != nil {
		return nil, err
	}

	end := start.AddDate(0, 0, days)
	n := int((end.Sub(start) + frequency - 1) / frequency)
	timestamps := make([]time.Time, 0, n)
	for ts := start; ts.Before(end); ts = ts.Add(frequency) {
		timestamps = append(timestamps, ts)
	}
	return timestamps, nil
}

// SeasonalPattern adds the daily, weekly and annual components to base.
// It draws no random numbers.
func SeasonalPattern(base float64, ts time.Time, amplitude float64) float64 {
	daily := core.SinusoidalVariation(amplitude, float64(ts.Hour())/24)

	weekly := 0.0
	if isWeekend(ts) {
		weekly = weekendOffset
	}

	annual := core.SinusoidalVariation(annualAmplitude, float64(ts.YearDay()-80)/365)

	return base + daily + weekly + annual
}

// GenerateSensorData produces one reading per timestamp of the range
func (g *Generator) GenerateSensorData(startDate string, days int, frequency time.Duration) ([]core.SensorReading, error) {
	start, err := ParseStartDate(startDate)
	if err != nil {
		return nil, err
	}
	return g.generateSensors(start, days, frequency)
}

func (g *Generator) generateSensors(start time.Time, days int, frequency time.Duration) ([]core.SensorReading, error) {
	timestamps, err := generateTimestamps(start, days, frequency)
	if err != nil {
		return nil, err
	}

	readings := make([]core.SensorReading, len(timestamps))
	for i, ts := range timestamps {
		readings[i] = g.sensorReading(i, ts)
	}
	return readings, nil
}

func (g *Generator) sensorReading(i int, ts time.Time) core.SensorReading {
	temperature := SeasonalPattern(baseTemperature, ts, temperatureAmplitude)
	humidity := SeasonalPattern(baseHumidity, ts, humidityAmplitude)

	// CO2 follows occupancy, light follows the working day
	var co2, light float64
	if isWorkingHour(ts) && !isWeekend(ts) {
		co2 = baseCO2 + 200 + g.uniform.Uniform(0, 100)
	} else {
		co2 = baseCO2 + g.uniform.Uniform(0, 50)
	}
	if isWorkingHour(ts) {
		light = baseLight + 200 + g.uniform.Uniform(0, 300)
	} else {
		light = baseLight + g.uniform.Uniform(0, 50)
	}

	temperature += g.uniform.Uniform(-0.5, 0.5)
	humidity += g.uniform.Uniform(-2, 2)
	co2 += g.uniform.Uniform(-20, 20)
	light += g.uniform.Uniform(-10, 10)

	temperature = core.Clamp(temperature, MinTemperature, MaxTemperature)
	humidity = core.Clamp(humidity, MinHumidity, MaxHumidity)
	co2 = core.Clamp(co2, MinCO2, MaxCO2)
	light = core.Clamp(light, MinLight, MaxLight)

	return core.SensorReading{
		Timestamp:   ts,
		SensorID:    SensorID(i),
		Zone:        ZoneID(i),
		Temperature: core.SomeFloat(core.Round(temperature, 1)),
		Humidity:    core.SomeFloat(core.Round(humidity, 1)),
		CO2:         core.SomeInt(int(co2)),
		LightLevel:  core.SomeInt(int(light)),
	}
}

// SensorID returns the sensor identifier assigned to row i
func SensorID(i int) string {
	return fmt.Sprintf("sensor_%03d", i%SensorCount)
}

// ZoneID returns the zone identifier assigned to row i
func ZoneID(i int) string {
	return fmt.Sprintf("zone_%d", i%ZoneCount+1)
}

// isWorkingHour covers 08:00 through 18:59
func isWorkingHour(ts time.Time) bool {
	return ts.Hour() >= 8 && ts.Hour() <= 18
}

func isWeekend(ts time.Time) bool {
	return ts.Weekday() == time.Saturday || ts.Weekday() == time.Sunday
}

func meanOf(sum float64, count int) core.NullFloat64 {
	if count == 0 {
		return core.NullFloat64{}
	}
	return core.SomeFloat(sum / float64(count))
}
