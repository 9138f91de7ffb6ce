// Package comfort summarizes indoor conditions over a window of sensor readings.
package comfort

import (
	"github.com/sebastiankruger/building-simulator/internal/core"
)

// Status labels
const (
	StatusNormal   = "normal"
	StatusWarning  = "warning"
	StatusLow      = "low"
	StatusHigh     = "high"
	StatusGood     = "good"
	StatusElevated = "elevated"
	StatusDim      = "dim"
	StatusVeryDark = "very dark"
	StatusUnknown  = "unknown"
)

// Summary holds mean conditions and their comfort status
type Summary struct {
	Readings int `json:"readings"`

	Temperature core.NullFloat64 `json:"temperature"`
	Humidity    core.NullFloat64 `json:"humidity"`
	CO2         core.NullFloat64 `json:"co2"`
	LightLevel  core.NullFloat64 `json:"lightLevel"`

	TemperatureStatus string `json:"temperatureStatus"`
	HumidityStatus    string `json:"humidityStatus"`
	CO2Status         string `json:"co2Status"`
	LightStatus       string `json:"lightStatus"`
}

type mean struct {
	sum   float64
	count int
}

func (m *mean) add(v core.NullFloat64) {
	if v.Valid {
		m.sum += v.Value
		m.count++
	}
}

func (m mean) value() core.NullFloat64 {
	if m.count == 0 {
		return core.NullFloat64{}
	}
	return core.SomeFloat(m.sum / float64(m.count))
}

// Summarize averages each channel, skipping missing values, and grades the means
func Summarize(readings []core.SensorReading) Summary {
	var temp, hum, co2, light mean
	for _, r := range readings {
		temp.add(r.Temperature)
		hum.add(r.Humidity)
		co2.add(r.CO2.Float())
		light.add(r.LightLevel.Float())
	}

	s := Summary{
		Readings:    len(readings),
		Temperature: temp.value(),
		Humidity:    hum.value(),
		CO2:         co2.value(),
		LightLevel:  light.value(),
	}
	s.TemperatureStatus = TemperatureStatus(s.Temperature)
	s.HumidityStatus = HumidityStatus(s.Humidity)
	s.CO2Status = CO2Status(s.CO2)
	s.LightStatus = LightStatus(s.LightLevel)
	return s
}

// Window returns the last n readings, or all of them when n is not positive
// or exceeds the slice.
func Window(readings []core.SensorReading, n int) []core.SensorReading {
	if n <= 0 || n >= len(readings) {
		return readings
	}
	return readings[len(readings)-n:]
}

// TemperatureStatus grades a mean temperature in °C
func TemperatureStatus(v core.NullFloat64) string {
	return band(v, 20, 24, 18, 26)
}

// HumidityStatus grades a mean relative humidity in %
func HumidityStatus(v core.NullFloat64) string {
	return band(v, 40, 60, 30, 70)
}

// CO2Status grades a mean CO2 concentration in ppm
func CO2Status(v core.NullFloat64) string {
	switch {
	case !v.Valid:
		return StatusUnknown
	case v.Value <= 600:
		return StatusGood
	case v.Value <= 800:
		return StatusElevated
	default:
		return StatusHigh
	}
}

// LightStatus grades a mean light level in lux
func LightStatus(v core.NullFloat64) string {
	switch {
	case !v.Valid:
		return StatusUnknown
	case v.Value >= 300:
		return StatusNormal
	case v.Value >= 200:
		return StatusDim
	default:
		return StatusVeryDark
	}
}

func band(v core.NullFloat64, lo, hi, warnLo, warnHi float64) string {
	switch {
	case !v.Valid:
		return StatusUnknown
	case v.Value >= lo && v.Value <= hi:
		return StatusNormal
	case v.Value >= warnLo && v.Value <= warnHi:
		return StatusWarning
	case v.Value < warnLo:
		return StatusLow
	default:
		return StatusHigh
	}
}
