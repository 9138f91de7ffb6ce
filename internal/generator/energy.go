package generator

import (
	"time"

	"github.com/sebastiankruger/building-simulator/internal/core"
)

// EnergyBucket is the aggregation width of the energy table
const EnergyBucket = 30 * time.Minute

const (
	baseLoadKWh       = 50.0
	coolingSetpoint   = 24.0
	heatingSetpoint   = 20.0
	coolingKWhPerDeg  = 12.0
	heatingKWhPerDeg  = 8.0
	lightKWhPer1000Lx = 80.0
	energyNoiseStdDev = 5.0

	heatingBaseTemp     = 18.0
	heatingGcalPerDeg   = 0.3
	heatingFallbackTemp = 20.0

	// a 30-minute bucket in kWh converts to average kW by dividing by 0.5 h
	bucketHours = 0.5
)

// TemperatureEffect is the extra load driven by the mean temperature:
// cooling above 24°C, heating below 20°C, nothing in between or when missing.
func TemperatureEffect(temp core.NullFloat64) float64 {
	if !temp.Valid {
		return 0
	}
	switch {
	case temp.Value > coolingSetpoint:
		return (temp.Value - coolingSetpoint) * coolingKWhPerDeg
	case temp.Value < heatingSetpoint:
		return (heatingSetpoint - temp.Value) * heatingKWhPerDeg
	default:
		return 0
	}
}

// LightEffect is the lighting load for a mean light level
func LightEffect(light core.NullFloat64) float64 {
	if !light.Valid {
		return 0
	}
	return light.Value / 1000 * lightKWhPer1000Lx
}

// TimeOfDayMultiplier scales the load for morning and evening peaks and nights
func TimeOfDayMultiplier(hour int) float64 {
	switch {
	case hour >= 8 && hour <= 10:
		return 1.8
	case hour >= 18 && hour <= 20:
		return 1.6
	case hour <= 6 || hour >= 22:
		return 0.4
	default:
		return 1.0
	}
}

// HeatingDemand returns district heating in Gcal for a bucket.
// Heating only runs in January, February, November and December.
func HeatingDemand(month time.Month, temp core.NullFloat64) float64 {
	if !isHeatingSeason(month) {
		return 0
	}
	return core.ClampPositive((heatingBaseTemp - temp.Or(heatingFallbackTemp)) * heatingGcalPerDeg)
}

func isHeatingSeason(month time.Month) bool {
	switch month {
	case time.January, time.February, time.November, time.December:
		return true
	default:
		return false
	}
}

// DeriveEnergy aggregates readings into 30-minute buckets and models the
// building's electricity and heating consumption for each.
func (g *Generator) DeriveEnergy(readings []core.SensorReading) []core.EnergyRecord {
	buckets := resample(readings, EnergyBucket)

	records := make([]core.EnergyRecord, len(buckets))
	for i, b := range buckets {
		load := baseLoadKWh + TemperatureEffect(b.Temperature) + LightEffect(b.LightLevel)
		electricity := load*TimeOfDayMultiplier(b.Start.Hour()) + g.choice.Gaussian(0, energyNoiseStdDev)
		electricity = core.Round(core.ClampPositive(electricity), 2)

		records[i] = core.EnergyRecord{
			Timestamp:      b.Start,
			ElectricityKWh: electricity,
			HeatingGcal:    core.Round(HeatingDemand(b.Start.Month(), b.Temperature), 3),
			TotalPowerKW:   core.Round(electricity/bucketHours, 2),
		}
	}
	return records
}
