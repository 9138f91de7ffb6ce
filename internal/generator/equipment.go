package generator

import (
	"time"

	"github.com/sebastiankruger/building-simulator/internal/core"
)

// EquipmentBucket is the aggregation width of the equipment table
const EquipmentBucket = time.Minute

// VentilationWindow is the trailing window of CO2 readings driving ventilation
const VentilationWindow = 5 * time.Minute

const (
	lightingThreshold  = 100.0
	ventilationHigh    = 800.0
	ventilationMedium  = 600.0
	defaultVentilation = 500.0
	minEquipmentLoad   = 0.3
	maxEquipmentLoad   = 0.9
)

// HVACFor derives the HVAC mode from a mean temperature
func HVACFor(temp core.NullFloat64) core.HVACStatus {
	switch {
	case !temp.Valid:
		return core.HVACOff
	case temp.Value > coolingSetpoint:
		return core.HVACCooling
	case temp.Value < heatingSetpoint:
		return core.HVACHeating
	default:
		return core.HVACIdle
	}
}

// LightingFor derives the lighting state from a mean light level
func LightingFor(light core.NullFloat64) core.LightingStatus {
	if light.Valid && light.Value > lightingThreshold {
		return core.LightingOn
	}
	return core.LightingOff
}

// VentilationFor derives the ventilation stage from a trailing CO2 mean
func VentilationFor(co2 core.NullFloat64) core.VentilationStatus {
	switch {
	case !co2.Valid:
		return core.VentilationOff
	case co2.Value > ventilationHigh:
		return core.VentilationHigh
	case co2.Value > ventilationMedium:
		return core.VentilationMedium
	default:
		return core.VentilationLow
	}
}

// TrailingCO2 is the mean CO2 of the readings in [end-5m, end].
// An empty window reads as 500 ppm; a window of only missing values is missing.
func TrailingCO2(readings []core.SensorReading, end time.Time) core.NullFloat64 {
	window := trailingWindow(readings, end, VentilationWindow)
	if len(window) == 0 {
		return core.SomeFloat(defaultVentilation)
	}

	var acc accumulator
	for _, r := range window {
		acc.add(r.CO2.Float())
	}
	return meanOf(acc.sum, acc.count)
}

// DeriveEquipment aggregates readings into 1-minute buckets and derives
// the status of the building equipment for each.
func (g *Generator) DeriveEquipment(readings []core.SensorReading) []core.EquipmentRecord {
	buckets := resample(readings, EquipmentBucket)

	records := make([]core.EquipmentRecord, len(buckets))
	for i, b := range buckets {
		records[i] = core.EquipmentRecord{
			Timestamp:         b.Start,
			HVACStatus:        HVACFor(b.Temperature),
			LightingStatus:    LightingFor(b.LightLevel),
			VentilationStatus: VentilationFor(TrailingCO2(readings, b.Start)),
			// unmodeled: drawn independently of every status above
			EquipmentLoad: g.choice.Uniform(minEquipmentLoad, maxEquipmentLoad),
		}
	}
	return records
}
