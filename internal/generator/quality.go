package generator

import (
	"github.com/rs/zerolog/log"

	"github.com/sebastiankruger/building-simulator/internal/core"
)

// Temperature shocks (°C) and the CO2 multiplier range for anomalies
var temperatureShocks = []int{-8, -5, 7, 10}

const (
	minCO2Multiplier = 2.0
	maxCO2Multiplier = 3.0
)

// AddMissingValues blanks each numeric field with probability
// missingPercent. Every column gets its own mask. The input slice is not
// modified. Applying it twice compounds the missing rate.
func (g *Generator) AddMissingValues(readings []core.SensorReading, missingPercent float64) ([]core.SensorReading, error) {
	if err := validatePercent("missing_percent", missingPercent); err != nil {
		return nil, err
	}

	out := make([]core.SensorReading, len(readings))
	copy(out, readings)

	n := len(out)
	temperatureMask := g.choice.Mask(n, missingPercent)
	humidityMask := g.choice.Mask(n, missingPercent)
	co2Mask := g.choice.Mask(n, missingPercent)
	lightMask := g.choice.Mask(n, missingPercent)

	blanked := 0
	for i := range out {
		if temperatureMask[i] {
			out[i].Temperature = core.NullFloat64{}
			blanked++
		}
		if humidityMask[i] {
			out[i].Humidity = core.NullFloat64{}
			blanked++
		}
		if co2Mask[i] {
			out[i].CO2 = core.NullInt{}
			blanked++
		}
		if lightMask[i] {
			out[i].LightLevel = core.NullInt{}
			blanked++
		}
	}

	log.Debug().Int("values", blanked).Msg("Missing values added")
	return out, nil
}

// AddAnomalies shocks floor(len*anomalyPercent) distinct rows, each on
// exactly one channel. Temperature shocks are not clamped back into the
// normal sensor range. A shock on a missing value leaves it missing.
func (g *Generator) AddAnomalies(readings []core.SensorReading, anomalyPercent float64) ([]core.SensorReading, []core.Anomaly, error) {
	if err := validatePercent("anomaly_percent", anomalyPercent); err != nil {
		return nil, nil, err
	}

	out := make([]core.SensorReading, len(readings))
	copy(out, readings)

	count := int(float64(len(out)) * anomalyPercent)
	indices := g.choice.SampleWithoutReplacement(len(out), count)

	anomalies := make([]core.Anomaly, 0, len(indices))
	for _, idx := range indices {
		row := &out[idx]
		anomaly := core.Anomaly{
			Row:       idx,
			Timestamp: row.Timestamp,
			SensorID:  row.SensorID,
		}

		if g.choice.Intn(2) == 0 {
			anomaly.Channel = core.ChannelTemperature
			anomaly.Before = row.Temperature
			shock := float64(g.choice.ChooseInt(temperatureShocks))
			if row.Temperature.Valid {
				row.Temperature = core.SomeFloat(core.Round(row.Temperature.Value+shock, 1))
			}
			anomaly.After = row.Temperature
		} else {
			anomaly.Channel = core.ChannelCO2
			anomaly.Before = row.CO2.Float()
			multiplier := g.choice.Uniform(minCO2Multiplier, maxCO2Multiplier)
			if row.CO2.Valid {
				row.CO2 = core.SomeInt(int(float64(row.CO2.Value) * multiplier))
			}
			anomaly.After = row.CO2.Float()
		}

		anomalies = append(anomalies, anomaly)
	}

	log.Debug().Int("anomalies", len(anomalies)).Msg("Anomalies added")
	return out, anomalies, nil
}
