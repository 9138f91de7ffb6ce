package generator

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sebastiankruger/building-simulator/internal/core"
)

// Default generation parameters
const (
	DefaultSeed           = 42
	DefaultStartDate      = "2024-01-01"
	DefaultDays           = 30
	DefaultFrequency      = 2 * time.Minute
	DefaultMissingPercent = 0.02
	DefaultAnomalyPercent = 0.01
)

// Params describes one generation run
type Params struct {
	StartDate      string
	Days           int
	Frequency      time.Duration
	MissingPercent float64
	AnomalyPercent float64
}

// DefaultParams returns the parameters used when nothing is configured
func DefaultParams() Params {
	return Params{
		StartDate:      DefaultStartDate,
		Days:           DefaultDays,
		Frequency:      DefaultFrequency,
		MissingPercent: DefaultMissingPercent,
		AnomalyPercent: DefaultAnomalyPercent,
	}
}

// Validate checks every parameter and returns the parsed start date
func (p Params) Validate() (time.Time, error) {
	start, err := ParseStartDate(p.StartDate)
	if err != nil {
		return time.Time{}, err
	}
	if err := validateRange(p.Days, p.Frequency); err != nil {
		return time.Time{}, err
	}
	if err := validatePercent("missing_percent", p.MissingPercent); err != nil {
		return time.Time{}, err
	}
	if err := validatePercent("anomaly_percent", p.AnomalyPercent); err != nil {
		return time.Time{}, err
	}
	return start, nil
}

// Generator synthesizes sensor, energy and equipment tables.
// It is not safe for concurrent use; create one generator per goroutine.
type Generator struct {
	seed int64

	// uniform drives per-row sensor noise
	uniform *core.NoiseGenerator
	// choice drives masks, anomaly selection, energy noise and equipment load
	choice *core.NoiseGenerator
}

// choiceSeedMask derives the choice source seed so the two streams differ
const choiceSeedMask = 0x5DEECE66D

// New creates a generator with two independent random sources derived from seed
func New(seed int64) *Generator {
	return &Generator{
		seed:    seed,
		uniform: core.NewNoiseGenerator(seed),
		choice:  core.NewNoiseGenerator(choiceSeed(seed)),
	}
}

func choiceSeed(seed int64) int64 {
	return seed ^ choiceSeedMask
}

// Seed returns the seed the generator was created with
func (g *Generator) Seed() int64 {
	return g.seed
}

// GenerateAll runs the full pipeline: sensor rows, missing values,
// anomalies, then the derived energy and equipment tables.
func (g *Generator) GenerateAll(p Params) (*core.Dataset, error) {
	start, err := p.Validate()
	if err != nil {
		return nil, err
	}

	log.Info().
		Int64("seed", g.seed).
		Time("start", start).
		Int("days", p.Days).
		Dur("frequency", p.Frequency).
		Msg("Generating building data")

	sensors, err := g.generateSensors(start, p.Days, p.Frequency)
	if err != nil {
		return nil, err
	}

	sensors, err = g.AddMissingValues(sensors, p.MissingPercent)
	if err != nil {
		return nil, err
	}

	sensors, anomalies, err := g.AddAnomalies(sensors, p.AnomalyPercent)
	if err != nil {
		return nil, err
	}

	energy := g.DeriveEnergy(sensors)
	equipment := g.DeriveEquipment(sensors)

	log.Info().
		Int("sensors", len(sensors)).
		Int("energy", len(energy)).
		Int("equipment", len(equipment)).
		Int("anomalies", len(anomalies)).
		Msg("Generation complete")

	return &core.Dataset{
		Sensors:   sensors,
		Energy:    energy,
		Equipment: equipment,
		Anomalies: anomalies,
	}, nil
}

var startDateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
}

// ParseStartDate parses an ISO date (or date-time) into a UTC instant
func ParseStartDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range startDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, &core.InvalidParameterError{
		Param:  "start_date",
		Value:  s,
		Reason: "expected an ISO-8601 date such as 2024-01-01",
	}
}

var frequencyAlias = regexp.MustCompile(`^(\d*)\s*(S|s|T|min|H|h)$`)

// ParseFrequency accepts Go durations ("2m", "30s") and the short
// pandas-style aliases ("2T", "30min", "1H").
func ParseFrequency(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if d, err := time.ParseDuration(s); err == nil {
		if err := validateFrequency(d); err != nil {
			return 0, err
		}
		return d, nil
	}

	m := frequencyAlias.FindStringSubmatch(s)
	if m == nil {
		return 0, invalidFrequency(s, "unsupported sampling frequency")
	}

	n := 1
	if m[1] != "" {
		var err error
		if n, err = strconv.Atoi(m[1]); err != nil {
			return 0, invalidFrequency(s, err.Error())
		}
	}
	if n <= 0 {
		return 0, invalidFrequency(s, "must be a positive duration")
	}

	var unit time.Duration
	switch m[2] {
	case "S", "s":
		unit = time.Second
	case "T", "min":
		unit = time.Minute
	default:
		unit = time.Hour
	}
	return time.Duration(n) * unit, nil
}

func invalidFrequency(value, reason string) error {
	return &core.InvalidParameterError{Param: "frequency", Value: value, Reason: reason}
}

func validateRange(days int, frequency time.Duration) error {
	if days <= 0 {
		return &core.InvalidParameterError{Param: "days", Value: days, Reason: "must be positive"}
	}
	return validateFrequency(frequency)
}

// validateFrequency requires whole seconds; timestamps are stored at second precision
func validateFrequency(frequency time.Duration) error {
	if frequency <= 0 {
		return &core.InvalidParameterError{Param: "frequency", Value: frequency, Reason: "must be a positive duration"}
	}
	if frequency%time.Second != 0 {
		return &core.InvalidParameterError{Param: "frequency", Value: frequency, Reason: "must be a whole number of seconds"}
	}
	return nil
}

func validatePercent(name string, v float64) error {
	if math.IsNaN(v) || v < 0 || v > 1 {
		return &core.InvalidParameterError{
			Param:  name,
			Value:  v,
			Reason: "must be a fraction between 0 and 1",
		}
	}
	return nil
}
