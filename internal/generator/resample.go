package generator

import (
	"sort"
	"time"

	"github.com/sebastiankruger/building-simulator/internal/core"
)

// bucket holds the mean readings of one fixed-width interval
type bucket struct {
	Start       time.Time
	Temperature core.NullFloat64
	LightLevel  core.NullFloat64
	CO2         core.NullFloat64
}

type accumulator struct {
	sum   float64
	count int
}

func (a *accumulator) add(v core.NullFloat64) {
	if v.Valid {
		a.sum += v.Value
		a.count++
	}
}

// resample groups readings into buckets of the given width, aligned to the
// width boundary. Buckets between the first and last reading are emitted
// even when empty, with all means missing.
func resample(readings []core.SensorReading, width time.Duration) []bucket {
	if len(readings) == 0 {
		return nil
	}

	first, last := readings[0].Timestamp, readings[0].Timestamp
	for _, r := range readings[1:] {
		if r.Timestamp.Before(first) {
			first = r.Timestamp
		}
		if r.Timestamp.After(last) {
			last = r.Timestamp
		}
	}
	origin := first.Truncate(width)
	n := int(last.Truncate(width).Sub(origin)/width) + 1

	temperature := make([]accumulator, n)
	light := make([]accumulator, n)
	co2 := make([]accumulator, n)
	for _, r := range readings {
		i := int(r.Timestamp.Sub(origin) / width)
		temperature[i].add(r.Temperature)
		light[i].add(r.LightLevel.Float())
		co2[i].add(r.CO2.Float())
	}

	buckets := make([]bucket, n)
	for i := range buckets {
		buckets[i] = bucket{
			Start:       origin.Add(time.Duration(i) * width),
			Temperature: meanOf(temperature[i].sum, temperature[i].count),
			LightLevel:  meanOf(light[i].sum, light[i].count),
			CO2:         meanOf(co2[i].sum, co2[i].count),
		}
	}
	return buckets
}

// trailingWindow returns the readings with timestamps in [end-width, end].
// readings must be in chronological order.
func trailingWindow(readings []core.SensorReading, end time.Time, width time.Duration) []core.SensorReading {
	from := end.Add(-width)
	lo := sort.Search(len(readings), func(i int) bool {
		return !readings[i].Timestamp.Before(from)
	})
	hi := sort.Search(len(readings), func(i int) bool {
		return readings[i].Timestamp.After(end)
	})
	if lo >= hi {
		return nil
	}
	return readings[lo:hi]
}
