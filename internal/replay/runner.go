// Package replay walks a generated dataset row by row and pushes the
// current building state to OPC UA, Kafka and Prometheus.
package replay

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sebastiankruger/building-simulator/internal/config"
	"github.com/sebastiankruger/building-simulator/internal/core"
	"github.com/sebastiankruger/building-simulator/internal/generator"
)

// Sink receives every replayed snapshot
type Sink interface {
	Name() string
	Publish(ctx context.Context, snap core.Snapshot) error
}

// Status is a point-in-time view of the replay progress
type Status struct {
	Row         int       `json:"row"`
	TotalRows   int       `json:"totalRows"`
	Loops       int       `json:"loops"`
	Ticks       int       `json:"ticks"`
	Finished    bool      `json:"finished"`
	CurrentTime time.Time `json:"currentTime"`
	StartedAt   time.Time `json:"startedAt"`
}

// Runner replays a dataset. All methods are thread-safe.
type Runner struct {
	ds      *core.Dataset
	runtime *config.RuntimeConfig
	sinks   []Sink
	onError func(sink string, err error)

	mu        sync.RWMutex
	next      int
	current   *core.Snapshot
	loops     int
	ticks     int
	finished  bool
	startedAt time.Time
}

// NewRunner creates a runner positioned before the first sensor row
func NewRunner(ds *core.Dataset, runtime *config.RuntimeConfig, sinks ...Sink) *Runner {
	return &Runner{
		ds:        ds,
		runtime:   runtime,
		sinks:     sinks,
		startedAt: time.Now().UTC(),
	}
}

// OnSinkError registers a callback for failed deliveries
func (r *Runner) OnSinkError(fn func(sink string, err error)) {
	r.onError = fn
}

// Dataset returns the replayed dataset
func (r *Runner) Dataset() *core.Dataset {
	return r.ds
}

// Run advances one row per tick until ctx is cancelled. The tick interval
// follows the runtime replay speed.
func (r *Runner) Run(ctx context.Context) {
	interval := r.runtime.GetEffectiveInterval()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Info().
		Dur("interval", interval).
		Int("rows", len(r.ds.Sensors)).
		Msg("Starting replay loop")

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Replay loop stopped")
			return

		case <-ticker.C:
			snap, ok := r.Step(ctx)
			if ok && snap.Row%100 == 0 {
				log.Debug().
					Int("row", snap.Row).
					Time("timestamp", snap.Sensor.Timestamp).
					Str("sensor", snap.Sensor.SensorID).
					Msg("Replay tick")
			}

			if d := r.runtime.GetEffectiveInterval(); d != interval {
				interval = d
				ticker.Reset(d)
				log.Info().Dur("interval", d).Msg("Replay interval changed")
			}
		}
	}
}

// Step replays the next row and delivers it to every sink. It returns false
// once the dataset is exhausted and looping is disabled.
func (r *Runner) Step(ctx context.Context) (core.Snapshot, bool) {
	snap, ok := r.advance()
	if !ok {
		return core.Snapshot{}, false
	}

	for _, sink := range r.sinks {
		if err := sink.Publish(ctx, snap); err != nil {
			log.Warn().Err(err).Str("sink", sink.Name()).Int("row", snap.Row).Msg("Failed to publish snapshot")
			if r.onError != nil {
				r.onError(sink.Name(), err)
			}
		}
	}
	return snap, true
}

func (r *Runner) advance() (core.Snapshot, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := len(r.ds.Sensors)
	if n == 0 {
		r.finished = true
		return core.Snapshot{}, false
	}
	if r.next >= n {
		if !r.runtime.GetLoop() {
			if !r.finished {
				log.Info().Int("rows", n).Msg("Replay reached the end of the dataset")
			}
			r.finished = true
			return core.Snapshot{}, false
		}
		r.next = 0
		r.loops++
		log.Info().Int("loop", r.loops).Msg("Replay wrapped to the first row")
	}

	row := r.next
	reading := r.ds.Sensors[row]
	snap := core.Snapshot{
		Row:        row,
		Sensor:     reading,
		Energy:     r.energyAt(reading.Timestamp),
		Equipment:  r.equipmentAt(reading.Timestamp),
		ReplayedAt: time.Now().UTC(),
	}

	r.next++
	r.ticks++
	r.finished = false
	r.current = &snap
	return snap, true
}

func (r *Runner) energyAt(ts time.Time) *core.EnergyRecord {
	records := r.ds.Energy
	i := findBucket(len(records), func(i int) time.Time { return records[i].Timestamp }, ts.Truncate(generator.EnergyBucket))
	if i < 0 {
		return nil
	}
	rec := records[i]
	return &rec
}

func (r *Runner) equipmentAt(ts time.Time) *core.EquipmentRecord {
	records := r.ds.Equipment
	i := findBucket(len(records), func(i int) time.Time { return records[i].Timestamp }, ts.Truncate(generator.EquipmentBucket))
	if i < 0 {
		return nil
	}
	rec := records[i]
	return &rec
}

// findBucket returns the index of the record starting exactly at start, or -1
func findBucket(n int, at func(i int) time.Time, start time.Time) int {
	i := sort.Search(n, func(i int) bool { return !at(i).Before(start) })
	if i < n && at(i).Equal(start) {
		return i
	}
	return -1
}

// Snapshot returns the last replayed snapshot
func (r *Runner) Snapshot() (core.Snapshot, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.current == nil {
		return core.Snapshot{}, false
	}
	return *r.current, true
}

// Status returns the replay progress
func (r *Runner) Status() Status {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s := Status{
		Row:       -1,
		TotalRows: len(r.ds.Sensors),
		Loops:     r.loops,
		Ticks:     r.ticks,
		Finished:  r.finished,
		StartedAt: r.startedAt,
	}
	if r.current != nil {
		s.Row = r.current.Row
		s.CurrentTime = r.current.Sensor.Timestamp
	}
	return s
}

// Sensors returns up to last sensor rows replayed in the current pass,
// ending with the current row.
func (r *Runner) Sensors(last int) []core.SensorReading {
	r.mu.RLock()
	end := r.next
	r.mu.RUnlock()
	return tail(r.ds.Sensors[:end], last)
}

// Energy returns up to last energy buckets starting at or before the current reading
func (r *Runner) Energy(last int) []core.EnergyRecord {
	ts, ok := r.currentTime()
	if !ok {
		return nil
	}
	records := r.ds.Energy
	end := sort.Search(len(records), func(i int) bool { return records[i].Timestamp.After(ts) })
	return tail(records[:end], last)
}

// Equipment returns up to last equipment minutes starting at or before the current reading
func (r *Runner) Equipment(last int) []core.EquipmentRecord {
	ts, ok := r.currentTime()
	if !ok {
		return nil
	}
	records := r.ds.Equipment
	end := sort.Search(len(records), func(i int) bool { return records[i].Timestamp.After(ts) })
	return tail(records[:end], last)
}

func (r *Runner) currentTime() (time.Time, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.current == nil {
		return time.Time{}, false
	}
	return r.current.Sensor.Timestamp, true
}

func tail[T any](rows []T, last int) []T {
	if last > 0 && last < len(rows) {
		rows = rows[len(rows)-last:]
	}
	out := make([]T, len(rows))
	copy(out, rows)
	return out
}
