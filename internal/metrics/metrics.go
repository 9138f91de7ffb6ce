// Package metrics exposes generation and replay metrics for Prometheus.
package metrics

import (
	"context"
	"math"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sebastiankruger/building-simulator/internal/core"
)

const namespace = "building_simulator"

// Metrics holds every collector of the simulator
type Metrics struct {
	registry *prometheus.Registry

	rowsGenerated   *prometheus.CounterVec
	missingValues   *prometheus.GaugeVec
	anomalies       *prometheus.GaugeVec
	replayRow       prometheus.Gauge
	replayTicks     prometheus.Counter
	sensorValue     *prometheus.GaugeVec
	energy          *prometheus.GaugeVec
	equipmentLoad   prometheus.Gauge
	equipmentStatus *prometheus.GaugeVec
	sinkErrors      *prometheus.CounterVec
}

// New creates the collectors and registers them on a private registry
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		rowsGenerated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_generated_total",
			Help:      "Rows produced by the generator per table.",
		}, []string{"table"}),
		missingValues: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "missing_values",
			Help:      "Missing sensor values in the current dataset per channel.",
		}, []string{"channel"}),
		anomalies: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "injected_anomalies",
			Help:      "Injected anomalies in the current dataset per channel.",
		}, []string{"channel"}),
		replayRow: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "replay_row",
			Help:      "Index of the sensor row currently replayed.",
		}),
		replayTicks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "replay_ticks_total",
			Help:      "Replay ticks processed.",
		}),
		sensorValue: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sensor_value",
			Help:      "Last replayed sensor value per channel (NaN when missing).",
		}, []string{"channel", "sensor_id", "zone"}),
		energy: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "energy",
			Help:      "Energy bucket covering the replayed row per quantity.",
		}, []string{"quantity"}),
		equipmentLoad: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "equipment_load",
			Help:      "Equipment load of the replayed minute.",
		}),
		equipmentStatus: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "equipment_status",
			Help:      "Equipment status of the replayed minute (1 for the active status).",
		}, []string{"equipment", "status"}),
		sinkErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sink_errors_total",
			Help:      "Failed snapshot deliveries per sink.",
		}, []string{"sink"}),
	}

	m.registry.MustRegister(
		m.rowsGenerated,
		m.missingValues,
		m.anomalies,
		m.replayRow,
		m.replayTicks,
		m.sensorValue,
		m.energy,
		m.equipmentLoad,
		m.equipmentStatus,
		m.sinkErrors,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveDataset records table sizes, missing values and anomalies of a dataset
func (m *Metrics) ObserveDataset(ds *core.Dataset) {
	m.rowsGenerated.WithLabelValues("sensors").Add(float64(len(ds.Sensors)))
	m.rowsGenerated.WithLabelValues("energy").Add(float64(len(ds.Energy)))
	m.rowsGenerated.WithLabelValues("equipment").Add(float64(len(ds.Equipment)))

	var temp, hum, co2, light int
	for _, r := range ds.Sensors {
		if !r.Temperature.Valid {
			temp++
		}
		if !r.Humidity.Valid {
			hum++
		}
		if !r.CO2.Valid {
			co2++
		}
		if !r.LightLevel.Valid {
			light++
		}
	}
	m.missingValues.WithLabelValues("temperature").Set(float64(temp))
	m.missingValues.WithLabelValues("humidity").Set(float64(hum))
	m.missingValues.WithLabelValues("co2").Set(float64(co2))
	m.missingValues.WithLabelValues("light_level").Set(float64(light))

	counts := map[core.AnomalyChannel]int{
		core.ChannelTemperature: 0,
		core.ChannelCO2:         0,
	}
	for _, a := range ds.Anomalies {
		counts[a.Channel]++
	}
	for channel, n := range counts {
		m.anomalies.WithLabelValues(string(channel)).Set(float64(n))
	}
}

// Name identifies the metrics sink in logs
func (m *Metrics) Name() string {
	return "metrics"
}

// Publish exports a replay snapshot as gauges
func (m *Metrics) Publish(_ context.Context, snap core.Snapshot) error {
	m.replayTicks.Inc()
	m.replayRow.Set(float64(snap.Row))

	s := snap.Sensor
	m.sensorValue.Reset()
	m.sensorValue.WithLabelValues("temperature", s.SensorID, s.Zone).Set(nullValue(s.Temperature))
	m.sensorValue.WithLabelValues("humidity", s.SensorID, s.Zone).Set(nullValue(s.Humidity))
	m.sensorValue.WithLabelValues("co2", s.SensorID, s.Zone).Set(nullValue(s.CO2.Float()))
	m.sensorValue.WithLabelValues("light_level", s.SensorID, s.Zone).Set(nullValue(s.LightLevel.Float()))

	if e := snap.Energy; e != nil {
		m.energy.WithLabelValues("electricity_kwh").Set(e.ElectricityKWh)
		m.energy.WithLabelValues("heating_gcal").Set(e.HeatingGcal)
		m.energy.WithLabelValues("total_power_kw").Set(e.TotalPowerKW)
	}

	if q := snap.Equipment; q != nil {
		m.equipmentLoad.Set(q.EquipmentLoad)
		m.equipmentStatus.Reset()
		m.equipmentStatus.WithLabelValues("hvac", string(q.HVACStatus)).Set(1)
		m.equipmentStatus.WithLabelValues("lighting", string(q.LightingStatus)).Set(1)
		m.equipmentStatus.WithLabelValues("ventilation", string(q.VentilationStatus)).Set(1)
	}
	return nil
}

// SinkError counts a failed delivery to the named sink
func (m *Metrics) SinkError(sink string) {
	m.sinkErrors.WithLabelValues(sink).Inc()
}

func nullValue(v core.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Value
}
