package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/sebastiankruger/building-simulator/internal/core"
)

// TimestampLayout is the timestamp format of every table file
const TimestampLayout = "2006-01-02 15:04:05"

// Column headers of the persisted tables
var (
	SensorColumns    = []string{"timestamp", "sensor_id", "temperature", "humidity", "co2", "light_level", "zone"}
	EnergyColumns    = []string{"timestamp", "electricity_kwh", "heating_gcal", "total_power_kw"}
	EquipmentColumns = []string{"timestamp", "hvac_status", "lighting_status", "ventilation_status", "equipment_load"}
	AnomalyColumns   = []string{"row", "timestamp", "sensor_id", "channel", "before", "after"}
)

// WriteSensorsCSV writes sensor readings in row order. Missing values are empty fields.
func WriteSensorsCSV(w io.Writer, readings []core.SensorReading) error {
	return writeRows(w, SensorColumns, len(readings), func(i int) []string {
		r := readings[i]
		return []string{
			formatTime(r.Timestamp),
			r.SensorID,
			formatNullFloat(r.Temperature),
			formatNullFloat(r.Humidity),
			formatNullInt(r.CO2),
			formatNullInt(r.LightLevel),
			r.Zone,
		}
	})
}

// WriteEnergyCSV writes energy records
func WriteEnergyCSV(w io.Writer, records []core.EnergyRecord) error {
	return writeRows(w, EnergyColumns, len(records), func(i int) []string {
		r := records[i]
		return []string{
			formatTime(r.Timestamp),
			formatFloat(r.ElectricityKWh),
			formatFloat(r.HeatingGcal),
			formatFloat(r.TotalPowerKW),
		}
	})
}

// WriteEquipmentCSV writes equipment records
func WriteEquipmentCSV(w io.Writer, records []core.EquipmentRecord) error {
	return writeRows(w, EquipmentColumns, len(records), func(i int) []string {
		r := records[i]
		return []string{
			formatTime(r.Timestamp),
			string(r.HVACStatus),
			string(r.LightingStatus),
			string(r.VentilationStatus),
			formatFloat(r.EquipmentLoad),
		}
	})
}

// WriteAnomaliesCSV writes the ground-truth log of injected anomalies
func WriteAnomaliesCSV(w io.Writer, anomalies []core.Anomaly) error {
	return writeRows(w, AnomalyColumns, len(anomalies), func(i int) []string {
		a := anomalies[i]
		return []string{
			strconv.Itoa(a.Row),
			formatTime(a.Timestamp),
			a.SensorID,
			string(a.Channel),
			formatNullFloat(a.Before),
			formatNullFloat(a.After),
		}
	})
}

func writeRows(w io.Writer, header []string, n int, row func(i int) []string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for i := 0; i < n; i++ {
		if err := cw.Write(row(i)); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadSensorsCSV loads sensor readings, keeping file order
func ReadSensorsCSV(r io.Reader) ([]core.SensorReading, error) {
	var readings []core.SensorReading
	err := readRows(r, SensorColumns, func(line int, rec []string) error {
		ts, err := parseTime(rec[0])
		if err != nil {
			return err
		}
		temperature, err := parseNullFloat(rec[2])
		if err != nil {
			return err
		}
		humidity, err := parseNullFloat(rec[3])
		if err != nil {
			return err
		}
		co2, err := parseNullInt(rec[4])
		if err != nil {
			return err
		}
		light, err := parseNullInt(rec[5])
		if err != nil {
			return err
		}
		readings = append(readings, core.SensorReading{
			Timestamp:   ts,
			SensorID:    rec[1],
			Temperature: temperature,
			Humidity:    humidity,
			CO2:         co2,
			LightLevel:  light,
			Zone:        rec[6],
		})
		return nil
	})
	return readings, err
}

// ReadEnergyCSV loads energy records
func ReadEnergyCSV(r io.Reader) ([]core.EnergyRecord, error) {
	var records []core.EnergyRecord
	err := readRows(r, EnergyColumns, func(line int, rec []string) error {
		ts, err := parseTime(rec[0])
		if err != nil {
			return err
		}
		values := make([]float64, 3)
		for i := range values {
			if values[i], err = strconv.ParseFloat(rec[i+1], 64); err != nil {
				return fmt.Errorf("column %s: %w", EnergyColumns[i+1], err)
			}
		}
		records = append(records, core.EnergyRecord{
			Timestamp:      ts,
			ElectricityKWh: values[0],
			HeatingGcal:    values[1],
			TotalPowerKW:   values[2],
		})
		return nil
	})
	return records, err
}

// ReadEquipmentCSV loads equipment records
func ReadEquipmentCSV(r io.Reader) ([]core.EquipmentRecord, error) {
	var records []core.EquipmentRecord
	err := readRows(r, EquipmentColumns, func(line int, rec []string) error {
		ts, err := parseTime(rec[0])
		if err != nil {
			return err
		}
		load, err := strconv.ParseFloat(rec[4], 64)
		if err != nil {
			return fmt.Errorf("column equipment_load: %w", err)
		}
		records = append(records, core.EquipmentRecord{
			Timestamp:         ts,
			HVACStatus:        core.HVACStatus(rec[1]),
			LightingStatus:    core.LightingStatus(rec[2]),
			VentilationStatus: core.VentilationStatus(rec[3]),
			EquipmentLoad:     load,
		})
		return nil
	})
	return records, err
}

// ReadAnomaliesCSV loads the anomaly log written by WriteAnomaliesCSV
func ReadAnomaliesCSV(r io.Reader) ([]core.Anomaly, error) {
	var anomalies []core.Anomaly
	err := readRows(r, AnomalyColumns, func(line int, rec []string) error {
		row, err := strconv.Atoi(rec[0])
		if err != nil {
			return fmt.Errorf("column row: %w", err)
		}
		ts, err := parseTime(rec[1])
		if err != nil {
			return err
		}
		before, err := parseNullFloat(rec[4])
		if err != nil {
			return fmt.Errorf("column before: %w", err)
		}
		after, err := parseNullFloat(rec[5])
		if err != nil {
			return fmt.Errorf("column after: %w", err)
		}
		anomalies = append(anomalies, core.Anomaly{
			Row:       row,
			Timestamp: ts,
			SensorID:  rec[2],
			Channel:   core.AnomalyChannel(rec[3]),
			Before:    before,
			After:     after,
		})
		return nil
	})
	return anomalies, err
}

func readRows(r io.Reader, header []string, row func(line int, rec []string) error) error {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(header)
	cr.ReuseRecord = true

	got, err := cr.Read()
	if err != nil {
		return fmt.Errorf("failed to read header: %w", err)
	}
	for i, name := range header {
		if got[i] != name {
			return fmt.Errorf("unexpected column %d: want %q, got %q", i, name, got[i])
		}
	}

	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
		if err := row(line, rec); err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
	}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

func parseTime(s string) (time.Time, error) {
	for _, layout := range []string{TimestampLayout, "2006-01-02T15:04:05", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", s)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatNullFloat(v core.NullFloat64) string {
	if !v.Valid {
		return ""
	}
	return formatFloat(v.Value)
}

func formatNullInt(v core.NullInt) string {
	if !v.Valid {
		return ""
	}
	return strconv.Itoa(v.Value)
}

func parseNullFloat(s string) (core.NullFloat64, error) {
	if s == "" {
		return core.NullFloat64{}, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return core.NullFloat64{}, err
	}
	return core.SomeFloat(v), nil
}

// parseNullInt also accepts float text such as "512.0"
func parseNullInt(s string) (core.NullInt, error) {
	if s == "" {
		return core.NullInt{}, nil
	}
	if v, err := strconv.Atoi(s); err == nil {
		return core.SomeInt(v), nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return core.NullInt{}, err
	}
	return core.SomeInt(int(f)), nil
}
