package dataset

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/sebastiankruger/building-simulator/internal/core"
)

// File names inside an output directory
const (
	SensorsFile       = "sensors_data.csv"
	EnergyFile        = "energy_data.csv"
	EquipmentFile     = "equipment_data.csv"
	SampleSensorsFile = "sample_sensors_data.csv"
	AnomaliesFile     = "injected_anomalies.csv"
	WorkbookFile      = "bms_data.xlsx"
	ManifestFile      = "manifest.json"
)

// SampleSize is the number of leading sensor rows copied into the sample file
const SampleSize = 1000

// SaveOptions controls the optional outputs of SaveAll
type SaveOptions struct {
	XLSX bool
}

type outputFile struct {
	name  string
	write func(w io.Writer) error
}

// SaveAll writes every table of the dataset plus the manifest into dir.
// Any failure is returned as a *core.SerializationError.
func SaveAll(dir string, ds *core.Dataset, manifest *Manifest, opts SaveOptions) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return &core.SerializationError{Path: dir, Err: err}
	}

	sample := ds.Sensors
	if len(sample) > SampleSize {
		sample = sample[:SampleSize]
	}

	files := []outputFile{
		{SensorsFile, func(w io.Writer) error { return WriteSensorsCSV(w, ds.Sensors) }},
		{EnergyFile, func(w io.Writer) error { return WriteEnergyCSV(w, ds.Energy) }},
		{EquipmentFile, func(w io.Writer) error { return WriteEquipmentCSV(w, ds.Equipment) }},
		{SampleSensorsFile, func(w io.Writer) error { return WriteSensorsCSV(w, sample) }},
		{AnomaliesFile, func(w io.Writer) error { return WriteAnomaliesCSV(w, ds.Anomalies) }},
	}
	if opts.XLSX {
		files = append(files, outputFile{WorkbookFile, func(w io.Writer) error { return WriteXLSX(w, ds) }})
	}

	for _, file := range files {
		path := filepath.Join(dir, file.name)
		if err := writeFile(path, file.write); err != nil {
			return err
		}
		if manifest != nil {
			manifest.Files = append(manifest.Files, file.name)
		}
		log.Info().Str("file", path).Msg("Saved")
	}

	if manifest != nil {
		return writeFile(filepath.Join(dir, ManifestFile), manifest.Write)
	}
	return nil
}

// LoadAll reads the sensor, energy and equipment tables and the anomaly log from dir
func LoadAll(dir string) (*core.Dataset, error) {
	ds := &core.Dataset{}

	if err := readFile(filepath.Join(dir, SensorsFile), func(r io.Reader) (err error) {
		ds.Sensors, err = ReadSensorsCSV(r)
		return err
	}); err != nil {
		return nil, err
	}
	if err := readFile(filepath.Join(dir, EnergyFile), func(r io.Reader) (err error) {
		ds.Energy, err = ReadEnergyCSV(r)
		return err
	}); err != nil {
		return nil, err
	}
	if err := readFile(filepath.Join(dir, EquipmentFile), func(r io.Reader) (err error) {
		ds.Equipment, err = ReadEquipmentCSV(r)
		return err
	}); err != nil {
		return nil, err
	}

	// older output directories have no anomaly log
	anomaliesPath := filepath.Join(dir, AnomaliesFile)
	if _, err := os.Stat(anomaliesPath); err == nil {
		if err := readFile(anomaliesPath, func(r io.Reader) (err error) {
			ds.Anomalies, err = ReadAnomaliesCSV(r)
			return err
		}); err != nil {
			return nil, err
		}
	}

	log.Info().
		Str("dir", dir).
		Int("sensors", len(ds.Sensors)).
		Int("energy", len(ds.Energy)).
		Int("equipment", len(ds.Equipment)).
		Int("anomalies", len(ds.Anomalies)).
		Msg("Dataset loaded")

	return ds, nil
}

// Exists reports whether dir holds the sensor table
func Exists(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, SensorsFile))
	return err == nil
}

func writeFile(path string, write func(w io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return &core.SerializationError{Path: path, Err: err}
	}

	bw := bufio.NewWriter(f)
	if err := write(bw); err != nil {
		f.Close()
		return &core.SerializationError{Path: path, Err: err}
	}
	if err := bw.Flush(); err != nil {
		f.Close()
		return &core.SerializationError{Path: path, Err: err}
	}
	if err := f.Close(); err != nil {
		return &core.SerializationError{Path: path, Err: fmt.Errorf("failed to close: %w", err)}
	}
	return nil
}

func readFile(path string, read func(r io.Reader) error) error {
	f, err := os.Open(path)
	if err != nil {
		return &core.SerializationError{Path: path, Err: err}
	}
	defer f.Close()

	if err := read(bufio.NewReader(f)); err != nil {
		return &core.SerializationError{Path: path, Err: err}
	}
	return nil
}
