package dataset

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/sebastiankruger/building-simulator/internal/core"
)

// Manifest describes one generation run next to its table files
type Manifest struct {
	RunID          string         `json:"runId"`
	GeneratedAt    time.Time      `json:"generatedAt"`
	Seed           int64          `json:"seed"`
	StartDate      string         `json:"startDate"`
	Days           int            `json:"days"`
	Frequency      string         `json:"frequency"`
	MissingPercent float64        `json:"missingPercent"`
	AnomalyPercent float64        `json:"anomalyPercent"`
	Rows           map[string]int `json:"rows"`
	Files          []string       `json:"files"`
}

// RunInfo carries the generation parameters recorded in the manifest
type RunInfo struct {
	Seed           int64
	StartDate      string
	Days           int
	Frequency      time.Duration
	MissingPercent float64
	AnomalyPercent float64
}

// NewManifest builds a manifest for a dataset with a fresh run id
func NewManifest(info RunInfo, ds *core.Dataset, now time.Time) *Manifest {
	return &Manifest{
		RunID:          uuid.NewString(),
		GeneratedAt:    now.UTC(),
		Seed:           info.Seed,
		StartDate:      info.StartDate,
		Days:           info.Days,
		Frequency:      info.Frequency.String(),
		MissingPercent: info.MissingPercent,
		AnomalyPercent: info.AnomalyPercent,
		Rows: map[string]int{
			"sensors":   len(ds.Sensors),
			"energy":    len(ds.Energy),
			"equipment": len(ds.Equipment),
			"anomalies": len(ds.Anomalies),
		},
	}
}

// Write encodes the manifest as indented JSON
func (m *Manifest) Write(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(m); err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}
	return nil
}

// ReadManifest decodes a manifest
func ReadManifest(r io.Reader) (*Manifest, error) {
	var m Manifest
	if err := json.NewDecoder(r).Decode(&m); err != nil {
		return nil, fmt.Errorf("failed to decode manifest: %w", err)
	}
	return &m, nil
}
