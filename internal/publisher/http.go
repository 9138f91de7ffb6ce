package publisher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sebastiankruger/building-simulator/internal/core"
)

// HTTP posts snapshots as JSON to a building management ingestion endpoint
type HTTP struct {
	name       string
	url        string
	httpClient *http.Client
}

// NewHTTP creates a publisher posting to endpoint+path
func NewHTTP(simulatorName, endpoint, path string) *HTTP {
	url := endpoint + path
	log.Info().Str("url", url).Msg("HTTP publisher configured")

	return &HTTP{
		name: simulatorName,
		url:  url,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Name identifies the sink in logs and metrics
func (h *HTTP) Name() string {
	return "http"
}

// Publish posts one snapshot
func (h *HTTP) Publish(ctx context.Context, snap core.Snapshot) error {
	payload, err := json.Marshal(Message{
		SimulatorName: h.name,
		Row:           snap.Row,
		Timestamp:     snap.Sensor.Timestamp,
		Sensor:        snap.Sensor,
		Energy:        snap.Energy,
		Equipment:     snap.Equipment,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to post snapshot to %s: %w", h.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("endpoint %s returned status %d", h.url, resp.StatusCode)
	}

	log.Debug().
		Int("row", snap.Row).
		Str("sensorId", snap.Sensor.SensorID).
		Msg("Snapshot sent to HTTP endpoint")
	return nil
}
