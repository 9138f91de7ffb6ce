package publisher

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPPublish(t *testing.T) {
	var received Message
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/readings", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	p := NewHTTP("building-1", srv.URL, "/api/v1/readings")
	require.NoError(t, p.Publish(context.Background(), snapshot()))

	assert.Equal(t, "building-1", received.SimulatorName)
	assert.Equal(t, 3, received.Row)
	assert.Equal(t, "sensor_003", received.Sensor.SensorID)
	assert.False(t, received.Sensor.Humidity.Valid)
	require.NotNil(t, received.Energy)
	assert.Equal(t, 140.2, received.Energy.ElectricityKWh)
}

func TestHTTPPublishErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	p := NewHTTP("building-1", srv.URL, "/ingest")
	err := p.Publish(context.Background(), snapshot())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestHTTPPublishUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	p := NewHTTP("building-1", url, "/ingest")
	assert.Error(t, p.Publish(context.Background(), snapshot()))
}
