package health

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

// DefaultStartupGrace is how long readiness reports startup in progress
const DefaultStartupGrace = 5 * time.Second

// Status represents the health status response
type Status struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// Handler handles health check endpoints
type Handler struct {
	mu            sync.RWMutex
	datasetLoaded bool
	opcuaServing  bool
	startTime     time.Time
	startupGrace  time.Duration
}

// NewHandler creates a new health handler
func NewHandler() *Handler {
	return &Handler{
		startTime:    time.Now(),
		startupGrace: DefaultStartupGrace,
	}
}

// SetDatasetLoaded marks the replay dataset as loaded
func (h *Handler) SetDatasetLoaded(loaded bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.datasetLoaded = loaded
}

// SetOPCUAServing records whether the OPC UA endpoint is serving.
// A server in value storage mode does not fail readiness.
func (h *Handler) SetOPCUAServing(serving bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.opcuaServing = serving
}

// HandleLive handles the liveness probe
// Returns 200 if the application is running
func (h *Handler) HandleLive(w http.ResponseWriter, r *http.Request) {
	status := Status{
		Status:    "alive",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(status)
}

// HandleReady handles the readiness probe
// Returns 200 once the dataset is loaded and startup has settled
func (h *Handler) HandleReady(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	datasetLoaded := h.datasetLoaded
	opcuaServing := h.opcuaServing
	h.mu.RUnlock()

	checks := make(map[string]string)
	allHealthy := true

	if datasetLoaded {
		checks["dataset"] = "loaded"
	} else {
		checks["dataset"] = "not_loaded"
		allHealthy = false
	}

	if opcuaServing {
		checks["opcua_server"] = "healthy"
	} else {
		checks["opcua_server"] = "storage_mode"
	}

	if time.Since(h.startTime) > h.startupGrace {
		checks["startup"] = "complete"
	} else {
		checks["startup"] = "in_progress"
		allHealthy = false
	}

	status := Status{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
	}

	w.Header().Set("Content-Type", "application/json")

	if allHealthy {
		status.Status = "ready"
		w.WriteHeader(http.StatusOK)
	} else {
		status.Status = "not_ready"
		w.WriteHeader(http.StatusServiceUnavailable)
	}

	json.NewEncoder(w).Encode(status)
}

// HandleHealth handles the combined health endpoint (for Docker HEALTHCHECK)
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	h.HandleReady(w, r)
}
