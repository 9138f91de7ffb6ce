package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/sebastiankruger/building-simulator/internal/comfort"
	"github.com/sebastiankruger/building-simulator/internal/config"
	"github.com/sebastiankruger/building-simulator/internal/core"
	"github.com/sebastiankruger/building-simulator/internal/opcua"
	"github.com/sebastiankruger/building-simulator/internal/replay"
)

// DefaultWindow is the number of rows returned when ?last is not given
const DefaultWindow = 200

// Handler handles REST API requests for the replay service
type Handler struct {
	simulatorName string
	runner        *replay.Runner
	runtime       *config.RuntimeConfig
	nodes         []NodeInfo
}

// NewHandler creates an API handler for a running replay
func NewHandler(name string, runner *replay.Runner, runtime *config.RuntimeConfig) *Handler {
	return &Handler{
		simulatorName: name,
		runner:        runner,
		runtime:       runtime,
		nodes:         buildingNodeInfo(),
	}
}

// Register adds all API routes to mux
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/status", h.HandleStatus)
	mux.HandleFunc("/api/sensors", h.HandleSensors)
	mux.HandleFunc("/api/energy", h.HandleEnergy)
	mux.HandleFunc("/api/equipment", h.HandleEquipment)
	mux.HandleFunc("/api/summary", h.HandleSummary)
	mux.HandleFunc("/api/config", h.HandleConfig)
}

func buildingNodeInfo() []NodeInfo {
	defs := opcua.BuildingNodes()
	nodes := make([]NodeInfo, 0, len(defs))
	for _, nd := range defs {
		nodes = append(nodes, NodeInfo{
			Name:        nd.Name,
			NodeID:      fmt.Sprintf("ns=%d;s=%s.%s", core.NamespaceBuilding, opcua.BuildingFolder, nd.Name),
			DataType:    nd.DataType.String(),
			Unit:        nd.Unit,
			Description: nd.Description,
		})
	}
	return nodes
}

// HandleStatus handles GET /api/status
func (h *Handler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	resp := StatusResponse{
		Mode:          config.ModeReplay,
		SimulatorName: h.simulatorName,
		Namespace:     core.NamespaceBuilding,
		Replay:        h.runner.Status(),
		Nodes:         h.nodes,
	}
	if snap, ok := h.runner.Snapshot(); ok {
		resp.Current = &snap
	}

	h.writeJSON(w, resp)
}

// HandleSensors handles GET /api/sensors?last=N
func (h *Handler) HandleSensors(w http.ResponseWriter, r *http.Request) {
	last, ok := h.window(w, r)
	if !ok {
		return
	}
	readings := h.runner.Sensors(last)
	h.writeJSON(w, SensorsResponse{Count: len(readings), Readings: readings})
}

// HandleEnergy handles GET /api/energy?last=N
func (h *Handler) HandleEnergy(w http.ResponseWriter, r *http.Request) {
	last, ok := h.window(w, r)
	if !ok {
		return
	}
	records := h.runner.Energy(last)
	if records == nil {
		records = []core.EnergyRecord{}
	}
	h.writeJSON(w, EnergyResponse{Count: len(records), Records: records})
}

// HandleEquipment handles GET /api/equipment?last=N
func (h *Handler) HandleEquipment(w http.ResponseWriter, r *http.Request) {
	last, ok := h.window(w, r)
	if !ok {
		return
	}
	records := h.runner.Equipment(last)
	if records == nil {
		records = []core.EquipmentRecord{}
	}
	h.writeJSON(w, EquipmentResponse{Count: len(records), Records: records})
}

// HandleSummary handles GET /api/summary?last=N
func (h *Handler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	last, ok := h.window(w, r)
	if !ok {
		return
	}
	h.writeJSON(w, comfort.Summarize(comfort.Window(h.runner.Sensors(0), last)))
}

// window parses ?last for GET requests. Zero means every replayed row.
func (h *Handler) window(w http.ResponseWriter, r *http.Request) (int, bool) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return 0, false
	}

	value := r.URL.Query().Get("last")
	if value == "" {
		return DefaultWindow, true
	}
	last, err := strconv.Atoi(value)
	if err != nil || last < 0 {
		http.Error(w, "last must be a non-negative integer", http.StatusBadRequest)
		return 0, false
	}
	return last, true
}

func (h *Handler) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// HandleConfig handles GET and POST /api/config
func (h *Handler) HandleConfig(w http.ResponseWriter, r *http.Request) {
	// Handle CORS preflight
	if r.Method == http.MethodOptions {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.WriteHeader(http.StatusOK)
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.writeJSON(w, h.configResponse())
	case http.MethodPost:
		h.handleConfigUpdate(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handleConfigUpdate(w http.ResponseWriter, r *http.Request) {
	var req ConfigUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	if req.ReplaySpeed != nil {
		if err := h.runtime.SetReplaySpeed(*req.ReplaySpeed); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}
	if req.Loop != nil {
		h.runtime.SetLoop(*req.Loop)
	}

	h.writeJSON(w, h.configResponse())
}

func (h *Handler) configResponse() ConfigResponse {
	snapshot := h.runtime.Snapshot()
	return ConfigResponse{
		ReplaySpeed:       snapshot.ReplaySpeed,
		Loop:              snapshot.Loop,
		BaseInterval:      snapshot.BaseInterval.String(),
		EffectiveInterval: snapshot.EffectiveInterval.String(),
	}
}
