package api

import (
	"github.com/sebastiankruger/building-simulator/internal/core"
	"github.com/sebastiankruger/building-simulator/internal/replay"
)

// StatusResponse is returned by GET /api/status
type StatusResponse struct {
	Mode          string         `json:"mode"`
	SimulatorName string         `json:"simulatorName"`
	Namespace     uint16         `json:"namespace"`
	Replay        replay.Status  `json:"replay"`
	Current       *core.Snapshot `json:"current,omitempty"`
	Nodes         []NodeInfo     `json:"nodes"`
}

// NodeInfo describes an OPC UA node
type NodeInfo struct {
	Name        string `json:"name"`
	NodeID      string `json:"nodeId"`
	DataType    string `json:"dataType"`
	Unit        string `json:"unit,omitempty"`
	Description string `json:"description,omitempty"`
}

// SensorsResponse is returned by GET /api/sensors
type SensorsResponse struct {
	Count    int                  `json:"count"`
	Readings []core.SensorReading `json:"readings"`
}

// EnergyResponse is returned by GET /api/energy
type EnergyResponse struct {
	Count   int                 `json:"count"`
	Records []core.EnergyRecord `json:"records"`
}

// EquipmentResponse is returned by GET /api/equipment
type EquipmentResponse struct {
	Count   int                    `json:"count"`
	Records []core.EquipmentRecord `json:"records"`
}

// ConfigResponse is returned by GET /api/config
type ConfigResponse struct {
	ReplaySpeed       float64 `json:"replaySpeed"`
	Loop              bool    `json:"loop"`
	BaseInterval      string  `json:"baseInterval"`
	EffectiveInterval string  `json:"effectiveInterval"`
}

// ConfigUpdateRequest is used for POST /api/config
type ConfigUpdateRequest struct {
	ReplaySpeed *float64 `json:"replaySpeed,omitempty"`
	Loop        *bool    `json:"loop,omitempty"`
}
