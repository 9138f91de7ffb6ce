package core

import "time"

// Snapshot is the replayed state of the building at one sensor row
type Snapshot struct {
	Row        int              `json:"row"`
	Sensor     SensorReading    `json:"sensor"`
	Energy     *EnergyRecord    `json:"energy,omitempty"`
	Equipment  *EquipmentRecord `json:"equipment,omitempty"`
	ReplayedAt time.Time        `json:"replayedAt"`
}
