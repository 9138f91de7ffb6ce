package core

import (
	"encoding/json"
	"time"
)

// NullFloat64 is a float reading that may be absent
type NullFloat64 struct {
	Value float64
	Valid bool
}

// SomeFloat wraps a present float value
func SomeFloat(v float64) NullFloat64 {
	return NullFloat64{Value: v, Valid: true}
}

// Or returns the value, or fallback when absent
func (n NullFloat64) Or(fallback float64) float64 {
	if !n.Valid {
		return fallback
	}
	return n.Value
}

// MarshalJSON encodes an absent value as null
func (n NullFloat64) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Value)
}

// UnmarshalJSON decodes null as an absent value
func (n *NullFloat64) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*n = NullFloat64{}
		return nil
	}
	if err := json.Unmarshal(data, &n.Value); err != nil {
		return err
	}
	n.Valid = true
	return nil
}

// NullInt is an integer reading that may be absent
type NullInt struct {
	Value int
	Valid bool
}

// SomeInt wraps a present integer value
func SomeInt(v int) NullInt {
	return NullInt{Value: v, Valid: true}
}

// Float returns the value as a NullFloat64
func (n NullInt) Float() NullFloat64 {
	return NullFloat64{Value: float64(n.Value), Valid: n.Valid}
}

// MarshalJSON encodes an absent value as null
func (n NullInt) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Value)
}

// UnmarshalJSON decodes null as an absent value
func (n *NullInt) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*n = NullInt{}
		return nil
	}
	if err := json.Unmarshal(data, &n.Value); err != nil {
		return err
	}
	n.Valid = true
	return nil
}

// SensorReading is one row of the sensor table
type SensorReading struct {
	Timestamp   time.Time   `json:"timestamp"`
	SensorID    string      `json:"sensorId"`
	Zone        string      `json:"zone"`
	Temperature NullFloat64 `json:"temperature"` // °C
	Humidity    NullFloat64 `json:"humidity"`    // %
	CO2         NullInt     `json:"co2"`         // ppm
	LightLevel  NullInt     `json:"lightLevel"`  // lux
}

// EnergyRecord is one 30-minute bucket of the energy table
type EnergyRecord struct {
	Timestamp      time.Time `json:"timestamp"`
	ElectricityKWh float64   `json:"electricityKwh"`
	HeatingGcal    float64   `json:"heatingGcal"`
	TotalPowerKW   float64   `json:"totalPowerKw"`
}

// HVACStatus is the derived operating mode of the HVAC system
type HVACStatus string

const (
	HVACHeating HVACStatus = "heating"
	HVACCooling HVACStatus = "cooling"
	HVACIdle    HVACStatus = "idle"
	HVACOff     HVACStatus = "off"
)

// LightingStatus is the derived state of the lighting
type LightingStatus string

const (
	LightingOn  LightingStatus = "on"
	LightingOff LightingStatus = "off"
)

// VentilationStatus is the derived ventilation stage
type VentilationStatus string

const (
	VentilationLow    VentilationStatus = "low"
	VentilationMedium VentilationStatus = "medium"
	VentilationHigh   VentilationStatus = "high"
	VentilationOff    VentilationStatus = "off"
)

// EquipmentRecord is one 1-minute bucket of the equipment table
type EquipmentRecord struct {
	Timestamp         time.Time         `json:"timestamp"`
	HVACStatus        HVACStatus        `json:"hvacStatus"`
	LightingStatus    LightingStatus    `json:"lightingStatus"`
	VentilationStatus VentilationStatus `json:"ventilationStatus"`

	// EquipmentLoad is an independent draw. It is not modeled from any
	// of the status fields above.
	EquipmentLoad float64 `json:"equipmentLoad"`
}

// AnomalyChannel names the field an anomaly shock was applied to
type AnomalyChannel string

const (
	ChannelTemperature AnomalyChannel = "temperature"
	ChannelCO2         AnomalyChannel = "co2"
)

// Anomaly records a single injected shock
type Anomaly struct {
	Row       int            `json:"row"`
	Timestamp time.Time      `json:"timestamp"`
	SensorID  string         `json:"sensorId"`
	Channel   AnomalyChannel `json:"channel"`
	Before    NullFloat64    `json:"before"`
	After     NullFloat64    `json:"after"`
}

// Dataset bundles the tables produced by one generation run
type Dataset struct {
	Sensors   []SensorReading   `json:"sensors"`
	Energy    []EnergyRecord    `json:"energy"`
	Equipment []EquipmentRecord `json:"equipment"`
	Anomalies []Anomaly         `json:"anomalies"`
}
