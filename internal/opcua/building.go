package opcua

import (
	"context"
	"time"

	"github.com/sebastiankruger/building-simulator/internal/core"
)

// BuildingFolder is the folder holding all building nodes
const BuildingFolder = "Building"

// BuildingNodes returns the variable nodes of the building namespace.
// Every optional sensor value has a companion <Name>Valid flag.
func BuildingNodes() []core.NodeDefinition {
	return []core.NodeDefinition{
		{Name: "SensorID", DisplayName: "Sensor ID", Description: "Sensor of the replayed reading", DataType: core.DataTypeString, InitialValue: ""},
		{Name: "Zone", DisplayName: "Zone", Description: "Zone of the replayed reading", DataType: core.DataTypeString, InitialValue: ""},
		{Name: "ReadingTime", DisplayName: "Reading Time", Description: "Timestamp of the replayed reading", DataType: core.DataTypeDateTime, InitialValue: time.Time{}},
		{Name: "Temperature", DisplayName: "Temperature", Description: "Air temperature", DataType: core.DataTypeDouble, Unit: "°C", InitialValue: 0.0},
		{Name: "TemperatureValid", DisplayName: "Temperature Valid", Description: "Temperature value present", DataType: core.DataTypeBool, InitialValue: false},
		{Name: "Humidity", DisplayName: "Humidity", Description: "Relative humidity", DataType: core.DataTypeDouble, Unit: "%", InitialValue: 0.0},
		{Name: "HumidityValid", DisplayName: "Humidity Valid", Description: "Humidity value present", DataType: core.DataTypeBool, InitialValue: false},
		{Name: "CO2", DisplayName: "CO2", Description: "CO2 concentration", DataType: core.DataTypeInt32, Unit: "ppm", InitialValue: int32(0)},
		{Name: "CO2Valid", DisplayName: "CO2 Valid", Description: "CO2 value present", DataType: core.DataTypeBool, InitialValue: false},
		{Name: "LightLevel", DisplayName: "Light Level", Description: "Illuminance", DataType: core.DataTypeInt32, Unit: "lux", InitialValue: int32(0)},
		{Name: "LightLevelValid", DisplayName: "Light Level Valid", Description: "Light level value present", DataType: core.DataTypeBool, InitialValue: false},
		{Name: "ElectricityKWh", DisplayName: "Electricity", Description: "Electricity of the current 30-minute bucket", DataType: core.DataTypeDouble, Unit: "kWh", InitialValue: 0.0},
		{Name: "HeatingGcal", DisplayName: "Heating", Description: "District heating of the current 30-minute bucket", DataType: core.DataTypeDouble, Unit: "Gcal", InitialValue: 0.0},
		{Name: "TotalPowerKW", DisplayName: "Total Power", Description: "Average power of the current 30-minute bucket", DataType: core.DataTypeDouble, Unit: "kW", InitialValue: 0.0},
		{Name: "HVACStatus", DisplayName: "HVAC Status", Description: "heating, cooling, idle or off", DataType: core.DataTypeString, InitialValue: string(core.HVACOff)},
		{Name: "LightingStatus", DisplayName: "Lighting Status", Description: "on or off", DataType: core.DataTypeString, InitialValue: string(core.LightingOff)},
		{Name: "VentilationStatus", DisplayName: "Ventilation Status", Description: "low, medium, high or off", DataType: core.DataTypeString, InitialValue: string(core.VentilationOff)},
		{Name: "EquipmentLoad", DisplayName: "Equipment Load", Description: "Equipment load fraction", DataType: core.DataTypeDouble, InitialValue: 0.0},
	}
}

// RegisterBuilding registers the building namespace
func (s *Server) RegisterBuilding() error {
	return s.RegisterNamespace(core.NamespaceBuilding, BuildingFolder, "Smart building sensor, energy and equipment data", BuildingNodes())
}

// SnapshotValues maps a snapshot onto building node values.
// Energy and equipment nodes are left out when the snapshot has no row for them.
func SnapshotValues(snap core.Snapshot) map[string]interface{} {
	r := snap.Sensor
	values := map[string]interface{}{
		"SensorID":         r.SensorID,
		"Zone":             r.Zone,
		"ReadingTime":      r.Timestamp,
		"Temperature":      r.Temperature.Or(0),
		"TemperatureValid": r.Temperature.Valid,
		"Humidity":         r.Humidity.Or(0),
		"HumidityValid":    r.Humidity.Valid,
		"CO2":              int32(r.CO2.Value),
		"CO2Valid":         r.CO2.Valid,
		"LightLevel":       int32(r.LightLevel.Value),
		"LightLevelValid":  r.LightLevel.Valid,
	}

	if e := snap.Energy; e != nil {
		values["ElectricityKWh"] = e.ElectricityKWh
		values["HeatingGcal"] = e.HeatingGcal
		values["TotalPowerKW"] = e.TotalPowerKW
	}
	if q := snap.Equipment; q != nil {
		values["HVACStatus"] = string(q.HVACStatus)
		values["LightingStatus"] = string(q.LightingStatus)
		values["VentilationStatus"] = string(q.VentilationStatus)
		values["EquipmentLoad"] = q.EquipmentLoad
	}
	return values
}

// Name identifies the OPC UA sink in logs and metrics
func (s *Server) Name() string {
	return "opcua"
}

// Publish writes a replay snapshot to the building namespace
func (s *Server) Publish(_ context.Context, snap core.Snapshot) error {
	s.UpdateNamespaceValues(core.NamespaceBuilding, SnapshotValues(snap))
	return nil
}
