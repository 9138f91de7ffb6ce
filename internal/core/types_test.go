package core

import (
	"encoding/json"
	"errors"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNullValuesJSON(t *testing.T) {
	r := SensorReading{SensorID: "sensor_001", Temperature: SomeFloat(21.5), CO2: SomeInt(640)}

	body, err := json.Marshal(r)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"temperature":21.5`)
	assert.Contains(t, string(body), `"humidity":null`)
	assert.Contains(t, string(body), `"co2":640`)
	assert.Contains(t, string(body), `"lightLevel":null`)

	var decoded SensorReading
	require.NoError(t, json.Unmarshal(body, &decoded))
	assert.Equal(t, r, decoded)
}

func TestNullHelpers(t *testing.T) {
	assert.Equal(t, 3.5, SomeFloat(3.5).Or(1))
	assert.Equal(t, 1.0, NullFloat64{}.Or(1))
	assert.Equal(t, SomeFloat(512), SomeInt(512).Float())
	assert.False(t, NullInt{}.Float().Valid)
}

func TestErrors(t *testing.T) {
	err := &InvalidParameterError{Param: "days", Value: 0, Reason: "must be positive"}
	assert.Equal(t, "invalid parameter days=0: must be positive", err.Error())

	serErr := error(&SerializationError{Path: "out/sensors_data.csv", Err: fs.ErrPermission})
	assert.True(t, errors.Is(serErr, fs.ErrPermission))
	assert.Contains(t, serErr.Error(), "out/sensors_data.csv")
}
