// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package telemetry

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_KnownFields(t *testing.T) {
	tests := []struct {
		line  string
		field Field
		value string
	}{
		{"Date: 2024-05-01", Date, "2024-05-01"},
		{"Time: 10:00:01", Time, "10:00:01"},
		{"Temperature: 23.5 C", Temperature, "23.5 C"},
		{"Humidity: nan", Humidity, "nan"},
		{"Pressure: 1013.25 hPa", Pressure, "1013.25 hPa"},
		{"Latitude: 52.520008", Latitude, "52.520008"},
		{"Longitude: 13.404954", Longitude, "13.404954"},
		{"Altitude: 34.10 m", Altitude, "34.10 m"},
		{"Speed: 12.40 km/h\r\n", Speed, "12.40 km/h"},
	}

	for _, tt := range tests {
		t.Run(tt.field.String(), func(t *testing.T) {
			r, err := Decode(tt.line)
			require.NoError(t, err)
			assert.Equal(t, tt.field, r.Field)
			assert.Equal(t, tt.value, r.Value)
		})
	}
}

func TestDecode_Unrecognized(t *testing.T) {
	for _, line := range []string{
		"",
		"hello sensor",
		"Voltage: 3.3 V",
		"Time:10:00:01",
		"Time: ",
		"temperature: 20.0 C",
	} {
		_, err := Decode(line)
		require.Error(t, err, "line %q", line)

		var ule *UnrecognizedLineError
		assert.True(t, errors.As(err, &ule))
	}
}

func TestDecode_MalformedNumericPassesThrough(t *testing.T) {
	r, err := Decode("Temperature: warm")
	require.NoError(t, err)
	assert.Equal(t, "warm", r.Value)
}

func TestSentinelTable_Accept(t *testing.T) {
	s := DefaultSentinels()

	assert.False(t, s.Accept(Humidity, "nan"))
	assert.False(t, s.Accept(Latitude, "00.000000"))
	assert.False(t, s.Accept(Longitude, "00.000000"))
	assert.False(t, s.Accept(Altitude, "0.00"))
	assert.False(t, s.Accept(Speed, "0.00"))

	assert.True(t, s.Accept(Humidity, "45.2 %"))
	assert.True(t, s.Accept(Speed, "0.01"))
	assert.True(t, s.Accept(Speed, "0.0"))
	assert.True(t, s.Accept(Time, ""))
	assert.True(t, s.Accept(Temperature, "0.00"))
	assert.True(t, s.Accept(Pressure, "nan"))
}

func TestRecord_JSON(t *testing.T) {
	var r Record
	r.set(Time, "10:00:01")
	r.set(Temperature, "20.0 C")

	data, err := r.MarshalJSON()
	require.NoError(t, err)

	var back Record
	require.NoError(t, back.UnmarshalJSON(data))
	assert.Equal(t, r, back)
	assert.Equal(t, []string{"", "10:00:01", "20.0 C", "", "", "", "", "", ""}, back.Values())
}
