// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "telemetry_config.txt")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "# nothing but comments\n\n"))
	require.NoError(t, err)

	assert.Equal(t, "/dev/ttyUSB1", cfg.SerialPort)
	assert.Equal(t, 9600, cfg.SerialBaudRate)
	assert.Equal(t, 100*time.Millisecond, cfg.Poll())
	assert.Equal(t, "data.csv", cfg.CSVPath)
	assert.Empty(t, cfg.MQTTBroker)
	assert.Equal(t, 8080, cfg.WebServerPort)
}

func TestLoad_Overrides(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
SERIAL_PORT = /dev/serial0
SERIAL_BAUD_RATE=115200
POLL_INTERVAL=50
CSV_PATH=/var/lib/telemetry/data.csv
MQTT_BROKER=tcp://localhost:1883
TOPIC_RECORD=balloon/record
TOPIC_SAMPLE=
WEB_SERVER_PORT=0
ROUTE_IMAGE_PATH=route.png
ROUTE_IMAGE_WIDTH=400
ROUTE_IMAGE_HEIGHT=300
`))
	require.NoError(t, err)

	assert.Equal(t, "/dev/serial0", cfg.SerialPort)
	assert.Equal(t, 115200, cfg.SerialBaudRate)
	assert.Equal(t, 50*time.Millisecond, cfg.Poll())
	assert.Equal(t, "tcp://localhost:1883", cfg.MQTTBroker)
	assert.Equal(t, "balloon/record", cfg.TopicRecord)
	assert.Empty(t, cfg.TopicSample)
	assert.Zero(t, cfg.WebServerPort)
	assert.Equal(t, "route.png", cfg.RouteImagePath)
	assert.Equal(t, 400, cfg.RouteImageWidth)
}

func TestLoad_Errors(t *testing.T) {
	tests := map[string]string{
		"no equals":      "SERIAL_PORT\n",
		"unknown key":    "GPS_BAUD_RATE=9600\n",
		"bad number":     "POLL_INTERVAL=fast\n",
		"zero poll":      "POLL_INTERVAL=0\n",
		"empty csv path": "CSV_PATH=\n",
		"port range":     "WEB_SERVER_PORT=70000\n",
		"image size":     "ROUTE_IMAGE_PATH=r.png\nROUTE_IMAGE_WIDTH=0\n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body))
			assert.Error(t, err)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}

func TestInitGlobal(t *testing.T) {
	require.NoError(t, InitGlobal(writeConfig(t, "SERIAL_PORT=/dev/ttyACM0\n")))
	require.NotNil(t, Get())
	assert.Equal(t, "/dev/ttyACM0", Get().SerialPort)

	// later calls are no-ops
	require.NoError(t, InitGlobal(writeConfig(t, "SERIAL_PORT=/dev/ttyUSB9\n")))
	assert.Equal(t, "/dev/ttyACM0", Get().SerialPort)
}
