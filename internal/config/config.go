// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Config holds all application configuration values.
type Config struct {
	// Serial receiver
	SerialPort     string
	SerialBaudRate int

	// Polling
	PollInterval int // milliseconds

	// Persistence
	CSVPath string

	// MQTT (optional, empty broker disables publishing)
	MQTTBroker          string
	MQTTClientIDLogger  string
	MQTTClientIDConsole string

	// Topics
	TopicRecord string
	TopicSample string

	// Web Server (0 disables)
	WebServerPort int

	// Route image written on shutdown (empty disables)
	RouteImagePath   string
	RouteImageWidth  int
	RouteImageHeight int
}

// Package-level unexported variables for singleton pattern:
//   - globalConfig: only reachable through InitGlobal and Get.
//   - configOnce: ensures InitGlobal() only runs once, even if called multiple times.
//   - configMu: write lock for initialization, read lock for Get().
var (
	globalConfig *Config
	configOnce   sync.Once
	configMu     sync.RWMutex
)

// Default returns the configuration used for keys absent from the file.
func Default() *Config {
	return &Config{
		SerialPort:          "/dev/ttyUSB1",
		SerialBaudRate:      9600,
		PollInterval:        100,
		CSVPath:             "data.csv",
		MQTTClientIDLogger:  "telemetry-logger",
		MQTTClientIDConsole: "telemetry-console",
		TopicRecord:         "telemetry/record",
		TopicSample:         "telemetry/sample",
		WebServerPort:       8080,
		RouteImageWidth:     800,
		RouteImageHeight:    600,
	}
}

// Load reads the configuration file and returns a Config struct.
func Load(configPath string) (*Config, error) {
	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	cfg := Default()
	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse KEY=VALUE
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid config line %d: %q", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		if err := cfg.setValue(key, value); err != nil {
			return nil, fmt.Errorf("config line %d: %w", lineNum, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// setValue sets a config value based on the key.
func (c *Config) setValue(key, value string) error {
	switch key {
	// Serial receiver
	case "SERIAL_PORT":
		c.SerialPort = value
	case "SERIAL_BAUD_RATE":
		rate, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid SERIAL_BAUD_RATE %q: %w", value, err)
		}
		c.SerialBaudRate = rate

	// Polling
	case "POLL_INTERVAL":
		interval, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid POLL_INTERVAL %q: %w", value, err)
		}
		c.PollInterval = interval

	// Persistence
	case "CSV_PATH":
		c.CSVPath = value

	// MQTT
	case "MQTT_BROKER":
		c.MQTTBroker = value
	case "MQTT_CLIENT_ID_LOGGER":
		c.MQTTClientIDLogger = value
	case "MQTT_CLIENT_ID_CONSOLE":
		c.MQTTClientIDConsole = value

	// Topics
	case "TOPIC_RECORD":
		c.TopicRecord = value
	case "TOPIC_SAMPLE":
		c.TopicSample = value

	// Web Server
	case "WEB_SERVER_PORT":
		port, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid WEB_SERVER_PORT %q: %w", value, err)
		}
		c.WebServerPort = port

	// Route image
	case "ROUTE_IMAGE_PATH":
		c.RouteImagePath = value
	case "ROUTE_IMAGE_WIDTH":
		w, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid ROUTE_IMAGE_WIDTH %q: %w", value, err)
		}
		c.RouteImageWidth = w
	case "ROUTE_IMAGE_HEIGHT":
		h, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid ROUTE_IMAGE_HEIGHT %q: %w", value, err)
		}
		c.RouteImageHeight = h

	default:
		return fmt.Errorf("unknown config key: %q", key)
	}

	return nil
}

// Validate checks that all required fields are set and in range.
func (c *Config) Validate() error {
	if c.SerialPort == "" {
		return fmt.Errorf("SERIAL_PORT is required")
	}
	if c.SerialBaudRate <= 0 {
		return fmt.Errorf("SERIAL_BAUD_RATE must be positive, got %d", c.SerialBaudRate)
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("POLL_INTERVAL must be positive, got %d", c.PollInterval)
	}
	if c.CSVPath == "" {
		return fmt.Errorf("CSV_PATH is required")
	}
	if c.WebServerPort < 0 || c.WebServerPort > 65535 {
		return fmt.Errorf("WEB_SERVER_PORT must be 0-65535, got %d", c.WebServerPort)
	}
	if c.RouteImagePath != "" && (c.RouteImageWidth <= 0 || c.RouteImageHeight <= 0) {
		return fmt.Errorf("ROUTE_IMAGE_WIDTH and ROUTE_IMAGE_HEIGHT must be positive")
	}
	return nil
}

// Poll returns PollInterval as a duration.
func (c *Config) Poll() time.Duration {
	return time.Duration(c.PollInterval) * time.Millisecond
}

// InitGlobal initializes the global configuration from file.
// Only the first call has any effect.
func InitGlobal(configPath string) error {
	var err error
	configOnce.Do(func() {
		configMu.Lock()
		defer configMu.Unlock()
		globalConfig, err = Load(configPath)
	})
	return err
}

// Get returns the global configuration instance.
// InitGlobal must be called first, or this will return nil.
func Get() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return globalConfig
}
