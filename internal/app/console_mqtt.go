// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/telemetry_logger/internal/config"
	"github.com/relabs-tech/telemetry_logger/internal/telemetry"
)

// RunConsoleMQTT prints committed records and samples published by the logger.
func RunConsoleMQTT() error {
	cfg := config.Get()
	if cfg == nil {
		return errors.New("config not initialized")
	}
	if cfg.MQTTBroker == "" {
		return errors.New("MQTT_BROKER is required for the console")
	}

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDConsole)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	log.Printf("console: connected to MQTT broker at %s", cfg.MQTTBroker)

	// Subscribe to committed records
	recordToken := client.Subscribe(cfg.TopicRecord, 0, func(_ mqtt.Client, msg mqtt.Message) {
		line, err := formatRecord(msg.Payload())
		if err != nil {
			log.Printf("console: record unmarshal error: %v", err)
			return
		}
		fmt.Println(line)
	})
	recordToken.Wait()
	if recordToken.Error() != nil {
		return recordToken.Error()
	}
	log.Printf("console: subscribed to %s", cfg.TopicRecord)

	// Subscribe to samples
	if cfg.TopicSample != "" {
		sampleToken := client.Subscribe(cfg.TopicSample, 0, func(_ mqtt.Client, msg mqtt.Message) {
			line, err := formatSample(msg.Payload())
			if err != nil {
				log.Printf("console: sample unmarshal error: %v", err)
				return
			}
			fmt.Println(line)
		})
		sampleToken.Wait()
		if sampleToken.Error() != nil {
			return sampleToken.Error()
		}
		log.Printf("console: subscribed to %s", cfg.TopicSample)
	}

	// Wait for Ctrl+C
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Println("console: shutting down")
	client.Disconnect(250)
	return nil
}

func formatRecord(payload []byte) (string, error) {
	var r telemetry.Record
	if err := json.Unmarshal(payload, &r); err != nil {
		return "", err
	}
	return fmt.Sprintf(
		"[REC ]  %s %s  T=%s  H=%s  P=%s  lat=%s lon=%s  alt=%s  v=%s",
		r.Get(telemetry.Date), r.Get(telemetry.Time),
		r.Get(telemetry.Temperature), r.Get(telemetry.Humidity), r.Get(telemetry.Pressure),
		r.Get(telemetry.Latitude), r.Get(telemetry.Longitude),
		r.Get(telemetry.Altitude), r.Get(telemetry.Speed),
	), nil
}

func formatSample(payload []byte) (string, error) {
	var s telemetry.Sample
	if err := json.Unmarshal(payload, &s); err != nil {
		return "", err
	}
	return sampleLine(s), nil
}

func sampleLine(s telemetry.Sample) string {
	return fmt.Sprintf(
		"[SMPL]  %s  T=%6.2f  H=%6.2f  P=%8.2f  alt=%7.2f  v=%6.2f",
		s.Timestamp.Format(telemetry.ClockLayout),
		s.Temperature, s.Humidity, s.Pressure, s.Altitude, s.Speed,
	)
}
