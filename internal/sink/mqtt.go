// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sink

import (
	"encoding/json"
	"fmt"
	"log"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/telemetry_logger/internal/telemetry"
)

// Publisher mirrors committed records and samples to an MQTT broker as JSON.
type Publisher struct {
	client      mqtt.Client
	recordTopic string
	sampleTopic string
}

// DialMQTT connects to broker and returns a Publisher for the given topics.
func DialMQTT(broker, clientID, recordTopic, sampleTopic string) (*Publisher, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect %s: %w", broker, token.Error())
	}
	log.Printf("mqtt: connected to broker at %s", broker)

	return NewPublisher(client, recordTopic, sampleTopic), nil
}

// NewPublisher wraps an already connected client.
func NewPublisher(client mqtt.Client, recordTopic, sampleTopic string) *Publisher {
	return &Publisher{client: client, recordTopic: recordTopic, sampleTopic: sampleTopic}
}

// Append publishes a committed record (retained, so late subscribers see the
// latest row).
func (p *Publisher) Append(r telemetry.Record) error {
	return p.publish(p.recordTopic, true, r)
}

// PublishSample publishes one time-series sample.
func (p *Publisher) PublishSample(s telemetry.Sample) error {
	return p.publish(p.sampleTopic, false, s)
}

func (p *Publisher) publish(topic string, retained bool, v any) error {
	if topic == "" {
		return nil
	}
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("mqtt marshal: %w", err)
	}

	token := p.client.Publish(topic, 0, retained, payload)
	token.Wait()
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt publish %s: %w", topic, err)
	}
	return nil
}

// Close disconnects from the broker.
func (p *Publisher) Close() {
	p.client.Disconnect(250)
}
