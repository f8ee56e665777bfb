package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/oshokin/zone-monitor/internal/config"
)

const (
	// mqttQoS delivers each event at least once.
	mqttQoS = 1
	// mqttDisconnectQuiesce is the time given to in-flight messages on Close, in milliseconds.
	mqttDisconnectQuiesce = 250
)

// errTimeout is returned when the broker does not acknowledge in time.
var errTimeout = errors.New("timed out")

// MQTT publishes alert events to a broker.
type MQTT struct {
	// client is the connected paho client.
	client mqtt.Client
	// topic receives the JSON events.
	topic string
	// timeout bounds connect and publish waits.
	timeout time.Duration
}

// DialMQTT connects to the broker described by cfg.
func DialMQTT(cfg config.MQTT, timeout time.Duration) (*MQTT, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)
	opts.SetConnectTimeout(timeout)
	opts.SetAutoReconnect(true)
	opts.SetCleanSession(true)

	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}

	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}

	client := mqtt.NewClient(opts)

	token := client.Connect()
	if !token.WaitTimeout(timeout) {
		return nil, fmt.Errorf("connect to mqtt broker %s: %w", cfg.Broker, errTimeout)
	}

	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to mqtt broker %s: %w", cfg.Broker, err)
	}

	return &MQTT{
		client:  client,
		topic:   cfg.Topic,
		timeout: timeout,
	}, nil
}

// Notify publishes the event as JSON.
func (m *MQTT) Notify(_ context.Context, event Event) error {
	payload, err := EncodeEvent(event)
	if err != nil {
		return err
	}

	token := m.client.Publish(m.topic, mqttQoS, false, payload)
	if !token.WaitTimeout(m.timeout) {
		return fmt.Errorf("publish to %s: %w", m.topic, errTimeout)
	}

	if err = token.Error(); err != nil {
		return fmt.Errorf("publish to %s: %w", m.topic, err)
	}

	return nil
}

// Close disconnects from the broker.
func (m *MQTT) Close() {
	m.client.Disconnect(mqttDisconnectQuiesce)
}

// EncodeEvent renders the MQTT payload of an event.
func EncodeEvent(event Event) ([]byte, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("encode alert event: %w", err)
	}

	return payload, nil
}

// DefaultClientID names a broker session after the host and the zone.
// The random suffix keeps a restarted process from colliding with its stale session.
func DefaultClientID(zoneID int32) string {
	hostname, err := os.Hostname()
	if err != nil || hostname == "" {
		hostname = "zone-monitor"
	}

	return fmt.Sprintf("%s-zone%d-%s", hostname, zoneID, uuid.NewString()[:8])
}
