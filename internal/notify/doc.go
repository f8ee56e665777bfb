// Package notify delivers alert events fired by the alert monitor.
//
// Log writes every event to the structured log. MQTT additionally publishes a
// JSON document per event to a broker so that a building dashboard can react.
package notify
