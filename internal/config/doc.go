// Package config defines the zone-monitor settings and provides helpers to
// load, validate and save them in YAML format.
//
// Validate fills every optional field with its default, so a file containing
// only supervisor_addr is a complete configuration.
package config
