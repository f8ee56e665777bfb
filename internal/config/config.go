package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds every setting of the zone-monitor binary.
type Config struct {
	// ZoneID identifies this zone in telemetry frames.
	ZoneID int32 `yaml:"zone_id"`
	// SupervisorAddress is the host:port of the remote supervisor.
	SupervisorAddress string `yaml:"supervisor_addr"`
	// LocalAddress is the local endpoint bound before connecting.
	LocalAddress string `yaml:"local_addr"`
	// DialTimeout bounds a single connection attempt.
	DialTimeout time.Duration `yaml:"dial_timeout"`
	// WriteTimeout bounds sending one telemetry frame.
	WriteTimeout time.Duration `yaml:"write_timeout"`
	// Reconnect controls what happens after a transport fault.
	Reconnect Reconnect `yaml:"reconnect"`
	// LogLevel is the minimum level of emitted log messages.
	LogLevel string `yaml:"log_level"`
	// Hardware selects and wires the sensor and actuator drivers.
	Hardware Hardware `yaml:"hardware"`
	// Status configures the local gRPC status API.
	Status Status `yaml:"status"`
	// Metrics configures the Prometheus endpoint.
	Metrics Metrics `yaml:"metrics"`
	// Notify configures where alert events are delivered.
	Notify Notify `yaml:"notify"`
}

// Reconnect describes the backoff policy of the supervisor link.
type Reconnect struct {
	// Enabled turns reconnection on. When off, a transport fault ends both network tasks.
	Enabled *bool `yaml:"enabled"`
	// InitialBackoff is the first delay after a fault.
	InitialBackoff time.Duration `yaml:"initial_backoff"`
	// MaxBackoff caps the exponential delay.
	MaxBackoff time.Duration `yaml:"max_backoff"`
}

// IsEnabled reports whether reconnection is on. It defaults to true.
func (r Reconnect) IsEnabled() bool {
	return r.Enabled == nil || *r.Enabled
}

// Hardware lists driver settings. Pin names follow periph naming (e.g. "GPIO17").
type Hardware struct {
	// Driver is either DriverPeriph or DriverSimulated.
	Driver string `yaml:"driver"`
	// BuzzerPin drives the buzzer.
	BuzzerPin string `yaml:"buzzer_pin"`
	// VibratorPin drives the vibration motor.
	VibratorPin string `yaml:"vibrator_pin"`
	// DoorPin reads the door switch; high means open.
	DoorPin string `yaml:"door_pin"`
	// ServoPin outputs the servo PWM signal.
	ServoPin string `yaml:"servo_pin"`
	// TriggerPin starts an ultrasonic measurement.
	TriggerPin string `yaml:"trigger_pin"`
	// EchoPin receives the ultrasonic echo pulse.
	EchoPin string `yaml:"echo_pin"`
	// IIODevice is the sysfs directory of the environmental sensor.
	IIODevice string `yaml:"iio_device"`
	// PressureChannel is the IIO raw channel file of the pressure sensor.
	PressureChannel string `yaml:"pressure_channel"`
}

// Status configures the gRPC status API.
type Status struct {
	// ListenAddress is empty to disable the API.
	ListenAddress string `yaml:"listen_addr"`
}

// Metrics configures the Prometheus endpoint.
type Metrics struct {
	// ListenAddress is empty to disable the endpoint.
	ListenAddress string `yaml:"listen_addr"`
}

// Notify configures alert delivery.
type Notify struct {
	// MQTT publishes alert events to a broker when Broker is set.
	MQTT MQTT `yaml:"mqtt"`
}

// MQTT holds broker connection settings.
type MQTT struct {
	// Broker is the broker URL, e.g. tcp://localhost:1883.
	Broker string `yaml:"broker"`
	// Topic receives the JSON alert events.
	Topic string `yaml:"topic"`
	// ClientID identifies this zone on the broker.
	ClientID string `yaml:"client_id"`
	// Username is optional.
	Username string `yaml:"username"`
	// Password is optional.
	Password string `yaml:"password"`
}

const (
	// DefaultConfigFilename is the default filename for monitor settings.
	DefaultConfigFilename = "zone-monitor.yaml"

	// DefaultSupervisorAddress is the supervisor endpoint used by the field deployment.
	DefaultSupervisorAddress = "192.168.137.1:12345"

	// DefaultLocalAddress binds the fixed source port expected by the supervisor.
	DefaultLocalAddress = ":11111"

	// DefaultTimeout is the default duration for network operations.
	DefaultTimeout = 5 * time.Second

	// DefaultInitialBackoff is the first reconnect delay.
	DefaultInitialBackoff = 1 * time.Second

	// DefaultMaxBackoff caps the reconnect delay.
	DefaultMaxBackoff = 30 * time.Second

	// DefaultZoneID is used when zone_id is missing.
	DefaultZoneID = 1

	// DefaultMQTTTopic is the topic used when only a broker is configured.
	DefaultMQTTTopic = "zones/alerts"

	// DefaultFilePermissions is the default file permission for config files.
	DefaultFilePermissions = 0o600
)

const (
	// DriverPeriph talks to real GPIO, PWM and IIO hardware.
	DriverPeriph = "periph"
	// DriverSimulated uses in-process fakes.
	DriverSimulated = "simulated"
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errUnknownDriver is returned for an unsupported hardware driver.
	errUnknownDriver = errors.New("unknown hardware driver")
	// errBackoffOrder is returned when the initial backoff exceeds the maximum.
	errBackoffOrder = errors.New("initial backoff exceeds max backoff")
)

// Default returns a validated configuration with every default applied.
func Default() *Config {
	cfg := new(Config)

	//nolint:errcheck // Defaults always validate.
	_ = Validate(cfg)

	return cfg
}

// Load reads configuration from the provided path and validates essential fields.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes the configuration to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks the provided settings and fills in defaults.
//
//nolint:cyclop // A flat list of defaults reads better than helpers.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if cfg.ZoneID == 0 {
		cfg.ZoneID = DefaultZoneID
	}

	if cfg.SupervisorAddress == "" {
		cfg.SupervisorAddress = DefaultSupervisorAddress
	}

	if _, _, err := net.SplitHostPort(cfg.SupervisorAddress); err != nil {
		return fmt.Errorf("invalid supervisor address: %w", err)
	}

	if cfg.LocalAddress == "" {
		cfg.LocalAddress = DefaultLocalAddress
	}

	if _, _, err := net.SplitHostPort(cfg.LocalAddress); err != nil {
		return fmt.Errorf("invalid local address: %w", err)
	}

	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = DefaultTimeout
	}

	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = DefaultTimeout
	}

	if cfg.Reconnect.InitialBackoff <= 0 {
		cfg.Reconnect.InitialBackoff = DefaultInitialBackoff
	}

	if cfg.Reconnect.MaxBackoff <= 0 {
		cfg.Reconnect.MaxBackoff = DefaultMaxBackoff
	}

	if cfg.Reconnect.InitialBackoff > cfg.Reconnect.MaxBackoff {
		return errBackoffOrder
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	if err := validateHardware(&cfg.Hardware); err != nil {
		return err
	}

	if cfg.Notify.MQTT.Broker != "" && cfg.Notify.MQTT.Topic == "" {
		cfg.Notify.MQTT.Topic = DefaultMQTTTopic
	}

	return nil
}

// validateHardware applies driver and pin defaults matching the reference board wiring.
func validateHardware(hw *Hardware) error {
	switch hw.Driver {
	case "":
		hw.Driver = DriverSimulated
	case DriverPeriph, DriverSimulated:
	default:
		return fmt.Errorf("%q: %w", hw.Driver, errUnknownDriver)
	}

	defaults := []struct {
		field *string
		value string
	}{
		{&hw.BuzzerPin, "GPIO17"},
		{&hw.VibratorPin, "GPIO27"},
		{&hw.DoorPin, "GPIO22"},
		{&hw.ServoPin, "GPIO18"},
		{&hw.TriggerPin, "GPIO23"},
		{&hw.EchoPin, "GPIO24"},
		{&hw.IIODevice, "/sys/bus/iio/devices/iio:device0"},
		{&hw.PressureChannel, "/sys/bus/iio/devices/iio:device1/in_voltage0_raw"},
	}

	for _, d := range defaults {
		if *d.field == "" {
			*d.field = d.value
		}
	}

	return nil
}
