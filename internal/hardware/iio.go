package hardware

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/oshokin/zone-monitor/internal/domain/zone"
)

const (
	// iioTemperatureFile holds the temperature in milli-degrees Celsius.
	iioTemperatureFile = "in_temp_input"
	// iioHumidityFile holds the relative humidity in milli-percent.
	iioHumidityFile = "in_humidityrelative_input"
	// milli converts IIO processed values to base units.
	milli = 1000.0
)

// IIOSensor reads environmental values exposed by Linux IIO drivers through sysfs.
type IIOSensor struct {
	// device is the IIO device directory of the temperature/humidity sensor.
	device string
	// pressureChannel is the raw ADC channel wired to the pressure sensor.
	pressureChannel string
}

// NewIIOSensor creates a reader for the given device directory and pressure channel file.
func NewIIOSensor(device, pressureChannel string) *IIOSensor {
	return &IIOSensor{
		device:          filepath.Clean(device),
		pressureChannel: filepath.Clean(pressureChannel),
	}
}

// Acquire returns temperature, humidity and pressure. Other fields are zero.
func (s *IIOSensor) Acquire(context.Context) (zone.Telemetry, error) {
	temperature, err := readIIOValue(filepath.Join(s.device, iioTemperatureFile))
	if err != nil {
		return zone.Telemetry{}, err
	}

	humidity, err := readIIOValue(filepath.Join(s.device, iioHumidityFile))
	if err != nil {
		return zone.Telemetry{}, err
	}

	pressure, err := readIIOValue(s.pressureChannel)
	if err != nil {
		return zone.Telemetry{}, err
	}

	return zone.Telemetry{
		Temperature: float64(temperature) / milli,
		Humidity:    float64(humidity) / milli,
		Pressure:    int32(pressure),
	}, nil
}

// readIIOValue parses a single integer sysfs attribute.
func readIIOValue(path string) (int64, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read iio channel: %w", err)
	}

	value, err := strconv.ParseInt(strings.TrimSpace(string(raw)), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("parse iio channel %s: %w", path, err)
	}

	return value, nil
}
