package protocol

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/oshokin/zone-monitor/internal/domain/zone"
)

const (
	// TelemetryFrameSize is the size of an encoded telemetry record.
	TelemetryFrameSize = 28
	// CommandFrameSize is the size of an encoded command record.
	CommandFrameSize = 8
)

// ErrShortFrame is returned when a buffer is smaller than the frame it should hold.
var ErrShortFrame = errors.New("short frame")

// byteOrder matches the supervisor's expectation (ARM host order).
//
//nolint:gochecknoglobals // Fixed wire parameter.
var byteOrder = binary.LittleEndian

// EncodeTelemetry writes t into buf, which must hold TelemetryFrameSize bytes.
//
// Layout: zone_id int32, distance float32, temperature float32,
// humidity float32, pressure int32, door int32, window int32.
func EncodeTelemetry(buf []byte, t zone.Telemetry) error {
	if len(buf) < TelemetryFrameSize {
		return fmt.Errorf("telemetry buffer of %d bytes: %w", len(buf), ErrShortFrame)
	}

	byteOrder.PutUint32(buf[0:], uint32(t.ZoneID))
	byteOrder.PutUint32(buf[4:], math.Float32bits(float32(t.Distance)))
	byteOrder.PutUint32(buf[8:], math.Float32bits(float32(t.Temperature)))
	byteOrder.PutUint32(buf[12:], math.Float32bits(float32(t.Humidity)))
	byteOrder.PutUint32(buf[16:], uint32(t.Pressure))
	byteOrder.PutUint32(buf[20:], uint32(t.Door))
	byteOrder.PutUint32(buf[24:], uint32(t.Window))

	return nil
}

// DecodeTelemetry parses a telemetry frame.
func DecodeTelemetry(buf []byte) (zone.Telemetry, error) {
	if len(buf) < TelemetryFrameSize {
		return zone.Telemetry{}, fmt.Errorf("telemetry buffer of %d bytes: %w", len(buf), ErrShortFrame)
	}

	return zone.Telemetry{
		ZoneID:      int32(byteOrder.Uint32(buf[0:])),
		Distance:    float64(math.Float32frombits(byteOrder.Uint32(buf[4:]))),
		Temperature: float64(math.Float32frombits(byteOrder.Uint32(buf[8:]))),
		Humidity:    float64(math.Float32frombits(byteOrder.Uint32(buf[12:]))),
		Pressure:    int32(byteOrder.Uint32(buf[16:])),
		Door:        zone.Status(int32(byteOrder.Uint32(buf[20:]))),
		Window:      zone.Status(int32(byteOrder.Uint32(buf[24:]))),
	}, nil
}

// EncodeCommand writes c into buf, which must hold CommandFrameSize bytes.
//
// Layout: window_command int32, sleep_alert int32.
func EncodeCommand(buf []byte, c zone.Command) error {
	if len(buf) < CommandFrameSize {
		return fmt.Errorf("command buffer of %d bytes: %w", len(buf), ErrShortFrame)
	}

	byteOrder.PutUint32(buf[0:], uint32(c.Window))
	byteOrder.PutUint32(buf[4:], uint32(c.SleepAlert))

	return nil
}

// DecodeCommand parses a command frame.
func DecodeCommand(buf []byte) (zone.Command, error) {
	if len(buf) < CommandFrameSize {
		return zone.Command{}, fmt.Errorf("command buffer of %d bytes: %w", len(buf), ErrShortFrame)
	}

	return zone.Command{
		Window:     zone.WindowCommand(int32(byteOrder.Uint32(buf[0:]))),
		SleepAlert: zone.Status(int32(byteOrder.Uint32(buf[4:]))),
	}, nil
}

// WriteTelemetry sends one telemetry frame.
func WriteTelemetry(w io.Writer, t zone.Telemetry) error {
	var buf [TelemetryFrameSize]byte

	if err := EncodeTelemetry(buf[:], t); err != nil {
		return err
	}

	if _, err := w.Write(buf[:]); err != nil {
		return fmt.Errorf("write telemetry frame: %w", err)
	}

	return nil
}

// ReadTelemetry blocks until one full telemetry frame has been read.
func ReadTelemetry(r io.Reader) (zone.Telemetry, error) {
	var buf [TelemetryFrameSize]byte

	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return zone.Telemetry{}, fmt.Errorf("read telemetry frame: %w", err)
	}

	return DecodeTelemetry(buf[:])
}

// WriteCommand sends one command frame.
func WriteCommand(w io.Writer, c zone.Command) error {
	var buf [CommandFrameSize]byte

	if err := EncodeCommand(buf[:], c); err != nil {
		return err
	}

	if _, err := w.Write(buf[:]); err != nil {
		return fmt.Errorf("write command frame: %w", err)
	}

	return nil
}

// ReadCommand blocks until one full command frame has been read.
func ReadCommand(r io.Reader) (zone.Command, error) {
	var buf [CommandFrameSize]byte

	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return zone.Command{}, fmt.Errorf("read command frame: %w", err)
	}

	return DecodeCommand(buf[:])
}
