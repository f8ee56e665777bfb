// Package metrics exposes Prometheus counters for the zone monitor.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/oshokin/zone-monitor/internal/logger"
)

// TelemetrySent counts telemetry frames written to the supervisor.
//
//nolint:gochecknoglobals // Prometheus collectors are registered once per process.
var TelemetrySent = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: "zone_telemetry_frames_sent_total",
		Help: "Telemetry frames sent to the supervisor",
	},
)

// SensorFailures counts failed sensor acquisitions.
//
//nolint:gochecknoglobals // Prometheus collectors are registered once per process.
var SensorFailures = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: "zone_sensor_acquire_failures_total",
		Help: "Sensor acquisitions that returned an error",
	},
)

// CommandsReceived counts command frames merged into the command state.
//
//nolint:gochecknoglobals // Prometheus collectors are registered once per process.
var CommandsReceived = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: "zone_command_frames_received_total",
		Help: "Command frames received from the supervisor",
	},
)

// WindowActuations counts servo travel sequences, labeled by direction.
//
//nolint:gochecknoglobals // Prometheus collectors are registered once per process.
var WindowActuations = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "zone_window_actuations_total",
		Help: "Window servo travel sequences started",
	},
	[]string{"direction"},
)

// ActuatorErrors counts errors reported by servo, buzzer or vibrator drivers.
//
//nolint:gochecknoglobals // Prometheus collectors are registered once per process.
var ActuatorErrors = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "zone_actuator_errors_total",
		Help: "Errors returned by actuator drivers",
	},
	[]string{"actuator"},
)

// AlertsFired counts alarm pulses, labeled by alert kind.
//
//nolint:gochecknoglobals // Prometheus collectors are registered once per process.
var AlertsFired = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "zone_alerts_fired_total",
		Help: "Alarm pulses fired by the alert monitor",
	},
	[]string{"kind"},
)

// LinkReconnects counts connection attempts after a transport fault.
//
//nolint:gochecknoglobals // Prometheus collectors are registered once per process.
var LinkReconnects = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: "zone_link_reconnects_total",
		Help: "Reconnect attempts to the supervisor",
	},
)

// readHeaderTimeout guards the metrics endpoint against slow clients.
const readHeaderTimeout = 5 * time.Second

// Serve exposes /metrics on address until ctx is canceled.
func Serve(ctx context.Context, address string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              address,
		Handler:           mux,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		<-ctx.Done()

		//nolint:contextcheck // The parent context is already canceled here.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), readHeaderTimeout)
		defer cancel()

		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.InfoKV(ctx, "Prometheus metrics available", "listen_address", address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve metrics: %w", err)
	}

	return nil
}
