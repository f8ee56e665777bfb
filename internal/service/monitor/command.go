package monitor

import (
	"context"
	"fmt"
	"net"
	"sync"

	api "github.com/oshokin/zone-monitor/internal/api/grpc/zone"
	"github.com/oshokin/zone-monitor/internal/config"
	"github.com/oshokin/zone-monitor/internal/hardware"
	"github.com/oshokin/zone-monitor/internal/logger"
	"github.com/oshokin/zone-monitor/internal/metrics"
	"github.com/oshokin/zone-monitor/internal/notify"
	"github.com/oshokin/zone-monitor/internal/transport"
	"github.com/oshokin/zone-monitor/internal/version"
)

// Options configures the zone-monitor process.
type Options struct {
	// ConfigPath to YAML settings file, defaults to standard filename if empty.
	ConfigPath string

	// SupervisorAddress overrides the supervisor address from config when specified.
	SupervisorAddress string
}

// Run loads settings, opens the hardware, connects to the supervisor and
// runs every task until ctx is canceled.
//
// Failures before the tasks start (settings, hardware, first connection
// without reconnection) are returned. Afterwards Run returns nil on shutdown.
//
//nolint:funlen // Startup is a linear sequence of wiring steps.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "zone-monitor")

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	if opts.SupervisorAddress != "" {
		cfg.SupervisorAddress = opts.SupervisorAddress
	}

	if err = logger.SetLevelFromString(cfg.LogLevel); err != nil {
		return fmt.Errorf("set log level: %w", err)
	}

	ctx = logger.WithKV(ctx, "zone_id", cfg.ZoneID)

	devices, err := hardware.Open(ctx, cfg.Hardware)
	if err != nil {
		return fmt.Errorf("open hardware: %w", err)
	}

	notifier, closeNotifier, err := buildNotifier(ctx, cfg)
	if err != nil {
		return err
	}

	defer closeNotifier()

	async := notify.NewAsync(notifier)
	monitor := New(cfg.ZoneID, devices, async, cfg.WriteTimeout)
	link := newLink(cfg)

	logger.InfoKV(ctx, "Starting zone monitor",
		"version", version.Short(),
		"supervisor_address", cfg.SupervisorAddress,
		"local_address", cfg.LocalAddress,
		"driver", cfg.Hardware.Driver,
		"reconnect", cfg.Reconnect.IsEnabled(),
	)

	// Without reconnection the first connection must succeed, as the network
	// tasks would otherwise never start.
	first, err := link.Connect(ctx)
	if err != nil {
		if !cfg.Reconnect.IsEnabled() {
			return fmt.Errorf("connect to supervisor: %w", err)
		}

		logger.WarnKV(ctx, "Supervisor unreachable, will retry", "error", err)

		first = nil
	}

	var wg sync.WaitGroup

	wg.Go(func() {
		async.Run(ctx)
	})

	if address := cfg.Metrics.ListenAddress; address != "" {
		wg.Go(func() {
			if err := metrics.Serve(ctx, address); err != nil {
				logger.ErrorKV(ctx, "Metrics endpoint failed", "error", err)
			}
		})
	}

	if address := cfg.Status.ListenAddress; address != "" {
		wg.Go(func() {
			if err := api.Serve(ctx, address, monitor); err != nil {
				logger.ErrorKV(ctx, "Status API failed", "error", err)
			}
		})
	}

	monitor.Run(ctx, link, first)

	wg.Wait()

	logger.Info(ctx, "Zone monitor stopped")

	return nil
}

// newLink builds the supervisor link described by cfg.
func newLink(cfg *config.Config) *transport.Link {
	endpoint := transport.Endpoint{
		Remote:  cfg.SupervisorAddress,
		Local:   cfg.LocalAddress,
		Timeout: cfg.DialTimeout,
	}

	var opts []transport.Option
	if cfg.Reconnect.IsEnabled() {
		opts = append(opts, transport.WithReconnect(cfg.Reconnect.InitialBackoff, cfg.Reconnect.MaxBackoff))
	}

	return transport.NewLink(func(ctx context.Context) (net.Conn, error) {
		return transport.Dial(ctx, endpoint)
	}, opts...)
}

// buildNotifier returns the log notifier, fanned out to MQTT when a broker is configured.
func buildNotifier(ctx context.Context, cfg *config.Config) (notify.Notifier, func(), error) {
	mqttCfg := cfg.Notify.MQTT
	if mqttCfg.Broker == "" {
		return notify.Log{}, func() {}, nil
	}

	if mqttCfg.ClientID == "" {
		mqttCfg.ClientID = notify.DefaultClientID(cfg.ZoneID)
	}

	client, err := notify.DialMQTT(mqttCfg, cfg.DialTimeout)
	if err != nil {
		return nil, nil, fmt.Errorf("connect alert broker: %w", err)
	}

	logger.InfoKV(ctx, "Publishing alerts to MQTT", "broker", mqttCfg.Broker, "topic", mqttCfg.Topic)

	return notify.Multi{notify.Log{}, client}, client.Close, nil
}
