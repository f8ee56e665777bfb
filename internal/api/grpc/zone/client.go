package zone

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/oshokin/zone-monitor/internal/config"
	domain "github.com/oshokin/zone-monitor/internal/domain/zone"
)

// Client calls the ZoneStatus service.
type Client struct {
	// conn carries the RPCs.
	conn grpc.ClientConnInterface
	// closer releases conn when the client owns it.
	closer func() error

	// callTimeout is the default timeout for individual RPC calls.
	callTimeout time.Duration
}

// Option configures client behaviour.
type Option func(*Client)

// WithCallTimeout sets a default timeout for service calls.
func WithCallTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.callTimeout = timeout
		}
	}
}

// errAddressRequired is returned when the status API address is missing.
var errAddressRequired = errors.New("address must be provided")

// NewClient wraps an existing connection. The caller keeps ownership of conn.
func NewClient(conn grpc.ClientConnInterface, opts ...Option) *Client {
	client := &Client{
		conn:        conn,
		callTimeout: config.DefaultTimeout,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// Dial connects to a status API. The transport is unauthenticated and meant for the local network.
func Dial(address string, opts ...Option) (*Client, error) {
	if address == "" {
		return nil, errAddressRequired
	}

	conn, err := grpc.NewClient(address, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("dial status API: %w", err)
	}

	client := NewClient(conn, opts...)
	client.closer = conn.Close

	return client, nil
}

// Close releases the connection opened by Dial.
func (c *Client) Close() error {
	if c == nil || c.closer == nil {
		return nil
	}

	return c.closer()
}

// GetTelemetry fetches the telemetry snapshot.
func (c *Client) GetTelemetry(ctx context.Context) (domain.Telemetry, error) {
	response, err := c.call(ctx, getTelemetryMethod)
	if err != nil {
		return domain.Telemetry{}, fmt.Errorf("get telemetry: %w", err)
	}

	return TelemetryFromStruct(response), nil
}

// GetCommand fetches the command snapshot.
func (c *Client) GetCommand(ctx context.Context) (domain.Command, error) {
	response, err := c.call(ctx, getCommandMethod)
	if err != nil {
		return domain.Command{}, fmt.Errorf("get command: %w", err)
	}

	return CommandFromStruct(response), nil
}

func (c *Client) call(ctx context.Context, method string) (*structpb.Struct, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	response := new(structpb.Struct)
	if err := c.conn.Invoke(callCtx, method, new(emptypb.Empty), response); err != nil {
		return nil, err
	}

	return response, nil
}

// callContext applies the default timeout unless ctx already has a deadline.
func (c *Client) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.callTimeout <= 0 {
		return context.WithCancel(ctx)
	}

	if _, ok := ctx.Deadline(); ok {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, c.callTimeout)
}
