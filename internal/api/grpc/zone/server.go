package zone

import (
	"context"
	"errors"
	"fmt"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	domain "github.com/oshokin/zone-monitor/internal/domain/zone"
	"github.com/oshokin/zone-monitor/internal/logger"
)

// Service abstracts the state the transport layer exposes.
type Service interface {
	Telemetry(ctx context.Context) domain.Telemetry
	Command(ctx context.Context) domain.Command
}

// Server implements the ZoneStatus gRPC API.
type Server struct {
	// service provides the state snapshots.
	service Service
}

// NewServer wires the provided service into a gRPC handler.
func NewServer(service Service) *Server {
	return &Server{
		service: service,
	}
}

// GetTelemetry returns the current telemetry snapshot.
func (s *Server) GetTelemetry(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	response, err := TelemetryToStruct(s.service.Telemetry(ctx))
	if err != nil {
		return nil, status.Error(codes.Internal, "unable to encode telemetry")
	}

	return response, nil
}

// GetCommand returns the current command snapshot.
func (s *Server) GetCommand(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	response, err := CommandToStruct(s.service.Command(ctx))
	if err != nil {
		return nil, status.Error(codes.Internal, "unable to encode command")
	}

	return response, nil
}

// Serve runs the status API on address until ctx is canceled.
func Serve(ctx context.Context, address string, service Service) error {
	ctx = logger.WithName(ctx, "status-api")

	lc := net.ListenConfig{}

	lis, err := lc.Listen(ctx, "tcp", address)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", address, err)
	}

	grpcServer := grpc.NewServer()
	Register(grpcServer, NewServer(service))

	logger.InfoKV(ctx, "Status API listening", "listen_address", lis.Addr().String())

	// Done is closed after GracefulStop so Serve returns only once the server has stopped.
	done := make(chan struct{})

	go func() {
		<-ctx.Done()
		grpcServer.GracefulStop()
		close(done)
	}()

	if err = grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return fmt.Errorf("serve gRPC: %w", err)
	}

	<-done
	logger.Info(ctx, "Status API stopped")

	return nil
}

// TelemetryToStruct converts a telemetry snapshot to its wire representation.
func TelemetryToStruct(t domain.Telemetry) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		"zone_id":     t.ZoneID,
		"distance":    t.Distance,
		"temperature": t.Temperature,
		"humidity":    t.Humidity,
		"pressure":    t.Pressure,
		"door":        int32(t.Door),
		"window":      int32(t.Window),
	})
}

// TelemetryFromStruct is the inverse of TelemetryToStruct. Missing fields read as zero.
func TelemetryFromStruct(s *structpb.Struct) domain.Telemetry {
	fields := s.GetFields()

	return domain.Telemetry{
		ZoneID:      int32(fields["zone_id"].GetNumberValue()),
		Distance:    fields["distance"].GetNumberValue(),
		Temperature: fields["temperature"].GetNumberValue(),
		Humidity:    fields["humidity"].GetNumberValue(),
		Pressure:    int32(fields["pressure"].GetNumberValue()),
		Door:        domain.Status(fields["door"].GetNumberValue()),
		Window:      domain.Status(fields["window"].GetNumberValue()),
	}
}

// CommandToStruct converts a command snapshot to its wire representation.
func CommandToStruct(c domain.Command) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		"window_command": int32(c.Window),
		"sleep_alert":    int32(c.SleepAlert),
	})
}

// CommandFromStruct is the inverse of CommandToStruct. Missing fields read as zero.
func CommandFromStruct(s *structpb.Struct) domain.Command {
	fields := s.GetFields()

	return domain.Command{
		Window:     domain.WindowCommand(fields["window_command"].GetNumberValue()),
		SleepAlert: domain.Status(fields["sleep_alert"].GetNumberValue()),
	}
}
