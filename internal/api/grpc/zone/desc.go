package zone

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "zonemonitor.v1.ZoneStatus"

const (
	getTelemetryMethod = "/" + ServiceName + "/GetTelemetry"
	getCommandMethod   = "/" + ServiceName + "/GetCommand"
)

// StatusServer is the handler interface of the ZoneStatus service.
type StatusServer interface {
	GetTelemetry(ctx context.Context, req *emptypb.Empty) (*structpb.Struct, error)
	GetCommand(ctx context.Context, req *emptypb.Empty) (*structpb.Struct, error)
}

// ServiceDesc describes the ZoneStatus service for grpc.Server.RegisterService.
//
//nolint:gochecknoglobals // grpc requires a package-level descriptor.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*StatusServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "GetTelemetry",
			Handler:    getTelemetryHandler,
		},
		{
			MethodName: "GetCommand",
			Handler:    getCommandHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "zonemonitor/v1/status.proto",
}

// Register attaches srv to a gRPC server.
func Register(registrar grpc.ServiceRegistrar, srv StatusServer) {
	registrar.RegisterService(&ServiceDesc, srv)
}

func getTelemetryHandler(
	srv any,
	ctx context.Context,
	dec func(any) error,
	interceptor grpc.UnaryServerInterceptor,
) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}

	if interceptor == nil {
		return srv.(StatusServer).GetTelemetry(ctx, in) //nolint:forcetypeassert // HandlerType guarantees it.
	}

	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: getTelemetryMethod,
	}

	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(StatusServer).GetTelemetry(ctx, req.(*emptypb.Empty)) //nolint:forcetypeassert // Decoded above.
	}

	return interceptor(ctx, in, info, handler)
}

func getCommandHandler(
	srv any,
	ctx context.Context,
	dec func(any) error,
	interceptor grpc.UnaryServerInterceptor,
) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}

	if interceptor == nil {
		return srv.(StatusServer).GetCommand(ctx, in) //nolint:forcetypeassert // HandlerType guarantees it.
	}

	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: getCommandMethod,
	}

	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(StatusServer).GetCommand(ctx, req.(*emptypb.Empty)) //nolint:forcetypeassert // Decoded above.
	}

	return interceptor(ctx, in, info, handler)
}
