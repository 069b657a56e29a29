// Package telemetry exposes the latest docking display state over gRPC.
//
// The service is registered by hand rather than from generated code: it has
// a single unary method whose request and response are protobuf well-known
// types.
package telemetry

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully-qualified gRPC service name.
const ServiceName = "docking.v1.AlignmentService"

// GetSnapshotMethod is the full method name of GetSnapshot.
const GetSnapshotMethod = "/" + ServiceName + "/GetSnapshot"

// AlignmentServiceServer is the server API for the alignment service.
type AlignmentServiceServer interface {
	GetSnapshot(context.Context, *emptypb.Empty) (*structpb.Struct, error)
}

// RegisterAlignmentServiceServer registers srv on s.
func RegisterAlignmentServiceServer(s grpc.ServiceRegistrar, srv AlignmentServiceServer) {
	s.RegisterService(&alignmentServiceDesc, srv)
}

var alignmentServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*AlignmentServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "GetSnapshot",
			Handler:    getSnapshotHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "docking/v1/alignment.proto",
}

func getSnapshotHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(AlignmentServiceServer).GetSnapshot(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: GetSnapshotMethod,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(AlignmentServiceServer).GetSnapshot(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

// AlignmentServiceClient is the client API for the alignment service.
type AlignmentServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewAlignmentServiceClient wraps cc.
func NewAlignmentServiceClient(cc grpc.ClientConnInterface) *AlignmentServiceClient {
	return &AlignmentServiceClient{cc: cc}
}

// GetSnapshot fetches the latest display state.
func (c *AlignmentServiceClient) GetSnapshot(ctx context.Context, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, GetSnapshotMethod, &emptypb.Empty{}, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
