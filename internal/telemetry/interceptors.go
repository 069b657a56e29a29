package telemetry

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"

	"github.com/signalsfoundry/docking-alignment-display/internal/logging"
)

const sessionIDMetadataKey = "x-session-id"

// SessionUnaryServerInterceptor ensures a session_id is present on the
// context, sourcing it from inbound metadata if provided, and attaches a
// per-request logger annotated with session_id and method.
func SessionUnaryServerInterceptor(base logging.Logger) grpc.UnaryServerInterceptor {
	if base == nil {
		base = logging.Noop()
	}
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if incoming := firstHeader(md, sessionIDMetadataKey); incoming != "" {
				ctx = logging.ContextWithSessionID(ctx, incoming)
			}
		}

		ctx, reqLog := logging.WithSessionLogger(ctx, base.With(logging.String("method", info.FullMethod)))
		ctx = logging.ContextWithLogger(ctx, reqLog)

		return handler(ctx, req)
	}
}

func firstHeader(md metadata.MD, key string) string {
	if md == nil {
		return ""
	}
	if vals := md.Get(key); len(vals) > 0 {
		return vals[0]
	}
	return ""
}
