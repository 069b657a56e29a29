package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"gonum.org/v1/gonum/spatial/r3"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/signalsfoundry/docking-alignment-display/display"
	"github.com/signalsfoundry/docking-alignment-display/internal/hud"
	"github.com/signalsfoundry/docking-alignment-display/internal/logging"
	"github.com/signalsfoundry/docking-alignment-display/internal/observability"
	"github.com/signalsfoundry/docking-alignment-display/model"
)

// SnapshotSource provides the latest completed display tick.
type SnapshotSource interface {
	Snapshot() (hud.Snapshot, bool)
}

// Service implements AlignmentServiceServer and tracks the health status of
// the alignment service.
type Service struct {
	source SnapshotSource
	health *health.Server
	log    logging.Logger
}

// NewService constructs a Service. The alignment service reports
// NOT_SERVING until SetValid(true, ...) is called.
func NewService(source SnapshotSource, log logging.Logger) *Service {
	if log == nil {
		log = logging.Noop()
	}
	hs := health.NewServer()
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)
	return &Service{source: source, health: hs, log: log}
}

// SetValid updates the health status to follow target validity. Its
// signature matches hud.Controller.OnValidityChange.
func (s *Service) SetValid(valid bool, reason model.InvalidReason) {
	st := healthpb.HealthCheckResponse_NOT_SERVING
	if valid {
		st = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus(ServiceName, st)
	s.log.Debug(context.Background(), "alignment health updated",
		logging.String("status", st.String()),
		logging.String("reason", reason.String()),
	)
}

// Register installs the alignment and health services on g.
func (s *Service) Register(g *grpc.Server) {
	RegisterAlignmentServiceServer(g, s)
	healthpb.RegisterHealthServer(g, s.health)
}

// Shutdown marks every service NOT_SERVING.
func (s *Service) Shutdown() {
	s.health.Shutdown()
}

// GetSnapshot returns the latest display state as a struct. It fails with
// Unavailable before the first tick.
func (s *Service) GetSnapshot(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	snap, ok := s.source.Snapshot()
	if !ok {
		return nil, status.Error(codes.Unavailable, "no display frame yet")
	}
	out, err := structpb.NewStruct(snapshotFields(snap))
	if err != nil {
		log := logging.LoggerFromContext(ctx)
		if log == nil {
			log = s.log
		}
		log.Error(ctx, "encode snapshot failed", logging.Err(err))
		return nil, status.Error(codes.Internal, fmt.Sprintf("encode snapshot: %v", err))
	}
	return out, nil
}

// NewGRPCServer builds a gRPC server instrumented with OpenTelemetry and the
// collector's RPC metrics.
func NewGRPCServer(collector *observability.AlignmentCollector, log logging.Logger, opts ...grpc.ServerOption) *grpc.Server {
	base := []grpc.ServerOption{
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(
			SessionUnaryServerInterceptor(log),
			collector.UnaryServerInterceptor(),
		),
	}
	return grpc.NewServer(append(base, opts...)...)
}

func snapshotFields(snap hud.Snapshot) map[string]interface{} {
	st := snap.State
	fields := map[string]interface{}{
		"time":   snap.Time.UTC().Format(time.RFC3339Nano),
		"valid":  st.Valid,
		"reason": st.Reason.String(),
		"frame":  frameFields(snap.Frame),
	}
	if st.Valid {
		fields["position"] = vecFields(st.Position)
		fields["velocity"] = vecFields(st.Velocity)
		fields["orientation"] = vecFields(st.Orientation)
		fields["roll"] = st.Roll
	}
	return fields
}

func vecFields(v r3.Vec) map[string]interface{} {
	return map[string]interface{}{"x": v.X, "y": v.Y, "z": v.Z}
}

func frameFields(f display.Frame) map[string]interface{} {
	lines := f.Metrics.Lines()
	metrics := make([]interface{}, len(lines))
	for i, l := range lines {
		metrics[i] = l
	}
	return map[string]interface{}{
		"enabled":           f.Enabled,
		"no_target":         f.NoTarget,
		"tangent_crosshair": indicatorFields(f.TangentCrosshair),
		"angle_crosshair":   indicatorFields(f.AngleCrosshair),
		"roll_marker":       indicatorFields(f.RollMarker),
		"velocity_arrow":    indicatorFields(f.VelocityArrow),
		"metrics":           metrics,
	}
}

func indicatorFields(ind display.Indicator) map[string]interface{} {
	return map[string]interface{}{
		"visible":  ind.Visible,
		"x":        ind.Position.X,
		"y":        ind.Position.Y,
		"rotation": ind.Rotation,
		"length":   ind.Length,
		"width":    ind.Size.X,
		"height":   ind.Size.Y,
		"color":    ind.Color.String(),
	}
}
