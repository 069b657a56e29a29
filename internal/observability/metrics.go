package observability

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gonum.org/v1/gonum/spatial/r2"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"

	"github.com/signalsfoundry/docking-alignment-display/model"
)

// AlignmentCollector bundles Prometheus metrics for the docking display and
// its telemetry surface.
type AlignmentCollector struct {
	gatherer prometheus.Gatherer

	RPCRequests  *prometheus.CounterVec
	RPCDurations *prometheus.HistogramVec

	ClosingDistance prometheus.Gauge
	ClosingVelocity prometheus.Gauge
	TangentOffset   prometheus.Gauge
	TangentVelocity prometheus.Gauge
	Roll            prometheus.Gauge
	TargetValid     prometheus.Gauge

	Ticks        *prometheus.CounterVec
	TickDuration prometheus.Histogram
}

// NewAlignmentCollector registers docking metrics against the provided
// registerer, defaulting to the global Prometheus registry when nil.
func NewAlignmentCollector(reg prometheus.Registerer) (*AlignmentCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	requests, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "docking_rpc_requests_total",
		Help: "Total number of handled telemetry RPCs, labeled by service, method, and gRPC status code.",
	}, []string{"service", "method", "code"}), "docking_rpc_requests_total")
	if err != nil {
		return nil, err
	}
	durations, err := registerHistogramVec(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "docking_rpc_request_duration_seconds",
		Help:    "Telemetry RPC latency in seconds.",
		Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	}, []string{"service", "method"}), "docking_rpc_request_duration_seconds")
	if err != nil {
		return nil, err
	}

	c := &AlignmentCollector{
		gatherer:     gatherer,
		RPCRequests:  requests,
		RPCDurations: durations,
	}
	gauges := []struct {
		dst  *prometheus.Gauge
		name string
		help string
	}{
		{&c.ClosingDistance, "docking_closing_distance_meters", "Separation along the target port's docking axis."},
		{&c.ClosingVelocity, "docking_closing_velocity_mps", "Approach rate along the docking axis; positive when closing."},
		{&c.TangentOffset, "docking_tangent_offset_meters", "Lateral offset from the docking axis."},
		{&c.TangentVelocity, "docking_tangent_velocity_mps", "Lateral speed relative to the docking axis."},
		{&c.Roll, "docking_roll_degrees", "Roll error about the docking axis."},
		{&c.TargetValid, "docking_target_valid", "1 when a valid docking target is selected, 0 otherwise."},
	}
	for _, g := range gauges {
		gauge, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{Name: g.name, Help: g.help}), g.name)
		if err != nil {
			return nil, err
		}
		*g.dst = gauge
	}

	c.Ticks, err = registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "docking_ticks_total",
		Help: "Display ticks, labeled by target validity or the reason it was invalid.",
	}, []string{"validity"}), "docking_ticks_total")
	if err != nil {
		return nil, err
	}
	c.TickDuration, err = registerHistogram(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "docking_tick_duration_seconds",
		Help:    "Time spent solving and mapping one display tick.",
		Buckets: []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05},
	}), "docking_tick_duration_seconds")
	if err != nil {
		return nil, err
	}
	return c, nil
}

// ObserveTick records one display tick. Alignment gauges keep their last
// valid value while the target is invalid.
func (c *AlignmentCollector) ObserveTick(s model.RelativeState, elapsed time.Duration) {
	if c == nil {
		return
	}
	validity := "valid"
	if !s.Valid {
		validity = s.Reason.String()
	}
	if c.Ticks != nil {
		c.Ticks.WithLabelValues(validity).Inc()
	}
	if c.TickDuration != nil {
		c.TickDuration.Observe(elapsed.Seconds())
	}
	if c.TargetValid != nil {
		if s.Valid {
			c.TargetValid.Set(1)
		} else {
			c.TargetValid.Set(0)
		}
	}
	if !s.Valid {
		return
	}
	setGauge(c.ClosingDistance, s.ClosingDistance())
	setGauge(c.ClosingVelocity, s.ClosingVelocity())
	setGauge(c.TangentOffset, r2.Norm(r2.Vec{X: s.Position.X, Y: s.Position.Y}))
	setGauge(c.TangentVelocity, r2.Norm(r2.Vec{X: s.Velocity.X, Y: s.Velocity.Y}))
	setGauge(c.Roll, s.Roll*180/math.Pi)
}

func setGauge(g prometheus.Gauge, v float64) {
	if g != nil {
		g.Set(v)
	}
}

// UnaryServerInterceptor records request counts and durations for unary RPCs.
func (c *AlignmentCollector) UnaryServerInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)

		if c == nil {
			return resp, err
		}

		fullMethod := ""
		if info != nil {
			fullMethod = info.FullMethod
		}
		service, method := SplitMethod(fullMethod)
		code := status.Code(err).String()

		if c.RPCRequests != nil {
			c.RPCRequests.WithLabelValues(service, method, code).Inc()
		}
		if c.RPCDurations != nil {
			c.RPCDurations.WithLabelValues(service, method).Observe(time.Since(start).Seconds())
		}

		return resp, err
	}
}

// Handler exposes a ready-to-use /metrics handler.
func (c *AlignmentCollector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// SplitMethod parses a fully-qualified gRPC method name into service and method
// components. It tolerates empty strings and partial paths, returning
// "unknown"/"unknown" when parsing fails.
func SplitMethod(fullMethod string) (string, string) {
	if fullMethod == "" {
		return "unknown", "unknown"
	}
	fullMethod = strings.TrimPrefix(fullMethod, "/")
	parts := strings.Split(fullMethod, "/")
	if len(parts) < 2 {
		return "unknown", "unknown"
	}
	service := parts[len(parts)-2]
	method := parts[len(parts)-1]
	if dot := strings.LastIndex(service, "."); dot >= 0 && dot+1 < len(service) {
		service = service[dot+1:]
	}
	if service == "" {
		service = "unknown"
	}
	if method == "" {
		method = "unknown"
	}
	return service, method
}

// register reuses an already registered collector of the same type so that
// several collectors can share a registry.
func register[T prometheus.Collector](reg prometheus.Registerer, c T, name string) (T, error) {
	if err := reg.Register(c); err != nil {
		var zero T
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
			return zero, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return zero, err
	}
	return c, nil
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	return register(reg, vec, name)
}

func registerHistogramVec(reg prometheus.Registerer, vec *prometheus.HistogramVec, name string) (*prometheus.HistogramVec, error) {
	return register(reg, vec, name)
}

func registerHistogram(reg prometheus.Registerer, h prometheus.Histogram, name string) (prometheus.Histogram, error) {
	return register(reg, h, name)
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	return register(reg, gauge, name)
}
