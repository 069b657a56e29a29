// Command docking-display flies a scripted approach to a simulated station
// and runs the docking alignment display against it, printing frames and
// serving metrics and a gRPC snapshot service.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/signalsfoundry/docking-alignment-display/display"
	"github.com/signalsfoundry/docking-alignment-display/internal/config"
	"github.com/signalsfoundry/docking-alignment-display/internal/hud"
	"github.com/signalsfoundry/docking-alignment-display/internal/logging"
	"github.com/signalsfoundry/docking-alignment-display/internal/observability"
	"github.com/signalsfoundry/docking-alignment-display/internal/recorder"
	"github.com/signalsfoundry/docking-alignment-display/internal/sim"
	"github.com/signalsfoundry/docking-alignment-display/internal/telemetry"
	"github.com/signalsfoundry/docking-alignment-display/timectrl"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "docking-display:", err)
		os.Exit(1)
	}
}

// loadConfig parses args and applies any flags that were set on top of the
// configuration file.
func loadConfig(args []string) (*config.Config, error) {
	fs := flag.NewFlagSet("docking-display", flag.ContinueOnError)
	configPath := fs.String("config", "", "path to a YAML config file (defaults are embedded)")
	duration := fs.Duration("duration", 0, "total run duration; 0 runs until interrupted")
	tick := fs.Duration("tick", 0, "display frame interval")
	target := fs.String("target", "", "initial target: port, station, none or relay")
	scale := fs.String("scale", "", "indicator scale: standard or fine")
	metricsAddr := fs.String("metrics-addr", "", "HTTP address for Prometheus /metrics; empty disables")
	grpcAddr := fs.String("grpc-addr", "", "gRPC snapshot service address; empty disables")
	record := fs.String("record", "", "write a frame recording to this path")
	quiet := fs.Bool("quiet", false, "do not print frames")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return nil, err
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "duration":
			cfg.Sim.Duration = *duration
		case "tick":
			cfg.Sim.Tick = *tick
		case "target":
			cfg.Sim.Target = *target
		case "scale":
			cfg.Display.Scale = *scale
		case "metrics-addr":
			cfg.Telemetry.MetricsAddr = *metricsAddr
		case "grpc-addr":
			cfg.Telemetry.GRPCAddr = *grpcAddr
		case "record":
			cfg.Telemetry.RecordPath = *record
		case "quiet":
			cfg.Telemetry.PrintFrames = !*quiet
		}
	})

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	cfg, err := loadConfig(args)
	if err != nil {
		return err
	}

	ctx, log := logging.WithSessionLogger(ctx, logging.New(logging.ConfigFromEnv(cfg.Logging)))
	sessionID := logging.SessionIDFromContext(ctx)

	shutdownTracing, err := observability.InitTracing(ctx, observability.TracingConfigFromEnv(cfg.Tracing), log)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer observability.ShutdownWithTimeout(context.Background(), shutdownTracing, log)

	collector, err := observability.NewAlignmentCollector(nil)
	if err != nil {
		return fmt.Errorf("init metrics: %w", err)
	}

	start, _ := cfg.StartTime(time.Now().UTC())
	orbit, err := sim.NewOrbitModelFromTLE(cfg.Sim.TLELine1, cfg.Sim.TLELine2)
	if err != nil {
		return err
	}
	world, err := sim.NewWorld(sim.WorldConfig{
		Start:    start,
		Orbit:    orbit,
		Approach: cfg.Sim.Approach,
		Viewport: cfg.Viewport(),
		Target:   cfg.TargetMode(),
		Logger:   log,
	})
	if err != nil {
		return fmt.Errorf("build world: %w", err)
	}
	defer world.Close()

	opts := []hud.Option{hud.WithObserver(collector), hud.WithLogger(log)}
	if cfg.Telemetry.RecordPath != "" {
		rec, err := recorder.Create(cfg.Telemetry.RecordPath, recorder.Header{
			SessionID: sessionID,
			Started:   start,
			Display:   cfg.DisplayConfig(),
		})
		if err != nil {
			return err
		}
		defer func() {
			if err := rec.Close(); err != nil {
				log.Warn(ctx, "closing recording failed", logging.Err(err))
			}
			log.Info(ctx, "recording written",
				logging.String("path", cfg.Telemetry.RecordPath),
				logging.Int("entries", rec.Entries()),
			)
		}()
		opts = append(opts, hud.WithRecorder(rec))
	}

	var sink hud.Sink
	if cfg.Telemetry.PrintFrames {
		sink = hud.NewTextSink(stdout)
	}
	ctrl := hud.NewController(world, display.NewMapper(cfg.DisplayConfig()), sink, opts...)

	svc := telemetry.NewService(ctrl, log)
	ctrl.OnValidityChange(svc.SetValid)

	mode := timectrl.RealTime
	if cfg.Sim.Accelerated {
		mode = timectrl.Accelerated
	}
	tc := timectrl.NewTimeController(start, cfg.Sim.Tick, mode)
	tc.AddListener(func(now time.Time) {
		if _, err := ctrl.Tick(ctx, now); err != nil {
			log.Warn(ctx, "display tick failed", logging.Err(err))
		}
	})

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(runCtx)

	if addr := cfg.Telemetry.MetricsAddr; addr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", collector.Handler())
		srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		g.Go(func() error {
			log.Info(ctx, "serving Prometheus metrics", logging.String("addr", addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	if addr := cfg.Telemetry.GRPCAddr; addr != "" {
		lis, err := net.Listen("tcp", addr)
		if err != nil {
			return fmt.Errorf("listen for gRPC on %s: %w", addr, err)
		}
		grpcSrv := telemetry.NewGRPCServer(collector, log)
		svc.Register(grpcSrv)
		g.Go(func() error {
			log.Info(ctx, "starting telemetry gRPC server", logging.String("addr", addr))
			return grpcSrv.Serve(lis)
		})
		g.Go(func() error {
			<-gctx.Done()
			svc.Shutdown()
			grpcSrv.GracefulStop()
			return nil
		})
	}

	g.Go(func() error {
		log.Info(ctx, "starting display",
			logging.String("start", start.Format(time.RFC3339)),
			logging.String("tick", cfg.Sim.Tick.String()),
			logging.String("duration", cfg.Sim.Duration.String()),
			logging.String("mode", mode.String()),
			logging.String("target", cfg.TargetMode().String()),
		)
		<-tc.StartContext(gctx, cfg.Sim.Duration)
		log.Info(ctx, "display stopped", logging.Int("frames", int(tc.Frames())))
		cancel()
		return nil
	})

	return g.Wait()
}
