// Package config loads the docking display's YAML configuration.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/signalsfoundry/docking-alignment-display/display"
	"github.com/signalsfoundry/docking-alignment-display/internal/logging"
	"github.com/signalsfoundry/docking-alignment-display/internal/observability"
	"github.com/signalsfoundry/docking-alignment-display/internal/sim"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config is the full application configuration.
type Config struct {
	Display   DisplayConfig               `yaml:"display"`
	Sim       SimConfig                   `yaml:"sim"`
	Telemetry TelemetryConfig             `yaml:"telemetry"`
	Logging   logging.Config              `yaml:"logging"`
	Tracing   observability.TracingConfig `yaml:"tracing"`
}

// DisplayConfig mirrors display.Config in file form.
type DisplayConfig struct {
	Enabled          bool           `yaml:"enabled"`
	Scale            string         `yaml:"scale"` // standard | fine
	AngleGain        float64        `yaml:"angle_gain"`
	RollTolerance    float64        `yaml:"roll_tolerance"` // degrees
	AngleArmFraction float64        `yaml:"angle_arm_fraction"`
	Viewport         ViewportConfig `yaml:"viewport"`
}

type ViewportConfig struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// SimConfig configures the simulated host world and its clock.
type SimConfig struct {
	Tick        time.Duration       `yaml:"tick"`
	Duration    time.Duration       `yaml:"duration"` // 0 runs until interrupted
	Accelerated bool                `yaml:"accelerated"`
	Start       string              `yaml:"start"`
	Target      string              `yaml:"target"`
	TLELine1    string              `yaml:"tle_line1"`
	TLELine2    string              `yaml:"tle_line2"`
	Approach    sim.ApproachProfile `yaml:"approach"`
}

// TelemetryConfig configures the metrics, gRPC and recording outputs. Empty
// addresses disable the corresponding server.
type TelemetryConfig struct {
	MetricsAddr string `yaml:"metrics_addr"`
	GRPCAddr    string `yaml:"grpc_addr"`
	RecordPath  string `yaml:"record_path"`
	PrintFrames bool   `yaml:"print_frames"`
}

// Default returns the embedded defaults.
func Default() (*Config, error) {
	return Load("")
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Fields absent from the file keep their defaults.
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}
	return cfg, nil
}

// Validate reports the first invalid field.
func (c *Config) Validate() error {
	if _, err := display.ParseScaleMode(c.Display.Scale); err != nil {
		return fmt.Errorf("display.scale: %w", err)
	}
	if c.Display.Viewport.Width <= 0 || c.Display.Viewport.Height <= 0 {
		return fmt.Errorf("display.viewport: width and height must be positive, got %vx%v",
			c.Display.Viewport.Width, c.Display.Viewport.Height)
	}
	if c.Display.AngleGain < 0 || c.Display.RollTolerance < 0 || c.Display.AngleArmFraction < 0 {
		return errors.New("display: gains and tolerances must not be negative")
	}
	if c.Sim.Tick <= 0 {
		return fmt.Errorf("sim.tick: must be positive, got %s", c.Sim.Tick)
	}
	if c.Sim.Duration < 0 {
		return fmt.Errorf("sim.duration: must not be negative, got %s", c.Sim.Duration)
	}
	if _, err := c.StartTime(time.Time{}); err != nil {
		return fmt.Errorf("sim.start: %w", err)
	}
	if _, err := sim.ParseTargetMode(c.Sim.Target); err != nil {
		return fmt.Errorf("sim.target: %w", err)
	}
	if (c.Sim.TLELine1 == "") != (c.Sim.TLELine2 == "") {
		return errors.New("sim: tle_line1 and tle_line2 must be set together")
	}
	if c.Sim.Approach.ClosingSpeed < 0 {
		return fmt.Errorf("sim.approach.closing_speed: must not be negative, got %v", c.Sim.Approach.ClosingSpeed)
	}
	switch strings.ToLower(c.Tracing.Exporter) {
	case "", "stdout", "otlp", "otlpgrpc":
	default:
		return fmt.Errorf("tracing.exporter: unsupported exporter %q", c.Tracing.Exporter)
	}
	if c.Tracing.SampleRatio < 0 || c.Tracing.SampleRatio > 1 {
		return fmt.Errorf("tracing.sample_ratio: must be within [0, 1], got %v", c.Tracing.SampleRatio)
	}
	return nil
}

// DisplayConfig converts the display section into a display.Config.
func (c *Config) DisplayConfig() display.Config {
	scale, _ := display.ParseScaleMode(c.Display.Scale)
	return display.Config{
		Enabled:          c.Display.Enabled,
		Scale:            scale,
		AngleGain:        c.Display.AngleGain,
		RollTolerance:    c.Display.RollTolerance,
		AngleArmFraction: c.Display.AngleArmFraction,
	}.ApplyDefaults()
}

// Viewport returns the configured screen size.
func (c *Config) Viewport() display.Viewport {
	return display.Viewport{Width: c.Display.Viewport.Width, Height: c.Display.Viewport.Height}
}

// StartTime returns the configured start time, or now when unset.
func (c *Config) StartTime(now time.Time) (time.Time, error) {
	if c.Sim.Start == "" {
		return now, nil
	}
	return time.Parse(time.RFC3339, c.Sim.Start)
}

// TargetMode returns the configured initial target.
func (c *Config) TargetMode() sim.TargetMode {
	mode, _ := sim.ParseTargetMode(c.Sim.Target)
	return mode
}
