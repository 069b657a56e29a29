package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/signalsfoundry/docking-alignment-display/display"
	"github.com/signalsfoundry/docking-alignment-display/internal/sim"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaultsAreValid(t *testing.T) {
	cfg, err := Default()
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	require.Equal(t, display.DefaultConfig(), cfg.DisplayConfig())
	require.Equal(t, display.Viewport{Width: 800, Height: 600}, cfg.Viewport())
	require.Equal(t, 100*time.Millisecond, cfg.Sim.Tick)
	require.Equal(t, sim.TargetPort, cfg.TargetMode())
	require.Equal(t, sim.DefaultTLE1, cfg.Sim.TLELine1)
	require.Equal(t, sim.DefaultTLE2, cfg.Sim.TLELine2)
	require.Equal(t, sim.DefaultApproach(), cfg.Sim.Approach)
	require.Equal(t, "info", cfg.Logging.Level)
	require.False(t, cfg.Tracing.Enabled)
}

func TestLoadOverridesOnlyGivenFields(t *testing.T) {
	path := writeConfig(t, `
display:
  scale: fine
  viewport:
    width: 1920
sim:
  target: relay
  approach:
    closing_speed: 0.1
telemetry:
  record_path: /tmp/approach.dad
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	require.Equal(t, display.ScaleFine, cfg.DisplayConfig().Scale)
	require.Equal(t, 1920.0, cfg.Viewport().Width)
	require.Equal(t, 600.0, cfg.Viewport().Height)
	require.Equal(t, sim.TargetRelay, cfg.TargetMode())
	require.Equal(t, 0.1, cfg.Sim.Approach.ClosingSpeed)
	require.Equal(t, 60.0, cfg.Sim.Approach.InitialOffset.Z)
	require.Equal(t, "/tmp/approach.dad", cfg.Telemetry.RecordPath)
	require.Equal(t, ":9090", cfg.Telemetry.MetricsAddr)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	_, err = Load(writeConfig(t, "display: [not, a, map]"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"scale", func(c *Config) { c.Display.Scale = "coarse" }},
		{"viewport", func(c *Config) { c.Display.Viewport.Height = 0 }},
		{"gain", func(c *Config) { c.Display.AngleGain = -1 }},
		{"tick", func(c *Config) { c.Sim.Tick = 0 }},
		{"duration", func(c *Config) { c.Sim.Duration = -time.Second }},
		{"start", func(c *Config) { c.Sim.Start = "yesterday" }},
		{"target", func(c *Config) { c.Sim.Target = "moon" }},
		{"tle", func(c *Config) { c.Sim.TLELine2 = "" }},
		{"closing speed", func(c *Config) { c.Sim.Approach.ClosingSpeed = -1 }},
		{"exporter", func(c *Config) { c.Tracing.Exporter = "zipkin" }},
		{"sample ratio", func(c *Config) { c.Tracing.SampleRatio = 2 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Default()
			require.NoError(t, err)
			tt.mutate(cfg)
			require.Error(t, cfg.Validate())
		})
	}
}

func TestStartTime(t *testing.T) {
	cfg, err := Default()
	require.NoError(t, err)

	now := time.Date(2030, time.January, 1, 0, 0, 0, 0, time.UTC)
	got, err := cfg.StartTime(now)
	require.NoError(t, err)
	require.True(t, got.Equal(time.Date(2021, time.October, 2, 14, 30, 0, 0, time.UTC)), "default start %v", got)

	cfg.Sim.Start = ""
	got, err = cfg.StartTime(now)
	require.NoError(t, err)
	require.True(t, got.Equal(now))
}
