package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rescue-sim/server/logging"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDefaultsValidate(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "rescue", cfg.Simulation.Scenario)
	assert.Equal(t, 16*time.Millisecond, cfg.Simulation.TickInterval())
	assert.Equal(t, 25.0, cfg.Simulation.MaxSpeed)
	assert.Equal(t, 10.0, cfg.Simulation.MaxForce)
	assert.Equal(t, 0.16, cfg.Simulation.StepSeconds)
	assert.Equal(t, 800.0, cfg.World.Width)
	assert.Equal(t, []string{logging.SinkConsole}, cfg.Events.Sinks)
}

func TestLoadReadsFileAndEnvironment(t *testing.T) {
	path := writeConfig(t, `
simulation:
  scenario: steering
  behavior: Two Ways
  tick_interval_ms: 30
world:
  victim_count: 3
  layout: open
`)
	t.Setenv("RESCUE_SIMULATION_MAX_SPEED", "40")
	t.Setenv("RESCUE_SERVER_ADDR", "127.0.0.1:9000")

	cfg, v, err := Load(path)
	require.NoError(t, err)
	require.NotNil(t, v)

	assert.Equal(t, "steering", cfg.Simulation.Scenario)
	assert.Equal(t, "Two Ways", cfg.Simulation.Behavior)
	assert.Equal(t, 30, cfg.Simulation.TickIntervalMS)
	assert.Equal(t, 40.0, cfg.Simulation.MaxSpeed)
	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
	assert.Equal(t, 3, cfg.World.VictimCount)
	assert.Equal(t, "open", cfg.World.Layout)
	// Untouched keys keep their defaults.
	assert.Equal(t, 10.0, cfg.Simulation.MaxForce)
}

func TestLoadWithoutFileUsesDefaults(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv("HOME", t.TempDir())
	cfg, _, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Addr)
}

func TestLoadRejectsInvalidFile(t *testing.T) {
	path := writeConfig(t, `
world:
  victim_count: 0
simulation:
  max_force: -1
  behavior: Wander
`)
	_, _, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "world.victim_count")
	assert.Contains(t, err.Error(), "simulation.max_force")
	assert.Contains(t, err.Error(), "simulation.behavior")

	_, _, err = Load(writeConfig(t, "world: [unclosed"))
	assert.Error(t, err)
}

func TestValidateCollectsEveryProblem(t *testing.T) {
	cfg := Default()
	cfg.Simulation.TickIntervalMS = 0
	cfg.Simulation.Scenario = "racing"
	cfg.Simulation.Avoidance = "teleport"
	cfg.World.Layout = "moon"
	cfg.Events.Sinks = []string{"kafka", logging.SinkJSON}
	cfg.Events.JSONFile = ""
	cfg.Server.CommandBurst = 0

	err := cfg.Validate()
	require.Error(t, err)
	for _, key := range []string{
		"simulation.tick_interval_ms",
		"simulation.scenario",
		"simulation.avoidance",
		"world.layout",
		"events.sinks",
		"events.json_file",
		"server.command_rate",
	} {
		assert.Contains(t, err.Error(), key)
	}
}

func TestEventsLoggingConversion(t *testing.T) {
	cfg := Default()
	cfg.Events.Sinks = []string{logging.SinkConsole, logging.SinkJSON}
	cfg.Events.MinimumSeverity = "warn"
	cfg.Events.BufferSize = 64

	out := cfg.EventsLogging()
	assert.True(t, out.HasSink(logging.SinkJSON))
	assert.Equal(t, logging.SeverityWarn, out.MinimumSeverity)
	assert.Equal(t, 64, out.BufferSize)
	assert.Equal(t, "logs/events.jsonl", out.JSON.FilePath)
	assert.Equal(t, "rescue", out.Fields["scenario"])
}

func TestWorldConfigConversion(t *testing.T) {
	cfg := Default()
	cfg.World.Seed = "alpha"
	world := cfg.World.WorldConfig()
	assert.Equal(t, "alpha", world.Seed)
	assert.Equal(t, cfg.World.VictimCount, world.VictimCount)
}
