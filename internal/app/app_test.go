package app

import (
	"context"
	"io"
	"net"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"rescue-sim/server/internal/config"
	"rescue-sim/server/internal/sim"
	"rescue-sim/server/logging"
	rescuelog "rescue-sim/server/logging/rescue"
	loggingSinks "rescue-sim/server/logging/sinks"
)

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Events.Sinks = []string{logging.SinkMemory}
	cfg.Events.MinimumSeverity = "debug"
	return &cfg
}

func TestBuildSinks(t *testing.T) {
	cfg := logging.DefaultConfig()
	cfg.EnabledSinks = []string{logging.SinkConsole, logging.SinkJSON, logging.SinkMemory}
	cfg.JSON.FilePath = filepath.Join(t.TempDir(), "events.jsonl")

	sinks, err := BuildSinks(cfg, zap.NewNop())
	require.NoError(t, err)
	require.Len(t, sinks, 3)
	assert.Equal(t, logging.SinkJSON, sinks[1].Name)
	for _, sink := range sinks {
		require.NoError(t, sink.Sink.Close(context.Background()))
	}

	cfg.EnabledSinks = []string{"carrier-pigeon"}
	_, err = BuildSinks(cfg, zap.NewNop())
	assert.Error(t, err)
}

func TestBuildRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.World.VictimCount = 0
	_, err := Build(cfg, zap.NewNop())
	assert.ErrorContains(t, err, "victim_count")

	_, err = Build(nil, zap.NewNop())
	assert.Error(t, err)
}

func TestBuildWiresRescueScenario(t *testing.T) {
	rt, err := Build(testConfig(), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, rt.Close(context.Background())) })

	assert.Equal(t, sim.ScenarioRescue, rt.Loop.Scenario())
	assert.Equal(t, 16*time.Millisecond, rt.Loop.Config().TickInterval)
	layout := rt.Loop.Layout()
	assert.Equal(t, 800.0, layout.Width)
	assert.NotEmpty(t, layout.Hospitals)
	assert.NotEmpty(t, layout.Waypoints)
	assert.Equal(t, 6, rt.Loop.Snapshot().Remaining)
	memory, ok := rt.Router.Sink(logging.SinkMemory).(*loggingSinks.MemorySink)
	require.True(t, ok)

	rt.World.ResetVictims(context.Background(), 1)
	require.Eventually(t, func() bool {
		return len(memory.OfType(rescuelog.EventVictimsSpawned)) == 1
	}, time.Second, time.Millisecond)
	spawned := memory.OfType(rescuelog.EventVictimsSpawned)[0]
	assert.Equal(t, "rescue", spawned.Extra["scenario"])
}

func TestSimulateStopsAtTickLimit(t *testing.T) {
	cfg := testConfig()
	summary, err := Simulate(context.Background(), cfg, zap.NewNop(), 5)
	require.NoError(t, err)
	assert.Equal(t, sim.ScenarioRescue, summary.Scenario)
	assert.Equal(t, uint64(5), summary.Ticks)
	assert.False(t, summary.Done)
	assert.LessOrEqual(t, summary.Rescued+summary.Remaining, cfg.World.VictimCount)
}

func TestSimulateHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Simulate(ctx, testConfig(), zap.NewNop(), 0)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunServesUntilCancelled(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	base := "http://" + listener.Addr().String()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, testConfig(), Options{Logger: zap.NewNop(), Listener: listener})
	}()

	client := &http.Client{Transport: &http.Transport{DisableKeepAlives: true}, Timeout: time.Second}
	require.Eventually(t, func() bool {
		resp, err := client.Get(base + "/health")
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		return resp.StatusCode == http.StatusOK && string(body) == "ok"
	}, 2*time.Second, 20*time.Millisecond)

	resp, err := client.Get(base + "/diagnostics")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}
}
