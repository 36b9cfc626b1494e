package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rescue-sim/server/internal/telemetry"
	"rescue-sim/server/logging"
)

func actorIDs(cmds []Command) []string {
	ids := make([]string, len(cmds))
	for i, cmd := range cmds {
		ids[i] = cmd.ActorID
	}
	return ids
}

func TestCommandBufferKeepsFIFOAcrossWrap(t *testing.T) {
	buffer := NewCommandBuffer(3, nil)
	for _, id := range []string{"a", "b"} {
		require.True(t, buffer.Push(Command{ActorID: id}))
	}
	assert.Equal(t, []string{"a", "b"}, actorIDs(buffer.Drain()))

	// head now sits mid-ring; the next three pushes wrap around the end.
	for _, id := range []string{"c", "d", "e"} {
		require.True(t, buffer.Push(Command{ActorID: id}))
	}
	assert.False(t, buffer.Push(Command{ActorID: "f"}))
	assert.Equal(t, []string{"c", "d", "e"}, actorIDs(buffer.Drain()))
	assert.Nil(t, buffer.Drain())
}

func TestCommandBufferReportsOverflowAndDepth(t *testing.T) {
	metrics := &logging.Metrics{}
	buffer := NewCommandBuffer(1, telemetry.WrapMetrics(metrics))

	require.True(t, buffer.Push(Command{ActorID: "one"}))
	assert.False(t, buffer.Push(Command{ActorID: "two"}))
	assert.False(t, buffer.Push(Command{ActorID: "three"}))

	snapshot := metrics.Snapshot()
	assert.Equal(t, uint64(2), snapshot[commandQueueOverflowMetricKey])
	assert.Equal(t, uint64(1), snapshot[commandQueueDepthMetricKey])
	assert.Equal(t, uint64(2), buffer.Overflow())

	buffer.Drain()
	assert.Equal(t, uint64(0), metrics.Snapshot()[commandQueueDepthMetricKey])
}

func TestCommandBufferClampsCapacity(t *testing.T) {
	assert.Equal(t, 1, NewCommandBuffer(0, nil).Capacity())
	var nilBuffer *CommandBuffer
	assert.False(t, nilBuffer.Push(Command{}))
	assert.Zero(t, nilBuffer.Len())
}
