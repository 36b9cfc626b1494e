package sim

import (
	"sync"

	"rescue-sim/server/internal/telemetry"
)

const (
	commandQueueDepthMetricKey    = "sim_command_queue_depth"
	commandQueueOverflowMetricKey = "sim_command_queue_overflow_total"
)

// CommandBuffer is a fixed-size FIFO ring of staged commands. Producers may
// push concurrently; a single consumer drains once per tick.
type CommandBuffer struct {
	mu       sync.Mutex
	ring     []Command
	head     int
	size     int
	overflow uint64
	metrics  telemetry.Metrics
}

// NewCommandBuffer allocates a ring holding at most capacity commands.
func NewCommandBuffer(capacity int, metrics telemetry.Metrics) *CommandBuffer {
	if capacity < 1 {
		capacity = 1
	}
	return &CommandBuffer{
		ring:    make([]Command, capacity),
		metrics: metrics,
	}
}

func (b *CommandBuffer) Capacity() int {
	if b == nil {
		return 0
	}
	return len(b.ring)
}

// Push appends cmd. It returns false without blocking when the ring is full.
func (b *CommandBuffer) Push(cmd Command) bool {
	if b == nil {
		return false
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.size == len(b.ring) {
		b.overflow++
		if b.metrics != nil {
			b.metrics.Add(commandQueueOverflowMetricKey, 1)
		}
		return false
	}
	b.ring[(b.head+b.size)%len(b.ring)] = cmd
	b.size++
	b.publishDepthLocked()
	return true
}

// Drain hands back every staged command oldest first and empties the ring.
func (b *CommandBuffer) Drain() []Command {
	if b == nil {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.size == 0 {
		return nil
	}
	out := make([]Command, 0, b.size)
	for i := 0; i < b.size; i++ {
		slot := (b.head + i) % len(b.ring)
		out = append(out, b.ring[slot])
		b.ring[slot] = Command{}
	}
	b.head = (b.head + b.size) % len(b.ring)
	b.size = 0
	b.publishDepthLocked()
	return out
}

func (b *CommandBuffer) Len() int {
	if b == nil {
		return 0
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.size
}

// Overflow counts rejected pushes since construction.
func (b *CommandBuffer) Overflow() uint64 {
	if b == nil {
		return 0
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.overflow
}

func (b *CommandBuffer) publishDepthLocked() {
	if b.metrics != nil {
		b.metrics.Store(commandQueueDepthMetricKey, uint64(b.size))
	}
}
