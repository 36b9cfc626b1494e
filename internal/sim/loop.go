package sim

import (
	"context"
	"sync"
	"time"

	"rescue-sim/server/internal/telemetry"
	"rescue-sim/server/logging"
	simulationlog "rescue-sim/server/logging/simulation"
)

const (
	// CommandRejectQueueLimit indicates a command was dropped due to per-actor
	// queue throttling.
	CommandRejectQueueLimit = "queue_limit"
	// CommandRejectQueueFull indicates the global command buffer is saturated.
	CommandRejectQueueFull = "queue_full"

	// DefaultTickInterval is used when LoopConfig leaves the interval unset.
	DefaultTickInterval = 16 * time.Millisecond

	tickCounterMetricKey  = "sim_tick"
	tickDurationMetricKey = "sim_tick_duration_us"
	tickOverrunMetricKey  = "sim_tick_overrun_total"
)

// LoopConfig tunes the command buffer and tick loop orchestration.
type LoopConfig struct {
	TickInterval    time.Duration
	CommandCapacity int
	PerActorLimit   int
	WarningStep     int
}

// LoopTickContext describes the tick about to run.
type LoopTickContext struct {
	Tick  uint64
	Now   time.Time
	Delta time.Duration
}

// LoopStepResult is what a single Advance produced.
type LoopStepResult struct {
	Tick     uint64
	Now      time.Time
	Delta    time.Duration
	Duration time.Duration
	Budget   time.Duration
	Snapshot Snapshot
	Commands []Command
	// Err aggregates commands the engine refused at apply time.
	Err  error
	Done bool
}

// LoopHooks lets the owner observe the loop without reaching into it.
type LoopHooks struct {
	Prepare        func(LoopTickContext)
	AfterStep      func(LoopStepResult)
	OnCommandDrop  func(reason string, cmd Command)
	OnQueueWarning func(length int)
	NextTick       func() uint64
}

// Loop coordinates command ingestion and the fixed-timestep simulation runner.
type Loop struct {
	core    EngineCore
	buffer  *CommandBuffer
	hooks   LoopHooks
	config  LoopConfig
	logger  telemetry.Logger
	metrics telemetry.Metrics

	queueMu       sync.Mutex
	perActorCount map[string]int
	dropCounts    map[string]uint64

	// stepMu serializes engine access between the tick goroutine and readers.
	stepMu        sync.Mutex
	tick          uint64
	last          Snapshot
	overrunStreak uint64
}

// NewLoop wraps the provided engine core with a ring-buffer queue and loop.
func NewLoop(core EngineCore, cfg LoopConfig, hooks LoopHooks) *Loop {
	if core == nil {
		return nil
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = DefaultTickInterval
	}
	if cfg.CommandCapacity <= 0 {
		cfg.CommandCapacity = 256
	}
	deps := core.Deps()
	return &Loop{
		core:          core,
		buffer:        NewCommandBuffer(cfg.CommandCapacity, deps.Metrics),
		hooks:         hooks,
		config:        cfg,
		logger:        deps.Logger,
		metrics:       deps.Metrics,
		perActorCount: make(map[string]int),
		dropCounts:    make(map[string]uint64),
		last:          core.Snapshot(),
	}
}

// Deps returns the injected dependencies for the underlying engine.
func (l *Loop) Deps() Deps {
	if l == nil {
		return Deps{}
	}
	return l.core.Deps()
}

// Scenario names the running engine.
func (l *Loop) Scenario() string {
	if l == nil {
		return ""
	}
	return l.core.Scenario()
}

// Config reports the normalized loop configuration.
func (l *Loop) Config() LoopConfig {
	if l == nil {
		return LoopConfig{}
	}
	return l.config
}

// Tick reports the last completed tick.
func (l *Loop) Tick() uint64 {
	if l == nil {
		return 0
	}
	l.stepMu.Lock()
	defer l.stepMu.Unlock()
	return l.tick
}

// Snapshot returns a copy of the state published by the last completed tick.
func (l *Loop) Snapshot() Snapshot {
	if l == nil {
		return Snapshot{}
	}
	l.stepMu.Lock()
	defer l.stepMu.Unlock()
	return l.last.Clone()
}

// Layout returns the static world description.
func (l *Loop) Layout() WorldLayout {
	if l == nil {
		return WorldLayout{}
	}
	l.stepMu.Lock()
	defer l.stepMu.Unlock()
	return l.core.Layout()
}

// Done reports whether the scenario reached its terminal state.
func (l *Loop) Done() bool {
	if l == nil {
		return false
	}
	l.stepMu.Lock()
	defer l.stepMu.Unlock()
	return l.core.Done()
}

// Pending reports the number of staged commands.
func (l *Loop) Pending() int {
	if l == nil {
		return 0
	}
	return l.buffer.Len()
}

// Enqueue validates and stages a command for the next tick, enforcing
// per-actor throttling and capacity limits.
func (l *Loop) Enqueue(cmd Command) (bool, string) {
	if l == nil {
		return false, CommandRejectQueueFull
	}
	if reason := l.core.Validate(cmd); reason != "" {
		l.reportDrop(reason, cmd, 0)
		return false, reason
	}

	reason := ""
	var dropCount uint64
	warnAt := 0
	l.queueMu.Lock()
	if l.config.PerActorLimit > 0 && cmd.ActorID != "" {
		count := l.perActorCount[cmd.ActorID]
		if count >= l.config.PerActorLimit {
			reason = CommandRejectQueueLimit
			dropCount = l.incrementDropLocked(cmd.ActorID)
		} else {
			l.perActorCount[cmd.ActorID] = count + 1
		}
	}
	if reason == "" {
		if !l.buffer.Push(cmd) {
			reason = CommandRejectQueueFull
			dropCount = l.incrementDropLocked(cmd.ActorID)
		} else if step := l.config.WarningStep; step > 0 {
			if length := l.buffer.Len(); length >= step && length%step == 0 {
				warnAt = length
			}
		}
	}
	l.queueMu.Unlock()

	if reason != "" {
		l.reportDrop(reason, cmd, dropCount)
		return false, reason
	}
	if warnAt > 0 && l.hooks.OnQueueWarning != nil {
		l.hooks.OnQueueWarning(warnAt)
	}
	return true, ""
}

// Advance executes a single simulation step using the staged commands.
func (l *Loop) Advance(ctx context.Context, tc LoopTickContext) LoopStepResult {
	if l == nil {
		return LoopStepResult{}
	}
	commands := l.drainCommands()
	if l.hooks.Prepare != nil {
		l.hooks.Prepare(tc)
	}

	l.stepMu.Lock()
	err := l.core.Apply(ctx, commands)
	l.core.Step(ctx, tc.Tick)
	snapshot := l.core.Snapshot()
	done := l.core.Done()
	l.tick = tc.Tick
	l.last = snapshot
	l.stepMu.Unlock()

	if l.metrics != nil {
		l.metrics.Store(tickCounterMetricKey, tc.Tick)
	}
	return LoopStepResult{
		Tick:     tc.Tick,
		Now:      tc.Now,
		Delta:    tc.Delta,
		Snapshot: snapshot,
		Commands: commands,
		Err:      err,
		Done:     done,
	}
}

// Run drives the fixed-timestep loop until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) error {
	if l == nil {
		return nil
	}
	ticker := time.NewTicker(l.config.TickInterval)
	defer ticker.Stop()

	clock := l.clock()
	last := clock.Now()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			now := clock.Now()
			delta := now.Sub(last)
			last = now
			l.runTick(ctx, clock, now, delta)
		}
	}
}

// RunHeadless steps as fast as possible until the scenario is done, maxTicks
// ticks have run (zero means no limit) or ctx is cancelled. It returns the
// last step result.
func (l *Loop) RunHeadless(ctx context.Context, maxTicks uint64) (LoopStepResult, error) {
	if l == nil {
		return LoopStepResult{}, nil
	}
	clock := l.clock()
	var result LoopStepResult
	for ran := uint64(0); maxTicks == 0 || ran < maxTicks; ran++ {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		result = l.runTick(ctx, clock, clock.Now(), l.config.TickInterval)
		if result.Done {
			break
		}
	}
	return result, nil
}

func (l *Loop) runTick(ctx context.Context, clock logging.Clock, now time.Time, delta time.Duration) LoopStepResult {
	tick := l.nextTick()
	start := clock.Now()
	result := l.Advance(ctx, LoopTickContext{Tick: tick, Now: now, Delta: delta})
	result.Duration = clock.Now().Sub(start)
	result.Budget = l.config.TickInterval
	l.observeBudget(ctx, result)
	if result.Err != nil && l.logger != nil {
		l.logger.Printf("[sim] tick=%d rejected commands: %v", tick, result.Err)
	}
	if l.hooks.AfterStep != nil {
		l.hooks.AfterStep(result)
	}
	return result
}

func (l *Loop) nextTick() uint64 {
	if l.hooks.NextTick != nil {
		return l.hooks.NextTick()
	}
	l.stepMu.Lock()
	defer l.stepMu.Unlock()
	return l.tick + 1
}

func (l *Loop) observeBudget(ctx context.Context, result LoopStepResult) {
	if l.metrics != nil {
		l.metrics.Store(tickDurationMetricKey, uint64(result.Duration.Microseconds()))
	}
	if result.Budget <= 0 || result.Duration <= result.Budget {
		l.overrunStreak = 0
		return
	}
	l.overrunStreak++
	if l.metrics != nil {
		l.metrics.Add(tickOverrunMetricKey, 1)
	}
	simulationlog.TickBudgetOverrun(ctx, l.core.Deps().publisher(), result.Tick, simulationlog.TickBudgetOverrunPayload{
		DurationMillis: result.Duration.Milliseconds(),
		BudgetMillis:   result.Budget.Milliseconds(),
		Ratio:          float64(result.Duration) / float64(result.Budget),
		Streak:         l.overrunStreak,
		Scenario:       l.core.Scenario(),
	}, nil)
}

func (l *Loop) clock() logging.Clock {
	if clock := l.core.Deps().Clock; clock != nil {
		return clock
	}
	return logging.ClockFunc(time.Now)
}

func (l *Loop) drainCommands() []Command {
	l.queueMu.Lock()
	defer l.queueMu.Unlock()
	commands := l.buffer.Drain()
	if len(l.perActorCount) > 0 {
		l.perActorCount = make(map[string]int)
	}
	return commands
}

func (l *Loop) incrementDropLocked(actorID string) uint64 {
	if actorID == "" {
		return 0
	}
	count := l.dropCounts[actorID] + 1
	l.dropCounts[actorID] = count
	return count
}

func (l *Loop) reportDrop(reason string, cmd Command, count uint64) {
	if l.hooks.OnCommandDrop != nil {
		l.hooks.OnCommandDrop(reason, cmd)
	}
	if reason == CommandRejectQueueLimit && count > 0 && count&(count-1) == 0 {
		if l.logger != nil {
			l.logger.Printf(
				"[backpressure] dropping command actor=%s type=%s count=%d limit=%d",
				cmd.ActorID,
				cmd.Type,
				count,
				l.config.PerActorLimit,
			)
		}
	}
}
