package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	server "rescue-sim/server"
	"rescue-sim/server/internal/ai"
	"rescue-sim/server/internal/config"
	servernet "rescue-sim/server/internal/net"
	"rescue-sim/server/internal/observability"
	"rescue-sim/server/internal/sim"
	state "rescue-sim/server/internal/state"
	"rescue-sim/server/internal/steering"
	"rescue-sim/server/internal/telemetry"
	"rescue-sim/server/internal/world"
	"rescue-sim/server/logging"
	loggingSinks "rescue-sim/server/logging/sinks"
)

const shutdownTimeout = 5 * time.Second

// Options carries process-level wiring that does not belong in config.yaml.
type Options struct {
	Logger    *zap.Logger
	ClientDir string
	// Listener replaces server.addr when set.
	Listener net.Listener
}

// Runtime is the assembled simulation: event router, world, loop and hub.
type Runtime struct {
	Config  *config.Config
	Logger  *zap.Logger
	Router  *logging.Router
	Metrics *logging.Metrics
	World   *world.World
	Loop    *sim.Loop
	Hub     *server.Hub
}

// BuildSinks constructs the event sinks named in cfg.EnabledSinks.
func BuildSinks(cfg logging.Config, logger *zap.Logger) ([]logging.NamedSink, error) {
	var sinks []logging.NamedSink
	for _, name := range cfg.EnabledSinks {
		switch name {
		case logging.SinkConsole:
			sinks = append(sinks, logging.NamedSink{Name: name, Sink: loggingSinks.NewConsoleSink(logger)})
		case logging.SinkJSON:
			sink, err := loggingSinks.NewJSONFile(cfg.JSON)
			if err != nil {
				return nil, fmt.Errorf("json event sink: %w", err)
			}
			sinks = append(sinks, logging.NamedSink{Name: name, Sink: sink})
		case logging.SinkMemory:
			sinks = append(sinks, logging.NamedSink{Name: name, Sink: loggingSinks.NewMemorySink()})
		default:
			return nil, fmt.Errorf("unknown event sink %q", name)
		}
	}
	return sinks, nil
}

// Build assembles a Runtime from validated configuration. Callers must Close it.
func Build(cfg *config.Config, logger *zap.Logger) (*Runtime, error) {
	if cfg == nil {
		return nil, errors.New("app: nil config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if logger == nil {
		logger = observability.GetLogger()
	}

	eventsCfg := cfg.EventsLogging()
	sinks, err := BuildSinks(eventsCfg, logger)
	if err != nil {
		return nil, err
	}
	router, err := logging.NewRouter(logging.ClockFunc(time.Now), eventsCfg, sinks, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to construct logging router: %w", err)
	}

	rt := &Runtime{
		Config:  cfg,
		Logger:  logger,
		Router:  router,
		Metrics: &logging.Metrics{},
	}
	events := logging.WithFields(router, map[string]any{"scenario": cfg.Simulation.Scenario})

	w, err := world.New(cfg.World.WorldConfig(), world.Deps{Publisher: events})
	if err != nil {
		rt.closeRouter()
		return nil, fmt.Errorf("build world: %w", err)
	}
	rt.World = w

	behavior, err := steering.ParseID(cfg.Simulation.Behavior)
	if err != nil {
		rt.closeRouter()
		return nil, err
	}
	tuning := state.Tuning{MaxSpeed: cfg.Simulation.MaxSpeed, MaxForce: cfg.Simulation.MaxForce}

	deps := sim.Deps{
		Logger:    telemetry.WrapZap(logger, "sim"),
		Metrics:   telemetry.WrapMetrics(rt.Metrics),
		Clock:     logging.ClockFunc(time.Now),
		Publisher: events,
	}
	hooks := sim.LoopHooks{
		AfterStep: func(result sim.LoopStepResult) {
			if rt.Hub != nil {
				rt.Hub.Broadcast(context.Background(), result)
			}
		},
		OnQueueWarning: func(length int) {
			logger.Warn("command queue growing", zap.Int("length", length))
		},
	}

	loop, err := sim.NewEngine(cfg.Simulation.Scenario,
		sim.WithDeps(deps),
		sim.WithWorld(w),
		sim.WithSteeringConfig(sim.SteeringConfig{
			Width:       cfg.World.Width,
			Height:      cfg.World.Height,
			Tuning:      tuning,
			StepSeconds: cfg.Simulation.StepSeconds,
			Behavior:    behavior,
		}),
		sim.WithRescueConfig(sim.RescueConfig{
			Tuning:      tuning,
			StepSeconds: cfg.Simulation.StepSeconds,
			Avoidance:   ai.AvoidanceStrategy(cfg.Simulation.Avoidance),
		}),
		sim.WithLoopConfig(sim.LoopConfig{
			TickInterval:    cfg.Simulation.TickInterval(),
			CommandCapacity: cfg.Simulation.CommandCapacity,
			PerActorLimit:   cfg.Simulation.PerActorLimit,
			WarningStep:     cfg.Simulation.CommandCapacity / 2,
		}),
		sim.WithLoopHooks(hooks),
	)
	if err != nil {
		rt.closeRouter()
		return nil, err
	}
	rt.Loop = loop

	rt.Hub = server.NewHub(loop, server.HubConfig{
		Logger:       logger,
		Publisher:    events,
		Metrics:      rt.Metrics,
		CommandRate:  rate.Limit(cfg.Server.CommandRate),
		CommandBurst: cfg.Server.CommandBurst,
	})
	return rt, nil
}

// Handler returns the HTTP routes for this runtime.
func (rt *Runtime) Handler(clientDir string) http.Handler {
	return servernet.NewHTTPHandler(rt.Hub, rt.Loop, servernet.HTTPHandlerConfig{
		ClientDir:     clientDir,
		Logger:        rt.Logger,
		Observability: observability.Config{EnablePprof: rt.Config.Server.EnablePprof},
		RouterStats:   rt.Router.Stats,
		Metrics:       rt.Metrics,
	})
}

// Close disconnects subscribers and flushes the event router.
func (rt *Runtime) Close(ctx context.Context) error {
	if rt.Hub != nil {
		rt.Hub.Close(ctx)
	}
	return rt.Router.Close(ctx)
}

func (rt *Runtime) closeRouter() {
	if err := rt.Router.Close(context.Background()); err != nil {
		rt.Logger.Warn("failed to close logging router", zap.Error(err))
	}
}

// Run serves the simulation over HTTP until ctx is cancelled or either the
// loop or the HTTP server fails.
func Run(ctx context.Context, cfg *config.Config, opts Options) error {
	rt, err := Build(cfg, opts.Logger)
	if err != nil {
		return err
	}
	logger := rt.Logger

	clientDir := opts.ClientDir
	if clientDir == "" {
		if dir, ok := ResolveClientDir(); ok {
			clientDir = dir
			logger.Info("serving client assets", zap.String("dir", dir))
		}
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           rt.Handler(clientDir),
		ReadHeaderTimeout: 10 * time.Second,
	}

	listener := opts.Listener
	if listener == nil {
		listener, err = net.Listen("tcp", cfg.Server.Addr)
		if err != nil {
			rt.closeRouter()
			return fmt.Errorf("listen on %s: %w", cfg.Server.Addr, err)
		}
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return rt.Loop.Run(groupCtx)
	})
	group.Go(func() error {
		logger.Info("server listening",
			zap.String("addr", listener.Addr().String()),
			zap.String("scenario", cfg.Simulation.Scenario),
		)
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		rt.Hub.Close(shutdownCtx)
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	runErr := group.Wait()

	closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := rt.Close(closeCtx); err != nil {
		logger.Warn("failed to close logging router", zap.Error(err))
	}
	logger.Info("server stopped")
	return runErr
}

// Summary reports the outcome of a headless run.
type Summary struct {
	Scenario  string        `json:"scenario" yaml:"scenario"`
	Ticks     uint64        `json:"ticks" yaml:"ticks"`
	Rescued   int           `json:"rescued" yaml:"rescued"`
	Remaining int           `json:"remaining" yaml:"remaining"`
	Done      bool          `json:"done" yaml:"done"`
	Elapsed   time.Duration `json:"elapsed" yaml:"elapsed"`
}

// Simulate steps the configured scenario without a ticker or transport until
// it finishes or maxTicks ticks have run.
func Simulate(ctx context.Context, cfg *config.Config, logger *zap.Logger, maxTicks uint64) (Summary, error) {
	rt, err := Build(cfg, logger)
	if err != nil {
		return Summary{}, err
	}
	defer func() {
		if err := rt.Close(context.Background()); err != nil {
			rt.Logger.Warn("failed to close logging router", zap.Error(err))
		}
	}()

	start := time.Now()
	result, err := rt.Loop.RunHeadless(ctx, maxTicks)
	summary := Summary{
		Scenario:  rt.Loop.Scenario(),
		Ticks:     result.Tick,
		Rescued:   result.Snapshot.Rescued,
		Remaining: result.Snapshot.Remaining,
		Done:      result.Done,
		Elapsed:   time.Since(start),
	}
	rt.Logger.Info("simulation finished",
		zap.String("scenario", summary.Scenario),
		zap.Uint64("ticks", summary.Ticks),
		zap.Int("rescued", summary.Rescued),
		zap.Int("remaining", summary.Remaining),
		zap.Bool("done", summary.Done),
		zap.Duration("elapsed", summary.Elapsed),
	)
	return summary, err
}
