package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"

	"rescue-sim/server/internal/ai"
	"rescue-sim/server/internal/steering"
	"rescue-sim/server/internal/world"
	"rescue-sim/server/logging"
)

// EnvPrefix scopes environment overrides, e.g. RESCUE_SIMULATION_MAX_SPEED.
const EnvPrefix = "RESCUE"

// HomeDir is searched for config.yaml after the working directory.
const HomeDir = "~/.rescue-sim"

// Config is the complete process configuration.
type Config struct {
	Logger     LoggerConfig     `mapstructure:"logger" yaml:"logger"`
	Events     EventsConfig     `mapstructure:"events" yaml:"events"`
	Server     ServerConfig     `mapstructure:"server" yaml:"server"`
	Simulation SimulationConfig `mapstructure:"simulation" yaml:"simulation"`
	World      WorldConfig      `mapstructure:"world" yaml:"world"`
}

// LoggerConfig configures the process zap logger.
type LoggerConfig struct {
	Level       string      `mapstructure:"level" yaml:"level"`
	Format      string      `mapstructure:"format" yaml:"format"`
	AddSource   bool        `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string      `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string      `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int         `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int         `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int         `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool        `mapstructure:"compress" yaml:"compress"`
	Colors      ColorConfig `mapstructure:"colors" yaml:"colors"`
}

// ColorConfig names the console color per level.
type ColorConfig struct {
	Debug  string `mapstructure:"debug" yaml:"debug"`
	Info   string `mapstructure:"info" yaml:"info"`
	Warn   string `mapstructure:"warn" yaml:"warn"`
	Error  string `mapstructure:"error" yaml:"error"`
	DPanic string `mapstructure:"dpanic" yaml:"dpanic"`
	Panic  string `mapstructure:"panic" yaml:"panic"`
	Fatal  string `mapstructure:"fatal" yaml:"fatal"`
}

// EventsConfig configures the simulation event router.
type EventsConfig struct {
	Sinks           []string `mapstructure:"sinks" yaml:"sinks"`
	BufferSize      int      `mapstructure:"buffer_size" yaml:"buffer_size"`
	MinimumSeverity string   `mapstructure:"minimum_severity" yaml:"minimum_severity"`
	JSONFile        string   `mapstructure:"json_file" yaml:"json_file"`
}

type ServerConfig struct {
	Addr         string  `mapstructure:"addr" yaml:"addr"`
	EnablePprof  bool    `mapstructure:"enable_pprof" yaml:"enable_pprof"`
	CommandRate  float64 `mapstructure:"command_rate" yaml:"command_rate"`
	CommandBurst int     `mapstructure:"command_burst" yaml:"command_burst"`
}

type SimulationConfig struct {
	Scenario        string  `mapstructure:"scenario" yaml:"scenario"`
	TickIntervalMS  int     `mapstructure:"tick_interval_ms" yaml:"tick_interval_ms"`
	StepSeconds     float64 `mapstructure:"step_seconds" yaml:"step_seconds"`
	MaxSpeed        float64 `mapstructure:"max_speed" yaml:"max_speed"`
	MaxForce        float64 `mapstructure:"max_force" yaml:"max_force"`
	Behavior        string  `mapstructure:"behavior" yaml:"behavior"`
	Avoidance       string  `mapstructure:"avoidance" yaml:"avoidance"`
	CommandCapacity int     `mapstructure:"command_capacity" yaml:"command_capacity"`
	PerActorLimit   int     `mapstructure:"per_actor_limit" yaml:"per_actor_limit"`
}

// TickInterval converts the millisecond setting.
func (s SimulationConfig) TickInterval() time.Duration {
	return time.Duration(s.TickIntervalMS) * time.Millisecond
}

type WorldConfig struct {
	Width       float64 `mapstructure:"width" yaml:"width"`
	Height      float64 `mapstructure:"height" yaml:"height"`
	VictimCount int     `mapstructure:"victim_count" yaml:"victim_count"`
	Seed        string  `mapstructure:"seed" yaml:"seed"`
	Layout      string  `mapstructure:"layout" yaml:"layout"`
}

// WorldConfig converts to the world package configuration.
func (w WorldConfig) WorldConfig() world.Config {
	return world.Config{
		Seed:        w.Seed,
		Width:       w.Width,
		Height:      w.Height,
		VictimCount: w.VictimCount,
		Layout:      w.Layout,
	}
}

// SetDefaults registers every key with its default value.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "rescue-sim")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 50)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 7)
	v.SetDefault("logger.compress", false)
	v.SetDefault("logger.colors.debug", "cyan")
	v.SetDefault("logger.colors.info", "green")
	v.SetDefault("logger.colors.warn", "yellow")
	v.SetDefault("logger.colors.error", "red")
	v.SetDefault("logger.colors.dpanic", "magenta")
	v.SetDefault("logger.colors.panic", "magenta")
	v.SetDefault("logger.colors.fatal", "magenta")

	// -- Events --
	v.SetDefault("events.sinks", []string{logging.SinkConsole})
	v.SetDefault("events.buffer_size", 512)
	v.SetDefault("events.minimum_severity", "info")
	v.SetDefault("events.json_file", "logs/events.jsonl")

	// -- Server --
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.enable_pprof", false)
	v.SetDefault("server.command_rate", 30.0)
	v.SetDefault("server.command_burst", 10)

	// -- Simulation --
	v.SetDefault("simulation.scenario", "rescue")
	v.SetDefault("simulation.tick_interval_ms", 16)
	v.SetDefault("simulation.step_seconds", 0.16)
	v.SetDefault("simulation.max_speed", 25.0)
	v.SetDefault("simulation.max_force", 10.0)
	v.SetDefault("simulation.behavior", steering.IDSeek.String())
	v.SetDefault("simulation.avoidance", string(ai.AvoidReroute))
	v.SetDefault("simulation.command_capacity", 256)
	v.SetDefault("simulation.per_actor_limit", 8)

	// -- World --
	v.SetDefault("world.width", world.DefaultWidth)
	v.SetDefault("world.height", world.DefaultHeight)
	v.SetDefault("world.victim_count", world.DefaultVictimCount)
	v.SetDefault("world.seed", world.DefaultSeed)
	v.SetDefault("world.layout", world.DefaultLayout)
}

// Load builds a viper instance that reads configFile (or config.yaml from
// the working directory and HomeDir), applies RESCUE_ environment overrides
// and defaults, and returns the validated configuration.
func Load(configFile string) (*Config, *viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)

	if configFile != "" {
		expanded, err := homedir.Expand(configFile)
		if err != nil {
			return nil, nil, fmt.Errorf("expand config path: %w", err)
		}
		v.SetConfigFile(expanded)
	} else {
		v.AddConfigPath(".")
		if home, err := homedir.Expand(HomeDir); err == nil {
			v.AddConfigPath(filepath.Clean(home))
		}
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg, err := NewConfigFromViper(v)
	if err != nil {
		return nil, nil, err
	}
	return cfg, v, nil
}

// NewConfigFromViper unmarshals and validates v.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Default returns the configuration produced by defaults alone.
func Default() Config {
	v := viper.New()
	SetDefaults(v)
	var cfg Config
	// Defaults always decode.
	_ = v.Unmarshal(&cfg)
	return cfg
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error

	if c.World.VictimCount <= 0 {
		errs = append(errs, errors.New("world.victim_count must be a positive integer"))
	}
	if c.World.Width <= 0 || c.World.Height <= 0 {
		errs = append(errs, errors.New("world.width and world.height must be positive"))
	}
	if c.World.Layout != "" && !slices.Contains(world.LayoutNames(), c.World.Layout) {
		errs = append(errs, fmt.Errorf("world.layout %q is not one of %v", c.World.Layout, world.LayoutNames()))
	}

	sim := c.Simulation
	if sim.MaxSpeed <= 0 {
		errs = append(errs, errors.New("simulation.max_speed must be positive"))
	}
	if sim.MaxForce <= 0 {
		errs = append(errs, errors.New("simulation.max_force must be positive"))
	}
	if sim.StepSeconds <= 0 {
		errs = append(errs, errors.New("simulation.step_seconds must be positive"))
	}
	if sim.TickIntervalMS < 1 || sim.TickIntervalMS > 1000 {
		errs = append(errs, fmt.Errorf("simulation.tick_interval_ms %d outside 1-1000", sim.TickIntervalMS))
	}
	if sim.Scenario != "steering" && sim.Scenario != "rescue" {
		errs = append(errs, fmt.Errorf("simulation.scenario %q must be steering or rescue", sim.Scenario))
	}
	if _, err := steering.ParseID(sim.Behavior); err != nil {
		errs = append(errs, fmt.Errorf("simulation.behavior: %w", err))
	}
	if _, err := ai.NewAvoider(ai.AvoidanceStrategy(sim.Avoidance), nil); err != nil {
		errs = append(errs, fmt.Errorf("simulation.avoidance: %w", err))
	}
	if sim.CommandCapacity <= 0 {
		errs = append(errs, errors.New("simulation.command_capacity must be positive"))
	}

	if c.Server.CommandRate <= 0 || c.Server.CommandBurst <= 0 {
		errs = append(errs, errors.New("server.command_rate and server.command_burst must be positive"))
	}

	if _, err := logging.ParseSeverity(c.Events.MinimumSeverity); err != nil {
		errs = append(errs, fmt.Errorf("events.minimum_severity: %w", err))
	}
	for _, sink := range c.Events.Sinks {
		switch sink {
		case logging.SinkConsole, logging.SinkJSON, logging.SinkMemory:
		default:
			errs = append(errs, fmt.Errorf("events.sinks: unknown sink %q", sink))
		}
	}
	if slices.Contains(c.Events.Sinks, logging.SinkJSON) && c.Events.JSONFile == "" {
		errs = append(errs, errors.New("events.json_file is required when the json sink is enabled"))
	}

	return errors.Join(errs...)
}

// EventsLogging converts the events section into a router configuration.
func (c *Config) EventsLogging() logging.Config {
	out := logging.DefaultConfig()
	out.EnabledSinks = append([]string(nil), c.Events.Sinks...)
	if c.Events.BufferSize > 0 {
		out.BufferSize = c.Events.BufferSize
	}
	if severity, err := logging.ParseSeverity(c.Events.MinimumSeverity); err == nil {
		out.MinimumSeverity = severity
	}
	out.JSON.FilePath = c.Events.JSONFile
	out.Console.UseColor = c.Logger.Format == "console"
	out.Fields = map[string]any{"scenario": c.Simulation.Scenario}
	return out
}
