package world

import "strings"

const (
	DefaultSeed        = "rescue"
	DefaultWidth       = 800.0
	DefaultHeight      = 600.0
	DefaultVictimCount = 6
	DefaultLayout      = "default"
)

// Config captures the world construction knobs. Zero values are replaced by
// defaults during normalization.
type Config struct {
	Seed        string  `json:"seed" yaml:"seed"`
	Width       float64 `json:"width" yaml:"width"`
	Height      float64 `json:"height" yaml:"height"`
	VictimCount int     `json:"victimCount" yaml:"victimCount"`
	Layout      string  `json:"layout" yaml:"layout"`
}

func (cfg Config) normalized() Config {
	normalized := cfg
	normalized.Seed = strings.TrimSpace(normalized.Seed)
	if normalized.Seed == "" {
		normalized.Seed = DefaultSeed
	}
	normalized.Layout = strings.TrimSpace(normalized.Layout)
	if normalized.Layout == "" {
		normalized.Layout = DefaultLayout
	}
	if normalized.VictimCount < 0 {
		normalized.VictimCount = 0
	}
	if normalized.Width <= 0 {
		normalized.Width = DefaultWidth
	}
	if normalized.Height <= 0 {
		normalized.Height = DefaultHeight
	}
	return normalized
}

func (cfg Config) Normalized() Config {
	return cfg.normalized()
}

func DefaultConfig() Config {
	return Config{
		Seed:        DefaultSeed,
		Width:       DefaultWidth,
		Height:      DefaultHeight,
		VictimCount: DefaultVictimCount,
		Layout:      DefaultLayout,
	}
}
