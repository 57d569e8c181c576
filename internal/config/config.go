// Package config loads the locomotion simulator configuration from YAML.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/zeusync/locomotion/internal/core/lean"
	"github.com/zeusync/locomotion/internal/core/matching"
	"github.com/zeusync/locomotion/internal/core/observability/log"
	"github.com/zeusync/locomotion/internal/core/predict"
	"github.com/zeusync/locomotion/internal/core/system"
)

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	Log        LogConfig        `json:"log" yaml:"log"`
	Locomotion LocomotionConfig `json:"locomotion" yaml:"locomotion"`
	World      WorldConfig      `json:"world" yaml:"world"`
	Telemetry  TelemetryConfig  `json:"telemetry" yaml:"telemetry"`
	Assets     AssetsConfig     `json:"assets" yaml:"assets"`
}

type LogConfig struct {
	Level string `json:"level" yaml:"level"`
}

type LocomotionConfig struct {
	LandingThreshold float64 `json:"landing_threshold" yaml:"landing_threshold"`
	MaxIterations    int     `json:"max_iterations" yaml:"max_iterations"`
	BrakingSubStep   float64 `json:"braking_sub_step" yaml:"braking_sub_step"`
	LeanInterpSpeed  float64 `json:"lean_interp_speed" yaml:"lean_interp_speed"`
}

type WorldConfig struct {
	TickRate    float64 `json:"tick_rate" yaml:"tick_rate"`
	MaxParallel int     `json:"max_parallel" yaml:"max_parallel"`
}

type TelemetryConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Addr    string `json:"addr" yaml:"addr"`
	Path    string `json:"path" yaml:"path"`
}

// AssetsConfig points at the animation library and names the sequences bound
// to each distance-matched slot.
type AssetsConfig struct {
	Library   string `json:"library" yaml:"library"`
	Start     string `json:"start,omitempty" yaml:"start,omitempty"`
	Stop      string `json:"stop,omitempty" yaml:"stop,omitempty"`
	JumpStart string `json:"jump_start,omitempty" yaml:"jump_start,omitempty"`
	FallLand  string `json:"fall_land,omitempty" yaml:"fall_land,omitempty"`
}

func Default() *Config {
	return &Config{
		Log: LogConfig{Level: "info"},
		Locomotion: LocomotionConfig{
			LandingThreshold: matching.DefaultLandingThreshold,
			MaxIterations:    predict.DefaultMaxIterations,
			BrakingSubStep:   predict.MaxBrakingSubStep,
			LeanInterpSpeed:  lean.DefaultInterpSpeed,
		},
		World: WorldConfig{
			TickRate:    system.DefaultTickRate,
			MaxParallel: 0,
		},
		Telemetry: TelemetryConfig{
			Enabled: false,
			Addr:    "127.0.0.1:8090",
			Path:    "/ws",
		},
	}
}

// Load decodes YAML over the defaults and validates the result. An empty
// document yields the defaults.
func Load(r io.Reader) (*Config, error) {
	c := Default()
	if err := yaml.NewDecoder(r).Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func LoadFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()
	return Load(f)
}

func (c *Config) Validate() error {
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: log.level: %v", ErrInvalidConfig, err)
	}
	l := c.Locomotion
	if l.LandingThreshold <= 0 {
		return fmt.Errorf("%w: locomotion.landing_threshold must be positive", ErrInvalidConfig)
	}
	if l.MaxIterations <= 0 {
		return fmt.Errorf("%w: locomotion.max_iterations must be positive", ErrInvalidConfig)
	}
	if l.BrakingSubStep <= 0 {
		return fmt.Errorf("%w: locomotion.braking_sub_step must be positive", ErrInvalidConfig)
	}
	if l.LeanInterpSpeed < 0 {
		return fmt.Errorf("%w: locomotion.lean_interp_speed must not be negative", ErrInvalidConfig)
	}
	if c.World.TickRate <= 0 {
		return fmt.Errorf("%w: world.tick_rate must be positive", ErrInvalidConfig)
	}
	if c.World.MaxParallel < 0 {
		return fmt.Errorf("%w: world.max_parallel must not be negative", ErrInvalidConfig)
	}
	if c.Telemetry.Enabled && c.Telemetry.Addr == "" {
		return fmt.Errorf("%w: telemetry.addr is required when telemetry is enabled", ErrInvalidConfig)
	}
	return nil
}

// LogLevel is the parsed log level; Validate guarantees it parses.
func (c *Config) LogLevel() log.Level {
	lvl, _ := log.ParseLevel(c.Log.Level)
	return lvl
}

// Matching converts the locomotion section for the matching machine.
func (c *Config) Matching() matching.Config {
	return matching.Config{
		LandingThreshold: c.Locomotion.LandingThreshold,
		MaxIterations:    c.Locomotion.MaxIterations,
		BrakingSubStep:   c.Locomotion.BrakingSubStep,
	}
}

// WorldOptions converts the world section.
func (c *Config) WorldOptions(l log.Log) system.Options {
	return system.Options{
		TickRate:    c.World.TickRate,
		MaxParallel: c.World.MaxParallel,
		Logger:      l,
	}
}
