// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Crowd     CrowdConfig     `yaml:"crowd"`
	Steering  SteeringConfig  `yaml:"steering"`
	Sim       SimConfig       `yaml:"sim"`
	Governor  GovernorConfig  `yaml:"governor"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Savestate SavestateConfig `yaml:"savestate"`
	Driver    DriverConfig    `yaml:"driver"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// CrowdConfig holds agent pool sizing parameters.
type CrowdConfig struct {
	Capacity    int     `yaml:"capacity"`     // Fixed slot count; never grows after startup
	MaxSize     int     `yaml:"max_size"`     // Active-agent ceiling (0 = capacity)
	InitialSize int     `yaml:"initial_size"` // Agents alive at startup
	SpawnRadius float64 `yaml:"spawn_radius"` // Half-extent of the spawn cube around the leader
}

// SteeringConfig holds flocking behavior parameters.
type SteeringConfig struct {
	MovementSpeed    float64 `yaml:"movement_speed"`    // Cruise speed; velocity is pinned to this
	SeparationRadius float64 `yaml:"separation_radius"`
	AlignmentRadius  float64 `yaml:"alignment_radius"`
	CohesionRadius   float64 `yaml:"cohesion_radius"`
	SeparationWeight float64 `yaml:"separation_weight"`
	AlignmentWeight  float64 `yaml:"alignment_weight"`
	CohesionWeight   float64 `yaml:"cohesion_weight"`
	SeekSwitch       float64 `yaml:"seek_switch"` // Beyond this distance agents chase the leader instead of the attractor
}

// SimConfig holds simulation stepping parameters.
type SimConfig struct {
	DT float64 `yaml:"dt"`
}

// GovernorConfig holds adaptive population shedding parameters.
type GovernorConfig struct {
	Enabled     bool    `yaml:"enabled"`
	MinFPS      float64 `yaml:"min_fps"`      // Shed when mean FPS over a window drops below this
	ShedFactor  float64 `yaml:"shed_factor"`  // New size = round(size * this) on shed
	FloorSize   int     `yaml:"floor_size"`   // Never shed below this many agents
	IntervalSec float64 `yaml:"interval_sec"` // Evaluation window length
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         float64 `yaml:"stats_window"`
	PerfCollectorWindow int     `yaml:"perf_collector_window"`
}

// SavestateConfig holds run persistence parameters.
type SavestateConfig struct {
	Path string `yaml:"path"` // SQLite database path ("" disables persistence)
}

// DriverConfig holds headless driver parameters.
type DriverConfig struct {
	LeaderOrbitRadius  float64 `yaml:"leader_orbit_radius"`  // Radius of the leader's circular path
	LeaderAngularSpeed float64 `yaml:"leader_angular_speed"` // Radians per simulated second
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	DT32             float32       // Sim.DT as float32
	GovernorInterval time.Duration // Governor.IntervalSec as a duration
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	// Start with embedded defaults
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	// Load user config if provided
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	// Compute derived values
	cfg.computeDerived()

	return cfg, nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.DT32 = float32(c.Sim.DT)
	c.Derived.GovernorInterval = time.Duration(c.Governor.IntervalSec * float64(time.Second))

	// Max size defaults to capacity if not specified
	if c.Crowd.MaxSize == 0 || c.Crowd.MaxSize > c.Crowd.Capacity {
		c.Crowd.MaxSize = c.Crowd.Capacity
	}
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
