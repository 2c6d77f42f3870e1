// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// ErrInvalid is returned when a loaded configuration cannot drive a simulation.
var ErrInvalid = errors.New("invalid config")

// Config holds all simulation configuration parameters.
type Config struct {
	Screen      ScreenConfig       `yaml:"screen"`
	Simulation  SimulationConfig   `yaml:"simulation"`
	Fluid       FluidConfig        `yaml:"fluid"`
	Container   ContainerConfig    `yaml:"container"`
	FluidBlocks []FluidBlockConfig `yaml:"fluid_blocks"`
	Fountain    FountainConfig     `yaml:"fountain"`
	Telemetry   TelemetryConfig    `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings for the viewer.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// SimulationConfig holds time integration settings.
type SimulationConfig struct {
	Mode    string  `yaml:"mode"`    // "static" or "fountain"
	DT      float64 `yaml:"dt"`      // simulated seconds per Step call
	Substep int     `yaml:"substep"` // solver passes per Step call
}

// FluidConfig holds the SPH material and kernel parameters.
type FluidConfig struct {
	Scale               float64 `yaml:"scale"`                // world -> simulation coordinate factor
	MaxVelocity         float64 `yaml:"max_velocity"`         // speed clamp
	VelocityAttenuation float64 `yaml:"velocity_attenuation"` // wall restitution multiplier
	Eps                 float64 `yaml:"eps"`                  // singular-kernel guard distance
	SupportRadius       float64 `yaml:"support_radius"`
	ParticleRadius      float64 `yaml:"particle_radius"`
	GravityX            float64 `yaml:"gravity_x"`
	GravityY            float64 `yaml:"gravity_y"` // positive value pulls toward -Y
	Density             float64 `yaml:"density"`   // rest density
	Stiffness           float64 `yaml:"stiffness"` // EOS stiffness
	Exponent            float64 `yaml:"exponent"`  // EOS exponent
	Viscosity           float64 `yaml:"viscosity"`
}

// ContainerConfig holds the axis-aligned domain corners in world units.
type ContainerConfig struct {
	Lower [2]float64 `yaml:"lower"`
	Upper [2]float64 `yaml:"upper"`
}

// FluidBlockConfig describes one rectangular fill used by the static mode.
type FluidBlockConfig struct {
	Lower         [2]float64 `yaml:"lower"`
	Upper         [2]float64 `yaml:"upper"`
	InitVelocity  [2]float64 `yaml:"init_velocity"`
	ParticleSpace float64    `yaml:"particle_space"`
}

// FountainConfig holds the continuous-flow emitter and drain layout.
type FountainConfig struct {
	Enabled          bool    `yaml:"enabled"`
	MaxParticles     int     `yaml:"max_particles"`
	KillBound        float64 `yaml:"kill_bound"`
	EmitterMinX      float64 `yaml:"emitter_min_x"`
	EmitterMaxX      float64 `yaml:"emitter_max_x"`
	EmitterY         float64 `yaml:"emitter_y"`
	EmitterSpeed     float64 `yaml:"emitter_speed"`
	EmitterHalfAngle float64 `yaml:"emitter_half_angle"` // radians
	EmitterLayers    int     `yaml:"emitter_layers"`
	DrainMinX        float64 `yaml:"drain_min_x"`
	DrainMaxX        float64 `yaml:"drain_max_x"`
	DrainY           float64 `yaml:"drain_y"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         float64 `yaml:"stats_window"`          // simulated seconds per stats window
	PerfCollectorWindow int     `yaml:"perf_collector_window"` // ticks averaged by the perf collector
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	DT32             float32 // Simulation.DT as float32
	ParticleDiameter float32 // 2 * ParticleRadius
	ParticleVolume   float32 // ParticleDiameter^2 (2D)
	Fountain         bool    // effective fountain mode (mode string or enabled flag)
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
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

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

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.computeDerived()

	return cfg, nil
}

// Validate rejects settings the solver cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.Simulation.DT <= 0:
		return fmt.Errorf("%w: simulation.dt must be positive, got %v", ErrInvalid, c.Simulation.DT)
	case c.Simulation.Substep < 1:
		return fmt.Errorf("%w: simulation.substep must be >= 1, got %d", ErrInvalid, c.Simulation.Substep)
	case c.Fluid.SupportRadius <= 0:
		return fmt.Errorf("%w: fluid.support_radius must be positive", ErrInvalid)
	case c.Fluid.Scale <= 0:
		return fmt.Errorf("%w: fluid.scale must be positive", ErrInvalid)
	case c.Fluid.Density <= 0:
		return fmt.Errorf("%w: fluid.density must be positive", ErrInvalid)
	case c.Container.Lower[0] >= c.Container.Upper[0] || c.Container.Lower[1] >= c.Container.Upper[1]:
		return fmt.Errorf("%w: container lower %v must be below upper %v", ErrInvalid, c.Container.Lower, c.Container.Upper)
	}
	switch c.Simulation.Mode {
	case "", "static", "fountain":
	default:
		return fmt.Errorf("%w: unknown simulation.mode %q", ErrInvalid, c.Simulation.Mode)
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.DT32 = float32(c.Simulation.DT)
	c.Derived.ParticleDiameter = float32(c.Fluid.ParticleRadius * 2)
	c.Derived.ParticleVolume = c.Derived.ParticleDiameter * c.Derived.ParticleDiameter
	c.Derived.Fountain = c.Simulation.Mode == "fountain" || c.Fountain.Enabled

	if c.Fountain.MaxParticles <= 0 {
		c.Fountain.MaxParticles = 40000
	}
	if c.Fountain.EmitterLayers <= 0 {
		c.Fountain.EmitterLayers = 2
	}
}

// SetFountain switches the effective mode and keeps the mode string in sync.
func (c *Config) SetFountain(on bool) {
	c.Fountain.Enabled = on
	if on {
		c.Simulation.Mode = "fountain"
	} else {
		c.Simulation.Mode = "static"
	}
	c.computeDerived()
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
