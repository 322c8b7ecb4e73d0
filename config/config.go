// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Screen      ScreenConfig      `yaml:"screen"`
	World       WorldConfig       `yaml:"world"`
	Sim         SimConfig         `yaml:"sim"`
	Population  PopulationConfig  `yaml:"population"`
	Needs       NeedsConfig       `yaml:"needs"`
	Resources   ResourcesConfig   `yaml:"resources"`
	Movement    MovementConfig    `yaml:"movement"`
	Comms       CommsConfig       `yaml:"comms"`
	Lexicon     LexiconConfig     `yaml:"lexicon"`
	Convergence ConvergenceConfig `yaml:"convergence"`
	Advisor     AdvisorConfig     `yaml:"advisor"`
	Telemetry   TelemetryConfig   `yaml:"telemetry"`
	Audio       AudioConfig       `yaml:"audio"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// WorldConfig holds world dimensions and grid geometry.
// World coordinates are integers snapped to multiples of grid_step.
type WorldConfig struct {
	Width    int `yaml:"width"`     // World width in world units (0 = use screen width)
	Height   int `yaml:"height"`    // World height in world units (0 = use screen height)
	GridStep int `yaml:"grid_step"` // Tile size; all positions snap to this
}

// SimConfig holds simulation timing parameters.
type SimConfig struct {
	TickRateHz int `yaml:"tick_rate_hz"`
}

// PopulationConfig holds population parameters.
type PopulationConfig struct {
	Initial int `yaml:"initial"`
}

// NeedsConfig holds need decay and consumption parameters.
// Hunger and thirst are integers in [0, max]; reaching max is lethal.
type NeedsConfig struct {
	Max        int     `yaml:"max"`         // Lethal ceiling
	HungerRate float64 `yaml:"hunger_rate"` // Hunger gained per second
	ThirstRate float64 `yaml:"thirst_rate"` // Thirst gained per second
	HungerSeek int     `yaml:"hunger_seek"` // Hunger level at which a remembered food tile is sought
	ThirstSeek int     `yaml:"thirst_seek"` // Thirst level at which a remembered water tile is sought
	FoodFill   int     `yaml:"food_fill"`   // Hunger removed by eating
	WaterFill  int     `yaml:"water_fill"`  // Thirst removed by drinking
}

// ResourcesConfig holds tile spawning and regeneration parameters.
type ResourcesConfig struct {
	InitialFood    int     `yaml:"initial_food"`
	InitialWater   int     `yaml:"initial_water"`
	RegenPerSecond float64 `yaml:"regen_per_second"` // Tiles respawned per second (per kind)
	PatchScale     float64 `yaml:"patch_scale"`      // Noise frequency for fertile patches
	PatchThreshold float64 `yaml:"patch_threshold"`  // Noise value above which a cell is fertile
}

// MovementConfig holds movement and memory parameters.
type MovementConfig struct {
	SeekSpeed   int     `yaml:"seek_speed"`    // Per-axis step toward a target, world units per tick
	MemorySpanS float64 `yaml:"memory_span_s"` // Seconds before an unrefreshed memory is forgotten
}

// CommsConfig holds chirp broadcast and hearing parameters.
type CommsConfig struct {
	ChirpRadius            float64 `yaml:"chirp_radius"`             // Hearing range in world units
	BroadcastCooldownTicks int     `yaml:"broadcast_cooldown_ticks"` // Min ticks between an agent's chirps
	ExpectationWindowTicks int     `yaml:"expectation_window_ticks"` // Ticks a heard chirp stays pending
	ChirpIDSpace           int     `yaml:"chirp_id_space"`           // Number of distinct chirp identifiers
}

// LexiconConfig holds reinforcement-learning parameters for chirp meaning.
type LexiconConfig struct {
	LearnRate       float64 `yaml:"learn_rate"`       // Weight gained on a validated expectation
	ForgetRate      float64 `yaml:"forget_rate"`      // Weight lost on an expired expectation
	DecayRate       float64 `yaml:"decay_rate"`       // Multiplicative decay per second
	InitialWeight   float64 `yaml:"initial_weight"`   // Weight of a freshly adopted belief
	ConfidentWeight float64 `yaml:"confident_weight"` // Weight at which a mapping overrides heard concepts
	Epsilon         float64 `yaml:"epsilon"`          // Weights below this are pruned
	MaxEntries      int     `yaml:"max_entries"`      // Per-agent lexicon slot capacity
}

// ConvergenceConfig holds the population agreement metric parameters.
type ConvergenceConfig struct {
	IntervalTicks  int     `yaml:"interval_ticks"`  // Ticks between metric recomputations
	DominantWeight float64 `yaml:"dominant_weight"` // Weight at which an entry counts as dominant
}

// AdvisorConfig holds the optional remote advisor connection parameters.
type AdvisorConfig struct {
	Addr            string `yaml:"addr"`              // UDP host:port; empty disables the advisor
	StaleAfterTicks int    `yaml:"stale_after_ticks"` // Suggestions older than this fall back to local decisions
	MaxPacketBytes  int    `yaml:"max_packet_bytes"`  // Datagram payload bound; snapshots chunk above it
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow float64 `yaml:"stats_window"` // Window length in simulation seconds
	TopEntries  int     `yaml:"top_entries"`  // Lexicon entries exposed per agent on the display surface
}

// AudioConfig holds chirp playback parameters.
type AudioConfig struct {
	Enabled bool `yaml:"enabled"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	DT       float64 // Seconds per tick
	DT32     float32 // DT as float32
	WorldW   int     // Effective world width
	WorldH   int     // Effective world height
	GridCols int     // WorldW / GridStep
	GridRows int     // WorldH / GridStep
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

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	cfg.computeDerived()

	return cfg, nil
}

// validate rejects configurations the tick loop cannot run with.
func (c *Config) validate() error {
	if c.Sim.TickRateHz <= 0 {
		return fmt.Errorf("sim.tick_rate_hz must be positive, got %d", c.Sim.TickRateHz)
	}
	if c.World.GridStep <= 0 {
		return fmt.Errorf("world.grid_step must be positive, got %d", c.World.GridStep)
	}
	if c.Needs.Max <= 0 {
		return fmt.Errorf("needs.max must be positive, got %d", c.Needs.Max)
	}
	if c.Lexicon.MaxEntries <= 0 {
		return fmt.Errorf("lexicon.max_entries must be positive, got %d", c.Lexicon.MaxEntries)
	}
	if c.Comms.ChirpIDSpace <= 0 {
		return fmt.Errorf("comms.chirp_id_space must be positive, got %d", c.Comms.ChirpIDSpace)
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.DT = 1.0 / float64(c.Sim.TickRateHz)
	c.Derived.DT32 = float32(c.Derived.DT)

	// World dimensions default to screen size if not specified
	worldW := c.World.Width
	if worldW == 0 {
		worldW = c.Screen.Width
	}
	worldH := c.World.Height
	if worldH == 0 {
		worldH = c.Screen.Height
	}
	c.Derived.WorldW = worldW
	c.Derived.WorldH = worldH
	c.Derived.GridCols = worldW / c.World.GridStep
	c.Derived.GridRows = worldH / c.World.GridStep
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
