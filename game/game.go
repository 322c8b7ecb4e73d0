// Package game wires the simulation together: the ECS world of blobs, the
// tile map they forage on, the chirp signaling between them, and the
// telemetry, audio and advisor surfaces around the tick loop.
package game

import (
	"log/slog"
	"math/rand/v2"

	"github.com/mlange-42/ark/ecs"

	"github.com/hivelab/hive/advisor"
	"github.com/hivelab/hive/camera"
	"github.com/hivelab/hive/components"
	"github.com/hivelab/hive/config"
	"github.com/hivelab/hive/lexicon"
	"github.com/hivelab/hive/sound"
	"github.com/hivelab/hive/systems"
	"github.com/hivelab/hive/telemetry"
)

// Options configure a game instance beyond what the config file carries.
type Options struct {
	Seed           int64
	LogStats       bool
	StatsWindowSec float64
	OutputDir      string
	Headless       bool
	StepsPerUpdate int
	AdvisorAddr    string // overrides config when non-empty
	Audio          bool
}

// Game holds the complete simulation state.
type Game struct {
	world *ecs.World
	rng   *rand.Rand

	blobMapper *ecs.Map6[
		components.Agent,
		components.Position,
		components.Needs,
		components.Memory,
		components.Comms,
		components.Vocab,
	]
	blobFilter *ecs.Filter6[
		components.Agent,
		components.Position,
		components.Needs,
		components.Memory,
		components.Comms,
		components.Vocab,
	]

	// Individual component mappers for lookups
	posMap   *ecs.Map1[components.Position]
	needsMap *ecs.Map1[components.Needs]
	memMap   *ecs.Map1[components.Memory]
	commsMap *ecs.Map1[components.Comms]
	vocabMap *ecs.Map1[components.Vocab]

	// Entity lookup by agent id, in creation order
	byID []ecs.Entity

	tiles       *systems.TileMap
	spatialGrid *systems.SpatialGrid
	events      *systems.EventBuffer

	// Per-tick parameter bundles derived from config
	needsParams systems.NeedsParams
	moveParams  systems.MovementParams
	commsParams systems.CommsParams
	memorySpan  float64

	// Telemetry
	collector     *telemetry.Collector
	perfCollector *telemetry.PerfCollector
	convergence   *telemetry.ConvergenceTracker
	outputManager *telemetry.OutputManager
	logStats      bool

	// Advisor link, nil when disabled
	advisorClient *advisor.Client
	advisorStale  int32

	// Audio, nil when disabled or headless
	audio *audioPlayer
	bank  *sound.Bank

	// Scratch buffers reused across ticks
	neighborBuf []systems.Neighbor
	tableBuf    []*lexicon.Table
	sizeBuf     []float64

	tick           int32
	paused         bool
	nextID         uint32
	aliveCount     int
	stepsPerUpdate int
	headless       bool

	// UI state
	cam         *camera.Camera
	selected    int // selected agent id, -1 for none
	showLexicon bool
}

// NewGame creates a game with default options and a fixed seed.
func NewGame() *Game {
	return NewGameWithOptions(Options{Seed: 42, StepsPerUpdate: 1, Headless: true})
}

// NewGameWithOptions creates a new game instance.
func NewGameWithOptions(opts Options) *Game {
	cfg := config.Cfg()
	world := ecs.NewWorld()

	if opts.StepsPerUpdate < 1 {
		opts.StepsPerUpdate = 1
	}

	g := &Game{
		world: world,
		rng:   rand.New(rand.NewPCG(uint64(opts.Seed), 0)),
		blobMapper: ecs.NewMap6[
			components.Agent,
			components.Position,
			components.Needs,
			components.Memory,
			components.Comms,
			components.Vocab,
		](world),
		blobFilter: ecs.NewFilter6[
			components.Agent,
			components.Position,
			components.Needs,
			components.Memory,
			components.Comms,
			components.Vocab,
		](world),
		posMap:   ecs.NewMap1[components.Position](world),
		needsMap: ecs.NewMap1[components.Needs](world),
		memMap:   ecs.NewMap1[components.Memory](world),
		commsMap: ecs.NewMap1[components.Comms](world),
		vocabMap: ecs.NewMap1[components.Vocab](world),

		events:         &systems.EventBuffer{},
		logStats:       opts.LogStats,
		stepsPerUpdate: opts.StepsPerUpdate,
		headless:       opts.Headless,
		selected:       -1,
	}

	g.needsParams = systems.NeedsParams{
		Max:        cfg.Needs.Max,
		HungerRate: cfg.Needs.HungerRate,
		ThirstRate: cfg.Needs.ThirstRate,
		FoodFill:   cfg.Needs.FoodFill,
		WaterFill:  cfg.Needs.WaterFill,
	}
	g.moveParams = systems.MovementParams{
		HungerSeek: cfg.Needs.HungerSeek,
		ThirstSeek: cfg.Needs.ThirstSeek,
		SeekSpeed:  cfg.Movement.SeekSpeed,
		GridStep:   cfg.World.GridStep,
		WorldW:     cfg.Derived.WorldW,
		WorldH:     cfg.Derived.WorldH,
	}
	g.commsParams = systems.CommsParams{
		ChirpRadius:       int(cfg.Comms.ChirpRadius),
		BroadcastCooldown: int32(cfg.Comms.BroadcastCooldownTicks),
		ExpectationWindow: int32(cfg.Comms.ExpectationWindowTicks),
		ChirpIDSpace:      cfg.Comms.ChirpIDSpace,
		LexParams: lexicon.Params{
			LearnRate:       float32(cfg.Lexicon.LearnRate),
			ForgetRate:      float32(cfg.Lexicon.ForgetRate),
			DecayRate:       float32(cfg.Lexicon.DecayRate),
			InitialWeight:   float32(cfg.Lexicon.InitialWeight),
			ConfidentWeight: float32(cfg.Lexicon.ConfidentWeight),
			Epsilon:         float32(cfg.Lexicon.Epsilon),
			MaxEntries:      cfg.Lexicon.MaxEntries,
		},
	}
	g.memorySpan = cfg.Movement.MemorySpanS

	g.tiles = systems.NewTileMap(systems.TileMapParams{
		Width:          cfg.Derived.WorldW,
		Height:         cfg.Derived.WorldH,
		GridStep:       cfg.World.GridStep,
		InitialFood:    cfg.Resources.InitialFood,
		InitialWater:   cfg.Resources.InitialWater,
		RegenPerSecond: cfg.Resources.RegenPerSecond,
		PatchScale:     cfg.Resources.PatchScale,
		PatchThreshold: cfg.Resources.PatchThreshold,
		Seed:           opts.Seed,
	}, g.rng)

	// Cell size equal to the hearing radius keeps radius queries to a 3x3
	// cell scan.
	cellSize := g.commsParams.ChirpRadius
	if cellSize < cfg.World.GridStep {
		cellSize = cfg.World.GridStep
	}
	g.spatialGrid = systems.NewSpatialGrid(cfg.Derived.WorldW, cfg.Derived.WorldH, cellSize)

	statsWindow := opts.StatsWindowSec
	if statsWindow <= 0 {
		statsWindow = cfg.Telemetry.StatsWindow
	}
	g.collector = telemetry.NewCollector(statsWindow, cfg.Derived.DT32)
	g.perfCollector = telemetry.NewPerfCollector(int(g.collector.WindowDurationTicks()))
	g.convergence = telemetry.NewConvergenceTracker(int32(cfg.Convergence.IntervalTicks), float32(cfg.Convergence.DominantWeight))

	om, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		slog.Error("output disabled", "error", err)
	} else if om != nil {
		g.outputManager = om
		if err := om.WriteConfig(cfg); err != nil {
			slog.Error("failed to write config snapshot", "error", err)
		}
		slog.Info("writing run output", "dir", om.Dir(), "run_id", om.RunID())
	}

	advisorAddr := cfg.Advisor.Addr
	if opts.AdvisorAddr != "" {
		advisorAddr = opts.AdvisorAddr
	}
	if advisorAddr != "" {
		client, err := advisor.Dial(advisorAddr, cfg.Advisor.MaxPacketBytes)
		if err != nil {
			slog.Error("advisor disabled", "addr", advisorAddr, "error", err)
		} else {
			g.advisorClient = client
			g.advisorStale = int32(cfg.Advisor.StaleAfterTicks)
			slog.Info("advisor connected", "addr", advisorAddr)
		}
	}

	g.cam = camera.New(
		float32(cfg.Screen.Width), float32(cfg.Screen.Height),
		float32(cfg.Derived.WorldW), float32(cfg.Derived.WorldH),
	)

	if opts.Audio && !opts.Headless {
		g.bank = sound.NewBank()
		g.audio = newAudioPlayer()
	}

	g.spawnInitialPopulation(cfg.Population.Initial)
	return g
}

// spawnInitialPopulation creates the starting blobs on random grid tiles.
func (g *Game) spawnInitialPopulation(n int) {
	for i := 0; i < n; i++ {
		x := g.rng.IntN(g.moveParams.WorldW/g.moveParams.GridStep) * g.moveParams.GridStep
		y := g.rng.IntN(g.moveParams.WorldH/g.moveParams.GridStep) * g.moveParams.GridStep
		g.spawnBlob(x, y)
	}
}

// spawnBlob creates one blob. Creation order fixes agent ids and, with no
// component changes after spawn, the iteration order of every query; that is
// what makes runs with the same seed reproducible.
func (g *Game) spawnBlob(x, y int) ecs.Entity {
	id := g.nextID
	g.nextID++

	agent := components.Agent{ID: id}
	pos := components.Position{X: x, Y: y}
	needs := components.Needs{Alive: true}
	mem := components.Memory{}
	comms := components.NewComms()
	vocab := components.Vocab{}

	entity := g.blobMapper.NewEntity(&agent, &pos, &needs, &mem, &comms, &vocab)
	g.byID = append(g.byID, entity)
	g.aliveCount++
	return entity
}

// Tick returns the current simulation tick.
func (g *Game) Tick() int32 {
	return g.tick
}

// AliveCount returns the number of living blobs.
func (g *Game) AliveCount() int {
	return g.aliveCount
}

// Paused reports whether the simulation is paused.
func (g *Game) Paused() bool {
	return g.paused
}

// SetPaused pauses or resumes the simulation.
func (g *Game) SetPaused(p bool) {
	g.paused = p
}

// Update runs one frame in graphical mode: input, then stepsPerUpdate ticks.
func (g *Game) Update() {
	g.handleInput()
	if g.paused {
		return
	}
	for i := 0; i < g.stepsPerUpdate; i++ {
		g.simulationStep()
	}
	g.perfCollector.RecordFrame()
}

// UpdateHeadless runs stepsPerUpdate ticks with no input handling.
func (g *Game) UpdateHeadless() {
	for i := 0; i < g.stepsPerUpdate; i++ {
		g.simulationStep()
	}
}

// Unload releases external resources: advisor socket, audio device, output
// files. Safe to call once at shutdown.
func (g *Game) Unload() {
	if g.advisorClient != nil {
		if err := g.advisorClient.Close(); err != nil {
			slog.Error("advisor close failed", "error", err)
		}
		if n := g.advisorClient.Dropped(); n > 0 {
			slog.Warn("advisor snapshots dropped by backpressure", "count", n)
		}
	}
	if g.audio != nil {
		g.audio.unload()
	}
	if g.outputManager != nil {
		g.flushConvergenceHistory()
		if err := g.outputManager.Close(); err != nil {
			slog.Error("output close failed", "error", err)
		}
	}
}

func (g *Game) flushConvergenceHistory() {
	for _, s := range g.convergence.History() {
		if err := g.outputManager.WriteConvergence(s); err != nil {
			slog.Error("failed to write convergence", "error", err)
			return
		}
	}
}
