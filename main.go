package main

import (
	"flag"
	"log/slog"
	"os"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/sph2d/config"
	"github.com/pthm-cable/sph2d/game"
	"github.com/pthm-cable/sph2d/telemetry"
	"github.com/pthm-cable/sph2d/viewer"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run without graphics")
	fountain := flag.Bool("fountain", false, "Start in fountain mode")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	statsWindow := flag.Float64("stats-window", 0, "Stats window size in simulated seconds (0 = use config)")
	snapshotDir := flag.String("snapshot-dir", "", "Directory for snapshot files")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	resume := flag.String("resume", "", "Snapshot file to resume from")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	maxTicks := flag.Int("max-ticks", 0, "Stop after N ticks (0 = unlimited)")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	var snap *telemetry.Snapshot
	if *resume != "" {
		var err error
		snap, err = telemetry.LoadSnapshot(*resume)
		if err != nil {
			slog.Error("failed to load snapshot", "path", *resume, "error", err)
			os.Exit(1)
		}
		cfg.SetFountain(snap.Mode == game.ModeFountain.String())
	} else if *fountain {
		cfg.SetFountain(true)
	}

	rngSeed := *seed
	switch {
	case snap != nil && rngSeed == 0:
		rngSeed = snap.RNGSeed
	case rngSeed == 0:
		rngSeed = time.Now().UnixNano()
	}

	opts := game.Options{
		Seed:           rngSeed,
		LogStats:       *logStats,
		StatsWindowSec: *statsWindow,
		SnapshotDir:    *snapshotDir,
		OutputDir:      *outputDir,
		Headless:       *headless,
	}

	if *headless {
		os.Exit(runHeadless(cfg, opts, snap, *maxTicks))
	}
	os.Exit(runViewer(cfg, opts, snap, *maxTicks))
}

// runHeadless steps the simulation without raylib and returns the exit code.
func runHeadless(cfg *config.Config, opts game.Options, snap *telemetry.Snapshot, maxTicks int) int {
	sim, err := game.NewSimulation(cfg, opts)
	if err != nil {
		slog.Error("failed to create simulation", "error", err)
		return 1
	}
	defer sim.Close()

	if snap != nil {
		if err := sim.Restore(snap); err != nil {
			slog.Error("failed to restore snapshot", "error", err)
			return 1
		}
	}

	slog.Info("starting headless simulation",
		"seed", opts.Seed,
		"mode", sim.Mode().String(),
		"max_ticks", maxTicks,
	)

	start := time.Now()
	for maxTicks <= 0 || int(sim.Tick()) < maxTicks {
		sim.Step()
	}

	slog.Info("max ticks reached",
		"tick", sim.Tick(),
		"particles", sim.Len(),
		"elapsed", time.Since(start).String(),
	)
	return 0
}

// runViewer opens the window and drives the viewer until it is closed.
func runViewer(cfg *config.Config, opts game.Options, snap *telemetry.Snapshot, maxTicks int) int {
	rl.SetConfigFlags(rl.FlagWindowResizable)
	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), "SPH Fluid")
	defer rl.CloseWindow()
	rl.SetExitKey(0)
	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	v, err := viewer.New(cfg, opts)
	if err != nil {
		slog.Error("failed to create viewer", "error", err)
		return 1
	}
	defer v.Close()

	if snap != nil {
		if err := v.Simulation().Restore(snap); err != nil {
			slog.Error("failed to restore snapshot", "error", err)
			return 1
		}
	}

	for !rl.WindowShouldClose() {
		v.Update()
		v.Draw()

		if maxTicks > 0 && int(v.Tick()) >= maxTicks {
			break
		}
	}
	return 0
}
