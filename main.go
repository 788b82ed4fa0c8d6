package main

import (
	"flag"
	"log/slog"
	"math"
	"os"
	"time"

	"github.com/veldt-labs/throng/config"
	"github.com/veldt-labs/throng/crowd"
	"github.com/veldt-labs/throng/governor"
	"github.com/veldt-labs/throng/savestate"
	"github.com/veldt-labs/throng/telemetry"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	maxTicks := flag.Int("ticks", 3600, "Stop after N ticks")
	tps := flag.Int("tps", 0, "Pace the loop to N ticks per second (0 = unpaced)")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	statsWindow := flag.Float64("stats-window", 0, "Stats window size in seconds (0 = use config)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	snapshotDir := flag.String("snapshot-dir", "", "Directory for the end-of-run snapshot (empty = none)")
	saveDB := flag.String("save-db", "", "SQLite path for run history (overrides config)")
	resume := flag.Bool("resume", false, "Start with the final population of the last finished run")
	multiplyEvery := flag.Int("multiply-every", 0, "Multiply the crowd every N ticks (0 = never)")
	multiplyFactor := flag.Float64("multiply-factor", 1.5, "Factor used by -multiply-every")
	dumpConfig := flag.String("dump-config", "", "Write the effective config to this path and exit")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	if *dumpConfig != "" {
		if err := cfg.WriteYAML(*dumpConfig); err != nil {
			slog.Error("failed to write config", "error", err)
			os.Exit(1)
		}
		return
	}

	// Set up seed
	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	// Use config stats window if not overridden by CLI
	statsWindowSec := cfg.Telemetry.StatsWindow
	if *statsWindow > 0 {
		statsWindowSec = *statsWindow
	}

	dbPath := cfg.Savestate.Path
	if *saveDB != "" {
		dbPath = *saveDB
	}

	var db *savestate.DB
	if dbPath != "" {
		var err error
		db, err = savestate.Open(dbPath)
		if err != nil {
			slog.Error("failed to open save database", "error", err, "path", dbPath)
			os.Exit(1)
		}
		defer db.Close()
	}

	initialSize := cfg.Crowd.InitialSize
	if *resume && db != nil {
		size, ok, err := db.LastFinalSize()
		if err != nil {
			slog.Error("failed to read last run", "error", err)
			os.Exit(1)
		}
		if ok {
			initialSize = size
			slog.Info("resuming population from last run", "size", size)
		}
	}

	perf := telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow)

	c := crowd.New(crowd.Options{
		Capacity:    cfg.Crowd.Capacity,
		MaxSize:     cfg.Crowd.MaxSize,
		InitialSize: initialSize,
		SpawnRadius: float32(cfg.Crowd.SpawnRadius),
		Seed:        rngSeed,
		Leader:      crowd.Vec3{X: float32(cfg.Driver.LeaderOrbitRadius)},
		Params:      steerParams(cfg),
		Perf:        perf,
	})
	defer c.Close()

	var gov *governor.Governor
	if cfg.Governor.Enabled {
		gov = governor.New(c, governor.Config{
			MinFPS:     cfg.Governor.MinFPS,
			ShedFactor: cfg.Governor.ShedFactor,
			FloorSize:  cfg.Governor.FloorSize,
			Interval:   cfg.Derived.GovernorInterval,
		})
	}

	collector := telemetry.NewCollector(statsWindowSec, cfg.Derived.DT32)

	om, err := telemetry.NewOutputManager(*outputDir)
	if err != nil {
		slog.Error("failed to create output directory", "error", err)
		os.Exit(1)
	}

	var runID string
	if db != nil {
		runID, err = db.BeginRun(rngSeed, c.Size())
		if err != nil {
			slog.Error("failed to begin run", "error", err)
			os.Exit(1)
		}
	}

	peakSize := c.Size()
	c.OnPopulationChanged(func(ch crowd.PopulationChange) {
		switch ch.Cause {
		case crowd.CauseGrow:
			collector.RecordGrow(ch.New - ch.Old)
		case crowd.CauseShrink:
			collector.RecordShrink(ch.Old - ch.New)
		case crowd.CauseMultiply:
			collector.RecordMultiply(ch.Old, ch.New)
		}
		if ch.New > peakSize {
			peakSize = ch.New
		}
		if db != nil {
			if err := db.RecordChange(runID, c.Ticks(), ch.Old, ch.New, string(ch.Cause)); err != nil {
				slog.Error("failed to record population change", "error", err)
			}
		}
	})

	dt := cfg.Derived.DT32

	var frameBudget time.Duration
	if *tps > 0 {
		frameBudget = time.Second / time.Duration(*tps)
	}

	flushWindow := func() {
		cen := c.Centroid()
		stats := collector.Flush(c.Ticks(), c.Size(), float64(cen.X), float64(cen.Y), float64(cen.Z))
		perfStats := perf.Stats()
		if *logStats {
			stats.LogStats()
			perfStats.LogStats()
		}
		if err := om.WriteWindow(stats); err != nil {
			slog.Error("failed to write stats window", "error", err)
		}
		if err := om.WritePerf(perfStats, c.Ticks()); err != nil {
			slog.Error("failed to write perf window", "error", err)
		}
	}

	slog.Info("starting simulation",
		"seed", rngSeed,
		"initial_size", c.Size(),
		"capacity", c.Capacity(),
		"ticks", *maxTicks,
	)

	for tick := 0; tick < *maxTicks; tick++ {
		frameStart := time.Now()

		// Leader orbits the origin; the crowd chases it
		simTime := float64(tick) * float64(dt)
		angle := cfg.Driver.LeaderAngularSpeed * simTime
		c.SetLeaderPosition(crowd.Vec3{
			X: float32(math.Cos(angle) * cfg.Driver.LeaderOrbitRadius),
			Z: float32(math.Sin(angle) * cfg.Driver.LeaderOrbitRadius),
		})

		if *multiplyEvery > 0 && tick > 0 && tick%*multiplyEvery == 0 {
			old := c.Size()
			c.Multiply(*multiplyFactor)
			slog.Info("multiply pulse", "tick", tick, "old_size", old, "new_size", c.Size())
		}

		c.Tick(dt)

		// Paced mode: the frame is not over until its budget is spent.
		if frameBudget > 0 {
			if slack := frameBudget - time.Since(frameStart); slack > 0 {
				time.Sleep(slack)
			}
		}

		perf.RecordFrame()
		if gov != nil {
			gov.Observe(time.Since(frameStart))
		}

		if collector.ShouldFlush(c.Ticks()) {
			flushWindow()
		}
	}

	// Flush the trailing partial window.
	if collector.HasPending(c.Ticks()) {
		flushWindow()
	}

	if *snapshotDir != "" {
		path, err := telemetry.SaveSnapshot(c.Snapshot(), *snapshotDir)
		if err != nil {
			slog.Error("failed to save snapshot", "error", err)
		} else {
			slog.Info("snapshot saved", "path", path)
		}
	}

	if db != nil {
		if err := db.FinishRun(runID, c.Size(), peakSize, c.Ticks()); err != nil {
			slog.Error("failed to finish run", "error", err)
		}
	}

	if err := om.WriteConfig(cfg); err != nil {
		slog.Error("failed to write config snapshot", "error", err)
	}
	if err := om.Close(); err != nil {
		slog.Error("failed to close output files", "error", err)
	}

	sheds := 0
	if gov != nil {
		sheds = gov.ShedCount()
	}
	slog.Info("run complete",
		"ticks", c.Ticks(),
		"final_size", c.Size(),
		"peak_size", peakSize,
		"governor_sheds", sheds,
	)
}

func steerParams(cfg *config.Config) crowd.SteerParams {
	return crowd.SteerParams{
		Speed:            float32(cfg.Steering.MovementSpeed),
		SeparationRadius: float32(cfg.Steering.SeparationRadius),
		AlignmentRadius:  float32(cfg.Steering.AlignmentRadius),
		CohesionRadius:   float32(cfg.Steering.CohesionRadius),
		SeparationWeight: float32(cfg.Steering.SeparationWeight),
		AlignmentWeight:  float32(cfg.Steering.AlignmentWeight),
		CohesionWeight:   float32(cfg.Steering.CohesionWeight),
		SeekSwitch:       float32(cfg.Steering.SeekSwitch),
	}
}
