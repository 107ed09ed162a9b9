package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/talgya/adastrea-verse/internal/api"
	"github.com/talgya/adastrea-verse/internal/config"
	"github.com/talgya/adastrea-verse/internal/engine"
	"github.com/talgya/adastrea-verse/internal/entropy"
	"github.com/talgya/adastrea-verse/internal/metrics"
	"github.com/talgya/adastrea-verse/internal/persistence"
)

func newRunCmd() *cobra.Command {
	var (
		port  int
		speed float64
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the simulation and serve the API",
		Long:  "Runs the faction simulation, journals events to SQLite, and serves the HTTP API until interrupted.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				cfg.API.Port = port
			}
			if cmd.Flags().Changed("speed") {
				cfg.Sim.Speed = speed
			}
			return runSim(cmd.Context(), cfg)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "HTTP port (overrides config)")
	cmd.Flags().Float64VarP(&speed, "speed", "s", 1, "Speed multiplier, 0 pauses (overrides config)")

	return cmd
}

func runSim(ctx context.Context, cfg *config.Config) error {
	slog.Info("Adastrea Verse starting", "version", version, "seed", cfg.Sim.Seed)

	cat, err := loadCatalog(cfg.Content.Path)
	if err != nil {
		return fmt.Errorf("loading content: %w", err)
	}
	slog.Info("content loaded",
		"ways", len(cat.Ways),
		"feats", len(cat.Feats),
		"networks", len(cat.Networks),
		"crew", len(cat.Crew),
		"councils", len(cat.Councils),
		"warnings", len(cat.Warnings),
	)

	// ── Entropy ──────────────────────────────────────────────────────
	var src entropy.Source = entropy.NewSeeded(cfg.Sim.Seed)
	if cfg.Entropy.RandomOrgKey != "" {
		c := entropy.NewClient(cfg.Entropy.RandomOrgKey, cfg.Entropy.RandomOrgEndpoint)
		if err := c.Refill(); err != nil {
			slog.Warn("random.org warm-up failed, using crypto/rand until it recovers", "error", err)
		}
		src = c
		slog.Info("random.org entropy enabled", "pooled", c.Pooled())
	}

	// ── Simulation ───────────────────────────────────────────────────
	m := metrics.New(prometheus.DefaultRegisterer)
	sim, err := engine.NewSimulation(cat, engine.Options{
		Players:     cfg.Sim.Players,
		Seed:        int64(cfg.Sim.Seed),
		Cadence:     cfg.CadenceMode(),
		Entropy:     src,
		EventBuffer: cfg.Sim.EventBuffer,
		HighHeat:    cfg.Sim.HighHeat,
		Metrics:     m,
	})
	if err != nil {
		return err
	}

	eng := engine.NewEngine()
	eng.Interval = cfg.Sim.TickInterval
	eng.StepSeconds = cfg.Sim.StepSeconds
	eng.SetSpeed(cfg.Sim.Speed)

	// ── Journal ──────────────────────────────────────────────────────
	var db *persistence.DB
	if cfg.DB.Path != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.DB.Path), 0o755); err != nil {
			return fmt.Errorf("creating data dir: %w", err)
		}
		db, err = persistence.Open(cfg.DB.Path)
		if err != nil {
			return err
		}
		defer db.Close()

		cp, err := db.Resume()
		if err != nil {
			return fmt.Errorf("reading checkpoint: %w", err)
		}
		if cp.Tick > 0 {
			sim.Resume(cp.Tick, cp.SimSeconds, cp.Seq)
			eng.Tick = cp.Tick
			slog.Info("resuming", "tick", cp.Tick, "sim_time", engine.SimTime(cp.SimSeconds))
		}
		slog.Info("journal opened", "path", cfg.DB.Path)
	} else {
		slog.Warn("journal disabled, events are kept in memory only")
	}

	flush := func(reason string) {
		if db == nil {
			return
		}
		if err := db.Flush(sim); err != nil {
			m.RecordJournalError()
			slog.Error("journal flush failed", "reason", reason, "error", err)
		}
	}

	eng.OnTick = sim.Advance
	eng.OnHour = sim.TickHour
	eng.OnDay = func(tick uint64) {
		sim.TickDay(tick)
		flush("daily")
	}
	eng.OnWeek = sim.TickWeek

	// ── HTTP API ─────────────────────────────────────────────────────
	if cfg.API.AdminKey == "" {
		slog.Warn(config.EnvAdminKey + " not set, admin POST endpoints will be disabled")
	}
	srv := &api.Server{
		Sim:         sim,
		Eng:         eng,
		DB:          db,
		Metrics:     m,
		Port:        cfg.API.Port,
		AdminKey:    cfg.API.AdminKey,
		AdminRate:   cfg.API.AdminRate,
		AdminWindow: cfg.API.AdminWindow,
	}
	srv.Start()

	fmt.Printf("API: http://localhost:%d/api/v1/status\n", cfg.API.Port)
	fmt.Println("Starting simulation... (Ctrl+C to stop)")

	eng.Run(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP shutdown failed", "error", err)
	}

	slog.Info("final flush...")
	flush("shutdown")
	fmt.Println("Simulation stopped.")
	return nil
}
