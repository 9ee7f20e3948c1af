// Command hexmap generates a hexagonal terrain map from a YAML configuration,
// records the run, and optionally serves the result over HTTP.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"github.com/talgya/hexterrain/internal/api"
	"github.com/talgya/hexterrain/internal/config"
	"github.com/talgya/hexterrain/internal/persistence"
	"github.com/talgya/hexterrain/internal/pipeline"
	"github.com/talgya/hexterrain/internal/world"
)

func main() {
	slog.SetDefault(newLogger(os.Stdout))

	if err := run(); err != nil {
		slog.Error("hexmap failed", "error", err)
		os.Exit(1)
	}
}

// newLogger writes text to terminals and JSON everywhere else.
func newLogger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if os.Getenv("HEXMAP_DEBUG") != "" {
		opts.Level = slog.LevelDebug
	}
	if f, ok := w.(*os.File); ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

func run() error {
	cfgPath := configPath()
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return err
	}
	slog.Info("configuration loaded", "path", cfgPath, "radius", cfg.Map.Radius, "source", cfg.Noise.Source)

	// ── Run history ───────────────────────────────────────────────────
	var db *persistence.DB
	if cfg.Server.DBPath != "" {
		if dir := filepath.Dir(cfg.Server.DBPath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create data dir: %w", err)
			}
		}
		db, err = persistence.Open(cfg.Server.DBPath)
		if err != nil {
			return err
		}
		defer db.Close()
		slog.Info("database opened", "path", cfg.Server.DBPath)

		if last, err := db.LastRun(); err == nil {
			slog.Info("previous run",
				"id", last.ID,
				"when", humanize.Time(last.CreatedAt),
				"fingerprint", last.Fingerprint,
			)
		}
		if cfgPath != "" {
			if err := db.SaveMeta("config_path", cfgPath); err != nil {
				slog.Warn("save config path failed", "error", err)
			}
		}
	}

	// ── Map ───────────────────────────────────────────────────────────
	worldMap, report, err := pipeline.Generate(cfg)
	if err != nil {
		return err
	}
	printSummary(os.Stdout, worldMap, report)

	var runID string
	if db != nil {
		rec, err := db.RecordRun(report)
		if err != nil {
			slog.Error("record run failed", "error", err)
		} else {
			runID = rec.ID
			if replays, err := db.RunsWithFingerprint(rec.Fingerprint); err == nil && len(replays) > 1 {
				slog.Info("map matches earlier runs", "count", len(replays)-1)
			}
		}
	}

	if cfg.Server.Port == 0 {
		return nil
	}

	// ── HTTP API ──────────────────────────────────────────────────────
	if cfg.Server.AdminKey == "" {
		slog.Warn("HEXMAP_ADMIN_KEY not set, regenerate endpoint disabled")
	}
	resolved := report.Config
	apiServer := &api.Server{
		Map:         worldMap,
		Config:      &resolved,
		Report:      report,
		DB:          db,
		Port:        cfg.Server.Port,
		AdminKey:    cfg.Server.AdminKey,
		CORSOrigins: cfg.Server.CORSOrigins,
		LastRunID:   runID,
	}
	apiServer.Start()
	fmt.Printf("API: http://localhost:%d/api/v1/map\n", cfg.Server.Port)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	slog.Info("received signal, shutting down", "signal", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(ctx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// configPath returns HEXMAP_CONFIG, else ./hexmap.yaml when present, else
// "" for built-in defaults.
func configPath() string {
	if p := os.Getenv("HEXMAP_CONFIG"); p != "" {
		return p
	}
	if _, err := os.Stat("hexmap.yaml"); err == nil {
		return "hexmap.yaml"
	}
	return ""
}

func printSummary(w io.Writer, m *world.Map, r *pipeline.Report) {
	fmt.Fprintf(w, "\n%s hexes (radius %d, seed %d)\n", humanize.Comma(int64(r.Tiles)), m.Radius, r.Seed)
	for _, t := range world.AllTerrains {
		n := r.Count(t)
		pct := 0.0
		if r.Tiles > 0 {
			pct = 100 * float64(n) / float64(r.Tiles)
		}
		fmt.Fprintf(w, "  %-9s %8s  %5.1f%%\n", t, humanize.Comma(int64(n)), pct)
	}
	fmt.Fprintf(w, "fingerprint %016x\n\n", r.Fingerprint)
}
