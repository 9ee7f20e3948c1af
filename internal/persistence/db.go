// Package persistence provides SQLite-based storage of generation runs.
// Only the parameters and summary of each run are stored; a map is rebuilt
// from its parameters, never loaded.
package persistence

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/hexterrain/internal/pipeline"
	"github.com/talgya/hexterrain/internal/world"
)

// ErrNotFound is returned when a run or meta key does not exist.
var ErrNotFound = errors.New("not found")

// DB wraps a SQLite connection for run history.
type DB struct {
	conn *sqlx.DB
}

// Run is one recorded generation.
type Run struct {
	ID                string    `db:"id" json:"id"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
	Radius            int       `db:"radius" json:"radius"`
	HexSize           float64   `db:"hex_size" json:"hex_size"`
	NoiseSource       string    `db:"noise_source" json:"noise_source"`
	Seed              int64     `db:"seed" json:"seed"`
	Octaves           int       `db:"octaves" json:"octaves"`
	NoiseScale        float64   `db:"noise_scale" json:"noise_scale"`
	WaterThreshold    float64   `db:"water_threshold" json:"water_threshold"`
	MountainThreshold float64   `db:"mountain_threshold" json:"mountain_threshold"`
	OffsetX           float64   `db:"offset_x" json:"offset_x"`
	OffsetY           float64   `db:"offset_y" json:"offset_y"`
	Tiles             int       `db:"tiles" json:"tiles"`
	Water             int       `db:"water" json:"water"`
	Plain             int       `db:"plain" json:"plain"`
	Mountain          int       `db:"mountain" json:"mountain"`
	Fingerprint       string    `db:"fingerprint" json:"fingerprint"`
	ElapsedMicros     int64     `db:"elapsed_us" json:"elapsed_us"`
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		created_at TIMESTAMP NOT NULL,
		radius INTEGER NOT NULL,
		hex_size REAL NOT NULL,
		noise_source TEXT NOT NULL,
		seed INTEGER NOT NULL,
		octaves INTEGER NOT NULL,
		noise_scale REAL NOT NULL,
		water_threshold REAL NOT NULL,
		mountain_threshold REAL NOT NULL,
		offset_x REAL NOT NULL,
		offset_y REAL NOT NULL,
		tiles INTEGER NOT NULL,
		water INTEGER NOT NULL,
		plain INTEGER NOT NULL,
		mountain INTEGER NOT NULL,
		fingerprint TEXT NOT NULL,
		elapsed_us INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);
	CREATE INDEX IF NOT EXISTS idx_runs_fingerprint ON runs(fingerprint);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// NewRun flattens a generation report into a run row with a fresh ID.
func NewRun(r *pipeline.Report) Run {
	cfg := r.Config
	return Run{
		ID:                uuid.NewString(),
		CreatedAt:         r.GeneratedAt,
		Radius:            cfg.Map.Radius,
		HexSize:           cfg.Map.HexSize,
		NoiseSource:       cfg.Noise.Source,
		Seed:              r.Seed,
		Octaves:           cfg.Noise.Octaves,
		NoiseScale:        cfg.Terrain.NoiseScale,
		WaterThreshold:    cfg.Terrain.WaterThreshold,
		MountainThreshold: cfg.Terrain.MountainThreshold,
		OffsetX:           cfg.Terrain.Offset.X,
		OffsetY:           cfg.Terrain.Offset.Y,
		Tiles:             r.Tiles,
		Water:             r.Count(world.TerrainWater),
		Plain:             r.Count(world.TerrainPlain),
		Mountain:          r.Count(world.TerrainMountain),
		Fingerprint:       fmt.Sprintf("%016x", r.Fingerprint),
		ElapsedMicros:     r.Elapsed.Microseconds(),
	}
}

// RecordRun stores a report and marks it as the latest run.
func (db *DB) RecordRun(r *pipeline.Report) (Run, error) {
	run := NewRun(r)

	tx, err := db.conn.Beginx()
	if err != nil {
		return Run{}, err
	}
	defer tx.Rollback()

	_, err = tx.NamedExec(`INSERT INTO runs
		(id, created_at, radius, hex_size, noise_source, seed, octaves, noise_scale,
		 water_threshold, mountain_threshold, offset_x, offset_y,
		 tiles, water, plain, mountain, fingerprint, elapsed_us)
		VALUES (:id, :created_at, :radius, :hex_size, :noise_source, :seed, :octaves, :noise_scale,
		 :water_threshold, :mountain_threshold, :offset_x, :offset_y,
		 :tiles, :water, :plain, :mountain, :fingerprint, :elapsed_us)`, run)
	if err != nil {
		return Run{}, fmt.Errorf("insert run %s: %w", run.ID, err)
	}

	if err := saveMeta(tx, metaLastRun, run.ID); err != nil {
		return Run{}, fmt.Errorf("save meta: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return Run{}, err
	}

	slog.Info("run recorded", "id", run.ID, "fingerprint", run.Fingerprint)
	return run, nil
}

// GetRun returns a run by ID.
func (db *DB) GetRun(id string) (Run, error) {
	var run Run
	err := db.conn.Get(&run, "SELECT * FROM runs WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("run %s: %w", id, ErrNotFound)
	}
	return run, err
}

// LastRun returns the most recently recorded run.
func (db *DB) LastRun() (Run, error) {
	id, err := db.GetMeta(metaLastRun)
	if err != nil {
		return Run{}, err
	}
	return db.GetRun(id)
}

// RecentRuns returns the most recent N runs, newest first.
func (db *DB) RecentRuns(limit int) ([]Run, error) {
	runs := []Run{}
	err := db.conn.Select(&runs,
		"SELECT * FROM runs ORDER BY rowid DESC LIMIT ?",
		limit,
	)
	return runs, err
}

// RunsWithFingerprint returns every run that produced the given map.
func (db *DB) RunsWithFingerprint(fingerprint string) ([]Run, error) {
	runs := []Run{}
	err := db.conn.Select(&runs,
		"SELECT * FROM runs WHERE fingerprint = ? ORDER BY rowid DESC",
		fingerprint,
	)
	return runs, err
}

const metaLastRun = "last_run"

// SaveMeta stores a key-value pair.
func (db *DB) SaveMeta(key, value string) error {
	return saveMeta(db.conn, key, value)
}

// saveMeta writes through e so the same statement runs inside a transaction.
func saveMeta(e sqlx.Execer, key, value string) error {
	_, err := e.Exec(
		"INSERT OR REPLACE INTO meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM meta WHERE key = ?", key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("meta %s: %w", key, ErrNotFound)
	}
	return value, err
}
