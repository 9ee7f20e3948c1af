// Package api provides the HTTP API for reading the generated map.
// GET endpoints are public and read-only; they are what a renderer or a
// debug-draw client consumes. POST /regenerate requires a bearer token.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/talgya/hexterrain/internal/config"
	"github.com/talgya/hexterrain/internal/noise"
	"github.com/talgya/hexterrain/internal/persistence"
	"github.com/talgya/hexterrain/internal/pipeline"
	"github.com/talgya/hexterrain/internal/world"
)

// Orientation is the asset convention for every tile the API returns:
// flat-top hexes in layout space, no per-tile rotation.
const Orientation = "flat"

// Server serves the map over HTTP.
type Server struct {
	Map         *world.Map
	Config      *config.Config
	Report      *pipeline.Report
	DB          *persistence.DB // Nil = run history disabled
	Port        int
	AdminKey    string // Bearer token for POST endpoints. Empty = POST disabled.
	CORSOrigins []string
	LastRunID   string

	// Guards Map, Config, Report and LastRunID. Regeneration takes the write
	// lock, so only one generation is ever in flight.
	mu sync.RWMutex

	httpServer *http.Server
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	regenLimiter := NewRateLimiter(30, time.Minute)

	mux := http.NewServeMux()

	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/map", s.handleMapRoutes)
	mux.HandleFunc("/api/v1/map/", s.handleMapRoutes)
	mux.HandleFunc("/api/v1/outline", s.handleOutline)
	mux.HandleFunc("/api/v1/runs", s.handleRuns)
	mux.HandleFunc("/api/v1/runs/", s.handleRunDetail)

	mux.HandleFunc("/api/v1/regenerate", s.adminOnly(RateLimitMiddleware(regenLimiter, s.handleRegenerate)))

	return corsMiddleware(s.CORSOrigins, mux)
}

// Start begins serving the HTTP API in a goroutine.
func (s *Server) Start() {
	addr := fmt.Sprintf(":%d", s.Port)
	slog.Info("HTTP API starting", "addr", addr, "admin_auth", s.AdminKey != "", "history", s.DB != nil)

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

// Shutdown stops the server started by Start.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// corsMiddleware adds CORS headers for allowed frontend origins.
// Localhost dev servers are always allowed.
func corsMiddleware(origins []string, next http.Handler) http.Handler {
	allowedOrigins := map[string]bool{
		"http://localhost:5173": true,
		"http://localhost:4173": true,
		"http://localhost:3000": true,
	}
	for _, origin := range origins {
		allowedOrigins[origin] = true
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// checkBearerToken returns true if the request has a valid admin bearer token.
func (s *Server) checkBearerToken(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	return strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == s.AdminKey
}

// adminOnly wraps a handler to require bearer token auth on POST requests.
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			if s.AdminKey == "" {
				http.Error(w, "admin endpoints disabled (no HEXMAP_ADMIN_KEY set)", http.StatusForbidden)
				return
			}

			if !s.checkBearerToken(r) {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}

		next(w, r)
	}
}

type tileEntry struct {
	Q       int           `json:"q"`
	R       int           `json:"r"`
	X       float64       `json:"x"`
	Y       float64       `json:"y"`
	Terrain world.Terrain `json:"terrain"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	status := map[string]any{
		"radius":      s.Map.Radius,
		"hex_size":    s.Map.HexSize,
		"tiles":       s.Map.Len(),
		"orientation": Orientation,
		"source":      s.Config.Noise.Source,
		"seed":        s.Config.Noise.Seed,
		"noise_scale": s.Config.Terrain.NoiseScale,
		"thresholds": map[string]float64{
			"water":    s.Config.Terrain.WaterThreshold,
			"mountain": s.Config.Terrain.MountainThreshold,
		},
		"offset":      s.Config.Terrain.Offset,
		"fingerprint": fmt.Sprintf("%016x", s.Map.Fingerprint()),
	}
	if s.Report != nil {
		status["counts"] = s.Report.CountsByName()
		status["generated_at"] = s.Report.GeneratedAt
	}
	if s.LastRunID != "" {
		status["run_id"] = s.LastRunID
	}
	writeJSON(w, status)
}

// handleMapRoutes dispatches between bulk map (GET /api/v1/map) and tile detail (GET /api/v1/map/:q/:r).
func (s *Server) handleMapRoutes(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/v1/map")
	if path == "" || path == "/" {
		s.handleBulkMap(w, r)
		return
	}
	s.handleTileDetail(w, r)
}

// handleBulkMap returns all tiles for the map renderer. ?terrain=Water
// narrows the list to one category.
func (s *Server) handleBulkMap(w http.ResponseWriter, r *http.Request) {
	var filter *world.Terrain
	if name := r.URL.Query().Get("terrain"); name != "" {
		t, err := world.ParseTerrain(name)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		filter = &t
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	tiles := s.Map.Tiles()
	entries := make([]tileEntry, 0, len(tiles))
	for _, t := range tiles {
		if filter != nil && t.Terrain != *filter {
			continue
		}
		entries = append(entries, tileEntry{
			Q:       t.Coord.Q,
			R:       t.Coord.R,
			X:       t.Position.X,
			Y:       t.Position.Y,
			Terrain: t.Terrain,
		})
	}

	writeJSON(w, map[string]any{
		"radius":      s.Map.Radius,
		"hex_size":    s.Map.HexSize,
		"orientation": Orientation,
		"tiles":       entries,
	})
}

func (s *Server) handleTileDetail(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(r.URL.Path, "/")
	// /api/v1/map/:q/:r → parts[0]="" [1]="api" [2]="v1" [3]="map" [4]=q [5]=r
	if len(parts) < 6 {
		http.Error(w, "usage: /api/v1/map/:q/:r", http.StatusBadRequest)
		return
	}
	q, err1 := strconv.Atoi(parts[4])
	rr, err2 := strconv.Atoi(parts[5])
	if err1 != nil || err2 != nil {
		http.Error(w, "invalid coordinates", http.StatusBadRequest)
		return
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	coord := world.HexCoord{Q: q, R: rr}
	if !s.Map.InBounds(coord) {
		http.Error(w, "hex outside map radius", http.StatusNotFound)
		return
	}
	tile, ok := s.Map.Get(coord)
	if !ok {
		http.Error(w, "hex not found", http.StatusNotFound)
		return
	}

	type neighborInfo struct {
		Q       int           `json:"q"`
		R       int           `json:"r"`
		Terrain world.Terrain `json:"terrain"`
	}
	neighbors := []neighborInfo{}
	for _, nc := range coord.Neighbors() {
		nt, ok := s.Map.Get(nc)
		if !ok {
			continue
		}
		neighbors = append(neighbors, neighborInfo{Q: nc.Q, R: nc.R, Terrain: nt.Terrain})
	}

	writeJSON(w, map[string]any{
		"q":         q,
		"r":         rr,
		"s":         coord.S(),
		"x":         tile.Position.X,
		"y":         tile.Position.Y,
		"terrain":   tile.Terrain,
		"noise":     tile.Noise,
		"corners":   world.Corners(tile.Position, s.Map.HexSize),
		"neighbors": neighbors,
	})
}

// handleOutline returns the six outline vertices of every tile for a
// debug-draw client.
func (s *Server) handleOutline(w http.ResponseWriter, r *http.Request) {
	type outline struct {
		Q        int           `json:"q"`
		R        int           `json:"r"`
		Terrain  world.Terrain `json:"terrain"`
		Vertices [6][2]float64 `json:"vertices"`
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	tiles := s.Map.Tiles()
	hexes := make([]outline, 0, len(tiles))
	for _, t := range tiles {
		o := outline{Q: t.Coord.Q, R: t.Coord.R, Terrain: t.Terrain}
		for i, c := range world.Corners(t.Position, s.Map.HexSize) {
			o.Vertices[i] = [2]float64{c.X, c.Y}
		}
		hexes = append(hexes, o)
	}

	writeJSON(w, map[string]any{
		"hex_size": s.Map.HexSize,
		"hexes":    hexes,
	})
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		http.Error(w, "run history not available", http.StatusServiceUnavailable)
		return
	}

	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = min(n, 200)
	}

	runs, err := s.DB.RecentRuns(limit)
	if err != nil {
		slog.Error("list runs failed", "error", err)
		http.Error(w, "list runs failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, runs)
}

func (s *Server) handleRunDetail(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		http.Error(w, "run history not available", http.StatusServiceUnavailable)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/api/v1/runs/")
	if id == "" {
		s.handleRuns(w, r)
		return
	}

	run, err := s.DB.GetRun(id)
	if errors.Is(err, persistence.ErrNotFound) {
		http.Error(w, "run not found", http.StatusNotFound)
		return
	}
	if err != nil {
		slog.Error("get run failed", "id", id, "error", err)
		http.Error(w, "get run failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, run)
}

// handleRegenerate rebuilds the whole map from the current configuration
// with the request body's overrides applied.
func (s *Server) handleRegenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var o config.Overrides
	if r.ContentLength != 0 {
		dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&o); err != nil {
			http.Error(w, "invalid body: "+err.Error(), http.StatusBadRequest)
			return
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.Config.With(o)
	report, err := pipeline.Regenerate(s.Map, next)
	if err != nil {
		if isCallerError(err) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		slog.Error("regenerate failed", "error", err)
		http.Error(w, "regenerate failed", http.StatusInternalServerError)
		return
	}

	resolved := report.Config
	s.Config = &resolved
	s.Report = report

	result := map[string]any{
		"tiles":       report.Tiles,
		"seed":        report.Seed,
		"counts":      report.CountsByName(),
		"fingerprint": fmt.Sprintf("%016x", report.Fingerprint),
	}

	if s.DB != nil {
		run, err := s.DB.RecordRun(report)
		if err != nil {
			slog.Error("record run failed", "error", err)
		} else {
			s.LastRunID = run.ID
			result["run_id"] = run.ID
		}
	}

	writeJSON(w, result)
}

func isCallerError(err error) bool {
	return errors.Is(err, config.ErrInvalidConfig) ||
		errors.Is(err, world.ErrInvalidParameter) ||
		errors.Is(err, noise.ErrUnknownSource)
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		slog.Warn("write response failed", "error", err)
	}
}
