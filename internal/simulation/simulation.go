// Package simulation plans a waveguide run from physical parameters and hands
// it to an engine backend.
package simulation

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/GoSim-25-26J-441/waveguide-sim/internal/engine"
	"github.com/GoSim-25-26J-441/waveguide-sim/pkg/config"
	"github.com/GoSim-25-26J-441/waveguide-sim/pkg/geometry"
	"github.com/GoSim-25-26J-441/waveguide-sim/pkg/logger"
	"github.com/GoSim-25-26J-441/waveguide-sim/pkg/models"
	"github.com/GoSim-25-26J-441/waveguide-sim/pkg/utils"
)

// Simulation runs planned configurations on one engine backend.
type Simulation struct {
	runner   engine.Runner
	outDir   string
	manifest bool
	logger   *slog.Logger
	now      func() time.Time
}

// New creates a Simulation that writes its run record into outDir.
func New(runner engine.Runner, outDir string) *Simulation {
	if outDir == "" {
		outDir = "."
	}
	return &Simulation{
		runner: runner,
		outDir: outDir,
		logger: logger.Default,
		now:    time.Now,
	}
}

// WithManifest makes Run write the engine manifest before starting the engine.
func (s *Simulation) WithManifest(enabled bool) *Simulation {
	s.manifest = enabled
	return s
}

// SetLogger sets the simulation's logger
func (s *Simulation) SetLogger(l *slog.Logger) {
	s.logger = l
}

// ManifestPath is where the manifest for prefix is written.
func (s *Simulation) ManifestPath(prefix string) string {
	return filepath.Join(s.outDir, utils.RunFileName(prefix, "manifest.json"))
}

// RecordPath is where the run record for prefix is written.
func (s *Simulation) RecordPath(prefix string) string {
	return filepath.Join(s.outDir, utils.RunFileName(prefix, "run.json"))
}

// Run plans p, starts the engine and blocks until it returns. The run record is
// written even when the engine fails; the engine error is returned unchanged.
func (s *Simulation) Run(ctx context.Context, p config.Parameters, kind engine.SourceKind) (*models.Run, error) {
	if err := config.ValidateParameters(p); err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}

	cfg, domain := Plan(p, kind)
	cfg.RunID = utils.GenerateRunID()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log := s.logger.With("run_id", cfg.RunID, "engine", s.runner.Name(), "prefix", cfg.FilenamePrefix)
	blocks, prisms, vertices := geometry.Counts(cfg.Geometry)
	log.Info("geometry built",
		"blocks", blocks,
		"prisms", prisms,
		"vertices", vertices,
		"sx", domain.Sx, "sy", domain.Sy, "sz", domain.Sz,
	)

	if err := os.MkdirAll(s.outDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output dir %s: %w", s.outDir, err)
	}
	if s.manifest {
		path := s.ManifestPath(cfg.FilenamePrefix)
		if err := engine.WriteManifest(path, cfg); err != nil {
			return nil, err
		}
		log.Debug("manifest written", "path", path)
	}

	run := &models.Run{
		ID:        cfg.RunID,
		Status:    models.RunStatusRunning,
		Engine:    s.runner.Name(),
		Prefix:    cfg.FilenamePrefix,
		StartTime: s.now(),
		Geometry: models.GeometrySummary{
			Blocks:        blocks,
			Prisms:        prisms,
			Vertices:      vertices,
			CellSize:      [3]float64{cfg.CellSize.X, cfg.CellSize.Y, cfg.CellSize.Z},
			SourceSize:    [3]float64{domain.SourceSx, domain.SourceSy, 0},
			Resolution:    cfg.Resolution,
			SimulationEnd: cfg.Until,
		},
		Metadata: map[string]string{
			"source": string(kind),
		},
	}

	result, runErr := s.runner.Run(ctx, cfg)
	run.Finish(s.now(), result, runErr)
	if result != nil && result.Message != "" {
		run.Metadata["engine_message"] = result.Message
	}

	if err := s.writeRecord(run); err != nil {
		log.Error("failed to write run record", "error", err)
		if runErr == nil {
			return run, err
		}
	}

	if runErr != nil {
		log.Error("run failed", "error", runErr)
		return run, runErr
	}
	log.Info("run finished",
		"status", run.Status,
		"duration", utils.FormatDuration(run.Duration),
		"files", len(run.OutputFiles),
	)
	return run, nil
}

func (s *Simulation) writeRecord(run *models.Run) error {
	data, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal run record: %w", err)
	}
	path := s.RecordPath(run.Prefix)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write run record %s: %w", path, err)
	}
	return nil
}
