package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/s0nnyc/transcriber/internal/config"
	"github.com/s0nnyc/transcriber/internal/engine"
	"github.com/s0nnyc/transcriber/internal/media"
	"github.com/s0nnyc/transcriber/internal/segment"
)

// Runner drives a whole batch: one engine load, then every file in
// inventory order with per-file failure isolation.
type Runner struct {
	cfg *config.Config
	log *slog.Logger

	// newEngine is swappable for tests.
	newEngine func(*config.Config, *slog.Logger) (engine.Engine, error)
}

// NewRunner builds a batch Runner.
func NewRunner(cfg *config.Config, log *slog.Logger) *Runner {
	return &Runner{cfg: cfg, log: log, newEngine: engine.New}
}

// Run scans the input directory, loads the engine once, and processes every
// file sequentially. A single file's failure is logged and skipped; only
// startup failures (missing input, empty inventory, engine load) are
// returned.
func (r *Runner) Run(ctx context.Context) error {
	files, err := media.Scan(r.log, r.cfg.Paths.Input, r.cfg.Extensions)
	if err != nil {
		return err
	}

	// The model load is the second-most expensive operation after
	// transcription itself; amortize it across all files.
	loadStart := time.Now()
	eng, err := r.newEngine(r.cfg, r.log)
	if err != nil {
		return err
	}
	defer func() {
		if err := eng.Close(); err != nil {
			r.log.Warn("engine close", "error", err)
		}
	}()
	r.log.Info("model ready",
		"backend", r.cfg.Model.Backend,
		"model", r.cfg.Model.Name,
		"took", time.Since(loadStart).Round(time.Millisecond))

	splitter := segment.New(r.log, r.cfg.Segment.FFmpegPath)
	prober := media.NewProber(r.log, splitter.FFmpegPath())
	orch := NewOrchestrator(r.cfg, r.log, eng, splitter, prober)

	start := time.Now()
	var ok, failed int
	for i, file := range files {
		r.log.Info("transcribing",
			"file", filepath.Base(file.Path),
			"progress", fmt.Sprintf("%d/%d", i+1, len(files)))

		if err := r.processOne(ctx, orch, file); err != nil {
			failed++
			r.log.Error("file failed", "file", filepath.Base(file.Path), "error", err)
			continue
		}
		ok++
	}

	r.log.Info("batch complete",
		"ok", ok,
		"failed", failed,
		"took", time.Since(start).Round(time.Second))
	return nil
}

// processOne converts panics from native engine bindings into errors so a
// poison file cannot abort the batch.
func (r *Runner) processOne(ctx context.Context, orch *Orchestrator, file media.File) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic processing %q: %v", file.Path, rec)
		}
	}()
	return orch.Process(ctx, file)
}
