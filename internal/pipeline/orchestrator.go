// Package pipeline ties inventory, probing, segmentation and inference into
// per-file orchestration and a batch driver.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/s0nnyc/transcriber/internal/config"
	"github.com/s0nnyc/transcriber/internal/engine"
	"github.com/s0nnyc/transcriber/internal/media"
	"github.com/s0nnyc/transcriber/internal/segment"
)

// transcriptJoiner separates per-segment fragments in the final transcript.
const transcriptJoiner = " "

// Prober reports a media file's duration, or unknown.
type Prober interface {
	Duration(ctx context.Context, path string) (time.Duration, bool)
}

// Splitter splits a source into ordered segments, degrading to the unsplit
// source on any failure.
type Splitter interface {
	Available() bool
	Split(ctx context.Context, source segment.Source, outDir string, segSeconds int) ([]segment.Segment, bool)
}

// Orchestrator processes one media file end to end: probe, optionally split,
// transcribe each segment in order, write the transcript, clean up.
type Orchestrator struct {
	cfg      *config.Config
	log      *slog.Logger
	engine   engine.Engine
	splitter Splitter
	prober   Prober
}

// NewOrchestrator wires an Orchestrator from its collaborators.
func NewOrchestrator(cfg *config.Config, log *slog.Logger, eng engine.Engine, splitter Splitter, prober Prober) *Orchestrator {
	return &Orchestrator{cfg: cfg, log: log, engine: eng, splitter: splitter, prober: prober}
}

// TranscriptPath returns the output path for a given input file.
func (o *Orchestrator) TranscriptPath(file media.File) string {
	return filepath.Join(o.cfg.Paths.Output, "transcript_"+file.Stem+".txt")
}

// segmentDir returns the per-file temporary directory for split output.
func (o *Orchestrator) segmentDir(file media.File) string {
	return filepath.Join(o.cfg.Paths.Output, file.Stem+"_segs")
}

// Process runs one file through the pipeline. On error no transcript is
// written; temporary segments never outlive the call either way.
func (o *Orchestrator) Process(ctx context.Context, file media.File) error {
	start := time.Now()
	timings := &Timings{}

	probeStart := time.Now()
	duration, known := o.prober.Duration(ctx, file.Path)
	timings.Record("probe", time.Since(probeStart))

	segments := []segment.Segment{{Path: file.Path, Index: 0}}
	split := false
	if o.shouldSplit(duration, known) {
		segDir := o.segmentDir(file)
		splitStart := time.Now()
		segments, split = o.splitter.Split(ctx, segment.Source{Path: file.Path, Ext: file.Ext, Stem: file.Stem}, segDir, o.cfg.Segment.Seconds)
		timings.Record("segment", time.Since(splitStart))
		if split {
			defer o.cleanup(segDir, segments)
		}
	} else {
		o.log.Debug("segmentation skipped",
			"path", file.Path,
			"duration", duration,
			"known", known,
			"enabled", o.cfg.Segment.Enabled,
			"tool", o.splitter.Available())
	}

	opts := engine.Options{
		Language:          o.cfg.Transcribe.Language,
		VADFilter:         o.cfg.Transcribe.VADFilter,
		BeamSize:          o.cfg.Transcribe.BeamSize,
		ChunkLength:       o.cfg.Transcribe.ChunkLength,
		NoSpeechThreshold: o.cfg.Transcribe.NoSpeechThreshold,
	}

	// One segment at a time: bounding peak resource use is the entire point
	// of segmentation.
	parts := make([]string, 0, len(segments))
	detected := ""
	for i, seg := range segments {
		step := fmt.Sprintf("transcribe segment %d/%d", i+1, len(segments))
		o.log.Debug(step, "path", seg.Path)

		segStart := time.Now()
		transcript, err := o.engine.Transcribe(ctx, seg.Path, opts)
		timings.Record(step, time.Since(segStart))
		if err != nil {
			return fmt.Errorf("%s of %q: %w", step, file.Path, err)
		}

		if text := transcript.Text(); text != "" {
			parts = append(parts, text)
		}
		if transcript.Language != "" {
			detected = transcript.Language
		}
	}
	text := strings.Join(parts, transcriptJoiner)

	writeStart := time.Now()
	if err := os.MkdirAll(o.cfg.Paths.Output, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	outPath := o.TranscriptPath(file)
	if err := os.WriteFile(outPath, []byte(text+"\n"), 0644); err != nil {
		return fmt.Errorf("writing transcript %q: %w", outPath, err)
	}
	timings.Record("write", time.Since(writeStart))

	if detected == "" {
		detected = "n/a"
	}
	o.log.Info("transcript saved",
		"path", outPath,
		"segments", len(segments),
		"language", detected,
		"took", time.Since(start).Round(time.Millisecond))
	for _, rec := range timings.Records() {
		o.log.Debug("step timing", "step", rec.Step, "elapsed", rec.Elapsed.Round(time.Millisecond))
	}

	o.deleteOriginal(file)
	return nil
}

// shouldSplit decides Probing -> Segmenting versus Probing -> Skipped.
// Unknown duration skips segmentation unless force is set; the engine's own
// internal chunk length bounds memory on the unsplit path.
func (o *Orchestrator) shouldSplit(duration time.Duration, known bool) bool {
	if !o.cfg.Segment.Enabled || !o.splitter.Available() {
		return false
	}
	if o.cfg.Segment.Force {
		return true
	}
	return known && duration >= time.Duration(o.cfg.Segment.MinDuration)*time.Second
}

// cleanup removes the split files and their directory. Failures are logged
// and swallowed: cleanup trouble must not mask a successful transcription.
func (o *Orchestrator) cleanup(segDir string, segments []segment.Segment) {
	for _, seg := range segments {
		if err := os.Remove(seg.Path); err != nil && !os.IsNotExist(err) {
			o.log.Warn("could not delete temp segment", "path", seg.Path, "error", err)
		}
	}
	if err := os.Remove(segDir); err != nil && !os.IsNotExist(err) {
		o.log.Warn("could not remove segment directory", "path", segDir, "error", err)
	}
}

// deleteOriginal applies the delete-original policy after a successful write.
func (o *Orchestrator) deleteOriginal(file media.File) {
	if !o.cfg.ShouldDeleteOriginal(file.Ext) {
		return
	}
	if err := os.Remove(file.Path); err != nil {
		o.log.Warn("could not delete original", "path", file.Path, "error", err)
		return
	}
	o.log.Info("deleted original", "path", file.Path)
}
