package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/s0nnyc/transcriber/internal/config"
	"github.com/s0nnyc/transcriber/internal/engine"
	"github.com/s0nnyc/transcriber/internal/media"
)

func batchConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Paths.Input = t.TempDir()
	cfg.Paths.Output = filepath.Join(t.TempDir(), "out")
	cfg.Segment.Enabled = false // keep the batch tests off the ffmpeg path
	return cfg
}

func writeInput(t *testing.T, cfg *config.Config, name string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(cfg.Paths.Input, name), []byte("media"), 0644); err != nil {
		t.Fatal(err)
	}
}

// Scenario E: a missing input directory fails before the engine is loaded.
func TestRunMissingInputBeforeEngineLoad(t *testing.T) {
	cfg := batchConfig(t)
	cfg.Paths.Input = filepath.Join(t.TempDir(), "absent")

	engineLoaded := false
	r := NewRunner(cfg, testLogger())
	r.newEngine = func(*config.Config, *slog.Logger) (engine.Engine, error) {
		engineLoaded = true
		return &fakeEngine{}, nil
	}

	err := r.Run(context.Background())
	if !errors.Is(err, media.ErrMissingInput) {
		t.Fatalf("Run() error = %v, want ErrMissingInput", err)
	}
	if engineLoaded {
		t.Error("engine must not be loaded when the input directory is missing")
	}
}

func TestRunEngineLoadFailureIsFatal(t *testing.T) {
	cfg := batchConfig(t)
	writeInput(t, cfg, "a.wav")

	r := NewRunner(cfg, testLogger())
	r.newEngine = func(*config.Config, *slog.Logger) (engine.Engine, error) {
		return nil, engine.ErrLoad
	}

	if err := r.Run(context.Background()); !errors.Is(err, engine.ErrLoad) {
		t.Fatalf("Run() error = %v, want ErrLoad", err)
	}
}

// A poison file is logged and skipped; the rest of the batch completes.
func TestRunIsolatesFileFailures(t *testing.T) {
	cfg := batchConfig(t)
	writeInput(t, cfg, "a_good.wav")
	writeInput(t, cfg, "b_poison.wav")
	writeInput(t, cfg, "c_good.wav")

	eng := &fakeEngine{failOn: "b_poison.wav"}
	r := NewRunner(cfg, testLogger())
	r.newEngine = func(*config.Config, *slog.Logger) (engine.Engine, error) {
		return eng, nil
	}

	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v, want nil despite the poison file", err)
	}

	if len(eng.calls) != 3 {
		t.Errorf("engine called %d times, want 3 (inventory order, no abort)", len(eng.calls))
	}
	for _, stem := range []string{"a_good", "c_good"} {
		path := filepath.Join(cfg.Paths.Output, "transcript_"+stem+".txt")
		if _, err := os.Stat(path); err != nil {
			t.Errorf("transcript for %s should exist: %v", stem, err)
		}
	}
	poison := filepath.Join(cfg.Paths.Output, "transcript_b_poison.txt")
	if _, err := os.Stat(poison); !os.IsNotExist(err) {
		t.Error("poison file must not produce a transcript")
	}
}

// Engine panics are contained the same way as errors.
func TestRunContainsPanics(t *testing.T) {
	cfg := batchConfig(t)
	writeInput(t, cfg, "a_bomb.wav")
	writeInput(t, cfg, "b_good.wav")

	r := NewRunner(cfg, testLogger())
	r.newEngine = func(*config.Config, *slog.Logger) (engine.Engine, error) {
		return panickyEngine{}, nil
	}

	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v, want nil", err)
	}
	// b_good still processed even though a_bomb panicked.
	if _, err := os.Stat(filepath.Join(cfg.Paths.Output, "transcript_b_good.txt")); err != nil {
		t.Errorf("transcript after a panic should exist: %v", err)
	}
}

type panickyEngine struct{}

func (panickyEngine) Transcribe(_ context.Context, path string, _ engine.Options) (engine.Transcript, error) {
	if filepath.Base(path) == "a_bomb.wav" {
		panic("native crash")
	}
	return engine.Transcript{Segments: []engine.TimedSegment{{Text: "ok"}}}, nil
}

func (panickyEngine) Close() error { return nil }
