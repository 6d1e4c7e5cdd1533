// Package engine provides speech-to-text inference backends.
//
// Supported backends:
//   - whispercpp: whisper.cpp via Go bindings, model loaded once in-process (default)
//   - fasterwhisper: faster-whisper via an embedded Python helper
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/s0nnyc/transcriber/internal/config"
	"github.com/s0nnyc/transcriber/internal/models"
)

// ErrLoad marks engine construction failures. Fatal at startup: the batch
// never begins without a working engine.
var ErrLoad = errors.New("engine load failed")

// TimedSegment is one timed piece of engine output.
type TimedSegment struct {
	Start time.Duration
	End   time.Duration
	Text  string
}

// Transcript is the ordered engine output for one media file, plus the
// language the engine detected (distinct from the configured hint).
type Transcript struct {
	Language string
	Segments []TimedSegment
}

// Text returns the transcript fragments joined in yield order, trimmed.
func (t Transcript) Text() string {
	parts := make([]string, 0, len(t.Segments))
	for _, seg := range t.Segments {
		if s := strings.TrimSpace(seg.Text); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

// Options are the per-call inference settings. The whispercpp backend applies
// Language and BeamSize; VADFilter, ChunkLength and NoSpeechThreshold are
// honored by the fasterwhisper backend only.
type Options struct {
	Language          string
	VADFilter         bool
	BeamSize          int
	ChunkLength       int
	NoSpeechThreshold float64
}

// Engine converts a media file to an ordered, timed transcript.
type Engine interface {
	Transcribe(ctx context.Context, path string, opts Options) (Transcript, error)
	// Close releases backend resources.
	Close() error
}

// New creates an Engine based on the config backend setting.
func New(cfg *config.Config, log *slog.Logger) (Engine, error) {
	switch cfg.Model.Backend {
	case "fasterwhisper":
		return NewFasterWhisper(log, cfg.Model.Name, cfg.Model.Device, cfg.Model.ComputeType)
	case "whispercpp", "":
		modelPath := cfg.Model.Path
		if modelPath == "" {
			path, err := models.Ensure(cfg.Model.Name, config.DefaultModelsDir())
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrLoad, err)
			}
			modelPath = path
		}
		return NewWhisperCPP(log, modelPath, cfg.Segment.FFmpegPath)
	default:
		return nil, fmt.Errorf("%w: unknown backend %q (supported: whispercpp, fasterwhisper)", ErrLoad, cfg.Model.Backend)
	}
}
