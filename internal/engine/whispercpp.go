package engine

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"

	whisper "github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"
)

// WhisperCPP wraps a whisper.cpp model for speech-to-text. The model is
// loaded once at construction and reused for every call; calls are never
// made concurrently.
type WhisperCPP struct {
	model      whisper.Model
	ffmpegPath string
	log        *slog.Logger
}

// NewWhisperCPP loads a whisper ggml model from the given path.
// The caller must call Close() when done. ffmpegPath is used to extract
// audio from non-WAV inputs and may be empty when all inputs are WAV.
func NewWhisperCPP(log *slog.Logger, modelPath, ffmpegPath string) (*WhisperCPP, error) {
	model, err := whisper.New(modelPath)
	if err != nil {
		return nil, fmt.Errorf("%w: load whisper model %q: %v", ErrLoad, modelPath, err)
	}
	return &WhisperCPP{model: model, ffmpegPath: ffmpegPath, log: log}, nil
}

// Close releases the whisper model resources.
func (w *WhisperCPP) Close() error {
	if w.model != nil {
		return w.model.Close()
	}
	return nil
}

// Transcribe runs the model over the media file and returns its timed
// segments in yield order. Non-WAV inputs are first extracted to a temporary
// 16kHz mono WAV with ffmpeg.
func (w *WhisperCPP) Transcribe(ctx context.Context, path string, opts Options) (Transcript, error) {
	wavPath, isTemp, err := ensureWAV(ctx, w.ffmpegPath, path)
	if err != nil {
		return Transcript{}, fmt.Errorf("transcribe %q: %w", path, err)
	}
	if isTemp {
		defer func() {
			if err := os.Remove(wavPath); err != nil {
				w.log.Debug("could not remove temp audio", "path", wavPath, "error", err)
			}
		}()
	}

	samples, err := ReadWAV(wavPath)
	if err != nil {
		return Transcript{}, fmt.Errorf("transcribe %q: %w", path, err)
	}

	wctx, err := w.model.NewContext()
	if err != nil {
		return Transcript{}, fmt.Errorf("transcribe: create context: %w", err)
	}

	if opts.Language != "" {
		if err := wctx.SetLanguage(opts.Language); err != nil {
			// English-only models reject hints; proceed with the default.
			w.log.Debug("language hint rejected", "language", opts.Language, "error", err)
		}
	}
	if opts.BeamSize > 0 {
		wctx.SetBeamSize(opts.BeamSize)
	}
	wctx.SetThreads(uint(runtime.NumCPU()))

	if err := wctx.Process(samples, nil, nil, nil); err != nil {
		return Transcript{}, fmt.Errorf("transcribe: process: %w", err)
	}

	var transcript Transcript
	for {
		seg, err := wctx.NextSegment()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Transcript{}, fmt.Errorf("transcribe: next segment: %w", err)
		}
		transcript.Segments = append(transcript.Segments, TimedSegment{
			Start: seg.Start,
			End:   seg.End,
			Text:  seg.Text,
		})
	}
	transcript.Language = wctx.Language()

	return transcript, nil
}
