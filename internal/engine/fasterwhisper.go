package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	_ "embed"
)

//go:embed assets/faster_whisper.py
var helperScript []byte

// FasterWhisper runs faster-whisper through an embedded Python helper that
// prints a JSON transcript on stdout. Unlike the whispercpp backend the
// helper loads the model on every invocation, so whispercpp is the better
// default for large batches.
type FasterWhisper struct {
	modelName   string
	device      string
	computeType string
	python      string
	log         *slog.Logger
}

// NewFasterWhisper resolves the Python interpreter and returns the backend.
// The interpreter can be overridden with the TRANSCRIBER_PY environment
// variable.
func NewFasterWhisper(log *slog.Logger, modelName, device, computeType string) (*FasterWhisper, error) {
	python := os.Getenv("TRANSCRIBER_PY")
	if python == "" {
		python = "python3"
	}
	resolved, err := exec.LookPath(python)
	if err != nil {
		return nil, fmt.Errorf("%w: python interpreter %q not found", ErrLoad, python)
	}
	if device == "" {
		device = "auto"
	}
	return &FasterWhisper{
		modelName:   modelName,
		device:      device,
		computeType: computeType,
		python:      resolved,
		log:         log,
	}, nil
}

// Close is a no-op; the helper holds no persistent resources.
func (f *FasterWhisper) Close() error { return nil }

// Transcribe invokes the helper for one media file.
func (f *FasterWhisper) Transcribe(ctx context.Context, path string, opts Options) (Transcript, error) {
	scriptPath, err := writeHelperScript()
	if err != nil {
		return Transcript{}, err
	}
	defer os.Remove(scriptPath)

	args := []string{
		scriptPath,
		"--audio", path,
		"--model", f.modelName,
		"--device", f.device,
		"--beam-size", strconv.Itoa(opts.BeamSize),
		"--no-speech-threshold", strconv.FormatFloat(opts.NoSpeechThreshold, 'f', -1, 64),
	}
	if f.computeType != "" {
		args = append(args, "--compute-type", f.computeType)
	}
	if opts.Language != "" {
		args = append(args, "--language", opts.Language)
	}
	if opts.VADFilter {
		args = append(args, "--vad-filter")
	}
	if opts.ChunkLength > 0 {
		args = append(args, "--chunk-length", strconv.Itoa(opts.ChunkLength))
	}

	cmd := exec.CommandContext(ctx, f.python, args...)
	cmd.Env = os.Environ()
	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return Transcript{}, fmt.Errorf("faster-whisper helper failed: %s", strings.TrimSpace(string(exitErr.Stderr)))
		}
		return Transcript{}, fmt.Errorf("run helper: %w", err)
	}

	return parseHelperOutput(out)
}

// writeHelperScript materializes the embedded helper at a unique temp path
// so concurrent transcriber processes do not overwrite each other's copy.
func writeHelperScript() (string, error) {
	tmp, err := os.CreateTemp("", "transcriber_faster_whisper_*.py")
	if err != nil {
		return "", fmt.Errorf("create helper script: %w", err)
	}
	if _, err := tmp.Write(helperScript); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("write helper script: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("write helper script: %w", err)
	}
	return tmp.Name(), nil
}

// helperOutput is the JSON contract with assets/faster_whisper.py.
type helperOutput struct {
	Language string  `json:"language"`
	Duration float64 `json:"duration"`
	Segments []struct {
		Start float64 `json:"start"`
		End   float64 `json:"end"`
		Text  string  `json:"text"`
	} `json:"segments"`
}

func parseHelperOutput(out []byte) (Transcript, error) {
	var parsed helperOutput
	if err := json.Unmarshal(out, &parsed); err != nil {
		return Transcript{}, fmt.Errorf("parse helper output: %w\n%s", err, string(out))
	}

	transcript := Transcript{Language: parsed.Language}
	for _, seg := range parsed.Segments {
		transcript.Segments = append(transcript.Segments, TimedSegment{
			Start: time.Duration(seg.Start * float64(time.Second)),
			End:   time.Duration(seg.End * float64(time.Second)),
			Text:  seg.Text,
		})
	}
	return transcript, nil
}
