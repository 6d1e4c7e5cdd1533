package engine

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/go-audio/wav"
)

// ReadWAV loads a 16-bit PCM WAV file and returns mono float32 samples
// normalized to [-1.0, 1.0], the format whisper.cpp expects.
func ReadWAV(path string) ([]float32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open wav: %w", err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("decode wav %q: %w", path, err)
	}

	channels := 1
	if buf.Format != nil && buf.Format.NumChannels > 1 {
		channels = buf.Format.NumChannels
	}

	samples := make([]float32, 0, len(buf.Data)/channels)
	for i := 0; i+channels <= len(buf.Data); i += channels {
		// Downmix by averaging channels.
		var sum int
		for c := 0; c < channels; c++ {
			sum += buf.Data[i+c]
		}
		samples = append(samples, float32(sum/channels)/32768.0)
	}
	return samples, nil
}

// ensureWAV returns a WAV path for the given media file. WAV inputs are
// returned as-is; anything else is extracted to a temporary 16kHz mono WAV
// via ffmpeg. The second return reports whether the path is a temp file the
// caller must remove.
func ensureWAV(ctx context.Context, ffmpegPath, path string) (string, bool, error) {
	if strings.EqualFold(filepath.Ext(path), ".wav") {
		return path, false, nil
	}

	if ffmpegPath == "" {
		resolved, err := exec.LookPath("ffmpeg")
		if err != nil {
			return "", false, fmt.Errorf("ffmpeg required to read %q but not found", path)
		}
		ffmpegPath = resolved
	}

	// A unique temp path keeps concurrent runs from clobbering each other's
	// extractions.
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	tmp, err := os.CreateTemp("", base+"_audio_16k_*.wav")
	if err != nil {
		return "", false, fmt.Errorf("create temp wav: %w", err)
	}
	out := tmp.Name()
	tmp.Close()

	cmd := exec.CommandContext(ctx, ffmpegPath,
		"-hide_banner", "-loglevel", "error",
		"-y",
		"-i", path,
		"-vn",
		"-ac", "1", "-ar", "16000",
		"-c:a", "pcm_s16le",
		"-f", "wav",
		out,
	)
	if output, err := cmd.CombinedOutput(); err != nil {
		os.Remove(out)
		return "", false, fmt.Errorf("extract audio from %q: %w: %s", path, err, strings.TrimSpace(string(output)))
	}
	return out, true, nil
}
