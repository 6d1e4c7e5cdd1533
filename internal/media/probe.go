package media

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-audio/wav"
)

// commandRunner abstracts process execution for testability.
type commandRunner interface {
	CombinedOutput(ctx context.Context, name string, args ...string) ([]byte, error)
}

type osRunner struct{}

func (osRunner) CombinedOutput(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// Prober reads a media container's duration. Duration is an optimization
// signal, not a required fact: every failure mode reports "unknown" instead
// of an error.
type Prober struct {
	ffprobePath string
	ffmpegPath  string
	runner      commandRunner
	log         *slog.Logger
}

// NewProber builds a Prober. ffmpegPath may be empty; ffprobe is resolved
// from PATH and, failing that, from the directory holding ffmpeg.
func NewProber(log *slog.Logger, ffmpegPath string) *Prober {
	p := &Prober{ffmpegPath: ffmpegPath, runner: osRunner{}, log: log}
	if path, err := exec.LookPath("ffprobe"); err == nil {
		p.ffprobePath = path
	} else if ffmpegPath != "" {
		sibling := filepath.Join(filepath.Dir(ffmpegPath), "ffprobe")
		if _, err := os.Stat(sibling); err == nil {
			p.ffprobePath = sibling
		}
	}
	return p
}

// Duration returns the media duration and whether it is known.
func (p *Prober) Duration(ctx context.Context, path string) (time.Duration, bool) {
	if d, ok := p.wavDuration(path); ok {
		return d, true
	}
	if p.ffprobePath != "" {
		if d, ok := p.ffprobeDuration(ctx, path); ok {
			return d, true
		}
	}
	if p.ffmpegPath != "" {
		if d, ok := p.ffmpegDuration(ctx, path); ok {
			return d, true
		}
	}
	p.log.Debug("duration unknown", "path", path)
	return 0, false
}

// wavDuration reads the duration straight from a WAV header, skipping the
// subprocess round-trip for the most common segment format.
func (p *Prober) wavDuration(path string) (time.Duration, bool) {
	if !strings.EqualFold(filepath.Ext(path), ".wav") {
		return 0, false
	}
	f, err := os.Open(path)
	if err != nil {
		return 0, false
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	d, err := dec.Duration()
	if err != nil || d <= 0 {
		return 0, false
	}
	return d, true
}

// ffprobe JSON output, reduced to the fields we read.
type probeOutput struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
	Streams []struct {
		CodecType string `json:"codec_type"`
		Duration  string `json:"duration"`
	} `json:"streams"`
}

// ffprobeDuration asks ffprobe for the container duration, falling back to
// the first audio stream's own duration when the container omits it.
func (p *Prober) ffprobeDuration(ctx context.Context, path string) (time.Duration, bool) {
	out, err := p.runner.CombinedOutput(ctx, p.ffprobePath,
		"-v", "error",
		"-print_format", "json",
		"-show_format", "-show_streams",
		path,
	)
	if err != nil {
		return 0, false
	}

	// ffprobe may prepend warnings before the JSON object.
	if idx := bytes.IndexByte(out, '{'); idx > 0 {
		out = out[idx:]
	}
	var parsed probeOutput
	if err := json.Unmarshal(out, &parsed); err != nil {
		return 0, false
	}

	if d, ok := parseSeconds(parsed.Format.Duration); ok {
		return d, true
	}
	for _, stream := range parsed.Streams {
		if stream.CodecType != "audio" {
			continue
		}
		if d, ok := parseSeconds(stream.Duration); ok {
			return d, true
		}
	}
	return 0, false
}

var ffmpegDurationRe = regexp.MustCompile(`Duration:\s*(\d+):(\d+):(\d+(?:\.\d+)?)`)

// ffmpegDuration parses "Duration: HH:MM:SS.cc" from ffmpeg's banner output.
// ffmpeg exits non-zero without an output file, so the exit code is ignored
// and only the captured text matters.
func (p *Prober) ffmpegDuration(ctx context.Context, path string) (time.Duration, bool) {
	out, _ := p.runner.CombinedOutput(ctx, p.ffmpegPath, "-i", path, "-f", "null", "-")
	m := ffmpegDurationRe.FindSubmatch(out)
	if m == nil {
		return 0, false
	}
	hours, _ := strconv.Atoi(string(m[1]))
	minutes, _ := strconv.Atoi(string(m[2]))
	seconds, err := strconv.ParseFloat(string(m[3]), 64)
	if err != nil {
		return 0, false
	}
	total := time.Duration(hours)*time.Hour +
		time.Duration(minutes)*time.Minute +
		time.Duration(seconds*float64(time.Second))
	if total <= 0 {
		return 0, false
	}
	return total, true
}

func parseSeconds(s string) (time.Duration, bool) {
	if s == "" {
		return 0, false
	}
	secs, err := strconv.ParseFloat(s, 64)
	if err != nil || secs <= 0 {
		return 0, false
	}
	return time.Duration(secs * float64(time.Second)), true
}
