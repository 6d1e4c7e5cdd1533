// Package segment splits long media files into time-bounded pieces with
// ffmpeg's segment muxer. Splitting is an optimization: every failure mode
// degrades to transcribing the source unsplit.
package segment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"
)

// Sentinel errors, surfaced in warnings when splitting degrades.
var (
	ErrToolUnavailable = errors.New("ffmpeg not found")
	ErrSplitFailed     = errors.New("ffmpeg segmentation failed")
)

// Segment is a time-bounded slice of a source file plus its ordinal index.
type Segment struct {
	Path  string
	Index int
}

// Source describes the file to split.
type Source struct {
	Path string
	Ext  string
	Stem string
}

// commandRunner abstracts process execution for testability.
type commandRunner interface {
	CombinedOutput(ctx context.Context, name string, args ...string) ([]byte, error)
}

type osRunner struct{}

func (osRunner) CombinedOutput(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// Segmenter invokes ffmpeg to split sources into consecutively numbered
// stream-copied segment files.
type Segmenter struct {
	ffmpegPath string
	runner     commandRunner
	log        *slog.Logger
}

// New resolves ffmpeg and returns a Segmenter. Resolution order: the
// configured path, PATH lookup, then an ffmpeg binary sitting next to the
// running executable. An unresolvable binary is not an error; the Segmenter
// reports Available() == false and callers take the unsplit path.
func New(log *slog.Logger, configuredPath string) *Segmenter {
	return &Segmenter{
		ffmpegPath: resolveFFmpeg(configuredPath),
		runner:     osRunner{},
		log:        log,
	}
}

// Available reports whether the external tool was resolved.
func (s *Segmenter) Available() bool {
	return s.ffmpegPath != ""
}

// FFmpegPath returns the resolved binary path, or "" when unavailable.
func (s *Segmenter) FFmpegPath() string {
	return s.ffmpegPath
}

// Split stream-copies source into files of at most segSeconds under outDir,
// named <stem>_NNN<ext> so that filename sort order is chronological order.
// Timestamps are reset per segment; downstream transcription only needs
// chronological order, not absolute offsets.
//
// On any failure Split logs a warning and returns the source itself as a
// single segment with split == false. It never returns an error: losing the
// optimization must not lose the transcript.
func (s *Segmenter) Split(ctx context.Context, source Source, outDir string, segSeconds int) (segments []Segment, split bool) {
	fallback := []Segment{{Path: source.Path, Index: 0}}

	if !s.Available() {
		s.log.Warn("transcribing unsplit", "path", source.Path, "reason", ErrToolUnavailable)
		return fallback, false
	}

	if err := os.MkdirAll(outDir, 0755); err != nil {
		s.log.Warn("transcribing unsplit", "path", source.Path, "reason", err)
		return fallback, false
	}

	pattern := filepath.Join(outDir, source.Stem+"_%03d"+source.Ext)
	out, err := s.runner.CombinedOutput(ctx, s.ffmpegPath,
		"-hide_banner", "-loglevel", "error",
		"-y",
		"-i", source.Path,
		"-c", "copy",
		"-map", "0",
		"-f", "segment",
		"-segment_time", strconv.Itoa(segSeconds),
		"-reset_timestamps", "1",
		pattern,
	)
	if err != nil {
		s.log.Warn("transcribing unsplit",
			"path", source.Path,
			"reason", fmt.Errorf("%w: %v", ErrSplitFailed, err),
			"output", string(out))
		s.removeProduced(source, outDir)
		return fallback, false
	}

	segments = s.collect(source, outDir)
	if len(segments) == 0 {
		s.log.Warn("transcribing unsplit", "path", source.Path, "reason", fmt.Errorf("%w: no segments produced", ErrSplitFailed))
		s.removeProduced(source, outDir)
		return fallback, false
	}

	s.log.Debug("split complete", "path", source.Path, "segments", len(segments))
	return segments, true
}

// collect lists the produced segment files in filename order, which matches
// chronological order by construction of the naming scheme.
func (s *Segmenter) collect(source Source, outDir string) []Segment {
	matches := listProduced(source, outDir)
	if len(matches) == 0 {
		return nil
	}
	sort.Strings(matches)

	segments := make([]Segment, len(matches))
	for i, path := range matches {
		segments[i] = Segment{Path: path, Index: i}
	}
	return segments
}

// removeProduced clears any partial output left by a failed run, including
// the now-empty output directory.
func (s *Segmenter) removeProduced(source Source, outDir string) {
	for _, path := range listProduced(source, outDir) {
		if err := os.Remove(path); err != nil {
			s.log.Debug("could not remove partial segment", "path", path, "error", err)
		}
	}
	_ = os.Remove(outDir)
}

// listProduced returns the segment files under outDir matching the naming
// scheme. Matching is a literal prefix/suffix check, not a glob; stems may
// contain characters like "[" that glob patterns would misinterpret.
func listProduced(source Source, outDir string) []string {
	entries, err := os.ReadDir(outDir)
	if err != nil {
		return nil
	}
	var matches []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, source.Stem+"_") || !strings.HasSuffix(name, source.Ext) {
			continue
		}
		matches = append(matches, filepath.Join(outDir, name))
	}
	return matches
}

// resolveFFmpeg finds the ffmpeg binary: configured path, PATH, then a
// sidecar next to the running executable.
func resolveFFmpeg(configured string) string {
	if configured != "" {
		if resolved, err := exec.LookPath(configured); err == nil {
			return resolved
		}
		return ""
	}
	if resolved, err := exec.LookPath("ffmpeg"); err == nil {
		return resolved
	}
	if self, err := os.Executable(); err == nil {
		name := "ffmpeg"
		if runtime.GOOS == "windows" {
			name += ".exe"
		}
		sidecar := filepath.Join(filepath.Dir(self), name)
		if info, err := os.Stat(sidecar); err == nil && !info.IsDir() {
			return sidecar
		}
	}
	return ""
}
