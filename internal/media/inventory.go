// Package media discovers input files and probes container durations.
package media

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
)

// Sentinel errors for inventory failures. Both are fatal at startup.
var (
	ErrMissingInput = errors.New("input directory does not exist")
	ErrNoMediaFound = errors.New("no supported media files found")
)

// File is one discovered input: its path plus the derived extension and stem.
type File struct {
	Path string
	Ext  string // lowercased, with leading dot
	Stem string // base name without extension
}

// NewFile derives a File from a path.
func NewFile(path string) File {
	base := filepath.Base(path)
	ext := strings.ToLower(filepath.Ext(base))
	return File{
		Path: path,
		Ext:  ext,
		Stem: strings.TrimSuffix(base, filepath.Ext(base)),
	}
}

// Scan lists the supported media files directly under dir, ordered
// lexicographically by path so batch runs are reproducible. It does not
// recurse. Extension matching is case-insensitive.
func Scan(log *slog.Logger, dir string, extensions []string) ([]File, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %q", ErrMissingInput, dir)
		}
		return nil, fmt.Errorf("reading input directory %q: %w", dir, err)
	}

	supported := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		supported[strings.ToLower(ext)] = true
	}

	var files []File
	var totalSize uint64
	extCounts := make(map[string]int)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		f := NewFile(filepath.Join(dir, entry.Name()))
		if !supported[f.Ext] {
			continue
		}
		files = append(files, f)
		extCounts[f.Ext]++
		if info, err := entry.Info(); err == nil {
			totalSize += uint64(info.Size())
		}
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("%w in %q (supported: %s)", ErrNoMediaFound, dir, strings.Join(extensions, ", "))
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })

	// Per-extension counts are operator visibility only.
	exts := make([]string, 0, len(extCounts))
	for ext := range extCounts {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	for _, ext := range exts {
		log.Info("found media files", "ext", ext, "count", extCounts[ext])
	}
	log.Info("inventory complete", "files", len(files), "size", humanize.Bytes(totalSize))

	return files, nil
}
