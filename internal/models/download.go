// Package models fetches whisper ggml model files for the whispercpp backend.
package models

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

const modelBaseURL = "https://huggingface.co/ggerganov/whisper.cpp/resolve/main"

// Filename maps a model name like "large-v3" to its ggml file name.
func Filename(name string) string {
	if strings.HasPrefix(name, "ggml-") {
		return name
	}
	return "ggml-" + name + ".bin"
}

// Ensure returns the local path of the named model, downloading it from
// HuggingFace into dir when absent. The download writes to a temp file and
// renames into place so a partial fetch never looks like a model.
func Ensure(name, dir string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("model name must not be empty")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating models dir: %w", err)
	}

	destPath := filepath.Join(dir, Filename(name))
	if info, err := os.Stat(destPath); err == nil && info.Size() > 0 {
		return destPath, nil
	}

	url := modelBaseURL + "/" + Filename(name)
	fmt.Printf("Downloading whisper model %q\n  from %s\n  to   %s\n", name, url, destPath)

	resp, err := http.Get(url) //nolint:gosec // base URL is a compile-time constant
	if err != nil {
		return "", fmt.Errorf("downloading model %q: %w", name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download of model %q failed: HTTP %d", name, resp.StatusCode)
	}

	tmpPath := destPath + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}

	pr := &progressWriter{writer: f, total: resp.ContentLength, label: Filename(name)}
	written, err := io.Copy(pr, resp.Body)
	f.Close()
	if err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("writing model file: %w", err)
	}

	fmt.Printf("\nDownloaded %.1f MB\n", float64(written)/(1024*1024))

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("moving model file: %w", err)
	}

	return destPath, nil
}

// progressWriter wraps an io.Writer and prints download progress.
type progressWriter struct {
	writer  io.Writer
	total   int64
	written int64
	label   string
}

func (pw *progressWriter) Write(p []byte) (int, error) {
	n, err := pw.writer.Write(p)
	pw.written += int64(n)
	if pw.total > 0 {
		pct := float64(pw.written) / float64(pw.total) * 100
		fmt.Printf("\r  %s: %.1f%% (%.1f / %.1f MB)",
			pw.label, pct,
			float64(pw.written)/(1024*1024),
			float64(pw.total)/(1024*1024))
	}
	return n, err
}
