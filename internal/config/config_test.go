package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Model.Backend != "whispercpp" {
		t.Errorf("Model.Backend = %q, want %q", cfg.Model.Backend, "whispercpp")
	}
	if cfg.Model.Name != "large-v3" {
		t.Errorf("Model.Name = %q, want %q", cfg.Model.Name, "large-v3")
	}
	if cfg.Transcribe.BeamSize != 5 {
		t.Errorf("Transcribe.BeamSize = %d, want 5", cfg.Transcribe.BeamSize)
	}
	if cfg.Transcribe.VADFilter {
		t.Error("Transcribe.VADFilter should default to false")
	}
	if !cfg.Segment.Enabled {
		t.Error("Segment.Enabled should default to true")
	}
	if cfg.Segment.Seconds != 600 {
		t.Errorf("Segment.Seconds = %d, want 600", cfg.Segment.Seconds)
	}
	if cfg.Segment.MinDuration != 420 {
		t.Errorf("Segment.MinDuration = %d, want 420", cfg.Segment.MinDuration)
	}
	if cfg.DeleteOriginal != DeleteNone {
		t.Errorf("DeleteOriginal = %q, want %q", cfg.DeleteOriginal, DeleteNone)
	}
	if len(cfg.Extensions) != 12 {
		t.Errorf("Extensions length = %d, want 12", len(cfg.Extensions))
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "info")
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("Default() should validate, got: %v", err)
	}
}

func TestLoad(t *testing.T) {
	yamlContent := `
model:
  backend: fasterwhisper
  name: small
  device: cpu
transcribe:
  language: sk
  vad_filter: true
  beam_size: 3
  chunk_length: 30
segment:
  enabled: false
paths:
  input: /data/in
  output: /data/out
delete_original: matching
log_level: debug
`
	tmpDir := t.TempDir()
	cfgPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(cfgPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Model.Backend != "fasterwhisper" {
		t.Errorf("Model.Backend = %q, want %q", cfg.Model.Backend, "fasterwhisper")
	}
	if cfg.Model.Name != "small" {
		t.Errorf("Model.Name = %q, want %q", cfg.Model.Name, "small")
	}
	if cfg.Transcribe.Language != "sk" {
		t.Errorf("Transcribe.Language = %q, want %q", cfg.Transcribe.Language, "sk")
	}
	if !cfg.Transcribe.VADFilter {
		t.Error("Transcribe.VADFilter should be true")
	}
	if cfg.Transcribe.BeamSize != 3 {
		t.Errorf("Transcribe.BeamSize = %d, want 3", cfg.Transcribe.BeamSize)
	}
	if cfg.Transcribe.ChunkLength != 30 {
		t.Errorf("Transcribe.ChunkLength = %d, want 30", cfg.Transcribe.ChunkLength)
	}
	if cfg.Segment.Enabled {
		t.Error("Segment.Enabled should be false")
	}
	if cfg.Paths.Input != "/data/in" {
		t.Errorf("Paths.Input = %q, want %q", cfg.Paths.Input, "/data/in")
	}
	if cfg.DeleteOriginal != DeleteMatching {
		t.Errorf("DeleteOriginal = %q, want %q", cfg.DeleteOriginal, DeleteMatching)
	}

	// Fields absent from the file keep their defaults.
	if cfg.Transcribe.NoSpeechThreshold != 0.6 {
		t.Errorf("Transcribe.NoSpeechThreshold = %v, want default 0.6", cfg.Transcribe.NoSpeechThreshold)
	}
	if cfg.Segment.Seconds != 600 {
		t.Errorf("Segment.Seconds = %d, want default 600", cfg.Segment.Seconds)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("Load() on a missing file should return an error")
	}
}

func TestLoadExpandsTilde(t *testing.T) {
	yamlContent := `
model:
  path: ~/models/ggml-base.bin
paths:
  input: ~/media
  output: ~/transcripts
`
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(cfgPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home directory: %v", err)
	}
	if !strings.HasPrefix(cfg.Model.Path, home) {
		t.Errorf("Model.Path = %q, want expansion under %q", cfg.Model.Path, home)
	}
	if !strings.HasPrefix(cfg.Paths.Input, home) {
		t.Errorf("Paths.Input = %q, want expansion under %q", cfg.Paths.Input, home)
	}
}

func TestValidateRejects(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown backend", func(c *Config) { c.Model.Backend = "parakeet" }},
		{"no model identity", func(c *Config) { c.Model.Name = ""; c.Model.Path = "" }},
		{"zero beam size", func(c *Config) { c.Transcribe.BeamSize = 0 }},
		{"negative chunk length", func(c *Config) { c.Transcribe.ChunkLength = -1 }},
		{"no-speech out of range", func(c *Config) { c.Transcribe.NoSpeechThreshold = 1.5 }},
		{"zero segment seconds", func(c *Config) { c.Segment.Seconds = 0 }},
		{"negative min duration", func(c *Config) { c.Segment.MinDuration = -5 }},
		{"empty input dir", func(c *Config) { c.Paths.Input = "" }},
		{"empty output dir", func(c *Config) { c.Paths.Output = "" }},
		{"bad delete policy", func(c *Config) { c.DeleteOriginal = "sometimes" }},
		{"no extensions", func(c *Config) { c.Extensions = nil }},
		{"extension without dot", func(c *Config) { c.Extensions = []string{"mp4"} }},
		{"bad log level", func(c *Config) { c.LogLevel = "verbose" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Errorf("Validate() should reject %s", tc.name)
			}
		})
	}
}

func TestShouldDeleteOriginal(t *testing.T) {
	cfg := Default()

	cfg.DeleteOriginal = DeleteNone
	if cfg.ShouldDeleteOriginal(".mkv") {
		t.Error("policy none should never delete")
	}

	cfg.DeleteOriginal = DeleteMatching
	cfg.DeleteOriginalExtensions = []string{".mkv"}
	if !cfg.ShouldDeleteOriginal(".MKV") {
		t.Error("policy matching should match case-insensitively")
	}
	if cfg.ShouldDeleteOriginal(".mp4") {
		t.Error("policy matching should not delete unlisted extensions")
	}

	cfg.DeleteOriginal = DeleteAll
	if !cfg.ShouldDeleteOriginal(".mp4") {
		t.Error("policy all should delete any extension")
	}
}
