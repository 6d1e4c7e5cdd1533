package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Delete-original policy values.
const (
	DeleteNone     = "none"
	DeleteMatching = "matching"
	DeleteAll      = "all"
)

// Config holds all application configuration. It is loaded once at startup
// and treated as read-only afterwards.
type Config struct {
	Model      ModelConfig      `yaml:"model"`
	Transcribe TranscribeConfig `yaml:"transcribe"`
	Segment    SegmentConfig    `yaml:"segment"`
	Paths      PathsConfig      `yaml:"paths"`

	// DeleteOriginal controls whether successfully transcribed inputs are
	// removed: "none", "matching" (extensions listed below), or "all".
	DeleteOriginal           string   `yaml:"delete_original"`
	DeleteOriginalExtensions []string `yaml:"delete_original_extensions"`

	Extensions []string `yaml:"extensions"`
	LogLevel   string   `yaml:"log_level"`
}

// ModelConfig identifies the speech-to-text model and where it runs.
type ModelConfig struct {
	Backend     string `yaml:"backend"` // "whispercpp" or "fasterwhisper"
	Name        string `yaml:"name"`
	Path        string `yaml:"path"`
	Device      string `yaml:"device"`       // "auto", "cpu", "cuda"
	ComputeType string `yaml:"compute_type"` // "float16", "int8", "int8_float16"
}

// TranscribeConfig holds per-call inference settings.
type TranscribeConfig struct {
	Language          string  `yaml:"language"`
	VADFilter         bool    `yaml:"vad_filter"`
	BeamSize          int     `yaml:"beam_size"`
	ChunkLength       int     `yaml:"chunk_length"` // engine-internal chunking, seconds; 0 = engine default
	NoSpeechThreshold float64 `yaml:"no_speech_threshold"`
}

// SegmentConfig controls external ffmpeg segmentation of long inputs.
type SegmentConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Seconds     int    `yaml:"seconds"`      // max length of one segment
	MinDuration int    `yaml:"min_duration"` // inputs shorter than this are not split
	Force       bool   `yaml:"force"`        // split even when duration is unknown
	FFmpegPath  string `yaml:"ffmpeg_path"`  // empty = resolve from PATH
}

// PathsConfig holds the input and output directories.
type PathsConfig struct {
	Input  string `yaml:"input"`
	Output string `yaml:"output"`
}

// DefaultConfigDir returns the default config directory path.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "transcriber")
}

// DefaultConfigPath returns the default config file path.
func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.yaml")
}

// DefaultModelsDir returns the default directory for downloaded models.
func DefaultModelsDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "share", "transcriber", "models")
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Model: ModelConfig{
			Backend:     "whispercpp",
			Name:        "large-v3",
			Device:      "auto",
			ComputeType: "int8_float16",
		},
		Transcribe: TranscribeConfig{
			Language:          "en",
			VADFilter:         false,
			BeamSize:          5,
			ChunkLength:       0,
			NoSpeechThreshold: 0.6,
		},
		Segment: SegmentConfig{
			Enabled:     true,
			Seconds:     600,
			MinDuration: 420,
		},
		Paths: PathsConfig{
			Input:  "media_in",
			Output: "transcripts_out",
		},
		DeleteOriginal:           DeleteNone,
		DeleteOriginalExtensions: []string{".mkv"},
		Extensions: []string{
			".mkv", ".mp4", ".mov", ".avi", ".webm",
			".m4a", ".wav", ".mp3", ".flac", ".aac", ".ogg", ".wma",
		},
		LogLevel: "info",
	}
}

// Load reads and parses a YAML config file. Missing fields are filled
// with defaults. Tilde (~) in paths is expanded to the user's home directory.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.Model.Path = expandTilde(cfg.Model.Path)
	cfg.Paths.Input = expandTilde(cfg.Paths.Input)
	cfg.Paths.Output = expandTilde(cfg.Paths.Output)
	cfg.Segment.FFmpegPath = expandTilde(cfg.Segment.FFmpegPath)

	return cfg, nil
}

// Validate checks the config for invalid values.
func (c *Config) Validate() error {
	switch c.Model.Backend {
	case "whispercpp", "fasterwhisper", "":
	default:
		return fmt.Errorf("model.backend must be \"whispercpp\" or \"fasterwhisper\", got %q", c.Model.Backend)
	}

	if c.Model.Name == "" && c.Model.Path == "" {
		return fmt.Errorf("one of model.name or model.path must be set")
	}

	if c.Transcribe.BeamSize <= 0 {
		return fmt.Errorf("transcribe.beam_size must be > 0")
	}

	if c.Transcribe.ChunkLength < 0 {
		return fmt.Errorf("transcribe.chunk_length must be >= 0")
	}

	if c.Transcribe.NoSpeechThreshold < 0 || c.Transcribe.NoSpeechThreshold > 1 {
		return fmt.Errorf("transcribe.no_speech_threshold must be in [0, 1], got %v", c.Transcribe.NoSpeechThreshold)
	}

	if c.Segment.Enabled && c.Segment.Seconds <= 0 {
		return fmt.Errorf("segment.seconds must be > 0 when segmentation is enabled")
	}

	if c.Segment.MinDuration < 0 {
		return fmt.Errorf("segment.min_duration must be >= 0")
	}

	if c.Paths.Input == "" {
		return fmt.Errorf("paths.input must not be empty")
	}

	if c.Paths.Output == "" {
		return fmt.Errorf("paths.output must not be empty")
	}

	switch c.DeleteOriginal {
	case DeleteNone, DeleteMatching, DeleteAll:
	default:
		return fmt.Errorf("delete_original must be \"none\", \"matching\", or \"all\", got %q", c.DeleteOriginal)
	}

	if len(c.Extensions) == 0 {
		return fmt.Errorf("extensions must not be empty")
	}
	for _, ext := range c.Extensions {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("extensions entries must start with a dot, got %q", ext)
		}
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level must be debug, info, warn, or error, got %q", c.LogLevel)
	}

	return nil
}

// ShouldDeleteOriginal reports whether the delete-original policy applies to a
// successfully transcribed input with the given extension.
func (c *Config) ShouldDeleteOriginal(ext string) bool {
	switch c.DeleteOriginal {
	case DeleteAll:
		return true
	case DeleteMatching:
		for _, e := range c.DeleteOriginalExtensions {
			if strings.EqualFold(e, ext) {
				return true
			}
		}
	}
	return false
}

// expandTilde replaces a leading ~ with the user's home directory.
func expandTilde(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
