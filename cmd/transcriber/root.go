package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/s0nnyc/transcriber/internal/config"
	"github.com/s0nnyc/transcriber/internal/logging"
)

func newRootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:           "transcriber",
		Short:         "Batch speech-to-text for a folder of media files",
		Long:          "transcriber scans a folder of audio/video files, splits long recordings\ninto segments to bound memory use, and writes one transcript per input.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file (default: ~/.config/transcriber/config.yaml)")

	cmd.AddCommand(
		newRunCmd(&configPath),
		newProbeCmd(&configPath),
		newDoctorCmd(),
		newVersionCmd(),
	)
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the transcriber version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "transcriber %s\n", version)
		},
	}
}

// loadConfig loads the config from the specified path, or falls back to the
// default config path, or uses built-in defaults.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}

	defaultPath := config.DefaultConfigPath()
	if _, err := os.Stat(defaultPath); err == nil {
		cfg, err := config.Load(defaultPath)
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", defaultPath, err)
		}
		return cfg, nil
	}

	return config.Default(), nil
}

// setup resolves and validates config, then builds the logger.
func setup(configPath string) (*config.Config, *slog.Logger, error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("config validation: %w", err)
	}
	log, err := logging.New(logging.Options{Level: cfg.LogLevel})
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}
