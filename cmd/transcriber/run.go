package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/s0nnyc/transcriber/internal/config"
	"github.com/s0nnyc/transcriber/internal/pipeline"
)

func newRunCmd(configPath *string) *cobra.Command {
	var inputDir, outputDir string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Transcribe every supported media file in the input directory",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := setup(*configPath)
			if err != nil {
				return err
			}
			if inputDir != "" {
				cfg.Paths.Input = inputDir
			}
			if outputDir != "" {
				cfg.Paths.Output = outputDir
			}

			printBanner(cfg)
			return pipeline.NewRunner(cfg, log).Run(cmd.Context())
		},
	}
	cmd.Flags().StringVarP(&inputDir, "input", "i", "", "input directory (overrides config)")
	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "output directory (overrides config)")
	return cmd
}

// printBanner displays the startup configuration summary.
func printBanner(cfg *config.Config) {
	fmt.Println("=== transcriber ===")
	fmt.Printf("  Backend:  %s (%s, %s, %s)\n", cfg.Model.Backend, cfg.Model.Name, cfg.Model.Device, cfg.Model.ComputeType)
	fmt.Printf("  Language: %s (beam %d, vad %v)\n", cfg.Transcribe.Language, cfg.Transcribe.BeamSize, cfg.Transcribe.VADFilter)
	if cfg.Segment.Enabled {
		fmt.Printf("  Segments: %ds pieces for inputs over %ds\n", cfg.Segment.Seconds, cfg.Segment.MinDuration)
	} else {
		fmt.Println("  Segments: disabled")
	}
	fmt.Printf("  Input:    %s\n", cfg.Paths.Input)
	fmt.Printf("  Output:   %s\n", cfg.Paths.Output)
	fmt.Printf("  Types:    %s\n", strings.Join(cfg.Extensions, " "))
	fmt.Println("===================")
}
