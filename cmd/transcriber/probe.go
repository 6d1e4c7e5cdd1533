package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/s0nnyc/transcriber/internal/media"
)

func newProbeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "probe <file>",
		Short: "Print a media file's duration, or \"unknown\"",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup(*configPath)
			if err != nil {
				return err
			}

			prober := media.NewProber(log, cfg.Segment.FFmpegPath)
			if d, ok := prober.Duration(cmd.Context(), args[0]); ok {
				fmt.Printf("%s: %s\n", args[0], d)
			} else {
				fmt.Printf("%s: unknown\n", args[0])
			}
			return nil
		},
	}
}
