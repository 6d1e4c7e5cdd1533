package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/s0nnyc/transcriber/internal/deps"
)

func newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check availability of the external tools the pipeline can use",
		RunE: func(_ *cobra.Command, _ []string) error {
			okMark := color.New(color.FgGreen).Sprint("ok")
			missingMark := color.New(color.FgYellow).Sprint("missing")

			for _, status := range deps.Check(deps.Default()) {
				mark := okMark
				detail := status.Command
				if !status.Available {
					mark = missingMark
					detail = status.Detail
				}
				fmt.Printf("%-10s %-8s %s\n", status.Name, mark, detail)
				fmt.Printf("%-10s %-8s %s\n", "", "", status.Description)
			}
			fmt.Println("\nAll tools are optional: the pipeline transcribes unsplit when ffmpeg is missing.")
			return nil
		},
	}
}
