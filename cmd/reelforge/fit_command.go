package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"reelforge/internal/duration"
)

func newFitCommand(ctx *commandContext) *cobra.Command {
	var seconds float64

	cmd := &cobra.Command{
		Use:   "fit --seconds N TEXT...",
		Short: "Preview how narration fits a target duration",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if seconds <= 0 {
				return errors.New("--seconds must be positive")
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			fitting := cfg.FittingConfig()
			text := strings.Join(args, " ")
			rate := fitting.Rate()

			estimate := duration.EstimateDuration(text, rate)
			verdict := duration.NeedsAdjustment(estimate.Seconds, seconds, fitting.TolerancePercent)
			truncated := duration.TruncateToFit(text, seconds, rate)
			fitted := duration.EstimateDuration(truncated, rate)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Words:      %d at %.2f words/s\n", estimate.WordCount, estimate.Rate)
			fmt.Fprintf(out, "Estimate:   %.1fs (target %.1fs)\n", estimate.Seconds, seconds)
			fmt.Fprintf(out, "Verdict:    %s\n", titleCaser.String(string(verdict)))
			if truncated != strings.TrimSpace(text) {
				fmt.Fprintf(out, "Truncated:  %d words, %.1fs\n", fitted.WordCount, fitted.Seconds)
				fmt.Fprintf(out, "Text:       %s\n", truncated)
			}
			fmt.Fprintf(out, "Speed:      %.2fx\n", fitting.SpeedAdjustment(fitted.Seconds, seconds))
			return nil
		},
	}

	cmd.Flags().Float64Var(&seconds, "seconds", 0, "Target duration in seconds")
	return cmd
}
