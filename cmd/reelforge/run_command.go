package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"reelforge/internal/assets"
	"reelforge/internal/preflight"
	"reelforge/internal/reeljob"
	"reelforge/internal/script"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var userID string
	var parallel int

	cmd := &cobra.Command{
		Use:   "run SCRIPT...",
		Short: "Create jobs from reel scripts and prepare their assets",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if parallel < 1 {
				return fmt.Errorf("--parallel must be at least 1, got %d", parallel)
			}

			scripts := make([]*script.Script, 0, len(args))
			for _, path := range args {
				s, err := script.Load(path)
				if err != nil {
					return err
				}
				scripts = append(scripts, s)
			}

			if blocking := preflight.Blocking(preflight.RunAll(cmd.Context(), cfg)); len(blocking) > 0 {
				msgs := make([]string, 0, len(blocking))
				for _, r := range blocking {
					msgs = append(msgs, fmt.Sprintf("%s: %s", r.Name, r.Detail))
				}
				return fmt.Errorf("preflight failed (see `reelforge status`): %s", strings.Join(msgs, "; "))
			}

			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			return ctx.withStore(cmd.Context(), func(store reeljob.Store) error {
				svc, err := buildPipeline(cfg, store, logger)
				if err != nil {
					return err
				}

				jobs := make([]assets.PrepareOptions, 0, len(scripts))
				for _, s := range scripts {
					job, err := store.Create(cmd.Context(), s.Input(userID))
					if err != nil {
						err = fmt.Errorf("create job for %s: %w", s.Path, err)
						abandonJobs(cmd.Context(), store, jobs, err)
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "Created %s from %s\n", job.ID, s.Path)
					jobs = append(jobs, s.PrepareOptions(job.ID, job.TargetDurationSeconds))
				}

				outcomes, runErr := assets.RunAll(cmd.Context(), svc, jobs, parallel)
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"Job", "Result", "Voiceover", "Visuals", "Detail"},
					buildOutcomeRows(outcomes),
					[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignLeft},
				))
				if runErr != nil {
					failed := 0
					for _, o := range outcomes {
						if o.Err != nil {
							failed++
						}
					}
					return errors.New(pluralize(failed, "job failed", "jobs failed"))
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "User id recorded on created jobs (overrides the script)")
	cmd.Flags().IntVar(&parallel, "parallel", 1, "Maximum number of jobs prepared at once")
	return cmd
}

// abandonJobs fails jobs that were created but will never run.
func abandonJobs(ctx context.Context, store reeljob.Store, jobs []assets.PrepareOptions, cause error) {
	for _, job := range jobs {
		_, _ = store.Fail(ctx, job.JobID, "not started: "+cause.Error())
	}
}

func buildOutcomeRows(outcomes []assets.Outcome) [][]string {
	rows := make([][]string, 0, len(outcomes))
	for _, o := range outcomes {
		if o.Err != nil {
			rows = append(rows, []string{o.JobID, "Failed", "-", "-", truncate(o.Err.Error(), 60)})
			continue
		}
		rows = append(rows, []string{
			o.JobID,
			"Ready",
			fmt.Sprintf("%.1fs", o.Result.VoiceoverDurationSeconds),
			fmt.Sprintf("%d", len(o.Result.Segments)),
			o.Result.Resolution.Summary(),
		})
	}
	return rows
}

func pluralize(n int, singular, plural string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, singular)
	}
	return fmt.Sprintf("%d %s", n, plural)
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}
