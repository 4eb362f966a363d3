package assets

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"reelforge/internal/logging"
	"reelforge/internal/notifications"
	"reelforge/internal/reeljob"
	"reelforge/internal/services"
)

// Run prepares a job and records the outcome. A failure marks the job
// failed with a readable message; success marks it completed. Either way a
// notification is published when a notifier is configured.
func (s *Service) Run(ctx context.Context, opts PrepareOptions) (Result, error) {
	ctx = services.WithJobID(ctx, opts.JobID)
	logger := logging.WithContext(ctx, s.logger)
	result, err := s.Prepare(ctx, opts)
	// Bookkeeping still runs when the caller cancelled the pipeline.
	finalCtx := context.WithoutCancel(ctx)
	if err != nil {
		details := services.Details(err)
		logging.ErrorWithContext(logger, "asset pipeline failed", "job_failed",
			logging.String("error_kind", details.Kind),
			logging.Error(err),
		)
		if opts.JobID != "" {
			if _, failErr := s.store.Fail(finalCtx, opts.JobID, details.Message); failErr != nil {
				logging.WarnWithContext(logger, "failed to record job failure", "job_fail_persist_failed",
					logging.Error(failErr),
					logging.String(logging.FieldImpact, "job stays in its last processing status"),
				)
			}
		}
		s.notify(finalCtx, notifications.EventJobFailed, notifications.Payload{
			"jobID": opts.JobID,
			"error": details.Message,
		})
		return result, err
	}

	if _, err := s.store.UpdateStatus(finalCtx, opts.JobID, reeljob.StatusCompleted, stepCompleted); err != nil {
		return result, fmt.Errorf("mark job completed: %w", err)
	}
	logger.Info("job completed",
		logging.String(logging.FieldEventType, "job_completed"),
		logging.Float64("voiceover_seconds", result.VoiceoverDurationSeconds),
		logging.Int("segments", len(result.Segments)),
	)
	s.notify(finalCtx, notifications.EventJobCompleted, notifications.Payload{
		"jobID":           opts.JobID,
		"durationSeconds": result.VoiceoverDurationSeconds,
		"segments":        len(result.Segments),
	})
	return result, nil
}

func (s *Service) notify(ctx context.Context, event notifications.Event, payload notifications.Payload) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Publish(ctx, event, payload); err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, s.logger), "notification failed", "notification_failed",
			logging.String("event", string(event)),
			logging.Error(err),
			logging.String(logging.FieldImpact, "subscribers were not told about this job"),
		)
	}
}

// Outcome is the result of one job in a RunAll batch.
type Outcome struct {
	JobID  string
	Result Result
	Err    error
}

// RunAll runs independent jobs with at most limit in flight. One job
// failing does not cancel the others; the returned error joins every
// failure. Outcomes are in input order.
func RunAll(ctx context.Context, svc *Service, jobs []PrepareOptions, limit int) ([]Outcome, error) {
	outcomes := make([]Outcome, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, opts := range jobs {
		g.Go(func() error {
			result, err := svc.Run(gctx, opts)
			outcomes[i] = Outcome{JobID: opts.JobID, Result: result, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	var errs []error
	for _, outcome := range outcomes {
		if outcome.Err != nil {
			errs = append(errs, fmt.Errorf("job %s: %w", outcome.JobID, outcome.Err))
		}
	}
	return outcomes, errors.Join(errs...)
}
