package reeljob

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"reelforge/internal/config"
)

// ErrJobExists is returned when Create is given an explicit ID already in use.
var ErrJobExists = errors.New("job already exists")

// Store is the durable record of reel jobs.
//
// Mutations on a missing job return (nil, nil). Every successful mutation is
// visible to the next Get. Concurrent mutation of the same job is not
// coordinated; callers keep a single writer per job.
type Store interface {
	Create(ctx context.Context, input Input) (*Job, error)
	Get(ctx context.Context, id string) (*Job, error)
	UpdateStatus(ctx context.Context, id string, status Status, step string) (*Job, error)
	Update(ctx context.Context, id string, patch Patch) (*Job, error)
	Fail(ctx context.Context, id string, message string) (*Job, error)
	List(ctx context.Context) ([]*Job, error)
	ListByStatus(ctx context.Context, status Status) ([]*Job, error)
	LastForUser(ctx context.Context, userID string) (*Job, error)
	Clear(ctx context.Context) (int64, error)
	Close() error
}

// Option customizes a store.
type Option func(*options)

type options struct {
	now       func() time.Time
	durations DurationRange
}

// WithClock overrides the timestamp source (useful for tests).
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithDurationRange clamps target durations of newly created jobs.
func WithDurationRange(minSeconds, maxSeconds float64) Option {
	return func(o *options) {
		o.durations = DurationRange{Min: minSeconds, Max: maxSeconds}
	}
}

func buildOptions(opts []Option) options {
	o := options{now: func() time.Time { return time.Now().UTC() }}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (o options) timestamp() time.Time {
	return o.now().UTC()
}

// Open constructs the backend selected by cfg.Store.Backend.
func Open(ctx context.Context, cfg *config.Config, opts ...Option) (Store, error) {
	if cfg == nil {
		return nil, errors.New("reeljob: config is required")
	}
	opts = append([]Option{WithDurationRange(cfg.Reel.MinSeconds, cfg.Reel.MaxSeconds)}, opts...)
	switch cfg.Store.Backend {
	case "file", "":
		return OpenFile(cfg.Store.FilePath, opts...)
	case "redis":
		return OpenRedis(ctx, cfg.Store.RedisURL, opts...)
	case "sqlite":
		return OpenSQLite(ctx, cfg.Store.SQLitePath, opts...)
	default:
		return nil, fmt.Errorf("reeljob: unknown store backend %q", cfg.Store.Backend)
	}
}

// filterByStatus keeps jobs whose status matches.
func filterByStatus(jobs []*Job, status Status) []*Job {
	out := make([]*Job, 0, len(jobs))
	for _, job := range jobs {
		if job.Status == status {
			out = append(out, job)
		}
	}
	return out
}

// sortByCreation orders jobs oldest first, breaking ties by ID.
func sortByCreation(jobs []*Job) {
	sort.SliceStable(jobs, func(i, j int) bool {
		if !jobs[i].CreatedAt.Equal(jobs[j].CreatedAt) {
			return jobs[i].CreatedAt.Before(jobs[j].CreatedAt)
		}
		return jobs[i].ID < jobs[j].ID
	})
}

// newestForUser returns the most recently created job owned by userID.
func newestForUser(jobs []*Job, userID string) *Job {
	var newest *Job
	for _, job := range jobs {
		if job.UserID != userID {
			continue
		}
		if newest == nil || job.CreatedAt.After(newest.CreatedAt) ||
			(job.CreatedAt.Equal(newest.CreatedAt) && job.ID > newest.ID) {
			newest = job
		}
	}
	return newest
}

type loadFunc func(ctx context.Context, id string) (*Job, error)

type saveFunc func(ctx context.Context, job *Job) error

// readModifyWrite loads a job, applies change, and writes the whole value back.
// It is not atomic across processes.
func readModifyWrite(ctx context.Context, load loadFunc, save saveFunc, id string, change func(*Job)) (*Job, error) {
	job, err := load(ctx, id)
	if err != nil || job == nil {
		return nil, err
	}
	change(job)
	if err := save(ctx, job); err != nil {
		return nil, err
	}
	return job, nil
}
