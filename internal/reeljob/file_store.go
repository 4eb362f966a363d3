package reeljob

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gofrs/flock"

	"reelforge/internal/fileutil"
)

// FileStore keeps jobs in memory and mirrors them to a JSON file after every
// mutation. It is safe for concurrent use within one process; the lock file
// keeps other processes out.
type FileStore struct {
	mu   sync.Mutex
	path string
	lock *flock.Flock
	jobs map[string]*Job
	opts options
}

var _ Store = (*FileStore)(nil)

// OpenFile loads path (when present) and takes the single-process lock.
func OpenFile(path string, opts ...Option) (*FileStore, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("reeljob: file path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create job store directory: %w", err)
	}

	lock := flock.New(path + ".lock")
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire job store lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("job store %s is in use by another process", path)
	}

	jobs, err := readJobsFile(path)
	if err != nil {
		_ = lock.Unlock()
		return nil, err
	}

	return &FileStore{
		path: path,
		lock: lock,
		jobs: jobs,
		opts: buildOptions(opts),
	}, nil
}

// Path returns the backing file location.
func (s *FileStore) Path() string {
	return s.path
}

// Close releases the process lock.
func (s *FileStore) Close() error {
	if s == nil || s.lock == nil {
		return nil
	}
	return s.lock.Unlock()
}

func (s *FileStore) Create(_ context.Context, input Input) (*Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, err := newJob(input, s.opts.durations, s.opts.timestamp())
	if err != nil {
		return nil, err
	}
	if _, exists := s.jobs[job.ID]; exists {
		return nil, fmt.Errorf("%w: %s", ErrJobExists, job.ID)
	}
	s.jobs[job.ID] = job
	if err := s.persistLocked(); err != nil {
		delete(s.jobs, job.ID)
		return nil, err
	}
	return job.Clone(), nil
}

func (s *FileStore) Get(_ context.Context, id string) (*Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id].Clone(), nil
}

func (s *FileStore) UpdateStatus(_ context.Context, id string, status Status, step string) (*Job, error) {
	return s.mutate(id, func(job *Job) {
		applyStatus(job, status, step, s.opts.timestamp())
	})
}

func (s *FileStore) Update(_ context.Context, id string, patch Patch) (*Job, error) {
	return s.mutate(id, func(job *Job) {
		applyPatch(job, patch, s.opts.timestamp())
	})
}

func (s *FileStore) Fail(_ context.Context, id string, message string) (*Job, error) {
	return s.mutate(id, func(job *Job) {
		applyFailure(job, message, s.opts.timestamp())
	})
}

func (s *FileStore) List(_ context.Context) ([]*Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked(), nil
}

func (s *FileStore) ListByStatus(ctx context.Context, status Status) ([]*Job, error) {
	jobs, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return filterByStatus(jobs, status), nil
}

// LastForUser scans the map; the file backend keeps no pointer index.
func (s *FileStore) LastForUser(_ context.Context, userID string) (*Job, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return newestForUser(s.snapshotLocked(), userID), nil
}

func (s *FileStore) Clear(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	previous := s.jobs
	s.jobs = make(map[string]*Job)
	if err := s.persistLocked(); err != nil {
		s.jobs = previous
		return 0, err
	}
	return int64(len(previous)), nil
}

func (s *FileStore) mutate(id string, change func(*Job)) (*Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.jobs[id]
	if !ok {
		return nil, nil
	}
	next := current.Clone()
	change(next)
	s.jobs[id] = next
	if err := s.persistLocked(); err != nil {
		s.jobs[id] = current
		return nil, err
	}
	return next.Clone(), nil
}

func (s *FileStore) snapshotLocked() []*Job {
	jobs := make([]*Job, 0, len(s.jobs))
	for _, job := range s.jobs {
		jobs = append(jobs, job.Clone())
	}
	sortByCreation(jobs)
	return jobs
}

func (s *FileStore) persistLocked() error {
	data, err := json.MarshalIndent(s.jobs, "", "  ")
	if err != nil {
		return fmt.Errorf("encode jobs: %w", err)
	}
	if err := fileutil.WriteFileAtomic(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write jobs file: %w", err)
	}
	return nil
}

// readJobsFile parses the jobs file. A missing or empty file is an empty store;
// malformed content is an error so a bad file is never silently overwritten.
func readJobsFile(path string) (map[string]*Job, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return make(map[string]*Job), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read jobs file: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return make(map[string]*Job), nil
	}

	var raw map[string]*Job
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse jobs file %s: %w", path, err)
	}
	jobs := make(map[string]*Job, len(raw))
	for id, job := range raw {
		if job == nil {
			return nil, fmt.Errorf("parse jobs file %s: job %q is null", path, id)
		}
		if job.ID == "" {
			job.ID = id
		}
		jobs[id] = job
	}
	return jobs, nil
}
