package reeljob

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	redisKeyPrefix   = "reel_job:"
	redisUserPrefix  = redisKeyPrefix + reservedIDPrefix
	redisScanBatch   = 100
	redisDialTimeout = 10 * time.Second
	redisMaxRetries  = 3
)

// RedisStore keeps each job as one JSON value under reel_job:<id>. Updates are
// read-modify-write without WATCH, so two writers on one job race and the last
// write wins. Distinct jobs never interfere.
type RedisStore struct {
	client redis.UniversalClient
	opts   options
}

var _ Store = (*RedisStore)(nil)

// OpenRedis connects to rawURL (redis:// or rediss://) and verifies it with PING.
func OpenRedis(ctx context.Context, rawURL string, opts ...Option) (*RedisStore, error) {
	parsed, err := redis.ParseURL(strings.TrimSpace(rawURL))
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	parsed.DialTimeout = redisDialTimeout
	parsed.MaxRetries = redisMaxRetries

	client := redis.NewClient(parsed)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	return NewRedisStore(client, opts...), nil
}

// NewRedisStore wraps an existing client.
func NewRedisStore(client redis.UniversalClient, opts ...Option) *RedisStore {
	return &RedisStore{client: client, opts: buildOptions(opts)}
}

// Close closes the underlying client.
func (s *RedisStore) Close() error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Close()
}

func jobKey(id string) string { return redisKeyPrefix + id }

func userKey(userID string) string { return redisUserPrefix + userID }

func (s *RedisStore) Create(ctx context.Context, input Input) (*Job, error) {
	job, err := newJob(input, s.opts.durations, s.opts.timestamp())
	if err != nil {
		return nil, err
	}
	payload, err := json.Marshal(job)
	if err != nil {
		return nil, fmt.Errorf("encode job: %w", err)
	}
	created, err := s.client.SetNX(ctx, jobKey(job.ID), payload, 0).Result()
	if err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}
	if !created {
		return nil, fmt.Errorf("%w: %s", ErrJobExists, job.ID)
	}
	if job.UserID != "" {
		if err := s.client.Set(ctx, userKey(job.UserID), job.ID, 0).Err(); err != nil {
			return nil, fmt.Errorf("index job by user: %w", err)
		}
	}
	return job, nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (*Job, error) {
	data, err := s.client.Get(ctx, jobKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	return decodeJob(id, data)
}

func (s *RedisStore) UpdateStatus(ctx context.Context, id string, status Status, step string) (*Job, error) {
	return readModifyWrite(ctx, s.Get, s.put, id, func(job *Job) {
		applyStatus(job, status, step, s.opts.timestamp())
	})
}

func (s *RedisStore) Update(ctx context.Context, id string, patch Patch) (*Job, error) {
	return readModifyWrite(ctx, s.Get, s.put, id, func(job *Job) {
		applyPatch(job, patch, s.opts.timestamp())
	})
}

func (s *RedisStore) Fail(ctx context.Context, id string, message string) (*Job, error) {
	return readModifyWrite(ctx, s.Get, s.put, id, func(job *Job) {
		applyFailure(job, message, s.opts.timestamp())
	})
}

func (s *RedisStore) List(ctx context.Context) ([]*Job, error) {
	keys, err := s.jobKeys(ctx)
	if err != nil {
		return nil, err
	}
	jobs := make([]*Job, 0, len(keys))
	for _, key := range keys {
		id := strings.TrimPrefix(key, redisKeyPrefix)
		job, err := s.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		// Deleted between SCAN and GET.
		if job == nil {
			continue
		}
		jobs = append(jobs, job)
	}
	sortByCreation(jobs)
	return jobs, nil
}

func (s *RedisStore) ListByStatus(ctx context.Context, status Status) ([]*Job, error) {
	jobs, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return filterByStatus(jobs, status), nil
}

func (s *RedisStore) LastForUser(ctx context.Context, userID string) (*Job, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, nil
	}
	id, err := s.client.Get(ctx, userKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get last job for user: %w", err)
	}
	return s.Get(ctx, id)
}

// Clear deletes every reel_job:* key, user pointers included, and reports how
// many jobs were removed.
func (s *RedisStore) Clear(ctx context.Context) (int64, error) {
	var (
		cursor  uint64
		removed int64
	)
	for {
		keys, next, err := s.client.Scan(ctx, cursor, redisKeyPrefix+"*", redisScanBatch).Result()
		if err != nil {
			return removed, fmt.Errorf("scan jobs: %w", err)
		}
		if len(keys) > 0 {
			if err := s.client.Del(ctx, keys...).Err(); err != nil {
				return removed, fmt.Errorf("delete jobs: %w", err)
			}
			for _, key := range keys {
				if !strings.HasPrefix(key, redisUserPrefix) {
					removed++
				}
			}
		}
		cursor = next
		if cursor == 0 {
			return removed, nil
		}
	}
}

func (s *RedisStore) put(ctx context.Context, job *Job) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("encode job: %w", err)
	}
	if err := s.client.Set(ctx, jobKey(job.ID), payload, 0).Err(); err != nil {
		return fmt.Errorf("write job: %w", err)
	}
	return nil
}

func (s *RedisStore) jobKeys(ctx context.Context) ([]string, error) {
	var (
		cursor uint64
		out    []string
	)
	seen := make(map[string]struct{})
	for {
		keys, next, err := s.client.Scan(ctx, cursor, redisKeyPrefix+"*", redisScanBatch).Result()
		if err != nil {
			return nil, fmt.Errorf("scan jobs: %w", err)
		}
		for _, key := range keys {
			if strings.HasPrefix(key, redisUserPrefix) {
				continue
			}
			// SCAN may return a key more than once.
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, key)
		}
		cursor = next
		if cursor == 0 {
			return out, nil
		}
	}
}

func decodeJob(id string, data []byte) (*Job, error) {
	var job Job
	if err := json.Unmarshal(data, &job); err != nil {
		return nil, fmt.Errorf("decode job %s: %w", id, err)
	}
	if job.ID == "" {
		job.ID = id
	}
	return &job, nil
}
