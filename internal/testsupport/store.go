package testsupport

import (
	"context"
	"testing"

	"reelforge/internal/config"
	"reelforge/internal/reeljob"
)

// MustOpenStore opens the configured job store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config, opts ...reeljob.Option) reeljob.Store {
	t.Helper()

	store, err := reeljob.Open(context.Background(), cfg, opts...)
	if err != nil {
		t.Fatalf("reeljob.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// NewJob creates a job for tests using the provided store.
func NewJob(t testing.TB, store reeljob.Store, input reeljob.Input) *reeljob.Job {
	t.Helper()

	job, err := store.Create(context.Background(), input)
	if err != nil {
		t.Fatalf("store.Create: %v", err)
	}
	return job
}
