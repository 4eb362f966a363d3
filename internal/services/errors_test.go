package services_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"reelforge/internal/services"
)

type statusErr struct{ code int }

func (e statusErr) Error() string   { return fmt.Sprintf("upstream returned %d", e.code) }
func (e statusErr) StatusCode() int { return e.code }

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrExternalService, "voiceover", "synthesize", "failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrExternalService) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"voiceover", "synthesize", "failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestDetailsKinds(t *testing.T) {
	tests := []struct {
		err  error
		kind string
	}{
		{services.Wrap(services.ErrValidation, "assets", "prepare", "bad", nil), "validation"},
		{services.Wrap(services.ErrNotFound, "assets", "load", "missing", nil), "not_found"},
		{services.Wrap(services.ErrExternalService, "images", "generate", "down", errors.New("io")), "external_service"},
		{errors.New("plain"), "transient"},
	}
	for _, tt := range tests {
		if got := services.Details(tt.err).Kind; got != tt.kind {
			t.Fatalf("Details(%v).Kind = %q, want %q", tt.err, got, tt.kind)
		}
	}
	if d := services.Details(nil); d.Kind != "" || d.Message != "" {
		t.Fatalf("expected empty details for nil, got %+v", d)
	}
}

func TestStatusCodeAndNotFound(t *testing.T) {
	wrapped := services.Wrap(services.ErrExternalService, "storage", "upload", "failed", statusErr{code: 404})
	if code := services.StatusCode(wrapped); code != 404 {
		t.Fatalf("expected status 404, got %d", code)
	}
	if !services.IsNotFound(wrapped) {
		t.Fatal("expected wrapped 404 to be not found")
	}
	if !services.IsNotFound(errors.New("Resource not found - 404")) {
		t.Fatal("expected message match on 404")
	}
	if services.IsNotFound(statusErr{code: 500}) {
		t.Fatal("500 must not be not found")
	}
	if services.IsNotFound(nil) {
		t.Fatal("nil must not be not found")
	}
}
