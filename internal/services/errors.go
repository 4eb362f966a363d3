package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrExternalService = errors.New("external service error")
	ErrValidation      = errors.New("validation error")
	ErrConfiguration   = errors.New("configuration error")
	ErrNotFound        = errors.New("not found")
	ErrTimeout         = errors.New("timeout")
	ErrTransient       = errors.New("transient failure")
)

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one of the
// exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// ErrorDetails summarises an error for persistence on a failed job.
type ErrorDetails struct {
	Kind    string
	Message string
}

// Details classifies err by marker. Unknown errors are reported as transient.
func Details(err error) ErrorDetails {
	if err == nil {
		return ErrorDetails{}
	}
	kind := "transient"
	switch {
	case errors.Is(err, ErrValidation):
		kind = "validation"
	case errors.Is(err, ErrConfiguration):
		kind = "configuration"
	case errors.Is(err, ErrNotFound):
		kind = "not_found"
	case errors.Is(err, ErrTimeout):
		kind = "timeout"
	case errors.Is(err, ErrExternalService):
		kind = "external_service"
	}
	return ErrorDetails{Kind: kind, Message: err.Error()}
}

// StatusCoder is implemented by vendor errors that carry an HTTP status.
type StatusCoder interface {
	StatusCode() int
}

// StatusCode returns the first HTTP status found in err's chain, or 0.
func StatusCode(err error) int {
	var coder StatusCoder
	if errors.As(err, &coder) {
		return coder.StatusCode()
	}
	return 0
}

// IsNotFound reports whether err means the remote resource does not exist.
// Vendors that only surface a message are matched on a "404" substring.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrNotFound) || StatusCode(err) == 404 {
		return true
	}
	return strings.Contains(err.Error(), "404")
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
