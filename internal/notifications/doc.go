// Package notifications delivers job events via ntfy.
//
// NewService returns a noop notifier when no topic is configured, so callers
// always publish unconditionally. Per-event toggles in the [notifications]
// config section silence individual events.
package notifications
