// Package diag is a thin structured-logging wrapper around
// github.com/rs/zerolog, used by wsgi2asgi and asgi2wsgi on their
// error/disconnect paths so operators see one event per true failure
// rather than one log line per layer the error is wrapped through.
//
// This sits alongside, not in place of, a server's own process lifecycle
// logging: that logging describes process/server startup and shutdown,
// this describes per-request adapter failures.
package diag

import (
	"os"

	"github.com/rs/zerolog"
)

// Logger wraps a zerolog.Logger scoped to one adapter instance.
type Logger struct {
	z zerolog.Logger
}

// New builds a Logger tagged with component ("wsgi2asgi" or
// "asgi2wsgi").
func New(component string) *Logger {
	z := zerolog.New(os.Stderr).With().
		Timestamp().
		Str("component", component).
		Logger()
	return &Logger{z: z}
}

// Kind enumerates the error kinds internal/diag tags events with,
// mirroring the bridgeerr taxonomy (see bridgeerr package).
type Kind string

const (
	KindAppError    Kind = "app_error"
	KindProtocol    Kind = "protocol_violation"
	KindDisconnect  Kind = "disconnect"
	KindWaitTimeout Kind = "wait_timeout"
)

// Error logs one structured failure event for requestID on every call; it
// does no deduplication. Callers must not call Error more than once per
// (requestID, error) — that's the "one line per true failure" contract
// internal/diag exists to uphold.
func (l *Logger) Error(requestID string, kind Kind, err error) {
	l.z.Error().
		Str("request_id", requestID).
		Str("kind", string(kind)).
		Err(err).
		Msg("adapter error")
}

// Disconnect logs a peer disconnect at info level; disconnects are
// expected traffic, not failures, unless they interrupt an in-flight
// response (callers decide which to call).
func (l *Logger) Disconnect(requestID string) {
	l.z.Info().
		Str("request_id", requestID).
		Msg("peer disconnected")
}
