// Package bridgeerr collects the sentinel and wrapped error values the
// wsgi2asgi and asgi2wsgi adapters can return, in the teacher's style of
// plain package-level errors.New values (see hemi/web_proxy_fcgi.go's
// fcgiWriteBroken, fcgiReadBadRecord) rather than a custom error hierarchy.
package bridgeerr

import (
	"errors"
	"fmt"
)

var (
	// ErrProtocolViolation is returned when a peer (WSGI app or ASGI app)
	// does something the calling convention forbids: sends a message type
	// out of order, calls start_response twice, writes a body chunk before
	// start_response, or similar.
	ErrProtocolViolation = errors.New("bridge: protocol violation")

	// ErrDisconnected is returned from Receive/Get calls once the peer
	// connection has gone away before the application finished producing
	// a response.
	ErrDisconnected = errors.New("bridge: peer disconnected")

	// ErrWaitTimeout is the error asgi2wsgi logs (via internal/diag) when
	// its configured wait time elapses before the ASGI task finishes after
	// the BodyIterator is closed. It is logged, not returned: Close
	// cancels the task's context and returns nil.
	ErrWaitTimeout = errors.New("bridge: wait timeout")

	// ErrUnsupportedScope is returned for ASGI scope types the adapters
	// don't translate (anything but "http"; see asgiapp.ScopeType).
	ErrUnsupportedScope = errors.New("bridge: unsupported scope type")

	// ErrClosed is the bridge-level counterpart of stream.ErrClosed. The
	// adapters do not translate stream.ErrClosed into it, so
	// errors.Is(err, ErrClosed) does not match a stream's closed error.
	ErrClosed = errors.New("bridge: stream closed")
)

// AppError wraps a panic or returned error from a WSGI or ASGI application
// body, preserving which side produced it for diagnostics (see
// internal/diag). It unwraps to the original cause for errors.Is/As.
type AppError struct {
	Side  string // "wsgi" or "asgi"
	Cause error
}

func (e *AppError) Error() string {
	return fmt.Sprintf("bridge: %s application error: %v", e.Side, e.Cause)
}

func (e *AppError) Unwrap() error { return e.Cause }

// NewAppError wraps cause as having originated from the named side.
func NewAppError(side string, cause error) *AppError {
	return &AppError{Side: side, Cause: cause}
}
