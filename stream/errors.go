package stream

import "errors"

// ErrClosed is returned by Put/APut when the stream has already been
// closed, whether or not an error was attached on close.
var ErrClosed = errors.New("stream: closed")

// ErrTimeout is returned by Get when a positive timeout expires before an
// item becomes available.
var ErrTimeout = errors.New("stream: get timed out")
