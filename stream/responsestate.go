package stream

import "github.com/loopbridge/loopbridge/bridgeerr"

// ResponseState tracks the Pending -> Started -> Closed lifecycle of a
// single request's response, shared by wsgi2asgi and asgi2wsgi so the
// state machine isn't duplicated per adapter direction.
type ResponseState int

const (
	ResponsePending ResponseState = iota
	ResponseStarted
	ResponseClosed
)

func (s ResponseState) String() string {
	switch s {
	case ResponsePending:
		return "pending"
	case ResponseStarted:
		return "started"
	case ResponseClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Transition validates and applies next, returning
// bridgeerr.ErrProtocolViolation for any move that isn't
// Pending->Started->Closed (Pending->Closed is also legal: an app that
// closes the response without ever sending a body). Closed->Closed is
// the only idempotent repeat allowed, for a final artifact that arrives
// after the terminal one; a repeated Started (a duplicate response
// start) is a protocol violation, not a no-op.
func (s *ResponseState) Transition(next ResponseState) error {
	switch {
	case *s == ResponsePending && (next == ResponseStarted || next == ResponseClosed):
		*s = next
		return nil
	case *s == ResponseStarted && next == ResponseClosed:
		*s = next
		return nil
	case *s == ResponseClosed && next == ResponseClosed:
		return nil
	default:
		return bridgeerr.ErrProtocolViolation
	}
}
