package stream

import (
	"sync"

	"code.hybscloud.com/atomix"
)

// closeState tracks the closed/error condition shared by both stream
// directions. closed and delivered are atomix flags so a consumer can
// check "are we closed" without taking errMu on the hot path; errMu only
// guards the (rarely set) attached error value itself.
type closeState struct {
	closed    atomix.Uint32 // 0 = open, 1 = closed
	delivered atomix.Uint32 // 0 = attached error not yet handed to a reader, 1 = already handed out

	errMu sync.Mutex
	err   error
}

func (s *closeState) isClosed() bool {
	return s.closed.Load() != 0
}

// close marks the stream closed, optionally attaching err. Idempotent: a
// second call (with or without an error) has no further effect, matching
// the "idempotent close" testable property.
func (s *closeState) close(err error) {
	if !s.closed.CompareAndSwap(0, 1) {
		return
	}
	if err != nil {
		s.errMu.Lock()
		s.err = err
		s.errMu.Unlock()
	}
}

// takeError returns the attached error exactly once; every call after the
// first (from any goroutine) returns nil, so the caller falls back to EOF.
func (s *closeState) takeError() error {
	if !s.delivered.CompareAndSwap(0, 1) {
		return nil
	}
	s.errMu.Lock()
	defer s.errMu.Unlock()
	return s.err
}
