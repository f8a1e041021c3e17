package stream

import (
	"context"
	"time"

	"code.hybscloud.com/lfq"
)

// AsyncToSyncStream is a bounded FIFO from an ASGI task goroutine (the
// producer, calling APut) to a blocking WSGI worker goroutine (the
// consumer, calling Get). It is the mirror image of SyncToAsyncStream: the
// producer suspends on ctx, the consumer blocks with an optional wall-clock
// timeout instead of a context, since a worker goroutine performing a
// blocking WSGI call has no natural ctx to hand in.
type AsyncToSyncStream[T any] struct {
	ring lfq.SPSC[T]

	itemReady  *gate
	spaceReady *gate

	closeState
}

// NewAsyncToSyncStream creates a stream with room for capacity items.
func NewAsyncToSyncStream[T any](capacity int) *AsyncToSyncStream[T] {
	if capacity < 1 {
		capacity = 1
	}
	s := &AsyncToSyncStream[T]{
		itemReady:  newGate(),
		spaceReady: newGate(),
	}
	s.ring.Init(capacity)
	return s
}

// APut suspends the calling task goroutine until a slot is free, the
// stream is closed, or ctx is done.
func (s *AsyncToSyncStream[T]) APut(ctx context.Context, item T) error {
	for {
		if s.isClosed() {
			return ErrClosed
		}
		if err := s.ring.Enqueue(&item); err == nil {
			s.itemReady.signal()
			return nil
		}
		if err := s.spaceReady.wait(ctx); err != nil {
			return err
		}
	}
}

// ACloseWithError closes the stream from the task (producer) side,
// optionally attaching err. Idempotent; err is only recorded on the first
// call. Wakes a pending Get with EOF or the attached error.
func (s *AsyncToSyncStream[T]) ACloseWithError(err error) {
	s.close(err)
	s.itemReady.signal()
	s.spaceReady.signal()
}

// Get blocks the calling worker goroutine for up to timeout (or
// indefinitely when timeout<=0) waiting for an item. Returns ErrTimeout on
// expiry, EOF (ok=false, err=nil) once closed and drained, or the attached
// error exactly once.
func (s *AsyncToSyncStream[T]) Get(timeout time.Duration) (item T, ok bool, err error) {
	for {
		if v, derr := s.ring.Dequeue(); derr == nil {
			s.spaceReady.signal()
			return v, true, nil
		}
		if s.isClosed() {
			if v, derr := s.ring.Dequeue(); derr == nil {
				s.spaceReady.signal()
				return v, true, nil
			}
			if cerr := s.takeError(); cerr != nil {
				var zero T
				return zero, false, cerr
			}
			var zero T
			return zero, false, nil
		}
		if !s.itemReady.waitTimeout(timeout) {
			var zero T
			return zero, false, ErrTimeout
		}
	}
}
