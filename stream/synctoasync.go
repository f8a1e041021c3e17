package stream

import (
	"context"

	"code.hybscloud.com/lfq"
)

// SyncToAsyncStream is a bounded FIFO from a blocking WSGI worker goroutine
// (the producer, calling Put) to a cooperatively suspended ASGI task
// goroutine (the consumer, calling AGet).
//
// The ring itself is a lock-free SPSC queue (code.hybscloud.com/lfq); gates
// turn its non-blocking ErrWouldBlock boundary into real suspension on both
// sides, mirroring the teacher's incomingChan/outgoingChan handoff between
// http2Conn.receive and http2Conn.serve (hemi/web_server_httpx.go) but with
// the lock-free ring doing the actual buffering instead of a Go channel.
type SyncToAsyncStream[T any] struct {
	ring lfq.SPSC[T]

	itemReady  *gate // signaled when the consumer may have something to dequeue
	spaceReady *gate // signaled when the producer may have a free slot

	closeState
}

// NewSyncToAsyncStream creates a stream with room for capacity items.
func NewSyncToAsyncStream[T any](capacity int) *SyncToAsyncStream[T] {
	if capacity < 1 {
		capacity = 1
	}
	s := &SyncToAsyncStream[T]{
		itemReady:  newGate(),
		spaceReady: newGate(),
	}
	s.ring.Init(capacity)
	return s
}

// Put blocks the calling (worker) goroutine until a slot is free or the
// stream is closed. Safe to call only from the single producer goroutine.
func (s *SyncToAsyncStream[T]) Put(item T) error {
	for {
		if s.isClosed() {
			return ErrClosed
		}
		if err := s.ring.Enqueue(&item); err == nil {
			s.itemReady.signal()
			return nil
		}
		// Ring is full: block until the consumer frees a slot or we're
		// closed. After waking, the loop re-checks the closed flag before
		// retrying the enqueue.
		if err := s.spaceReady.wait(context.Background()); err != nil {
			return err
		}
	}
}

// Close is idempotent and wakes any pending AGet with EOF.
func (s *SyncToAsyncStream[T]) Close() {
	s.CloseWithError(nil)
}

// CloseWithError is idempotent and, on the first call only, attaches err
// so the next AGet observes it exactly once before subsequent calls see
// plain EOF. Called from the producer (worker) side when the producer
// itself fails, mirroring AsyncToSyncStream.ACloseWithError's role on the
// opposite primitive.
func (s *SyncToAsyncStream[T]) CloseWithError(err error) {
	s.close(err)
	s.itemReady.signal()
	s.spaceReady.signal()
}

// AGet suspends the calling task goroutine until an item is available, the
// stream is closed (ok=false, err=nil), ctx is done (err=ctx.Err()), or an
// attached error is delivered (err!=nil, delivered exactly once).
func (s *SyncToAsyncStream[T]) AGet(ctx context.Context) (item T, ok bool, err error) {
	for {
		if v, derr := s.ring.Dequeue(); derr == nil {
			s.spaceReady.signal()
			return v, true, nil
		}
		if s.isClosed() {
			// Drain race: another Dequeue might still beat us to the last
			// item, so only report EOF/error once the ring is confirmed
			// empty on this attempt.
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
		if werr := s.itemReady.wait(ctx); werr != nil {
			var zero T
			return zero, false, werr
		}
	}
}
