package stream

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/loopbridge/loopbridge/bridgeerr"
)

func TestSyncToAsyncRoundTrip(t *testing.T) {
	s := NewSyncToAsyncStream[[]byte](4)
	go func() {
		for _, chunk := range [][]byte{[]byte("a"), []byte("b"), []byte("c")} {
			if err := s.Put(chunk); err != nil {
				t.Errorf("Put: %v", err)
			}
		}
		s.Close()
	}()

	ctx := context.Background()
	var got []byte
	for {
		chunk, ok, err := s.AGet(ctx)
		if err != nil {
			t.Fatalf("AGet: %v", err)
		}
		if !ok {
			break
		}
		got = append(got, chunk...)
	}
	if string(got) != "abc" {
		t.Fatalf("got %q, want %q", got, "abc")
	}
}

func TestSyncToAsyncCloseIsIdempotent(t *testing.T) {
	s := NewSyncToAsyncStream[int](1)
	s.Close()
	s.Close() // must not panic or deadlock

	_, ok, err := s.AGet(context.Background())
	if ok || err != nil {
		t.Fatalf("AGet after close = (%v, %v), want EOF", ok, err)
	}
}

func TestSyncToAsyncErrorDeliveredOnce(t *testing.T) {
	s := NewSyncToAsyncStream[int](1)
	boom := errors.New("boom")
	s.close(boom) // simulate an error attached by the owning adapter
	s.itemReady.signal()

	_, ok, err := s.AGet(context.Background())
	if ok || !errors.Is(err, boom) {
		t.Fatalf("first AGet = (%v, %v), want (false, boom)", ok, err)
	}
	_, ok, err = s.AGet(context.Background())
	if ok || err != nil {
		t.Fatalf("second AGet = (%v, %v), want EOF", ok, err)
	}
}

func TestSyncToAsyncBackpressure(t *testing.T) {
	s := NewSyncToAsyncStream[int](1)
	if err := s.Put(1); err != nil {
		t.Fatalf("Put(1): %v", err)
	}

	putDone := make(chan error, 1)
	go func() { putDone <- s.Put(2) }()

	select {
	case <-putDone:
		t.Fatal("second Put returned before the first item was drained")
	case <-time.After(20 * time.Millisecond):
	}

	if v, ok, err := s.AGet(context.Background()); err != nil || !ok || v != 1 {
		t.Fatalf("AGet = (%v, %v, %v), want (1, true, nil)", v, ok, err)
	}

	select {
	case err := <-putDone:
		if err != nil {
			t.Fatalf("second Put: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("second Put never unblocked after drain")
	}
}

func TestAsyncToSyncRoundTrip(t *testing.T) {
	s := NewAsyncToSyncStream[[]byte](4)
	go func() {
		ctx := context.Background()
		for _, chunk := range [][]byte{[]byte("x"), []byte("y")} {
			if err := s.APut(ctx, chunk); err != nil {
				t.Errorf("APut: %v", err)
			}
		}
		s.ACloseWithError(nil)
	}()

	var got []byte
	for {
		chunk, ok, err := s.Get(0)
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if !ok {
			break
		}
		got = append(got, chunk...)
	}
	if string(got) != "xy" {
		t.Fatalf("got %q, want %q", got, "xy")
	}
}

func TestAsyncToSyncGetTimeout(t *testing.T) {
	s := NewAsyncToSyncStream[int](1)
	_, ok, err := s.Get(10 * time.Millisecond)
	if ok || !errors.Is(err, ErrTimeout) {
		t.Fatalf("Get timeout = (%v, %v), want ErrTimeout", ok, err)
	}
}

func TestResponseStateHappyPath(t *testing.T) {
	var s ResponseState
	if err := s.Transition(ResponseStarted); err != nil {
		t.Fatalf("Pending->Started: %v", err)
	}
	if err := s.Transition(ResponseClosed); err != nil {
		t.Fatalf("Started->Closed: %v", err)
	}
	if err := s.Transition(ResponseClosed); err != nil {
		t.Fatalf("Closed->Closed should be idempotent, got %v", err)
	}
}

func TestResponseStateDirectPendingToClosed(t *testing.T) {
	var s ResponseState
	if err := s.Transition(ResponseClosed); err != nil {
		t.Fatalf("Pending->Closed (no body ever sent): %v", err)
	}
}

func TestResponseStateRejectsDuplicateStart(t *testing.T) {
	var s ResponseState
	if err := s.Transition(ResponseStarted); err != nil {
		t.Fatalf("Pending->Started: %v", err)
	}
	if err := s.Transition(ResponseStarted); !errors.Is(err, bridgeerr.ErrProtocolViolation) {
		t.Fatalf("duplicate Started = %v, want ErrProtocolViolation", err)
	}
}

func TestResponseStateRejectsTransitionAfterClosed(t *testing.T) {
	var s ResponseState
	if err := s.Transition(ResponseClosed); err != nil {
		t.Fatalf("Pending->Closed: %v", err)
	}
	if err := s.Transition(ResponseStarted); !errors.Is(err, bridgeerr.ErrProtocolViolation) {
		t.Fatalf("Closed->Started = %v, want ErrProtocolViolation", err)
	}
}

func TestAsyncToSyncAPutCancellation(t *testing.T) {
	s := NewAsyncToSyncStream[int](1)
	if err := s.APut(context.Background(), 1); err != nil {
		t.Fatalf("APut(1): %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := s.APut(ctx, 2); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("APut(2) with full ring = %v, want DeadlineExceeded", err)
	}
}
