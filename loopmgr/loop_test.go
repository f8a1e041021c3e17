package loopmgr

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestLoopRunsSubmittedTasks(t *testing.T) {
	l := New(4)
	defer l.Close()

	var wg sync.WaitGroup
	var mu sync.Mutex
	var seen []int

	for i := 0; i < 5; i++ {
		i := i
		wg.Add(1)
		l.Submit(context.Background(), func(ctx context.Context) {
			defer wg.Done()
			mu.Lock()
			seen = append(seen, i)
			mu.Unlock()
		})
	}

	done := make(chan struct{})
	go func() { wg.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("submitted tasks never ran")
	}
	if len(seen) != 5 {
		t.Fatalf("ran %d tasks, want 5", len(seen))
	}
}

func TestLoopCloseIsIdempotentAndDrains(t *testing.T) {
	l := New(1)
	ran := make(chan struct{}, 1)
	l.Submit(context.Background(), func(ctx context.Context) { ran <- struct{}{} })
	l.Close()
	l.Close()

	select {
	case <-ran:
	case <-time.After(time.Second):
		t.Fatal("queued task never ran before Close returned")
	}
}

func TestLazyLoopSharesASingleInstance(t *testing.T) {
	var o LazyLoop
	var wg sync.WaitGroup
	loops := make([]*Loop, 8)
	for i := range loops {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			loops[i] = o.Get(4)
		}()
	}
	wg.Wait()
	for i := 1; i < len(loops); i++ {
		if loops[i] != loops[0] {
			t.Fatalf("LazyLoop.Get returned distinct instances")
		}
	}
	o.Close()
}
