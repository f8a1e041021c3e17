// Package loopmgr owns the background goroutine that launches and
// supervises ASGI task goroutines on behalf of asgi2wsgi.Adapter.
//
// The shape — one dedicated goroutine draining a buffered channel of
// pending work, fire-and-forget past that point — is grounded on the
// teacher's leader process supervising its single worker through a
// channel handoff (hemi/process/leader.go: keepWorker's msgChan) and on
// the per-connection receive loop in hemi/web_server_httpx.go
// (go c.receive()), scaled down from "one process per worker" /
// "one goroutine per connection" to "one goroutine per task launch".
package loopmgr

import (
	"context"
	"sync"
)

// launchRequest is one pending "run this task" instruction.
type launchRequest struct {
	ctx context.Context
	run func(context.Context)
}

// Loop is a single background goroutine that launches submitted tasks as
// their own goroutines. It exists to give asgi2wsgi a single supervised
// place from which ASGI task goroutines are spawned, whether or not the
// caller supplies their own Loop.
type Loop struct {
	requests chan launchRequest
	done     chan struct{}

	closeOnce sync.Once
}

// New starts a Loop's background goroutine immediately. Most callers
// don't need this directly — asgi2wsgi.Adapter lazily creates one of its
// own via LazyLoop unless WithLoop is used.
func New(queueSize int) *Loop {
	if queueSize < 1 {
		queueSize = 1
	}
	l := &Loop{
		requests: make(chan launchRequest, queueSize),
		done:     make(chan struct{}),
	}
	go l.serve()
	return l
}

func (l *Loop) serve() {
	for req := range l.requests {
		go req.run(req.ctx)
	}
	close(l.done)
}

// Submit enqueues run to be launched as its own goroutine by the Loop's
// background goroutine. Submit itself never blocks the caller beyond the
// queue filling up, matching the bounded-backpressure discipline the rest
// of the module follows.
func (l *Loop) Submit(ctx context.Context, run func(context.Context)) {
	l.requests <- launchRequest{ctx: ctx, run: run}
}

// Close stops accepting new submissions and waits for the background
// goroutine to drain what's already queued (already-launched tasks are
// not waited on; that's the caller's responsibility). Idempotent.
func (l *Loop) Close() {
	l.closeOnce.Do(func() {
		close(l.requests)
	})
	<-l.done
}

// LazyLoop lazily constructs and publishes a single owned Loop, shared by
// every request an adapter serves until the adapter is closed. The zero
// value is ready to use.
//
// sync.Once alone handles the whole "first caller wins" race: Do does not
// return in any goroutine until its function has completed, so every
// caller of Get observes a fully published o.loop the moment Do returns,
// first caller or not. What sync.Once can't express is "unless the
// caller injected their own Loop, in which case never construct one at
// all" — that decision is resolved one layer up, by asgi2wsgi checking
// its own configured Loop before ever touching LazyLoop. LazyLoop only
// has to handle the truly-owned path.
type LazyLoop struct {
	once sync.Once
	loop *Loop
}

// Get returns the shared Loop, starting it on the first call. queueSize
// is only used by the call that actually constructs the Loop.
func (o *LazyLoop) Get(queueSize int) *Loop {
	o.once.Do(func() {
		o.loop = New(queueSize)
	})
	return o.loop
}

// Close shuts down the owned Loop if one was ever started. Safe to call
// even if Get was never called.
func (o *LazyLoop) Close() {
	if o.loop != nil {
		o.loop.Close()
	}
}
