// Package wsgi2asgi presents a WSGI application as an ASGI application:
// WSGIToASGI in the design documents, ServeASGI on the Go Adapter.
//
// The worker pool that runs the wrapped WSGI application is a bounded
// semaphore plus sync.WaitGroup, grounded on the teacher's
// goroutine-per-connection pattern (hemi/web_server_httpx.go: go
// c.receive() spawned per accepted connection, bounded upstream by the
// listener's own accept-rate), adapted here from "one goroutine per
// connection" to "one bounded-pool goroutine per request body".
package wsgi2asgi

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"code.hybscloud.com/atomix"

	"github.com/loopbridge/loopbridge/asgiapp"
	"github.com/loopbridge/loopbridge/body"
	"github.com/loopbridge/loopbridge/bridgeerr"
	"github.com/loopbridge/loopbridge/internal/diag"
	"github.com/loopbridge/loopbridge/stream"
	"github.com/loopbridge/loopbridge/wire"
	"github.com/loopbridge/loopbridge/wsgiapp"
)

// Adapter wraps a wsgiapp.App so it can be called as an asgiapp.App via
// ServeASGI. The zero value is not usable; construct with New.
type Adapter struct {
	app wsgiapp.App
	cfg config

	sem chan struct{}
	wg  sync.WaitGroup
	log *diag.Logger
}

// New wraps app, ready to serve ASGI http scopes via ServeASGI.
func New(app wsgiapp.App, opts ...Option) *Adapter {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Adapter{
		app: app,
		cfg: cfg,
		sem: make(chan struct{}, cfg.workers),
		log: diag.New("wsgi2asgi"),
	}
}

var requestCounter atomix.Uint32

func nextRequestID() string {
	return fmt.Sprintf("w2a-%d", requestCounter.Add(1))
}

// ServeASGI implements asgiapp.App. It blocks for the lifetime of the
// request: until the WSGI application's response has been fully
// delivered to send, an error occurs, or ctx is cancelled.
func (a *Adapter) ServeASGI(ctx context.Context, scope *asgiapp.Scope, receive asgiapp.Receive, send asgiapp.Send) error {
	if scope.Type == asgiapp.ScopeLifespan {
		return serveLifespan(ctx, receive, send)
	}
	if scope.Type != asgiapp.ScopeHTTP {
		return bridgeerr.ErrUnsupportedScope
	}

	requestID := nextRequestID()

	environ, err := wire.ScopeToEnviron(scope)
	if err != nil {
		return a.wrap(err)
	}

	req := stream.NewAsyncToSyncStream[[]byte](a.cfg.sendQueueSize)
	resp := stream.NewSyncToAsyncStream[respArtifact](a.cfg.sendQueueSize)

	environ[wsgiapp.KeyInput] = body.New(req)
	environ[wsgiapp.KeyErrors] = &errSink{log: a.log, requestID: requestID}
	environ[wsgiapp.KeyASGIScope] = scope

	select {
	case a.sem <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}

	workerDone := make(chan struct{})
	a.wg.Add(1)
	go a.runWorker(environ, resp, requestID, workerDone)

	reqErrCh := make(chan error, 1)
	go func() { reqErrCh <- pumpRequest(ctx, receive, req) }()

	respErr := pumpResponse(ctx, resp, send)
	reqErr := <-reqErrCh

	select {
	case <-workerDone:
	case <-ctx.Done():
	}

	if respErr != nil {
		a.log.Error(requestID, diag.KindAppError, respErr)
		return a.wrap(respErr)
	}
	if errors.Is(reqErr, bridgeerr.ErrDisconnected) {
		a.log.Disconnect(requestID)
		return bridgeerr.ErrDisconnected
	}
	if reqErr != nil {
		a.log.Error(requestID, diag.KindAppError, reqErr)
		return a.wrap(reqErr)
	}
	return nil
}

func (a *Adapter) wrap(err error) error {
	return fmt.Errorf("wsgi2asgi: %w", err)
}

// Close waits for every in-flight WSGI invocation to finish. It does not
// stop accepting new requests; callers should stop calling ServeASGI
// before calling Close.
func (a *Adapter) Close() error {
	a.wg.Wait()
	return nil
}

type errSink struct {
	log       *diag.Logger
	requestID string
}

func (e *errSink) Write(p []byte) (int, error) {
	e.log.Error(e.requestID, diag.KindAppError, errors.New(string(p)))
	return len(p), nil
}
