// Package asgi2wsgi presents an ASGI application as a WSGI application:
// ASGIToWSGI in the design documents, ServeWSGI on the Go Adapter.
//
// Task launches go through a loopmgr.Loop — either one the caller
// supplies via WithLoop, or one this Adapter lazily starts and owns for
// its own lifetime, grounded on the teacher's single dedicated
// supervisor goroutine pattern (see loopmgr's doc comment).
package asgi2wsgi

import (
	"context"
	"fmt"
	"io"

	"code.hybscloud.com/atomix"

	"github.com/loopbridge/loopbridge/asgiapp"
	"github.com/loopbridge/loopbridge/bridgeerr"
	"github.com/loopbridge/loopbridge/internal/diag"
	"github.com/loopbridge/loopbridge/loopmgr"
	"github.com/loopbridge/loopbridge/stream"
	"github.com/loopbridge/loopbridge/wire"
	"github.com/loopbridge/loopbridge/wsgiapp"
)

// requestChunkSize is how much of wsgi.input the feeder goroutine reads
// at a time before pushing it into the request stream.
const requestChunkSize = 16 * 1024

// Adapter wraps an asgiapp.App so it can be called as a wsgiapp.App via
// ServeWSGI. The zero value is not usable; construct with New.
type Adapter struct {
	app asgiapp.App
	cfg config
	log *diag.Logger

	lazyLoop loopmgr.LazyLoop
}

// New wraps app, ready to serve WSGI requests via ServeWSGI.
func New(app asgiapp.App, opts ...Option) *Adapter {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Adapter{app: app, cfg: cfg, log: diag.New("asgi2wsgi")}
}

var requestCounter atomix.Uint32

func nextRequestID() string {
	return fmt.Sprintf("a2w-%d", requestCounter.Add(1))
}

func (a *Adapter) loop() *loopmgr.Loop {
	if a.cfg.loop != nil {
		return a.cfg.loop
	}
	return a.lazyLoop.Get(a.cfg.sendQueueSize)
}

// ServeWSGI implements wsgiapp.App.
func (a *Adapter) ServeWSGI(environ wsgiapp.Environ, startResponse wsgiapp.StartResponse) wsgiapp.BodyIterator {
	requestID := nextRequestID()

	scope, err := wire.EnvironToScope(environ)
	if err != nil {
		a.log.Error(requestID, diag.KindProtocol, err)
		startResponse("500 Internal Server Error", nil, err)
		return wsgiapp.NewSliceBodyIterator()
	}

	req := stream.NewSyncToAsyncStream[[]byte](a.cfg.sendQueueSize)
	resp := stream.NewAsyncToSyncStream[asgiapp.Message](a.cfg.sendQueueSize)

	go feedRequestBody(environ, req)

	taskCtx, cancel := context.WithCancel(context.Background())
	taskDone := make(chan error, 1)

	receive := func(ctx context.Context) (asgiapp.Message, error) {
		chunk, ok, err := req.AGet(ctx)
		if err != nil {
			return asgiapp.Message{}, err
		}
		if !ok {
			return asgiapp.Message{Type: asgiapp.TypeHTTPRequest, MoreBody: false}, nil
		}
		return asgiapp.Message{Type: asgiapp.TypeHTTPRequest, Body: chunk, MoreBody: true}, nil
	}
	send := func(ctx context.Context, msg asgiapp.Message) error {
		return resp.APut(ctx, msg)
	}

	a.loop().Submit(taskCtx, func(ctx context.Context) {
		err := a.app(ctx, scope, receive, send)
		if err != nil {
			resp.ACloseWithError(bridgeerr.NewAppError("asgi", err))
			a.log.Error(requestID, diag.KindAppError, err)
		} else {
			resp.ACloseWithError(nil)
		}
		select {
		case taskDone <- err:
		default:
		}
	})

	return &respIterator{
		resp:          resp,
		startResponse: startResponse,
		waitTime:      a.cfg.waitTime,
		cancel:        cancel,
		taskDone:      taskDone,
		log:           a.log,
		requestID:     requestID,
	}
}

// Close shuts down the Adapter's own lazily-started Loop, if it was ever
// started. If WithLoop was used, Close is a no-op: the caller owns that
// Loop's lifecycle.
func (a *Adapter) Close() error {
	if a.cfg.loop == nil {
		a.lazyLoop.Close()
	}
	return nil
}

// feedRequestBody reads environ's wsgi.input in fixed-size chunks and
// pushes each into req in order, closing req at EOF or on a read error.
// Runs on its own goroutine so the blocking io.Reader underneath
// wsgi.input never stalls the ASGI task side.
func feedRequestBody(environ wsgiapp.Environ, req *stream.SyncToAsyncStream[[]byte]) {
	defer req.Close()
	in, _ := environ[wsgiapp.KeyInput].(io.Reader)
	if in == nil {
		return
	}
	buf := make([]byte, requestChunkSize)
	for {
		n, err := in.Read(buf)
		if n > 0 {
			chunk := append([]byte(nil), buf[:n]...)
			if putErr := req.Put(chunk); putErr != nil {
				return
			}
		}
		if err != nil {
			return
		}
	}
}
