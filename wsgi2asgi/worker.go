package wsgi2asgi

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/loopbridge/loopbridge/bridgeerr"
	"github.com/loopbridge/loopbridge/internal/diag"
	"github.com/loopbridge/loopbridge/stream"
	"github.com/loopbridge/loopbridge/wsgiapp"
)

// noopWriter is the legacy WSGI "write" callable returned by
// startResponse. The iterator-based path is the only one this module
// supports; Write is a documented no-op.
type noopWriter struct{}

func (noopWriter) Write(p []byte) (int, error) { return len(p), nil }

// runWorker calls the wrapped WSGI application on its own bounded-pool
// goroutine and pumps its response into resp. It always releases its
// semaphore slot, signals wg, and closes resp exactly once, however the
// application terminates.
func (a *Adapter) runWorker(environ wsgiapp.Environ, resp *stream.SyncToAsyncStream[respArtifact], requestID string, done chan struct{}) {
	defer close(done)
	defer a.wg.Done()
	defer func() { <-a.sem }()
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("panic: %v", r)
			resp.CloseWithError(bridgeerr.NewAppError("wsgi", err))
		}
	}()

	var (
		startCalled bool
		bodyEmitted bool
	)

	// callErr models WSGI's exc_info argument. Once body bytes have been
	// emitted it must be re-raised (the response is already committed);
	// before that it's a diagnostic hint accompanying a (possibly
	// replacement) start that's still safe to queue normally, mirroring
	// the teacher's deferred-flush handling of "replace the pending
	// response start" in spirit.
	startResponse := func(status string, headers []wsgiapp.Header, callErr error) io.Writer {
		if callErr != nil {
			if bodyEmitted {
				panic(callErr)
			}
			a.log.Error(requestID, diag.KindAppError, callErr)
		} else if startCalled {
			panic(bridgeerr.ErrProtocolViolation)
		}
		code, perr := parseStatus(status)
		if perr != nil {
			panic(perr)
		}
		startCalled = true
		if err := resp.Put(respArtifact{start: &startArtifact{code: code, headers: headers}}); err != nil {
			panic(err)
		}
		return noopWriter{}
	}

	it := a.app(environ, startResponse)
	defer it.Close()

	if !startCalled {
		resp.CloseWithError(bridgeerr.ErrProtocolViolation)
		return
	}

	for {
		chunk, ok, err := it.Next()
		if err != nil {
			resp.CloseWithError(bridgeerr.NewAppError("wsgi", err))
			return
		}
		if !ok {
			break
		}
		if len(chunk) == 0 {
			continue
		}
		bodyEmitted = true
		if err := resp.Put(respArtifact{body: chunk}); err != nil {
			return
		}
	}
	if err := resp.Put(respArtifact{last: true}); err != nil {
		return
	}
	resp.Close()
}

func parseStatus(status string) (int, error) {
	status = strings.TrimSpace(status)
	idx := strings.IndexByte(status, ' ')
	if idx < 0 {
		idx = len(status)
	}
	code, err := strconv.Atoi(status[:idx])
	if err != nil {
		return 0, fmt.Errorf("wsgi2asgi: invalid status line %q: %w", status, err)
	}
	return code, nil
}
