package asgi2wsgi

import (
	"context"
	"fmt"
	"time"

	"github.com/loopbridge/loopbridge/asgiapp"
	"github.com/loopbridge/loopbridge/bridgeerr"
	"github.com/loopbridge/loopbridge/internal/diag"
	"github.com/loopbridge/loopbridge/statusline"
	"github.com/loopbridge/loopbridge/stream"
	"github.com/loopbridge/loopbridge/wsgiapp"
)

// respIterator is the wsgiapp.BodyIterator ServeWSGI returns. The first
// call to Next reads the task's http.response.start before any chunk is
// produced, translating it into a startResponse call — grounded on the
// deferred nature of the teacher's own response-start handling, here
// forced eager by WSGI's "start_response before first chunk" contract
// rather than deferred to the first chunk as wsgi2asgi does.
type respIterator struct {
	resp          *stream.AsyncToSyncStream[asgiapp.Message]
	startResponse wsgiapp.StartResponse
	waitTime      time.Duration
	cancel        context.CancelFunc
	taskDone      chan error
	log           *diag.Logger
	requestID     string

	state stream.ResponseState
	done  bool
}

func (it *respIterator) Next() ([]byte, bool, error) {
	if it.done {
		return nil, false, nil
	}
	for {
		msg, ok, err := it.resp.Get(0)
		if err != nil {
			it.done = true
			if it.state == stream.ResponsePending {
				it.startResponse("500 Internal Server Error", nil, err)
			}
			return nil, false, err
		}
		if !ok {
			it.done = true
			return nil, false, nil
		}
		switch msg.Type {
		case asgiapp.TypeHTTPResponseStart:
			if err := it.state.Transition(stream.ResponseStarted); err != nil {
				it.done = true
				return nil, false, err
			}
			headers := make([]wsgiapp.Header, 0, len(msg.Headers))
			for _, h := range msg.Headers {
				headers = append(headers, wsgiapp.Header{Name: string(h.Name), Value: string(h.Value)})
			}
			it.startResponse(statusline.Line(msg.Status), headers, nil)
			continue
		case asgiapp.TypeHTTPResponseBody:
			if it.state == stream.ResponsePending {
				it.done = true
				return nil, false, bridgeerr.ErrProtocolViolation
			}
			if !msg.MoreBody {
				if err := it.state.Transition(stream.ResponseClosed); err != nil {
					it.done = true
					return nil, false, err
				}
				it.done = true
			}
			if len(msg.Body) == 0 {
				if it.done {
					return nil, false, nil
				}
				continue
			}
			return msg.Body, true, nil
		default:
			it.done = true
			return nil, false, bridgeerr.ErrProtocolViolation
		}
	}
}

// Close awaits the task's completion for up to waitTime (indefinitely
// when waitTime<=0). On expiry it cancels the task's context and returns
// without waiting further: per-design, a cancelled task's eventual error
// is logged but never surfaced here, since the WSGI response has already
// closed.
func (it *respIterator) Close() error {
	if it.waitTime <= 0 {
		return it.await()
	}
	timer := time.NewTimer(it.waitTime)
	defer timer.Stop()
	select {
	case err := <-it.taskDone:
		return wrapTaskErr(err)
	case <-timer.C:
		it.cancel()
		it.log.Error(it.requestID, diag.KindWaitTimeout, bridgeerr.ErrWaitTimeout)
		return nil
	}
}

func (it *respIterator) await() error {
	err := <-it.taskDone
	return wrapTaskErr(err)
}

func wrapTaskErr(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("asgi2wsgi: %w", err)
}
