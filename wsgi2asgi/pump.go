package wsgi2asgi

import (
	"context"
	"strings"

	"github.com/loopbridge/loopbridge/asgiapp"
	"github.com/loopbridge/loopbridge/bridgeerr"
	"github.com/loopbridge/loopbridge/stream"
)

// pumpRequest drains http.request messages from receive into req, in
// arrival order, until the body ends (MoreBody=false), the peer
// disconnects, or ctx is cancelled. It always closes req exactly once.
func pumpRequest(ctx context.Context, receive asgiapp.Receive, req *stream.AsyncToSyncStream[[]byte]) error {
	for {
		msg, err := receive(ctx)
		if err != nil {
			req.ACloseWithError(err)
			return err
		}
		switch msg.Type {
		case asgiapp.TypeHTTPRequest:
			if len(msg.Body) > 0 {
				if err := req.APut(ctx, msg.Body); err != nil {
					req.ACloseWithError(err)
					return err
				}
			}
			if !msg.MoreBody {
				req.ACloseWithError(nil)
				return nil
			}
		case asgiapp.TypeHTTPDisconnect:
			req.ACloseWithError(bridgeerr.ErrDisconnected)
			return bridgeerr.ErrDisconnected
		default:
			req.ACloseWithError(bridgeerr.ErrProtocolViolation)
			return bridgeerr.ErrProtocolViolation
		}
	}
}

// pumpResponse drains resp and emits http.response.start (deferred until
// the first body chunk, per the teacher's deferred-flush sender()
// pattern) and http.response.body messages via send, in production
// order, until resp closes or ctx is cancelled.
func pumpResponse(ctx context.Context, resp *stream.SyncToAsyncStream[respArtifact], send asgiapp.Send) error {
	var pending *startArtifact
	var state stream.ResponseState

	// Replacing pending before it's flushed (WSGI's exc_info "replace the
	// start" contract) never touches state: nothing has reached the ASGI
	// peer yet, so there's nothing for ResponseState to see until flush.
	flushStart := func() error {
		if pending == nil {
			return nil
		}
		if err := state.Transition(stream.ResponseStarted); err != nil {
			return err
		}
		headers := make([]asgiapp.HeaderField, 0, len(pending.headers))
		for _, h := range pending.headers {
			headers = append(headers, asgiapp.HeaderField{
				Name:  []byte(strings.ToLower(h.Name)),
				Value: []byte(h.Value),
			})
		}
		msg := asgiapp.Message{Type: asgiapp.TypeHTTPResponseStart, Status: pending.code, Headers: headers}
		pending = nil
		return send(ctx, msg)
	}

	for {
		art, ok, err := resp.AGet(ctx)
		if err != nil {
			return err
		}
		if !ok {
			if err := flushStart(); err != nil {
				return err
			}
			if err := state.Transition(stream.ResponseClosed); err != nil {
				return err
			}
			return send(ctx, asgiapp.Message{Type: asgiapp.TypeHTTPResponseBody, MoreBody: false})
		}
		if art.start != nil {
			pending = art.start
			continue
		}
		if err := flushStart(); err != nil {
			return err
		}
		if art.last {
			if err := state.Transition(stream.ResponseClosed); err != nil {
				return err
			}
		}
		if err := send(ctx, asgiapp.Message{Type: asgiapp.TypeHTTPResponseBody, Body: art.body, MoreBody: !art.last}); err != nil {
			return err
		}
		if art.last {
			return nil
		}
	}
}
