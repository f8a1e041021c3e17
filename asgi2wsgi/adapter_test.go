package asgi2wsgi

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"github.com/loopbridge/loopbridge/asgiapp"
	"github.com/loopbridge/loopbridge/wsgiapp"
)

func echoASGIApp(ctx context.Context, scope *asgiapp.Scope, receive asgiapp.Receive, send asgiapp.Send) error {
	if err := send(ctx, asgiapp.Message{
		Type:   asgiapp.TypeHTTPResponseStart,
		Status: 200,
		Headers: []asgiapp.HeaderField{
			{Name: []byte("content-type"), Value: []byte("text/plain")},
		},
	}); err != nil {
		return err
	}
	for {
		msg, err := receive(ctx)
		if err != nil {
			return err
		}
		if len(msg.Body) > 0 {
			if err := send(ctx, asgiapp.Message{Type: asgiapp.TypeHTTPResponseBody, Body: msg.Body, MoreBody: true}); err != nil {
				return err
			}
		}
		if !msg.MoreBody {
			return send(ctx, asgiapp.Message{Type: asgiapp.TypeHTTPResponseBody, MoreBody: false})
		}
	}
}

type fakeStartResponse struct {
	status  string
	headers []wsgiapp.Header
	err     error
}

func TestServeWSGIEchoesRequestBody(t *testing.T) {
	a := New(echoASGIApp)
	defer a.Close()

	environ := wsgiapp.Environ{
		wsgiapp.KeyRequestMethod:  "POST",
		wsgiapp.KeyScriptName:     "",
		wsgiapp.KeyPathInfo:       "/echo",
		wsgiapp.KeyServerProtocol: "HTTP/1.1",
		wsgiapp.KeyURLScheme:      "http",
		wsgiapp.KeyInput:          io.NopCloser(bytes.NewReader([]byte("hello world"))),
	}

	var captured fakeStartResponse
	startResponse := func(status string, headers []wsgiapp.Header, err error) io.Writer {
		captured = fakeStartResponse{status: status, headers: headers, err: err}
		return io.Discard
	}

	it := a.ServeWSGI(environ, startResponse)
	var got []byte
	for {
		chunk, ok, err := it.Next()
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if !ok {
			break
		}
		got = append(got, chunk...)
	}
	if err := it.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if captured.status != "200 OK" {
		t.Fatalf("status = %q, want %q", captured.status, "200 OK")
	}
	if string(got) != "hello world" {
		t.Fatalf("got %q, want %q", got, "hello world")
	}
}

func TestServeWSGIWaitTimeCancelsSlowTask(t *testing.T) {
	block := make(chan struct{})
	slowApp := func(ctx context.Context, scope *asgiapp.Scope, receive asgiapp.Receive, send asgiapp.Send) error {
		if err := send(ctx, asgiapp.Message{Type: asgiapp.TypeHTTPResponseStart, Status: 200}); err != nil {
			return err
		}
		if err := send(ctx, asgiapp.Message{Type: asgiapp.TypeHTTPResponseBody, MoreBody: false}); err != nil {
			return err
		}
		<-ctx.Done()
		close(block)
		return ctx.Err()
	}

	a := New(slowApp, WithWaitTime(20*time.Millisecond))
	defer a.Close()

	environ := wsgiapp.Environ{
		wsgiapp.KeyRequestMethod:  "GET",
		wsgiapp.KeyServerProtocol: "HTTP/1.1",
		wsgiapp.KeyURLScheme:      "http",
	}
	startResponse := func(status string, headers []wsgiapp.Header, err error) io.Writer { return io.Discard }

	it := a.ServeWSGI(environ, startResponse)
	for {
		_, ok, err := it.Next()
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if !ok {
			break
		}
	}
	if err := it.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	select {
	case <-block:
	case <-time.After(time.Second):
		t.Fatal("WaitTime expiry never cancelled the task's context")
	}
}
