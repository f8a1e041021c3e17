// loopdemo wires a trivial WSGI echo application behind WSGIToASGI and a
// trivial ASGI echo application behind ASGIToWSGI, driving both ends
// with an http.Handler, as an executable smoke test and usage example.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/loopbridge/loopbridge/asgi2wsgi"
	"github.com/loopbridge/loopbridge/asgiapp"
	"github.com/loopbridge/loopbridge/wsgi2asgi"
	"github.com/loopbridge/loopbridge/wsgiapp"
)

func main() {
	listen := flag.String("listen", "127.0.0.1:8080", "address to listen on")
	example := flag.String("example", "wsgi2asgi", "which adapter to demo: wsgi2asgi | asgi2wsgi")
	flag.Parse()

	var handler http.Handler
	switch *example {
	case "wsgi2asgi":
		handler = wsgiToASGIHandler()
	case "asgi2wsgi":
		handler = asgiToWSGIHandler()
	default:
		log.Fatalf("loopdemo: unknown -example %q", *example)
	}

	log.Printf("loopdemo: serving -example=%s on %s\n", *example, *listen)
	if err := http.ListenAndServe(*listen, handler); err != nil {
		log.Fatal(err)
	}
}

// echoWSGIApp reads the whole request body and writes it back, prefixed
// with its length, the way a minimal real WSGI app would.
func echoWSGIApp(environ wsgiapp.Environ, startResponse wsgiapp.StartResponse) wsgiapp.BodyIterator {
	in, _ := environ[wsgiapp.KeyInput].(io.Reader)
	body, _ := io.ReadAll(in)
	startResponse("200 OK", []wsgiapp.Header{{Name: "Content-Type", Value: "text/plain"}}, nil)
	return wsgiapp.NewSliceBodyIterator([]byte(fmt.Sprintf("echo (%d bytes): ", len(body))), body)
}

// wsgiToASGIHandler demos WSGIToASGI by adapting the ASGI-facing
// http.Handler glue around it: a real deployment would instead have an
// ASGI-speaking server (not net/http) drive the Adapter directly.
func wsgiToASGIHandler() http.Handler {
	adapter := wsgi2asgi.New(echoWSGIApp)
	return asgiOverHTTP(adapter.ServeASGI)
}

// echoASGIApp streams the request body back as it arrives.
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

// asgiToWSGIHandler demos ASGIToWSGI by wrapping it in the WSGI-facing
// http.Handler glue: a real deployment would instead have a WSGI-speaking
// server (not net/http) call the Adapter directly.
func asgiToWSGIHandler() http.Handler {
	adapter := asgi2wsgi.New(echoASGIApp)
	return wsgiOverHTTP(adapter.ServeWSGI)
}
