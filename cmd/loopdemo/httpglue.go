package main

import (
	"context"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/loopbridge/loopbridge/asgiapp"
	"github.com/loopbridge/loopbridge/wsgiapp"
)

// wsgiOverHTTP adapts a wsgiapp.App into a net/http.Handler, the way a
// real WSGI gateway (gunicorn's sync worker, wsgiref) sits in front of a
// WSGI app. It exists only for loopdemo; production deployments of
// WSGIToASGI/ASGIToWSGI sit behind real WSGI/ASGI servers, not this.
func wsgiOverHTTP(app wsgiapp.App) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		environ := httpRequestToEnviron(r)

		var wroteHeader bool
		startResponse := func(status string, headers []wsgiapp.Header, callErr error) io.Writer {
			if callErr != nil {
				http.Error(w, callErr.Error(), http.StatusInternalServerError)
				wroteHeader = true
				return w
			}
			code, _, _ := strings.Cut(status, " ")
			n, _ := strconv.Atoi(code)
			for _, h := range headers {
				w.Header().Add(h.Name, h.Value)
			}
			if n > 0 {
				w.WriteHeader(n)
			}
			wroteHeader = true
			return w
		}

		it := app(environ, startResponse)
		defer it.Close()
		for {
			chunk, ok, err := it.Next()
			if err != nil {
				if !wroteHeader {
					http.Error(w, err.Error(), http.StatusInternalServerError)
				}
				return
			}
			if !ok {
				return
			}
			_, _ = w.Write(chunk)
		}
	})
}

func httpRequestToEnviron(r *http.Request) wsgiapp.Environ {
	host, port, err := net.SplitHostPort(r.Host)
	if err != nil {
		host, port = r.Host, "80"
	}
	remoteHost, remotePort, _ := net.SplitHostPort(r.RemoteAddr)

	environ := wsgiapp.Environ{
		wsgiapp.KeyRequestMethod:  r.Method,
		wsgiapp.KeyScriptName:     "",
		wsgiapp.KeyPathInfo:       r.URL.Path,
		wsgiapp.KeyQueryString:    r.URL.RawQuery,
		wsgiapp.KeyServerName:     host,
		wsgiapp.KeyServerPort:     port,
		wsgiapp.KeyServerProtocol: r.Proto,
		wsgiapp.KeyRemoteAddr:     remoteHost,
		wsgiapp.KeyRemotePort:     remotePort,
		wsgiapp.KeyURLScheme:      "http",
		wsgiapp.KeyInput:          r.Body,
		wsgiapp.KeyMultithread:    true,
		wsgiapp.KeyMultiprocess:   false,
		wsgiapp.KeyRunOnce:        false,
	}
	if r.ContentLength >= 0 {
		environ[wsgiapp.KeyContentLength] = strconv.FormatInt(r.ContentLength, 10)
	}
	if ct := r.Header.Get("Content-Type"); ct != "" {
		environ[wsgiapp.KeyContentType] = ct
	}
	for name, values := range r.Header {
		key := "HTTP_" + strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
		environ[key] = strings.Join(values, ", ")
	}
	return environ
}

// asgiOverHTTP adapts wsgi2asgi.Adapter.ServeASGI's signature into a
// net/http.Handler by feeding the request body as a single http.request
// message and streaming http.response.* messages back onto w.
func asgiOverHTTP(serve asgiapp.App) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		scope := httpRequestToScope(r)

		bodyRead := false
		receive := func(ctx context.Context) (asgiapp.Message, error) {
			if bodyRead {
				return asgiapp.Message{Type: asgiapp.TypeHTTPRequest, MoreBody: false}, nil
			}
			bodyRead = true
			buf, _ := io.ReadAll(r.Body)
			return asgiapp.Message{Type: asgiapp.TypeHTTPRequest, Body: buf, MoreBody: false}, nil
		}

		var wroteHeader bool
		send := func(ctx context.Context, msg asgiapp.Message) error {
			switch msg.Type {
			case asgiapp.TypeHTTPResponseStart:
				for _, h := range msg.Headers {
					w.Header().Add(string(h.Name), string(h.Value))
				}
				w.WriteHeader(msg.Status)
				wroteHeader = true
			case asgiapp.TypeHTTPResponseBody:
				if !wroteHeader {
					w.WriteHeader(http.StatusOK)
					wroteHeader = true
				}
				if len(msg.Body) > 0 {
					_, err := w.Write(msg.Body)
					return err
				}
			}
			return nil
		}

		if err := serve(r.Context(), scope, receive, send); err != nil && !wroteHeader {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})
}

func httpRequestToScope(r *http.Request) *asgiapp.Scope {
	host, port, err := net.SplitHostPort(r.Host)
	if err != nil {
		host, port = r.Host, "80"
	}
	portNum, _ := strconv.Atoi(port)

	headers := make([]asgiapp.HeaderField, 0, len(r.Header))
	for name, values := range r.Header {
		for _, v := range values {
			headers = append(headers, asgiapp.HeaderField{Name: []byte(strings.ToLower(name)), Value: []byte(v)})
		}
	}

	return &asgiapp.Scope{
		Type:        asgiapp.ScopeHTTP,
		HTTPVersion: strings.TrimPrefix(r.Proto, "HTTP/"),
		Method:      r.Method,
		Scheme:      "http",
		Path:        r.URL.Path,
		QueryString: []byte(r.URL.RawQuery),
		RootPath:    "",
		Headers:     headers,
		Server:      &asgiapp.Addr{Host: host, Port: portNum},
	}
}
