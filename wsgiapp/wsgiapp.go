// Package wsgiapp defines the Go-native shape of the WSGI calling
// convention: a blocking application called once per request with a
// case-sensitive environ mapping and a start-response callback, returning
// an iterator of response byte chunks.
//
// Naming and field set are grounded on the CGI/WSGI variables the teacher's
// FastCGI gateway already builds in hemi/web_proxy_fcgi.go
// (fcgiRequest.proxyCopyHeaders), generalized from "build a FastCGI param
// block" to "build a Go map".
package wsgiapp

import "io"

// Environ is the per-request WSGI environment. Values are strings for the
// CGI-style keys, except wsgi.input (io.Reader), wsgi.errors (io.Writer),
// and the wsgi.* booleans.
type Environ map[string]any

// Standard environ keys, mirroring PEP 3333 / the CGI variables the
// teacher's FastCGI gateway emits.
const (
	KeyRequestMethod  = "REQUEST_METHOD"
	KeyScriptName     = "SCRIPT_NAME"
	KeyPathInfo       = "PATH_INFO"
	KeyQueryString    = "QUERY_STRING"
	KeyServerName     = "SERVER_NAME"
	KeyServerPort     = "SERVER_PORT"
	KeyServerProtocol = "SERVER_PROTOCOL"
	KeyContentType    = "CONTENT_TYPE"
	KeyContentLength  = "CONTENT_LENGTH"
	KeyRemoteAddr     = "REMOTE_ADDR"
	KeyRemotePort     = "REMOTE_PORT"

	KeyURLScheme    = "wsgi.url_scheme"
	KeyInput        = "wsgi.input"
	KeyErrors       = "wsgi.errors"
	KeyMultithread  = "wsgi.multithread"
	KeyMultiprocess = "wsgi.multiprocess"
	KeyRunOnce      = "wsgi.run_once"

	// KeyASGIScope is populated only by the WSGIToASGI adapter, exposing
	// the originating ASGI scope to applications that peek across layers.
	KeyASGIScope = "asgi.scope"
)

// Header is an ordered (name, value) pair as passed to StartResponse.
type Header struct {
	Name  string
	Value string
}

// StartResponse is the WSGI start_response callable. err, when non-nil and
// called before any body chunk has been written, replaces a previously
// queued (but not yet flushed) response start; once a chunk has been
// flushed it is instead re-raised (mirroring WSGI's exc_info re-raise
// contract — wsgi2asgi's startResponse, built in runWorker, panics with it).
// It returns a legacy "write" callable that implementations may treat as
// a no-op; the supported path is returning an iterator from the App.
type StartResponse func(status string, headers []Header, err error) io.Writer

// BodyIterator is the Go analogue of a WSGI application's returned
// iterable of byte-string chunks. Next returns the next chunk; ok=false
// with err=nil signals a clean end of the response. Close releases any
// resources Next may have been holding, standing in for WSGI's optional
// iterable.close() convention.
type BodyIterator interface {
	Next() (chunk []byte, ok bool, err error)
	io.Closer
}

// App is a WSGI application: called once per request, returns the
// iterator of response body chunks. startResponse must be called exactly
// once before the first chunk is produced.
type App func(environ Environ, startResponse StartResponse) BodyIterator

// SliceBodyIterator adapts a pre-built slice of chunks (or a single
// chunk) into a BodyIterator, for trivial WSGI apps and tests.
type SliceBodyIterator struct {
	chunks [][]byte
	pos    int
}

// NewSliceBodyIterator returns a BodyIterator yielding chunks in order.
func NewSliceBodyIterator(chunks ...[]byte) *SliceBodyIterator {
	return &SliceBodyIterator{chunks: chunks}
}

func (it *SliceBodyIterator) Next() ([]byte, bool, error) {
	if it.pos >= len(it.chunks) {
		return nil, false, nil
	}
	chunk := it.chunks[it.pos]
	it.pos++
	return chunk, true, nil
}

func (it *SliceBodyIterator) Close() error { return nil }
