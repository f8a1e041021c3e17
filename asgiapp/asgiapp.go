// Package asgiapp defines the Go-native shape of the ASGI HTTP calling
// convention: a cooperatively scheduled application task that exchanges
// typed messages over two channel-backed callables, receive and send.
package asgiapp

import "context"

// ScopeType distinguishes the protocol a Scope describes. "http" is the
// scope type the adapters actually bridge; "lifespan" is acknowledged
// trivially by WSGIToASGI (startup.complete/shutdown.complete with no
// WSGI application involvement — see wsgi2asgi.serveLifespan) since the
// Non-goal only excludes lifespan support beyond trivial acknowledgement.
// Any other scope type is rejected with bridgeerr.ErrUnsupportedScope.
type ScopeType string

const (
	ScopeHTTP     ScopeType = "http"
	ScopeLifespan ScopeType = "lifespan"
)

// HeaderField is a single (lower-cased name, value) pair, always bytes on
// the wire per the ASGI spec.
type HeaderField struct {
	Name  []byte
	Value []byte
}

// Addr is a (host, port) pair, used for Scope.Client and Scope.Server.
type Addr struct {
	Host string
	Port int
}

// Scope carries the per-request metadata for an ASGI http scope.
type Scope struct {
	Type        ScopeType
	HTTPVersion string
	Method      string
	Scheme      string
	Path        string // percent-decoded
	RawPath     []byte // undecoded, nil if the server didn't provide one
	QueryString []byte
	RootPath    string
	Headers     []HeaderField
	Client      *Addr
	Server      *Addr

	// WSGIEnviron is populated only by ASGIToWSGI (through
	// wire.EnvironToScope), exposing the originating WSGI environ to
	// applications that peek across layers. It is the incoming environ
	// map itself, not a copy, and holds no reference to the adapter's
	// per-request streams (see SPEC_FULL.md §9).
	WSGIEnviron map[string]any
}

// MessageType enumerates the ASGI HTTP message types this module
// understands. Anything else is a protocol violation (see
// bridgeerr.ErrProtocolViolation and SPEC_FULL.md §9's resolution of the
// trailers/http.response.debug open question).
type MessageType string

const (
	TypeHTTPRequest       MessageType = "http.request"
	TypeHTTPDisconnect    MessageType = "http.disconnect"
	TypeHTTPResponseStart MessageType = "http.response.start"
	TypeHTTPResponseBody  MessageType = "http.response.body"

	// Lifespan message types, acknowledged trivially by WSGIToASGI (see
	// wsgi2asgi.serveLifespan) — the Non-goal only excludes lifespan
	// support beyond trivial startup/shutdown acknowledgement.
	TypeLifespanStartup          MessageType = "lifespan.startup"
	TypeLifespanStartupComplete  MessageType = "lifespan.startup.complete"
	TypeLifespanShutdown         MessageType = "lifespan.shutdown"
	TypeLifespanShutdownComplete MessageType = "lifespan.shutdown.complete"
)

// Message is a tagged union of the ASGI HTTP messages. Only the fields
// relevant to Type are meaningful; this mirrors the Python reference's
// untyped dict messages while staying a single concrete Go type so
// streams can be generic over it without boxing into interface{}.
type Message struct {
	Type MessageType

	// http.request
	Body     []byte
	MoreBody bool

	// http.response.start
	Status  int
	Headers []HeaderField
}

// Receive pulls the next message from the server. Blocks (suspends) until
// a message is available or ctx is done.
type Receive func(ctx context.Context) (Message, error)

// Send pushes a message to the server. Blocks (suspends) until the
// server has accepted it (or buffered it) or ctx is done.
type Send func(ctx context.Context, msg Message) error

// App is an ASGI application. The adapters bridge the http scope type;
// wsgi2asgi also answers a lifespan scope with trivial acknowledgements.
type App func(ctx context.Context, scope *Scope, receive Receive, send Send) error
