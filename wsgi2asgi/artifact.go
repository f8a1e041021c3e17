package wsgi2asgi

import "github.com/loopbridge/loopbridge/wsgiapp"

// startArtifact is the queued-but-not-yet-flushed status/headers pair a
// WSGI app's startResponse call produces.
type startArtifact struct {
	code    int
	headers []wsgiapp.Header
}

// respArtifact is one item on the response stream: either a start
// artifact (start != nil, body/last unused) or a body chunk (start ==
// nil). last marks the terminal body chunk (MoreBody=false).
type respArtifact struct {
	start *startArtifact
	body  []byte
	last  bool
}
