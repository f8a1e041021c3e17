// Package body implements the WSGI wsgi.input value: a blocking reader
// over a stream of request-body chunks fed by a task goroutine on the
// other side of an AsyncToSyncStream. It is the Go-native analogue of
// a2wsgi's wsgi.py Body class (original_source/a2wsgi/wsgi.py), which
// wraps an asyncio.Queue the same way this wraps
// stream.AsyncToSyncStream.
package body

import (
	"bytes"
	"io"
	"iter"

	"github.com/loopbridge/loopbridge/stream"
)

// Body is the worker-goroutine-facing handle onto a request body pushed
// in chunks from the ASGI task side. Every method blocks the calling
// goroutine; none are safe to call from a task.
type Body struct {
	chunks *stream.AsyncToSyncStream[[]byte]

	buf []byte // leftover bytes from the last dequeued chunk
	eof bool
	err error
}

// New wraps chunks (already fed by the caller's task-side loop) as a
// Body.
func New(chunks *stream.AsyncToSyncStream[[]byte]) *Body {
	return &Body{chunks: chunks}
}

func (b *Body) fill() bool {
	if len(b.buf) > 0 || b.eof || b.err != nil {
		return len(b.buf) > 0
	}
	chunk, ok, err := b.chunks.Get(0)
	if err != nil {
		b.err = err
		return false
	}
	if !ok {
		b.eof = true
		return false
	}
	b.buf = chunk
	return len(b.buf) > 0
}

// Read implements io.Reader. Per convention it returns io.EOF once the
// stream is drained; it may also return a non-nil, non-EOF error exactly
// once if the producing task closed the stream with an error.
func (b *Body) Read(p []byte) (int, error) {
	if !b.fill() {
		if b.err != nil {
			err := b.err
			b.err = nil
			return 0, err
		}
		return 0, io.EOF
	}
	n := copy(p, b.buf)
	b.buf = b.buf[n:]
	return n, nil
}

// ReadAll returns the next chunk of available bytes, or an empty slice
// (never an error) at EOF — the raw WSGI-style accessor that never
// signals end-of-stream via error, per the wsgi.input EOF invariant.
func (b *Body) ReadAll(max int) ([]byte, error) {
	if !b.fill() {
		if b.err != nil {
			err := b.err
			b.err = nil
			return nil, err
		}
		return []byte{}, nil
	}
	n := len(b.buf)
	if max > 0 && n > max {
		n = max
	}
	out := append([]byte(nil), b.buf[:n]...)
	b.buf = b.buf[n:]
	return out, nil
}

// ReadLine returns bytes up to and including the first '\n', or up to
// EOF. limit<=0 means unbounded.
func (b *Body) ReadLine(limit int) ([]byte, error) {
	var line []byte
	for {
		if !b.fill() {
			if b.err != nil {
				err := b.err
				b.err = nil
				return line, err
			}
			return line, nil
		}
		idx := bytes.IndexByte(b.buf, '\n')
		if idx < 0 {
			take := b.buf
			if limit > 0 && len(line)+len(take) > limit {
				take = take[:limit-len(line)]
			}
			line = append(line, take...)
			b.buf = b.buf[len(take):]
			if limit > 0 && len(line) >= limit {
				return line, nil
			}
			continue
		}
		take := b.buf[:idx+1]
		if limit > 0 && len(line)+len(take) > limit {
			take = take[:limit-len(line)]
		}
		line = append(line, take...)
		b.buf = b.buf[len(take):]
		return line, nil
	}
}

// ReadLines reads every remaining line. hint is an advisory initial
// capacity for the returned slice.
func (b *Body) ReadLines(hint int) ([][]byte, error) {
	if hint < 0 {
		hint = 0
	}
	lines := make([][]byte, 0, hint)
	for {
		line, err := b.ReadLine(0)
		if len(line) > 0 {
			lines = append(lines, line)
		}
		if err != nil {
			return lines, err
		}
		if len(line) == 0 {
			return lines, nil
		}
	}
}

// Lines ranges over every line in the body in order, stopping (without
// surfacing an error to the caller) once the stream ends. An error
// observed mid-iteration simply ends the range; callers needing it
// should use ReadLine directly.
func (b *Body) Lines() iter.Seq[[]byte] {
	return func(yield func([]byte) bool) {
		for {
			line, err := b.ReadLine(0)
			if len(line) == 0 || err != nil {
				return
			}
			if !yield(line) {
				return
			}
		}
	}
}
