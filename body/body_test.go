package body

import (
	"context"
	"io"
	"testing"

	"github.com/loopbridge/loopbridge/stream"
)

func feed(t *testing.T, chunks ...[]byte) *Body {
	t.Helper()
	s := stream.NewAsyncToSyncStream[[]byte](8)
	go func() {
		ctx := context.Background()
		for _, c := range chunks {
			_ = s.APut(ctx, c)
		}
		s.ACloseWithError(nil)
	}()
	return New(s)
}

func TestBodyReadAcrossChunks(t *testing.T) {
	b := feed(t, []byte("hello "), []byte("world"))
	got, err := io.ReadAll(b)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if string(got) != "hello world" {
		t.Fatalf("got %q", got)
	}
}

func TestBodyReadAllNeverErrorsOnEOF(t *testing.T) {
	b := feed(t, []byte("x"))
	first, err := b.ReadAll(0)
	if err != nil || string(first) != "x" {
		t.Fatalf("first ReadAll = (%q, %v)", first, err)
	}
	second, err := b.ReadAll(0)
	if err != nil || len(second) != 0 {
		t.Fatalf("second ReadAll = (%q, %v), want empty, nil", second, err)
	}
}

func TestBodyReadLineSplitsOnNewline(t *testing.T) {
	b := feed(t, []byte("line1\nline"), []byte("2\nline3"))
	var got [][]byte
	for {
		line, err := b.ReadLine(0)
		if len(line) > 0 {
			got = append(got, line)
		}
		if err != nil || len(line) == 0 {
			break
		}
	}
	want := []string{"line1\n", "line2\n", "line3"}
	if len(got) != len(want) {
		t.Fatalf("got %d lines, want %d: %q", len(got), len(want), got)
	}
	for i, w := range want {
		if string(got[i]) != w {
			t.Errorf("line %d = %q, want %q", i, got[i], w)
		}
	}
}

func TestBodyLinesIteration(t *testing.T) {
	b := feed(t, []byte("a\nb\nc"))
	var got []string
	for line := range b.Lines() {
		got = append(got, string(line))
	}
	want := []string{"a\n", "b\n", "c"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}
