package http11

import (
	"bytes"
	"io"
	"testing"
)

// TestChunkedRoundTrip exercises testable property 1: for any sequence of
// payloads, decoding ChunkedWriter's output through ChunkedReader yields
// their concatenation and EOF.
func TestChunkedRoundTrip(t *testing.T) {
	payloads := [][]byte{
		[]byte("hello "),
		[]byte("wiki"),
		[]byte("pedia"),
		[]byte(" in\r\n\r\nchunks."),
	}

	var buf bytes.Buffer
	cw := NewChunkedWriter(&buf)
	for _, p := range payloads {
		if _, err := cw.Write(p); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}
	if err := cw.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	cr := NewChunkedReader(bytes.NewReader(buf.Bytes()))
	got, err := io.ReadAll(cr)
	if err != nil {
		t.Fatalf("ReadAll through ChunkedReader: %v", err)
	}

	var want []byte
	for _, p := range payloads {
		want = append(want, p...)
	}

	if !bytes.Equal(got, want) {
		t.Fatalf("round trip mismatch:\n got: %q\nwant: %q", got, want)
	}
}

func TestChunkedWriterDropsZeroLengthIntermediateWrite(t *testing.T) {
	var buf bytes.Buffer
	cw := NewChunkedWriter(&buf)

	n, err := cw.Write(nil)
	if n != 0 || err != nil {
		t.Fatalf("Write(nil) = (%d, %v), want (0, nil)", n, err)
	}

	if _, err := cw.Write([]byte("payload")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := cw.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	cr := NewChunkedReader(bytes.NewReader(buf.Bytes()))
	got, err := io.ReadAll(cr)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if string(got) != "payload" {
		t.Fatalf("got %q, want %q", got, "payload")
	}
}

func TestChunkedWriterWriteAfterCloseErrors(t *testing.T) {
	var buf bytes.Buffer
	cw := NewChunkedWriter(&buf)
	if err := cw.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if _, err := cw.Write([]byte("too late")); err == nil {
		t.Fatalf("expected error writing after Close")
	}
}

func TestChunkedWriterTerminatorFraming(t *testing.T) {
	var buf bytes.Buffer
	cw := NewChunkedWriter(&buf)
	if _, err := cw.Write([]byte("ab")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := cw.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	want := "2\r\nab\r\n0\r\n\r\n"
	if buf.String() != want {
		t.Fatalf("got %q, want %q", buf.String(), want)
	}
}
