package http11

import (
	"bytes"
	"io"
	"testing"
)

func readAll(t *testing.T, r io.Reader) []byte {
	t.Helper()
	out, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	return out
}

// TestBoundedBodyExactLength exercises testable property 2: for any maxBytes
// M and inner stream length L, BoundedRequestBody returns exactly
// min(M, L) bytes and thereafter 0.
func TestBoundedBodyExactLength(t *testing.T) {
	cases := []struct {
		name       string
		maxBytes   int64
		innerBytes int
	}{
		{"inner shorter than cap", 100, 10},
		{"inner longer than cap", 10, 100},
		{"inner equals cap", 50, 50},
		{"zero cap", 0, 10},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			inner := bytes.NewReader(make([]byte, tc.innerBytes))
			b := NewBoundedRequestBody(inner, tc.maxBytes, nil, 0, 0)

			out := readAll(t, b)

			want := tc.maxBytes
			if int64(tc.innerBytes) < want {
				want = int64(tc.innerBytes)
			}
			if int64(len(out)) != want {
				t.Fatalf("got %d bytes, want %d", len(out), want)
			}

			n, err := b.Read(make([]byte, 1))
			if n != 0 || err != io.EOF {
				t.Fatalf("expected (0, io.EOF) after drain, got (%d, %v)", n, err)
			}
		})
	}
}

// TestBoundedBodyInitialBufferPrefix exercises the second half of property
// 2: if an initial buffer of size k is provided, the first min(k, M) bytes
// served are exactly its prefix.
func TestBoundedBodyInitialBufferPrefix(t *testing.T) {
	initial := []byte("HELLO-")
	inner := bytes.NewReader([]byte("WORLD"))

	b := NewBoundedRequestBody(inner, 100, initial, 0, len(initial))
	out := readAll(t, b)

	want := "HELLO-WORLD"
	if string(out) != want {
		t.Fatalf("got %q, want %q", out, want)
	}
}

func TestBoundedBodyInitialBufferTruncatedToMax(t *testing.T) {
	initial := []byte("HELLOWORLD")
	inner := bytes.NewReader([]byte("EXTRA"))

	b := NewBoundedRequestBody(inner, 5, initial, 0, len(initial))
	out := readAll(t, b)

	if string(out) != "HELLO" {
		t.Fatalf("got %q, want %q", out, "HELLO")
	}
}

func TestBoundedBodySmallReads(t *testing.T) {
	inner := bytes.NewReader([]byte("abcdefghij"))
	b := NewBoundedRequestBody(inner, 10, []byte("XY"), 0, 2)

	var out []byte
	buf := make([]byte, 1)
	for {
		n, err := b.Read(buf)
		out = append(out, buf[:n]...)
		if err != nil {
			break
		}
	}

	if string(out) != "XYabcdefgh" {
		t.Fatalf("got %q, want %q", out, "XYabcdefgh")
	}
}
