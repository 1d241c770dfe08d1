package http11

import "io"

// maxBoundedBodyBufferSize caps the internal read buffer BoundedRequestBody
// allocates on first use. A single Read never pulls more than this many
// bytes from the inner stream in one step.
const maxBoundedBodyBufferSize = 64 * 1024

// BoundedRequestBody exposes exactly maxBytes bytes drawn from an inner
// io.Reader, optionally preceded by a caller-supplied "initial buffer" —
// bytes the request header parser over-read while scanning for the
// CRLF CRLF terminator.
//
// setupBodyReader (parser.go) wraps Content-Length bodies in a
// BoundedRequestBody. Unlike a plain io.LimitReader it can splice the
// parser's leftover bytes ahead of the socket read, so handlers see one
// uniform io.Reader regardless of how much of the body the parser already
// consumed.
//
// Not seekable, not writable. A Read returns 0 exactly once the cap is
// reached or the inner stream reports EOF/0; after that the stream is
// permanently drained (subsequent Reads also return 0, io.EOF).
type BoundedRequestBody struct {
	inner io.Reader

	maxBytes  int64
	remaining int64

	pending []byte // unread bytes from the initial buffer, or a prior internal read
	buf     []byte // lazily allocated internal read buffer, capped at 64KiB

	drained bool
}

// NewBoundedRequestBody constructs a BoundedRequestBody over inner, exposing
// at most maxBytes bytes. initialBuffer[initialOffset:initialOffset+initialCount]
// is served first; if that slice is longer than maxBytes it is truncated and
// the excess discarded.
func NewBoundedRequestBody(inner io.Reader, maxBytes int64, initialBuffer []byte, initialOffset, initialCount int) *BoundedRequestBody {
	b := &BoundedRequestBody{
		inner:     inner,
		maxBytes:  maxBytes,
		remaining: maxBytes,
	}

	if initialCount > 0 && maxBytes > 0 {
		if int64(initialCount) > maxBytes {
			initialCount = int(maxBytes)
		}
		pending := make([]byte, initialCount)
		copy(pending, initialBuffer[initialOffset:initialOffset+initialCount])
		b.pending = pending
		b.remaining -= int64(initialCount)
	}

	if maxBytes <= 0 || b.remaining < 0 {
		b.drained = true
	}

	return b
}

// Read implements io.Reader. It serves pending buffered bytes first; once
// those are exhausted it performs at most one read from the inner stream
// (never more than maxBoundedBodyBufferSize or the remaining byte budget,
// whichever is smaller) and serves from that.
func (b *BoundedRequestBody) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	// pending must be served before drained is honored: a read that both
	// exhausts remaining and overflows p stashes the overflow into pending
	// and sets drained in the same step (below), and that overflow is still
	// unread.
	if len(b.pending) > 0 {
		n := copy(p, b.pending)
		b.pending = b.pending[n:]
		return n, nil
	}
	if b.drained {
		return 0, io.EOF
	}

	if b.remaining <= 0 {
		b.drained = true
		return 0, io.EOF
	}

	if b.buf == nil {
		size := b.remaining
		if size > maxBoundedBodyBufferSize {
			size = maxBoundedBodyBufferSize
		}
		b.buf = make([]byte, size)
	}

	readSize := int64(len(b.buf))
	if readSize > b.remaining {
		readSize = b.remaining
	}

	n, err := b.inner.Read(b.buf[:readSize])
	if n > 0 {
		b.remaining -= int64(n)
		copied := copy(p, b.buf[:n])
		if copied < n {
			// p was smaller than the bytes just read; stash the rest as pending.
			b.pending = append(b.pending, b.buf[copied:n]...)
		}
		if b.remaining <= 0 {
			b.drained = true
		}
		return copied, nil
	}

	// Inner stream produced 0 bytes: treat as permanent EOF per spec, even
	// if err was nil (a reader returning (0, nil) is itself a protocol
	// violation we don't want to spin on).
	b.drained = true
	if err == nil || err == io.EOF {
		return 0, io.EOF
	}
	return 0, err
}

// Close releases the internal read buffer. The inner stream is not closed;
// that remains the caller's responsibility.
func (b *BoundedRequestBody) Close() error {
	b.buf = nil
	b.pending = nil
	b.drained = true
	return nil
}
