package http11

import (
	"io"
	"strconv"
)

// ChunkedWriter wraps an io.Writer with RFC 7230 §4.1 chunked transfer
// encoding. Each Write emits one self-contained chunk: ASCII hex length,
// CRLF, payload, CRLF. Close emits the terminating zero-length chunk and
// flushes the inner writer.
//
// This promotes the chunk-framing arithmetic previously embedded directly
// in ResponseWriter.WriteChunk/FinishChunked into a standalone type, so it
// can wrap either a connection's bufio.Writer directly or a gzip.Writer
// sitting in front of it (see gzip.go) — the response pipeline needs both
// shapes depending on the active Content-Encoding.
type ChunkedWriter struct {
	w      io.Writer
	closed bool
}

// NewChunkedWriter wraps w for chunked output.
func NewChunkedWriter(w io.Writer) *ChunkedWriter {
	return &ChunkedWriter{w: w}
}

// Write emits buf as one chunk. A zero-length Write is silently dropped
// rather than erroring: writing an actual "0\r\n" chunk here would
// prematurely signal end-of-body per RFC 7230, and the real terminator is
// only ever emitted by Close.
func (cw *ChunkedWriter) Write(buf []byte) (int, error) {
	if cw.closed {
		return 0, ErrChunkedEncoding
	}
	if len(buf) == 0 {
		return 0, nil
	}

	size := strconv.AppendInt(nil, int64(len(buf)), 16)
	size = append(size, '\r', '\n')
	if _, err := cw.w.Write(size); err != nil {
		return 0, err
	}

	n, err := cw.w.Write(buf)
	if err != nil {
		return n, err
	}

	if _, err := cw.w.Write(crlfBytes); err != nil {
		return n, err
	}

	return n, nil
}

// Flush is a no-op: each Write already emits a complete, self-contained
// chunk, so there is nothing buffered at this layer to flush.
func (cw *ChunkedWriter) Flush() error {
	return nil
}

// Close emits the terminating "0\r\n\r\n" chunk and flushes the inner
// writer if it exposes a Flush method. Close is idempotent; a second call
// is a no-op.
func (cw *ChunkedWriter) Close() error {
	if cw.closed {
		return nil
	}
	cw.closed = true

	if _, err := cw.w.Write(chunkedTerminator); err != nil {
		return err
	}

	if f, ok := cw.w.(interface{ Flush() error }); ok {
		return f.Flush()
	}
	return nil
}

var chunkedTerminator = []byte("0\r\n\r\n")
