package http11

import (
	"compress/lzw"
	"io"
	"strings"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
)

// CompressionPolicy controls whether and when response bodies are
// transparently compressed.
type CompressionPolicy uint8

const (
	// CompressionAutoDetect compresses when the client's Accept-Encoding
	// lists a supported coding and the handler hasn't already set
	// Content-Encoding itself.
	CompressionAutoDetect CompressionPolicy = iota
	// CompressionAlways compresses whenever the client accepts Identity
	// or any supported coding: it uses the client's supported coding, and
	// gzip when Accept-Encoding is absent or lists none of them, where
	// CompressionAutoDetect leaves the body uncompressed — see NegotiateEncoding.
	CompressionAlways
	// CompressionNever disables the compression pipeline entirely.
	CompressionNever
)

// Encoding is one of the codings this package can negotiate in
// Accept-Encoding.
type Encoding uint8

const (
	EncodingIdentity Encoding = iota
	EncodingGzip
	EncodingCompress
	EncodingDeflate
)

func (e Encoding) String() string {
	switch e {
	case EncodingGzip:
		return "gzip"
	case EncodingCompress:
		return "compress"
	case EncodingDeflate:
		return "deflate"
	default:
		return "identity"
	}
}

// NegotiateEncoding picks a response Content-Encoding from the client's
// Accept-Encoding header and the active CompressionPolicy. It does not
// implement q-value weighting, and the order of the listed codings does
// not matter: gzip is preferred, then deflate, then compress, since gzip
// is what this package's compression path is most exercised against.
func NegotiateEncoding(acceptEncoding string, policy CompressionPolicy) Encoding {
	if policy == CompressionNever {
		return EncodingIdentity
	}

	if acceptEncoding == "" {
		if policy == CompressionAlways {
			return EncodingGzip
		}
		return EncodingIdentity
	}

	var sawGzip, sawDeflate, sawCompress bool
	for _, tok := range strings.Split(acceptEncoding, ",") {
		tok = strings.TrimSpace(tok)
		if semi := strings.IndexByte(tok, ';'); semi >= 0 {
			tok = strings.TrimSpace(tok[:semi])
		}
		switch strings.ToLower(tok) {
		case "gzip", "x-gzip":
			sawGzip = true
		case "deflate":
			sawDeflate = true
		case "compress", "x-compress":
			sawCompress = true
		}
	}

	switch {
	case sawGzip:
		return EncodingGzip
	case sawDeflate:
		return EncodingDeflate
	case sawCompress:
		return EncodingCompress
	case policy == CompressionAlways:
		return EncodingGzip
	default:
		return EncodingIdentity
	}
}

// compressWriteCloser adapts the three supported compressors to a single
// io.WriteCloser shape so the response pipeline doesn't need a type switch
// per write.
type compressWriteCloser struct {
	io.Writer
	closer io.Closer
}

func (c *compressWriteCloser) Close() error {
	if c.closer != nil {
		return c.closer.Close()
	}
	return nil
}

// newEncoder builds the compressor for enc writing to w. EncodingIdentity
// returns a no-op wrapper.
func newEncoder(enc Encoding, w io.Writer) io.WriteCloser {
	switch enc {
	case EncodingGzip:
		gz := gzip.NewWriter(w)
		return &compressWriteCloser{Writer: gz, closer: gz}
	case EncodingDeflate:
		fw, _ := flate.NewWriter(w, flate.DefaultCompression)
		return &compressWriteCloser{Writer: fw, closer: fw}
	case EncodingCompress:
		// compress/lzw has no third-party equivalent in the ecosystem and
		// is the standard library's own implementation of the Unix
		// "compress" program's LZW variant; kept on stdlib deliberately
		// (see DESIGN.md).
		lw := lzw.NewWriter(w, lzw.MSB, 8)
		return &compressWriteCloser{Writer: lw, closer: lw}
	default:
		return &compressWriteCloser{Writer: w}
	}
}

// EnableCompression negotiates a Content-Encoding for acceptEncoding under
// policy and, if one applies, sets the Content-Encoding header, clears any
// explicit Content-Length (the compressed length isn't known up front, so
// the response falls back to chunked framing), and returns a WriteCloser
// that compresses writes through to rw. The caller must Close the returned
// writer to flush the compressor's trailer before the connection finishes
// the response.
//
// If negotiation yields EncodingIdentity, or policy is CompressionAutoDetect
// and Content-Encoding is already set, the returned writer writes straight
// through to rw uncompressed and Close is a no-op.
func (rw *ResponseWriter) EnableCompression(acceptEncoding string, policy CompressionPolicy) io.WriteCloser {
	if policy == CompressionAutoDetect && rw.header.Has([]byte("Content-Encoding")) {
		return &compressWriteCloser{Writer: rw}
	}
	enc := NegotiateEncoding(acceptEncoding, policy)
	if enc == EncodingIdentity {
		return &compressWriteCloser{Writer: rw}
	}

	rw.header.Set([]byte("Content-Encoding"), []byte(enc.String()))
	rw.header.Del([]byte("Content-Length"))
	rw.contentLength = -1

	return newEncoder(enc, rw)
}
