package websocket

import (
	"encoding/binary"
	"io"
	"unicode/utf8"
)

// FrameWriter provides efficient frame writing with pre-allocated buffers.
type FrameWriter struct {
	w         io.Writer
	headerBuf [MaxFrameHeaderSize]byte // Reusable buffer for frame headers
	maskKey   [4]byte                  // Masking key (for client mode)
}

// NewFrameWriter creates a new frame writer.
func NewFrameWriter(w io.Writer) *FrameWriter {
	return &FrameWriter{w: w}
}

// WriteFrame writes a WebSocket frame to the writer.
// If maskKey is non-nil, the payload will be masked (required for client→server).
//
// Performance: Zero allocations for writing. Masking is done in-place.
func (fw *FrameWriter) WriteFrame(opcode byte, fin bool, payload []byte, maskKey *[4]byte) error {
	// Build frame header
	b0 := opcode
	if fin {
		b0 |= finalBit
	}
	fw.headerBuf[0] = b0

	// Determine payload length encoding
	payloadLen := uint64(len(payload))
	headerSize := 2

	b1 := byte(0)
	if maskKey != nil {
		b1 |= maskBit
	}

	switch {
	case payloadLen <= 125:
		fw.headerBuf[1] = b1 | byte(payloadLen)

	case payloadLen <= 0xFFFF:
		fw.headerBuf[1] = b1 | 126
		binary.BigEndian.PutUint16(fw.headerBuf[2:4], uint16(payloadLen))
		headerSize = 4

	default:
		fw.headerBuf[1] = b1 | 127
		binary.BigEndian.PutUint64(fw.headerBuf[2:10], payloadLen)
		headerSize = 10
	}

	// Add masking key if present
	if maskKey != nil {
		copy(fw.headerBuf[headerSize:headerSize+4], maskKey[:])
		headerSize += 4
	}

	// Write header
	if _, err := fw.w.Write(fw.headerBuf[:headerSize]); err != nil {
		return err
	}

	// Write payload (mask if needed)
	if len(payload) > 0 {
		if maskKey != nil {
			// Mask payload in place (caller's buffer will be modified)
			maskBytes(payload, *maskKey)
		}

		if _, err := fw.w.Write(payload); err != nil {
			return err
		}
	}

	return nil
}

// WriteControlFrame writes a control frame (Close, Ping, Pong).
// Control frames must be ≤125 bytes and have FIN=1.
func (fw *FrameWriter) WriteControlFrame(opcode byte, payload []byte, maskKey *[4]byte) error {
	if len(payload) > MaxControlFramePayload {
		return ErrInvalidControlFrame
	}
	if opcode < OpcodeClose || opcode > OpcodePong {
		return ErrInvalidOpcode
	}
	return fw.WriteFrame(opcode, true, payload, maskKey)
}

// WriteTextFrame writes a text frame with UTF-8 validation.
func (fw *FrameWriter) WriteTextFrame(data []byte, maskKey *[4]byte) error {
	if !utf8.Valid(data) {
		return ErrInvalidUTF8
	}
	return fw.WriteFrame(OpcodeText, true, data, maskKey)
}

// WriteBinaryFrame writes a binary frame.
func (fw *FrameWriter) WriteBinaryFrame(data []byte, maskKey *[4]byte) error {
	return fw.WriteFrame(OpcodeBinary, true, data, maskKey)
}

// WritePing writes a Ping control frame.
func (fw *FrameWriter) WritePing(payload []byte, maskKey *[4]byte) error {
	return fw.WriteControlFrame(OpcodePing, payload, maskKey)
}

// WritePong writes a Pong control frame.
func (fw *FrameWriter) WritePong(payload []byte, maskKey *[4]byte) error {
	return fw.WriteControlFrame(OpcodePong, payload, maskKey)
}

// WriteClose writes a Close control frame with status code and reason.
func (fw *FrameWriter) WriteClose(code uint16, reason string, maskKey *[4]byte) error {
	var payload []byte
	if code != 0 {
		payload = make([]byte, 2+len(reason))
		binary.BigEndian.PutUint16(payload, code)
		copy(payload[2:], reason)
	}
	return fw.WriteControlFrame(OpcodeClose, payload, maskKey)
}
