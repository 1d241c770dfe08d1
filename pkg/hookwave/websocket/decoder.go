package websocket

import "encoding/binary"

// minFrameBufferSize is the buffer's resting size: a Decoder shrinks back to
// this once a frame completes, and only grows past it when a single frame's
// header+payload demands more.
const minFrameBufferSize = 256

// Decoder assembles WebSocket frames out of arbitrarily-sized chunks
// delivered by a non-blocking or asynchronous reader, one connection's worth
// of state at a time. Decoder.Feed can be handed any number of bytes at any
// time and only calls back once full frames are available — the shape a
// goroutine-per-connection loop reading off a conn.Read buffer, or an
// edge-triggered event loop, both need; Session.Serve is the one caller in
// this package, feeding it chunks straight off the net.Conn.
//
// Accumulated message state persists across frames so a fragmented message
// reassembles correctly; control frames bypass it entirely per RFC 6455 §5.4.
type Decoder struct {
	buf []byte // accumulation buffer, holds the bytes not yet consumed (one or more frames, possibly partial)
	n   int    // valid bytes currently in buf

	currentMessage       []byte
	currentMessageOpcode byte
	inMessage            bool
}

// NewDecoder returns a Decoder with its resting 256-byte buffer allocated
// from the package's size-classed BufferPool.
func NewDecoder() *Decoder {
	return &Decoder{buf: DefaultBufferPool.Get(minFrameBufferSize)}
}

// DecodedFrame is one fully-assembled, unmasked frame ready for dispatch.
type DecodedFrame struct {
	Fin     bool
	Opcode  byte
	Payload []byte // for a fragmented data message, the full reassembled message
}

// Feed appends chunk to the decoder's accumulation buffer and extracts as
// many complete frames as are now available, invoking deliver once per
// completed message (control frames always complete immediately; data
// frames complete only once FIN arrives, possibly after several
// continuation frames). deliver receiving a non-nil error means a protocol
// violation was detected and the connection must be aborted; Feed stops
// processing immediately in that case.
func (d *Decoder) Feed(chunk []byte, deliver func(DecodedFrame) error) error {
	d.append(chunk)

	for {
		consumed, frame, ok, err := d.tryExtractFrame()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}

		// Consume before delivering: frame.Payload is a copy, and a frame
		// whose callback panics (recovered by Session) must not be
		// extracted, and unmasked, a second time.
		d.consume(consumed)

		if frame.IsControl() {
			if err := deliver(DecodedFrame{Fin: true, Opcode: frame.Opcode, Payload: frame.Payload}); err != nil {
				return err
			}
		} else {
			if err := d.assembleDataFrame(frame, deliver); err != nil {
				return err
			}
		}
	}
}

func (d *Decoder) append(chunk []byte) {
	needed := d.n + len(chunk)
	if needed > len(d.buf) {
		grown := DefaultBufferPool.Get(needed)
		copy(grown, d.buf[:d.n])
		DefaultBufferPool.Put(d.buf)
		d.buf = grown
	}
	copy(d.buf[d.n:needed], chunk)
	d.n = needed
}

// consume drops the first n bytes of the buffer (one fully-parsed frame) and
// shrinks back to the resting size once the buffer is empty and was grown.
func (d *Decoder) consume(n int) {
	remaining := d.n - n
	copy(d.buf, d.buf[n:d.n])
	d.n = remaining

	if remaining == 0 && len(d.buf) > minFrameBufferSize {
		DefaultBufferPool.Put(d.buf)
		d.buf = DefaultBufferPool.Get(minFrameBufferSize)
	}
}

type rawFrame struct {
	Fin     bool
	Opcode  byte
	Payload []byte
}

func (f rawFrame) IsControl() bool {
	return f.Opcode >= 0x8
}

// tryExtractFrame implements spec §4.7 steps 1-6: given the bytes currently
// buffered, decide whether a complete frame is present, and if so unmask its
// payload in place and return it along with the number of header+payload
// bytes it occupies.
func (d *Decoder) tryExtractFrame() (consumed int, frame rawFrame, ok bool, err error) {
	if d.n < 2 {
		return 0, rawFrame{}, false, nil
	}

	b0 := d.buf[0]
	b1 := d.buf[1]

	if b1&maskBit == 0 {
		return 0, rawFrame{}, false, ErrMaskRequired
	}

	rawLen := uint64(b1 & lengthMask)
	headerSize := 2
	var payloadLen uint64

	switch {
	case rawLen < 126:
		payloadLen = rawLen
	case rawLen == 126:
		if d.n < 4 {
			return 0, rawFrame{}, false, nil
		}
		payloadLen = uint64(binary.BigEndian.Uint16(d.buf[2:4]))
		headerSize = 4
	default: // rawLen == 127
		if d.n < 10 {
			return 0, rawFrame{}, false, nil
		}
		payloadLen = binary.BigEndian.Uint64(d.buf[2:10])
		headerSize = 10
	}

	headerSize += 4 // masking key
	if d.n < headerSize+int(payloadLen) {
		return 0, rawFrame{}, false, nil
	}

	var maskKey [4]byte
	copy(maskKey[:], d.buf[headerSize-4:headerSize])

	payload := d.buf[headerSize : headerSize+int(payloadLen)]
	maskBytes(payload, maskKey)

	opcode := b0 & opcodeMask
	fin := b0&finalBit != 0

	if opcode >= 0x8 && (!fin || payloadLen > MaxControlFramePayload) {
		return 0, rawFrame{}, false, ErrFragmentedControl
	}

	out := make([]byte, payloadLen)
	copy(out, payload)

	return headerSize + int(payloadLen), rawFrame{Fin: fin, Opcode: opcode, Payload: out}, true, nil
}

// assembleDataFrame implements spec §4.7 steps 7-8 for non-control frames:
// accumulate into currentMessage, tracking the message's opcode across
// continuation frames, and deliver once FIN arrives.
func (d *Decoder) assembleDataFrame(frame rawFrame, deliver func(DecodedFrame) error) error {
	if frame.Opcode == OpcodeContinuation {
		if !d.inMessage {
			return ErrProtocolViolation
		}
	} else {
		if d.inMessage {
			return ErrProtocolViolation
		}
		d.inMessage = true
		d.currentMessageOpcode = frame.Opcode
		d.currentMessage = nil
	}

	d.currentMessage = append(d.currentMessage, frame.Payload...)

	if !frame.Fin {
		return nil
	}

	msg := d.currentMessage
	opcode := d.currentMessageOpcode
	d.currentMessage = nil
	d.inMessage = false

	return deliver(DecodedFrame{Fin: true, Opcode: opcode, Payload: msg})
}
