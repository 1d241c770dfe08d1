package websocket

import (
	"encoding/binary"
	"io"
	"net"
	"sync"
)

// Session drives one upgraded WebSocket connection through the
// application-callback dispatch model: onBeginConnection fires once after
// the handshake, onTextMessage/onBinaryMessage fire per completed message,
// and onEndConnection fires exactly once when the connection ends from
// either side. It layers over Decoder (incremental frame reassembly) and
// FragmentWriter/FrameWriter (outbound framing) — the sole WebSocket API
// this package exposes server- and client-side (see upgrade.go's Dial).
//
// A Session is bound to exactly one underlying net.Conn for its lifetime;
// Serve must not be called twice on the same Session.
type Session struct {
	conn net.Conn

	decoder *Decoder
	fw      *FrameWriter
	writeMu sync.Mutex // serializes all outbound frames, including fragments

	onTextMessage     func(payload string)
	onBinaryMessage   func(payload []byte)
	onBeginConnection func()
	onEndConnection   func()
	onPong            func(payload []byte)

	readBufSize int

	served    bool
	closeOnce sync.Once
}

const defaultSessionReadBufferSize = 4096

// NewSession wraps netConn for the callback dispatch model. The handshake
// (upgrade.go) must already be complete; netConn is used as-is, with no
// further HTTP framing.
func NewSession(netConn net.Conn) *Session {
	return &Session{
		conn:        netConn,
		decoder:     NewDecoder(),
		fw:          NewFrameWriter(netConn),
		readBufSize: defaultSessionReadBufferSize,
	}
}

// SetReadBufferSize overrides the size of the buffer Serve reads socket
// chunks into (default defaultSessionReadBufferSize). Must be called before
// Serve.
func (s *Session) SetReadBufferSize(size int) {
	if size > 0 {
		s.readBufSize = size
	}
}

// OnTextMessage registers the text-message callback (spec.md §4.8 opcode 0x01).
func (s *Session) OnTextMessage(f func(payload string)) { s.onTextMessage = f }

// OnBinaryMessage registers the binary-message callback (opcode 0x02).
func (s *Session) OnBinaryMessage(f func(payload []byte)) { s.onBinaryMessage = f }

// OnBeginConnection registers the callback fired exactly once after Serve
// starts reading.
func (s *Session) OnBeginConnection(f func()) { s.onBeginConnection = f }

// OnEndConnection registers the callback fired exactly once when the
// connection ends, regardless of which side initiated the close.
func (s *Session) OnEndConnection(f func()) { s.onEndConnection = f }

// OnPong registers the optional Pong callback (opcode 0x0A). Unset by
// default: Pongs are otherwise ignored per spec.md §4.8.
func (s *Session) OnPong(f func(payload []byte)) { s.onPong = f }

// Serve reads from the connection until EOF, a protocol error, or a Close
// frame, dispatching completed messages to the registered callbacks. It
// blocks until the connection ends and never returns io.EOF itself (a clean
// close is reported as a nil error).
//
// Panics raised by application callbacks are recovered and discarded in the
// default build; build with the wsdebug tag to let them propagate instead
// (see session_debug.go / session_release.go).
func (s *Session) Serve() error {
	if s.served {
		panic("websocket: Session.Serve called twice")
	}
	s.served = true

	if s.onBeginConnection != nil {
		s.onBeginConnection()
	}

	buf := DefaultBufferPool.Get(s.readBufSize)
	defer DefaultBufferPool.Put(buf)
	var serveErr error

loop:
	for {
		n, err := s.conn.Read(buf)
		if n > 0 {
			feedErr := s.feedWithRecover(buf[:n])
			if feedErr != nil {
				if feedErr == errSessionClosed {
					break loop
				}
				serveErr = feedErr
				break loop
			}
		}
		if err != nil {
			if err != io.EOF {
				serveErr = err
			}
			break loop
		}
	}

	s.endConnection()
	return serveErr
}

var errSessionClosed = io.EOF // sentinel returned by deliver to stop Serve's loop on a clean Close

func (s *Session) feedWithRecover(chunk []byte) (err error) {
	defer recoverCallback(&err)
	return s.decoder.Feed(chunk, s.deliver)
}

// deliver implements the opcode dispatch table in spec.md §4.8.
func (s *Session) deliver(f DecodedFrame) error {
	switch f.Opcode {
	case OpcodeText:
		if s.onTextMessage != nil {
			s.onTextMessage(string(f.Payload))
		}
	case OpcodeBinary:
		if s.onBinaryMessage != nil {
			s.onBinaryMessage(f.Payload)
		}
	case OpcodeClose:
		if len(f.Payload) >= 2 {
			code := binary.BigEndian.Uint16(f.Payload[:2])
			if !isValidCloseCode(code) {
				s.writeCloseAckCode(CloseProtocolError)
				return errSessionClosed
			}
		}
		s.writeCloseAck(f.Payload)
		return errSessionClosed
	case OpcodePing:
		if err := s.writePong(); err != nil {
			return err
		}
	case OpcodePong:
		if s.onPong != nil {
			s.onPong(f.Payload)
		}
	default:
		// Ignore per spec.md §4.8's conservative default.
	}
	return nil
}

func (s *Session) writePong() error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.fw.WriteControlFrame(OpcodePong, nil, nil)
}

func (s *Session) writeCloseAck(payload []byte) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	_ = s.fw.WriteControlFrame(OpcodeClose, payload, nil)
}

// writeCloseAckCode sends a Close frame carrying a fixed status code,
// used when the peer's own close code fails isValidCloseCode.
func (s *Session) writeCloseAckCode(code uint16) {
	payload := make([]byte, 2)
	binary.BigEndian.PutUint16(payload, code)
	s.writeCloseAck(payload)
}

func (s *Session) endConnection() {
	s.closeOnce.Do(func() {
		s.conn.Close()
		if s.onEndConnection != nil {
			s.onEndConnection()
		}
	})
}

// SendText sends a complete text message as a single FIN frame.
func (s *Session) SendText(payload string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return SendMessage(s.fw, OpcodeText, []byte(payload))
}

// SendBinary sends a complete binary message as a single FIN frame.
func (s *Session) SendBinary(payload []byte) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return SendMessage(s.fw, OpcodeBinary, payload)
}

// SendFragmented streams payload as a sequence of sub-frames via
// FragmentWriter, holding the write mutex for the whole sequence so no
// other send can interleave with it (spec.md §4.9's "serialized by a
// per-connection mutex" requirement).
func (s *Session) SendFragmented(opcode byte, payload []byte) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	frag := NewFragmentWriter(s.fw)
	if err := frag.SendMessageFragment(opcode, payload); err != nil {
		return err
	}
	return frag.SendMessageFragmentEnd(OpcodeContinuation)
}

// Close sends a Close frame with code and ends the session.
func (s *Session) Close(code uint16) error {
	s.writeMu.Lock()
	payload := make([]byte, 2)
	binary.BigEndian.PutUint16(payload, code)
	err := s.fw.WriteControlFrame(OpcodeClose, payload, nil)
	s.writeMu.Unlock()

	s.endConnection()
	return err
}
