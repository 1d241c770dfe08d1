package websocket

// maxFragmentSize caps each sub-frame emitted by SendMessageFragment at the
// control-frame payload limit. Nothing in RFC 6455 requires data-frame
// fragments to be this small, but reusing MaxControlFramePayload here keeps
// a single size constant across the whole write path instead of inventing
// a second one.
const maxFragmentSize = MaxControlFramePayload

// FragmentWriter drives a single fragmented message across one or more
// calls to SendMessageFragment, finished by SendMessageFragmentEnd. It
// tracks whether the first sub-frame (carrying the real opcode) has been
// sent yet, since every sub-frame after it must use the continuation
// opcode per spec.md §4.9.
//
// FragmentWriter does not itself serialize writes against concurrent
// senders on the same connection; Session.writeMu (session.go) is what
// provides the per-connection write-mutex spec.md §4.9 requires.
type FragmentWriter struct {
	fw      *FrameWriter
	started bool
}

// NewFragmentWriter wraps fw for fragmented sends.
func NewFragmentWriter(fw *FrameWriter) *FragmentWriter {
	return &FragmentWriter{fw: fw}
}

// SendMessageFragment splits fragment into ≤125-byte sub-frames, each with
// FIN=0; the very first sub-frame across the FragmentWriter's lifetime
// carries opcode, every subsequent one carries OpcodeContinuation. A
// zero-length fragment emits nothing and leaves the writer's state as it
// was, so the first non-empty fragment still carries opcode.
func (f *FragmentWriter) SendMessageFragment(opcode byte, fragment []byte) error {
	if len(fragment) == 0 {
		return nil
	}

	for len(fragment) > 0 {
		chunkLen := len(fragment)
		if chunkLen > maxFragmentSize {
			chunkLen = maxFragmentSize
		}
		chunk := fragment[:chunkLen]
		fragment = fragment[chunkLen:]

		frameOpcode := byte(OpcodeContinuation)
		if !f.started {
			frameOpcode = opcode
		}
		f.started = true

		if err := f.fw.WriteFrame(frameOpcode, false, chunk, nil); err != nil {
			return err
		}
	}
	return nil
}

// SendMessageFragmentEnd writes the final zero-payload FIN=1 frame closing
// out the fragmented message. opcode is OpcodeContinuation if any fragments
// were already sent (the common case), or the original message opcode if
// SendMessageFragmentEnd is called having never sent a non-empty fragment.
func (f *FragmentWriter) SendMessageFragmentEnd(opcode byte) error {
	frameOpcode := byte(OpcodeContinuation)
	if !f.started {
		frameOpcode = opcode
	}
	f.started = false

	return f.fw.WriteFrame(frameOpcode, true, nil, nil)
}

// SendMessage writes a complete, unfragmented message as a single FIN frame.
// This is the common case spec.md §4.9 names first; fragmentation
// (SendMessageFragment/SendMessageFragmentEnd) exists for payloads a caller
// wants to stream before the full length is known.
func SendMessage(fw *FrameWriter, opcode byte, payload []byte) error {
	return fw.WriteFrame(opcode, true, payload, nil)
}
