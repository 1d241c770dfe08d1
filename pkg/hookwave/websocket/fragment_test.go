package websocket

import (
	"bytes"
	"testing"
)

func decodeServerFrames(t *testing.T, data []byte) []DecodedFrame {
	t.Helper()
	var frames []DecodedFrame
	for len(data) > 0 {
		b0, b1 := data[0], data[1]
		fin := b0&finalBit != 0
		opcode := b0 & opcodeMask
		l := int(b1 & lengthMask)
		if b1&maskBit != 0 {
			t.Fatalf("server frame must not be masked")
		}
		payload := data[2 : 2+l]
		frames = append(frames, DecodedFrame{Fin: fin, Opcode: opcode, Payload: append([]byte{}, payload...)})
		data = data[2+l:]
	}
	return frames
}

func TestSendMessageFragmentSplitsAtLimit(t *testing.T) {
	var buf bytes.Buffer
	fw := NewFrameWriter(&buf)
	frag := NewFragmentWriter(fw)

	payload := bytes.Repeat([]byte{'x'}, 300)
	if err := frag.SendMessageFragment(OpcodeText, payload); err != nil {
		t.Fatalf("SendMessageFragment: %v", err)
	}
	if err := frag.SendMessageFragmentEnd(OpcodeContinuation); err != nil {
		t.Fatalf("SendMessageFragmentEnd: %v", err)
	}

	frames := decodeServerFrames(t, buf.Bytes())
	// 300 bytes at 125/chunk -> 125 + 125 + 50 = three data sub-frames, plus
	// the final zero-payload FIN frame.
	if len(frames) != 4 {
		t.Fatalf("got %d frames, want 4", len(frames))
	}

	if frames[0].Opcode != OpcodeText || frames[0].Fin {
		t.Fatalf("first frame wrong: %+v", frames[0])
	}
	for _, f := range frames[1 : len(frames)-1] {
		if f.Opcode != OpcodeContinuation || f.Fin {
			t.Fatalf("middle frame wrong: %+v", f)
		}
	}
	last := frames[len(frames)-1]
	if !last.Fin || len(last.Payload) != 0 {
		t.Fatalf("final frame wrong: %+v", last)
	}

	var reassembled []byte
	for _, f := range frames {
		reassembled = append(reassembled, f.Payload...)
	}
	if !bytes.Equal(reassembled, payload) {
		t.Fatalf("reassembled payload mismatch")
	}
}

func TestSendMessageFragmentEndWithNoFragmentsUsesOriginalOpcode(t *testing.T) {
	var buf bytes.Buffer
	fw := NewFrameWriter(&buf)
	frag := NewFragmentWriter(fw)

	if err := frag.SendMessageFragmentEnd(OpcodeText); err != nil {
		t.Fatalf("SendMessageFragmentEnd: %v", err)
	}

	frames := decodeServerFrames(t, buf.Bytes())
	if len(frames) != 1 || frames[0].Opcode != OpcodeText || !frames[0].Fin {
		t.Fatalf("got %+v", frames)
	}
}

func TestSendMessageSingleFrame(t *testing.T) {
	var buf bytes.Buffer
	fw := NewFrameWriter(&buf)

	if err := SendMessage(fw, OpcodeBinary, []byte("data")); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}

	frames := decodeServerFrames(t, buf.Bytes())
	if len(frames) != 1 || !frames[0].Fin || frames[0].Opcode != OpcodeBinary || string(frames[0].Payload) != "data" {
		t.Fatalf("got %+v", frames)
	}
}
