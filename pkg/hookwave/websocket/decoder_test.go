package websocket

import (
	"bytes"
	"testing"
)

// clientFrame builds a masked client-to-server frame for test input.
func clientFrame(fin bool, opcode byte, payload []byte, maskKey [4]byte) []byte {
	var b0 byte = opcode
	if fin {
		b0 |= finalBit
	}

	var buf []byte
	buf = append(buf, b0)

	l := len(payload)
	switch {
	case l < 126:
		buf = append(buf, byte(l)|maskBit)
	case l < 65536:
		buf = append(buf, 126|maskBit, byte(l>>8), byte(l))
	default:
		buf = append(buf, 127|maskBit,
			0, 0, 0, 0, byte(l>>24), byte(l>>16), byte(l>>8), byte(l))
	}

	buf = append(buf, maskKey[:]...)

	masked := make([]byte, l)
	copy(masked, payload)
	maskBytes(masked, maskKey)
	buf = append(buf, masked...)

	return buf
}

func TestDecoderSingleUnfragmentedTextFrame(t *testing.T) {
	d := NewDecoder()
	input := clientFrame(true, OpcodeText, []byte("hello"), [4]byte{1, 2, 3, 4})

	var got []DecodedFrame
	err := d.Feed(input, func(f DecodedFrame) error {
		got = append(got, f)
		return nil
	})
	if err != nil {
		t.Fatalf("Feed: %v", err)
	}
	if len(got) != 1 || string(got[0].Payload) != "hello" || got[0].Opcode != OpcodeText {
		t.Fatalf("got %+v", got)
	}
}

// TestDecoderFragmentReassembly exercises testable property 6: a three-frame
// fragmented message (text-start, continuation, continuation-end) reassembles
// to the original bytes in order.
func TestDecoderFragmentReassembly(t *testing.T) {
	d := NewDecoder()
	mk := [4]byte{9, 8, 7, 6}

	var input []byte
	input = append(input, clientFrame(false, OpcodeText, []byte("wiki"), mk)...)
	input = append(input, clientFrame(false, OpcodeContinuation, []byte("pedia "), mk)...)
	input = append(input, clientFrame(true, OpcodeContinuation, []byte("rocks"), mk)...)

	var got []DecodedFrame
	err := d.Feed(input, func(f DecodedFrame) error {
		got = append(got, f)
		return nil
	})
	if err != nil {
		t.Fatalf("Feed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected exactly one delivered message, got %d", len(got))
	}
	if string(got[0].Payload) != "wikipedia rocks" {
		t.Fatalf("got %q", got[0].Payload)
	}
	if got[0].Opcode != OpcodeText {
		t.Fatalf("got opcode %d, want OpcodeText", got[0].Opcode)
	}
}

func TestDecoderByteAtATimeFeed(t *testing.T) {
	d := NewDecoder()
	input := clientFrame(true, OpcodeBinary, bytes.Repeat([]byte{0x42}, 500), [4]byte{1, 1, 1, 1})

	var got []DecodedFrame
	for i := 0; i < len(input); i++ {
		if err := d.Feed(input[i:i+1], func(f DecodedFrame) error {
			got = append(got, f)
			return nil
		}); err != nil {
			t.Fatalf("Feed byte %d: %v", i, err)
		}
	}

	if len(got) != 1 || len(got[0].Payload) != 500 {
		t.Fatalf("got %+v", got)
	}
}

func TestDecoderRejectsUnmaskedClientFrame(t *testing.T) {
	d := NewDecoder()
	unmasked := []byte{finalBit | OpcodeText, 5, 'h', 'e', 'l', 'l', 'o'}

	err := d.Feed(unmasked, func(DecodedFrame) error { return nil })
	if err != ErrMaskRequired {
		t.Fatalf("got %v, want ErrMaskRequired", err)
	}
}

func TestDecoderRejectsFragmentedControlFrame(t *testing.T) {
	d := NewDecoder()
	frame := clientFrame(false, OpcodePing, []byte("ping"), [4]byte{1, 2, 3, 4})

	err := d.Feed(frame, func(DecodedFrame) error { return nil })
	if err != ErrFragmentedControl {
		t.Fatalf("got %v, want ErrFragmentedControl", err)
	}
}

func TestDecoderShrinksBufferAfterLargeFrame(t *testing.T) {
	d := NewDecoder()
	big := clientFrame(true, OpcodeBinary, bytes.Repeat([]byte{1}, 5000), [4]byte{1, 2, 3, 4})

	if err := d.Feed(big, func(DecodedFrame) error { return nil }); err != nil {
		t.Fatalf("Feed: %v", err)
	}
	if len(d.buf) != minFrameBufferSize {
		t.Fatalf("buffer did not shrink back: len=%d", len(d.buf))
	}
}
