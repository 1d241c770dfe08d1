package websocket

import (
	"bytes"
	"io"
	"testing"
)

func TestFrameWriterWriteFrame(t *testing.T) {
	tests := []struct {
		name    string
		opcode  byte
		fin     bool
		payload []byte
		maskKey *[4]byte
		expect  []byte
	}{
		{
			name:    "simple unmasked text frame",
			opcode:  OpcodeText,
			fin:     true,
			payload: []byte("Hello"),
			maskKey: nil,
			expect: []byte{
				0x81, 0x05, // FIN, Text, length=5
				'H', 'e', 'l', 'l', 'o',
			},
		},
		{
			name:    "masked text frame",
			opcode:  OpcodeText,
			fin:     true,
			payload: []byte("Hello"),
			maskKey: &[4]byte{0x12, 0x34, 0x56, 0x78},
			expect: []byte{
				0x81, 0x85, // FIN, Text, masked, length=5
				0x12, 0x34, 0x56, 0x78, // Mask key
				0x5A, 0x51, 0x3A, 0x14, 0x7D, // Masked "Hello"
			},
		},
		{
			name:    "ping frame",
			opcode:  OpcodePing,
			fin:     true,
			payload: nil,
			maskKey: nil,
			expect: []byte{
				0x89, 0x00, // FIN, Ping, length=0
			},
		},
		{
			name:    "fragmented text frame (not final)",
			opcode:  OpcodeText,
			fin:     false,
			payload: []byte("Hel"),
			maskKey: nil,
			expect: []byte{
				0x01, 0x03, // NOT FIN, Text, length=3
				'H', 'e', 'l',
			},
		},
		{
			name:    "extended 16-bit length",
			opcode:  OpcodeBinary,
			fin:     true,
			payload: make([]byte, 256),
			maskKey: nil,
			expect: func() []byte {
				data := make([]byte, 4+256)
				data[0] = 0x82 // FIN, Binary
				data[1] = 126  // Extended 16-bit length
				data[2] = 0x01 // Length high byte
				data[3] = 0x00 // Length low byte
				return data
			}(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			writer := NewFrameWriter(&buf)

			// Make a copy of payload since masking is in-place.
			payload := make([]byte, len(tt.payload))
			copy(payload, tt.payload)

			err := writer.WriteFrame(tt.opcode, tt.fin, payload, tt.maskKey)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			got := buf.Bytes()

			// For frames with extended length, only compare header.
			if len(tt.expect) < len(got) {
				got = got[:len(tt.expect)]
			}

			if !bytes.Equal(got, tt.expect) {
				t.Errorf("WriteFrame output:\ngot:  %v\nwant: %v", got, tt.expect)
			}
		})
	}
}

func TestFrameWriterControlFrameRejectsOversizedPayload(t *testing.T) {
	var buf bytes.Buffer
	writer := NewFrameWriter(&buf)

	payload := make([]byte, MaxControlFramePayload+1)
	if err := writer.WriteControlFrame(OpcodePing, payload, nil); err != ErrInvalidControlFrame {
		t.Fatalf("got %v, want ErrInvalidControlFrame", err)
	}
}

func TestFrameWriterControlFrameRejectsNonControlOpcode(t *testing.T) {
	var buf bytes.Buffer
	writer := NewFrameWriter(&buf)

	if err := writer.WriteControlFrame(OpcodeText, nil, nil); err != ErrInvalidOpcode {
		t.Fatalf("got %v, want ErrInvalidOpcode", err)
	}
}

func TestFrameWriterWriteClose(t *testing.T) {
	var buf bytes.Buffer
	writer := NewFrameWriter(&buf)

	if err := writer.WriteClose(CloseNormalClosure, "bye", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := buf.Bytes()
	if got[0] != 0x88 {
		t.Fatalf("opcode byte = 0x%X, want 0x88 (FIN|Close)", got[0])
	}
	payloadLen := int(got[1] & lengthMask)
	if payloadLen != 2+len("bye") {
		t.Fatalf("payload length = %d, want %d", payloadLen, 2+len("bye"))
	}
}

// TestFrameWriterDecoderRoundtrip writes frames with FrameWriter (masked, as
// a client would) and confirms Decoder.Feed reassembles exactly the bytes
// written — the two halves of this package's only wire-frame path now that
// FrameReader is gone.
func TestFrameWriterDecoderRoundtrip(t *testing.T) {
	var buf bytes.Buffer
	writer := NewFrameWriter(&buf)
	mask := [4]byte{0xAA, 0xBB, 0xCC, 0xDD}

	if err := writer.WriteTextFrame([]byte("round trip"), &mask); err != nil {
		t.Fatalf("WriteTextFrame: %v", err)
	}

	d := NewDecoder()
	var got string
	err := d.Feed(buf.Bytes(), func(f DecodedFrame) error {
		if f.Opcode == OpcodeText {
			got = string(f.Payload)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Feed: %v", err)
	}
	if got != "round trip" {
		t.Fatalf("got %q, want %q", got, "round trip")
	}
}

func BenchmarkFrameWriterWriteFrame(b *testing.B) {
	sizes := []int{64, 256, 1024, 4096}

	for _, size := range sizes {
		b.Run(string(rune(size)), func(b *testing.B) {
			writer := NewFrameWriter(io.Discard)

			b.SetBytes(int64(size))
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				payload := make([]byte, size)
				if err := writer.WriteFrame(OpcodeBinary, true, payload, nil); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
