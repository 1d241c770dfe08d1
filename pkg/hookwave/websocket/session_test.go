package websocket

import (
	"io"
	"net"
	"testing"
	"time"
)

func pipeSession(t *testing.T) (*Session, net.Conn) {
	t.Helper()
	server, client := net.Pipe()
	return NewSession(server), client
}

func TestSessionDispatchesTextAndBinary(t *testing.T) {
	s, client := pipeSession(t)
	defer client.Close()

	gotText := make(chan string, 1)
	gotBinary := make(chan []byte, 1)
	began := make(chan struct{}, 1)
	ended := make(chan struct{}, 1)

	s.OnBeginConnection(func() { began <- struct{}{} })
	s.OnEndConnection(func() { ended <- struct{}{} })
	s.OnTextMessage(func(p string) { gotText <- p })
	s.OnBinaryMessage(func(p []byte) { gotBinary <- append([]byte{}, p...) })

	go s.Serve()

	select {
	case <-began:
	case <-time.After(time.Second):
		t.Fatal("onBeginConnection never fired")
	}

	client.Write(clientFrame(true, OpcodeText, []byte("hi"), [4]byte{1, 2, 3, 4}))
	select {
	case got := <-gotText:
		if got != "hi" {
			t.Fatalf("got %q, want hi", got)
		}
	case <-time.After(time.Second):
		t.Fatal("onTextMessage never fired")
	}

	client.Write(clientFrame(true, OpcodeBinary, []byte{1, 2, 3}, [4]byte{5, 6, 7, 8}))
	select {
	case got := <-gotBinary:
		if len(got) != 3 {
			t.Fatalf("got %v", got)
		}
	case <-time.After(time.Second):
		t.Fatal("onBinaryMessage never fired")
	}

	// net.Pipe has no buffering: drain the session's Close echo so its
	// write does not block before onEndConnection fires.
	go io.Copy(io.Discard, client)
	client.Write(clientFrame(true, OpcodeClose, []byte{0x03, 0xE8}, [4]byte{1, 1, 1, 1}))
	select {
	case <-ended:
	case <-time.After(time.Second):
		t.Fatal("onEndConnection never fired")
	}
}

func TestSessionRespondsToPing(t *testing.T) {
	s, client := pipeSession(t)
	defer client.Close()

	go s.Serve()

	client.Write(clientFrame(true, OpcodePing, nil, [4]byte{1, 2, 3, 4}))

	client.SetReadDeadline(time.Now().Add(time.Second))
	buf := make([]byte, 2)
	if _, err := readFull(client, buf); err != nil {
		t.Fatalf("expected pong response: %v", err)
	}
	if buf[0]&opcodeMask != OpcodePong {
		t.Fatalf("got opcode %d, want pong", buf[0]&opcodeMask)
	}
}

func TestSessionRejectsInvalidCloseCode(t *testing.T) {
	s, client := pipeSession(t)
	defer client.Close()

	go s.Serve()

	// 1005 is RFC 6455 §7.4.1 reserved and must never appear on the wire;
	// Session must ack with CloseProtocolError rather than echoing it.
	closePayload := []byte{0x03, 0xED} // 1005, big-endian
	client.Write(clientFrame(true, OpcodeClose, closePayload, [4]byte{1, 2, 3, 4}))

	client.SetReadDeadline(time.Now().Add(time.Second))
	buf := make([]byte, 4)
	if _, err := readFull(client, buf); err != nil {
		t.Fatalf("expected close ack: %v", err)
	}
	if buf[0]&opcodeMask != OpcodeClose {
		t.Fatalf("got opcode %d, want close", buf[0]&opcodeMask)
	}
	gotCode := uint16(buf[2])<<8 | uint16(buf[3])
	if gotCode != CloseProtocolError {
		t.Fatalf("ack code = %d, want %d (CloseProtocolError)", gotCode, CloseProtocolError)
	}
}

func TestSessionRecoversCallbackPanic(t *testing.T) {
	s, client := pipeSession(t)
	defer client.Close()

	called := make(chan struct{}, 2)
	s.OnTextMessage(func(p string) {
		called <- struct{}{}
		panic("boom")
	})

	done := make(chan error, 1)
	go func() { done <- s.Serve() }()

	client.Write(clientFrame(true, OpcodeText, []byte("a"), [4]byte{1, 2, 3, 4}))
	select {
	case <-called:
	case <-time.After(time.Second):
		t.Fatal("first message never dispatched")
	}

	client.Write(clientFrame(true, OpcodeText, []byte("b"), [4]byte{1, 2, 3, 4}))
	select {
	case <-called:
	case <-time.After(time.Second):
		t.Fatal("second message never dispatched after panic recovery")
	}

	client.Close()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Serve never returned after client close")
	}
}

func readFull(c net.Conn, buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := c.Read(buf[total:])
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}
