package hookwave

import (
	"github.com/sirupsen/logrus"
)

// Logger is the package-wide logger. Callers can swap it wholesale
// (Logger = logrus.New()) or tweak it in place (Logger.SetLevel(...)); the
// helpers below derive their entries from Logger at call time, so a swap
// reaches every logger derived afterwards. The http11 and server packages
// do not call these helpers and hold no logger of their own.
var Logger = logrus.New()

// ConnectionLogger returns a logger scoped to one accepted connection,
// tagging every subsequent entry with its remote address.
func ConnectionLogger(remoteAddr string) *logrus.Entry {
	return Logger.WithField("remote_addr", remoteAddr)
}

// RequestLogger returns a logger scoped to one request within a connection,
// extending an existing connection-scoped entry with method/path.
func RequestLogger(conn *logrus.Entry, method, path string) *logrus.Entry {
	return conn.WithFields(logrus.Fields{
		"method": method,
		"path":   path,
	})
}

// WebSocketLogger returns a logger scoped to one upgraded WebSocket
// connection.
func WebSocketLogger(remoteAddr string) *logrus.Entry {
	return Logger.WithFields(logrus.Fields{
		"remote_addr": remoteAddr,
		"protocol":    "websocket",
	})
}
