//go:build wsdebug

package websocket

// recoverCallback is a no-op in debug builds: panics raised by application
// callbacks propagate up through Session.Serve instead of being discarded,
// so they surface during development instead of silently closing the
// connection's message loop (see session_release.go for the default).
func recoverCallback(err *error) {}
