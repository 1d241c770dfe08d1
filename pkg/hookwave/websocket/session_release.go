//go:build !wsdebug

package websocket

// recoverCallback swallows a panic raised by an application callback and
// leaves err nil, so Session.Serve keeps reading. This is the release-build behavior spec.md
// §4.8 calls for; build with -tags wsdebug to let callback panics
// propagate (see session_debug.go).
func recoverCallback(err *error) {
	if recover() != nil {
		*err = nil
	}
}
