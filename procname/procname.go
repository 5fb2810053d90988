// Package procname validates procedure names against the wire alphabet
// shared by both the server's register/find and the client's find: every
// byte must lie in the printable ASCII range 32-126 inclusive.
//
// It is intentionally tiny and dependency-free; both server-side Register
// and client-side Find call ValidateName so the rule can never drift between
// the two sides of the protocol.
package procname

import "github.com/tthomas/go-rpc/rpcerr"

// MaxLen is the upper bound on name length: at least 1000 bytes is required,
// and 1024 is used here.
const MaxLen = 1024

// Validate reports an error if name is empty, longer than MaxLen, or
// contains any byte outside the printable ASCII range 32-126.
func Validate(name string) error {
	if name == "" {
		return rpcerr.ErrInvalidArguments
	}
	if len(name) > MaxLen {
		return rpcerr.ErrInvalidName
	}
	for i := 0; i < len(name); i++ {
		b := name[i]
		if b < 32 || b > 126 {
			return rpcerr.ErrInvalidName
		}
	}
	return nil
}
