// Package rpcerr defines the error kinds shared across the RPC runtime.
//
// Every layer of the runtime — wire framing, payload codec, procedure registry,
// connection handler, server, client — returns one of these sentinels (or a
// value wrapping one, via fmt.Errorf("...: %w", ...)) so callers can use
// errors.Is to branch on failure kind without caring which layer produced it.
package rpcerr

import "errors"

var (
	// ErrInvalidArguments is returned when a required argument is nil or empty
	// at an API boundary (e.g. Register with an empty name or nil handler).
	ErrInvalidArguments = errors.New("rpc: invalid arguments")

	// ErrInvalidName is returned when a procedure name contains a byte outside
	// the printable ASCII range 32-126.
	ErrInvalidName = errors.New("rpc: invalid procedure name")

	// ErrMemoryAllocation is returned when a length-prefixed allocation would
	// exceed what this host can address, so it is refused before attempting it.
	ErrMemoryAllocation = errors.New("rpc: allocation refused")

	// ErrAddressInfo is returned when address resolution fails during Dial or Serve.
	ErrAddressInfo = errors.New("rpc: address resolution failed")

	// ErrSocketCreation is returned when the listening or dialed socket cannot be created.
	ErrSocketCreation = errors.New("rpc: socket creation failed")

	// ErrNetworkFailure is returned when a read or write fails for a reason other
	// than a clean peer close.
	ErrNetworkFailure = errors.New("rpc: network failure")

	// ErrConnectionLost is returned when the peer closed the connection before
	// the expected number of bytes arrived.
	ErrConnectionLost = errors.New("rpc: connection lost")

	// ErrOverlength is returned when a size or integer field exceeds the range
	// its wire representation, or the payload's data1 contract, permits.
	ErrOverlength = errors.New("rpc: value out of range")

	// ErrInconsistentData is returned when a payload violates the data2_len/data2
	// consistency invariant.
	ErrInconsistentData = errors.New("rpc: inconsistent payload")

	// ErrHandlerNotFound is returned when a FIND names an unregistered procedure,
	// or a CALL presents an id with no resolved handler.
	ErrHandlerNotFound = errors.New("rpc: handler not found")

	// ErrInsertion is returned when the registry's keyed map reports an insert failure.
	ErrInsertion = errors.New("rpc: registry insertion failed")

	// ErrThread is returned when a connection worker could not be started.
	ErrThread = errors.New("rpc: worker start failed")

	// ErrProtocol is returned when a frame carries an unrecognized flag byte.
	ErrProtocol = errors.New("rpc: protocol error")

	// ErrClosed is returned by operations attempted on a closed session or server.
	ErrClosed = errors.New("rpc: closed")
)
