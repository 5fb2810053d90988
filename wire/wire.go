// Package wire implements the length-prefixed binary primitives the RPC runtime
// frames every request and response unit with.
//
// Four primitives are defined, all big-endian on the wire:
//
//	flag   1 byte             one of a small set of known request/response markers
//	size   4 bytes, unsigned  a length that precedes a variable-length field
//	int64  8 bytes, signed    a host int carried wide enough to cross 32/64-bit hosts
//	bytes  N bytes            raw payload bytes, N supplied out of band
//
// Every read uses io.ReadFull so a short read never silently succeeds; a read
// that hits EOF before the declared count is reported as a lost connection, and
// any other read error is a network failure. Writes rely on net.Conn.Write's
// "all bytes or error" contract for stream sockets — no write loop is needed.
package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/tthomas/go-rpc/rpcerr"
)

// Flag is the one-byte discriminator that opens every request unit and tags
// every response unit.
type Flag byte

// The flag alphabet of the FIND/CALL sub-protocol.
const (
	Find         Flag = 'f' // C->S: begins a find unit
	Call         Flag = 'c' // C->S: begins a call unit
	Found        Flag = 'y' // S->C: find succeeded, id follows
	NotFound     Flag = 'n' // S->C: find failed, no id
	Consistent   Flag = 'g' // S->C: call succeeded, payload follows
	Inconsistent Flag = 'b' // S->C: call result invalid, no payload
)

func (f Flag) String() string {
	switch f {
	case Find:
		return "FIND"
	case Call:
		return "CALL"
	case Found:
		return "FOUND"
	case NotFound:
		return "NOT_FOUND"
	case Consistent:
		return "CONSISTENT"
	case Inconsistent:
		return "INCONSISTENT"
	default:
		return fmt.Sprintf("FLAG(0x%02x)", byte(f))
	}
}

// MaxNameLen bounds the scratch buffer the connection handler and client
// session allocate for an incoming procedure name: at least 1000 bytes is
// required, and 1024 is used here.
const MaxNameLen = 1024

// readFull fills buf completely or reports the short read as a distinct
// connection-lost / network-failure error.
func readFull(r io.Reader, buf []byte) error {
	_, err := io.ReadFull(r, buf)
	if err == nil {
		return nil
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: %v", rpcerr.ErrConnectionLost, err)
	}
	return fmt.Errorf("%w: %v", rpcerr.ErrNetworkFailure, err)
}

// ReadFlag reads one flag byte. An unrecognized value is a protocol error,
// not a short read.
func ReadFlag(r io.Reader) (Flag, error) {
	var buf [1]byte
	if err := readFull(r, buf[:]); err != nil {
		return 0, err
	}
	f := Flag(buf[0])
	switch f {
	case Find, Call, Found, NotFound, Consistent, Inconsistent:
		return f, nil
	default:
		return 0, fmt.Errorf("%w: unknown flag 0x%02x", rpcerr.ErrProtocol, buf[0])
	}
}

// WriteFlag writes one flag byte.
func WriteFlag(w io.Writer, f Flag) error {
	_, err := w.Write([]byte{byte(f)})
	if err != nil {
		return fmt.Errorf("%w: %v", rpcerr.ErrNetworkFailure, err)
	}
	return nil
}

// ReadSize reads a 4-byte unsigned length and rejects one that overflows
// this host's addressable length (on every platform Go targets, uint32
// always fits in int, so this check exists for the contract's sake and to
// guard the downstream ReadBytes allocation).
func ReadSize(r io.Reader) (uint32, error) {
	var buf [4]byte
	if err := readFull(r, buf[:]); err != nil {
		return 0, err
	}
	n := binary.BigEndian.Uint32(buf[:])
	if n > math.MaxInt32 {
		return 0, fmt.Errorf("%w: size %d exceeds host capacity", rpcerr.ErrOverlength, n)
	}
	return n, nil
}

// WriteSize writes a 4-byte unsigned length. The sender-side bound (n <=
// 2^32-1) is automatically satisfied by the uint32 parameter type.
func WriteSize(w io.Writer, n uint32) error {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], n)
	if _, err := w.Write(buf[:]); err != nil {
		return fmt.Errorf("%w: %v", rpcerr.ErrNetworkFailure, err)
	}
	return nil
}

// ReadInt64 reads an 8-byte signed two's-complement integer. The wire width
// is fixed at 64 bits regardless of host int width so traffic between 32-bit
// and 64-bit hosts never silently truncates; on hosts where int is narrower
// than 64 bits the value is range-checked against that host's int bounds.
func ReadInt64(r io.Reader) (int64, error) {
	var buf [8]byte
	if err := readFull(r, buf[:]); err != nil {
		return 0, err
	}
	v := int64(binary.BigEndian.Uint64(buf[:]))
	if !fitsHostInt(v) {
		return 0, fmt.Errorf("%w: int %d exceeds host int range", rpcerr.ErrOverlength, v)
	}
	return v, nil
}

// WriteInt64 writes an 8-byte signed two's-complement integer.
func WriteInt64(w io.Writer, v int64) error {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(v))
	if _, err := w.Write(buf[:]); err != nil {
		return fmt.Errorf("%w: %v", rpcerr.ErrNetworkFailure, err)
	}
	return nil
}

// ReadBytes reads exactly n bytes. n is always supplied out of band by a
// preceding size field; this function performs no additional range check
// beyond the explicit n, per the primitive's contract.
func ReadBytes(r io.Reader, n uint32) ([]byte, error) {
	buf := make([]byte, n)
	if n == 0 {
		return buf, nil
	}
	if err := readFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// WriteBytes writes b verbatim.
func WriteBytes(w io.Writer, b []byte) error {
	if len(b) == 0 {
		return nil
	}
	if _, err := w.Write(b); err != nil {
		return fmt.Errorf("%w: %v", rpcerr.ErrNetworkFailure, err)
	}
	return nil
}

// fitsHostInt reports whether v is representable as this host's native int.
// On amd64/arm64 (int is 64-bit) every int64 fits; the check only bites on
// 32-bit platforms, where the receiver must reject a value exceeding the
// host's signed-int range.
func fitsHostInt(v int64) bool {
	const intSize = 32 << (^uint(0) >> 63)
	if intSize >= 64 {
		return true
	}
	return v >= math.MinInt32 && v <= math.MaxInt32
}
