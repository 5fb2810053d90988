// Package payload implements the (data1, data2_len, data2) record exchanged
// by every CALL unit, layered directly on package wire.
//
// Encoding order on the wire is fixed: int data1, then size data2_len, then
// (if data2_len > 0) the data2 bytes themselves. Decoding mirrors the order.
// Both directions enforce the consistency invariant: data2_len == 0 if and
// only if Data2 is absent (nil).
//
// Data2Len is carried as its own field, distinct from len(Data2), so that a
// caller can construct mixed, invalid states (e.g. Data2Len == 1 with
// Data2 == nil) that every trust boundary must reject, instead of those
// states being unrepresentable.
package payload

import (
	"fmt"
	"io"
	"math"

	"github.com/tthomas/go-rpc/rpcerr"
	"github.com/tthomas/go-rpc/wire"
)

// Payload is the atomic value exchanged in both directions of a CALL.
//
// Data1 is semantically a host int but is constrained to the 32-bit signed
// range so it is meaningful on every host involved in a call, independent of
// the wire's own 64-bit framing width (see wire.ReadInt64/WriteInt64).
type Payload struct {
	Data1    int32
	Data2Len uint32
	Data2    []byte // nil means "absent"; must have length Data2Len otherwise
}

// New builds a Payload from a buffer, deriving Data2Len from it. A nil or
// empty b yields the absent representation (Data2Len == 0, Data2 == nil).
func New(data1 int32, b []byte) Payload {
	if len(b) == 0 {
		return Payload{Data1: data1}
	}
	return Payload{Data1: data1, Data2Len: uint32(len(b)), Data2: b}
}

// Consistent reports whether p satisfies the data2_len/data2 invariant.
func (p Payload) Consistent() bool {
	if p.Data2Len == 0 {
		return p.Data2 == nil
	}
	return p.Data2 != nil && uint32(len(p.Data2)) == p.Data2Len
}

// Equal reports whether p and other carry identical fields, used by
// round-trip tests to confirm decode(encode(p)) == p byte-for-byte.
func (p Payload) Equal(other Payload) bool {
	if p.Data1 != other.Data1 || p.Data2Len != other.Data2Len {
		return false
	}
	if (p.Data2 == nil) != (other.Data2 == nil) {
		return false
	}
	if len(p.Data2) != len(other.Data2) {
		return false
	}
	for i := range p.Data2 {
		if p.Data2[i] != other.Data2[i] {
			return false
		}
	}
	return true
}

// Encode writes p to w. It refuses to write anything at all if p violates
// the consistency invariant or Data2Len exceeds the wire's 32-bit size field.
func Encode(w io.Writer, p Payload) error {
	if !p.Consistent() {
		return rpcerr.ErrInconsistentData
	}
	if err := wire.WriteInt64(w, int64(p.Data1)); err != nil {
		return err
	}
	if err := wire.WriteSize(w, p.Data2Len); err != nil {
		return err
	}
	if p.Data2Len == 0 {
		return nil
	}
	return wire.WriteBytes(w, p.Data2)
}

// Decode reads a Payload from r. A data1 outside the 32-bit signed contract,
// or a decoded record that fails the consistency invariant, is reported as
// an error rather than silently returned malformed.
func Decode(r io.Reader) (Payload, error) {
	data1, err := wire.ReadInt64(r)
	if err != nil {
		return Payload{}, err
	}
	if data1 < math.MinInt32 || data1 > math.MaxInt32 {
		return Payload{}, fmt.Errorf("%w: data1 %d outside 32-bit signed range", rpcerr.ErrOverlength, data1)
	}

	n, err := wire.ReadSize(r)
	if err != nil {
		return Payload{}, err
	}

	var data2 []byte
	if n > 0 {
		data2, err = wire.ReadBytes(r, n)
		if err != nil {
			return Payload{}, err
		}
	}

	p := Payload{Data1: int32(data1), Data2Len: n, Data2: data2}
	if !p.Consistent() {
		return Payload{}, rpcerr.ErrInconsistentData
	}
	return p, nil
}
