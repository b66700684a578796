// Package statevector implements Surefire's typed, contiguous,
// bit-exact shared-memory data store: Element, Region, and
// StateVector.
package statevector

import (
	"encoding/binary"

	"j5.nz/surefire/scalar"
)

// Elem is the dynamic, type-erased handle every runtime component
// (expression tree, action, assembler) reads and writes through. It
// exposes a uniform read/write/type/addr/size contract without
// monomorphizing over all eleven scalar kinds — see DESIGN.md's
// "tagged variant over template specialization" note.
//
// Elem is a thin view onto one cell of externally owned backing
// bytes; it is only ever constructed by a StateVector and is valid
// for exactly that StateVector's lifetime.
type Elem struct {
	backing *[]byte
	kind    scalar.Kind
	off     int
}

// Type returns the scalar kind this element was declared with.
func (e Elem) Type() scalar.Kind { return e.kind }

// Addr returns the element's stable byte offset inside its backing
// store: stable for the lifetime of the state vector, comparable, and
// meaningful for computing region coverage.
func (e Elem) Addr() int { return e.off }

// Size returns sizeof(T) for this element's kind.
func (e Elem) Size() int { return e.kind.Size() }

// Read returns the element's current value.
func (e Elem) Read() scalar.Value {
	b := (*e.backing)[e.off : e.off+e.kind.Size()]
	return scalar.DecodeValue(e.kind, b)
}

// Write safely casts v to this element's kind and stores it.
func (e Elem) Write(v scalar.Value) {
	b := (*e.backing)[e.off : e.off+e.kind.Size()]
	scalar.EncodeValue(e.kind, b, scalar.SafeCast(e.kind, v))
}

// ReadF64 is a convenience for the expression engine: the current
// value coerced to float64.
func (e Elem) ReadF64() float64 { return e.Read().AsF64() }

// ReadU64 and WriteU64 give the state machine executor exact,
// non-lossy access to u64 elements (global time, state time). The
// executor's monotonic-time bookkeeping must not be routed through
// the expression engine's float64 pivot: nanosecond epoch timestamps
// routinely exceed 2^53 and would lose precision. The caller is
// responsible for only calling these on U64 elements (the
// assembler's reserved-alias binding guarantees this for G and T).
func (e Elem) ReadU64() uint64 {
	return binary.NativeEndian.Uint64((*e.backing)[e.off : e.off+8])
}

func (e Elem) WriteU64(v uint64) {
	binary.NativeEndian.PutUint64((*e.backing)[e.off:e.off+8], v)
}

// ReadU32 and WriteU32 give the executor exact access to the u32
// state element, for the same reason as ReadU64/WriteU64.
func (e Elem) ReadU32() uint32 {
	return binary.NativeEndian.Uint32((*e.backing)[e.off : e.off+4])
}

func (e Elem) WriteU32(v uint32) {
	binary.NativeEndian.PutUint32((*e.backing)[e.off:e.off+4], v)
}

// Element[T] is the public, Go-generic typed handle for callers who
// know T at compile time (the facade's GetElement[T]). Internally it
// simply wraps an Elem.
type Element[T scalar.Native] struct{ e Elem }

// Read returns the element's current value as a native Go T.
func (h Element[T]) Read() T {
	b := (*h.e.backing)[h.e.off : h.e.off+h.e.kind.Size()]
	return scalar.Decode[T](b)
}

// Write stores v, encoded to this element's byte width.
func (h Element[T]) Write(v T) {
	b := (*h.e.backing)[h.e.off : h.e.off+h.e.kind.Size()]
	scalar.Encode[T](b, v)
}

// Type, Addr, and Size delegate to the underlying dynamic handle.
func (h Element[T]) Type() scalar.Kind { return h.e.Type() }
func (h Element[T]) Addr() int         { return h.e.Addr() }
func (h Element[T]) Size() int         { return h.e.Size() }
