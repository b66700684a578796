package scalar

import (
	"encoding/binary"
	"math"
)

// Native lists the Go types that back the eleven scalar kinds. It lets
// the public, generic Element[T] API (see package statevector) recover
// a Kind and a byte codec from a Go type parameter, without
// monomorphizing the runtime itself over all eleven kinds (see
// DESIGN.md "tagged variant" note): internally everything flows through
// the dynamic Value/DecodeValue/EncodeValue below.
type Native interface {
	~int8 | ~int16 | ~int32 | ~int64 |
		~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64 | ~bool
}

// KindOf returns the scalar Kind corresponding to Go type T.
func KindOf[T Native]() Kind {
	var zero T
	switch any(zero).(type) {
	case int8:
		return I8
	case int16:
		return I16
	case int32:
		return I32
	case int64:
		return I64
	case uint8:
		return U8
	case uint16:
		return U16
	case uint32:
		return U32
	case uint64:
		return U64
	case float32:
		return F32
	case float64:
		return F64
	case bool:
		return Bool
	default:
		panic("scalar: unsupported native type")
	}
}

// Decode reads a Go value of type T out of b using DecodeValue.
func Decode[T Native](b []byte) T {
	v := DecodeValue(KindOf[T](), b)
	var zero T
	switch any(zero).(type) {
	case int8:
		return any(int8(v.F)).(T)
	case int16:
		return any(int16(v.F)).(T)
	case int32:
		return any(int32(v.F)).(T)
	case int64:
		return any(int64(v.F)).(T)
	case uint8:
		return any(uint8(v.F)).(T)
	case uint16:
		return any(uint16(v.F)).(T)
	case uint32:
		return any(uint32(v.F)).(T)
	case uint64:
		return any(uint64(v.F)).(T)
	case float32:
		return any(float32(v.F)).(T)
	case float64:
		return any(v.F).(T)
	case bool:
		return any(v.B).(T)
	default:
		panic("scalar: unsupported native type")
	}
}

// Encode writes a Go value of type T into b using EncodeValue.
func Encode[T Native](b []byte, v T) {
	k := KindOf[T]()
	switch x := any(v).(type) {
	case bool:
		EncodeValue(k, b, Value{Kind: Bool, B: x})
	default:
		EncodeValue(k, b, Value{Kind: k, F: toFloat(x)})
	}
}

func toFloat(x any) float64 {
	switch n := x.(type) {
	case int8:
		return float64(n)
	case int16:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case uint8:
		return float64(n)
	case uint16:
		return float64(n)
	case uint32:
		return float64(n)
	case uint64:
		return float64(n)
	case float32:
		return float64(n)
	case float64:
		return n
	default:
		panic("scalar: unsupported native type")
	}
}

// DecodeValue reads size(k) bytes from b (host native endianness, no
// padding) and returns the dynamically typed Value it represents.
func DecodeValue(k Kind, b []byte) Value {
	switch k {
	case I8:
		return Value{Kind: k, F: float64(int8(b[0]))}
	case U8:
		return Value{Kind: k, F: float64(b[0])}
	case Bool:
		return Value{Kind: Bool, B: b[0] != 0}
	case I16:
		return Value{Kind: k, F: float64(int16(binary.NativeEndian.Uint16(b)))}
	case U16:
		return Value{Kind: k, F: float64(binary.NativeEndian.Uint16(b))}
	case I32:
		return Value{Kind: k, F: float64(int32(binary.NativeEndian.Uint32(b)))}
	case U32:
		return Value{Kind: k, F: float64(binary.NativeEndian.Uint32(b))}
	case I64:
		return Value{Kind: k, F: float64(int64(binary.NativeEndian.Uint64(b)))}
	case U64:
		return Value{Kind: k, F: float64(binary.NativeEndian.Uint64(b))}
	case F32:
		return Value{Kind: k, F: float64(math.Float32frombits(binary.NativeEndian.Uint32(b)))}
	case F64:
		return Value{Kind: k, F: math.Float64frombits(binary.NativeEndian.Uint64(b))}
	default:
		panic("scalar: invalid kind")
	}
}

// EncodeValue writes v, which must already be of kind k (see
// SafeCast), into b using the host's native endianness.
func EncodeValue(k Kind, b []byte, v Value) {
	switch k {
	case I8:
		b[0] = byte(int8(v.F))
	case U8:
		b[0] = byte(uint8(v.F))
	case Bool:
		if v.B {
			b[0] = 1
		} else {
			b[0] = 0
		}
	case I16:
		binary.NativeEndian.PutUint16(b, uint16(int16(v.F)))
	case U16:
		binary.NativeEndian.PutUint16(b, uint16(v.F))
	case I32:
		binary.NativeEndian.PutUint32(b, uint32(int32(v.F)))
	case U32:
		binary.NativeEndian.PutUint32(b, uint32(v.F))
	case I64:
		binary.NativeEndian.PutUint64(b, uint64(int64(v.F)))
	case U64:
		binary.NativeEndian.PutUint64(b, uint64(v.F))
	case F32:
		binary.NativeEndian.PutUint32(b, math.Float32bits(float32(v.F)))
	case F64:
		binary.NativeEndian.PutUint64(b, math.Float64bits(v.F))
	default:
		panic("scalar: invalid kind")
	}
}
