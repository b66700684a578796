package scalar

import "math"

// Value is a dynamically typed scalar carried through the expression
// tree. Numeric kinds (integer or float) are held in F; Bool is held
// in B. This mirrors the runtime's f64 pivot: arithmetic and
// comparisons coerce every operand to F before operating, and the
// result is safely cast back to the destination kind (see SafeCast).
type Value struct {
	Kind Kind
	F    float64
	B    bool
}

// FromFloat builds a numeric Value of kind k from a float64.
func FromFloat(k Kind, f float64) Value { return Value{Kind: k, F: f} }

// FromBool builds a Value of kind Bool.
func FromBool(b bool) Value { return Value{Kind: Bool, B: b} }

// AsF64 coerces v to float64: any numeric value yields its float64
// representation; a bool yields 0 or 1.
func (v Value) AsF64() float64 {
	if v.Kind == Bool {
		if v.B {
			return 1
		}
		return 0
	}
	return v.F
}

// AsBool coerces v to bool: for Bool it is the stored flag; for any
// numeric kind, nonzero is true.
func (v Value) AsBool() bool {
	if v.Kind == Bool {
		return v.B
	}
	return v.F != 0
}

var intRange = map[Kind][2]float64{
	I8:  {-128, 127},
	I16: {-32768, 32767},
	I32: {-2147483648, 2147483647},
	I64: {-9223372036854775808, 9223372036854775807},
	U8:  {0, 255},
	U16: {0, 65535},
	U32: {0, 4294967295},
	U64: {0, 18446744073709551615},
}

// SafeCast converts v (of any kind) to the destination kind:
// float→integer truncates toward zero and clamps to the
// destination's representable range, mapping NaN to 0; integer
// widening is value preserving; integer narrowing truncates using
// two's-complement semantics; any→bool maps nonzero to true.
func SafeCast(dst Kind, v Value) Value {
	if dst == Bool {
		return Value{Kind: Bool, B: v.AsBool()}
	}
	if dst.IsFloat() {
		f := v.AsF64()
		if dst == F32 {
			f = float64(float32(f))
		}
		return Value{Kind: dst, F: f}
	}

	// Destination is an integer kind.
	if v.Kind.IsFloat() || v.Kind == Bool {
		f := v.AsF64()
		if math.IsNaN(f) {
			f = 0
		}
		f = math.Trunc(f)
		rng := intRange[dst]
		if f < rng[0] {
			f = rng[0]
		} else if f > rng[1] {
			f = rng[1]
		}
		return Value{Kind: dst, F: f}
	}

	// Integer → integer: widen (value preserving) or narrow
	// (two's-complement truncation), expressed through Go's own
	// integer conversion semantics.
	if dst.IsSigned() {
		var i64 int64
		if v.Kind.IsSigned() {
			i64 = int64(v.F)
		} else {
			i64 = int64(uint64(v.F))
		}
		switch dst {
		case I8:
			return Value{Kind: dst, F: float64(int8(i64))}
		case I16:
			return Value{Kind: dst, F: float64(int16(i64))}
		case I32:
			return Value{Kind: dst, F: float64(int32(i64))}
		default: // I64
			return Value{Kind: dst, F: float64(i64)}
		}
	}
	var u64 uint64
	if v.Kind.IsSigned() {
		u64 = uint64(int64(v.F))
	} else {
		u64 = uint64(v.F)
	}
	switch dst {
	case U8:
		return Value{Kind: dst, F: float64(uint8(u64))}
	case U16:
		return Value{Kind: dst, F: float64(uint16(u64))}
	case U32:
		return Value{Kind: dst, F: float64(uint32(u64))}
	default: // U64
		return Value{Kind: dst, F: float64(u64)}
	}
}
