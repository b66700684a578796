package scalar_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"j5.nz/surefire/scalar"
)

func TestKindNamesAndSizes(t *testing.T) {
	require.Equal(t, "I8", scalar.I8.String())
	require.Equal(t, "BOOL", scalar.Bool.String())
	require.Equal(t, 1, scalar.I8.Size())
	require.Equal(t, 8, scalar.U64.Size())
	require.True(t, scalar.I8.Valid())
	require.False(t, scalar.Kind(99).Valid())
}

func TestLookup(t *testing.T) {
	k, ok := scalar.Lookup("U32")
	require.True(t, ok)
	require.Equal(t, scalar.U32, k)

	k, ok = scalar.Lookup("bool")
	require.True(t, ok)
	require.Equal(t, scalar.Bool, k)

	k, ok = scalar.Lookup("BOOL")
	require.True(t, ok)
	require.Equal(t, scalar.Bool, k)

	_, ok = scalar.Lookup("Bool")
	require.False(t, ok, "mixed-case bool spelling is not accepted")

	_, ok = scalar.Lookup("U9")
	require.False(t, ok)
}

func TestKindOfAndCodec(t *testing.T) {
	require.Equal(t, scalar.I32, scalar.KindOf[int32]())
	require.Equal(t, scalar.Bool, scalar.KindOf[bool]())

	b := make([]byte, 4)
	scalar.Encode[int32](b, -7)
	require.Equal(t, int32(-7), scalar.Decode[int32](b))

	b2 := make([]byte, 1)
	scalar.Encode[bool](b2, true)
	require.True(t, scalar.Decode[bool](b2))
}

func TestSafeCastFloatToIntClampsAndTruncates(t *testing.T) {
	v := scalar.SafeCast(scalar.U8, scalar.FromFloat(scalar.F64, 300))
	require.Equal(t, float64(255), v.F)

	v = scalar.SafeCast(scalar.I8, scalar.FromFloat(scalar.F64, -200))
	require.Equal(t, float64(-128), v.F)

	v = scalar.SafeCast(scalar.I32, scalar.FromFloat(scalar.F64, 3.9))
	require.Equal(t, float64(3), v.F, "truncates toward zero, not rounds")

	v = scalar.SafeCast(scalar.U32, scalar.FromFloat(scalar.F64, -1))
	require.Equal(t, float64(0), v.F)
}

func TestSafeCastNaNToZero(t *testing.T) {
	nan := scalar.FromFloat(scalar.F64, 0)
	nan.F = nan.F / nan.F // produce NaN without a compile-time constant-fold error
	v := scalar.SafeCast(scalar.I16, nan)
	require.Equal(t, float64(0), v.F)
}

func TestSafeCastAnyToBool(t *testing.T) {
	require.True(t, scalar.SafeCast(scalar.Bool, scalar.FromFloat(scalar.F64, 5)).B)
	require.False(t, scalar.SafeCast(scalar.Bool, scalar.FromFloat(scalar.F64, 0)).B)
}

func TestSafeCastIntegerNarrowingWraps(t *testing.T) {
	v := scalar.SafeCast(scalar.I8, scalar.FromFloat(scalar.I32, 300))
	require.Equal(t, float64(44), v.F) // 300 mod 256
}

func TestValueCoercion(t *testing.T) {
	require.Equal(t, 1.0, scalar.FromBool(true).AsF64())
	require.Equal(t, 0.0, scalar.FromBool(false).AsF64())
	require.True(t, scalar.FromFloat(scalar.F64, 3).AsBool())
	require.False(t, scalar.FromFloat(scalar.F64, 0).AsBool())
}
