package statevector_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"j5.nz/surefire/errs"
	"j5.nz/surefire/scalar"
	"j5.nz/surefire/statevector"
)

func sampleRegions() []statevector.RegionSpec {
	return []statevector.RegionSpec{
		{
			Name: "Nav",
			Elements: []statevector.ElementSpec{
				{Name: "foo", Kind: scalar.U32},
				{Name: "bar", Kind: scalar.F32},
			},
		},
		{
			Name: "Power",
			Elements: []statevector.ElementSpec{
				{Name: "volts", Kind: scalar.F64},
			},
		},
	}
}

func TestBuildWithRegionsHappyPath(t *testing.T) {
	sv, err := statevector.BuildWithRegions(sampleRegions())
	require.NoError(t, err)
	require.True(t, sv.Built())

	foo, err := statevector.GetElement[uint32](sv, "foo")
	require.NoError(t, err)
	foo.Write(42)
	require.Equal(t, uint32(42), foo.Read())

	region, err := sv.GetRegion("Nav")
	require.NoError(t, err)
	require.Equal(t, 8, region.Size()) // u32 + f32

	require.Equal(t, []string{"foo", "bar", "volts"}, sv.ElementNames())
}

func TestBuildWithRegionsRejectsDuplicateElement(t *testing.T) {
	regions := sampleRegions()
	regions[1].Elements = append(regions[1].Elements, statevector.ElementSpec{Name: "foo", Kind: scalar.U8})
	_, err := statevector.BuildWithRegions(regions)
	require.Error(t, err)
	require.True(t, errs.Is(err, errs.ElemDupe))
}

func TestBuildWithRegionsRejectsEmptyRegion(t *testing.T) {
	regions := []statevector.RegionSpec{{Name: "Empty"}}
	_, err := statevector.BuildWithRegions(regions)
	require.Error(t, err)
	require.True(t, errs.Is(err, errs.CfgEmptyRegion))
}

func TestBuildWithRegionsRejectsNoRegions(t *testing.T) {
	_, err := statevector.BuildWithRegions(nil)
	require.Error(t, err)
}

func TestGetElementTypeMismatch(t *testing.T) {
	sv, err := statevector.BuildWithRegions(sampleRegions())
	require.NoError(t, err)
	_, err = statevector.GetElement[int8](sv, "foo")
	require.Error(t, err)
	require.True(t, errs.Is(err, errs.TypeMismatch))
}

func TestGetElementNotFound(t *testing.T) {
	sv, err := statevector.BuildWithRegions(sampleRegions())
	require.NoError(t, err)
	_, err = statevector.GetElement[uint32](sv, "missing")
	require.Error(t, err)
	require.True(t, errs.Is(err, errs.KeyNotFound))
}

func TestZeroValueStateVectorIsUninitialized(t *testing.T) {
	var sv statevector.StateVector
	require.False(t, sv.Built())
	_, err := sv.GetElemDynamic("anything")
	require.Error(t, err)
	require.True(t, errs.Is(err, errs.Uninitialized))
}

func TestRegionWriteReadRoundTrip(t *testing.T) {
	sv, err := statevector.BuildWithRegions(sampleRegions())
	require.NoError(t, err)
	region, err := sv.GetRegion("Power")
	require.NoError(t, err)

	payload := make([]byte, region.Size())
	require.NoError(t, region.Write(payload))
	require.Error(t, region.Write(make([]byte, region.Size()+1)))

	out := make([]byte, region.Size())
	require.NoError(t, region.Read(out))
}

func TestBuildFlat(t *testing.T) {
	sv, err := statevector.BuildFlat([]statevector.ElementSpec{
		{Name: "T", Kind: scalar.U64},
		{Name: "x", Kind: scalar.F64},
	})
	require.NoError(t, err)
	require.Equal(t, []string{"T", "x"}, sv.ElementNames())
	_, err = sv.GetRegion("anything")
	require.Error(t, err, "a flat state vector has no regions")
}
