package interpolation

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"volslice/internal/models"
	"volslice/pkg/volume"
)

// rampVolume stores x + 10y + 100z so every voxel is distinct and the
// field is linear, which trilinear interpolation reproduces exactly.
func rampVolume(t *testing.T, ext models.Extents) *volume.Volume {
	t.Helper()
	raw := make([]float64, ext.Voxels())
	for z := 0; z < ext.Z; z++ {
		for y := 0; y < ext.Y; y++ {
			for x := 0; x < ext.X; x++ {
				raw[x+y*ext.X+z*ext.X*ext.Y] = float64(x + 10*y + 100*z)
			}
		}
	}
	vol, err := volume.New(volume.Header{
		Extents:    ext,
		Components: 1,
		Spacing:    r3.Vec{X: 1, Y: 1, Z: 1},
	}, raw)
	require.NoError(t, err)
	return vol
}

// TestLerp verifies the blend endpoints
func TestLerp(t *testing.T) {
	assert.Equal(t, 2.0, Lerp(2, 6, 0))
	assert.Equal(t, 4.0, Lerp(2, 6, 0.5))
	assert.Equal(t, 0.3, Lerp(0.3, 0.3, 0.77))
}

// TestTrilinearOnGridPointIsExact verifies grid positions return the stored sample
func TestTrilinearOnGridPointIsExact(t *testing.T) {
	ext := models.Extents{X: 4, Y: 3, Z: 5}
	vol := rampVolume(t, ext)

	for z := 0; z < ext.Z; z++ {
		for y := 0; y < ext.Y; y++ {
			for x := 0; x < ext.X; x++ {
				want, err := vol.SampleNormalized(x, y, z, 0)
				require.NoError(t, err)
				got, err := Trilinear(vol, r3.Vec{X: float64(x), Y: float64(y), Z: float64(z)})
				require.NoError(t, err, "at %d,%d,%d", x, y, z)
				assert.Equal(t, want, got)
			}
		}
	}
}

// TestTrilinearLinearField verifies a linear field is reproduced between grid points
func TestTrilinearLinearField(t *testing.T) {
	ext := models.Extents{X: 4, Y: 3, Z: 5}
	vol := rampVolume(t, ext)
	top := float64(3 + 10*2 + 100*4)

	for _, pos := range []r3.Vec{
		{X: 0.5, Y: 0.5, Z: 0.5},
		{X: 2.25, Y: 1.75, Z: 3.1},
		{X: 3, Y: 2, Z: 3.5},
	} {
		got, err := Trilinear(vol, pos)
		require.NoError(t, err)
		want := (pos.X + 10*pos.Y + 100*pos.Z) / top
		assert.InDelta(t, want, got, 1e-6, "at %v", pos)
	}
}

// TestTrilinearLastLayerClamps verifies positions on the last layer reuse it as the high neighbour
func TestTrilinearLastLayerClamps(t *testing.T) {
	ext := models.Extents{X: 3, Y: 3, Z: 3}
	vol := rampVolume(t, ext)

	corner := r3.Vec{X: 2, Y: 2, Z: 2}
	got, err := Trilinear(vol, corner)
	require.NoError(t, err)
	assert.Equal(t, 1.0, got)

	// on the last x layer but between y layers
	got, err = Trilinear(vol, r3.Vec{X: 2, Y: 1.5, Z: 0})
	require.NoError(t, err)
	assert.InDelta(t, (2+15.0)/222, got, 1e-6)
}

// TestCellInterpolateConstant verifies equal corners interpolate to themselves
func TestCellInterpolateConstant(t *testing.T) {
	k := 0.7310000002
	c := Cell{k, k, k, k, k, k, k, k}
	for _, tt := range [][3]float64{{0, 0, 0}, {0.3, 0.6, 0.9}, {0.999, 0.5, 0.001}} {
		assert.Equal(t, k, c.Interpolate(tt[0], tt[1], tt[2]))
	}
}

// TestNearest verifies rounding to the closest voxel
func TestNearest(t *testing.T) {
	ext := models.Extents{X: 4, Y: 3, Z: 5}
	vol := rampVolume(t, ext)

	want, err := vol.SampleNormalized(2, 1, 3, 0)
	require.NoError(t, err)
	got, err := Nearest(vol, r3.Vec{X: 1.6, Y: 1.4, Z: 2.5})
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

// TestInside verifies the inclusive bounds box
func TestInside(t *testing.T) {
	ext := models.Extents{X: 10, Y: 10, Z: 1}
	assert.True(t, Inside(ext, r3.Vec{}))
	assert.True(t, Inside(ext, r3.Vec{X: 9, Y: 9}))
	assert.False(t, Inside(ext, r3.Vec{X: 9.0001}))
	assert.False(t, Inside(ext, r3.Vec{Y: -1e-9}))
	assert.False(t, Inside(ext, r3.Vec{Z: 0.5}))
	assert.False(t, Inside(ext, r3.Vec{X: math.NaN()}))
}

// TestByName verifies kernel lookup
func TestByName(t *testing.T) {
	k, err := ByName("nearest")
	require.NoError(t, err)
	assert.NotNil(t, k)

	_, err = ByName("cubic")
	assert.Error(t, err)
}
