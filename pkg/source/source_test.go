package source

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"volslice/internal/models"
	"volslice/pkg/volume"
)

// TestReadPVM1 verifies a plain PVM file
func TestReadPVM1(t *testing.T) {
	in := "PVM\n2 2 1\n1\n" + string([]byte{0, 10, 20, 40})
	vol, err := ReadPVM(strings.NewReader(in), "tiny")
	require.NoError(t, err)

	assert.Equal(t, "tiny", vol.Name())
	assert.Equal(t, models.Extents{X: 2, Y: 2, Z: 1}, vol.Extents())
	assert.Equal(t, r3.Vec{X: 1, Y: 1, Z: 1}, vol.Spacing())

	v, err := vol.Sample(1, 1, 0, 0)
	require.NoError(t, err)
	assert.InDelta(t, 40, v, 1e-4)
	n, err := vol.SampleNormalized(1, 0, 0, 0)
	require.NoError(t, err)
	assert.InDelta(t, 0.25, n, 1e-6)
}

// TestReadPVM3WithSpacingAndTrailer verifies PVM3 spacing and trailing metadata
func TestReadPVM3WithSpacingAndTrailer(t *testing.T) {
	var b bytes.Buffer
	b.WriteString("PVM3\n1 1 2\n0.5 0.5 2\n2\n")
	b.Write([]byte{1, 200, 3, 100})
	b.WriteString("description\x00courtesy\x00")

	raw, err := ReadRaw(&b, "v3")
	require.NoError(t, err)
	assert.Equal(t, r3.Vec{X: 0.5, Y: 0.5, Z: 2}, raw.Header.Spacing)
	assert.Equal(t, 2, raw.Header.Components)
	assert.Equal(t, []byte{1, 200, 3, 100}, raw.Data)

	vol, err := raw.Volume()
	require.NoError(t, err)
	assert.True(t, vol.IsVectorField())
	// the last byte of each voxel is component 0
	lo, err := vol.Sample(0, 0, 1, 0)
	require.NoError(t, err)
	assert.InDelta(t, 100, lo, 1e-4)
	hi, err := vol.Sample(0, 0, 1, 1)
	require.NoError(t, err)
	assert.InDelta(t, 3, hi, 1e-4)
}

// TestReadRejectsBadInput verifies malformed and DDS compressed files fail
func TestReadRejectsBadInput(t *testing.T) {
	_, err := ReadPVM(strings.NewReader("DDS v3d\n..."), "dds")
	assert.ErrorIs(t, err, ErrCompressedPVM)

	_, err = ReadPVM(strings.NewReader("P6\n1 1\n255\n"), "ppm")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = ReadPVM(strings.NewReader("PVM\n2 x 1\n1\n"), "bad")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = ReadPVM(strings.NewReader("PVM\n2 2 0\n1\n"), "empty")
	assert.ErrorIs(t, err, volume.ErrInvalidVolume)

	_, err = ReadPVM(strings.NewReader("PVM\n2 2 2\n1\n\x01\x02"), "short")
	assert.ErrorIs(t, err, volume.ErrInvalidVolume)

	_, err = ReadPVM(strings.NewReader("PVM\n2 2"), "truncated")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

// TestWriteReadRoundTrip verifies written volumes read back unchanged
func TestWriteReadRoundTrip(t *testing.T) {
	raw, err := Phantom("sphere", models.Extents{X: 9, Y: 7, Z: 5})
	require.NoError(t, err)

	var unit bytes.Buffer
	require.NoError(t, WritePVM(&unit, raw))
	assert.True(t, strings.HasPrefix(unit.String(), "PVM\n9 7 5\n1\n"))

	raw.Header.Spacing = r3.Vec{X: 1, Y: 1, Z: 2.5}
	var scaled bytes.Buffer
	require.NoError(t, WritePVM(&scaled, raw))
	assert.True(t, strings.HasPrefix(scaled.String(), "PVM2\n9 7 5\n1 1 2.5\n1\n"))

	back, err := ReadRaw(&scaled, raw.Header.Name)
	require.NoError(t, err)
	assert.Equal(t, raw.Header, back.Header)
	assert.Equal(t, raw.Data, back.Data)

	raw.Data = raw.Data[1:]
	assert.ErrorIs(t, WritePVM(&bytes.Buffer{}, raw), volume.ErrInvalidVolume)
}

// TestCompressedFiles verifies gzip, zstd and snappy files by suffix
func TestCompressedFiles(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping file round trips in short mode")
	}
	raw, err := Phantom("shells", models.Extents{X: 16, Y: 16, Z: 8})
	require.NoError(t, err)
	dir := t.TempDir()

	for _, name := range []string{"plain.pvm", "vol.pvm.gz", "vol.pvm.zst", "vol.pvm.sz"} {
		path := filepath.Join(dir, name)
		require.NoError(t, Create(path, raw), name)

		back, err := OpenRaw(path)
		require.NoError(t, err, name)
		assert.Equal(t, raw.Data, back.Data, name)

		vol, err := Open(path)
		require.NoError(t, err, name)
		assert.Equal(t, path, vol.Name())
		assert.Equal(t, raw.Header.Extents, vol.Extents())
	}

	plain, err := os.ReadFile(filepath.Join(dir, "plain.pvm"))
	require.NoError(t, err)
	packed, err := os.ReadFile(filepath.Join(dir, "vol.pvm.zst"))
	require.NoError(t, err)
	assert.Less(t, len(packed), len(plain))

	_, err = Open(filepath.Join(dir, "missing.pvm"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

// TestCompressionFor verifies compression is chosen by suffix
func TestCompressionFor(t *testing.T) {
	assert.Equal(t, Gzip, CompressionFor("a/Baby.PVM.GZ"))
	assert.Equal(t, Zstd, CompressionFor("fuel.pvm.zst"))
	assert.Equal(t, Snappy, CompressionFor("x.sz"))
	assert.Equal(t, None, CompressionFor("CT-Head.pvm"))

	_, err := NewReader(strings.NewReader(""), Compression("lz4"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

// TestPhantoms verifies every synthetic shape builds a valid volume
func TestPhantoms(t *testing.T) {
	ext := models.Extents{X: 11, Y: 11, Z: 11}
	assert.Equal(t, []string{"constant", "gradient", "shells", "sphere"}, Shapes())

	sphere, err := Phantom("sphere", ext)
	require.NoError(t, err)
	center := 5 + 5*11 + 5*121
	assert.Equal(t, byte(255), sphere.Data[center])
	assert.Equal(t, byte(0), sphere.Data[0])

	grad, err := Phantom("gradient", ext)
	require.NoError(t, err)
	assert.Equal(t, byte(0), grad.Data[0])
	assert.Equal(t, byte(255), grad.Data[10])
	assert.Equal(t, byte(128), grad.Data[5])

	flat, err := Phantom("constant", ext)
	require.NoError(t, err)
	vol, err := flat.Volume()
	require.NoError(t, err)
	v, err := vol.SampleNormalized(3, 4, 5, 0)
	require.NoError(t, err)
	assert.Equal(t, 0.0, v)

	_, err = Phantom("torus", ext)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
	_, err = Phantom("sphere", models.Extents{X: 0, Y: 1, Z: 1})
	assert.ErrorIs(t, err, volume.ErrInvalidVolume)
}
