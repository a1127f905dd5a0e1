package grayarch

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/bodgit/grayarch/barch"
	"github.com/bodgit/grayarch/bmp"
	"github.com/bodgit/grayarch/raster"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRaster(t *testing.T, width, height int) *raster.Raster {
	t.Helper()
	r, err := raster.New(width, height)
	require.NoError(t, err)
	for y := 1; y < height; y++ {
		row := r.Row(y)
		for x := range row {
			switch (x + y) % 3 {
			case 0:
				row[x] = raster.Black
			case 1:
				row[x] = byte(x * y)
			}
		}
	}
	return r
}

func writeBMP(t *testing.T, dir, name string, r *raster.Raster) string {
	t.Helper()
	file := filepath.Join(dir, name)
	require.NoError(t, bmp.Store(file, r))
	return file
}

func TestDirectionOf(t *testing.T) {
	tables := map[string]struct {
		direction Direction
		err       error
	}{
		"a.bmp":         {Encode, nil},
		"dir/A.BMP":     {Encode, nil},
		"a.barch":       {Decode, nil},
		"a.BArch":       {Decode, nil},
		"a.png":         {0, ErrUnsupported},
		"a.txt":         {0, ErrUnsupported},
		"bmp":           {0, ErrUnsupported},
		"a.barch.bak":   {0, ErrUnsupported},
		"archive.bmp.x": {0, ErrUnsupported},
	}

	for name, table := range tables {
		t.Run(name, func(t *testing.T) {
			d, err := DirectionOf(name)
			assert.Equal(t, table.direction, d)
			if table.err != nil {
				assert.ErrorIs(t, err, table.err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestOutputPath(t *testing.T) {
	dir := filepath.Join("some", "dir")

	assert.Equal(t, filepath.Join(dir, "photopacked.barch"), OutputPath(filepath.Join(dir, "photo.bmp"), Encode))
	assert.Equal(t, filepath.Join(dir, "photounpacked.bmp"), OutputPath(filepath.Join(dir, "photo.barch"), Decode))
	assert.Equal(t, filepath.Join(dir, "photopackedunpacked.bmp"), OutputPath(filepath.Join(dir, "photopacked.barch"), Decode))

	// Everything after the first dot is dropped
	assert.Equal(t, filepath.Join(dir, "apacked.barch"), OutputPath(filepath.Join(dir, "a.b.bmp"), Encode))
}

func TestEncodeDecodeFile(t *testing.T) {
	dir := t.TempDir()
	r := testRaster(t, 13, 7)
	in := writeBMP(t, dir, "image.bmp", r)

	out, err := EncodeFile(in)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "imagepacked.barch"), out)

	m, err := barch.Load(out)
	require.NoError(t, err)
	assert.Equal(t, r, m)

	back, err := DecodeFile(out)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "imagepackedunpacked.bmp"), back)

	m, err = bmp.Load(back)
	require.NoError(t, err)
	assert.Equal(t, r, m)
}

func TestConvertFile(t *testing.T) {
	dir := t.TempDir()
	in := writeBMP(t, dir, "image.bmp", testRaster(t, 4, 4))

	d, out, err := ConvertFile(in)
	require.NoError(t, err)
	assert.Equal(t, Encode, d)

	d, _, err = ConvertFile(out)
	require.NoError(t, err)
	assert.Equal(t, Decode, d)

	_, _, err = ConvertFile(filepath.Join(dir, "notes.txt"))
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestEncodeFileFailures(t *testing.T) {
	dir := t.TempDir()

	_, err := EncodeFile(filepath.Join(dir, "missing.bmp"))
	assert.True(t, errors.Is(err, os.ErrNotExist))

	bad := filepath.Join(dir, "bad.bmp")
	require.NoError(t, os.WriteFile(bad, []byte("not a bitmap at all, just some text that is long enough for a header"), 0o644))

	_, err = EncodeFile(bad)
	var fe bmp.FormatError
	assert.ErrorAs(t, err, &fe)

	// No output is left behind
	_, err = os.Stat(OutputPath(bad, Encode))
	assert.True(t, os.IsNotExist(err))
}

func TestDecodeFileFailures(t *testing.T) {
	dir := t.TempDir()

	b, err := barch.Compress(testRaster(t, 8, 4))
	require.NoError(t, err)

	truncated := filepath.Join(dir, "truncated.barch")
	require.NoError(t, os.WriteFile(truncated, b[:len(b)-3], 0o644))

	_, err = DecodeFile(truncated)
	var fe barch.FormatError
	assert.ErrorAs(t, err, &fe)

	_, err = os.Stat(OutputPath(truncated, Decode))
	assert.True(t, os.IsNotExist(err))
}
