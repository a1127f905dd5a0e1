package raster

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	r, err := New(3, 2)
	require.NoError(t, err)
	assert.Equal(t, []byte{White, White, White, White, White, White}, r.Pix)
	assert.NoError(t, r.Validate())

	for _, d := range [][2]int{{0, 1}, {1, 0}, {-1, 5}, {5, -1}} {
		_, err := New(d[0], d[1])
		assert.ErrorIs(t, err, ErrDimensions, "%dx%d", d[0], d[1])
	}
}

func TestValidate(t *testing.T) {
	tables := map[string]struct {
		raster Raster
		err    error
	}{
		"valid":          {Raster{2, 2, make([]byte, 4)}, nil},
		"zero width":     {Raster{0, 2, nil}, ErrDimensions},
		"negative":       {Raster{2, -2, nil}, ErrDimensions},
		"short pixels":   {Raster{2, 2, make([]byte, 3)}, ErrPixels},
		"excess pixels":  {Raster{2, 2, make([]byte, 5)}, ErrPixels},
		"missing pixels": {Raster{1, 1, nil}, ErrPixels},
	}

	for name, table := range tables {
		t.Run(name, func(t *testing.T) {
			err := table.raster.Validate()
			if table.err == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, table.err)
		})
	}
}

func TestRowAndGray(t *testing.T) {
	r := &Raster{Width: 3, Height: 2, Pix: []byte{1, 2, 3, 4, 5, 6}}
	assert.Equal(t, []byte{4, 5, 6}, r.Row(1))

	g := r.Gray()
	assert.Equal(t, image.Rect(0, 0, 3, 2), g.Bounds())
	assert.Equal(t, color.Gray{Y: 6}, g.GrayAt(2, 1))
}

func TestFromImage(t *testing.T) {
	// Offset bounds exercise the Min translation
	g := image.NewGray(image.Rect(10, 10, 12, 12))
	g.SetGray(10, 10, color.Gray{Y: 0x10})
	g.SetGray(11, 11, color.Gray{Y: 0x20})

	r, err := FromImage(g)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x10, 0x00, 0x00, 0x20}, r.Pix)

	m := image.NewRGBA(image.Rect(0, 0, 2, 1))
	m.Set(0, 0, color.White)
	m.Set(1, 0, color.Black)

	r, err = FromImage(m)
	require.NoError(t, err)
	assert.Equal(t, []byte{White, Black}, r.Pix)

	_, err = FromImage(image.NewGray(image.Rect(0, 0, 0, 4)))
	assert.ErrorIs(t, err, ErrDimensions)
}

func TestQuantize(t *testing.T) {
	m := image.NewGray(image.Rect(0, 0, 64, 1))
	for x := 0; x < 64; x++ {
		m.SetGray(x, 0, color.Gray{Y: uint8(x * 4)})
	}

	r, err := Quantize(m, 4)
	require.NoError(t, err)

	levels := make(map[byte]struct{})
	for _, p := range r.Pix {
		levels[p] = struct{}{}
	}
	assert.LessOrEqual(t, len(levels), 4)

	// Out of range disables the reduction
	r, err = Quantize(m, 0)
	require.NoError(t, err)
	assert.Equal(t, m.Pix, r.Pix)
}
