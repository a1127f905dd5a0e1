/*
Package raster defines the in-memory 8-bit grayscale image shared by the BMP
and BARCH codecs.

Pixels are stored row-major without padding, row 0 being the topmost row.
*/
package raster

import (
	"errors"
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/ericpauley/go-quantize/quantize"
)

const (
	// MaxPixels bounds width*height so a hostile header can't force a huge
	// allocation
	MaxPixels = 1 << 28

	// White is the value of a blank pixel
	White = 0xff
	// Black is the value of a fully dark pixel
	Black = 0x00
)

var (
	// ErrDimensions is returned for a raster with a non-positive or
	// oversized width or height
	ErrDimensions = errors.New("raster: invalid dimensions")
	// ErrPixels is returned when the pixel buffer doesn't match the
	// dimensions
	ErrPixels = errors.New("raster: pixel buffer length mismatch")
)

// Raster is a grayscale image with one byte per pixel.
type Raster struct {
	Width  int
	Height int
	Pix    []byte
}

// New returns a width by height raster with every pixel set to White.
func New(width, height int) (*Raster, error) {
	if !ValidDimensions(width, height) {
		return nil, ErrDimensions
	}
	r := &Raster{
		Width:  width,
		Height: height,
		Pix:    make([]byte, width*height),
	}
	for i := range r.Pix {
		r.Pix[i] = White
	}
	return r, nil
}

// ValidDimensions reports whether width and height are both positive, fit in
// a signed 32-bit integer and describe no more than MaxPixels pixels.
func ValidDimensions(width, height int) bool {
	if width <= 0 || height <= 0 || width > math.MaxInt32 || height > math.MaxInt32 {
		return false
	}
	return int64(width)*int64(height) <= MaxPixels
}

// Validate checks the dimensions agree with the pixel data.
func (r *Raster) Validate() error {
	if !ValidDimensions(r.Width, r.Height) {
		return ErrDimensions
	}
	if len(r.Pix) != r.Width*r.Height {
		return ErrPixels
	}
	return nil
}

// Row returns the pixels of row y.
func (r *Raster) Row(y int) []byte {
	return r.Pix[y*r.Width : (y+1)*r.Width]
}

// Gray returns an image.Gray sharing the pixel buffer.
func (r *Raster) Gray() *image.Gray {
	return &image.Gray{
		Pix:    r.Pix,
		Stride: r.Width,
		Rect:   image.Rect(0, 0, r.Width, r.Height),
	}
}

// FromImage converts m to grayscale using color.GrayModel. An *image.Gray
// is copied as is.
func FromImage(m image.Image) (*Raster, error) {
	b := m.Bounds()
	r, err := New(b.Dx(), b.Dy())
	if err != nil {
		return nil, err
	}

	if g, ok := m.(*image.Gray); ok {
		for y := 0; y < r.Height; y++ {
			i := g.PixOffset(b.Min.X, b.Min.Y+y)
			copy(r.Row(y), g.Pix[i:i+r.Width])
		}
		return r, nil
	}

	draw.Draw(r.Gray(), r.Gray().Bounds(), m, b.Min, draw.Src)
	return r, nil
}

// Quantize converts m to grayscale using no more than levels distinct gray
// values, chosen by median cut. Fewer levels mean longer runs of pure black
// and white which compress better. A levels value outside 2-256 converts
// without reduction.
func Quantize(m image.Image, levels int) (*Raster, error) {
	gray, err := FromImage(m)
	if err != nil {
		return nil, err
	}
	if levels < 2 || levels > 256 {
		return gray, nil
	}

	q := quantize.MedianCutQuantizer{}
	p := q.Quantize(make(color.Palette, 0, levels), gray.Gray())

	// Palette entries are already gray but may carry alpha from the
	// quantizer, so normalise them through the gray model
	lut := make([]byte, len(p))
	for i, c := range p {
		lut[i] = color.GrayModel.Convert(c).(color.Gray).Y
	}

	pm := image.NewPaletted(gray.Gray().Bounds(), p)
	draw.Draw(pm, pm.Bounds(), gray.Gray(), image.Point{}, draw.Src)

	for i, idx := range pm.Pix {
		gray.Pix[i] = lut[idx]
	}
	return gray, nil
}
