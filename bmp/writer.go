package bmp

import (
	"io"

	"github.com/bodgit/grayarch/internal/safefile"
	"github.com/bodgit/grayarch/raster"
)

type encoder struct {
	w io.Writer
}

func (e *encoder) encode(m *raster.Raster) error {
	s := stride(m.Width)
	imageSize := uint32(s * m.Height)

	fh := fileHeader{
		Type:    signature,
		Size:    pixelOffset + imageSize,
		OffBits: pixelOffset,
	}
	ih := infoHeader{
		Size:            infoHeaderLen,
		Width:           int32(m.Width),
		Height:          int32(m.Height),
		Planes:          1,
		BitCount:        bitCount,
		Compression:     biRGB,
		SizeImage:       imageSize,
		XPelsPerMeter:   pixelsPerM,
		YPelsPerMeter:   pixelsPerM,
		ColorsUsed:      paletteLen,
		ColorsImportant: paletteLen,
	}

	var header [headerLen]byte
	fh.marshal(header[:fileHeaderLen])
	ih.marshal(header[fileHeaderLen:])

	if _, err := e.w.Write(header[:]); err != nil {
		return err
	}

	// Grayscale palette, each entry is blue, green, red, reserved
	var palette [paletteBytes]byte
	for i := 0; i < paletteLen; i++ {
		palette[i*4+0] = byte(i)
		palette[i*4+1] = byte(i)
		palette[i*4+2] = byte(i)
	}
	if _, err := e.w.Write(palette[:]); err != nil {
		return err
	}

	// Rows bottom to top, the padding bytes stay zero
	row := make([]byte, s)
	for y := m.Height - 1; y >= 0; y-- {
		copy(row, m.Row(y))
		if _, err := e.w.Write(row); err != nil {
			return err
		}
	}

	return nil
}

// Encode writes the raster m to w as an 8-bit grayscale bitmap.
func Encode(w io.Writer, m *raster.Raster) error {
	if err := m.Validate(); err != nil {
		return err
	}

	e := encoder{w: w}

	return e.encode(m)
}

// Store writes the raster m to file. The file is only created if the whole
// bitmap was written successfully.
func Store(file string, m *raster.Raster) error {
	if err := m.Validate(); err != nil {
		return err
	}

	return safefile.Write(file, func(w io.Writer) error {
		return Encode(w, m)
	})
}
