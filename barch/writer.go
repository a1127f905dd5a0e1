package barch

import (
	"image"
	"io"

	"github.com/bodgit/grayarch/bitstream"
	"github.com/bodgit/grayarch/internal/safefile"
	"github.com/bodgit/grayarch/raster"
)

type encoder struct {
	m       *raster.Raster
	bitmap  []byte
	payload *bitstream.Cursor
}

func (e *encoder) writeCode(code uint8, bits int) {
	for i := bits - 1; i >= 0; i-- {
		e.payload.WriteBit(code >> uint(i))
	}
}

// writeGroup classifies exactly the pixels in p, a trailing group may hold
// fewer than four.
func (e *encoder) writeGroup(p []byte) {
	switch {
	case allEqual(p, raster.White):
		e.writeCode(codeWhite, 1)
	case allEqual(p, raster.Black):
		e.writeCode(codeBlack, 2)
	default:
		e.writeCode(codeLiteral, 2)
		for _, b := range p {
			e.payload.WriteByte(b)
		}
	}
}

func (e *encoder) encode() []byte {
	e.bitmap = make([]byte, bitmapLen(e.m.Height))
	e.payload = bitstream.NewWriter()

	for y := 0; y < e.m.Height; y++ {
		row := e.m.Row(y)
		if allEqual(row, raster.White) {
			i, mask := rowBit(y)
			e.bitmap[i] |= mask
			continue
		}
		for x := 0; x < e.m.Width; x += groupLen {
			e.writeGroup(row[x : x+groupCount(x, e.m.Width)])
		}
	}

	payload := e.payload.Bytes()

	out := make([]byte, headerLen, headerLen+len(e.bitmap)+len(payload))
	copy(out, magic[:])
	putDimensions(out[magicLen:headerLen], int32(e.m.Width), int32(e.m.Height))
	out = append(out, e.bitmap...)
	return append(out, payload...)
}

// Compress returns the BARCH encoding of m.
func Compress(m *raster.Raster) ([]byte, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}

	e := encoder{m: m}

	return e.encode(), nil
}

// Encode writes the Image m to w in BARCH format, converting it to
// grayscale first if necessary.
func Encode(w io.Writer, m image.Image) error {
	r, err := raster.FromImage(m)
	if err != nil {
		return err
	}

	b, err := Compress(r)
	if err != nil {
		return err
	}

	_, err = w.Write(b)
	return err
}

// Store compresses m and writes it to file. The file is only created if
// the whole stream was written successfully.
func Store(file string, m *raster.Raster) error {
	b, err := Compress(m)
	if err != nil {
		return err
	}

	return safefile.Write(file, func(w io.Writer) error {
		_, err := w.Write(b)
		return err
	})
}
