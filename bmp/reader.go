package bmp

import (
	"bufio"
	"image/color"
	"io"
	"io/ioutil"
	"os"

	"github.com/bodgit/grayarch/raster"
)

var (
	errNotEnough = FormatError("not enough image data")
)

func readFull(r io.Reader, b []byte) error {
	_, err := io.ReadFull(r, b)
	if err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	return err
}

type decoder struct {
	r io.Reader

	fh fileHeader
	ih infoHeader

	// Maps each palette index to a gray level
	lut [paletteLen]byte

	raster *raster.Raster

	// Enough to hold both headers
	tmp [headerLen]byte
}

func (d *decoder) readHeader() error {
	if err := readFull(d.r, d.tmp[:]); err != nil {
		return err
	}

	d.fh.unmarshal(d.tmp[:fileHeaderLen])
	d.ih.unmarshal(d.tmp[fileHeaderLen:])

	switch {
	case d.fh.Type != signature:
		return FormatError("bad signature")
	case d.ih.Size < infoHeaderLen:
		return FormatError("unsupported info header")
	case d.ih.BitCount != bitCount:
		return FormatError("unsupported bit depth")
	case d.ih.Compression != biRGB:
		return FormatError("unsupported compression")
	case !raster.ValidDimensions(int(d.ih.Width), int(d.ih.Height)):
		return FormatError("invalid dimensions")
	case int64(d.fh.OffBits) < fileHeaderLen+int64(d.ih.Size):
		return FormatError("pixel data offset inside header")
	}

	return nil
}

func (d *decoder) readPalette() error {
	for i := range d.lut {
		d.lut[i] = byte(i)
	}

	// Skip any header fields beyond BITMAPINFOHEADER
	if extra := int64(d.ih.Size) - infoHeaderLen; extra > 0 {
		if _, err := io.CopyN(ioutil.Discard, d.r, extra); err != nil {
			return err
		}
	}

	available := int64(d.fh.OffBits) - fileHeaderLen - int64(d.ih.Size)

	n := int64(d.ih.ColorsUsed)
	if n == 0 || n > paletteLen {
		n = paletteLen
	}
	if n > available/4 {
		n = available / 4
	}

	var entry [4]byte
	for i := int64(0); i < n; i++ {
		if err := readFull(d.r, entry[:]); err != nil {
			return err
		}
		// Entries are stored as blue, green, red, reserved
		b, g, r := entry[0], entry[1], entry[2]
		if r == g && g == b {
			d.lut[i] = r
		} else {
			d.lut[i] = color.GrayModel.Convert(color.RGBA{r, g, b, 0xff}).(color.Gray).Y
		}
	}

	// Seek forward to the pixel data
	if skip := available - n*4; skip > 0 {
		if _, err := io.CopyN(ioutil.Discard, d.r, skip); err != nil {
			return err
		}
	}

	return nil
}

func (d *decoder) readPixels() error {
	width, height := int(d.ih.Width), int(d.ih.Height)

	var err error
	if d.raster, err = raster.New(width, height); err != nil {
		return err
	}

	row := make([]byte, stride(width))
	for y := height - 1; y >= 0; y-- {
		if err := readFull(d.r, row); err != nil {
			return err
		}
		dst := d.raster.Row(y)
		for x, p := range row[:width] {
			dst[x] = d.lut[p]
		}
	}

	return nil
}

func (d *decoder) decode(r io.Reader, configOnly bool) error {
	d.r = r

	if err := d.readHeader(); err != nil {
		if err != io.ErrUnexpectedEOF {
			return err
		}
		return errNotEnough
	}

	if configOnly {
		return nil
	}

	for _, f := range []func() error{d.readPalette, d.readPixels} {
		if err := f(); err != nil {
			if err != io.ErrUnexpectedEOF && err != io.EOF {
				return err
			}
			return errNotEnough
		}
	}

	return nil
}

// Decode reads an 8-bit uncompressed bitmap from r. Palette indices are
// mapped to gray levels through the palette, so any 8-bit palette is
// accepted.
func Decode(r io.Reader) (*raster.Raster, error) {
	var d decoder
	if err := d.decode(r, false); err != nil {
		return nil, err
	}
	return d.raster, nil
}

// DecodeConfig returns the dimensions of a bitmap without decoding the
// pixels.
func DecodeConfig(r io.Reader) (width, height int, err error) {
	var d decoder
	if err := d.decode(r, true); err != nil {
		return 0, 0, err
	}
	return int(d.ih.Width), int(d.ih.Height), nil
}

// Load reads the bitmap stored in file.
func Load(file string) (*raster.Raster, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return Decode(bufio.NewReader(f))
}
