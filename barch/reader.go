package barch

import (
	"bufio"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"io/ioutil"
	"os"

	"github.com/bodgit/grayarch/bitstream"
	"github.com/bodgit/grayarch/raster"
)

var (
	errShort      = FormatError("short header")
	errMagic      = FormatError("bad magic")
	errDimensions = FormatError("invalid dimensions")
	errBitmap     = FormatError("truncated row bitmap")
)

// errEnd wraps bitstream.ErrOutOfRange when the payload runs out.
func errEnd(err error) error {
	if errors.Is(err, bitstream.ErrOutOfRange) {
		return fmt.Errorf("%w: %w", FormatError("unexpected end of data"), err)
	}
	return err
}

type decoder struct {
	b []byte
	c *bitstream.Cursor

	width, height int

	raster *raster.Raster
}

func (d *decoder) readHeader() error {
	if len(d.b) < headerLen {
		return errShort
	}
	if d.b[0] != magic[0] || d.b[1] != magic[1] {
		return errMagic
	}

	w, h := dimensions(d.b[magicLen:headerLen])
	if !raster.ValidDimensions(int(w), int(h)) {
		return errDimensions
	}
	d.width, d.height = int(w), int(h)

	return nil
}

func (d *decoder) readGroup(p []byte) error {
	bit, err := d.c.ReadBit()
	if err != nil {
		return err
	}
	if bit == 0 {
		// Already white
		return nil
	}

	if bit, err = d.c.ReadBit(); err != nil {
		return err
	}
	if bit == 0 {
		for i := range p {
			p[i] = raster.Black
		}
		return nil
	}

	for i := range p {
		if p[i], err = d.c.ReadByte(); err != nil {
			return err
		}
	}
	return nil
}

func (d *decoder) decode(b []byte, configOnly bool) error {
	d.b = b

	if err := d.readHeader(); err != nil {
		return err
	}

	bitmap := bitmapLen(d.height)
	if len(b) < headerLen+bitmap {
		return errBitmap
	}

	if configOnly {
		return nil
	}

	var err error
	if d.raster, err = raster.New(d.width, d.height); err != nil {
		return err
	}

	// One cursor over the whole stream, skipping the header and row
	// bitmap before the payload
	d.c = bitstream.NewReader(b)
	for i := 0; i < headerLen+bitmap; i++ {
		if _, err := d.c.ReadByte(); err != nil {
			return errEnd(err)
		}
	}

	rows := b[headerLen : headerLen+bitmap]
	for y := 0; y < d.height; y++ {
		if i, mask := rowBit(y); rows[i]&mask != 0 {
			continue
		}
		row := d.raster.Row(y)
		for x := 0; x < d.width; x += groupLen {
			if err := d.readGroup(row[x : x+groupCount(x, d.width)]); err != nil {
				return errEnd(err)
			}
		}
	}

	return nil
}

// Decompress decodes the BARCH stream b.
func Decompress(b []byte) (*raster.Raster, error) {
	var d decoder
	if err := d.decode(b, false); err != nil {
		return nil, err
	}
	return d.raster, nil
}

// Decode reads a BARCH stream from r and returns it as an *image.Gray.
func Decode(r io.Reader) (image.Image, error) {
	b, err := ioutil.ReadAll(r)
	if err != nil {
		return nil, err
	}

	m, err := Decompress(b)
	if err != nil {
		return nil, err
	}
	return m.Gray(), nil
}

// DecodeConfig returns the color model and dimensions of a BARCH image
// without decoding the payload.
func DecodeConfig(r io.Reader) (image.Config, error) {
	var tmp [headerLen]byte
	if _, err := io.ReadFull(r, tmp[:]); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return image.Config{}, errShort
		}
		return image.Config{}, err
	}

	var d decoder
	d.b = tmp[:]
	if err := d.readHeader(); err != nil {
		return image.Config{}, err
	}

	return image.Config{
		ColorModel: color.GrayModel,
		Width:      d.width,
		Height:     d.height,
	}, nil
}

// Load reads and decompresses the BARCH stream stored in file.
func Load(file string) (*raster.Raster, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	b, err := ioutil.ReadAll(bufio.NewReader(f))
	if err != nil {
		return nil, err
	}

	return Decompress(b)
}
