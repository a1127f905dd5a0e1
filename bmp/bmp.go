/*
Package bmp implements a decoder and encoder for uncompressed 8-bit
palettized Windows bitmaps, as used for grayscale images.

A file is a 14 byte file header followed by a 40 byte info header, a palette
of 4 byte BGRX entries and the pixel rows. Rows are stored bottom to top and
each is padded with zero bytes to a multiple of 4 bytes. The encoder always
writes a 256 entry grayscale palette so the pixel data starts at offset
1078.

Header fields are read and written individually at their fixed offsets in
little-endian byte order.
*/
package bmp

import "encoding/binary"

const (
	fileHeaderLen = 14
	infoHeaderLen = 40
	headerLen     = fileHeaderLen + infoHeaderLen
	paletteLen    = 256
	paletteBytes  = paletteLen * 4
	pixelOffset   = headerLen + paletteBytes
	bitCount      = 8
	biRGB         = 0
	pixelsPerM    = 2835 // 72 DPI
)

var signature = [2]byte{'B', 'M'}

// FormatError reports that the input is not a valid 8-bit uncompressed
// bitmap.
type FormatError string

func (e FormatError) Error() string { return "bmp: invalid format: " + string(e) }

// fileHeader is the BITMAPFILEHEADER structure.
type fileHeader struct {
	Type    [2]byte // "BM"
	Size    uint32  // Size of the whole file
	OffBits uint32  // Offset to the pixel rows
}

func (h *fileHeader) unmarshal(b []byte) {
	copy(h.Type[:], b[0:2])
	h.Size = binary.LittleEndian.Uint32(b[2:6])
	h.OffBits = binary.LittleEndian.Uint32(b[10:14])
}

func (h *fileHeader) marshal(b []byte) {
	copy(b[0:2], h.Type[:])
	binary.LittleEndian.PutUint32(b[2:6], h.Size)
	binary.LittleEndian.PutUint32(b[6:10], 0) // reserved
	binary.LittleEndian.PutUint32(b[10:14], h.OffBits)
}

// infoHeader is the BITMAPINFOHEADER structure. Offsets are relative to the
// start of the info header, which follows the file header.
type infoHeader struct {
	Size            uint32
	Width           int32
	Height          int32
	Planes          uint16
	BitCount        uint16
	Compression     uint32
	SizeImage       uint32
	XPelsPerMeter   int32
	YPelsPerMeter   int32
	ColorsUsed      uint32
	ColorsImportant uint32
}

func (h *infoHeader) unmarshal(b []byte) {
	h.Size = binary.LittleEndian.Uint32(b[0:4])
	h.Width = int32(binary.LittleEndian.Uint32(b[4:8]))
	h.Height = int32(binary.LittleEndian.Uint32(b[8:12]))
	h.Planes = binary.LittleEndian.Uint16(b[12:14])
	h.BitCount = binary.LittleEndian.Uint16(b[14:16])
	h.Compression = binary.LittleEndian.Uint32(b[16:20])
	h.SizeImage = binary.LittleEndian.Uint32(b[20:24])
	h.XPelsPerMeter = int32(binary.LittleEndian.Uint32(b[24:28]))
	h.YPelsPerMeter = int32(binary.LittleEndian.Uint32(b[28:32]))
	h.ColorsUsed = binary.LittleEndian.Uint32(b[32:36])
	h.ColorsImportant = binary.LittleEndian.Uint32(b[36:40])
}

func (h *infoHeader) marshal(b []byte) {
	binary.LittleEndian.PutUint32(b[0:4], h.Size)
	binary.LittleEndian.PutUint32(b[4:8], uint32(h.Width))
	binary.LittleEndian.PutUint32(b[8:12], uint32(h.Height))
	binary.LittleEndian.PutUint16(b[12:14], h.Planes)
	binary.LittleEndian.PutUint16(b[14:16], h.BitCount)
	binary.LittleEndian.PutUint32(b[16:20], h.Compression)
	binary.LittleEndian.PutUint32(b[20:24], h.SizeImage)
	binary.LittleEndian.PutUint32(b[24:28], uint32(h.XPelsPerMeter))
	binary.LittleEndian.PutUint32(b[28:32], uint32(h.YPelsPerMeter))
	binary.LittleEndian.PutUint32(b[32:36], h.ColorsUsed)
	binary.LittleEndian.PutUint32(b[36:40], h.ColorsImportant)
}

// stride returns the padded length of a row of width pixels.
func stride(width int) int {
	return width + (4-width%4)%4
}
