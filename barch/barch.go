/*
Package barch implements the BARCH compressed grayscale image format.

A BARCH stream is laid out as follows:

	[ 'B' 'A' ]            magic
	[ w0 h0 w1 h1 w2 h2 w3 h3 ]
	                       width and height as 32-bit little-endian values,
	                       interleaved one byte at a time
	[ ceil(height/8) ]     row bitmap
	[ ... ]                payload

The row bitmap has one bit per row, row j being bit j%8 of byte j/8 counting
from the least significant bit. A set bit marks a row where every pixel is
white (0xff); such rows have nothing in the payload.

The payload covers the remaining rows, left to right in groups of four
pixels, the last group of a row being shorter if the width isn't a multiple
of four. Each group is written most significant bit first as one of:

	0             every pixel of the group is white
	1 0           every pixel of the group is black (0x00)
	1 1 <bytes>   one literal byte per pixel in the group

The payload is not length-prefixed and the final byte is padded with zero
bits. Note the two bit orders: the row bitmap counts from the least
significant bit while the payload is written from the most significant bit.
*/
package barch

import (
	"image"
)

const (
	magicLen  = 2
	dimLen    = 8
	headerLen = magicLen + dimLen
	groupLen  = 4
)

var magic = [magicLen]byte{'B', 'A'}

// Group codes, most significant bit first
const (
	codeWhite   = 0b0
	codeBlack   = 0b10
	codeLiteral = 0b11
)

// FormatError reports that the input is not a valid BARCH stream.
type FormatError string

func (e FormatError) Error() string { return "barch: invalid format: " + string(e) }

func init() {
	image.RegisterFormat("barch", string(magic[:]), Decode, DecodeConfig)
}

// putDimensions writes width and height into b as 32-bit little-endian values
// with their bytes interleaved, width first.
func putDimensions(b []byte, width, height int32) {
	for i := 0; i < 4; i++ {
		b[i*2] = byte(uint32(width) >> (8 * i))
		b[i*2+1] = byte(uint32(height) >> (8 * i))
	}
}

// dimensions is the inverse of putDimensions.
func dimensions(b []byte) (width, height int32) {
	var w, h uint32
	for i := 0; i < 4; i++ {
		w |= uint32(b[i*2]) << (8 * i)
		h |= uint32(b[i*2+1]) << (8 * i)
	}
	return int32(w), int32(h)
}

// bitmapLen returns the length of the row bitmap for height rows.
func bitmapLen(height int) int {
	return (height + 7) / 8
}

// rowBit returns the byte index and mask of row y in the row bitmap. Rows are
// numbered from the least significant bit of each byte.
func rowBit(y int) (int, byte) {
	return y / 8, 1 << uint(y%8)
}

// groupCount returns the number of pixels in the group starting at column x.
func groupCount(x, width int) int {
	if n := width - x; n < groupLen {
		return n
	}
	return groupLen
}

func allEqual(p []byte, v byte) bool {
	for _, b := range p {
		if b != v {
			return false
		}
	}
	return true
}
