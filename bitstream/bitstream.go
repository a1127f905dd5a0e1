/*
Package bitstream implements a sequential bit cursor over a byte buffer.

Bits are written and read most-significant bit first within each byte. The
same Cursor type is used for writing, where the buffer grows one byte at a
time as bits are appended, and for reading, where the position advances over
a caller-supplied buffer. The position never moves backwards.
*/
package bitstream

import "errors"

// ErrOutOfRange is returned when reading past the end of the buffer.
var ErrOutOfRange = errors.New("bitstream: read out of range")

// Cursor is a bit position within a byte buffer. The zero value is an empty
// cursor ready for writing.
type Cursor struct {
	buf []byte
	pos int   // index of the current byte
	bit uint8 // bits already consumed or written in buf[pos], 0-7
}

// NewWriter returns a cursor with an empty, growable buffer.
func NewWriter() *Cursor {
	return new(Cursor)
}

// NewReader returns a cursor positioned at the start of b.
func NewReader(b []byte) *Cursor {
	c := new(Cursor)
	c.Load(b)
	return c
}

// Load resets the cursor to the start of b. The slice is referenced, not
// copied.
func (c *Cursor) Load(b []byte) {
	c.buf = b
	c.pos = 0
	c.bit = 0
}

// Bytes returns the backing buffer. When writing, any unused low bits of the
// final byte are zero.
func (c *Cursor) Bytes() []byte {
	return c.buf
}

// Len returns the number of bits written or read so far.
func (c *Cursor) Len() int {
	return c.pos<<3 + int(c.bit)
}

// WriteBit appends the least significant bit of b.
func (c *Cursor) WriteBit(b uint8) {
	if c.bit == 0 {
		c.buf = append(c.buf, 0)
		c.pos = len(c.buf) - 1
	}
	if b&1 != 0 {
		c.buf[c.pos] |= 0x80 >> c.bit
	}
	if c.bit++; c.bit == 8 {
		c.bit = 0
		c.pos++
	}
}

// WriteByte writes the eight bits of v, most significant first. It always
// returns nil and exists to satisfy io.ByteWriter.
func (c *Cursor) WriteByte(v byte) error {
	if c.bit == 0 {
		c.buf = append(c.buf, v)
		c.pos = len(c.buf)
		return nil
	}
	for i := 7; i >= 0; i-- {
		c.WriteBit(v >> uint(i))
	}
	return nil
}

// ReadBit returns the next bit.
func (c *Cursor) ReadBit() (uint8, error) {
	if c.pos >= len(c.buf) {
		return 0, ErrOutOfRange
	}
	b := c.buf[c.pos] >> (7 - c.bit) & 1
	if c.bit++; c.bit == 8 {
		c.bit = 0
		c.pos++
	}
	return b, nil
}

// ReadByte returns the next eight bits composed most significant first.
func (c *Cursor) ReadByte() (byte, error) {
	if c.bit == 0 {
		if c.pos >= len(c.buf) {
			return 0, ErrOutOfRange
		}
		v := c.buf[c.pos]
		c.pos++
		return v, nil
	}
	var v byte
	for i := 0; i < 8; i++ {
		b, err := c.ReadBit()
		if err != nil {
			return 0, err
		}
		v = v<<1 | b
	}
	return v, nil
}
