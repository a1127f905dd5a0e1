package bitstream

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteBit(t *testing.T) {
	c := NewWriter()

	for _, b := range []uint8{1, 0, 1} {
		c.WriteBit(b)
	}
	assert.Equal(t, []byte{0xa0}, c.Bytes())
	assert.Equal(t, 3, c.Len())

	for _, b := range []uint8{0, 0, 0, 1, 1} {
		c.WriteBit(b)
	}
	// The buffer only grows when the next bit is written
	assert.Equal(t, []byte{0xa3}, c.Bytes())

	c.WriteBit(1)
	assert.Equal(t, []byte{0xa3, 0x80}, c.Bytes())
	assert.Equal(t, 9, c.Len())
}

func TestWriteByte(t *testing.T) {
	tables := map[string]struct {
		prefix []uint8
		value  byte
		want   []byte
	}{
		"aligned": {
			value: 0xc5,
			want:  []byte{0xc5},
		},
		"unaligned": {
			prefix: []uint8{1, 1},
			value:  0xff,
			want:   []byte{0xff, 0xc0},
		},
		"unaligned zero": {
			prefix: []uint8{1},
			value:  0x00,
			want:   []byte{0x80, 0x00},
		},
	}

	for name, table := range tables {
		t.Run(name, func(t *testing.T) {
			c := NewWriter()
			for _, b := range table.prefix {
				c.WriteBit(b)
			}
			require.NoError(t, c.WriteByte(table.value))
			assert.Equal(t, table.want, c.Bytes())
			assert.Equal(t, len(table.prefix)+8, c.Len())
		})
	}
}

func TestRoundTrip(t *testing.T) {
	w := NewWriter()
	w.WriteBit(1)
	w.WriteBit(0)
	require.NoError(t, w.WriteByte(0x5a))
	w.WriteBit(1)
	require.NoError(t, w.WriteByte(0xff))

	r := NewReader(w.Bytes())

	b, err := r.ReadBit()
	require.NoError(t, err)
	assert.Equal(t, uint8(1), b)

	b, err = r.ReadBit()
	require.NoError(t, err)
	assert.Equal(t, uint8(0), b)

	v, err := r.ReadByte()
	require.NoError(t, err)
	assert.Equal(t, byte(0x5a), v)

	b, err = r.ReadBit()
	require.NoError(t, err)
	assert.Equal(t, uint8(1), b)

	v, err = r.ReadByte()
	require.NoError(t, err)
	assert.Equal(t, byte(0xff), v)

	// 19 bits written, padded to 24
	assert.Equal(t, 19, r.Len())
	for i := 0; i < 5; i++ {
		b, err = r.ReadBit()
		require.NoError(t, err)
		assert.Equal(t, uint8(0), b)
	}

	_, err = r.ReadBit()
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestReadOutOfRange(t *testing.T) {
	r := NewReader(nil)
	_, err := r.ReadBit()
	assert.ErrorIs(t, err, ErrOutOfRange)
	_, err = r.ReadByte()
	assert.ErrorIs(t, err, ErrOutOfRange)

	r.Load([]byte{0xf0})
	b, err := r.ReadBit()
	require.NoError(t, err)
	assert.Equal(t, uint8(1), b)

	// Only seven bits remain
	_, err = r.ReadByte()
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestLoad(t *testing.T) {
	r := NewReader([]byte{0x01})
	v, err := r.ReadByte()
	require.NoError(t, err)
	assert.Equal(t, byte(0x01), v)

	r.Load([]byte{0x80, 0x02})
	assert.Equal(t, 0, r.Len())
	b, err := r.ReadBit()
	require.NoError(t, err)
	assert.Equal(t, uint8(1), b)
}
