package tilemap

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		raw              uint32
		ref              uint32
		flipH, flipV, fD bool
	}{
		{0, 0, false, false, false},
		{1, 1, false, false, false},
		{0x80000005, 5, true, false, false},
		{0x40000005, 5, false, true, false},
		{0x20000005, 5, false, false, true},
		{0xE0000007, 7, true, true, true},
		{0xFFFFFFFF, 0x1FFFFFFF, true, true, true},
		{0x1FFFFFFF, 0x1FFFFFFF, false, false, false},
		{0xA0000000, 0, true, false, true},
	}
	for _, tt := range tests {
		ref, h, v, d := Decode(tt.raw)
		assert.Equal(t, tt.ref, ref, "raw 0x%08X", tt.raw)
		assert.Equal(t, tt.flipH, h, "raw 0x%08X H", tt.raw)
		assert.Equal(t, tt.flipV, v, "raw 0x%08X V", tt.raw)
		assert.Equal(t, tt.fD, d, "raw 0x%08X D", tt.raw)
	}
}

func TestDecodeMatchesBitLayout(t *testing.T) {
	// walk a spread of values across the whole 32-bit range
	for v := uint64(0); v <= 0xFFFFFFFF; v += 0x01234567 {
		raw := uint32(v)
		ref, h, vf, d := Decode(raw)
		assert.Equal(t, raw&0x1FFFFFFF, ref)
		assert.Equal(t, raw>>31&1 == 1, h)
		assert.Equal(t, raw>>30&1 == 1, vf)
		assert.Equal(t, raw>>29&1 == 1, d)

		id := TileID(raw)
		assert.Equal(t, ref, id.Bare())
		assert.Equal(t, h, id.FlipH())
		assert.Equal(t, vf, id.FlipV())
		assert.Equal(t, d, id.FlipD())
		assert.Equal(t, id, Encode(ref, h, vf, d))
	}
}

func TestEncodeDropsHighReferenceBits(t *testing.T) {
	id := Encode(0xFFFFFFFF, false, false, false)
	assert.Equal(t, TileID(0x1FFFFFFF), id)
	assert.False(t, id.FlipH())
}

func TestIsEmpty(t *testing.T) {
	assert.True(t, TileID(0).IsEmpty())
	assert.True(t, TileID(FlagFlipH).IsEmpty())
	assert.False(t, TileID(3).IsEmpty())
}
