package tilemap

// Flip flag bits of a tile identifier. This is the layout used by Tiled GIDs
// and by Aseprite tilemap cels (highest bit X flip, then Y, then diagonal).
const (
	FlagFlipH uint32 = 1 << 31 // horizontal flip
	FlagFlipV uint32 = 1 << 30 // vertical flip
	FlagFlipD uint32 = 1 << 29 // diagonal flip (transpose)

	flagMask uint32 = FlagFlipH | FlagFlipV | FlagFlipD

	// RefMask isolates the bare tile reference (bits 0-28).
	RefMask uint32 = ^flagMask
)

// TileID is a 32-bit tile identifier carrying a bare tile reference in its low
// 29 bits and three orientation flags in its top bits.
//
// A TileID must be decoded (see Bare) before being used as a Tileset key.
// A bare reference of 0 means "no tile".
type TileID uint32

// Decode splits a raw identifier into its bare reference and flip flags.
func Decode(raw uint32) (ref uint32, flipH, flipV, flipD bool) {
	return raw & RefMask, raw&FlagFlipH != 0, raw&FlagFlipV != 0, raw&FlagFlipD != 0
}

// Encode packs a bare reference and flip flags into a TileID. Bits of ref
// above bit 28 are dropped.
func Encode(ref uint32, flipH, flipV, flipD bool) TileID {
	id := ref & RefMask
	if flipH {
		id |= FlagFlipH
	}
	if flipV {
		id |= FlagFlipV
	}
	if flipD {
		id |= FlagFlipD
	}
	return TileID(id)
}

// Decode is the method form of the package-level Decode.
func (id TileID) Decode() (ref uint32, flipH, flipV, flipD bool) {
	return Decode(uint32(id))
}

// Bare returns the tile reference with the flip flags masked off.
func (id TileID) Bare() uint32 { return uint32(id) & RefMask }

// FlipH reports the horizontal flip flag.
func (id TileID) FlipH() bool { return uint32(id)&FlagFlipH != 0 }

// FlipV reports the vertical flip flag.
func (id TileID) FlipV() bool { return uint32(id)&FlagFlipV != 0 }

// FlipD reports the diagonal (transpose) flip flag.
func (id TileID) FlipD() bool { return uint32(id)&FlagFlipD != 0 }

// IsEmpty reports whether the identifier refers to no tile. Flags on an empty
// identifier are meaningless but preserved.
func (id TileID) IsEmpty() bool { return id.Bare() == 0 }
