package tilemap

// Tile is one atlas sub-rectangle in normalized (0..1) atlas coordinates.
type Tile struct {
	U, V, W, H float32 // top-left corner and size

	// Opaque reports whether the tile fully covers whatever is drawn beneath
	// it at its footprint.
	Opaque bool
}

// UV is a normalized texture coordinate.
type UV struct {
	U, V float32
}

// Corners returns the tile's UV corners in quad order: top-left, top-right,
// bottom-right, bottom-left.
func (t Tile) Corners() [4]UV {
	return [4]UV{
		{t.U, t.V},
		{t.U + t.W, t.V},
		{t.U + t.W, t.V + t.H},
		{t.U, t.V + t.H},
	}
}

// Vertex is one mesh vertex: a world-space position, a normalized atlas
// coordinate and an RGBA color multiplier.
type Vertex struct {
	X, Y       float32
	U, V       float32
	R, G, B, A float32
}
