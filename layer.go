package tilemap

import "fmt"

// Layer is one row-major grid of optional tile identifiers covering the whole
// map footprint, with the origin at the top-left cell.
type Layer struct {
	Name string

	width  int
	height int
	cells  []TileID
}

// NewLayer creates a layer from ids. len(ids) must equal width*height. The
// slice is copied.
func NewLayer(name string, width, height int, ids []TileID) (*Layer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("layer %q size %dx%d: %w", name, width, height, ErrMalformedInput)
	}
	if len(ids) != width*height {
		return nil, fmt.Errorf("layer %q has %d tiles, want %d: %w", name, len(ids), width*height, ErrMalformedInput)
	}
	cells := make([]TileID, len(ids))
	copy(cells, ids)
	return &Layer{Name: name, width: width, height: height, cells: cells}, nil
}

// NewEmptyLayer creates a layer with no tiles.
func NewEmptyLayer(name string, width, height int) (*Layer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("layer %q size %dx%d: %w", name, width, height, ErrMalformedInput)
	}
	return &Layer{Name: name, width: width, height: height, cells: make([]TileID, width*height)}, nil
}

// Width returns the layer width in cells.
func (l *Layer) Width() int { return l.width }

// Height returns the layer height in cells.
func (l *Layer) Height() int { return l.height }

func (l *Layer) inBounds(x, y int) bool {
	return x >= 0 && x < l.width && y >= 0 && y < l.height
}

// At returns the identifier stored at (x, y). It reports false when the cell
// is out of bounds or holds no tile (raw value 0).
func (l *Layer) At(x, y int) (TileID, bool) {
	if !l.inBounds(x, y) {
		return 0, false
	}
	id := l.cells[y*l.width+x]
	return id, id != 0
}

// IDs returns a copy of the layer contents in row-major order.
func (l *Layer) IDs() []TileID {
	out := make([]TileID, len(l.cells))
	copy(out, l.cells)
	return out
}

func (l *Layer) set(x, y int, id TileID) {
	l.cells[y*l.width+x] = id
}

func (l *Layer) clone() *Layer {
	c := *l
	c.cells = make([]TileID, len(l.cells))
	copy(c.cells, l.cells)
	return &c
}
