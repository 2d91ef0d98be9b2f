package tilemap

import "fmt"

// ResolveStart returns the lowest layer index that must be rendered at cell
// (x, y).
//
// Layers are scanned from the top down. The first layer holding an opaque
// tile at the cell hides everything below it, so its index is returned. When
// no layer holds an opaque tile there, 0 is returned and the whole stack is
// rendered.
//
// An empty stack fails with ErrEmptyLayerStack. A non-empty identifier whose
// reference is missing from ts fails with ErrUnknownTileReference.
func ResolveStart(layers []*Layer, ts *Tileset, x, y int) (int, error) {
	if len(layers) == 0 {
		return 0, ErrEmptyLayerStack
	}
	for i := len(layers) - 1; i >= 0; i-- {
		id, ok := layers[i].At(x, y)
		if !ok || id.IsEmpty() {
			continue
		}
		tile, ok := ts.Lookup(id.Bare())
		if !ok {
			return 0, unknownRef(layers[i], i, x, y, id)
		}
		if tile.Opaque {
			return i, nil
		}
	}
	return 0, nil
}

func unknownRef(l *Layer, index, x, y int, id TileID) error {
	return fmt.Errorf("layer %d (%q) cell (%d,%d) reference %d: %w",
		index, l.Name, x, y, id.Bare(), ErrUnknownTileReference)
}
