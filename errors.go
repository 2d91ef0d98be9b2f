package tilemap

import "errors"

var (
	// ErrMalformedInput reports map data that cannot be turned into a Map:
	// wrong tileset or image cardinality, a layer whose length does not match
	// the map footprint, unsupported encodings, non-positive sizes.
	ErrMalformedInput = errors.New("malformed map input")

	// ErrUnknownTileReference reports a non-empty tile identifier whose bare
	// reference has no entry in the tileset. It indicates corrupt map data.
	ErrUnknownTileReference = errors.New("unknown tile reference")

	// ErrEmptyLayerStack reports a map with zero layers.
	ErrEmptyLayerStack = errors.New("empty layer stack")
)
