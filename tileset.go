package tilemap

import (
	"fmt"
	"image"

	"github.com/hajimehoshi/ebiten/v2"
)

// OpacityFunc decides whether the tile with the given bare reference hides
// everything beneath it.
type OpacityFunc func(ref uint32) bool

// AllOpaque is the default opacity policy. Neither Tiled nor Aseprite data
// read by this package carries a per-tile transparency property.
func AllOpaque(uint32) bool { return true }

// Tileset maps bare tile references to atlas sub-rectangles of one atlas
// image. It is immutable once built and may be shared by any number of maps.
type Tileset struct {
	atlas     *ebiten.Image
	atlasSize image.Point
	tileW     int
	tileH     int
	cols      int
	rows      int
	firstGID  uint32

	// tiles[ref-1] holds the tile for reference ref.
	tiles []Tile
}

type tilesetOptions struct {
	opacity  OpacityFunc
	firstGID uint32
	atlas    *ebiten.Image
}

// TilesetOption configures BuildTileset and NewTileset.
type TilesetOption func(*tilesetOptions)

// WithOpacity replaces the opacity policy.
func WithOpacity(fn OpacityFunc) TilesetOption {
	return func(o *tilesetOptions) {
		if fn != nil {
			o.opacity = fn
		}
	}
}

// WithFirstGID sets the base offset of externally sourced identifiers. The
// external identifier firstGID maps to reference 1. Values below 1 are
// treated as 1.
func WithFirstGID(firstGID uint32) TilesetOption {
	return func(o *tilesetOptions) {
		o.firstGID = max(firstGID, 1)
	}
}

// WithAtlas binds the atlas image drawn by maps using the tileset.
func WithAtlas(atlas *ebiten.Image) TilesetOption {
	return func(o *tilesetOptions) {
		o.atlas = atlas
	}
}

// BuildTileset slices an atlas of the given pixel size into a uniform grid of
// tileW x tileH tiles. Columns and rows are computed by integer division;
// remainder pixels on the right and bottom edges are discarded. References
// are assigned 1..count in row-major order; 0 is reserved for "no tile".
func BuildTileset(atlasSize image.Point, tileW, tileH int, opts ...TilesetOption) (*Tileset, error) {
	if atlasSize.X <= 0 || atlasSize.Y <= 0 {
		return nil, fmt.Errorf("atlas size %dx%d: %w", atlasSize.X, atlasSize.Y, ErrMalformedInput)
	}
	if tileW <= 0 || tileH <= 0 {
		return nil, fmt.Errorf("tile size %dx%d: %w", tileW, tileH, ErrMalformedInput)
	}

	o := tilesetOptions{opacity: AllOpaque, firstGID: 1}
	for _, opt := range opts {
		opt(&o)
	}

	ts := &Tileset{
		atlas:     o.atlas,
		atlasSize: atlasSize,
		tileW:     tileW,
		tileH:     tileH,
		cols:      atlasSize.X / tileW,
		rows:      atlasSize.Y / tileH,
		firstGID:  o.firstGID,
	}

	w := float32(tileW) / float32(atlasSize.X)
	h := float32(tileH) / float32(atlasSize.Y)
	ts.tiles = make([]Tile, 0, ts.cols*ts.rows)
	for row := 0; row < ts.rows; row++ {
		for col := 0; col < ts.cols; col++ {
			ref := uint32(len(ts.tiles) + 1)
			ts.tiles = append(ts.tiles, Tile{
				U:      float32(col) * w,
				V:      float32(row) * h,
				W:      w,
				H:      h,
				Opaque: o.opacity(ref),
			})
		}
	}
	return ts, nil
}

// NewTileset builds a tileset over atlas and binds it for drawing.
func NewTileset(atlas *ebiten.Image, tileW, tileH int, opts ...TilesetOption) (*Tileset, error) {
	if atlas == nil {
		return nil, fmt.Errorf("nil atlas: %w", ErrMalformedInput)
	}
	opts = append(opts, WithAtlas(atlas))
	return BuildTileset(atlas.Bounds().Size(), tileW, tileH, opts...)
}

// Lookup returns the tile for a bare reference. It reports false for
// reference 0 and for references outside the tileset.
func (ts *Tileset) Lookup(ref uint32) (Tile, bool) {
	if ref == 0 || ref > uint32(len(ts.tiles)) {
		return Tile{}, false
	}
	return ts.tiles[ref-1], true
}

// TranslateExternalID converts an identifier from external map data into the
// tileset's local reference space. Flags are preserved and the bare part is
// shifted down by FirstGID-1, so with the default FirstGID of 1 this is the
// identity. External ids below FirstGID cannot belong to this tileset and
// translate to an id whose reference is past the end of the tileset, so a
// later lookup reports them as unknown instead of silently aliasing tile 1.
//
// Only a single tileset per map is supported.
func (ts *Tileset) TranslateExternalID(raw uint32) TileID {
	ref, h, v, d := Decode(raw)
	if ref == 0 || ts.firstGID <= 1 {
		return TileID(raw)
	}
	if ref < ts.firstGID {
		return Encode(RefMask, h, v, d)
	}
	return Encode(ref-(ts.firstGID-1), h, v, d)
}

// Len returns the number of tiles.
func (ts *Tileset) Len() int { return len(ts.tiles) }

// Columns returns the number of tile columns in the atlas grid.
func (ts *Tileset) Columns() int { return ts.cols }

// Rows returns the number of tile rows in the atlas grid.
func (ts *Tileset) Rows() int { return ts.rows }

// TileSize returns the pixel size of one tile in the atlas.
func (ts *Tileset) TileSize() (w, h int) { return ts.tileW, ts.tileH }

// AtlasSize returns the atlas size in pixels.
func (ts *Tileset) AtlasSize() image.Point { return ts.atlasSize }

// Atlas returns the bound atlas image, or nil for a headless tileset.
func (ts *Tileset) Atlas() *ebiten.Image { return ts.atlas }

// FirstGID returns the external identifier mapped to reference 1.
func (ts *Tileset) FirstGID() uint32 { return ts.firstGID }
